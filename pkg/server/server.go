// Package server wires the OPC UA runtime together: it owns the address
// space, the channel/session managers, the subscription engine and the
// scheduler, accepts UA-TCP connections and dispatches decoded service
// requests to the handlers.
package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/metrics"
	"github.com/marmos91/opcuad/pkg/nodestore"
	"github.com/marmos91/opcuad/pkg/sched"
	"github.com/marmos91/opcuad/pkg/securechannel"
	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/session"
	"github.com/marmos91/opcuad/pkg/subscription"
	"github.com/marmos91/opcuad/pkg/transport"
	"github.com/marmos91/opcuad/pkg/ua"
)

// Config is the server-level configuration. An empty EndpointURL selects
// DefaultConfig as a whole; otherwise zero timing, lifetime, session
// timeout, transport and browse fields take their defaults, and the other
// fields are used as given (a zero channel, session, subscription,
// monitored-item or publish-request limit means no cap).
type Config struct {
	EndpointURL     string
	ApplicationURI  string
	ApplicationName string
	ProductURI      string

	ManufacturerName string
	ProductName      string
	SoftwareVersion  string
	BuildNumber      string

	MaxSecureChannels  int
	MaxChannelLifetime time.Duration

	MaxSessions       int
	MinSessionTimeout time.Duration
	MaxSessionTimeout time.Duration

	MaxSubscriptionsPerSession int
	MaxMonitoredItemsPerSub    int
	MaxPublishRequests         int
	MinPublishingInterval      time.Duration

	MaxReferencesPerNode  uint32
	MaxContinuationPoints int

	CleanupInterval          time.Duration
	SubscriptionTickInterval time.Duration

	TransportLimits transport.Limits
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		EndpointURL:     "opc.tcp://localhost:4840",
		ApplicationURI:  "urn:opcuad:server",
		ApplicationName: "opcuad",
		ProductURI:      "https://github.com/marmos91/opcuad",

		ManufacturerName: "opcuad",
		ProductName:      "opcuad",
		SoftwareVersion:  "1.0.0",
		BuildNumber:      "0",

		MaxSecureChannels:  100,
		MaxChannelLifetime: time.Hour,

		MaxSessions:       100,
		MinSessionTimeout: time.Millisecond,
		MaxSessionTimeout: time.Hour,

		MaxSubscriptionsPerSession: 100,
		MaxMonitoredItemsPerSub:    1000,
		MaxPublishRequests:         10,
		MinPublishingInterval:      10 * time.Millisecond,

		MaxReferencesPerNode:  1000,
		MaxContinuationPoints: 16,

		CleanupInterval:          10 * time.Second,
		SubscriptionTickInterval: 50 * time.Millisecond,

		TransportLimits: transport.DefaultLimits(),
	}
}

// Dependencies are the capability implementations the server consumes.
// Nil fields select the production defaults.
type Dependencies struct {
	Clock         sched.Clock
	Nonces        security.NonceSource
	AccessControl security.AccessControl
	Certificates  security.CertificateGroup
	Policies      *security.Registry

	ServiceMetrics   metrics.ServiceMetrics
	TransportMetrics metrics.TransportMetrics
	RuntimeMetrics   metrics.RuntimeMetrics
}

// Server is one OPC UA server instance. Tests instantiate a fresh server
// per case; there is no package-level state.
type Server struct {
	config Config

	clock   sched.Clock
	timer   *sched.Timer
	delayed *sched.DelayedQueue

	store    *nodestore.Store
	channels *securechannel.Manager
	sessions *session.Manager
	subs     *subscription.Engine

	accessControl security.AccessControl
	certificates  security.CertificateGroup
	policies      *security.Registry

	serviceMetrics   metrics.ServiceMetrics
	transportMetrics metrics.TransportMetrics
	runtimeMetrics   metrics.RuntimeMetrics

	// dispatchMu serializes service dispatch and subscription ticks, so
	// per-channel request order and write-then-read visibility hold.
	dispatchMu sync.Mutex

	continuations *continuationTable

	startTime time.Time

	listener net.Listener
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	log interface {
		Info(msg string, args ...any)
		Debug(msg string, args ...any)
		Warn(msg string, args ...any)
		Error(msg string, args ...any)
	}
}

// New creates a server with a bootstrapped namespace 0.
func New(config Config, deps Dependencies) *Server {
	def := DefaultConfig()
	if config.EndpointURL == "" {
		config = def
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.SubscriptionTickInterval == 0 {
		config.SubscriptionTickInterval = def.SubscriptionTickInterval
	}
	if config.MaxChannelLifetime == 0 {
		config.MaxChannelLifetime = def.MaxChannelLifetime
	}
	if config.MaxSessionTimeout == 0 {
		config.MaxSessionTimeout = def.MaxSessionTimeout
	}
	if config.MinSessionTimeout == 0 {
		config.MinSessionTimeout = def.MinSessionTimeout
	}
	if config.TransportLimits == (transport.Limits{}) {
		config.TransportLimits = def.TransportLimits
	}
	if config.MaxReferencesPerNode == 0 {
		config.MaxReferencesPerNode = def.MaxReferencesPerNode
	}
	if config.MaxContinuationPoints == 0 {
		config.MaxContinuationPoints = def.MaxContinuationPoints
	}

	clock := deps.Clock
	if clock == nil {
		clock = sched.NewRealClock()
	}
	nonces := deps.Nonces
	if nonces == nil {
		nonces = security.RandomNonceSource{}
	}
	ac := deps.AccessControl
	if ac == nil {
		ac = security.NewDefaultAccessControl(true)
	}
	certs := deps.Certificates
	if certs == nil {
		certs = security.NewPermissiveCertificateGroup()
	}
	policies := deps.Policies
	if policies == nil {
		policies = security.NewRegistry()
	}

	delayed := sched.NewDelayedQueue()
	store := nodestore.New(config.ApplicationURI)

	s := &Server{
		config:  config,
		clock:   clock,
		timer:   sched.NewTimer(clock),
		delayed: delayed,
		store:   store,
		channels: securechannel.NewManager(securechannel.Config{
			MaxChannels: config.MaxSecureChannels,
			MaxLifetime: config.MaxChannelLifetime,
		}, clock, delayed, policies, nonces),
		sessions: session.NewManager(session.Config{
			MaxSessions: config.MaxSessions,
			MinTimeout:  config.MinSessionTimeout,
			MaxTimeout:  config.MaxSessionTimeout,
		}, clock, delayed, ac),
		subs: subscription.NewEngine(subscription.Config{
			MaxSubscriptionsPerSession: config.MaxSubscriptionsPerSession,
			MaxMonitoredItemsPerSub:    config.MaxMonitoredItemsPerSub,
			MinPublishingInterval:      config.MinPublishingInterval,
			MaxPublishRequests:         config.MaxPublishRequests,
		}, clock, store),
		accessControl:    ac,
		certificates:     certs,
		policies:         policies,
		serviceMetrics:   deps.ServiceMetrics,
		transportMetrics: deps.TransportMetrics,
		runtimeMetrics:   deps.RuntimeMetrics,
		continuations:    newContinuationTable(config.MaxContinuationPoints),
		startTime:        clock.Now(),
		stopCh:           make(chan struct{}),
		log:              logger.Category("server"),
	}

	// A removed session releases its subscriptions, parked publishes and
	// continuation points.
	s.sessions.SetRemoveHook(func(sessionID ua.NodeID) {
		s.subs.DropSession(sessionID)
		s.continuations.dropSession(sessionID)
	})

	s.bootstrapNamespaceZero()

	s.timer.AddRepeatedCallback(s.cleanupTick, config.CleanupInterval)
	s.timer.AddRepeatedCallback(s.subscriptionTick, config.SubscriptionTickInterval)

	return s
}

// Store exposes the address space for embedders that register nodes,
// value sources and methods before Serve.
func (s *Server) Store() *nodestore.Store {
	return s.store
}

// Clock returns the server clock.
func (s *Server) Clock() sched.Clock {
	return s.clock
}

// AddNamespace registers a namespace URI and returns its index. The
// NamespaceArray variable reflects the addition immediately.
func (s *Server) AddNamespace(uri string) uint16 {
	return s.store.AddNamespace(uri)
}

// cleanupTick removes timed-out channels and sessions.
func (s *Server) cleanupTick() {
	s.channels.CleanupTimedOut()
	s.sessions.CleanupTimedOut()
	if s.runtimeMetrics != nil {
		s.runtimeMetrics.SetChannelCount(s.channels.Count())
		s.runtimeMetrics.SetSessionCount(s.sessions.Count())
	}
}

// subscriptionTick drives publish cycles under the dispatch lock.
func (s *Server) subscriptionTick() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.subs.Tick()
}

// RunIterate runs one scheduler iteration: due timers fire, then the
// delayed-callback queue drains. Returns the wait until the next timer.
// Tests drive the server deterministically with a MockClock and this
// method; Serve calls it from the scheduler goroutine.
func (s *Server) RunIterate(maxWait time.Duration) time.Duration {
	wait := s.timer.RunIterate(maxWait)
	s.delayed.Drain()
	return wait
}

// Serve accepts connections on the listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.listener = listener
	s.log.Info("server listening",
		logger.KeyEndpoint, s.config.EndpointURL,
		"addr", listener.Addr().String())

	s.wg.Add(1)
	go s.schedulerLoop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		t := transport.NewTCPTransport(conn, s.config.ReadTimeout, s.config.WriteTimeout)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(t)
		}()
	}
}

// ListenAndServe binds the configured endpoint port and serves.
func (s *Server) ListenAndServe(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(listener)
}

func (s *Server) schedulerLoop() {
	defer s.wg.Done()
	for {
		wait := s.RunIterate(time.Second)
		select {
		case <-s.stopCh:
			return
		case <-time.After(wait):
		}
	}
}

// Shutdown stops accepting, tears down channels and sessions, and waits
// for the connection goroutines.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.sessions.CloseAll()
		s.channels.CloseAll()
		s.delayed.Drain()
		_ = s.certificates.Close()
	})
	s.wg.Wait()
}
