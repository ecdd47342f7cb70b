package securechannel

import (
	"sync"
	"time"

	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/sched"
	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/transport"
	"github.com/marmos91/opcuad/pkg/ua"
)

const (
	startChannelID uint32 = 1
	startTokenID   uint32 = 1
)

// Config bounds the channel manager.
type Config struct {
	// MaxChannels caps concurrently open channels.
	MaxChannels int
	// MaxLifetime caps the revised token lifetime; a requested lifetime
	// of 0 yields the maximum.
	MaxLifetime time.Duration
}

// Manager owns all secure channels. Channel removal is deferred through
// the delayed-callback queue so inflight service calls referencing the
// channel complete first.
type Manager struct {
	mu       sync.Mutex
	channels map[uint32]*Channel

	lastChannelID uint32
	lastTokenID   uint32

	config   Config
	clock    sched.Clock
	delayed  *sched.DelayedQueue
	policies *security.Registry
	nonces   security.NonceSource

	log interface {
		Info(msg string, args ...any)
		Debug(msg string, args ...any)
		Warn(msg string, args ...any)
	}
}

// NewManager creates a channel manager.
func NewManager(config Config, clock sched.Clock, delayed *sched.DelayedQueue, policies *security.Registry, nonces security.NonceSource) *Manager {
	return &Manager{
		channels:      make(map[uint32]*Channel),
		lastChannelID: startChannelID - 1,
		lastTokenID:   startTokenID - 1,
		config:        config,
		clock:         clock,
		delayed:       delayed,
		policies:      policies,
		nonces:        nonces,
		log:           logger.Category("channel"),
	}
}

// Count returns the number of open channels.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels)
}

// Get resolves a channel id.
func (m *Manager) Get(id uint32) (*Channel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[id]
	return ch, ok
}

// Open handles an OPN issue request on a connection with no channel yet.
func (m *Manager) Open(conn transport.Transport, limits transport.Limits, req *ua.OpenSecureChannelRequest, policyURI string) (*Channel, *ua.OpenSecureChannelResponse, ua.StatusCode) {
	policy, ok := m.policies.Lookup(policyURI)
	if !ok {
		return nil, nil, ua.StatusBadSecurityPolicyRejected
	}
	if req.SecurityMode != ua.SecurityModeNone && policy.URI() == security.PolicyURINone {
		return nil, nil, ua.StatusBadSecurityModeRejected
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.MaxChannels > 0 && len(m.channels) >= m.config.MaxChannels {
		if !m.purgeChannelWithoutSessionLocked() {
			return nil, nil, ua.StatusBadOutOfMemory
		}
	}

	serverNonce, err := m.nonces.GenerateNonce(policy.NonceLength())
	if err != nil {
		return nil, nil, ua.StatusBadInternalError
	}

	m.lastChannelID++
	m.lastTokenID++
	now := m.clock.NowMonotonic()
	lifetime := m.reviseLifetime(req.RequestedLifetime)

	ch := &Channel{
		ID:    m.lastChannelID,
		State: StateOpen,
		SecurityToken: ua.ChannelSecurityToken{
			ChannelID:       m.lastChannelID,
			TokenID:         m.lastTokenID,
			CreatedAt:       m.clock.Now(),
			RevisedLifetime: uint32(lifetime / time.Millisecond),
		},
		CreatedAt:       now,
		RevisedLifetime: lifetime,
		ClientNonce:     req.ClientNonce,
		ServerNonce:     serverNonce,
		PolicyURI:       policy.URI(),
		Policy:          policy,
		Mode:            req.SecurityMode,
		Transport:       conn,
		Assembler:       transport.NewAssembler(limits),
		Limits:          limits,
	}
	m.channels[ch.ID] = ch

	m.log.Info("secure channel opened",
		logger.KeyChannelID, ch.ID,
		logger.KeyTokenID, ch.SecurityToken.TokenID,
		"lifetime_ms", ch.SecurityToken.RevisedLifetime,
		"policy", ch.PolicyURI)

	resp := &ua.OpenSecureChannelResponse{
		ServerProtocolVersion: transport.ProtocolVersion,
		SecurityToken:         ch.SecurityToken,
		ServerNonce:           serverNonce,
	}
	return ch, resp, ua.StatusGood
}

// Renew handles an OPN renew request on an existing channel. The new token
// is installed as pending; it activates when the client first uses it.
func (m *Manager) Renew(ch *Channel, req *ua.OpenSecureChannelRequest) (*ua.OpenSecureChannelResponse, ua.StatusCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.NextToken.TokenID != 0 {
		// A renewal is already pending; repeat it.
		return &ua.OpenSecureChannelResponse{
			ServerProtocolVersion: transport.ProtocolVersion,
			SecurityToken:         ch.NextToken,
			ServerNonce:           ch.ServerNonce,
		}, ua.StatusGood
	}

	serverNonce, err := m.nonces.GenerateNonce(ch.Policy.NonceLength())
	if err != nil {
		return nil, ua.StatusBadInternalError
	}

	m.lastTokenID++
	lifetime := m.reviseLifetime(req.RequestedLifetime)
	ch.NextToken = ua.ChannelSecurityToken{
		ChannelID:       ch.ID,
		TokenID:         m.lastTokenID,
		CreatedAt:       m.clock.Now(),
		RevisedLifetime: uint32(lifetime / time.Millisecond),
	}
	ch.State = StateRenewing
	// The channel deadline extends from now; the old token stays valid
	// until the client references the new one.
	ch.CreatedAt = m.clock.NowMonotonic()
	ch.RevisedLifetime = lifetime
	ch.ClientNonce = req.ClientNonce
	ch.ServerNonce = serverNonce

	m.log.Info("secure channel renewed",
		logger.KeyChannelID, ch.ID,
		logger.KeyTokenID, ch.NextToken.TokenID,
		"lifetime_ms", ch.NextToken.RevisedLifetime)

	return &ua.OpenSecureChannelResponse{
		ServerProtocolVersion: transport.ProtocolVersion,
		SecurityToken:         ch.NextToken,
		ServerNonce:           serverNonce,
	}, ua.StatusGood
}

func (m *Manager) reviseLifetime(requestedMS uint32) time.Duration {
	requested := time.Duration(requestedMS) * time.Millisecond
	if requested == 0 || requested > m.config.MaxLifetime {
		return m.config.MaxLifetime
	}
	return requested
}

// Close removes a channel. Removal is deferred: the channel leaves the map
// immediately (its id no longer resolves) but teardown of the transport
// runs after the current dispatch iteration.
func (m *Manager) Close(id uint32) {
	m.mu.Lock()
	ch, ok := m.channels[id]
	if ok {
		delete(m.channels, id)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	m.removeDeferred(ch)
}

func (m *Manager) removeDeferred(ch *Channel) {
	m.delayed.Add(func() {
		ch.mu.Lock()
		ch.State = StateClosed
		conn := ch.Transport
		ch.Transport = nil
		ch.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		m.log.Debug("secure channel removed", logger.KeyChannelID, ch.ID)
	})
}

// purgeChannelWithoutSessionLocked removes the first channel with no bound
// session to make room at the channel cap. Returns false when every
// channel carries a session.
func (m *Manager) purgeChannelWithoutSessionLocked() bool {
	for id, ch := range m.channels {
		if ch.SessionCount() == 0 {
			delete(m.channels, id)
			m.removeDeferred(ch)
			m.log.Debug("purged session-less secure channel at capacity",
				logger.KeyChannelID, id)
			return true
		}
	}
	return false
}

// CleanupTimedOut removes channels whose lifetime elapsed or whose
// connection is gone, and revolves pending tokens on surviving channels.
// Runs on the periodic scan.
func (m *Manager) CleanupTimedOut() {
	now := m.clock.NowMonotonic()
	m.mu.Lock()
	var removed []*Channel
	for id, ch := range m.channels {
		if ch.Expired(now) || ch.ConnectionLost() {
			delete(m.channels, id)
			removed = append(removed, ch)
			continue
		}
		if ch.HasPendingToken() {
			ch.RevolveTokens()
		}
	}
	m.mu.Unlock()

	for _, ch := range removed {
		m.log.Info("secure channel timed out", logger.KeyChannelID, ch.ID)
		m.removeDeferred(ch)
	}
}

// CloseAll tears down every channel (server shutdown).
func (m *Manager) CloseAll() {
	m.mu.Lock()
	channels := make([]*Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		channels = append(channels, ch)
	}
	m.channels = make(map[uint32]*Channel)
	m.mu.Unlock()

	for _, ch := range channels {
		m.removeDeferred(ch)
	}
}
