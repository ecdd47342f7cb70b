package subscription

import (
	"sync"
	"time"

	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/nodestore"
	"github.com/marmos91/opcuad/pkg/sched"
	"github.com/marmos91/opcuad/pkg/ua"
	"github.com/marmos91/opcuad/pkg/ua/uabin"
)

// Config bounds the engine.
type Config struct {
	MaxSubscriptionsPerSession int
	MaxMonitoredItemsPerSub    int
	// Publishing interval clamp.
	MinPublishingInterval time.Duration
	MaxPublishingInterval time.Duration
	// Parked publish requests per session.
	MaxPublishRequests int
}

// ParkedPublish is a Publish request held until a notification or
// keep-alive is available. Respond is invoked exactly once, from Park,
// the engine tick or teardown.
type ParkedPublish struct {
	RequestHandle uint32
	Deadline      time.Duration // monotonic; zero = session deadline only
	Respond       func(*ua.PublishResponse)
}

// sessionSubs is the subscription set and publish queue of one session.
type sessionSubs struct {
	subs    map[uint32]*Subscription
	parked  []*ParkedPublish
	// statusChanges are queued StatusChangeNotifications for deleted
	// subscriptions, delivered on the next Publish.
	statusChanges []ua.PublishResponse
}

// Engine owns every subscription, keyed by the owning session. The server
// drives it from the scheduler tick.
type Engine struct {
	mu       sync.Mutex
	sessions map[ua.NodeID]*sessionSubs
	bySubID  map[uint32]ua.NodeID

	nextSubID uint32

	config Config
	clock  sched.Clock
	store  *nodestore.Store
}

// NewEngine creates the engine.
func NewEngine(config Config, clock sched.Clock, store *nodestore.Store) *Engine {
	return &Engine{
		sessions: make(map[ua.NodeID]*sessionSubs),
		bySubID:  make(map[uint32]ua.NodeID),
		config:   config,
		clock:    clock,
		store:    store,
	}
}

func (e *Engine) sessionLocked(sessionID ua.NodeID) *sessionSubs {
	ss := e.sessions[sessionID]
	if ss == nil {
		ss = &sessionSubs{subs: make(map[uint32]*Subscription)}
		e.sessions[sessionID] = ss
	}
	return ss
}

// CreateSubscription allocates a subscription for the session, clamping
// the requested parameters.
func (e *Engine) CreateSubscription(sessionID ua.NodeID, req *ua.CreateSubscriptionRequest) (*Subscription, ua.StatusCode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ss := e.sessionLocked(sessionID)
	if e.config.MaxSubscriptionsPerSession > 0 && len(ss.subs) >= e.config.MaxSubscriptionsPerSession {
		return nil, ua.StatusBadTooManySubscriptions
	}

	e.nextSubID++
	sub := newSubscription(e.nextSubID, sessionID)
	sub.PublishingInterval = e.clampInterval(req.RequestedPublishingInterval)
	sub.LifetimeCount = req.RequestedLifetimeCount
	sub.MaxKeepAliveCount = req.RequestedMaxKeepAliveCount
	if sub.MaxKeepAliveCount == 0 {
		sub.MaxKeepAliveCount = 10
	}
	// The lifetime must cover at least three keep-alive periods.
	if sub.LifetimeCount < 3*sub.MaxKeepAliveCount {
		sub.LifetimeCount = 3 * sub.MaxKeepAliveCount
	}
	sub.MaxNotificationsPerPublish = req.MaxNotificationsPerPublish
	sub.Priority = req.Priority
	sub.PublishingEnabled = req.PublishingEnabled
	sub.nextCycleAt = e.clock.NowMonotonic() + sub.PublishingInterval

	ss.subs[sub.ID] = sub
	e.bySubID[sub.ID] = sessionID

	logger.Category("subscription").Info("subscription created",
		logger.KeySubscriptionID, sub.ID,
		logger.KeySessionID, sessionID.String(),
		"publishing_interval_ms", sub.PublishingInterval.Milliseconds())
	return sub, ua.StatusGood
}

func (e *Engine) clampInterval(requestedMS float64) time.Duration {
	interval := time.Duration(requestedMS * float64(time.Millisecond))
	if interval < e.config.MinPublishingInterval {
		interval = e.config.MinPublishingInterval
	}
	if e.config.MaxPublishingInterval > 0 && interval > e.config.MaxPublishingInterval {
		interval = e.config.MaxPublishingInterval
	}
	return interval
}

// Get resolves a subscription owned by the given session.
func (e *Engine) Get(sessionID ua.NodeID, subID uint32) (*Subscription, ua.StatusCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.getLocked(sessionID, subID)
}

func (e *Engine) getLocked(sessionID ua.NodeID, subID uint32) (*Subscription, ua.StatusCode) {
	owner, ok := e.bySubID[subID]
	if !ok || owner != sessionID {
		return nil, ua.StatusBadSubscriptionIDInvalid
	}
	return e.sessions[owner].subs[subID], ua.StatusGood
}

// Modify updates subscription parameters.
func (e *Engine) Modify(sessionID ua.NodeID, req *ua.ModifySubscriptionRequest) (*Subscription, ua.StatusCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sub, status := e.getLocked(sessionID, req.SubscriptionID)
	if status != ua.StatusGood {
		return nil, status
	}
	sub.PublishingInterval = e.clampInterval(req.RequestedPublishingInterval)
	sub.LifetimeCount = req.RequestedLifetimeCount
	sub.MaxKeepAliveCount = req.RequestedMaxKeepAliveCount
	if sub.MaxKeepAliveCount == 0 {
		sub.MaxKeepAliveCount = 10
	}
	if sub.LifetimeCount < 3*sub.MaxKeepAliveCount {
		sub.LifetimeCount = 3 * sub.MaxKeepAliveCount
	}
	sub.MaxNotificationsPerPublish = req.MaxNotificationsPerPublish
	sub.Priority = req.Priority
	return sub, ua.StatusGood
}

// SetPublishingMode flips publishing for a set of subscriptions.
func (e *Engine) SetPublishingMode(sessionID ua.NodeID, enabled bool, subIDs []uint32) []ua.StatusCode {
	e.mu.Lock()
	defer e.mu.Unlock()
	results := make([]ua.StatusCode, len(subIDs))
	for i, id := range subIDs {
		sub, status := e.getLocked(sessionID, id)
		results[i] = status
		if status == ua.StatusGood {
			sub.PublishingEnabled = enabled
		}
	}
	return results
}

// Delete removes subscriptions owned by the session.
func (e *Engine) Delete(sessionID ua.NodeID, subIDs []uint32) []ua.StatusCode {
	e.mu.Lock()
	defer e.mu.Unlock()
	results := make([]ua.StatusCode, len(subIDs))
	for i, id := range subIDs {
		_, status := e.getLocked(sessionID, id)
		results[i] = status
		if status == ua.StatusGood {
			delete(e.sessions[sessionID].subs, id)
			delete(e.bySubID, id)
		}
	}
	return results
}

// Acknowledge processes the acknowledgements of a Publish request.
func (e *Engine) Acknowledge(sessionID ua.NodeID, acks []ua.SubscriptionAcknowledgement) []ua.StatusCode {
	e.mu.Lock()
	defer e.mu.Unlock()
	results := make([]ua.StatusCode, len(acks))
	for i, ack := range acks {
		sub, status := e.getLocked(sessionID, ack.SubscriptionID)
		if status != ua.StatusGood {
			results[i] = ua.StatusBadSubscriptionIDInvalid
			continue
		}
		results[i] = sub.Acknowledge(ack.SequenceNumber)
	}
	return results
}

// Republish returns a retained notification.
func (e *Engine) Republish(sessionID ua.NodeID, subID, sequence uint32) (ua.NotificationMessage, ua.StatusCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sub, status := e.getLocked(sessionID, subID)
	if status != ua.StatusGood {
		return ua.NotificationMessage{}, status
	}
	return sub.Republish(sequence)
}

// Park queues a Publish request on the session. Parking resets the
// lifetime counters of the session's subscriptions. Returns false when the
// publish queue is full.
func (e *Engine) Park(sessionID ua.NodeID, p *ParkedPublish) bool {
	e.mu.Lock()
	ss := e.sessionLocked(sessionID)
	if e.config.MaxPublishRequests > 0 && len(ss.parked) >= e.config.MaxPublishRequests {
		e.mu.Unlock()
		return false
	}
	ss.parked = append(ss.parked, p)
	for _, sub := range ss.subs {
		sub.lifetimeCounter = 0
	}
	// A queued status change or unsent notification can satisfy the
	// request immediately.
	responses := e.satisfyLocked(ss)
	e.mu.Unlock()

	for _, fn := range responses {
		fn()
	}
	return true
}

// Count returns the total number of live subscriptions.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.bySubID)
}

// HasSubscriptions reports whether the session owns any subscription.
func (e *Engine) HasSubscriptions(sessionID ua.NodeID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ss := e.sessions[sessionID]
	return ss != nil && len(ss.subs) > 0
}

// satisfyLocked matches parked publish requests against queued status
// changes and unsent notifications. It returns the response closures to
// run outside the lock.
func (e *Engine) satisfyLocked(ss *sessionSubs) []func() {
	var out []func()
	for len(ss.parked) > 0 {
		parked := ss.parked[0]

		if len(ss.statusChanges) > 0 {
			resp := ss.statusChanges[0]
			ss.statusChanges = ss.statusChanges[1:]
			ss.parked = ss.parked[1:]
			out = append(out, func() { parked.Respond(&resp) })
			continue
		}

		matched := false
		for _, sub := range ss.subs {
			if msg, ok := sub.takeUnsent(); ok {
				resp := &ua.PublishResponse{
					SubscriptionID:           sub.ID,
					AvailableSequenceNumbers: sub.AvailableSequenceNumbers(),
					NotificationMessage:      msg,
				}
				ss.parked = ss.parked[1:]
				out = append(out, func() { parked.Respond(resp) })
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	return out
}

// Tick runs one engine iteration: expire parked requests, run due publish
// cycles, and deliver what can be delivered.
func (e *Engine) Tick() {
	now := e.clock.NowMonotonic()
	wall := e.clock.Now()

	e.mu.Lock()
	var responses []func()

	for sessionID, ss := range e.sessions {
		// Expire parked publish requests past their deadline.
		kept := ss.parked[:0]
		for _, p := range ss.parked {
			if p.Deadline != 0 && p.Deadline < now {
				parked := p
				responses = append(responses, func() {
					parked.Respond(&ua.PublishResponse{
						ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusBadTimeout},
					})
				})
				continue
			}
			kept = append(kept, p)
		}
		ss.parked = kept

		for subID, sub := range ss.subs {
			if !sub.due(now) {
				continue
			}
			msg, ok := sub.cycle(e.store, now, wall)
			if ok {
				if len(ss.parked) > 0 {
					parked := ss.parked[0]
					ss.parked = ss.parked[1:]
					resp := &ua.PublishResponse{
						SubscriptionID:           sub.ID,
						AvailableSequenceNumbers: sub.AvailableSequenceNumbers(),
						NotificationMessage:      msg,
					}
					responses = append(responses, func() { parked.Respond(resp) })
				} else if len(msg.NotificationData) > 0 {
					// No publish waiting: keep real notifications for a
					// later Publish; keep-alives just evaporate.
					sub.pushUnsent(msg)
				}
			}

			// Lifetime: cycles without any client publish activity.
			if len(ss.parked) == 0 {
				sub.lifetimeCounter++
				if sub.lifetimeCounter >= sub.LifetimeCount && sub.LifetimeCount > 0 {
					logger.Category("subscription").Info("subscription lifetime expired",
						logger.KeySubscriptionID, subID,
						logger.KeySessionID, sessionID.String())
					delete(ss.subs, subID)
					delete(e.bySubID, subID)
					ss.statusChanges = append(ss.statusChanges, ua.PublishResponse{
						SubscriptionID: subID,
						NotificationMessage: ua.NotificationMessage{
							SequenceNumber: sub.nextSequence,
							PublishTime:    wall,
							NotificationData: []*ua.ExtensionObject{
								uabin.NewExtensionObject(ua.IDStatusChangeNotificationEncoding, &ua.StatusChangeNotification{
									Status: ua.StatusBadTimeout,
								}),
							},
						},
					})
				}
			}
		}

		responses = append(responses, e.satisfyLocked(ss)...)
	}
	e.mu.Unlock()

	for _, fn := range responses {
		fn()
	}
}

// NextDue returns the earliest next cycle time across all subscriptions,
// or 0 when none exist.
func (e *Engine) NextDue() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	var next time.Duration
	for _, ss := range e.sessions {
		for _, sub := range ss.subs {
			if next == 0 || sub.nextCycleAt < next {
				next = sub.nextCycleAt
			}
		}
	}
	return next
}

// DropSession releases everything the session owns: subscriptions die and
// parked publish requests resolve with BadSessionClosed.
func (e *Engine) DropSession(sessionID ua.NodeID) {
	e.mu.Lock()
	ss := e.sessions[sessionID]
	if ss == nil {
		e.mu.Unlock()
		return
	}
	delete(e.sessions, sessionID)
	for subID := range ss.subs {
		delete(e.bySubID, subID)
	}
	parked := ss.parked
	e.mu.Unlock()

	for _, p := range parked {
		p.Respond(&ua.PublishResponse{
			ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusBadSessionClosed},
		})
	}
}
