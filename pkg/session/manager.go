package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/sched"
	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/ua"
)

// Config bounds the session manager.
type Config struct {
	// MaxSessions caps concurrently live sessions.
	MaxSessions int
	// MinTimeout/MaxTimeout clamp the requested session timeout.
	MinTimeout time.Duration
	MaxTimeout time.Duration
}

// Manager owns all sessions, indexed by session id and by authentication
// token. Removal is deferred through the delayed-callback queue.
type Manager struct {
	mu       sync.Mutex
	sessions map[ua.NodeID]*Session // by session id
	byToken  map[ua.NodeID]*Session // by auth token

	config        Config
	clock         sched.Clock
	delayed       *sched.DelayedQueue
	accessControl security.AccessControl

	// onRemove is notified (under no lock) for every removed session, so
	// the subscription engine can release owned subscriptions and parked
	// publish requests.
	onRemove func(sessionID ua.NodeID)
}

// NewManager creates a session manager.
func NewManager(config Config, clock sched.Clock, delayed *sched.DelayedQueue, ac security.AccessControl) *Manager {
	return &Manager{
		sessions:      make(map[ua.NodeID]*Session),
		byToken:       make(map[ua.NodeID]*Session),
		config:        config,
		clock:         clock,
		delayed:       delayed,
		accessControl: ac,
	}
}

// SetRemoveHook installs the removal callback.
func (m *Manager) SetRemoveHook(fn func(sessionID ua.NodeID)) {
	m.onRemove = fn
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Create allocates an unactivated session with fresh GUID identifiers.
func (m *Manager) Create(name string, requestedTimeout time.Duration, maxResponseSize uint32) (*Session, ua.StatusCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		return nil, ua.StatusBadTooManySessions
	}

	timeout := requestedTimeout
	if timeout < m.config.MinTimeout {
		timeout = m.config.MinTimeout
	}
	if timeout > m.config.MaxTimeout {
		timeout = m.config.MaxTimeout
	}

	s := &Session{
		ID:                     ua.NewGUIDNodeID(1, uuid.New()),
		AuthToken:              ua.NewGUIDNodeID(1, uuid.New()),
		Name:                   name,
		Timeout:                timeout,
		ValidTill:              m.clock.NowMonotonic() + timeout,
		MaxResponseMessageSize: maxResponseSize,
	}
	m.sessions[s.ID] = s
	m.byToken[s.AuthToken] = s

	logger.Category("session").Info("session created",
		logger.KeySessionID, s.ID.String(),
		logger.KeySessionName, name,
		"timeout_ms", timeout.Milliseconds())
	return s, ua.StatusGood
}

// GetByToken resolves a session by its authentication token.
func (m *Manager) GetByToken(token ua.NodeID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token]
	return s, ok
}

// Get resolves a session by its session id.
func (m *Manager) Get(id ua.NodeID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove tears a session down: it leaves the maps immediately, access
// control is notified exactly once, and the final detach runs deferred.
func (m *Manager) Remove(id ua.NodeID) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		delete(m.byToken, s.AuthToken)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.removeDeferred(s)
	return true
}

func (m *Manager) removeDeferred(s *Session) {
	m.accessControl.CloseSession(s.ID)
	if m.onRemove != nil {
		m.onRemove(s.ID)
	}
	m.delayed.Add(func() {
		s.Unbind()
		logger.Category("session").Debug("session removed",
			logger.KeySessionID, s.ID.String())
	})
}

// CleanupTimedOut removes sessions whose deadline passed. Runs on the
// periodic scan shared with the channel manager.
func (m *Manager) CleanupTimedOut() {
	now := m.clock.NowMonotonic()
	m.mu.Lock()
	var removed []*Session
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			delete(m.byToken, s.AuthToken)
			removed = append(removed, s)
		}
	}
	m.mu.Unlock()

	for _, s := range removed {
		logger.Category("session").Info("session timed out",
			logger.KeySessionID, s.ID.String(),
			logger.KeySessionName, s.Name)
		m.removeDeferred(s)
	}
}

// UnbindChannel detaches the given sessions from their channel.
// The sessions survive until their own timeout to allow transfer.
func (m *Manager) UnbindChannel(sessionIDs []ua.NodeID) {
	for _, id := range sessionIDs {
		if s, ok := m.Get(id); ok {
			s.Unbind()
		}
	}
}

// CloseAll removes every session (server shutdown).
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[ua.NodeID]*Session)
	m.byToken = make(map[ua.NodeID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		m.removeDeferred(s)
	}
}
