// Package session implements UA session lifecycle: creation, activation,
// channel binding and transfer, lifetime refresh and timeout teardown.
package session

import (
	"sync"
	"time"

	"github.com/marmos91/opcuad/pkg/securechannel"
	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/ua"
)

// Session is one authenticated logical context, bound at any time to at
// most one secure channel.
type Session struct {
	mu sync.Mutex

	// ID is the session NodeId (a GUID in namespace 1).
	ID ua.NodeID
	// AuthToken authenticates requests on this session.
	AuthToken ua.NodeID
	// Name is the client-supplied session name, for diagnostics.
	Name string

	Channel   *securechannel.Channel
	Activated bool

	// Timeout is the revised session timeout; ValidTill the monotonic
	// deadline, pushed forward by every successful service call.
	Timeout   time.Duration
	ValidTill time.Duration

	Identity security.UserIdentity

	// ServerNonce is the nonce issued with the last Create/Activate
	// response; ActivateSession does not check a client signature against it.
	ServerNonce []byte

	// MaxResponseMessageSize is the client's limit, 0 = none.
	MaxResponseMessageSize uint32
}

// Touch pushes the deadline forward by the session timeout.
func (s *Session) Touch(nowMonotonic time.Duration) {
	s.mu.Lock()
	s.ValidTill = nowMonotonic + s.Timeout
	s.mu.Unlock()
}

// Expired reports whether the deadline passed.
func (s *Session) Expired(nowMonotonic time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ValidTill < nowMonotonic
}

// Deadline returns the current monotonic deadline.
func (s *Session) Deadline() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ValidTill
}

// BindChannel attaches the session to a channel, detaching it from the
// previous one (session transfer).
func (s *Session) BindChannel(ch *securechannel.Channel) {
	s.mu.Lock()
	prev := s.Channel
	s.Channel = ch
	s.mu.Unlock()

	if prev != nil && prev != ch {
		prev.DetachSession(s.ID)
	}
	if ch != nil {
		ch.AttachSession(s.ID)
	}
}

// BoundChannel returns the currently bound channel, nil when unbound.
func (s *Session) BoundChannel() *securechannel.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Channel
}

// Unbind detaches the session from its channel without closing it. The
// session survives until its own timeout so the client may transfer it to
// a new channel.
func (s *Session) Unbind() {
	s.mu.Lock()
	ch := s.Channel
	s.Channel = nil
	s.mu.Unlock()
	if ch != nil {
		ch.DetachSession(s.ID)
	}
}

// Activate marks the session activated with the given identity.
func (s *Session) Activate(identity security.UserIdentity) {
	s.mu.Lock()
	s.Activated = true
	s.Identity = identity
	s.mu.Unlock()
}

// IsActivated reports the activation state.
func (s *Session) IsActivated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Activated
}
