// Package securechannel implements the server side of UA secure channels:
// token issue and renewal, token revolution, per-direction sequence
// numbers, and the manager that owns channel lifetime.
package securechannel

import (
	"sync"
	"time"

	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/transport"
	"github.com/marmos91/opcuad/pkg/ua"
)

// sequence numbers may wrap from near 2^32-1 back to a small value; both
// bounds come from the UA-SC rules.
const (
	sequenceWrapThreshold = 4294966271 // 2^32 - 1 - 1024
	sequenceWrapLimit     = 1024
)

// State of a secure channel.
type State int

const (
	StateNew State = iota
	StateOpen
	StateRenewing
	StateClosing
	StateClosed
)

// Channel is one secure channel. Fields are guarded by mu; the manager
// holds the channel map lock separately.
type Channel struct {
	mu sync.Mutex

	ID    uint32
	State State

	SecurityToken ua.ChannelSecurityToken
	// NextToken is the renewed token; TokenID 0 means none pending. It
	// becomes active when the client first references it (revolve).
	NextToken ua.ChannelSecurityToken

	// CreatedAt is monotonic; CreatedAt + RevisedLifetime is the expiry.
	CreatedAt       time.Duration
	RevisedLifetime time.Duration

	ClientNonce []byte
	ServerNonce []byte

	PolicyURI string
	Policy    security.Policy
	Mode      ua.MessageSecurityMode

	Transport transport.Transport
	Assembler *transport.Assembler
	Limits    transport.Limits

	sendSequence uint32
	recvSequence uint32
	recvStarted  bool

	// sessions are the ids of sessions bound to this channel.
	sessions map[ua.NodeID]struct{}
}

// NextSendSequence allocates the next outbound sequence number, wrapping
// to 1 after 2^32-1.
func (c *Channel) NextSendSequence() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendSequence == 0xFFFFFFFF {
		c.sendSequence = 1
	} else {
		c.sendSequence++
	}
	return c.sendSequence
}

// ValidateSequence checks one inbound sequence number. The first number a
// client sends is accepted as the series start; afterwards the series must
// increase by exactly one, with the permitted wrap near 2^32-1.
func (c *Channel) ValidateSequence(seq uint32) ua.StatusCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.recvStarted {
		c.recvStarted = true
		c.recvSequence = seq
		return ua.StatusGood
	}
	expected := c.recvSequence + 1
	if seq == expected {
		c.recvSequence = seq
		return ua.StatusGood
	}
	if c.recvSequence > sequenceWrapThreshold && seq < sequenceWrapLimit {
		c.recvSequence = seq
		return ua.StatusGood
	}
	return ua.StatusBadSecurityChecksFailed
}

// ValidateToken checks a token id referenced by a MSG chunk. Referencing
// the pending next token revolves it in.
func (c *Channel) ValidateToken(tokenID uint32) ua.StatusCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tokenID == c.SecurityToken.TokenID {
		return ua.StatusGood
	}
	if c.NextToken.TokenID != 0 && tokenID == c.NextToken.TokenID {
		c.revolveLocked()
		return ua.StatusGood
	}
	return ua.StatusBadSecureChannelTokenUnknown
}

// RevolveTokens activates a pending next token. Called by the cleanup scan
// as well, so a client that renews but stays silent still rolls over.
func (c *Channel) RevolveTokens() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.NextToken.TokenID != 0 {
		c.revolveLocked()
	}
}

func (c *Channel) revolveLocked() {
	c.SecurityToken = c.NextToken
	c.NextToken = ua.ChannelSecurityToken{}
	if c.State == StateRenewing {
		c.State = StateOpen
	}
}

// Expired reports whether the channel lifetime has elapsed.
func (c *Channel) Expired(nowMonotonic time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CreatedAt+c.RevisedLifetime < nowMonotonic
}

// HasPendingToken reports whether a renewal awaits revolution.
func (c *Channel) HasPendingToken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.NextToken.TokenID != 0
}

// AttachSession binds a session id to the channel.
func (c *Channel) AttachSession(sessionID ua.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions == nil {
		c.sessions = make(map[ua.NodeID]struct{})
	}
	c.sessions[sessionID] = struct{}{}
}

// DetachSession unbinds a session id.
func (c *Channel) DetachSession(sessionID ua.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
}

// HasSession reports whether the session is bound to this channel.
func (c *Channel) HasSession(sessionID ua.NodeID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[sessionID]
	return ok
}

// SessionCount returns the number of bound sessions.
func (c *Channel) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// SessionIDs snapshots the bound session ids.
func (c *Channel) SessionIDs() []ua.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]ua.NodeID, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	return ids
}

// ConnectionLost reports whether the underlying transport is gone.
func (c *Channel) ConnectionLost() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Transport == nil
}

// DetachTransport drops the transport reference (on connection loss).
func (c *Channel) DetachTransport() {
	c.mu.Lock()
	c.Transport = nil
	c.mu.Unlock()
}
