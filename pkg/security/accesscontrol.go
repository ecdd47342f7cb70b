package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/ua"
)

// UserIdentity is the authenticated identity bound to a session.
type UserIdentity struct {
	// Anonymous is true for sessions activated without credentials.
	Anonymous bool
	// UserName is set for username/password identities.
	UserName string
	// PolicyID echoes the token policy the client selected.
	PolicyID string
}

// AccessControl is the authorization capability the server consults on
// session activation and on guarded operations.
type AccessControl interface {
	// ActivateSession validates an identity. A bad status rejects the
	// ActivateSession call.
	ActivateSession(identity UserIdentity) ua.StatusCode
	// AllowRead/AllowWrite/AllowCall gate individual operations.
	AllowRead(identity UserIdentity, nodeID ua.NodeID, attr ua.AttributeID) bool
	AllowWrite(identity UserIdentity, nodeID ua.NodeID, attr ua.AttributeID) bool
	AllowCall(identity UserIdentity, objectID, methodID ua.NodeID) bool
	// CloseSession is notified exactly once when a session ends, whether
	// by CloseSession, timeout or channel teardown.
	CloseSession(sessionID ua.NodeID)
}

// DefaultAccessControl permits anonymous sessions and optional
// username/password users with bcrypt-hashed credentials. All node
// operations are allowed; deployments with per-node policies supply their
// own AccessControl.
type DefaultAccessControl struct {
	mu             sync.RWMutex
	allowAnonymous bool
	users          map[string][]byte // username -> bcrypt hash
}

// NewDefaultAccessControl creates the default policy.
func NewDefaultAccessControl(allowAnonymous bool) *DefaultAccessControl {
	return &DefaultAccessControl{
		allowAnonymous: allowAnonymous,
		users:          make(map[string][]byte),
	}
}

// AddUser registers a username with a plaintext password, stored hashed.
func (ac *DefaultAccessControl) AddUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	ac.mu.Lock()
	ac.users[username] = hash
	ac.mu.Unlock()
	return nil
}

// VerifyPassword checks a username/password pair.
func (ac *DefaultAccessControl) VerifyPassword(username string, password []byte) bool {
	ac.mu.RLock()
	hash, ok := ac.users[username]
	ac.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, password) == nil
}

func (ac *DefaultAccessControl) ActivateSession(identity UserIdentity) ua.StatusCode {
	if identity.Anonymous {
		ac.mu.RLock()
		allowed := ac.allowAnonymous
		ac.mu.RUnlock()
		if !allowed {
			return ua.StatusBadIdentityTokenRejected
		}
		return ua.StatusGood
	}
	if identity.UserName == "" {
		return ua.StatusBadIdentityTokenInvalid
	}
	// Password verification happened during token validation; here the
	// identity has already been established.
	return ua.StatusGood
}

func (ac *DefaultAccessControl) AllowRead(UserIdentity, ua.NodeID, ua.AttributeID) bool {
	return true
}

func (ac *DefaultAccessControl) AllowWrite(UserIdentity, ua.NodeID, ua.AttributeID) bool {
	return true
}

func (ac *DefaultAccessControl) AllowCall(UserIdentity, ua.NodeID, ua.NodeID) bool {
	return true
}

func (ac *DefaultAccessControl) CloseSession(sessionID ua.NodeID) {
	logger.Category("security").Debug("session closed",
		logger.KeySessionID, sessionID.String())
}
