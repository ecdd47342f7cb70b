package server

import (
	"crypto/rand"
	"sync"

	"github.com/marmos91/opcuad/pkg/ua"
)

// continuationPoint holds the unreturned remainder of a Browse result.
type continuationPoint struct {
	sessionID ua.NodeID
	remaining []ua.ReferenceDescription
	maxPerCall uint32
}

// continuationTable tracks browse continuation points per session, capped
// per session so a client cannot park unbounded state on the server.
type continuationTable struct {
	mu         sync.Mutex
	points     map[string]*continuationPoint
	perSession map[ua.NodeID]int
	maxPerSession int
}

func newContinuationTable(maxPerSession int) *continuationTable {
	return &continuationTable{
		points:        make(map[string]*continuationPoint),
		perSession:    make(map[ua.NodeID]int),
		maxPerSession: maxPerSession,
	}
}

// create registers a continuation point and returns its opaque id, or nil
// when the session is at its cap (BadNoContinuationPoints).
func (t *continuationTable) create(sessionID ua.NodeID, remaining []ua.ReferenceDescription, maxPerCall uint32) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.perSession[sessionID] >= t.maxPerSession {
		return nil
	}
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return nil
	}
	t.points[string(id)] = &continuationPoint{
		sessionID:  sessionID,
		remaining:  remaining,
		maxPerCall: maxPerCall,
	}
	t.perSession[sessionID]++
	return id
}

// take removes and returns a continuation point owned by the session.
func (t *continuationTable) take(sessionID ua.NodeID, id []byte) (*continuationPoint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp, ok := t.points[string(id)]
	if !ok || cp.sessionID != sessionID {
		return nil, false
	}
	delete(t.points, string(id))
	t.perSession[sessionID]--
	if t.perSession[sessionID] <= 0 {
		delete(t.perSession, sessionID)
	}
	return cp, true
}

// dropSession releases every continuation point of a session.
func (t *continuationTable) dropSession(sessionID ua.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, cp := range t.points {
		if cp.sessionID == sessionID {
			delete(t.points, id)
		}
	}
	delete(t.perSession, sessionID)
}
