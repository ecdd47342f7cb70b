package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opcuad/pkg/sched"
	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/ua"
)

// recordingAccessControl counts CloseSession notifications per session.
type recordingAccessControl struct {
	security.AccessControl
	mu     sync.Mutex
	closed map[ua.NodeID]int
}

func newRecordingAC() *recordingAccessControl {
	return &recordingAccessControl{
		AccessControl: security.NewDefaultAccessControl(true),
		closed:        make(map[ua.NodeID]int),
	}
}

func (ac *recordingAccessControl) CloseSession(id ua.NodeID) {
	ac.mu.Lock()
	ac.closed[id]++
	ac.mu.Unlock()
}

func (ac *recordingAccessControl) closedCount(id ua.NodeID) int {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.closed[id]
}

func newTestManager(maxSessions int) (*Manager, *sched.MockClock, *sched.DelayedQueue, *recordingAccessControl) {
	clock := sched.NewMockClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	delayed := sched.NewDelayedQueue()
	ac := newRecordingAC()
	m := NewManager(Config{
		MaxSessions: maxSessions,
		MinTimeout:  time.Millisecond,
		MaxTimeout:  time.Hour,
	}, clock, delayed, ac)
	return m, clock, delayed, ac
}

func TestCreateAssignsUniqueIdentifiers(t *testing.T) {
	m, _, _, _ := newTestManager(10)
	s1, status := m.Create("one", time.Minute, 0)
	require.Equal(t, ua.StatusGood, status)
	s2, status := m.Create("two", time.Minute, 0)
	require.Equal(t, ua.StatusGood, status)

	assert.NotEqual(t, s1.ID, s2.ID)
	assert.NotEqual(t, s1.AuthToken, s2.AuthToken)
	assert.Equal(t, uint16(1), s1.ID.Namespace, "session ids live in namespace 1")
	assert.Equal(t, ua.IDTypeGUID, s1.ID.Type)
	assert.False(t, s1.IsActivated(), "sessions start unactivated")
}

func TestCreateClampsTimeout(t *testing.T) {
	m, _, _, _ := newTestManager(10)

	s, _ := m.Create("tiny", time.Nanosecond, 0)
	assert.Equal(t, time.Millisecond, s.Timeout)

	s, _ = m.Create("huge", 48*time.Hour, 0)
	assert.Equal(t, time.Hour, s.Timeout)
}

func TestCreateTooManySessions(t *testing.T) {
	m, _, _, _ := newTestManager(2)
	_, status := m.Create("a", time.Minute, 0)
	require.Equal(t, ua.StatusGood, status)
	_, status = m.Create("b", time.Minute, 0)
	require.Equal(t, ua.StatusGood, status)
	_, status = m.Create("c", time.Minute, 0)
	assert.Equal(t, ua.StatusBadTooManySessions, status)
}

func TestGetByToken(t *testing.T) {
	m, _, _, _ := newTestManager(10)
	s, _ := m.Create("s", time.Minute, 0)

	got, ok := m.GetByToken(s.AuthToken)
	require.True(t, ok)
	assert.Equal(t, s.ID, got.ID)

	_, ok = m.GetByToken(ua.NewStringNodeID(1, "bogus"))
	assert.False(t, ok)
}

func TestTouchExtendsDeadline(t *testing.T) {
	m, clock, _, _ := newTestManager(10)
	s, _ := m.Create("s", time.Second, 0)
	first := s.Deadline()

	clock.Advance(500 * time.Millisecond)
	s.Touch(clock.NowMonotonic())
	assert.Greater(t, s.Deadline(), first, "touch must push the deadline forward")
}

func TestCleanupTimedOutNotifiesOnce(t *testing.T) {
	m, clock, delayed, ac := newTestManager(10)
	s, _ := m.Create("short", time.Second, 0)
	s.Activate(security.UserIdentity{Anonymous: true})

	clock.Advance(1500 * time.Millisecond)
	m.CleanupTimedOut()
	delayed.Drain()

	_, ok := m.GetByToken(s.AuthToken)
	assert.False(t, ok, "expired session must be gone")
	assert.Equal(t, 1, ac.closedCount(s.ID), "close_session exactly once")

	// A second scan must not notify again.
	m.CleanupTimedOut()
	delayed.Drain()
	assert.Equal(t, 1, ac.closedCount(s.ID))
}

func TestRemoveNotifiesOnce(t *testing.T) {
	m, _, delayed, ac := newTestManager(10)
	s, _ := m.Create("s", time.Minute, 0)

	require.True(t, m.Remove(s.ID))
	delayed.Drain()
	assert.Equal(t, 1, ac.closedCount(s.ID))

	assert.False(t, m.Remove(s.ID), "double remove is a no-op")
	assert.Equal(t, 1, ac.closedCount(s.ID))
}

func TestRemoveHookRuns(t *testing.T) {
	m, _, delayed, _ := newTestManager(10)
	var dropped []ua.NodeID
	m.SetRemoveHook(func(id ua.NodeID) { dropped = append(dropped, id) })

	s, _ := m.Create("s", time.Minute, 0)
	m.Remove(s.ID)
	delayed.Drain()
	assert.Equal(t, []ua.NodeID{s.ID}, dropped)
}
