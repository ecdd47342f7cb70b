package securechannel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opcuad/pkg/sched"
	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/transport"
	"github.com/marmos91/opcuad/pkg/ua"
)

// stubTransport satisfies transport.Transport for manager tests.
type stubTransport struct{}

func (stubTransport) Send([]byte) error                  { return nil }
func (stubTransport) Recv() (*transport.RawMessage, error) { return nil, transport.ErrClosed }
func (stubTransport) Close() error                       { return nil }
func (stubTransport) RemoteAddr() string                 { return "test" }

func newTestManager(maxChannels int) (*Manager, *sched.MockClock, *sched.DelayedQueue) {
	clock := sched.NewMockClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	delayed := sched.NewDelayedQueue()
	m := NewManager(Config{
		MaxChannels: maxChannels,
		MaxLifetime: time.Hour,
	}, clock, delayed, security.NewRegistry(), security.DeterministicNonceSource{Seed: 1})
	return m, clock, delayed
}

func openChannel(t *testing.T, m *Manager, lifetimeMS uint32) *Channel {
	t.Helper()
	ch, resp, status := m.Open(stubTransport{}, transport.DefaultLimits(), &ua.OpenSecureChannelRequest{
		RequestType:       ua.SecurityTokenIssue,
		SecurityMode:      ua.SecurityModeNone,
		ClientNonce:       []byte{1, 2, 3},
		RequestedLifetime: lifetimeMS,
	}, security.PolicyURINone)
	require.Equal(t, ua.StatusGood, status)
	require.NotNil(t, resp)
	return ch
}

func TestOpenAllocatesMonotonicIDs(t *testing.T) {
	m, _, _ := newTestManager(10)
	ch1 := openChannel(t, m, 3600000)
	ch2 := openChannel(t, m, 3600000)

	assert.Equal(t, uint32(1), ch1.ID)
	assert.Equal(t, uint32(1), ch1.SecurityToken.TokenID)
	assert.Equal(t, uint32(2), ch2.ID)
	assert.Equal(t, uint32(2), ch2.SecurityToken.TokenID)
	assert.Len(t, ch1.ServerNonce, 32)
}

func TestOpenRevisesLifetime(t *testing.T) {
	m, _, _ := newTestManager(10)

	ch := openChannel(t, m, 3600000)
	assert.Equal(t, uint32(3600000), ch.SecurityToken.RevisedLifetime)

	// Zero means maximum.
	ch = openChannel(t, m, 0)
	assert.Equal(t, uint32(time.Hour.Milliseconds()), ch.SecurityToken.RevisedLifetime)

	// Above the cap it is clamped.
	ch = openChannel(t, m, uint32((2 * time.Hour).Milliseconds()))
	assert.Equal(t, uint32(time.Hour.Milliseconds()), ch.SecurityToken.RevisedLifetime)
}

func TestOpenAtCapacityPurgesSessionless(t *testing.T) {
	m, _, delayed := newTestManager(2)
	ch1 := openChannel(t, m, 0)
	ch2 := openChannel(t, m, 0)

	// Both carry sessions: the third open fails.
	ch1.AttachSession(ua.NewStringNodeID(1, "s1"))
	ch2.AttachSession(ua.NewStringNodeID(1, "s2"))
	_, _, status := m.Open(stubTransport{}, transport.DefaultLimits(), &ua.OpenSecureChannelRequest{
		SecurityMode: ua.SecurityModeNone,
	}, security.PolicyURINone)
	assert.Equal(t, ua.StatusBadOutOfMemory, status)

	// Free one session: the next open purges that channel.
	ch1.DetachSession(ua.NewStringNodeID(1, "s1"))
	ch3 := openChannel(t, m, 0)
	delayed.Drain()
	assert.Equal(t, 2, m.Count())
	_, found := m.Get(ch1.ID)
	assert.False(t, found, "session-less channel must have been purged")
	_, found = m.Get(ch3.ID)
	assert.True(t, found)
}

func TestRenewInstallsNextTokenAndRevolves(t *testing.T) {
	m, _, _ := newTestManager(10)
	ch := openChannel(t, m, 3600000)
	firstToken := ch.SecurityToken.TokenID

	resp, status := m.Renew(ch, &ua.OpenSecureChannelRequest{
		RequestType:       ua.SecurityTokenRenew,
		RequestedLifetime: 3600000,
	})
	require.Equal(t, ua.StatusGood, status)
	assert.NotEqual(t, firstToken, resp.SecurityToken.TokenID)
	assert.Equal(t, ch.ID, resp.SecurityToken.ChannelID, "channel id is preserved")

	// Until the client references the new token, both are accepted.
	assert.Equal(t, ua.StatusGood, ch.ValidateToken(firstToken))
	assert.Equal(t, ua.StatusGood, ch.ValidateToken(resp.SecurityToken.TokenID))

	// Referencing the new token revolved it in; the old one is gone.
	assert.Equal(t, ua.StatusBadSecureChannelTokenUnknown, ch.ValidateToken(firstToken))
	assert.Equal(t, resp.SecurityToken.TokenID, ch.SecurityToken.TokenID)
}

func TestCleanupRemovesExpired(t *testing.T) {
	m, clock, delayed := newTestManager(10)
	ch := openChannel(t, m, 1000) // 1 s lifetime

	clock.Advance(500 * time.Millisecond)
	m.CleanupTimedOut()
	delayed.Drain()
	_, found := m.Get(ch.ID)
	assert.True(t, found, "channel within lifetime survives")

	clock.Advance(600 * time.Millisecond)
	m.CleanupTimedOut()
	delayed.Drain()
	_, found = m.Get(ch.ID)
	assert.False(t, found, "expired channel is removed")
}

func TestCloseIsDeferred(t *testing.T) {
	m, _, delayed := newTestManager(10)
	ch := openChannel(t, m, 0)

	m.Close(ch.ID)
	// The id no longer resolves, but the teardown ran deferred.
	_, found := m.Get(ch.ID)
	assert.False(t, found)
	assert.Equal(t, 1, delayed.Len())
	delayed.Drain()
	assert.Equal(t, StateClosed, ch.State)
}

func TestSequenceValidation(t *testing.T) {
	m, _, _ := newTestManager(10)
	ch := openChannel(t, m, 0)

	// The first value starts the series.
	assert.Equal(t, ua.StatusGood, ch.ValidateSequence(51))
	assert.Equal(t, ua.StatusGood, ch.ValidateSequence(52))

	// Gaps and replays are rejected.
	assert.Equal(t, ua.StatusBadSecurityChecksFailed, ch.ValidateSequence(52))
	assert.Equal(t, ua.StatusBadSecurityChecksFailed, ch.ValidateSequence(54))
}

func TestSequenceWrapAround(t *testing.T) {
	m, _, _ := newTestManager(10)
	ch := openChannel(t, m, 0)

	require.Equal(t, ua.StatusGood, ch.ValidateSequence(4294966800))
	// Wrap to a small value is permitted near the top of the range.
	assert.Equal(t, ua.StatusGood, ch.ValidateSequence(1))
	assert.Equal(t, ua.StatusGood, ch.ValidateSequence(2))
}

func TestNextSendSequenceWraps(t *testing.T) {
	m, _, _ := newTestManager(10)
	ch := openChannel(t, m, 0)
	ch.sendSequence = 0xFFFFFFFE
	assert.Equal(t, uint32(0xFFFFFFFF), ch.NextSendSequence())
	assert.Equal(t, uint32(1), ch.NextSendSequence(), "wraps to 1, not 0")
}
