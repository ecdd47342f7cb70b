package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opcuad/pkg/nodestore"
	"github.com/marmos91/opcuad/pkg/sched"
	"github.com/marmos91/opcuad/pkg/ua"
)

func newTestEngine(t *testing.T) (*Engine, *sched.MockClock, *nodestore.Store, ua.NodeID) {
	t.Helper()
	clock := sched.NewMockClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	store := nodestore.New("urn:test:server")

	varID := ua.NewStringNodeID(1, "the.answer")
	_, status := store.Insert(&nodestore.Node{
		ID:          varID,
		Class:       ua.NodeClassVariable,
		BrowseName:  ua.NewQualifiedName(1, "the.answer"),
		DataType:    ua.NewNumericNodeID(0, ua.IDBaseDataType),
		ValueRank:   ua.ValueRankScalar,
		AccessLevel: ua.AccessLevelCurrentRead | ua.AccessLevelCurrentWrite,
		Value:       ua.NewDataValue(ua.NewVariant(int32(42))),
	})
	require.Equal(t, ua.StatusGood, status)

	engine := NewEngine(Config{
		MaxSubscriptionsPerSession: 10,
		MaxMonitoredItemsPerSub:    100,
		MinPublishingInterval:      10 * time.Millisecond,
		MaxPublishRequests:         10,
	}, clock, store)
	return engine, clock, store, varID
}

func createTestSubscription(t *testing.T, e *Engine, sessionID ua.NodeID) *Subscription {
	t.Helper()
	sub, status := e.CreateSubscription(sessionID, &ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: 100,
		RequestedLifetimeCount:      100,
		RequestedMaxKeepAliveCount:  10,
		PublishingEnabled:           true,
	})
	require.Equal(t, ua.StatusGood, status)
	return sub
}

func addValueItem(sub *Subscription, varID ua.NodeID, clientHandle uint32) *MonitoredItem {
	return sub.AddItem(ua.ReadValueID{
		NodeID:      varID,
		AttributeID: ua.AttrValue,
	}, ua.MonitoringReporting, ua.MonitoringParameters{
		ClientHandle:     clientHandle,
		SamplingInterval: 50,
		QueueSize:        10,
		DiscardOldest:    true,
	}, ua.DataChangeFilter{Trigger: ua.TriggerStatusValue})
}

// park queues a publish request capturing the responses it receives.
func park(e *Engine, sessionID ua.NodeID, out *[]*ua.PublishResponse) bool {
	return e.Park(sessionID, &ParkedPublish{
		Respond: func(resp *ua.PublishResponse) { *out = append(*out, resp) },
	})
}

func writeValue(t *testing.T, store *nodestore.Store, id ua.NodeID, v int32) {
	t.Helper()
	status := store.WriteAttribute(id, ua.AttrValue, "", ua.NewDataValue(ua.NewVariant(v)))
	require.Equal(t, ua.StatusGood, status)
}

func dataChange(t *testing.T, resp *ua.PublishResponse) *ua.DataChangeNotification {
	t.Helper()
	require.NotEmpty(t, resp.NotificationMessage.NotificationData)
	notif, ok := resp.NotificationMessage.NotificationData[0].Decoded.(*ua.DataChangeNotification)
	require.True(t, ok, "expected DataChangeNotification, got %T",
		resp.NotificationMessage.NotificationData[0].Decoded)
	return notif
}

func TestPublishCycleDeliversDataChange(t *testing.T) {
	engine, clock, store, varID := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	sub := createTestSubscription(t, engine, sessionID)
	addValueItem(sub, varID, 77)

	var responses []*ua.PublishResponse
	require.True(t, park(engine, sessionID, &responses))

	// First cycle samples the initial value and reports it.
	clock.Advance(100 * time.Millisecond)
	engine.Tick()
	require.Len(t, responses, 1)
	notif := dataChange(t, responses[0])
	require.Len(t, notif.MonitoredItems, 1)
	assert.Equal(t, uint32(77), notif.MonitoredItems[0].ClientHandle)
	assert.Equal(t, int32(42), notif.MonitoredItems[0].Value.Value.Int32())
	assert.Equal(t, uint32(1), responses[0].NotificationMessage.SequenceNumber)

	// A value change produces the next notification with sequence 2.
	require.True(t, park(engine, sessionID, &responses))
	writeValue(t, store, varID, 43)
	clock.Advance(100 * time.Millisecond)
	engine.Tick()
	require.Len(t, responses, 2)
	notif = dataChange(t, responses[1])
	assert.Equal(t, int32(43), notif.MonitoredItems[0].Value.Value.Int32())
	assert.Equal(t, uint32(2), responses[1].NotificationMessage.SequenceNumber)
}

func TestNoChangeNoNotification(t *testing.T) {
	engine, clock, _, varID := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	sub := createTestSubscription(t, engine, sessionID)
	addValueItem(sub, varID, 1)

	var responses []*ua.PublishResponse
	require.True(t, park(engine, sessionID, &responses))

	// First cycle delivers the initial sample.
	clock.Advance(100 * time.Millisecond)
	engine.Tick()
	require.Len(t, responses, 1)

	// Unchanged value: no notification on the next cycle.
	require.True(t, park(engine, sessionID, &responses))
	clock.Advance(100 * time.Millisecond)
	engine.Tick()
	assert.Len(t, responses, 1)
}

func TestKeepAliveAfterIdleCycles(t *testing.T) {
	engine, clock, _, varID := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	sub, status := engine.CreateSubscription(sessionID, &ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: 100,
		RequestedLifetimeCount:      100,
		RequestedMaxKeepAliveCount:  3,
		PublishingEnabled:           true,
	})
	require.Equal(t, ua.StatusGood, status)
	addValueItem(sub, varID, 1)

	var responses []*ua.PublishResponse
	require.True(t, park(engine, sessionID, &responses))

	// Consume the initial-value notification.
	clock.Advance(100 * time.Millisecond)
	engine.Tick()
	require.Len(t, responses, 1)
	firstSeq := responses[0].NotificationMessage.SequenceNumber

	// Three idle cycles produce a keep-alive.
	require.True(t, park(engine, sessionID, &responses))
	for i := 0; i < 3; i++ {
		clock.Advance(100 * time.Millisecond)
		engine.Tick()
	}
	require.Len(t, responses, 2)
	keepAlive := responses[1]
	assert.Empty(t, keepAlive.NotificationMessage.NotificationData, "keep-alive is empty")
	assert.Greater(t, keepAlive.NotificationMessage.SequenceNumber, firstSeq)
}

func TestRepublishRetention(t *testing.T) {
	engine, clock, _, varID := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	sub := createTestSubscription(t, engine, sessionID)
	addValueItem(sub, varID, 5)

	var responses []*ua.PublishResponse
	require.True(t, park(engine, sessionID, &responses))
	clock.Advance(100 * time.Millisecond)
	engine.Tick()
	require.Len(t, responses, 1)
	seq := responses[0].NotificationMessage.SequenceNumber

	// Unacknowledged: republish returns the same message.
	msg, status := engine.Republish(sessionID, sub.ID, seq)
	require.Equal(t, ua.StatusGood, status)
	assert.Equal(t, seq, msg.SequenceNumber)

	// Acknowledge removes the retained copy.
	results := engine.Acknowledge(sessionID, []ua.SubscriptionAcknowledgement{
		{SubscriptionID: sub.ID, SequenceNumber: seq},
	})
	require.Equal(t, []ua.StatusCode{ua.StatusGood}, results)

	_, status = engine.Republish(sessionID, sub.ID, seq)
	assert.Equal(t, ua.StatusBadMessageNotAvailable, status)
}

func TestAcknowledgeUnknownSubscription(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	results := engine.Acknowledge(sessionID, []ua.SubscriptionAcknowledgement{
		{SubscriptionID: 999, SequenceNumber: 1},
	})
	assert.Equal(t, []ua.StatusCode{ua.StatusBadSubscriptionIDInvalid}, results)
}

func TestNotificationRetainedUntilPublish(t *testing.T) {
	engine, clock, _, varID := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	sub := createTestSubscription(t, engine, sessionID)
	addValueItem(sub, varID, 9)

	// A cycle with no parked publish keeps the message.
	clock.Advance(100 * time.Millisecond)
	engine.Tick()

	// Parking afterwards delivers it immediately.
	var responses []*ua.PublishResponse
	require.True(t, park(engine, sessionID, &responses))
	require.Len(t, responses, 1)
	assert.Equal(t, uint32(1), responses[0].NotificationMessage.SequenceNumber)
}

func TestSubscriptionOwnership(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	owner := ua.NewStringNodeID(1, "owner")
	other := ua.NewStringNodeID(1, "other")
	sub := createTestSubscription(t, engine, owner)

	_, status := engine.Get(other, sub.ID)
	assert.Equal(t, ua.StatusBadSubscriptionIDInvalid, status,
		"a subscription belongs to exactly one session")
}

func TestSequenceNumbersGapFree(t *testing.T) {
	engine, clock, store, varID := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	sub := createTestSubscription(t, engine, sessionID)
	addValueItem(sub, varID, 1)

	var responses []*ua.PublishResponse
	next := int32(100)
	for i := 0; i < 5; i++ {
		require.True(t, park(engine, sessionID, &responses))
		writeValue(t, store, varID, next)
		next++
		clock.Advance(100 * time.Millisecond)
		engine.Tick()
	}
	require.Len(t, responses, 5)
	for i, resp := range responses {
		assert.Equal(t, uint32(i+1), resp.NotificationMessage.SequenceNumber,
			"sequence numbers must be gap-free and strictly increasing")
	}
}

func TestDeleteSubscription(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	sub := createTestSubscription(t, engine, sessionID)

	results := engine.Delete(sessionID, []uint32{sub.ID, 999})
	assert.Equal(t, []ua.StatusCode{ua.StatusGood, ua.StatusBadSubscriptionIDInvalid}, results)
	assert.False(t, engine.HasSubscriptions(sessionID))
}

func TestDropSessionResolvesParked(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	createTestSubscription(t, engine, sessionID)

	var responses []*ua.PublishResponse
	require.True(t, park(engine, sessionID, &responses))

	engine.DropSession(sessionID)
	require.Len(t, responses, 1)
	assert.Equal(t, ua.StatusBadSessionClosed, responses[0].ResponseHeader.ServiceResult)
	assert.False(t, engine.HasSubscriptions(sessionID))
}

func TestLifetimeExpiryQueuesStatusChange(t *testing.T) {
	engine, clock, _, varID := newTestEngine(t)
	sessionID := ua.NewStringNodeID(1, "session")
	sub, status := engine.CreateSubscription(sessionID, &ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: 100,
		RequestedLifetimeCount:      30,
		RequestedMaxKeepAliveCount:  10,
		PublishingEnabled:           true,
	})
	require.Equal(t, ua.StatusGood, status)
	addValueItem(sub, varID, 1)

	// Run cycles with no publish activity until the lifetime expires.
	for i := 0; i < 31; i++ {
		clock.Advance(100 * time.Millisecond)
		engine.Tick()
	}
	assert.False(t, engine.HasSubscriptions(sessionID), "subscription must be deleted")

	// The status change is delivered on the next publish.
	var responses []*ua.PublishResponse
	require.True(t, park(engine, sessionID, &responses))
	require.Len(t, responses, 1)
	require.NotEmpty(t, responses[0].NotificationMessage.NotificationData)
	change, ok := responses[0].NotificationMessage.NotificationData[0].Decoded.(*ua.StatusChangeNotification)
	require.True(t, ok)
	assert.Equal(t, ua.StatusBadTimeout, change.Status)
	assert.Equal(t, sub.ID, responses[0].SubscriptionID)
}

func TestDiscardOldest(t *testing.T) {
	_, clock, store, varID := newTestEngine(t)
	sub := newSubscription(1, ua.NewStringNodeID(1, "s"))
	mi := sub.AddItem(ua.ReadValueID{NodeID: varID, AttributeID: ua.AttrValue},
		ua.MonitoringReporting,
		ua.MonitoringParameters{ClientHandle: 1, SamplingInterval: 0, QueueSize: 2, DiscardOldest: true},
		ua.DataChangeFilter{Trigger: ua.TriggerStatusValue})

	for i := int32(0); i < 4; i++ {
		writeValue(t, store, varID, 100+i)
		clock.Advance(time.Millisecond)
		mi.Sample(store, clock.NowMonotonic(), clock.Now())
	}
	notifications := mi.takeNotifications(0)
	require.Len(t, notifications, 2, "queue capped at its size")
	// The oldest samples were discarded.
	assert.Equal(t, int32(102), notifications[0].Value.Value.Int32())
	assert.Equal(t, int32(103), notifications[1].Value.Value.Int32())
}
