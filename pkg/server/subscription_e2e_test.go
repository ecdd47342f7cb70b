package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opcuad/pkg/sched"
	"github.com/marmos91/opcuad/pkg/transport"
	"github.com/marmos91/opcuad/pkg/ua"
	"github.com/marmos91/opcuad/pkg/ua/uabin"
)

// sendOnly ships a request without waiting for its response (Publish).
func (c *testClient) sendOnly(req any) {
	c.handle++
	setSubscriptionRequestHeader(c.t, req, ua.RequestHeader{
		AuthenticationToken: c.authToken,
		Timestamp:           time.Now(),
		RequestHandle:       c.handle,
		TimeoutHint:         10000,
	})
	body, err := uabin.EncodeMessage(req)
	require.NoError(c.t, err)
	chunks := buildTestChunks(c, body)
	for _, chunk := range chunks {
		_, err := c.conn.Write(chunk)
		require.NoError(c.t, err)
	}
}

func setSubscriptionRequestHeader(t *testing.T, req any, header ua.RequestHeader) {
	t.Helper()
	switch m := req.(type) {
	case *ua.CreateSubscriptionRequest:
		m.RequestHeader = header
	case *ua.CreateMonitoredItemsRequest:
		m.RequestHeader = header
	case *ua.PublishRequest:
		m.RequestHeader = header
	case *ua.RepublishRequest:
		m.RequestHeader = header
	case *ua.WriteRequest:
		m.RequestHeader = header
	default:
		setRequestHeader(t, req, header)
	}
}

func buildTestChunks(c *testClient, body []byte) [][]byte {
	return transport.BuildMessageChunks(transport.MessageTypeMessage,
		c.channelID, c.tokenID, c.requestIDNext(), body, 65536, c.nextSeq)
}

// requestSub is request() for the subscription service types.
func (c *testClient) requestSub(req any) any {
	c.sendOnly(req)
	return c.readResponse()
}

// S5/S6: subscription, monitored item, publish, republish, acknowledge.
func TestScenarioSubscriptionPublishRepublish(t *testing.T) {
	clock := sched.NewMockClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	srv, listener := newTestServer(t, Dependencies{Clock: clock})
	varID := ua.NewStringNodeID(1, "the.answer")

	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)
	c.createAndActivate(120000)

	// Add the variable over the wire so the store wiring is exercised.
	addVariable(t, c, varID, 42)

	// CreateSubscription(publishingInterval=100ms, lifetime=100, keepalive=10).
	created := c.requestSub(&ua.CreateSubscriptionRequest{
		RequestedPublishingInterval: 100,
		RequestedLifetimeCount:      100,
		RequestedMaxKeepAliveCount:  10,
		PublishingEnabled:           true,
	})
	subResp, ok := created.(*ua.CreateSubscriptionResponse)
	require.True(t, ok, "expected CreateSubscriptionResponse, got %#v", created)
	assert.Equal(t, float64(100), subResp.RevisedPublishingInterval)

	// CreateMonitoredItems on the Value attribute.
	itemsResp := c.requestSub(&ua.CreateMonitoredItemsRequest{
		SubscriptionID:     subResp.SubscriptionID,
		TimestampsToReturn: ua.TimestampsBoth,
		ItemsToCreate: []ua.MonitoredItemCreateRequest{
			{
				ItemToMonitor:  ua.ReadValueID{NodeID: varID, AttributeID: ua.AttrValue},
				MonitoringMode: ua.MonitoringReporting,
				RequestedParameters: ua.MonitoringParameters{
					ClientHandle:     77,
					SamplingInterval: 50,
					QueueSize:        10,
					DiscardOldest:    true,
				},
			},
		},
	})
	items, ok := itemsResp.(*ua.CreateMonitoredItemsResponse)
	require.True(t, ok, "expected CreateMonitoredItemsResponse, got %#v", itemsResp)
	require.Len(t, items.Results, 1)
	require.Equal(t, ua.StatusGood, items.Results[0].StatusCode)

	// Park a Publish, then change the value.
	c.sendOnly(&ua.PublishRequest{})
	writeResp := c.requestSub(&ua.WriteRequest{
		NodesToWrite: []ua.WriteValue{
			{NodeID: varID, AttributeID: ua.AttrValue, Value: ua.NewDataValue(ua.NewVariant(int32(43)))},
		},
	})
	require.Equal(t, []ua.StatusCode{ua.StatusGood}, writeResp.(*ua.WriteResponse).Results)

	// Within 200 ms of simulated time the publish cycle fires.
	clock.Advance(200 * time.Millisecond)
	srv.RunIterate(0)

	resp := c.readResponse()
	publish, ok := resp.(*ua.PublishResponse)
	require.True(t, ok, "expected PublishResponse, got %#v", resp)
	assert.Equal(t, subResp.SubscriptionID, publish.SubscriptionID)
	assert.Equal(t, uint32(1), publish.NotificationMessage.SequenceNumber)

	notif, ok := publish.NotificationMessage.NotificationData[0].Decoded.(*ua.DataChangeNotification)
	require.True(t, ok)
	require.Len(t, notif.MonitoredItems, 1)
	assert.Equal(t, uint32(77), notif.MonitoredItems[0].ClientHandle)
	assert.Equal(t, int32(43), notif.MonitoredItems[0].Value.Value.Int32())

	// S6: republish before acknowledging returns the same message.
	repub := c.requestSub(&ua.RepublishRequest{
		SubscriptionID:           subResp.SubscriptionID,
		RetransmitSequenceNumber: 1,
	})
	repubResp, ok := repub.(*ua.RepublishResponse)
	require.True(t, ok, "expected RepublishResponse, got %#v", repub)
	assert.Equal(t, uint32(1), repubResp.NotificationMessage.SequenceNumber)

	// Acknowledge (sub, 1) on the next Publish.
	c.sendOnly(&ua.PublishRequest{
		SubscriptionAcknowledgements: []ua.SubscriptionAcknowledgement{
			{SubscriptionID: subResp.SubscriptionID, SequenceNumber: 1},
		},
	})

	// A following republish for the acknowledged number fails.
	repub = c.requestSub(&ua.RepublishRequest{
		SubscriptionID:           subResp.SubscriptionID,
		RetransmitSequenceNumber: 1,
	})
	fault, ok := repub.(*ua.ServiceFault)
	require.True(t, ok, "expected ServiceFault, got %#v", repub)
	assert.Equal(t, ua.StatusBadMessageNotAvailable, fault.ResponseHeader.ServiceResult)
}

func TestPublishWithoutSubscription(t *testing.T) {
	_, listener := newTestServer(t, Dependencies{})
	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)
	c.createAndActivate(120000)

	resp := c.requestSub(&ua.PublishRequest{})
	fault, ok := resp.(*ua.ServiceFault)
	require.True(t, ok)
	assert.Equal(t, ua.StatusBadNoSubscription, fault.ResponseHeader.ServiceResult)
}

// addVariable adds an Int32 variable under Objects via the AddNodes service.
func addVariable(t *testing.T, c *testClient, id ua.NodeID, value int32) {
	t.Helper()
	added := c.request(&ua.AddNodesRequest{
		NodesToAdd: []ua.AddNodesItem{
			{
				ParentNodeID:       ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDObjectsFolder)),
				ReferenceTypeID:    ua.NewNumericNodeID(0, ua.IDOrganizes),
				RequestedNewNodeID: ua.NewExpandedNodeID(id),
				BrowseName:         ua.NewQualifiedName(1, id.Text),
				NodeClass:          ua.NodeClassVariable,
				NodeAttributes: uabin.NewExtensionObject(ua.IDVariableAttributesEncoding, &ua.VariableAttributes{
					Value:           ua.NewVariant(value),
					DataType:        ua.NewNumericNodeID(0, ua.IDInt32),
					ValueRank:       ua.ValueRankScalar,
					AccessLevel:     ua.AccessLevelCurrentRead | ua.AccessLevelCurrentWrite,
					UserAccessLevel: ua.AccessLevelCurrentRead | ua.AccessLevelCurrentWrite,
				}),
				TypeDefinition: ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDBaseDataVariableType)),
			},
		},
	})
	addResp := added.(*ua.AddNodesResponse)
	require.Equal(t, ua.StatusGood, addResp.Results[0].StatusCode)
}
