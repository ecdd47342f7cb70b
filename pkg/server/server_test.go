package server

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opcuad/pkg/sched"
	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/transport"
	"github.com/marmos91/opcuad/pkg/ua"
	"github.com/marmos91/opcuad/pkg/ua/uabin"
)

// recordingAccessControl counts CloseSession notifications per session.
type recordingAccessControl struct {
	security.AccessControl
	mu     sync.Mutex
	closed map[ua.NodeID]int
}

func newRecordingAccessControl() *recordingAccessControl {
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

// testClient speaks just enough UA-TCP to drive the server end to end.
type testClient struct {
	t         *testing.T
	conn      net.Conn
	channelID uint32
	tokenID   uint32
	seq       uint32
	requestID uint32
	authToken ua.NodeID
	handle    uint32
}

func newTestServer(t *testing.T, deps Dependencies) (*Server, net.Listener) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MinSessionTimeout = time.Millisecond
	srv := New(cfg, deps)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(listener) }()
	t.Cleanup(srv.Shutdown)
	return srv, listener
}

func dialTestClient(t *testing.T, listener net.Listener) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))
	return &testClient{t: t, conn: conn}
}

func (c *testClient) nextSeq() uint32 {
	c.seq++
	return c.seq
}

func (c *testClient) hello() *transport.Acknowledge {
	w := uabin.NewWriter(64)
	w.WriteBytes(make([]byte, transport.HeaderSize))
	w.WriteUint32(0)     // protocol version
	w.WriteUint32(65536) // receive buffer
	w.WriteUint32(65536) // send buffer
	w.WriteUint32(0)     // max message size
	w.WriteUint32(0)     // max chunk count
	w.WriteString("opc.tcp://localhost:4840")
	buf := w.Bytes()
	transport.WriteHeader(buf, transport.MessageTypeHello, transport.ChunkTypeFinal, uint32(len(buf)))
	_, err := c.conn.Write(buf)
	require.NoError(c.t, err)

	msg, err := transport.ReadMessage(c.conn, 0)
	require.NoError(c.t, err)
	require.Equal(c.t, transport.MessageTypeAcknowledge, msg.Header.MessageType)

	r := uabin.NewReader(msg.Payload)
	ack := &transport.Acknowledge{
		ProtocolVersion:   r.ReadUint32(),
		ReceiveBufferSize: r.ReadUint32(),
		SendBufferSize:    r.ReadUint32(),
		MaxMessageSize:    r.ReadUint32(),
		MaxChunkCount:     r.ReadUint32(),
	}
	require.NoError(c.t, r.Err())
	return ack
}

func (c *testClient) openChannel(requestedLifetime uint32) *ua.OpenSecureChannelResponse {
	body, err := uabin.EncodeMessage(&ua.OpenSecureChannelRequest{
		RequestType:       ua.SecurityTokenIssue,
		SecurityMode:      ua.SecurityModeNone,
		RequestedLifetime: requestedLifetime,
	})
	require.NoError(c.t, err)

	c.requestID++
	w := uabin.NewWriter(128)
	w.WriteBytes(make([]byte, transport.HeaderSize))
	w.WriteUint32(0) // new channel
	transport.EncodeAsymmetricSecurityHeader(w, transport.AsymmetricSecurityHeader{
		SecurityPolicyURI: security.PolicyURINone,
	})
	w.WriteUint32(c.nextSeq())
	w.WriteUint32(c.requestID)
	w.WriteBytes(body)
	buf := w.Bytes()
	transport.WriteHeader(buf, transport.MessageTypeOpenChannel, transport.ChunkTypeFinal, uint32(len(buf)))
	_, err = c.conn.Write(buf)
	require.NoError(c.t, err)

	msg, err := transport.ReadMessage(c.conn, 0)
	require.NoError(c.t, err)
	require.Equal(c.t, transport.MessageTypeOpenChannel, msg.Header.MessageType)

	r := uabin.NewReader(msg.Payload)
	_ = r.ReadUint32() // channel id
	transport.DecodeAsymmetricSecurityHeader(r)
	_ = r.ReadUint32() // sequence
	_ = r.ReadUint32() // request id
	respBody := r.ReadBytes(r.Remaining())
	require.NoError(c.t, r.Err())

	decoded, _, err := uabin.DecodeMessage(respBody)
	require.NoError(c.t, err)
	resp, ok := decoded.(*ua.OpenSecureChannelResponse)
	require.True(c.t, ok, "expected OpenSecureChannelResponse, got %T", decoded)

	c.channelID = resp.SecurityToken.ChannelID
	c.tokenID = resp.SecurityToken.TokenID
	return resp
}

// request ships one service request and returns the decoded response.
func (c *testClient) request(req any) any {
	c.handle++
	header := ua.RequestHeader{
		AuthenticationToken: c.authToken,
		Timestamp:           time.Now(),
		RequestHandle:       c.handle,
		TimeoutHint:         10000,
	}
	setRequestHeader(c.t, req, header)

	body, err := uabin.EncodeMessage(req)
	require.NoError(c.t, err)

	chunks := transport.BuildMessageChunks(transport.MessageTypeMessage,
		c.channelID, c.tokenID, c.requestIDNext(), body, 65536, c.nextSeq)
	for _, chunk := range chunks {
		_, err := c.conn.Write(chunk)
		require.NoError(c.t, err)
	}
	return c.readResponse()
}

func (c *testClient) requestIDNext() uint32 {
	c.requestID++
	return c.requestID
}

// readResponse reads MSG chunks until a final arrives and decodes the body.
func (c *testClient) readResponse() any {
	var assembled []byte
	for {
		msg, err := transport.ReadMessage(c.conn, 0)
		require.NoError(c.t, err)
		require.Equal(c.t, transport.MessageTypeMessage, msg.Header.MessageType,
			"unexpected message type (payload %x)", msg.Payload)
		r := uabin.NewReader(msg.Payload)
		_ = r.ReadUint32() // channel id
		_ = r.ReadUint32() // token id
		_ = r.ReadUint32() // sequence
		_ = r.ReadUint32() // request id
		assembled = append(assembled, r.ReadBytes(r.Remaining())...)
		require.NoError(c.t, r.Err())
		if msg.Header.ChunkType == transport.ChunkTypeFinal {
			break
		}
	}
	decoded, _, err := uabin.DecodeMessage(assembled)
	require.NoError(c.t, err)
	return decoded
}

// setRequestHeader stamps the header into any request struct.
func setRequestHeader(t *testing.T, req any, header ua.RequestHeader) {
	t.Helper()
	switch m := req.(type) {
	case *ua.CreateSessionRequest:
		m.RequestHeader = header
	case *ua.ActivateSessionRequest:
		m.RequestHeader = header
	case *ua.CloseSessionRequest:
		m.RequestHeader = header
	case *ua.ReadRequest:
		m.RequestHeader = header
	case *ua.WriteRequest:
		m.RequestHeader = header
	case *ua.BrowseRequest:
		m.RequestHeader = header
	case *ua.AddNodesRequest:
		m.RequestHeader = header
	case *ua.GetEndpointsRequest:
		m.RequestHeader = header
	case *ua.TranslateBrowsePathsRequest:
		m.RequestHeader = header
	case *ua.RegisterNodesRequest:
		m.RequestHeader = header
	default:
		t.Fatalf("setRequestHeader: unhandled request type %T", req)
	}
}

// createAndActivate runs CreateSession + ActivateSession with an anonymous
// identity.
func (c *testClient) createAndActivate(timeoutMS float64) *ua.CreateSessionResponse {
	created := c.request(&ua.CreateSessionRequest{
		SessionName:             "test-session",
		RequestedSessionTimeout: timeoutMS,
	})
	resp, ok := created.(*ua.CreateSessionResponse)
	require.True(c.t, ok, "expected CreateSessionResponse, got %#v", created)
	c.authToken = resp.AuthenticationToken

	activated := c.request(&ua.ActivateSessionRequest{
		UserIdentityToken: uabin.NewExtensionObject(ua.IDAnonymousIdentityTokenEncoding,
			&ua.AnonymousIdentityToken{PolicyID: "anonymous"}),
	})
	_, ok = activated.(*ua.ActivateSessionResponse)
	require.True(c.t, ok, "expected ActivateSessionResponse, got %#v", activated)
	return resp
}

// --- S1: handshake, channel, session, Read(NamespaceArray) ---

func TestScenarioHandshakeSessionRead(t *testing.T) {
	srv, listener := newTestServer(t, Dependencies{})
	_ = srv
	c := dialTestClient(t, listener)

	ack := c.hello()
	assert.Equal(t, uint32(65536), ack.ReceiveBufferSize)
	assert.Equal(t, uint32(65536), ack.SendBufferSize)

	opened := c.openChannel(3600000)
	assert.Equal(t, uint32(1), opened.SecurityToken.ChannelID)
	assert.Equal(t, uint32(1), opened.SecurityToken.TokenID)
	assert.Equal(t, uint32(3600000), opened.SecurityToken.RevisedLifetime)
	assert.Len(t, opened.ServerNonce, 32)

	created := c.createAndActivate(120000)
	assert.Equal(t, float64(120000), created.RevisedSessionTimeout)

	resp := c.request(&ua.ReadRequest{
		NodesToRead: []ua.ReadValueID{
			{NodeID: ua.NewNumericNodeID(0, ua.IDNamespaceArray), AttributeID: ua.AttrValue},
		},
	})
	read, ok := resp.(*ua.ReadResponse)
	require.True(t, ok, "expected ReadResponse, got %#v", resp)
	require.Len(t, read.Results, 1)
	require.Equal(t, ua.StatusGood, read.Results[0].StatusCode())

	uris := read.Results[0].Value.Strings()
	require.GreaterOrEqual(t, len(uris), 2)
	assert.Equal(t, "http://opcfoundation.org/UA/", uris[0])
	assert.Equal(t, "urn:opcuad:server", uris[1])
}

// --- S2: AddNodes + Read/Write with type checking ---

func TestScenarioAddVariableReadWrite(t *testing.T) {
	_, listener := newTestServer(t, Dependencies{})
	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)
	c.createAndActivate(120000)

	varID := ua.NewStringNodeID(1, "the.answer")
	added := c.request(&ua.AddNodesRequest{
		NodesToAdd: []ua.AddNodesItem{
			{
				ParentNodeID:       ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDObjectsFolder)),
				ReferenceTypeID:    ua.NewNumericNodeID(0, ua.IDOrganizes),
				RequestedNewNodeID: ua.NewExpandedNodeID(varID),
				BrowseName:         ua.NewQualifiedName(1, "the.answer"),
				NodeClass:          ua.NodeClassVariable,
				NodeAttributes: uabin.NewExtensionObject(ua.IDVariableAttributesEncoding, &ua.VariableAttributes{
					NodeAttributes: ua.NodeAttributes{
						DisplayName: ua.NewLocalizedText("the answer"),
					},
					Value:           ua.NewVariant(int32(42)),
					DataType:        ua.NewNumericNodeID(0, ua.IDInt32),
					ValueRank:       ua.ValueRankScalar,
					AccessLevel:     ua.AccessLevelCurrentRead | ua.AccessLevelCurrentWrite,
					UserAccessLevel: ua.AccessLevelCurrentRead | ua.AccessLevelCurrentWrite,
				}),
				TypeDefinition: ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDBaseDataVariableType)),
			},
		},
	})
	addResp, ok := added.(*ua.AddNodesResponse)
	require.True(t, ok, "expected AddNodesResponse, got %#v", added)
	require.Len(t, addResp.Results, 1)
	require.Equal(t, ua.StatusGood, addResp.Results[0].StatusCode)
	assert.Equal(t, varID, addResp.Results[0].AddedNodeID)

	// Write 123.
	written := c.request(&ua.WriteRequest{
		NodesToWrite: []ua.WriteValue{
			{NodeID: varID, AttributeID: ua.AttrValue, Value: ua.NewDataValue(ua.NewVariant(int32(123)))},
		},
	})
	writeResp := written.(*ua.WriteResponse)
	require.Equal(t, []ua.StatusCode{ua.StatusGood}, writeResp.Results)

	// Read back.
	resp := c.request(&ua.ReadRequest{
		NodesToRead: []ua.ReadValueID{{NodeID: varID, AttributeID: ua.AttrValue}},
	})
	read := resp.(*ua.ReadResponse)
	require.Equal(t, ua.StatusGood, read.Results[0].StatusCode())
	assert.Equal(t, int32(123), read.Results[0].Value.Int32())

	// A string write is a type mismatch.
	written = c.request(&ua.WriteRequest{
		NodesToWrite: []ua.WriteValue{
			{NodeID: varID, AttributeID: ua.AttrValue, Value: ua.NewDataValue(ua.NewVariant("hello"))},
		},
	})
	writeResp = written.(*ua.WriteResponse)
	assert.Equal(t, []ua.StatusCode{ua.StatusBadTypeMismatch}, writeResp.Results)
}

// --- S3: Browse with subtypes ---

func TestScenarioBrowseWithSubtypes(t *testing.T) {
	_, listener := newTestServer(t, Dependencies{})
	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)
	c.createAndActivate(120000)

	resp := c.request(&ua.BrowseRequest{
		NodesToBrowse: []ua.BrowseDescription{
			{
				NodeID:          ua.NewNumericNodeID(0, ua.IDObjectsFolder),
				Direction:       ua.BrowseDirectionForward,
				ReferenceTypeID: ua.NewNumericNodeID(0, ua.IDHierarchicalReferences),
				IncludeSubtypes: true,
				ResultMask:      ua.BrowseResultMaskAll,
			},
		},
	})
	browse := resp.(*ua.BrowseResponse)
	require.Len(t, browse.Results, 1)
	require.Equal(t, ua.StatusGood, browse.Results[0].StatusCode)

	// Organizes is a subtype of HierarchicalReferences, so the Server
	// object is found.
	var foundServer bool
	for _, ref := range browse.Results[0].References {
		if ref.NodeID.NodeID == ua.NewNumericNodeID(0, ua.IDServer) {
			foundServer = true
			assert.Equal(t, ua.NewNumericNodeID(0, ua.IDOrganizes), ref.ReferenceTypeID)
			assert.Equal(t, "Server", ref.BrowseName.Name)
			assert.True(t, ref.IsForward)
		}
	}
	assert.True(t, foundServer, "Browse must surface i=2253 via Organizes")
}

// --- S4: session timeout ---

func TestScenarioSessionTimesOut(t *testing.T) {
	clock := sched.NewMockClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ac := newRecordingAccessControl()
	srv, listener := newTestServer(t, Dependencies{Clock: clock, AccessControl: ac})

	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)
	created := c.createAndActivate(1000)
	sessionID := created.SessionID

	// Advance past the session deadline and run the cleanup tick.
	clock.Advance(11 * time.Second)
	srv.RunIterate(0)

	resp := c.request(&ua.ReadRequest{
		NodesToRead: []ua.ReadValueID{
			{NodeID: ua.NewNumericNodeID(0, ua.IDNamespaceArray), AttributeID: ua.AttrValue},
		},
	})
	fault, ok := resp.(*ua.ServiceFault)
	require.True(t, ok, "expected ServiceFault, got %#v", resp)
	assert.Equal(t, ua.StatusBadSessionIDInvalid, fault.ResponseHeader.ServiceResult)
	assert.Equal(t, 1, ac.closedCount(sessionID), "close_session exactly once")
}

// --- dispatch-level behavior ---

func TestUnknownServiceFault(t *testing.T) {
	_, listener := newTestServer(t, Dependencies{})
	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)

	// Ship a request with an unknown encoding id.
	w := uabin.NewWriter(16)
	w.WriteNodeID(ua.NewNumericNodeID(0, 999999))
	chunks := transport.BuildMessageChunks(transport.MessageTypeMessage,
		c.channelID, c.tokenID, c.requestIDNext(), w.Bytes(), 65536, c.nextSeq)
	_, err := c.conn.Write(chunks[0])
	require.NoError(t, err)

	resp := c.readResponse()
	fault, ok := resp.(*ua.ServiceFault)
	require.True(t, ok)
	assert.Equal(t, ua.StatusBadServiceUnsupported, fault.ResponseHeader.ServiceResult)
}

func TestSessionRequiredWithoutSession(t *testing.T) {
	_, listener := newTestServer(t, Dependencies{})
	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)

	// A Read without CreateSession fails with BadSessionIdInvalid.
	resp := c.request(&ua.ReadRequest{
		NodesToRead: []ua.ReadValueID{
			{NodeID: ua.NewNumericNodeID(0, ua.IDNamespaceArray), AttributeID: ua.AttrValue},
		},
	})
	fault, ok := resp.(*ua.ServiceFault)
	require.True(t, ok)
	assert.Equal(t, ua.StatusBadSessionIDInvalid, fault.ResponseHeader.ServiceResult)
}

func TestGetEndpointsAnonymous(t *testing.T) {
	_, listener := newTestServer(t, Dependencies{})
	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)

	resp := c.request(&ua.GetEndpointsRequest{EndpointURL: "opc.tcp://localhost:4840"})
	endpoints, ok := resp.(*ua.GetEndpointsResponse)
	require.True(t, ok, "GetEndpoints runs without a session, got %#v", resp)
	require.NotEmpty(t, endpoints.Endpoints)
	ep := endpoints.Endpoints[0]
	assert.Equal(t, ua.SecurityModeNone, ep.SecurityMode)
	assert.Equal(t, transportProfileURI, ep.TransportProfileURI)
	assert.NotEmpty(t, ep.UserIdentityTokens)
}

func TestTranslateBrowsePath(t *testing.T) {
	_, listener := newTestServer(t, Dependencies{})
	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)
	c.createAndActivate(120000)

	resp := c.request(&ua.TranslateBrowsePathsRequest{
		BrowsePaths: []ua.BrowsePath{
			{
				StartingNode: ua.NewNumericNodeID(0, ua.IDRootFolder),
				RelativePath: []ua.RelativePathElement{
					{
						ReferenceTypeID: ua.NewNumericNodeID(0, ua.IDHierarchicalReferences),
						IncludeSubtypes: true,
						TargetName:      ua.NewQualifiedName(0, "Objects"),
					},
					{
						ReferenceTypeID: ua.NewNumericNodeID(0, ua.IDHierarchicalReferences),
						IncludeSubtypes: true,
						TargetName:      ua.NewQualifiedName(0, "Server"),
					},
				},
			},
		},
	})
	translate := resp.(*ua.TranslateBrowsePathsResponse)
	require.Len(t, translate.Results, 1)
	require.Equal(t, ua.StatusGood, translate.Results[0].StatusCode)
	require.NotEmpty(t, translate.Results[0].Targets)
	assert.Equal(t, ua.NewNumericNodeID(0, ua.IDServer),
		translate.Results[0].Targets[0].TargetID.NodeID)
}

func TestRegisterNodesEcho(t *testing.T) {
	_, listener := newTestServer(t, Dependencies{})
	c := dialTestClient(t, listener)
	c.hello()
	c.openChannel(3600000)
	c.createAndActivate(120000)

	ids := []ua.NodeID{
		ua.NewNumericNodeID(0, ua.IDServer),
		ua.NewStringNodeID(1, "x"),
	}
	resp := c.request(&ua.RegisterNodesRequest{NodesToRegister: ids})
	registered := resp.(*ua.RegisterNodesResponse)
	assert.Equal(t, ids, registered.RegisteredNodeIDs)
}
