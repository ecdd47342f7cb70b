package uabin

import (
	"reflect"
	"testing"
	"time"

	"github.com/marmos91/opcuad/pkg/ua"
)

func messageRoundTrip(t *testing.T, msg any, wantID uint32) any {
	t.Helper()
	data, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode %T: %v", msg, err)
	}
	got, id, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode %T: %v", msg, err)
	}
	if id != wantID {
		t.Errorf("encoding id mismatch: got %d, want %d", id, wantID)
	}
	if !reflect.DeepEqual(got, msg) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, msg)
	}
	return got
}

func TestReadRequestRoundTrip(t *testing.T) {
	msg := &ua.ReadRequest{
		RequestHeader: ua.RequestHeader{
			AuthenticationToken: ua.NewStringNodeID(1, "auth"),
			Timestamp:           time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			RequestHandle:       7,
			TimeoutHint:         10000,
		},
		MaxAge:             500,
		TimestampsToReturn: ua.TimestampsBoth,
		NodesToRead: []ua.ReadValueID{
			{NodeID: ua.NewNumericNodeID(0, 2255), AttributeID: ua.AttrValue},
			{NodeID: ua.NewStringNodeID(1, "the.answer"), AttributeID: ua.AttrDisplayName, IndexRange: "0:2"},
		},
	}
	messageRoundTrip(t, msg, ua.IDReadRequestEncoding)
}

func TestReadResponseRoundTrip(t *testing.T) {
	msg := &ua.ReadResponse{
		ResponseHeader: ua.ResponseHeader{
			Timestamp:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			RequestHandle: 7,
			ServiceResult: ua.StatusGood,
		},
		Results: []ua.DataValue{
			ua.NewDataValue(ua.NewVariant([]string{"http://opcfoundation.org/UA/", "urn:x"})),
			ua.NewDataValueStatus(ua.StatusBadNodeIDUnknown),
		},
	}
	messageRoundTrip(t, msg, ua.IDReadResponseEncoding)
}

func TestOpenSecureChannelRoundTrip(t *testing.T) {
	req := &ua.OpenSecureChannelRequest{
		RequestType:       ua.SecurityTokenIssue,
		SecurityMode:      ua.SecurityModeNone,
		ClientNonce:       []byte{1, 2, 3},
		RequestedLifetime: 3600000,
	}
	messageRoundTrip(t, req, ua.IDOpenSecureChannelRequestEncoding)

	resp := &ua.OpenSecureChannelResponse{
		SecurityToken: ua.ChannelSecurityToken{
			ChannelID:       1,
			TokenID:         1,
			CreatedAt:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			RevisedLifetime: 3600000,
		},
		ServerNonce: make([]byte, 32),
	}
	messageRoundTrip(t, resp, ua.IDOpenSecureChannelResponseEncoding)
}

func TestCreateSessionResponseRoundTrip(t *testing.T) {
	msg := &ua.CreateSessionResponse{
		SessionID:             ua.NewStringNodeID(1, "session"),
		AuthenticationToken:   ua.NewStringNodeID(1, "token"),
		RevisedSessionTimeout: 120000,
		ServerNonce:           []byte{9, 9, 9},
		ServerEndpoints: []ua.EndpointDescription{
			{
				EndpointURL: "opc.tcp://localhost:4840",
				Server: ua.ApplicationDescription{
					ApplicationURI:  "urn:opcuad:server",
					ApplicationName: ua.NewLocalizedText("opcuad"),
					DiscoveryURLs:   []string{"opc.tcp://localhost:4840"},
				},
				SecurityMode:      ua.SecurityModeNone,
				SecurityPolicyURI: "http://opcfoundation.org/UA/SecurityPolicy#None",
				UserIdentityTokens: []ua.UserTokenPolicy{
					{PolicyID: "anonymous", TokenType: ua.UserTokenAnonymous},
				},
				TransportProfileURI: "http://opcfoundation.org/UA-Profile/Transport/uatcp-uasc-uabinary",
			},
		},
	}
	messageRoundTrip(t, msg, ua.IDCreateSessionResponseEncoding)
}

func TestBrowseRoundTrip(t *testing.T) {
	req := &ua.BrowseRequest{
		RequestedMaxReferencesPerNode: 100,
		NodesToBrowse: []ua.BrowseDescription{
			{
				NodeID:          ua.NewNumericNodeID(0, 85),
				Direction:       ua.BrowseDirectionForward,
				ReferenceTypeID: ua.NewNumericNodeID(0, 33),
				IncludeSubtypes: true,
				ResultMask:      ua.BrowseResultMaskAll,
			},
		},
	}
	messageRoundTrip(t, req, ua.IDBrowseRequestEncoding)

	resp := &ua.BrowseResponse{
		Results: []ua.BrowseResult{
			{
				StatusCode:        ua.StatusGood,
				ContinuationPoint: []byte{1, 2},
				References: []ua.ReferenceDescription{
					{
						ReferenceTypeID: ua.NewNumericNodeID(0, 35),
						IsForward:       true,
						NodeID:          ua.NewExpandedNodeID(ua.NewNumericNodeID(0, 2253)),
						BrowseName:      ua.NewQualifiedName(0, "Server"),
						DisplayName:     ua.NewLocalizedText("Server"),
						NodeClass:       ua.NodeClassObject,
						TypeDefinition:  ua.NewExpandedNodeID(ua.NewNumericNodeID(0, 2004)),
					},
				},
			},
		},
	}
	messageRoundTrip(t, resp, ua.IDBrowseResponseEncoding)
}

func TestPublishRoundTrip(t *testing.T) {
	req := &ua.PublishRequest{
		SubscriptionAcknowledgements: []ua.SubscriptionAcknowledgement{
			{SubscriptionID: 1, SequenceNumber: 4},
		},
	}
	messageRoundTrip(t, req, ua.IDPublishRequestEncoding)

	resp := &ua.PublishResponse{
		SubscriptionID:           1,
		AvailableSequenceNumbers: []uint32{5, 6},
		NotificationMessage: ua.NotificationMessage{
			SequenceNumber: 5,
			PublishTime:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			NotificationData: []*ua.ExtensionObject{
				NewExtensionObject(ua.IDDataChangeNotificationEncoding, &ua.DataChangeNotification{
					MonitoredItems: []ua.MonitoredItemNotification{
						{ClientHandle: 77, Value: ua.NewDataValue(ua.NewVariant(int32(43)))},
					},
				}),
			},
		},
		Results: []ua.StatusCode{ua.StatusGood},
	}
	data, err := EncodeMessage(resp)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, _, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gotResp := got.(*ua.PublishResponse)
	if gotResp.NotificationMessage.SequenceNumber != 5 {
		t.Errorf("sequence number mismatch: %d", gotResp.NotificationMessage.SequenceNumber)
	}
	notif, ok := gotResp.NotificationMessage.NotificationData[0].Decoded.(*ua.DataChangeNotification)
	if !ok {
		t.Fatalf("expected decoded DataChangeNotification, got %T", gotResp.NotificationMessage.NotificationData[0].Decoded)
	}
	if notif.MonitoredItems[0].ClientHandle != 77 {
		t.Errorf("client handle mismatch: %d", notif.MonitoredItems[0].ClientHandle)
	}
	if notif.MonitoredItems[0].Value.Value.Int32() != 43 {
		t.Errorf("value mismatch: %v", notif.MonitoredItems[0].Value.Value.Value)
	}
}

func TestActivateSessionWithIdentityToken(t *testing.T) {
	msg := &ua.ActivateSessionRequest{
		UserIdentityToken: NewExtensionObject(ua.IDUserNameIdentityTokenEncoding, &ua.UserNameIdentityToken{
			PolicyID: "username",
			UserName: "operator",
			Password: []byte("secret"),
		}),
	}
	data, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, _, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	token, ok := got.(*ua.ActivateSessionRequest).UserIdentityToken.Decoded.(*ua.UserNameIdentityToken)
	if !ok {
		t.Fatal("expected decoded UserNameIdentityToken")
	}
	if token.UserName != "operator" || string(token.Password) != "secret" {
		t.Errorf("token mismatch: %+v", token)
	}
}

func TestDecodeUnknownService(t *testing.T) {
	w := NewWriter(8)
	w.WriteNodeID(ua.NewNumericNodeID(0, 999999))
	if _, _, err := DecodeMessage(w.Bytes()); err == nil {
		t.Fatal("expected error for unknown encoding id")
	}
}

func TestDecodeNonNumericTypeID(t *testing.T) {
	w := NewWriter(16)
	w.WriteNodeID(ua.NewStringNodeID(1, "nope"))
	if _, _, err := DecodeMessage(w.Bytes()); err == nil {
		t.Fatal("expected error for non-numeric request type")
	}
}
