package server

import (
	"context"
	"reflect"
	"time"

	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/internal/telemetry"
	"github.com/marmos91/opcuad/pkg/securechannel"
	"github.com/marmos91/opcuad/pkg/session"
	"github.com/marmos91/opcuad/pkg/transport"
	"github.com/marmos91/opcuad/pkg/ua"
	"github.com/marmos91/opcuad/pkg/ua/uabin"
)

// requestContext carries the per-request state into handlers.
type requestContext struct {
	channel   *securechannel.Channel
	session   *session.Session
	requestID uint32
	handle    uint32
}

// serviceHandler processes a decoded request and returns the response
// message, or nil when the response is deferred (Publish).
type serviceHandler func(s *Server, ctx *requestContext, req any) any

// serviceEntry is one row of the fixed dispatch table.
type serviceEntry struct {
	name            string
	sessionRequired bool
	handler         serviceHandler
}

// serviceTable maps request binary-encoding ids to handlers. CreateSession,
// GetEndpoints and FindServers run without a session. ActivateSession and
// CloseSession accept a session that is not yet activated; everything else
// requires an activated session on the request's channel.
var serviceTable = map[uint32]serviceEntry{
	ua.IDGetEndpointsRequestEncoding: {"GetEndpoints", false,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleGetEndpoints(ctx, req.(*ua.GetEndpointsRequest))
		}},
	ua.IDFindServersRequestEncoding: {"FindServers", false,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleFindServers(ctx, req.(*ua.FindServersRequest))
		}},
	ua.IDCreateSessionRequestEncoding: {"CreateSession", false,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleCreateSession(ctx, req.(*ua.CreateSessionRequest))
		}},
	ua.IDActivateSessionRequestEncoding: {"ActivateSession", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleActivateSession(ctx, req.(*ua.ActivateSessionRequest))
		}},
	ua.IDCloseSessionRequestEncoding: {"CloseSession", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleCloseSession(ctx, req.(*ua.CloseSessionRequest))
		}},
	ua.IDCancelRequestEncoding: {"Cancel", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleCancel(ctx, req.(*ua.CancelRequest))
		}},
	ua.IDReadRequestEncoding: {"Read", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleRead(ctx, req.(*ua.ReadRequest))
		}},
	ua.IDWriteRequestEncoding: {"Write", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleWrite(ctx, req.(*ua.WriteRequest))
		}},
	ua.IDBrowseRequestEncoding: {"Browse", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleBrowse(ctx, req.(*ua.BrowseRequest))
		}},
	ua.IDBrowseNextRequestEncoding: {"BrowseNext", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleBrowseNext(ctx, req.(*ua.BrowseNextRequest))
		}},
	ua.IDTranslateBrowsePathsRequestEncoding: {"TranslateBrowsePathsToNodeIds", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleTranslateBrowsePaths(ctx, req.(*ua.TranslateBrowsePathsRequest))
		}},
	ua.IDRegisterNodesRequestEncoding: {"RegisterNodes", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleRegisterNodes(ctx, req.(*ua.RegisterNodesRequest))
		}},
	ua.IDUnregisterNodesRequestEncoding: {"UnregisterNodes", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleUnregisterNodes(ctx, req.(*ua.UnregisterNodesRequest))
		}},
	ua.IDAddNodesRequestEncoding: {"AddNodes", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleAddNodes(ctx, req.(*ua.AddNodesRequest))
		}},
	ua.IDAddReferencesRequestEncoding: {"AddReferences", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleAddReferences(ctx, req.(*ua.AddReferencesRequest))
		}},
	ua.IDDeleteNodesRequestEncoding: {"DeleteNodes", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleDeleteNodes(ctx, req.(*ua.DeleteNodesRequest))
		}},
	ua.IDDeleteReferencesRequestEncoding: {"DeleteReferences", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleDeleteReferences(ctx, req.(*ua.DeleteReferencesRequest))
		}},
	ua.IDCallRequestEncoding: {"Call", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleCall(ctx, req.(*ua.CallRequest))
		}},
	ua.IDCreateSubscriptionRequestEncoding: {"CreateSubscription", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleCreateSubscription(ctx, req.(*ua.CreateSubscriptionRequest))
		}},
	ua.IDModifySubscriptionRequestEncoding: {"ModifySubscription", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleModifySubscription(ctx, req.(*ua.ModifySubscriptionRequest))
		}},
	ua.IDSetPublishingModeRequestEncoding: {"SetPublishingMode", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleSetPublishingMode(ctx, req.(*ua.SetPublishingModeRequest))
		}},
	ua.IDDeleteSubscriptionsRequestEncoding: {"DeleteSubscriptions", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleDeleteSubscriptions(ctx, req.(*ua.DeleteSubscriptionsRequest))
		}},
	ua.IDTransferSubscriptionsRequestEncoding: {"TransferSubscriptions", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleTransferSubscriptions(ctx, req.(*ua.TransferSubscriptionsRequest))
		}},
	ua.IDCreateMonitoredItemsRequestEncoding: {"CreateMonitoredItems", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleCreateMonitoredItems(ctx, req.(*ua.CreateMonitoredItemsRequest))
		}},
	ua.IDModifyMonitoredItemsRequestEncoding: {"ModifyMonitoredItems", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleModifyMonitoredItems(ctx, req.(*ua.ModifyMonitoredItemsRequest))
		}},
	ua.IDSetMonitoringModeRequestEncoding: {"SetMonitoringMode", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleSetMonitoringMode(ctx, req.(*ua.SetMonitoringModeRequest))
		}},
	ua.IDDeleteMonitoredItemsRequestEncoding: {"DeleteMonitoredItems", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleDeleteMonitoredItems(ctx, req.(*ua.DeleteMonitoredItemsRequest))
		}},
	ua.IDPublishRequestEncoding: {"Publish", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handlePublish(ctx, req.(*ua.PublishRequest))
		}},
	ua.IDRepublishRequestEncoding: {"Republish", true,
		func(s *Server, ctx *requestContext, req any) any {
			return s.handleRepublish(ctx, req.(*ua.RepublishRequest))
		}},
}

// dispatch decodes a reassembled MSG body, enforces the session
// preconditions, runs the handler and sends the response.
func (s *Server) dispatch(ch *securechannel.Channel, requestID uint32, body []byte) {
	start := time.Now()

	decoded, encodingID, err := uabin.DecodeMessage(body)
	entry, known := serviceTable[encodingID]
	if err != nil || !known {
		// Try to salvage the request handle so the fault is correlatable.
		handle := requestHandle(decoded)
		status := ua.StatusBadServiceUnsupported
		if err != nil && known {
			status = ua.StatusBadDecodingError
		}
		s.sendFault(ch, requestID, handle, status)
		return
	}

	header := requestHeader(decoded)
	ctx := &requestContext{
		channel:   ch,
		requestID: requestID,
		handle:    header.RequestHandle,
	}

	if s.serviceMetrics != nil {
		s.serviceMetrics.RecordRequestStart(entry.name)
		defer s.serviceMetrics.RecordRequestEnd(entry.name)
	}

	_, span := telemetry.StartSpan(context.Background(), telemetry.SpanDispatch)
	span.SetAttributes(
		telemetry.String(telemetry.AttrService, entry.name),
		telemetry.Int64(telemetry.AttrChannelID, int64(ch.ID)),
		telemetry.Int64(telemetry.AttrRequestHandle, int64(ctx.handle)),
	)
	defer span.End()

	s.dispatchMu.Lock()
	var resp any
	if entry.sessionRequired {
		sess, status := s.resolveSession(ch, header.AuthenticationToken, entry.name)
		if status != ua.StatusGood {
			s.dispatchMu.Unlock()
			s.sendFault(ch, requestID, ctx.handle, status)
			s.recordService(entry.name, start, status)
			return
		}
		ctx.session = sess
		sess.Touch(s.clock.NowMonotonic())
		resp = entry.handler(s, ctx, decoded)
	} else {
		resp = entry.handler(s, ctx, decoded)
	}
	s.dispatchMu.Unlock()

	// Publish parks and answers later.
	if resp == nil {
		s.recordService(entry.name, start, ua.StatusGood)
		return
	}

	s.finishResponse(resp, ctx.handle)
	s.sendResponse(ch, requestID, resp)
	s.recordService(entry.name, start, responseStatus(resp))
}

// resolveSession applies the §4.6 session preconditions.
func (s *Server) resolveSession(ch *securechannel.Channel, token ua.NodeID, serviceName string) (*session.Session, ua.StatusCode) {
	sess, ok := s.sessions.GetByToken(token)
	if !ok {
		return nil, ua.StatusBadSessionIDInvalid
	}
	if sess.Expired(s.clock.NowMonotonic()) {
		return nil, ua.StatusBadSessionIDInvalid
	}

	isActivate := serviceName == "ActivateSession"
	if !sess.IsActivated() && !isActivate && serviceName != "CloseSession" {
		return nil, ua.StatusBadSessionNotActivated
	}
	if bound := sess.BoundChannel(); bound != nil && bound != ch && !isActivate {
		// ActivateSession legally transfers the session to this channel.
		return nil, ua.StatusBadSecureChannelIDInvalid
	}
	return sess, ua.StatusGood
}

// finishResponse stamps the response header in place.
func (s *Server) finishResponse(resp any, handle uint32) {
	v := reflect.ValueOf(resp)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	field := v.Elem().FieldByName("ResponseHeader")
	if !field.IsValid() {
		return
	}
	header := field.Addr().Interface().(*ua.ResponseHeader)
	header.Timestamp = s.clock.Now()
	header.RequestHandle = handle
}

// sendResponse encodes a response and ships it as MSG chunks.
func (s *Server) sendResponse(ch *securechannel.Channel, requestID uint32, resp any) {
	body, err := uabin.EncodeMessage(resp)
	if err != nil {
		logger.Category("dispatch").Error("response encoding failed",
			logger.KeyChannelID, ch.ID,
			logger.KeyError, err.Error())
		s.sendFault(ch, requestID, responseHandle(resp), ua.StatusBadEncodingError)
		return
	}
	s.sendBody(ch, requestID, body)
}

// sendFault ships a ServiceFault carrying the given status.
func (s *Server) sendFault(ch *securechannel.Channel, requestID uint32, handle uint32, status ua.StatusCode) {
	fault := &ua.ServiceFault{
		ResponseHeader: ua.ResponseHeader{
			Timestamp:     s.clock.Now(),
			RequestHandle: handle,
			ServiceResult: status,
		},
	}
	body, err := uabin.EncodeMessage(fault)
	if err != nil {
		return
	}
	s.sendBody(ch, requestID, body)
}

func (s *Server) recordService(name string, start time.Time, status ua.StatusCode) {
	if s.serviceMetrics != nil {
		s.serviceMetrics.RecordRequest(name, time.Since(start), status.Name())
	}
}

// requestHeader extracts the RequestHeader from any decoded request.
func requestHeader(req any) ua.RequestHeader {
	if req == nil {
		return ua.RequestHeader{}
	}
	v := reflect.ValueOf(req)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ua.RequestHeader{}
	}
	field := v.Elem().FieldByName("RequestHeader")
	if !field.IsValid() {
		return ua.RequestHeader{}
	}
	return field.Interface().(ua.RequestHeader)
}

func requestHandle(req any) uint32 {
	return requestHeader(req).RequestHandle
}

func responseHandle(resp any) uint32 {
	v := reflect.ValueOf(resp)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return 0
	}
	field := v.Elem().FieldByName("ResponseHeader")
	if !field.IsValid() {
		return 0
	}
	return field.Interface().(ua.ResponseHeader).RequestHandle
}

func responseStatus(resp any) ua.StatusCode {
	v := reflect.ValueOf(resp)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ua.StatusGood
	}
	field := v.Elem().FieldByName("ResponseHeader")
	if !field.IsValid() {
		return ua.StatusGood
	}
	return field.Interface().(ua.ResponseHeader).ServiceResult
}

// sendBody frames a response body into MSG chunks on the channel.
func (s *Server) sendBody(ch *securechannel.Channel, requestID uint32, body []byte) {
	conn := ch.Transport
	if conn == nil {
		return
	}
	chunks := transport.BuildMessageChunks(transport.MessageTypeMessage,
		ch.ID, ch.SecurityToken.TokenID, requestID, body,
		ch.Limits.SendBufferSize, ch.NextSendSequence)
	for _, chunk := range chunks {
		if s.transportMetrics != nil {
			s.transportMetrics.RecordChunkSent(transport.MessageTypeMessage, len(chunk))
		}
		if err := conn.Send(chunk); err != nil {
			logger.Category("dispatch").Debug("response send failed",
				logger.KeyChannelID, ch.ID,
				logger.KeyError, err.Error())
			return
		}
	}
}
