package server

import (
	"time"

	"github.com/marmos91/opcuad/pkg/securechannel"
	"github.com/marmos91/opcuad/pkg/subscription"
	"github.com/marmos91/opcuad/pkg/ua"
)

func (s *Server) handleCreateSubscription(ctx *requestContext, req *ua.CreateSubscriptionRequest) any {
	sub, status := s.subs.CreateSubscription(ctx.session.ID, req)
	if status != ua.StatusGood {
		return s.fault(status)
	}
	if s.runtimeMetrics != nil {
		s.runtimeMetrics.SetSubscriptionCount(s.subs.Count())
	}
	return &ua.CreateSubscriptionResponse{
		SubscriptionID:            sub.ID,
		RevisedPublishingInterval: float64(sub.PublishingInterval.Milliseconds()),
		RevisedLifetimeCount:      sub.LifetimeCount,
		RevisedMaxKeepAliveCount:  sub.MaxKeepAliveCount,
	}
}

func (s *Server) handleModifySubscription(ctx *requestContext, req *ua.ModifySubscriptionRequest) any {
	sub, status := s.subs.Modify(ctx.session.ID, req)
	if status != ua.StatusGood {
		return s.fault(status)
	}
	return &ua.ModifySubscriptionResponse{
		RevisedPublishingInterval: float64(sub.PublishingInterval.Milliseconds()),
		RevisedLifetimeCount:      sub.LifetimeCount,
		RevisedMaxKeepAliveCount:  sub.MaxKeepAliveCount,
	}
}

func (s *Server) handleSetPublishingMode(ctx *requestContext, req *ua.SetPublishingModeRequest) any {
	if len(req.SubscriptionIDs) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	results := s.subs.SetPublishingMode(ctx.session.ID, req.PublishingEnabled, req.SubscriptionIDs)
	return &ua.SetPublishingModeResponse{Results: results}
}

func (s *Server) handleDeleteSubscriptions(ctx *requestContext, req *ua.DeleteSubscriptionsRequest) any {
	if len(req.SubscriptionIDs) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	results := s.subs.Delete(ctx.session.ID, req.SubscriptionIDs)
	return &ua.DeleteSubscriptionsResponse{Results: results}
}

func (s *Server) handleTransferSubscriptions(ctx *requestContext, req *ua.TransferSubscriptionsRequest) any {
	if len(req.SubscriptionIDs) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	// Only the generic subscriber path exists; cross-session transfer is
	// answered per item rather than left out of the service table.
	results := make([]ua.TransferResult, len(req.SubscriptionIDs))
	for i := range results {
		results[i] = ua.TransferResult{StatusCode: ua.StatusBadServiceUnsupported}
	}
	return &ua.TransferSubscriptionsResponse{Results: results}
}

func (s *Server) handleCreateMonitoredItems(ctx *requestContext, req *ua.CreateMonitoredItemsRequest) any {
	sub, status := s.subs.Get(ctx.session.ID, req.SubscriptionID)
	if status != ua.StatusGood {
		return s.fault(status)
	}
	if len(req.ItemsToCreate) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	if req.TimestampsToReturn > ua.TimestampsNeither {
		return s.fault(ua.StatusBadTimestampsToReturnInvalid)
	}

	results := make([]ua.MonitoredItemCreateResult, len(req.ItemsToCreate))
	for i, item := range req.ItemsToCreate {
		results[i] = s.createMonitoredItem(sub, item)
	}
	return &ua.CreateMonitoredItemsResponse{Results: results}
}

func (s *Server) createMonitoredItem(sub *subscription.Subscription, item ua.MonitoredItemCreateRequest) ua.MonitoredItemCreateResult {
	fail := func(status ua.StatusCode) ua.MonitoredItemCreateResult {
		return ua.MonitoredItemCreateResult{StatusCode: status}
	}

	if s.config.MaxMonitoredItemsPerSub > 0 && sub.ItemCount() >= s.config.MaxMonitoredItemsPerSub {
		return fail(ua.StatusBadTooManyMonitoredItems)
	}
	node, status := s.store.Get(item.ItemToMonitor.NodeID)
	if status != ua.StatusGood {
		return fail(status)
	}
	if item.ItemToMonitor.AttributeID == 0 || item.ItemToMonitor.AttributeID > ua.AttrUserExecutable {
		return fail(ua.StatusBadAttributeIDInvalid)
	}
	if item.MonitoringMode > ua.MonitoringReporting {
		return fail(ua.StatusBadMonitoringModeInvalid)
	}

	// Only DataChange filters are supported on the generic path.
	filter := ua.DataChangeFilter{Trigger: ua.TriggerStatusValue}
	if f := item.RequestedParameters.Filter; f != nil && f.HasBody() {
		decoded, ok := f.Decoded.(*ua.DataChangeFilter)
		if !ok {
			return fail(ua.StatusBadMonitoredItemFilterUnsupported)
		}
		filter = *decoded
	}

	params := item.RequestedParameters
	// The node's minimum sampling interval is a floor.
	if node.Class == ua.NodeClassVariable && params.SamplingInterval < node.MinimumSamplingInterval {
		params.SamplingInterval = node.MinimumSamplingInterval
	}
	if params.SamplingInterval < 0 {
		params.SamplingInterval = float64(s.config.MinPublishingInterval.Milliseconds())
	}

	mi := sub.AddItem(item.ItemToMonitor, item.MonitoringMode, params, filter)
	return ua.MonitoredItemCreateResult{
		StatusCode:              ua.StatusGood,
		MonitoredItemID:         mi.ID,
		RevisedSamplingInterval: params.SamplingInterval,
		RevisedQueueSize:        mi.QueueSize,
	}
}

func (s *Server) handleModifyMonitoredItems(ctx *requestContext, req *ua.ModifyMonitoredItemsRequest) any {
	sub, status := s.subs.Get(ctx.session.ID, req.SubscriptionID)
	if status != ua.StatusGood {
		return s.fault(status)
	}
	if len(req.ItemsToModify) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}

	results := make([]ua.MonitoredItemModifyResult, len(req.ItemsToModify))
	for i, item := range req.ItemsToModify {
		mi, ok := sub.GetItem(item.MonitoredItemID)
		if !ok {
			results[i] = ua.MonitoredItemModifyResult{StatusCode: ua.StatusBadMonitoredItemIDInvalid}
			continue
		}
		mi.ClientHandle = item.RequestedParameters.ClientHandle
		mi.SamplingInterval = time.Duration(item.RequestedParameters.SamplingInterval * float64(time.Millisecond))
		if item.RequestedParameters.QueueSize > 0 {
			mi.QueueSize = item.RequestedParameters.QueueSize
		}
		mi.DiscardOldest = item.RequestedParameters.DiscardOldest
		results[i] = ua.MonitoredItemModifyResult{
			StatusCode:              ua.StatusGood,
			RevisedSamplingInterval: item.RequestedParameters.SamplingInterval,
			RevisedQueueSize:        mi.QueueSize,
		}
	}
	return &ua.ModifyMonitoredItemsResponse{Results: results}
}

func (s *Server) handleSetMonitoringMode(ctx *requestContext, req *ua.SetMonitoringModeRequest) any {
	sub, status := s.subs.Get(ctx.session.ID, req.SubscriptionID)
	if status != ua.StatusGood {
		return s.fault(status)
	}
	if len(req.MonitoredItemIDs) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	if req.MonitoringMode > ua.MonitoringReporting {
		return s.fault(ua.StatusBadMonitoringModeInvalid)
	}

	results := make([]ua.StatusCode, len(req.MonitoredItemIDs))
	for i, id := range req.MonitoredItemIDs {
		mi, ok := sub.GetItem(id)
		if !ok {
			results[i] = ua.StatusBadMonitoredItemIDInvalid
			continue
		}
		mi.Mode = req.MonitoringMode
		results[i] = ua.StatusGood
	}
	return &ua.SetMonitoringModeResponse{Results: results}
}

func (s *Server) handleDeleteMonitoredItems(ctx *requestContext, req *ua.DeleteMonitoredItemsRequest) any {
	sub, status := s.subs.Get(ctx.session.ID, req.SubscriptionID)
	if status != ua.StatusGood {
		return s.fault(status)
	}
	if len(req.MonitoredItemIDs) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}

	results := make([]ua.StatusCode, len(req.MonitoredItemIDs))
	for i, id := range req.MonitoredItemIDs {
		if sub.RemoveItem(id) {
			results[i] = ua.StatusGood
		} else {
			results[i] = ua.StatusBadMonitoredItemIDInvalid
		}
	}
	return &ua.DeleteMonitoredItemsResponse{Results: results}
}

// handlePublish parks the request on the subscription engine. The response
// is produced later by a publish cycle, a queued notification, a status
// change, or a timeout; the closure ships it on the channel the request
// arrived on.
func (s *Server) handlePublish(ctx *requestContext, req *ua.PublishRequest) any {
	if !s.subs.HasSubscriptions(ctx.session.ID) {
		return s.fault(ua.StatusBadNoSubscription)
	}

	ackResults := s.subs.Acknowledge(ctx.session.ID, req.SubscriptionAcknowledgements)

	ch := ctx.channel
	requestID := ctx.requestID
	handle := ctx.handle
	parked := &subscription.ParkedPublish{
		RequestHandle: handle,
		Deadline:      ctx.session.Deadline(),
		Respond: func(resp *ua.PublishResponse) {
			resp.Results = ackResults
			s.finishResponse(resp, handle)
			if s.runtimeMetrics != nil {
				if len(resp.NotificationMessage.NotificationData) > 0 {
					s.runtimeMetrics.RecordNotificationPublished(resp.SubscriptionID)
				} else if resp.ResponseHeader.ServiceResult == ua.StatusGood {
					s.runtimeMetrics.RecordKeepAlive(resp.SubscriptionID)
				}
			}
			s.sendPublishResponse(ch, requestID, resp)
		},
	}
	if !s.subs.Park(ctx.session.ID, parked) {
		return s.fault(ua.StatusBadTooManyPublishRequests)
	}
	return nil
}

func (s *Server) sendPublishResponse(ch *securechannel.Channel, requestID uint32, resp *ua.PublishResponse) {
	s.sendResponse(ch, requestID, resp)
}

func (s *Server) handleRepublish(ctx *requestContext, req *ua.RepublishRequest) any {
	msg, status := s.subs.Republish(ctx.session.ID, req.SubscriptionID, req.RetransmitSequenceNumber)
	if status != ua.StatusGood {
		return s.fault(status)
	}
	return &ua.RepublishResponse{NotificationMessage: msg}
}
