package server

import (
	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/ua"
)

func (s *Server) handleCall(ctx *requestContext, req *ua.CallRequest) any {
	if len(req.MethodsToCall) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	results := make([]ua.CallMethodResult, len(req.MethodsToCall))
	for i, call := range req.MethodsToCall {
		results[i] = s.callMethod(ctx, call)
	}
	return &ua.CallResponse{Results: results}
}

// callMethod resolves and invokes one method.
func (s *Server) callMethod(ctx *requestContext, call ua.CallMethodRequest) ua.CallMethodResult {
	fail := func(status ua.StatusCode) ua.CallMethodResult {
		return ua.CallMethodResult{StatusCode: status}
	}

	object, status := s.store.Get(call.ObjectID)
	if status != ua.StatusGood {
		return fail(ua.StatusBadNodeIDUnknown)
	}
	method, status := s.store.Get(call.MethodID)
	if status != ua.StatusGood {
		return fail(ua.StatusBadMethodInvalid)
	}
	if method.Class != ua.NodeClassMethod {
		return fail(ua.StatusBadMethodInvalid)
	}

	// The method must hang off the object via a HasComponent (or subtype)
	// reference.
	hasComponent := ua.NewNumericNodeID(0, ua.IDHasComponent)
	connected := false
	for _, ref := range object.References {
		if ref.IsInverse || !ref.Target.IsLocal() || ref.Target.NodeID != call.MethodID {
			continue
		}
		if ref.ReferenceTypeID == hasComponent || s.store.IsSubtypeOf(ref.ReferenceTypeID, hasComponent) {
			connected = true
			break
		}
	}
	if !connected {
		return fail(ua.StatusBadMethodInvalid)
	}

	if !method.Executable {
		return fail(ua.StatusBadNotExecutable)
	}
	if !method.UserExecutable || !s.accessControl.AllowCall(ctx.session.Identity, call.ObjectID, call.MethodID) {
		return fail(ua.StatusBadUserAccessDenied)
	}
	if method.Method == nil {
		return fail(ua.StatusBadNotImplemented)
	}

	outputs, status := method.Method(call.ObjectID, call.InputArguments)
	if status.IsBad() {
		return fail(status)
	}
	logger.Category("dispatch").Debug("method invoked",
		logger.KeyNodeID, call.MethodID.String(),
		logger.KeySessionID, ctx.session.ID.String())
	return ua.CallMethodResult{StatusCode: status, OutputArguments: outputs}
}
