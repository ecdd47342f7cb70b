package server

import (
	"time"

	"github.com/marmos91/opcuad/pkg/ua"
)

func (s *Server) handleRead(ctx *requestContext, req *ua.ReadRequest) any {
	if len(req.NodesToRead) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}
	if req.TimestampsToReturn > ua.TimestampsNeither {
		return s.fault(ua.StatusBadTimestampsToReturnInvalid)
	}
	if req.MaxAge < 0 {
		return s.fault(ua.StatusBadMaxAgeInvalid)
	}

	wall := s.clock.Now()
	results := make([]ua.DataValue, len(req.NodesToRead))
	for i, item := range req.NodesToRead {
		if !s.accessControl.AllowRead(ctx.session.Identity, item.NodeID, item.AttributeID) {
			results[i] = ua.NewDataValueStatus(ua.StatusBadUserAccessDenied)
			continue
		}
		dv := s.store.ReadAttribute(item.NodeID, item.AttributeID, item.IndexRange)
		results[i] = applyTimestamps(dv, req.TimestampsToReturn, wall)
	}
	return &ua.ReadResponse{Results: results}
}

// applyTimestamps shapes the DataValue's timestamp fields to the request.
func applyTimestamps(dv ua.DataValue, tsr ua.TimestampsToReturn, wall time.Time) ua.DataValue {
	switch tsr {
	case ua.TimestampsSource:
		if !dv.HasSourceTimestamp {
			dv = dv.WithSourceTimestamp(wall)
		}
		dv.HasServerTimestamp = false
	case ua.TimestampsServer:
		dv = dv.WithServerTimestamp(wall)
		dv.HasSourceTimestamp = false
	case ua.TimestampsBoth:
		if !dv.HasSourceTimestamp {
			dv = dv.WithSourceTimestamp(wall)
		}
		dv = dv.WithServerTimestamp(wall)
	case ua.TimestampsNeither:
		dv.HasSourceTimestamp = false
		dv.HasServerTimestamp = false
	}
	return dv
}

func (s *Server) handleWrite(ctx *requestContext, req *ua.WriteRequest) any {
	if len(req.NodesToWrite) == 0 {
		return s.fault(ua.StatusBadNothingToDo)
	}

	results := make([]ua.StatusCode, len(req.NodesToWrite))
	for i, item := range req.NodesToWrite {
		if !s.accessControl.AllowWrite(ctx.session.Identity, item.NodeID, item.AttributeID) {
			results[i] = ua.StatusBadUserAccessDenied
			continue
		}
		results[i] = s.store.WriteAttribute(item.NodeID, item.AttributeID, item.IndexRange, item.Value)
	}
	return &ua.WriteResponse{Results: results}
}
