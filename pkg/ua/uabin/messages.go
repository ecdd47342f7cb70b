package uabin

import (
	"fmt"

	"github.com/marmos91/opcuad/pkg/ua"
)

// EncodingID returns the binary-encoding NodeId numeric value for a service
// message, or 0 when the type is unknown.
func EncodingID(msg any) uint32 {
	switch msg.(type) {
	case *ua.ServiceFault:
		return ua.IDServiceFaultEncoding
	case *ua.FindServersRequest:
		return ua.IDFindServersRequestEncoding
	case *ua.FindServersResponse:
		return ua.IDFindServersResponseEncoding
	case *ua.GetEndpointsRequest:
		return ua.IDGetEndpointsRequestEncoding
	case *ua.GetEndpointsResponse:
		return ua.IDGetEndpointsResponseEncoding
	case *ua.OpenSecureChannelRequest:
		return ua.IDOpenSecureChannelRequestEncoding
	case *ua.OpenSecureChannelResponse:
		return ua.IDOpenSecureChannelResponseEncoding
	case *ua.CloseSecureChannelRequest:
		return ua.IDCloseSecureChannelRequestEncoding
	case *ua.CloseSecureChannelResponse:
		return ua.IDCloseSecureChannelResponseEncoding
	case *ua.CreateSessionRequest:
		return ua.IDCreateSessionRequestEncoding
	case *ua.CreateSessionResponse:
		return ua.IDCreateSessionResponseEncoding
	case *ua.ActivateSessionRequest:
		return ua.IDActivateSessionRequestEncoding
	case *ua.ActivateSessionResponse:
		return ua.IDActivateSessionResponseEncoding
	case *ua.CloseSessionRequest:
		return ua.IDCloseSessionRequestEncoding
	case *ua.CloseSessionResponse:
		return ua.IDCloseSessionResponseEncoding
	case *ua.CancelRequest:
		return ua.IDCancelRequestEncoding
	case *ua.CancelResponse:
		return ua.IDCancelResponseEncoding
	case *ua.AddNodesRequest:
		return ua.IDAddNodesRequestEncoding
	case *ua.AddNodesResponse:
		return ua.IDAddNodesResponseEncoding
	case *ua.AddReferencesRequest:
		return ua.IDAddReferencesRequestEncoding
	case *ua.AddReferencesResponse:
		return ua.IDAddReferencesResponseEncoding
	case *ua.DeleteNodesRequest:
		return ua.IDDeleteNodesRequestEncoding
	case *ua.DeleteNodesResponse:
		return ua.IDDeleteNodesResponseEncoding
	case *ua.DeleteReferencesRequest:
		return ua.IDDeleteReferencesRequestEncoding
	case *ua.DeleteReferencesResponse:
		return ua.IDDeleteReferencesResponseEncoding
	case *ua.BrowseRequest:
		return ua.IDBrowseRequestEncoding
	case *ua.BrowseResponse:
		return ua.IDBrowseResponseEncoding
	case *ua.BrowseNextRequest:
		return ua.IDBrowseNextRequestEncoding
	case *ua.BrowseNextResponse:
		return ua.IDBrowseNextResponseEncoding
	case *ua.TranslateBrowsePathsRequest:
		return ua.IDTranslateBrowsePathsRequestEncoding
	case *ua.TranslateBrowsePathsResponse:
		return ua.IDTranslateBrowsePathsResponseEncoding
	case *ua.RegisterNodesRequest:
		return ua.IDRegisterNodesRequestEncoding
	case *ua.RegisterNodesResponse:
		return ua.IDRegisterNodesResponseEncoding
	case *ua.UnregisterNodesRequest:
		return ua.IDUnregisterNodesRequestEncoding
	case *ua.UnregisterNodesResponse:
		return ua.IDUnregisterNodesResponseEncoding
	case *ua.ReadRequest:
		return ua.IDReadRequestEncoding
	case *ua.ReadResponse:
		return ua.IDReadResponseEncoding
	case *ua.WriteRequest:
		return ua.IDWriteRequestEncoding
	case *ua.WriteResponse:
		return ua.IDWriteResponseEncoding
	case *ua.CallRequest:
		return ua.IDCallRequestEncoding
	case *ua.CallResponse:
		return ua.IDCallResponseEncoding
	case *ua.CreateMonitoredItemsRequest:
		return ua.IDCreateMonitoredItemsRequestEncoding
	case *ua.CreateMonitoredItemsResponse:
		return ua.IDCreateMonitoredItemsResponseEncoding
	case *ua.ModifyMonitoredItemsRequest:
		return ua.IDModifyMonitoredItemsRequestEncoding
	case *ua.ModifyMonitoredItemsResponse:
		return ua.IDModifyMonitoredItemsResponseEncoding
	case *ua.SetMonitoringModeRequest:
		return ua.IDSetMonitoringModeRequestEncoding
	case *ua.SetMonitoringModeResponse:
		return ua.IDSetMonitoringModeResponseEncoding
	case *ua.DeleteMonitoredItemsRequest:
		return ua.IDDeleteMonitoredItemsRequestEncoding
	case *ua.DeleteMonitoredItemsResponse:
		return ua.IDDeleteMonitoredItemsResponseEncoding
	case *ua.CreateSubscriptionRequest:
		return ua.IDCreateSubscriptionRequestEncoding
	case *ua.CreateSubscriptionResponse:
		return ua.IDCreateSubscriptionResponseEncoding
	case *ua.ModifySubscriptionRequest:
		return ua.IDModifySubscriptionRequestEncoding
	case *ua.ModifySubscriptionResponse:
		return ua.IDModifySubscriptionResponseEncoding
	case *ua.SetPublishingModeRequest:
		return ua.IDSetPublishingModeRequestEncoding
	case *ua.SetPublishingModeResponse:
		return ua.IDSetPublishingModeResponseEncoding
	case *ua.PublishRequest:
		return ua.IDPublishRequestEncoding
	case *ua.PublishResponse:
		return ua.IDPublishResponseEncoding
	case *ua.RepublishRequest:
		return ua.IDRepublishRequestEncoding
	case *ua.RepublishResponse:
		return ua.IDRepublishResponseEncoding
	case *ua.TransferSubscriptionsRequest:
		return ua.IDTransferSubscriptionsRequestEncoding
	case *ua.TransferSubscriptionsResponse:
		return ua.IDTransferSubscriptionsResponseEncoding
	case *ua.DeleteSubscriptionsRequest:
		return ua.IDDeleteSubscriptionsRequestEncoding
	case *ua.DeleteSubscriptionsResponse:
		return ua.IDDeleteSubscriptionsResponseEncoding
	default:
		return 0
	}
}

// EncodeMessage encodes a service message prefixed by its binary-encoding
// NodeId, as it appears in a MSG/OPN chunk body.
func EncodeMessage(msg any) ([]byte, error) {
	id := EncodingID(msg)
	if id == 0 {
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, msg)
	}
	w := NewWriter(256)
	w.WriteNodeID(ua.NewNumericNodeID(0, id))
	writeMessageBody(w, msg)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeMessage decodes a service message from a chunk body, returning the
// message and its binary-encoding id.
func DecodeMessage(data []byte) (any, uint32, error) {
	r := NewReader(data)
	typeID := r.ReadNodeID()
	if err := r.Err(); err != nil {
		return nil, 0, err
	}
	if typeID.Namespace != 0 || typeID.Type != ua.IDTypeNumeric {
		return nil, 0, fmt.Errorf("%w: request type %s", ErrUnknownType, typeID)
	}
	msg := readMessageBody(r, typeID.Numeric)
	if msg == nil {
		return nil, typeID.Numeric, fmt.Errorf("%w: encoding id %d", ErrUnknownType, typeID.Numeric)
	}
	if err := r.Err(); err != nil {
		return nil, typeID.Numeric, err
	}
	return msg, typeID.Numeric, nil
}

func writeMessageBody(w *Writer, msg any) {
	switch m := msg.(type) {
	case *ua.ServiceFault:
		w.writeResponseHeader(m.ResponseHeader)

	case *ua.FindServersRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteString(m.EndpointURL)
		w.writeStringArray(m.LocaleIDs)
		w.writeStringArray(m.ServerURIs)
	case *ua.FindServersResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteArrayLength(len(m.Servers))
		for _, s := range m.Servers {
			w.writeApplicationDescription(s)
		}

	case *ua.GetEndpointsRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteString(m.EndpointURL)
		w.writeStringArray(m.LocaleIDs)
		w.writeStringArray(m.ProfileURIs)
	case *ua.GetEndpointsResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeEndpointDescriptionArray(m.Endpoints)

	case *ua.OpenSecureChannelRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteUint32(m.ClientProtocolVersion)
		w.WriteUint32(m.RequestType)
		w.WriteUint32(uint32(m.SecurityMode))
		w.WriteByteString(m.ClientNonce)
		w.WriteUint32(m.RequestedLifetime)
	case *ua.OpenSecureChannelResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteUint32(m.ServerProtocolVersion)
		w.WriteUint32(m.SecurityToken.ChannelID)
		w.WriteUint32(m.SecurityToken.TokenID)
		w.WriteDateTime(m.SecurityToken.CreatedAt)
		w.WriteUint32(m.SecurityToken.RevisedLifetime)
		w.WriteByteString(m.ServerNonce)

	case *ua.CloseSecureChannelRequest:
		w.writeRequestHeader(m.RequestHeader)
	case *ua.CloseSecureChannelResponse:
		w.writeResponseHeader(m.ResponseHeader)

	case *ua.CreateSessionRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.writeApplicationDescription(m.ClientDescription)
		w.WriteString(m.ServerURI)
		w.WriteString(m.EndpointURL)
		w.WriteString(m.SessionName)
		w.WriteByteString(m.ClientNonce)
		w.WriteByteString(m.ClientCertificate)
		w.WriteFloat64(m.RequestedSessionTimeout)
		w.WriteUint32(m.MaxResponseMessageSize)
	case *ua.CreateSessionResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteNodeID(m.SessionID)
		w.WriteNodeID(m.AuthenticationToken)
		w.WriteFloat64(m.RevisedSessionTimeout)
		w.WriteByteString(m.ServerNonce)
		w.WriteByteString(m.ServerCertificate)
		w.writeEndpointDescriptionArray(m.ServerEndpoints)
		w.writeSignedSoftwareCertificateArray(m.ServerSoftwareCertificates)
		w.writeSignatureData(m.ServerSignature)
		w.WriteUint32(m.MaxRequestMessageSize)

	case *ua.ActivateSessionRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.writeSignatureData(m.ClientSignature)
		w.writeSignedSoftwareCertificateArray(m.ClientSoftwareCertificates)
		w.writeStringArray(m.LocaleIDs)
		w.WriteExtensionObject(m.UserIdentityToken)
		w.writeSignatureData(m.UserTokenSignature)
	case *ua.ActivateSessionResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteByteString(m.ServerNonce)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.CloseSessionRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteBool(m.DeleteSubscriptions)
	case *ua.CloseSessionResponse:
		w.writeResponseHeader(m.ResponseHeader)

	case *ua.CancelRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteUint32(m.RequestHandle)
	case *ua.CancelResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteUint32(m.CancelCount)

	case *ua.AddNodesRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteArrayLength(len(m.NodesToAdd))
		for _, item := range m.NodesToAdd {
			w.WriteExpandedNodeID(item.ParentNodeID)
			w.WriteNodeID(item.ReferenceTypeID)
			w.WriteExpandedNodeID(item.RequestedNewNodeID)
			w.WriteQualifiedName(item.BrowseName)
			w.WriteUint32(uint32(item.NodeClass))
			w.WriteExtensionObject(item.NodeAttributes)
			w.WriteExpandedNodeID(item.TypeDefinition)
		}
	case *ua.AddNodesResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteArrayLength(len(m.Results))
		for _, res := range m.Results {
			w.WriteStatusCode(res.StatusCode)
			w.WriteNodeID(res.AddedNodeID)
		}
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.AddReferencesRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteArrayLength(len(m.ReferencesToAdd))
		for _, item := range m.ReferencesToAdd {
			w.WriteNodeID(item.SourceNodeID)
			w.WriteNodeID(item.ReferenceTypeID)
			w.WriteBool(item.IsForward)
			w.WriteString(item.TargetServerURI)
			w.WriteExpandedNodeID(item.TargetNodeID)
			w.WriteUint32(uint32(item.TargetNodeClass))
		}
	case *ua.AddReferencesResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.DeleteNodesRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteArrayLength(len(m.NodesToDelete))
		for _, item := range m.NodesToDelete {
			w.WriteNodeID(item.NodeID)
			w.WriteBool(item.DeleteTargetReferences)
		}
	case *ua.DeleteNodesResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.DeleteReferencesRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteArrayLength(len(m.ReferencesToDelete))
		for _, item := range m.ReferencesToDelete {
			w.WriteNodeID(item.SourceNodeID)
			w.WriteNodeID(item.ReferenceTypeID)
			w.WriteBool(item.IsForward)
			w.WriteExpandedNodeID(item.TargetNodeID)
			w.WriteBool(item.DeleteBidirectional)
		}
	case *ua.DeleteReferencesResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.BrowseRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteNodeID(m.View.ViewID)
		w.WriteDateTime(m.View.Timestamp)
		w.WriteUint32(m.View.ViewVersion)
		w.WriteUint32(m.RequestedMaxReferencesPerNode)
		w.WriteArrayLength(len(m.NodesToBrowse))
		for _, b := range m.NodesToBrowse {
			w.WriteNodeID(b.NodeID)
			w.WriteUint32(uint32(b.Direction))
			w.WriteNodeID(b.ReferenceTypeID)
			w.WriteBool(b.IncludeSubtypes)
			w.WriteUint32(b.NodeClassMask)
			w.WriteUint32(b.ResultMask)
		}
	case *ua.BrowseResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeBrowseResultArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.BrowseNextRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteBool(m.ReleaseContinuationPoints)
		w.WriteArrayLength(len(m.ContinuationPoints))
		for _, cp := range m.ContinuationPoints {
			w.WriteByteString(cp)
		}
	case *ua.BrowseNextResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeBrowseResultArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.TranslateBrowsePathsRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteArrayLength(len(m.BrowsePaths))
		for _, p := range m.BrowsePaths {
			w.WriteNodeID(p.StartingNode)
			w.WriteArrayLength(len(p.RelativePath))
			for _, e := range p.RelativePath {
				w.WriteNodeID(e.ReferenceTypeID)
				w.WriteBool(e.IsInverse)
				w.WriteBool(e.IncludeSubtypes)
				w.WriteQualifiedName(e.TargetName)
			}
		}
	case *ua.TranslateBrowsePathsResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteArrayLength(len(m.Results))
		for _, res := range m.Results {
			w.WriteStatusCode(res.StatusCode)
			w.WriteArrayLength(len(res.Targets))
			for _, t := range res.Targets {
				w.WriteExpandedNodeID(t.TargetID)
				w.WriteUint32(t.RemainingPathIndex)
			}
		}
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.RegisterNodesRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.writeNodeIDArray(m.NodesToRegister)
	case *ua.RegisterNodesResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeNodeIDArray(m.RegisteredNodeIDs)

	case *ua.UnregisterNodesRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.writeNodeIDArray(m.NodesToUnregister)
	case *ua.UnregisterNodesResponse:
		w.writeResponseHeader(m.ResponseHeader)

	case *ua.ReadRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteFloat64(m.MaxAge)
		w.WriteUint32(uint32(m.TimestampsToReturn))
		w.WriteArrayLength(len(m.NodesToRead))
		for _, n := range m.NodesToRead {
			w.writeReadValueID(n)
		}
	case *ua.ReadResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteArrayLength(len(m.Results))
		for _, d := range m.Results {
			w.WriteDataValue(d)
		}
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.WriteRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteArrayLength(len(m.NodesToWrite))
		for _, n := range m.NodesToWrite {
			w.WriteNodeID(n.NodeID)
			w.WriteUint32(uint32(n.AttributeID))
			w.WriteString(n.IndexRange)
			w.WriteDataValue(n.Value)
		}
	case *ua.WriteResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.CallRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteArrayLength(len(m.MethodsToCall))
		for _, c := range m.MethodsToCall {
			w.WriteNodeID(c.ObjectID)
			w.WriteNodeID(c.MethodID)
			w.writeVariantArrayField(c.InputArguments)
		}
	case *ua.CallResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteArrayLength(len(m.Results))
		for _, res := range m.Results {
			w.WriteStatusCode(res.StatusCode)
			w.writeStatusCodeArray(res.InputArgumentResults)
			w.writeDiagnosticInfoArray(res.InputArgumentDiagnostics)
			w.writeVariantArrayField(res.OutputArguments)
		}
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.CreateMonitoredItemsRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteUint32(m.SubscriptionID)
		w.WriteUint32(uint32(m.TimestampsToReturn))
		w.WriteArrayLength(len(m.ItemsToCreate))
		for _, item := range m.ItemsToCreate {
			w.writeReadValueID(item.ItemToMonitor)
			w.WriteUint32(uint32(item.MonitoringMode))
			w.writeMonitoringParameters(item.RequestedParameters)
		}
	case *ua.CreateMonitoredItemsResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteArrayLength(len(m.Results))
		for _, res := range m.Results {
			w.WriteStatusCode(res.StatusCode)
			w.WriteUint32(res.MonitoredItemID)
			w.WriteFloat64(res.RevisedSamplingInterval)
			w.WriteUint32(res.RevisedQueueSize)
			w.WriteExtensionObject(res.FilterResult)
		}
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.ModifyMonitoredItemsRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteUint32(m.SubscriptionID)
		w.WriteUint32(uint32(m.TimestampsToReturn))
		w.WriteArrayLength(len(m.ItemsToModify))
		for _, item := range m.ItemsToModify {
			w.WriteUint32(item.MonitoredItemID)
			w.writeMonitoringParameters(item.RequestedParameters)
		}
	case *ua.ModifyMonitoredItemsResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteArrayLength(len(m.Results))
		for _, res := range m.Results {
			w.WriteStatusCode(res.StatusCode)
			w.WriteFloat64(res.RevisedSamplingInterval)
			w.WriteUint32(res.RevisedQueueSize)
			w.WriteExtensionObject(res.FilterResult)
		}
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.SetMonitoringModeRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteUint32(m.SubscriptionID)
		w.WriteUint32(uint32(m.MonitoringMode))
		w.writeUint32Array(m.MonitoredItemIDs)
	case *ua.SetMonitoringModeResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.DeleteMonitoredItemsRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteUint32(m.SubscriptionID)
		w.writeUint32Array(m.MonitoredItemIDs)
	case *ua.DeleteMonitoredItemsResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.CreateSubscriptionRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteFloat64(m.RequestedPublishingInterval)
		w.WriteUint32(m.RequestedLifetimeCount)
		w.WriteUint32(m.RequestedMaxKeepAliveCount)
		w.WriteUint32(m.MaxNotificationsPerPublish)
		w.WriteBool(m.PublishingEnabled)
		w.WriteUint8(m.Priority)
	case *ua.CreateSubscriptionResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteUint32(m.SubscriptionID)
		w.WriteFloat64(m.RevisedPublishingInterval)
		w.WriteUint32(m.RevisedLifetimeCount)
		w.WriteUint32(m.RevisedMaxKeepAliveCount)

	case *ua.ModifySubscriptionRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteUint32(m.SubscriptionID)
		w.WriteFloat64(m.RequestedPublishingInterval)
		w.WriteUint32(m.RequestedLifetimeCount)
		w.WriteUint32(m.RequestedMaxKeepAliveCount)
		w.WriteUint32(m.MaxNotificationsPerPublish)
		w.WriteUint8(m.Priority)
	case *ua.ModifySubscriptionResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteFloat64(m.RevisedPublishingInterval)
		w.WriteUint32(m.RevisedLifetimeCount)
		w.WriteUint32(m.RevisedMaxKeepAliveCount)

	case *ua.SetPublishingModeRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteBool(m.PublishingEnabled)
		w.writeUint32Array(m.SubscriptionIDs)
	case *ua.SetPublishingModeResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.PublishRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteArrayLength(len(m.SubscriptionAcknowledgements))
		for _, ack := range m.SubscriptionAcknowledgements {
			w.WriteUint32(ack.SubscriptionID)
			w.WriteUint32(ack.SequenceNumber)
		}
	case *ua.PublishResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteUint32(m.SubscriptionID)
		w.writeUint32Array(m.AvailableSequenceNumbers)
		w.WriteBool(m.MoreNotifications)
		w.writeNotificationMessage(m.NotificationMessage)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.RepublishRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.WriteUint32(m.SubscriptionID)
		w.WriteUint32(m.RetransmitSequenceNumber)
	case *ua.RepublishResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeNotificationMessage(m.NotificationMessage)

	case *ua.TransferSubscriptionsRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.writeUint32Array(m.SubscriptionIDs)
		w.WriteBool(m.SendInitialValues)
	case *ua.TransferSubscriptionsResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.WriteArrayLength(len(m.Results))
		for _, res := range m.Results {
			w.WriteStatusCode(res.StatusCode)
			w.writeUint32Array(res.AvailableSequenceNumbers)
		}
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	case *ua.DeleteSubscriptionsRequest:
		w.writeRequestHeader(m.RequestHeader)
		w.writeUint32Array(m.SubscriptionIDs)
	case *ua.DeleteSubscriptionsResponse:
		w.writeResponseHeader(m.ResponseHeader)
		w.writeStatusCodeArray(m.Results)
		w.writeDiagnosticInfoArray(m.DiagnosticInfos)

	default:
		w.SetError(fmt.Errorf("%w: %T", ErrUnknownType, msg))
	}
}

func readMessageBody(r *Reader, encodingID uint32) any {
	switch encodingID {
	case ua.IDServiceFaultEncoding:
		return &ua.ServiceFault{ResponseHeader: r.readResponseHeader()}

	case ua.IDFindServersRequestEncoding:
		return &ua.FindServersRequest{
			RequestHeader: r.readRequestHeader(),
			EndpointURL:   r.ReadString(),
			LocaleIDs:     r.readStringArray(),
			ServerURIs:    r.readStringArray(),
		}
	case ua.IDFindServersResponseEncoding:
		m := &ua.FindServersResponse{ResponseHeader: r.readResponseHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.Servers = make([]ua.ApplicationDescription, n)
			for i := range m.Servers {
				m.Servers[i] = r.readApplicationDescription()
			}
		}
		return m

	case ua.IDGetEndpointsRequestEncoding:
		return &ua.GetEndpointsRequest{
			RequestHeader: r.readRequestHeader(),
			EndpointURL:   r.ReadString(),
			LocaleIDs:     r.readStringArray(),
			ProfileURIs:   r.readStringArray(),
		}
	case ua.IDGetEndpointsResponseEncoding:
		return &ua.GetEndpointsResponse{
			ResponseHeader: r.readResponseHeader(),
			Endpoints:      r.readEndpointDescriptionArray(),
		}

	case ua.IDOpenSecureChannelRequestEncoding:
		return &ua.OpenSecureChannelRequest{
			RequestHeader:         r.readRequestHeader(),
			ClientProtocolVersion: r.ReadUint32(),
			RequestType:           r.ReadUint32(),
			SecurityMode:          ua.MessageSecurityMode(r.ReadUint32()),
			ClientNonce:           r.ReadByteString(),
			RequestedLifetime:     r.ReadUint32(),
		}
	case ua.IDOpenSecureChannelResponseEncoding:
		return &ua.OpenSecureChannelResponse{
			ResponseHeader:        r.readResponseHeader(),
			ServerProtocolVersion: r.ReadUint32(),
			SecurityToken: ua.ChannelSecurityToken{
				ChannelID:       r.ReadUint32(),
				TokenID:         r.ReadUint32(),
				CreatedAt:       r.ReadDateTime(),
				RevisedLifetime: r.ReadUint32(),
			},
			ServerNonce: r.ReadByteString(),
		}

	case ua.IDCloseSecureChannelRequestEncoding:
		return &ua.CloseSecureChannelRequest{RequestHeader: r.readRequestHeader()}
	case ua.IDCloseSecureChannelResponseEncoding:
		return &ua.CloseSecureChannelResponse{ResponseHeader: r.readResponseHeader()}

	case ua.IDCreateSessionRequestEncoding:
		return &ua.CreateSessionRequest{
			RequestHeader:           r.readRequestHeader(),
			ClientDescription:       r.readApplicationDescription(),
			ServerURI:               r.ReadString(),
			EndpointURL:             r.ReadString(),
			SessionName:             r.ReadString(),
			ClientNonce:             r.ReadByteString(),
			ClientCertificate:       r.ReadByteString(),
			RequestedSessionTimeout: r.ReadFloat64(),
			MaxResponseMessageSize:  r.ReadUint32(),
		}
	case ua.IDCreateSessionResponseEncoding:
		return &ua.CreateSessionResponse{
			ResponseHeader:             r.readResponseHeader(),
			SessionID:                  r.ReadNodeID(),
			AuthenticationToken:        r.ReadNodeID(),
			RevisedSessionTimeout:      r.ReadFloat64(),
			ServerNonce:                r.ReadByteString(),
			ServerCertificate:          r.ReadByteString(),
			ServerEndpoints:            r.readEndpointDescriptionArray(),
			ServerSoftwareCertificates: r.readSignedSoftwareCertificateArray(),
			ServerSignature:            r.readSignatureData(),
			MaxRequestMessageSize:      r.ReadUint32(),
		}

	case ua.IDActivateSessionRequestEncoding:
		return &ua.ActivateSessionRequest{
			RequestHeader:              r.readRequestHeader(),
			ClientSignature:            r.readSignatureData(),
			ClientSoftwareCertificates: r.readSignedSoftwareCertificateArray(),
			LocaleIDs:                  r.readStringArray(),
			UserIdentityToken:          r.ReadExtensionObject(),
			UserTokenSignature:         r.readSignatureData(),
		}
	case ua.IDActivateSessionResponseEncoding:
		return &ua.ActivateSessionResponse{
			ResponseHeader:  r.readResponseHeader(),
			ServerNonce:     r.ReadByteString(),
			Results:         r.readStatusCodeArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDCloseSessionRequestEncoding:
		return &ua.CloseSessionRequest{
			RequestHeader:       r.readRequestHeader(),
			DeleteSubscriptions: r.ReadBool(),
		}
	case ua.IDCloseSessionResponseEncoding:
		return &ua.CloseSessionResponse{ResponseHeader: r.readResponseHeader()}

	case ua.IDCancelRequestEncoding:
		return &ua.CancelRequest{
			RequestHeader: r.readRequestHeader(),
			RequestHandle: r.ReadUint32(),
		}
	case ua.IDCancelResponseEncoding:
		return &ua.CancelResponse{
			ResponseHeader: r.readResponseHeader(),
			CancelCount:    r.ReadUint32(),
		}

	case ua.IDAddNodesRequestEncoding:
		m := &ua.AddNodesRequest{RequestHeader: r.readRequestHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.NodesToAdd = make([]ua.AddNodesItem, n)
			for i := range m.NodesToAdd {
				m.NodesToAdd[i] = ua.AddNodesItem{
					ParentNodeID:       r.ReadExpandedNodeID(),
					ReferenceTypeID:    r.ReadNodeID(),
					RequestedNewNodeID: r.ReadExpandedNodeID(),
					BrowseName:         r.ReadQualifiedName(),
					NodeClass:          ua.NodeClass(r.ReadUint32()),
					NodeAttributes:     r.ReadExtensionObject(),
					TypeDefinition:     r.ReadExpandedNodeID(),
				}
			}
		}
		return m
	case ua.IDAddNodesResponseEncoding:
		m := &ua.AddNodesResponse{ResponseHeader: r.readResponseHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.Results = make([]ua.AddNodesResult, n)
			for i := range m.Results {
				m.Results[i] = ua.AddNodesResult{
					StatusCode:  r.ReadStatusCode(),
					AddedNodeID: r.ReadNodeID(),
				}
			}
		}
		m.DiagnosticInfos = r.readDiagnosticInfoArray()
		return m

	case ua.IDAddReferencesRequestEncoding:
		m := &ua.AddReferencesRequest{RequestHeader: r.readRequestHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.ReferencesToAdd = make([]ua.AddReferencesItem, n)
			for i := range m.ReferencesToAdd {
				m.ReferencesToAdd[i] = ua.AddReferencesItem{
					SourceNodeID:    r.ReadNodeID(),
					ReferenceTypeID: r.ReadNodeID(),
					IsForward:       r.ReadBool(),
					TargetServerURI: r.ReadString(),
					TargetNodeID:    r.ReadExpandedNodeID(),
					TargetNodeClass: ua.NodeClass(r.ReadUint32()),
				}
			}
		}
		return m
	case ua.IDAddReferencesResponseEncoding:
		return &ua.AddReferencesResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readStatusCodeArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDDeleteNodesRequestEncoding:
		m := &ua.DeleteNodesRequest{RequestHeader: r.readRequestHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.NodesToDelete = make([]ua.DeleteNodesItem, n)
			for i := range m.NodesToDelete {
				m.NodesToDelete[i] = ua.DeleteNodesItem{
					NodeID:                 r.ReadNodeID(),
					DeleteTargetReferences: r.ReadBool(),
				}
			}
		}
		return m
	case ua.IDDeleteNodesResponseEncoding:
		return &ua.DeleteNodesResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readStatusCodeArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDDeleteReferencesRequestEncoding:
		m := &ua.DeleteReferencesRequest{RequestHeader: r.readRequestHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.ReferencesToDelete = make([]ua.DeleteReferencesItem, n)
			for i := range m.ReferencesToDelete {
				m.ReferencesToDelete[i] = ua.DeleteReferencesItem{
					SourceNodeID:        r.ReadNodeID(),
					ReferenceTypeID:     r.ReadNodeID(),
					IsForward:           r.ReadBool(),
					TargetNodeID:        r.ReadExpandedNodeID(),
					DeleteBidirectional: r.ReadBool(),
				}
			}
		}
		return m
	case ua.IDDeleteReferencesResponseEncoding:
		return &ua.DeleteReferencesResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readStatusCodeArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDBrowseRequestEncoding:
		m := &ua.BrowseRequest{RequestHeader: r.readRequestHeader()}
		m.View = ua.ViewDescription{
			ViewID:      r.ReadNodeID(),
			Timestamp:   r.ReadDateTime(),
			ViewVersion: r.ReadUint32(),
		}
		m.RequestedMaxReferencesPerNode = r.ReadUint32()
		n := r.ReadArrayLength()
		if n > 0 {
			m.NodesToBrowse = make([]ua.BrowseDescription, n)
			for i := range m.NodesToBrowse {
				m.NodesToBrowse[i] = ua.BrowseDescription{
					NodeID:          r.ReadNodeID(),
					Direction:       ua.BrowseDirection(r.ReadUint32()),
					ReferenceTypeID: r.ReadNodeID(),
					IncludeSubtypes: r.ReadBool(),
					NodeClassMask:   r.ReadUint32(),
					ResultMask:      r.ReadUint32(),
				}
			}
		}
		return m
	case ua.IDBrowseResponseEncoding:
		return &ua.BrowseResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readBrowseResultArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDBrowseNextRequestEncoding:
		m := &ua.BrowseNextRequest{
			RequestHeader:             r.readRequestHeader(),
			ReleaseContinuationPoints: r.ReadBool(),
		}
		n := r.ReadArrayLength()
		if n > 0 {
			m.ContinuationPoints = make([][]byte, n)
			for i := range m.ContinuationPoints {
				m.ContinuationPoints[i] = r.ReadByteString()
			}
		}
		return m
	case ua.IDBrowseNextResponseEncoding:
		return &ua.BrowseNextResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readBrowseResultArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDTranslateBrowsePathsRequestEncoding:
		m := &ua.TranslateBrowsePathsRequest{RequestHeader: r.readRequestHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.BrowsePaths = make([]ua.BrowsePath, n)
			for i := range m.BrowsePaths {
				p := ua.BrowsePath{StartingNode: r.ReadNodeID()}
				elems := r.ReadArrayLength()
				if elems > 0 {
					p.RelativePath = make([]ua.RelativePathElement, elems)
					for j := range p.RelativePath {
						p.RelativePath[j] = ua.RelativePathElement{
							ReferenceTypeID: r.ReadNodeID(),
							IsInverse:       r.ReadBool(),
							IncludeSubtypes: r.ReadBool(),
							TargetName:      r.ReadQualifiedName(),
						}
					}
				}
				m.BrowsePaths[i] = p
			}
		}
		return m
	case ua.IDTranslateBrowsePathsResponseEncoding:
		m := &ua.TranslateBrowsePathsResponse{ResponseHeader: r.readResponseHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.Results = make([]ua.BrowsePathResult, n)
			for i := range m.Results {
				res := ua.BrowsePathResult{StatusCode: r.ReadStatusCode()}
				targets := r.ReadArrayLength()
				if targets > 0 {
					res.Targets = make([]ua.BrowsePathTarget, targets)
					for j := range res.Targets {
						res.Targets[j] = ua.BrowsePathTarget{
							TargetID:           r.ReadExpandedNodeID(),
							RemainingPathIndex: r.ReadUint32(),
						}
					}
				}
				m.Results[i] = res
			}
		}
		m.DiagnosticInfos = r.readDiagnosticInfoArray()
		return m

	case ua.IDRegisterNodesRequestEncoding:
		return &ua.RegisterNodesRequest{
			RequestHeader:   r.readRequestHeader(),
			NodesToRegister: r.readNodeIDArray(),
		}
	case ua.IDRegisterNodesResponseEncoding:
		return &ua.RegisterNodesResponse{
			ResponseHeader:    r.readResponseHeader(),
			RegisteredNodeIDs: r.readNodeIDArray(),
		}

	case ua.IDUnregisterNodesRequestEncoding:
		return &ua.UnregisterNodesRequest{
			RequestHeader:     r.readRequestHeader(),
			NodesToUnregister: r.readNodeIDArray(),
		}
	case ua.IDUnregisterNodesResponseEncoding:
		return &ua.UnregisterNodesResponse{ResponseHeader: r.readResponseHeader()}

	case ua.IDReadRequestEncoding:
		m := &ua.ReadRequest{
			RequestHeader:      r.readRequestHeader(),
			MaxAge:             r.ReadFloat64(),
			TimestampsToReturn: ua.TimestampsToReturn(r.ReadUint32()),
		}
		n := r.ReadArrayLength()
		if n > 0 {
			m.NodesToRead = make([]ua.ReadValueID, n)
			for i := range m.NodesToRead {
				m.NodesToRead[i] = r.readReadValueID()
			}
		}
		return m
	case ua.IDReadResponseEncoding:
		m := &ua.ReadResponse{ResponseHeader: r.readResponseHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.Results = make([]ua.DataValue, n)
			for i := range m.Results {
				m.Results[i] = r.ReadDataValue()
			}
		}
		m.DiagnosticInfos = r.readDiagnosticInfoArray()
		return m

	case ua.IDWriteRequestEncoding:
		m := &ua.WriteRequest{RequestHeader: r.readRequestHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.NodesToWrite = make([]ua.WriteValue, n)
			for i := range m.NodesToWrite {
				m.NodesToWrite[i] = ua.WriteValue{
					NodeID:      r.ReadNodeID(),
					AttributeID: ua.AttributeID(r.ReadUint32()),
					IndexRange:  r.ReadString(),
					Value:       r.ReadDataValue(),
				}
			}
		}
		return m
	case ua.IDWriteResponseEncoding:
		return &ua.WriteResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readStatusCodeArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDCallRequestEncoding:
		m := &ua.CallRequest{RequestHeader: r.readRequestHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.MethodsToCall = make([]ua.CallMethodRequest, n)
			for i := range m.MethodsToCall {
				m.MethodsToCall[i] = ua.CallMethodRequest{
					ObjectID:       r.ReadNodeID(),
					MethodID:       r.ReadNodeID(),
					InputArguments: r.readVariantArrayField(),
				}
			}
		}
		return m
	case ua.IDCallResponseEncoding:
		m := &ua.CallResponse{ResponseHeader: r.readResponseHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.Results = make([]ua.CallMethodResult, n)
			for i := range m.Results {
				m.Results[i] = ua.CallMethodResult{
					StatusCode:               r.ReadStatusCode(),
					InputArgumentResults:     r.readStatusCodeArray(),
					InputArgumentDiagnostics: r.readDiagnosticInfoArray(),
					OutputArguments:          r.readVariantArrayField(),
				}
			}
		}
		m.DiagnosticInfos = r.readDiagnosticInfoArray()
		return m

	case ua.IDCreateMonitoredItemsRequestEncoding:
		m := &ua.CreateMonitoredItemsRequest{
			RequestHeader:      r.readRequestHeader(),
			SubscriptionID:     r.ReadUint32(),
			TimestampsToReturn: ua.TimestampsToReturn(r.ReadUint32()),
		}
		n := r.ReadArrayLength()
		if n > 0 {
			m.ItemsToCreate = make([]ua.MonitoredItemCreateRequest, n)
			for i := range m.ItemsToCreate {
				m.ItemsToCreate[i] = ua.MonitoredItemCreateRequest{
					ItemToMonitor:       r.readReadValueID(),
					MonitoringMode:      ua.MonitoringMode(r.ReadUint32()),
					RequestedParameters: r.readMonitoringParameters(),
				}
			}
		}
		return m
	case ua.IDCreateMonitoredItemsResponseEncoding:
		m := &ua.CreateMonitoredItemsResponse{ResponseHeader: r.readResponseHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.Results = make([]ua.MonitoredItemCreateResult, n)
			for i := range m.Results {
				m.Results[i] = ua.MonitoredItemCreateResult{
					StatusCode:              r.ReadStatusCode(),
					MonitoredItemID:         r.ReadUint32(),
					RevisedSamplingInterval: r.ReadFloat64(),
					RevisedQueueSize:        r.ReadUint32(),
					FilterResult:            r.ReadExtensionObject(),
				}
			}
		}
		m.DiagnosticInfos = r.readDiagnosticInfoArray()
		return m

	case ua.IDModifyMonitoredItemsRequestEncoding:
		m := &ua.ModifyMonitoredItemsRequest{
			RequestHeader:      r.readRequestHeader(),
			SubscriptionID:     r.ReadUint32(),
			TimestampsToReturn: ua.TimestampsToReturn(r.ReadUint32()),
		}
		n := r.ReadArrayLength()
		if n > 0 {
			m.ItemsToModify = make([]ua.MonitoredItemModifyRequest, n)
			for i := range m.ItemsToModify {
				m.ItemsToModify[i] = ua.MonitoredItemModifyRequest{
					MonitoredItemID:     r.ReadUint32(),
					RequestedParameters: r.readMonitoringParameters(),
				}
			}
		}
		return m
	case ua.IDModifyMonitoredItemsResponseEncoding:
		m := &ua.ModifyMonitoredItemsResponse{ResponseHeader: r.readResponseHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.Results = make([]ua.MonitoredItemModifyResult, n)
			for i := range m.Results {
				m.Results[i] = ua.MonitoredItemModifyResult{
					StatusCode:              r.ReadStatusCode(),
					RevisedSamplingInterval: r.ReadFloat64(),
					RevisedQueueSize:        r.ReadUint32(),
					FilterResult:            r.ReadExtensionObject(),
				}
			}
		}
		m.DiagnosticInfos = r.readDiagnosticInfoArray()
		return m

	case ua.IDSetMonitoringModeRequestEncoding:
		return &ua.SetMonitoringModeRequest{
			RequestHeader:    r.readRequestHeader(),
			SubscriptionID:   r.ReadUint32(),
			MonitoringMode:   ua.MonitoringMode(r.ReadUint32()),
			MonitoredItemIDs: r.readUint32Array(),
		}
	case ua.IDSetMonitoringModeResponseEncoding:
		return &ua.SetMonitoringModeResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readStatusCodeArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDDeleteMonitoredItemsRequestEncoding:
		return &ua.DeleteMonitoredItemsRequest{
			RequestHeader:    r.readRequestHeader(),
			SubscriptionID:   r.ReadUint32(),
			MonitoredItemIDs: r.readUint32Array(),
		}
	case ua.IDDeleteMonitoredItemsResponseEncoding:
		return &ua.DeleteMonitoredItemsResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readStatusCodeArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDCreateSubscriptionRequestEncoding:
		return &ua.CreateSubscriptionRequest{
			RequestHeader:               r.readRequestHeader(),
			RequestedPublishingInterval: r.ReadFloat64(),
			RequestedLifetimeCount:      r.ReadUint32(),
			RequestedMaxKeepAliveCount:  r.ReadUint32(),
			MaxNotificationsPerPublish:  r.ReadUint32(),
			PublishingEnabled:           r.ReadBool(),
			Priority:                    r.ReadUint8(),
		}
	case ua.IDCreateSubscriptionResponseEncoding:
		return &ua.CreateSubscriptionResponse{
			ResponseHeader:            r.readResponseHeader(),
			SubscriptionID:            r.ReadUint32(),
			RevisedPublishingInterval: r.ReadFloat64(),
			RevisedLifetimeCount:      r.ReadUint32(),
			RevisedMaxKeepAliveCount:  r.ReadUint32(),
		}

	case ua.IDModifySubscriptionRequestEncoding:
		return &ua.ModifySubscriptionRequest{
			RequestHeader:               r.readRequestHeader(),
			SubscriptionID:              r.ReadUint32(),
			RequestedPublishingInterval: r.ReadFloat64(),
			RequestedLifetimeCount:      r.ReadUint32(),
			RequestedMaxKeepAliveCount:  r.ReadUint32(),
			MaxNotificationsPerPublish:  r.ReadUint32(),
			Priority:                    r.ReadUint8(),
		}
	case ua.IDModifySubscriptionResponseEncoding:
		return &ua.ModifySubscriptionResponse{
			ResponseHeader:            r.readResponseHeader(),
			RevisedPublishingInterval: r.ReadFloat64(),
			RevisedLifetimeCount:      r.ReadUint32(),
			RevisedMaxKeepAliveCount:  r.ReadUint32(),
		}

	case ua.IDSetPublishingModeRequestEncoding:
		return &ua.SetPublishingModeRequest{
			RequestHeader:     r.readRequestHeader(),
			PublishingEnabled: r.ReadBool(),
			SubscriptionIDs:   r.readUint32Array(),
		}
	case ua.IDSetPublishingModeResponseEncoding:
		return &ua.SetPublishingModeResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readStatusCodeArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	case ua.IDPublishRequestEncoding:
		m := &ua.PublishRequest{RequestHeader: r.readRequestHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.SubscriptionAcknowledgements = make([]ua.SubscriptionAcknowledgement, n)
			for i := range m.SubscriptionAcknowledgements {
				m.SubscriptionAcknowledgements[i] = ua.SubscriptionAcknowledgement{
					SubscriptionID: r.ReadUint32(),
					SequenceNumber: r.ReadUint32(),
				}
			}
		}
		return m
	case ua.IDPublishResponseEncoding:
		return &ua.PublishResponse{
			ResponseHeader:           r.readResponseHeader(),
			SubscriptionID:           r.ReadUint32(),
			AvailableSequenceNumbers: r.readUint32Array(),
			MoreNotifications:        r.ReadBool(),
			NotificationMessage:      r.readNotificationMessage(),
			Results:                  r.readStatusCodeArray(),
			DiagnosticInfos:          r.readDiagnosticInfoArray(),
		}

	case ua.IDRepublishRequestEncoding:
		return &ua.RepublishRequest{
			RequestHeader:            r.readRequestHeader(),
			SubscriptionID:           r.ReadUint32(),
			RetransmitSequenceNumber: r.ReadUint32(),
		}
	case ua.IDRepublishResponseEncoding:
		return &ua.RepublishResponse{
			ResponseHeader:      r.readResponseHeader(),
			NotificationMessage: r.readNotificationMessage(),
		}

	case ua.IDTransferSubscriptionsRequestEncoding:
		return &ua.TransferSubscriptionsRequest{
			RequestHeader:     r.readRequestHeader(),
			SubscriptionIDs:   r.readUint32Array(),
			SendInitialValues: r.ReadBool(),
		}
	case ua.IDTransferSubscriptionsResponseEncoding:
		m := &ua.TransferSubscriptionsResponse{ResponseHeader: r.readResponseHeader()}
		n := r.ReadArrayLength()
		if n > 0 {
			m.Results = make([]ua.TransferResult, n)
			for i := range m.Results {
				m.Results[i] = ua.TransferResult{
					StatusCode:               r.ReadStatusCode(),
					AvailableSequenceNumbers: r.readUint32Array(),
				}
			}
		}
		m.DiagnosticInfos = r.readDiagnosticInfoArray()
		return m

	case ua.IDDeleteSubscriptionsRequestEncoding:
		return &ua.DeleteSubscriptionsRequest{
			RequestHeader:   r.readRequestHeader(),
			SubscriptionIDs: r.readUint32Array(),
		}
	case ua.IDDeleteSubscriptionsResponseEncoding:
		return &ua.DeleteSubscriptionsResponse{
			ResponseHeader:  r.readResponseHeader(),
			Results:         r.readStatusCodeArray(),
			DiagnosticInfos: r.readDiagnosticInfoArray(),
		}

	default:
		return nil
	}
}
