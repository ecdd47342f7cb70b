package uabin

import (
	"fmt"

	"github.com/marmos91/opcuad/pkg/ua"
)

// ErrUnknownType is returned when a message or extension type has no codec.
var ErrUnknownType = fmt.Errorf("uabin: unknown type")

// ============================================================================
// Array helpers
// ============================================================================

func (w *Writer) writeStringArray(a []string) {
	if a == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteArrayLength(len(a))
	for _, s := range a {
		w.WriteString(s)
	}
}

func (r *Reader) readStringArray() []string {
	n := r.ReadArrayLength()
	if n < 0 {
		return nil
	}
	a := make([]string, n)
	for i := range a {
		a[i] = r.ReadString()
	}
	return a
}

func (w *Writer) writeUint32Array(a []uint32) {
	if a == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteArrayLength(len(a))
	for _, v := range a {
		w.WriteUint32(v)
	}
}

func (r *Reader) readUint32Array() []uint32 {
	n := r.ReadArrayLength()
	if n < 0 {
		return nil
	}
	a := make([]uint32, n)
	for i := range a {
		a[i] = r.ReadUint32()
	}
	return a
}

func (w *Writer) writeStatusCodeArray(a []ua.StatusCode) {
	if a == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteArrayLength(len(a))
	for _, v := range a {
		w.WriteStatusCode(v)
	}
}

func (r *Reader) readStatusCodeArray() []ua.StatusCode {
	n := r.ReadArrayLength()
	if n < 0 {
		return nil
	}
	a := make([]ua.StatusCode, n)
	for i := range a {
		a[i] = r.ReadStatusCode()
	}
	return a
}

func (w *Writer) writeDiagnosticInfoArray(a []ua.DiagnosticInfo) {
	if a == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteArrayLength(len(a))
	for i := range a {
		w.WriteDiagnosticInfo(&a[i])
	}
}

func (r *Reader) readDiagnosticInfoArray() []ua.DiagnosticInfo {
	n := r.ReadArrayLength()
	if n <= 0 {
		return nil
	}
	a := make([]ua.DiagnosticInfo, n)
	for i := range a {
		if d := r.ReadDiagnosticInfo(); d != nil {
			a[i] = *d
		}
	}
	return a
}

func (w *Writer) writeNodeIDArray(a []ua.NodeID) {
	if a == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteArrayLength(len(a))
	for _, v := range a {
		w.WriteNodeID(v)
	}
}

func (r *Reader) readNodeIDArray() []ua.NodeID {
	n := r.ReadArrayLength()
	if n < 0 {
		return nil
	}
	a := make([]ua.NodeID, n)
	for i := range a {
		a[i] = r.ReadNodeID()
	}
	return a
}

func (w *Writer) writeVariantArrayField(a []ua.Variant) {
	if a == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteArrayLength(len(a))
	for _, v := range a {
		w.WriteVariant(v)
	}
}

func (r *Reader) readVariantArrayField() []ua.Variant {
	n := r.ReadArrayLength()
	if n < 0 {
		return nil
	}
	a := make([]ua.Variant, n)
	for i := range a {
		a[i] = r.ReadVariant()
	}
	return a
}

// ============================================================================
// Headers
// ============================================================================

func (w *Writer) writeRequestHeader(h ua.RequestHeader) {
	w.WriteNodeID(h.AuthenticationToken)
	w.WriteDateTime(h.Timestamp)
	w.WriteUint32(h.RequestHandle)
	w.WriteUint32(h.ReturnDiagnostics)
	w.WriteString(h.AuditEntryID)
	w.WriteUint32(h.TimeoutHint)
	w.WriteExtensionObject(h.AdditionalHeader)
}

func (r *Reader) readRequestHeader() ua.RequestHeader {
	return ua.RequestHeader{
		AuthenticationToken: r.ReadNodeID(),
		Timestamp:           r.ReadDateTime(),
		RequestHandle:       r.ReadUint32(),
		ReturnDiagnostics:   r.ReadUint32(),
		AuditEntryID:        r.ReadString(),
		TimeoutHint:         r.ReadUint32(),
		AdditionalHeader:    r.ReadExtensionObject(),
	}
}

func (w *Writer) writeResponseHeader(h ua.ResponseHeader) {
	w.WriteDateTime(h.Timestamp)
	w.WriteUint32(h.RequestHandle)
	w.WriteStatusCode(h.ServiceResult)
	w.WriteDiagnosticInfo(h.ServiceDiagnostics)
	w.writeStringArray(h.StringTable)
	w.WriteExtensionObject(h.AdditionalHeader)
}

func (r *Reader) readResponseHeader() ua.ResponseHeader {
	return ua.ResponseHeader{
		Timestamp:          r.ReadDateTime(),
		RequestHandle:      r.ReadUint32(),
		ServiceResult:      r.ReadStatusCode(),
		ServiceDiagnostics: r.ReadDiagnosticInfo(),
		StringTable:        r.readStringArray(),
		AdditionalHeader:   r.ReadExtensionObject(),
	}
}

// ============================================================================
// Discovery structures
// ============================================================================

func (w *Writer) writeApplicationDescription(a ua.ApplicationDescription) {
	w.WriteString(a.ApplicationURI)
	w.WriteString(a.ProductURI)
	w.WriteLocalizedText(a.ApplicationName)
	w.WriteUint32(a.ApplicationType)
	w.WriteString(a.GatewayServerURI)
	w.WriteString(a.DiscoveryProfileURI)
	w.writeStringArray(a.DiscoveryURLs)
}

func (r *Reader) readApplicationDescription() ua.ApplicationDescription {
	return ua.ApplicationDescription{
		ApplicationURI:      r.ReadString(),
		ProductURI:          r.ReadString(),
		ApplicationName:     r.ReadLocalizedText(),
		ApplicationType:     r.ReadUint32(),
		GatewayServerURI:    r.ReadString(),
		DiscoveryProfileURI: r.ReadString(),
		DiscoveryURLs:       r.readStringArray(),
	}
}

func (w *Writer) writeUserTokenPolicy(p ua.UserTokenPolicy) {
	w.WriteString(p.PolicyID)
	w.WriteUint32(p.TokenType)
	w.WriteString(p.IssuedTokenType)
	w.WriteString(p.IssuerEndpointURL)
	w.WriteString(p.SecurityPolicyURI)
}

func (r *Reader) readUserTokenPolicy() ua.UserTokenPolicy {
	return ua.UserTokenPolicy{
		PolicyID:          r.ReadString(),
		TokenType:         r.ReadUint32(),
		IssuedTokenType:   r.ReadString(),
		IssuerEndpointURL: r.ReadString(),
		SecurityPolicyURI: r.ReadString(),
	}
}

func (w *Writer) writeEndpointDescription(e ua.EndpointDescription) {
	w.WriteString(e.EndpointURL)
	w.writeApplicationDescription(e.Server)
	w.WriteByteString(e.ServerCertificate)
	w.WriteUint32(uint32(e.SecurityMode))
	w.WriteString(e.SecurityPolicyURI)
	w.WriteArrayLength(len(e.UserIdentityTokens))
	for _, p := range e.UserIdentityTokens {
		w.writeUserTokenPolicy(p)
	}
	w.WriteString(e.TransportProfileURI)
	w.WriteUint8(e.SecurityLevel)
}

func (r *Reader) readEndpointDescription() ua.EndpointDescription {
	e := ua.EndpointDescription{
		EndpointURL:       r.ReadString(),
		Server:            r.readApplicationDescription(),
		ServerCertificate: r.ReadByteString(),
		SecurityMode:      ua.MessageSecurityMode(r.ReadUint32()),
		SecurityPolicyURI: r.ReadString(),
	}
	n := r.ReadArrayLength()
	if n > 0 {
		e.UserIdentityTokens = make([]ua.UserTokenPolicy, n)
		for i := range e.UserIdentityTokens {
			e.UserIdentityTokens[i] = r.readUserTokenPolicy()
		}
	}
	e.TransportProfileURI = r.ReadString()
	e.SecurityLevel = r.ReadUint8()
	return e
}

func (w *Writer) writeEndpointDescriptionArray(a []ua.EndpointDescription) {
	if a == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteArrayLength(len(a))
	for _, e := range a {
		w.writeEndpointDescription(e)
	}
}

func (r *Reader) readEndpointDescriptionArray() []ua.EndpointDescription {
	n := r.ReadArrayLength()
	if n < 0 {
		return nil
	}
	a := make([]ua.EndpointDescription, n)
	for i := range a {
		a[i] = r.readEndpointDescription()
	}
	return a
}

func (w *Writer) writeSignatureData(s ua.SignatureData) {
	w.WriteString(s.Algorithm)
	w.WriteByteString(s.Signature)
}

func (r *Reader) readSignatureData() ua.SignatureData {
	return ua.SignatureData{
		Algorithm: r.ReadString(),
		Signature: r.ReadByteString(),
	}
}

func (w *Writer) writeSignedSoftwareCertificateArray(a []ua.SignedSoftwareCertificate) {
	if a == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteArrayLength(len(a))
	for _, c := range a {
		w.WriteByteString(c.CertificateData)
		w.WriteByteString(c.Signature)
	}
}

func (r *Reader) readSignedSoftwareCertificateArray() []ua.SignedSoftwareCertificate {
	n := r.ReadArrayLength()
	if n < 0 {
		return nil
	}
	a := make([]ua.SignedSoftwareCertificate, n)
	for i := range a {
		a[i] = ua.SignedSoftwareCertificate{
			CertificateData: r.ReadByteString(),
			Signature:       r.ReadByteString(),
		}
	}
	return a
}

// ============================================================================
// Attribute service structures
// ============================================================================

func (w *Writer) writeReadValueID(v ua.ReadValueID) {
	w.WriteNodeID(v.NodeID)
	w.WriteUint32(uint32(v.AttributeID))
	w.WriteString(v.IndexRange)
	w.WriteQualifiedName(v.DataEncoding)
}

func (r *Reader) readReadValueID() ua.ReadValueID {
	return ua.ReadValueID{
		NodeID:       r.ReadNodeID(),
		AttributeID:  ua.AttributeID(r.ReadUint32()),
		IndexRange:   r.ReadString(),
		DataEncoding: r.ReadQualifiedName(),
	}
}

// ============================================================================
// View service structures
// ============================================================================

func (w *Writer) writeReferenceDescription(d ua.ReferenceDescription) {
	w.WriteNodeID(d.ReferenceTypeID)
	w.WriteBool(d.IsForward)
	w.WriteExpandedNodeID(d.NodeID)
	w.WriteQualifiedName(d.BrowseName)
	w.WriteLocalizedText(d.DisplayName)
	w.WriteUint32(uint32(d.NodeClass))
	w.WriteExpandedNodeID(d.TypeDefinition)
}

func (r *Reader) readReferenceDescription() ua.ReferenceDescription {
	return ua.ReferenceDescription{
		ReferenceTypeID: r.ReadNodeID(),
		IsForward:       r.ReadBool(),
		NodeID:          r.ReadExpandedNodeID(),
		BrowseName:      r.ReadQualifiedName(),
		DisplayName:     r.ReadLocalizedText(),
		NodeClass:       ua.NodeClass(r.ReadUint32()),
		TypeDefinition:  r.ReadExpandedNodeID(),
	}
}

func (w *Writer) writeBrowseResult(b ua.BrowseResult) {
	w.WriteStatusCode(b.StatusCode)
	w.WriteByteString(b.ContinuationPoint)
	w.WriteArrayLength(len(b.References))
	for _, ref := range b.References {
		w.writeReferenceDescription(ref)
	}
}

func (r *Reader) readBrowseResult() ua.BrowseResult {
	b := ua.BrowseResult{
		StatusCode:        r.ReadStatusCode(),
		ContinuationPoint: r.ReadByteString(),
	}
	n := r.ReadArrayLength()
	if n > 0 {
		b.References = make([]ua.ReferenceDescription, n)
		for i := range b.References {
			b.References[i] = r.readReferenceDescription()
		}
	}
	return b
}

func (w *Writer) writeBrowseResultArray(a []ua.BrowseResult) {
	w.WriteArrayLength(len(a))
	for _, b := range a {
		w.writeBrowseResult(b)
	}
}

func (r *Reader) readBrowseResultArray() []ua.BrowseResult {
	n := r.ReadArrayLength()
	if n < 0 {
		return nil
	}
	a := make([]ua.BrowseResult, n)
	for i := range a {
		a[i] = r.readBrowseResult()
	}
	return a
}

// ============================================================================
// Monitored item structures
// ============================================================================

func (w *Writer) writeMonitoringParameters(p ua.MonitoringParameters) {
	w.WriteUint32(p.ClientHandle)
	w.WriteFloat64(p.SamplingInterval)
	w.WriteExtensionObject(p.Filter)
	w.WriteUint32(p.QueueSize)
	w.WriteBool(p.DiscardOldest)
}

func (r *Reader) readMonitoringParameters() ua.MonitoringParameters {
	return ua.MonitoringParameters{
		ClientHandle:     r.ReadUint32(),
		SamplingInterval: r.ReadFloat64(),
		Filter:           r.ReadExtensionObject(),
		QueueSize:        r.ReadUint32(),
		DiscardOldest:    r.ReadBool(),
	}
}

// ============================================================================
// Subscription structures
// ============================================================================

func (w *Writer) writeNotificationMessage(m ua.NotificationMessage) {
	w.WriteUint32(m.SequenceNumber)
	w.WriteDateTime(m.PublishTime)
	w.WriteArrayLength(len(m.NotificationData))
	for _, e := range m.NotificationData {
		w.WriteExtensionObject(e)
	}
}

func (r *Reader) readNotificationMessage() ua.NotificationMessage {
	m := ua.NotificationMessage{
		SequenceNumber: r.ReadUint32(),
		PublishTime:    r.ReadDateTime(),
	}
	n := r.ReadArrayLength()
	if n > 0 {
		m.NotificationData = make([]*ua.ExtensionObject, n)
		for i := range m.NotificationData {
			m.NotificationData[i] = r.ReadExtensionObject()
		}
	}
	return m
}

// ============================================================================
// Extension object struct codecs
// ============================================================================

func writeNodeAttributesHead(w *Writer, a ua.NodeAttributes) {
	w.WriteUint32(a.SpecifiedAttributes)
	w.WriteLocalizedText(a.DisplayName)
	w.WriteLocalizedText(a.Description)
	w.WriteUint32(a.WriteMask)
	w.WriteUint32(a.UserWriteMask)
}

func readNodeAttributesHead(r *Reader) ua.NodeAttributes {
	return ua.NodeAttributes{
		SpecifiedAttributes: r.ReadUint32(),
		DisplayName:         r.ReadLocalizedText(),
		Description:         r.ReadLocalizedText(),
		WriteMask:           r.ReadUint32(),
		UserWriteMask:       r.ReadUint32(),
	}
}

// structEncoders/structDecoders map extension object binary-encoding
// NodeIds (namespace 0, numeric) to codecs for their bodies.
var structEncoders = map[uint32]func(*Writer, any){}
var structDecoders = map[uint32]func(*Reader) any{}

func init() {
	structEncoders[ua.IDObjectAttributesEncoding] = func(w *Writer, v any) {
		a := v.(*ua.ObjectAttributes)
		writeNodeAttributesHead(w, a.NodeAttributes)
		w.WriteUint8(a.EventNotifier)
	}
	structDecoders[ua.IDObjectAttributesEncoding] = func(r *Reader) any {
		return &ua.ObjectAttributes{
			NodeAttributes: readNodeAttributesHead(r),
			EventNotifier:  r.ReadUint8(),
		}
	}

	structEncoders[ua.IDVariableAttributesEncoding] = func(w *Writer, v any) {
		a := v.(*ua.VariableAttributes)
		writeNodeAttributesHead(w, a.NodeAttributes)
		w.WriteVariant(a.Value)
		w.WriteNodeID(a.DataType)
		w.WriteInt32(a.ValueRank)
		w.writeUint32Array(a.ArrayDimensions)
		w.WriteUint8(a.AccessLevel)
		w.WriteUint8(a.UserAccessLevel)
		w.WriteFloat64(a.MinimumSamplingInterval)
		w.WriteBool(a.Historizing)
	}
	structDecoders[ua.IDVariableAttributesEncoding] = func(r *Reader) any {
		return &ua.VariableAttributes{
			NodeAttributes:          readNodeAttributesHead(r),
			Value:                   r.ReadVariant(),
			DataType:                r.ReadNodeID(),
			ValueRank:               r.ReadInt32(),
			ArrayDimensions:         r.readUint32Array(),
			AccessLevel:             r.ReadUint8(),
			UserAccessLevel:         r.ReadUint8(),
			MinimumSamplingInterval: r.ReadFloat64(),
			Historizing:             r.ReadBool(),
		}
	}

	structEncoders[ua.IDMethodAttributesEncoding] = func(w *Writer, v any) {
		a := v.(*ua.MethodAttributes)
		writeNodeAttributesHead(w, a.NodeAttributes)
		w.WriteBool(a.Executable)
		w.WriteBool(a.UserExecutable)
	}
	structDecoders[ua.IDMethodAttributesEncoding] = func(r *Reader) any {
		return &ua.MethodAttributes{
			NodeAttributes: readNodeAttributesHead(r),
			Executable:     r.ReadBool(),
			UserExecutable: r.ReadBool(),
		}
	}

	structEncoders[ua.IDObjectTypeAttributesEncoding] = func(w *Writer, v any) {
		a := v.(*ua.ObjectTypeAttributes)
		writeNodeAttributesHead(w, a.NodeAttributes)
		w.WriteBool(a.IsAbstract)
	}
	structDecoders[ua.IDObjectTypeAttributesEncoding] = func(r *Reader) any {
		return &ua.ObjectTypeAttributes{
			NodeAttributes: readNodeAttributesHead(r),
			IsAbstract:     r.ReadBool(),
		}
	}

	structEncoders[ua.IDVariableTypeAttributesEncoding] = func(w *Writer, v any) {
		a := v.(*ua.VariableTypeAttributes)
		writeNodeAttributesHead(w, a.NodeAttributes)
		w.WriteVariant(a.Value)
		w.WriteNodeID(a.DataType)
		w.WriteInt32(a.ValueRank)
		w.writeUint32Array(a.ArrayDimensions)
		w.WriteBool(a.IsAbstract)
	}
	structDecoders[ua.IDVariableTypeAttributesEncoding] = func(r *Reader) any {
		return &ua.VariableTypeAttributes{
			NodeAttributes:  readNodeAttributesHead(r),
			Value:           r.ReadVariant(),
			DataType:        r.ReadNodeID(),
			ValueRank:       r.ReadInt32(),
			ArrayDimensions: r.readUint32Array(),
			IsAbstract:      r.ReadBool(),
		}
	}

	structEncoders[ua.IDReferenceTypeAttributesEncoding] = func(w *Writer, v any) {
		a := v.(*ua.ReferenceTypeAttributes)
		writeNodeAttributesHead(w, a.NodeAttributes)
		w.WriteBool(a.IsAbstract)
		w.WriteBool(a.Symmetric)
		w.WriteLocalizedText(a.InverseName)
	}
	structDecoders[ua.IDReferenceTypeAttributesEncoding] = func(r *Reader) any {
		return &ua.ReferenceTypeAttributes{
			NodeAttributes: readNodeAttributesHead(r),
			IsAbstract:     r.ReadBool(),
			Symmetric:      r.ReadBool(),
			InverseName:    r.ReadLocalizedText(),
		}
	}

	structEncoders[ua.IDDataTypeAttributesEncoding] = func(w *Writer, v any) {
		a := v.(*ua.DataTypeAttributes)
		writeNodeAttributesHead(w, a.NodeAttributes)
		w.WriteBool(a.IsAbstract)
	}
	structDecoders[ua.IDDataTypeAttributesEncoding] = func(r *Reader) any {
		return &ua.DataTypeAttributes{
			NodeAttributes: readNodeAttributesHead(r),
			IsAbstract:     r.ReadBool(),
		}
	}

	structEncoders[ua.IDViewAttributesEncoding] = func(w *Writer, v any) {
		a := v.(*ua.ViewAttributes)
		writeNodeAttributesHead(w, a.NodeAttributes)
		w.WriteBool(a.ContainsNoLoops)
		w.WriteUint8(a.EventNotifier)
	}
	structDecoders[ua.IDViewAttributesEncoding] = func(r *Reader) any {
		return &ua.ViewAttributes{
			NodeAttributes:  readNodeAttributesHead(r),
			ContainsNoLoops: r.ReadBool(),
			EventNotifier:   r.ReadUint8(),
		}
	}

	structEncoders[ua.IDAnonymousIdentityTokenEncoding] = func(w *Writer, v any) {
		t := v.(*ua.AnonymousIdentityToken)
		w.WriteString(t.PolicyID)
	}
	structDecoders[ua.IDAnonymousIdentityTokenEncoding] = func(r *Reader) any {
		return &ua.AnonymousIdentityToken{PolicyID: r.ReadString()}
	}

	structEncoders[ua.IDUserNameIdentityTokenEncoding] = func(w *Writer, v any) {
		t := v.(*ua.UserNameIdentityToken)
		w.WriteString(t.PolicyID)
		w.WriteString(t.UserName)
		w.WriteByteString(t.Password)
		w.WriteString(t.EncryptionAlgorithm)
	}
	structDecoders[ua.IDUserNameIdentityTokenEncoding] = func(r *Reader) any {
		return &ua.UserNameIdentityToken{
			PolicyID:            r.ReadString(),
			UserName:            r.ReadString(),
			Password:            r.ReadByteString(),
			EncryptionAlgorithm: r.ReadString(),
		}
	}

	structEncoders[ua.IDDataChangeFilterEncoding] = func(w *Writer, v any) {
		f := v.(*ua.DataChangeFilter)
		w.WriteUint32(uint32(f.Trigger))
		w.WriteUint32(f.DeadbandType)
		w.WriteFloat64(f.DeadbandValue)
	}
	structDecoders[ua.IDDataChangeFilterEncoding] = func(r *Reader) any {
		return &ua.DataChangeFilter{
			Trigger:       ua.DataChangeTrigger(r.ReadUint32()),
			DeadbandType:  r.ReadUint32(),
			DeadbandValue: r.ReadFloat64(),
		}
	}

	structEncoders[ua.IDDataChangeNotificationEncoding] = func(w *Writer, v any) {
		n := v.(*ua.DataChangeNotification)
		w.WriteArrayLength(len(n.MonitoredItems))
		for _, mi := range n.MonitoredItems {
			w.WriteUint32(mi.ClientHandle)
			w.WriteDataValue(mi.Value)
		}
		w.writeDiagnosticInfoArray(n.DiagnosticInfos)
	}
	structDecoders[ua.IDDataChangeNotificationEncoding] = func(r *Reader) any {
		out := &ua.DataChangeNotification{}
		n := r.ReadArrayLength()
		if n > 0 {
			out.MonitoredItems = make([]ua.MonitoredItemNotification, n)
			for i := range out.MonitoredItems {
				out.MonitoredItems[i] = ua.MonitoredItemNotification{
					ClientHandle: r.ReadUint32(),
					Value:        r.ReadDataValue(),
				}
			}
		}
		out.DiagnosticInfos = r.readDiagnosticInfoArray()
		return out
	}

	structEncoders[ua.IDStatusChangeNotificationEncoding] = func(w *Writer, v any) {
		n := v.(*ua.StatusChangeNotification)
		w.WriteStatusCode(n.Status)
		w.WriteDiagnosticInfo(&n.DiagnosticInfo)
	}
	structDecoders[ua.IDStatusChangeNotificationEncoding] = func(r *Reader) any {
		out := &ua.StatusChangeNotification{Status: r.ReadStatusCode()}
		if d := r.ReadDiagnosticInfo(); d != nil {
			out.DiagnosticInfo = *d
		}
		return out
	}

	structEncoders[ua.IDBuildInfoEncoding] = func(w *Writer, v any) {
		b := v.(*ua.BuildInfo)
		writeBuildInfo(w, *b)
	}
	structDecoders[ua.IDBuildInfoEncoding] = func(r *Reader) any {
		b := readBuildInfo(r)
		return &b
	}

	structEncoders[ua.IDServerStatusDataTypeEncoding] = func(w *Writer, v any) {
		s := v.(*ua.ServerStatusDataType)
		w.WriteDateTime(s.StartTime)
		w.WriteDateTime(s.CurrentTime)
		w.WriteUint32(uint32(s.State))
		writeBuildInfo(w, s.BuildInfo)
		w.WriteUint32(s.SecondsTillShutdown)
		w.WriteLocalizedText(s.ShutdownReason)
	}
	structDecoders[ua.IDServerStatusDataTypeEncoding] = func(r *Reader) any {
		return &ua.ServerStatusDataType{
			StartTime:           r.ReadDateTime(),
			CurrentTime:         r.ReadDateTime(),
			State:               ua.ServerState(r.ReadUint32()),
			BuildInfo:           readBuildInfo(r),
			SecondsTillShutdown: r.ReadUint32(),
			ShutdownReason:      r.ReadLocalizedText(),
		}
	}

	structEncoders[ua.IDArgumentEncoding] = func(w *Writer, v any) {
		a := v.(*ua.Argument)
		w.WriteString(a.Name)
		w.WriteNodeID(a.DataType)
		w.WriteInt32(a.ValueRank)
		w.writeUint32Array(a.ArrayDimensions)
		w.WriteLocalizedText(a.Description)
	}
	structDecoders[ua.IDArgumentEncoding] = func(r *Reader) any {
		return &ua.Argument{
			Name:            r.ReadString(),
			DataType:        r.ReadNodeID(),
			ValueRank:       r.ReadInt32(),
			ArrayDimensions: r.readUint32Array(),
			Description:     r.ReadLocalizedText(),
		}
	}
}

func writeBuildInfo(w *Writer, b ua.BuildInfo) {
	w.WriteString(b.ProductURI)
	w.WriteString(b.ManufacturerName)
	w.WriteString(b.ProductName)
	w.WriteString(b.SoftwareVersion)
	w.WriteString(b.BuildNumber)
	w.WriteDateTime(b.BuildDate)
}

func readBuildInfo(r *Reader) ua.BuildInfo {
	return ua.BuildInfo{
		ProductURI:       r.ReadString(),
		ManufacturerName: r.ReadString(),
		ProductName:      r.ReadString(),
		SoftwareVersion:  r.ReadString(),
		BuildNumber:      r.ReadString(),
		BuildDate:        r.ReadDateTime(),
	}
}

// NewExtensionObject wraps a known structure for transmission. The
// encoding id must be one of the registered binary-encoding ids.
func NewExtensionObject(encodingID uint32, decoded any) *ua.ExtensionObject {
	return &ua.ExtensionObject{
		TypeID:  ua.NewNumericNodeID(0, encodingID),
		Decoded: decoded,
	}
}
