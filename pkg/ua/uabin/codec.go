package uabin

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/opcuad/pkg/ua"
)

// NodeId encoding discriminators.
const (
	nodeIDTwoByte    = 0x00
	nodeIDFourByte   = 0x01
	nodeIDNumeric    = 0x02
	nodeIDString     = 0x03
	nodeIDGUID       = 0x04
	nodeIDByteString = 0x05

	nodeIDNamespaceURIFlag = 0x80
	nodeIDServerIndexFlag  = 0x40
	nodeIDMask             = 0x3F
)

// WriteDateTime appends an Int64 of 100-ns ticks since 1601-01-01 UTC.
func (w *Writer) WriteDateTime(t time.Time) {
	w.WriteInt64(ua.DateTimeToTicks(t))
}

// ReadDateTime reads an Int64 tick count into a UTC time.Time.
func (r *Reader) ReadDateTime() time.Time {
	return ua.DateTimeFromTicks(r.ReadInt64())
}

// WriteGUID appends the 16-byte GUID encoding (Data1-3 little-endian,
// Data4 as-is).
func (w *Writer) WriteGUID(g uuid.UUID) {
	w.WriteUint32(binary.BigEndian.Uint32(g[0:4]))
	w.WriteUint16(binary.BigEndian.Uint16(g[4:6]))
	w.WriteUint16(binary.BigEndian.Uint16(g[6:8]))
	w.WriteBytes(g[8:16])
}

// ReadGUID reads the 16-byte GUID encoding.
func (r *Reader) ReadGUID() uuid.UUID {
	var g uuid.UUID
	binary.BigEndian.PutUint32(g[0:4], r.ReadUint32())
	binary.BigEndian.PutUint16(g[4:6], r.ReadUint16())
	binary.BigEndian.PutUint16(g[6:8], r.ReadUint16())
	copy(g[8:16], r.ReadBytes(8))
	return g
}

// WriteNodeID appends a NodeId, choosing the shortest encoding.
func (w *Writer) WriteNodeID(n ua.NodeID) {
	switch n.Type {
	case ua.IDTypeNumeric:
		switch {
		case n.Namespace == 0 && n.Numeric <= 0xFF:
			w.WriteUint8(nodeIDTwoByte)
			w.WriteUint8(uint8(n.Numeric))
		case n.Namespace <= 0xFF && n.Numeric <= 0xFFFF:
			w.WriteUint8(nodeIDFourByte)
			w.WriteUint8(uint8(n.Namespace))
			w.WriteUint16(uint16(n.Numeric))
		default:
			w.WriteUint8(nodeIDNumeric)
			w.WriteUint16(n.Namespace)
			w.WriteUint32(n.Numeric)
		}
	case ua.IDTypeString:
		w.WriteUint8(nodeIDString)
		w.WriteUint16(n.Namespace)
		w.WriteString(n.Text)
	case ua.IDTypeGUID:
		w.WriteUint8(nodeIDGUID)
		w.WriteUint16(n.Namespace)
		w.WriteGUID(n.GUID)
	case ua.IDTypeByteString:
		w.WriteUint8(nodeIDByteString)
		w.WriteUint16(n.Namespace)
		w.WriteByteString([]byte(n.Text))
	default:
		w.SetError(fmt.Errorf("%w: nodeid type %d", ErrInvalidValue, n.Type))
	}
}

// readNodeIDBody reads a NodeId after its encoding byte.
func (r *Reader) readNodeIDBody(enc byte) ua.NodeID {
	switch enc & nodeIDMask {
	case nodeIDTwoByte:
		return ua.NewNumericNodeID(0, uint32(r.ReadUint8()))
	case nodeIDFourByte:
		ns := uint16(r.ReadUint8())
		return ua.NewNumericNodeID(ns, uint32(r.ReadUint16()))
	case nodeIDNumeric:
		ns := r.ReadUint16()
		return ua.NewNumericNodeID(ns, r.ReadUint32())
	case nodeIDString:
		ns := r.ReadUint16()
		return ua.NewStringNodeID(ns, r.ReadString())
	case nodeIDGUID:
		ns := r.ReadUint16()
		return ua.NewGUIDNodeID(ns, r.ReadGUID())
	case nodeIDByteString:
		ns := r.ReadUint16()
		return ua.NewByteStringNodeID(ns, r.ReadByteString())
	default:
		r.SetError(fmt.Errorf("%w: nodeid encoding 0x%02X", ErrInvalidValue, enc))
		return ua.NodeID{}
	}
}

// ReadNodeID reads a NodeId.
func (r *Reader) ReadNodeID() ua.NodeID {
	enc := r.ReadUint8()
	if r.err != nil {
		return ua.NodeID{}
	}
	if enc&(nodeIDNamespaceURIFlag|nodeIDServerIndexFlag) != 0 {
		r.SetError(fmt.Errorf("%w: expanded flags on plain nodeid", ErrInvalidValue))
		return ua.NodeID{}
	}
	return r.readNodeIDBody(enc)
}

// WriteExpandedNodeID appends an ExpandedNodeId.
func (w *Writer) WriteExpandedNodeID(e ua.ExpandedNodeID) {
	// The flags ride on the inner NodeId's encoding byte; remember where
	// it lands so they can be patched in.
	mark := w.Len()
	w.WriteNodeID(e.NodeID)
	if w.err != nil {
		return
	}
	var flags byte
	if e.NamespaceURI != "" {
		flags |= nodeIDNamespaceURIFlag
	}
	if e.ServerIndex != 0 {
		flags |= nodeIDServerIndexFlag
	}
	if flags != 0 {
		w.WriteAt(mark, []byte{w.buf[mark] | flags})
	}
	if e.NamespaceURI != "" {
		w.WriteString(e.NamespaceURI)
	}
	if e.ServerIndex != 0 {
		w.WriteUint32(e.ServerIndex)
	}
}

// ReadExpandedNodeID reads an ExpandedNodeId.
func (r *Reader) ReadExpandedNodeID() ua.ExpandedNodeID {
	enc := r.ReadUint8()
	if r.err != nil {
		return ua.ExpandedNodeID{}
	}
	out := ua.ExpandedNodeID{NodeID: r.readNodeIDBody(enc)}
	if enc&nodeIDNamespaceURIFlag != 0 {
		out.NamespaceURI = r.ReadString()
	}
	if enc&nodeIDServerIndexFlag != 0 {
		out.ServerIndex = r.ReadUint32()
	}
	return out
}

// WriteQualifiedName appends a QualifiedName.
func (w *Writer) WriteQualifiedName(q ua.QualifiedName) {
	w.WriteUint16(q.NamespaceIndex)
	w.WriteString(q.Name)
}

// ReadQualifiedName reads a QualifiedName.
func (r *Reader) ReadQualifiedName() ua.QualifiedName {
	ns := r.ReadUint16()
	return ua.QualifiedName{NamespaceIndex: ns, Name: r.ReadString()}
}

// LocalizedText encoding mask bits.
const (
	localizedTextLocale = 0x01
	localizedTextText   = 0x02
)

// WriteLocalizedText appends a LocalizedText.
func (w *Writer) WriteLocalizedText(l ua.LocalizedText) {
	var mask byte
	if l.Locale != "" {
		mask |= localizedTextLocale
	}
	if l.Text != "" {
		mask |= localizedTextText
	}
	w.WriteUint8(mask)
	if mask&localizedTextLocale != 0 {
		w.WriteString(l.Locale)
	}
	if mask&localizedTextText != 0 {
		w.WriteString(l.Text)
	}
}

// ReadLocalizedText reads a LocalizedText.
func (r *Reader) ReadLocalizedText() ua.LocalizedText {
	mask := r.ReadUint8()
	var l ua.LocalizedText
	if mask&localizedTextLocale != 0 {
		l.Locale = r.ReadString()
	}
	if mask&localizedTextText != 0 {
		l.Text = r.ReadString()
	}
	return l
}

// WriteStatusCode appends a StatusCode.
func (w *Writer) WriteStatusCode(s ua.StatusCode) {
	w.WriteUint32(uint32(s))
}

// ReadStatusCode reads a StatusCode.
func (r *Reader) ReadStatusCode() ua.StatusCode {
	return ua.StatusCode(r.ReadUint32())
}

// ExtensionObject body encodings.
const (
	extensionObjectEmpty      = 0x00
	extensionObjectByteString = 0x01
	extensionObjectXML        = 0x02
)

// WriteExtensionObject appends an ExtensionObject. A non-nil Body is written
// as is; otherwise a set Decoded value is encoded with the encoder registered
// for TypeID, and an unregistered type is an error.
func (w *Writer) WriteExtensionObject(e *ua.ExtensionObject) {
	if e == nil {
		w.WriteNodeID(ua.NodeID{})
		w.WriteUint8(extensionObjectEmpty)
		return
	}
	body := e.Body
	if body == nil && e.Decoded != nil {
		enc, ok := structEncoders[e.TypeID.Numeric]
		if !ok || e.TypeID.Namespace != 0 {
			w.SetError(fmt.Errorf("%w: no encoder for extension type %s", ErrInvalidValue, e.TypeID))
			return
		}
		bw := NewWriter(64)
		enc(bw, e.Decoded)
		if bw.Err() != nil {
			w.SetError(bw.Err())
			return
		}
		body = bw.Bytes()
	}
	w.WriteNodeID(e.TypeID)
	if body == nil {
		w.WriteUint8(extensionObjectEmpty)
		return
	}
	w.WriteUint8(extensionObjectByteString)
	w.WriteByteString(body)
}

// ReadExtensionObject reads an ExtensionObject and decodes the body when
// the type is registered.
func (r *Reader) ReadExtensionObject() *ua.ExtensionObject {
	typeID := r.ReadNodeID()
	enc := r.ReadUint8()
	if r.err != nil {
		return nil
	}
	out := &ua.ExtensionObject{TypeID: typeID}
	switch enc {
	case extensionObjectEmpty:
		if typeID.IsNull() {
			return nil
		}
		return out
	case extensionObjectByteString, extensionObjectXML:
		out.Body = r.ReadByteString()
	default:
		r.SetError(fmt.Errorf("%w: extension object encoding 0x%02X", ErrInvalidValue, enc))
		return nil
	}
	if enc == extensionObjectByteString && typeID.Namespace == 0 {
		if dec, ok := structDecoders[typeID.Numeric]; ok {
			br := NewReader(out.Body)
			v := dec(br)
			if br.Err() == nil {
				out.Decoded = v
			} else {
				r.SetError(br.Err())
			}
		}
	}
	return out
}

// DataValue encoding mask bits.
const (
	dataValueValue             = 0x01
	dataValueStatus            = 0x02
	dataValueSourceTimestamp   = 0x04
	dataValueServerTimestamp   = 0x08
	dataValueSourcePicoseconds = 0x10
	dataValueServerPicoseconds = 0x20
)

// WriteDataValue appends a DataValue.
func (w *Writer) WriteDataValue(d ua.DataValue) {
	var mask byte
	if d.HasValue {
		mask |= dataValueValue
	}
	if d.HasStatus {
		mask |= dataValueStatus
	}
	if d.HasSourceTimestamp {
		mask |= dataValueSourceTimestamp
	}
	if d.HasServerTimestamp {
		mask |= dataValueServerTimestamp
	}
	if d.HasSourcePicoseconds {
		mask |= dataValueSourcePicoseconds
	}
	if d.HasServerPicoseconds {
		mask |= dataValueServerPicoseconds
	}
	w.WriteUint8(mask)
	if d.HasValue {
		w.WriteVariant(d.Value)
	}
	if d.HasStatus {
		w.WriteStatusCode(d.Status)
	}
	if d.HasSourceTimestamp {
		w.WriteDateTime(d.SourceTimestamp)
	}
	if d.HasServerTimestamp {
		w.WriteDateTime(d.ServerTimestamp)
	}
	if d.HasSourcePicoseconds {
		w.WriteUint16(d.SourcePicoseconds)
	}
	if d.HasServerPicoseconds {
		w.WriteUint16(d.ServerPicoseconds)
	}
}

// ReadDataValue reads a DataValue.
func (r *Reader) ReadDataValue() ua.DataValue {
	mask := r.ReadUint8()
	var d ua.DataValue
	if mask&dataValueValue != 0 {
		d.Value = r.ReadVariant()
		d.HasValue = true
	}
	if mask&dataValueStatus != 0 {
		d.Status = r.ReadStatusCode()
		d.HasStatus = true
	}
	if mask&dataValueSourceTimestamp != 0 {
		d.SourceTimestamp = r.ReadDateTime()
		d.HasSourceTimestamp = true
	}
	if mask&dataValueServerTimestamp != 0 {
		d.ServerTimestamp = r.ReadDateTime()
		d.HasServerTimestamp = true
	}
	if mask&dataValueSourcePicoseconds != 0 {
		d.SourcePicoseconds = r.ReadUint16()
		d.HasSourcePicoseconds = true
	}
	if mask&dataValueServerPicoseconds != 0 {
		d.ServerPicoseconds = r.ReadUint16()
		d.HasServerPicoseconds = true
	}
	return d
}

// DiagnosticInfo encoding mask bits.
const (
	diagSymbolicID     = 0x01
	diagNamespaceURI   = 0x02
	diagLocalizedText  = 0x04
	diagLocale         = 0x08
	diagAdditionalInfo = 0x10
	diagInnerStatus    = 0x20
	diagInnerDiag      = 0x40
)

// WriteDiagnosticInfo appends a DiagnosticInfo (nil encodes as empty).
func (w *Writer) WriteDiagnosticInfo(d *ua.DiagnosticInfo) {
	if d == nil {
		w.WriteUint8(0)
		return
	}
	var mask byte
	if d.HasSymbolicID {
		mask |= diagSymbolicID
	}
	if d.HasNamespaceURI {
		mask |= diagNamespaceURI
	}
	if d.HasLocalizedText {
		mask |= diagLocalizedText
	}
	if d.HasLocale {
		mask |= diagLocale
	}
	if d.HasAdditionalInfo {
		mask |= diagAdditionalInfo
	}
	if d.HasInnerStatusCode {
		mask |= diagInnerStatus
	}
	if d.HasInnerDiagnosticInfo {
		mask |= diagInnerDiag
	}
	w.WriteUint8(mask)
	if d.HasSymbolicID {
		w.WriteInt32(d.SymbolicID)
	}
	if d.HasNamespaceURI {
		w.WriteInt32(d.NamespaceURI)
	}
	if d.HasLocalizedText {
		w.WriteInt32(d.LocalizedTextIndex)
	}
	if d.HasLocale {
		w.WriteInt32(d.Locale)
	}
	if d.HasAdditionalInfo {
		w.WriteString(d.AdditionalInfo)
	}
	if d.HasInnerStatusCode {
		w.WriteStatusCode(d.InnerStatusCode)
	}
	if d.HasInnerDiagnosticInfo {
		w.WriteDiagnosticInfo(d.InnerDiagnosticInfo)
	}
}

// ReadDiagnosticInfo reads a DiagnosticInfo; empty masks return nil.
func (r *Reader) ReadDiagnosticInfo() *ua.DiagnosticInfo {
	mask := r.ReadUint8()
	if r.err != nil || mask == 0 {
		return nil
	}
	d := &ua.DiagnosticInfo{}
	if mask&diagSymbolicID != 0 {
		d.SymbolicID = r.ReadInt32()
		d.HasSymbolicID = true
	}
	if mask&diagNamespaceURI != 0 {
		d.NamespaceURI = r.ReadInt32()
		d.HasNamespaceURI = true
	}
	if mask&diagLocalizedText != 0 {
		d.LocalizedTextIndex = r.ReadInt32()
		d.HasLocalizedText = true
	}
	if mask&diagLocale != 0 {
		d.Locale = r.ReadInt32()
		d.HasLocale = true
	}
	if mask&diagAdditionalInfo != 0 {
		d.AdditionalInfo = r.ReadString()
		d.HasAdditionalInfo = true
	}
	if mask&diagInnerStatus != 0 {
		d.InnerStatusCode = r.ReadStatusCode()
		d.HasInnerStatusCode = true
	}
	if mask&diagInnerDiag != 0 {
		d.InnerDiagnosticInfo = r.ReadDiagnosticInfo()
		d.HasInnerDiagnosticInfo = true
	}
	return d
}
