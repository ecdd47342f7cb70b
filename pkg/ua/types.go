package ua

import (
	"time"
)

// QualifiedName is a name qualified by a namespace index.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

// NewQualifiedName returns a QualifiedName in the given namespace.
func NewQualifiedName(ns uint16, name string) QualifiedName {
	return QualifiedName{NamespaceIndex: ns, Name: name}
}

// LocalizedText is human-readable text with an optional locale tag.
type LocalizedText struct {
	Locale string
	Text   string
}

// NewLocalizedText returns a LocalizedText without a locale.
func NewLocalizedText(text string) LocalizedText {
	return LocalizedText{Text: text}
}

// DateTime ticks are 100-nanosecond intervals since 1601-01-01 UTC.
// datetime1601 is that epoch expressed on the Unix timeline.
var datetime1601 = time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)

// DateTimeToTicks converts a time.Time to OPC UA DateTime ticks.
// The zero time maps to 0.
func DateTimeToTicks(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return (t.Unix()-datetime1601.Unix())*10000000 + int64(t.Nanosecond()/100)
}

// DateTimeFromTicks converts OPC UA DateTime ticks to a time.Time in UTC.
// Zero ticks map to the zero time.
func DateTimeFromTicks(ticks int64) time.Time {
	if ticks == 0 {
		return time.Time{}
	}
	return time.Unix(datetime1601.Unix()+ticks/10000000, (ticks%10000000)*100).UTC()
}

// ExtensionObject wraps a structured value identified by the NodeId of its
// binary encoding. Decoded is populated when the codec knows the type;
// Body always carries the raw encoded bytes for unknown types.
type ExtensionObject struct {
	TypeID  NodeID // binary-encoding NodeId
	Body    []byte // raw body (nil when the object is empty)
	Decoded any    // decoded structure, nil if the type is not registered
}

// HasBody reports whether the object carries an encoded body.
func (e *ExtensionObject) HasBody() bool {
	return e != nil && e.Body != nil
}

// DiagnosticInfo carries vendor diagnostics in response headers. The server
// emits empty diagnostics; the type exists so the codec can skip inbound
// ones correctly.
type DiagnosticInfo struct {
	SymbolicID          int32
	NamespaceURI        int32
	Locale              int32
	LocalizedTextIndex  int32
	AdditionalInfo      string
	InnerStatusCode     StatusCode
	InnerDiagnosticInfo *DiagnosticInfo

	HasSymbolicID         bool
	HasNamespaceURI       bool
	HasLocale             bool
	HasLocalizedText      bool
	HasAdditionalInfo     bool
	HasInnerStatusCode    bool
	HasInnerDiagnosticInfo bool
}

// MessageSecurityMode of an endpoint or channel.
type MessageSecurityMode uint32

const (
	SecurityModeInvalid        MessageSecurityMode = 0
	SecurityModeNone           MessageSecurityMode = 1
	SecurityModeSign           MessageSecurityMode = 2
	SecurityModeSignAndEncrypt MessageSecurityMode = 3
)

func (m MessageSecurityMode) String() string {
	switch m {
	case SecurityModeNone:
		return "None"
	case SecurityModeSign:
		return "Sign"
	case SecurityModeSignAndEncrypt:
		return "SignAndEncrypt"
	default:
		return "Invalid"
	}
}

// TimestampsToReturn selects which timestamps Read and monitored items
// deliver.
type TimestampsToReturn uint32

const (
	TimestampsSource  TimestampsToReturn = 0
	TimestampsServer  TimestampsToReturn = 1
	TimestampsBoth    TimestampsToReturn = 2
	TimestampsNeither TimestampsToReturn = 3
)

// BrowseDirection of a Browse request.
type BrowseDirection uint32

const (
	BrowseDirectionForward BrowseDirection = 0
	BrowseDirectionInverse BrowseDirection = 1
	BrowseDirectionBoth    BrowseDirection = 2
)

// MonitoringMode of a monitored item.
type MonitoringMode uint32

const (
	MonitoringDisabled  MonitoringMode = 0
	MonitoringSampling  MonitoringMode = 1
	MonitoringReporting MonitoringMode = 2
)

// DataChangeTrigger of a DataChangeFilter.
type DataChangeTrigger uint32

const (
	TriggerStatus               DataChangeTrigger = 0
	TriggerStatusValue          DataChangeTrigger = 1
	TriggerStatusValueTimestamp DataChangeTrigger = 2
)

// ServerState for the ServerStatus variable.
type ServerState uint32

const (
	ServerStateRunning  ServerState = 0
	ServerStateFailed   ServerState = 1
	ServerStateShutdown ServerState = 4
)
