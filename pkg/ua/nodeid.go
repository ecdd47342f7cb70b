package ua

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDType discriminates the identifier kind of a NodeId.
type IDType byte

const (
	IDTypeNumeric    IDType = 0
	IDTypeString     IDType = 1
	IDTypeGUID       IDType = 2
	IDTypeByteString IDType = 3
)

// NodeID identifies a node in the address space. It is a value type: all
// fields are comparable, so NodeID works directly as a map key and ==
// implements the equality of spec'd NodeId semantics. ByteString content is
// held in an (immutable) string for the same reason.
type NodeID struct {
	Namespace uint16
	Type      IDType
	Numeric   uint32
	Text      string    // string and bytestring identifiers
	GUID      uuid.UUID // guid identifiers
}

// NewNumericNodeID returns a numeric NodeId.
func NewNumericNodeID(ns uint16, id uint32) NodeID {
	return NodeID{Namespace: ns, Type: IDTypeNumeric, Numeric: id}
}

// NewStringNodeID returns a string NodeId.
func NewStringNodeID(ns uint16, id string) NodeID {
	return NodeID{Namespace: ns, Type: IDTypeString, Text: id}
}

// NewGUIDNodeID returns a GUID NodeId.
func NewGUIDNodeID(ns uint16, id uuid.UUID) NodeID {
	return NodeID{Namespace: ns, Type: IDTypeGUID, GUID: id}
}

// NewByteStringNodeID returns an opaque NodeId.
func NewByteStringNodeID(ns uint16, id []byte) NodeID {
	return NodeID{Namespace: ns, Type: IDTypeByteString, Text: string(id)}
}

// IsNull reports whether the NodeId is the null id of its identifier type.
func (n NodeID) IsNull() bool {
	if n.Namespace != 0 {
		return false
	}
	switch n.Type {
	case IDTypeNumeric:
		return n.Numeric == 0
	case IDTypeString, IDTypeByteString:
		return n.Text == ""
	case IDTypeGUID:
		return n.GUID == uuid.Nil
	}
	return false
}

// Equal reports NodeId equality. Identical to ==; kept for call sites that
// read better with an explicit method.
func (n NodeID) Equal(other NodeID) bool {
	return n == other
}

// Less defines the total order over NodeIds: namespace, then identifier
// type, then identifier content.
func (n NodeID) Less(other NodeID) bool {
	if n.Namespace != other.Namespace {
		return n.Namespace < other.Namespace
	}
	if n.Type != other.Type {
		return n.Type < other.Type
	}
	switch n.Type {
	case IDTypeNumeric:
		return n.Numeric < other.Numeric
	case IDTypeString, IDTypeByteString:
		return n.Text < other.Text
	case IDTypeGUID:
		return strings.Compare(string(n.GUID[:]), string(other.GUID[:])) < 0
	}
	return false
}

// String renders the canonical "ns=X;i=Y" form.
func (n NodeID) String() string {
	var id string
	switch n.Type {
	case IDTypeNumeric:
		id = fmt.Sprintf("i=%d", n.Numeric)
	case IDTypeString:
		id = fmt.Sprintf("s=%s", n.Text)
	case IDTypeGUID:
		id = fmt.Sprintf("g=%s", n.GUID)
	case IDTypeByteString:
		id = fmt.Sprintf("b=%x", n.Text)
	}
	if n.Namespace == 0 {
		return id
	}
	return fmt.Sprintf("ns=%d;%s", n.Namespace, id)
}

// ExpandedNodeID extends a NodeId with an optional namespace URI and a
// server index for cross-server references.
type ExpandedNodeID struct {
	NodeID       NodeID
	NamespaceURI string
	ServerIndex  uint32
}

// NewExpandedNodeID wraps a local NodeId.
func NewExpandedNodeID(id NodeID) ExpandedNodeID {
	return ExpandedNodeID{NodeID: id}
}

// IsLocal reports whether the id refers to a node on this server.
func (e ExpandedNodeID) IsLocal() bool {
	return e.ServerIndex == 0 && e.NamespaceURI == ""
}

func (e ExpandedNodeID) String() string {
	if e.IsLocal() {
		return e.NodeID.String()
	}
	return fmt.Sprintf("svr=%d;nsu=%s;%s", e.ServerIndex, e.NamespaceURI, e.NodeID)
}
