// Package nodestore implements the OPC UA address space: a namespace-
// partitioned graph of typed nodes connected by bidirectional references.
//
// Nodes live in per-namespace arenas ([]*Node addressed through a NodeId
// index map); references hold NodeId values rather than pointers, so the
// cyclic type hierarchy imposes no ownership structure.
package nodestore

import (
	"github.com/marmos91/opcuad/pkg/ua"
)

// Reference is a typed, directed edge stored on its source node. Every
// forward reference has a mirrored entry on the target node with
// IsInverse=true; the store maintains both sides atomically.
type Reference struct {
	ReferenceTypeID ua.NodeID
	IsInverse       bool
	Target          ua.ExpandedNodeID
}

// ValueSource backs a Variable's Value attribute with callbacks instead of
// the stored DataValue. Read must return the current value; Write may be
// nil for read-only sources.
type ValueSource struct {
	Read  func(nodeID ua.NodeID) (ua.DataValue, ua.StatusCode)
	Write func(nodeID ua.NodeID, value ua.DataValue) ua.StatusCode
}

// MethodHandler is the callable behind a Method node, supplied by the
// embedder. It receives the object context and input variants and returns
// the outputs.
type MethodHandler func(objectID ua.NodeID, input []ua.Variant) ([]ua.Variant, ua.StatusCode)

// Node is one address-space node. The class-specific attributes share a
// flat layout discriminated by Class, mirroring how the wire protocol
// models NodeClass polymorphism; accessors and the attribute service
// dispatch on the tag.
type Node struct {
	// Common head
	ID            ua.NodeID
	Class         ua.NodeClass
	BrowseName    ua.QualifiedName
	DisplayName   ua.LocalizedText
	Description   ua.LocalizedText
	WriteMask     uint32
	UserWriteMask uint32
	References    []Reference

	// Version counts replace operations; a Replace carrying a stale
	// version is a lost update and is rejected.
	Version uint64

	// Variable / VariableType
	Value                   ua.DataValue
	DataType                ua.NodeID
	ValueRank               int32
	ArrayDimensions         []uint32
	AccessLevel             byte
	UserAccessLevel         byte
	MinimumSamplingInterval float64
	Historizing             bool
	Source                  *ValueSource

	// Method
	Executable     bool
	UserExecutable bool
	Method         MethodHandler

	// ObjectType / VariableType / ReferenceType / DataType
	IsAbstract bool

	// ReferenceType
	Symmetric   bool
	InverseName ua.LocalizedText

	// Object / View
	EventNotifier   byte
	ContainsNoLoops bool
}

// Copy returns a deep copy of the node. References and ArrayDimensions are
// cloned; the value source and method handler are shared (they are
// immutable embedder callbacks).
func (n *Node) Copy() *Node {
	out := *n
	if n.References != nil {
		out.References = make([]Reference, len(n.References))
		copy(out.References, n.References)
	}
	if n.ArrayDimensions != nil {
		out.ArrayDimensions = make([]uint32, len(n.ArrayDimensions))
		copy(out.ArrayDimensions, n.ArrayDimensions)
	}
	return &out
}

// HasReference reports whether the node carries the exact reference triple.
func (n *Node) HasReference(refType ua.NodeID, target ua.ExpandedNodeID, isInverse bool) bool {
	for _, ref := range n.References {
		if ref.ReferenceTypeID == refType && ref.Target == target && ref.IsInverse == isInverse {
			return true
		}
	}
	return false
}

// TypeDefinition returns the target of the node's HasTypeDefinition
// reference, or a null id when absent.
func (n *Node) TypeDefinition() ua.ExpandedNodeID {
	refType := ua.NewNumericNodeID(0, ua.IDHasTypeDefinition)
	for _, ref := range n.References {
		if !ref.IsInverse && ref.ReferenceTypeID == refType {
			return ref.Target
		}
	}
	return ua.ExpandedNodeID{}
}
