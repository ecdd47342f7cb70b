package nodestore

import (
	"github.com/marmos91/opcuad/pkg/ua"
)

// ReadAttribute resolves (NodeId, AttributeId, IndexRange) to a DataValue.
// Per-item failures come back as a status-only DataValue, never as an
// error: Read is a batched service and one bad entry must not spoil the
// batch. Timestamps are stamped by the caller.
func (s *Store) ReadAttribute(id ua.NodeID, attr ua.AttributeID, indexRangeStr string) ua.DataValue {
	ranges, ok := parseIndexRange(indexRangeStr)
	if !ok {
		return ua.NewDataValueStatus(ua.StatusBadIndexRangeInvalid)
	}

	node, status := s.Get(id)
	if status != ua.StatusGood {
		return ua.NewDataValueStatus(status)
	}

	value, status := s.readAttributeValue(node, attr)
	if status != ua.StatusGood {
		return ua.NewDataValueStatus(status)
	}

	if len(ranges) > 0 {
		if attr != ua.AttrValue && attr != ua.AttrArrayDimensions {
			return ua.NewDataValueStatus(ua.StatusBadIndexRangeInvalid)
		}
		ranged, st := applyIndexRange(value.Value, ranges)
		if st != ua.StatusGood {
			return ua.NewDataValueStatus(st)
		}
		value.Value = ranged
	}
	return value
}

// readAttributeValue dispatches on the node class tag. Attributes that do
// not exist on the class return BadAttributeIdInvalid.
func (s *Store) readAttributeValue(node *Node, attr ua.AttributeID) (ua.DataValue, ua.StatusCode) {
	switch attr {
	case ua.AttrNodeID:
		return ua.NewDataValue(ua.NewVariant(node.ID)), ua.StatusGood
	case ua.AttrNodeClass:
		return ua.NewDataValue(ua.NewVariant(int32(node.Class))), ua.StatusGood
	case ua.AttrBrowseName:
		return ua.NewDataValue(ua.NewVariant(node.BrowseName)), ua.StatusGood
	case ua.AttrDisplayName:
		return ua.NewDataValue(ua.NewVariant(node.DisplayName)), ua.StatusGood
	case ua.AttrDescription:
		return ua.NewDataValue(ua.NewVariant(node.Description)), ua.StatusGood
	case ua.AttrWriteMask:
		return ua.NewDataValue(ua.NewVariant(node.WriteMask)), ua.StatusGood
	case ua.AttrUserWriteMask:
		return ua.NewDataValue(ua.NewVariant(node.UserWriteMask)), ua.StatusGood

	case ua.AttrValue:
		if node.Class != ua.NodeClassVariable && node.Class != ua.NodeClassVariableType {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		if node.Class == ua.NodeClassVariable && node.AccessLevel&ua.AccessLevelCurrentRead == 0 {
			return ua.DataValue{}, ua.StatusBadNotReadable
		}
		if node.Source != nil && node.Source.Read != nil {
			dv, status := node.Source.Read(node.ID)
			if status != ua.StatusGood {
				return ua.DataValue{}, status
			}
			return dv, ua.StatusGood
		}
		return node.Value, ua.StatusGood

	case ua.AttrDataType:
		if node.Class != ua.NodeClassVariable && node.Class != ua.NodeClassVariableType {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.DataType)), ua.StatusGood
	case ua.AttrValueRank:
		if node.Class != ua.NodeClassVariable && node.Class != ua.NodeClassVariableType {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.ValueRank)), ua.StatusGood
	case ua.AttrArrayDimensions:
		if node.Class != ua.NodeClassVariable && node.Class != ua.NodeClassVariableType {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(append([]uint32{}, node.ArrayDimensions...))), ua.StatusGood
	case ua.AttrAccessLevel:
		if node.Class != ua.NodeClassVariable {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.AccessLevel)), ua.StatusGood
	case ua.AttrUserAccessLevel:
		if node.Class != ua.NodeClassVariable {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.UserAccessLevel)), ua.StatusGood
	case ua.AttrMinimumSamplingInterval:
		if node.Class != ua.NodeClassVariable {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.MinimumSamplingInterval)), ua.StatusGood
	case ua.AttrHistorizing:
		if node.Class != ua.NodeClassVariable {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.Historizing)), ua.StatusGood

	case ua.AttrExecutable:
		if node.Class != ua.NodeClassMethod {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.Executable)), ua.StatusGood
	case ua.AttrUserExecutable:
		if node.Class != ua.NodeClassMethod {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.UserExecutable)), ua.StatusGood

	case ua.AttrIsAbstract:
		switch node.Class {
		case ua.NodeClassObjectType, ua.NodeClassVariableType, ua.NodeClassReferenceType, ua.NodeClassDataType:
			return ua.NewDataValue(ua.NewVariant(node.IsAbstract)), ua.StatusGood
		}
		return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
	case ua.AttrSymmetric:
		if node.Class != ua.NodeClassReferenceType {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.Symmetric)), ua.StatusGood
	case ua.AttrInverseName:
		if node.Class != ua.NodeClassReferenceType {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.InverseName)), ua.StatusGood

	case ua.AttrContainsNoLoops:
		if node.Class != ua.NodeClassView {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.ContainsNoLoops)), ua.StatusGood
	case ua.AttrEventNotifier:
		if node.Class != ua.NodeClassObject && node.Class != ua.NodeClassView {
			return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
		}
		return ua.NewDataValue(ua.NewVariant(node.EventNotifier)), ua.StatusGood

	default:
		return ua.DataValue{}, ua.StatusBadAttributeIDInvalid
	}
}

// WriteAttribute validates and commits one write. Non-Value attributes are
// gated on the node's WriteMask; the Value attribute is gated on
// AccessLevel and checked against DataType/ValueRank/ArrayDimensions.
func (s *Store) WriteAttribute(id ua.NodeID, attr ua.AttributeID, indexRangeStr string, dv ua.DataValue) ua.StatusCode {
	if _, ok := parseIndexRange(indexRangeStr); !ok {
		return ua.StatusBadIndexRangeInvalid
	}
	if indexRangeStr != "" {
		// Ranged writes are not supported; the whole value is replaced.
		return ua.StatusBadWriteNotSupported
	}

	node, status := s.GetCopy(id)
	if status != ua.StatusGood {
		return status
	}

	switch attr {
	case ua.AttrValue:
		if node.Class != ua.NodeClassVariable && node.Class != ua.NodeClassVariableType {
			return ua.StatusBadAttributeIDInvalid
		}
		if node.Class == ua.NodeClassVariable && node.AccessLevel&ua.AccessLevelCurrentWrite == 0 {
			return ua.StatusBadNotWritable
		}
		if !s.IsValueCompatible(dv.Value, node.DataType, node.ValueRank, node.ArrayDimensions) {
			return ua.StatusBadTypeMismatch
		}
		if node.Source != nil {
			if node.Source.Write == nil {
				return ua.StatusBadNotWritable
			}
			return node.Source.Write(node.ID, dv)
		}
		node.Value = dv

	case ua.AttrDisplayName:
		if node.WriteMask&ua.WriteMaskDisplayName == 0 {
			return ua.StatusBadNotWritable
		}
		lt, ok := dv.Value.Value.(ua.LocalizedText)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.DisplayName = lt

	case ua.AttrDescription:
		if node.WriteMask&ua.WriteMaskDescription == 0 {
			return ua.StatusBadNotWritable
		}
		lt, ok := dv.Value.Value.(ua.LocalizedText)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.Description = lt

	case ua.AttrBrowseName:
		if node.WriteMask&ua.WriteMaskBrowseName == 0 {
			return ua.StatusBadNotWritable
		}
		qn, ok := dv.Value.Value.(ua.QualifiedName)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.BrowseName = qn

	case ua.AttrWriteMask:
		if node.WriteMask&ua.WriteMaskWriteMask == 0 {
			return ua.StatusBadNotWritable
		}
		mask, ok := dv.Value.Value.(uint32)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.WriteMask = mask

	case ua.AttrValueRank:
		if node.Class != ua.NodeClassVariable && node.Class != ua.NodeClassVariableType {
			return ua.StatusBadAttributeIDInvalid
		}
		if node.WriteMask&ua.WriteMaskValueRank == 0 {
			return ua.StatusBadNotWritable
		}
		rank, ok := dv.Value.Value.(int32)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		// Only legal when the current value fits the new rank.
		current := node.Value
		if node.Source != nil && node.Source.Read != nil {
			current, _ = node.Source.Read(node.ID)
		}
		if current.HasValue && !s.IsValueCompatible(current.Value, node.DataType, rank, nil) {
			return ua.StatusBadTypeMismatch
		}
		node.ValueRank = rank

	case ua.AttrArrayDimensions:
		if node.Class != ua.NodeClassVariable && node.Class != ua.NodeClassVariableType {
			return ua.StatusBadAttributeIDInvalid
		}
		if node.WriteMask&ua.WriteMaskArrayDimensions == 0 {
			return ua.StatusBadNotWritable
		}
		dims, ok := dv.Value.Value.([]uint32)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		current := node.Value
		if current.HasValue && !s.IsValueCompatible(current.Value, node.DataType, node.ValueRank, dims) {
			return ua.StatusBadTypeMismatch
		}
		node.ArrayDimensions = dims

	case ua.AttrDataType:
		if node.Class != ua.NodeClassVariable && node.Class != ua.NodeClassVariableType {
			return ua.StatusBadAttributeIDInvalid
		}
		if node.WriteMask&ua.WriteMaskDataType == 0 {
			return ua.StatusBadNotWritable
		}
		dt, ok := dv.Value.Value.(ua.NodeID)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.DataType = dt

	case ua.AttrAccessLevel:
		if node.Class != ua.NodeClassVariable {
			return ua.StatusBadAttributeIDInvalid
		}
		if node.WriteMask&ua.WriteMaskAccessLevel == 0 {
			return ua.StatusBadNotWritable
		}
		level, ok := dv.Value.Value.(byte)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.AccessLevel = level

	case ua.AttrHistorizing:
		if node.Class != ua.NodeClassVariable {
			return ua.StatusBadAttributeIDInvalid
		}
		if node.WriteMask&ua.WriteMaskHistorizing == 0 {
			return ua.StatusBadNotWritable
		}
		h, ok := dv.Value.Value.(bool)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.Historizing = h

	case ua.AttrExecutable:
		if node.Class != ua.NodeClassMethod {
			return ua.StatusBadAttributeIDInvalid
		}
		if node.WriteMask&ua.WriteMaskExecutable == 0 {
			return ua.StatusBadNotWritable
		}
		e, ok := dv.Value.Value.(bool)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.Executable = e

	case ua.AttrIsAbstract:
		switch node.Class {
		case ua.NodeClassObjectType, ua.NodeClassVariableType, ua.NodeClassReferenceType, ua.NodeClassDataType:
		default:
			return ua.StatusBadAttributeIDInvalid
		}
		if node.WriteMask&ua.WriteMaskIsAbstract == 0 {
			return ua.StatusBadNotWritable
		}
		a, ok := dv.Value.Value.(bool)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.IsAbstract = a

	case ua.AttrEventNotifier:
		if node.Class != ua.NodeClassObject && node.Class != ua.NodeClassView {
			return ua.StatusBadAttributeIDInvalid
		}
		if node.WriteMask&ua.WriteMaskEventNotifier == 0 {
			return ua.StatusBadNotWritable
		}
		e, ok := dv.Value.Value.(byte)
		if !ok {
			return ua.StatusBadTypeMismatch
		}
		node.EventNotifier = e

	case ua.AttrNodeID, ua.AttrNodeClass:
		// Identity attributes are never writable.
		return ua.StatusBadNotWritable

	default:
		return ua.StatusBadAttributeIDInvalid
	}

	// Value writes through a source committed already.
	if attr == ua.AttrValue && node.Source != nil {
		return ua.StatusGood
	}
	return s.Replace(node)
}
