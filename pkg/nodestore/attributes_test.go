package nodestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opcuad/pkg/ua"
)

func newAttrStore(t *testing.T) (*Store, ua.NodeID) {
	t.Helper()
	s := newTestStore(t)
	// Int32 under Number under BaseDataType, for type checks.
	hasSubtype := ua.NewNumericNodeID(0, ua.IDHasSubtype)
	for _, dt := range []uint32{ua.IDBaseDataType, ua.IDInt32, ua.IDString} {
		_, status := s.Insert(&Node{ID: ua.NewNumericNodeID(0, dt), Class: ua.NodeClassDataType})
		require.Equal(t, ua.StatusGood, status)
	}
	require.Equal(t, ua.StatusGood, s.AddReference(ua.NewNumericNodeID(0, ua.IDBaseDataType), hasSubtype,
		ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDInt32)), true))
	require.Equal(t, ua.StatusGood, s.AddReference(ua.NewNumericNodeID(0, ua.IDBaseDataType), hasSubtype,
		ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDString)), true))

	id := ua.NewStringNodeID(1, "the.answer")
	_, status := s.Insert(intVariable(id, 42))
	require.Equal(t, ua.StatusGood, status)
	return s, id
}

func TestReadAttributeValue(t *testing.T) {
	s, id := newAttrStore(t)
	dv := s.ReadAttribute(id, ua.AttrValue, "")
	require.Equal(t, ua.StatusGood, dv.StatusCode())
	assert.Equal(t, int32(42), dv.Value.Int32())
}

func TestReadAttributeMetadata(t *testing.T) {
	s, id := newAttrStore(t)

	dv := s.ReadAttribute(id, ua.AttrNodeClass, "")
	assert.Equal(t, int32(ua.NodeClassVariable), dv.Value.Int32())

	dv = s.ReadAttribute(id, ua.AttrBrowseName, "")
	qn := dv.Value.Value.(ua.QualifiedName)
	assert.Equal(t, "var", qn.Name)

	dv = s.ReadAttribute(id, ua.AttrDataType, "")
	assert.Equal(t, ua.NewNumericNodeID(0, ua.IDInt32), dv.Value.Value.(ua.NodeID))
}

func TestReadAttributeInvalid(t *testing.T) {
	s, id := newAttrStore(t)

	dv := s.ReadAttribute(id, ua.AttrExecutable, "")
	assert.Equal(t, ua.StatusBadAttributeIDInvalid, dv.StatusCode(),
		"Executable does not exist on a Variable")

	dv = s.ReadAttribute(id, ua.AttributeID(99), "")
	assert.Equal(t, ua.StatusBadAttributeIDInvalid, dv.StatusCode())

	dv = s.ReadAttribute(ua.NewStringNodeID(1, "missing"), ua.AttrValue, "")
	assert.Equal(t, ua.StatusBadNodeIDUnknown, dv.StatusCode())
}

func TestReadAttributeIndexRange(t *testing.T) {
	s, _ := newAttrStore(t)
	id := ua.NewStringNodeID(1, "arr")
	_, status := s.Insert(&Node{
		ID:          id,
		Class:       ua.NodeClassVariable,
		DataType:    ua.NewNumericNodeID(0, ua.IDInt32),
		ValueRank:   ua.ValueRankOneDimension,
		AccessLevel: ua.AccessLevelCurrentRead,
		Value:       ua.NewDataValue(ua.NewVariant([]int32{10, 20, 30, 40})),
	})
	require.Equal(t, ua.StatusGood, status)

	dv := s.ReadAttribute(id, ua.AttrValue, "1:2")
	require.Equal(t, ua.StatusGood, dv.StatusCode())
	assert.Equal(t, []int32{20, 30}, dv.Value.Value)

	// A range on a non-array attribute is invalid.
	dv = s.ReadAttribute(id, ua.AttrNodeClass, "0")
	assert.Equal(t, ua.StatusBadIndexRangeInvalid, dv.StatusCode())

	// Malformed range strings are invalid.
	dv = s.ReadAttribute(id, ua.AttrValue, "2:1")
	assert.Equal(t, ua.StatusBadIndexRangeInvalid, dv.StatusCode())

	// Out-of-bounds ranges carry no data.
	dv = s.ReadAttribute(id, ua.AttrValue, "9")
	assert.Equal(t, ua.StatusBadIndexRangeNoData, dv.StatusCode())
}

func TestWriteValue(t *testing.T) {
	s, id := newAttrStore(t)

	status := s.WriteAttribute(id, ua.AttrValue, "", ua.NewDataValue(ua.NewVariant(int32(123))))
	require.Equal(t, ua.StatusGood, status)

	dv := s.ReadAttribute(id, ua.AttrValue, "")
	assert.Equal(t, int32(123), dv.Value.Int32())
}

func TestWriteValueTypeMismatch(t *testing.T) {
	s, id := newAttrStore(t)
	status := s.WriteAttribute(id, ua.AttrValue, "", ua.NewDataValue(ua.NewVariant("hello")))
	assert.Equal(t, ua.StatusBadTypeMismatch, status)

	// The stored value is untouched.
	dv := s.ReadAttribute(id, ua.AttrValue, "")
	assert.Equal(t, int32(42), dv.Value.Int32())
}

func TestWriteValueNotWritable(t *testing.T) {
	s, _ := newAttrStore(t)
	id := ua.NewStringNodeID(1, "ro")
	node := intVariable(id, 7)
	node.AccessLevel = ua.AccessLevelCurrentRead
	_, status := s.Insert(node)
	require.Equal(t, ua.StatusGood, status)

	status = s.WriteAttribute(id, ua.AttrValue, "", ua.NewDataValue(ua.NewVariant(int32(8))))
	assert.Equal(t, ua.StatusBadNotWritable, status)
}

func TestWriteMaskGatesMetadata(t *testing.T) {
	s, id := newAttrStore(t)

	// DisplayName write without the mask bit.
	status := s.WriteAttribute(id, ua.AttrDisplayName, "",
		ua.NewDataValue(ua.NewVariant(ua.NewLocalizedText("renamed"))))
	assert.Equal(t, ua.StatusBadNotWritable, status)

	// Grant the bit and retry.
	node, _ := s.GetCopy(id)
	node.WriteMask = ua.WriteMaskDisplayName
	require.Equal(t, ua.StatusGood, s.Replace(node))

	status = s.WriteAttribute(id, ua.AttrDisplayName, "",
		ua.NewDataValue(ua.NewVariant(ua.NewLocalizedText("renamed"))))
	require.Equal(t, ua.StatusGood, status)

	dv := s.ReadAttribute(id, ua.AttrDisplayName, "")
	assert.Equal(t, "renamed", dv.Value.Value.(ua.LocalizedText).Text)
}

func TestWriteValueRankChecksCurrentValue(t *testing.T) {
	s, id := newAttrStore(t)
	node, _ := s.GetCopy(id)
	node.WriteMask = ua.WriteMaskValueRank
	require.Equal(t, ua.StatusGood, s.Replace(node))

	// The current scalar value is incompatible with a one-dimension rank.
	status := s.WriteAttribute(id, ua.AttrValueRank, "",
		ua.NewDataValue(ua.NewVariant(ua.ValueRankOneDimension)))
	assert.Equal(t, ua.StatusBadTypeMismatch, status)

	// Scalar-or-one-dimension accepts the current scalar.
	status = s.WriteAttribute(id, ua.AttrValueRank, "",
		ua.NewDataValue(ua.NewVariant(ua.ValueRankScalarOrOneDimension)))
	assert.Equal(t, ua.StatusGood, status)
}

func TestValueSourceDispatch(t *testing.T) {
	s, _ := newAttrStore(t)
	id := ua.NewStringNodeID(1, "dyn")

	var written ua.DataValue
	_, status := s.Insert(&Node{
		ID:          id,
		Class:       ua.NodeClassVariable,
		DataType:    ua.NewNumericNodeID(0, ua.IDInt32),
		ValueRank:   ua.ValueRankScalar,
		AccessLevel: ua.AccessLevelCurrentRead | ua.AccessLevelCurrentWrite,
		Source: &ValueSource{
			Read: func(ua.NodeID) (ua.DataValue, ua.StatusCode) {
				return ua.NewDataValue(ua.NewVariant(int32(99))), ua.StatusGood
			},
			Write: func(_ ua.NodeID, dv ua.DataValue) ua.StatusCode {
				written = dv
				return ua.StatusGood
			},
		},
	})
	require.Equal(t, ua.StatusGood, status)

	dv := s.ReadAttribute(id, ua.AttrValue, "")
	assert.Equal(t, int32(99), dv.Value.Int32())

	status = s.WriteAttribute(id, ua.AttrValue, "", ua.NewDataValue(ua.NewVariant(int32(100))))
	require.Equal(t, ua.StatusGood, status)
	assert.Equal(t, int32(100), written.Value.Int32())
}
