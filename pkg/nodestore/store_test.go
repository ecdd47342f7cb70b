package nodestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opcuad/pkg/ua"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New("urn:test:server")

	// Minimal reference-type scaffolding for the tests: References,
	// HasSubtype, Organizes.
	for _, rt := range []struct {
		id   uint32
		name string
	}{
		{ua.IDReferences, "References"},
		{ua.IDHierarchicalReferences, "HierarchicalReferences"},
		{ua.IDHasChild, "HasChild"},
		{ua.IDHasSubtype, "HasSubtype"},
		{ua.IDOrganizes, "Organizes"},
	} {
		_, status := s.Insert(&Node{
			ID:         ua.NewNumericNodeID(0, rt.id),
			Class:      ua.NodeClassReferenceType,
			BrowseName: ua.NewQualifiedName(0, rt.name),
		})
		require.Equal(t, ua.StatusGood, status)
	}
	hasSubtype := ua.NewNumericNodeID(0, ua.IDHasSubtype)
	require.Equal(t, ua.StatusGood, s.AddReference(
		ua.NewNumericNodeID(0, ua.IDReferences), hasSubtype,
		ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDHierarchicalReferences)), true))
	require.Equal(t, ua.StatusGood, s.AddReference(
		ua.NewNumericNodeID(0, ua.IDHierarchicalReferences), hasSubtype,
		ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDHasChild)), true))
	require.Equal(t, ua.StatusGood, s.AddReference(
		ua.NewNumericNodeID(0, ua.IDHierarchicalReferences), hasSubtype,
		ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDOrganizes)), true))
	return s
}

func intVariable(id ua.NodeID, value int32) *Node {
	return &Node{
		ID:          id,
		Class:       ua.NodeClassVariable,
		BrowseName:  ua.NewQualifiedName(1, "var"),
		DataType:    ua.NewNumericNodeID(0, ua.IDInt32),
		ValueRank:   ua.ValueRankScalar,
		AccessLevel: ua.AccessLevelCurrentRead | ua.AccessLevelCurrentWrite,
		Value:       ua.NewDataValue(ua.NewVariant(value)),
	}
}

func TestInsertAndGet(t *testing.T) {
	s := newTestStore(t)
	id := ua.NewStringNodeID(1, "the.answer")
	got, status := s.Insert(intVariable(id, 42))
	require.Equal(t, ua.StatusGood, status)
	assert.Equal(t, id, got)

	node, status := s.Get(id)
	require.Equal(t, ua.StatusGood, status)
	assert.Equal(t, int32(42), node.Value.Value.Int32())
}

func TestInsertDuplicate(t *testing.T) {
	s := newTestStore(t)
	id := ua.NewStringNodeID(1, "dup")
	_, status := s.Insert(intVariable(id, 1))
	require.Equal(t, ua.StatusGood, status)
	_, status = s.Insert(intVariable(id, 2))
	assert.Equal(t, ua.StatusBadNodeIDExists, status)
}

func TestInsertAssignsFreshID(t *testing.T) {
	s := newTestStore(t)
	id1, status := s.Insert(intVariable(ua.NodeID{}, 1))
	require.Equal(t, ua.StatusGood, status)
	id2, status := s.Insert(intVariable(ua.NodeID{}, 2))
	require.Equal(t, ua.StatusGood, status)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, uint16(1), id1.Namespace)
}

func TestGetUnknown(t *testing.T) {
	s := newTestStore(t)
	_, status := s.Get(ua.NewStringNodeID(1, "missing"))
	assert.Equal(t, ua.StatusBadNodeIDUnknown, status)
	_, status = s.Get(ua.NewNumericNodeID(99, 1))
	assert.Equal(t, ua.StatusBadNodeIDUnknown, status)
}

func TestReplaceVersionConflict(t *testing.T) {
	s := newTestStore(t)
	id := ua.NewStringNodeID(1, "v")
	_, status := s.Insert(intVariable(id, 1))
	require.Equal(t, ua.StatusGood, status)

	copy1, status := s.GetCopy(id)
	require.Equal(t, ua.StatusGood, status)
	copy2, status := s.GetCopy(id)
	require.Equal(t, ua.StatusGood, status)

	copy1.Value = ua.NewDataValue(ua.NewVariant(int32(10)))
	require.Equal(t, ua.StatusGood, s.Replace(copy1))

	// The second editor lost the race.
	copy2.Value = ua.NewDataValue(ua.NewVariant(int32(20)))
	assert.Equal(t, ua.StatusBadInternalError, s.Replace(copy2))

	node, _ := s.Get(id)
	assert.Equal(t, int32(10), node.Value.Value.Int32())
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	id := ua.NewStringNodeID(1, "gone")
	_, status := s.Insert(intVariable(id, 1))
	require.Equal(t, ua.StatusGood, status)
	require.Equal(t, ua.StatusGood, s.Remove(id))
	_, status = s.Get(id)
	assert.Equal(t, ua.StatusBadNodeIDUnknown, status)
	assert.Equal(t, ua.StatusBadNodeIDUnknown, s.Remove(id))
}

// referenceSymmetric checks the two-sided reference invariant over the
// whole store.
func referenceSymmetric(t *testing.T, s *Store, src, target ua.NodeID, refType ua.NodeID) {
	t.Helper()
	srcNode, status := s.Get(src)
	require.Equal(t, ua.StatusGood, status)
	targetNode, status := s.Get(target)
	require.Equal(t, ua.StatusGood, status)
	assert.True(t, srcNode.HasReference(refType, ua.NewExpandedNodeID(target), false),
		"forward reference missing on source")
	assert.True(t, targetNode.HasReference(refType, ua.NewExpandedNodeID(src), true),
		"inverse reference missing on target")
}

func TestAddReferenceSymmetry(t *testing.T) {
	s := newTestStore(t)
	a := ua.NewStringNodeID(1, "a")
	b := ua.NewStringNodeID(1, "b")
	_, _ = s.Insert(intVariable(a, 1))
	_, _ = s.Insert(intVariable(b, 2))

	organizes := ua.NewNumericNodeID(0, ua.IDOrganizes)
	require.Equal(t, ua.StatusGood, s.AddReference(a, organizes, ua.NewExpandedNodeID(b), true))
	referenceSymmetric(t, s, a, b, organizes)

	// Duplicate is rejected.
	assert.Equal(t, ua.StatusBadDuplicateReferenceNotAllowed,
		s.AddReference(a, organizes, ua.NewExpandedNodeID(b), true))

	// Self references are rejected.
	assert.Equal(t, ua.StatusBadInvalidSelfReference,
		s.AddReference(a, organizes, ua.NewExpandedNodeID(a), true))
}

func TestDeleteReferenceBidirectional(t *testing.T) {
	s := newTestStore(t)
	a := ua.NewStringNodeID(1, "a")
	b := ua.NewStringNodeID(1, "b")
	_, _ = s.Insert(intVariable(a, 1))
	_, _ = s.Insert(intVariable(b, 2))
	organizes := ua.NewNumericNodeID(0, ua.IDOrganizes)
	require.Equal(t, ua.StatusGood, s.AddReference(a, organizes, ua.NewExpandedNodeID(b), true))

	require.Equal(t, ua.StatusGood,
		s.DeleteReference(a, organizes, ua.NewExpandedNodeID(b), true, true))

	srcNode, _ := s.Get(a)
	targetNode, _ := s.Get(b)
	assert.False(t, srcNode.HasReference(organizes, ua.NewExpandedNodeID(b), false))
	assert.False(t, targetNode.HasReference(organizes, ua.NewExpandedNodeID(a), true))
}

func TestForEachChildSnapshot(t *testing.T) {
	s := newTestStore(t)
	parent := ua.NewStringNodeID(1, "parent")
	_, _ = s.Insert(intVariable(parent, 0))
	organizes := ua.NewNumericNodeID(0, ua.IDOrganizes)
	for _, name := range []string{"c1", "c2", "c3"} {
		id := ua.NewStringNodeID(1, name)
		_, _ = s.Insert(intVariable(id, 0))
		require.Equal(t, ua.StatusGood, s.AddReference(parent, organizes, ua.NewExpandedNodeID(id), true))
	}

	// Mutating inside the callback must not break the iteration.
	visited := 0
	status := s.ForEachChild(parent, func(ref Reference) bool {
		visited++
		if ref.Target.IsLocal() {
			_ = s.DeleteReference(parent, ref.ReferenceTypeID, ref.Target, !ref.IsInverse, true)
		}
		return true
	})
	require.Equal(t, ua.StatusGood, status)
	assert.Equal(t, 3, visited)
}

func TestIsSubtypeOf(t *testing.T) {
	s := newTestStore(t)
	refs := ua.NewNumericNodeID(0, ua.IDReferences)
	hier := ua.NewNumericNodeID(0, ua.IDHierarchicalReferences)
	organizes := ua.NewNumericNodeID(0, ua.IDOrganizes)
	hasChild := ua.NewNumericNodeID(0, ua.IDHasChild)

	assert.True(t, s.IsSubtypeOf(organizes, organizes), "reflexive")
	assert.True(t, s.IsSubtypeOf(organizes, hier))
	assert.True(t, s.IsSubtypeOf(organizes, refs), "transitive")
	assert.True(t, s.IsSubtypeOf(hasChild, hier))
	assert.False(t, s.IsSubtypeOf(hier, organizes), "not symmetric")
	assert.False(t, s.IsSubtypeOf(organizes, hasChild))

	// Memoized result stays correct on repeat.
	assert.True(t, s.IsSubtypeOf(organizes, refs))
}

func TestIsValueCompatible(t *testing.T) {
	s := newTestStore(t)
	// Data type scaffolding: BaseDataType <- Number <- Integer <- Int32.
	hasSubtype := ua.NewNumericNodeID(0, ua.IDHasSubtype)
	for _, dt := range []uint32{ua.IDBaseDataType, ua.IDNumber, ua.IDInteger, ua.IDInt32, ua.IDString} {
		_, status := s.Insert(&Node{
			ID:    ua.NewNumericNodeID(0, dt),
			Class: ua.NodeClassDataType,
		})
		require.Equal(t, ua.StatusGood, status)
	}
	require.Equal(t, ua.StatusGood, s.AddReference(ua.NewNumericNodeID(0, ua.IDBaseDataType), hasSubtype,
		ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDNumber)), true))
	require.Equal(t, ua.StatusGood, s.AddReference(ua.NewNumericNodeID(0, ua.IDNumber), hasSubtype,
		ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDInteger)), true))
	require.Equal(t, ua.StatusGood, s.AddReference(ua.NewNumericNodeID(0, ua.IDInteger), hasSubtype,
		ua.NewExpandedNodeID(ua.NewNumericNodeID(0, ua.IDInt32)), true))

	int32Type := ua.NewNumericNodeID(0, ua.IDInt32)
	numberType := ua.NewNumericNodeID(0, ua.IDNumber)
	baseType := ua.NewNumericNodeID(0, ua.IDBaseDataType)

	assert.True(t, s.IsValueCompatible(ua.NewVariant(int32(1)), int32Type, ua.ValueRankScalar, nil))
	assert.True(t, s.IsValueCompatible(ua.NewVariant(int32(1)), numberType, ua.ValueRankScalar, nil),
		"Int32 is a subtype of Number")
	assert.True(t, s.IsValueCompatible(ua.NewVariant("x"), baseType, ua.ValueRankScalar, nil),
		"BaseDataType accepts anything")
	assert.False(t, s.IsValueCompatible(ua.NewVariant("x"), int32Type, ua.ValueRankScalar, nil))
	assert.False(t, s.IsValueCompatible(ua.NewVariant([]int32{1}), int32Type, ua.ValueRankScalar, nil),
		"array against scalar rank")
	assert.False(t, s.IsValueCompatible(ua.NewVariant(int32(1)), int32Type, ua.ValueRankOneDimension, nil),
		"scalar against array rank")
	assert.True(t, s.IsValueCompatible(ua.NewVariant([]int32{1, 2}), int32Type, ua.ValueRankOneDimension, nil))
	assert.True(t, s.IsValueCompatible(ua.NullVariant(), int32Type, ua.ValueRankScalar, nil),
		"null clears the value")
}

func TestNamespaces(t *testing.T) {
	s := newTestStore(t)
	uris := s.NamespaceArray()
	require.Len(t, uris, 2)
	assert.Equal(t, "http://opcfoundation.org/UA/", uris[0])
	assert.Equal(t, "urn:test:server", uris[1])

	idx := s.AddNamespace("http://example.org/instruments/")
	assert.Equal(t, uint16(2), idx)
	assert.Equal(t, idx, s.AddNamespace("http://example.org/instruments/"), "re-registration is stable")
	assert.Len(t, s.NamespaceArray(), 3)
}
