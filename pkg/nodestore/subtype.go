package nodestore

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/marmos91/opcuad/pkg/ua"
)

// subtypeCacheSize bounds the memoized subtype relation. Browse with
// include-subtypes and every typed Value write consult it, so the working
// set is small but hot.
const subtypeCacheSize = 4096

type subtypeKey struct {
	sub, super ua.NodeID
}

// subtypeCache memoizes IsSubtypeOf results. Any mutation of the address
// space purges it wholesale; the type hierarchy changes rarely enough that
// finer invalidation is not worth tracking.
type subtypeCache struct {
	cache *lru.Cache[subtypeKey, bool]
}

func newSubtypeCache() *subtypeCache {
	cache, err := lru.New[subtypeKey, bool](subtypeCacheSize)
	if err != nil {
		// Only fails for non-positive sizes.
		panic(err)
	}
	return &subtypeCache{cache: cache}
}

func (c *subtypeCache) purge() {
	c.cache.Purge()
}

// IsSubtypeOf reports whether sub equals super or is reachable from super
// by following HasSubtype references downward (equivalently: walking
// inverse HasSubtype from sub toward the root).
func (s *Store) IsSubtypeOf(sub, super ua.NodeID) bool {
	if sub == super {
		return true
	}
	key := subtypeKey{sub: sub, super: super}
	if v, ok := s.subtypes.cache.Get(key); ok {
		return v
	}

	s.mu.RLock()
	result := s.isSubtypeOfLocked(sub, super, make(map[ua.NodeID]bool))
	s.mu.RUnlock()

	s.subtypes.cache.Add(key, result)
	return result
}

func (s *Store) isSubtypeOfLocked(sub, super ua.NodeID, visited map[ua.NodeID]bool) bool {
	if sub == super {
		return true
	}
	if visited[sub] {
		return false
	}
	visited[sub] = true

	node, status := s.getLocked(sub)
	if status != ua.StatusGood {
		return false
	}
	hasSubtype := ua.NewNumericNodeID(0, ua.IDHasSubtype)
	for _, ref := range node.References {
		// Walk toward the supertype: inverse HasSubtype edges.
		if !ref.IsInverse || ref.ReferenceTypeID != hasSubtype || !ref.Target.IsLocal() {
			continue
		}
		if s.isSubtypeOfLocked(ref.Target.NodeID, super, visited) {
			return true
		}
	}
	return false
}

// IsValueCompatible checks a variant against a Variable's declared
// DataType, ValueRank and ArrayDimensions. Null variants are accepted
// (clearing a value is always type-correct).
func (s *Store) IsValueCompatible(value ua.Variant, dataType ua.NodeID, valueRank int32, arrayDims []uint32) bool {
	if value.IsNull() {
		return true
	}

	// The value's built-in type must equal or subtype the declared type.
	// BaseDataType accepts anything.
	base := ua.NewNumericNodeID(0, ua.IDBaseDataType)
	if dataType != base && !s.IsSubtypeOf(value.TypeNodeID(), dataType) {
		return false
	}

	// Rank compatibility.
	switch {
	case valueRank == ua.ValueRankScalar:
		if value.IsArray {
			return false
		}
	case valueRank == ua.ValueRankScalarOrOneDimension:
		if value.IsArray && len(value.ArrayDimensions) > 1 {
			return false
		}
	case valueRank == ua.ValueRankAny:
		// anything goes
	case valueRank == ua.ValueRankOneOrMoreDimensions:
		if !value.IsArray {
			return false
		}
	case valueRank >= ua.ValueRankOneDimension:
		if !value.IsArray {
			return false
		}
		dims := len(value.ArrayDimensions)
		if dims == 0 {
			dims = 1
		}
		if int32(dims) != valueRank {
			return false
		}
	}

	// Dimension compatibility: a declared dimension of 0 means unbounded.
	if len(arrayDims) > 0 && value.IsArray {
		valueDims := value.ArrayDimensions
		if valueDims == nil {
			valueDims = []uint32{uint32(value.ArrayLength())}
		}
		if len(valueDims) != len(arrayDims) {
			return false
		}
		for i, d := range arrayDims {
			if d != 0 && valueDims[i] > d {
				return false
			}
		}
	}
	return true
}
