package nodestore

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/opcuad/pkg/ua"
)

// indexRange is one parsed dimension of a NumericRange: [first, last]
// inclusive.
type indexRange struct {
	first, last uint32
}

// parseIndexRange parses the NumericRange syntax "a", "a:b", or a
// comma-separated list per dimension. Returns nil, false on malformed
// input (b <= a, empty fields, non-digits).
func parseIndexRange(s string) ([]indexRange, bool) {
	if s == "" {
		return nil, true
	}
	parts := strings.Split(s, ",")
	out := make([]indexRange, 0, len(parts))
	for _, part := range parts {
		bounds := strings.Split(part, ":")
		if len(bounds) > 2 {
			return nil, false
		}
		first, err := strconv.ParseUint(bounds[0], 10, 32)
		if err != nil {
			return nil, false
		}
		last := first
		if len(bounds) == 2 {
			last, err = strconv.ParseUint(bounds[1], 10, 32)
			if err != nil || last <= first {
				return nil, false
			}
		}
		out = append(out, indexRange{first: uint32(first), last: uint32(last)})
	}
	return out, true
}

// applyIndexRange slices an array variant by the first dimension of the
// range. Scalar string/bytestring values are ranged over their bytes, as
// the NumericRange rules allow.
func applyIndexRange(v ua.Variant, ranges []indexRange) (ua.Variant, ua.StatusCode) {
	if len(ranges) == 0 {
		return v, ua.StatusGood
	}
	r := ranges[0]

	if !v.IsArray {
		switch s := v.Value.(type) {
		case string:
			sub, status := sliceRange(len(s), r)
			if status != ua.StatusGood {
				return ua.Variant{}, status
			}
			return ua.NewVariant(s[sub.first : sub.last+1]), ua.StatusGood
		case []byte:
			sub, status := sliceRange(len(s), r)
			if status != ua.StatusGood {
				return ua.Variant{}, status
			}
			return ua.NewVariant(append([]byte(nil), s[sub.first:sub.last+1]...)), ua.StatusGood
		default:
			return ua.Variant{}, ua.StatusBadIndexRangeInvalid
		}
	}

	out := rangeSlice(v, r)
	if out.IsNull() {
		return ua.Variant{}, ua.StatusBadIndexRangeNoData
	}
	return out, ua.StatusGood
}

func sliceRange(length int, r indexRange) (indexRange, ua.StatusCode) {
	if int(r.first) >= length {
		return indexRange{}, ua.StatusBadIndexRangeNoData
	}
	last := r.last
	if int(last) >= length {
		last = uint32(length - 1)
	}
	return indexRange{first: r.first, last: last}, ua.StatusGood
}

func rangeSlice(v ua.Variant, r indexRange) ua.Variant {
	slice := func(length int) (int, int, bool) {
		sub, status := sliceRange(length, r)
		if status != ua.StatusGood {
			return 0, 0, false
		}
		return int(sub.first), int(sub.last) + 1, true
	}
	switch a := v.Value.(type) {
	case []bool:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]bool(nil), a[lo:hi]...))
		}
	case []int8:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]int8(nil), a[lo:hi]...))
		}
	case []int16:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]int16(nil), a[lo:hi]...))
		}
	case []uint16:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]uint16(nil), a[lo:hi]...))
		}
	case []int32:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]int32(nil), a[lo:hi]...))
		}
	case []uint32:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]uint32(nil), a[lo:hi]...))
		}
	case []int64:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]int64(nil), a[lo:hi]...))
		}
	case []uint64:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]uint64(nil), a[lo:hi]...))
		}
	case []float32:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]float32(nil), a[lo:hi]...))
		}
	case []float64:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]float64(nil), a[lo:hi]...))
		}
	case []string:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]string(nil), a[lo:hi]...))
		}
	case []time.Time:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]time.Time(nil), a[lo:hi]...))
		}
	case []uuid.UUID:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]uuid.UUID(nil), a[lo:hi]...))
		}
	case [][]byte:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([][]byte(nil), a[lo:hi]...))
		}
	case []ua.NodeID:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]ua.NodeID(nil), a[lo:hi]...))
		}
	case []ua.StatusCode:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]ua.StatusCode(nil), a[lo:hi]...))
		}
	case []ua.QualifiedName:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]ua.QualifiedName(nil), a[lo:hi]...))
		}
	case []ua.LocalizedText:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]ua.LocalizedText(nil), a[lo:hi]...))
		}
	case []ua.Variant:
		if lo, hi, ok := slice(len(a)); ok {
			return ua.NewVariant(append([]ua.Variant(nil), a[lo:hi]...))
		}
	}
	return ua.Variant{}
}
