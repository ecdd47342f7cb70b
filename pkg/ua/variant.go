package ua

import (
	"time"

	"github.com/google/uuid"
)

// Variant is a dynamically typed value: a built-in type tag plus either a
// scalar or a (possibly multi-dimensional) array.
//
// Scalars map to the obvious Go types (Boolean→bool, Int32→int32,
// String→string, DateTime→time.Time, Guid→uuid.UUID, ByteString→[]byte,
// NodeId→NodeID, ...). Arrays are the corresponding slice types
// ([]int32, []string, []Variant, ...). A null variant has Type==TypeNull
// and a nil Value.
type Variant struct {
	Type    TypeID
	IsArray bool
	Value   any
	// ArrayDimensions is non-nil only for multi-dimensional arrays; the
	// flat Value slice is laid out row-major.
	ArrayDimensions []uint32
}

// NullVariant is the empty variant.
func NullVariant() Variant {
	return Variant{}
}

// IsNull reports whether the variant carries no value.
func (v Variant) IsNull() bool {
	return v.Type == TypeNull || v.Value == nil
}

// NewVariant builds a scalar or array variant from a Go value, inferring
// the built-in type tag. Unknown types yield a null variant; callers that
// construct variants from external input should check IsNull afterwards.
func NewVariant(value any) Variant {
	switch value.(type) {
	case nil:
		return Variant{}
	case bool:
		return Variant{Type: TypeBoolean, Value: value}
	case int8:
		return Variant{Type: TypeSByte, Value: value}
	case byte:
		return Variant{Type: TypeByte, Value: value}
	case int16:
		return Variant{Type: TypeInt16, Value: value}
	case uint16:
		return Variant{Type: TypeUInt16, Value: value}
	case int32:
		return Variant{Type: TypeInt32, Value: value}
	case uint32:
		return Variant{Type: TypeUInt32, Value: value}
	case int64:
		return Variant{Type: TypeInt64, Value: value}
	case uint64:
		return Variant{Type: TypeUInt64, Value: value}
	case float32:
		return Variant{Type: TypeFloat, Value: value}
	case float64:
		return Variant{Type: TypeDouble, Value: value}
	case string:
		return Variant{Type: TypeString, Value: value}
	case time.Time:
		return Variant{Type: TypeDateTime, Value: value}
	case uuid.UUID:
		return Variant{Type: TypeGUID, Value: value}
	case []byte:
		return Variant{Type: TypeByteString, Value: value}
	case NodeID:
		return Variant{Type: TypeNodeID, Value: value}
	case ExpandedNodeID:
		return Variant{Type: TypeExpandedNodeID, Value: value}
	case StatusCode:
		return Variant{Type: TypeStatusCode, Value: value}
	case QualifiedName:
		return Variant{Type: TypeQualifiedName, Value: value}
	case LocalizedText:
		return Variant{Type: TypeLocalizedText, Value: value}
	case *ExtensionObject:
		return Variant{Type: TypeExtensionObject, Value: value}
	case *DataValue:
		return Variant{Type: TypeDataValue, Value: value}

	case []bool:
		return Variant{Type: TypeBoolean, IsArray: true, Value: value}
	case []int8:
		return Variant{Type: TypeSByte, IsArray: true, Value: value}
	case []int16:
		return Variant{Type: TypeInt16, IsArray: true, Value: value}
	case []uint16:
		return Variant{Type: TypeUInt16, IsArray: true, Value: value}
	case []int32:
		return Variant{Type: TypeInt32, IsArray: true, Value: value}
	case []uint32:
		return Variant{Type: TypeUInt32, IsArray: true, Value: value}
	case []int64:
		return Variant{Type: TypeInt64, IsArray: true, Value: value}
	case []uint64:
		return Variant{Type: TypeUInt64, IsArray: true, Value: value}
	case []float32:
		return Variant{Type: TypeFloat, IsArray: true, Value: value}
	case []float64:
		return Variant{Type: TypeDouble, IsArray: true, Value: value}
	case []string:
		return Variant{Type: TypeString, IsArray: true, Value: value}
	case []time.Time:
		return Variant{Type: TypeDateTime, IsArray: true, Value: value}
	case []uuid.UUID:
		return Variant{Type: TypeGUID, IsArray: true, Value: value}
	case [][]byte:
		return Variant{Type: TypeByteString, IsArray: true, Value: value}
	case []NodeID:
		return Variant{Type: TypeNodeID, IsArray: true, Value: value}
	case []ExpandedNodeID:
		return Variant{Type: TypeExpandedNodeID, IsArray: true, Value: value}
	case []StatusCode:
		return Variant{Type: TypeStatusCode, IsArray: true, Value: value}
	case []QualifiedName:
		return Variant{Type: TypeQualifiedName, IsArray: true, Value: value}
	case []LocalizedText:
		return Variant{Type: TypeLocalizedText, IsArray: true, Value: value}
	case []*ExtensionObject:
		return Variant{Type: TypeExtensionObject, IsArray: true, Value: value}
	case []Variant:
		return Variant{Type: TypeVariant, IsArray: true, Value: value}
	default:
		return Variant{}
	}
}

// ArrayLength returns the element count of an array variant, or -1 for
// scalars and null.
func (v Variant) ArrayLength() int {
	if !v.IsArray {
		return -1
	}
	switch a := v.Value.(type) {
	case []bool:
		return len(a)
	case []int8:
		return len(a)
	case []int16:
		return len(a)
	case []uint16:
		return len(a)
	case []int32:
		return len(a)
	case []uint32:
		return len(a)
	case []int64:
		return len(a)
	case []uint64:
		return len(a)
	case []float32:
		return len(a)
	case []float64:
		return len(a)
	case []string:
		return len(a)
	case []time.Time:
		return len(a)
	case []uuid.UUID:
		return len(a)
	case [][]byte:
		return len(a)
	case []NodeID:
		return len(a)
	case []ExpandedNodeID:
		return len(a)
	case []StatusCode:
		return len(a)
	case []QualifiedName:
		return len(a)
	case []LocalizedText:
		return len(a)
	case []*ExtensionObject:
		return len(a)
	case []Variant:
		return len(a)
	}
	return 0
}

// TypeNodeID returns the NodeId of the variant's built-in data type.
func (v Variant) TypeNodeID() NodeID {
	if v.Type == TypeNull {
		return NodeID{}
	}
	return NewNumericNodeID(0, uint32(v.Type))
}

// Bool returns the scalar boolean value, false if not a boolean.
func (v Variant) Bool() bool {
	b, _ := v.Value.(bool)
	return b
}

// Int32 returns the scalar int32 value, 0 if not an Int32.
func (v Variant) Int32() int32 {
	i, _ := v.Value.(int32)
	return i
}

// Uint32 returns the scalar uint32 value, 0 if not a UInt32.
func (v Variant) Uint32() uint32 {
	u, _ := v.Value.(uint32)
	return u
}

// Float64 returns the scalar double value, 0 if not a Double.
func (v Variant) Float64() float64 {
	f, _ := v.Value.(float64)
	return f
}

// Str returns the scalar string value, "" if not a String.
func (v Variant) Str() string {
	s, _ := v.Value.(string)
	return s
}

// Strings returns the string array value, nil if not a String array.
func (v Variant) Strings() []string {
	s, _ := v.Value.([]string)
	return s
}
