package uabin

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/opcuad/pkg/ua"
)

// Variant encoding mask bits. Bits 0-5 carry the built-in type id.
const (
	variantTypeMask       = 0x3F
	variantArrayDimsFlag  = 0x40
	variantArrayValueFlag = 0x80
)

// WriteVariant appends a Variant.
func (w *Writer) WriteVariant(v ua.Variant) {
	if v.IsNull() {
		w.WriteUint8(0)
		return
	}
	mask := byte(v.Type) & variantTypeMask
	if v.IsArray {
		mask |= variantArrayValueFlag
		if len(v.ArrayDimensions) > 0 {
			mask |= variantArrayDimsFlag
		}
	}
	w.WriteUint8(mask)
	if !v.IsArray {
		w.writeVariantScalar(v.Type, v.Value)
		return
	}
	w.writeVariantArray(v)
	if len(v.ArrayDimensions) > 0 {
		w.WriteArrayLength(len(v.ArrayDimensions))
		for _, d := range v.ArrayDimensions {
			w.WriteUint32(d)
		}
	}
}

func (w *Writer) writeVariantScalar(t ua.TypeID, value any) {
	switch t {
	case ua.TypeBoolean:
		w.WriteBool(value.(bool))
	case ua.TypeSByte:
		w.WriteInt8(value.(int8))
	case ua.TypeByte:
		w.WriteUint8(value.(byte))
	case ua.TypeInt16:
		w.WriteInt16(value.(int16))
	case ua.TypeUInt16:
		w.WriteUint16(value.(uint16))
	case ua.TypeInt32:
		w.WriteInt32(value.(int32))
	case ua.TypeUInt32:
		w.WriteUint32(value.(uint32))
	case ua.TypeInt64:
		w.WriteInt64(value.(int64))
	case ua.TypeUInt64:
		w.WriteUint64(value.(uint64))
	case ua.TypeFloat:
		w.WriteFloat32(value.(float32))
	case ua.TypeDouble:
		w.WriteFloat64(value.(float64))
	case ua.TypeString, ua.TypeXMLElement:
		w.WriteString(value.(string))
	case ua.TypeDateTime:
		w.WriteDateTime(value.(time.Time))
	case ua.TypeGUID:
		w.WriteGUID(value.(uuid.UUID))
	case ua.TypeByteString:
		w.WriteByteString(value.([]byte))
	case ua.TypeNodeID:
		w.WriteNodeID(value.(ua.NodeID))
	case ua.TypeExpandedNodeID:
		w.WriteExpandedNodeID(value.(ua.ExpandedNodeID))
	case ua.TypeStatusCode:
		w.WriteStatusCode(value.(ua.StatusCode))
	case ua.TypeQualifiedName:
		w.WriteQualifiedName(value.(ua.QualifiedName))
	case ua.TypeLocalizedText:
		w.WriteLocalizedText(value.(ua.LocalizedText))
	case ua.TypeExtensionObject:
		w.WriteExtensionObject(value.(*ua.ExtensionObject))
	case ua.TypeDataValue:
		w.WriteDataValue(*value.(*ua.DataValue))
	default:
		w.SetError(fmt.Errorf("%w: variant scalar type %d", ErrInvalidValue, t))
	}
}

func (w *Writer) writeVariantArray(v ua.Variant) {
	switch a := v.Value.(type) {
	case []bool:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteBool(e)
		}
	case []int8:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteInt8(e)
		}
	case []int16:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteInt16(e)
		}
	case []uint16:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteUint16(e)
		}
	case []int32:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteInt32(e)
		}
	case []uint32:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteUint32(e)
		}
	case []int64:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteInt64(e)
		}
	case []uint64:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteUint64(e)
		}
	case []float32:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteFloat32(e)
		}
	case []float64:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteFloat64(e)
		}
	case []string:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteString(e)
		}
	case []time.Time:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteDateTime(e)
		}
	case []uuid.UUID:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteGUID(e)
		}
	case [][]byte:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteByteString(e)
		}
	case []ua.NodeID:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteNodeID(e)
		}
	case []ua.ExpandedNodeID:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteExpandedNodeID(e)
		}
	case []ua.StatusCode:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteStatusCode(e)
		}
	case []ua.QualifiedName:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteQualifiedName(e)
		}
	case []ua.LocalizedText:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteLocalizedText(e)
		}
	case []*ua.ExtensionObject:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteExtensionObject(e)
		}
	case []ua.Variant:
		w.WriteArrayLength(len(a))
		for _, e := range a {
			w.WriteVariant(e)
		}
	default:
		w.SetError(fmt.Errorf("%w: variant array type %T", ErrInvalidValue, v.Value))
	}
}

// ReadVariant reads a Variant.
func (r *Reader) ReadVariant() ua.Variant {
	mask := r.ReadUint8()
	if r.err != nil || mask == 0 {
		return ua.Variant{}
	}
	t := ua.TypeID(mask & variantTypeMask)
	if mask&variantArrayValueFlag == 0 {
		return ua.Variant{Type: t, Value: r.readVariantScalar(t)}
	}
	v := ua.Variant{Type: t, IsArray: true, Value: r.readVariantArray(t)}
	if mask&variantArrayDimsFlag != 0 {
		n := r.ReadArrayLength()
		if n > 0 {
			dims := make([]uint32, n)
			for i := range dims {
				dims[i] = r.ReadUint32()
			}
			v.ArrayDimensions = dims
		}
	}
	return v
}

func (r *Reader) readVariantScalar(t ua.TypeID) any {
	switch t {
	case ua.TypeBoolean:
		return r.ReadBool()
	case ua.TypeSByte:
		return r.ReadInt8()
	case ua.TypeByte:
		return r.ReadUint8()
	case ua.TypeInt16:
		return r.ReadInt16()
	case ua.TypeUInt16:
		return r.ReadUint16()
	case ua.TypeInt32:
		return r.ReadInt32()
	case ua.TypeUInt32:
		return r.ReadUint32()
	case ua.TypeInt64:
		return r.ReadInt64()
	case ua.TypeUInt64:
		return r.ReadUint64()
	case ua.TypeFloat:
		return r.ReadFloat32()
	case ua.TypeDouble:
		return r.ReadFloat64()
	case ua.TypeString, ua.TypeXMLElement:
		return r.ReadString()
	case ua.TypeDateTime:
		return r.ReadDateTime()
	case ua.TypeGUID:
		return r.ReadGUID()
	case ua.TypeByteString:
		return r.ReadByteString()
	case ua.TypeNodeID:
		return r.ReadNodeID()
	case ua.TypeExpandedNodeID:
		return r.ReadExpandedNodeID()
	case ua.TypeStatusCode:
		return r.ReadStatusCode()
	case ua.TypeQualifiedName:
		return r.ReadQualifiedName()
	case ua.TypeLocalizedText:
		return r.ReadLocalizedText()
	case ua.TypeExtensionObject:
		return r.ReadExtensionObject()
	case ua.TypeDataValue:
		d := r.ReadDataValue()
		return &d
	default:
		r.SetError(fmt.Errorf("%w: variant scalar type %d", ErrInvalidValue, t))
		return nil
	}
}

func (r *Reader) readVariantArray(t ua.TypeID) any {
	n := r.ReadArrayLength()
	if r.err != nil || n < 0 {
		return nil
	}
	switch t {
	case ua.TypeBoolean:
		a := make([]bool, n)
		for i := range a {
			a[i] = r.ReadBool()
		}
		return a
	case ua.TypeSByte:
		a := make([]int8, n)
		for i := range a {
			a[i] = r.ReadInt8()
		}
		return a
	case ua.TypeInt16:
		a := make([]int16, n)
		for i := range a {
			a[i] = r.ReadInt16()
		}
		return a
	case ua.TypeUInt16:
		a := make([]uint16, n)
		for i := range a {
			a[i] = r.ReadUint16()
		}
		return a
	case ua.TypeInt32:
		a := make([]int32, n)
		for i := range a {
			a[i] = r.ReadInt32()
		}
		return a
	case ua.TypeUInt32:
		a := make([]uint32, n)
		for i := range a {
			a[i] = r.ReadUint32()
		}
		return a
	case ua.TypeInt64:
		a := make([]int64, n)
		for i := range a {
			a[i] = r.ReadInt64()
		}
		return a
	case ua.TypeUInt64:
		a := make([]uint64, n)
		for i := range a {
			a[i] = r.ReadUint64()
		}
		return a
	case ua.TypeFloat:
		a := make([]float32, n)
		for i := range a {
			a[i] = r.ReadFloat32()
		}
		return a
	case ua.TypeDouble:
		a := make([]float64, n)
		for i := range a {
			a[i] = r.ReadFloat64()
		}
		return a
	case ua.TypeString, ua.TypeXMLElement:
		a := make([]string, n)
		for i := range a {
			a[i] = r.ReadString()
		}
		return a
	case ua.TypeDateTime:
		a := make([]time.Time, n)
		for i := range a {
			a[i] = r.ReadDateTime()
		}
		return a
	case ua.TypeGUID:
		a := make([]uuid.UUID, n)
		for i := range a {
			a[i] = r.ReadGUID()
		}
		return a
	case ua.TypeByteString:
		a := make([][]byte, n)
		for i := range a {
			a[i] = r.ReadByteString()
		}
		return a
	case ua.TypeNodeID:
		a := make([]ua.NodeID, n)
		for i := range a {
			a[i] = r.ReadNodeID()
		}
		return a
	case ua.TypeExpandedNodeID:
		a := make([]ua.ExpandedNodeID, n)
		for i := range a {
			a[i] = r.ReadExpandedNodeID()
		}
		return a
	case ua.TypeStatusCode:
		a := make([]ua.StatusCode, n)
		for i := range a {
			a[i] = r.ReadStatusCode()
		}
		return a
	case ua.TypeQualifiedName:
		a := make([]ua.QualifiedName, n)
		for i := range a {
			a[i] = r.ReadQualifiedName()
		}
		return a
	case ua.TypeLocalizedText:
		a := make([]ua.LocalizedText, n)
		for i := range a {
			a[i] = r.ReadLocalizedText()
		}
		return a
	case ua.TypeExtensionObject:
		a := make([]*ua.ExtensionObject, n)
		for i := range a {
			a[i] = r.ReadExtensionObject()
		}
		return a
	case ua.TypeVariant:
		a := make([]ua.Variant, n)
		for i := range a {
			a[i] = r.ReadVariant()
		}
		return a
	default:
		r.SetError(fmt.Errorf("%w: variant array type %d", ErrInvalidValue, t))
		return nil
	}
}
