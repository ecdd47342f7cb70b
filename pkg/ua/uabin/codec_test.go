package uabin

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/opcuad/pkg/ua"
)

func TestReaderShortRead(t *testing.T) {
	r := NewReader([]byte{0x01})
	_ = r.ReadUint32()
	if r.Err() == nil {
		t.Fatal("expected short read error")
	}
	// Subsequent reads stay no-ops.
	if v := r.ReadUint8(); v != 0 {
		t.Errorf("expected 0 after error, got %d", v)
	}
}

func TestWriterStringNull(t *testing.T) {
	w := NewWriter(8)
	w.WriteString("")
	if w.Err() != nil {
		t.Fatalf("unexpected error: %v", w.Err())
	}
	// Null string is length -1.
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if !reflect.DeepEqual(w.Bytes(), want) {
		t.Errorf("expected %v, got %v", want, w.Bytes())
	}
}

func TestStringRoundTrip(t *testing.T) {
	w := NewWriter(32)
	w.WriteString("opc.tcp://localhost:4840")
	r := NewReader(w.Bytes())
	got := r.ReadString()
	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if got != "opc.tcp://localhost:4840" {
		t.Errorf("round trip mismatch: %q", got)
	}
}

func TestGUIDRoundTrip(t *testing.T) {
	g := uuid.MustParse("72962B91-FA75-4AE6-8D28-B404DC7DAF63")
	w := NewWriter(16)
	w.WriteGUID(g)
	if w.Len() != 16 {
		t.Fatalf("GUID must encode to 16 bytes, got %d", w.Len())
	}
	r := NewReader(w.Bytes())
	got := r.ReadGUID()
	if got != g {
		t.Errorf("round trip mismatch: %s != %s", got, g)
	}
}

func TestGUIDWireLayout(t *testing.T) {
	// Data1-3 are little-endian on the wire.
	g := uuid.MustParse("72962B91-FA75-4AE6-8D28-B404DC7DAF63")
	w := NewWriter(16)
	w.WriteGUID(g)
	b := w.Bytes()
	want := []byte{0x91, 0x2B, 0x96, 0x72, 0x75, 0xFA, 0xE6, 0x4A,
		0x8D, 0x28, 0xB4, 0x04, 0xDC, 0x7D, 0xAF, 0x63}
	if !reflect.DeepEqual(b, want) {
		t.Errorf("wire layout mismatch:\n got %X\nwant %X", b, want)
	}
}

func TestNodeIDEncodings(t *testing.T) {
	cases := []struct {
		name string
		id   ua.NodeID
		size int
	}{
		{"two byte", ua.NewNumericNodeID(0, 255), 2},
		{"four byte", ua.NewNumericNodeID(3, 1025), 4},
		{"numeric", ua.NewNumericNodeID(300, 70000), 7},
		{"string", ua.NewStringNodeID(1, "the.answer"), 1 + 2 + 4 + 10},
		{"guid", ua.NewGUIDNodeID(2, uuid.MustParse("72962B91-FA75-4AE6-8D28-B404DC7DAF63")), 1 + 2 + 16},
		{"bytestring", ua.NewByteStringNodeID(1, []byte{0xDE, 0xAD}), 1 + 2 + 4 + 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWriter(32)
			w.WriteNodeID(tc.id)
			if w.Err() != nil {
				t.Fatalf("encode: %v", w.Err())
			}
			if w.Len() != tc.size {
				t.Errorf("expected %d bytes, got %d", tc.size, w.Len())
			}
			r := NewReader(w.Bytes())
			got := r.ReadNodeID()
			if r.Err() != nil {
				t.Fatalf("decode: %v", r.Err())
			}
			if got != tc.id {
				t.Errorf("round trip mismatch: %s != %s", got, tc.id)
			}
		})
	}
}

func TestExpandedNodeIDRoundTrip(t *testing.T) {
	e := ua.ExpandedNodeID{
		NodeID:       ua.NewNumericNodeID(0, 2253),
		NamespaceURI: "http://example.org/UA/",
		ServerIndex:  3,
	}
	w := NewWriter(64)
	w.WriteExpandedNodeID(e)
	if w.Err() != nil {
		t.Fatalf("encode: %v", w.Err())
	}
	r := NewReader(w.Bytes())
	got := r.ReadExpandedNodeID()
	if r.Err() != nil {
		t.Fatalf("decode: %v", r.Err())
	}
	if !reflect.DeepEqual(got, e) {
		t.Errorf("round trip mismatch: %+v != %+v", got, e)
	}
}

func TestLocalizedTextRoundTrip(t *testing.T) {
	cases := []ua.LocalizedText{
		{},
		{Text: "hello"},
		{Locale: "en-US", Text: "hello"},
	}
	for _, lt := range cases {
		w := NewWriter(32)
		w.WriteLocalizedText(lt)
		r := NewReader(w.Bytes())
		got := r.ReadLocalizedText()
		if r.Err() != nil {
			t.Fatalf("decode: %v", r.Err())
		}
		if got != lt {
			t.Errorf("round trip mismatch: %+v != %+v", got, lt)
		}
	}
}

func TestDateTimeRoundTrip(t *testing.T) {
	orig := time.Date(2024, 6, 1, 12, 30, 45, 123456700, time.UTC)
	w := NewWriter(8)
	w.WriteDateTime(orig)
	r := NewReader(w.Bytes())
	got := r.ReadDateTime()
	if !got.Equal(orig) {
		t.Errorf("round trip mismatch: %s != %s", got, orig)
	}
}

func TestDateTimeZero(t *testing.T) {
	w := NewWriter(8)
	w.WriteDateTime(time.Time{})
	r := NewReader(w.Bytes())
	got := r.ReadDateTime()
	if !got.IsZero() {
		t.Errorf("zero time must survive the round trip, got %s", got)
	}
}

func variantRoundTrip(t *testing.T, v ua.Variant) {
	t.Helper()
	w := NewWriter(64)
	w.WriteVariant(v)
	if w.Err() != nil {
		t.Fatalf("encode %+v: %v", v, w.Err())
	}
	r := NewReader(w.Bytes())
	got := r.ReadVariant()
	if r.Err() != nil {
		t.Fatalf("decode %+v: %v", v, r.Err())
	}
	if !reflect.DeepEqual(got, v) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, v)
	}
	if r.Remaining() != 0 {
		t.Errorf("trailing bytes after decode: %d", r.Remaining())
	}
}

func TestVariantScalarRoundTrip(t *testing.T) {
	values := []any{
		true,
		int8(-5),
		byte(200),
		int16(-1000),
		uint16(50000),
		int32(-123456),
		uint32(4000000000),
		int64(-9e15),
		uint64(1 << 60),
		float32(3.25),
		float64(-2.5e10),
		"hello world",
		uuid.MustParse("72962B91-FA75-4AE6-8D28-B404DC7DAF63"),
		[]byte{1, 2, 3},
		ua.NewNumericNodeID(1, 42),
		ua.StatusCode(0x80340000),
		ua.NewQualifiedName(1, "the.answer"),
		ua.LocalizedText{Locale: "en", Text: "answer"},
	}
	for _, value := range values {
		variantRoundTrip(t, ua.NewVariant(value))
	}
}

func TestVariantArrayRoundTrip(t *testing.T) {
	values := []any{
		[]bool{true, false},
		[]int32{1, 2, 3},
		[]uint32{7, 8},
		[]float64{1.5, -0.5},
		[]string{"http://opcfoundation.org/UA/", "urn:opcuad:server"},
		[]ua.StatusCode{ua.StatusGood, ua.StatusBadNodeIDUnknown},
		[]ua.NodeID{ua.NewNumericNodeID(0, 85), ua.NewStringNodeID(1, "x")},
		[]ua.Variant{ua.NewVariant(int32(1)), ua.NewVariant("two")},
	}
	for _, value := range values {
		variantRoundTrip(t, ua.NewVariant(value))
	}
}

func TestVariantMultiDimensional(t *testing.T) {
	v := ua.NewVariant([]int32{1, 2, 3, 4, 5, 6})
	v.ArrayDimensions = []uint32{2, 3}
	variantRoundTrip(t, v)
}

func TestVariantNull(t *testing.T) {
	variantRoundTrip(t, ua.NullVariant())
}

func TestDataValueRoundTrip(t *testing.T) {
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := []ua.DataValue{
		{},
		ua.NewDataValue(ua.NewVariant(int32(42))),
		ua.NewDataValueStatus(ua.StatusBadNodeIDUnknown),
		ua.NewDataValue(ua.NewVariant("v")).WithSourceTimestamp(ts).WithServerTimestamp(ts),
		{
			Value: ua.NewVariant(3.14), HasValue: true,
			Status: ua.StatusGood, HasStatus: true,
			SourcePicoseconds: 10, HasSourcePicoseconds: true,
		},
	}
	for _, dv := range cases {
		w := NewWriter(64)
		w.WriteDataValue(dv)
		if w.Err() != nil {
			t.Fatalf("encode: %v", w.Err())
		}
		r := NewReader(w.Bytes())
		got := r.ReadDataValue()
		if r.Err() != nil {
			t.Fatalf("decode: %v", r.Err())
		}
		if !reflect.DeepEqual(got, dv) {
			t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, dv)
		}
	}
}

func TestDiagnosticInfoRoundTrip(t *testing.T) {
	d := &ua.DiagnosticInfo{
		SymbolicID: 4, HasSymbolicID: true,
		AdditionalInfo: "extra", HasAdditionalInfo: true,
		InnerStatusCode: ua.StatusBadInternalError, HasInnerStatusCode: true,
		InnerDiagnosticInfo: &ua.DiagnosticInfo{Locale: 2, HasLocale: true},
		HasInnerDiagnosticInfo: true,
	}
	w := NewWriter(64)
	w.WriteDiagnosticInfo(d)
	r := NewReader(w.Bytes())
	got := r.ReadDiagnosticInfo()
	if r.Err() != nil {
		t.Fatalf("decode: %v", r.Err())
	}
	if !reflect.DeepEqual(got, d) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, d)
	}
}

func TestExtensionObjectRoundTrip(t *testing.T) {
	ext := NewExtensionObject(ua.IDDataChangeFilterEncoding, &ua.DataChangeFilter{
		Trigger:      ua.TriggerStatusValueTimestamp,
		DeadbandType: 1,
		DeadbandValue: 0.5,
	})
	w := NewWriter(64)
	w.WriteExtensionObject(ext)
	if w.Err() != nil {
		t.Fatalf("encode: %v", w.Err())
	}
	r := NewReader(w.Bytes())
	got := r.ReadExtensionObject()
	if r.Err() != nil {
		t.Fatalf("decode: %v", r.Err())
	}
	decoded, ok := got.Decoded.(*ua.DataChangeFilter)
	if !ok {
		t.Fatalf("expected decoded DataChangeFilter, got %T", got.Decoded)
	}
	if decoded.Trigger != ua.TriggerStatusValueTimestamp || decoded.DeadbandValue != 0.5 {
		t.Errorf("decoded filter mismatch: %+v", decoded)
	}
}

func TestExtensionObjectNil(t *testing.T) {
	w := NewWriter(8)
	w.WriteExtensionObject(nil)
	r := NewReader(w.Bytes())
	got := r.ReadExtensionObject()
	if r.Err() != nil {
		t.Fatalf("decode: %v", r.Err())
	}
	if got != nil {
		t.Errorf("expected nil extension object, got %+v", got)
	}
}
