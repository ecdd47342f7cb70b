package bytesize

import "testing"

func TestParseByteSize(t *testing.T) {
	cases := []struct {
		in   string
		want ByteSize
	}{
		{"0", 0},
		{"65536", 65536},
		{"64KB", 64 * KB},
		{"64Ki", 64 * KiB},
		{"64KiB", 64 * KiB},
		{"16Mi", 16 * MiB},
		{"1GB", GB},
		{"1.5KiB", 1536},
		{" 8 kb ", 8 * KB},
	}
	for _, tc := range cases {
		got, err := ParseByteSize(tc.in)
		if err != nil {
			t.Errorf("ParseByteSize(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseByteSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseByteSizeInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "12XB", "KB"} {
		if _, err := ParseByteSize(in); err == nil {
			t.Errorf("ParseByteSize(%q): expected error", in)
		}
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	if err := b.UnmarshalText([]byte("64Ki")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != 64*KiB {
		t.Errorf("got %d", b)
	}
}

func TestString(t *testing.T) {
	cases := map[ByteSize]string{
		512:       "512B",
		64 * KiB:  "64.00KiB",
		16 * MiB:  "16.00MiB",
		2 * GiB:   "2.00GiB",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", uint64(in), got, want)
		}
	}
}
