package ua

import (
	"testing"

	"github.com/google/uuid"
)

func TestNodeIDEquality(t *testing.T) {
	a := NewNumericNodeID(1, 42)
	b := NewNumericNodeID(1, 42)
	if a != b {
		t.Error("identical numeric node ids must compare equal")
	}
	if NewNumericNodeID(1, 42) == NewNumericNodeID(2, 42) {
		t.Error("namespace must participate in equality")
	}
	if NewStringNodeID(0, "42") == NewNumericNodeID(0, 42) {
		t.Error("identifier type must participate in equality")
	}
}

func TestNodeIDAsMapKey(t *testing.T) {
	m := map[NodeID]int{}
	m[NewStringNodeID(1, "x")] = 1
	m[NewByteStringNodeID(1, []byte("x"))] = 2
	m[NewGUIDNodeID(1, uuid.Nil)] = 3
	if len(m) != 3 {
		t.Errorf("expected 3 distinct keys, got %d", len(m))
	}
	if m[NewStringNodeID(1, "x")] != 1 {
		t.Error("string key lookup failed")
	}
}

func TestNodeIDTotalOrder(t *testing.T) {
	// Namespace first, then identifier type, then content.
	ordered := []NodeID{
		NewNumericNodeID(0, 1),
		NewNumericNodeID(0, 2),
		NewStringNodeID(0, "a"),
		NewStringNodeID(0, "b"),
		NewNumericNodeID(1, 1),
	}
	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].Less(ordered[i+1]) {
			t.Errorf("expected %s < %s", ordered[i], ordered[i+1])
		}
		if ordered[i+1].Less(ordered[i]) {
			t.Errorf("order must be antisymmetric: %s, %s", ordered[i], ordered[i+1])
		}
	}
}

func TestNodeIDIsNull(t *testing.T) {
	if !(NodeID{}).IsNull() {
		t.Error("zero value must be null")
	}
	if NewNumericNodeID(0, 1).IsNull() {
		t.Error("i=1 is not null")
	}
	if NewNumericNodeID(1, 0).IsNull() {
		t.Error("ns=1;i=0 is not null")
	}
}

func TestNodeIDString(t *testing.T) {
	cases := map[string]NodeID{
		"i=2255":            NewNumericNodeID(0, 2255),
		"ns=1;s=the.answer": NewStringNodeID(1, "the.answer"),
	}
	for want, id := range cases {
		if got := id.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
