package cid

import "testing"

func TestComputeDeterministic(t *testing.T) {
	data := []byte("amulet-core conformance")
	a, err := Compute(data)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := Compute(data)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if a != b {
		t.Fatalf("Compute not deterministic: %s vs %s", a, b)
	}
}

func TestComputeDiffersOnDifferentInput(t *testing.T) {
	a, err := Compute([]byte("one"))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := Compute([]byte("two"))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if a == b {
		t.Fatalf("distinct inputs produced the same CID")
	}
}

func TestFromBytesRoundTrip(t *testing.T) {
	id, err := Compute([]byte("round trip"))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	got, err := FromBytes(id.Bytes())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if got != id {
		t.Fatalf("got %s, want %s", got, id)
	}
}

func TestFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := FromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected an error for a short byte slice")
	}
}

func TestNilIsZeroValue(t *testing.T) {
	var id ID
	if !id.IsNil() {
		t.Fatalf("zero value should report IsNil")
	}
	if id != Nil {
		t.Fatalf("zero value should equal Nil")
	}
}

func TestStringIsStableAndNonEmpty(t *testing.T) {
	id, err := Compute([]byte("stringify me"))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	s1, s2 := id.String(), id.String()
	if s1 == "" {
		t.Fatalf("String returned empty string")
	}
	if s1 != s2 {
		t.Fatalf("String not stable: %q vs %q", s1, s2)
	}
}
