package rights

import "testing"

func TestCanonicaliseImpliesRead(t *testing.T) {
	cases := []Mask{Write, Delegate, Issue, Revoke}
	for _, m := range cases {
		if got := Canonicalise(m); got&Read == 0 {
			t.Fatalf("Canonicalise(%d) = %d, expected READ bit set", m, got)
		}
	}
}

func TestCanonicaliseLeavesBareReadAlone(t *testing.T) {
	if got := Canonicalise(Read); got != Read {
		t.Fatalf("Canonicalise(Read) = %d, want %d", got, Read)
	}
	if got := Canonicalise(0); got != 0 {
		t.Fatalf("Canonicalise(0) = %d, want 0", got)
	}
}

func TestCanonicaliseIdempotent(t *testing.T) {
	m := Write | Issue
	once := Canonicalise(m)
	twice := Canonicalise(once)
	if once != twice {
		t.Fatalf("Canonicalise not idempotent: %d vs %d", once, twice)
	}
}

func TestSufficient(t *testing.T) {
	if !Sufficient(Write, Read) {
		t.Fatalf("WRITE should imply sufficient for READ")
	}
	if Sufficient(Read, Write) {
		t.Fatalf("READ should not be sufficient for WRITE")
	}
	if !Sufficient(Write|Delegate, Write) {
		t.Fatalf("WRITE|DELEGATE should be sufficient for WRITE")
	}
}

func TestDelegationAdmissible(t *testing.T) {
	if DelegationAdmissible(Write, Read) {
		t.Fatalf("a parent without DELEGATE must not be able to delegate anything")
	}
	if !DelegationAdmissible(Delegate|Write, Read) {
		t.Fatalf("DELEGATE|WRITE parent should be able to delegate READ (implied)")
	}
	if DelegationAdmissible(Delegate, Write) {
		t.Fatalf("a parent without WRITE must not be able to delegate WRITE")
	}
	if !DelegationAdmissible(Delegate|Write, Write) {
		t.Fatalf("DELEGATE|WRITE parent should be able to delegate WRITE")
	}
}
