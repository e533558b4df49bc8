package clock

import (
	"testing"

	"amulet.dev/core/replicaid"
)

func TestVClockGetSetRoundTrip(t *testing.T) {
	r := replicaid.New()
	vc := NewVClock()
	if got := vc.Get(r); got != 0 {
		t.Fatalf("Get on empty clock = %d, want 0", got)
	}
	vc = vc.Set(r, 7)
	if got := vc.Get(r); got != 7 {
		t.Fatalf("Get after Set = %d, want 7", got)
	}
}

func TestVClockSetDoesNotMutateReceiver(t *testing.T) {
	r := replicaid.New()
	vc := NewVClock()
	_ = vc.Set(r, 7)
	if got := vc.Get(r); got != 0 {
		t.Fatalf("original clock mutated: Get = %d, want 0", got)
	}
}

func TestMergeTakesPointwiseMax(t *testing.T) {
	a, b := replicaid.New(), replicaid.New()
	x := NewVClock().Set(a, 3).Set(b, 1)
	y := NewVClock().Set(a, 2).Set(b, 5)

	merged := Merge(x, y)
	if merged.Get(a) != 3 {
		t.Fatalf("merged.Get(a) = %d, want 3", merged.Get(a))
	}
	if merged.Get(b) != 5 {
		t.Fatalf("merged.Get(b) = %d, want 5", merged.Get(b))
	}
}

func TestCompareRelations(t *testing.T) {
	a, b := replicaid.New(), replicaid.New()
	base := NewVClock().Set(a, 1).Set(b, 1)

	if got := Compare(base, base); got != Equal {
		t.Fatalf("Compare(base, base) = %v, want Equal", got)
	}

	less := NewVClock().Set(a, 1).Set(b, 0)
	if got := Compare(less, base); got != Less {
		t.Fatalf("Compare(less, base) = %v, want Less", got)
	}
	if got := Compare(base, less); got != Greater {
		t.Fatalf("Compare(base, less) = %v, want Greater", got)
	}

	concurrent := NewVClock().Set(a, 2).Set(b, 0)
	if got := Compare(concurrent, base); got != Concurrent {
		t.Fatalf("Compare(concurrent, base) = %v, want Concurrent", got)
	}
}

func TestLessOrEqual(t *testing.T) {
	a := replicaid.New()
	small := NewVClock().Set(a, 1)
	big := NewVClock().Set(a, 2)
	if !LessOrEqual(small, big) {
		t.Fatalf("expected small <= big")
	}
	if LessOrEqual(big, small) {
		t.Fatalf("expected big > small")
	}
}

func TestSortedEntriesOrderedByReplicaBytes(t *testing.T) {
	ids := []replicaid.ID{replicaid.New(), replicaid.New(), replicaid.New()}
	vc := NewVClock()
	for i, id := range ids {
		vc = vc.Set(id, Lclock(i+1))
	}

	entries := vc.SortedEntries()
	if len(entries) != len(ids) {
		t.Fatalf("got %d entries, want %d", len(entries), len(ids))
	}
	for i := 1; i < len(entries); i++ {
		if replicaid.Compare(entries[i-1].Replica, entries[i].Replica) > 0 {
			t.Fatalf("entries not sorted at index %d", i)
		}
	}
}

func TestFromEntriesRoundTrip(t *testing.T) {
	r := replicaid.New()
	vc := NewVClock().Set(r, 9)
	rebuilt := FromEntries(vc.SortedEntries())
	if rebuilt.Get(r) != 9 {
		t.Fatalf("rebuilt.Get(r) = %d, want 9", rebuilt.Get(r))
	}
	if rebuilt.Len() != vc.Len() {
		t.Fatalf("Len mismatch: got %d, want %d", rebuilt.Len(), vc.Len())
	}
}
