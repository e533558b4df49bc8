package clock

import (
	"sort"

	"amulet.dev/core/replicaid"
)

// VClock maps a ReplicaID to its Lamport counter. A missing entry is
// interpreted as zero (spec §3). The zero value is an empty, valid clock.
type VClock struct {
	entries map[replicaid.ID]Lclock
}

// NewVClock returns an empty vector clock.
func NewVClock() VClock {
	return VClock{entries: make(map[replicaid.ID]Lclock)}
}

// Get returns the counter for r, or 0 if absent.
func (vc VClock) Get(r replicaid.ID) Lclock {
	if vc.entries == nil {
		return 0
	}
	return vc.entries[r]
}

// Set assigns the counter for r. Returns a VClock with the entry set; safe
// to call on the zero value.
func (vc VClock) Set(r replicaid.ID, t Lclock) VClock {
	out := vc.clone()
	out.entries[r] = t
	return out
}

// Clone returns an independent copy.
func (vc VClock) Clone() VClock {
	return vc.clone()
}

func (vc VClock) clone() VClock {
	out := NewVClock()
	for k, v := range vc.entries {
		out.entries[k] = v
	}
	return out
}

// Len returns the number of tracked replicas.
func (vc VClock) Len() int {
	return len(vc.entries)
}

// Merge returns the pointwise maximum of vc and other (spec §4.4): for
// every (r, t) in other, result[r] = max(vc.Get(r), t); entries absent from
// other are retained from vc.
func Merge(vc, other VClock) VClock {
	out := vc.clone()
	for r, t := range other.entries {
		if t > out.entries[r] {
			out.entries[r] = t
		}
	}
	return out
}

// Compare reports the partial order: Equal if the clocks match on every
// key, Less if vc <= other and they differ, Greater if vc >= other and they
// differ, and Concurrent if neither is <= the other.
//
// Most callers want the boolean helpers below; Compare exists for callers
// that want the full relation in one pass.
func Compare(vc, other VClock) Relation {
	vcLE, otherLE := true, true
	for _, r := range unionKeys(vc, other) {
		a, b := vc.Get(r), other.Get(r)
		if a > b {
			vcLE = false
		}
		if b > a {
			otherLE = false
		}
	}
	switch {
	case vcLE && otherLE:
		return Equal
	case vcLE:
		return Less
	case otherLE:
		return Greater
	default:
		return Concurrent
	}
}

// Relation is the result of comparing two vector clocks under the
// pointwise partial order.
type Relation int

const (
	Equal Relation = iota
	Less
	Greater
	Concurrent
)

// LessOrEqual reports whether vc <= other under the pointwise partial order.
func LessOrEqual(vc, other VClock) bool {
	for r, a := range vc.entries {
		if a > other.Get(r) {
			return false
		}
	}
	return true
}

func unionKeys(a, b VClock) []replicaid.ID {
	seen := make(map[replicaid.ID]struct{}, len(a.entries)+len(b.entries))
	for r := range a.entries {
		seen[r] = struct{}{}
	}
	for r := range b.entries {
		seen[r] = struct{}{}
	}
	keys := make([]replicaid.ID, 0, len(seen))
	for r := range seen {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return replicaid.Compare(keys[i], keys[j]) < 0 })
	return keys
}

// SortedEntries returns the clock's (ReplicaID, Lclock) pairs sorted by
// ReplicaID bytes ascending — the canonical serialization order this spec
// adopts for VClock (spec §9 Open Questions).
func (vc VClock) SortedEntries() []Entry {
	out := make([]Entry, 0, len(vc.entries))
	for r, t := range vc.entries {
		out = append(out, Entry{Replica: r, Lclock: t})
	}
	sort.Slice(out, func(i, j int) bool { return replicaid.Compare(out[i].Replica, out[j].Replica) < 0 })
	return out
}

// Entry is one (ReplicaID, Lclock) pair of a vector clock.
type Entry struct {
	Replica replicaid.ID
	Lclock  Lclock
}

// FromEntries rebuilds a VClock from sorted or unsorted entries (used by
// the frame decoder). Duplicate replicas keep the last value seen.
func FromEntries(entries []Entry) VClock {
	vc := NewVClock()
	for _, e := range entries {
		vc.entries[e.Replica] = e.Lclock
	}
	return vc
}
