// Package clock implements the kernel's logical-time accounting: a
// per-replica Lamport counter and a mandatory vector clock.
package clock

import "errors"

// Lclock is the unsigned 64-bit Lamport counter. The sentinel value
// Max (2^64 - 1) is reachable, but once the local counter equals it the
// replica must refuse further command authoring (spec §3, §4.4 rule 5).
type Lclock = uint64

// Max is the sentinel ceiling value. Once local_lc == Max, authoring fails
// with overflow; ingest of a peer event still progresses because the
// remote clock cannot push the local counter further.
const Max Lclock = 1<<64 - 1

// ErrOverflow is returned by Propose when the local counter already sits at
// the ceiling.
var ErrOverflow = errors.New("clock: local lamport counter at ceiling, cannot author")

// Propose computes the proposed lclock for local command authoring:
// proposed = local + 1. It refuses when local is already at the ceiling.
func Propose(local Lclock) (Lclock, error) {
	if local == Max {
		return 0, ErrOverflow
	}
	return local + 1, nil
}

// AcceptCommand reports whether a command's proposed lclock is acceptable
// given the current local counter: cmd.lclock >= local_lc (equality
// admissible — spec §4.4 rule 2).
func AcceptCommand(cmdLclock, local Lclock) bool {
	return cmdLclock >= local
}

// Commit computes the event's authoritative lclock on acceptance:
// event.lclock = max(cmd.lclock, local_lc + 1). The caller is responsible
// for having already refused authoring when local == Max.
func Commit(cmdLclock, local Lclock) Lclock {
	next := local + 1
	if cmdLclock > next {
		return cmdLclock
	}
	return next
}

// MergeIngest computes the new local counter after ingesting a peer event:
// local_lc := max(local_lc, event.lclock).
func MergeIngest(local, eventLclock Lclock) Lclock {
	if eventLclock > local {
		return eventLclock
	}
	return local
}
