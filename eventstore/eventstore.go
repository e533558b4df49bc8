// Package eventstore is a host-side persistence adapter for kernel output.
// The kernel itself performs no I/O (spec §1 Non-goals); a host process
// that wants events, entities, and capabilities to survive a restart
// writes them through a Store after every successful Apply or
// ProcessIncomingEvent. It is adapted from the teacher pack's
// storage.CAS contract and its storage/localfs implementation, keyed by
// this module's own cid.ID instead of go-cid.
package eventstore

import "amulet.dev/core/cid"

// Store is a minimal content-addressable store for kernel frames.
//
// Contract, carried over from the teacher's storage.CAS:
//   - Put MUST be idempotent.
//   - Stored objects MUST be immutable.
//   - The CID MUST be derived from the bytes written; callers supply
//     canonical frame bytes (Entity.Encode, Event.Encode, Capability.Encode).
//   - Get MUST return ErrNotFound when the CID is absent.
type Store interface {
	Put(canonical []byte) (cid.ID, error)
	Get(id cid.ID) ([]byte, error)
	Has(id cid.ID) bool
}
