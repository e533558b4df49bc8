// Package replicaid implements the kernel's 128-bit opaque replica identifier.
package replicaid

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// ID is a 128-bit opaque identifier assigned once per replica instance.
type ID [16]byte

// Nil is the zero-value ID. It is a valid value but MUST NOT be used as a
// replica's self identifier; it is reserved for "no replica" in maps.
var Nil ID

// New generates a fresh random ID.
func New() ID {
	return ID(uuid.New())
}

// FromBytes wraps exactly 16 bytes as an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != len(id) {
		return id, fmt.Errorf("replicaid: expected %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Parse parses the canonical UUID-style string form.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("replicaid: %w", err)
	}
	return ID(u), nil
}

// String renders the canonical UUID-style form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Bytes returns the raw 16-byte value.
func (id ID) Bytes() []byte {
	return id[:]
}

// Compare gives a total order over IDs, used to sort vector-clock entries
// deterministically by "ReplicaID bytes ascending" per the frame's canonical
// encoding rule.
func Compare(a, b ID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Uint64Halves exposes the ID as two big-endian uint64 halves, useful for
// callers that want a compact numeric sort key without allocating.
func (id ID) Uint64Halves() (hi, lo uint64) {
	return binary.BigEndian.Uint64(id[:8]), binary.BigEndian.Uint64(id[8:])
}
