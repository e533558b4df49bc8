// Package cid implements the kernel's content-addressing function: a pure
// mapping from canonical bytes to a 32-byte content identifier (spec §4.1).
//
// It is built on the same github.com/ipfs/go-cid + go-multihash stack the
// teacher pack uses for its own CIDs (cidutil.CIDv1RawSHA256), so that a
// kernel CID doubles as the digest of an interoperable CIDv1 (raw codec,
// sha2-256 multihash) for any caller that wants to address the same bytes
// from outside the kernel.
package cid

import (
	"fmt"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ID is the kernel's 32-byte content identifier.
type ID [32]byte

// Nil is the zero-value ID, used as "no CID" in optional fields.
var Nil ID

// Compute hashes canonical bytes into a CID via sha2-256, using the same
// CIDv1 raw-codec multihash construction as the teacher's cidutil package,
// then lifts the multihash digest into the kernel's flat 32-byte form.
func Compute(canonical []byte) (ID, error) {
	sum, err := multihash.Sum(canonical, multihash.SHA2_256, -1)
	if err != nil {
		return Nil, fmt.Errorf("cid: multihash sum: %w", err)
	}
	wrapped := gocid.NewCidV1(gocid.Raw, sum)
	decoded, err := multihash.Decode(wrapped.Hash())
	if err != nil {
		return Nil, fmt.Errorf("cid: decode multihash: %w", err)
	}
	var out ID
	if len(decoded.Digest) != len(out) {
		return Nil, fmt.Errorf("cid: unexpected digest length %d", len(decoded.Digest))
	}
	copy(out[:], decoded.Digest)
	return out, nil
}

// String renders the underlying CIDv1 (raw + sha2-256) string form.
func (id ID) String() string {
	sum, err := multihash.Encode(id[:], multihash.SHA2_256)
	if err != nil {
		return "cid-invalid"
	}
	mh, err := multihash.Cast(sum)
	if err != nil {
		return "cid-invalid"
	}
	return gocid.NewCidV1(gocid.Raw, mh).String()
}

// Bytes returns the raw 32-byte digest.
func (id ID) Bytes() []byte {
	return id[:]
}

// IsNil reports whether id is the zero value.
func (id ID) IsNil() bool {
	return id == Nil
}

// FromBytes wraps exactly 32 bytes as an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != len(id) {
		return id, fmt.Errorf("cid: expected %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}
