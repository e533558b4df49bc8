package kernel

import (
	"amulet.dev/core/cid"
	"amulet.dev/core/clock"
	"amulet.dev/core/replicaid"
	"amulet.dev/core/rights"
	"amulet.dev/core/suite"
)

// Entity is a single unit of replicated state (spec §3). Field order here is
// the canonical wire order, grounded on original_source/src/primitives.rs.
type Entity struct {
	ID      cid.ID
	Version uint64
	Lclock  uint64
	Parent  *cid.ID
	Body    []byte

	// Trailer carries bytes that followed the last field this build knows
	// about when the entity was parsed off the wire. A build must reproduce
	// them verbatim on re-encode even though it cannot interpret them.
	Trailer []byte
}

// Capability grants a Holder a Rights mask over a Target entity, signed
// under SuiteTag (spec §4.5, §4.10).
type Capability struct {
	ID          cid.ID
	SuiteTag    suite.Tag
	Holder      []byte
	Target      cid.ID
	Rights      rights.Mask
	Nonce       uint64
	ExpiryLc    *uint64
	Kind        uint16
	Signature   []byte
	Trailer     []byte
}

// Command is a signed request to apply a state change, authorized by a
// referenced Capability (spec §4.6, §4.7).
type Command struct {
	ID         cid.ID
	SuiteTag   suite.Tag
	Replica    replicaid.ID
	Capability cid.ID
	Lclock     uint64
	VClock     *clock.VClock
	Payload    []byte
	Signature  []byte
	Trailer    []byte
}

// Event is the kernel's materialized record of a successfully applied
// command: the durable, replicable unit ingest exchanges between replicas
// (spec §4.8, §4.9). VClock is mandatory on events, unlike on commands.
type Event struct {
	ID              cid.ID
	SuiteTag        suite.Tag
	Replica         replicaid.ID
	CausedBy        cid.ID
	Lclock          uint64
	VClock          clock.VClock
	NewEntities     []cid.ID
	UpdatedEntities []cid.ID
	Reserved        []byte
}

// StateDelta is what a Runtime returns after interpreting a Command's
// Payload against the current state view (spec §4.6, §6). The kernel treats
// it as an opaque set of writes to validate and, if admissible, commit
// atomically; it never inspects Payload itself.
type StateDelta struct {
	NewEntities         []Entity
	UpdatedEntities     []Entity
	NewCapabilities     []Capability
	RevokedCapabilities []cid.ID
}

// CapabilityStatus is the tri-state lifecycle of a capability (spec §4.10).
type CapabilityStatus int

const (
	CapabilityActive CapabilityStatus = iota
	CapabilityExpired
	CapabilityRevoked
)

func (s CapabilityStatus) String() string {
	switch s {
	case CapabilityActive:
		return "ACTIVE"
	case CapabilityExpired:
		return "EXPIRED"
	case CapabilityRevoked:
		return "REVOKED"
	default:
		return "UNKNOWN"
	}
}

// statusAt reports cap's lifecycle status when observed at lclock `now`,
// given whether it is present in the revocation set. Expiry is
// inclusive-equal: a capability whose ExpiryLc equals now is already
// expired (spec §9 Open Questions).
func statusAt(cap Capability, revoked bool, now uint64) CapabilityStatus {
	if revoked {
		return CapabilityRevoked
	}
	if cap.ExpiryLc != nil && now >= *cap.ExpiryLc {
		return CapabilityExpired
	}
	return CapabilityActive
}
