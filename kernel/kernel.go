// Package kernel implements Amulet-Core's deterministic replicated state
// machine (spec §1–§4): a command-apply pipeline, an event-ingest
// pipeline, and the capability-gated rights algebra that guards both. The
// kernel performs no I/O. Payload interpretation and signature
// verification cross two injected seams, Runtime and suite.Provider;
// content addresses are computed directly by package cid (sha2-256), not
// through the Provider. This is so that replaying the same commands through the same seams on any
// replica converges to the same state (spec §2).
package kernel

import (
	"fmt"

	"amulet.dev/core/cid"
	"amulet.dev/core/clock"
	"amulet.dev/core/replicaid"
	"amulet.dev/core/rights"
	"amulet.dev/core/suite"
)

// Runtime interprets a Command's opaque Payload against a point-in-time
// state view. The kernel never looks inside Payload itself; everything it
// knows about what a command means comes from these two callbacks (spec
// §4.6, §6).
type Runtime interface {
	// RequiredRights reports the rights mask a command's payload demands
	// of the capability that authorizes it, without touching state.
	RequiredRights(cmd Command) (rights.Mask, error)

	// Interpret produces the StateDelta a command implies when applied
	// against view. It must be a pure function of (cmd, view): the kernel
	// calls it at most once per Apply and trusts its output completely,
	// subject only to the delta invariants apply.go enforces afterward.
	Interpret(cmd Command, view StateSnapshot) (StateDelta, error)
}

// Config parameterizes a Kernel instance.
type Config struct {
	// Self is this replica's identity, used to tag events it authors and
	// to track its own entry in the vector clock.
	Self replicaid.ID

	// EnableVectorClocks must be true; Amulet-Core v0.5 makes vector
	// clocks mandatory rather than optional (spec §3, §9). The field
	// exists so a caller's intent is explicit in code, and so the kernel
	// can reject a misconfigured caller instead of silently degrading to
	// scalar-only ordering.
	EnableVectorClocks bool
}

// Kernel is the concrete, in-process implementation of the state machine.
// Exported methods do not race on memory, but Apply, ProcessIncomingEvent
// and IngestCapability read state and then commit under separate lock
// acquisitions, so concurrent calls to them are not serialized against
// one another and may interleave between those reads and the commit.
type Kernel struct {
	self     replicaid.ID
	provider suite.Provider
	runtime  Runtime
	store    *stateStore
}

// New constructs a Kernel. provider supplies hashing and signature
// verification; runtime supplies payload interpretation and rights
// derivation. Both must be non-nil.
func New(cfg Config, provider suite.Provider, runtime Runtime) (*Kernel, error) {
	if !cfg.EnableVectorClocks {
		return nil, ErrVectorClocksRequired
	}
	if provider == nil {
		return nil, newErr(KindConfig, "PROVIDER_REQUIRED", "suite.Provider must not be nil")
	}
	if runtime == nil {
		return nil, newErr(KindConfig, "RUNTIME_REQUIRED", "Runtime must not be nil")
	}
	if cfg.Self == replicaid.Nil {
		return nil, newErr(KindConfig, "SELF_REQUIRED", "Config.Self must not be the nil replica id")
	}
	return &Kernel{
		self:     cfg.Self,
		provider: provider,
		runtime:  runtime,
		store:    newStateStore(cfg.Self),
	}, nil
}

// Apply validates cmd, asks the runtime to interpret it, checks the
// resulting delta's invariants, and commits it atomically, returning the
// materialized Event (spec §4.7, §4.8).
func (k *Kernel) Apply(cmd Command) (Event, error) {
	return k.applyCommand(cmd)
}

// ProcessIncomingEvent ingests a remote event and the entity bodies it
// declares, after checking framing and causal admissibility (spec §4.9).
// A CausalGap error is recoverable: the caller should hold the bundle and
// retry once it has ingested whatever it is missing.
func (k *Kernel) ProcessIncomingEvent(bundle EventBundle) error {
	return k.processIncomingEvent(bundle)
}

// IngestCapability admits an externally-issued, already-signed capability
// into local state. Capabilities are content-addressed and independently
// verifiable, so unlike events they carry no causal ordering requirement;
// the kernel only checks that the declared CID matches the bytes and that
// it isn't already present.
func (k *Kernel) IngestCapability(c Capability) error {
	gotID, err := cid.Compute(c.CIDInput())
	if err != nil {
		return wrapErr(KindFraming, ErrFramingError.Code, "compute capability cid: "+err.Error(), err)
	}
	if gotID != c.ID {
		return ErrFramingError
	}
	if _, exists := k.store.getCapability(c.ID); exists {
		return ErrDuplicateCapabilityCID
	}
	k.store.insertCapability(c)
	return nil
}

// RevokeCapability marks capID revoked in local state. It is idempotent:
// revoking an already-revoked capability is not an error.
func (k *Kernel) RevokeCapability(capID cid.ID) error {
	if _, exists := k.store.getCapability(capID); !exists {
		return fmt.Errorf("kernel: revoke %s: %w", capID, ErrCapabilityNotFound)
	}
	k.store.recordRevocation(capID)
	return nil
}

// CapabilityStatus reports a capability's current lifecycle status, judged
// against the local lamport clock (spec §4.10).
func (k *Kernel) CapabilityStatus(capID cid.ID) (CapabilityStatus, error) {
	cap, ok := k.store.getCapability(capID)
	if !ok {
		return 0, ErrCapabilityNotFound
	}
	localLc, _ := k.store.localClock()
	return statusAt(cap, k.store.isRevoked(capID), localLc), nil
}

// Snapshot returns a point-in-time, independently-mutable copy of state.
func (k *Kernel) Snapshot() StateSnapshot {
	return k.store.snapshot()
}

// LocalClock returns this replica's current lamport clock and vector
// clock.
func (k *Kernel) LocalClock() (Lclock, clock.VClock) {
	return k.store.localClock()
}

// Self returns this replica's identity.
func (k *Kernel) Self() replicaid.ID {
	return k.self
}
