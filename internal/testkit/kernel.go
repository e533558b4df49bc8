// Package testkit holds the kernel conformance suite, split out from
// package kernel the same way the teacher pack keeps storage/testkit
// apart from storage, so any Runtime/Provider pairing can be run through
// the same invariant checks a unit test file imports.
package testkit

import (
	"crypto/ed25519"
	"testing"

	"amulet.dev/core/cid"
	"amulet.dev/core/clock"
	"amulet.dev/core/kernel"
	"amulet.dev/core/replicaid"
	"amulet.dev/core/rights"
	"amulet.dev/core/suite"
)

// LedgerRuntime is a minimal, deterministic Runtime for tests: every
// command's payload is taken verbatim as the body of one new entity, and
// every command requires exactly rights.Write. It exists purely to exercise the kernel's own pipeline, not to
// model any real domain.
type LedgerRuntime struct{}

func (LedgerRuntime) RequiredRights(kernel.Command) (rights.Mask, error) {
	return rights.Write, nil
}

func (LedgerRuntime) Interpret(cmd kernel.Command, _ kernel.StateSnapshot) (kernel.StateDelta, error) {
	return kernel.StateDelta{
		NewEntities: []kernel.Entity{{Body: append([]byte(nil), cmd.Payload...)}},
	}, nil
}

// DuplicatingRuntime returns two new entities with identical content in a
// single delta, regardless of command payload. Both get stamped with the
// same commit lclock by the kernel, so they resolve to the same CID: it
// exists to exercise the kernel's intra-delta duplicate-entity check,
// which a true cross-command CID collision can never reach (each commit's
// lclock is strictly greater than the last, so two separately-committed
// entities can never share a CID).
type DuplicatingRuntime struct{}

func (DuplicatingRuntime) RequiredRights(kernel.Command) (rights.Mask, error) {
	return rights.Write, nil
}

func (DuplicatingRuntime) Interpret(cmd kernel.Command, _ kernel.StateSnapshot) (kernel.StateDelta, error) {
	body := append([]byte(nil), cmd.Payload...)
	return kernel.StateDelta{
		NewEntities: []kernel.Entity{
			{Body: body},
			{Body: append([]byte(nil), body...)},
		},
	}, nil
}

// Fixture bundles a keypair, its holder bytes, and a ready-to-use
// capability signed by that same holder key, for a chosen suite.
type Fixture struct {
	Tag       suite.Tag
	Replica   replicaid.ID
	HolderPub ed25519.PublicKey
	HolderKey ed25519.PrivateKey
	Cap       kernel.Capability
}

// NewClassicFixture builds a CLASSIC-suite capability granting Write over
// a fixed target CID, with no expiry.
func NewClassicFixture(t *testing.T, replica replicaid.ID) Fixture {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 0x01
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	cap := kernel.Capability{
		SuiteTag: suite.Classic,
		Holder:   pub,
		Target:   mustCID(t, []byte("target-entity")),
		Rights:   rights.Write,
		Nonce:    1,
		Kind:     0,
	}
	signCapabilitySelfIssued(t, &cap, priv)
	return Fixture{Tag: suite.Classic, Replica: replica, HolderPub: pub, HolderKey: priv, Cap: cap}
}

// signCapabilitySelfIssued signs and CIDs cap in place, using priv as both
// issuer and the classic suite's signature scheme. Test fixtures issue
// capabilities to themselves; the kernel never verifies a capability's
// signature, and IngestCapability checks only that the declared CID
// matches the capability's bytes.
func signCapabilitySelfIssued(t *testing.T, cap *kernel.Capability, priv ed25519.PrivateKey) {
	t.Helper()
	cap.Signature = suite.SignClassic(cap.SignableBytes(), priv)
	id, err := cid.Compute(cap.CIDInput())
	if err != nil {
		t.Fatalf("cid.Compute(capability): %v", err)
	}
	cap.ID = id
}

func mustCID(t *testing.T, b []byte) cid.ID {
	t.Helper()
	id, err := cid.Compute(b)
	if err != nil {
		t.Fatalf("cid.Compute: %v", err)
	}
	return id
}

// SignCommandClassic fills in ID and Signature for cmd under the CLASSIC
// suite, leaving every other field as the caller set it.
func SignCommandClassic(t *testing.T, cmd *kernel.Command, priv ed25519.PrivateKey) {
	t.Helper()
	cmd.SuiteTag = suite.Classic
	cmd.Signature = suite.SignClassic(cmd.SignableBytes(), priv)
	id, err := cid.Compute(cmd.CIDInput())
	if err != nil {
		t.Fatalf("cid.Compute(command): %v", err)
	}
	cmd.ID = id
}

// NewKernel wires a fresh Kernel over LedgerRuntime and the reference
// crypto provider for replica self.
func NewKernel(t *testing.T, self replicaid.ID) *kernel.Kernel {
	t.Helper()
	k, err := kernel.New(kernel.Config{Self: self, EnableVectorClocks: true}, suite.Reference{}, LedgerRuntime{})
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}
	return k
}

// RunKernelConformance exercises the seed scenarios and invariants from
// the kernel specification against newKernel, a fresh Kernel/Fixture pair
// per subtest.
func RunKernelConformance(t *testing.T, newKernel func(t *testing.T) (*kernel.Kernel, Fixture)) {
	t.Helper()

	t.Run("S1_MinimalCreateAtLclockOne", func(t *testing.T) {
		k, fx := newKernel(t)
		if err := k.IngestCapability(fx.Cap); err != nil {
			t.Fatalf("IngestCapability: %v", err)
		}
		cmd := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: 1, Payload: []byte("hello")}
		SignCommandClassic(t, &cmd, fx.HolderKey)

		ev, err := k.Apply(cmd)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if ev.Lclock != 1 {
			t.Fatalf("event lclock = %d, want 1", ev.Lclock)
		}
		if len(ev.NewEntities) != 1 {
			t.Fatalf("expected exactly one new entity, got %d", len(ev.NewEntities))
		}
		snap := k.Snapshot()
		if _, ok := snap.Entities[ev.NewEntities[0]]; !ok {
			t.Fatalf("new entity not present in snapshot")
		}
	})

	t.Run("LclockInPastRejected", func(t *testing.T) {
		k, fx := newKernel(t)
		if err := k.IngestCapability(fx.Cap); err != nil {
			t.Fatalf("IngestCapability: %v", err)
		}
		first := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: 5, Payload: []byte("a")}
		SignCommandClassic(t, &first, fx.HolderKey)
		if _, err := k.Apply(first); err != nil {
			t.Fatalf("first Apply: %v", err)
		}

		stale := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: 1, Payload: []byte("b")}
		SignCommandClassic(t, &stale, fx.HolderKey)
		if _, err := k.Apply(stale); err != kernel.ErrLclockInPast {
			t.Fatalf("got %v, want ErrLclockInPast", err)
		}
	})

	t.Run("S6_ExpiredCapabilityRejected", func(t *testing.T) {
		k, fx := newKernel(t)
		expiry := uint64(1)
		fx.Cap.ExpiryLc = &expiry
		signCapabilitySelfIssued(t, &fx.Cap, fx.HolderKey)
		if err := k.IngestCapability(fx.Cap); err != nil {
			t.Fatalf("IngestCapability: %v", err)
		}

		// At local_lc 0 the capability is still live; committing one
		// command lifts local_lc to 1, equal to the expiry.
		first := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: 1, Payload: []byte("w")}
		SignCommandClassic(t, &first, fx.HolderKey)
		if _, err := k.Apply(first); err != nil {
			t.Fatalf("Apply before expiry: %v", err)
		}

		cmd := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: 1, Payload: []byte("x")}
		SignCommandClassic(t, &cmd, fx.HolderKey)

		_, err := k.Apply(cmd)
		if err != kernel.ErrCapabilityExpired {
			t.Fatalf("got %v, want ErrCapabilityExpired", err)
		}
	})

	t.Run("S9_InsufficientRightsRejected", func(t *testing.T) {
		k, fx := newKernel(t)
		fx.Cap.Rights = rights.Read
		signCapabilitySelfIssued(t, &fx.Cap, fx.HolderKey)
		if err := k.IngestCapability(fx.Cap); err != nil {
			t.Fatalf("IngestCapability: %v", err)
		}
		cmd := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: 1, Payload: []byte("x")}
		SignCommandClassic(t, &cmd, fx.HolderKey)

		if _, err := k.Apply(cmd); err != kernel.ErrInsufficientRights {
			t.Fatalf("got %v, want ErrInsufficientRights", err)
		}
	})

	t.Run("CausalGapOnIngestRejected", func(t *testing.T) {
		k, _ := newKernel(t)
		badEvent := kernel.Event{Replica: replicaid.New(), Lclock: 5, VClock: clock.NewVClock()}
		id, err := cid.Compute(badEvent.CIDInput())
		if err != nil {
			t.Fatalf("cid.Compute: %v", err)
		}
		badEvent.ID = id

		err = k.ProcessIncomingEvent(kernel.EventBundle{Event: badEvent})
		if err != kernel.ErrCausalGap {
			t.Fatalf("got %v, want ErrCausalGap", err)
		}
	})

	t.Run("S11_ParentCausalViolationOnIngest", func(t *testing.T) {
		k, fx := newKernel(t)
		if err := k.IngestCapability(fx.Cap); err != nil {
			t.Fatalf("IngestCapability: %v", err)
		}

		// Author a parent entity at lclock 10.
		parentCmd := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: 10, Payload: []byte("parent")}
		SignCommandClassic(t, &parentCmd, fx.HolderKey)
		parentEv, err := k.Apply(parentCmd)
		if err != nil {
			t.Fatalf("apply parent: %v", err)
		}
		parentID := parentEv.NewEntities[0]

		// Prime a peer replica's observed history up to lclock 6, so an
		// incoming event from it at lclock 7 is causally admissible.
		peer := replicaid.New()
		for i := clock.Lclock(1); i <= 6; i++ {
			primeEv := kernel.Event{Replica: peer, Lclock: i, VClock: clock.NewVClock().Set(peer, i)}
			id, err := cid.Compute(primeEv.CIDInput())
			if err != nil {
				t.Fatalf("cid.Compute: %v", err)
			}
			primeEv.ID = id
			if err := k.ProcessIncomingEvent(kernel.EventBundle{Event: primeEv}); err != nil {
				t.Fatalf("prime peer history at lclock %d: %v", i, err)
			}
		}

		// The incoming event at lclock 7 attaches a child to the lclock-10
		// parent: the parent outlives its own child, which spec §3 forbids.
		child := kernel.Entity{Parent: &parentID, Lclock: 7, Body: []byte("child")}
		childID, err := cid.Compute(child.CIDInput())
		if err != nil {
			t.Fatalf("cid.Compute: %v", err)
		}
		child.ID = childID

		event := kernel.Event{Replica: peer, Lclock: 7, VClock: clock.NewVClock().Set(peer, 7), NewEntities: []cid.ID{childID}}
		eventID, err := cid.Compute(event.CIDInput())
		if err != nil {
			t.Fatalf("cid.Compute: %v", err)
		}
		event.ID = eventID

		err = k.ProcessIncomingEvent(kernel.EventBundle{Event: event, Entities: []kernel.Entity{child}})
		if err != kernel.ErrInvariantViolation {
			t.Fatalf("got %v, want ErrInvariantViolation", err)
		}
	})

	t.Run("S4_LclockOverflowRefusedAfterReachingCeiling", func(t *testing.T) {
		k, fx := newKernel(t)
		if err := k.IngestCapability(fx.Cap); err != nil {
			t.Fatalf("IngestCapability: %v", err)
		}

		first := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: clock.Max - 1, Payload: []byte("a")}
		SignCommandClassic(t, &first, fx.HolderKey)
		ev1, err := k.Apply(first)
		if err != nil {
			t.Fatalf("first Apply: %v", err)
		}
		if ev1.Lclock != clock.Max-1 {
			t.Fatalf("ev1.Lclock = %d, want %d", ev1.Lclock, clock.Max-1)
		}

		second := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: clock.Max, Payload: []byte("b")}
		SignCommandClassic(t, &second, fx.HolderKey)
		ev2, err := k.Apply(second)
		if err != nil {
			t.Fatalf("second Apply: %v", err)
		}
		if ev2.Lclock != clock.Max {
			t.Fatalf("ev2.Lclock = %d, want %d", ev2.Lclock, clock.Max)
		}
		if localLc, _ := k.LocalClock(); localLc != clock.Max {
			t.Fatalf("local_lc = %d, want %d", localLc, clock.Max)
		}

		before := k.Snapshot()
		third := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: clock.Max, Payload: []byte("c")}
		SignCommandClassic(t, &third, fx.HolderKey)
		if _, err := k.Apply(third); err != kernel.ErrLclockOverflow {
			t.Fatalf("got %v, want ErrLclockOverflow", err)
		}
		after := k.Snapshot()
		if len(after.Entities) != len(before.Entities) {
			t.Fatalf("entity count changed on overflow-rejected apply: before=%d after=%d", len(before.Entities), len(after.Entities))
		}
	})

	t.Run("S8_DuplicateEntityRejectedOnApply", func(t *testing.T) {
		self := replicaid.New()
		k, err := kernel.New(kernel.Config{Self: self, EnableVectorClocks: true}, suite.Reference{}, DuplicatingRuntime{})
		if err != nil {
			t.Fatalf("kernel.New: %v", err)
		}
		fx := NewClassicFixture(t, self)
		if err := k.IngestCapability(fx.Cap); err != nil {
			t.Fatalf("IngestCapability: %v", err)
		}
		cmd := kernel.Command{Replica: fx.Replica, Capability: fx.Cap.ID, Lclock: 1, Payload: []byte("x")}
		SignCommandClassic(t, &cmd, fx.HolderKey)

		before := k.Snapshot()
		if _, err := k.Apply(cmd); err != kernel.ErrDuplicateEntity {
			t.Fatalf("got %v, want ErrDuplicateEntity", err)
		}
		after := k.Snapshot()
		if len(after.Entities) != len(before.Entities) {
			t.Fatalf("entity count changed on duplicate-rejected apply: before=%d after=%d", len(before.Entities), len(after.Entities))
		}
	})
}
