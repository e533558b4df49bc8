package kernel

import (
	"amulet.dev/core/cid"
	"amulet.dev/core/clock"
)

// applyCommand runs the full command-apply pipeline (spec §4.8): validation,
// the overflow guard, runtime interpretation, delta invariant checks,
// content-address assignment, and atomic commit. The overflow guard runs
// only after validation succeeds, so a malformed or unauthorized command
// still surfaces its own validation error even when local_lc is already at
// the ceiling. It returns the materialized Event on success.
func (k *Kernel) applyCommand(cmd Command) (Event, error) {
	localLc, _ := k.store.localClock()

	cap, ok := k.store.getCapability(cmd.Capability)
	if !ok {
		return Event{}, ErrCapabilityNotFound
	}
	status := statusAt(cap, k.store.isRevoked(cmd.Capability), localLc)

	required, err := k.runtime.RequiredRights(cmd)
	if err != nil {
		return Event{}, wrapErr(KindDelta, ErrRuntime.Code, "runtime: compute required rights: "+err.Error(), err)
	}

	if err := validateCommand(cmd, cap, status, required, localLc, k.provider); err != nil {
		return Event{}, err
	}

	if _, err := clock.Propose(localLc); err != nil {
		return Event{}, ErrLclockOverflow
	}

	view := k.store.snapshot()
	delta, err := k.runtime.Interpret(cmd, view)
	if err != nil {
		return Event{}, wrapErr(KindDelta, ErrRuntime.Code, "runtime: interpret command: "+err.Error(), err)
	}

	newLc := clock.Commit(cmd.Lclock, localLc)

	if err := assignEntityIdentities(&delta, newLc); err != nil {
		return Event{}, err
	}
	if err := checkDeltaInvariants(view, delta); err != nil {
		return Event{}, err
	}

	newReplicaVc, err := k.nextVClock(cmd.VClock, newLc)
	if err != nil {
		return Event{}, err
	}

	event := Event{
		SuiteTag:        cmd.SuiteTag,
		Replica:         k.self,
		CausedBy:        cmd.ID,
		Lclock:          newLc,
		VClock:          newReplicaVc,
		NewEntities:     idsOf(delta.NewEntities),
		UpdatedEntities: idsOf(delta.UpdatedEntities),
	}
	event.ID, err = cid.Compute(event.CIDInput())
	if err != nil {
		return Event{}, wrapErr(KindFraming, ErrFramingError.Code, "compute event cid: "+err.Error(), err)
	}

	k.store.commitApply(newLc, cmd.VClock, delta, event)
	return event, nil
}

// nextVClock previews the vector clock the committed event will carry,
// without mutating the store: the current local vector merged with the
// command's own causal context (if it carried one), with this replica's
// own entry set to the newly committed lclock.
func (k *Kernel) nextVClock(cmdVc *clock.VClock, newLc Lclock) (clock.VClock, error) {
	_, localVc := k.store.localClock()
	if cmdVc != nil {
		localVc = clock.Merge(localVc, *cmdVc)
	}
	localVc = localVc.Set(k.self, newLc)
	return localVc, nil
}

// assignEntityIdentities gives every entity in the delta its content
// address and the lclock of the event that is about to commit it. Entity
// CIDs are computed by the kernel, not the runtime: an entity carries no
// signature of its own, so its identity is exactly the hash of its
// content, and the kernel is the only place a CID must be trustworthy.
func assignEntityIdentities(delta *StateDelta, newLc Lclock) error {
	for i := range delta.NewEntities {
		delta.NewEntities[i].Lclock = newLc
		id, err := cid.Compute(delta.NewEntities[i].CIDInput())
		if err != nil {
			return wrapErr(KindFraming, ErrFramingError.Code, "compute entity cid: "+err.Error(), err)
		}
		delta.NewEntities[i].ID = id
	}
	for i := range delta.UpdatedEntities {
		delta.UpdatedEntities[i].Lclock = newLc
		id, err := cid.Compute(delta.UpdatedEntities[i].CIDInput())
		if err != nil {
			return wrapErr(KindFraming, ErrFramingError.Code, "compute entity cid: "+err.Error(), err)
		}
		delta.UpdatedEntities[i].ID = id
	}
	return nil
}

// checkDeltaInvariants enforces spec §4.8's delta invariants against view,
// the state the runtime interpreted the command over: no new entity may
// collide with one already present or with another new entity in the same
// delta, every parent reference must resolve and causally precede its
// child, and no capability write may collide or target something absent.
func checkDeltaInvariants(view StateSnapshot, delta StateDelta) error {
	seenThisDelta := make(map[cid.ID]Entity, len(delta.NewEntities)+len(delta.UpdatedEntities))

	for _, e := range delta.NewEntities {
		if _, exists := view.Entities[e.ID]; exists {
			return ErrDuplicateEntity
		}
		if _, exists := seenThisDelta[e.ID]; exists {
			return ErrDuplicateEntity
		}
		if err := checkParentResolves(view, seenThisDelta, e); err != nil {
			return err
		}
		seenThisDelta[e.ID] = e
	}
	for _, e := range delta.UpdatedEntities {
		if err := checkParentResolves(view, seenThisDelta, e); err != nil {
			return err
		}
		seenThisDelta[e.ID] = e
	}
	for _, c := range delta.NewCapabilities {
		if _, exists := view.Capabilities[c.ID]; exists {
			return ErrDuplicateCapabilityCID
		}
	}
	for _, id := range delta.RevokedCapabilities {
		if _, exists := view.Capabilities[id]; !exists {
			return ErrDeltaInvariantViolation
		}
	}
	return nil
}

// checkParentResolves enforces spec §3's causal bound: an entity's parent
// must resolve, either in the pre-delta view or earlier in this same
// delta, and its lclock must not exceed the child's. A parent stamped with
// a later lclock than its child would place the child before its own
// ancestor in the replicated history.
func checkParentResolves(view StateSnapshot, seenThisDelta map[cid.ID]Entity, e Entity) error {
	if e.Parent == nil {
		return nil
	}
	if parent, exists := view.Entities[*e.Parent]; exists {
		if parent.Lclock > e.Lclock {
			return ErrDeltaInvariantViolation
		}
		return nil
	}
	if parent, exists := seenThisDelta[*e.Parent]; exists {
		if parent.Lclock > e.Lclock {
			return ErrDeltaInvariantViolation
		}
		return nil
	}
	return ErrUnknownParent
}

func idsOf(entities []Entity) []cid.ID {
	out := make([]cid.ID, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}
