package kernel

import (
	"amulet.dev/core/cid"
	"amulet.dev/core/clock"
)

// EventBundle pairs a remote Event with the entity bodies it declares, the
// unit a transport hands to ProcessIncomingEvent. The event alone only
// carries CIDs; a replica must resolve the bodies (from its own CAS layer,
// see package eventstore) before it can ingest them.
type EventBundle struct {
	Event    Event
	Entities []Entity
}

// processIncomingEvent runs the event-ingest pipeline (spec §4.9): framing
// check, causal admissibility, bundle-completeness check, then an atomic
// merge into the store. CausalGap is the one recoverable outcome; callers
// should buffer the bundle and retry once they've observed the missing
// causal history.
func (k *Kernel) processIncomingEvent(bundle EventBundle) error {
	event := bundle.Event
	gotID, err := cid.Compute(event.CIDInput())
	if err != nil {
		return wrapErr(KindFraming, ErrFramingError.Code, "compute event cid: "+err.Error(), err)
	}
	if gotID != event.ID {
		return ErrFramingError
	}

	_, localVc := k.store.localClock()
	if err := checkCausalAdmissible(event, localVc); err != nil {
		return err
	}

	declared := make(map[cid.ID]bool, len(event.NewEntities)+len(event.UpdatedEntities))
	for _, id := range event.NewEntities {
		declared[id] = true
	}
	for _, id := range event.UpdatedEntities {
		declared[id] = true
	}
	if len(declared) != len(bundle.Entities) {
		return ErrInvariantViolation
	}
	bundled := make(map[cid.ID]Entity, len(bundle.Entities))
	for _, e := range bundle.Entities {
		bundled[e.ID] = e
	}
	for _, e := range bundle.Entities {
		gotID, err := cid.Compute(e.CIDInput())
		if err != nil {
			return wrapErr(KindFraming, ErrFramingError.Code, "compute entity cid: "+err.Error(), err)
		}
		if gotID != e.ID || !declared[e.ID] {
			return ErrInvariantViolation
		}
		if e.Parent != nil {
			parent, exists := k.store.getEntity(*e.Parent)
			if !exists {
				parent, exists = bundled[*e.Parent]
			}
			if !exists {
				return ErrUnknownParent
			}
			if parent.Lclock > e.Lclock {
				return ErrInvariantViolation
			}
		}
	}

	k.store.commitIngest(event, bundle.Entities)
	return nil
}

// checkCausalAdmissible enforces spec §4.9's delivery order: an event from
// replica r must be the next one after whatever this replica has already
// observed from r (no gaps), and must not claim knowledge of any other
// replica's state this replica hasn't itself observed yet.
func checkCausalAdmissible(event Event, localVc clock.VClock) error {
	selfSeen := localVc.Get(event.Replica)
	if event.Lclock != selfSeen+1 {
		return ErrCausalGap
	}
	for _, entry := range event.VClock.SortedEntries() {
		if entry.Replica == event.Replica {
			continue
		}
		if entry.Lclock > localVc.Get(entry.Replica) {
			return ErrCausalGap
		}
	}
	return nil
}
