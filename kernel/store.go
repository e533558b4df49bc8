package kernel

import (
	"sync"

	"amulet.dev/core/cid"
	"amulet.dev/core/clock"
	"amulet.dev/core/replicaid"
)

// stateStore is the kernel's single piece of mutable state: every
// committed entity and capability, the revocation set, the event log, and
// this replica's own clocks. Each accessor below takes the store lock for
// its own duration only. A public Kernel operation makes all of its
// mutations under one acquisition (commitApply, commitIngest,
// insertCapability or recordRevocation), while its earlier reads take the
// lock separately; no operation holds it across a Runtime or Provider
// callback.
type stateStore struct {
	mu sync.RWMutex

	self replicaid.ID

	entities     map[cid.ID]Entity
	capabilities map[cid.ID]Capability
	revoked      map[cid.ID]bool

	events   map[cid.ID]Event
	eventLog []cid.ID

	localLc Lclock
	localVc clock.VClock
}

// Lclock is an alias kept local to the kernel package so call sites read
// naturally; it is the same uint64 that package clock operates on.
type Lclock = uint64

func newStateStore(self replicaid.ID) *stateStore {
	return &stateStore{
		self:         self,
		entities:     make(map[cid.ID]Entity),
		capabilities: make(map[cid.ID]Capability),
		revoked:      make(map[cid.ID]bool),
		events:       make(map[cid.ID]Event),
		localVc:      clock.NewVClock(),
	}
}

func (s *stateStore) getCapability(id cid.ID) (Capability, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.capabilities[id]
	return c, ok
}

func (s *stateStore) isRevoked(id cid.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revoked[id]
}

func (s *stateStore) getEntity(id cid.ID) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

func (s *stateStore) hasEntity(id cid.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entities[id]
	return ok
}

func (s *stateStore) localClock() (Lclock, clock.VClock) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localLc, s.localVc.Clone()
}

// StateSnapshot is a read-only, point-in-time copy of kernel state, used by
// Runtime implementations to interpret a command's payload and by callers
// that want to inspect state without holding any lock.
type StateSnapshot struct {
	Entities     map[cid.ID]Entity
	Capabilities map[cid.ID]Capability
	Revoked      map[cid.ID]bool
	Lclock       Lclock
	VClock       clock.VClock
}

func (s *stateStore) snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := StateSnapshot{
		Entities:     make(map[cid.ID]Entity, len(s.entities)),
		Capabilities: make(map[cid.ID]Capability, len(s.capabilities)),
		Revoked:      make(map[cid.ID]bool, len(s.revoked)),
		Lclock:       s.localLc,
		VClock:       s.localVc.Clone(),
	}
	for k, v := range s.entities {
		snap.Entities[k] = v
	}
	for k, v := range s.capabilities {
		snap.Capabilities[k] = v
	}
	for k, v := range s.revoked {
		snap.Revoked[k] = v
	}
	return snap
}

// commitApply installs the effects of a locally-authored command under a
// single critical section: advance the clocks, write the delta, append the
// event. Callers must have already validated the delta; this method does
// not re-check invariants.
func (s *stateStore) commitApply(newLc Lclock, cmdVc *clock.VClock, delta StateDelta, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.localLc = newLc
	if cmdVc != nil {
		s.localVc = clock.Merge(s.localVc, *cmdVc)
	}
	s.localVc = s.localVc.Set(s.self, newLc)

	for _, e := range delta.NewEntities {
		s.entities[e.ID] = e
	}
	for _, e := range delta.UpdatedEntities {
		s.entities[e.ID] = e
	}
	for _, c := range delta.NewCapabilities {
		s.capabilities[c.ID] = c
	}
	for _, id := range delta.RevokedCapabilities {
		s.revoked[id] = true
	}

	s.events[event.ID] = event
	s.eventLog = append(s.eventLog, event.ID)
}

// commitIngest installs the effects of a remote event: merge clocks, write
// the bundled entities, append the event. Callers must have already
// validated causal admissibility and framing.
func (s *stateStore) commitIngest(event Event, entities []Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.localVc = clock.Merge(s.localVc, event.VClock)
	if event.Lclock > s.localLc {
		s.localLc = event.Lclock
	}
	for _, e := range entities {
		s.entities[e.ID] = e
	}
	s.events[event.ID] = event
	s.eventLog = append(s.eventLog, event.ID)
}

func (s *stateStore) insertCapability(c Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capabilities[c.ID] = c
}

func (s *stateStore) recordRevocation(id cid.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[id] = true
}
