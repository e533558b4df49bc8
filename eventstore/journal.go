package eventstore

import (
	"amulet.dev/core/cid"
	"amulet.dev/core/kernel"
)

// Journal writes a kernel's committed output through a Store. It is the
// glue a host process adds around Kernel.Apply/ProcessIncomingEvent to
// get persistence; the kernel itself stays storage-agnostic.
type Journal struct {
	Store Store
}

// RecordEvent persists ev's canonical frame.
func (j Journal) RecordEvent(ev kernel.Event) error {
	_, err := j.Store.Put(ev.Encode())
	return err
}

// RecordEntity persists e's canonical frame.
func (j Journal) RecordEntity(e kernel.Entity) error {
	_, err := j.Store.Put(e.Encode())
	return err
}

// RecordCapability persists c's canonical frame.
func (j Journal) RecordCapability(c kernel.Capability) error {
	_, err := j.Store.Put(c.Encode())
	return err
}

// LoadEntity fetches and decodes the entity frame stored under id.
func (j Journal) LoadEntity(id cid.ID) (kernel.Entity, error) {
	b, err := j.Store.Get(id)
	if err != nil {
		return kernel.Entity{}, err
	}
	return kernel.DecodeEntity(b)
}

// LoadEvent fetches and decodes the event frame stored under id.
func (j Journal) LoadEvent(id cid.ID) (kernel.Event, error) {
	b, err := j.Store.Get(id)
	if err != nil {
		return kernel.Event{}, err
	}
	return kernel.DecodeEvent(b)
}

// LoadCapability fetches and decodes the capability frame stored under id.
func (j Journal) LoadCapability(id cid.ID) (kernel.Capability, error) {
	b, err := j.Store.Get(id)
	if err != nil {
		return kernel.Capability{}, err
	}
	return kernel.DecodeCapability(b)
}
