// Package testkit holds the eventstore.Store conformance suite, split out
// from the package under test the same way the teacher pack's
// storage/testkit is split from storage, so it can be imported from a
// backend's own test file without pulling "testing" into the library
// package itself.
package testkit

import (
	"bytes"
	"testing"

	"amulet.dev/core/cid"
	"amulet.dev/core/eventstore"
)

// NewStore constructs a fresh, empty Store for a test. The returned Store
// MUST be isolated from other tests.
type NewStore func(t *testing.T) eventstore.Store

// RunStoreConformance exercises the Store contract against any
// implementation.
func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		store := newStore(t)
		want := []byte("hello, amulet eventstore")

		id, err := store.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := cid.Compute(want)
		if err != nil {
			t.Fatalf("cid.Compute failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := store.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		store := newStore(t)
		b := []byte("same bytes")

		id1, err := store.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := store.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		store := newStore(t)
		b := []byte("missing")
		id, err := cid.Compute(b)
		if err != nil {
			t.Fatalf("cid.Compute failed: %v", err)
		}

		if store.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		if _, err := store.Get(id); !eventstore.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := store.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !store.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectNilCID", func(t *testing.T) {
		store := newStore(t)
		if store.Has(cid.Nil) {
			t.Fatalf("Has should be false for the nil CID")
		}
		if _, err := store.Get(cid.Nil); err == nil {
			t.Fatalf("Get should fail for the nil CID")
		}
	})
}
