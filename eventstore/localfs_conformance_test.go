package eventstore_test

import (
	"testing"

	"amulet.dev/core/eventstore"
	"amulet.dev/core/eventstore/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) eventstore.Store {
		t.Helper()
		dir := t.TempDir()
		store, err := eventstore.NewLocalFS(dir)
		if err != nil {
			t.Fatalf("NewLocalFS failed: %v", err)
		}
		return store
	})
}
