package eventstore

import (
	"os"
	"testing"

	"amulet.dev/core/cid"
)

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS failed: %v", err)
	}

	orig := []byte("original")
	id, err := store.Put(orig)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	path := store.pathFor(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := store.Get(id); err != ErrCIDMismatch {
		t.Fatalf("Get mismatch: got %v want %v", err, ErrCIDMismatch)
	}
	if _, err := store.Put(orig); err != ErrImmutable {
		t.Fatalf("Put after corruption: got %v want %v", err, ErrImmutable)
	}

	wantID, err := cid.Compute(orig)
	if err != nil {
		t.Fatalf("cid.Compute failed: %v", err)
	}
	if id != wantID {
		t.Fatalf("unexpected CID: got %s want %s", id, wantID)
	}
}
