package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func newTestSeed(t *testing.T) []byte {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return priv.Seed()
}

func TestKeyStoreInitializeAndExportRoot(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	seed := newTestSeed(t)

	holder, path, err := ks.InitializeRoot("replica-a", seed, false)
	if err != nil {
		t.Fatalf("InitializeRoot: %v", err)
	}
	if path == "" {
		t.Fatalf("expected a non-empty file path")
	}

	got, err := ks.ExportHolder("replica-a", "")
	if err != nil {
		t.Fatalf("ExportHolder: %v", err)
	}
	if got != holder {
		t.Fatalf("ExportHolder = %q, want %q", got, holder)
	}
}

func TestKeyStoreInitializeRootRefusesOverwriteByDefault(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	seed := newTestSeed(t)
	if _, _, err := ks.InitializeRoot("replica-a", seed, false); err != nil {
		t.Fatalf("InitializeRoot: %v", err)
	}
	if _, _, err := ks.InitializeRoot("replica-a", seed, false); err == nil {
		t.Fatalf("expected a second InitializeRoot without overwrite to fail")
	}
	if _, _, err := ks.InitializeRoot("replica-a", seed, true); err != nil {
		t.Fatalf("InitializeRoot with overwrite=true: %v", err)
	}
}

func TestKeyStoreDerivePurposeKeyIsDeterministicAndStored(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	seed := newTestSeed(t)
	if _, _, err := ks.InitializeRoot("replica-a", seed, false); err != nil {
		t.Fatalf("InitializeRoot: %v", err)
	}

	holder, _, err := ks.DerivePurposeKey("replica-a", "holder", false)
	if err != nil {
		t.Fatalf("DerivePurposeKey: %v", err)
	}

	again, err := ks.ExportHolder("replica-a", "holder")
	if err != nil {
		t.Fatalf("ExportHolder: %v", err)
	}
	if again != holder {
		t.Fatalf("ExportHolder(purpose) = %q, want %q", again, holder)
	}

	entries, err := ks.ListReplicas()
	if err != nil {
		t.Fatalf("ListReplicas: %v", err)
	}
	if len(entries) != 1 || entries[0].Replica != "replica-a" {
		t.Fatalf("unexpected replicas list: %+v", entries)
	}
	if len(entries[0].Purposes) != 1 || entries[0].Purposes[0] != "holder" {
		t.Fatalf("unexpected purposes: %+v", entries[0].Purposes)
	}
}

func TestKeyStoreDerivePurposeKeyRequiresExistingRoot(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	if _, _, err := ks.DerivePurposeKey("replica-a", "holder", false); err == nil {
		t.Fatalf("expected an error deriving from a nonexistent root")
	}
}

func TestKeyStoreLoadSeedPrefersInlineHex(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	seed := newTestSeed(t)
	hexSeed := ""
	for _, b := range seed {
		hexSeed += string("0123456789abcdef"[b>>4]) + string("0123456789abcdef"[b&0xf])
	}

	got, err := ks.LoadSeed(hexSeed, "", "", "")
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if string(got) != string(seed) {
		t.Fatalf("LoadSeed returned a different seed than supplied")
	}
}
