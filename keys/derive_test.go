package keys

import (
	"crypto/ed25519"
	"strings"
	"testing"
)

func TestDerivePurposeSeedDeterministic(t *testing.T) {
	root := make([]byte, ed25519.SeedSize)
	for i := range root {
		root[i] = byte(i)
	}

	a, err := DerivePurposeSeed(root, "holder")
	if err != nil {
		t.Fatalf("DerivePurposeSeed: %v", err)
	}
	b, err := DerivePurposeSeed(root, "holder")
	if err != nil {
		t.Fatalf("DerivePurposeSeed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DerivePurposeSeed(root, "delegate")
	if err != nil {
		t.Fatalf("DerivePurposeSeed: %v", err)
	}
	if string(a) == string(c) {
		t.Fatalf("expected different purposes to derive different seeds")
	}
}

func TestHolderStringFromSeedFormat(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = 0x42
	}
	holder, err := HolderStringFromSeed(seed)
	if err != nil {
		t.Fatalf("HolderStringFromSeed: %v", err)
	}
	if !strings.HasPrefix(holder, "classic:") {
		t.Fatalf("expected classic prefix, got %q", holder)
	}
	hexPart := strings.TrimPrefix(holder, "classic:")
	if len(hexPart) != ed25519.PublicKeySize*2 {
		t.Fatalf("expected %d hex chars, got %d", ed25519.PublicKeySize*2, len(hexPart))
	}
}
