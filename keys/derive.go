package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// FormatPublicKey renders an Ed25519 public key as the CLASSIC-suite holder
// string "classic:" + hex(pubkey). Capability.Holder itself carries the raw
// 32-byte public key that the hex part encodes.
func FormatPublicKey(pub ed25519.PublicKey) (string, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return "", fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l)
	}
	return "classic:" + hex.EncodeToString(pub), nil
}

// HolderStringFromSeed derives the Ed25519 keypair from seed and returns its
// holder string per FormatPublicKey.
func HolderStringFromSeed(seed []byte) (string, error) {
	if len(seed) != ed25519.SeedSize {
		return "", fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return FormatPublicKey(priv.Public().(ed25519.PublicKey))
}

// DerivePurposeSeed deterministically derives a purpose-scoped Ed25519 seed
// from a replica's root seed. The same (rootSeed, purpose) pair always
// derives the same subkey, so a holder or delegate key can be regenerated
// from the root seed alone rather than stored separately.
func DerivePurposeSeed(rootSeed []byte, purpose string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckPurpose(purpose); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("amulet-core-kms-lite-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("purpose:"))
	_, _ = h.Write([]byte(purpose))
	sum := h.Sum(nil)
	if len(sum) < ed25519.SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, ed25519.SeedSize)
	copy(out, sum[:ed25519.SeedSize])
	return out, nil
}
