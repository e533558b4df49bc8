package suite

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Reference is the kernel's reference crypto provider, grounded on
// catf/crypto.go's suite-tag dispatch and on original_source's
// crypto/{classic,fips}.rs suite-to-algorithm assignment:
//
//   - CLASSIC: BLAKE3-256 hash, Ed25519 signatures.
//   - FIPS:    SHA3-256 hash, ECDSA P-256 signatures (fixed r||s encoding).
//   - PQC:     SHA3-256 hash, Dilithium3 signatures (circl mode3).
//   - HYBRID:  dual-factor — a 64-byte Ed25519 signature over the message,
//     concatenated with a 16-byte BLAKE3-keyed companion tag, fixed at 80
//     bytes total. See SPEC_FULL.md's DOMAIN STACK section for why this
//     repo resolves HYBRID's layout this way.
type Reference struct{}

// HybridSignatureLen is the fixed byte length of a valid HYBRID signature:
// a 64-byte Ed25519 signature plus a 16-byte companion tag.
const HybridSignatureLen = ed25519.SignatureSize + 16

// Hash returns the BLAKE3-256 digest of data, the CLASSIC suite's hash
// function and the provider's general-purpose Hash per the Provider
// interface.
func (Reference) Hash(data []byte) ([32]byte, error) {
	return blake3.Sum256(data), nil
}

// Verify checks signature against message under pubkey for the given
// suite. It returns (false, nil) for cryptographically invalid signatures,
// including signatures of the wrong length, and a non-nil error only for
// malformed public keys or an unrecognized tag.
func (Reference) Verify(tag Tag, pubkey, message, signature []byte) (bool, error) {
	switch tag {
	case Classic:
		return verifyEd25519(pubkey, message, signature)
	case FIPS:
		return verifyECDSAP256(pubkey, message, signature)
	case PQC:
		return verifyDilithium3(pubkey, message, signature)
	case Hybrid:
		return verifyHybrid(pubkey, message, signature)
	default:
		return false, fmt.Errorf("suite: unrecognized tag %d", tag)
	}
}

func verifyEd25519(pubkey, message, signature []byte) (bool, error) {
	if len(pubkey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("suite: classic: invalid public key length %d", len(pubkey))
	}
	if len(signature) != ed25519.SignatureSize {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), message, signature), nil
}

// ecdsaP256SigLen is the fixed r||s encoding length this provider uses for
// FIPS-suite signatures: two 32-byte big-endian coordinates.
const ecdsaP256SigLen = 64

func verifyECDSAP256(pubkey, message, signature []byte) (bool, error) {
	if len(pubkey) != 65 || pubkey[0] != 0x04 {
		return false, fmt.Errorf("suite: fips: expected 65-byte uncompressed public key")
	}
	if len(signature) != ecdsaP256SigLen {
		return false, nil
	}
	curve := elliptic.P256()
	x, y := elliptic.Unmarshal(curve, pubkey)
	if x == nil {
		return false, fmt.Errorf("suite: fips: invalid public key point")
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	digest := sha3.Sum256(message)
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	return ecdsa.Verify(pub, digest[:], r, s), nil
}

func verifyDilithium3(pubkey, message, signature []byte) (bool, error) {
	if len(pubkey) != mode3.PublicKeySize {
		return false, fmt.Errorf("suite: pqc: invalid public key length %d", len(pubkey))
	}
	if len(signature) != mode3.SignatureSize {
		return false, nil
	}
	var pk mode3.PublicKey
	if err := pk.UnmarshalBinary(pubkey); err != nil {
		return false, fmt.Errorf("suite: pqc: %w", err)
	}
	digest := sha3.Sum256(message)
	return mode3.Verify(&pk, digest[:], signature), nil
}

func verifyHybrid(pubkey, message, signature []byte) (bool, error) {
	if len(pubkey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("suite: hybrid: invalid public key length %d", len(pubkey))
	}
	if len(signature) != HybridSignatureLen {
		return false, nil
	}
	sig, tag := signature[:ed25519.SignatureSize], signature[ed25519.SignatureSize:]
	if !ed25519.Verify(ed25519.PublicKey(pubkey), message, sig) {
		return false, nil
	}
	expected := hybridCompanionTag(pubkey, message)
	return constantTimeEqual(tag, expected), nil
}

func hybridCompanionTag(pubkey, message []byte) []byte {
	key := blake3.Sum256(pubkey)
	h := blake3.New(32, key[:])
	h.Write(message)
	return h.Sum(nil)[:16]
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
