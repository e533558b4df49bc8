package suite

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Signing helpers for the Reference provider's four suites, mirroring
// keys/sign.go and catf/crypto.go's Sign* functions. The kernel itself
// never signs — these exist for test fixtures, vector generation, and the
// CLI, exactly as the teacher keeps signing helpers in a separate `keys`
// package from the verification path in `catf`.

// GenerateClassicKeypair returns a fresh Ed25519 keypair for the CLASSIC
// and HYBRID suites.
func GenerateClassicKeypair(r io.Reader) (pub ed25519.PublicKey, priv ed25519.PrivateKey, err error) {
	return ed25519.GenerateKey(r)
}

// SignClassic signs message for the CLASSIC suite.
func SignClassic(message []byte, priv ed25519.PrivateKey) []byte {
	return ed25519.Sign(priv, message)
}

// SignHybrid produces an 80-byte HYBRID signature: a 64-byte Ed25519
// signature over message, concatenated with the 16-byte BLAKE3-keyed
// companion tag Verify expects.
func SignHybrid(message []byte, priv ed25519.PrivateKey) []byte {
	sig := ed25519.Sign(priv, message)
	pub := priv.Public().(ed25519.PublicKey)
	tag := hybridCompanionTag(pub, message)
	return append(append([]byte(nil), sig...), tag...)
}

// GenerateFIPSKeypair returns a fresh ECDSA P-256 keypair for the FIPS
// suite, with the public key in uncompressed-point form.
func GenerateFIPSKeypair(r io.Reader) (pub []byte, priv *ecdsa.PrivateKey, err error) {
	priv, err = ecdsa.GenerateKey(elliptic.P256(), r)
	if err != nil {
		return nil, nil, err
	}
	return elliptic.Marshal(elliptic.P256(), priv.X, priv.Y), priv, nil
}

// SignFIPS signs message for the FIPS suite, over its SHA3-256 digest, and
// encodes the result as a fixed 64-byte r||s pair.
func SignFIPS(message []byte, priv *ecdsa.PrivateKey) ([]byte, error) {
	digest := sha3.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, ecdsaP256SigLen)
	r.FillBytes(out[:32])
	s.FillBytes(out[32:])
	return out, nil
}

// GeneratePQCKeypair returns a fresh Dilithium3 keypair for the PQC suite.
func GeneratePQCKeypair(r io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(r)
}

// SignPQC signs message for the PQC suite, over its SHA3-256 digest.
func SignPQC(message []byte, priv *mode3.PrivateKey) []byte {
	digest := sha3.Sum256(message)
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(priv, digest[:], sig)
	return sig
}

// PublicKeyBytes marshals a PQC public key to its canonical byte form.
func PublicKeyBytes(pub *mode3.PublicKey) ([]byte, error) {
	b, err := pub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("suite: marshal pqc public key: %w", err)
	}
	return b, nil
}
