package suite

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func TestReferenceHashDeterministic(t *testing.T) {
	var p Reference
	a, err := p.Hash([]byte("data"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := p.Hash([]byte("data"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a != b {
		t.Fatalf("Hash not deterministic")
	}
}

func TestVerifyClassic(t *testing.T) {
	var p Reference
	pub, priv, err := GenerateClassicKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateClassicKeypair: %v", err)
	}
	msg := []byte("classic message")
	sig := SignClassic(msg, priv)

	ok, err := p.Verify(Classic, pub, msg, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid signature to verify")
	}

	ok, err = p.Verify(Classic, pub, []byte("tampered"), sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("expected tampered message to fail verification")
	}
}

func TestVerifyFIPS(t *testing.T) {
	var p Reference
	pub, priv, err := GenerateFIPSKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateFIPSKeypair: %v", err)
	}
	msg := []byte("fips message")
	sig, err := SignFIPS(msg, priv)
	if err != nil {
		t.Fatalf("SignFIPS: %v", err)
	}

	ok, err := p.Verify(FIPS, pub, msg, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid FIPS signature to verify")
	}
}

func TestVerifyPQC(t *testing.T) {
	var p Reference
	pub, priv, err := GeneratePQCKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GeneratePQCKeypair: %v", err)
	}
	pubBytes, err := PublicKeyBytes(pub)
	if err != nil {
		t.Fatalf("PublicKeyBytes: %v", err)
	}
	msg := []byte("pqc message")
	sig := SignPQC(msg, priv)

	ok, err := p.Verify(PQC, pubBytes, msg, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid PQC signature to verify")
	}
}

// TestVerifyHybrid_S2ValidLength exercises seed scenario S2: an 80-byte
// HYBRID signature that should verify.
func TestVerifyHybrid_S2ValidLength(t *testing.T) {
	var p Reference
	pub, priv, err := GenerateClassicKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateClassicKeypair: %v", err)
	}
	msg := []byte("hybrid message")
	sig := SignHybrid(msg, priv)
	if len(sig) != HybridSignatureLen {
		t.Fatalf("SignHybrid produced %d bytes, want %d", len(sig), HybridSignatureLen)
	}

	ok, err := p.Verify(Hybrid, pub, msg, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid 80-byte hybrid signature to verify")
	}
}

// TestVerifyHybrid_S3InvalidLength exercises seed scenario S3: a truncated
// 32-byte signature must be rejected as a well-formed-but-invalid
// signature, not a malformed-input error.
func TestVerifyHybrid_S3InvalidLength(t *testing.T) {
	var p Reference
	pub, _, err := GenerateClassicKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateClassicKeypair: %v", err)
	}
	msg := []byte("hybrid message")
	truncated := make([]byte, 32)

	ok, err := p.Verify(Hybrid, pub, msg, truncated)
	if err != nil {
		t.Fatalf("Verify returned an error for a malformed-length signature: %v", err)
	}
	if ok {
		t.Fatalf("expected a 32-byte signature to be rejected")
	}
}

func TestVerifyUnknownTagErrors(t *testing.T) {
	var p Reference
	_, err := p.Verify(99, []byte("x"), []byte("y"), []byte("z"))
	if err == nil {
		t.Fatalf("expected an error for an unrecognized suite tag")
	}
}

func TestVerifyClassicRejectsWrongKeyLength(t *testing.T) {
	var p Reference
	_, err := p.Verify(Classic, []byte("too-short"), []byte("msg"), make([]byte, ed25519.SignatureSize))
	if err == nil {
		t.Fatalf("expected an error for a malformed public key")
	}
}
