// Command vectorgen emits deterministic conformance vectors for the
// kernel's seed scenarios as canonical, hex-encoded frame bytes, mirroring
// the teacher pack's internal/tools/catf_vector_gen: fixed seed bytes
// stand in for randomness so the same vector comes out on every run.
package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"amulet.dev/core/cid"
	"amulet.dev/core/kernel"
	"amulet.dev/core/rights"
	"amulet.dev/core/suite"
)

func mustKeypair(seedByte byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = seedByte
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), priv
}

func mustCID(b []byte) cid.ID {
	id, err := cid.Compute(b)
	if err != nil {
		panic(err)
	}
	return id
}

func printFrame(name string, b []byte) {
	fmt.Printf("--- %s ---\n%s\n\n", name, hex.EncodeToString(b))
}

func main() {
	pub, priv := mustKeypair(0xA1)

	// S1: a minimal capability and the command it authorizes, both
	// signed under the CLASSIC suite, at lclock=1.
	cap := kernel.Capability{
		SuiteTag: suite.Classic,
		Holder:   pub,
		Target:   mustCID([]byte("s1-target")),
		Rights:   rights.Write,
		Nonce:    1,
	}
	cap.Signature = suite.SignClassic(cap.SignableBytes(), priv)
	cap.ID = mustCID(cap.CIDInput())
	printFrame("S1 capability", cap.Encode())

	cmd := kernel.Command{
		SuiteTag:   suite.Classic,
		Capability: cap.ID,
		Lclock:     1,
		Payload:    []byte("s1 minimal create"),
	}
	cmd.Signature = suite.SignClassic(cmd.SignableBytes(), priv)
	cmd.ID = mustCID(cmd.CIDInput())
	printFrame("S1 command", cmd.Encode())

	entity := kernel.Entity{Version: 0, Lclock: 1, Body: cmd.Payload}
	entity.ID = mustCID(entity.CIDInput())
	printFrame("S1 entity", entity.Encode())

	// S2/S3: HYBRID signatures at the fixed 80-byte length (valid) and a
	// deliberately truncated 32-byte stand-in (invalid).
	message := []byte("hybrid suite conformance message")
	validSig := suite.SignHybrid(message, priv)
	fmt.Printf("--- S2 hybrid signature (%d bytes, valid) ---\n%s\n\n", len(validSig), hex.EncodeToString(validSig))
	truncated := validSig[:32]
	fmt.Printf("--- S3 hybrid signature (%d bytes, invalid length) ---\n%s\n\n", len(truncated), hex.EncodeToString(truncated))

	// S7: an entity frame carrying bytes past its last known field, which
	// a conformant decoder must capture verbatim as Trailer and reproduce
	// on re-encode.
	tailed := kernel.Entity{Version: 0, Lclock: 1, Body: []byte("s7 body")}
	tailed.ID = mustCID(tailed.CIDInput())
	wire := append(tailed.Encode(), 0xDE, 0xAD, 0xBE, 0xEF)
	printFrame("S7 entity with unknown trailer", wire)
}
