package kernel

import (
	"bytes"
	"reflect"
	"testing"

	"amulet.dev/core/cid"
	"amulet.dev/core/clock"
	"amulet.dev/core/replicaid"
	"amulet.dev/core/rights"
	"amulet.dev/core/suite"
)

func TestEntityRoundTrip(t *testing.T) {
	parent := mustCID(t, []byte("parent"))
	e := Entity{Version: 3, Lclock: 7, Parent: &parent, Body: []byte("a small body")}
	e.ID = mustCID(t, e.CIDInput())

	got, err := DecodeEntity(e.Encode())
	if err != nil {
		t.Fatalf("DecodeEntity: %v", err)
	}
	if !reflect.DeepEqual(got, e) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, e)
	}
}

func TestEntityRoundTrip_PreservesUnknownTrailer(t *testing.T) {
	e := Entity{Version: 1, Lclock: 1, Body: []byte("body")}
	e.ID = mustCID(t, e.CIDInput())
	wire := e.Encode()

	// Simulate a future field this build doesn't know how to interpret.
	wire = append(wire, 0xDE, 0xAD, 0xBE, 0xEF)

	got, err := DecodeEntity(wire)
	if err != nil {
		t.Fatalf("DecodeEntity: %v", err)
	}
	if !bytes.Equal(got.Trailer, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Fatalf("trailer not preserved: got %x", got.Trailer)
	}
	if !bytes.Equal(got.Encode(), wire) {
		t.Fatalf("re-encoding did not reproduce the original bytes bit-for-bit")
	}
}

func TestCapabilityRoundTrip(t *testing.T) {
	expiry := uint64(42)
	c := Capability{
		SuiteTag: suite.Classic,
		Holder:   []byte("pubkey-bytes"),
		Target:   mustCID(t, []byte("target")),
		Rights:   rights.Write,
		Nonce:    9,
		ExpiryLc: &expiry,
		Kind:     1,
	}
	c.Signature = []byte("fake-signature-bytes")
	c.ID = mustCID(t, c.CIDInput())

	got, err := DecodeCapability(c.Encode())
	if err != nil {
		t.Fatalf("DecodeCapability: %v", err)
	}
	if got.ID != c.ID || got.Nonce != c.Nonce || *got.ExpiryLc != *c.ExpiryLc || got.Rights != c.Rights {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, c)
	}
	if !bytes.Equal(got.Signature, c.Signature) || !bytes.Equal(got.Holder, c.Holder) {
		t.Fatalf("variable-length fields mismatch")
	}
}

func TestCapabilitySignableBytesExcludeIDAndSignature(t *testing.T) {
	c := Capability{SuiteTag: suite.Classic, Holder: []byte("h"), Target: mustCID(t, []byte("t")), Rights: rights.Read}
	before := c.SignableBytes()
	c.Signature = []byte("anything")
	c.ID = mustCID(t, []byte("irrelevant"))
	after := c.SignableBytes()
	if !bytes.Equal(before, after) {
		t.Fatalf("SignableBytes changed after setting id/signature")
	}
}

func TestCommandRoundTrip_WithVClock(t *testing.T) {
	self := replicaid.New()
	vc := clock.NewVClock().Set(self, 5)

	c := Command{
		SuiteTag:   suite.Hybrid,
		Replica:    self,
		Capability: mustCID(t, []byte("cap")),
		Lclock:     5,
		VClock:     &vc,
		Payload:    []byte("payload bytes"),
		Signature:  []byte("sig bytes"),
	}
	c.ID = mustCID(t, c.CIDInput())

	got, err := DecodeCommand(c.Encode())
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if got.ID != c.ID || got.Lclock != c.Lclock || got.Replica != c.Replica {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, c)
	}
	if got.VClock == nil || got.VClock.Get(self) != 5 {
		t.Fatalf("vclock not preserved: %+v", got.VClock)
	}
}

func TestCommandRoundTrip_NilVClock(t *testing.T) {
	c := Command{SuiteTag: suite.Classic, Replica: replicaid.New(), Capability: mustCID(t, []byte("cap")), Lclock: 1, Payload: []byte("p"), Signature: []byte("s")}
	c.ID = mustCID(t, c.CIDInput())

	got, err := DecodeCommand(c.Encode())
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if got.VClock != nil {
		t.Fatalf("expected nil VClock, got %+v", got.VClock)
	}
}

func TestEventRoundTrip_SortsEntityLists(t *testing.T) {
	a := mustCID(t, []byte("a"))
	b := mustCID(t, []byte("b"))
	self := replicaid.New()
	vc := clock.NewVClock().Set(self, 1)

	base := Event{SuiteTag: suite.Classic, Replica: self, CausedBy: mustCID(t, []byte("cmd")), Lclock: 1, VClock: vc}

	forward := base
	forward.NewEntities = []cid.ID{a, b}
	reversed := base
	reversed.NewEntities = []cid.ID{b, a}

	if !bytes.Equal(forward.CIDInput(), reversed.CIDInput()) {
		t.Fatalf("two events differing only in entity-list order produced different canonical bytes")
	}

	forward.ID = mustCID(t, forward.CIDInput())
	got, err := DecodeEvent(forward.Encode())
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if len(got.NewEntities) != 2 {
		t.Fatalf("expected 2 new entities, got %d", len(got.NewEntities))
	}
}
