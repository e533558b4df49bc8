package kernel

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"amulet.dev/core/cid"
	"amulet.dev/core/clock"
	"amulet.dev/core/replicaid"
	"amulet.dev/core/rights"
	"amulet.dev/core/suite"
)

// frameWriter builds the canonical little-endian wire encoding described in
// spec §4.1: fixed-width integers, u32-length-prefixed variable blobs, a
// one-byte presence tag ahead of every optional field, and any trailer
// bytes appended verbatim as the last thing written.
type frameWriter struct {
	buf bytes.Buffer
}

func newFrameWriter() *frameWriter { return &frameWriter{} }

func (w *frameWriter) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *frameWriter) u16(v uint16) { var b [2]byte; binary.LittleEndian.PutUint16(b[:], v); w.buf.Write(b[:]) }
func (w *frameWriter) u32(v uint32) { var b [4]byte; binary.LittleEndian.PutUint32(b[:], v); w.buf.Write(b[:]) }
func (w *frameWriter) u64(v uint64) { var b [8]byte; binary.LittleEndian.PutUint64(b[:], v); w.buf.Write(b[:]) }

// fixed writes b verbatim with no length prefix, for fields whose width is
// implied by the type (a CID, a ReplicaID) or, for trailers, by "the rest
// of the buffer".
func (w *frameWriter) fixed(b []byte) { w.buf.Write(b) }

// blob writes a u32 length prefix followed by b, for variable-length fields
// whose end a decoder cannot otherwise infer.
func (w *frameWriter) blob(b []byte) {
	w.u32(uint32(len(b)))
	w.buf.Write(b)
}

func (w *frameWriter) presence(ok bool) {
	if ok {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *frameWriter) cidVal(id cid.ID)         { w.fixed(id.Bytes()) }
func (w *frameWriter) replicaVal(r replicaid.ID) { w.fixed(r.Bytes()) }

func (w *frameWriter) vclock(vc clock.VClock) {
	entries := vc.SortedEntries()
	w.u32(uint32(len(entries)))
	for _, e := range entries {
		w.replicaVal(e.Replica)
		w.u64(e.Lclock)
	}
}

func (w *frameWriter) bytes() []byte { return append([]byte(nil), w.buf.Bytes()...) }

// frameReader consumes a canonical frame produced by frameWriter, tracking
// its position so Remaining can hand back whatever bytes followed the last
// field this build knows how to interpret.
type frameReader struct {
	data []byte
	pos  int
}

func newFrameReader(data []byte) *frameReader { return &frameReader{data: data} }

func (r *frameReader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("kernel: frame truncated: need %d bytes at offset %d, have %d", n, r.pos, len(r.data))
	}
	return nil
}

func (r *frameReader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *frameReader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *frameReader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *frameReader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *frameReader) fixedN(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := append([]byte(nil), r.data[r.pos:r.pos+n]...)
	r.pos += n
	return b, nil
}

func (r *frameReader) blob() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	return r.fixedN(int(n))
}

func (r *frameReader) presence() (bool, error) {
	v, err := r.u8()
	if err != nil {
		return false, err
	}
	if v != 0 && v != 1 {
		return false, fmt.Errorf("kernel: invalid presence byte %d", v)
	}
	return v == 1, nil
}

func (r *frameReader) cidVal() (cid.ID, error) {
	b, err := r.fixedN(32)
	if err != nil {
		return cid.Nil, err
	}
	return cid.FromBytes(b)
}

func (r *frameReader) replicaVal() (replicaid.ID, error) {
	b, err := r.fixedN(16)
	if err != nil {
		return replicaid.Nil, err
	}
	return replicaid.FromBytes(b)
}

func (r *frameReader) vclockVal() (clock.VClock, error) {
	count, err := r.u32()
	if err != nil {
		return clock.VClock{}, err
	}
	entries := make([]clock.Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		rep, err := r.replicaVal()
		if err != nil {
			return clock.VClock{}, err
		}
		lc, err := r.u64()
		if err != nil {
			return clock.VClock{}, err
		}
		entries = append(entries, clock.Entry{Replica: rep, Lclock: lc})
	}
	return clock.FromEntries(entries), nil
}

// remaining returns every byte not yet consumed, the trailer-preservation
// mechanism required by spec §4.2: a build that doesn't recognize fields
// past the ones it knows about must still carry them verbatim.
func (r *frameReader) remaining() []byte {
	if r.pos >= len(r.data) {
		return nil
	}
	return append([]byte(nil), r.data[r.pos:]...)
}

func sortedCIDs(ids []cid.ID) []cid.ID {
	out := append([]cid.ID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].Bytes(), out[j].Bytes()) < 0 })
	return out
}

// ---- Entity ----

func encodeEntity(e Entity, includeID bool) []byte {
	w := newFrameWriter()
	if includeID {
		w.cidVal(e.ID)
	}
	w.u64(e.Version)
	w.u64(e.Lclock)
	w.presence(e.Parent != nil)
	if e.Parent != nil {
		w.cidVal(*e.Parent)
	}
	w.blob(e.Body)
	w.fixed(e.Trailer)
	return w.bytes()
}

// CIDInput returns the canonical bytes an entity's own CID is computed
// over: every known field except id.
func (e Entity) CIDInput() []byte { return encodeEntity(e, false) }

// Encode returns the full canonical wire form, including id.
func (e Entity) Encode() []byte { return encodeEntity(e, true) }

func DecodeEntity(data []byte) (Entity, error) {
	r := newFrameReader(data)
	var e Entity
	var err error
	if e.ID, err = r.cidVal(); err != nil {
		return Entity{}, err
	}
	if e.Version, err = r.u64(); err != nil {
		return Entity{}, err
	}
	if e.Lclock, err = r.u64(); err != nil {
		return Entity{}, err
	}
	hasParent, err := r.presence()
	if err != nil {
		return Entity{}, err
	}
	if hasParent {
		p, err := r.cidVal()
		if err != nil {
			return Entity{}, err
		}
		e.Parent = &p
	}
	if e.Body, err = r.blob(); err != nil {
		return Entity{}, err
	}
	e.Trailer = r.remaining()
	return e, nil
}

// ---- Capability ----

func encodeCapability(c Capability, includeID, includeSignature bool) []byte {
	w := newFrameWriter()
	if includeID {
		w.cidVal(c.ID)
	}
	w.u8(uint8(c.SuiteTag))
	w.blob(c.Holder)
	w.cidVal(c.Target)
	w.u32(uint32(c.Rights))
	w.u64(c.Nonce)
	w.presence(c.ExpiryLc != nil)
	if c.ExpiryLc != nil {
		w.u64(*c.ExpiryLc)
	}
	w.u16(c.Kind)
	if includeSignature {
		w.blob(c.Signature)
	}
	w.fixed(c.Trailer)
	return w.bytes()
}

// SignableBytes returns the bytes a signer/verifier signs: every known
// field except id and signature.
func (c Capability) SignableBytes() []byte { return encodeCapability(c, false, false) }

// CIDInput returns the bytes c's own CID is computed over: every known
// field except id, but including the now-final signature.
func (c Capability) CIDInput() []byte { return encodeCapability(c, false, true) }

// Encode returns the full canonical wire form.
func (c Capability) Encode() []byte { return encodeCapability(c, true, true) }

func DecodeCapability(data []byte) (Capability, error) {
	r := newFrameReader(data)
	var c Capability
	var err error
	if c.ID, err = r.cidVal(); err != nil {
		return Capability{}, err
	}
	tag, err := r.u8()
	if err != nil {
		return Capability{}, err
	}
	c.SuiteTag = suite.Tag(tag)
	if c.Holder, err = r.blob(); err != nil {
		return Capability{}, err
	}
	if c.Target, err = r.cidVal(); err != nil {
		return Capability{}, err
	}
	rightsVal, err := r.u32()
	if err != nil {
		return Capability{}, err
	}
	c.Rights = rights.Mask(rightsVal)
	if c.Nonce, err = r.u64(); err != nil {
		return Capability{}, err
	}
	hasExpiry, err := r.presence()
	if err != nil {
		return Capability{}, err
	}
	if hasExpiry {
		v, err := r.u64()
		if err != nil {
			return Capability{}, err
		}
		c.ExpiryLc = &v
	}
	if c.Kind, err = r.u16(); err != nil {
		return Capability{}, err
	}
	if c.Signature, err = r.blob(); err != nil {
		return Capability{}, err
	}
	c.Trailer = r.remaining()
	return c, nil
}

// ---- Command ----

func encodeCommand(c Command, includeID, includeSignature bool) []byte {
	w := newFrameWriter()
	if includeID {
		w.cidVal(c.ID)
	}
	w.u8(uint8(c.SuiteTag))
	w.replicaVal(c.Replica)
	w.cidVal(c.Capability)
	w.u64(c.Lclock)
	w.presence(c.VClock != nil)
	if c.VClock != nil {
		w.vclock(*c.VClock)
	}
	w.blob(c.Payload)
	if includeSignature {
		w.blob(c.Signature)
	}
	w.fixed(c.Trailer)
	return w.bytes()
}

// SignableBytes returns the bytes a command's signature is computed over:
// every known field except id and signature.
func (c Command) SignableBytes() []byte { return encodeCommand(c, false, false) }

// CIDInput returns the bytes c's own CID is computed over.
func (c Command) CIDInput() []byte { return encodeCommand(c, false, true) }

// Encode returns the full canonical wire form.
func (c Command) Encode() []byte { return encodeCommand(c, true, true) }

func DecodeCommand(data []byte) (Command, error) {
	r := newFrameReader(data)
	var c Command
	var err error
	if c.ID, err = r.cidVal(); err != nil {
		return Command{}, err
	}
	tag, err := r.u8()
	if err != nil {
		return Command{}, err
	}
	c.SuiteTag = suite.Tag(tag)
	if c.Replica, err = r.replicaVal(); err != nil {
		return Command{}, err
	}
	if c.Capability, err = r.cidVal(); err != nil {
		return Command{}, err
	}
	if c.Lclock, err = r.u64(); err != nil {
		return Command{}, err
	}
	hasVC, err := r.presence()
	if err != nil {
		return Command{}, err
	}
	if hasVC {
		vc, err := r.vclockVal()
		if err != nil {
			return Command{}, err
		}
		c.VClock = &vc
	}
	if c.Payload, err = r.blob(); err != nil {
		return Command{}, err
	}
	if c.Signature, err = r.blob(); err != nil {
		return Command{}, err
	}
	c.Trailer = r.remaining()
	return c, nil
}

// ---- Event ----

func encodeEvent(e Event, includeID bool) []byte {
	w := newFrameWriter()
	if includeID {
		w.cidVal(e.ID)
	}
	w.u8(uint8(e.SuiteTag))
	w.replicaVal(e.Replica)
	w.cidVal(e.CausedBy)
	w.u64(e.Lclock)
	w.vclock(e.VClock)
	newSorted := sortedCIDs(e.NewEntities)
	w.u32(uint32(len(newSorted)))
	for _, id := range newSorted {
		w.cidVal(id)
	}
	updSorted := sortedCIDs(e.UpdatedEntities)
	w.u32(uint32(len(updSorted)))
	for _, id := range updSorted {
		w.cidVal(id)
	}
	w.fixed(e.Reserved)
	return w.bytes()
}

// CIDInput returns the bytes an event's own CID is computed over.
func (e Event) CIDInput() []byte { return encodeEvent(e, false) }

// Encode returns the full canonical wire form.
func (e Event) Encode() []byte { return encodeEvent(e, true) }

func DecodeEvent(data []byte) (Event, error) {
	r := newFrameReader(data)
	var e Event
	var err error
	if e.ID, err = r.cidVal(); err != nil {
		return Event{}, err
	}
	tag, err := r.u8()
	if err != nil {
		return Event{}, err
	}
	e.SuiteTag = suite.Tag(tag)
	if e.Replica, err = r.replicaVal(); err != nil {
		return Event{}, err
	}
	if e.CausedBy, err = r.cidVal(); err != nil {
		return Event{}, err
	}
	if e.Lclock, err = r.u64(); err != nil {
		return Event{}, err
	}
	if e.VClock, err = r.vclockVal(); err != nil {
		return Event{}, err
	}
	newCount, err := r.u32()
	if err != nil {
		return Event{}, err
	}
	e.NewEntities = make([]cid.ID, 0, newCount)
	for i := uint32(0); i < newCount; i++ {
		id, err := r.cidVal()
		if err != nil {
			return Event{}, err
		}
		e.NewEntities = append(e.NewEntities, id)
	}
	updCount, err := r.u32()
	if err != nil {
		return Event{}, err
	}
	e.UpdatedEntities = make([]cid.ID, 0, updCount)
	for i := uint32(0); i < updCount; i++ {
		id, err := r.cidVal()
		if err != nil {
			return Event{}, err
		}
		e.UpdatedEntities = append(e.UpdatedEntities, id)
	}
	e.Reserved = r.remaining()
	return e, nil
}
