package kelvin

import (
	"bytes"
	"encoding/binary"
)

// Sink accumulates the bytes of one node's encoding and, on Finalize,
// writes them into a Store and reports the resulting digest — the node's
// identity, per spec.md §4.3. Sinks nest: when persisting a subtree, its
// Sink is finalized first, and the resulting digest is written into the
// parent Sink as a plain digest write (see Handle persistence in
// persist.go).
type Sink struct {
	store *Store
	buf   bytes.Buffer
}

// NewSink creates a Sink that will finalize into store.
func NewSink(store *Store) *Sink {
	return &Sink{store: store}
}

func (s *Sink) writeRaw(b []byte) {
	s.buf.Write(b)
}

// WriteUint64 writes a fixed-width little-endian integer (spec.md §6).
func (s *Sink) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	s.writeRaw(tmp[:])
}

// WriteBytes writes a length-prefixed byte slice: an unsigned 64-bit
// length followed by the bytes (spec.md §6).
func (s *Sink) WriteBytes(b []byte) {
	s.WriteUint64(uint64(len(b)))
	s.writeRaw(b)
}

// WriteDigest writes digest bytes raw, with no length prefix — the width
// is fixed by the Store's configured ByteHash (spec.md §6).
func (s *Sink) WriteDigest(d Digest) {
	s.writeRaw(d)
}

// WriteTag writes a single discriminant byte, e.g. a Handle's kind tag.
func (s *Sink) WriteTag(tag byte) {
	s.writeRaw([]byte{tag})
}

// Bytes returns the bytes accumulated so far, without finalizing.
func (s *Sink) Bytes() []byte {
	return s.buf.Bytes()
}

// Store returns the Store this Sink will finalize into.
func (s *Sink) Store() *Store {
	return s.store
}

// Finalize hashes and persists the accumulated bytes into the Store,
// returning the node's digest. A Sink must not be written to after
// Finalize.
func (s *Sink) Finalize() (Digest, error) {
	return s.store.Put(s.buf.Bytes())
}
