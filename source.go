package kelvin

import "encoding/binary"

// Source wraps a Store read session positioned on a blob identified by a
// digest, exposing the inverse of Sink's primitive writes (spec.md §4.3).
// Decoding a Compound from a Source must produce Handles that are
// Persisted for every non-empty, non-leaf slot — the subtree digest is
// read but not followed, which is what enables lazy loading.
type Source struct {
	digest Digest
	buf    []byte
	pos    int
	store  *Store
}

// OpenSource fetches the blob named by digest from store and positions a
// Source at its start.
func OpenSource(store *Store, digest Digest) (*Source, error) {
	data, err := store.Get(digest)
	if err != nil {
		return nil, err
	}
	return &Source{digest: digest, buf: data, store: store}, nil
}

func (s *Source) readRaw(n int) ([]byte, error) {
	if n < 0 || s.pos+n > len(s.buf) {
		return nil, decodef("kelvin: truncated stream decoding digest %s", s.digest)
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// ReadUint64 reads a fixed-width little-endian integer.
func (s *Source) ReadUint64() (uint64, error) {
	b, err := s.readRaw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadBytes reads a length-prefixed byte slice.
func (s *Source) ReadBytes() ([]byte, error) {
	n, err := s.ReadUint64()
	if err != nil {
		return nil, err
	}
	b, err := s.readRaw(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// ReadDigest reads a fixed-width digest of the given size, raw.
func (s *Source) ReadDigest(size int) (Digest, error) {
	b, err := s.readRaw(size)
	if err != nil {
		return nil, err
	}
	out := make(Digest, len(b))
	copy(out, b)
	return out, nil
}

// ReadTag reads a single discriminant byte.
func (s *Source) ReadTag() (byte, error) {
	b, err := s.readRaw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Store returns the Store this Source is reading from, so Compound
// decoders can open further Sources for nested lookups if ever needed.
func (s *Source) Store() *Store {
	return s.store
}

// Done reports whether the Source has been read to its end. Decoders can
// use this to catch over-long or malformed encodings.
func (s *Source) Done() bool {
	return s.pos == len(s.buf)
}
