package hamt

import (
	"crypto/sha256"

	"github.com/kelvin-tree/kelvin"
)

// keyHash is the fixed-width digest a key's trie path is derived from.
// Using a cryptographic hash (rather than Go's randomized-seed maphash or
// a process-local hasher, as original_source's DefaultHasher effectively
// is) keeps a key's path deterministic across process restarts — the same
// key must always reselect the same slots a persisted tree was built
// with.
type keyHash [sha256.Size]byte

func hashKey(key []byte) keyHash {
	return sha256.Sum256(key)
}

// bitsForWidth returns log2(width), the number of hash bits select_slot
// consumes per level. width must be a power of two no greater than 256.
func bitsForWidth(width int) int {
	n := 0
	for (1 << n) < width {
		n++
	}
	return n
}

// selectSlot extracts the bits-wide field of hash starting at depth*bits,
// matching original_source's SlotSelect (HAMT uses width 16, 4 bits per
// level; NarrowHAMT uses width 4, 2 bits per level — this unifies both
// into one parameterized implementation).
func selectSlot(hash keyHash, depth, width int) int {
	bits := bitsForWidth(width)
	bitOffset := (depth * bits) % (8 * len(hash))
	byteIdx := bitOffset / 8
	bitInByte := bitOffset % 8
	shift := 8 - bitInByte - bits
	if shift >= 0 {
		mask := byte(1<<bits) - 1
		return int((hash[byteIdx] >> uint(shift)) & mask)
	}
	next := hash[(byteIdx+1)%len(hash)]
	combined := uint16(hash[byteIdx])<<8 | uint16(next)
	shift16 := 16 - bitInByte - bits
	mask := uint16(1<<bits) - 1
	return int((combined >> uint(shift16)) & mask)
}

// searchMethod is the kelvin.Method driving Get: at each depth it computes
// the slot the key's hash selects and always reports a match — whether
// that slot is a hit, a miss, or a path to descend further is for the
// caller to decide once it lands (the substrate's Method only knows
// where to go, not what a key is).
type searchMethod struct {
	hash  keyHash
	width int
	depth int
}

func (m *searchMethod) Select(children []kelvin.Handle) (int, bool) {
	slot := selectSlot(m.hash, m.depth, m.width)
	m.depth++
	return slot, true
}
