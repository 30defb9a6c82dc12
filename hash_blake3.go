package kelvin

import (
	"hash"

	"github.com/zeebo/blake3"
)

// Blake3 is a second ByteHash implementation, exercising a different digest
// construction (tree hash, not Merkle-Damgard) than Blake2b256. Useful for
// stores that favor blake3's throughput on large blobs.
type Blake3 struct{}

func (Blake3) New() hash.Hash { return blake3.New() }
func (Blake3) Size() int      { return 32 }
func (Blake3) Name() string   { return "blake3-256" }
