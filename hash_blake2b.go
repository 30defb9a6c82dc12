package kelvin

import (
	"hash"

	"github.com/minio/blake2b-simd"
)

// Blake2b256 is the ByteHash used by the teacher's Merkle Search Tree
// (github.com/jrhy/mast), producing 32-byte digests.
type Blake2b256 struct{}

func (Blake2b256) New() hash.Hash { return blake2b.New256() }
func (Blake2b256) Size() int      { return 32 }
func (Blake2b256) Name() string   { return "blake2b-256" }
