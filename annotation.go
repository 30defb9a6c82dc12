package kelvin

import (
	"bytes"
	"crypto/sha256"
	"math/big"
)

// Annotation is an associative monoid (A, ⊕, derive) per spec.md §3/§4.6:
// derive lifts a leaf to an annotation (supplied by the concrete
// collection, not by this interface — see Scheme.Derive), and Combine is
// the ⊕ operation. Combine must be associative; it must not assume
// commutativity (spec.md §3, "Combination MUST be associative;
// commutativity is not required and MUST NOT be assumed by the
// substrate"). Annotation values are also Content, since Persisted Handles
// carry their subtree's annotation inline so searches can prune without
// loading (spec.md §4.6).
type Annotation interface {
	Content
	// Combine folds other into self, in that order: self is the
	// left-hand, already-seen accumulation and other is the right-hand
	// sibling being folded in. Implementations that are not commutative
	// must respect this order (see Checksum).
	Combine(other Annotation) Annotation
}

// Void is the identity annotation for Compounds that carry no aggregate,
// matching original_source/src/annotations/mod.rs's Void. It encodes to
// zero bytes.
type Void struct{}

func (Void) EncodeTo(*Sink) error        { return nil }
func (Void) DecodeFrom(*Source) error    { return nil }
func (Void) Combine(Annotation) Annotation { return Void{} }

// Cardinality counts leaves in a subtree.
type Cardinality uint64

func (c Cardinality) EncodeTo(sink *Sink) error {
	sink.WriteUint64(uint64(c))
	return nil
}

func (c *Cardinality) DecodeFrom(source *Source) error {
	n, err := source.ReadUint64()
	if err != nil {
		return err
	}
	*c = Cardinality(n)
	return nil
}

func (c Cardinality) Combine(other Annotation) Annotation {
	return c + other.(Cardinality)
}

// DeriveCardinality is a leaf-derivation function: every leaf counts once.
func DeriveCardinality(interface{}) Annotation { return Cardinality(1) }

// MaxKey tracks the largest key observed in a subtree. Key is assumed to
// be encoded such that byte-lex order matches the collection's intended
// key order (true of big-endian integers and of plain strings).
type MaxKey struct {
	Key []byte
}

func (m MaxKey) EncodeTo(sink *Sink) error {
	sink.WriteBytes(m.Key)
	return nil
}

func (m *MaxKey) DecodeFrom(source *Source) error {
	b, err := source.ReadBytes()
	if err != nil {
		return err
	}
	m.Key = b
	return nil
}

func (m MaxKey) Combine(other Annotation) Annotation {
	o := other.(MaxKey)
	if bytes.Compare(o.Key, m.Key) > 0 {
		return o
	}
	return m
}

// DeriveMaxKey builds a leaf-derivation function for a key type, given how
// to extract its byte-lex-ordered key encoding from a leaf.
func DeriveMaxKey(keyOf func(leaf interface{}) []byte) func(interface{}) Annotation {
	return func(leaf interface{}) Annotation {
		return MaxKey{Key: keyOf(leaf)}
	}
}

// MinMax tracks both the smallest and largest key observed in a subtree,
// under the same byte-lex assumption as MaxKey.
type MinMax struct {
	Min, Max []byte
}

func (m MinMax) EncodeTo(sink *Sink) error {
	sink.WriteBytes(m.Min)
	sink.WriteBytes(m.Max)
	return nil
}

func (m *MinMax) DecodeFrom(source *Source) error {
	min, err := source.ReadBytes()
	if err != nil {
		return err
	}
	max, err := source.ReadBytes()
	if err != nil {
		return err
	}
	m.Min, m.Max = min, max
	return nil
}

func (m MinMax) Combine(other Annotation) Annotation {
	o := other.(MinMax)
	result := m
	if bytes.Compare(o.Min, result.Min) < 0 {
		result.Min = o.Min
	}
	if bytes.Compare(o.Max, result.Max) > 0 {
		result.Max = o.Max
	}
	return result
}

// DeriveMinMax builds a leaf-derivation function analogous to DeriveMaxKey.
func DeriveMinMax(keyOf func(leaf interface{}) []byte) func(interface{}) Annotation {
	return func(leaf interface{}) Annotation {
		k := keyOf(leaf)
		return MinMax{Min: k, Max: k}
	}
}

// Checksum is a subtree-wide digest of its leaves, folded in traversal
// order. Combine is deliberately non-commutative — Combine(a, b) !=
// Combine(b, a) in general — to exercise spec.md §3's requirement that the
// substrate neither require nor assume commutativity, while still
// satisfying that same section's requirement that Combine be associative.
// It does so with a polynomial accumulator rather than a naive
// hash-of-concatenation: Hash is treated as an integer mod 2^256 and
// Combine(a, b) computes a.Hash*w^(b.Count) + b.Hash mod 2^256, where w is
// a fixed weight and Count is the number of leaves folded into a value so
// far. That recurrence re-associates cleanly under re-grouping (it is
// exactly Horner's rule over leaf hashes) while still depending on
// argument order through the exponent. Checksum always hashes with SHA-256
// internally, independent of the tree's configured ByteHash (see
// DESIGN.md's Open Question decisions), so changing the store's
// content-addressing hash never silently changes a Checksum-annotated
// value.
type Checksum struct {
	Hash  [sha256.Size]byte
	Count uint64
}

// checksumModulus is 2^256, the ring Checksum.Hash arithmetic is done in.
var checksumModulus = new(big.Int).Lsh(big.NewInt(1), 256)

// checksumWeight is a fixed, arbitrary odd element of that ring used as
// the Horner-rule multiplier in Checksum.Combine.
var checksumWeight = new(big.Int).SetBytes(func() []byte {
	sum := sha256.Sum256([]byte("kelvin-checksum-horner-weight"))
	return sum[:]
}())

func (c Checksum) EncodeTo(sink *Sink) error {
	sink.writeRaw(c.Hash[:])
	sink.WriteUint64(c.Count)
	return nil
}

func (c *Checksum) DecodeFrom(source *Source) error {
	b, err := source.readRaw(sha256.Size)
	if err != nil {
		return err
	}
	copy(c.Hash[:], b)
	n, err := source.ReadUint64()
	if err != nil {
		return err
	}
	c.Count = n
	return nil
}

func (c Checksum) Combine(other Annotation) Annotation {
	o := other.(Checksum)

	selfInt := new(big.Int).SetBytes(c.Hash[:])
	otherInt := new(big.Int).SetBytes(o.Hash[:])
	weightPow := new(big.Int).Exp(checksumWeight, new(big.Int).SetUint64(o.Count), checksumModulus)

	result := new(big.Int).Mul(selfInt, weightPow)
	result.Add(result, otherInt)
	result.Mod(result, checksumModulus)

	var out Checksum
	result.FillBytes(out.Hash[:])
	out.Count = c.Count + o.Count
	return out
}

// DeriveChecksum builds a leaf-derivation function hashing each leaf's
// canonical byte encoding.
func DeriveChecksum(bytesOf func(leaf interface{}) []byte) func(interface{}) Annotation {
	return func(leaf interface{}) Annotation {
		return Checksum{Hash: sha256.Sum256(bytesOf(leaf)), Count: 1}
	}
}
