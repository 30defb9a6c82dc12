package kelvin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCardinalityCombine(t *testing.T) {
	t.Parallel()
	a := Cardinality(3)
	b := Cardinality(4)
	require.Equal(t, Cardinality(7), a.Combine(b))
	require.Equal(t, a.Combine(b), b.Combine(a), "cardinality sums commutatively")
}

func TestMaxKeyCombine(t *testing.T) {
	t.Parallel()
	a := MaxKey{Key: []byte("b")}
	b := MaxKey{Key: []byte("z")}
	require.Equal(t, b, a.Combine(b))
	require.Equal(t, b, b.Combine(a))
}

func TestMinMaxCombine(t *testing.T) {
	t.Parallel()
	a := MinMax{Min: []byte("m"), Max: []byte("m")}
	b := MinMax{Min: []byte("a"), Max: []byte("z")}
	combined := a.Combine(b).(MinMax)
	require.Equal(t, []byte("a"), combined.Min)
	require.Equal(t, []byte("z"), combined.Max)
}

func TestChecksumCombineIsNotCommutative(t *testing.T) {
	t.Parallel()
	derive := DeriveChecksum(func(leaf interface{}) []byte { return leaf.([]byte) })
	a := derive([]byte("left")).(Checksum)
	b := derive([]byte("right")).(Checksum)

	ab := a.Combine(b)
	ba := b.Combine(a)
	require.NotEqual(t, ab, ba, "Checksum.Combine must respect argument order")
}

func TestChecksumCombineIsAssociative(t *testing.T) {
	t.Parallel()
	derive := DeriveChecksum(func(leaf interface{}) []byte { return leaf.([]byte) })
	a := derive([]byte("a")).(Checksum)
	b := derive([]byte("b")).(Checksum)
	c := derive([]byte("c")).(Checksum)

	left := a.Combine(b).(Checksum).Combine(c)
	right := a.Combine(b.Combine(c))
	require.Equal(t, left, right)
}

func TestAnnotationContentRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	sink := NewSink(store)
	require.NoError(t, Cardinality(42).EncodeTo(sink))
	digest, err := sink.Finalize()
	require.NoError(t, err)

	source, err := OpenSource(store, digest)
	require.NoError(t, err)
	var got Cardinality
	require.NoError(t, got.DecodeFrom(source))
	require.Equal(t, Cardinality(42), got)
}
