package kelvin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, store *Store, encode func(*Sink) error, decode func(*Source) error) {
	t.Helper()
	sink := NewSink(store)
	require.NoError(t, encode(sink))
	digest, err := sink.Finalize()
	require.NoError(t, err)
	source, err := OpenSource(store, digest)
	require.NoError(t, err)
	require.NoError(t, decode(source))
	require.True(t, source.Done())
}

func TestPrimitiveContentRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	var gotU Uint64
	roundTrip(t, store,
		func(s *Sink) error { return Uint64(424242).EncodeTo(s) },
		func(s *Source) error { return gotU.DecodeFrom(s) },
	)
	require.Equal(t, Uint64(424242), gotU)

	var gotB Bytes
	roundTrip(t, store,
		func(s *Sink) error { return Bytes("payload").EncodeTo(s) },
		func(s *Source) error { return gotB.DecodeFrom(s) },
	)
	require.Equal(t, Bytes("payload"), gotB)

	var gotS String
	roundTrip(t, store,
		func(s *Sink) error { return String("kelvin").EncodeTo(s) },
		func(s *Source) error { return gotS.DecodeFrom(s) },
	)
	require.Equal(t, String("kelvin"), gotS)

	var gotBool Bool
	roundTrip(t, store,
		func(s *Sink) error { return Bool(true).EncodeTo(s) },
		func(s *Source) error { return gotBool.DecodeFrom(s) },
	)
	require.Equal(t, Bool(true), gotBool)
}

func TestEncodeSliceRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	items := []Uint64{1, 2, 3, 4, 5}

	sink := NewSink(store)
	require.NoError(t, EncodeSlice(sink, items))
	digest, err := sink.Finalize()
	require.NoError(t, err)

	source, err := OpenSource(store, digest)
	require.NoError(t, err)
	got, err := DecodeSlice(source, func() Uint64 { return 0 })
	require.NoError(t, err)
	require.Equal(t, items, got)
}

func TestEncodeOptionalRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	sink := NewSink(store)
	require.NoError(t, EncodeOptional[Uint64](sink, true, 99))
	require.NoError(t, EncodeOptional[Uint64](sink, false, 0))
	digest, err := sink.Finalize()
	require.NoError(t, err)

	source, err := OpenSource(store, digest)
	require.NoError(t, err)
	v, ok, err := DecodeOptional(source, func() Uint64 { return 0 })
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Uint64(99), v)

	v2, ok2, err := DecodeOptional(source, func() Uint64 { return 0 })
	require.NoError(t, err)
	require.False(t, ok2)
	require.Equal(t, Uint64(0), v2)
}
