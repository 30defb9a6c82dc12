package kelvin

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStorePutGetRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	digest, err := store.Put([]byte("hello kelvin"))
	require.NoError(t, err)

	got, err := store.Get(digest)
	require.NoError(t, err)
	require.Equal(t, []byte("hello kelvin"), got)
}

func TestStorePutIsContentAddressed(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	d1, err := store.Put([]byte("same bytes"))
	require.NoError(t, err)
	d2, err := store.Put([]byte("same bytes"))
	require.NoError(t, err)
	require.True(t, d1.Equal(d2))

	d3, err := store.Put([]byte("different bytes"))
	require.NoError(t, err)
	require.False(t, d1.Equal(d3))
}

func TestStoreGetMissing(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	digest, err := store.Put([]byte("present"))
	require.NoError(t, err)
	digest[0] ^= 0xFF

	_, err = store.Get(digest)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreGetDetectsCorruption(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	digest, err := store.Put([]byte("a blob that will be corrupted on disk"))
	require.NoError(t, err)

	path := store.blobPath(digest)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)/2] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	// Reopen so the read comes from disk rather than Put's warm cache
	// entry, which would otherwise mask the on-disk corruption.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	_, err = reopened.Get(digest)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestStoreRootPointer(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, ok, err := store.GetRoot("main")
	require.NoError(t, err)
	require.False(t, ok)

	digest, err := store.Put([]byte("tree bytes"))
	require.NoError(t, err)
	require.NoError(t, store.InsertRoot("main", digest))

	got, ok, err := store.GetRoot("main")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, digest.Equal(got))
}

func TestStoreReopenChecksHash(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := NewStore(dir, WithHash(Blake2b256{}))
	require.NoError(t, err)

	_, err = NewStore(dir, WithHash(Blake3{}))
	require.ErrorIs(t, err, ErrInvariant)
}

func TestStoreWithoutCompressionRoundTrips(t *testing.T) {
	t.Parallel()
	store, err := NewStore(t.TempDir(), WithCompression(false))
	require.NoError(t, err)

	digest, err := store.Put([]byte("plain bytes, no s2"))
	require.NoError(t, err)
	got, err := store.Get(digest)
	require.NoError(t, err)
	require.Equal(t, []byte("plain bytes, no s2"), got)
}
