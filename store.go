package kelvin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru"
	"github.com/klauspost/compress/s2"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
)

const manifestVersion = 1

// manifest is the one-time descriptor written at the root of a Store
// directory, so a reopened store can confirm it was configured with the
// same ByteHash it is about to be used with.
type manifest struct {
	Version     int    `yaml:"version"`
	Hash        string `yaml:"hash"`
	Compressed  bool   `yaml:"compressed"`
	DigestBytes int    `yaml:"digest_bytes"`
}

// storeConfig collects Store construction options.
type storeConfig struct {
	hash      ByteHash
	cacheSize int
	logger    *slog.Logger
	compress  bool
}

// Option configures a Store at construction time. Kelvin has no CLI or
// environment-variable surface (spec.md §6); this functional-options
// pattern is the idiomatic Go stand-in for the teacher's RemoteConfig
// struct (jrhy/mast/pub.go).
type Option func(*storeConfig)

// WithHash selects the ByteHash used to name and verify blobs. Defaults to
// Blake2b256.
func WithHash(h ByteHash) Option {
	return func(c *storeConfig) { c.hash = h }
}

// WithCacheSize bounds the number of decoded blobs held in the Store's
// in-memory read cache. Defaults to 4096.
func WithCacheSize(n int) Option {
	return func(c *storeConfig) { c.cacheSize = n }
}

// WithLogger attaches a structured logger for debug-level tracing of cache
// hits/misses and root updates. Absent a logger, the Store is silent.
func WithLogger(l *slog.Logger) Option {
	return func(c *storeConfig) { c.logger = l }
}

// WithCompression toggles transparent at-rest compression of blobs via s2
// (klauspost/compress). Digests are always computed over the canonical
// uncompressed encoding, so enabling or disabling this does not change any
// digest. Defaults to true.
func WithCompression(enabled bool) Option {
	return func(c *storeConfig) { c.compress = enabled }
}

// Store is a content-addressed byte-blob repository backed by a directory
// on disk, per spec.md §4.2. Multiple concurrent readers are safe; writes
// are serialized by an internal mutex (spec.md §5, "Writers are serialized
// per Store").
type Store struct {
	dir      string
	hash     ByteHash
	cache    *lru.ARCCache
	logger   *slog.Logger
	compress bool
	writeMu  sync.Mutex
}

// NewStore opens (creating if necessary) a content-addressed store rooted
// at dir, with the standard layout from spec.md §6:
//
//	dir/data/<first-byte-hex>/<full-digest-hex>
//	dir/roots/<name>
//	dir/tmp/
func NewStore(dir string, opts ...Option) (*Store, error) {
	cfg := storeConfig{
		hash:      Blake2b256{},
		cacheSize: 4096,
		compress:  true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, sub := range []string{"data", "roots", "tmp"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("kelvin: mkdir %s: %w", sub, err)
		}
	}

	cache, err := lru.NewARC(cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("kelvin: new cache: %w", err)
	}

	s := &Store{
		dir:      dir,
		hash:     cfg.hash,
		cache:    cache,
		logger:   cfg.logger,
		compress: cfg.compress,
	}

	if err := s.openManifest(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) manifestPath() string { return filepath.Join(s.dir, "MANIFEST.yaml") }

func (s *Store) openManifest() error {
	path := s.manifestPath()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		m := manifest{
			Version:     manifestVersion,
			Hash:        s.hash.Name(),
			Compressed:  s.compress,
			DigestBytes: s.hash.Size(),
		}
		out, err := yaml.Marshal(&m)
		if err != nil {
			return fmt.Errorf("kelvin: marshal manifest: %w", err)
		}
		return writeFileAtomic(s.dir, path, out)
	}
	if err != nil {
		return fmt.Errorf("kelvin: read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return decodef("kelvin: parse manifest %s", path)
	}
	if m.Hash != s.hash.Name() {
		return invariantf("kelvin: store %s was created with hash %q, opened with %q", s.dir, m.Hash, s.hash.Name())
	}
	s.compress = m.Compressed
	return nil
}

// blobPath returns the sharded on-disk path for a digest: the first byte
// of the digest (hex) names a subdirectory, bounding per-directory entry
// counts (spec.md §4.2).
func (s *Store) blobPath(d Digest) string {
	hexName := d.String()
	shard := "00"
	if len(hexName) >= 2 {
		shard = hexName[:2]
	}
	return filepath.Join(s.dir, "data", shard, hexName)
}

// Put hashes data, writes it to the store under its digest (skipping the
// write if already present — content-addressed stores are naturally
// deduplicating), and returns the digest.
func (s *Store) Put(data []byte) (Digest, error) {
	h := s.hash.New()
	h.Write(data)
	digest := Digest(h.Sum(nil))

	path := s.blobPath(digest)
	if _, err := os.Stat(path); err == nil {
		s.log("store.put.dedup", "digest", digest.String())
		return digest, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Re-check under the lock: another goroutine may have just written it.
	if _, err := os.Stat(path); err == nil {
		return digest, nil
	}

	payload := data
	if s.compress {
		payload = s2.Encode(nil, data)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("kelvin: mkdir shard: %w", err)
	}
	if err := writeFileAtomic(s.dir, path, payload); err != nil {
		return nil, err
	}
	s.cache.Add(digest.String(), data)
	s.log("store.put", "digest", digest.String(), "bytes", len(data))
	return digest, nil
}

// Get retrieves the blob named by digest, preferring the in-memory cache.
// Returns ErrNotFound if absent, ErrCorrupt if the bytes read do not
// re-hash to the requested digest.
func (s *Store) Get(digest Digest) ([]byte, error) {
	key := digest.String()
	if v, ok := s.cache.Get(key); ok {
		s.log("store.get.hit", "digest", key)
		return v.([]byte), nil
	}

	path := s.blobPath(digest)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, notFoundf("kelvin: blob %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("kelvin: read blob %s: %w", key, err)
	}

	data := raw
	if s.compress {
		data, err = s2.Decode(nil, raw)
		if err != nil {
			return nil, corruptf("kelvin: decompress blob %s", key)
		}
	}

	h := s.hash.New()
	h.Write(data)
	if !Digest(h.Sum(nil)).Equal(digest) {
		return nil, corruptf("kelvin: blob %s failed re-hash", key)
	}

	s.cache.Add(key, data)
	s.log("store.get.miss", "digest", key, "bytes", len(data))
	return data, nil
}

func (s *Store) rootPath(name string) string {
	return filepath.Join(s.dir, "roots", name)
}

// InsertRoot atomically updates the named pointer file to digest.
func (s *Store) InsertRoot(name string, digest Digest) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := writeFileAtomic(s.dir, s.rootPath(name), []byte(digest)); err != nil {
		return err
	}
	s.log("store.root.set", "name", name, "digest", digest.String())
	return nil
}

// GetRoot reads the current digest of the named pointer, if any.
func (s *Store) GetRoot(name string) (Digest, bool, error) {
	data, err := os.ReadFile(s.rootPath(name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kelvin: read root %s: %w", name, err)
	}
	return Digest(data), true, nil
}

// Hash returns the ByteHash this store was opened with.
func (s *Store) Hash() ByteHash { return s.hash }

func (s *Store) log(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// Stats reports approximate cache occupancy, useful for operational logs.
type Stats struct {
	CachedBlobs int
}

// String renders Stats in a human-readable form.
func (st Stats) String() string {
	return fmt.Sprintf("%s cached blobs", humanize.Comma(int64(st.CachedBlobs)))
}

// Stats returns a snapshot of the Store's cache occupancy.
func (s *Store) Stats() Stats {
	return Stats{CachedBlobs: s.cache.Len()}
}

// writeFileAtomic writes data to a temp file under dir/tmp and renames it
// into place, fsyncing the file and its containing directory so a crash
// leaves the final name either fully written or entirely absent
// (spec.md §4.9's crash-safety requirement).
func writeFileAtomic(storeDir, finalPath string, data []byte) error {
	tmpDir := filepath.Join(storeDir, "tmp")
	tmp, err := os.CreateTemp(tmpDir, "blob-*")
	if err != nil {
		return fmt.Errorf("kelvin: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("kelvin: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("kelvin: fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kelvin: close temp: %w", err)
	}
	if err := os.Rename(tmpName, finalPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kelvin: rename into place: %w", err)
	}
	return fsyncDir(filepath.Dir(finalPath))
}

// fsyncDir fsyncs a directory so a preceding rename within it is durable,
// per the standard "fsync the containing directory after rename" recipe.
func fsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("kelvin: open dir %s: %w", dir, err)
	}
	defer d.Close()
	if err := unix.Fsync(int(d.Fd())); err != nil {
		return fmt.Errorf("kelvin: fsync dir %s: %w", dir, err)
	}
	return nil
}
