package hamt

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/kelvin-tree/kelvin"
)

// config collects Map construction options.
type config struct {
	width            int
	derive           func(Entry) kelvin.Annotation
	decodeAnnotation func(*kelvin.Source) (kelvin.Annotation, error)
}

// Option configures a Map at construction time.
type Option func(*config)

// WithWidth sets the trie's branching factor, which must be a power of
// two no greater than 256. Defaults to 16, matching original_source's
// HAMT (as opposed to its hand-duplicated 4-wide NarrowHAMT).
func WithWidth(width int) Option {
	return func(c *config) { c.width = width }
}

// WithCardinality annotates every subtree with its leaf count, enabling
// Map.Len without a full walk.
func WithCardinality() Option {
	return func(c *config) {
		c.derive = func(Entry) kelvin.Annotation { return kelvin.Cardinality(1) }
		c.decodeAnnotation = func(s *kelvin.Source) (kelvin.Annotation, error) {
			var n kelvin.Cardinality
			err := n.DecodeFrom(s)
			return n, err
		}
	}
}

// WithMaxKey annotates every subtree with the byte-lex-largest key it
// contains.
func WithMaxKey() Option {
	return func(c *config) {
		c.derive = func(e Entry) kelvin.Annotation { return kelvin.MaxKey{Key: e.KeyBytes} }
		c.decodeAnnotation = func(s *kelvin.Source) (kelvin.Annotation, error) {
			var m kelvin.MaxKey
			err := m.DecodeFrom(s)
			return m, err
		}
	}
}

// WithChecksum annotates every subtree with a non-commutative,
// traversal-order SHA-256 fold of its entries.
func WithChecksum() Option {
	return func(c *config) {
		c.derive = func(e Entry) kelvin.Annotation {
			buf := append(append([]byte{}, e.KeyBytes...), e.ValueBytes...)
			return kelvin.Checksum{Hash: sha256.Sum256(buf), Count: 1}
		}
		c.decodeAnnotation = func(s *kelvin.Source) (kelvin.Annotation, error) {
			var cs kelvin.Checksum
			err := cs.DecodeFrom(s)
			return cs, err
		}
	}
}

// Map is a persistent, content-addressed hash map built on a HAMT Node.
type Map struct {
	scheme *kelvin.Scheme
	codec  *Codec
	width  int
	root   kelvin.Handle
}

// NewMap creates an empty Map backed by store.
func NewMap(store *kelvin.Store, opts ...Option) *Map {
	cfg := config{width: 16}
	for _, opt := range opts {
		opt(&cfg)
	}

	codec := &Codec{}
	width := cfg.width
	newCompound := func() kelvin.Compound { return newNode(codec, width) }
	derive := func(leaf interface{}) kelvin.Annotation {
		if cfg.derive == nil {
			return kelvin.Void{}
		}
		return cfg.derive(leaf.(Entry))
	}
	scheme := kelvin.NewScheme(store, newCompound, derive)

	codec.DecodeLeaf = func(s *kelvin.Source) (Entry, error) {
		var e Entry
		err := e.DecodeFrom(s)
		return e, err
	}
	codec.DecodeAnnotation = cfg.decodeAnnotation

	return &Map{
		scheme: scheme,
		codec:  codec,
		width:  width,
		root:   kelvin.NewOwnedHandle(newCompound()),
	}
}

// OpenMap restores a Map from the named Root in store, or creates a fresh
// one if the pointer has never been set.
func OpenMap(store *kelvin.Store, name string, opts ...Option) (*Map, *kelvin.Root, error) {
	m := NewMap(store, opts...)
	root := kelvin.NewRoot(store, name, m.scheme)
	node, err := root.Restore()
	if err != nil {
		return nil, nil, err
	}
	m.root = kelvin.NewOwnedHandle(node)
	return m, root, nil
}

// Save persists the Map's current contents and repoints root at it.
func (m *Map) Save(root *kelvin.Root) (kelvin.Digest, error) {
	node, err := kelvin.Materialize(m.scheme, &m.root)
	if err != nil {
		return nil, err
	}
	return root.SetRoot(node)
}

// Get looks up key, reporting whether it was present.
func (m *Map) Get(key []byte) ([]byte, bool, error) {
	node, err := kelvin.Materialize(m.scheme, &m.root)
	if err != nil {
		return nil, false, err
	}
	method := &searchMethod{hash: hashKey(key), width: m.width}
	branch, err := kelvin.NewBranch(m.scheme, node, method)
	if err != nil {
		if errors.Is(err, kelvin.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	leaf, _ := branch.Leaf()
	entry := leaf.(Entry)
	if !bytes.Equal(entry.KeyBytes, key) {
		return nil, false, nil
	}
	return entry.ValueBytes, true, nil
}

// Insert sets key to value, returning the value it displaced, if any.
func (m *Map) Insert(key, value []byte) ([]byte, error) {
	return subInsert(m.scheme, m.codec, m.width, &m.root, 0, hashKey(key), Entry{KeyBytes: key, ValueBytes: value})
}

// Remove deletes key, reporting whether it was present and its value.
func (m *Map) Remove(key []byte) ([]byte, bool, error) {
	return subRemove(m.scheme, m.width, &m.root, 0, hashKey(key), key)
}

// Len returns the map's entry count. Requires the Map to have been built
// with WithCardinality.
func (m *Map) Len() (uint64, error) {
	if _, ok := m.scheme.Derive(Entry{}).(kelvin.Cardinality); !ok {
		return 0, fmt.Errorf("hamt: Len requires a Map built with WithCardinality")
	}
	a, err := m.root.Annotation(m.scheme)
	if err != nil {
		return 0, err
	}
	if a == nil {
		return 0, nil
	}
	c, ok := a.(kelvin.Cardinality)
	if !ok {
		return 0, fmt.Errorf("hamt: Len requires a Map built with WithCardinality")
	}
	return uint64(c), nil
}

// Iterator walks a Map's entries in Node slot order.
type Iterator struct {
	branch *kelvin.Branch
	method kelvin.Method
}

// Iterate returns an Iterator positioned before the Map's first entry.
func (m *Map) Iterate() (*Iterator, error) {
	node, err := kelvin.Materialize(m.scheme, &m.root)
	if err != nil {
		return nil, err
	}
	method := &kelvin.First{}
	branch, err := kelvin.NewBranch(m.scheme, node, method)
	if err != nil {
		if errors.Is(err, kelvin.ErrNotFound) {
			return &Iterator{method: method}, nil
		}
		return nil, err
	}
	return &Iterator{branch: branch, method: method}, nil
}

// Next returns the next entry, or ok=false once exhausted.
func (it *Iterator) Next() (Entry, bool, error) {
	if it.branch == nil {
		return Entry{}, false, nil
	}
	leaf, ok := it.branch.Leaf()
	if !ok {
		it.branch = nil
		return Entry{}, false, nil
	}
	entry := leaf.(Entry)
	more, err := it.branch.Next(it.method)
	if err != nil {
		return Entry{}, false, err
	}
	if !more {
		it.branch = nil
	}
	return entry, true, nil
}
