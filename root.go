package kelvin

import "fmt"

// Root is a durable, named pointer to a digest (spec.md §4.9): the one
// mutable piece of state in an otherwise immutable, content-addressed
// world. SetRoot persists a value and atomically swaps the pointer;
// Restore reads whatever digest is currently pointed at (or hands back a
// fresh empty collection if the pointer has never been set).
type Root struct {
	store  *Store
	name   string
	scheme *Scheme
}

// NewRoot binds a named root pointer in store to the concrete collection
// type described by scheme.
func NewRoot(store *Store, name string, scheme *Scheme) *Root {
	return &Root{store: store, name: name, scheme: scheme}
}

// SetRoot persists value and atomically repoints the named pointer file at
// its digest (spec.md §4.9's crash-safety guarantee: the pointer update is
// a single atomic rename, so a crash mid-update leaves the prior digest in
// place, never a half-written one).
func (r *Root) SetRoot(value Compound) (Digest, error) {
	digest, _, err := Persist(r.scheme, value)
	if err != nil {
		return nil, fmt.Errorf("kelvin: persist root %s: %w", r.name, err)
	}
	if err := r.store.InsertRoot(r.name, digest); err != nil {
		return nil, fmt.Errorf("kelvin: set root %s: %w", r.name, err)
	}
	return digest, nil
}

// Restore reads the current pointer and restores the Compound it names.
// If the pointer has never been set, Restore returns a fresh empty
// collection rather than an error.
func (r *Root) Restore() (Compound, error) {
	digest, ok, err := r.store.GetRoot(r.name)
	if err != nil {
		return nil, fmt.Errorf("kelvin: get root %s: %w", r.name, err)
	}
	if !ok {
		return r.scheme.New(), nil
	}
	node, err := Restore(r.scheme, digest)
	if err != nil {
		return nil, fmt.Errorf("kelvin: restore root %s: %w", r.name, err)
	}
	return node, nil
}

// Digest returns the root's current digest, if it has ever been set.
func (r *Root) Digest() (Digest, bool, error) {
	return r.store.GetRoot(r.name)
}

// Snapshot is an immutable reference to a persisted subtree by digest,
// independent of any named Root: repeated Restore calls against the same
// Snapshot yield values that encode identically (spec.md §8 property 7,
// referential transparency), since nothing about a Snapshot can change
// after construction.
type Snapshot struct {
	scheme *Scheme
	digest Digest
}

// NewSnapshot pins an immutable reference to digest under scheme.
func NewSnapshot(scheme *Scheme, digest Digest) Snapshot {
	return Snapshot{scheme: scheme, digest: digest}
}

// Digest returns the pinned digest.
func (s Snapshot) Digest() Digest { return s.digest }

// Restore decodes the Compound the snapshot points at.
func (s Snapshot) Restore() (Compound, error) {
	return Restore(s.scheme, s.digest)
}
