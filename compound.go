package kelvin

// Compound is the contract a concrete collection ("node type") implements
// to participate in the substrate, per spec.md §4.5. The substrate only
// ever sees the sequence of Handles; arity, node-local fields (e.g. keys),
// and shape invariants (key ordering, bucket layout) are the concrete
// collection's own responsibility, exercised in its own Insert/Remove atop
// the substrate's mutation cursor (BranchMut).
type Compound interface {
	Content
	// Children returns this node's child-slot sequence. The slice aliases
	// the node's own storage — callers may take the address of an
	// element (e.g. to call Handle.Annotation or to mutate it in place
	// through BranchMut) but must not assume the slice stays valid across
	// a SetChildren call.
	Children() []Handle
	// SetChildren installs a new child-slot sequence, e.g. when Persist
	// replaces Owned handles with Persisted ones, or when BranchMut
	// installs a materialized child back into its parent.
	SetChildren([]Handle)
}

// NewCompound creates an empty instance of a concrete collection type,
// the substrate's equivalent of spec.md §4.5's "a default value (the
// empty collection)". A Scheme binds one NewCompound to the concrete type
// it manages, so restore() never needs the call site to know the concrete
// type — only the Scheme does.
type NewCompound func() Compound
