package kelvin

// HandleKind discriminates the tagged union a Handle represents, per
// spec.md §3. The wire tag byte (spec.md §6) is 0=Empty, 1=Leaf,
// 2=Persisted; Owned has no wire representation, since persist.go always
// promotes it to Persisted before a node is encoded (spec.md §4.4,
// "Owned/Shared are compiled away").
type HandleKind uint8

const (
	KindEmpty HandleKind = iota
	KindLeaf
	KindOwned
	KindPersisted
)

const (
	tagEmpty     byte = 0
	tagLeaf      byte = 1
	tagPersisted byte = 2
)

// Handle is one child slot of a Compound: Empty, an inline Leaf, an
// exclusively-owned in-memory subtree (Owned — this implementation
// collapses the spec's optional Shared variant into Owned, per spec.md
// §9's explicit design note), or a content-addressed reference to a
// persisted subtree (Persisted), carrying that subtree's annotation so
// searches can prune without loading it.
//
// A Handle also memoizes its own annotation: Owned handles recompute it
// lazily (invalidated by mutation, forced by the next read); Leaf and
// Persisted handles derive or carry theirs directly.
type Handle struct {
	kind       HandleKind
	leaf       interface{}
	owned      Compound
	digest     Digest
	annotation Annotation // memo for Owned; authoritative value for Persisted
}

// EmptyHandle returns a Handle with no child.
func EmptyHandle() Handle {
	return Handle{kind: KindEmpty}
}

// NewLeafHandle wraps an inline leaf value.
func NewLeafHandle(leaf interface{}) Handle {
	return Handle{kind: KindLeaf, leaf: leaf}
}

// NewOwnedHandle wraps exclusive in-memory ownership of a child Compound.
func NewOwnedHandle(node Compound) Handle {
	return Handle{kind: KindOwned, owned: node}
}

// NewPersistedHandle wraps a reference to a subtree stored by digest, with
// its cached annotation.
func NewPersistedHandle(digest Digest, annotation Annotation) Handle {
	return Handle{kind: KindPersisted, digest: digest, annotation: annotation}
}

// Kind reports which variant the Handle holds.
func (h Handle) Kind() HandleKind { return h.kind }

// IsEmpty reports whether the Handle has no child.
func (h Handle) IsEmpty() bool { return h.kind == KindEmpty }

// Leaf returns the inline leaf value, if the Handle holds one.
func (h Handle) Leaf() (interface{}, bool) {
	if h.kind != KindLeaf {
		return nil, false
	}
	return h.leaf, true
}

// Owned returns the owned in-memory subtree, if the Handle holds one.
func (h Handle) Owned() (Compound, bool) {
	if h.kind != KindOwned {
		return nil, false
	}
	return h.owned, true
}

// Digest returns the referenced subtree's digest, if the Handle is
// Persisted.
func (h Handle) Digest() (Digest, bool) {
	if h.kind != KindPersisted {
		return nil, false
	}
	return h.digest, true
}

// Annotation returns the Handle's annotation, forcing recomputation over
// an Owned subtree's own Handles if the memo has been invalidated. Returns
// nil for an Empty handle (spec.md §3 allows an Option-shaped identity for
// the empty fold).
func (h *Handle) Annotation(scheme *Scheme) (Annotation, error) {
	switch h.kind {
	case KindEmpty:
		return nil, nil
	case KindLeaf:
		return scheme.Derive(h.leaf), nil
	case KindPersisted:
		return h.annotation, nil
	case KindOwned:
		if h.annotation != nil {
			return h.annotation, nil
		}
		a, err := FoldAnnotation(scheme, h.owned.Children())
		if err != nil {
			return nil, err
		}
		h.annotation = a
		return a, nil
	default:
		return nil, invariantf("kelvin: handle has unknown kind %d", h.kind)
	}
}

// Invalidate clears the memoized annotation of an Owned handle, so the
// next Annotation call recomputes it. Called along the spine whenever a
// BranchMut cursor mutates a descendant (spec.md §4.7).
func (h *Handle) Invalidate() {
	if h.kind == KindOwned {
		h.annotation = nil
	}
}

// FoldAnnotation folds the annotations of a sequence of child Handles with
// the Scheme's associative combine, skipping Empty handles, in slot order
// (spec.md §4.6, §8 property 4). Returns nil if every child is Empty.
func FoldAnnotation(scheme *Scheme, children []Handle) (Annotation, error) {
	var acc Annotation
	for i := range children {
		a, err := children[i].Annotation(scheme)
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		if acc == nil {
			acc = a
		} else {
			acc = acc.Combine(a)
		}
	}
	return acc, nil
}
