package kelvin

import "fmt"

// Persist walks node in post-order, recursively persisting every Owned
// child before encoding node itself, and returns node's digest and folded
// annotation (spec.md §4.8). Persist is idempotent by digest: persisting a
// node whose children are already Persisted re-encodes identical bytes,
// which Store.Put recognizes as already written and does not duplicate
// (spec.md §8 property 6).
//
// A child subtree that folds to no annotation at all (every leaf beneath
// it vanished, or it was never populated) is collapsed to an Empty handle
// in its parent rather than referenced as Persisted. The recursive Persist
// call still writes that empty child's own blob to the Store; the parent
// just never points at it.
func Persist(scheme *Scheme, node Compound) (Digest, Annotation, error) {
	children := node.Children()
	next := make([]Handle, len(children))
	for i := range children {
		h := children[i]
		switch h.Kind() {
		case KindEmpty, KindLeaf, KindPersisted:
			next[i] = h
		case KindOwned:
			owned, _ := h.Owned()
			digest, annotation, err := Persist(scheme, owned)
			if err != nil {
				return nil, nil, fmt.Errorf("kelvin: persist child %d: %w", i, err)
			}
			if annotation == nil {
				next[i] = EmptyHandle()
			} else {
				next[i] = NewPersistedHandle(digest, annotation)
			}
		default:
			return nil, nil, invariantf("kelvin: handle has unknown kind %d", h.Kind())
		}
	}
	node.SetChildren(next)

	sink := NewSink(scheme.Store)
	if err := node.EncodeTo(sink); err != nil {
		return nil, nil, fmt.Errorf("kelvin: encode node: %w", err)
	}
	digest, err := sink.Finalize()
	if err != nil {
		return nil, nil, fmt.Errorf("kelvin: finalize node: %w", err)
	}
	annotation, err := FoldAnnotation(scheme, next)
	if err != nil {
		return nil, nil, err
	}
	return digest, annotation, nil
}

// Restore loads and decodes the node named by digest (spec.md §4.8).
// Decoding a node only ever reads its immediate Handle sequence — nested
// Owned/Persisted subtrees are not followed, which is what makes Restore
// lazy (spec.md §8 property 5). Every call decodes a fresh Compound: a
// cache of decoded nodes keyed by digest would have to hand back the same
// object to every caller restoring that digest, and a caller that
// materializes it into an Owned handle (see Materialize) then mutates it
// in place would corrupt every other reference still sharing it — so
// Store's own blob-level cache (store.go, via hashicorp/golang-lru) is the
// only cache in front of this path; it caches bytes, which are immutable,
// not decoded, mutable Compounds.
func Restore(scheme *Scheme, digest Digest) (Compound, error) {
	source, err := OpenSource(scheme.Store, digest)
	if err != nil {
		return nil, fmt.Errorf("kelvin: open %s: %w", digest, err)
	}
	node := scheme.New()
	if err := node.DecodeFrom(source); err != nil {
		return nil, fmt.Errorf("kelvin: decode %s: %w", digest, err)
	}
	if !source.Done() {
		return nil, decodef("kelvin: trailing bytes decoding %s", digest)
	}
	return node, nil
}

// EncodeHandles writes a sequence of child Handles in the standard wire
// form (spec.md §6): a tag byte per slot, followed by the leaf's own
// encoding (Leaf), the digest and annotation (Persisted), or nothing
// (Empty). It is a helper a concrete Compound's EncodeTo calls — the
// substrate has no Content instance for Handle itself, since encoding an
// Owned handle requires Persist to have run first.
func EncodeHandles(sink *Sink, children []Handle) error {
	for i := range children {
		h := children[i]
		switch h.Kind() {
		case KindEmpty:
			sink.WriteTag(tagEmpty)
		case KindLeaf:
			sink.WriteTag(tagLeaf)
			leaf, _ := h.Leaf()
			content, ok := leaf.(Content)
			if !ok {
				return invariantf("kelvin: leaf at slot %d does not implement Content", i)
			}
			if err := content.EncodeTo(sink); err != nil {
				return fmt.Errorf("kelvin: encode leaf %d: %w", i, err)
			}
		case KindPersisted:
			sink.WriteTag(tagPersisted)
			digest, _ := h.Digest()
			sink.WriteDigest(digest)
			annotation, err := h.Annotation(nil)
			if err != nil {
				return err
			}
			if annotation != nil {
				if err := annotation.EncodeTo(sink); err != nil {
					return fmt.Errorf("kelvin: encode annotation %d: %w", i, err)
				}
			}
		case KindOwned:
			return invariantf("kelvin: cannot encode an Owned handle at slot %d; call Persist first", i)
		default:
			return invariantf("kelvin: handle at slot %d has unknown kind %d", i, h.Kind())
		}
	}
	return nil
}

// DecodeHandles reads back a sequence of n child Handles written by
// EncodeHandles. decodeLeaf and decodeAnnotation are supplied by the
// concrete Compound, since only it knows its leaf and annotation wire
// types.
func DecodeHandles(source *Source, n int, decodeLeaf func(*Source) (interface{}, error), decodeAnnotation func(*Source) (Annotation, error)) ([]Handle, error) {
	children := make([]Handle, n)
	for i := 0; i < n; i++ {
		tag, err := source.ReadTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case tagEmpty:
			children[i] = EmptyHandle()
		case tagLeaf:
			leaf, err := decodeLeaf(source)
			if err != nil {
				return nil, fmt.Errorf("kelvin: decode leaf %d: %w", i, err)
			}
			children[i] = NewLeafHandle(leaf)
		case tagPersisted:
			digest, err := source.ReadDigest(source.Store().Hash().Size())
			if err != nil {
				return nil, err
			}
			annotation, err := decodeAnnotation(source)
			if err != nil {
				return nil, fmt.Errorf("kelvin: decode annotation %d: %w", i, err)
			}
			children[i] = NewPersistedHandle(digest, annotation)
		default:
			return nil, decodef("kelvin: unknown handle tag %d at slot %d", tag, i)
		}
	}
	return children, nil
}
