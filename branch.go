package kelvin

// Branch is a read-only cursor positioned on one leaf of a tree, reached
// by repeatedly applying a Method from the root (spec.md §4.7). Descending
// through a Persisted handle materializes its subtree into a private,
// local Compound so further descent doesn't re-fetch it, but that
// materialization is never written back to the tree — a Branch never
// mutates what it walks.
type Branch struct {
	scheme *Scheme
	frames []branchFrame
}

type branchFrame struct {
	node Compound
	slot int
}

// NewBranch descends from root using method, stopping on the first Leaf
// it reaches. Returns ErrNotFound if no leaf matches.
func NewBranch(scheme *Scheme, root Compound, method Method) (*Branch, error) {
	b := &Branch{scheme: scheme}
	found, err := descendBranch(b, scheme, method, root)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFoundf("kelvin: method found no matching leaf")
	}
	return b, nil
}

// descendBranch pushes frames onto b while repeatedly applying method,
// materializing Persisted subtrees locally, until it lands on a Leaf
// (true) or runs out of matching slots (false).
func descendBranch(b *Branch, scheme *Scheme, method Method, node Compound) (bool, error) {
	for {
		pushLevel(method)
		children := node.Children()
		slot, ok := method.Select(children)
		if !ok {
			popLevel(method)
			return false, nil
		}
		b.frames = append(b.frames, branchFrame{node: node, slot: slot})
		h := children[slot]
		switch h.Kind() {
		case KindEmpty:
			b.frames = b.frames[:len(b.frames)-1]
			popLevel(method)
			return false, nil
		case KindLeaf:
			return true, nil
		case KindOwned:
			node, _ = h.Owned()
		case KindPersisted:
			digest, _ := h.Digest()
			child, err := Restore(scheme, digest)
			if err != nil {
				return false, err
			}
			node = child
		default:
			return false, invariantf("kelvin: handle has unknown kind %d", h.Kind())
		}
	}
}

// Leaf returns the leaf value the cursor currently rests on.
func (b *Branch) Leaf() (interface{}, bool) {
	if len(b.frames) == 0 {
		return nil, false
	}
	top := b.frames[len(b.frames)-1]
	return top.node.Children()[top.slot].Leaf()
}

// Next advances the cursor to the next leaf method selects, ascending and
// re-descending the spine as needed (spec.md §4.7's iteration protocol).
// Returns false, without error, once the walk is exhausted.
func (b *Branch) Next(method Method) (bool, error) {
	for len(b.frames) > 0 {
		top := b.frames[len(b.frames)-1]
		b.frames = b.frames[:len(b.frames)-1]

		children := top.node.Children()
		slot, ok := method.Select(children)
		if !ok {
			popLevel(method)
			continue
		}
		b.frames = append(b.frames, branchFrame{node: top.node, slot: slot})
		h := children[slot]
		switch h.Kind() {
		case KindLeaf:
			return true, nil
		case KindEmpty:
			continue
		case KindOwned:
			owned, _ := h.Owned()
			found, err := descendBranch(b, b.scheme, method, owned)
			if err != nil {
				return false, err
			}
			if found {
				return true, nil
			}
		case KindPersisted:
			digest, _ := h.Digest()
			child, err := Restore(b.scheme, digest)
			if err != nil {
				return false, err
			}
			found, err := descendBranch(b, b.scheme, method, child)
			if err != nil {
				return false, err
			}
			if found {
				return true, nil
			}
		}
	}
	return false, nil
}
