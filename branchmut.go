package kelvin

// BranchMut is a copy-on-write mutation cursor (spec.md §4.7): descending
// through it materializes every Persisted handle on the spine into an
// Owned, in-memory Compound and installs it back into its parent, so the
// caller can mutate the landed-on slot directly. Nodes off the spine are
// left untouched and keep sharing storage with whatever prior version
// referenced them (spec.md §8 property 3, structural sharing). Close
// invalidates the memoized annotation of every Handle on the spine, so the
// next read recomputes it from the bottom up.
type BranchMut struct {
	scheme *Scheme
	frames []branchMutFrame
}

type branchMutFrame struct {
	// parentHandle is the Handle that points at node — either a slot in
	// an enclosing node, or the external root Handle the cursor was
	// opened on. Invalidating it on Close clears node's contribution to
	// its own parent's memoized annotation.
	parentHandle *Handle
	node         Compound
	slot         int // -1 if method found no matching slot at node
}

// Materialize ensures h holds an Owned Compound, restoring a Persisted
// subtree or allocating a fresh node for an Empty slot, and returns it.
// Exported so a concrete Compound's own Insert/Remove can materialize
// handles directly when it recurses by hand instead of through a
// BranchMut (see the hamt package).
func Materialize(scheme *Scheme, h *Handle) (Compound, error) {
	switch h.Kind() {
	case KindOwned:
		node, _ := h.Owned()
		return node, nil
	case KindPersisted:
		digest, _ := h.Digest()
		node, err := Restore(scheme, digest)
		if err != nil {
			return nil, err
		}
		*h = NewOwnedHandle(node)
		return node, nil
	case KindEmpty:
		node := scheme.New()
		*h = NewOwnedHandle(node)
		return node, nil
	case KindLeaf:
		return nil, invariantf("kelvin: cannot materialize a Leaf handle as a node")
	default:
		return nil, invariantf("kelvin: handle has unknown kind %d", h.Kind())
	}
}

// NewBranchMut opens a mutation cursor rooted at root, descending via
// method until it lands on an Empty or Leaf slot, or method finds no
// matching slot at the deepest node reached.
func NewBranchMut(scheme *Scheme, root *Handle, method Method) (*BranchMut, error) {
	bm := &BranchMut{scheme: scheme}
	node, err := Materialize(scheme, root)
	if err != nil {
		return nil, err
	}
	parent := root
	for {
		pushLevel(method)
		children := node.Children()
		slot, ok := method.Select(children)
		if !ok {
			bm.frames = append(bm.frames, branchMutFrame{parentHandle: parent, node: node, slot: -1})
			return bm, nil
		}
		h := &children[slot]
		switch h.Kind() {
		case KindEmpty, KindLeaf:
			bm.frames = append(bm.frames, branchMutFrame{parentHandle: parent, node: node, slot: slot})
			return bm, nil
		default:
			child, err := Materialize(scheme, h)
			if err != nil {
				return nil, err
			}
			bm.frames = append(bm.frames, branchMutFrame{parentHandle: parent, node: node, slot: slot})
			parent = h
			node = child
		}
	}
}

// Current returns the node the cursor is resting in and the slot it
// landed on (-1 if method found no matching slot there).
func (bm *BranchMut) Current() (Compound, int) {
	top := bm.frames[len(bm.frames)-1]
	return top.node, top.slot
}

// Slot returns a pointer to the landed-on Handle, for in-place mutation —
// installing a Leaf, an Owned subnode, or clearing it back to Empty.
func (bm *BranchMut) Slot() *Handle {
	top := bm.frames[len(bm.frames)-1]
	children := top.node.Children()
	return &children[top.slot]
}

// Push descends one level further into whatever is now installed at the
// current slot (typically an Owned subnode the caller just created after
// a split), continuing the same method. Use after installing, through
// Slot, a new Owned handle the cursor should continue into.
func (bm *BranchMut) Push(method Method) error {
	top := &bm.frames[len(bm.frames)-1]
	children := top.node.Children()
	h := &children[top.slot]
	node, err := Materialize(bm.scheme, h)
	if err != nil {
		return err
	}
	pushLevel(method)
	grandchildren := node.Children()
	slot, ok := method.Select(grandchildren)
	if !ok {
		bm.frames = append(bm.frames, branchMutFrame{parentHandle: h, node: node, slot: -1})
		return nil
	}
	bm.frames = append(bm.frames, branchMutFrame{parentHandle: h, node: node, slot: slot})
	return nil
}

// Close releases the cursor, invalidating the memoized annotation of every
// Handle from the mutated slot back up to the root, so the next
// Handle.Annotation call recomputes the fold (spec.md §4.7). Nodes off the
// spine were never touched and are not invalidated.
func (bm *BranchMut) Close() {
	for i := len(bm.frames) - 1; i >= 0; i-- {
		if bm.frames[i].parentHandle != nil {
			bm.frames[i].parentHandle.Invalidate()
		}
	}
}
