package hamt

import "github.com/kelvin-tree/kelvin"

// subInsert recurses down h (materializing Persisted/Empty slots as it
// goes), mirroring original_source's HAMTTrait::sub_insert: an Empty slot
// takes the new leaf directly; a Leaf slot with the same key is replaced;
// a Leaf slot with a different key is split into a fresh Node holding both
// entries at depth+1; anything else (a deeper Node) recurses. Returns the
// value displaced by a same-key replacement, if any.
func subInsert(scheme *kelvin.Scheme, codec *Codec, width int, h *kelvin.Handle, depth int, hash keyHash, entry Entry) ([]byte, error) {
	node, err := kelvin.Materialize(scheme, h)
	if err != nil {
		return nil, err
	}
	defer h.Invalidate()
	n := node.(*Node)
	slot := selectSlot(hash, depth, width)
	child := &n.children[slot]

	switch child.Kind() {
	case kelvin.KindEmpty:
		*child = kelvin.NewLeafHandle(entry)
		return nil, nil

	case kelvin.KindLeaf:
		leaf, _ := child.Leaf()
		existing := leaf.(Entry)
		if string(existing.KeyBytes) == string(entry.KeyBytes) {
			*child = kelvin.NewLeafHandle(entry)
			return existing.ValueBytes, nil
		}
		*child = kelvin.NewOwnedHandle(newNode(codec, width))
		if _, err := subInsert(scheme, codec, width, child, depth+1, hashKey(existing.KeyBytes), existing); err != nil {
			return nil, err
		}
		if _, err := subInsert(scheme, codec, width, child, depth+1, hash, entry); err != nil {
			return nil, err
		}
		return nil, nil

	default: // Owned or Persisted: a deeper Node
		return subInsert(scheme, codec, width, child, depth+1, hash, entry)
	}
}

// subRemove recurses down h looking for key, removing its leaf if found
// and collapsing the node it was found in back into a single Leaf handle
// in the parent's slot if doing so leaves exactly one entry behind
// (original_source's remove_singleton collapse, skipped at the root).
func subRemove(scheme *kelvin.Scheme, width int, h *kelvin.Handle, depth int, hash keyHash, key []byte) ([]byte, bool, error) {
	node, err := kelvin.Materialize(scheme, h)
	if err != nil {
		return nil, false, err
	}
	defer h.Invalidate()
	n := node.(*Node)
	slot := selectSlot(hash, depth, width)
	child := &n.children[slot]

	var removedValue []byte
	switch child.Kind() {
	case kelvin.KindEmpty:
		return nil, false, nil

	case kelvin.KindLeaf:
		leaf, _ := child.Leaf()
		existing := leaf.(Entry)
		if string(existing.KeyBytes) != string(key) {
			return nil, false, nil
		}
		*child = kelvin.EmptyHandle()
		removedValue = existing.ValueBytes

	default:
		val, removed, err := subRemove(scheme, width, child, depth+1, hash, key)
		if err != nil {
			return nil, false, err
		}
		if !removed {
			return nil, false, nil
		}
		removedValue = val
	}

	if depth > 0 {
		if leaf, ok := singletonLeaf(n); ok {
			*h = kelvin.NewLeafHandle(leaf)
		}
	}
	return removedValue, true, nil
}
