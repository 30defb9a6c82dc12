// Package hamt implements a hash-array-mapped trie on top of the kelvin
// substrate: the one concrete Compound this module ships, usable as a
// persistent map keyed by arbitrary byte slices. Its shape and insert/
// remove semantics follow original_source/structures/hamt's HAMT/NarrowHAMT
// (DUSK NETWORK's kelvin crate), generalized here to a single type whose
// branching factor is a construction-time parameter instead of two
// hand-duplicated fixed-width types.
package hamt

import (
	"github.com/kelvin-tree/kelvin"
)

// Codec supplies the leaf and annotation wire formats a Node needs to
// decode itself — bound once per Map, since the substrate's Restore never
// tells a Compound what concrete leaf/annotation types it should expect.
type Codec struct {
	DecodeLeaf       func(*kelvin.Source) (Entry, error)
	DecodeAnnotation func(*kelvin.Source) (kelvin.Annotation, error)
}

// Node is one trie node: width child slots, each an Empty, Leaf(Entry), or
// a reference (Owned/Persisted) to a deeper Node.
type Node struct {
	codec    *Codec
	children []kelvin.Handle
}

func newNode(codec *Codec, width int) *Node {
	return &Node{codec: codec, children: make([]kelvin.Handle, width)}
}

// Children implements kelvin.Compound.
func (n *Node) Children() []kelvin.Handle { return n.children }

// SetChildren implements kelvin.Compound.
func (n *Node) SetChildren(children []kelvin.Handle) {
	copy(n.children, children)
}

// EncodeTo implements kelvin.Content via the substrate's standard Handle
// sequence encoding.
func (n *Node) EncodeTo(sink *kelvin.Sink) error {
	return kelvin.EncodeHandles(sink, n.children)
}

// DecodeFrom implements kelvin.Content, decoding exactly len(n.children)
// slots — the width is fixed by the Map that constructed this empty Node
// via its NewCompound factory, before DecodeFrom is ever called.
func (n *Node) DecodeFrom(source *kelvin.Source) error {
	decodeLeaf := func(s *kelvin.Source) (interface{}, error) {
		return n.codec.DecodeLeaf(s)
	}
	decodeAnnotation := n.codec.DecodeAnnotation
	if decodeAnnotation == nil {
		decodeAnnotation = func(*kelvin.Source) (kelvin.Annotation, error) {
			return kelvin.Void{}, nil
		}
	}
	children, err := kelvin.DecodeHandles(source, len(n.children), decodeLeaf, decodeAnnotation)
	if err != nil {
		return err
	}
	copy(n.children, children)
	return nil
}

// singletonLeaf reports the sole Entry n holds, if n has exactly one
// non-empty child and that child is a Leaf — the condition under which
// sub_remove collapses a node into its parent's slot directly, matching
// original_source's remove_singleton.
func singletonLeaf(n *Node) (Entry, bool) {
	var found Entry
	count := 0
	for i := range n.children {
		switch n.children[i].Kind() {
		case kelvin.KindEmpty:
		case kelvin.KindLeaf:
			count++
			if count > 1 {
				return Entry{}, false
			}
			leaf, _ := n.children[i].Leaf()
			found = leaf.(Entry)
		default:
			return Entry{}, false
		}
	}
	if count == 1 {
		return found, true
	}
	return Entry{}, false
}
