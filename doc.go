/*
Package kelvin provides a persistent, content-addressed, on-disk Merkle
tree toolkit. Kelvin is not itself a collection: it is the substrate a
collection (a map, a set, a trie) is built on top of — copy-on-write
mutation, content-addressed persistence, and an associative annotation
algebra, shared by any concrete node type that implements Compound.

Uses

- Efficient storage of multiple versions of a tree, sharing every
unmodified subtree between versions

- Content-addressed deduplication: identical subtrees, wherever they occur
and however they were built, persist to the same blob exactly once

- A search and iteration engine driven by a user-supplied Method, so a
concrete collection decides what "find" and "next" mean without the
substrate knowing what a key is

Handles and persistence

A Handle is one child slot: Empty, an inline Leaf, an exclusively-owned
in-memory subtree (Owned), or a reference to a subtree already written to
a Store (Persisted). Persist walks a tree post-order, promoting every
Owned handle it finds to Persisted as it goes; Restore is its inverse,
decoding one node's immediate Handle sequence without following what its
Persisted children point at — which is what makes restoring a root cheap
regardless of how large the tree beneath it is.

Annotations

Every Compound can carry an annotation algebra: a leaf-to-annotation
function and an associative combine, memoized per Handle and invalidated
along the spine on mutation. Annotations let a Method prune subtrees it
can prove hold nothing relevant without ever loading them — cardinality,
key ranges, and content checksums are all instances of the same algebra.

HAMT

The hamt subpackage is the one concrete Compound this module ships: a
hash-array-mapped trie keyed by an arbitrary byte-hashable key, usable as
a persistent map or set. Application code is expected to write further
Compound implementations of its own the same way.

Concurrency

A tree reached via a Root can be read concurrently with no locking. A
BranchMut cursor materializes and mutates its own private spine; nothing
it touches is visible to another reader until SetRoot is called, so
readers never observe a partially-built version.
*/
package kelvin
