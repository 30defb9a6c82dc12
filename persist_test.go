package kelvin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildNestedPair() *pairNode {
	inner := &pairNode{}
	inner.children[0] = NewLeafHandle(Bytes("inner-a"))
	inner.children[1] = NewLeafHandle(Bytes("inner-b"))

	outer := &pairNode{}
	outer.children[0] = NewOwnedHandle(inner)
	outer.children[1] = NewLeafHandle(Bytes("outer-b"))
	return outer
}

// buildThreeLevelPair nests a pairNode three deep, with every slot at
// every depth populated, so a Method reused across levels has no slot it
// could accidentally skip by inheriting a sibling level's position.
func buildThreeLevelPair() *pairNode {
	innermost := &pairNode{}
	innermost.children[0] = NewLeafHandle(Bytes("depth2-a"))
	innermost.children[1] = NewLeafHandle(Bytes("depth2-b"))

	middle := &pairNode{}
	middle.children[0] = NewOwnedHandle(innermost)
	middle.children[1] = NewLeafHandle(Bytes("depth1-b"))

	outer := &pairNode{}
	outer.children[0] = NewOwnedHandle(middle)
	outer.children[1] = NewLeafHandle(Bytes("depth0-b"))
	return outer
}

func TestBranchWalksThreeLevelsInOrderWithoutCrossLevelPositionBleed(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	scheme := testScheme(store)

	outer := buildThreeLevelPair()
	method := &First{}
	branch, err := NewBranch(scheme, outer, method)
	require.NoError(t, err)

	want := []Bytes{"depth2-a", "depth2-b", "depth1-b", "depth0-b"}
	for i, w := range want {
		leaf, ok := branch.Leaf()
		require.True(t, ok, "leaf %d", i)
		require.Equal(t, w, leaf, "leaf %d", i)
		if i < len(want)-1 {
			more, err := branch.Next(method)
			require.NoError(t, err)
			require.True(t, more, "leaf %d", i)
		}
	}

	more, err := branch.Next(method)
	require.NoError(t, err)
	require.False(t, more, "walk should be exhausted after the last leaf")
}

func TestPersistThenRestoreRoundTrips(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	scheme := testScheme(store)

	outer := buildNestedPair()
	digest, annotation, err := Persist(scheme, outer)
	require.NoError(t, err)
	require.Equal(t, Cardinality(3), annotation)

	restored, err := Restore(scheme, digest)
	require.NoError(t, err)

	children := restored.Children()
	require.Equal(t, KindPersisted, children[0].Kind(), "restore must not eagerly follow nested subtrees")
	require.Equal(t, KindLeaf, children[1].Kind())

	innerDigest, _ := children[0].Digest()
	innerNode, err := Restore(scheme, innerDigest)
	require.NoError(t, err)
	require.Equal(t, KindLeaf, innerNode.Children()[0].Kind())
}

func TestPersistIsIdempotentByDigest(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	scheme := testScheme(store)

	digest1, _, err := Persist(scheme, buildNestedPair())
	require.NoError(t, err)
	digest2, _, err := Persist(scheme, buildNestedPair())
	require.NoError(t, err)
	require.True(t, digest1.Equal(digest2))
}

func TestPersistCollapsesEmptySubtreeRatherThanStoringIt(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	scheme := testScheme(store)

	outer := &pairNode{}
	outer.children[0] = NewOwnedHandle(&pairNode{}) // empty inner node
	outer.children[1] = NewLeafHandle(Bytes("only-leaf"))

	digest, annotation, err := Persist(scheme, outer)
	require.NoError(t, err)
	require.Equal(t, Cardinality(1), annotation)

	restored, err := Restore(scheme, digest)
	require.NoError(t, err)
	require.Equal(t, KindEmpty, restored.Children()[0].Kind())
}

func TestRootSetAndRestore(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	scheme := testScheme(store)
	root := NewRoot(store, "main", scheme)

	empty, err := root.Restore()
	require.NoError(t, err)
	require.Equal(t, KindEmpty, empty.Children()[0].Kind())

	outer := buildNestedPair()
	digest, err := root.SetRoot(outer)
	require.NoError(t, err)

	gotDigest, ok, err := root.Digest()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, digest.Equal(gotDigest))

	restored, err := root.Restore()
	require.NoError(t, err)
	a, err := NewOwnedHandle(restored).Annotation(scheme)
	require.NoError(t, err)
	require.Equal(t, Cardinality(3), a)
}

func TestBranchWalksToLeaf(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	scheme := testScheme(store)

	outer := buildNestedPair()
	method := &First{}
	branch, err := NewBranch(scheme, outer, method)
	require.NoError(t, err)

	leaf, ok := branch.Leaf()
	require.True(t, ok)
	require.Equal(t, Bytes("inner-a"), leaf)

	more, err := branch.Next(method)
	require.NoError(t, err)
	require.True(t, more)
	leaf, ok = branch.Leaf()
	require.True(t, ok)
	require.Equal(t, Bytes("inner-b"), leaf)

	more, err = branch.Next(method)
	require.NoError(t, err)
	require.True(t, more)
	leaf, ok = branch.Leaf()
	require.True(t, ok)
	require.Equal(t, Bytes("outer-b"), leaf)

	more, err = branch.Next(method)
	require.NoError(t, err)
	require.False(t, more)
}

func TestBranchWalksPersistedSubtreeWithoutMutatingIt(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	scheme := testScheme(store)

	outer := buildNestedPair()
	digest, _, err := Persist(scheme, outer)
	require.NoError(t, err)
	restored, err := Restore(scheme, digest)
	require.NoError(t, err)
	require.Equal(t, KindPersisted, restored.Children()[0].Kind())

	branch, err := NewBranch(scheme, restored, &First{})
	require.NoError(t, err)
	leaf, ok := branch.Leaf()
	require.True(t, ok)
	require.Equal(t, Bytes("inner-a"), leaf)

	// Walking through the Persisted child must not install anything back
	// into restored's own slot.
	require.Equal(t, KindPersisted, restored.Children()[0].Kind())
}

func TestBranchMutMaterializesAndInvalidatesSpine(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	scheme := testScheme(store)

	outer := buildNestedPair()
	digest, _, err := Persist(scheme, outer)
	require.NoError(t, err)
	restoredNode, err := Restore(scheme, digest)
	require.NoError(t, err)
	root := NewOwnedHandle(restoredNode)

	a, err := root.Annotation(scheme)
	require.NoError(t, err)
	require.Equal(t, Cardinality(3), a)

	method := &First{}
	bm, err := NewBranchMut(scheme, &root, method)
	require.NoError(t, err)
	node, _ := bm.Current()
	require.NotNil(t, node)
	require.Equal(t, KindLeaf, bm.Slot().Kind())

	*bm.Slot() = NewLeafHandle(Bytes("replaced"))
	bm.Close()

	a2, err := root.Annotation(scheme)
	require.NoError(t, err)
	require.Equal(t, Cardinality(3), a2, "replacing one leaf with another keeps cardinality the same")

	owned, ok := root.Owned()
	require.True(t, ok)
	require.Equal(t, KindOwned, owned.Children()[0].Kind(), "descended subtree was materialized from Persisted to Owned")
}
