package kelvin

// Method is a stateful selector that drives descent through a tree,
// per spec.md §4.7. Given one node's child-slot sequence, Select returns
// the slot to descend into next, or ok=false if the search ends at this
// node (no further slot matches). A Method may carry a search key, a depth
// counter, or residual hash bits, and is threaded by reference through a
// single Branch or BranchMut descent; it is the substrate's one
// user-supplied extension point for search and iteration (spec.md §4.7,
// "the substrate does not know what a key is").
type Method interface {
	Select(children []Handle) (slot int, ok bool)
}

// LevelTracker is an optional interface a Method may implement when its
// Select state (like First's scan position) is relative to whichever node
// it is currently applied to, rather than global across an entire
// descent. The same Method instance is threaded through every depth of a
// Branch or BranchMut walk, so without this a Method that just keeps one
// running offset has that offset leak from a parent's slot index into its
// child's — PushLevel is called immediately before the first Select
// against a node never visited before, resetting per-depth state, and
// PopLevel is called when that node is abandoned for good (no more
// matching slots, or the walk has moved permanently past it).
type LevelTracker interface {
	PushLevel()
	PopLevel()
}

func pushLevel(method Method) {
	if lt, ok := method.(LevelTracker); ok {
		lt.PushLevel()
	}
}

func popLevel(method Method) {
	if lt, ok := method.(LevelTracker); ok {
		lt.PopLevel()
	}
}

// First is the canonical iteration Method (spec.md §4.7's definition of
// iteration order): it selects the left-most non-empty slot at or after
// its current position, and advances past it each time Select returns a
// match, so repeated use walks every leaf in slot order. It keeps one scan
// position per depth (see LevelTracker), reset to zero on every node it
// has not yet visited, rather than a single position shared across all
// depths.
type First struct {
	positions []int
}

// PushLevel implements LevelTracker.
func (m *First) PushLevel() {
	m.positions = append(m.positions, 0)
}

// PopLevel implements LevelTracker.
func (m *First) PopLevel() {
	m.positions = m.positions[:len(m.positions)-1]
}

// Select implements Method.
func (m *First) Select(children []Handle) (int, bool) {
	if len(m.positions) == 0 {
		m.positions = append(m.positions, 0)
	}
	top := len(m.positions) - 1
	for i := m.positions[top]; i < len(children); i++ {
		if !children[i].IsEmpty() {
			m.positions[top] = i + 1
			return i, true
		}
	}
	return 0, false
}
