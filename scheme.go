package kelvin

// Scheme bundles the capability objects every substrate operation needs to
// act on one concrete collection type: the Store it persists into, the
// leaf-to-annotation deriver, and a factory for empty nodes. Passing this
// explicit bundle — rather than threading a self-referential generic type
// parameter through Handle and Compound — follows spec.md §9's design note
// to prefer composition and capability objects over generic-bound soup. It
// plays the role the teacher's Mast struct plays for an MST
// (jrhy/mast/lib.go's keyOrder, keyLayer, marshal, unmarshal and persist
// fields).
type Scheme struct {
	Store  *Store
	Derive func(leaf interface{}) Annotation
	New    NewCompound
}

// NewScheme builds a Scheme for a concrete collection type. derive may be
// nil, in which case every leaf is annotated with Void{} (no aggregate).
func NewScheme(store *Store, newCompound NewCompound, derive func(interface{}) Annotation) *Scheme {
	if derive == nil {
		derive = func(interface{}) Annotation { return Void{} }
	}
	return &Scheme{Store: store, Derive: derive, New: newCompound}
}
