package kelvin

// pairNode is a minimal two-slot Compound used across the substrate's own
// tests, standing in for a real collection (see the hamt package for one).
// Its leaves are plain Bytes and its wire format is exactly the standard
// EncodeHandles/DecodeHandles helper pair.
type pairNode struct {
	children [2]Handle
}

func newPairNode() Compound {
	return &pairNode{}
}

func (p *pairNode) Children() []Handle { return p.children[:] }

func (p *pairNode) SetChildren(children []Handle) {
	copy(p.children[:], children)
}

func (p *pairNode) EncodeTo(sink *Sink) error {
	return EncodeHandles(sink, p.children[:])
}

func (p *pairNode) DecodeFrom(source *Source) error {
	children, err := DecodeHandles(source, 2,
		func(s *Source) (interface{}, error) {
			var b Bytes
			err := b.DecodeFrom(s)
			return b, err
		},
		func(s *Source) (Annotation, error) {
			var c Cardinality
			err := c.DecodeFrom(s)
			return c, err
		},
	)
	if err != nil {
		return err
	}
	copy(p.children[:], children)
	return nil
}

func testScheme(store *Store) *Scheme {
	return NewScheme(store, newPairNode, DeriveCardinality)
}
