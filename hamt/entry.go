package hamt

import "github.com/kelvin-tree/kelvin"

// Entry is the leaf value a Node's Handles carry: a raw key and value
// byte string. Callers encode their own key/value types to bytes before
// calling Map.Insert — the trie itself is type-agnostic, same as the
// underlying substrate.
type Entry struct {
	KeyBytes   []byte
	ValueBytes []byte
}

// Key returns the entry's raw key bytes.
func (e Entry) Key() []byte { return e.KeyBytes }

// EncodeTo implements kelvin.Content.
func (e Entry) EncodeTo(sink *kelvin.Sink) error {
	sink.WriteBytes(e.KeyBytes)
	sink.WriteBytes(e.ValueBytes)
	return nil
}

// DecodeFrom implements kelvin.Content.
func (e *Entry) DecodeFrom(source *kelvin.Source) error {
	k, err := source.ReadBytes()
	if err != nil {
		return err
	}
	v, err := source.ReadBytes()
	if err != nil {
		return err
	}
	e.KeyBytes, e.ValueBytes = k, v
	return nil
}
