package kelvin

import (
	"errors"
	"fmt"
)

// Sentinel error kinds surfaced by the substrate. Use errors.Is to test for
// them; concrete errors returned by the package wrap one of these with
// additional context via fmt.Errorf("...: %w", ...).
var (
	// ErrNotFound indicates a Store lookup for a referenced digest found
	// nothing. Fatal for the current operation; usually means corruption
	// or the wrong store directory.
	ErrNotFound = errors.New("kelvin: not found")

	// ErrCorrupt indicates bytes read from the store did not re-hash to
	// the digest under which they were requested.
	ErrCorrupt = errors.New("kelvin: corrupt blob")

	// ErrDecode indicates a Content decoder hit an unexpected tag or a
	// truncated stream.
	ErrDecode = errors.New("kelvin: decode error")

	// ErrInvariant indicates an internal consistency check failed, e.g. a
	// Handle of unknown kind, a leaf that does not implement Content, or an
	// Owned handle reaching the encoder before Persist. Those cases
	// indicate a bug, either in this package or in a Compound
	// implementation. NewStore also returns it when a store directory is
	// reopened with a different ByteHash than the one it was created with.
	ErrInvariant = errors.New("kelvin: invariant violated")
)

// notFoundf wraps ErrNotFound with context.
func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// corruptf wraps ErrCorrupt with context.
func corruptf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrCorrupt)...)
}

// decodef wraps ErrDecode with context.
func decodef(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrDecode)...)
}

// invariantf wraps ErrInvariant with context.
func invariantf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvariant)...)
}
