package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKey is returned for a catalog name outside the enumerated set.
	ErrUnknownKey = errors.New("unknown catalog key")
	// ErrNotFound is returned for a gauge absent from the AWG table.
	ErrNotFound = errors.New("not found")
)

// LookupError carries the offending key of a failed lookup.
type LookupError struct {
	Kind string
	Key  string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Key, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
