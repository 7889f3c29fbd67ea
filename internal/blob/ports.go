// Package blob defines the persistence port of the ledger: an opaque
// string store keyed by string with no schema.
package blob

import "context"

// Ports for persistence adapters.
type (
	Reader interface {
		// Get returns the stored value and whether the key exists.
		Get(ctx context.Context, key string) (value string, ok bool, err error)
	}

	Writer interface {
		Set(ctx context.Context, key, value string) error
	}

	Store interface {
		Reader
		Writer
	}
)
