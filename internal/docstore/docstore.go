package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document exists under the requested id.
	ErrNotFound = errors.New("docstore: not found")
	// ErrExists is returned by Create when a document already holds the id.
	ErrExists = errors.New("docstore: already exists")
	// ErrUnavailable is returned when the backing store cannot complete the
	// operation. Callers treat it as transient and may re-issue the request.
	ErrUnavailable = errors.New("docstore: unavailable")
)

// Mutate transforms a document body into its replacement. Returning an error
// aborts the surrounding Apply without writing anything.
type Mutate func(body []byte) ([]byte, error)

// Store is the port onto the remote key-document service. One document per
// event, addressed by the event id; bodies are opaque JSON.
//
// Apply is a transactional read-modify-write: the mutate function observes
// the committed body and its result replaces it atomically with respect to
// other Apply calls on the same id. Adapters that cannot hold a transaction
// implement Apply as a bounded compare-and-swap retry loop.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Create(ctx context.Context, id string, body []byte) error
	Apply(ctx context.Context, id string, mutate Mutate) ([]byte, error)
	Close() error
}
