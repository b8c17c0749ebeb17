package crosscat

import (
	"errors"
	"fmt"

	"github.com/hupe1980/crosscat/blobstore"
)

var (
	// ErrClosed is returned when an operation runs on a closed engine.
	ErrClosed = errors.New("engine is closed")

	// ErrNoStore is returned when a checkpoint operation runs on an engine
	// built without a blob store.
	ErrNoStore = errors.New("no checkpoint store configured")

	// ErrNoCheckpoint is returned when a restore finds no committed
	// checkpoint in the store.
	ErrNoCheckpoint = errors.New("no committed checkpoint")
)

// RowStreamError indicates a row-stream record that could not be read or
// decoded.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type RowStreamError struct {
	Name   string
	Record uint64
	cause  error
}

func (e *RowStreamError) Error() string {
	return fmt.Sprintf("invalid row record %d in %s", e.Record, e.Name)
}

func (e *RowStreamError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Missing-checkpoint unification: the CURRENT pointer is the only blob
	// the facade resolves by name, so an absent blob means no commit.
	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNoCheckpoint, err)
	}

	return err
}
