package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup by id matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrInvalidPriority is returned when an item priority is outside [1,3].
	ErrInvalidPriority = errors.New("priority must be between 1 and 3")
)

// CommitError reports a failed durable commit. The buffered changes are
// retained and the committed state is untouched; the caller decides
// whether to retry or surface the failure.
type CommitError struct {
	Op  string
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit failed during %s: %v", e.Op, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
