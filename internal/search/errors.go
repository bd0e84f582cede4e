package search

import (
	"errors"
	"fmt"
)

var (
	// ErrNestedDelete is returned when a caller tries to delete a nested
	// object directly. A document store can only drop an embedded object
	// through a partial update of its parent, so the delete entry point
	// rejects every such call.
	ErrNestedDelete = errors.New("cannot delete nested object from index, use an upsert of the parent document")

	// ErrNeverSynchronized is returned by GetLastSynchronization when the
	// management index holds no record for the index yet.
	ErrNeverSynchronized = errors.New("index has never been synchronized")
)

// ConfigError reports a fatal index configuration problem: an unknown
// field type in the field model or a failed index bootstrap. It aborts
// startup and is never retried.
type ConfigError struct {
	Index string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for index %s: %v", e.Index, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// BulkError reports the items of a bulk request that the backend
// rejected. The remaining items of the batch were applied.
type BulkError struct {
	Index string
	Items []BulkItemError
}

// BulkItemError is the per-item failure detail of a bulk response.
type BulkItemError struct {
	ID     string
	Status int
	Reason string
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("bulk request on index %s: %d item(s) failed", e.Index, len(e.Items))
}
