package search

// UpdateRequest is one atomic write instruction produced by
// normalization. It carries no index or id of its own; the index stamps
// those in before submission.
type UpdateRequest struct {
	// Doc is the partial document to merge into the stored document.
	Doc map[string]any
	// Upsert is the full document to insert when none exists yet.
	// Ignored when DocAsUpsert is set.
	Upsert map[string]any
	// DocAsUpsert inserts Doc itself when the document is missing.
	DocAsUpsert bool
}

// Normalizer turns domain entities into write operations. One entity
// may normalize into several operations, for example a parent update
// plus nested sub-object updates.
type Normalizer[E any, K comparable] interface {
	// Normalize builds the write operations for a full entity.
	Normalize(entity E) ([]UpdateRequest, error)
	// NormalizeKey rebuilds the write operations from the key alone,
	// for reindex-by-reference flows.
	NormalizeKey(key K) ([]UpdateRequest, error)
	// NormalizeRaw builds the write operations for a nested sub-object
	// of the entity identified by key.
	NormalizeRaw(obj any, key K) ([]UpdateRequest, error)
}
