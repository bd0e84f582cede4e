package search

import "context"

// Client is the boundary with the backend connection. The index layer
// only consumes these request/response primitives; transport concerns
// such as timeouts and fault handling live behind the implementation.
type Client interface {
	IndexExists(ctx context.Context, index string) (bool, error)
	// CreateIndex creates the index with the given settings. Creating an
	// index that already exists is not an error.
	CreateIndex(ctx context.Context, index string, settings map[string]any) error
	// PutMapping applies a mapping. With ignoreConflicts the backend
	// accepts backward-compatible evolution of a pre-existing mapping.
	PutMapping(ctx context.Context, index string, mapping map[string]any, ignoreConflicts bool) error
	// GetDocument returns the source of a document, or found=false when
	// no document has the id.
	GetDocument(ctx context.Context, index, id, routing string) (map[string]any, bool, error)
	// UpdateDocument applies a partial update, creating the document
	// from the partial when it is missing.
	UpdateDocument(ctx context.Context, index, id string, doc map[string]any) error
	// Bulk submits a batch of write operations in one request. Item
	// failures do not fail the batch; they are reported per item.
	Bulk(ctx context.Context, ops []BulkOp) ([]BulkItemError, error)
	DeleteDocument(ctx context.Context, index, id string) error
	// RefreshIndex makes previously written documents visible to reads.
	RefreshIndex(ctx context.Context, index string) error
	// CountAll returns the number of documents matching all.
	CountAll(ctx context.Context, index string) (int64, error)
}

// BulkOp is one fully addressed write operation of a bulk request.
type BulkOp struct {
	Index   string
	ID      string
	Routing string
	Update  UpdateRequest
}
