package search

import (
	"context"
	"fmt"
	"time"

	"github.com/luqq/sonarqube/pkg/logger"
	"github.com/luqq/sonarqube/pkg/metrics"
)

// EntityAdapter supplies the entity-specific behavior of an index:
// settings, field model, key rendering and document decoding. One
// implementation exists per entity type.
type EntityAdapter[D, E any, K comparable] interface {
	// GetKeyValue renders a key as the document id. Must be total,
	// deterministic and collision-free for the key space.
	GetKeyValue(key K) string
	// EntityKey extracts the key of an entity.
	EntityKey(entity E) K
	// GetIndexSettings returns the settings the index is created with.
	GetIndexSettings() map[string]any
	// MapProperties compiles the property mappings of the field model.
	MapProperties() (map[string]any, error)
	// MapKey returns the mapping of the document id.
	MapKey() map[string]any
	// ToDoc decodes a stored source into a document.
	ToDoc(source map[string]any) (D, error)
}

// BaseIndex maps one entity type onto one backend index. It bootstraps
// the index and its mapping, tracks the per-index synchronization
// timestamp in the shared management index, and performs keyed reads
// and bulk-batched writes.
//
// All operations are safe for concurrent use; the backend arbitrates
// document-level consistency. Bootstrap is idempotent so multiple
// process instances may start against the same cluster.
type BaseIndex[D, E any, K comparable] struct {
	def        IndexDefinition
	client     Client
	normalizer Normalizer[E, K]
	adapter    EntityAdapter[D, E, K]
	log        logger.Logger
}

func NewBaseIndex[D, E any, K comparable](
	def IndexDefinition,
	client Client,
	normalizer Normalizer[E, K],
	adapter EntityAdapter[D, E, K],
	log logger.Logger,
) *BaseIndex[D, E, K] {
	return &BaseIndex[D, E, K]{
		def:        def,
		client:     client,
		normalizer: normalizer,
		adapter:    adapter,
		log:        log.With("index", def.IndexName),
	}
}

func (b *BaseIndex[D, E, K]) GetIndexName() string {
	return b.def.IndexName
}

func (b *BaseIndex[D, E, K]) GetIndexType() string {
	return b.def.IndexType
}

// Start bootstraps the index. Any failure is a configuration error.
func (b *BaseIndex[D, E, K]) Start(ctx context.Context) error {
	return b.InitializeIndex(ctx)
}

func (b *BaseIndex[D, E, K]) initializeManagementIndex(ctx context.Context) error {
	b.log.Info("Setting up management index", "management_index", b.def.ManagementIndex)

	exists, err := b.client.IndexExists(ctx, b.def.ManagementIndex)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return b.client.CreateIndex(ctx, b.def.ManagementIndex, map[string]any{
		"mapper.dynamic":     true,
		"number_of_shards":   1,
		"number_of_replicas": 1,
	})
}

// InitializeIndex ensures the management index and the domain index
// exist, then applies the compiled mapping. The mapping is re-applied
// on every call with conflict tolerance so that adding fields to a
// pre-existing index succeeds. Safe to run repeatedly and from several
// process instances at once.
func (b *BaseIndex[D, E, K]) InitializeIndex(ctx context.Context) error {
	if err := b.initializeManagementIndex(ctx); err != nil {
		return &ConfigError{Index: b.def.IndexName, Err: err}
	}

	exists, err := b.client.IndexExists(ctx, b.def.IndexName)
	if err != nil {
		return &ConfigError{Index: b.def.IndexName, Err: err}
	}
	if !exists {
		b.log.Info("Setting up index", "type", b.def.IndexType)
		if err := b.client.CreateIndex(ctx, b.def.IndexName, b.adapter.GetIndexSettings()); err != nil {
			return &ConfigError{Index: b.def.IndexName, Err: err}
		}
	}

	mapping, err := b.MapDomain()
	if err != nil {
		return &ConfigError{Index: b.def.IndexName, Err: err}
	}

	b.log.Info("Updating mapping", "type", b.def.IndexType)
	if err := b.client.PutMapping(ctx, b.def.IndexName, mapping, true); err != nil {
		return &ConfigError{Index: b.def.IndexName, Err: err}
	}
	return nil
}

// MapDomain compiles the full document mapping for the index.
func (b *BaseIndex[D, E, K]) MapDomain() (map[string]any, error) {
	props, err := b.adapter.MapProperties()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"dynamic":    false,
		"_id":        b.adapter.MapKey(),
		"properties": props,
	}, nil
}

// GetIndexStat recomputes the document count and last synchronization
// time. Never cached.
func (b *BaseIndex[D, E, K]) GetIndexStat(ctx context.Context) (IndexStat, error) {
	count, err := b.client.CountAll(ctx, b.def.IndexName)
	if err != nil {
		return IndexStat{}, fmt.Errorf("count on index %s: %w", b.def.IndexName, err)
	}

	lastUpdate, err := b.GetLastSynchronization(ctx)
	if err != nil && err != ErrNeverSynchronized {
		return IndexStat{}, err
	}

	metrics.IndexDocuments.WithLabelValues(b.def.IndexName).Set(float64(count))
	return IndexStat{DocumentCount: count, LastUpdate: lastUpdate}, nil
}

// GetLastSynchronization reads the synchronization timestamp recorded
// for this index. Returns ErrNeverSynchronized when no record exists.
func (b *BaseIndex[D, E, K]) GetLastSynchronization(ctx context.Context) (time.Time, error) {
	source, found, err := b.client.GetDocument(ctx, b.def.ManagementIndex, b.def.IndexName, "")
	if err != nil {
		return time.Time{}, fmt.Errorf("get synchronization for index %s: %w", b.def.IndexName, err)
	}
	if !found {
		return time.Time{}, ErrNeverSynchronized
	}

	raw, ok := source["updatedAt"].(string)
	if !ok {
		return time.Time{}, ErrNeverSynchronized
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse synchronization time for index %s: %w", b.def.IndexName, err)
	}
	return t, nil
}

// SetLastSynchronization records t as the synchronization point, only
// when it is later than the stored value. Two writers racing on a
// stale read can lose an update, which is benign: the recorded value
// only needs to be monotonically non-decreasing.
func (b *BaseIndex[D, E, K]) SetLastSynchronization(ctx context.Context, t time.Time) error {
	current, err := b.GetLastSynchronization(ctx)
	if err != nil && err != ErrNeverSynchronized {
		return err
	}
	if !t.After(current) {
		return nil
	}

	b.log.Info("Updating synchronization time", "updated_at", t)
	err = b.client.UpdateDocument(ctx, b.def.ManagementIndex, b.def.IndexName, map[string]any{
		"updatedAt": t.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("set synchronization for index %s: %w", b.def.IndexName, err)
	}
	return nil
}

// GetByKey reads one document by key. A missing document yields
// found=false, not an error.
func (b *BaseIndex[D, E, K]) GetByKey(ctx context.Context, key K) (D, bool, error) {
	var zero D
	id := b.adapter.GetKeyValue(key)

	source, found, err := b.client.GetDocument(ctx, b.def.IndexName, id, id)
	if err != nil {
		return zero, false, fmt.Errorf("get _id %s from index %s: %w", id, b.def.IndexName, err)
	}
	if !found {
		return zero, false, nil
	}

	doc, err := b.adapter.ToDoc(source)
	if err != nil {
		return zero, false, fmt.Errorf("decode _id %s from index %s: %w", id, b.def.IndexName, err)
	}
	return doc, true, nil
}

// updateDocument stamps each write operation with the index and the
// key's id and routing, then submits them as one bulk request.
func (b *BaseIndex[D, E, K]) updateDocument(ctx context.Context, requests []UpdateRequest, key K) error {
	if len(requests) == 0 {
		return nil
	}
	id := b.adapter.GetKeyValue(key)
	b.log.Debug("UPDATE _id in index", "id", id)

	timer := time.Now()
	ops := make([]BulkOp, 0, len(requests))
	for _, request := range requests {
		ops = append(ops, BulkOp{
			Index:   b.def.IndexName,
			ID:      id,
			Routing: id,
			Update:  request,
		})
	}

	failed, err := b.client.Bulk(ctx, ops)
	metrics.IndexOpDuration.WithLabelValues(b.def.IndexName, "bulk").Observe(time.Since(timer).Seconds())
	if err != nil {
		metrics.BulkItemsTotal.WithLabelValues(b.def.IndexName, "error").Add(float64(len(ops)))
		return err
	}

	metrics.BulkItemsTotal.WithLabelValues(b.def.IndexName, "success").Add(float64(len(ops) - len(failed)))
	if len(failed) > 0 {
		metrics.BulkItemsTotal.WithLabelValues(b.def.IndexName, "error").Add(float64(len(failed)))
		return &BulkError{Index: b.def.IndexName, Items: failed}
	}
	return nil
}

// Upsert normalizes a raw object belonging to the entity identified by
// key and submits the resulting operations as one bulk batch. Partial
// item failures are returned as a BulkError.
func (b *BaseIndex[D, E, K]) Upsert(ctx context.Context, obj any, key K) error {
	requests, err := b.normalizer.NormalizeRaw(obj, key)
	if err != nil {
		return err
	}
	err = b.updateDocument(ctx, requests, key)
	metrics.IndexOpsTotal.WithLabelValues(b.def.IndexName, "upsert", metrics.StatusLabel(err)).Inc()
	return err
}

// UpsertByDto indexes a full entity. Failures are logged and returned;
// the caller may ignore the error so that one bad document does not
// abort a housekeeping batch.
func (b *BaseIndex[D, E, K]) UpsertByDto(ctx context.Context, entity E) error {
	key := b.adapter.EntityKey(entity)
	requests, err := b.normalizer.Normalize(entity)
	if err == nil {
		err = b.updateDocument(ctx, requests, key)
	}
	metrics.IndexOpsTotal.WithLabelValues(b.def.IndexName, "upsert", metrics.StatusLabel(err)).Inc()
	if err != nil {
		b.log.Error("Could not update document",
			"id", b.adapter.GetKeyValue(key), "error", err)
	}
	return err
}

// UpsertByKey rebuilds and indexes the entity from its key alone, for
// reindex-by-reference flows. Same error posture as UpsertByDto.
func (b *BaseIndex[D, E, K]) UpsertByKey(ctx context.Context, key K) error {
	requests, err := b.normalizer.NormalizeKey(key)
	if err == nil {
		err = b.updateDocument(ctx, requests, key)
	}
	metrics.IndexOpsTotal.WithLabelValues(b.def.IndexName, "upsert", metrics.StatusLabel(err)).Inc()
	if err != nil {
		b.log.Error("Could not update document",
			"id", b.adapter.GetKeyValue(key), "error", err)
	}
	return err
}

// Delete rejects every attempt to delete a nested object directly.
// Removing an embedded object is only possible through an upsert of
// its parent document.
func (b *BaseIndex[D, E, K]) Delete(obj any, key K) error {
	return ErrNestedDelete
}

func (b *BaseIndex[D, E, K]) deleteDocument(ctx context.Context, key K) error {
	id := b.adapter.GetKeyValue(key)
	b.log.Debug("DELETE _id in index", "id", id)

	err := b.client.DeleteDocument(ctx, b.def.IndexName, id)
	metrics.IndexOpsTotal.WithLabelValues(b.def.IndexName, "delete", metrics.StatusLabel(err)).Inc()
	return err
}

// DeleteByKey removes one document. Best effort: a backend failure is
// logged and returned, and callers running housekeeping loops are
// expected to ignore it.
func (b *BaseIndex[D, E, K]) DeleteByKey(ctx context.Context, key K) error {
	err := b.deleteDocument(ctx, key)
	if err != nil {
		b.log.Error("Could not delete document",
			"id", b.adapter.GetKeyValue(key), "error", err)
	}
	return err
}

// DeleteByDto removes the document of an entity. Same posture as
// DeleteByKey.
func (b *BaseIndex[D, E, K]) DeleteByDto(ctx context.Context, entity E) error {
	key := b.adapter.EntityKey(entity)
	err := b.deleteDocument(ctx, key)
	if err != nil {
		b.log.Error("Could not delete document",
			"id", b.adapter.GetKeyValue(key), "error", err)
	}
	return err
}

// Refresh forces just-written documents to become visible to reads.
// Costly; must stay off hot write paths.
func (b *BaseIndex[D, E, K]) Refresh(ctx context.Context) error {
	err := b.client.RefreshIndex(ctx, b.def.IndexName)
	metrics.IndexOpsTotal.WithLabelValues(b.def.IndexName, "refresh", metrics.StatusLabel(err)).Inc()
	if err != nil {
		return fmt.Errorf("refresh index %s: %w", b.def.IndexName, err)
	}
	return nil
}
