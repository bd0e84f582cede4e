package search

import "time"

// ManagementIndex is the shared auxiliary index holding one
// synchronization record per domain index, keyed by index name.
const (
	ManagementIndex = "sonarindex"
	ManagementType  = "index"
)

// IndexDefinition names one domain index and its document type. One
// immutable instance exists per entity type for the process lifetime.
type IndexDefinition struct {
	IndexName       string
	IndexType       string
	ManagementIndex string
	ManagementType  string
}

// NewIndexDefinition builds a definition backed by the shared
// management index.
func NewIndexDefinition(indexName, indexType string) IndexDefinition {
	return IndexDefinition{
		IndexName:       indexName,
		IndexType:       indexType,
		ManagementIndex: ManagementIndex,
		ManagementType:  ManagementType,
	}
}

// IndexStat is a point-in-time snapshot of one index, recomputed on
// demand and never persisted.
type IndexStat struct {
	DocumentCount int64
	LastUpdate    time.Time
}
