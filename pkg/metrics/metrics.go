package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Index layer metrics, labelled by index name and operation.
var (
	IndexOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "index_operations_total",
			Help: "Total number of index operations",
		},
		[]string{"index", "operation", "status"},
	)

	IndexOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "index_operation_duration_seconds",
			Help:    "Index operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"index", "operation"},
	)

	BulkItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "index_bulk_items_total",
			Help: "Total number of items submitted in bulk requests",
		},
		[]string{"index", "status"},
	)

	IndexDocuments = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "index_documents",
			Help: "Number of documents in an index at the last stat query",
		},
		[]string{"index"},
	)
)

// StatusLabel renders an error as a metric status label.
func StatusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
