package datastore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counters for DataStore operations, in the same spirit as
// erigon-lib/kv's db_* counters: cheap, always-on, process-wide.
var (
	RowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obsstore_datastore_rows_written_total",
		Help: "Rows written via WriteRow/WriteRows, by table.",
	}, []string{"table"})

	RowsRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obsstore_datastore_rows_read_total",
		Help: "Rows returned by ReadRow/ReadRows, by table.",
	}, []string{"table"})

	RowsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obsstore_datastore_rows_deleted_total",
		Help: "Rows removed by DeleteRow/DeleteRowsWithPrefix/DeleteAllRows, by table.",
	}, []string{"table"})

	RowsSkippedCorrupt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obsstore_datastore_rows_skipped_corrupt_total",
		Help: "Rows skipped during a query because they failed the corruption-isolation checks, by table and reason.",
	}, []string{"table", "reason"})

	BackendRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obsstore_backend_retries_total",
		Help: "Retries issued by BackendDataStore after a transient RPC failure, by op.",
	}, []string{"op"})

	BackendOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "obsstore_backend_op_duration_seconds",
		Help:    "Latency of BackendDataStore operations, by op.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
