// Package datastore defines the generic wide-column key-value abstraction
// that ObservationStore is built on, plus the two implementations of it:
// MemoryDataStore (tests) and BackendDataStore (production, remote).
package datastore

import "context"

// Status is the bit-exact error enum shared by every DataStore and
// ObservationStore operation. It flows by value, never via panics.
type Status int

const (
	StatusOK                 Status = 0
	StatusInvalidArguments   Status = 1
	StatusPreconditionFailed Status = 2
	StatusAlreadyExists      Status = 3
	StatusNotFound           Status = 4
	StatusOperationFailed    Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInvalidArguments:
		return "INVALID_ARGUMENTS"
	case StatusPreconditionFailed:
		return "PRECONDITION_FAILED"
	case StatusAlreadyExists:
		return "ALREADY_EXISTS"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusOperationFailed:
		return "OPERATION_FAILED"
	default:
		return "UNKNOWN_STATUS"
	}
}

// Table names known to this store. The store knows exactly one column
// family, "data"; column names within it are caller-chosen byte strings.
const (
	TableObservations = "observations"
	TableReports       = "reports"

	DataColumnFamily = "data"
)

// Columns is a column-name -> value map, the unit ReadRow/WriteRow exchange
// within the single "data" column family.
type Columns map[string][]byte

// Row is one stored row: its key plus its column values.
type Row struct {
	Key     string
	Columns Columns
}

// DataStore is the generic wide-column store every ObservationStore
// operation is built from. Implementations: MemoryDataStore, BackendDataStore.
//
// All operations are synchronous and return a Status; ctx carries
// cancellation/deadline only (spec: "Cancellation is cooperative and
// delegated").
type DataStore interface {
	// WriteRow upserts a single row, overwriting on key collision.
	WriteRow(ctx context.Context, table, key string, columns Columns) Status

	// WriteRows upserts many rows in one logical call. No cross-row
	// atomicity is guaranteed; a partial failure surfaces
	// StatusOperationFailed.
	WriteRows(ctx context.Context, table string, rows []Row) Status

	// ReadRow performs a point read, restricted to the given columns
	// (nil/empty means all columns). found is false iff the row does not
	// exist, in which case status is StatusOK, not StatusNotFound — a
	// missing row is not an error at this layer.
	ReadRow(ctx context.Context, table, key string, columns []string) (found bool, row Row, status Status)

	// ReadRows performs an ordered scan over [startKeyInclusive, limitKeyExclusive).
	// An empty limitKey means unbounded. columns restricts which column
	// values are returned (nil/empty means all). At most maxRows rows are
	// returned; moreAvailable is true iff the scan stopped at maxRows
	// before exhausting the range.
	ReadRows(ctx context.Context, table, startKeyInclusive, limitKeyExclusive string, columns []string, maxRows int) (rows []Row, moreAvailable bool, status Status)

	// DeleteRow deletes a single row by key. Deleting an absent row is not
	// an error.
	DeleteRow(ctx context.Context, table, key string) Status

	// DeleteRowsWithPrefix deletes every row whose key starts with prefix.
	DeleteRowsWithPrefix(ctx context.Context, table, prefix string) Status

	// DeleteAllRows truncates the table. Admin-only.
	DeleteAllRows(ctx context.Context, table string) Status
}
