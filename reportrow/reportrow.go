// Package reportrow implements the trivial, restartable, in-memory
// ReportRow iterator referenced by spec.md §6 as an external collaborator:
// a sequence over pre-materialized report rows, not a live query. Grounded
// on original_source's ReportRowVectorIterator
// (analyzer/report_master/report_row_iterator.cc), translated from its
// grpc.Status-returning C++ methods to plain Go bool returns — this
// module reserves the Status enum for the DataStore/ObservationStore
// boundary, not for trivial in-memory iteration.
package reportrow

// Row is one row of a generated report. Its shape is a caller concern;
// this package only iterates over whatever rows it is given.
type Row struct {
	Columns map[string]string
}

// Iterator walks a fixed slice of Rows from the beginning, once, unless
// reset. It is not safe for concurrent use by multiple goroutines, mirroring
// the unsynchronized C++ original.
type Iterator struct {
	rows []Row
	pos  int
}

// New returns an Iterator positioned before rows[0]. rows is not copied;
// the caller must not mutate it for the Iterator's lifetime.
func New(rows []Row) *Iterator {
	return &Iterator{rows: rows}
}

// HasMoreRows reports whether NextRow would return ok=true.
func (it *Iterator) HasMoreRows() bool {
	return it.pos < len(it.rows)
}

// NextRow returns the next row and advances the iterator. ok is false once
// every row has been consumed (the C++ original's grpc.NOT_FOUND "EOF").
func (it *Iterator) NextRow() (row Row, ok bool) {
	if it.pos >= len(it.rows) {
		return Row{}, false
	}
	row = it.rows[it.pos]
	it.pos++
	return row, true
}

// Reset rewinds the iterator to the beginning.
func (it *Iterator) Reset() {
	it.pos = 0
}
