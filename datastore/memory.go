package datastore

import (
	"context"
	"strings"
	"sync"

	"github.com/google/btree"
)

// tableKeySep separates the table name from the row key in the composite
// key the backing btree is ordered by. Table names never contain it and
// row keys (rowkey.Encode output) are restricted to hex digits and ':'.
const tableKeySep = "\x00"

type memRow struct {
	compositeKey string
	columns      Columns
}

func memLess(a, b *memRow) bool {
	return a.compositeKey < b.compositeKey
}

func composite(table, key string) string {
	return table + tableKeySep + key
}

// MemoryDataStore is the reference DataStore implementation: an ordered map
// from (table, key) to column values, backed by an in-memory B-tree and
// guarded by a single mutex. It exists to make the abstract test suite
// (datastore/abstracttest) runnable deterministically, and is the store
// every ObservationStore unit test not explicitly targeting backend
// retry/pagination quirks should use.
type MemoryDataStore struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[*memRow]
}

// NewMemoryDataStore returns an empty MemoryDataStore.
func NewMemoryDataStore() *MemoryDataStore {
	return &MemoryDataStore{
		tree: btree.NewG(32, memLess),
	}
}

func (m *MemoryDataStore) WriteRow(_ context.Context, table, key string, columns Columns) Status {
	if table == "" || key == "" {
		return StatusInvalidArguments
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeLocked(table, key, columns)
	RowsWritten.WithLabelValues(table).Inc()
	return StatusOK
}

func (m *MemoryDataStore) writeLocked(table, key string, columns Columns) {
	cp := make(Columns, len(columns))
	for k, v := range columns {
		cv := make([]byte, len(v))
		copy(cv, v)
		cp[k] = cv
	}
	m.tree.ReplaceOrInsert(&memRow{compositeKey: composite(table, key), columns: cp})
}

func (m *MemoryDataStore) WriteRows(_ context.Context, table string, rows []Row) Status {
	if table == "" {
		return StatusInvalidArguments
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		if r.Key == "" {
			return StatusInvalidArguments
		}
		m.writeLocked(table, r.Key, r.Columns)
	}
	RowsWritten.WithLabelValues(table).Add(float64(len(rows)))
	return StatusOK
}

func filterColumns(cols Columns, want []string) Columns {
	if len(want) == 0 {
		return cols
	}
	out := make(Columns, len(want))
	for _, c := range want {
		if v, ok := cols[c]; ok {
			out[c] = v
		}
	}
	return out
}

func (m *MemoryDataStore) ReadRow(_ context.Context, table, key string, columns []string) (bool, Row, Status) {
	if table == "" || key == "" {
		return false, Row{}, StatusInvalidArguments
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.tree.Get(&memRow{compositeKey: composite(table, key)})
	if !ok {
		return false, Row{}, StatusOK
	}
	RowsRead.WithLabelValues(table).Inc()
	return true, Row{Key: key, Columns: filterColumns(item.columns, columns)}, StatusOK
}

func (m *MemoryDataStore) ReadRows(_ context.Context, table, startKeyInclusive, limitKeyExclusive string, columns []string, maxRows int) ([]Row, bool, Status) {
	if table == "" {
		return nil, false, StatusInvalidArguments
	}
	if maxRows <= 0 {
		maxRows = 1
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []Row
	more := false
	pivot := &memRow{compositeKey: composite(table, startKeyInclusive)}
	tablePrefix := table + tableKeySep
	m.tree.AscendGreaterOrEqual(pivot, func(item *memRow) bool {
		if !strings.HasPrefix(item.compositeKey, tablePrefix) {
			return false
		}
		key := strings.TrimPrefix(item.compositeKey, tablePrefix)
		if limitKeyExclusive != "" && key >= limitKeyExclusive {
			return false
		}
		if len(rows) >= maxRows {
			more = true
			return false
		}
		rows = append(rows, Row{Key: key, Columns: filterColumns(item.columns, columns)})
		return true
	})
	RowsRead.WithLabelValues(table).Add(float64(len(rows)))
	return rows, more, StatusOK
}

func (m *MemoryDataStore) DeleteRow(_ context.Context, table, key string) Status {
	if table == "" || key == "" {
		return StatusInvalidArguments
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tree.Delete(&memRow{compositeKey: composite(table, key)}); ok {
		RowsDeleted.WithLabelValues(table).Inc()
	}
	return StatusOK
}

func (m *MemoryDataStore) DeleteRowsWithPrefix(_ context.Context, table, prefix string) Status {
	if table == "" {
		return StatusInvalidArguments
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	fullPrefix := composite(table, prefix)
	var toDelete []*memRow
	m.tree.AscendGreaterOrEqual(&memRow{compositeKey: fullPrefix}, func(item *memRow) bool {
		if !strings.HasPrefix(item.compositeKey, fullPrefix) {
			return false
		}
		toDelete = append(toDelete, item)
		return true
	})
	for _, item := range toDelete {
		m.tree.Delete(item)
	}
	RowsDeleted.WithLabelValues(table).Add(float64(len(toDelete)))
	return StatusOK
}

func (m *MemoryDataStore) DeleteAllRows(_ context.Context, table string) Status {
	if table == "" {
		return StatusInvalidArguments
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tablePrefix := table + tableKeySep
	var toDelete []*memRow
	m.tree.Ascend(func(item *memRow) bool {
		if strings.HasPrefix(item.compositeKey, tablePrefix) {
			toDelete = append(toDelete, item)
		}
		return true
	})
	for _, item := range toDelete {
		m.tree.Delete(item)
	}
	RowsDeleted.WithLabelValues(table).Add(float64(len(toDelete)))
	return StatusOK
}

var _ DataStore = (*MemoryDataStore)(nil)
