// Package abstracttest holds the type-parameterized DataStore test suite,
// the Go analogue of the original Cobalt C++
// ObservationStoreAbstractTest<StoreFactoryClass> template: one battery of
// tests, instantiated once per concrete DataStore implementation.
package abstracttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobalt-telemetry/observationstore/datastore"
)

// Factory returns a fresh, empty DataStore. Implementations: a closure over
// datastore.NewMemoryDataStore, or one over a BackendDataStore wired to a
// fake RemoteClient.
type Factory func(t *testing.T) datastore.DataStore

// RunSuite instantiates every test below against the store new(t) returns.
func RunSuite(t *testing.T, new Factory) {
	t.Run("WriteAndReadRow", func(t *testing.T) { testWriteAndReadRow(t, new) })
	t.Run("ReadMissingRowIsNotAnError", func(t *testing.T) { testReadMissingRow(t, new) })
	t.Run("WriteRowsThenScanOrdered", func(t *testing.T) { testScanOrdered(t, new) })
	t.Run("ReadRowsRespectsMaxRows", func(t *testing.T) { testMaxRows(t, new) })
	t.Run("ReadRowsRespectsLimitKey", func(t *testing.T) { testLimitKey(t, new) })
	t.Run("ColumnFilterRestrictsResult", func(t *testing.T) { testColumnFilter(t, new) })
	t.Run("DeleteRowRemovesOnlyThatRow", func(t *testing.T) { testDeleteRow(t, new) })
	t.Run("DeleteRowsWithPrefixIsScoped", func(t *testing.T) { testDeletePrefix(t, new) })
	t.Run("DeleteAllRowsTruncatesTable", func(t *testing.T) { testDeleteAllRows(t, new) })
}

const table = datastore.TableObservations

func testWriteAndReadRow(t *testing.T, new Factory) {
	ds := new(t)
	ctx := context.Background()
	cols := datastore.Columns{"observation": []byte("payload")}
	require.Equal(t, datastore.StatusOK, ds.WriteRow(ctx, table, "key1", cols))

	found, row, status := ds.ReadRow(ctx, table, "key1", nil)
	require.Equal(t, datastore.StatusOK, status)
	require.True(t, found)
	require.Equal(t, []byte("payload"), row.Columns["observation"])
}

func testReadMissingRow(t *testing.T, new Factory) {
	ds := new(t)
	found, _, status := ds.ReadRow(context.Background(), table, "nope", nil)
	require.Equal(t, datastore.StatusOK, status)
	require.False(t, found)
}

func testScanOrdered(t *testing.T, new Factory) {
	ds := new(t)
	ctx := context.Background()
	keys := []string{"a:3", "a:1", "a:2"}
	for _, k := range keys {
		require.Equal(t, datastore.StatusOK, ds.WriteRow(ctx, table, k, datastore.Columns{"v": []byte(k)}))
	}
	rows, more, status := ds.ReadRows(ctx, table, "", "", nil, 100)
	require.Equal(t, datastore.StatusOK, status)
	require.False(t, more)
	require.Equal(t, []string{"a:1", "a:2", "a:3"}, keysOf(rows))
}

func testMaxRows(t *testing.T, new Factory) {
	ds := new(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		k := string(rune('a' + i))
		require.Equal(t, datastore.StatusOK, ds.WriteRow(ctx, table, k, datastore.Columns{"v": []byte(k)}))
	}
	rows, more, status := ds.ReadRows(ctx, table, "", "", nil, 3)
	require.Equal(t, datastore.StatusOK, status)
	require.True(t, more)
	require.Len(t, rows, 3)
}

func testLimitKey(t *testing.T, new Factory) {
	ds := new(t)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c", "d"} {
		require.Equal(t, datastore.StatusOK, ds.WriteRow(ctx, table, k, datastore.Columns{"v": []byte(k)}))
	}
	rows, more, status := ds.ReadRows(ctx, table, "a", "c", nil, 100)
	require.Equal(t, datastore.StatusOK, status)
	require.False(t, more)
	require.Equal(t, []string{"a", "b"}, keysOf(rows))
}

func testColumnFilter(t *testing.T, new Factory) {
	ds := new(t)
	ctx := context.Background()
	cols := datastore.Columns{"observation": []byte("o"), "system_profile": []byte("p")}
	require.Equal(t, datastore.StatusOK, ds.WriteRow(ctx, table, "k", cols))

	found, row, status := ds.ReadRow(ctx, table, "k", []string{"observation"})
	require.Equal(t, datastore.StatusOK, status)
	require.True(t, found)
	require.Equal(t, []byte("o"), row.Columns["observation"])
	_, hasProfile := row.Columns["system_profile"]
	require.False(t, hasProfile)
}

func testDeleteRow(t *testing.T, new Factory) {
	ds := new(t)
	ctx := context.Background()
	require.Equal(t, datastore.StatusOK, ds.WriteRow(ctx, table, "k1", datastore.Columns{"v": []byte("1")}))
	require.Equal(t, datastore.StatusOK, ds.WriteRow(ctx, table, "k2", datastore.Columns{"v": []byte("2")}))
	require.Equal(t, datastore.StatusOK, ds.DeleteRow(ctx, table, "k1"))

	found, _, _ := ds.ReadRow(ctx, table, "k1", nil)
	require.False(t, found)
	found, _, _ = ds.ReadRow(ctx, table, "k2", nil)
	require.True(t, found)
}

func testDeletePrefix(t *testing.T, new Factory) {
	ds := new(t)
	ctx := context.Background()
	for _, k := range []string{"m1:a", "m1:b", "m2:a"} {
		require.Equal(t, datastore.StatusOK, ds.WriteRow(ctx, table, k, datastore.Columns{"v": []byte(k)}))
	}
	require.Equal(t, datastore.StatusOK, ds.DeleteRowsWithPrefix(ctx, table, "m1:"))

	rows, _, status := ds.ReadRows(ctx, table, "", "", nil, 100)
	require.Equal(t, datastore.StatusOK, status)
	require.Equal(t, []string{"m2:a"}, keysOf(rows))
}

func testDeleteAllRows(t *testing.T, new Factory) {
	ds := new(t)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.Equal(t, datastore.StatusOK, ds.WriteRow(ctx, table, k, datastore.Columns{"v": []byte(k)}))
	}
	require.Equal(t, datastore.StatusOK, ds.DeleteAllRows(ctx, table))

	rows, _, status := ds.ReadRows(ctx, table, "", "", nil, 100)
	require.Equal(t, datastore.StatusOK, status)
	require.Empty(t, rows)
}

func keysOf(rows []datastore.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key
	}
	return out
}
