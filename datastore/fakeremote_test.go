package datastore_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/cobalt-telemetry/observationstore/datastore"
)

// fakeRemoteClient is an in-process stand-in for the real managed columnar
// store's RPC surface, used to drive BackendDataStore's retry/pagination
// logic in tests without a network dependency. It can be told to fail the
// next N operations transiently, and whether it supports native prefix drop.
type fakeRemoteClient struct {
	mu                   sync.Mutex
	rows                 map[string]map[string]datastore.Columns // table -> key -> columns
	supportsPrefixDrop   bool
	failNextN            int
	failTransiently      bool
	maxPageSizeOverride  int
}

func newFakeRemoteClient() *fakeRemoteClient {
	return &fakeRemoteClient{rows: map[string]map[string]datastore.Columns{}}
}

func (f *fakeRemoteClient) FailNext(n int, transient bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNextN = n
	f.failTransiently = transient
}

func (f *fakeRemoteClient) maybeFail() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextN > 0 {
		f.failNextN--
		if f.failTransiently {
			return &datastore.TransientError{Err: errors.New("fake transient failure")}
		}
		return errors.New("fake terminal failure")
	}
	return nil
}

func (f *fakeRemoteClient) MutateRow(_ context.Context, table, key string, columns datastore.Columns) error {
	if err := f.maybeFail(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows[table] == nil {
		f.rows[table] = map[string]datastore.Columns{}
	}
	f.rows[table][key] = columns
	return nil
}

func (f *fakeRemoteClient) BulkMutate(ctx context.Context, table string, rows []datastore.Row) error {
	if err := f.maybeFail(); err != nil {
		return err
	}
	for _, r := range rows {
		if err := f.MutateRow(ctx, table, r.Key, r.Columns); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRemoteClient) ReadRow(_ context.Context, table, key string, columns []string) (bool, datastore.Row, error) {
	if err := f.maybeFail(); err != nil {
		return false, datastore.Row{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cols, ok := f.rows[table][key]
	if !ok {
		return false, datastore.Row{}, nil
	}
	return true, datastore.Row{Key: key, Columns: cols}, nil
}

func (f *fakeRemoteClient) sortedKeys(table string) []string {
	keys := make([]string, 0, len(f.rows[table]))
	for k := range f.rows[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *fakeRemoteClient) ReadRows(_ context.Context, table, startKey, limitKey string, columns []string, pageSize int) ([]datastore.Row, bool, error) {
	if err := f.maybeFail(); err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.maxPageSizeOverride > 0 && pageSize > f.maxPageSizeOverride {
		pageSize = f.maxPageSizeOverride
	}
	var out []datastore.Row
	hasMore := false
	for _, k := range f.sortedKeys(table) {
		if k < startKey {
			continue
		}
		if limitKey != "" && k >= limitKey {
			break
		}
		if len(out) >= pageSize {
			hasMore = true
			break
		}
		out = append(out, datastore.Row{Key: k, Columns: f.rows[table][k]})
	}
	return out, hasMore, nil
}

func (f *fakeRemoteClient) DeleteRow(_ context.Context, table, key string) error {
	if err := f.maybeFail(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows[table], key)
	return nil
}

func (f *fakeRemoteClient) DeleteRowsWithPrefix(_ context.Context, table, prefix string) (bool, error) {
	if err := f.maybeFail(); err != nil {
		return false, err
	}
	if !f.supportsPrefixDrop {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.rows[table] {
		if strings.HasPrefix(k, prefix) {
			delete(f.rows[table], k)
		}
	}
	return true, nil
}

func (f *fakeRemoteClient) DeleteAllRows(_ context.Context, table string) error {
	if err := f.maybeFail(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[table] = map[string]datastore.Columns{}
	return nil
}

var _ datastore.RemoteClient = (*fakeRemoteClient)(nil)
