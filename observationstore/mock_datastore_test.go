package observationstore_test

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/cobalt-telemetry/observationstore/datastore"
)

// mockDataStore is a hand-written stand-in for what `mockgen
// -destination=mock_datastore_test.go datastore.DataStore` would emit; it
// exists to exercise go.uber.org/mock's call-expectation style against
// observationstore.Store without depending on the mockgen binary, which
// this module's build cannot invoke.
type mockDataStore struct {
	ctrl     *gomock.Controller
	recorder *mockDataStoreRecorder
}

type mockDataStoreRecorder struct{ mock *mockDataStore }

func newMockDataStore(ctrl *gomock.Controller) *mockDataStore {
	m := &mockDataStore{ctrl: ctrl}
	m.recorder = &mockDataStoreRecorder{m}
	return m
}

func (m *mockDataStore) EXPECT() *mockDataStoreRecorder { return m.recorder }

func (m *mockDataStore) WriteRow(ctx context.Context, table, key string, columns datastore.Columns) datastore.Status {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteRow", ctx, table, key, columns)
	return ret[0].(datastore.Status)
}

func (mr *mockDataStoreRecorder) WriteRow(ctx, table, key, columns any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteRow", reflect.TypeOf((*mockDataStore)(nil).WriteRow), ctx, table, key, columns)
}

func (m *mockDataStore) WriteRows(ctx context.Context, table string, rows []datastore.Row) datastore.Status {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteRows", ctx, table, rows)
	return ret[0].(datastore.Status)
}

func (mr *mockDataStoreRecorder) WriteRows(ctx, table, rows any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteRows", reflect.TypeOf((*mockDataStore)(nil).WriteRows), ctx, table, rows)
}

func (m *mockDataStore) ReadRow(ctx context.Context, table, key string, columns []string) (bool, datastore.Row, datastore.Status) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadRow", ctx, table, key, columns)
	return ret[0].(bool), ret[1].(datastore.Row), ret[2].(datastore.Status)
}

func (mr *mockDataStoreRecorder) ReadRow(ctx, table, key, columns any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadRow", reflect.TypeOf((*mockDataStore)(nil).ReadRow), ctx, table, key, columns)
}

func (m *mockDataStore) ReadRows(ctx context.Context, table, startKeyInclusive, limitKeyExclusive string, columns []string, maxRows int) ([]datastore.Row, bool, datastore.Status) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadRows", ctx, table, startKeyInclusive, limitKeyExclusive, columns, maxRows)
	return ret[0].([]datastore.Row), ret[1].(bool), ret[2].(datastore.Status)
}

func (mr *mockDataStoreRecorder) ReadRows(ctx, table, startKeyInclusive, limitKeyExclusive, columns, maxRows any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadRows", reflect.TypeOf((*mockDataStore)(nil).ReadRows),
		ctx, table, startKeyInclusive, limitKeyExclusive, columns, maxRows)
}

func (m *mockDataStore) DeleteRow(ctx context.Context, table, key string) datastore.Status {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteRow", ctx, table, key)
	return ret[0].(datastore.Status)
}

func (mr *mockDataStoreRecorder) DeleteRow(ctx, table, key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteRow", reflect.TypeOf((*mockDataStore)(nil).DeleteRow), ctx, table, key)
}

func (m *mockDataStore) DeleteRowsWithPrefix(ctx context.Context, table, prefix string) datastore.Status {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteRowsWithPrefix", ctx, table, prefix)
	return ret[0].(datastore.Status)
}

func (mr *mockDataStoreRecorder) DeleteRowsWithPrefix(ctx, table, prefix any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteRowsWithPrefix", reflect.TypeOf((*mockDataStore)(nil).DeleteRowsWithPrefix), ctx, table, prefix)
}

func (m *mockDataStore) DeleteAllRows(ctx context.Context, table string) datastore.Status {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteAllRows", ctx, table)
	return ret[0].(datastore.Status)
}

func (mr *mockDataStoreRecorder) DeleteAllRows(ctx, table any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteAllRows", reflect.TypeOf((*mockDataStore)(nil).DeleteAllRows), ctx, table)
}

var _ datastore.DataStore = (*mockDataStore)(nil)
