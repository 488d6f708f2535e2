package datastore_test

import (
	"testing"

	"github.com/cobalt-telemetry/observationstore/datastore"
	"github.com/cobalt-telemetry/observationstore/datastore/abstracttest"
)

func TestMemoryDataStore_AbstractSuite(t *testing.T) {
	abstracttest.RunSuite(t, func(t *testing.T) datastore.DataStore {
		return datastore.NewMemoryDataStore()
	})
}
