// Package config loads the ambient configuration every runnable entrypoint
// of this module needs: backend connection/retry parameters, table names,
// and logging verbosity (SPEC_FULL.md §4.H). Precedence is defaults <
// config file < environment (OBSSTORE_* prefix), the layering convention
// the examples pack's ambient-config code applies.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/cobalt-telemetry/observationstore/datastore"
)

// BackendSection configures the connection to the remote columnar store
// and the retry/pagination bounds BackendDataStore enforces.
type BackendSection struct {
	Project             string        `toml:"project"`
	Instance            string        `toml:"instance"`
	Endpoint            string        `toml:"endpoint"`
	CallTimeout         time.Duration `toml:"call_timeout"`
	MaxRetries          uint64        `toml:"max_retries"`
	InitialBackoff      time.Duration `toml:"initial_backoff"`
	MaxBackoff          time.Duration `toml:"max_backoff"`
	RemotePageSize      int           `toml:"remote_page_size"`
	ScanDeletePageSize  int           `toml:"scan_delete_page_size"`
	ScanDeleteConcurrency int         `toml:"scan_delete_concurrency"`
}

// TablesSection names the two tables and the column family ObservationStore
// uses, per spec.md §6.
type TablesSection struct {
	ObservationsTableID string `toml:"observations_table_id"`
	ReportsTableID      string `toml:"reports_table_id"`
	ColumnFamily        string `toml:"column_family"`
}

// LoggingSection configures the erigon-lib/log/v3 logger this module shares
// with the teacher.
type LoggingSection struct {
	Level string `toml:"level"`
}

// Config is the fully-resolved configuration, after file and environment
// overrides have been applied to Default().
type Config struct {
	Backend BackendSection `toml:"backend"`
	Tables  TablesSection  `toml:"tables"`
	Logging LoggingSection `toml:"logging"`
}

// Default returns the built-in defaults, overridable by a config file and
// then by environment variables.
func Default() Config {
	return Config{
		Backend: BackendSection{
			Endpoint:              "bigtable.googleapis.com",
			CallTimeout:           10 * time.Second,
			MaxRetries:            5,
			InitialBackoff:        100 * time.Millisecond,
			MaxBackoff:            5 * time.Second,
			RemotePageSize:        1000,
			ScanDeletePageSize:    500,
			ScanDeleteConcurrency: 4,
		},
		Tables: TablesSection{
			ObservationsTableID: datastore.TableObservations,
			ReportsTableID:      datastore.TableReports,
			ColumnFamily:        datastore.DataColumnFamily,
		},
		Logging: LoggingSection{Level: "info"},
	}
}

// Load resolves Config by starting from Default(), then applying path (if
// non-empty) as a TOML file, then applying OBSSTORE_*-prefixed environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("OBSSTORE_BACKEND_PROJECT"); ok {
		cfg.Backend.Project = v
	}
	if v, ok := os.LookupEnv("OBSSTORE_BACKEND_INSTANCE"); ok {
		cfg.Backend.Instance = v
	}
	if v, ok := os.LookupEnv("OBSSTORE_BACKEND_ENDPOINT"); ok {
		cfg.Backend.Endpoint = v
	}
	if v, ok := os.LookupEnv("OBSSTORE_BACKEND_MAX_RETRIES"); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Backend.MaxRetries = n
		}
	}
	if v, ok := os.LookupEnv("OBSSTORE_BACKEND_REMOTE_PAGE_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.RemotePageSize = n
		}
	}
	if v, ok := os.LookupEnv("OBSSTORE_LOGGING_LEVEL"); ok {
		cfg.Logging.Level = v
	}
}

// TableName builds the full backend table path, per original Cobalt's
// BigtableNames::FullTableName (original_source/analyzer/store/bigtable_names.h):
// "projects/<project>/instances/<instance>/tables/<table_id>".
func (c Config) TableName(tableID string) string {
	return fmt.Sprintf("projects/%s/instances/%s/tables/%s", c.Backend.Project, c.Backend.Instance, tableID)
}

// BackendConfig projects the retry/pagination fields this Config carries
// into a datastore.BackendConfig.
func (c Config) BackendConfig() datastore.BackendConfig {
	return datastore.BackendConfig{
		MaxRetries:            c.Backend.MaxRetries,
		InitialBackoff:        c.Backend.InitialBackoff,
		MaxBackoff:            c.Backend.MaxBackoff,
		RemotePageSize:        c.Backend.RemotePageSize,
		ScanDeletePageSize:    c.Backend.ScanDeletePageSize,
		ScanDeleteConcurrency: c.Backend.ScanDeleteConcurrency,
	}
}
