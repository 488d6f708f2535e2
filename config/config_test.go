package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobalt-telemetry/observationstore/config"
)

func TestDefaultMatchesKnownTableNames(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, "observations", cfg.Tables.ObservationsTableID)
	require.Equal(t, "reports", cfg.Tables.ReportsTableID)
}

func TestLoadWithNoPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadOverridesDefaultsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obsstore.toml")
	contents := `
[backend]
project = "my-project"
instance = "my-instance"
max_retries = 9
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "my-project", cfg.Backend.Project)
	require.Equal(t, "my-instance", cfg.Backend.Instance)
	require.Equal(t, uint64(9), cfg.Backend.MaxRetries)
	// Untouched fields keep their defaults.
	require.Equal(t, "bigtable.googleapis.com", cfg.Backend.Endpoint)
}

func TestLoadAppliesEnvOverridesOnTopOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obsstore.toml")
	contents := `
[backend]
project = "file-project"

[logging]
level = "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	t.Setenv("OBSSTORE_BACKEND_PROJECT", "env-project")
	t.Setenv("OBSSTORE_LOGGING_LEVEL", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "env-project", cfg.Backend.Project)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestTableNameBuildsTheCloudResourcePath(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.Project = "proj"
	cfg.Backend.Instance = "inst"
	require.Equal(t, "projects/proj/instances/inst/tables/observations", cfg.TableName("observations"))
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
