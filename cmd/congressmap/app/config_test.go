package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/errors"
)

// TestLoadConfig verifies defaults when nothing is configured.
func TestLoadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultDataDir, config.DataDir)
	assert.Equal(t, constants.CollectorTimeout, config.CollectorTimeout)
	assert.Equal(t, constants.MaxConcurrentCollectors, config.Concurrency)
	assert.False(t, config.IncludeMissing)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, "stderr", config.LogOutput)
}

// TestConfig_EnvironmentVariables verifies prefixed environment variables.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CONGRESSMAP_DATA_DIR", "/srv/congress")
	t.Setenv("CONGRESSMAP_COLLECTOR_TIMEOUT", "15s")
	t.Setenv("CONGRESSMAP_INCLUDE_MISSING", "true")
	t.Setenv("CONGRESSMAP_CONCURRENCY", "3")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/congress", config.DataDir)
	assert.Equal(t, 15*time.Second, config.CollectorTimeout)
	assert.True(t, config.IncludeMissing)
	assert.Equal(t, 3, config.Concurrency)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestConfig_File(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "congressmap.yaml")
	doc := `data_dir: /var/lib/congressmap
feed_path: /var/www/events.json
metrics_textfile: /var/lib/node_exporter/congressmap.prom
collector_timeout: 45s
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, 45*time.Second, config.CollectorTimeout)
	assert.Equal(t, "/var/lib/node_exporter/congressmap.prom", config.MetricsTextfile)

	paths := config.Paths()
	assert.Equal(t, "/var/www/events.json", paths.Feed)
	assert.Equal(t, filepath.Join("/var/lib/congressmap", constants.DefaultLedgerFile), paths.Ledger)
	assert.Equal(t, filepath.Join("/var/lib/congressmap", constants.DefaultSourcesFile), paths.Sources)
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var cerr *errors.ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "zero values", config: Config{}},
		{name: "negative timeout", config: Config{CollectorTimeout: -time.Second}, wantErr: true},
		{name: "negative concurrency", config: Config{Concurrency: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "json", DataDir: "data", LogLevel: "info"}

	config.UpdateFromFlags(true, false, false, "", "", "")
	assert.True(t, config.Verbose)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "data", config.DataDir)

	config.UpdateFromFlags(false, false, true, "yaml", "error", "/tmp/congress")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format)
	assert.Equal(t, "error", config.LogLevel)
	assert.Equal(t, "/tmp/congress", config.DataDir)
}
