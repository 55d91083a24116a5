package check_component_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, ":8085", cfg.MetricsAddr)
	assert.Equal(t, []string{"RoundTripTime"}, cfg.API.Tasks)
	assert.Equal(t, 15*time.Second, cfg.API.Benchmark.Duration)
	assert.Equal(t, 500*time.Millisecond, cfg.API.Benchmark.LatencyThreshold)
	assert.Equal(t, 95.0, cfg.API.Thresholds.SuccessPercent)
	assert.Equal(t, 20, cfg.Checker.Parallel)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check-component.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":4000"
api:
  benchmark:
    rate: 200
checker:
  tasks: [CheckDataCorrectness]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, 200, cfg.API.Benchmark.Rate)
	assert.Equal(t, []string{"CheckDataCorrectness"}, cfg.Checker.Tasks)
	assert.Equal(t, 10, cfg.API.Benchmark.Connections)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
