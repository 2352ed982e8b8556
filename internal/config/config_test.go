package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/treeprop/internal/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "treeprop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
sampling:
  seed: 7
  samples: 50
  workers: 2
log:
  level: debug
  format: json
`)
	t.Setenv("TREEPROP_SAMPLES", "80")
	t.Setenv("TREEPROP_METRICS_TEXTFILE", "/tmp/treeprop.prom")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Sampling.Seed)
	assert.Equal(t, 80, cfg.Sampling.Samples)
	assert.Equal(t, 2, cfg.Sampling.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/treeprop.prom", cfg.Metrics.Textfile)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad level", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "log:\n  level: loud\n"))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
	t.Run("zero samples", func(t *testing.T) {
		t.Setenv("TREEPROP_SAMPLES", "0")
		_, err := config.Load("")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
	t.Run("unparsable env", func(t *testing.T) {
		t.Setenv("TREEPROP_SEED", "twelve")
		_, err := config.Load("")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
	t.Run("broken yaml", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "sampling: [\n"))
		assert.Error(t, err)
	})
}
