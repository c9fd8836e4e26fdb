package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOT-REAL-GAMES/plume/config"
	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/sim"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plume.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	mode, err := cfg.PresentModeValue()
	require.NoError(t, err)
	assert.Equal(t, gpu.PresentModeMailbox, mode)

	simMode, err := cfg.Mode()
	require.NoError(t, err)
	assert.Equal(t, sim.Fluid, simMode)

	format, err := cfg.StorageFormat()
	require.NoError(t, err)
	assert.Equal(t, gpu.FormatR8G8B8A8Unorm, format)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
window:
  width: 1280
frames_in_flight: 3
present_mode: FIFO
fence_timeout: 2s
simulation:
  mode: smoke
  storage_format: rgba16f
hot_reload: true
log:
  level: debug
  development: true
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height, "unset fields keep their default")
	assert.Equal(t, 3, cfg.FramesInFlight)
	assert.Equal(t, 2*time.Second, cfg.FenceTimeout)
	assert.True(t, cfg.HotReload)
	assert.Equal(t, 8192, cfg.Simulation.Particles)
	assert.Equal(t, config.Default().Shaders, cfg.Shaders)

	mode, err := cfg.PresentModeValue()
	require.NoError(t, err)
	assert.Equal(t, gpu.PresentModeFIFO, mode)
	simMode, err := cfg.Mode()
	require.NoError(t, err)
	assert.Equal(t, sim.Smoke, simMode)

	log, err := cfg.Logger()
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "colour: red\n", "colour"},
		{"one frame in flight", "frames_in_flight: 1\n", "frames_in_flight"},
		{"zero width", "window:\n  width: 0\n", "window size"},
		{"zero local size", "simulation:\n  local_size: 0\n", "local_size"},
		{"zero particles", "simulation:\n  particles: 0\n", "particles"},
		{"present mode", "present_mode: vsync\n", "present_mode"},
		{"simulation mode", "simulation:\n  mode: plasma\n", "plasma"},
		{"storage format", "simulation:\n  storage_format: rgb565\n", "storage_format"},
		{"log level", "log:\n  level: loud\n", "log.level"},
		{"bad yaml", "window: [\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := config.Default()
	cfg.FramesInFlight = 0
	cfg.PresentMode = "sometimes"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frames_in_flight")
	assert.Contains(t, err.Error(), "sometimes")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
