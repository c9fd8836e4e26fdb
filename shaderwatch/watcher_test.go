package shaderwatch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/shaderwatch"
	"github.com/NOT-REAL-GAMES/plume/sim"
)

func TestWatcherReportsChangedShader(t *testing.T) {
	dir := t.TempDir()
	fluid := filepath.Join(dir, "fluid.spv")
	smoke := filepath.Join(dir, "smoke.spv")
	require.NoError(t, os.WriteFile(fluid, []byte{1, 2, 3, 4}, 0o644))
	require.NoError(t, os.WriteFile(smoke, []byte{1, 2, 3, 4}, 0o644))

	w, err := shaderwatch.New(zap.NewNop(), map[sim.Mode]string{
		sim.Fluid: fluid,
		sim.Smoke: smoke,
	}, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(smoke, []byte{5, 6, 7, 8}, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.spv"), []byte{0}, 0o644))

	select {
	case mode := <-w.Reloads():
		assert.Equal(t, sim.Smoke, mode)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload reported")
	}

	deadline := time.After(300 * time.Millisecond)
	for {
		select {
		case mode := <-w.Reloads():
			assert.Equal(t, sim.Smoke, mode, "fluid shader never changed")
		case <-deadline:
			return
		}
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := shaderwatch.New(nil, map[sim.Mode]string{
		sim.Fluid: filepath.Join(t.TempDir(), "missing", "fluid.spv"),
	}, 0)
	assert.Error(t, err)
}
