package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/gpu/gputest"
)

func testConfig() ResourceConfig {
	return ResourceConfig{
		Slots:         2,
		Particles:     64,
		Width:         80,
		Height:        60,
		StorageFormat: gpu.FormatR8G8B8A8Unorm,
		Seed:          42,
	}
}

func testTextures(t *testing.T, ctx *gpu.Context) Textures {
	t.Helper()
	var tex Textures
	for _, dst := range []**gpu.Image{&tex.Caustic, &tex.Noise, &tex.BlueNoise} {
		img, err := NewTexture(ctx, 2, 2, gpu.FormatR8G8B8A8Unorm, make([]byte, 16))
		require.NoError(t, err)
		*dst = img
	}
	return tex
}

func TestNewResources(t *testing.T) {
	dev := gputest.New()
	ctx := dev.Context()
	tex := testTextures(t, ctx)
	assert.Equal(t, gpu.LayoutShaderReadOnly, tex.Noise.Layout())

	res, err := NewResources(ctx, testConfig(), tex)
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)

	for _, slot := range res.Slots {
		assert.Equal(t, uint64(UniformSize), slot.Uniform.Size)
		assert.Equal(t, uint64(64*ParticleSize), slot.Particles.Size)
		assert.Equal(t, gpu.LayoutGeneral, slot.Storage.Layout())
		assert.Equal(t, gpu.Extent{Width: 80, Height: 60}, slot.Storage.Extent())
		assert.NotZero(t, slot.Storage.View)
		assert.NotZero(t, slot.Storage.Sampler)
	}

	assert.Equal(t, 1, res.Previous(0))
	assert.Equal(t, 0, res.Previous(1))

	require.NoError(t, res.WriteUniforms(1, Uniforms{Frame: 9}))
	mem := dev.Memory(res.Slots[1].Uniform.Memory)
	assert.Equal(t, byte(9), mem[60])

	assert.Zero(t, dev.Graphics.Outstanding())
	assert.Zero(t, dev.Live(gputest.KindCommandBuffer))

	res.Destroy()
	for _, kind := range []string{gputest.KindBuffer, gputest.KindMemory, gputest.KindImage, gputest.KindView, gputest.KindSampler} {
		assert.Zero(t, dev.Live(kind), kind)
	}
	assert.Empty(t, dev.Violations())
}

func TestNewResourcesSeedsEverySlotIdentically(t *testing.T) {
	dev := gputest.New()
	ctx := dev.Context()

	res, err := NewResources(ctx, testConfig(), Textures{})
	require.NoError(t, err)
	defer res.Destroy()

	var copies, clears []gputest.Command
	for _, sub := range dev.Graphics.History() {
		for _, cmds := range sub.Commands {
			for _, c := range cmds {
				switch c.Op {
				case gputest.OpCopyBuffer:
					copies = append(copies, c)
				case gputest.OpClearColorImage:
					clears = append(clears, c)
				}
			}
		}
	}
	require.Len(t, copies, 2)
	require.Len(t, clears, 2)
	assert.Equal(t, res.Slots[0].Storage.Handle, clears[0].Image)
	assert.Equal(t, res.Slots[1].Storage.Handle, clears[1].Image)
	assert.Equal(t, res.Slots[0].Particles.Handle, copies[0].DstBuffer)
	assert.Equal(t, res.Slots[1].Particles.Handle, copies[1].DstBuffer)
	assert.Equal(t, uint64(64*ParticleSize), copies[0].Copies[0].Size)
}

func TestNewResourcesFailureReleasesEverything(t *testing.T) {
	dev := gputest.New()
	ctx := dev.Context()
	tex := testTextures(t, ctx)

	// Slot 0 succeeds; slot 1 fails on its storage image view.
	dev.FailNext("CreateImageView", nil, errors.New("out of views"))

	res, err := NewResources(ctx, testConfig(), tex)
	require.Error(t, err)
	assert.Nil(t, res)

	for _, kind := range []string{gputest.KindBuffer, gputest.KindMemory, gputest.KindImage, gputest.KindView, gputest.KindSampler} {
		assert.Zero(t, dev.Live(kind), kind)
	}
	assert.Empty(t, dev.Violations())
}

func TestNewResourcesRejectsEmptyConfig(t *testing.T) {
	dev := gputest.New()
	cfg := testConfig()
	cfg.Particles = 0

	_, err := NewResources(dev.Context(), cfg, Textures{})
	assert.Error(t, err)
}
