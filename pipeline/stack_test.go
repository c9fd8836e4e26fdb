package pipeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/gpu/gputest"
	"github.com/NOT-REAL-GAMES/plume/pipeline"
	"github.com/NOT-REAL-GAMES/plume/sim"
)

func spirv(words int) []byte {
	return make([]byte, 4*words)
}

func testShaders() pipeline.Shaders {
	return pipeline.Shaders{
		Compute: map[sim.Mode][]byte{
			sim.Fluid: spirv(8),
			sim.Smoke: spirv(8),
		},
		Vertex:   spirv(8),
		Fragment: spirv(8),
	}
}

func testResources(t *testing.T, dev *gputest.Device) *sim.Resources {
	t.Helper()
	ctx := dev.Context()
	var tex sim.Textures
	for _, dst := range []**gpu.Image{&tex.Caustic, &tex.Noise, &tex.BlueNoise} {
		img, err := sim.NewTexture(ctx, 2, 2, gpu.FormatR8G8B8A8Unorm, make([]byte, 16))
		require.NoError(t, err)
		*dst = img
	}
	res, err := sim.NewResources(ctx, sim.ResourceConfig{
		Slots:         2,
		Particles:     16,
		Width:         32,
		Height:        32,
		StorageFormat: gpu.FormatR8G8B8A8Unorm,
		Seed:          1,
	}, tex)
	require.NoError(t, err)
	return res
}

func findWrite(writes []gpu.DescriptorWrite, binding uint32) (gpu.DescriptorWrite, bool) {
	for _, w := range writes {
		if w.Binding == binding {
			return w, true
		}
	}
	return gpu.DescriptorWrite{}, false
}

func TestBuildWritesSetsOnce(t *testing.T) {
	dev := gputest.New()
	res := testResources(t, dev)

	s, err := pipeline.Build(dev, res, testShaders(), gpu.FormatB8G8R8A8Srgb, zap.NewNop())
	require.NoError(t, err)
	defer s.Destroy()

	assert.Equal(t, 1, dev.SetUpdates())
	assert.Equal(t, len(sim.Modes), dev.ComputePipelinesCreated())
	assert.Zero(t, dev.Live(gputest.KindShader), "shader modules outlive pipeline creation")

	infos := dev.GraphicsPipelines()
	require.Len(t, infos, 1)
	assert.Equal(t, gpu.FormatB8G8R8A8Srgb, infos[0].ColorFormat)
	assert.False(t, infos[0].Blend)

	for i, slot := range res.Slots {
		prev := res.Slots[res.Previous(i)]

		cw := dev.Writes(s.ComputeSet(i))
		assert.Len(t, cw, 6)
		tests := []struct {
			name    string
			binding uint32
			buffer  gpu.BufferHandle
			view    gpu.ViewHandle
		}{
			{"storage image", pipeline.BindingStorageImage, 0, slot.Storage.View},
			{"uniforms", pipeline.BindingComputeUniform, slot.Uniform.Handle, 0},
			{"particles in", pipeline.BindingParticlesIn, prev.Particles.Handle, 0},
			{"particles out", pipeline.BindingParticlesOut, slot.Particles.Handle, 0},
			{"noise", pipeline.BindingNoise, 0, res.Textures.Noise.View},
			{"blue noise", pipeline.BindingBlueNoise, 0, res.Textures.BlueNoise.View},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w, ok := findWrite(cw, tt.binding)
				require.True(t, ok)
				assert.Equal(t, tt.buffer, w.Buffer)
				assert.Equal(t, tt.view, w.View)
			})
		}

		w, ok := findWrite(cw, pipeline.BindingStorageImage)
		require.True(t, ok)
		assert.Equal(t, gpu.LayoutGeneral, w.Layout)
		assert.Equal(t, gpu.DescriptorStorageImage, w.Type)

		gw := dev.Writes(s.GraphicsSet(i))
		assert.Len(t, gw, 3)
		w, ok = findWrite(gw, pipeline.BindingSimulation)
		require.True(t, ok)
		assert.Equal(t, slot.Storage.View, w.View)
		assert.Equal(t, gpu.LayoutGeneral, w.Layout)
		w, ok = findWrite(gw, pipeline.BindingGraphicsUniform)
		require.True(t, ok)
		assert.Equal(t, slot.Uniform.Handle, w.Buffer)
	}
}

func TestSlotsReadDistinctParticleBuffers(t *testing.T) {
	dev := gputest.New()
	res := testResources(t, dev)
	s, err := pipeline.Build(dev, res, testShaders(), gpu.FormatB8G8R8A8Srgb, nil)
	require.NoError(t, err)
	defer s.Destroy()

	in0, _ := findWrite(dev.Writes(s.ComputeSet(0)), pipeline.BindingParticlesIn)
	out0, _ := findWrite(dev.Writes(s.ComputeSet(0)), pipeline.BindingParticlesOut)
	in1, _ := findWrite(dev.Writes(s.ComputeSet(1)), pipeline.BindingParticlesIn)
	out1, _ := findWrite(dev.Writes(s.ComputeSet(1)), pipeline.BindingParticlesOut)

	assert.NotEqual(t, in0.Buffer, out0.Buffer)
	assert.Equal(t, out1.Buffer, in0.Buffer)
	assert.Equal(t, out0.Buffer, in1.Buffer)
}

func TestVariantsAreDistinct(t *testing.T) {
	dev := gputest.New()
	res := testResources(t, dev)
	s, err := pipeline.Build(dev, res, testShaders(), gpu.FormatB8G8R8A8Srgb, nil)
	require.NoError(t, err)
	defer s.Destroy()

	fluid := s.Variant(sim.Fluid)
	smoke := s.Variant(sim.Smoke)
	assert.NotZero(t, fluid.Pipeline)
	assert.NotZero(t, smoke.Pipeline)
	assert.NotEqual(t, fluid.Pipeline, smoke.Pipeline)

	layout, p := s.Graphics()
	assert.NotZero(t, layout)
	assert.NotZero(t, p)
}

func TestBuildRejectsMissingInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*pipeline.Shaders)
	}{
		{"missing smoke shader", func(sh *pipeline.Shaders) { delete(sh.Compute, sim.Smoke) }},
		{"missing vertex shader", func(sh *pipeline.Shaders) { sh.Vertex = nil }},
		{"missing fragment shader", func(sh *pipeline.Shaders) { sh.Fragment = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New()
			res := testResources(t, dev)
			sh := testShaders()
			tt.mutate(&sh)
			s, err := pipeline.Build(dev, res, sh, gpu.FormatB8G8R8A8Srgb, nil)
			assert.Error(t, err)
			assert.Nil(t, s)
			assert.Zero(t, dev.Live(gputest.KindSetLayout))
		})
	}
}

func TestBuildFailureReleasesEverything(t *testing.T) {
	tests := []struct {
		name   string
		method string
		errs   []error
	}{
		{"set layout", "CreateDescriptorSetLayout", []error{nil, errors.New("boom")}},
		{"pool", "CreateDescriptorPool", []error{errors.New("boom")}},
		{"allocate", "AllocateDescriptorSets", []error{errors.New("boom")}},
		{"second variant", "CreateComputePipeline", []error{nil, errors.New("boom")}},
		{"graphics pipeline", "CreateGraphicsPipeline", []error{errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New()
			res := testResources(t, dev)
			dev.FailNext(tt.method, tt.errs...)

			s, err := pipeline.Build(dev, res, testShaders(), gpu.FormatB8G8R8A8Srgb, nil)
			require.Error(t, err)
			assert.Nil(t, s)

			var opErr *gpu.OpError
			assert.ErrorAs(t, err, &opErr)
			for _, kind := range []string{
				gputest.KindSetLayout, gputest.KindPool, gputest.KindSet,
				gputest.KindPipelineLayout, gputest.KindPipeline, gputest.KindShader,
			} {
				assert.Zero(t, dev.Live(kind), kind)
			}
		})
	}
}

func TestReloadCompute(t *testing.T) {
	dev := gputest.New()
	res := testResources(t, dev)
	s, err := pipeline.Build(dev, res, testShaders(), gpu.FormatB8G8R8A8Srgb, nil)
	require.NoError(t, err)
	defer s.Destroy()

	before := s.Variant(sim.Smoke)
	fluid := s.Variant(sim.Fluid)
	idles := dev.WaitIdles()

	require.NoError(t, s.ReloadCompute(sim.Smoke, spirv(16)))

	after := s.Variant(sim.Smoke)
	assert.NotEqual(t, before.Pipeline, after.Pipeline)
	assert.Equal(t, before.Layout, after.Layout)
	assert.Equal(t, fluid, s.Variant(sim.Fluid))
	assert.Equal(t, idles+1, dev.WaitIdles())
	assert.Equal(t, 1, dev.SetUpdates(), "reload must not rewrite descriptor sets")
	assert.Equal(t, len(sim.Modes)+1, dev.Live(gputest.KindPipeline))
}

func TestReloadComputeKeepsPipelineOnFailure(t *testing.T) {
	dev := gputest.New()
	res := testResources(t, dev)
	s, err := pipeline.Build(dev, res, testShaders(), gpu.FormatB8G8R8A8Srgb, nil)
	require.NoError(t, err)
	defer s.Destroy()

	before := s.Variant(sim.Fluid)
	err = s.ReloadCompute(sim.Fluid, []byte{1, 2, 3})
	require.Error(t, err)
	assert.Equal(t, before, s.Variant(sim.Fluid))

	assert.Error(t, s.ReloadCompute(sim.Mode(7), spirv(4)))
}

func TestDestroyIsIdempotent(t *testing.T) {
	dev := gputest.New()
	res := testResources(t, dev)
	s, err := pipeline.Build(dev, res, testShaders(), gpu.FormatB8G8R8A8Srgb, nil)
	require.NoError(t, err)

	s.Destroy()
	s.Destroy()
	for _, kind := range []string{gputest.KindPool, gputest.KindSet, gputest.KindPipeline, gputest.KindPipelineLayout, gputest.KindSetLayout} {
		assert.Zero(t, dev.Live(kind), kind)
	}
	assert.Empty(t, dev.Violations())
}
