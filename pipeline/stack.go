// Package pipeline builds the descriptor layouts, per-slot descriptor sets
// and the compute and graphics pipelines the frame loop binds.
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/sim"
)

const entryPoint = "main"

// Compute set bindings.
const (
	BindingStorageImage   = 0
	BindingComputeUniform = 1
	BindingParticlesIn    = 2
	BindingParticlesOut   = 3
	BindingNoise          = 4
	BindingBlueNoise      = 5
)

// Graphics set bindings.
const (
	BindingSimulation      = 0
	BindingCaustic         = 1
	BindingGraphicsUniform = 2
)

var computeBindings = []gpu.LayoutBinding{
	{Binding: BindingStorageImage, Type: gpu.DescriptorStorageImage, Stages: gpu.ShaderStageCompute},
	{Binding: BindingComputeUniform, Type: gpu.DescriptorUniformBuffer, Stages: gpu.ShaderStageCompute},
	{Binding: BindingParticlesIn, Type: gpu.DescriptorStorageBuffer, Stages: gpu.ShaderStageCompute},
	{Binding: BindingParticlesOut, Type: gpu.DescriptorStorageBuffer, Stages: gpu.ShaderStageCompute},
	{Binding: BindingNoise, Type: gpu.DescriptorCombinedImageSampler, Stages: gpu.ShaderStageCompute},
	{Binding: BindingBlueNoise, Type: gpu.DescriptorCombinedImageSampler, Stages: gpu.ShaderStageCompute},
}

var graphicsBindings = []gpu.LayoutBinding{
	{Binding: BindingSimulation, Type: gpu.DescriptorCombinedImageSampler, Stages: gpu.ShaderStageFragment},
	{Binding: BindingCaustic, Type: gpu.DescriptorCombinedImageSampler, Stages: gpu.ShaderStageFragment},
	{Binding: BindingGraphicsUniform, Type: gpu.DescriptorUniformBuffer, Stages: gpu.ShaderStageFragment},
}

// Shaders holds SPIR-V blobs. Compute needs one entry per sim.Mode.
type Shaders struct {
	Compute  map[sim.Mode][]byte
	Vertex   []byte
	Fragment []byte
}

// Variant is one compute mode's layout and pipeline.
type Variant struct {
	Layout   gpu.PipelineLayout
	Pipeline gpu.Pipeline
}

type Stack struct {
	dev gpu.Device
	log *zap.Logger

	computeSetLayout  gpu.SetLayout
	graphicsSetLayout gpu.SetLayout
	pool              gpu.DescriptorPool
	computeSets       []gpu.DescriptorSet
	graphicsSets      []gpu.DescriptorSet

	variants map[sim.Mode]*Variant

	graphicsLayout gpu.PipelineLayout
	graphics       gpu.Pipeline
}

// Build creates every layout and pipeline and writes one compute and one
// graphics descriptor set per slot of res. The sets are never rewritten.
func Build(dev gpu.Device, res *sim.Resources, shaders Shaders, colorFormat gpu.Format, log *zap.Logger) (s *Stack, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := checkInputs(res, shaders); err != nil {
		return nil, err
	}

	s = &Stack{
		dev:      dev,
		log:      log.Named("pipeline"),
		variants: make(map[sim.Mode]*Variant),
	}
	defer func() {
		if err != nil {
			s.Destroy()
			s = nil
		}
	}()

	if s.computeSetLayout, err = dev.CreateDescriptorSetLayout(computeBindings); err != nil {
		return s, gpu.Wrap("create compute set layout", err)
	}
	if s.graphicsSetLayout, err = dev.CreateDescriptorSetLayout(graphicsBindings); err != nil {
		return s, gpu.Wrap("create graphics set layout", err)
	}
	if err = s.allocateSets(len(res.Slots)); err != nil {
		return s, err
	}
	s.writeSets(res)

	for _, mode := range sim.Modes {
		v := &Variant{}
		s.variants[mode] = v
		if v.Layout, err = dev.CreatePipelineLayout([]gpu.SetLayout{s.computeSetLayout}, nil); err != nil {
			return s, gpu.Wrap(fmt.Sprintf("create %s pipeline layout", mode), err)
		}
		if v.Pipeline, err = s.computePipeline(v.Layout, shaders.Compute[mode]); err != nil {
			return s, gpu.Wrap(fmt.Sprintf("create %s pipeline", mode), err)
		}
	}

	if s.graphicsLayout, err = dev.CreatePipelineLayout([]gpu.SetLayout{s.graphicsSetLayout}, nil); err != nil {
		return s, gpu.Wrap("create graphics pipeline layout", err)
	}
	if s.graphics, err = s.graphicsPipeline(shaders, colorFormat); err != nil {
		return s, err
	}

	s.log.Info("pipelines built",
		zap.Int("slots", len(res.Slots)),
		zap.Stringer("color_format", colorFormat))
	return s, nil
}

func checkInputs(res *sim.Resources, shaders Shaders) error {
	if len(res.Slots) == 0 {
		return errors.New("no frame slots to bind")
	}
	t := res.Textures
	if t.Caustic == nil || t.Noise == nil || t.BlueNoise == nil {
		return errors.New("missing textures")
	}
	for _, mode := range sim.Modes {
		if len(shaders.Compute[mode]) == 0 {
			return fmt.Errorf("missing %s compute shader", mode)
		}
	}
	if len(shaders.Vertex) == 0 || len(shaders.Fragment) == 0 {
		return errors.New("missing graphics shaders")
	}
	return nil
}

func (s *Stack) allocateSets(slots int) error {
	n := uint32(slots)
	pool, err := s.dev.CreateDescriptorPool(2*n, []gpu.PoolSize{
		{Type: gpu.DescriptorStorageImage, Count: n},
		{Type: gpu.DescriptorUniformBuffer, Count: 2 * n},
		{Type: gpu.DescriptorStorageBuffer, Count: 2 * n},
		{Type: gpu.DescriptorCombinedImageSampler, Count: 4 * n},
	})
	if err != nil {
		return gpu.Wrap("create descriptor pool", err)
	}
	s.pool = pool

	layouts := make([]gpu.SetLayout, 0, 2*slots)
	for i := 0; i < slots; i++ {
		layouts = append(layouts, s.computeSetLayout)
	}
	for i := 0; i < slots; i++ {
		layouts = append(layouts, s.graphicsSetLayout)
	}
	sets, err := s.dev.AllocateDescriptorSets(pool, layouts)
	if err != nil {
		return gpu.Wrap("allocate descriptor sets", err)
	}
	s.computeSets = sets[:slots]
	s.graphicsSets = sets[slots:]
	return nil
}

func bufferWrite(set gpu.DescriptorSet, binding uint32, t gpu.DescriptorType, b *gpu.Buffer) gpu.DescriptorWrite {
	return gpu.DescriptorWrite{Set: set, Binding: binding, Type: t, Buffer: b.Handle, Range: b.Size}
}

func imageWrite(set gpu.DescriptorSet, binding uint32, t gpu.DescriptorType, img *gpu.Image, layout gpu.ImageLayout) gpu.DescriptorWrite {
	return gpu.DescriptorWrite{Set: set, Binding: binding, Type: t, View: img.View, Sampler: img.Sampler, Layout: layout}
}

// writeSets points slot i's compute set at particles[i-1] for reading and
// particles[i] for writing.
func (s *Stack) writeSets(res *sim.Resources) {
	var writes []gpu.DescriptorWrite
	for i, slot := range res.Slots {
		prev := res.Slots[res.Previous(i)]
		cs := s.computeSets[i]
		writes = append(writes,
			imageWrite(cs, BindingStorageImage, gpu.DescriptorStorageImage, slot.Storage, gpu.LayoutGeneral),
			bufferWrite(cs, BindingComputeUniform, gpu.DescriptorUniformBuffer, slot.Uniform),
			bufferWrite(cs, BindingParticlesIn, gpu.DescriptorStorageBuffer, prev.Particles),
			bufferWrite(cs, BindingParticlesOut, gpu.DescriptorStorageBuffer, slot.Particles),
			imageWrite(cs, BindingNoise, gpu.DescriptorCombinedImageSampler, res.Textures.Noise, gpu.LayoutShaderReadOnly),
			imageWrite(cs, BindingBlueNoise, gpu.DescriptorCombinedImageSampler, res.Textures.BlueNoise, gpu.LayoutShaderReadOnly),
		)

		gs := s.graphicsSets[i]
		writes = append(writes,
			imageWrite(gs, BindingSimulation, gpu.DescriptorCombinedImageSampler, slot.Storage, gpu.LayoutGeneral),
			imageWrite(gs, BindingCaustic, gpu.DescriptorCombinedImageSampler, res.Textures.Caustic, gpu.LayoutShaderReadOnly),
			bufferWrite(gs, BindingGraphicsUniform, gpu.DescriptorUniformBuffer, slot.Uniform),
		)
	}
	s.dev.UpdateDescriptorSets(writes)
}

func (s *Stack) computePipeline(layout gpu.PipelineLayout, code []byte) (gpu.Pipeline, error) {
	module, err := s.dev.CreateShaderModule(code)
	if err != nil {
		return 0, err
	}
	defer s.dev.DestroyShaderModule(module)
	return s.dev.CreateComputePipeline(layout, module, entryPoint)
}

func (s *Stack) graphicsPipeline(shaders Shaders, colorFormat gpu.Format) (gpu.Pipeline, error) {
	vert, err := s.dev.CreateShaderModule(shaders.Vertex)
	if err != nil {
		return 0, gpu.Wrap("create vertex shader", err)
	}
	defer s.dev.DestroyShaderModule(vert)

	frag, err := s.dev.CreateShaderModule(shaders.Fragment)
	if err != nil {
		return 0, gpu.Wrap("create fragment shader", err)
	}
	defer s.dev.DestroyShaderModule(frag)

	p, err := s.dev.CreateGraphicsPipeline(gpu.GraphicsPipelineInfo{
		Layout:      s.graphicsLayout,
		Vertex:      vert,
		Fragment:    frag,
		ColorFormat: colorFormat,
	})
	if err != nil {
		return 0, gpu.Wrap("create graphics pipeline", err)
	}
	return p, nil
}

// Variant returns the handles for mode. It is looked up every frame so a
// reload takes effect on the next dispatch.
func (s *Stack) Variant(mode sim.Mode) Variant {
	if v, ok := s.variants[mode]; ok {
		return *v
	}
	return Variant{}
}

func (s *Stack) ComputeSet(slot int) gpu.DescriptorSet {
	return s.computeSets[slot]
}

func (s *Stack) GraphicsSet(slot int) gpu.DescriptorSet {
	return s.graphicsSets[slot]
}

func (s *Stack) Graphics() (gpu.PipelineLayout, gpu.Pipeline) {
	return s.graphicsLayout, s.graphics
}

// ReloadCompute replaces mode's pipeline with one built from code once the
// device is idle. On failure the previous pipeline stays in place.
// Descriptor sets are not touched.
func (s *Stack) ReloadCompute(mode sim.Mode, code []byte) error {
	v, ok := s.variants[mode]
	if !ok {
		return fmt.Errorf("unknown simulation mode %s", mode)
	}
	if err := s.dev.WaitIdle(); err != nil {
		return gpu.Wrap("reload compute: wait idle", err)
	}

	p, err := s.computePipeline(v.Layout, code)
	if err != nil {
		return gpu.Wrap(fmt.Sprintf("reload %s pipeline", mode), err)
	}
	s.dev.DestroyPipeline(v.Pipeline)
	v.Pipeline = p

	s.log.Info("compute pipeline reloaded", zap.Stringer("mode", mode))
	return nil
}

// Destroy releases everything Build created, including a partial build.
func (s *Stack) Destroy() {
	if s.graphics != 0 {
		s.dev.DestroyPipeline(s.graphics)
		s.graphics = 0
	}
	if s.graphicsLayout != 0 {
		s.dev.DestroyPipelineLayout(s.graphicsLayout)
		s.graphicsLayout = 0
	}
	for mode, v := range s.variants {
		if v.Pipeline != 0 {
			s.dev.DestroyPipeline(v.Pipeline)
		}
		if v.Layout != 0 {
			s.dev.DestroyPipelineLayout(v.Layout)
		}
		delete(s.variants, mode)
	}
	if s.pool != 0 {
		s.dev.DestroyDescriptorPool(s.pool)
		s.pool = 0
		s.computeSets = nil
		s.graphicsSets = nil
	}
	if s.graphicsSetLayout != 0 {
		s.dev.DestroyDescriptorSetLayout(s.graphicsSetLayout)
		s.graphicsSetLayout = 0
	}
	if s.computeSetLayout != 0 {
		s.dev.DestroyDescriptorSetLayout(s.computeSetLayout)
		s.computeSetLayout = 0
	}
}
