// Package frame runs the per-frame compute and graphics protocol across a
// fixed ring of frame slots.
package frame

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/pipeline"
	"github.com/NOT-REAL-GAMES/plume/present"
	"github.com/NOT-REAL-GAMES/plume/sim"
	"github.com/NOT-REAL-GAMES/plume/ui"
)

// Slot holds everything one frame in flight records, signals or waits on.
// Both fences are created signaled. Render-finished semaphores belong to
// swapchain images, not slots; see Orchestrator.RenderFinished.
type Slot struct {
	Compute  gpu.CommandBuffer
	Graphics gpu.CommandBuffer

	ImageAvailable  gpu.Semaphore
	ComputeFinished gpu.Semaphore

	ComputeFence  gpu.Fence
	GraphicsFence gpu.Fence
}

type Deps struct {
	Context   *gpu.Context
	Surface   *present.Surface
	Resources *sim.Resources
	Pipelines *pipeline.Stack

	// Overlay and Params may be nil. When Params is set its mode replaces
	// the one chosen with SetMode at the start of every frame.
	Overlay ui.Overlay
	Params  ui.Parameters

	Input  *sim.InputState
	Camera *sim.Camera
	Clock  *Clock

	LocalSize uint32
	Mode      sim.Mode
	// FenceTimeout bounds each fence wait. Zero waits forever.
	FenceTimeout time.Duration
	Log          *zap.Logger
}

type Orchestrator struct {
	ctx       *gpu.Context
	surface   *present.Surface
	res       *sim.Resources
	pipelines *pipeline.Stack
	overlay   ui.Overlay
	params    ui.Parameters
	input     *sim.InputState
	camera    *sim.Camera
	clock     *Clock
	log       *zap.Logger

	groups  [3]uint32
	timeout time.Duration

	slots []Slot
	// renderFinished is indexed by swapchain image and resized with it.
	renderFinished []gpu.Semaphore

	current int
	frame   uint64
	mode    sim.Mode
	resized atomic.Bool
}

// New creates one Slot per resource slot. It fails without leaking if any
// sync object or command buffer cannot be created.
func New(d Deps) (o *Orchestrator, err error) {
	if d.Context == nil || d.Surface == nil || d.Resources == nil || d.Pipelines == nil {
		return nil, errors.New("frame: missing dependency")
	}
	n := len(d.Resources.Slots)
	if n < 2 {
		return nil, fmt.Errorf("frame: need at least 2 frame slots, have %d", n)
	}
	if d.LocalSize == 0 {
		return nil, errors.New("frame: zero local size")
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Input == nil {
		d.Input = &sim.InputState{}
	}
	if d.Camera == nil {
		d.Camera = sim.NewCamera()
	}
	if d.Clock == nil {
		d.Clock = NewClock(WallTime())
	}

	domain := d.Resources.Slots[0].Storage.Extent()
	o = &Orchestrator{
		ctx:       d.Context,
		surface:   d.Surface,
		res:       d.Resources,
		pipelines: d.Pipelines,
		overlay:   d.Overlay,
		params:    d.Params,
		input:     d.Input,
		camera:    d.Camera,
		clock:     d.Clock,
		log:       d.Log.Named("frame"),
		groups:    Dispatch(domain.Width, domain.Height, d.LocalSize),
		timeout:   d.FenceTimeout,
		mode:      d.Mode,
	}
	defer func() {
		if err != nil {
			o.destroySlots()
			o = nil
		}
	}()

	dev := o.ctx.Device
	cmds, err := dev.AllocateCommandBuffers(2 * n)
	if err != nil {
		return o, gpu.Wrap("allocate frame command buffers", err)
	}
	o.slots = make([]Slot, n)
	for i := range o.slots {
		o.slots[i].Compute = cmds[2*i]
		o.slots[i].Graphics = cmds[2*i+1]
	}
	for i := range o.slots {
		if err := o.createSync(&o.slots[i]); err != nil {
			return o, fmt.Errorf("slot %d: %w", i, err)
		}
	}
	if err := o.syncRenderFinished(); err != nil {
		return o, err
	}

	o.log.Info("frame slots ready",
		zap.Int("slots", n),
		zap.Uint32("groups_x", o.groups[0]),
		zap.Uint32("groups_y", o.groups[1]),
		zap.Stringer("mode", o.mode))
	return o, nil
}

func (o *Orchestrator) createSync(s *Slot) error {
	dev := o.ctx.Device
	for _, sem := range []*gpu.Semaphore{&s.ImageAvailable, &s.ComputeFinished} {
		v, err := dev.CreateSemaphore()
		if err != nil {
			return gpu.Wrap("create semaphore", err)
		}
		*sem = v
	}
	for _, f := range []*gpu.Fence{&s.ComputeFence, &s.GraphicsFence} {
		v, err := dev.CreateFence(true)
		if err != nil {
			return gpu.Wrap("create fence", err)
		}
		*f = v
	}
	return nil
}

// DrawFrame runs one frame on the current slot. An outdated surface on
// acquire rebuilds the swapchain and returns nil without submitting; the
// same slot is used on the next call.
func (o *Orchestrator) DrawFrame() error {
	s := &o.slots[o.current]
	dev := o.ctx.Device

	if err := dev.WaitFence(s.ComputeFence, o.timeout); err != nil {
		return gpu.Wrap("wait compute fence", err)
	}
	if err := dev.WaitFence(s.GraphicsFence, o.timeout); err != nil {
		return gpu.Wrap("wait graphics fence", err)
	}

	index, err := o.surface.Acquire(s.ImageAvailable)
	if errors.Is(err, gpu.ErrSurfaceOutdated) {
		o.resized.Store(false)
		return o.resize()
	}
	if err != nil {
		return err
	}

	if err := o.updateUniforms(); err != nil {
		return err
	}

	if err := dev.ResetFence(s.ComputeFence); err != nil {
		return gpu.Wrap("reset compute fence", err)
	}
	if err := o.recordCompute(s.Compute); err != nil {
		return err
	}
	err = o.ctx.Compute.Submit(gpu.SubmitInfo{
		CommandBuffers: []gpu.CommandBuffer{s.Compute},
		Signal:         []gpu.Semaphore{s.ComputeFinished},
		Fence:          s.ComputeFence,
	})
	if err != nil {
		return gpu.Wrap("vkQueueSubmit(compute)", err)
	}

	if err := dev.ResetFence(s.GraphicsFence); err != nil {
		return gpu.Wrap("reset graphics fence", err)
	}
	if err := o.recordGraphics(s.Graphics, index); err != nil {
		return err
	}
	err = o.ctx.Graphics.Submit(gpu.SubmitInfo{
		Waits: []gpu.SemaphoreWait{
			{Semaphore: s.ComputeFinished, Stage: gpu.StageVertexInput},
			{Semaphore: s.ImageAvailable, Stage: gpu.StageColorAttachmentOutput},
		},
		CommandBuffers: []gpu.CommandBuffer{s.Graphics},
		Signal:         []gpu.Semaphore{o.renderFinished[index]},
		Fence:          s.GraphicsFence,
	})
	if err != nil {
		return gpu.Wrap("vkQueueSubmit(graphics)", err)
	}

	err = o.surface.Present(o.ctx.Present, o.renderFinished[index], index)
	resized := o.resized.Swap(false)
	switch {
	case errors.Is(err, gpu.ErrSurfaceOutdated), errors.Is(err, gpu.ErrSurfaceSuboptimal), err == nil && resized:
		if err := o.resize(); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	o.current = (o.current + 1) % len(o.slots)
	o.frame++
	return nil
}

// resize rebuilds the swapchain. Resize leaves the device idle, so the
// render-finished semaphores can be replaced when the image count changes.
func (o *Orchestrator) resize() error {
	if err := o.surface.Resize(); err != nil {
		return err
	}
	return o.syncRenderFinished()
}

func (o *Orchestrator) syncRenderFinished() error {
	n := o.surface.ImageCount()
	if len(o.renderFinished) == n {
		return nil
	}
	o.destroyRenderFinished()
	o.renderFinished = make([]gpu.Semaphore, n)
	for i := range o.renderFinished {
		sem, err := o.ctx.Device.CreateSemaphore()
		if err != nil {
			return gpu.Wrap("create render-finished semaphore", err)
		}
		o.renderFinished[i] = sem
	}
	o.log.Debug("render-finished semaphores ready", zap.Int("images", n))
	return nil
}

func (o *Orchestrator) destroyRenderFinished() {
	for _, sem := range o.renderFinished {
		if sem != 0 {
			o.ctx.Device.DestroySemaphore(sem)
		}
	}
	o.renderFinished = nil
}

func (o *Orchestrator) updateUniforms() error {
	sun := ui.DefaultSun
	wind := ui.DefaultWind
	if o.overlay != nil {
		o.overlay.RenderFrame()
	}
	if o.params != nil {
		sun = o.params.SunPosition()
		wind = o.params.WindDirection()
		o.SetMode(o.params.Mode())
	}

	dt := o.clock.Delta()
	o.camera.Update(o.input, float32(dt))

	u := sim.Uniforms{
		DeltaTime: float32(dt * sim.DeltaScale),
		TotalTime: float32(o.clock.Total()),
		Sun:       sun,
		Camera:    o.camera.Position,
		Wind:      wind,
		Frame:     uint32(o.frame),
	}
	if err := o.res.WriteUniforms(o.current, u); err != nil {
		return fmt.Errorf("write uniforms: %w", err)
	}
	return nil
}

// recordCompute orders this dispatch after the previous frame's particle
// write and after the last fragment read of the slot's storage image.
func (o *Orchestrator) recordCompute(cmd gpu.CommandBuffer) error {
	if err := cmd.Reset(); err != nil {
		return gpu.Wrap("reset compute command buffer", err)
	}
	if err := cmd.Begin(false); err != nil {
		return gpu.Wrap("begin compute command buffer", err)
	}

	cmd.PipelineBarrier(
		gpu.StageComputeShader|gpu.StageFragmentShader|gpu.StageVertexInput,
		gpu.StageComputeShader,
		gpu.Barriers{Memory: []gpu.MemoryBarrier{{
			Src: gpu.AccessShaderWrite,
			Dst: gpu.AccessShaderRead | gpu.AccessShaderWrite,
		}}},
	)

	v := o.pipelines.Variant(o.mode)
	cmd.BindPipeline(gpu.BindCompute, v.Pipeline)
	cmd.BindDescriptorSets(gpu.BindCompute, v.Layout, 0, o.pipelines.ComputeSet(o.current))
	cmd.Dispatch(o.groups[0], o.groups[1], o.groups[2])

	return gpu.Wrap("end compute command buffer", cmd.End())
}

func (o *Orchestrator) recordGraphics(cmd gpu.CommandBuffer, index uint32) error {
	if err := cmd.Reset(); err != nil {
		return gpu.Wrap("reset graphics command buffer", err)
	}
	if err := cmd.Begin(false); err != nil {
		return gpu.Wrap("begin graphics command buffer", err)
	}

	image := o.surface.Image(index)
	extent := o.surface.Extent()
	if err := gpu.RecordTransition(cmd, image, gpu.LayoutUndefined, gpu.LayoutColorAttachment); err != nil {
		return err
	}

	cmd.BeginRendering(gpu.RenderingInfo{
		View:   o.surface.View(index),
		Extent: extent,
		Clear:  [4]float32{0, 0, 0, 1},
	})
	layout, p := o.pipelines.Graphics()
	cmd.BindPipeline(gpu.BindGraphics, p)
	cmd.BindDescriptorSets(gpu.BindGraphics, layout, 0, o.pipelines.GraphicsSet(o.current))
	cmd.SetViewport(extent)
	cmd.SetScissor(extent)
	cmd.Draw(3, 1)
	if o.overlay != nil {
		o.overlay.AppendToCommandBuffer(cmd)
	}
	cmd.EndRendering()

	if err := gpu.RecordTransition(cmd, image, gpu.LayoutColorAttachment, gpu.LayoutPresentSrc); err != nil {
		return err
	}
	return gpu.Wrap("end graphics command buffer", cmd.End())
}

// NotifyResized requests a swapchain rebuild after the next present. It is
// safe to call from window callbacks.
func (o *Orchestrator) NotifyResized() {
	o.resized.Store(true)
}

func (o *Orchestrator) CurrentSlot() int {
	return o.current
}

// Frame counts completed DrawFrame calls.
func (o *Orchestrator) Frame() uint64 {
	return o.frame
}

func (o *Orchestrator) Mode() sim.Mode {
	return o.mode
}

// SetMode selects the compute variant dispatched from the next frame on.
func (o *Orchestrator) SetMode(m sim.Mode) {
	if m == o.mode || !m.Valid() {
		return
	}
	o.log.Info("compute mode switched", zap.Stringer("from", o.mode), zap.Stringer("to", m))
	o.mode = m
}

// RenderFinished returns the semaphore signaled by the graphics submit that
// renders swapchain image index, and waited on by its present.
func (o *Orchestrator) RenderFinished(index uint32) gpu.Semaphore {
	return o.renderFinished[index]
}

// Slot exposes slot i for inspection.
func (o *Orchestrator) Slot(i int) Slot {
	return o.slots[i]
}

// Close waits for the device to go idle and releases every slot.
func (o *Orchestrator) Close() error {
	err := o.ctx.Device.WaitIdle()
	o.destroySlots()
	return gpu.Wrap("frame close: wait idle", err)
}

func (o *Orchestrator) destroySlots() {
	dev := o.ctx.Device
	var cmds []gpu.CommandBuffer
	for _, s := range o.slots {
		for _, sem := range []gpu.Semaphore{s.ImageAvailable, s.ComputeFinished} {
			if sem != 0 {
				dev.DestroySemaphore(sem)
			}
		}
		for _, f := range []gpu.Fence{s.ComputeFence, s.GraphicsFence} {
			if f != 0 {
				dev.DestroyFence(f)
			}
		}
		if s.Compute != nil {
			cmds = append(cmds, s.Compute, s.Graphics)
		}
	}
	if len(cmds) > 0 {
		dev.FreeCommandBuffers(cmds)
	}
	o.slots = nil
	o.destroyRenderFinished()
}
