package gputest

import (
	"github.com/NOT-REAL-GAMES/plume/gpu"
)

type cmdState int

const (
	stateInitial cmdState = iota
	stateRecording
	stateExecutable
	statePending
)

func (s cmdState) String() string {
	switch s {
	case stateInitial:
		return "initial"
	case stateRecording:
		return "recording"
	case stateExecutable:
		return "executable"
	case statePending:
		return "pending"
	}
	return "invalid"
}

// Command is one recorded call. Only the fields relevant to Op are set.
type Command struct {
	Op string

	Src, Dst gpu.Stage
	Barriers gpu.Barriers

	SrcBuffer gpu.BufferHandle
	DstBuffer gpu.BufferHandle
	Copies    []gpu.BufferCopy
	Image     gpu.ImageHandle
	Layout    gpu.ImageLayout
	Color     [4]float32

	Point          gpu.BindPoint
	Pipeline       gpu.Pipeline
	PipelineLayout gpu.PipelineLayout
	Sets           []gpu.DescriptorSet
	Stages         gpu.ShaderStage
	Data           []byte

	Groups    [3]uint32
	Rendering gpu.RenderingInfo
	Extent    gpu.Extent
	Vertices  uint32
	Instances uint32
}

const (
	OpBarrier            = "barrier"
	OpCopyBuffer         = "copy buffer"
	OpCopyBufferToImage  = "copy buffer to image"
	OpClearColorImage    = "clear color image"
	OpBindPipeline       = "bind pipeline"
	OpBindDescriptorSets = "bind descriptor sets"
	OpPushConstants      = "push constants"
	OpDispatch           = "dispatch"
	OpBeginRendering     = "begin rendering"
	OpEndRendering       = "end rendering"
	OpSetViewport        = "set viewport"
	OpSetScissor         = "set scissor"
	OpDraw               = "draw"
)

type CommandBuffer struct {
	dev      *Device
	id       uint64
	state    cmdState
	oneTime  bool
	commands []Command
}

func (cb *CommandBuffer) ID() uint64 {
	return cb.id
}

// Commands returns what was recorded since the last Begin.
func (cb *CommandBuffer) Commands() []Command {
	cb.dev.mu.Lock()
	defer cb.dev.mu.Unlock()
	return append([]Command(nil), cb.commands...)
}

func (cb *CommandBuffer) Pending() bool {
	cb.dev.mu.Lock()
	defer cb.dev.mu.Unlock()
	return cb.state == statePending
}

func (cb *CommandBuffer) Reset() error {
	cb.dev.mu.Lock()
	defer cb.dev.mu.Unlock()
	if cb.state == statePending {
		cb.dev.violate("reset of pending command buffer %d", cb.id)
	}
	cb.state = stateInitial
	cb.commands = nil
	return nil
}

func (cb *CommandBuffer) Begin(oneTime bool) error {
	cb.dev.mu.Lock()
	defer cb.dev.mu.Unlock()
	switch cb.state {
	case statePending:
		cb.dev.violate("begin on pending command buffer %d", cb.id)
	case stateRecording:
		cb.dev.violate("begin on command buffer %d already recording", cb.id)
	}
	cb.state = stateRecording
	cb.oneTime = oneTime
	cb.commands = nil
	return nil
}

func (cb *CommandBuffer) End() error {
	cb.dev.mu.Lock()
	defer cb.dev.mu.Unlock()
	if cb.state != stateRecording {
		cb.dev.violate("end on command buffer %d in %s state", cb.id, cb.state)
	}
	cb.state = stateExecutable
	return nil
}

func (cb *CommandBuffer) record(c Command) {
	cb.dev.mu.Lock()
	defer cb.dev.mu.Unlock()
	if cb.state != stateRecording {
		cb.dev.violate("%s recorded into command buffer %d in %s state", c.Op, cb.id, cb.state)
	}
	cb.commands = append(cb.commands, c)
}

func (cb *CommandBuffer) boundSets() []gpu.DescriptorSet {
	var sets []gpu.DescriptorSet
	for _, c := range cb.commands {
		if c.Op == OpBindDescriptorSets {
			sets = append(sets, c.Sets...)
		}
	}
	return sets
}

func (cb *CommandBuffer) binds(set gpu.DescriptorSet) bool {
	for _, s := range cb.boundSets() {
		if s == set {
			return true
		}
	}
	return false
}

func (cb *CommandBuffer) PipelineBarrier(src, dst gpu.Stage, barriers gpu.Barriers) {
	cb.record(Command{Op: OpBarrier, Src: src, Dst: dst, Barriers: barriers})
}

func (cb *CommandBuffer) CopyBuffer(src, dst gpu.BufferHandle, regions ...gpu.BufferCopy) {
	cb.record(Command{Op: OpCopyBuffer, SrcBuffer: src, DstBuffer: dst, Copies: regions})
}

func (cb *CommandBuffer) CopyBufferToImage(src gpu.BufferHandle, dst gpu.ImageHandle, layout gpu.ImageLayout, width, height uint32) {
	cb.record(Command{
		Op:        OpCopyBufferToImage,
		SrcBuffer: src,
		Image:     dst,
		Layout:    layout,
		Extent:    gpu.Extent{Width: width, Height: height},
	})
}

func (cb *CommandBuffer) ClearColorImage(img gpu.ImageHandle, layout gpu.ImageLayout, color [4]float32) {
	cb.record(Command{Op: OpClearColorImage, Image: img, Layout: layout, Color: color})
}

func (cb *CommandBuffer) BindPipeline(point gpu.BindPoint, p gpu.Pipeline) {
	cb.record(Command{Op: OpBindPipeline, Point: point, Pipeline: p})
}

func (cb *CommandBuffer) BindDescriptorSets(point gpu.BindPoint, layout gpu.PipelineLayout, first uint32, sets ...gpu.DescriptorSet) {
	cb.record(Command{Op: OpBindDescriptorSets, Point: point, PipelineLayout: layout, Sets: sets})
}

func (cb *CommandBuffer) PushConstants(layout gpu.PipelineLayout, stages gpu.ShaderStage, offset uint32, data []byte) {
	cb.record(Command{Op: OpPushConstants, PipelineLayout: layout, Stages: stages, Data: append([]byte(nil), data...)})
}

func (cb *CommandBuffer) Dispatch(x, y, z uint32) {
	cb.record(Command{Op: OpDispatch, Groups: [3]uint32{x, y, z}})
}

func (cb *CommandBuffer) BeginRendering(info gpu.RenderingInfo) {
	cb.record(Command{Op: OpBeginRendering, Rendering: info})
}

func (cb *CommandBuffer) EndRendering() {
	cb.record(Command{Op: OpEndRendering})
}

func (cb *CommandBuffer) SetViewport(e gpu.Extent) {
	cb.record(Command{Op: OpSetViewport, Extent: e})
}

func (cb *CommandBuffer) SetScissor(e gpu.Extent) {
	cb.record(Command{Op: OpSetScissor, Extent: e})
}

func (cb *CommandBuffer) Draw(vertices, instances uint32) {
	cb.record(Command{Op: OpDraw, Vertices: vertices, Instances: instances})
}

// Ops lists the Op of each command in order.
func Ops(cmds []Command) []string {
	ops := make([]string, len(cmds))
	for i, c := range cmds {
		ops[i] = c.Op
	}
	return ops
}
