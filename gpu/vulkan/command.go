package vulkan

import (
	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/vk"
)

// CommandBuffer records straight into a VkCommandBuffer.
type CommandBuffer struct {
	cmd vk.CommandBuffer
}

var _ gpu.CommandBuffer = (*CommandBuffer)(nil)

func unwrapCommands(cmds []gpu.CommandBuffer) []vk.CommandBuffer {
	raw := make([]vk.CommandBuffer, 0, len(cmds))
	for _, c := range cmds {
		if cb, ok := c.(*CommandBuffer); ok {
			raw = append(raw, cb.cmd)
		}
	}
	return raw
}

func (c *CommandBuffer) Reset() error {
	return translate(c.cmd.Reset())
}

func (c *CommandBuffer) Begin(oneTime bool) error {
	var flags vk.CommandBufferUsageFlags
	if oneTime {
		flags = vk.COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT
	}
	return translate(c.cmd.Begin(flags))
}

func (c *CommandBuffer) End() error {
	return translate(c.cmd.End())
}

func (c *CommandBuffer) PipelineBarrier(src, dst gpu.Stage, barriers gpu.Barriers) {
	memory := make([]vk.MemoryBarrier, len(barriers.Memory))
	for i, m := range barriers.Memory {
		memory[i] = vk.MemoryBarrier{SrcAccessMask: vk.AccessFlags(m.Src), DstAccessMask: vk.AccessFlags(m.Dst)}
	}
	buffers := make([]vk.BufferMemoryBarrier, len(barriers.Buffer))
	for i, bb := range barriers.Buffer {
		buffers[i] = vk.BufferMemoryBarrier{
			SrcAccessMask: vk.AccessFlags(bb.Src),
			DstAccessMask: vk.AccessFlags(bb.Dst),
			Buffer:        vk.BufferFromRaw(uint64(bb.Buffer)),
			Offset:        bb.Offset,
			Size:          bb.Size,
		}
	}
	images := make([]vk.ImageMemoryBarrier, len(barriers.Image))
	for i, ib := range barriers.Image {
		images[i] = vk.ImageMemoryBarrier{
			SrcAccessMask:    vk.AccessFlags(ib.Src),
			DstAccessMask:    vk.AccessFlags(ib.Dst),
			OldLayout:        vk.ImageLayout(ib.Old),
			NewLayout:        vk.ImageLayout(ib.New),
			Image:            vk.ImageFromRaw(uint64(ib.Image)),
			SubresourceRange: vk.ColorRange,
		}
	}
	c.cmd.PipelineBarrier(vk.PipelineStageFlags(src), vk.PipelineStageFlags(dst), memory, buffers, images)
}

func (c *CommandBuffer) CopyBuffer(src, dst gpu.BufferHandle, regions ...gpu.BufferCopy) {
	vr := make([]vk.BufferCopy, len(regions))
	for i, r := range regions {
		vr[i] = vk.BufferCopy{SrcOffset: r.SrcOffset, DstOffset: r.DstOffset, Size: r.Size}
	}
	c.cmd.CopyBuffer(vk.BufferFromRaw(uint64(src)), vk.BufferFromRaw(uint64(dst)), vr)
}

func (c *CommandBuffer) CopyBufferToImage(src gpu.BufferHandle, dst gpu.ImageHandle, layout gpu.ImageLayout, width, height uint32) {
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{AspectMask: vk.IMAGE_ASPECT_COLOR_BIT, LayerCount: 1},
		ImageExtent:      vk.Extent3D{Width: width, Height: height, Depth: 1},
	}
	c.cmd.CopyBufferToImage(vk.BufferFromRaw(uint64(src)), vk.ImageFromRaw(uint64(dst)), vk.ImageLayout(layout),
		[]vk.BufferImageCopy{region})
}

func (c *CommandBuffer) ClearColorImage(img gpu.ImageHandle, layout gpu.ImageLayout, color [4]float32) {
	c.cmd.ClearColorImage(vk.ImageFromRaw(uint64(img)), vk.ImageLayout(layout), color, []vk.ImageSubresourceRange{vk.ColorRange})
}

func (c *CommandBuffer) BindPipeline(point gpu.BindPoint, p gpu.Pipeline) {
	c.cmd.BindPipeline(vk.PipelineBindPoint(point), vk.PipelineFromRaw(uint64(p)))
}

func (c *CommandBuffer) BindDescriptorSets(point gpu.BindPoint, layout gpu.PipelineLayout, first uint32, sets ...gpu.DescriptorSet) {
	vs := make([]vk.DescriptorSet, len(sets))
	for i, s := range sets {
		vs[i] = vk.DescriptorSetFromRaw(uint64(s))
	}
	c.cmd.BindDescriptorSets(vk.PipelineBindPoint(point), vk.PipelineLayoutFromRaw(uint64(layout)), first, vs)
}

func (c *CommandBuffer) PushConstants(layout gpu.PipelineLayout, stages gpu.ShaderStage, offset uint32, data []byte) {
	c.cmd.PushConstants(vk.PipelineLayoutFromRaw(uint64(layout)), vk.ShaderStageFlags(stages), offset, data)
}

func (c *CommandBuffer) Dispatch(x, y, z uint32) {
	c.cmd.Dispatch(x, y, z)
}

// BeginRendering clears the single color attachment and stores the result.
func (c *CommandBuffer) BeginRendering(info gpu.RenderingInfo) {
	c.cmd.BeginRendering(&vk.RenderingInfo{
		RenderArea: vk.Rect2D{Extent: vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height}},
		LayerCount: 1,
		ColorAttachments: []vk.RenderingAttachmentInfo{{
			ImageView:   vk.ImageViewFromRaw(uint64(info.View)),
			ImageLayout: vk.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL,
			LoadOp:      vk.ATTACHMENT_LOAD_OP_CLEAR,
			StoreOp:     vk.ATTACHMENT_STORE_OP_STORE,
			ClearColor:  info.Clear,
		}},
	})
}

func (c *CommandBuffer) EndRendering() {
	c.cmd.EndRendering()
}

func (c *CommandBuffer) SetViewport(e gpu.Extent) {
	c.cmd.SetViewport(vk.Viewport{
		Width:    float32(e.Width),
		Height:   float32(e.Height),
		MaxDepth: 1,
	})
}

func (c *CommandBuffer) SetScissor(e gpu.Extent) {
	c.cmd.SetScissor(vk.Rect2D{Extent: vk.Extent2D{Width: e.Width, Height: e.Height}})
}

func (c *CommandBuffer) Draw(vertices, instances uint32) {
	c.cmd.Draw(vertices, instances, 0, 0)
}
