// command.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type CommandPool struct {
	handle C.VkCommandPool
}

type CommandBuffer struct {
	handle C.VkCommandBuffer
}

type CommandPoolCreateFlags uint32

const (
	COMMAND_POOL_CREATE_TRANSIENT_BIT            CommandPoolCreateFlags = C.VK_COMMAND_POOL_CREATE_TRANSIENT_BIT
	COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT CommandPoolCreateFlags = C.VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT
)

type CommandPoolCreateInfo struct {
	Flags            CommandPoolCreateFlags
	QueueFamilyIndex uint32
}

type CommandBufferUsageFlags uint32

const (
	COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT CommandBufferUsageFlags = C.VK_COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT
)

type AttachmentLoadOp int32
type AttachmentStoreOp int32

const (
	ATTACHMENT_LOAD_OP_LOAD      AttachmentLoadOp = C.VK_ATTACHMENT_LOAD_OP_LOAD
	ATTACHMENT_LOAD_OP_CLEAR     AttachmentLoadOp = C.VK_ATTACHMENT_LOAD_OP_CLEAR
	ATTACHMENT_LOAD_OP_DONT_CARE AttachmentLoadOp = C.VK_ATTACHMENT_LOAD_OP_DONT_CARE

	ATTACHMENT_STORE_OP_STORE     AttachmentStoreOp = C.VK_ATTACHMENT_STORE_OP_STORE
	ATTACHMENT_STORE_OP_DONT_CARE AttachmentStoreOp = C.VK_ATTACHMENT_STORE_OP_DONT_CARE
)

// Rendering structures for dynamic rendering
type RenderingInfo struct {
	RenderArea       Rect2D
	LayerCount       uint32
	ColorAttachments []RenderingAttachmentInfo
}

type RenderingAttachmentInfo struct {
	ImageView   ImageView
	ImageLayout ImageLayout
	LoadOp      AttachmentLoadOp
	StoreOp     AttachmentStoreOp
	ClearColor  [4]float32
}

type MemoryBarrier struct {
	SrcAccessMask AccessFlags
	DstAccessMask AccessFlags
}

type BufferMemoryBarrier struct {
	SrcAccessMask AccessFlags
	DstAccessMask AccessFlags
	Buffer        Buffer
	Offset        uint64
	Size          uint64
}

type ImageMemoryBarrier struct {
	SrcAccessMask    AccessFlags
	DstAccessMask    AccessFlags
	OldLayout        ImageLayout
	NewLayout        ImageLayout
	Image            Image
	SubresourceRange ImageSubresourceRange
}

type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

type ImageSubresourceLayers struct {
	AspectMask     ImageAspectFlags
	MipLevel       uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

type BufferImageCopy struct {
	BufferOffset      uint64
	BufferRowLength   uint32
	BufferImageHeight uint32
	ImageSubresource  ImageSubresourceLayers
	ImageOffset       Offset3D
	ImageExtent       Extent3D
}

// Command Pool
func (device Device) CreateCommandPool(createInfo *CommandPoolCreateInfo) (CommandPool, error) {
	cInfo := (*C.VkCommandPoolCreateInfo)(C.calloc(1, C.sizeof_VkCommandPoolCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO
	cInfo.flags = C.VkCommandPoolCreateFlags(createInfo.Flags)
	cInfo.queueFamilyIndex = C.uint32_t(createInfo.QueueFamilyIndex)

	var pool C.VkCommandPool
	result := C.vkCreateCommandPool(device.handle, cInfo, nil, &pool)

	if result != C.VK_SUCCESS {
		return CommandPool{}, Result(result)
	}

	return CommandPool{handle: pool}, nil
}

func (device Device) DestroyCommandPool(pool CommandPool) {
	C.vkDestroyCommandPool(device.handle, pool.handle, nil)
}

// Command Buffer Allocation
func (device Device) AllocateCommandBuffers(pool CommandPool, count uint32) ([]CommandBuffer, error) {
	cInfo := (*C.VkCommandBufferAllocateInfo)(C.calloc(1, C.sizeof_VkCommandBufferAllocateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO
	cInfo.commandPool = pool.handle
	cInfo.level = C.VK_COMMAND_BUFFER_LEVEL_PRIMARY
	cInfo.commandBufferCount = C.uint32_t(count)

	cBuffers := make([]C.VkCommandBuffer, count)
	result := C.vkAllocateCommandBuffers(device.handle, cInfo, &cBuffers[0])

	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	buffers := make([]CommandBuffer, count)
	for i := range buffers {
		buffers[i] = CommandBuffer{handle: cBuffers[i]}
	}

	return buffers, nil
}

func (device Device) FreeCommandBuffers(pool CommandPool, buffers []CommandBuffer) {
	if len(buffers) == 0 {
		return
	}

	cBuffers := make([]C.VkCommandBuffer, len(buffers))
	for i, buf := range buffers {
		cBuffers[i] = buf.handle
	}

	C.vkFreeCommandBuffers(device.handle, pool.handle, C.uint32_t(len(cBuffers)), &cBuffers[0])
}

// Command Buffer Recording
func (cmd CommandBuffer) Begin(flags CommandBufferUsageFlags) error {
	cInfo := (*C.VkCommandBufferBeginInfo)(C.calloc(1, C.sizeof_VkCommandBufferBeginInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO
	cInfo.flags = C.VkCommandBufferUsageFlags(flags)

	result := C.vkBeginCommandBuffer(cmd.handle, cInfo)
	if result != C.VK_SUCCESS {
		return Result(result)
	}

	return nil
}

func (cmd CommandBuffer) End() error {
	result := C.vkEndCommandBuffer(cmd.handle)
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}

func (cmd CommandBuffer) Reset() error {
	result := C.vkResetCommandBuffer(cmd.handle, 0)
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}

// Dynamic Rendering Commands
type renderingData struct {
	cInfo            *C.VkRenderingInfo
	colorAttachments []C.VkRenderingAttachmentInfo
}

func (info *RenderingInfo) vulkanize() *renderingData {
	data := &renderingData{}

	data.cInfo = (*C.VkRenderingInfo)(C.calloc(1, C.sizeof_VkRenderingInfo))
	data.cInfo.sType = C.VK_STRUCTURE_TYPE_RENDERING_INFO
	data.cInfo.renderArea.offset.x = C.int32_t(info.RenderArea.Offset.X)
	data.cInfo.renderArea.offset.y = C.int32_t(info.RenderArea.Offset.Y)
	data.cInfo.renderArea.extent.width = C.uint32_t(info.RenderArea.Extent.Width)
	data.cInfo.renderArea.extent.height = C.uint32_t(info.RenderArea.Extent.Height)
	data.cInfo.layerCount = C.uint32_t(info.LayerCount)

	data.colorAttachments = cAlloc[C.VkRenderingAttachmentInfo](len(info.ColorAttachments))
	for i, att := range info.ColorAttachments {
		data.colorAttachments[i].sType = C.VK_STRUCTURE_TYPE_RENDERING_ATTACHMENT_INFO
		data.colorAttachments[i].imageView = att.ImageView.handle
		data.colorAttachments[i].imageLayout = C.VkImageLayout(att.ImageLayout)
		data.colorAttachments[i].resolveMode = C.VK_RESOLVE_MODE_NONE
		data.colorAttachments[i].resolveImageLayout = C.VK_IMAGE_LAYOUT_UNDEFINED
		data.colorAttachments[i].loadOp = C.VkAttachmentLoadOp(att.LoadOp)
		data.colorAttachments[i].storeOp = C.VkAttachmentStoreOp(att.StoreOp)
		colorPtr := (*[4]C.float)(unsafe.Pointer(&data.colorAttachments[i].clearValue))
		for c := range colorPtr {
			colorPtr[c] = C.float(att.ClearColor[c])
		}
	}
	data.cInfo.colorAttachmentCount = C.uint32_t(len(data.colorAttachments))
	data.cInfo.pColorAttachments = cFirst(data.colorAttachments)

	return data
}

func (data *renderingData) free() {
	cFree(data.colorAttachments)
	if data.cInfo != nil {
		C.free(unsafe.Pointer(data.cInfo))
	}
}

func (cmd CommandBuffer) BeginRendering(renderingInfo *RenderingInfo) {
	data := renderingInfo.vulkanize()
	defer data.free()

	C.vkCmdBeginRendering(cmd.handle, data.cInfo)
}

func (cmd CommandBuffer) EndRendering() {
	C.vkCmdEndRendering(cmd.handle)
}

// Pipeline Commands
func (cmd CommandBuffer) BindPipeline(bindPoint PipelineBindPoint, pipeline Pipeline) {
	C.vkCmdBindPipeline(cmd.handle, C.VkPipelineBindPoint(bindPoint), pipeline.handle)
}

func (cmd CommandBuffer) SetViewport(viewport Viewport) {
	var cViewport C.VkViewport
	cViewport.x = C.float(viewport.X)
	cViewport.y = C.float(viewport.Y)
	cViewport.width = C.float(viewport.Width)
	cViewport.height = C.float(viewport.Height)
	cViewport.minDepth = C.float(viewport.MinDepth)
	cViewport.maxDepth = C.float(viewport.MaxDepth)

	C.vkCmdSetViewport(cmd.handle, 0, 1, &cViewport)
}

func (cmd CommandBuffer) SetScissor(scissor Rect2D) {
	var cScissor C.VkRect2D
	cScissor.offset.x = C.int32_t(scissor.Offset.X)
	cScissor.offset.y = C.int32_t(scissor.Offset.Y)
	cScissor.extent.width = C.uint32_t(scissor.Extent.Width)
	cScissor.extent.height = C.uint32_t(scissor.Extent.Height)

	C.vkCmdSetScissor(cmd.handle, 0, 1, &cScissor)
}

func (cmd CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	C.vkCmdDraw(cmd.handle, C.uint32_t(vertexCount), C.uint32_t(instanceCount),
		C.uint32_t(firstVertex), C.uint32_t(firstInstance))
}

func (cmd CommandBuffer) Dispatch(groupCountX, groupCountY, groupCountZ uint32) {
	C.vkCmdDispatch(cmd.handle, C.uint32_t(groupCountX), C.uint32_t(groupCountY), C.uint32_t(groupCountZ))
}

func (cmd CommandBuffer) PipelineBarrier(
	srcStageMask, dstStageMask PipelineStageFlags,
	memoryBarriers []MemoryBarrier,
	bufferBarriers []BufferMemoryBarrier,
	imageBarriers []ImageMemoryBarrier,
) {
	cMemory := cAlloc[C.VkMemoryBarrier](len(memoryBarriers))
	defer cFree(cMemory)
	for i, barrier := range memoryBarriers {
		cMemory[i].sType = C.VK_STRUCTURE_TYPE_MEMORY_BARRIER
		cMemory[i].srcAccessMask = C.VkAccessFlags(barrier.SrcAccessMask)
		cMemory[i].dstAccessMask = C.VkAccessFlags(barrier.DstAccessMask)
	}

	cBuffers := cAlloc[C.VkBufferMemoryBarrier](len(bufferBarriers))
	defer cFree(cBuffers)
	for i, barrier := range bufferBarriers {
		cBuffers[i].sType = C.VK_STRUCTURE_TYPE_BUFFER_MEMORY_BARRIER
		cBuffers[i].srcAccessMask = C.VkAccessFlags(barrier.SrcAccessMask)
		cBuffers[i].dstAccessMask = C.VkAccessFlags(barrier.DstAccessMask)
		cBuffers[i].srcQueueFamilyIndex = C.uint32_t(QUEUE_FAMILY_IGNORED)
		cBuffers[i].dstQueueFamilyIndex = C.uint32_t(QUEUE_FAMILY_IGNORED)
		cBuffers[i].buffer = barrier.Buffer.handle
		cBuffers[i].offset = C.VkDeviceSize(barrier.Offset)
		cBuffers[i].size = C.VkDeviceSize(barrier.Size)
	}

	cImages := cAlloc[C.VkImageMemoryBarrier](len(imageBarriers))
	defer cFree(cImages)
	for i, barrier := range imageBarriers {
		cImages[i].sType = C.VK_STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER
		cImages[i].srcAccessMask = C.VkAccessFlags(barrier.SrcAccessMask)
		cImages[i].dstAccessMask = C.VkAccessFlags(barrier.DstAccessMask)
		cImages[i].oldLayout = C.VkImageLayout(barrier.OldLayout)
		cImages[i].newLayout = C.VkImageLayout(barrier.NewLayout)
		cImages[i].srcQueueFamilyIndex = C.uint32_t(QUEUE_FAMILY_IGNORED)
		cImages[i].dstQueueFamilyIndex = C.uint32_t(QUEUE_FAMILY_IGNORED)
		cImages[i].image = barrier.Image.handle
		cImages[i].subresourceRange.aspectMask = C.VkImageAspectFlags(barrier.SubresourceRange.AspectMask)
		cImages[i].subresourceRange.baseMipLevel = C.uint32_t(barrier.SubresourceRange.BaseMipLevel)
		cImages[i].subresourceRange.levelCount = C.uint32_t(barrier.SubresourceRange.LevelCount)
		cImages[i].subresourceRange.baseArrayLayer = C.uint32_t(barrier.SubresourceRange.BaseArrayLayer)
		cImages[i].subresourceRange.layerCount = C.uint32_t(barrier.SubresourceRange.LayerCount)
	}

	C.vkCmdPipelineBarrier(
		cmd.handle,
		C.VkPipelineStageFlags(srcStageMask),
		C.VkPipelineStageFlags(dstStageMask),
		0,
		C.uint32_t(len(cMemory)), cFirst(cMemory),
		C.uint32_t(len(cBuffers)), cFirst(cBuffers),
		C.uint32_t(len(cImages)), cFirst(cImages),
	)
}

func (cmd CommandBuffer) CopyBuffer(srcBuffer, dstBuffer Buffer, regions []BufferCopy) {
	if len(regions) == 0 {
		return
	}

	cRegions := make([]C.VkBufferCopy, len(regions))
	for i, region := range regions {
		cRegions[i] = C.VkBufferCopy{
			srcOffset: C.VkDeviceSize(region.SrcOffset),
			dstOffset: C.VkDeviceSize(region.DstOffset),
			size:      C.VkDeviceSize(region.Size),
		}
	}

	C.vkCmdCopyBuffer(cmd.handle, srcBuffer.handle, dstBuffer.handle, C.uint32_t(len(cRegions)), &cRegions[0])
}

func (cmd CommandBuffer) CopyBufferToImage(srcBuffer Buffer, dstImage Image, dstImageLayout ImageLayout, regions []BufferImageCopy) {
	if len(regions) == 0 {
		return
	}

	cRegions := make([]C.VkBufferImageCopy, len(regions))
	for i, region := range regions {
		cRegions[i].bufferOffset = C.VkDeviceSize(region.BufferOffset)
		cRegions[i].bufferRowLength = C.uint32_t(region.BufferRowLength)
		cRegions[i].bufferImageHeight = C.uint32_t(region.BufferImageHeight)
		cRegions[i].imageSubresource.aspectMask = C.VkImageAspectFlags(region.ImageSubresource.AspectMask)
		cRegions[i].imageSubresource.mipLevel = C.uint32_t(region.ImageSubresource.MipLevel)
		cRegions[i].imageSubresource.baseArrayLayer = C.uint32_t(region.ImageSubresource.BaseArrayLayer)
		cRegions[i].imageSubresource.layerCount = C.uint32_t(region.ImageSubresource.LayerCount)
		cRegions[i].imageOffset.x = C.int32_t(region.ImageOffset.X)
		cRegions[i].imageOffset.y = C.int32_t(region.ImageOffset.Y)
		cRegions[i].imageOffset.z = C.int32_t(region.ImageOffset.Z)
		cRegions[i].imageExtent.width = C.uint32_t(region.ImageExtent.Width)
		cRegions[i].imageExtent.height = C.uint32_t(region.ImageExtent.Height)
		cRegions[i].imageExtent.depth = C.uint32_t(region.ImageExtent.Depth)
	}

	C.vkCmdCopyBufferToImage(cmd.handle, srcBuffer.handle, dstImage.handle,
		C.VkImageLayout(dstImageLayout),
		C.uint32_t(len(cRegions)), &cRegions[0])
}

// Descriptor Set Binding
func (cmd CommandBuffer) BindDescriptorSets(
	pipelineBindPoint PipelineBindPoint,
	layout PipelineLayout,
	firstSet uint32,
	descriptorSets []DescriptorSet,
) {
	if len(descriptorSets) == 0 {
		return
	}

	cSets := make([]C.VkDescriptorSet, len(descriptorSets))
	for i, set := range descriptorSets {
		cSets[i] = set.handle
	}

	C.vkCmdBindDescriptorSets(
		cmd.handle,
		C.VkPipelineBindPoint(pipelineBindPoint),
		layout.handle,
		C.uint32_t(firstSet),
		C.uint32_t(len(cSets)),
		&cSets[0],
		0,
		nil,
	)
}

func (cmd CommandBuffer) PushConstants(layout PipelineLayout, stageFlags ShaderStageFlags, offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}

	C.vkCmdPushConstants(
		cmd.handle,
		layout.handle,
		C.VkShaderStageFlags(stageFlags),
		C.uint32_t(offset),
		C.uint32_t(len(data)),
		unsafe.Pointer(&data[0]),
	)
}

// ClearColorImage fills the given ranges of image with a float color. The
// image must be in GENERAL or TRANSFER_DST_OPTIMAL layout.
func (cmd CommandBuffer) ClearColorImage(image Image, imageLayout ImageLayout, color [4]float32, ranges []ImageSubresourceRange) {
	if len(ranges) == 0 {
		return
	}

	cColor := cAlloc[C.VkClearColorValue](1)
	defer cFree(cColor)
	*(*[4]float32)(unsafe.Pointer(&cColor[0])) = color

	cRanges := cAlloc[C.VkImageSubresourceRange](len(ranges))
	defer cFree(cRanges)
	for i, r := range ranges {
		cRanges[i].aspectMask = C.VkImageAspectFlags(r.AspectMask)
		cRanges[i].baseMipLevel = C.uint32_t(r.BaseMipLevel)
		cRanges[i].levelCount = C.uint32_t(r.LevelCount)
		cRanges[i].baseArrayLayer = C.uint32_t(r.BaseArrayLayer)
		cRanges[i].layerCount = C.uint32_t(r.LayerCount)
	}

	C.vkCmdClearColorImage(cmd.handle, image.handle, C.VkImageLayout(imageLayout),
		&cColor[0], C.uint32_t(len(cRanges)), &cRanges[0])
}
