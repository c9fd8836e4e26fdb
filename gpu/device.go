package gpu

import "time"

// Allocator owns buffers, images and their memory.
type Allocator interface {
	MemoryProperties() MemoryProperties

	CreateBuffer(size uint64, usage BufferUsage) (BufferHandle, MemoryRequirements, error)
	DestroyBuffer(b BufferHandle)
	AllocateMemory(size uint64, typeIndex uint32) (MemoryHandle, error)
	FreeMemory(m MemoryHandle)
	BindBufferMemory(b BufferHandle, m MemoryHandle) error
	MapMemory(m MemoryHandle, size uint64) ([]byte, error)
	UnmapMemory(m MemoryHandle)

	CreateImage(info ImageInfo) (ImageHandle, MemoryRequirements, error)
	DestroyImage(img ImageHandle)
	BindImageMemory(img ImageHandle, m MemoryHandle) error
	CreateImageView(img ImageHandle, format Format) (ViewHandle, error)
	DestroyImageView(v ViewHandle)
	CreateSampler(info SamplerInfo) (SamplerHandle, error)
	DestroySampler(s SamplerHandle)
}

// Syncer creates fences and binary semaphores. A zero timeout waits forever.
type Syncer interface {
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(f Fence)
	WaitFence(f Fence, timeout time.Duration) error
	ResetFence(f Fence) error
	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(s Semaphore)
}

// Commands hands out resettable command buffers from the device's pool.
type Commands interface {
	AllocateCommandBuffers(n int) ([]CommandBuffer, error)
	FreeCommandBuffers(cmds []CommandBuffer)
}

type Pipelines interface {
	CreateShaderModule(code []byte) (ShaderModule, error)
	DestroyShaderModule(m ShaderModule)

	CreateDescriptorSetLayout(bindings []LayoutBinding) (SetLayout, error)
	DestroyDescriptorSetLayout(l SetLayout)
	CreateDescriptorPool(maxSets uint32, sizes []PoolSize) (DescriptorPool, error)
	DestroyDescriptorPool(p DescriptorPool)
	AllocateDescriptorSets(p DescriptorPool, layouts []SetLayout) ([]DescriptorSet, error)
	UpdateDescriptorSets(writes []DescriptorWrite)

	CreatePipelineLayout(sets []SetLayout, push []PushRange) (PipelineLayout, error)
	DestroyPipelineLayout(l PipelineLayout)
	CreateComputePipeline(layout PipelineLayout, module ShaderModule, entry string) (Pipeline, error)
	CreateGraphicsPipeline(info GraphicsPipelineInfo) (Pipeline, error)
	DestroyPipeline(p Pipeline)
}

// Presenter drives the window surface. AcquireNextImage reports
// ErrSurfaceOutdated with no semaphore signaled, and ErrSurfaceSuboptimal
// alongside a usable index.
type Presenter interface {
	SurfaceSupport() (SurfaceCapabilities, []SurfaceFormat, []PresentMode, error)
	CreateSwapchain(info SwapchainInfo) (Swapchain, error)
	DestroySwapchain(sc Swapchain)
	SwapchainImages(sc Swapchain) ([]ImageHandle, error)
	AcquireNextImage(sc Swapchain, signal Semaphore, timeout time.Duration) (uint32, error)
}

type Device interface {
	Allocator
	Syncer
	Commands
	Pipelines
	Presenter

	WaitIdle() error
}

// Queue submissions complete in order. Present returns nil,
// ErrSurfaceOutdated or ErrSurfaceSuboptimal for the expected outcomes.
type Queue interface {
	Submit(info SubmitInfo) error
	Present(info PresentInfo) error
	WaitIdle() error
}

type CommandBuffer interface {
	Reset() error
	Begin(oneTime bool) error
	End() error

	PipelineBarrier(src, dst Stage, barriers Barriers)
	CopyBuffer(src, dst BufferHandle, regions ...BufferCopy)
	CopyBufferToImage(src BufferHandle, dst ImageHandle, layout ImageLayout, width, height uint32)
	ClearColorImage(img ImageHandle, layout ImageLayout, color [4]float32)

	BindPipeline(point BindPoint, p Pipeline)
	BindDescriptorSets(point BindPoint, layout PipelineLayout, first uint32, sets ...DescriptorSet)
	PushConstants(layout PipelineLayout, stages ShaderStage, offset uint32, data []byte)
	Dispatch(x, y, z uint32)

	BeginRendering(info RenderingInfo)
	EndRendering()
	SetViewport(e Extent)
	SetScissor(e Extent)
	Draw(vertices, instances uint32)
}
