// Package gpu is the backend-neutral layer the renderer is written against.
// Handles are plain integers (zero is null) and enum values match Vulkan's,
// so the vulkan backend converts them with a cast and the fake backend in
// gputest can run the whole frame protocol without a device.
package gpu

type (
	BufferHandle   uint64
	MemoryHandle   uint64
	ImageHandle    uint64
	ViewHandle     uint64
	SamplerHandle  uint64
	Fence          uint64
	Semaphore      uint64
	Pipeline       uint64
	PipelineLayout uint64
	SetLayout      uint64
	DescriptorPool uint64
	DescriptorSet  uint64
	ShaderModule   uint64
	Swapchain      uint64
)

type Format int32

const (
	FormatUndefined          Format = 0
	FormatR8G8B8A8Unorm      Format = 37
	FormatR8G8B8A8Srgb       Format = 43
	FormatB8G8R8A8Unorm      Format = 44
	FormatB8G8R8A8Srgb       Format = 50
	FormatR16G16B16A16Sfloat Format = 97
	FormatR32G32B32A32Sfloat Format = 109
)

// BytesPerPixel returns 0 for formats the renderer never uploads.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatR8G8B8A8Unorm, FormatR8G8B8A8Srgb, FormatB8G8R8A8Unorm, FormatB8G8R8A8Srgb:
		return 4
	case FormatR16G16B16A16Sfloat:
		return 8
	case FormatR32G32B32A32Sfloat:
		return 16
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "UNDEFINED"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8_UNORM"
	case FormatR8G8B8A8Srgb:
		return "R8G8B8A8_SRGB"
	case FormatB8G8R8A8Unorm:
		return "B8G8R8A8_UNORM"
	case FormatB8G8R8A8Srgb:
		return "B8G8R8A8_SRGB"
	case FormatR16G16B16A16Sfloat:
		return "R16G16B16A16_SFLOAT"
	case FormatR32G32B32A32Sfloat:
		return "R32G32B32A32_SFLOAT"
	}
	return "FORMAT_UNKNOWN"
}

type ColorSpace int32

const ColorSpaceSRGBNonlinear ColorSpace = 0

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFIFO:
		return "fifo"
	case PresentModeFIFORelaxed:
		return "fifo_relaxed"
	}
	return "unknown"
}

type ImageLayout int32

const (
	LayoutUndefined       ImageLayout = 0
	LayoutGeneral         ImageLayout = 1
	LayoutColorAttachment ImageLayout = 2
	LayoutShaderReadOnly  ImageLayout = 5
	LayoutTransferSrc     ImageLayout = 6
	LayoutTransferDst     ImageLayout = 7
	LayoutPresentSrc      ImageLayout = 1000001002
)

func (l ImageLayout) String() string {
	switch l {
	case LayoutUndefined:
		return "UNDEFINED"
	case LayoutGeneral:
		return "GENERAL"
	case LayoutColorAttachment:
		return "COLOR_ATTACHMENT_OPTIMAL"
	case LayoutShaderReadOnly:
		return "SHADER_READ_ONLY_OPTIMAL"
	case LayoutTransferSrc:
		return "TRANSFER_SRC_OPTIMAL"
	case LayoutTransferDst:
		return "TRANSFER_DST_OPTIMAL"
	case LayoutPresentSrc:
		return "PRESENT_SRC_KHR"
	}
	return "LAYOUT_UNKNOWN"
}

type Access uint32

const (
	AccessVertexAttributeRead  Access = 0x00000004
	AccessUniformRead          Access = 0x00000008
	AccessShaderRead           Access = 0x00000020
	AccessShaderWrite          Access = 0x00000040
	AccessColorAttachmentRead  Access = 0x00000080
	AccessColorAttachmentWrite Access = 0x00000100
	AccessTransferRead         Access = 0x00000800
	AccessTransferWrite        Access = 0x00001000
	AccessHostWrite            Access = 0x00004000
)

type Stage uint32

const (
	StageTopOfPipe             Stage = 0x00000001
	StageVertexInput           Stage = 0x00000004
	StageVertexShader          Stage = 0x00000008
	StageFragmentShader        Stage = 0x00000080
	StageColorAttachmentOutput Stage = 0x00000400
	StageComputeShader         Stage = 0x00000800
	StageTransfer              Stage = 0x00001000
	StageBottomOfPipe          Stage = 0x00002000
	StageHost                  Stage = 0x00004000
	StageAllCommands           Stage = 0x00010000
)

type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 0x01
	BufferUsageTransferDst BufferUsage = 0x02
	BufferUsageUniform     BufferUsage = 0x10
	BufferUsageStorage     BufferUsage = 0x20
	BufferUsageIndex       BufferUsage = 0x40
	BufferUsageVertex      BufferUsage = 0x80
)

type ImageUsage uint32

const (
	ImageUsageTransferSrc     ImageUsage = 0x01
	ImageUsageTransferDst     ImageUsage = 0x02
	ImageUsageSampled         ImageUsage = 0x04
	ImageUsageStorage         ImageUsage = 0x08
	ImageUsageColorAttachment ImageUsage = 0x10
)

type MemoryProperty uint32

const (
	MemoryDeviceLocal  MemoryProperty = 0x01
	MemoryHostVisible  MemoryProperty = 0x02
	MemoryHostCoherent MemoryProperty = 0x04
	MemoryHostCached   MemoryProperty = 0x08
)

type ShaderStage uint32

const (
	ShaderStageVertex   ShaderStage = 0x01
	ShaderStageFragment ShaderStage = 0x10
	ShaderStageCompute  ShaderStage = 0x20
)

type DescriptorType int32

const (
	DescriptorSampler              DescriptorType = 0
	DescriptorCombinedImageSampler DescriptorType = 1
	DescriptorSampledImage         DescriptorType = 2
	DescriptorStorageImage         DescriptorType = 3
	DescriptorUniformBuffer        DescriptorType = 6
	DescriptorStorageBuffer        DescriptorType = 7
)

type BindPoint int32

const (
	BindGraphics BindPoint = 0
	BindCompute  BindPoint = 1
)

// WholeSize as a range or size means "to the end of the buffer".
const WholeSize uint64 = ^uint64(0)

type Extent struct {
	Width, Height uint32
}

func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

type MemoryType struct {
	Flags MemoryProperty
	Heap  uint32
}

type MemoryProperties struct {
	Types []MemoryType
}

type MemoryRequirements struct {
	Size      uint64
	Alignment uint64
	TypeBits  uint32
}

// ImageInfo describes a single-mip, single-layer 2D image with optimal tiling.
type ImageInfo struct {
	Width, Height uint32
	Format        Format
	Usage         ImageUsage
}

type SamplerInfo struct {
	Nearest bool
	Clamp   bool
}

type SurfaceCapabilities struct {
	MinImageCount uint32
	MaxImageCount uint32
	CurrentExtent Extent
	MinExtent     Extent
	MaxExtent     Extent
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type SwapchainInfo struct {
	Extent      Extent
	Format      SurfaceFormat
	PresentMode PresentMode
	ImageCount  uint32
	Old         Swapchain
}

type LayoutBinding struct {
	Binding uint32
	Type    DescriptorType
	Stages  ShaderStage
}

type PoolSize struct {
	Type  DescriptorType
	Count uint32
}

// DescriptorWrite fills one binding. Buffer descriptors use Buffer, Offset
// and Range; image descriptors use View, Sampler and Layout.
type DescriptorWrite struct {
	Set     DescriptorSet
	Binding uint32
	Type    DescriptorType

	Buffer BufferHandle
	Offset uint64
	Range  uint64

	View    ViewHandle
	Sampler SamplerHandle
	Layout  ImageLayout
}

type PushRange struct {
	Stages ShaderStage
	Offset uint32
	Size   uint32
}

type GraphicsPipelineInfo struct {
	Layout      PipelineLayout
	Vertex      ShaderModule
	Fragment    ShaderModule
	ColorFormat Format
	Blend       bool
}

type SemaphoreWait struct {
	Semaphore Semaphore
	Stage     Stage
}

type SubmitInfo struct {
	Waits          []SemaphoreWait
	CommandBuffers []CommandBuffer
	Signal         []Semaphore
	Fence          Fence
}

type PresentInfo struct {
	Wait       Semaphore
	Swapchain  Swapchain
	ImageIndex uint32
}

type MemoryBarrier struct {
	Src, Dst Access
}

type BufferBarrier struct {
	Src, Dst Access
	Buffer   BufferHandle
	Offset   uint64
	Size     uint64
}

// ImageBarrier always covers the color aspect of mip 0, layer 0.
type ImageBarrier struct {
	Src, Dst Access
	Old, New ImageLayout
	Image    ImageHandle
}

type Barriers struct {
	Memory []MemoryBarrier
	Buffer []BufferBarrier
	Image  []ImageBarrier
}

type BufferCopy struct {
	SrcOffset, DstOffset, Size uint64
}

// RenderingInfo begins dynamic rendering into a single color view. The
// attachment is cleared to Clear and stored.
type RenderingInfo struct {
	View   ViewHandle
	Extent Extent
	Clear  [4]float32
}
