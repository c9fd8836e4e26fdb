package vulkan

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/vk"
)

// The backend converts gpu enums to vk ones with a plain cast.
func TestEnumsMatchVulkan(t *testing.T) {
	pairs := []struct {
		name    string
		gpu, vk int64
	}{
		{"R8G8B8A8_UNORM", int64(gpu.FormatR8G8B8A8Unorm), int64(vk.FORMAT_R8G8B8A8_UNORM)},
		{"R8G8B8A8_SRGB", int64(gpu.FormatR8G8B8A8Srgb), int64(vk.FORMAT_R8G8B8A8_SRGB)},
		{"B8G8R8A8_UNORM", int64(gpu.FormatB8G8R8A8Unorm), int64(vk.FORMAT_B8G8R8A8_UNORM)},
		{"B8G8R8A8_SRGB", int64(gpu.FormatB8G8R8A8Srgb), int64(vk.FORMAT_B8G8R8A8_SRGB)},
		{"R16G16B16A16_SFLOAT", int64(gpu.FormatR16G16B16A16Sfloat), int64(vk.FORMAT_R16G16B16A16_SFLOAT)},
		{"R32G32B32A32_SFLOAT", int64(gpu.FormatR32G32B32A32Sfloat), int64(vk.FORMAT_R32G32B32A32_SFLOAT)},
		{"SRGB_NONLINEAR", int64(gpu.ColorSpaceSRGBNonlinear), int64(vk.COLOR_SPACE_SRGB_NONLINEAR_KHR)},

		{"IMMEDIATE", int64(gpu.PresentModeImmediate), int64(vk.PRESENT_MODE_IMMEDIATE_KHR)},
		{"MAILBOX", int64(gpu.PresentModeMailbox), int64(vk.PRESENT_MODE_MAILBOX_KHR)},
		{"FIFO", int64(gpu.PresentModeFIFO), int64(vk.PRESENT_MODE_FIFO_KHR)},
		{"FIFO_RELAXED", int64(gpu.PresentModeFIFORelaxed), int64(vk.PRESENT_MODE_FIFO_RELAXED_KHR)},

		{"UNDEFINED", int64(gpu.LayoutUndefined), int64(vk.IMAGE_LAYOUT_UNDEFINED)},
		{"GENERAL", int64(gpu.LayoutGeneral), int64(vk.IMAGE_LAYOUT_GENERAL)},
		{"COLOR_ATTACHMENT", int64(gpu.LayoutColorAttachment), int64(vk.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL)},
		{"SHADER_READ_ONLY", int64(gpu.LayoutShaderReadOnly), int64(vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL)},
		{"TRANSFER_SRC", int64(gpu.LayoutTransferSrc), int64(vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL)},
		{"TRANSFER_DST", int64(gpu.LayoutTransferDst), int64(vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL)},
		{"PRESENT_SRC", int64(gpu.LayoutPresentSrc), int64(vk.IMAGE_LAYOUT_PRESENT_SRC_KHR)},

		{"VERTEX_ATTRIBUTE_READ", int64(gpu.AccessVertexAttributeRead), int64(vk.ACCESS_VERTEX_ATTRIBUTE_READ_BIT)},
		{"UNIFORM_READ", int64(gpu.AccessUniformRead), int64(vk.ACCESS_UNIFORM_READ_BIT)},
		{"SHADER_READ", int64(gpu.AccessShaderRead), int64(vk.ACCESS_SHADER_READ_BIT)},
		{"SHADER_WRITE", int64(gpu.AccessShaderWrite), int64(vk.ACCESS_SHADER_WRITE_BIT)},
		{"COLOR_ATTACHMENT_READ", int64(gpu.AccessColorAttachmentRead), int64(vk.ACCESS_COLOR_ATTACHMENT_READ_BIT)},
		{"COLOR_ATTACHMENT_WRITE", int64(gpu.AccessColorAttachmentWrite), int64(vk.ACCESS_COLOR_ATTACHMENT_WRITE_BIT)},
		{"TRANSFER_READ", int64(gpu.AccessTransferRead), int64(vk.ACCESS_TRANSFER_READ_BIT)},
		{"TRANSFER_WRITE", int64(gpu.AccessTransferWrite), int64(vk.ACCESS_TRANSFER_WRITE_BIT)},
		{"HOST_WRITE", int64(gpu.AccessHostWrite), int64(vk.ACCESS_HOST_WRITE_BIT)},

		{"TOP_OF_PIPE", int64(gpu.StageTopOfPipe), int64(vk.PIPELINE_STAGE_TOP_OF_PIPE_BIT)},
		{"VERTEX_INPUT", int64(gpu.StageVertexInput), int64(vk.PIPELINE_STAGE_VERTEX_INPUT_BIT)},
		{"VERTEX_SHADER", int64(gpu.StageVertexShader), int64(vk.PIPELINE_STAGE_VERTEX_SHADER_BIT)},
		{"FRAGMENT_SHADER", int64(gpu.StageFragmentShader), int64(vk.PIPELINE_STAGE_FRAGMENT_SHADER_BIT)},
		{"COLOR_ATTACHMENT_OUTPUT", int64(gpu.StageColorAttachmentOutput), int64(vk.PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT)},
		{"COMPUTE_SHADER", int64(gpu.StageComputeShader), int64(vk.PIPELINE_STAGE_COMPUTE_SHADER_BIT)},
		{"TRANSFER", int64(gpu.StageTransfer), int64(vk.PIPELINE_STAGE_TRANSFER_BIT)},
		{"BOTTOM_OF_PIPE", int64(gpu.StageBottomOfPipe), int64(vk.PIPELINE_STAGE_BOTTOM_OF_PIPE_BIT)},
		{"HOST", int64(gpu.StageHost), int64(vk.PIPELINE_STAGE_HOST_BIT)},
		{"ALL_COMMANDS", int64(gpu.StageAllCommands), int64(vk.PIPELINE_STAGE_ALL_COMMANDS_BIT)},

		{"BUFFER_TRANSFER_SRC", int64(gpu.BufferUsageTransferSrc), int64(vk.BUFFER_USAGE_TRANSFER_SRC_BIT)},
		{"BUFFER_TRANSFER_DST", int64(gpu.BufferUsageTransferDst), int64(vk.BUFFER_USAGE_TRANSFER_DST_BIT)},
		{"BUFFER_UNIFORM", int64(gpu.BufferUsageUniform), int64(vk.BUFFER_USAGE_UNIFORM_BUFFER_BIT)},
		{"BUFFER_STORAGE", int64(gpu.BufferUsageStorage), int64(vk.BUFFER_USAGE_STORAGE_BUFFER_BIT)},
		{"BUFFER_INDEX", int64(gpu.BufferUsageIndex), int64(vk.BUFFER_USAGE_INDEX_BUFFER_BIT)},
		{"BUFFER_VERTEX", int64(gpu.BufferUsageVertex), int64(vk.BUFFER_USAGE_VERTEX_BUFFER_BIT)},

		{"IMAGE_TRANSFER_SRC", int64(gpu.ImageUsageTransferSrc), int64(vk.IMAGE_USAGE_TRANSFER_SRC_BIT)},
		{"IMAGE_TRANSFER_DST", int64(gpu.ImageUsageTransferDst), int64(vk.IMAGE_USAGE_TRANSFER_DST_BIT)},
		{"IMAGE_SAMPLED", int64(gpu.ImageUsageSampled), int64(vk.IMAGE_USAGE_SAMPLED_BIT)},
		{"IMAGE_STORAGE", int64(gpu.ImageUsageStorage), int64(vk.IMAGE_USAGE_STORAGE_BIT)},
		{"IMAGE_COLOR_ATTACHMENT", int64(gpu.ImageUsageColorAttachment), int64(vk.IMAGE_USAGE_COLOR_ATTACHMENT_BIT)},

		{"DEVICE_LOCAL", int64(gpu.MemoryDeviceLocal), int64(vk.MEMORY_PROPERTY_DEVICE_LOCAL_BIT)},
		{"HOST_VISIBLE", int64(gpu.MemoryHostVisible), int64(vk.MEMORY_PROPERTY_HOST_VISIBLE_BIT)},
		{"HOST_COHERENT", int64(gpu.MemoryHostCoherent), int64(vk.MEMORY_PROPERTY_HOST_COHERENT_BIT)},
		{"HOST_CACHED", int64(gpu.MemoryHostCached), int64(vk.MEMORY_PROPERTY_HOST_CACHED_BIT)},

		{"STAGE_VERTEX", int64(gpu.ShaderStageVertex), int64(vk.SHADER_STAGE_VERTEX_BIT)},
		{"STAGE_FRAGMENT", int64(gpu.ShaderStageFragment), int64(vk.SHADER_STAGE_FRAGMENT_BIT)},
		{"STAGE_COMPUTE", int64(gpu.ShaderStageCompute), int64(vk.SHADER_STAGE_COMPUTE_BIT)},

		{"SAMPLER", int64(gpu.DescriptorSampler), int64(vk.DESCRIPTOR_TYPE_SAMPLER)},
		{"COMBINED_IMAGE_SAMPLER", int64(gpu.DescriptorCombinedImageSampler), int64(vk.DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER)},
		{"SAMPLED_IMAGE", int64(gpu.DescriptorSampledImage), int64(vk.DESCRIPTOR_TYPE_SAMPLED_IMAGE)},
		{"STORAGE_IMAGE", int64(gpu.DescriptorStorageImage), int64(vk.DESCRIPTOR_TYPE_STORAGE_IMAGE)},
		{"UNIFORM_BUFFER", int64(gpu.DescriptorUniformBuffer), int64(vk.DESCRIPTOR_TYPE_UNIFORM_BUFFER)},
		{"STORAGE_BUFFER", int64(gpu.DescriptorStorageBuffer), int64(vk.DESCRIPTOR_TYPE_STORAGE_BUFFER)},

		{"BIND_GRAPHICS", int64(gpu.BindGraphics), int64(vk.PIPELINE_BIND_POINT_GRAPHICS)},
		{"BIND_COMPUTE", int64(gpu.BindCompute), int64(vk.PIPELINE_BIND_POINT_COMPUTE)},
	}

	for _, p := range pairs {
		assert.Equal(t, p.vk, p.gpu, p.name)
	}
	assert.Equal(t, vk.WHOLE_SIZE, gpu.WholeSize)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		result vk.Result
		want   error
	}{
		{vk.OUT_OF_DATE, gpu.ErrSurfaceOutdated},
		{vk.SUBOPTIMAL, gpu.ErrSurfaceSuboptimal},
		{vk.TIMEOUT, gpu.ErrTimeout},
		{vk.NOT_READY, gpu.ErrTimeout},
		{vk.DEVICE_LOST, gpu.ErrDeviceLost},
	}

	for _, tt := range tests {
		t.Run(tt.result.Error(), func(t *testing.T) {
			err := translate(tt.result)
			require.ErrorIs(t, err, tt.want)

			var r vk.Result
			require.ErrorAs(t, err, &r)
			assert.Equal(t, tt.result, r)
		})
	}
}

func TestTranslatePassesOtherErrorsThrough(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.Equal(t, vk.OUT_OF_DEVICE_MEMORY, translate(vk.OUT_OF_DEVICE_MEMORY))

	plain := errors.New("boom")
	assert.Same(t, plain, translate(plain))
}

func TestNanos(t *testing.T) {
	assert.Equal(t, uint64(math.MaxUint64), nanos(0))
	assert.Equal(t, uint64(1_000_000), nanos(time.Millisecond))
}
