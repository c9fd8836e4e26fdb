// image.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type Image struct {
	handle C.VkImage
}

type ImageView struct {
	handle C.VkImageView
}

type Sampler struct {
	handle C.VkSampler
}

type ImageCreateInfo struct {
	Format      Format
	Extent      Extent3D
	Usage       ImageUsageFlags
	SharingMode SharingMode
}

type ImageViewCreateInfo struct {
	Image            Image
	Format           Format
	SubresourceRange ImageSubresourceRange
}

type Filter int32
type SamplerAddressMode int32

const (
	FILTER_NEAREST Filter = C.VK_FILTER_NEAREST
	FILTER_LINEAR  Filter = C.VK_FILTER_LINEAR

	SAMPLER_ADDRESS_MODE_REPEAT          SamplerAddressMode = C.VK_SAMPLER_ADDRESS_MODE_REPEAT
	SAMPLER_ADDRESS_MODE_MIRRORED_REPEAT SamplerAddressMode = C.VK_SAMPLER_ADDRESS_MODE_MIRRORED_REPEAT
	SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE   SamplerAddressMode = C.VK_SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE
)

type SamplerCreateInfo struct {
	MagFilter   Filter
	MinFilter   Filter
	AddressMode SamplerAddressMode
}

func (image Image) Raw() uint64 {
	return raw(unsafe.Pointer(image.handle))
}

func ImageFromRaw(r uint64) Image {
	return Image{handle: C.VkImage(fromRaw(r))}
}

func (view ImageView) Raw() uint64 {
	return raw(unsafe.Pointer(view.handle))
}

func ImageViewFromRaw(r uint64) ImageView {
	return ImageView{handle: C.VkImageView(fromRaw(r))}
}

func (sampler Sampler) Raw() uint64 {
	return raw(unsafe.Pointer(sampler.handle))
}

func SamplerFromRaw(r uint64) Sampler {
	return Sampler{handle: C.VkSampler(fromRaw(r))}
}

// CreateImage creates a single-level 2D image with optimal tiling.
func (device Device) CreateImage(createInfo *ImageCreateInfo) (Image, error) {
	cInfo := (*C.VkImageCreateInfo)(C.calloc(1, C.sizeof_VkImageCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_IMAGE_CREATE_INFO
	cInfo.imageType = C.VK_IMAGE_TYPE_2D
	cInfo.format = C.VkFormat(createInfo.Format)
	cInfo.extent.width = C.uint32_t(createInfo.Extent.Width)
	cInfo.extent.height = C.uint32_t(createInfo.Extent.Height)
	cInfo.extent.depth = C.uint32_t(max(createInfo.Extent.Depth, 1))
	cInfo.mipLevels = 1
	cInfo.arrayLayers = 1
	cInfo.samples = C.VK_SAMPLE_COUNT_1_BIT
	cInfo.tiling = C.VK_IMAGE_TILING_OPTIMAL
	cInfo.usage = C.VkImageUsageFlags(createInfo.Usage)
	cInfo.sharingMode = C.VkSharingMode(createInfo.SharingMode)
	cInfo.initialLayout = C.VK_IMAGE_LAYOUT_UNDEFINED

	var image C.VkImage
	result := C.vkCreateImage(device.handle, cInfo, nil, &image)

	if result != C.VK_SUCCESS {
		return Image{}, Result(result)
	}

	return Image{handle: image}, nil
}

func (device Device) DestroyImage(image Image) {
	C.vkDestroyImage(device.handle, image.handle, nil)
}

func (device Device) GetImageMemoryRequirements(image Image) MemoryRequirements {
	var memReqs C.VkMemoryRequirements
	C.vkGetImageMemoryRequirements(device.handle, image.handle, &memReqs)

	return MemoryRequirements{
		Size:           uint64(memReqs.size),
		Alignment:      uint64(memReqs.alignment),
		MemoryTypeBits: uint32(memReqs.memoryTypeBits),
	}
}

func (device Device) BindImageMemory(image Image, memory DeviceMemory, offset uint64) error {
	result := C.vkBindImageMemory(device.handle, image.handle, memory.handle, C.VkDeviceSize(offset))
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}

func (device Device) CreateImageView(createInfo *ImageViewCreateInfo) (ImageView, error) {
	cInfo := (*C.VkImageViewCreateInfo)(C.calloc(1, C.sizeof_VkImageViewCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_IMAGE_VIEW_CREATE_INFO
	cInfo.image = createInfo.Image.handle
	cInfo.viewType = C.VK_IMAGE_VIEW_TYPE_2D
	cInfo.format = C.VkFormat(createInfo.Format)
	cInfo.components.r = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.components.g = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.components.b = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.components.a = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.subresourceRange.aspectMask = C.VkImageAspectFlags(createInfo.SubresourceRange.AspectMask)
	cInfo.subresourceRange.baseMipLevel = C.uint32_t(createInfo.SubresourceRange.BaseMipLevel)
	cInfo.subresourceRange.levelCount = C.uint32_t(createInfo.SubresourceRange.LevelCount)
	cInfo.subresourceRange.baseArrayLayer = C.uint32_t(createInfo.SubresourceRange.BaseArrayLayer)
	cInfo.subresourceRange.layerCount = C.uint32_t(createInfo.SubresourceRange.LayerCount)

	var view C.VkImageView
	result := C.vkCreateImageView(device.handle, cInfo, nil, &view)

	if result != C.VK_SUCCESS {
		return ImageView{}, Result(result)
	}

	return ImageView{handle: view}, nil
}

func (device Device) DestroyImageView(imageView ImageView) {
	C.vkDestroyImageView(device.handle, imageView.handle, nil)
}

func (device Device) CreateSampler(createInfo *SamplerCreateInfo) (Sampler, error) {
	cInfo := (*C.VkSamplerCreateInfo)(C.calloc(1, C.sizeof_VkSamplerCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_SAMPLER_CREATE_INFO
	cInfo.magFilter = C.VkFilter(createInfo.MagFilter)
	cInfo.minFilter = C.VkFilter(createInfo.MinFilter)
	cInfo.mipmapMode = C.VK_SAMPLER_MIPMAP_MODE_LINEAR
	cInfo.addressModeU = C.VkSamplerAddressMode(createInfo.AddressMode)
	cInfo.addressModeV = C.VkSamplerAddressMode(createInfo.AddressMode)
	cInfo.addressModeW = C.VkSamplerAddressMode(createInfo.AddressMode)
	cInfo.anisotropyEnable = C.VK_FALSE
	cInfo.maxAnisotropy = 1
	cInfo.compareEnable = C.VK_FALSE
	cInfo.compareOp = C.VK_COMPARE_OP_ALWAYS
	cInfo.borderColor = C.VK_BORDER_COLOR_INT_OPAQUE_BLACK
	cInfo.unnormalizedCoordinates = C.VK_FALSE

	var sampler C.VkSampler
	result := C.vkCreateSampler(device.handle, cInfo, nil, &sampler)

	if result != C.VK_SUCCESS {
		return Sampler{}, Result(result)
	}

	return Sampler{handle: sampler}, nil
}

func (device Device) DestroySampler(sampler Sampler) {
	C.vkDestroySampler(device.handle, sampler.handle, nil)
}
