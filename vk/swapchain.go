// swapchain.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type SwapchainKHR struct {
	handle C.VkSwapchainKHR
}

type SwapchainCreateInfoKHR struct {
	Surface         SurfaceKHR
	MinImageCount   uint32
	ImageFormat     Format
	ImageColorSpace ColorSpaceKHR
	ImageExtent     Extent2D
	ImageUsage      ImageUsageFlags
	PreTransform    SurfaceTransformFlagsKHR
	CompositeAlpha  CompositeAlphaFlagsKHR
	PresentMode     PresentModeKHR
	OldSwapchain    SwapchainKHR
}

func (s SwapchainKHR) Raw() uint64 {
	return raw(unsafe.Pointer(s.handle))
}

func SwapchainFromRaw(r uint64) SwapchainKHR {
	return SwapchainKHR{handle: C.VkSwapchainKHR(fromRaw(r))}
}

func (info *SwapchainCreateInfoKHR) vulkanize() *C.VkSwapchainCreateInfoKHR {
	cInfo := (*C.VkSwapchainCreateInfoKHR)(C.calloc(1, C.sizeof_VkSwapchainCreateInfoKHR))
	cInfo.sType = C.VK_STRUCTURE_TYPE_SWAPCHAIN_CREATE_INFO_KHR
	cInfo.surface = info.Surface.handle
	cInfo.minImageCount = C.uint32_t(info.MinImageCount)
	cInfo.imageFormat = C.VkFormat(info.ImageFormat)
	cInfo.imageColorSpace = C.VkColorSpaceKHR(info.ImageColorSpace)
	cInfo.imageExtent.width = C.uint32_t(info.ImageExtent.Width)
	cInfo.imageExtent.height = C.uint32_t(info.ImageExtent.Height)
	cInfo.imageArrayLayers = 1
	cInfo.imageUsage = C.VkImageUsageFlags(info.ImageUsage)

	// Graphics and present share a family on every device we accept.
	cInfo.imageSharingMode = C.VK_SHARING_MODE_EXCLUSIVE

	cInfo.preTransform = C.VkSurfaceTransformFlagBitsKHR(info.PreTransform)
	cInfo.compositeAlpha = C.VkCompositeAlphaFlagBitsKHR(info.CompositeAlpha)
	cInfo.presentMode = C.VkPresentModeKHR(info.PresentMode)
	cInfo.clipped = C.VK_TRUE
	cInfo.oldSwapchain = info.OldSwapchain.handle
	return cInfo
}

func (device Device) CreateSwapchainKHR(createInfo *SwapchainCreateInfoKHR) (SwapchainKHR, error) {
	cInfo := createInfo.vulkanize()
	defer C.free(unsafe.Pointer(cInfo))

	var swapchain C.VkSwapchainKHR
	result := C.vkCreateSwapchainKHR(device.handle, cInfo, nil, &swapchain)

	if result != C.VK_SUCCESS {
		return SwapchainKHR{}, Result(result)
	}

	return SwapchainKHR{handle: swapchain}, nil
}

func (device Device) DestroySwapchainKHR(swapchain SwapchainKHR) {
	C.vkDestroySwapchainKHR(device.handle, swapchain.handle, nil)
}

func (device Device) GetSwapchainImagesKHR(swapchain SwapchainKHR) ([]Image, error) {
	var count C.uint32_t
	result := C.vkGetSwapchainImagesKHR(device.handle, swapchain.handle, &count, nil)

	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	images := make([]C.VkImage, count)
	result = C.vkGetSwapchainImagesKHR(device.handle, swapchain.handle, &count, &images[0])

	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	goImages := make([]Image, count)
	for i := range goImages {
		goImages[i] = Image{handle: images[i]}
	}

	return goImages, nil
}

// AcquireNextImageKHR returns SUBOPTIMAL alongside a valid index; callers
// decide whether to keep rendering into it.
func (device Device) AcquireNextImageKHR(swapchain SwapchainKHR, timeout uint64, semaphore Semaphore, fence Fence) (uint32, error) {
	var imageIndex C.uint32_t
	result := C.vkAcquireNextImageKHR(device.handle, swapchain.handle, C.uint64_t(timeout), semaphore.handle, fence.handle, &imageIndex)

	if result != C.VK_SUCCESS {
		return uint32(imageIndex), Result(result)
	}

	return uint32(imageIndex), nil
}
