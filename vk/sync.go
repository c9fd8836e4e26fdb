// sync.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type Semaphore struct {
	handle C.VkSemaphore
}

type Fence struct {
	handle C.VkFence
}

type FenceCreateFlags uint32

const (
	FENCE_CREATE_SIGNALED_BIT FenceCreateFlags = C.VK_FENCE_CREATE_SIGNALED_BIT
)

type FenceCreateInfo struct {
	Flags FenceCreateFlags
}

func (s Semaphore) Raw() uint64 {
	return raw(unsafe.Pointer(s.handle))
}

func SemaphoreFromRaw(r uint64) Semaphore {
	return Semaphore{handle: C.VkSemaphore(fromRaw(r))}
}

func (f Fence) Raw() uint64 {
	return raw(unsafe.Pointer(f.handle))
}

func FenceFromRaw(r uint64) Fence {
	return Fence{handle: C.VkFence(fromRaw(r))}
}

func (s Semaphore) IsNull() bool {
	return s.handle == nil
}

func (f Fence) IsNull() bool {
	return f.handle == nil
}

// Semaphore
func (device Device) CreateSemaphore() (Semaphore, error) {
	cInfo := (*C.VkSemaphoreCreateInfo)(C.calloc(1, C.sizeof_VkSemaphoreCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO

	var semaphore C.VkSemaphore
	result := C.vkCreateSemaphore(device.handle, cInfo, nil, &semaphore)

	if result != C.VK_SUCCESS {
		return Semaphore{}, Result(result)
	}

	return Semaphore{handle: semaphore}, nil
}

func (device Device) DestroySemaphore(semaphore Semaphore) {
	C.vkDestroySemaphore(device.handle, semaphore.handle, nil)
}

// Fence
func (device Device) CreateFence(createInfo *FenceCreateInfo) (Fence, error) {
	cInfo := (*C.VkFenceCreateInfo)(C.calloc(1, C.sizeof_VkFenceCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_FENCE_CREATE_INFO
	cInfo.flags = C.VkFenceCreateFlags(createInfo.Flags)

	var fence C.VkFence
	result := C.vkCreateFence(device.handle, cInfo, nil, &fence)

	if result != C.VK_SUCCESS {
		return Fence{}, Result(result)
	}

	return Fence{handle: fence}, nil
}

func (device Device) DestroyFence(fence Fence) {
	C.vkDestroyFence(device.handle, fence.handle, nil)
}

// WaitForFences reports TIMEOUT as an error so callers can tell a slow
// device from a hung one.
func (device Device) WaitForFences(fences []Fence, waitAll bool, timeout uint64) error {
	if len(fences) == 0 {
		return nil
	}

	cFences := cAlloc[C.VkFence](len(fences))
	defer cFree(cFences)
	for i, fence := range fences {
		cFences[i] = fence.handle
	}

	result := C.vkWaitForFences(device.handle, C.uint32_t(len(cFences)), &cFences[0], vkBool(waitAll), C.uint64_t(timeout))

	if result != C.VK_SUCCESS {
		return Result(result)
	}

	return nil
}

func (device Device) ResetFences(fences []Fence) error {
	if len(fences) == 0 {
		return nil
	}

	cFences := cAlloc[C.VkFence](len(fences))
	defer cFree(cFences)
	for i, fence := range fences {
		cFences[i] = fence.handle
	}

	result := C.vkResetFences(device.handle, C.uint32_t(len(cFences)), &cFences[0])

	if result != C.VK_SUCCESS {
		return Result(result)
	}

	return nil
}

// Queue Operations
type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitDstStageMask []PipelineStageFlags
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
}

func (queue Queue) Submit(submits []SubmitInfo, fence Fence) error {
	if len(submits) == 0 {
		return nil
	}

	cSubmits := cAlloc[C.VkSubmitInfo](len(submits))
	defer cFree(cSubmits)

	var allocations []unsafe.Pointer
	defer func() {
		for _, ptr := range allocations {
			C.free(ptr)
		}
	}()

	for i, submit := range submits {
		cSubmits[i].sType = C.VK_STRUCTURE_TYPE_SUBMIT_INFO

		if n := len(submit.WaitSemaphores); n > 0 {
			waits := cAlloc[C.VkSemaphore](n)
			stages := cAlloc[C.VkPipelineStageFlags](n)
			allocations = append(allocations, unsafe.Pointer(&waits[0]), unsafe.Pointer(&stages[0]))
			for j, sem := range submit.WaitSemaphores {
				waits[j] = sem.handle
				stages[j] = C.VkPipelineStageFlags(submit.WaitDstStageMask[j])
			}
			cSubmits[i].waitSemaphoreCount = C.uint32_t(n)
			cSubmits[i].pWaitSemaphores = &waits[0]
			cSubmits[i].pWaitDstStageMask = &stages[0]
		}

		if n := len(submit.CommandBuffers); n > 0 {
			cmds := cAlloc[C.VkCommandBuffer](n)
			allocations = append(allocations, unsafe.Pointer(&cmds[0]))
			for j, cmd := range submit.CommandBuffers {
				cmds[j] = cmd.handle
			}
			cSubmits[i].commandBufferCount = C.uint32_t(n)
			cSubmits[i].pCommandBuffers = &cmds[0]
		}

		if n := len(submit.SignalSemaphores); n > 0 {
			signals := cAlloc[C.VkSemaphore](n)
			allocations = append(allocations, unsafe.Pointer(&signals[0]))
			for j, sem := range submit.SignalSemaphores {
				signals[j] = sem.handle
			}
			cSubmits[i].signalSemaphoreCount = C.uint32_t(n)
			cSubmits[i].pSignalSemaphores = &signals[0]
		}
	}

	result := C.vkQueueSubmit(queue.handle, C.uint32_t(len(cSubmits)), &cSubmits[0], fence.handle)
	if result != C.VK_SUCCESS {
		return Result(result)
	}

	return nil
}

type PresentInfoKHR struct {
	WaitSemaphores []Semaphore
	Swapchains     []SwapchainKHR
	ImageIndices   []uint32
}

// QueuePresentKHR returns SUBOPTIMAL as an error value; the image was still
// queued for presentation in that case.
func (queue Queue) QueuePresentKHR(presentInfo *PresentInfoKHR) error {
	cInfo := (*C.VkPresentInfoKHR)(C.calloc(1, C.sizeof_VkPresentInfoKHR))
	defer C.free(unsafe.Pointer(cInfo))
	cInfo.sType = C.VK_STRUCTURE_TYPE_PRESENT_INFO_KHR

	waits := cAlloc[C.VkSemaphore](len(presentInfo.WaitSemaphores))
	defer cFree(waits)
	for i, sem := range presentInfo.WaitSemaphores {
		waits[i] = sem.handle
	}
	cInfo.waitSemaphoreCount = C.uint32_t(len(waits))
	cInfo.pWaitSemaphores = cFirst(waits)

	swapchains := cAlloc[C.VkSwapchainKHR](len(presentInfo.Swapchains))
	defer cFree(swapchains)
	indices := cAlloc[C.uint32_t](len(presentInfo.ImageIndices))
	defer cFree(indices)
	for i, sc := range presentInfo.Swapchains {
		swapchains[i] = sc.handle
		indices[i] = C.uint32_t(presentInfo.ImageIndices[i])
	}
	cInfo.swapchainCount = C.uint32_t(len(swapchains))
	cInfo.pSwapchains = cFirst(swapchains)
	cInfo.pImageIndices = cFirst(indices)

	result := C.vkQueuePresentKHR(queue.handle, cInfo)
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}
