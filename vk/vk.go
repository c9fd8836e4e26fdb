// Package vk is a thin cgo binding over the parts of Vulkan 1.3 the renderer uses.
// Handles are value types; create-info structs are plain Go structs that convert
// themselves to C memory for the duration of a call.
package vk

// #cgo windows LDFLAGS: -LC:/VulkanSDK/1.4.328.1/Lib -lvulkan-1
// #cgo windows CFLAGS: -IC:/VulkanSDK/1.4.328.1/Include
// #cgo linux LDFLAGS: -lvulkan
// #cgo darwin LDFLAGS: -lvulkan
// #include <vulkan/vulkan.h>
// #include <stdlib.h>
import "C"
import "unsafe"

// WHOLE_SIZE and QUEUE_FAMILY_IGNORED mirror the Vulkan sentinels.
const (
	WHOLE_SIZE           uint64 = ^uint64(0)
	QUEUE_FAMILY_IGNORED uint32 = ^uint32(0)
	REMAINING_MIP_LEVELS uint32 = ^uint32(0)
)

func MakeAPIVersion(variant, major, minor, patch uint32) uint32 {
	return variant<<29 | major<<22 | minor<<12 | patch
}

func EnumerateInstanceVersion() (uint32, error) {
	var version C.uint32_t
	result := C.vkEnumerateInstanceVersion(&version)

	if result != C.VK_SUCCESS {
		return 0, Result(result)
	}

	return uint32(version), nil
}

// cAlloc returns a zeroed C array of n elements viewed as a Go slice.
func cAlloc[T any](n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	ptr := C.calloc(C.size_t(n), C.size_t(unsafe.Sizeof(zero)))
	return unsafe.Slice((*T)(ptr), n)
}

func cFree[T any](s []T) {
	if len(s) > 0 {
		C.free(unsafe.Pointer(&s[0]))
	}
}

func cFirst[T any](s []T) *T {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}

func cStrings(names []string) []*C.char {
	out := cAlloc[*C.char](len(names))
	for i, name := range names {
		out[i] = C.CString(name)
	}
	return out
}

func freeStrings(s []*C.char) {
	for _, str := range s {
		C.free(unsafe.Pointer(str))
	}
	cFree(s)
}

func vkBool(b bool) C.VkBool32 {
	if b {
		return C.VK_TRUE
	}
	return C.VK_FALSE
}

// raw and fromRaw move non-dispatchable handles through uint64 so callers
// outside this package can store them without cgo.
func raw(p unsafe.Pointer) uint64 {
	return uint64(uintptr(p))
}

func fromRaw(r uint64) unsafe.Pointer {
	return unsafe.Pointer(uintptr(r))
}
