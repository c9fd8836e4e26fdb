// shader.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"
import "unsafe"

type ShaderModule struct {
	handle C.VkShaderModule
}

func (m ShaderModule) Raw() uint64 {
	return raw(unsafe.Pointer(m.handle))
}

func ShaderModuleFromRaw(r uint64) ShaderModule {
	return ShaderModule{handle: C.VkShaderModule(fromRaw(r))}
}

// CreateShaderModule copies code into C memory so the driver sees 4-byte
// aligned words regardless of how the Go slice was allocated.
func (device Device) CreateShaderModule(code []byte) (ShaderModule, error) {
	if len(code) == 0 {
		return ShaderModule{}, INVALID_SHADER
	}

	cInfo := (*C.VkShaderModuleCreateInfo)(C.calloc(1, C.sizeof_VkShaderModuleCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	words := C.malloc(C.size_t(len(code)))
	defer C.free(words)
	C.memcpy(words, unsafe.Pointer(&code[0]), C.size_t(len(code)))

	cInfo.sType = C.VK_STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO
	cInfo.codeSize = C.size_t(len(code))
	cInfo.pCode = (*C.uint32_t)(words)

	var shaderModule C.VkShaderModule
	result := C.vkCreateShaderModule(device.handle, cInfo, nil, &shaderModule)

	if result != C.VK_SUCCESS {
		return ShaderModule{}, Result(result)
	}

	return ShaderModule{handle: shaderModule}, nil
}

func (device Device) DestroyShaderModule(shaderModule ShaderModule) {
	C.vkDestroyShaderModule(device.handle, shaderModule.handle, nil)
}
