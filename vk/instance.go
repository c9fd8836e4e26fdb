// instance.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type Instance struct {
	handle C.VkInstance
}

type PhysicalDevice struct {
	handle C.VkPhysicalDevice
}

type SurfaceKHR struct {
	handle C.VkSurfaceKHR
}

type ApplicationInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	ApiVersion         uint32
}

type InstanceCreateInfo struct {
	ApplicationInfo       *ApplicationInfo
	EnabledLayerNames     []string
	EnabledExtensionNames []string
}

type LayerProperties struct {
	LayerName             string
	SpecVersion           uint32
	ImplementationVersion uint32
	Description           string
}

type instanceCreateData struct {
	cInfo      *C.VkInstanceCreateInfo
	appInfo    *C.VkApplicationInfo
	appName    *C.char
	engineName *C.char
	layers     []*C.char
	extensions []*C.char
}

func (info *InstanceCreateInfo) vulkanize() *instanceCreateData {
	data := &instanceCreateData{}

	data.cInfo = (*C.VkInstanceCreateInfo)(C.calloc(1, C.sizeof_VkInstanceCreateInfo))
	data.cInfo.sType = C.VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO
	data.cInfo.pNext = nil

	if app := info.ApplicationInfo; app != nil {
		data.appInfo = (*C.VkApplicationInfo)(C.calloc(1, C.sizeof_VkApplicationInfo))
		data.appInfo.sType = C.VK_STRUCTURE_TYPE_APPLICATION_INFO
		data.appName = C.CString(app.ApplicationName)
		data.engineName = C.CString(app.EngineName)
		data.appInfo.pApplicationName = data.appName
		data.appInfo.applicationVersion = C.uint32_t(app.ApplicationVersion)
		data.appInfo.pEngineName = data.engineName
		data.appInfo.engineVersion = C.uint32_t(app.EngineVersion)
		data.appInfo.apiVersion = C.uint32_t(app.ApiVersion)
		data.cInfo.pApplicationInfo = data.appInfo
	}

	data.layers = cStrings(info.EnabledLayerNames)
	data.cInfo.enabledLayerCount = C.uint32_t(len(data.layers))
	data.cInfo.ppEnabledLayerNames = cFirst(data.layers)

	data.extensions = cStrings(info.EnabledExtensionNames)
	data.cInfo.enabledExtensionCount = C.uint32_t(len(data.extensions))
	data.cInfo.ppEnabledExtensionNames = cFirst(data.extensions)

	return data
}

func (data *instanceCreateData) free() {
	freeStrings(data.layers)
	freeStrings(data.extensions)
	if data.appName != nil {
		C.free(unsafe.Pointer(data.appName))
	}
	if data.engineName != nil {
		C.free(unsafe.Pointer(data.engineName))
	}
	if data.appInfo != nil {
		C.free(unsafe.Pointer(data.appInfo))
	}
	if data.cInfo != nil {
		C.free(unsafe.Pointer(data.cInfo))
	}
}

func CreateInstance(createInfo *InstanceCreateInfo) (Instance, error) {
	data := createInfo.vulkanize()
	defer data.free()

	var instance C.VkInstance
	result := C.vkCreateInstance(data.cInfo, nil, &instance)

	if result != C.VK_SUCCESS {
		return Instance{}, Result(result)
	}

	return Instance{handle: instance}, nil
}

func (instance Instance) Destroy() {
	C.vkDestroyInstance(instance.handle, nil)
}

// Ptr exposes the dispatchable handle for window-system surface creation.
func (instance Instance) Ptr() unsafe.Pointer {
	return unsafe.Pointer(instance.handle)
}

func EnumerateInstanceLayerProperties() ([]LayerProperties, error) {
	var count C.uint32_t
	result := C.vkEnumerateInstanceLayerProperties(&count, nil)
	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	if count == 0 {
		return nil, nil
	}

	props := make([]C.VkLayerProperties, count)
	result = C.vkEnumerateInstanceLayerProperties(&count, &props[0])
	if result != C.VK_SUCCESS && result != C.VK_INCOMPLETE {
		return nil, Result(result)
	}

	layers := make([]LayerProperties, count)
	for i := range layers {
		layers[i] = LayerProperties{
			LayerName:             C.GoString(&props[i].layerName[0]),
			SpecVersion:           uint32(props[i].specVersion),
			ImplementationVersion: uint32(props[i].implementationVersion),
			Description:           C.GoString(&props[i].description[0]),
		}
	}

	return layers, nil
}

func (instance Instance) EnumeratePhysicalDevices() ([]PhysicalDevice, error) {
	var count C.uint32_t
	result := C.vkEnumeratePhysicalDevices(instance.handle, &count, nil)
	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	if count == 0 {
		return nil, nil
	}

	handles := make([]C.VkPhysicalDevice, count)
	result = C.vkEnumeratePhysicalDevices(instance.handle, &count, &handles[0])
	if result != C.VK_SUCCESS && result != C.VK_INCOMPLETE {
		return nil, Result(result)
	}

	devices := make([]PhysicalDevice, count)
	for i := range devices {
		devices[i] = PhysicalDevice{handle: handles[i]}
	}

	return devices, nil
}

// SurfaceFromRaw wraps a surface created by the window system.
func SurfaceFromRaw(handle uintptr) SurfaceKHR {
	return SurfaceKHR{handle: C.VkSurfaceKHR(fromRaw(uint64(handle)))}
}

func (instance Instance) DestroySurfaceKHR(surface SurfaceKHR) {
	C.vkDestroySurfaceKHR(instance.handle, surface.handle, nil)
}
