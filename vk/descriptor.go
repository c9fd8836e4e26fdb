// descriptor.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type DescriptorSetLayout struct {
	handle C.VkDescriptorSetLayout
}

type DescriptorPool struct {
	handle C.VkDescriptorPool
}

type DescriptorSet struct {
	handle C.VkDescriptorSet
}

type DescriptorType int32

const (
	DESCRIPTOR_TYPE_SAMPLER                DescriptorType = C.VK_DESCRIPTOR_TYPE_SAMPLER
	DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER DescriptorType = C.VK_DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER
	DESCRIPTOR_TYPE_SAMPLED_IMAGE          DescriptorType = C.VK_DESCRIPTOR_TYPE_SAMPLED_IMAGE
	DESCRIPTOR_TYPE_STORAGE_IMAGE          DescriptorType = C.VK_DESCRIPTOR_TYPE_STORAGE_IMAGE
	DESCRIPTOR_TYPE_UNIFORM_BUFFER         DescriptorType = C.VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER
	DESCRIPTOR_TYPE_STORAGE_BUFFER         DescriptorType = C.VK_DESCRIPTOR_TYPE_STORAGE_BUFFER
)

type DescriptorSetLayoutBinding struct {
	Binding         uint32
	DescriptorType  DescriptorType
	DescriptorCount uint32
	StageFlags      ShaderStageFlags
}

type DescriptorPoolSize struct {
	Type            DescriptorType
	DescriptorCount uint32
}

type WriteDescriptorSet struct {
	DstSet         DescriptorSet
	DstBinding     uint32
	DescriptorType DescriptorType
	ImageInfo      []DescriptorImageInfo
	BufferInfo     []DescriptorBufferInfo
}

type DescriptorImageInfo struct {
	Sampler     Sampler
	ImageView   ImageView
	ImageLayout ImageLayout
}

type DescriptorBufferInfo struct {
	Buffer Buffer
	Offset uint64
	Range  uint64
}

func (l DescriptorSetLayout) Raw() uint64 {
	return raw(unsafe.Pointer(l.handle))
}

func DescriptorSetLayoutFromRaw(r uint64) DescriptorSetLayout {
	return DescriptorSetLayout{handle: C.VkDescriptorSetLayout(fromRaw(r))}
}

func (p DescriptorPool) Raw() uint64 {
	return raw(unsafe.Pointer(p.handle))
}

func DescriptorPoolFromRaw(r uint64) DescriptorPool {
	return DescriptorPool{handle: C.VkDescriptorPool(fromRaw(r))}
}

func (s DescriptorSet) Raw() uint64 {
	return raw(unsafe.Pointer(s.handle))
}

func DescriptorSetFromRaw(r uint64) DescriptorSet {
	return DescriptorSet{handle: C.VkDescriptorSet(fromRaw(r))}
}

func (device Device) CreateDescriptorSetLayout(bindings []DescriptorSetLayoutBinding) (DescriptorSetLayout, error) {
	cInfo := (*C.VkDescriptorSetLayoutCreateInfo)(C.calloc(1, C.sizeof_VkDescriptorSetLayoutCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_CREATE_INFO

	cBindings := cAlloc[C.VkDescriptorSetLayoutBinding](len(bindings))
	defer cFree(cBindings)
	for i, binding := range bindings {
		cBindings[i].binding = C.uint32_t(binding.Binding)
		cBindings[i].descriptorType = C.VkDescriptorType(binding.DescriptorType)
		cBindings[i].descriptorCount = C.uint32_t(binding.DescriptorCount)
		cBindings[i].stageFlags = C.VkShaderStageFlags(binding.StageFlags)
	}
	cInfo.bindingCount = C.uint32_t(len(cBindings))
	cInfo.pBindings = cFirst(cBindings)

	var layout C.VkDescriptorSetLayout
	result := C.vkCreateDescriptorSetLayout(device.handle, cInfo, nil, &layout)

	if result != C.VK_SUCCESS {
		return DescriptorSetLayout{}, Result(result)
	}

	return DescriptorSetLayout{handle: layout}, nil
}

func (device Device) DestroyDescriptorSetLayout(layout DescriptorSetLayout) {
	C.vkDestroyDescriptorSetLayout(device.handle, layout.handle, nil)
}

// Descriptor Pool
func (device Device) CreateDescriptorPool(maxSets uint32, sizes []DescriptorPoolSize) (DescriptorPool, error) {
	cInfo := (*C.VkDescriptorPoolCreateInfo)(C.calloc(1, C.sizeof_VkDescriptorPoolCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_POOL_CREATE_INFO
	cInfo.maxSets = C.uint32_t(maxSets)

	poolSizes := cAlloc[C.VkDescriptorPoolSize](len(sizes))
	defer cFree(poolSizes)
	for i, size := range sizes {
		poolSizes[i]._type = C.VkDescriptorType(size.Type)
		poolSizes[i].descriptorCount = C.uint32_t(size.DescriptorCount)
	}
	cInfo.poolSizeCount = C.uint32_t(len(poolSizes))
	cInfo.pPoolSizes = cFirst(poolSizes)

	var pool C.VkDescriptorPool
	result := C.vkCreateDescriptorPool(device.handle, cInfo, nil, &pool)

	if result != C.VK_SUCCESS {
		return DescriptorPool{}, Result(result)
	}

	return DescriptorPool{handle: pool}, nil
}

func (device Device) DestroyDescriptorPool(pool DescriptorPool) {
	C.vkDestroyDescriptorPool(device.handle, pool.handle, nil)
}

// Descriptor Set Allocation
func (device Device) AllocateDescriptorSets(pool DescriptorPool, layouts []DescriptorSetLayout) ([]DescriptorSet, error) {
	if len(layouts) == 0 {
		return nil, nil
	}

	cInfo := (*C.VkDescriptorSetAllocateInfo)(C.calloc(1, C.sizeof_VkDescriptorSetAllocateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cLayouts := cAlloc[C.VkDescriptorSetLayout](len(layouts))
	defer cFree(cLayouts)
	for i, layout := range layouts {
		cLayouts[i] = layout.handle
	}

	cInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_ALLOCATE_INFO
	cInfo.descriptorPool = pool.handle
	cInfo.descriptorSetCount = C.uint32_t(len(cLayouts))
	cInfo.pSetLayouts = &cLayouts[0]

	sets := make([]C.VkDescriptorSet, len(layouts))
	result := C.vkAllocateDescriptorSets(device.handle, cInfo, &sets[0])

	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	descriptorSets := make([]DescriptorSet, len(sets))
	for i, set := range sets {
		descriptorSets[i] = DescriptorSet{handle: set}
	}

	return descriptorSets, nil
}

// Descriptor Set Updates
func (device Device) UpdateDescriptorSets(writes []WriteDescriptorSet) {
	if len(writes) == 0 {
		return
	}

	cWrites := cAlloc[C.VkWriteDescriptorSet](len(writes))
	defer cFree(cWrites)

	var imageInfos [][]C.VkDescriptorImageInfo
	var bufferInfos [][]C.VkDescriptorBufferInfo
	defer func() {
		for _, info := range imageInfos {
			cFree(info)
		}
		for _, info := range bufferInfos {
			cFree(info)
		}
	}()

	for i, write := range writes {
		cWrites[i].sType = C.VK_STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET
		cWrites[i].dstSet = write.DstSet.handle
		cWrites[i].dstBinding = C.uint32_t(write.DstBinding)
		cWrites[i].descriptorType = C.VkDescriptorType(write.DescriptorType)

		if len(write.ImageInfo) > 0 {
			imgInfo := cAlloc[C.VkDescriptorImageInfo](len(write.ImageInfo))
			for j, info := range write.ImageInfo {
				imgInfo[j].sampler = info.Sampler.handle
				imgInfo[j].imageView = info.ImageView.handle
				imgInfo[j].imageLayout = C.VkImageLayout(info.ImageLayout)
			}
			imageInfos = append(imageInfos, imgInfo)

			cWrites[i].descriptorCount = C.uint32_t(len(imgInfo))
			cWrites[i].pImageInfo = &imgInfo[0]
		}

		if len(write.BufferInfo) > 0 {
			bufInfo := cAlloc[C.VkDescriptorBufferInfo](len(write.BufferInfo))
			for j, info := range write.BufferInfo {
				bufInfo[j].buffer = info.Buffer.handle
				bufInfo[j].offset = C.VkDeviceSize(info.Offset)
				bufInfo[j]._range = C.VkDeviceSize(info.Range)
			}
			bufferInfos = append(bufferInfos, bufInfo)

			cWrites[i].descriptorCount = C.uint32_t(len(bufInfo))
			cWrites[i].pBufferInfo = &bufInfo[0]
		}
	}

	C.vkUpdateDescriptorSets(device.handle, C.uint32_t(len(cWrites)), &cWrites[0], 0, nil)
}
