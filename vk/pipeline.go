// pipeline.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type Pipeline struct {
	handle C.VkPipeline
}

type PipelineLayout struct {
	handle C.VkPipelineLayout
}

type PushConstantRange struct {
	StageFlags ShaderStageFlags
	Offset     uint32
	Size       uint32
}

type PipelineLayoutCreateInfo struct {
	SetLayouts         []DescriptorSetLayout
	PushConstantRanges []PushConstantRange
}

// GraphicsPipelineCreateInfo describes the only pipeline shape the renderer
// draws with: vertex-less triangle lists, dynamic viewport and scissor, one
// color attachment through dynamic rendering.
type GraphicsPipelineCreateInfo struct {
	VertexShader   ShaderModule
	FragmentShader ShaderModule
	EntryPoint     string
	Layout         PipelineLayout
	ColorFormat    Format
	BlendEnable    bool
}

func (p Pipeline) Raw() uint64 {
	return raw(unsafe.Pointer(p.handle))
}

func PipelineFromRaw(r uint64) Pipeline {
	return Pipeline{handle: C.VkPipeline(fromRaw(r))}
}

func (l PipelineLayout) Raw() uint64 {
	return raw(unsafe.Pointer(l.handle))
}

func PipelineLayoutFromRaw(r uint64) PipelineLayout {
	return PipelineLayout{handle: C.VkPipelineLayout(fromRaw(r))}
}

// Pipeline Layout
func (device Device) CreatePipelineLayout(createInfo *PipelineLayoutCreateInfo) (PipelineLayout, error) {
	cInfo := (*C.VkPipelineLayoutCreateInfo)(C.calloc(1, C.sizeof_VkPipelineLayoutCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	setLayouts := cAlloc[C.VkDescriptorSetLayout](len(createInfo.SetLayouts))
	defer cFree(setLayouts)
	for i, layout := range createInfo.SetLayouts {
		setLayouts[i] = layout.handle
	}

	ranges := cAlloc[C.VkPushConstantRange](len(createInfo.PushConstantRanges))
	defer cFree(ranges)
	for i, r := range createInfo.PushConstantRanges {
		ranges[i].stageFlags = C.VkShaderStageFlags(r.StageFlags)
		ranges[i].offset = C.uint32_t(r.Offset)
		ranges[i].size = C.uint32_t(r.Size)
	}

	cInfo.sType = C.VK_STRUCTURE_TYPE_PIPELINE_LAYOUT_CREATE_INFO
	cInfo.setLayoutCount = C.uint32_t(len(setLayouts))
	cInfo.pSetLayouts = cFirst(setLayouts)
	cInfo.pushConstantRangeCount = C.uint32_t(len(ranges))
	cInfo.pPushConstantRanges = cFirst(ranges)

	var layout C.VkPipelineLayout
	result := C.vkCreatePipelineLayout(device.handle, cInfo, nil, &layout)

	if result != C.VK_SUCCESS {
		return PipelineLayout{}, Result(result)
	}

	return PipelineLayout{handle: layout}, nil
}

func (device Device) DestroyPipelineLayout(layout PipelineLayout) {
	C.vkDestroyPipelineLayout(device.handle, layout.handle, nil)
}

func (device Device) DestroyPipeline(pipeline Pipeline) {
	C.vkDestroyPipeline(device.handle, pipeline.handle, nil)
}

// Compute Pipeline
func (device Device) CreateComputePipeline(layout PipelineLayout, module ShaderModule, entryPoint string) (Pipeline, error) {
	cInfo := (*C.VkComputePipelineCreateInfo)(C.calloc(1, C.sizeof_VkComputePipelineCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	entry := C.CString(entryPoint)
	defer C.free(unsafe.Pointer(entry))

	cInfo.sType = C.VK_STRUCTURE_TYPE_COMPUTE_PIPELINE_CREATE_INFO
	cInfo.stage.sType = C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO
	cInfo.stage.stage = C.VK_SHADER_STAGE_COMPUTE_BIT
	cInfo.stage.module = module.handle
	cInfo.stage.pName = entry
	cInfo.layout = layout.handle

	var pipeline C.VkPipeline
	result := C.vkCreateComputePipelines(device.handle, nil, 1, cInfo, nil, &pipeline)

	if result != C.VK_SUCCESS {
		return Pipeline{}, Result(result)
	}

	return Pipeline{handle: pipeline}, nil
}

// Graphics Pipeline
type graphicsPipelineData struct {
	cInfo              *C.VkGraphicsPipelineCreateInfo
	shaderStages       []C.VkPipelineShaderStageCreateInfo
	entryName          *C.char
	vertexInputState   *C.VkPipelineVertexInputStateCreateInfo
	inputAssemblyState *C.VkPipelineInputAssemblyStateCreateInfo
	viewportState      *C.VkPipelineViewportStateCreateInfo
	rasterizationState *C.VkPipelineRasterizationStateCreateInfo
	multisampleState   *C.VkPipelineMultisampleStateCreateInfo
	colorBlendState    *C.VkPipelineColorBlendStateCreateInfo
	blendAttachment    *C.VkPipelineColorBlendAttachmentState
	dynamicState       *C.VkPipelineDynamicStateCreateInfo
	dynamicStates      []C.VkDynamicState
	renderingInfo      *C.VkPipelineRenderingCreateInfo
	colorFormat        *C.VkFormat
}

func (info *GraphicsPipelineCreateInfo) vulkanize() *graphicsPipelineData {
	data := &graphicsPipelineData{}

	entry := info.EntryPoint
	if entry == "" {
		entry = "main"
	}
	data.entryName = C.CString(entry)

	data.shaderStages = cAlloc[C.VkPipelineShaderStageCreateInfo](2)
	data.shaderStages[0].sType = C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO
	data.shaderStages[0].stage = C.VK_SHADER_STAGE_VERTEX_BIT
	data.shaderStages[0].module = info.VertexShader.handle
	data.shaderStages[0].pName = data.entryName
	data.shaderStages[1].sType = C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO
	data.shaderStages[1].stage = C.VK_SHADER_STAGE_FRAGMENT_BIT
	data.shaderStages[1].module = info.FragmentShader.handle
	data.shaderStages[1].pName = data.entryName

	data.vertexInputState = &cAlloc[C.VkPipelineVertexInputStateCreateInfo](1)[0]
	data.vertexInputState.sType = C.VK_STRUCTURE_TYPE_PIPELINE_VERTEX_INPUT_STATE_CREATE_INFO

	data.inputAssemblyState = &cAlloc[C.VkPipelineInputAssemblyStateCreateInfo](1)[0]
	data.inputAssemblyState.sType = C.VK_STRUCTURE_TYPE_PIPELINE_INPUT_ASSEMBLY_STATE_CREATE_INFO
	data.inputAssemblyState.topology = C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_LIST

	// Viewport and scissor are dynamic; only the counts matter here.
	data.viewportState = &cAlloc[C.VkPipelineViewportStateCreateInfo](1)[0]
	data.viewportState.sType = C.VK_STRUCTURE_TYPE_PIPELINE_VIEWPORT_STATE_CREATE_INFO
	data.viewportState.viewportCount = 1
	data.viewportState.scissorCount = 1

	data.rasterizationState = &cAlloc[C.VkPipelineRasterizationStateCreateInfo](1)[0]
	data.rasterizationState.sType = C.VK_STRUCTURE_TYPE_PIPELINE_RASTERIZATION_STATE_CREATE_INFO
	data.rasterizationState.polygonMode = C.VK_POLYGON_MODE_FILL
	data.rasterizationState.cullMode = C.VK_CULL_MODE_NONE
	data.rasterizationState.frontFace = C.VK_FRONT_FACE_COUNTER_CLOCKWISE
	data.rasterizationState.lineWidth = 1.0

	data.multisampleState = &cAlloc[C.VkPipelineMultisampleStateCreateInfo](1)[0]
	data.multisampleState.sType = C.VK_STRUCTURE_TYPE_PIPELINE_MULTISAMPLE_STATE_CREATE_INFO
	data.multisampleState.rasterizationSamples = C.VK_SAMPLE_COUNT_1_BIT

	data.blendAttachment = &cAlloc[C.VkPipelineColorBlendAttachmentState](1)[0]
	data.blendAttachment.colorWriteMask = C.VK_COLOR_COMPONENT_R_BIT | C.VK_COLOR_COMPONENT_G_BIT |
		C.VK_COLOR_COMPONENT_B_BIT | C.VK_COLOR_COMPONENT_A_BIT
	if info.BlendEnable {
		data.blendAttachment.blendEnable = C.VK_TRUE
		data.blendAttachment.srcColorBlendFactor = C.VK_BLEND_FACTOR_SRC_ALPHA
		data.blendAttachment.dstColorBlendFactor = C.VK_BLEND_FACTOR_ONE_MINUS_SRC_ALPHA
		data.blendAttachment.colorBlendOp = C.VK_BLEND_OP_ADD
		data.blendAttachment.srcAlphaBlendFactor = C.VK_BLEND_FACTOR_ONE
		data.blendAttachment.dstAlphaBlendFactor = C.VK_BLEND_FACTOR_ZERO
		data.blendAttachment.alphaBlendOp = C.VK_BLEND_OP_ADD
	}

	data.colorBlendState = &cAlloc[C.VkPipelineColorBlendStateCreateInfo](1)[0]
	data.colorBlendState.sType = C.VK_STRUCTURE_TYPE_PIPELINE_COLOR_BLEND_STATE_CREATE_INFO
	data.colorBlendState.attachmentCount = 1
	data.colorBlendState.pAttachments = data.blendAttachment

	data.dynamicStates = cAlloc[C.VkDynamicState](2)
	data.dynamicStates[0] = C.VK_DYNAMIC_STATE_VIEWPORT
	data.dynamicStates[1] = C.VK_DYNAMIC_STATE_SCISSOR
	data.dynamicState = &cAlloc[C.VkPipelineDynamicStateCreateInfo](1)[0]
	data.dynamicState.sType = C.VK_STRUCTURE_TYPE_PIPELINE_DYNAMIC_STATE_CREATE_INFO
	data.dynamicState.dynamicStateCount = 2
	data.dynamicState.pDynamicStates = &data.dynamicStates[0]

	data.colorFormat = &cAlloc[C.VkFormat](1)[0]
	*data.colorFormat = C.VkFormat(info.ColorFormat)
	data.renderingInfo = &cAlloc[C.VkPipelineRenderingCreateInfo](1)[0]
	data.renderingInfo.sType = C.VK_STRUCTURE_TYPE_PIPELINE_RENDERING_CREATE_INFO
	data.renderingInfo.colorAttachmentCount = 1
	data.renderingInfo.pColorAttachmentFormats = data.colorFormat

	data.cInfo = &cAlloc[C.VkGraphicsPipelineCreateInfo](1)[0]
	data.cInfo.sType = C.VK_STRUCTURE_TYPE_GRAPHICS_PIPELINE_CREATE_INFO
	data.cInfo.pNext = unsafe.Pointer(data.renderingInfo)
	data.cInfo.stageCount = 2
	data.cInfo.pStages = &data.shaderStages[0]
	data.cInfo.pVertexInputState = data.vertexInputState
	data.cInfo.pInputAssemblyState = data.inputAssemblyState
	data.cInfo.pViewportState = data.viewportState
	data.cInfo.pRasterizationState = data.rasterizationState
	data.cInfo.pMultisampleState = data.multisampleState
	data.cInfo.pColorBlendState = data.colorBlendState
	data.cInfo.pDynamicState = data.dynamicState
	data.cInfo.layout = info.Layout.handle

	return data
}

func (data *graphicsPipelineData) free() {
	C.free(unsafe.Pointer(data.entryName))
	cFree(data.shaderStages)
	C.free(unsafe.Pointer(data.vertexInputState))
	C.free(unsafe.Pointer(data.inputAssemblyState))
	C.free(unsafe.Pointer(data.viewportState))
	C.free(unsafe.Pointer(data.rasterizationState))
	C.free(unsafe.Pointer(data.multisampleState))
	C.free(unsafe.Pointer(data.blendAttachment))
	C.free(unsafe.Pointer(data.colorBlendState))
	cFree(data.dynamicStates)
	C.free(unsafe.Pointer(data.dynamicState))
	C.free(unsafe.Pointer(data.colorFormat))
	C.free(unsafe.Pointer(data.renderingInfo))
	C.free(unsafe.Pointer(data.cInfo))
}

func (device Device) CreateGraphicsPipeline(createInfo *GraphicsPipelineCreateInfo) (Pipeline, error) {
	data := createInfo.vulkanize()
	defer data.free()

	var pipeline C.VkPipeline
	result := C.vkCreateGraphicsPipelines(device.handle, nil, 1, data.cInfo, nil, &pipeline)

	if result != C.VK_SUCCESS {
		return Pipeline{}, Result(result)
	}

	return Pipeline{handle: pipeline}, nil
}
