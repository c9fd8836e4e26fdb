package vulkan

import (
	"time"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/vk"
)

func (b *Backend) MemoryProperties() gpu.MemoryProperties {
	props := b.physical.GetMemoryProperties()
	types := make([]gpu.MemoryType, props.MemoryTypeCount)
	for i := range types {
		types[i] = gpu.MemoryType{
			Flags: gpu.MemoryProperty(props.MemoryTypes[i].PropertyFlags),
			Heap:  props.MemoryTypes[i].HeapIndex,
		}
	}
	return gpu.MemoryProperties{Types: types}
}

func requirements(r vk.MemoryRequirements) gpu.MemoryRequirements {
	return gpu.MemoryRequirements{Size: r.Size, Alignment: r.Alignment, TypeBits: r.MemoryTypeBits}
}

func (b *Backend) CreateBuffer(size uint64, usage gpu.BufferUsage) (gpu.BufferHandle, gpu.MemoryRequirements, error) {
	buf, err := b.device.CreateBuffer(&vk.BufferCreateInfo{
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SHARING_MODE_EXCLUSIVE,
	})
	if err != nil {
		return 0, gpu.MemoryRequirements{}, translate(err)
	}
	req := b.device.GetBufferMemoryRequirements(buf)
	return gpu.BufferHandle(buf.Raw()), requirements(req), nil
}

func (b *Backend) DestroyBuffer(h gpu.BufferHandle) {
	b.device.DestroyBuffer(vk.BufferFromRaw(uint64(h)))
}

func (b *Backend) AllocateMemory(size uint64, typeIndex uint32) (gpu.MemoryHandle, error) {
	mem, err := b.device.AllocateMemory(size, typeIndex)
	if err != nil {
		return 0, translate(err)
	}
	return gpu.MemoryHandle(mem.Raw()), nil
}

func (b *Backend) FreeMemory(m gpu.MemoryHandle) {
	b.device.FreeMemory(vk.DeviceMemoryFromRaw(uint64(m)))
}

func (b *Backend) BindBufferMemory(h gpu.BufferHandle, m gpu.MemoryHandle) error {
	err := b.device.BindBufferMemory(vk.BufferFromRaw(uint64(h)), vk.DeviceMemoryFromRaw(uint64(m)), 0)
	return translate(err)
}

func (b *Backend) MapMemory(m gpu.MemoryHandle, size uint64) ([]byte, error) {
	data, err := b.device.MapMemory(vk.DeviceMemoryFromRaw(uint64(m)), 0, size)
	return data, translate(err)
}

func (b *Backend) UnmapMemory(m gpu.MemoryHandle) {
	b.device.UnmapMemory(vk.DeviceMemoryFromRaw(uint64(m)))
}

func (b *Backend) CreateImage(info gpu.ImageInfo) (gpu.ImageHandle, gpu.MemoryRequirements, error) {
	img, err := b.device.CreateImage(&vk.ImageCreateInfo{
		Format:      vk.Format(info.Format),
		Extent:      vk.Extent3D{Width: info.Width, Height: info.Height, Depth: 1},
		Usage:       vk.ImageUsageFlags(info.Usage),
		SharingMode: vk.SHARING_MODE_EXCLUSIVE,
	})
	if err != nil {
		return 0, gpu.MemoryRequirements{}, translate(err)
	}
	req := b.device.GetImageMemoryRequirements(img)
	return gpu.ImageHandle(img.Raw()), requirements(req), nil
}

func (b *Backend) DestroyImage(h gpu.ImageHandle) {
	b.device.DestroyImage(vk.ImageFromRaw(uint64(h)))
}

func (b *Backend) BindImageMemory(h gpu.ImageHandle, m gpu.MemoryHandle) error {
	err := b.device.BindImageMemory(vk.ImageFromRaw(uint64(h)), vk.DeviceMemoryFromRaw(uint64(m)), 0)
	return translate(err)
}

func (b *Backend) CreateImageView(h gpu.ImageHandle, format gpu.Format) (gpu.ViewHandle, error) {
	view, err := b.device.CreateImageView(&vk.ImageViewCreateInfo{
		Image:            vk.ImageFromRaw(uint64(h)),
		Format:           vk.Format(format),
		SubresourceRange: vk.ColorRange,
	})
	if err != nil {
		return 0, translate(err)
	}
	return gpu.ViewHandle(view.Raw()), nil
}

func (b *Backend) DestroyImageView(v gpu.ViewHandle) {
	b.device.DestroyImageView(vk.ImageViewFromRaw(uint64(v)))
}

func (b *Backend) CreateSampler(info gpu.SamplerInfo) (gpu.SamplerHandle, error) {
	ci := vk.SamplerCreateInfo{
		MagFilter:   vk.FILTER_LINEAR,
		MinFilter:   vk.FILTER_LINEAR,
		AddressMode: vk.SAMPLER_ADDRESS_MODE_REPEAT,
	}
	if info.Nearest {
		ci.MagFilter, ci.MinFilter = vk.FILTER_NEAREST, vk.FILTER_NEAREST
	}
	if info.Clamp {
		ci.AddressMode = vk.SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE
	}
	s, err := b.device.CreateSampler(&ci)
	if err != nil {
		return 0, translate(err)
	}
	return gpu.SamplerHandle(s.Raw()), nil
}

func (b *Backend) DestroySampler(s gpu.SamplerHandle) {
	b.device.DestroySampler(vk.SamplerFromRaw(uint64(s)))
}

// Sync

func (b *Backend) CreateFence(signaled bool) (gpu.Fence, error) {
	var info vk.FenceCreateInfo
	if signaled {
		info.Flags = vk.FENCE_CREATE_SIGNALED_BIT
	}
	f, err := b.device.CreateFence(&info)
	if err != nil {
		return 0, translate(err)
	}
	return gpu.Fence(f.Raw()), nil
}

func (b *Backend) DestroyFence(f gpu.Fence) {
	b.device.DestroyFence(vk.FenceFromRaw(uint64(f)))
}

func (b *Backend) WaitFence(f gpu.Fence, timeout time.Duration) error {
	err := b.device.WaitForFences([]vk.Fence{vk.FenceFromRaw(uint64(f))}, true, nanos(timeout))
	return translate(err)
}

func (b *Backend) ResetFence(f gpu.Fence) error {
	return translate(b.device.ResetFences([]vk.Fence{vk.FenceFromRaw(uint64(f))}))
}

func (b *Backend) CreateSemaphore() (gpu.Semaphore, error) {
	s, err := b.device.CreateSemaphore()
	if err != nil {
		return 0, translate(err)
	}
	return gpu.Semaphore(s.Raw()), nil
}

func (b *Backend) DestroySemaphore(s gpu.Semaphore) {
	b.device.DestroySemaphore(vk.SemaphoreFromRaw(uint64(s)))
}

// Commands

func (b *Backend) AllocateCommandBuffers(n int) ([]gpu.CommandBuffer, error) {
	raw, err := b.device.AllocateCommandBuffers(b.pool, uint32(n))
	if err != nil {
		return nil, translate(err)
	}
	cmds := make([]gpu.CommandBuffer, len(raw))
	for i, c := range raw {
		cmds[i] = &CommandBuffer{cmd: c}
	}
	return cmds, nil
}

func (b *Backend) FreeCommandBuffers(cmds []gpu.CommandBuffer) {
	raw := unwrapCommands(cmds)
	if len(raw) > 0 {
		b.device.FreeCommandBuffers(b.pool, raw)
	}
}

// Pipelines

func (b *Backend) CreateShaderModule(code []byte) (gpu.ShaderModule, error) {
	m, err := b.device.CreateShaderModule(code)
	if err != nil {
		return 0, translate(err)
	}
	return gpu.ShaderModule(m.Raw()), nil
}

func (b *Backend) DestroyShaderModule(m gpu.ShaderModule) {
	b.device.DestroyShaderModule(vk.ShaderModuleFromRaw(uint64(m)))
}

func (b *Backend) CreateDescriptorSetLayout(bindings []gpu.LayoutBinding) (gpu.SetLayout, error) {
	vb := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, lb := range bindings {
		vb[i] = vk.DescriptorSetLayoutBinding{
			Binding:         lb.Binding,
			DescriptorType:  vk.DescriptorType(lb.Type),
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(lb.Stages),
		}
	}
	l, err := b.device.CreateDescriptorSetLayout(vb)
	if err != nil {
		return 0, translate(err)
	}
	return gpu.SetLayout(l.Raw()), nil
}

func (b *Backend) DestroyDescriptorSetLayout(l gpu.SetLayout) {
	b.device.DestroyDescriptorSetLayout(vk.DescriptorSetLayoutFromRaw(uint64(l)))
}

func (b *Backend) CreateDescriptorPool(maxSets uint32, sizes []gpu.PoolSize) (gpu.DescriptorPool, error) {
	vs := make([]vk.DescriptorPoolSize, len(sizes))
	for i, s := range sizes {
		vs[i] = vk.DescriptorPoolSize{Type: vk.DescriptorType(s.Type), DescriptorCount: s.Count}
	}
	p, err := b.device.CreateDescriptorPool(maxSets, vs)
	if err != nil {
		return 0, translate(err)
	}
	return gpu.DescriptorPool(p.Raw()), nil
}

func (b *Backend) DestroyDescriptorPool(p gpu.DescriptorPool) {
	b.device.DestroyDescriptorPool(vk.DescriptorPoolFromRaw(uint64(p)))
}

func setLayouts(layouts []gpu.SetLayout) []vk.DescriptorSetLayout {
	vl := make([]vk.DescriptorSetLayout, len(layouts))
	for i, l := range layouts {
		vl[i] = vk.DescriptorSetLayoutFromRaw(uint64(l))
	}
	return vl
}

func (b *Backend) AllocateDescriptorSets(p gpu.DescriptorPool, layouts []gpu.SetLayout) ([]gpu.DescriptorSet, error) {
	sets, err := b.device.AllocateDescriptorSets(vk.DescriptorPoolFromRaw(uint64(p)), setLayouts(layouts))
	if err != nil {
		return nil, translate(err)
	}
	out := make([]gpu.DescriptorSet, len(sets))
	for i, s := range sets {
		out[i] = gpu.DescriptorSet(s.Raw())
	}
	return out, nil
}

func (b *Backend) UpdateDescriptorSets(writes []gpu.DescriptorWrite) {
	vw := make([]vk.WriteDescriptorSet, len(writes))
	for i, w := range writes {
		vw[i] = vk.WriteDescriptorSet{
			DstSet:         vk.DescriptorSetFromRaw(uint64(w.Set)),
			DstBinding:     w.Binding,
			DescriptorType: vk.DescriptorType(w.Type),
		}
		switch w.Type {
		case gpu.DescriptorUniformBuffer, gpu.DescriptorStorageBuffer:
			vw[i].BufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: vk.BufferFromRaw(uint64(w.Buffer)),
				Offset: w.Offset,
				Range:  w.Range,
			}}
		default:
			vw[i].ImageInfo = []vk.DescriptorImageInfo{{
				Sampler:     vk.SamplerFromRaw(uint64(w.Sampler)),
				ImageView:   vk.ImageViewFromRaw(uint64(w.View)),
				ImageLayout: vk.ImageLayout(w.Layout),
			}}
		}
	}
	b.device.UpdateDescriptorSets(vw)
}

func (b *Backend) CreatePipelineLayout(sets []gpu.SetLayout, push []gpu.PushRange) (gpu.PipelineLayout, error) {
	ranges := make([]vk.PushConstantRange, len(push))
	for i, r := range push {
		ranges[i] = vk.PushConstantRange{StageFlags: vk.ShaderStageFlags(r.Stages), Offset: r.Offset, Size: r.Size}
	}
	l, err := b.device.CreatePipelineLayout(&vk.PipelineLayoutCreateInfo{
		SetLayouts:         setLayouts(sets),
		PushConstantRanges: ranges,
	})
	if err != nil {
		return 0, translate(err)
	}
	return gpu.PipelineLayout(l.Raw()), nil
}

func (b *Backend) DestroyPipelineLayout(l gpu.PipelineLayout) {
	b.device.DestroyPipelineLayout(vk.PipelineLayoutFromRaw(uint64(l)))
}

func (b *Backend) CreateComputePipeline(layout gpu.PipelineLayout, module gpu.ShaderModule, entry string) (gpu.Pipeline, error) {
	p, err := b.device.CreateComputePipeline(
		vk.PipelineLayoutFromRaw(uint64(layout)),
		vk.ShaderModuleFromRaw(uint64(module)),
		entry,
	)
	if err != nil {
		return 0, translate(err)
	}
	return gpu.Pipeline(p.Raw()), nil
}

func (b *Backend) CreateGraphicsPipeline(info gpu.GraphicsPipelineInfo) (gpu.Pipeline, error) {
	p, err := b.device.CreateGraphicsPipeline(&vk.GraphicsPipelineCreateInfo{
		VertexShader:   vk.ShaderModuleFromRaw(uint64(info.Vertex)),
		FragmentShader: vk.ShaderModuleFromRaw(uint64(info.Fragment)),
		EntryPoint:     "main",
		Layout:         vk.PipelineLayoutFromRaw(uint64(info.Layout)),
		ColorFormat:    vk.Format(info.ColorFormat),
		BlendEnable:    info.Blend,
	})
	if err != nil {
		return 0, translate(err)
	}
	return gpu.Pipeline(p.Raw()), nil
}

func (b *Backend) DestroyPipeline(p gpu.Pipeline) {
	b.device.DestroyPipeline(vk.PipelineFromRaw(uint64(p)))
}

// Presentation

func (b *Backend) SurfaceSupport() (gpu.SurfaceCapabilities, []gpu.SurfaceFormat, []gpu.PresentMode, error) {
	caps, err := b.physical.GetSurfaceCapabilitiesKHR(b.surface)
	if err != nil {
		return gpu.SurfaceCapabilities{}, nil, nil, translate(err)
	}
	formats, err := b.physical.GetSurfaceFormatsKHR(b.surface)
	if err != nil {
		return gpu.SurfaceCapabilities{}, nil, nil, translate(err)
	}
	modes, err := b.physical.GetSurfacePresentModesKHR(b.surface)
	if err != nil {
		return gpu.SurfaceCapabilities{}, nil, nil, translate(err)
	}

	out := gpu.SurfaceCapabilities{
		MinImageCount: caps.MinImageCount,
		MaxImageCount: caps.MaxImageCount,
		CurrentExtent: extent(caps.CurrentExtent),
		MinExtent:     extent(caps.MinImageExtent),
		MaxExtent:     extent(caps.MaxImageExtent),
	}
	gf := make([]gpu.SurfaceFormat, len(formats))
	for i, f := range formats {
		gf[i] = gpu.SurfaceFormat{Format: gpu.Format(f.Format), ColorSpace: gpu.ColorSpace(f.ColorSpace)}
	}
	gm := make([]gpu.PresentMode, len(modes))
	for i, m := range modes {
		gm[i] = gpu.PresentMode(m)
	}
	return out, gf, gm, nil
}

func extent(e vk.Extent2D) gpu.Extent {
	return gpu.Extent{Width: e.Width, Height: e.Height}
}

func (b *Backend) CreateSwapchain(info gpu.SwapchainInfo) (gpu.Swapchain, error) {
	caps, err := b.physical.GetSurfaceCapabilitiesKHR(b.surface)
	if err != nil {
		return 0, translate(err)
	}
	sc, err := b.device.CreateSwapchainKHR(&vk.SwapchainCreateInfoKHR{
		Surface:         b.surface,
		MinImageCount:   info.ImageCount,
		ImageFormat:     vk.Format(info.Format.Format),
		ImageColorSpace: vk.ColorSpaceKHR(info.Format.ColorSpace),
		ImageExtent:     vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageUsage:      vk.IMAGE_USAGE_COLOR_ATTACHMENT_BIT | vk.IMAGE_USAGE_TRANSFER_DST_BIT,
		PreTransform:    caps.CurrentTransform,
		CompositeAlpha:  vk.COMPOSITE_ALPHA_OPAQUE_BIT_KHR,
		PresentMode:     vk.PresentModeKHR(info.PresentMode),
		OldSwapchain:    vk.SwapchainFromRaw(uint64(info.Old)),
	})
	if err != nil {
		return 0, translate(err)
	}
	return gpu.Swapchain(sc.Raw()), nil
}

func (b *Backend) DestroySwapchain(sc gpu.Swapchain) {
	b.device.DestroySwapchainKHR(vk.SwapchainFromRaw(uint64(sc)))
}

func (b *Backend) SwapchainImages(sc gpu.Swapchain) ([]gpu.ImageHandle, error) {
	images, err := b.device.GetSwapchainImagesKHR(vk.SwapchainFromRaw(uint64(sc)))
	if err != nil {
		return nil, translate(err)
	}
	out := make([]gpu.ImageHandle, len(images))
	for i, img := range images {
		out[i] = gpu.ImageHandle(img.Raw())
	}
	return out, nil
}

func (b *Backend) AcquireNextImage(sc gpu.Swapchain, signal gpu.Semaphore, timeout time.Duration) (uint32, error) {
	index, err := b.device.AcquireNextImageKHR(
		vk.SwapchainFromRaw(uint64(sc)),
		nanos(timeout),
		vk.SemaphoreFromRaw(uint64(signal)),
		vk.Fence{},
	)
	return index, translate(err)
}
