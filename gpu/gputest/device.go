// Package gputest provides an in-memory gpu.Device. It tracks fence,
// semaphore and command buffer state and records every rule a real driver
// would reject as a violation instead of failing the call.
package gputest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NOT-REAL-GAMES/plume/gpu"
)

const (
	KindBuffer         = "buffer"
	KindMemory         = "memory"
	KindImage          = "image"
	KindView           = "view"
	KindSampler        = "sampler"
	KindFence          = "fence"
	KindSemaphore      = "semaphore"
	KindCommandBuffer  = "command buffer"
	KindShader         = "shader"
	KindSetLayout      = "set layout"
	KindPool           = "descriptor pool"
	KindSet            = "descriptor set"
	KindPipelineLayout = "pipeline layout"
	KindPipeline       = "pipeline"
	KindSwapchain      = "swapchain"
)

type fence struct {
	signaled bool
	pending  *submission
}

type swapchain struct {
	info   gpu.SwapchainInfo
	images []gpu.ImageHandle
	next   uint32
}

type Device struct {
	mu sync.Mutex

	Props   gpu.MemoryProperties
	Caps    gpu.SurfaceCapabilities
	Formats []gpu.SurfaceFormat
	Modes   []gpu.PresentMode

	// BufferTypeBits and ImageTypeBits are reported as the memory type
	// filter of every created buffer or image.
	BufferTypeBits uint32
	ImageTypeBits  uint32

	// HangFences makes waits on pending fences time out.
	HangFences bool

	Graphics *Queue
	Compute  *Queue

	next       uint64
	live       map[uint64]string
	memory     map[gpu.MemoryHandle][]byte
	fences     map[gpu.Fence]*fence
	semaphores map[gpu.Semaphore]bool
	sets       map[gpu.DescriptorSet][]gpu.DescriptorWrite
	setPool    map[gpu.DescriptorSet]gpu.DescriptorPool
	swapchains map[gpu.Swapchain]*swapchain

	failures    map[string][]error
	acquireErrs map[int]error
	presentErrs map[int]error

	acquires          int
	presents          int
	swapchainsCreated int
	waitIdles         int
	setUpdates        int
	computePipelines  int
	lastSwapchain     gpu.SwapchainInfo
	graphicsInfo      []gpu.GraphicsPipelineInfo
	violations        []string
}

// DefaultMemory has a device-local type, a host-visible coherent type and a
// host-visible cached type, in that order.
func DefaultMemory() gpu.MemoryProperties {
	return gpu.MemoryProperties{Types: []gpu.MemoryType{
		{Flags: gpu.MemoryDeviceLocal},
		{Flags: gpu.MemoryHostVisible | gpu.MemoryHostCoherent},
		{Flags: gpu.MemoryHostVisible | gpu.MemoryHostCoherent | gpu.MemoryHostCached},
	}}
}

func New() *Device {
	d := &Device{
		Props: DefaultMemory(),
		Caps: gpu.SurfaceCapabilities{
			MinImageCount: 2,
			MaxImageCount: 8,
			CurrentExtent: gpu.Extent{Width: 800, Height: 600},
			MinExtent:     gpu.Extent{Width: 1, Height: 1},
			MaxExtent:     gpu.Extent{Width: 4096, Height: 4096},
		},
		Formats: []gpu.SurfaceFormat{
			{Format: gpu.FormatB8G8R8A8Unorm, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
			{Format: gpu.FormatB8G8R8A8Srgb, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
		},
		Modes:          []gpu.PresentMode{gpu.PresentModeFIFO, gpu.PresentModeMailbox},
		BufferTypeBits: ^uint32(0),
		ImageTypeBits:  ^uint32(0),

		live:        make(map[uint64]string),
		memory:      make(map[gpu.MemoryHandle][]byte),
		fences:      make(map[gpu.Fence]*fence),
		semaphores:  make(map[gpu.Semaphore]bool),
		sets:        make(map[gpu.DescriptorSet][]gpu.DescriptorWrite),
		setPool:     make(map[gpu.DescriptorSet]gpu.DescriptorPool),
		swapchains:  make(map[gpu.Swapchain]*swapchain),
		failures:    make(map[string][]error),
		acquireErrs: make(map[int]error),
		presentErrs: make(map[int]error),
	}
	d.Graphics = &Queue{dev: d, name: "graphics"}
	d.Compute = &Queue{dev: d, name: "compute"}
	return d
}

// Context wires the device with its compute queue and with the graphics
// queue doubling as the present queue.
func (d *Device) Context() *gpu.Context {
	return &gpu.Context{
		Device:   d,
		Graphics: d.Graphics,
		Compute:  d.Compute,
		Present:  d.Graphics,
	}
}

// FailNext makes the next len(errs) calls of the named Device method return
// those errors in order.
func (d *Device) FailNext(method string, errs ...error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[method] = append(d.failures[method], errs...)
}

// FailAcquire makes the call-th AcquireNextImage (1-based) return err.
func (d *Device) FailAcquire(call int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquireErrs[call] = err
}

// FailPresent makes the call-th Present (1-based, across queues) return err.
func (d *Device) FailPresent(call int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presentErrs[call] = err
}

func (d *Device) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.violations...)
}

// Live counts objects of kind that were created and not yet destroyed.
func (d *Device) Live(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

func (d *Device) Acquires() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.acquires
}

func (d *Device) Presents() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

func (d *Device) SwapchainsCreated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.swapchainsCreated
}

func (d *Device) LastSwapchain() gpu.SwapchainInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSwapchain
}

func (d *Device) WaitIdles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waitIdles
}

// SetUpdates counts UpdateDescriptorSets calls.
func (d *Device) SetUpdates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setUpdates
}

func (d *Device) ComputePipelinesCreated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.computePipelines
}

func (d *Device) GraphicsPipelines() []gpu.GraphicsPipelineInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.GraphicsPipelineInfo(nil), d.graphicsInfo...)
}

// Writes returns every descriptor write applied to set.
func (d *Device) Writes(set gpu.DescriptorSet) []gpu.DescriptorWrite {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.DescriptorWrite(nil), d.sets[set]...)
}

// Memory exposes the backing bytes of an allocation.
func (d *Device) Memory(m gpu.MemoryHandle) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.memory[m]
}

// Signaled reports whether a fence or semaphore handle is currently signaled.
func (d *Device) Signaled(handle uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f, ok := d.fences[gpu.Fence(handle)]; ok {
		return f.signaled
	}
	return d.semaphores[gpu.Semaphore(handle)]
}

func (d *Device) violate(format string, args ...any) {
	d.violations = append(d.violations, fmt.Sprintf(format, args...))
}

func (d *Device) fail(method string) error {
	errs := d.failures[method]
	if len(errs) == 0 {
		return nil
	}
	d.failures[method] = errs[1:]
	return errs[0]
}

func (d *Device) create(kind string) uint64 {
	d.next++
	d.live[d.next] = kind
	return d.next
}

func (d *Device) destroy(kind string, handle uint64) bool {
	if handle == 0 {
		return false
	}
	if d.live[handle] != kind {
		d.violate("destroy of unknown %s %d", kind, handle)
		return false
	}
	delete(d.live, handle)
	return true
}

func align(size, to uint64) uint64 {
	return (size + to - 1) / to * to
}

// Allocator

func (d *Device) MemoryProperties() gpu.MemoryProperties {
	return d.Props
}

func (d *Device) CreateBuffer(size uint64, usage gpu.BufferUsage) (gpu.BufferHandle, gpu.MemoryRequirements, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateBuffer"); err != nil {
		return 0, gpu.MemoryRequirements{}, err
	}
	if size == 0 {
		return 0, gpu.MemoryRequirements{}, errors.New("zero-sized buffer")
	}
	h := gpu.BufferHandle(d.create(KindBuffer))
	return h, gpu.MemoryRequirements{Size: align(size, 256), Alignment: 256, TypeBits: d.BufferTypeBits}, nil
}

func (d *Device) DestroyBuffer(b gpu.BufferHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy(KindBuffer, uint64(b))
}

func (d *Device) AllocateMemory(size uint64, typeIndex uint32) (gpu.MemoryHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("AllocateMemory"); err != nil {
		return 0, err
	}
	if int(typeIndex) >= len(d.Props.Types) {
		d.violate("allocation from memory type %d of %d", typeIndex, len(d.Props.Types))
	}
	m := gpu.MemoryHandle(d.create(KindMemory))
	d.memory[m] = make([]byte, size)
	return m, nil
}

func (d *Device) FreeMemory(m gpu.MemoryHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroy(KindMemory, uint64(m)) {
		delete(d.memory, m)
	}
}

func (d *Device) BindBufferMemory(b gpu.BufferHandle, m gpu.MemoryHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fail("BindBufferMemory")
}

func (d *Device) MapMemory(m gpu.MemoryHandle, size uint64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("MapMemory"); err != nil {
		return nil, err
	}
	mem, ok := d.memory[m]
	if !ok {
		return nil, fmt.Errorf("map of unknown memory %d", m)
	}
	if size > uint64(len(mem)) {
		return nil, fmt.Errorf("map of %d bytes from %d-byte allocation", size, len(mem))
	}
	return mem[:size], nil
}

func (d *Device) UnmapMemory(m gpu.MemoryHandle) {}

func (d *Device) CreateImage(info gpu.ImageInfo) (gpu.ImageHandle, gpu.MemoryRequirements, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateImage"); err != nil {
		return 0, gpu.MemoryRequirements{}, err
	}
	size := uint64(info.Width) * uint64(info.Height) * uint64(max(info.Format.BytesPerPixel(), 4))
	h := gpu.ImageHandle(d.create(KindImage))
	return h, gpu.MemoryRequirements{Size: align(size, 4096), Alignment: 4096, TypeBits: d.ImageTypeBits}, nil
}

func (d *Device) DestroyImage(img gpu.ImageHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy(KindImage, uint64(img))
}

func (d *Device) BindImageMemory(img gpu.ImageHandle, m gpu.MemoryHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fail("BindImageMemory")
}

func (d *Device) CreateImageView(img gpu.ImageHandle, format gpu.Format) (gpu.ViewHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateImageView"); err != nil {
		return 0, err
	}
	if _, ok := d.live[uint64(img)]; !ok {
		d.violate("view of unknown image %d", img)
	}
	return gpu.ViewHandle(d.create(KindView)), nil
}

func (d *Device) DestroyImageView(v gpu.ViewHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy(KindView, uint64(v))
}

func (d *Device) CreateSampler(info gpu.SamplerInfo) (gpu.SamplerHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSampler"); err != nil {
		return 0, err
	}
	return gpu.SamplerHandle(d.create(KindSampler)), nil
}

func (d *Device) DestroySampler(s gpu.SamplerHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy(KindSampler, uint64(s))
}

// Syncer

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateFence"); err != nil {
		return 0, err
	}
	f := gpu.Fence(d.create(KindFence))
	d.fences[f] = &fence{signaled: signaled}
	return f, nil
}

func (d *Device) DestroyFence(f gpu.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.fences[f]; ok && st.pending != nil {
		d.violate("destroy of pending fence %d", f)
	}
	if d.destroy(KindFence, uint64(f)) {
		delete(d.fences, f)
	}
}

// WaitFence completes the fence's submission and every earlier one on the
// same queue. A fence that is neither signaled nor pending times out.
func (d *Device) WaitFence(f gpu.Fence, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.fences[f]
	if !ok {
		d.violate("wait on unknown fence %d", f)
		return fmt.Errorf("unknown fence %d", f)
	}
	switch {
	case st.signaled:
		return nil
	case st.pending == nil, d.HangFences:
		return gpu.ErrTimeout
	}
	st.pending.queue.completeThrough(st.pending)
	return nil
}

func (d *Device) ResetFence(f gpu.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.fences[f]
	if !ok {
		d.violate("reset of unknown fence %d", f)
		return fmt.Errorf("unknown fence %d", f)
	}
	if st.pending != nil {
		d.violate("reset of pending fence %d", f)
	}
	st.signaled = false
	return nil
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSemaphore"); err != nil {
		return 0, err
	}
	s := gpu.Semaphore(d.create(KindSemaphore))
	d.semaphores[s] = false
	return s, nil
}

func (d *Device) DestroySemaphore(s gpu.Semaphore) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroy(KindSemaphore, uint64(s)) {
		delete(d.semaphores, s)
	}
}

// Commands

func (d *Device) AllocateCommandBuffers(n int) ([]gpu.CommandBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	cmds := make([]gpu.CommandBuffer, n)
	for i := range cmds {
		cmds[i] = &CommandBuffer{dev: d, id: d.create(KindCommandBuffer)}
	}
	return cmds, nil
}

func (d *Device) FreeCommandBuffers(cmds []gpu.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range cmds {
		cb, ok := c.(*CommandBuffer)
		if !ok {
			d.violate("free of foreign command buffer %T", c)
			continue
		}
		if cb.state == statePending {
			d.violate("free of pending command buffer %d", cb.id)
		}
		d.destroy(KindCommandBuffer, cb.id)
	}
}

// Pipelines

func (d *Device) CreateShaderModule(code []byte) (gpu.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateShaderModule"); err != nil {
		return 0, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return 0, fmt.Errorf("invalid shader code of %d bytes", len(code))
	}
	return gpu.ShaderModule(d.create(KindShader)), nil
}

func (d *Device) DestroyShaderModule(m gpu.ShaderModule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy(KindShader, uint64(m))
}

func (d *Device) CreateDescriptorSetLayout(bindings []gpu.LayoutBinding) (gpu.SetLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateDescriptorSetLayout"); err != nil {
		return 0, err
	}
	return gpu.SetLayout(d.create(KindSetLayout)), nil
}

func (d *Device) DestroyDescriptorSetLayout(l gpu.SetLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy(KindSetLayout, uint64(l))
}

func (d *Device) CreateDescriptorPool(maxSets uint32, sizes []gpu.PoolSize) (gpu.DescriptorPool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateDescriptorPool"); err != nil {
		return 0, err
	}
	return gpu.DescriptorPool(d.create(KindPool)), nil
}

// DestroyDescriptorPool frees the pool's sets along with it.
func (d *Device) DestroyDescriptorPool(p gpu.DescriptorPool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.destroy(KindPool, uint64(p)) {
		return
	}
	for set, pool := range d.setPool {
		if pool != p {
			continue
		}
		delete(d.live, uint64(set))
		delete(d.sets, set)
		delete(d.setPool, set)
	}
}

func (d *Device) AllocateDescriptorSets(p gpu.DescriptorPool, layouts []gpu.SetLayout) ([]gpu.DescriptorSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("AllocateDescriptorSets"); err != nil {
		return nil, err
	}
	if d.live[uint64(p)] != KindPool {
		d.violate("allocation from unknown pool %d", p)
	}
	sets := make([]gpu.DescriptorSet, len(layouts))
	for i := range sets {
		sets[i] = gpu.DescriptorSet(d.create(KindSet))
		d.sets[sets[i]] = nil
		d.setPool[sets[i]] = p
	}
	return sets, nil
}

func (d *Device) UpdateDescriptorSets(writes []gpu.DescriptorWrite) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setUpdates++
	for _, w := range writes {
		if _, ok := d.sets[w.Set]; !ok {
			d.violate("write to unknown descriptor set %d", w.Set)
			continue
		}
		if cb := d.pendingUser(w.Set, nil); cb != nil {
			d.violate("descriptor set %d updated while command buffer %d is pending", w.Set, cb.id)
		}
		d.sets[w.Set] = append(d.sets[w.Set], w)
	}
}

func (d *Device) CreatePipelineLayout(sets []gpu.SetLayout, push []gpu.PushRange) (gpu.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreatePipelineLayout"); err != nil {
		return 0, err
	}
	return gpu.PipelineLayout(d.create(KindPipelineLayout)), nil
}

func (d *Device) DestroyPipelineLayout(l gpu.PipelineLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy(KindPipelineLayout, uint64(l))
}

func (d *Device) CreateComputePipeline(layout gpu.PipelineLayout, module gpu.ShaderModule, entry string) (gpu.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateComputePipeline"); err != nil {
		return 0, err
	}
	if d.live[uint64(module)] != KindShader {
		d.violate("compute pipeline from unknown shader %d", module)
	}
	d.computePipelines++
	return gpu.Pipeline(d.create(KindPipeline)), nil
}

func (d *Device) CreateGraphicsPipeline(info gpu.GraphicsPipelineInfo) (gpu.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateGraphicsPipeline"); err != nil {
		return 0, err
	}
	d.graphicsInfo = append(d.graphicsInfo, info)
	return gpu.Pipeline(d.create(KindPipeline)), nil
}

func (d *Device) DestroyPipeline(p gpu.Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy(KindPipeline, uint64(p))
}

// Presenter

func (d *Device) SurfaceSupport() (gpu.SurfaceCapabilities, []gpu.SurfaceFormat, []gpu.PresentMode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SurfaceSupport"); err != nil {
		return gpu.SurfaceCapabilities{}, nil, nil, err
	}
	return d.Caps, d.Formats, d.Modes, nil
}

func (d *Device) CreateSwapchain(info gpu.SwapchainInfo) (gpu.Swapchain, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSwapchain"); err != nil {
		return 0, err
	}
	if info.Old != 0 && d.live[uint64(info.Old)] != KindSwapchain {
		d.violate("swapchain recreated from unknown swapchain %d", info.Old)
	}
	if info.Extent.IsZero() {
		d.violate("swapchain created with zero extent %v", info.Extent)
	}
	sc := &swapchain{info: info}
	for i := uint32(0); i < info.ImageCount; i++ {
		d.next++
		sc.images = append(sc.images, gpu.ImageHandle(d.next))
	}
	h := gpu.Swapchain(d.create(KindSwapchain))
	d.swapchains[h] = sc
	d.swapchainsCreated++
	d.lastSwapchain = info
	return h, nil
}

func (d *Device) DestroySwapchain(sc gpu.Swapchain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroy(KindSwapchain, uint64(sc)) {
		delete(d.swapchains, sc)
	}
}

func (d *Device) SwapchainImages(sc gpu.Swapchain) ([]gpu.ImageHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.swapchains[sc]
	if !ok {
		return nil, fmt.Errorf("unknown swapchain %d", sc)
	}
	return append([]gpu.ImageHandle(nil), s.images...), nil
}

// AcquireNextImage hands out images round robin and signals the semaphore,
// except when an injected gpu.ErrSurfaceOutdated or other error applies.
func (d *Device) AcquireNextImage(sc gpu.Swapchain, signal gpu.Semaphore, timeout time.Duration) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquires++
	s, ok := d.swapchains[sc]
	if !ok {
		d.violate("acquire from unknown swapchain %d", sc)
		return 0, fmt.Errorf("unknown swapchain %d", sc)
	}

	injected := d.acquireErrs[d.acquires]
	if injected != nil && !errors.Is(injected, gpu.ErrSurfaceSuboptimal) {
		return 0, injected
	}

	if d.semaphores[signal] {
		d.violate("acquire signals semaphore %d that is already signaled", signal)
	}
	d.semaphores[signal] = true

	index := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	return index, injected
}

func (d *Device) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waitIdles++
	d.Graphics.completeAll()
	d.Compute.completeAll()
	return nil
}

// pendingUser returns a pending command buffer other than except that binds
// set, if any.
func (d *Device) pendingUser(set gpu.DescriptorSet, except *CommandBuffer) *CommandBuffer {
	for _, q := range []*Queue{d.Graphics, d.Compute} {
		for _, sub := range q.pending {
			for _, cb := range sub.cmds {
				if cb == except {
					continue
				}
				if cb.binds(set) {
					return cb
				}
			}
		}
	}
	return nil
}
