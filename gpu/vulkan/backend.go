// Package vulkan implements the gpu interfaces on top of the vk binding.
package vulkan

import (
	"errors"
	"fmt"
	"slices"
	"unsafe"

	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/vk"
)

const (
	validationLayer    = "VK_LAYER_KHRONOS_validation"
	swapchainExtension = "VK_KHR_swapchain"
)

// SurfaceFunc creates a window surface for a VkInstance and returns the raw
// VkSurfaceKHR handle.
type SurfaceFunc func(instance unsafe.Pointer) (uintptr, error)

type Options struct {
	AppName    string
	Validation bool
	// Extensions are the instance extensions the window system needs.
	Extensions    []string
	CreateSurface SurfaceFunc
	Log           *zap.Logger
}

// Backend owns the instance, surface, logical device and command pool. It
// implements gpu.Device.
type Backend struct {
	log *zap.Logger

	instance vk.Instance
	surface  vk.SurfaceKHR
	physical vk.PhysicalDevice
	device   vk.Device
	pool     vk.CommandPool
	family   uint32
	name     string

	graphics *Queue
	compute  *Queue

	closed bool
}

var _ gpu.Device = (*Backend)(nil)

// Open brings up Vulkan 1.3 with dynamic rendering on the first device that
// has a queue family able to do graphics, compute and presentation. Discrete
// GPUs are preferred.
func Open(opts Options) (*Backend, error) {
	if opts.CreateSurface == nil {
		return nil, errors.New("vulkan: no surface function")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	b := &Backend{log: opts.Log}

	ok := false
	defer func() {
		if !ok {
			b.Close()
		}
	}()

	if err := b.createInstance(opts); err != nil {
		return nil, err
	}

	raw, err := opts.CreateSurface(b.instance.Ptr())
	if err != nil {
		return nil, gpu.Wrap("create surface", err)
	}
	b.surface = vk.SurfaceFromRaw(raw)

	if err := b.pickPhysicalDevice(); err != nil {
		return nil, err
	}
	if err := b.createDevice(); err != nil {
		return nil, err
	}

	b.pool, err = b.device.CreateCommandPool(&vk.CommandPoolCreateInfo{
		Flags:            vk.COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT,
		QueueFamilyIndex: b.family,
	})
	if err != nil {
		return nil, gpu.Wrap("vkCreateCommandPool", translate(err))
	}

	b.log.Info("vulkan device ready",
		zap.String("device", b.name),
		zap.Uint32("queue_family", b.family),
		zap.Bool("shared_queue", b.graphics == b.compute),
		zap.Bool("validation", opts.Validation))
	ok = true
	return b, nil
}

func (b *Backend) createInstance(opts Options) error {
	var layers []string
	if opts.Validation {
		available, err := vk.EnumerateInstanceLayerProperties()
		if err != nil {
			return gpu.Wrap("vkEnumerateInstanceLayerProperties", translate(err))
		}
		found := slices.ContainsFunc(available, func(l vk.LayerProperties) bool {
			return l.LayerName == validationLayer
		})
		if !found {
			return gpu.Wrap("create instance", fmt.Errorf("%w: %s", gpu.ErrMissingLayer, validationLayer))
		}
		layers = append(layers, validationLayer)
	}

	instance, err := vk.CreateInstance(&vk.InstanceCreateInfo{
		ApplicationInfo: &vk.ApplicationInfo{
			ApplicationName:    opts.AppName,
			ApplicationVersion: vk.MakeAPIVersion(0, 1, 0, 0),
			EngineName:         "plume",
			EngineVersion:      vk.MakeAPIVersion(0, 1, 0, 0),
			ApiVersion:         vk.MakeAPIVersion(0, 1, 3, 0),
		},
		EnabledLayerNames:     layers,
		EnabledExtensionNames: opts.Extensions,
	})
	if err != nil {
		return gpu.Wrap("vkCreateInstance", translate(err))
	}
	b.instance = instance
	return nil
}

type candidate struct {
	physical vk.PhysicalDevice
	family   uint32
	queues   uint32
	name     string
	discrete bool
}

func (b *Backend) pickPhysicalDevice() error {
	devices, err := b.instance.EnumeratePhysicalDevices()
	if err != nil {
		return gpu.Wrap("vkEnumeratePhysicalDevices", translate(err))
	}

	var best *candidate
	for _, pd := range devices {
		c, reason := b.evaluate(pd)
		if c == nil {
			b.log.Debug("skipping physical device", zap.String("reason", reason))
			continue
		}
		if best == nil || (c.discrete && !best.discrete) {
			best = c
		}
	}
	if best == nil {
		return gpu.Wrap("pick physical device", gpu.ErrNoSuitableDevice)
	}

	b.physical = best.physical
	b.family = best.family
	b.name = best.name
	return nil
}

func (b *Backend) evaluate(pd vk.PhysicalDevice) (*candidate, string) {
	props := pd.GetProperties()
	if !pd.SupportsDynamicRendering() {
		return nil, props.DeviceName + ": no dynamic rendering"
	}
	exts, err := pd.EnumerateDeviceExtensionNames()
	if err != nil || !slices.Contains(exts, swapchainExtension) {
		return nil, props.DeviceName + ": no swapchain extension"
	}

	want := vk.QUEUE_GRAPHICS_BIT | vk.QUEUE_COMPUTE_BIT
	for i, family := range pd.GetQueueFamilyProperties() {
		if family.QueueFlags&want != want {
			continue
		}
		present, err := pd.GetSurfaceSupportKHR(uint32(i), b.surface)
		if err != nil || !present {
			continue
		}
		return &candidate{
			physical: pd,
			family:   uint32(i),
			queues:   family.QueueCount,
			name:     props.DeviceName,
			discrete: props.DeviceType == vk.PHYSICAL_DEVICE_TYPE_DISCRETE_GPU,
		}, ""
	}
	return nil, props.DeviceName + ": no graphics, compute and present queue family"
}

// createDevice asks for a second queue in the family when there is one so
// compute and graphics submissions do not share a VkQueue.
func (b *Backend) createDevice() error {
	families := b.physical.GetQueueFamilyProperties()
	count := max(min(families[b.family].QueueCount, 2), 1)
	priorities := make([]float32, count)
	for i := range priorities {
		priorities[i] = 1
	}

	device, err := b.physical.CreateDevice(&vk.DeviceCreateInfo{
		QueueCreateInfos: []vk.DeviceQueueCreateInfo{
			{QueueFamilyIndex: b.family, QueuePriorities: priorities},
		},
		EnabledExtensionNames: []string{swapchainExtension},
		DynamicRendering:      true,
	})
	if err != nil {
		return gpu.Wrap("vkCreateDevice", translate(err))
	}
	b.device = device

	b.graphics = &Queue{name: "graphics", queue: device.GetQueue(b.family, 0)}
	b.compute = b.graphics
	if count > 1 {
		b.compute = &Queue{name: "compute", queue: device.GetQueue(b.family, 1)}
	}
	return nil
}

// Context hands the device and its queues to the renderer. Presentation
// goes through the graphics queue.
func (b *Backend) Context() *gpu.Context {
	return &gpu.Context{
		Device:   b,
		Graphics: b.graphics,
		Compute:  b.compute,
		Present:  b.graphics,
	}
}

func (b *Backend) DeviceName() string {
	return b.name
}

func (b *Backend) WaitIdle() error {
	return translate(b.device.WaitIdle())
}

// Close destroys everything Open created, in reverse order. Objects created
// through the gpu interfaces must already be released.
func (b *Backend) Close() {
	if b.closed {
		return
	}
	b.closed = true

	if b.device != (vk.Device{}) {
		if err := b.device.WaitIdle(); err != nil {
			b.log.Warn("wait idle before shutdown", zap.Error(err))
		}
		if b.pool != (vk.CommandPool{}) {
			b.device.DestroyCommandPool(b.pool)
		}
		b.device.Destroy()
	}
	if b.surface != (vk.SurfaceKHR{}) {
		b.instance.DestroySurfaceKHR(b.surface)
	}
	if b.instance != (vk.Instance{}) {
		b.instance.Destroy()
	}
}
