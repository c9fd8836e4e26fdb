package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/NOT-REAL-GAMES/plume/gpu"
)

type ResourceConfig struct {
	Slots     int
	Particles int
	// Width and Height size the simulation domain and its storage image.
	Width, Height uint32
	StorageFormat gpu.Format
	Seed          uint64
}

// Textures are the sampled inputs shared by every slot.
type Textures struct {
	Caustic   *gpu.Image
	Noise     *gpu.Image
	BlueNoise *gpu.Image
}

func (t Textures) Destroy() {
	t.Caustic.Destroy()
	t.Noise.Destroy()
	t.BlueNoise.Destroy()
}

// SlotResources are written by exactly one frame slot.
type SlotResources struct {
	Uniform   *gpu.Buffer
	Particles *gpu.Buffer
	Storage   *gpu.Image
}

type Resources struct {
	Slots    []SlotResources
	Textures Textures
}

// NewTexture uploads tightly packed pixels into a sampled image left in
// LayoutShaderReadOnly.
func NewTexture(ctx *gpu.Context, width, height uint32, format gpu.Format, pixels []byte) (*gpu.Image, error) {
	img, err := gpu.NewImage(ctx.Device, gpu.ImageDesc{
		Width:   width,
		Height:  height,
		Format:  format,
		Usage:   gpu.ImageUsageSampled | gpu.ImageUsageTransferDst,
		Memory:  gpu.MemoryDeviceLocal,
		View:    true,
		Sampler: &gpu.SamplerInfo{},
	})
	if err != nil {
		return nil, err
	}
	if err := gpu.UploadImage(ctx, img, pixels); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

// NewResources creates the per-slot uniform buffers, particle buffers and
// storage images. Every particle buffer starts with the same seeded state.
// The returned Resources owns tex.
func NewResources(ctx *gpu.Context, cfg ResourceConfig, tex Textures) (res *Resources, err error) {
	res = &Resources{Textures: tex}
	defer func() {
		if err != nil {
			res.Destroy()
			res = nil
		}
	}()

	if cfg.Slots < 1 || cfg.Particles < 1 || cfg.Width == 0 || cfg.Height == 0 {
		return res, fmt.Errorf("invalid resource config %+v", cfg)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	seeded := EncodeParticles(SeedParticles(cfg.Particles, float32(cfg.Height)/float32(cfg.Width), rng))

	for i := 0; i < cfg.Slots; i++ {
		slot, err := newSlot(ctx, cfg, seeded)
		if err != nil {
			return res, fmt.Errorf("slot %d: %w", i, err)
		}
		res.Slots = append(res.Slots, slot)
	}
	return res, nil
}

func newSlot(ctx *gpu.Context, cfg ResourceConfig, seeded []byte) (slot SlotResources, err error) {
	defer func() {
		if err != nil {
			slot.destroy()
		}
	}()

	slot.Uniform, err = gpu.NewBuffer(ctx.Device, UniformSize, gpu.BufferUsageUniform,
		gpu.MemoryHostVisible|gpu.MemoryHostCoherent)
	if err != nil {
		return slot, err
	}
	if _, err = slot.Uniform.Map(); err != nil {
		return slot, err
	}

	slot.Particles, err = gpu.NewBuffer(ctx.Device, uint64(len(seeded)),
		gpu.BufferUsageStorage|gpu.BufferUsageVertex|gpu.BufferUsageTransferDst, gpu.MemoryDeviceLocal)
	if err != nil {
		return slot, err
	}
	if err = gpu.UploadBuffer(ctx, slot.Particles, seeded); err != nil {
		return slot, err
	}

	slot.Storage, err = gpu.NewImage(ctx.Device, gpu.ImageDesc{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Format:  cfg.StorageFormat,
		Usage:   gpu.ImageUsageStorage | gpu.ImageUsageSampled | gpu.ImageUsageTransferDst,
		Memory:  gpu.MemoryDeviceLocal,
		View:    true,
		Sampler: &gpu.SamplerInfo{Clamp: true},
	})
	if err != nil {
		return slot, err
	}
	err = gpu.ClearImage(ctx, slot.Storage, [4]float32{}, gpu.LayoutGeneral)
	return slot, err
}

func (s SlotResources) destroy() {
	s.Uniform.Destroy()
	s.Particles.Destroy()
	s.Storage.Destroy()
}

// Previous returns the slot whose particle buffer slot reads from.
func (r *Resources) Previous(slot int) int {
	n := len(r.Slots)
	return (slot - 1 + n) % n
}

// WriteUniforms stores u in slot's persistently mapped uniform buffer.
func (r *Resources) WriteUniforms(slot int, u Uniforms) error {
	return r.Slots[slot].Uniform.Write(0, u.Encode())
}

func (r *Resources) Destroy() {
	for _, s := range r.Slots {
		s.destroy()
	}
	r.Slots = nil
	r.Textures.Destroy()
	r.Textures = Textures{}
}
