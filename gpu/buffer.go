package gpu

import "fmt"

// Buffer owns a VkBuffer and its dedicated memory. Both are valid or both
// are zero.
type Buffer struct {
	dev    Allocator
	Handle BufferHandle
	Memory MemoryHandle
	Size   uint64
	mapped []byte
}

// NewBuffer creates a buffer of size bytes backed by memory carrying at
// least the given properties.
func NewBuffer(dev Allocator, size uint64, usage BufferUsage, props MemoryProperty) (*Buffer, error) {
	handle, req, err := dev.CreateBuffer(size, usage)
	if err != nil {
		return nil, Wrap("create buffer", err)
	}

	typeIndex, err := SelectMemoryType(dev.MemoryProperties(), req.TypeBits, props)
	if err != nil {
		dev.DestroyBuffer(handle)
		return nil, Wrap("create buffer", err)
	}

	mem, err := dev.AllocateMemory(req.Size, typeIndex)
	if err != nil {
		dev.DestroyBuffer(handle)
		return nil, Wrap("allocate buffer memory", err)
	}

	if err := dev.BindBufferMemory(handle, mem); err != nil {
		dev.FreeMemory(mem)
		dev.DestroyBuffer(handle)
		return nil, Wrap("bind buffer memory", err)
	}

	return &Buffer{dev: dev, Handle: handle, Memory: mem, Size: size}, nil
}

// Map maps the whole buffer once and keeps it mapped until Destroy.
func (b *Buffer) Map() ([]byte, error) {
	if b.mapped != nil {
		return b.mapped, nil
	}
	if b.Handle == 0 {
		return nil, Wrap("map buffer", fmt.Errorf("buffer destroyed"))
	}

	data, err := b.dev.MapMemory(b.Memory, b.Size)
	if err != nil {
		return nil, Wrap("map buffer", err)
	}
	b.mapped = data[:b.Size:b.Size]
	return b.mapped, nil
}

// Write copies data into the mapped buffer at offset.
func (b *Buffer) Write(offset uint64, data []byte) error {
	if offset+uint64(len(data)) > b.Size {
		return Wrap("write buffer", fmt.Errorf("%d bytes at offset %d overflow buffer of %d", len(data), offset, b.Size))
	}

	mapped, err := b.Map()
	if err != nil {
		return err
	}
	copy(mapped[offset:], data)
	return nil
}

// Destroy is safe to call more than once.
func (b *Buffer) Destroy() {
	if b == nil || b.Handle == 0 {
		return
	}
	if b.mapped != nil {
		b.dev.UnmapMemory(b.Memory)
		b.mapped = nil
	}
	b.dev.DestroyBuffer(b.Handle)
	b.dev.FreeMemory(b.Memory)
	b.Handle = 0
	b.Memory = 0
}
