package gpu

import "fmt"

// Context bundles the device with the queues work is submitted to. The
// queues may be the same object.
type Context struct {
	Device   Device
	Graphics Queue
	Compute  Queue
	Present  Queue
}

// ScopedTransfer records a one-time command buffer with record, submits it
// to the graphics queue and blocks until the queue is idle. The command
// buffer is freed on every path out, including a panic in record.
func (c *Context) ScopedTransfer(record func(cmd CommandBuffer) error) error {
	cmds, err := c.Device.AllocateCommandBuffers(1)
	if err != nil {
		return Wrap("scoped transfer: allocate", err)
	}
	defer c.Device.FreeCommandBuffers(cmds)
	cmd := cmds[0]

	if err := cmd.Begin(true); err != nil {
		return Wrap("scoped transfer: begin", err)
	}
	if err := record(cmd); err != nil {
		return Wrap("scoped transfer: record", err)
	}
	if err := cmd.End(); err != nil {
		return Wrap("scoped transfer: end", err)
	}

	if err := c.Graphics.Submit(SubmitInfo{CommandBuffers: cmds}); err != nil {
		return Wrap("scoped transfer: submit", err)
	}
	if err := c.Graphics.WaitIdle(); err != nil {
		return Wrap("scoped transfer: wait idle", err)
	}
	return nil
}

// TransitionLayout moves img from old to new in its own scoped transfer.
// Old must match the tracked layout unless it is LayoutUndefined, which
// discards the contents.
func (c *Context) TransitionLayout(img *Image, old, new ImageLayout) error {
	if _, ok := transitions[transitionKey{old, new}]; !ok {
		return Wrap("transition layout", unsupported(old, new))
	}
	if old != LayoutUndefined && old != img.layout {
		return Wrap("transition layout", fmt.Errorf("image is in %s, not %s", img.layout, old))
	}

	err := c.ScopedTransfer(func(cmd CommandBuffer) error {
		return RecordTransition(cmd, img.Handle, old, new)
	})
	if err != nil {
		return err
	}
	img.layout = new
	return nil
}

func newStaging(dev Allocator, data []byte) (*Buffer, error) {
	staging, err := NewBuffer(dev, uint64(len(data)), BufferUsageTransferSrc, MemoryHostVisible|MemoryHostCoherent)
	if err != nil {
		return nil, err
	}
	if err := staging.Write(0, data); err != nil {
		staging.Destroy()
		return nil, err
	}
	return staging, nil
}

// UploadBuffer copies data to the start of a device-local buffer through a
// host-visible staging buffer.
func UploadBuffer(ctx *Context, dst *Buffer, data []byte) error {
	if uint64(len(data)) > dst.Size {
		return Wrap("upload buffer", fmt.Errorf("%d bytes do not fit in %d", len(data), dst.Size))
	}
	if len(data) == 0 {
		return nil
	}

	staging, err := newStaging(ctx.Device, data)
	if err != nil {
		return err
	}
	defer staging.Destroy()

	return ctx.ScopedTransfer(func(cmd CommandBuffer) error {
		cmd.CopyBuffer(staging.Handle, dst.Handle, BufferCopy{Size: uint64(len(data))})
		return nil
	})
}

// ClearImage fills img with color and leaves it in final. The previous
// contents are discarded.
func ClearImage(ctx *Context, img *Image, color [4]float32, final ImageLayout) error {
	if _, ok := transitions[transitionKey{LayoutTransferDst, final}]; !ok {
		return Wrap("clear image", unsupported(LayoutTransferDst, final))
	}
	err := ctx.ScopedTransfer(func(cmd CommandBuffer) error {
		if err := RecordTransition(cmd, img.Handle, LayoutUndefined, LayoutTransferDst); err != nil {
			return err
		}
		cmd.ClearColorImage(img.Handle, LayoutTransferDst, color)
		return RecordTransition(cmd, img.Handle, LayoutTransferDst, final)
	})
	if err != nil {
		return err
	}
	img.layout = final
	return nil
}

// UploadImage fills img with tightly packed pixels and leaves it in
// LayoutShaderReadOnly.
func UploadImage(ctx *Context, img *Image, pixels []byte) error {
	want := int(img.Width) * int(img.Height) * img.Format.BytesPerPixel()
	if want == 0 || len(pixels) != want {
		return Wrap("upload image", fmt.Errorf("got %d bytes, want %d for %dx%d %s", len(pixels), want, img.Width, img.Height, img.Format))
	}

	staging, err := newStaging(ctx.Device, pixels)
	if err != nil {
		return err
	}
	defer staging.Destroy()

	err = ctx.ScopedTransfer(func(cmd CommandBuffer) error {
		if err := RecordTransition(cmd, img.Handle, LayoutUndefined, LayoutTransferDst); err != nil {
			return err
		}
		cmd.CopyBufferToImage(staging.Handle, img.Handle, LayoutTransferDst, img.Width, img.Height)
		return RecordTransition(cmd, img.Handle, LayoutTransferDst, LayoutShaderReadOnly)
	})
	if err != nil {
		return err
	}
	img.layout = LayoutShaderReadOnly
	return nil
}
