package gpu

// ImageDesc describes an image plus the optional view and sampler that are
// created with it.
type ImageDesc struct {
	Width, Height uint32
	Format        Format
	Usage         ImageUsage
	Memory        MemoryProperty
	View          bool
	Sampler       *SamplerInfo
}

// Image owns an image, its memory and optionally a view and sampler. It
// tracks the layout the last completed transition left it in.
type Image struct {
	dev     Allocator
	Handle  ImageHandle
	Memory  MemoryHandle
	View    ViewHandle
	Sampler SamplerHandle
	Width   uint32
	Height  uint32
	Format  Format

	layout ImageLayout
}

func NewImage(dev Allocator, desc ImageDesc) (img *Image, err error) {
	img = &Image{
		dev:    dev,
		Width:  desc.Width,
		Height: desc.Height,
		Format: desc.Format,
		layout: LayoutUndefined,
	}
	defer func() {
		if err != nil {
			img.Destroy()
			img = nil
		}
	}()

	var req MemoryRequirements
	img.Handle, req, err = dev.CreateImage(ImageInfo{
		Width:  desc.Width,
		Height: desc.Height,
		Format: desc.Format,
		Usage:  desc.Usage,
	})
	if err != nil {
		return img, Wrap("create image", err)
	}

	typeIndex, err := SelectMemoryType(dev.MemoryProperties(), req.TypeBits, desc.Memory)
	if err != nil {
		return img, Wrap("create image", err)
	}

	img.Memory, err = dev.AllocateMemory(req.Size, typeIndex)
	if err != nil {
		return img, Wrap("allocate image memory", err)
	}

	if err = dev.BindImageMemory(img.Handle, img.Memory); err != nil {
		return img, Wrap("bind image memory", err)
	}

	if desc.View {
		img.View, err = dev.CreateImageView(img.Handle, desc.Format)
		if err != nil {
			return img, Wrap("create image view", err)
		}
	}

	if desc.Sampler != nil {
		img.Sampler, err = dev.CreateSampler(*desc.Sampler)
		if err != nil {
			return img, Wrap("create sampler", err)
		}
	}

	return img, nil
}

func (img *Image) Layout() ImageLayout {
	return img.layout
}

func (img *Image) Extent() Extent {
	return Extent{Width: img.Width, Height: img.Height}
}

// Destroy releases each sub-resource once; later calls do nothing.
func (img *Image) Destroy() {
	if img == nil {
		return
	}
	if img.Sampler != 0 {
		img.dev.DestroySampler(img.Sampler)
		img.Sampler = 0
	}
	if img.View != 0 {
		img.dev.DestroyImageView(img.View)
		img.View = 0
	}
	if img.Handle != 0 {
		img.dev.DestroyImage(img.Handle)
		img.Handle = 0
	}
	if img.Memory != 0 {
		img.dev.FreeMemory(img.Memory)
		img.Memory = 0
	}
}
