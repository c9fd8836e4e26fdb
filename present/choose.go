package present

import "github.com/NOT-REAL-GAMES/plume/gpu"

// PreferredFormat is used whenever the surface offers it.
var PreferredFormat = gpu.SurfaceFormat{
	Format:     gpu.FormatB8G8R8A8Srgb,
	ColorSpace: gpu.ColorSpaceSRGBNonlinear,
}

// undefinedExtent in currentExtent means the window decides the size.
const undefinedExtent = 0xFFFFFFFF

// ChooseFormat returns PreferredFormat if offered, else the first format.
func ChooseFormat(formats []gpu.SurfaceFormat) (gpu.SurfaceFormat, bool) {
	if len(formats) == 0 {
		return gpu.SurfaceFormat{}, false
	}
	for _, f := range formats {
		if f == PreferredFormat {
			return f, true
		}
	}
	return formats[0], true
}

// ChoosePresentMode returns preferred if offered. FIFO is always available.
func ChoosePresentMode(modes []gpu.PresentMode, preferred gpu.PresentMode) gpu.PresentMode {
	for _, m := range modes {
		if m == preferred {
			return m
		}
	}
	return gpu.PresentModeFIFO
}

func ChooseExtent(caps gpu.SurfaceCapabilities, width, height int) gpu.Extent {
	if caps.CurrentExtent.Width != undefinedExtent {
		return caps.CurrentExtent
	}
	return gpu.Extent{
		Width:  clamp(uint32(max(width, 0)), caps.MinExtent.Width, caps.MaxExtent.Width),
		Height: clamp(uint32(max(height, 0)), caps.MinExtent.Height, caps.MaxExtent.Height),
	}
}

// ChooseImageCount asks for one more than the minimum, capped by the
// maximum when the surface has one.
func ChooseImageCount(caps gpu.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
