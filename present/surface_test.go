package present

import (
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/gpu/gputest"
)

// fakeWindow returns sizes in order and repeats the last one.
type fakeWindow struct {
	sizes [][2]int
	calls int
	waits int
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	i := min(w.calls, len(w.sizes)-1)
	w.calls++
	return w.sizes[i][0], w.sizes[i][1]
}

func (w *fakeWindow) WaitEvents() {
	w.waits++
}

func fixedWindow(width, height int) *fakeWindow {
	return &fakeWindow{sizes: [][2]int{{width, height}}}
}

func noWait() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
}

func newSurface(t *testing.T, dev *gputest.Device, win SizeProvider) *Surface {
	t.Helper()
	s := New(dev, win, Options{PresentMode: gpu.PresentModeMailbox, Backoff: noWait, Log: zap.NewNop()})
	require.NoError(t, s.Create())
	t.Cleanup(s.Destroy)
	return s
}

func TestChooseFormat(t *testing.T) {
	tests := []struct {
		name    string
		formats []gpu.SurfaceFormat
		want    gpu.SurfaceFormat
		ok      bool
	}{
		{
			name: "preferred present",
			formats: []gpu.SurfaceFormat{
				{Format: gpu.FormatR8G8B8A8Unorm},
				PreferredFormat,
			},
			want: PreferredFormat,
			ok:   true,
		},
		{
			name: "bgra srgb over rgba srgb",
			formats: []gpu.SurfaceFormat{
				{Format: gpu.FormatR8G8B8A8Srgb, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
				{Format: gpu.FormatB8G8R8A8Srgb, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
			},
			want: gpu.SurfaceFormat{Format: gpu.FormatB8G8R8A8Srgb, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
			ok:   true,
		},
		{
			name:    "falls back to first",
			formats: []gpu.SurfaceFormat{{Format: gpu.FormatR8G8B8A8Unorm}, {Format: gpu.FormatB8G8R8A8Unorm}},
			want:    gpu.SurfaceFormat{Format: gpu.FormatR8G8B8A8Unorm},
			ok:      true,
		},
		{
			name: "none offered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ChooseFormat(tt.formats)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, gpu.PresentModeMailbox,
		ChoosePresentMode([]gpu.PresentMode{gpu.PresentModeFIFO, gpu.PresentModeMailbox}, gpu.PresentModeMailbox))
	assert.Equal(t, gpu.PresentModeFIFO,
		ChoosePresentMode([]gpu.PresentMode{gpu.PresentModeFIFO, gpu.PresentModeImmediate}, gpu.PresentModeMailbox))
	assert.Equal(t, gpu.PresentModeImmediate,
		ChoosePresentMode([]gpu.PresentMode{gpu.PresentModeFIFO, gpu.PresentModeImmediate}, gpu.PresentModeImmediate))
}

func TestChooseExtent(t *testing.T) {
	caps := gpu.SurfaceCapabilities{
		CurrentExtent: gpu.Extent{Width: 640, Height: 480},
		MinExtent:     gpu.Extent{Width: 100, Height: 100},
		MaxExtent:     gpu.Extent{Width: 1000, Height: 1000},
	}
	assert.Equal(t, gpu.Extent{Width: 640, Height: 480}, ChooseExtent(caps, 800, 600))

	caps.CurrentExtent = gpu.Extent{Width: undefinedExtent, Height: undefinedExtent}
	assert.Equal(t, gpu.Extent{Width: 800, Height: 600}, ChooseExtent(caps, 800, 600))
	assert.Equal(t, gpu.Extent{Width: 1000, Height: 100}, ChooseExtent(caps, 4000, 10))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), ChooseImageCount(gpu.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), ChooseImageCount(gpu.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
	assert.Equal(t, uint32(4), ChooseImageCount(gpu.SurfaceCapabilities{MinImageCount: 3}))
}

func TestCreate(t *testing.T) {
	dev := gputest.New()
	s := newSurface(t, dev, fixedWindow(800, 600))

	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, gpu.Extent{Width: 800, Height: 600}, s.Extent())
	assert.Equal(t, PreferredFormat, s.Format())
	assert.Equal(t, gpu.PresentModeMailbox, s.PresentMode())
	assert.Equal(t, 3, s.ImageCount())
	assert.Equal(t, 3, dev.Live(gputest.KindView))
	assert.Equal(t, 1, dev.SwapchainsCreated())

	assert.Error(t, s.Create(), "second create")

	s.Destroy()
	assert.Equal(t, StateDestroyed, s.State())
	assert.Zero(t, dev.Live(gputest.KindView))
	assert.Zero(t, dev.Live(gputest.KindSwapchain))
	assert.Empty(t, dev.Violations())
}

func TestResizeIsIdempotent(t *testing.T) {
	dev := gputest.New()
	s := newSurface(t, dev, fixedWindow(800, 600))

	require.NoError(t, s.Resize())
	first := []any{s.Extent(), s.Format(), s.ImageCount()}
	require.NoError(t, s.Resize())
	second := []any{s.Extent(), s.Format(), s.ImageCount()}

	assert.Equal(t, first, second)
	assert.Equal(t, 2, s.Resizes())
	assert.Equal(t, 3, dev.SwapchainsCreated())
	assert.Equal(t, 1, dev.Live(gputest.KindSwapchain))
	assert.Equal(t, 3, dev.Live(gputest.KindView))
	assert.Empty(t, dev.Violations())
}

func TestResizeWaitsForNonZeroSize(t *testing.T) {
	dev := gputest.New()
	dev.Caps.CurrentExtent = gpu.Extent{Width: undefinedExtent, Height: undefinedExtent}

	win := fixedWindow(800, 600)
	s := newSurface(t, dev, win)

	win.sizes = [][2]int{{0, 0}, {0, 0}, {800, 600}}
	win.calls = 0
	require.NoError(t, s.Resize())

	assert.Equal(t, 2, win.waits)
	assert.Equal(t, gpu.Extent{Width: 800, Height: 600}, s.Extent())
	assert.Equal(t, StateReady, s.State())
}

func TestResizeRetriesTransientFailures(t *testing.T) {
	dev := gputest.New()
	s := newSurface(t, dev, fixedWindow(800, 600))

	dev.FailNext("CreateSwapchain", gpu.ErrSurfaceOutdated, gpu.ErrSurfaceOutdated)
	require.NoError(t, s.Resize())
	assert.Equal(t, 1, s.Resizes())
	assert.Equal(t, StateReady, s.State())
}

func TestResizeDoesNotRetryPermanentFailures(t *testing.T) {
	dev := gputest.New()
	s := newSurface(t, dev, fixedWindow(800, 600))

	first := errors.New("first")
	second := errors.New("second")
	dev.FailNext("CreateSwapchain", first, second)

	assert.ErrorIs(t, s.Resize(), first)
	assert.Equal(t, StateStale, s.State())
	assert.ErrorIs(t, s.Resize(), second)
	assert.Zero(t, s.Resizes())
	assert.Zero(t, dev.Live(gputest.KindSwapchain))
}

func TestAcquire(t *testing.T) {
	dev := gputest.New()
	s := newSurface(t, dev, fixedWindow(800, 600))
	sem, err := dev.CreateSemaphore()
	require.NoError(t, err)

	dev.FailAcquire(1, gpu.ErrSurfaceSuboptimal)
	dev.FailAcquire(2, gpu.ErrSurfaceOutdated)
	dev.FailAcquire(3, gpu.ErrDeviceLost)

	idx, err := s.Acquire(sem)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)
	require.NoError(t, dev.Graphics.Present(gpu.PresentInfo{Wait: sem, Swapchain: s.Swapchain()}))

	_, err = s.Acquire(sem)
	assert.Equal(t, gpu.ErrSurfaceOutdated, err)
	assert.Equal(t, StateStale, s.State())

	_, err = s.Acquire(sem)
	assert.ErrorIs(t, err, gpu.ErrDeviceLost)
	var opErr *gpu.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "acquire", opErr.Op)
}

func TestPresent(t *testing.T) {
	tests := []struct {
		name      string
		injected  error
		want      error
		wantState State
	}{
		{name: "ok", wantState: StateReady},
		{name: "outdated", injected: gpu.ErrSurfaceOutdated, want: gpu.ErrSurfaceOutdated, wantState: StateStale},
		{name: "suboptimal", injected: gpu.ErrSurfaceSuboptimal, want: gpu.ErrSurfaceSuboptimal, wantState: StateStale},
		{name: "device lost", injected: gpu.ErrDeviceLost, want: gpu.ErrDeviceLost, wantState: StateReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New()
			s := newSurface(t, dev, fixedWindow(800, 600))
			sem, err := dev.CreateSemaphore()
			require.NoError(t, err)
			if tt.injected != nil {
				dev.FailPresent(1, tt.injected)
			}

			idx, err := s.Acquire(sem)
			require.NoError(t, err)
			err = s.Present(dev.Graphics, sem, idx)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, tt.wantState, s.State())
			assert.Empty(t, dev.Violations())
		})
	}
}
