// Package present owns the swapchain and rebuilds it when the window
// changes.
package present

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/gpu"
)

// SizeProvider reports the framebuffer size in pixels. WaitEvents blocks
// until the window system has something to deliver.
type SizeProvider interface {
	FramebufferSize() (width, height int)
	WaitEvents()
}

type State int

const (
	StateUninitialized State = iota
	StateReady
	StateStale
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	case StateDestroyed:
		return "destroyed"
	}
	return "invalid"
}

var errZeroExtent = errors.New("surface reports a zero extent")

type Options struct {
	PresentMode    gpu.PresentMode
	AcquireTimeout time.Duration
	// Backoff paces swapchain creation retries during Resize. Nil means a
	// short bounded exponential backoff.
	Backoff func() backoff.BackOff
	Log     *zap.Logger
}

type Surface struct {
	dev  gpu.Device
	size SizeProvider
	opts Options
	log  *zap.Logger

	state     State
	swapchain gpu.Swapchain
	images    []gpu.ImageHandle
	views     []gpu.ViewHandle
	extent    gpu.Extent
	format    gpu.SurfaceFormat
	mode      gpu.PresentMode
	resizes   int
}

func New(dev gpu.Device, size SizeProvider, opts Options) *Surface {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Backoff == nil {
		opts.Backoff = defaultBackoff
	}
	return &Surface{
		dev:  dev,
		size: size,
		opts: opts,
		log:  log.Named("surface"),
	}
}

func defaultBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second
	return backoff.WithMaxRetries(b, 8)
}

// Create builds the swapchain and one view per image.
func (s *Surface) Create() error {
	if s.state != StateUninitialized {
		return fmt.Errorf("create surface in %s state", s.state)
	}
	if err := s.build(); err != nil {
		return err
	}
	s.log.Info("swapchain created", s.fields()...)
	return nil
}

func (s *Surface) build() error {
	caps, formats, modes, err := s.dev.SurfaceSupport()
	if err != nil {
		return gpu.Wrap("query surface support", err)
	}

	format, ok := ChooseFormat(formats)
	if !ok {
		return gpu.Wrap("create swapchain", errors.New("surface reports no formats"))
	}
	w, h := s.size.FramebufferSize()
	extent := ChooseExtent(caps, w, h)
	if extent.IsZero() {
		return gpu.Wrap("create swapchain", errZeroExtent)
	}
	mode := ChoosePresentMode(modes, s.opts.PresentMode)
	count := ChooseImageCount(caps)

	sc, err := s.dev.CreateSwapchain(gpu.SwapchainInfo{
		Extent:      extent,
		Format:      format,
		PresentMode: mode,
		ImageCount:  count,
	})
	if err != nil {
		return gpu.Wrap("create swapchain", err)
	}

	images, err := s.dev.SwapchainImages(sc)
	if err != nil {
		s.dev.DestroySwapchain(sc)
		return gpu.Wrap("get swapchain images", err)
	}

	views := make([]gpu.ViewHandle, 0, len(images))
	for _, img := range images {
		view, err := s.dev.CreateImageView(img, format.Format)
		if err != nil {
			for _, v := range views {
				s.dev.DestroyImageView(v)
			}
			s.dev.DestroySwapchain(sc)
			return gpu.Wrap("create swapchain image view", err)
		}
		views = append(views, view)
	}

	s.swapchain = sc
	s.images = images
	s.views = views
	s.extent = extent
	s.format = format
	s.mode = mode
	s.state = StateReady
	return nil
}

func (s *Surface) release() {
	for _, v := range s.views {
		s.dev.DestroyImageView(v)
	}
	s.views = nil
	s.images = nil
	if s.swapchain != 0 {
		s.dev.DestroySwapchain(s.swapchain)
		s.swapchain = 0
	}
}

func transient(err error) bool {
	return errors.Is(err, gpu.ErrSurfaceOutdated) ||
		errors.Is(err, gpu.ErrTimeout) ||
		errors.Is(err, errZeroExtent)
}

// Resize waits out a minimized window, then rebuilds the swapchain once the
// device is idle. Both the outdated-surface path and the window resize flag
// end up here.
func (s *Surface) Resize() error {
	if s.state == StateDestroyed || s.state == StateUninitialized {
		return fmt.Errorf("resize surface in %s state", s.state)
	}

	w, h := s.size.FramebufferSize()
	for w <= 0 || h <= 0 {
		s.size.WaitEvents()
		w, h = s.size.FramebufferSize()
	}

	if err := s.dev.WaitIdle(); err != nil {
		return gpu.Wrap("resize: wait idle", err)
	}

	s.release()
	s.state = StateStale

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := s.build()
		if err == nil {
			return nil
		}
		if !transient(err) {
			return backoff.Permanent(err)
		}
		s.log.Debug("swapchain rebuild failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		return err
	}, s.opts.Backoff())
	if err != nil {
		return err
	}

	s.resizes++
	s.log.Info("swapchain rebuilt", append(s.fields(), zap.Int("resizes", s.resizes))...)
	return nil
}

// Acquire returns the next image index. A suboptimal surface still yields a
// usable image; an outdated one returns gpu.ErrSurfaceOutdated and leaves
// signal untouched.
func (s *Surface) Acquire(signal gpu.Semaphore) (uint32, error) {
	index, err := s.dev.AcquireNextImage(s.swapchain, signal, s.opts.AcquireTimeout)
	switch {
	case err == nil, errors.Is(err, gpu.ErrSurfaceSuboptimal):
		return index, nil
	case errors.Is(err, gpu.ErrSurfaceOutdated):
		s.state = StateStale
		return 0, gpu.ErrSurfaceOutdated
	}
	return 0, gpu.Wrap("acquire", err)
}

// Present queues image index for display once wait is signaled.
func (s *Surface) Present(q gpu.Queue, wait gpu.Semaphore, index uint32) error {
	err := q.Present(gpu.PresentInfo{Wait: wait, Swapchain: s.swapchain, ImageIndex: index})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gpu.ErrSurfaceOutdated):
		s.state = StateStale
		return gpu.ErrSurfaceOutdated
	case errors.Is(err, gpu.ErrSurfaceSuboptimal):
		s.state = StateStale
		return gpu.ErrSurfaceSuboptimal
	}
	return gpu.Wrap("present", err)
}

func (s *Surface) Destroy() {
	if s.state == StateDestroyed {
		return
	}
	s.release()
	s.state = StateDestroyed
	s.log.Debug("swapchain destroyed")
}

func (s *Surface) fields() []zap.Field {
	return []zap.Field{
		zap.Uint32("width", s.extent.Width),
		zap.Uint32("height", s.extent.Height),
		zap.Stringer("format", s.format.Format),
		zap.Stringer("present_mode", s.mode),
		zap.Int("images", len(s.images)),
	}
}

func (s *Surface) State() State {
	return s.state
}

func (s *Surface) Extent() gpu.Extent {
	return s.extent
}

func (s *Surface) Format() gpu.SurfaceFormat {
	return s.format
}

func (s *Surface) PresentMode() gpu.PresentMode {
	return s.mode
}

func (s *Surface) ImageCount() int {
	return len(s.images)
}

func (s *Surface) Image(i uint32) gpu.ImageHandle {
	return s.images[i]
}

func (s *Surface) View(i uint32) gpu.ViewHandle {
	return s.views[i]
}

func (s *Surface) Swapchain() gpu.Swapchain {
	return s.swapchain
}

// Resizes counts completed Resize calls.
func (s *Surface) Resizes() int {
	return s.resizes
}
