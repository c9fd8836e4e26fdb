// Package window wraps a glfw window that hosts the Vulkan surface and
// feeds keyboard and mouse state into sim.InputState.
package window

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/sim"
)

var keyMap = map[sim.Key]glfw.Key{
	sim.KeyW:            glfw.KeyW,
	sim.KeyA:            glfw.KeyA,
	sim.KeyS:            glfw.KeyS,
	sim.KeyD:            glfw.KeyD,
	sim.KeySpace:        glfw.KeySpace,
	sim.KeyCtrl:         glfw.KeyLeftControl,
	sim.KeyTab:          glfw.KeyTab,
	sim.KeyUp:           glfw.KeyUp,
	sim.KeyDown:         glfw.KeyDown,
	sim.KeyLeft:         glfw.KeyLeft,
	sim.KeyRight:        glfw.KeyRight,
	sim.KeyBracketLeft:  glfw.KeyLeftBracket,
	sim.KeyBracketRight: glfw.KeyRightBracket,
}

type Options struct {
	Width, Height int
	Title         string
	Log           *zap.Logger
}

type Window struct {
	win      *glfw.Window
	log      *zap.Logger
	onResize func()
}

// Open initializes glfw and creates a window without a client API. It must
// run on the locked main thread.
func Open(opts Options) (*Window, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw reports no Vulkan loader")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &Window{win: win, log: opts.Log.Named("window")}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.log.Debug("framebuffer resized", zap.Int("width", width), zap.Int("height", height))
		if w.onResize != nil {
			w.onResize()
		}
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
	return w, nil
}

// OnResize registers fn to run from the framebuffer size callback.
func (w *Window) OnResize(fn func()) {
	w.onResize = fn
}

func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) WaitEvents() {
	glfw.WaitEvents()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Poll starts a new input frame from the current key, cursor and left
// mouse button state.
func (w *Window) Poll(in *sim.InputState) {
	in.BeginFrame()
	for k, gk := range keyMap {
		in.SetKey(k, w.win.GetKey(gk) == glfw.Press)
	}
	x, y := w.win.GetCursorPos()
	in.MoveCursor(x, y, w.win.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press)
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

// Time is seconds since glfw was initialized.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

// RequiredExtensions lists the instance extensions surface creation needs.
func (w *Window) RequiredExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

// CreateSurface creates a VkSurfaceKHR for instance, a VkInstance handle,
// and returns it as a raw handle.
func (w *Window) CreateSurface(instance unsafe.Pointer) (uintptr, error) {
	surface, err := w.win.CreateWindowSurface((*byte)(instance), nil)
	if err != nil {
		return 0, fmt.Errorf("create window surface: %w", err)
	}
	return surface, nil
}

func (w *Window) Destroy() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
	glfw.Terminate()
}
