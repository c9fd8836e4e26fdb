package sim

import "github.com/go-gl/mathgl/mgl32"

type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyCtrl
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyBracketLeft
	KeyBracketRight
	keyCount
)

// DragSensitivity is radians of rotation per pixel of drag.
const DragSensitivity = 0.005

var maxPitch = mgl32.DegToRad(89)

// InputState is a per-frame snapshot of keyboard and mouse state. The
// camera angles accumulate while the drag button is held.
type InputState struct {
	down [keyCount]bool
	prev [keyCount]bool

	CursorX, CursorY float64
	Dragging         bool
	Yaw, Pitch       float32

	dragStarted bool
}

// BeginFrame starts a new snapshot; keys not set again stay as they were.
func (s *InputState) BeginFrame() {
	s.prev = s.down
}

func (s *InputState) SetKey(k Key, down bool) {
	if k >= 0 && k < keyCount {
		s.down[k] = down
	}
}

func (s *InputState) Held(k Key) bool {
	return k >= 0 && k < keyCount && s.down[k]
}

// Pressed reports a key that went down since the previous frame.
func (s *InputState) Pressed(k Key) bool {
	return s.Held(k) && !s.prev[k]
}

// MoveCursor records the cursor position. While dragging, movement since
// the last position turns the camera.
func (s *InputState) MoveCursor(x, y float64, dragging bool) {
	if dragging && s.dragStarted {
		s.Yaw += float32(x-s.CursorX) * DragSensitivity
		s.Pitch = mgl32.Clamp(s.Pitch-float32(y-s.CursorY)*DragSensitivity, -maxPitch, maxPitch)
	}
	s.CursorX, s.CursorY = x, y
	s.Dragging = dragging
	s.dragStarted = dragging
}
