package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera is a free-fly camera steered by InputState.
type Camera struct {
	Position mgl32.Vec3
	// Speed is in world units per second.
	Speed float32
}

func NewCamera() *Camera {
	return &Camera{Position: mgl32.Vec3{0, 0, -3}, Speed: 1.5}
}

// Forward is the view direction for the given angles; yaw 0 and pitch 0
// look down +Z.
func Forward(yaw, pitch float32) mgl32.Vec3 {
	cp := float32(math.Cos(float64(pitch)))
	return mgl32.Vec3{
		cp * float32(math.Sin(float64(yaw))),
		float32(math.Sin(float64(pitch))),
		cp * float32(math.Cos(float64(yaw))),
	}
}

// Update moves the camera for dt seconds: W/S along the view direction,
// A/D sideways, Space and Ctrl along world up.
func (c *Camera) Update(in *InputState, dt float32) {
	forward := Forward(in.Yaw, in.Pitch)
	right := worldUp.Cross(forward)
	if right.Len() > 0 {
		right = right.Normalize()
	}

	var move mgl32.Vec3
	if in.Held(KeyW) {
		move = move.Add(forward)
	}
	if in.Held(KeyS) {
		move = move.Sub(forward)
	}
	if in.Held(KeyD) {
		move = move.Add(right)
	}
	if in.Held(KeyA) {
		move = move.Sub(right)
	}
	if in.Held(KeySpace) {
		move = move.Add(worldUp)
	}
	if in.Held(KeyCtrl) {
		move = move.Sub(worldUp)
	}
	if move.Len() == 0 {
		return
	}
	c.Position = c.Position.Add(move.Normalize().Mul(c.Speed * dt))
}
