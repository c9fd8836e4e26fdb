// Package ui draws the parameter overlay on top of the rendered frame and
// exposes the parameters it edits.
package ui

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/sim"
)

// Target describes what the overlay renders into. Rendering is dynamic, so
// the color format stands in for a render pass.
type Target struct {
	ColorFormat gpu.Format
}

// Overlay is driven by the frame loop: RenderFrame once per frame before the
// uniforms are written, AppendToCommandBuffer inside the graphics pass.
type Overlay interface {
	Init(frameCount int, target Target) error
	RenderFrame()
	AppendToCommandBuffer(cmd gpu.CommandBuffer)
	Shutdown()
}

// Parameters are the simulation inputs the overlay edits.
type Parameters interface {
	SunPosition() mgl32.Vec3
	WindDirection() mgl32.Vec3
	Mode() sim.Mode
}
