package sim

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// ParticleSize is the std430 stride of one particle.
const ParticleSize = 48

// InitialSpeed is the outward speed particles are seeded with.
const InitialSpeed = 0.00025

// Particle.Position.W is the particle's scale.
type Particle struct {
	Position mgl32.Vec4
	Velocity mgl32.Vec3
	Color    mgl32.Vec4
}

// SeedParticles scatters n particles over a disc of radius 0.25, squashed
// horizontally by aspect (height over width) so it is round on screen, each
// moving outward from the center.
func SeedParticles(n int, aspect float32, rng *rand.Rand) []Particle {
	particles := make([]Particle, n)
	for i := range particles {
		r := 0.25 * float32(math.Sqrt(rng.Float64()))
		theta := rng.Float64() * 2 * math.Pi
		x := r * float32(math.Cos(theta)) * aspect
		y := r * float32(math.Sin(theta))

		var velocity mgl32.Vec3
		if dir := (mgl32.Vec3{x, y, 0}); dir.Len() > 0 {
			velocity = dir.Normalize().Mul(InitialSpeed)
		}

		particles[i] = Particle{
			Position: mgl32.Vec4{x, y, 0, 1},
			Velocity: velocity,
			Color:    mgl32.Vec4{rng.Float32(), rng.Float32(), rng.Float32(), 1},
		}
	}
	return particles
}

// EncodeParticles packs particles with std430 layout.
func EncodeParticles(particles []Particle) []byte {
	b := make([]byte, len(particles)*ParticleSize)
	for i, p := range particles {
		off := i * ParticleSize
		putVec4(b, off, p.Position)
		putVec3(b, off+16, p.Velocity)
		putVec4(b, off+32, p.Color)
	}
	return b
}
