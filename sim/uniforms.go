package sim

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformSize is the std140 size of the uniform block.
const UniformSize = 64

// DeltaScale converts a frame time in seconds into the shaders' deltaTime
// unit, twice the frame time in milliseconds.
const DeltaScale = 2000

// Uniforms mirrors the shaders' uniform block:
//
//	offset  0  float deltaTime
//	offset  4  float totalTime
//	offset 16  vec3  sunPosition
//	offset 32  vec3  cameraPosition
//	offset 48  vec3  windDirection
//	offset 60  uint  frame
type Uniforms struct {
	DeltaTime float32
	TotalTime float32
	Sun       mgl32.Vec3
	Camera    mgl32.Vec3
	Wind      mgl32.Vec3
	Frame     uint32
}

func putFloat(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}

func putVec3(b []byte, off int, v mgl32.Vec3) {
	putFloat(b, off, v[0])
	putFloat(b, off+4, v[1])
	putFloat(b, off+8, v[2])
}

func putVec4(b []byte, off int, v mgl32.Vec4) {
	for i := range v {
		putFloat(b, off+4*i, v[i])
	}
}

// Encode packs u with std140 layout.
func (u Uniforms) Encode() []byte {
	b := make([]byte, UniformSize)
	putFloat(b, 0, u.DeltaTime)
	putFloat(b, 4, u.TotalTime)
	putVec3(b, 16, u.Sun)
	putVec3(b, 32, u.Camera)
	putVec3(b, 48, u.Wind)
	binary.LittleEndian.PutUint32(b[60:], u.Frame)
	return b
}
