package camera

import "github.com/go-gl/mathgl/mgl32"

// clipCorrection maps OpenGL clip space depth [-1, 1] onto the [0, 1] range WebGPU expects.
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Projection holds the fixed perspective parameters of a camera.
type Projection struct {
	// FovY is the vertical field of view in degrees.
	FovY float32
	// Aspect is width divided by height.
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultProjection returns a 45 degree perspective for a 1024x768 window with planes at 1 and 10.
//
// Returns:
//   - Projection: the default projection
func DefaultProjection() Projection {
	return Projection{
		FovY:   45,
		Aspect: 1024.0 / 768.0,
		Near:   1,
		Far:    10,
	}
}

// Matrix returns the projection matrix with the WebGPU depth range applied.
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func (p Projection) Matrix() mgl32.Mat4 {
	return clipCorrection.Mul4(mgl32.Perspective(mgl32.DegToRad(p.FovY), p.Aspect, p.Near, p.Far))
}
