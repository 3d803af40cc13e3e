package camera

import "github.com/go-gl/mathgl/mgl32"

// Controller turns held movement keys into target offsets and offsets into a view-projection
// transform. The eye sits at (x+distance, y+distance, distance) looking at (x, y, 0).
type Controller interface {
	// Distance returns the eye offset from the target along each axis.
	//
	// Returns:
	//   - float32: the distance
	Distance() float32

	// Sensitivity returns the offset applied per frame for each held key.
	//
	// Returns:
	//   - float32: the per-frame step
	Sensitivity() float32

	// Up returns the fixed up vector.
	//
	// Returns:
	//   - x, y, z: up vector components
	Up() (x, y, z float32)

	// Projection returns the perspective parameters.
	//
	// Returns:
	//   - Projection: the projection
	Projection() Projection

	// Advance integrates one frame of input into state. Forward adds to X, left adds to Y, back
	// subtracts from X and right subtracts from Y. Opposite keys cancel.
	//
	// Parameters:
	//   - input: the keys held this frame
	//   - state: the offsets to update
	//
	// Returns:
	//   - bool: true if any movement key was held
	Advance(input InputState, state *CameraState) bool

	// Eye returns the eye position for a state.
	//
	// Parameters:
	//   - state: the camera offsets
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye(state CameraState) mgl32.Vec3

	// Transform computes projection * view for a state. It depends on nothing but state and the
	// controller's fixed parameters.
	//
	// Parameters:
	//   - state: the camera offsets
	//
	// Returns:
	//   - [16]float32: the column-major transform
	Transform(state CameraState) [16]float32
}

type controller struct {
	distance    float32
	sensitivity float32
	up          mgl32.Vec3
	projection  Projection
}

var _ Controller = &controller{}

// NewController creates a Controller with distance 3, sensitivity 0.02, +Z up and DefaultProjection.
//
// Parameters:
//   - options: ControllerOption functions to override the defaults
//
// Returns:
//   - Controller: the controller
func NewController(options ...ControllerOption) Controller {
	c := &controller{
		distance:    3,
		sensitivity: 0.02,
		up:          mgl32.Vec3{0, 0, 1},
		projection:  DefaultProjection(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *controller) Distance() float32 {
	return c.distance
}

func (c *controller) Sensitivity() float32 {
	return c.sensitivity
}

func (c *controller) Up() (x, y, z float32) {
	return c.up[0], c.up[1], c.up[2]
}

func (c *controller) Projection() Projection {
	return c.projection
}

func (c *controller) Advance(input InputState, state *CameraState) bool {
	if !input.Any() {
		return false
	}
	if input.Forward {
		state.X += c.sensitivity
	}
	if input.Left {
		state.Y += c.sensitivity
	}
	if input.Back {
		state.X -= c.sensitivity
	}
	if input.Right {
		state.Y -= c.sensitivity
	}
	return true
}

func (c *controller) Eye(state CameraState) mgl32.Vec3 {
	return mgl32.Vec3{state.X + c.distance, state.Y + c.distance, c.distance}
}

func (c *controller) Transform(state CameraState) [16]float32 {
	view := mgl32.LookAtV(c.Eye(state), mgl32.Vec3{state.X, state.Y, 0}, c.up)
	return c.projection.Matrix().Mul4(view)
}
