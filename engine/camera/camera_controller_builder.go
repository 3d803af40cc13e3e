package camera

import "github.com/go-gl/mathgl/mgl32"

// ControllerOption is a functional option for configuring a Controller.
type ControllerOption func(*controller)

// WithDistance sets the eye offset from the target.
//
// Parameters:
//   - distance: offset along X, Y and Z
//
// Returns:
//   - ControllerOption: functional option to set the distance
func WithDistance(distance float32) ControllerOption {
	return func(c *controller) {
		c.distance = distance
	}
}

// WithSensitivity sets the per-frame step for held keys.
//
// Parameters:
//   - sensitivity: offset applied per frame per key
//
// Returns:
//   - ControllerOption: functional option to set the sensitivity
func WithSensitivity(sensitivity float32) ControllerOption {
	return func(c *controller) {
		c.sensitivity = sensitivity
	}
}

// WithUp sets the up vector used for the look-at matrix.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - ControllerOption: functional option to set the up vector
func WithUp(x, y, z float32) ControllerOption {
	return func(c *controller) {
		c.up = mgl32.Vec3{x, y, z}
	}
}

// WithProjection replaces the default perspective parameters.
//
// Parameters:
//   - p: the projection
//
// Returns:
//   - ControllerOption: functional option to set the projection
func WithProjection(p Projection) ControllerOption {
	return func(c *controller) {
		c.projection = p
	}
}
