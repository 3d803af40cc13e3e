package camera

import "github.com/Carmen-Shannon/oxy-frames/common"

// InputState holds the movement keys currently held down.
type InputState struct {
	Forward bool
	Left    bool
	Back    bool
	Right   bool
}

// ApplyKey records a press or release of a movement key. W, A, S and D map to forward, left,
// back and right.
//
// Parameters:
//   - key: the key code (see common.KeyW and friends)
//   - pressed: true on press, false on release
//
// Returns:
//   - bool: true if the key is a movement key
func (s *InputState) ApplyKey(key uint32, pressed bool) bool {
	switch key {
	case common.KeyW:
		s.Forward = pressed
	case common.KeyA:
		s.Left = pressed
	case common.KeyS:
		s.Back = pressed
	case common.KeyD:
		s.Right = pressed
	default:
		return false
	}
	return true
}

// Any reports whether at least one movement key is held.
//
// Returns:
//   - bool: true if any key is held
func (s InputState) Any() bool {
	return s.Forward || s.Left || s.Back || s.Right
}

// CameraState is the offset of the camera target on the ground plane.
type CameraState struct {
	X float32
	Y float32
}
