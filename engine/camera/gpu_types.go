package camera

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Locals is the GPU layout of the per-frame uniform block: one column-major mat4x4<f32>.
// Size: 64 bytes.
type Locals struct {
	Transform [16]float32 // offset 0: view-projection matrix (mat4x4<f32>)
}

// Size returns the size of the Locals struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (l *Locals) Size() int {
	return int(unsafe.Sizeof(*l))
}

// Marshal serializes Locals into a little endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (l *Locals) Marshal() []byte {
	buf := make([]byte, l.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(l.Transform[i]))
	}
	return buf
}
