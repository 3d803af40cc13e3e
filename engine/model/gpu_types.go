package model

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// Vertex is implemented by every GPU vertex record. The layout returned by Layout must describe
// exactly the bytes produced by Marshal.
type Vertex interface {
	// Marshal serializes the vertex into a little-endian byte buffer suitable for GPU upload.
	//
	// Returns:
	//   - []byte: the serialized vertex, Layout().Stride bytes long
	Marshal() []byte

	// Layout returns the vertex layout shared by every value of the type.
	//
	// Returns:
	//   - VertexLayout: the attribute layout
	Layout() VertexLayout
}

var (
	colorVertexLayout = mustVertexLayout(
		VertexAttribute{Name: "a_Pos", Location: 0, Format: wgpu.VertexFormatFloat32x2},
		VertexAttribute{Name: "a_Color", Location: 1, Format: wgpu.VertexFormatFloat32x3},
	)
	texturedVertexLayout = mustVertexLayout(
		VertexAttribute{Name: "a_Pos", Location: 0, Format: wgpu.VertexFormatFloat32x4},
		VertexAttribute{Name: "a_TexCoord", Location: 1, Format: wgpu.VertexFormatFloat32x2},
	)
)

// ColorVertex is a flat-shaded 2D vertex with a per-vertex RGB color.
// Matches the WGSL input struct { @location(0) a_Pos: vec2<f32>, @location(1) a_Color: vec3<f32> }.
// Size: 20 bytes.
type ColorVertex struct {
	Pos   [2]float32 // offset  0: clip-space position (8 bytes)
	Color [3]float32 // offset  8: linear RGB color (12 bytes)
}

var _ Vertex = ColorVertex{}

// Size returns the size of the ColorVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (20)
func (v ColorVertex) Size() int {
	return int(unsafe.Sizeof(v))
}

func (v ColorVertex) Layout() VertexLayout {
	return colorVertexLayout
}

func (v ColorVertex) Marshal() []byte {
	buf := make([]byte, 20)
	putFloats(buf[0:], v.Pos[:])
	putFloats(buf[8:], v.Color[:])
	return buf
}

// TexturedVertex is a homogeneous 3D position with a texture coordinate.
// Matches the WGSL input struct { @location(0) a_Pos: vec4<f32>, @location(1) a_TexCoord: vec2<f32> }.
// Size: 24 bytes.
type TexturedVertex struct {
	Pos      [4]float32 // offset  0: model-space position, w = 1 (16 bytes)
	TexCoord [2]float32 // offset 16: UV texture coordinate (8 bytes)
}

var _ Vertex = TexturedVertex{}

// TexturedVertexComponents is the number of floats one TexturedVertex occupies in a flat vertex array.
const TexturedVertexComponents = 6

// Size returns the size of the TexturedVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (24)
func (v TexturedVertex) Size() int {
	return int(unsafe.Sizeof(v))
}

func (v TexturedVertex) Layout() VertexLayout {
	return texturedVertexLayout
}

func (v TexturedVertex) Marshal() []byte {
	buf := make([]byte, 24)
	putFloats(buf[0:], v.Pos[:])
	putFloats(buf[16:], v.TexCoord[:])
	return buf
}

// TexturedVerticesFromFloats groups a flat float array (x, y, z, w, u, v per vertex) into TexturedVertex records.
//
// Parameters:
//   - data: the flat vertex array, a multiple of TexturedVertexComponents long
//
// Returns:
//   - []TexturedVertex: one vertex per group of components
//   - error: an error if the array length is not a multiple of TexturedVertexComponents
func TexturedVerticesFromFloats(data []float32) ([]TexturedVertex, error) {
	if len(data)%TexturedVertexComponents != 0 {
		return nil, fmt.Errorf("vertex array length %d is not a multiple of %d", len(data), TexturedVertexComponents)
	}
	out := make([]TexturedVertex, 0, len(data)/TexturedVertexComponents)
	for i := 0; i < len(data); i += TexturedVertexComponents {
		out = append(out, TexturedVertex{
			Pos:      [4]float32{data[i], data[i+1], data[i+2], data[i+3]},
			TexCoord: [2]float32{data[i+4], data[i+5]},
		})
	}
	return out, nil
}

// MarshalVertices serializes a slice of vertices back to back.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: the concatenated vertex bytes
func MarshalVertices[V Vertex](vertices []V) []byte {
	if len(vertices) == 0 {
		return nil
	}
	buf := make([]byte, 0, len(vertices)*int(vertices[0].Layout().Stride))
	for _, v := range vertices {
		buf = append(buf, v.Marshal()...)
	}
	return buf
}

// MarshalIndices serializes 16-bit indices little-endian, padded with a zero index to a 4-byte multiple
// as required for GPU buffer writes. The padding is never covered by the draw range.
//
// Parameters:
//   - indices: the indices to serialize
//
// Returns:
//   - []byte: the index bytes
func MarshalIndices(indices []uint16) []byte {
	n := len(indices) * 2
	if n%4 != 0 {
		n += 2
	}
	buf := make([]byte, n)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(buf[i*2:], idx)
	}
	return buf
}

func putFloats(buf []byte, values []float32) {
	for i, f := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}
