package model

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormatSizes maps the vertex formats used by engine vertex types to their byte size.
var vertexFormatSizes = map[wgpu.VertexFormat]uint64{
	wgpu.VertexFormatFloat32:   4,
	wgpu.VertexFormatFloat32x2: 8,
	wgpu.VertexFormatFloat32x3: 12,
	wgpu.VertexFormatFloat32x4: 16,
	wgpu.VertexFormatUint32:    4,
	wgpu.VertexFormatSint32:    4,
}

// VertexAttribute describes one named field of a vertex record as the shader sees it.
type VertexAttribute struct {
	// Name is the shader-side field name the attribute binds to, e.g. "a_Pos".
	Name string
	// Location is the @location index of the attribute in the vertex stage.
	Location uint32
	// Format is the GPU vertex format of the attribute.
	Format wgpu.VertexFormat
	// Offset is the byte offset of the attribute within one vertex.
	Offset uint64
}

// VertexLayout is the strongly typed description of a vertex record: its ordered attributes and stride.
// It is checked against the vertex shader's reflected inputs when a pipeline is built.
type VertexLayout struct {
	Attributes []VertexAttribute
	Stride     uint64
}

// NewVertexLayout builds a tightly packed layout from the given attributes in order.
// Offsets are assigned sequentially from each attribute's format size; any Offset set by the caller is ignored.
//
// Parameters:
//   - attrs: the attributes in memory order
//
// Returns:
//   - VertexLayout: the packed layout
//   - error: an error if an attribute uses a format with no known size
func NewVertexLayout(attrs ...VertexAttribute) (VertexLayout, error) {
	layout := VertexLayout{Attributes: make([]VertexAttribute, 0, len(attrs))}
	for _, a := range attrs {
		size, ok := vertexFormatSizes[a.Format]
		if !ok {
			return VertexLayout{}, fmt.Errorf("vertex attribute %q: unsupported format %v", a.Name, a.Format)
		}
		a.Offset = layout.Stride
		layout.Attributes = append(layout.Attributes, a)
		layout.Stride += size
	}
	return layout, nil
}

// mustVertexLayout is NewVertexLayout for the engine's own fixed vertex types.
func mustVertexLayout(attrs ...VertexAttribute) VertexLayout {
	layout, err := NewVertexLayout(attrs...)
	if err != nil {
		panic(err)
	}
	return layout
}

// BufferLayout converts the layout into the wgpu descriptor used for pipeline creation.
//
// Returns:
//   - wgpu.VertexBufferLayout: a per-vertex buffer layout with one attribute per field
func (l VertexLayout) BufferLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = wgpu.VertexAttribute{
			Format:         a.Format,
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: l.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// DrawSlice describes the range a draw call covers: a vertex count, or an index count when Indexed is set.
type DrawSlice struct {
	Count   uint32
	Indexed bool
}
