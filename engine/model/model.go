package model

import (
	"errors"
	"fmt"
	"slices"
)

// model is the implementation of the Model interface.
type model struct {
	name        string
	layout      VertexLayout
	vertexData  []byte
	vertexCount int
	indices     []uint16
}

// Model is an immutable mesh: an ordered vertex array plus an optional 16-bit index array, serialized
// once for GPU upload. Models hold no GPU state; the renderer uploads them into a BindGroupProvider.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Layout returns the vertex layout the vertex data was serialized with.
	//
	// Returns:
	//   - VertexLayout: the layout of one vertex
	Layout() VertexLayout

	// VertexData returns a copy of the serialized vertex bytes.
	//
	// Returns:
	//   - []byte: the vertex bytes, VertexCount() * Layout().Stride long
	VertexData() []byte

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Indices returns a copy of the index array, or nil for a non-indexed mesh.
	//
	// Returns:
	//   - []uint16: the indices
	Indices() []uint16

	// DrawSlice returns the draw range covering the whole mesh.
	//
	// Returns:
	//   - DrawSlice: the index count when indexed, otherwise the vertex count
	DrawSlice() DrawSlice

	// IndexData returns the serialized index bytes, padded to a 4-byte multiple, or nil for a non-indexed mesh.
	//
	// Returns:
	//   - []byte: the index bytes
	IndexData() []byte
}

var _ Model = &model{}

// NewModel creates a Model from typed vertices and the provided options.
// Indices are validated against the vertex count so a Model never references a vertex that does not exist.
//
// Parameters:
//   - vertices: the vertex records, at least one
//   - options: functional options to configure the model
//
// Returns:
//   - Model: the immutable model
//   - error: an error if there are no vertices or an index is out of range
func NewModel[V Vertex](vertices []V, options ...ModelBuilderOption) (Model, error) {
	if len(vertices) == 0 {
		return nil, errors.New("model must have at least one vertex")
	}
	m := &model{
		name:        "model",
		layout:      vertices[0].Layout(),
		vertexData:  MarshalVertices(vertices),
		vertexCount: len(vertices),
	}
	for _, opt := range options {
		opt(m)
	}
	for i, idx := range m.indices {
		if int(idx) >= m.vertexCount {
			return nil, fmt.Errorf("model %q: index %d at position %d is out of range for %d vertices", m.name, idx, i, m.vertexCount)
		}
	}
	return m, nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Layout() VertexLayout {
	return m.layout
}

func (m *model) VertexData() []byte {
	return slices.Clone(m.vertexData)
}

func (m *model) VertexCount() int {
	return m.vertexCount
}

func (m *model) Indices() []uint16 {
	if m.indices == nil {
		return nil
	}
	out := make([]uint16, len(m.indices))
	copy(out, m.indices)
	return out
}

func (m *model) DrawSlice() DrawSlice {
	if len(m.indices) > 0 {
		return DrawSlice{Count: uint32(len(m.indices)), Indexed: true}
	}
	return DrawSlice{Count: uint32(m.vertexCount)}
}

func (m *model) IndexData() []byte {
	if len(m.indices) == 0 {
		return nil
	}
	return MarshalIndices(m.indices)
}
