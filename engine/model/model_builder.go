package model

// ModelBuilderOption is a functional option used to configure a Model during construction.
type ModelBuilderOption func(*model)

// WithName sets the model identifier, also used to label its GPU buffers.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: a function that sets the model name
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithIndices sets the 16-bit index array for indexed drawing. The slice is copied.
//
// Parameters:
//   - indices: indices into the vertex array
//
// Returns:
//   - ModelBuilderOption: a function that sets the model indices
func WithIndices(indices []uint16) ModelBuilderOption {
	return func(m *model) {
		if len(indices) == 0 {
			m.indices = nil
			return
		}
		m.indices = make([]uint16, len(indices))
		copy(m.indices, indices)
	}
}
