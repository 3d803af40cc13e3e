package renderer

import "github.com/Carmen-Shannon/oxy-frames/engine/renderer/bind_group_provider"

// DrawData is the mutable record a draw call consumes.
type DrawData struct {
	// Mesh holds the vertex buffer, the optional index buffer and the draw slice.
	Mesh bind_group_provider.BindGroupProvider
	// Bindings holds the group 0 bind group (uniforms, texture and sampler). Nil when the pipeline binds nothing.
	Bindings bind_group_provider.BindGroupProvider
	// Depth binds the depth target. It must match the pipeline's depth setting.
	Depth bool
	// Transform is the current uniform transform, column major.
	Transform [16]float32
}
