package shader

import "github.com/cogentcore/webgpu/wgpu"

// VertexInput is one reflected vertex stage input attribute.
type VertexInput struct {
	// Name is the parameter or struct field name declared in WGSL.
	Name string
	// Location is the @location index.
	Location uint32
	// TypeName is the WGSL type as written, e.g. "vec2<f32>".
	TypeName string
	// Format is the vertex format the type maps to, or wgpu.VertexFormatUndefined when it has none.
	Format wgpu.VertexFormat
}

// FragmentOutput is one reflected fragment stage color output.
type FragmentOutput struct {
	// Name is the struct field name, or empty when the entry point returns a bare @location value.
	Name string
	// Location is the @location index of the color target.
	Location uint32
	// TypeName is the WGSL type as written.
	TypeName string
}

// StageVariable is one user-defined value passed from the vertex stage to the fragment stage.
type StageVariable struct {
	// Name is the struct field or parameter name declared in WGSL.
	Name string
	// Location is the @location index linking the two stages.
	Location uint32
	// TypeName is the WGSL type with shorthand aliases expanded, e.g. "vec3f" becomes "vec3<f32>".
	TypeName string
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type.
// Used to compute MinBindingSize for buffer bindings.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field or parameter extracted during parsing.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// parsedFunction is an entry point signature: its parameters and the return clause after "->".
type parsedFunction struct {
	name       string
	params     []parsedField
	returnType string
	returnLoc  int
}
