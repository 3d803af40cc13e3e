package pipeline

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/shader"
)

// CompileError reports a shader stage the compiler rejected.
type CompileError struct {
	// Key is the shader key.
	Key string
	// Stage is the rejected stage.
	Stage shader.ShaderType
	// Diagnostics is the compiler output.
	Diagnostics string
	// Err is the underlying compiler error.
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("pipeline: compile %s shader %q: %s", e.Stage, e.Key, e.Diagnostics)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// LayoutError reports a mismatch between the declared vertex layout or output targets and what the
// shaders declare. Problems lists every mismatch found, not just the first.
type LayoutError struct {
	Key      string
	Stage    shader.ShaderType
	Problems []string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("pipeline %q: %s stage interface mismatch: %s", e.Key, e.Stage, strings.Join(e.Problems, "; "))
}
