package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frames/engine/model"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/shader"
)

// Validate checks a pipeline before any GPU object is created: both stages must be present and
// compile, the vertex layout must match the vertex stage inputs, every fragment input must be fed
// by a vertex output of the same type, and the fragment stage must write exactly one color output
// named after the color target.
//
// Parameters:
//   - p: the pipeline to validate
//
// Returns:
//   - error: a *CompileError or *LayoutError, or nil when the pipeline can be built
func Validate(p Pipeline) error {
	vs := p.Shader(shader.ShaderTypeVertex)
	fs := p.Shader(shader.ShaderTypeFragment)
	if vs == nil || fs == nil {
		return fmt.Errorf("pipeline %q: vertex and fragment shaders are both required", p.PipelineKey())
	}
	for _, s := range []shader.Shader{vs, fs} {
		if err := Compile(s); err != nil {
			return err
		}
	}
	if err := ValidateVertexLayout(p.PipelineKey(), p.VertexLayout(), vs); err != nil {
		return err
	}
	if err := ValidateStageLink(p.PipelineKey(), vs, fs); err != nil {
		return err
	}
	return ValidateFragmentOutputs(p.PipelineKey(), p.ColorTarget(), fs)
}

// Compile runs the shader compiler over one stage and converts its failure into a *CompileError.
//
// Parameters:
//   - s: the shader to compile
//
// Returns:
//   - error: a *CompileError carrying the diagnostics, or nil
func Compile(s shader.Shader) error {
	err := s.Validate()
	if err == nil {
		return nil
	}
	return &CompileError{
		Key:         s.Key(),
		Stage:       s.ShaderType(),
		Diagnostics: err.Error(),
		Err:         err,
	}
}

// ValidateVertexLayout compares the declared layout with the reflected vertex inputs attribute by
// attribute: same count, and at each position the same name, location and format.
//
// Parameters:
//   - key: the pipeline key used in the error
//   - layout: the declared vertex layout
//   - vs: the vertex shader
//
// Returns:
//   - error: a *LayoutError listing every mismatch, or nil
func ValidateVertexLayout(key string, layout model.VertexLayout, vs shader.Shader) error {
	inputs := vs.VertexInputs()
	var problems []string
	if len(inputs) != len(layout.Attributes) {
		problems = append(problems, fmt.Sprintf("layout has %d attributes, shader declares %d inputs", len(layout.Attributes), len(inputs)))
	}
	for i := range min(len(inputs), len(layout.Attributes)) {
		a, in := layout.Attributes[i], inputs[i]
		if a.Name != in.Name {
			problems = append(problems, fmt.Sprintf("attribute %d: layout name %q, shader name %q", i, a.Name, in.Name))
		}
		if a.Location != in.Location {
			problems = append(problems, fmt.Sprintf("attribute %q: layout location %d, shader location %d", a.Name, a.Location, in.Location))
		}
		if a.Format != in.Format {
			problems = append(problems, fmt.Sprintf("attribute %q: layout format %v, shader type %s", a.Name, a.Format, in.TypeName))
		}
	}
	if len(problems) > 0 {
		return &LayoutError{Key: key, Stage: shader.ShaderTypeVertex, Problems: problems}
	}
	return nil
}

// ValidateStageLink checks the interface between the stages: each fragment input location must be
// written by the vertex stage with the same type. Vertex outputs the fragment stage ignores are allowed.
//
// Parameters:
//   - key: the pipeline key used in the error
//   - vs: the vertex shader
//   - fs: the fragment shader
//
// Returns:
//   - error: a *LayoutError listing every unlinked input, or nil
func ValidateStageLink(key string, vs, fs shader.Shader) error {
	outputs := make(map[uint32]shader.StageVariable)
	for _, out := range vs.VertexOutputs() {
		outputs[out.Location] = out
	}
	var problems []string
	for _, in := range fs.FragmentInputs() {
		out, ok := outputs[in.Location]
		if !ok {
			problems = append(problems, fmt.Sprintf("fragment input %q at location %d has no vertex output", in.Name, in.Location))
			continue
		}
		if out.TypeName != in.TypeName {
			problems = append(problems, fmt.Sprintf("location %d: vertex output %q is %s, fragment input %q is %s", in.Location, out.Name, out.TypeName, in.Name, in.TypeName))
		}
	}
	if len(problems) > 0 {
		return &LayoutError{Key: key, Stage: shader.ShaderTypeFragment, Problems: problems}
	}
	return nil
}

// ValidateFragmentOutputs requires exactly one color output at location 0 named target.
//
// Parameters:
//   - key: the pipeline key used in the error
//   - target: the required output name
//   - fs: the fragment shader
//
// Returns:
//   - error: a *LayoutError, or nil
func ValidateFragmentOutputs(key, target string, fs shader.Shader) error {
	outputs := fs.FragmentOutputs()
	var problem string
	switch {
	case len(outputs) != 1:
		problem = fmt.Sprintf("expected exactly one color output, found %d", len(outputs))
	case outputs[0].Location != 0:
		problem = fmt.Sprintf("color output must use location 0, found %d", outputs[0].Location)
	case outputs[0].Name != target:
		problem = fmt.Sprintf("color output must be named %q, found %q", target, outputs[0].Name)
	default:
		return nil
	}
	return &LayoutError{Key: key, Stage: shader.ShaderTypeFragment, Problems: []string{problem}}
}
