package shader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

// ShaderType identifies the pipeline stage a shader supplies.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage, declaring an @vertex entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage, declaring an @fragment entry point.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// ErrNoEntryPoint is returned when the source has no entry point for the requested stage.
var ErrNoEntryPoint = errors.New("shader: no entry point for stage")

// shader is the implementation of the Shader interface.
// Everything is reflected once at construction and is read-only afterwards.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexInputs               []VertexInput
	vertexOutputs              []StageVariable
	fragmentInputs             []StageVariable
	fragmentOutputs            []FragmentOutput
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a loaded WGSL stage together with the interface reflected from its source:
// the entry point, the vertex inputs or fragment outputs, and its resource bindings.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and error reports.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the stage of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader's stage.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// VertexInputs returns the @location inputs of a vertex entry point, sorted by location.
	// Fragment shaders return nil.
	//
	// Returns:
	//   - []VertexInput: the reflected vertex inputs
	VertexInputs() []VertexInput

	// VertexOutputs returns the @location values a vertex entry point passes to the fragment stage,
	// sorted by location. Fragment shaders return nil.
	//
	// Returns:
	//   - []StageVariable: the reflected inter-stage outputs
	VertexOutputs() []StageVariable

	// FragmentInputs returns the @location values a fragment entry point reads from the vertex stage,
	// sorted by location. Vertex shaders return nil.
	//
	// Returns:
	//   - []StageVariable: the reflected inter-stage inputs
	FragmentInputs() []StageVariable

	// FragmentOutputs returns the color outputs of a fragment entry point, sorted by location.
	// Vertex shaders return nil.
	//
	// Returns:
	//   - []FragmentOutput: the reflected fragment outputs
	FragmentOutputs() []FragmentOutput

	// BindGroupLayoutDescriptor retrieves the layout descriptor for one bind group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all reflected bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the declared variable name for a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not declared
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index of a declared variable.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// Module returns the shader module descriptor used to create the GPU shader module.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor holding the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// Validate runs the WGSL front end over the source and reports parse and type errors.
	//
	// Returns:
	//   - error: the compiler diagnostic, or nil when the source is valid
	Validate() error
}

var _ Shader = &shader{}

// NewShader reflects a WGSL source for the given stage.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the source supplies
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the reflected shader
//   - error: ErrNoEntryPoint when the stage has no entry point, or an error for empty source
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("shader %q: empty source", key)
	}
	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
		module: &wgpu.ShaderModuleDescriptor{
			Label:          key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
		},
	}

	cleaned := stripComments(source)
	s.entryPoint = parseEntryPoint(cleaned, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %q: %w %s", key, ErrNoEntryPoint, shaderType)
	}

	visibility := wgpu.ShaderStageVertex
	switch shaderType {
	case ShaderTypeVertex:
		s.vertexInputs = parseVertexInputs(cleaned, s.entryPoint)
		s.vertexOutputs = parseVertexOutputs(cleaned, s.entryPoint)
	case ShaderTypeFragment:
		s.fragmentInputs = parseFragmentInputs(cleaned, s.entryPoint)
		s.fragmentOutputs = parseFragmentOutputs(cleaned, s.entryPoint)
		visibility = wgpu.ShaderStageFragment
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(cleaned, visibility)
	return s, nil
}

// NewShaderFromPath reads a WGSL file and reflects it like NewShader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the source supplies
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the reflected shader
//   - error: an error if the file cannot be read or reflected
func NewShaderFromPath(key string, shaderType ShaderType, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %q: read source: %w", key, err)
	}
	return NewShader(key, shaderType, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexInputs() []VertexInput {
	return s.vertexInputs
}

func (s *shader) VertexOutputs() []StageVariable {
	return s.vertexOutputs
}

func (s *shader) FragmentInputs() []StageVariable {
	return s.fragmentInputs
}

func (s *shader) FragmentOutputs() []FragmentOutput {
	return s.fragmentOutputs
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Validate() error {
	if _, err := naga.Compile(s.source); err != nil {
		return err
	}
	return nil
}
