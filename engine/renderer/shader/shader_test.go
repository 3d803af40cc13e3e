package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleVertexSource = `
// passes color through
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(@location(1) a_Color: vec3<f32>, @location(0) a_Pos: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(a_Pos, 0.0, 1.0);
    out.color = a_Color;
    return out;
}
`

const texturedSource = `
struct Locals {
    transform: mat4x4<f32>,
};
@group(0) @binding(0) var<uniform> r_locals: Locals;
@group(0) @binding(1) var r_color: texture_2d<f32>;
@group(0) @binding(2) var r_sampler: sampler;

struct VertexInput {
    @location(0) a_Pos: vec4<f32>,
    @location(1) a_TexCoord: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex_coord: vec2<f32>,
};

/* block /* nested */ comment with @vertex fn decoy() */
@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = r_locals.transform * in.a_Pos;
    out.tex_coord = in.a_TexCoord;
    return out;
}

struct FragmentOutput {
    @location(0) Target0: vec4<f32>,
};

@fragment
fn fs_main(in: VertexOutput) -> FragmentOutput {
    var out: FragmentOutput;
    out.Target0 = textureSample(r_color, r_sampler, in.tex_coord);
    return out;
}
`

func TestNewShaderReflectsParameterInputs(t *testing.T) {
	s, err := NewShader("triangle.vert", ShaderTypeVertex, triangleVertexSource)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, []VertexInput{
		{Name: "a_Pos", Location: 0, TypeName: "vec2<f32>", Format: wgpu.VertexFormatFloat32x2},
		{Name: "a_Color", Location: 1, TypeName: "vec3<f32>", Format: wgpu.VertexFormatFloat32x3},
	}, s.VertexInputs())
	assert.Nil(t, s.FragmentOutputs())
	assert.Empty(t, s.BindGroupLayoutDescriptors())
}

func TestNewShaderExpandsStructInputs(t *testing.T) {
	s, err := NewShader("cube.vert", ShaderTypeVertex, texturedSource)
	require.NoError(t, err)

	inputs := s.VertexInputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, "a_Pos", inputs[0].Name)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, inputs[0].Format)
	assert.Equal(t, "a_TexCoord", inputs[1].Name)
	assert.Equal(t, uint32(1), inputs[1].Location)
}

func TestNewShaderReflectsFragmentOutputs(t *testing.T) {
	s, err := NewShader("cube.frag", ShaderTypeFragment, texturedSource)
	require.NoError(t, err)

	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Equal(t, []FragmentOutput{{Name: "Target0", Location: 0, TypeName: "vec4<f32>"}}, s.FragmentOutputs())
	assert.Nil(t, s.VertexInputs())
}

func TestStageInterfaceReflection(t *testing.T) {
	vs, err := NewShader("cube.vert", ShaderTypeVertex, texturedSource)
	require.NoError(t, err)
	fs, err := NewShader("cube.frag", ShaderTypeFragment, texturedSource)
	require.NoError(t, err)

	want := []StageVariable{{Name: "tex_coord", Location: 0, TypeName: "vec2<f32>"}}
	assert.Equal(t, want, vs.VertexOutputs())
	assert.Equal(t, want, fs.FragmentInputs())
	assert.Nil(t, vs.FragmentInputs())
	assert.Nil(t, fs.VertexOutputs())
}

func TestFragmentInputsExpandAliases(t *testing.T) {
	src := `@fragment fn fs_main(@builtin(position) p: vec4f, @location(2) uv: vec2f, @location(1) tint: vec3< f32 >) -> @location(0) vec4f { return vec4f(1.0); }`
	s, err := NewShader("alias", ShaderTypeFragment, src)
	require.NoError(t, err)

	assert.Equal(t, []StageVariable{
		{Name: "tint", Location: 1, TypeName: "vec3<f32>"},
		{Name: "uv", Location: 2, TypeName: "vec2<f32>"},
	}, s.FragmentInputs())
}

func TestBareLocationReturnHasNoName(t *testing.T) {
	src := `@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`
	s, err := NewShader("bare", ShaderTypeFragment, src)
	require.NoError(t, err)

	assert.Equal(t, []FragmentOutput{{Location: 0, TypeName: "vec4<f32>"}}, s.FragmentOutputs())
}

func TestBindGroupReflection(t *testing.T) {
	s, err := NewShader("cube.frag", ShaderTypeFragment, texturedSource)
	require.NoError(t, err)

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 3)

	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(64), desc.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageFragment, desc.Entries[0].Visibility)

	assert.Equal(t, wgpu.TextureSampleTypeFloat, desc.Entries[1].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, desc.Entries[1].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, desc.Entries[2].Sampler.Type)

	assert.Equal(t, "r_color", s.BindGroupVarName(0, 1))
	binding, ok := s.BindGroupFromVarName(0, "r_sampler")
	assert.True(t, ok)
	assert.Equal(t, 2, binding)
	_, ok = s.BindGroupFromVarName(3, "r_sampler")
	assert.False(t, ok)
}

func TestNewShaderErrors(t *testing.T) {
	_, err := NewShader("empty", ShaderTypeVertex, "  \n")
	assert.Error(t, err)

	_, err = NewShader("frag-only", ShaderTypeVertex, `@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }`)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

func TestNewShaderFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triangle.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(triangleVertexSource), 0o644))

	s, err := NewShaderFromPath("triangle", ShaderTypeVertex, path)
	require.NoError(t, err)
	assert.Equal(t, "triangle", s.Module().Label)
	assert.Equal(t, triangleVertexSource, s.Module().WGSLDescriptor.Code)

	_, err = NewShaderFromPath("missing", ShaderTypeVertex, filepath.Join(t.TempDir(), "nope.wgsl"))
	assert.Error(t, err)
}

func TestStripComments(t *testing.T) {
	got := stripComments("a // line\nb /* x /* y */ z */ c")
	assert.Equal(t, "a \nb  c", got)
}

func TestComputeStructSizesNested(t *testing.T) {
	structs := parseStructBlocks(`
struct Outer { inner: Inner, scale: f32, }
struct Inner { v: vec3<f32>, }
struct Lights { items: array<Inner, 4>, }
`)
	sizes := computeStructSizes(structs)
	assert.Equal(t, uint64(16), sizes["Inner"].size)
	assert.Equal(t, uint64(32), sizes["Outer"].size)
	assert.Equal(t, uint64(64), sizes["Lights"].size)
}
