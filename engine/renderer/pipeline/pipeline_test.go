package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-frames/engine/model"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(@location(0) a_Pos: vec2<f32>, @location(1) a_Color: vec3<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(a_Pos, 0.0, 1.0);
    out.color = a_Color;
    return out;
}
`

const fragmentSource = `
struct FragmentOutput {
    @location(0) Target0: vec4<f32>,
};

@fragment
fn fs_main(@location(0) color: vec3<f32>) -> FragmentOutput {
    var out: FragmentOutput;
    out.Target0 = vec4<f32>(color, 1.0);
    return out;
}
`

// stubShader wraps a reflected shader with a controllable compile result.
type stubShader struct {
	shader.Shader
	compileErr error
}

func (s stubShader) Validate() error {
	return s.compileErr
}

func mustShader(t *testing.T, key string, st shader.ShaderType, src string) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(key, st, src)
	require.NoError(t, err)
	return stubShader{Shader: s}
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("triangle")

	assert.Equal(t, DefaultColorTarget, p.ColorTarget())
	assert.False(t, p.DepthEnabled())
	assert.Nil(t, p.DepthStencilState())
	assert.Equal(t, uint32(1), p.SampleCount())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.PrimitiveState().Topology)
	assert.Equal(t, wgpu.CullModeNone, p.PrimitiveState().CullMode)
	assert.Nil(t, p.BlendState())
	assert.Nil(t, p.RenderPipeline())
}

func TestDepthPolicy(t *testing.T) {
	p := NewPipeline("cube", WithDepth(true), WithSampleCount(0))

	ds := p.DepthStencilState()
	require.NotNil(t, ds)
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, ds.Format)
	assert.Equal(t, wgpu.CompareFunctionLessEqual, ds.DepthCompare)
	assert.True(t, ds.DepthWriteEnabled)
	assert.Equal(t, uint32(1), p.SampleCount())
}

func TestRasterOptions(t *testing.T) {
	p := NewPipeline("lines",
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithFrontFace(wgpu.FrontFaceCW),
		WithCullMode(wgpu.CullModeBack),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithAlphaBlend(),
	)

	ps := p.PrimitiveState()
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, ps.Topology)
	assert.Equal(t, wgpu.FrontFaceCW, ps.FrontFace)
	assert.Equal(t, wgpu.CullModeBack, ps.CullMode)
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	require.NotNil(t, p.BlendState())
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, p.BlendState().Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, p.BlendState().Alpha.DstFactor)
}

func TestAttachOnlyOnce(t *testing.T) {
	p := NewPipeline("once")
	require.NoError(t, p.Attach(&wgpu.RenderPipeline{}, nil))
	assert.ErrorIs(t, p.Attach(&wgpu.RenderPipeline{}, nil), ErrAlreadyBuilt)
}

func TestValidateAcceptsMatchingLayout(t *testing.T) {
	p := NewPipeline("triangle",
		WithVertexShader(mustShader(t, "triangle.vert", shader.ShaderTypeVertex, vertexSource)),
		WithFragmentShader(mustShader(t, "triangle.frag", shader.ShaderTypeFragment, fragmentSource)),
		WithVertexLayout(model.ColorVertex{}.Layout()),
	)
	assert.NoError(t, Validate(p))
}

func TestValidateReportsCompileError(t *testing.T) {
	vs, err := shader.NewShader("broken.vert", shader.ShaderTypeVertex, vertexSource)
	require.NoError(t, err)
	cause := errors.New("expected ';'")

	p := NewPipeline("broken",
		WithVertexShader(stubShader{Shader: vs, compileErr: cause}),
		WithFragmentShader(mustShader(t, "triangle.frag", shader.ShaderTypeFragment, fragmentSource)),
		WithVertexLayout(model.ColorVertex{}.Layout()),
	)

	err = Validate(p)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "broken.vert", ce.Key)
	assert.Equal(t, shader.ShaderTypeVertex, ce.Stage)
	assert.Contains(t, ce.Diagnostics, "expected ';'")
	assert.ErrorIs(t, err, cause)
}

func TestValidateRequiresBothStages(t *testing.T) {
	p := NewPipeline("half", WithVertexShader(mustShader(t, "v", shader.ShaderTypeVertex, vertexSource)))
	assert.Error(t, Validate(p))
}

func TestValidateVertexLayoutMismatch(t *testing.T) {
	vs := mustShader(t, "triangle.vert", shader.ShaderTypeVertex, vertexSource)

	tests := []struct {
		name   string
		layout model.VertexLayout
	}{
		{"textured layout", model.TexturedVertex{}.Layout()},
		{"swapped order", mustLayout(t,
			model.VertexAttribute{Name: "a_Color", Location: 0, Format: wgpu.VertexFormatFloat32x3},
			model.VertexAttribute{Name: "a_Pos", Location: 1, Format: wgpu.VertexFormatFloat32x2},
		)},
		{"missing attribute", mustLayout(t,
			model.VertexAttribute{Name: "a_Pos", Location: 0, Format: wgpu.VertexFormatFloat32x2},
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVertexLayout("triangle", tt.layout, vs)
			var le *LayoutError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, shader.ShaderTypeVertex, le.Stage)
			assert.NotEmpty(t, le.Problems)
		})
	}
}

func TestValidateStageLink(t *testing.T) {
	vs := mustShader(t, "triangle.vert", shader.ShaderTypeVertex, vertexSource)

	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"matching", fragmentSource, false},
		{"no inputs", `@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`, false},
		{"alias type", `@fragment fn fs_main(@location(0) color: vec3f) -> @location(0) vec4f { return vec4f(color, 1.0); }`, false},
		{"missing location", `@fragment fn fs_main(@location(3) uv: vec2<f32>) -> @location(0) vec4<f32> { return vec4<f32>(uv, 0.0, 1.0); }`, true},
		{"type mismatch", `@fragment fn fs_main(@location(0) color: vec2<f32>) -> @location(0) vec4<f32> { return vec4<f32>(color, 0.0, 1.0); }`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mustShader(t, "frag", shader.ShaderTypeFragment, tt.source)
			err := ValidateStageLink("p", vs, fs)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var le *LayoutError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, shader.ShaderTypeFragment, le.Stage)
			assert.NotEmpty(t, le.Problems)
		})
	}
}

func TestValidateRejectsUnlinkedStages(t *testing.T) {
	fs := mustShader(t, "uv.frag", shader.ShaderTypeFragment, `
struct FragmentOutput { @location(0) Target0: vec4<f32>, };
@fragment fn fs_main(@location(3) uv: vec2<f32>) -> FragmentOutput { var out: FragmentOutput; return out; }`)
	p := NewPipeline("unlinked",
		WithVertexShader(mustShader(t, "triangle.vert", shader.ShaderTypeVertex, vertexSource)),
		WithFragmentShader(fs),
		WithVertexLayout(model.ColorVertex{}.Layout()),
	)

	var le *LayoutError
	require.ErrorAs(t, Validate(p), &le)
	assert.Equal(t, "unlinked", le.Key)
}

func TestValidateFragmentOutputs(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"named target", fragmentSource, false},
		{"bare location", `@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`, true},
		{"wrong name", `
struct Out { @location(0) Color: vec4<f32>, };
@fragment fn fs_main() -> Out { var o: Out; return o; }`, true},
		{"two outputs", `
struct Out { @location(0) Target0: vec4<f32>, @location(1) Extra: vec4<f32>, };
@fragment fn fs_main() -> Out { var o: Out; return o; }`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mustShader(t, "frag", shader.ShaderTypeFragment, tt.source)
			err := ValidateFragmentOutputs("p", DefaultColorTarget, fs)
			if tt.wantErr {
				var le *LayoutError
				assert.ErrorAs(t, err, &le)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func mustLayout(t *testing.T, attrs ...model.VertexAttribute) model.VertexLayout {
	t.Helper()
	l, err := model.NewVertexLayout(attrs...)
	require.NoError(t, err)
	return l
}
