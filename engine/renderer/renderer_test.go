package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-frames/common"
	"github.com/Carmen-Shannon/oxy-frames/engine/model"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedVertexSource = `
struct Locals { transform: mat4x4<f32>, };
@group(0) @binding(0) var<uniform> r_locals: Locals;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex_coord: vec2<f32>,
};

@vertex
fn vs_main(@location(0) a_Pos: vec4<f32>, @location(1) a_TexCoord: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = r_locals.transform * a_Pos;
    out.tex_coord = a_TexCoord;
    return out;
}
`

const texturedFragmentSource = `
@group(0) @binding(0) var<uniform> r_locals: mat4x4<f32>;
@group(0) @binding(1) var r_color: texture_2d<f32>;
@group(0) @binding(2) var r_sampler: sampler;

struct FragmentOutput { @location(0) Target0: vec4<f32>, };

@fragment
fn fs_main(@location(0) tex_coord: vec2<f32>) -> FragmentOutput {
    var out: FragmentOutput;
    out.Target0 = textureSample(r_color, r_sampler, tex_coord);
    return out;
}
`

// compiledShader skips the compiler so tests run without a WGSL front end.
type compiledShader struct {
	shader.Shader
}

func (compiledShader) Validate() error { return nil }

// fakeBackend records calls in order and hands out zero GPU handles.
type fakeBackend struct {
	calls      []string
	configured [][2]int
	writes     []bind_group_provider.BufferWrite
	draws      []DrawData
	clear      wgpu.Color
	depth      bool
	beginErr   error
	bindDesc   wgpu.BindGroupLayoutDescriptor
	indexData  []byte
}

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	f.calls = append(f.calls, "configure")
	f.configured = append(f.configured, [2]int{width, height})
	return nil
}
func (f *fakeBackend) SetPresentMode(PresentMode)           {}
func (f *fakeBackend) SurfaceFormat() wgpu.TextureFormat    { return wgpu.TextureFormatBGRA8UnormSrgb }
func (f *fakeBackend) SampleCount() MSAASampleCount         { return MSAA4x }
func (f *fakeBackend) CreateRenderPipeline(p pipeline.Pipeline) error {
	f.calls = append(f.calls, "pipeline")
	return p.Attach(&wgpu.RenderPipeline{}, map[int]*wgpu.BindGroupLayout{0: {}})
}
func (f *fakeBackend) CreateMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, slice model.DrawSlice) error {
	f.indexData = indexData
	var ib *wgpu.Buffer
	if len(indexData) > 0 {
		ib = &wgpu.Buffer{}
	}
	provider.SetMesh(&wgpu.Buffer{}, ib, slice)
	return nil
}
func (f *fakeBackend) CreateTexture(provider bind_group_provider.BindGroupProvider, binding int, _ common.PixelBuffer) error {
	provider.SetTexture(binding, &wgpu.Texture{}, &wgpu.TextureView{})
	return nil
}
func (f *fakeBackend) CreateSampler(provider bind_group_provider.BindGroupProvider, binding int, _ common.SamplerStagingData) error {
	provider.SetSampler(binding, &wgpu.Sampler{})
	return nil
}
func (f *fakeBackend) CreateBindGroup(provider bind_group_provider.BindGroupProvider, _ *wgpu.BindGroupLayout, descriptor wgpu.BindGroupLayoutDescriptor) error {
	f.bindDesc = descriptor
	provider.SetBindGroup(&wgpu.BindGroup{})
	return nil
}
func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}
func (f *fakeBackend) BeginFrame(clear wgpu.Color, depth bool) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.calls = append(f.calls, "begin")
	f.clear, f.depth = clear, depth
	return nil
}
func (f *fakeBackend) Draw(_ pipeline.Pipeline, data DrawData) {
	f.calls = append(f.calls, "draw")
	f.draws = append(f.draws, data)
}
func (f *fakeBackend) EndFrame() error {
	f.calls = append(f.calls, "end")
	return nil
}
func (f *fakeBackend) Present() { f.calls = append(f.calls, "present") }
func (f *fakeBackend) Cleanup() { f.calls = append(f.calls, "cleanup") }
func (f *fakeBackend) Release() {}

type fakeSurface struct{}

func (fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (fakeSurface) Width() int                                 { return 1024 }
func (fakeSurface) Height() int                                { return 768 }

func newTestRenderer(t *testing.T) (*renderer, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	r, err := NewRenderer(fakeSurface{}, withBackend(fb))
	require.NoError(t, err)
	return r.(*renderer), fb
}

func buildTexturedPipeline(t *testing.T, r Renderer, opts ...pipeline.PipelineBuilderOption) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewShader("cube.vert", shader.ShaderTypeVertex, texturedVertexSource)
	require.NoError(t, err)
	fs, err := shader.NewShader("cube.frag", shader.ShaderTypeFragment, texturedFragmentSource)
	require.NoError(t, err)
	p, err := r.BuildPipeline("cube", compiledShader{vs}, compiledShader{fs}, model.TexturedVertex{}.Layout(), opts...)
	require.NoError(t, err)
	return p
}

func TestNewRendererConfiguresWindowSize(t *testing.T) {
	_, fb := newTestRenderer(t)
	assert.Equal(t, [][2]int{{1024, 768}}, fb.configured)
}

func TestResizeIgnoresZeroSize(t *testing.T) {
	r, fb := newTestRenderer(t)
	require.NoError(t, r.Resize(0, 600))
	require.NoError(t, r.Resize(2048, 1536))
	assert.Equal(t, [][2]int{{1024, 768}, {2048, 1536}}, fb.configured)
}

func TestBuildPipelineUsesBackendSampleCount(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := buildTexturedPipeline(t, r, pipeline.WithDepth(true))

	assert.Equal(t, uint32(MSAA4x), p.SampleCount())
	assert.True(t, p.DepthEnabled())
	assert.Same(t, p, r.pipelineCache["cube"])
}

func TestBuildPipelineRejectsMismatchedLayout(t *testing.T) {
	r, fb := newTestRenderer(t)
	vs, err := shader.NewShader("cube.vert", shader.ShaderTypeVertex, texturedVertexSource)
	require.NoError(t, err)
	fs, err := shader.NewShader("cube.frag", shader.ShaderTypeFragment, texturedFragmentSource)
	require.NoError(t, err)

	p, err := r.BuildPipeline("cube", compiledShader{vs}, compiledShader{fs}, model.ColorVertex{}.Layout())
	var le *pipeline.LayoutError
	assert.ErrorAs(t, err, &le)
	assert.Nil(t, p)
	assert.NotContains(t, fb.calls, "pipeline")
	assert.NotContains(t, r.pipelineCache, "cube")
}

func TestBuildPipelineRejectsDuplicateKey(t *testing.T) {
	r, _ := newTestRenderer(t)
	buildTexturedPipeline(t, r)

	vs, _ := shader.NewShader("cube.vert", shader.ShaderTypeVertex, texturedVertexSource)
	fs, _ := shader.NewShader("cube.frag", shader.ShaderTypeFragment, texturedFragmentSource)
	_, err := r.BuildPipeline("cube", compiledShader{vs}, compiledShader{fs}, model.TexturedVertex{}.Layout())
	assert.Error(t, err)
}

func TestCreateVertexBufferDrawSlice(t *testing.T) {
	r, _ := newTestRenderer(t)
	data := make([]byte, 4*24)

	mesh := bind_group_provider.NewBindGroupProvider("quad")
	slice, err := r.CreateVertexBuffer(mesh, data, 4, []uint16{0, 1, 2, 2, 3, 0})
	require.NoError(t, err)
	assert.Equal(t, model.DrawSlice{Count: 6, Indexed: true}, slice)
	assert.Equal(t, slice, mesh.DrawSlice())
	assert.NotNil(t, mesh.IndexBuffer())

	plain := bind_group_provider.NewBindGroupProvider("triangle")
	slice, err = r.CreateVertexBuffer(plain, make([]byte, 3*20), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, model.DrawSlice{Count: 3}, slice)
	assert.Nil(t, plain.IndexBuffer())
}

func TestUploadModelUsesModelIndexData(t *testing.T) {
	r, fb := newTestRenderer(t)
	m, err := model.NewModel([]model.ColorVertex{{}, {}, {}}, model.WithIndices([]uint16{0, 1, 2}))
	require.NoError(t, err)

	mesh := bind_group_provider.NewBindGroupProvider("triangle")
	slice, err := r.UploadModel(mesh, m)
	require.NoError(t, err)
	assert.Equal(t, m.DrawSlice(), slice)
	assert.Equal(t, m.IndexData(), fb.indexData)
	assert.Len(t, fb.indexData, 8)
	assert.NotNil(t, mesh.IndexBuffer())
}

func TestCreateVertexBufferErrors(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := bind_group_provider.NewBindGroupProvider("bad")

	_, err := r.CreateVertexBuffer(p, nil, 0, nil)
	assert.Error(t, err)
	_, err = r.CreateVertexBuffer(p, make([]byte, 50), 3, nil)
	assert.Error(t, err)
	_, err = r.CreateVertexBuffer(p, make([]byte, 60), 3, []uint16{0, 1, 3})
	assert.Error(t, err)
	assert.Nil(t, p.VertexBuffer())
}

func TestCreateTextureRejectsMalformedPixels(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := bind_group_provider.NewBindGroupProvider("tex")

	err := r.CreateTexture(p, 1, common.PixelBuffer{Width: 2, Height: 2, Pixels: make([]byte, 15)})
	assert.Error(t, err)
	require.NoError(t, r.CreateTexture(p, 1, common.PixelBuffer{Width: 2, Height: 2, Pixels: make([]byte, 16)}))
	assert.NotNil(t, p.TextureView(1))
}

func TestCreateSamplerModes(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := bind_group_provider.NewBindGroupProvider("samp")

	require.NoError(t, r.CreateSampler(p, 2, SamplerModeLinear))
	assert.NotNil(t, p.Sampler(2))
	assert.Error(t, r.CreateSampler(p, 3, SamplerMode(42)))
}

func TestCreateBindingsMergesStages(t *testing.T) {
	r, fb := newTestRenderer(t)
	p := buildTexturedPipeline(t, r)
	bindings := bind_group_provider.NewBindGroupProvider("cube bindings")
	require.NoError(t, r.CreateTexture(bindings, 1, common.PixelBuffer{Width: 1, Height: 1, Pixels: make([]byte, 4)}))
	require.NoError(t, r.CreateSampler(bindings, 2, SamplerModeLinear))

	require.NoError(t, r.CreateBindings(bindings, p))

	require.Len(t, fb.bindDesc.Entries, 3)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, fb.bindDesc.Entries[0].Visibility)
	assert.Equal(t, uint64(64), fb.bindDesc.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageFragment, fb.bindDesc.Entries[1].Visibility)
	assert.NotNil(t, bindings.BindGroup())
}

func TestCreateBindingsNamesMissingResources(t *testing.T) {
	r, fb := newTestRenderer(t)
	p := buildTexturedPipeline(t, r)
	bindings := bind_group_provider.NewBindGroupProvider("cube bindings")
	require.NoError(t, r.CreateSampler(bindings, 2, SamplerModeLinear))

	err := r.CreateBindings(bindings, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `texture "r_color" (binding 1)`)
	assert.NotContains(t, err.Error(), "r_sampler")
	assert.Empty(t, fb.bindDesc.Entries)
	assert.Nil(t, bindings.BindGroup())
}

func TestWriteUniformOverwritesWholeBuffer(t *testing.T) {
	r, fb := newTestRenderer(t)
	p := bind_group_provider.NewBindGroupProvider("locals")
	data := make([]byte, 64)

	r.WriteUniform(p, 0, data)
	require.Len(t, fb.writes, 1)
	assert.Equal(t, uint64(0), fb.writes[0].Offset)
	assert.Len(t, fb.writes[0].Data, 64)
}

func TestFrameSequence(t *testing.T) {
	r, fb := newTestRenderer(t)
	p := buildTexturedPipeline(t, r, pipeline.WithDepth(true))
	mesh := bind_group_provider.NewBindGroupProvider("cube")
	_, err := r.CreateVertexBuffer(mesh, make([]byte, 3*24), 3, nil)
	require.NoError(t, err)
	fb.calls = nil

	require.NoError(t, r.BeginFrame([4]float64{0.02, 0.02, 0.02, 1}, true))
	require.NoError(t, r.Draw(p, DrawData{Mesh: mesh, Depth: true}))
	require.NoError(t, r.EndFrame())
	r.Present()
	r.Cleanup()

	assert.Equal(t, []string{"begin", "draw", "end", "present", "cleanup"}, fb.calls)
	assert.Equal(t, wgpu.Color{R: 0.02, G: 0.02, B: 0.02, A: 1}, fb.clear)
	assert.True(t, fb.depth)
}

func TestFrameOrderingErrors(t *testing.T) {
	r, fb := newTestRenderer(t)
	p := buildTexturedPipeline(t, r)
	mesh := bind_group_provider.NewBindGroupProvider("cube")
	_, err := r.CreateVertexBuffer(mesh, make([]byte, 3*24), 3, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Draw(p, DrawData{Mesh: mesh}), ErrFrameNotStarted)
	assert.ErrorIs(t, r.EndFrame(), ErrFrameNotStarted)

	require.NoError(t, r.BeginFrame([4]float64{}, false))
	assert.ErrorIs(t, r.BeginFrame([4]float64{}, false), ErrFrameInProgress)
	assert.Error(t, r.Draw(p, DrawData{Mesh: mesh, Depth: true}), "depth mismatch")
	assert.Error(t, r.Draw(p, DrawData{}), "missing mesh")
	r.Cleanup()

	fb.beginErr = errors.New("surface lost")
	assert.Error(t, r.BeginFrame([4]float64{}, false))
	fb.calls = nil
	r.Present()
	assert.Empty(t, fb.calls)
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 2, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	require.Len(t, merged, 2)
	require.Len(t, merged[0].Entries, 2)
	assert.Equal(t, uint32(0), merged[0].Entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[0].Entries[0].Visibility)
	assert.Equal(t, uint32(2), merged[0].Entries[1].Binding)
	assert.Len(t, merged[1].Entries, 1)
}

func TestSurfaceAlphaModeFallback(t *testing.T) {
	assert.Equal(t, wgpu.CompositeAlphaModeAuto, surfaceAlphaMode(nil))
	assert.Equal(t, wgpu.CompositeAlphaModeOpaque, surfaceAlphaMode([]wgpu.CompositeAlphaMode{
		wgpu.CompositeAlphaModeOpaque,
		wgpu.CompositeAlphaModePremultiplied,
	}))
	assert.NotPanics(t, func() { releaseLayouts(nil) })
}
