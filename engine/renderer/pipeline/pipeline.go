package pipeline

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-frames/engine/model"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultColorTarget is the name the fragment stage's single color output must carry.
const DefaultColorTarget = "Target0"

// ErrAlreadyBuilt is returned when GPU objects are attached to a pipeline a second time.
var ErrAlreadyBuilt = errors.New("pipeline: GPU objects already attached")

// pipeline is the implementation of the Pipeline interface.
// Configuration is fixed by the builder options; the GPU objects are attached exactly once.
type pipeline struct {
	pipelineKey string

	vertexShader, fragmentShader shader.Shader
	vertexLayout                 model.VertexLayout
	colorTarget                  string

	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts map[int]*wgpu.BindGroupLayout

	colorFormat  wgpu.TextureFormat
	depthEnabled bool
	cullMode     wgpu.CullMode
	topology     wgpu.PrimitiveTopology
	frontFace    wgpu.FrontFace
	writeMask    wgpu.ColorWriteMask
	blendState   *wgpu.BlendState
	sampleCount  uint32
}

// Pipeline is the immutable binding of a vertex layout, two shader stages and the output
// target formats. Once its GPU objects are attached it never changes for the rest of the run.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for labels and error reports.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader for the given stage.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader for that stage, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// VertexLayout returns the vertex record layout the pipeline consumes.
	//
	// Returns:
	//   - model.VertexLayout: the declared layout
	VertexLayout() model.VertexLayout

	// ColorTarget returns the name the fragment color output must carry.
	//
	// Returns:
	//   - string: the color target name, DefaultColorTarget unless overridden
	ColorTarget() string

	// ColorFormat returns the texture format of the color target.
	// wgpu.TextureFormatUndefined means the surface format chosen by the renderer.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color target format
	ColorFormat() wgpu.TextureFormat

	// DepthEnabled reports whether the pipeline tests and writes depth.
	//
	// Returns:
	//   - bool: true for pipelines that render with a depth target
	DepthEnabled() bool

	// DepthStencilState returns the depth policy for depth-enabled pipelines:
	// Depth24Plus, less-or-equal comparison, depth writes on.
	//
	// Returns:
	//   - *wgpu.DepthStencilState: the depth state, or nil when depth is disabled
	DepthStencilState() *wgpu.DepthStencilState

	// PrimitiveState returns the topology, winding and cull configuration.
	//
	// Returns:
	//   - wgpu.PrimitiveState: the primitive state
	PrimitiveState() wgpu.PrimitiveState

	// WriteMask returns the color write mask.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the mask applied to the color target
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state, or nil when blending is disabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// SampleCount returns the MSAA sample count of the color and depth targets.
	//
	// Returns:
	//   - uint32: 1 when multisampling is off
	SampleCount() uint32

	// RenderPipeline returns the GPU pipeline, or nil until Attach has been called.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU render pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroupLayout returns the GPU bind group layout for a group index.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, or nil when the shaders declare no such group
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// Attach stores the GPU objects created for this pipeline. It may only succeed once.
	//
	// Parameters:
	//   - rp: the created render pipeline
	//   - layouts: the created bind group layouts keyed by group index
	//
	// Returns:
	//   - error: ErrAlreadyBuilt if objects were attached before
	Attach(rp *wgpu.RenderPipeline, layouts map[int]*wgpu.BindGroupLayout) error

	// Release frees the GPU objects owned by the pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates the configuration half of a pipeline. The renderer validates it and attaches GPU objects.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: PipelineBuilderOption functions configuring shaders, layout and render state
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		colorTarget: DefaultColorTarget,
		cullMode:    wgpu.CullModeNone,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		writeMask:   wgpu.ColorWriteMaskAll,
		sampleCount: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) VertexLayout() model.VertexLayout {
	return p.vertexLayout
}

func (p *pipeline) ColorTarget() string {
	return p.colorTarget
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) DepthEnabled() bool {
	return p.depthEnabled
}

func (p *pipeline) DepthStencilState() *wgpu.DepthStencilState {
	if !p.depthEnabled {
		return nil
	}
	return &wgpu.DepthStencilState{
		Format:            wgpu.TextureFormatDepth24Plus,
		DepthWriteEnabled: true,
		DepthCompare:      wgpu.CompareFunctionLessEqual,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func (p *pipeline) PrimitiveState() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  p.topology,
		FrontFace: p.frontFace,
		CullMode:  p.cullMode,
	}
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	return p.bindGroupLayouts[group]
}

func (p *pipeline) Attach(rp *wgpu.RenderPipeline, layouts map[int]*wgpu.BindGroupLayout) error {
	if p.renderPipeline != nil {
		return ErrAlreadyBuilt
	}
	p.renderPipeline = rp
	p.bindGroupLayouts = layouts
	return nil
}

func (p *pipeline) Release() {
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
