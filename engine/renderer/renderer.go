package renderer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-frames/common"
	"github.com/Carmen-Shannon/oxy-frames/engine/model"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrFrameNotStarted is returned by Draw and EndFrame outside a BeginFrame/EndFrame pair.
	ErrFrameNotStarted = errors.New("renderer: no frame in progress")

	// ErrFrameInProgress is returned by BeginFrame while the previous frame has not been presented.
	ErrFrameInProgress = errors.New("renderer: previous frame not yet presented")
)

// Surface is what the renderer needs from the window it presents to.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

type frameState int

const (
	frameIdle frameState = iota
	frameRecording
	frameSubmitted
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	backend       RendererBackend
	frame         frameState

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
}

// Renderer is the GPU resource manager and the device side of the frame loop. It uploads mesh,
// texture, sampler and uniform resources into BindGroupProviders, builds pipelines, and records
// the clear, draw, flush and present steps of a frame.
type Renderer interface {
	// SurfaceFormat returns the swapchain color format pipelines render into by default.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// Resize reconfigures the surface and its attachments for a new physical size.
	// Zero sizes (minimized windows) are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the attachments could not be recreated
	Resize(width, height int) error

	// BuildPipeline validates and creates a render pipeline. The shader stages are compiled, the
	// vertex layout is checked against the vertex inputs and the fragment color output against the
	// color target. Either everything succeeds or no pipeline is returned.
	//
	// Parameters:
	//   - key: the unique key for the pipeline
	//   - vertex: the vertex stage
	//   - fragment: the fragment stage
	//   - layout: the vertex record layout
	//   - opts: additional render state options
	//
	// Returns:
	//   - pipeline.Pipeline: the immutable pipeline
	//   - error: a *pipeline.CompileError, a *pipeline.LayoutError or a device error
	BuildPipeline(key string, vertex, fragment shader.Shader, layout model.VertexLayout, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error)

	// CreateVertexBuffer uploads vertex data and optional 16-bit indices into the provider.
	//
	// Parameters:
	//   - provider: the provider receiving the buffers
	//   - vertexData: the marshalled vertices
	//   - vertexCount: the number of vertices in vertexData
	//   - indices: optional indices, each below vertexCount
	//
	// Returns:
	//   - model.DrawSlice: the vertex count, or the index count with Indexed set
	//   - error: an error for empty or out of range input, or a device error
	CreateVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int, indices []uint16) (model.DrawSlice, error)

	// UploadModel uploads a Model's vertices and indices into the provider.
	//
	// Parameters:
	//   - provider: the provider receiving the buffers
	//   - m: the model to upload
	//
	// Returns:
	//   - model.DrawSlice: the model's draw slice
	//   - error: an error if the upload fails
	UploadModel(provider bind_group_provider.BindGroupProvider, m model.Model) (model.DrawSlice, error)

	// CreateTexture uploads an immutable single mip RGBA8 texture at a binding of the provider.
	//
	// Parameters:
	//   - provider: the provider receiving the texture
	//   - binding: the binding index the texture is sampled from
	//   - pixels: tightly packed RGBA pixels
	//
	// Returns:
	//   - error: an error if the pixel buffer is malformed or the device rejects it
	CreateTexture(provider bind_group_provider.BindGroupProvider, binding int, pixels common.PixelBuffer) error

	// CreateSampler creates a sampler at a binding of the provider.
	//
	// Parameters:
	//   - provider: the provider receiving the sampler
	//   - binding: the binding index
	//   - mode: the sampler configuration
	//
	// Returns:
	//   - error: an error for unknown modes or device failures
	CreateSampler(provider bind_group_provider.BindGroupProvider, binding int, mode SamplerMode) error

	// CreateBindings creates the group 0 bind group the pipeline's shaders declare. Uniform buffers
	// are allocated at the size reflected from the shader; textures and samplers must already be on the provider.
	//
	// Parameters:
	//   - provider: the provider holding the resources
	//   - p: a pipeline returned by BuildPipeline
	//
	// Returns:
	//   - error: an error if a resource is missing or the device rejects the bind group
	CreateBindings(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline) error

	// WriteUniform overwrites the whole uniform buffer at a binding.
	//
	// Parameters:
	//   - provider: the provider holding the buffer
	//   - binding: the binding index
	//   - data: the new contents
	WriteUniform(provider bind_group_provider.BindGroupProvider, binding int, data []byte)

	// WriteBuffers writes staged data into provider buffers.
	//
	// Parameters:
	//   - writes: the writes to queue
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture, clears the color target and, when depth is set,
	// clears the depth target to 1.0.
	//
	// Parameters:
	//   - clear: the RGBA clear color
	//   - depth: whether the depth target is bound for this frame
	//
	// Returns:
	//   - error: ErrFrameInProgress, or an error if the surface texture cannot be acquired
	BeginFrame(clear [4]float64, depth bool) error

	// Draw encodes one draw call with the pipeline and draw data.
	//
	// Parameters:
	//   - p: the pipeline
	//   - data: the draw data
	//
	// Returns:
	//   - error: ErrFrameNotStarted, or an error for draw data that does not fit the pipeline
	Draw(p pipeline.Pipeline, data DrawData) error

	// EndFrame ends the render pass and flushes the command buffer to the device.
	//
	// Returns:
	//   - error: ErrFrameNotStarted, or a submission error
	EndFrame() error

	// Present presents the flushed frame. It blocks as the present mode dictates.
	Present()

	// Cleanup reclaims transient per-frame state. It is safe to call after a failed frame.
	Cleanup()

	// Release destroys every pipeline and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the wgpu device bound to the window surface and configures the surface at the
// window's current size.
//
// Parameters:
//   - surface: the window to present to
//   - options: RendererBuilderOption functions configuring present mode, MSAA and adapter selection
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no adapter or device could be acquired
func NewRenderer(surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		presentMode:   PresentModeVSync,
		msaa:          MSAAOff,
	}
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa)
		if err != nil {
			return nil, err
		}
		r.backend = b
	}
	r.backend.SetPresentMode(r.presentMode)

	if err := r.backend.ConfigureSurface(surface.Width(), surface.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	common.Logger().Debug("surface resized", "width", width, "height", height)
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) BuildPipeline(key string, vertex, fragment shader.Shader, layout model.VertexLayout, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	all := make([]pipeline.PipelineBuilderOption, 0, len(opts)+4)
	all = append(all, opts...)
	all = append(all,
		pipeline.WithVertexShader(vertex),
		pipeline.WithFragmentShader(fragment),
		pipeline.WithVertexLayout(layout),
		pipeline.WithSampleCount(uint32(r.backend.SampleCount())),
	)
	p := pipeline.NewPipeline(key, all...)

	if err := pipeline.Validate(p); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pipelineCache[key]; exists {
		return nil, fmt.Errorf("renderer: pipeline %q already built", key)
	}
	if err := r.backend.CreateRenderPipeline(p); err != nil {
		return nil, fmt.Errorf("renderer: create pipeline %q: %w", key, err)
	}
	r.pipelineCache[key] = p
	common.Logger().Info("pipeline built", "key", key, "depth", p.DepthEnabled(), "samples", p.SampleCount())
	return p, nil
}

func (r *renderer) CreateVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int, indices []uint16) (model.DrawSlice, error) {
	if vertexCount <= 0 || len(vertexData) == 0 {
		return model.DrawSlice{}, fmt.Errorf("renderer: %s: empty vertex data", provider.Label())
	}
	if len(vertexData)%vertexCount != 0 {
		return model.DrawSlice{}, fmt.Errorf("renderer: %s: %d bytes is not a whole number of %d vertices", provider.Label(), len(vertexData), vertexCount)
	}

	slice := model.DrawSlice{Count: uint32(vertexCount)}
	var indexData []byte
	if len(indices) > 0 {
		for i, idx := range indices {
			if int(idx) >= vertexCount {
				return model.DrawSlice{}, fmt.Errorf("renderer: %s: index %d at position %d out of range for %d vertices", provider.Label(), idx, i, vertexCount)
			}
		}
		slice = model.DrawSlice{Count: uint32(len(indices)), Indexed: true}
		indexData = model.MarshalIndices(indices)
	}
	return r.uploadMesh(provider, vertexData, indexData, slice)
}

// UploadModel skips index validation: a Model's indices were checked when it was built.
func (r *renderer) UploadModel(provider bind_group_provider.BindGroupProvider, m model.Model) (model.DrawSlice, error) {
	return r.uploadMesh(provider, m.VertexData(), m.IndexData(), m.DrawSlice())
}

func (r *renderer) uploadMesh(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, slice model.DrawSlice) (model.DrawSlice, error) {
	if err := r.backend.CreateMeshBuffers(provider, vertexData, indexData, slice); err != nil {
		return model.DrawSlice{}, fmt.Errorf("renderer: %s: create mesh buffers: %w", provider.Label(), err)
	}
	common.Logger().Debug("mesh uploaded", "label", provider.Label(), "bytes", len(vertexData), "count", slice.Count, "indexed", slice.Indexed)
	return slice, nil
}

func (r *renderer) CreateTexture(provider bind_group_provider.BindGroupProvider, binding int, pixels common.PixelBuffer) error {
	if !pixels.Valid() {
		return fmt.Errorf("renderer: %s: pixel buffer of %d bytes does not match %dx%d RGBA", provider.Label(), len(pixels.Pixels), pixels.Width, pixels.Height)
	}
	if err := r.backend.CreateTexture(provider, binding, pixels); err != nil {
		return fmt.Errorf("renderer: %s: create texture: %w", provider.Label(), err)
	}
	return nil
}

func (r *renderer) CreateSampler(provider bind_group_provider.BindGroupProvider, binding int, mode SamplerMode) error {
	var data common.SamplerStagingData
	switch mode {
	case SamplerModeLinear:
		data = common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
			MagFilter:    wgpu.FilterModeLinear,
			MinFilter:    wgpu.FilterModeLinear,
		}
	default:
		return fmt.Errorf("renderer: unsupported sampler mode %d", mode)
	}
	if err := r.backend.CreateSampler(provider, binding, data); err != nil {
		return fmt.Errorf("renderer: %s: create sampler: %w", provider.Label(), err)
	}
	return nil
}

func (r *renderer) CreateBindings(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline) error {
	merged := mergeBindGroupLayouts(
		p.Shader(shader.ShaderTypeVertex).BindGroupLayoutDescriptors(),
		p.Shader(shader.ShaderTypeFragment).BindGroupLayoutDescriptors(),
	)
	descriptor := merged[0]
	if len(descriptor.Entries) == 0 {
		return nil
	}
	layout := p.BindGroupLayout(0)
	if layout == nil {
		return fmt.Errorf("renderer: pipeline %q has no GPU bind group layout, build it with BuildPipeline", p.PipelineKey())
	}
	if err := checkBindingResources(provider, p, descriptor); err != nil {
		return err
	}
	if err := r.backend.CreateBindGroup(provider, layout, descriptor); err != nil {
		return fmt.Errorf("renderer: %s: create bind group: %w", provider.Label(), err)
	}
	return nil
}

func (r *renderer) WriteUniform(provider bind_group_provider.BindGroupProvider, binding int, data []byte) {
	r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: provider, Binding: binding, Data: data}})
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame(clear [4]float64, depth bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frame != frameIdle {
		return ErrFrameInProgress
	}
	if err := r.backend.BeginFrame(wgpu.Color{R: clear[0], G: clear[1], B: clear[2], A: clear[3]}, depth); err != nil {
		return fmt.Errorf("renderer: begin frame: %w", err)
	}
	r.frame = frameRecording
	return nil
}

func (r *renderer) Draw(p pipeline.Pipeline, data DrawData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frame != frameRecording {
		return ErrFrameNotStarted
	}
	if p == nil || p.RenderPipeline() == nil {
		return errors.New("renderer: draw with a pipeline that was not built")
	}
	if data.Mesh == nil || data.Mesh.VertexBuffer() == nil || data.Mesh.DrawSlice().Count == 0 {
		return fmt.Errorf("renderer: pipeline %q: draw data has no mesh", p.PipelineKey())
	}
	if data.Depth != p.DepthEnabled() {
		return fmt.Errorf("renderer: pipeline %q: depth target bound=%t but pipeline depth=%t", p.PipelineKey(), data.Depth, p.DepthEnabled())
	}
	if data.Bindings != nil && data.Bindings.BindGroup() == nil {
		return fmt.Errorf("renderer: pipeline %q: bindings %s have no bind group", p.PipelineKey(), data.Bindings.Label())
	}
	r.backend.Draw(p, data)
	return nil
}

func (r *renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frame != frameRecording {
		return ErrFrameNotStarted
	}
	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("renderer: flush: %w", err)
	}
	r.frame = frameSubmitted
	return nil
}

func (r *renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frame != frameSubmitted {
		return
	}
	r.backend.Present()
}

func (r *renderer) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Cleanup()
	r.frame = frameIdle
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}

// checkBindingResources reports texture and sampler bindings the provider has not been given,
// naming the WGSL variable so the missing Create call is obvious. Uniform buffers are allocated
// by the backend and need no check.
func checkBindingResources(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, descriptor wgpu.BindGroupLayoutDescriptor) error {
	var missing []string
	for _, entry := range descriptor.Entries {
		binding := int(entry.Binding)
		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined && provider.TextureView(binding) == nil:
			missing = append(missing, fmt.Sprintf("texture %q (binding %d) needs CreateTexture", bindingVarName(p, binding), binding))
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined && provider.Sampler(binding) == nil:
			missing = append(missing, fmt.Sprintf("sampler %q (binding %d) needs CreateSampler", bindingVarName(p, binding), binding))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("renderer: %s: %s", provider.Label(), strings.Join(missing, "; "))
	}
	return nil
}

func bindingVarName(p pipeline.Pipeline, binding int) string {
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		if name := p.Shader(st).BindGroupVarName(0, binding); name != "" {
			return name
		}
	}
	return ""
}
