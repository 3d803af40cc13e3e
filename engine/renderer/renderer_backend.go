package renderer

import (
	"github.com/Carmen-Shannon/oxy-frames/common"
	"github.com/Carmen-Shannon/oxy-frames/engine/model"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. This is the default.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// SamplerMode selects a sampler configuration.
type SamplerMode int

const (
	// SamplerModeLinear filters linearly in all directions and clamps coordinates to the edge.
	SamplerModeLinear SamplerMode = iota
)

// RendererBackend is the GPU API specific half of the Renderer. The renderer validates arguments
// and keeps frame bookkeeping; the backend owns the device objects.
type RendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and the per-size attachments.
	//
	// Parameters:
	//   - width: the surface width in physical pixels
	//   - height: the surface height in physical pixels
	//
	// Returns:
	//   - error: an error if an attachment could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SurfaceFormat returns the color format of the swapchain.
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the MSAA sample count of the main render pass.
	SampleCount() MSAASampleCount

	// CreateRenderPipeline creates the GPU objects for a validated pipeline and attaches them to it.
	CreateRenderPipeline(p pipeline.Pipeline) error

	// CreateMeshBuffers uploads vertex data and optional index data and stores them on the provider.
	CreateMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, slice model.DrawSlice) error

	// CreateTexture uploads a single mip RGBA8 texture and stores it on the provider.
	CreateTexture(provider bind_group_provider.BindGroupProvider, binding int, pixels common.PixelBuffer) error

	// CreateSampler creates a sampler and stores it on the provider.
	CreateSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error

	// CreateBindGroup allocates missing uniform buffers and creates the bind group described by descriptor.
	CreateBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers queues whole or partial buffer writes.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and opens the render pass with the given clears.
	BeginFrame(clear wgpu.Color, depth bool) error

	// Draw encodes one draw call into the open render pass.
	Draw(p pipeline.Pipeline, data DrawData)

	// EndFrame closes the render pass and submits the command buffer.
	EndFrame() error

	// Present presents the acquired surface texture.
	Present()

	// Cleanup releases whatever the current frame still holds and lets the device reclaim finished work.
	Cleanup()

	// Release tears down the device, surface and instance.
	Release()
}
