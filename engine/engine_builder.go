package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-frames/engine/camera"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/pipeline"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables the once-per-second profiler report.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithPipeline sets the pipeline every frame draws with. Without a pipeline frames are only cleared.
//
// Parameters:
//   - p: a pipeline returned by renderer.BuildPipeline
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPipeline(p pipeline.Pipeline) EngineBuilderOption {
	return func(e *engine) {
		e.pipeline = p
	}
}

// WithDrawData sets the mesh, bindings and depth flag drawn each frame.
//
// Parameters:
//   - data: the draw data
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDrawData(data renderer.DrawData) EngineBuilderOption {
	return func(e *engine) {
		e.drawData = data
	}
}

// WithClearColor sets the RGBA color the color target is cleared to.
//
// Parameters:
//   - rgba: the clear color
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClearColor(rgba [4]float64) EngineBuilderOption {
	return func(e *engine) {
		e.clearColor = rgba
	}
}

// WithCamera drives a uniform transform from W/A/S/D input. The transform is written to the
// uniform buffer at binding of provider on the first frame and on every frame a movement key is held.
//
// Parameters:
//   - c: the camera controller
//   - provider: the provider holding the uniform buffer
//   - binding: the uniform binding index
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Controller, provider bind_group_provider.BindGroupProvider, binding int) EngineBuilderOption {
	return func(e *engine) {
		e.controller = c
		e.uniformProvider = provider
		e.uniformBinding = binding
	}
}

// WithFrameCallback registers a function called after every presented frame.
//
// Parameters:
//   - callback: receives the presented frame count and the frame duration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameCallback(callback func(frame uint64, frameTime time.Duration)) EngineBuilderOption {
	return func(e *engine) {
		e.frameCallback = callback
	}
}

// withClock replaces time.Now.
func withClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.now = now
	}
}
