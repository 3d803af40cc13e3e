package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-frames/common"
	"github.com/Carmen-Shannon/oxy-frames/engine/camera"
	"github.com/Carmen-Shannon/oxy-frames/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frames/engine/window"
)

// ErrStopped is returned by Step once the loop has stopped.
var ErrStopped = errors.New("engine: stopped")

// State is the frame loop state.
type State int

const (
	// StateRunning renders a frame on every Step.
	StateRunning State = iota
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	if s == StateStopped {
		return "stopped"
	}
	return "running"
}

// Window is the part of window.Window the frame loop uses.
type Window interface {
	PollEvents() []window.Event
	ContentScale() (x, y float32)
}

// FrameRenderer is the part of renderer.Renderer the frame loop drives.
type FrameRenderer interface {
	Resize(width, height int) error
	WriteUniform(provider bind_group_provider.BindGroupProvider, binding int, data []byte)
	BeginFrame(clear [4]float64, depth bool) error
	Draw(p pipeline.Pipeline, data renderer.DrawData) error
	EndFrame() error
	Present()
	Cleanup()
}

// engine implements the Engine interface.
type engine struct {
	window   Window
	renderer FrameRenderer
	now      func() time.Time

	state         State
	stopRequested atomic.Bool
	frame         uint64

	pipeline   pipeline.Pipeline
	drawData   renderer.DrawData
	clearColor [4]float64

	controller      camera.Controller
	uniformProvider bind_group_provider.BindGroupProvider
	uniformBinding  int
	input           camera.InputState
	cameraState     camera.CameraState
	uniformWritten  bool

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback func(frame uint64, frameTime time.Duration)
}

// Engine is the frame loop. Each Step drains window events, updates the camera uniform, and
// clears, draws, flushes and presents one frame.
type Engine interface {
	// Run steps until the loop stops. Escape and window close end the loop after the current
	// iteration without rendering it.
	//
	// Returns:
	//   - error: nil after a normal stop, or the per-frame error that ended the loop
	Run() error

	// Step runs one iteration of the frame loop.
	//
	// Returns:
	//   - State: the loop state after the iteration
	//   - error: ErrStopped if the loop had already stopped, or a device error (the loop is then stopped)
	Step() (State, error)

	// State returns the current loop state.
	//
	// Returns:
	//   - State: running or stopped
	State() State

	// Stop requests a stop. The loop stops at the next stop check, before rendering. Safe to call
	// from any goroutine.
	Stop()

	// Frame returns the number of frames presented.
	//
	// Returns:
	//   - uint64: the presented frame count
	Frame() uint64

	// CameraState returns the accumulated camera offsets.
	//
	// Returns:
	//   - camera.CameraState: the current offsets
	CameraState() camera.CameraState
}

var _ Engine = &engine{}

// NewEngine creates a frame loop over a window and a renderer. The clear color defaults to
// (0.02, 0.02, 0.02, 1).
//
// Parameters:
//   - win: the event source
//   - r: the renderer frames are drawn with
//   - options: functional options for draw data, pipeline, camera and profiling
//
// Returns:
//   - Engine: the engine in the running state
//   - error: an error if the configuration is inconsistent
func NewEngine(win Window, r FrameRenderer, options ...EngineBuilderOption) (Engine, error) {
	if win == nil || r == nil {
		return nil, errors.New("engine: window and renderer are required")
	}
	e := &engine{
		window:     win,
		renderer:   r,
		now:        time.Now,
		clearColor: [4]float64{0.02, 0.02, 0.02, 1.0},
	}
	for _, option := range options {
		option(e)
	}

	if e.pipeline != nil && e.drawData.Depth != e.pipeline.DepthEnabled() {
		return nil, fmt.Errorf("engine: draw data depth=%t does not match pipeline %q depth=%t",
			e.drawData.Depth, e.pipeline.PipelineKey(), e.pipeline.DepthEnabled())
	}
	if e.pipeline != nil && e.drawData.Mesh == nil {
		return nil, fmt.Errorf("engine: pipeline %q has no mesh to draw", e.pipeline.PipelineKey())
	}
	if e.controller != nil && e.uniformProvider == nil {
		return nil, errors.New("engine: camera needs a uniform provider")
	}
	if e.profilingEnabled {
		e.profiler = profiler.NewProfiler()
	}
	return e, nil
}

func (e *engine) Run() error {
	common.Logger().Info("frame loop started")
	for {
		state, err := e.Step()
		if err != nil {
			if errors.Is(err, ErrStopped) {
				return nil
			}
			common.Logger().Error("frame loop failed", "frame", e.frame, "error", err)
			return err
		}
		if state == StateStopped {
			common.Logger().Info("frame loop stopped", "frames", e.frame)
			return nil
		}
	}
}

func (e *engine) Step() (State, error) {
	if e.state == StateStopped {
		return StateStopped, ErrStopped
	}
	start := e.now()

	if err := e.drainEvents(); err != nil {
		e.state = StateStopped
		return e.state, err
	}

	if e.stopRequested.Load() {
		e.state = StateStopped
		return e.state, nil
	}

	e.updateCamera()

	if err := e.renderFrame(); err != nil {
		e.state = StateStopped
		return e.state, err
	}
	e.frame++

	frameTime := e.now().Sub(start)
	common.Logger().Debug("frame", "n", e.frame, "time", frameTime)
	if e.profiler != nil {
		e.profiler.Tick(frameTime)
	}
	if e.frameCallback != nil {
		e.frameCallback(e.frame, frameTime)
	}
	return e.state, nil
}

func (e *engine) State() State {
	return e.state
}

func (e *engine) Stop() {
	e.stopRequested.Store(true)
}

func (e *engine) Frame() uint64 {
	return e.frame
}

func (e *engine) CameraState() camera.CameraState {
	return e.cameraState
}

// drainEvents consumes every pending window event. Resizes are applied immediately so the next
// frame is acquired at the new size.
func (e *engine) drainEvents() error {
	for _, ev := range e.window.PollEvents() {
		switch ev := ev.(type) {
		case window.KeyEvent:
			if ev.Key == common.KeyEsc {
				if ev.Pressed {
					e.Stop()
				}
				continue
			}
			e.input.ApplyKey(ev.Key, ev.Pressed)
		case window.ResizeEvent:
			sx, sy := e.window.ContentScale()
			common.Logger().Debug("resize", "width", ev.Width, "height", ev.Height, "scaleX", sx, "scaleY", sy)
			if err := e.renderer.Resize(ev.Width, ev.Height); err != nil {
				return fmt.Errorf("engine: resize to %dx%d: %w", ev.Width, ev.Height, err)
			}
		case window.CloseEvent:
			e.Stop()
		default:
			common.Logger().Debug("event ignored", "event", fmt.Sprintf("%T", ev))
		}
	}
	return nil
}

// updateCamera integrates held keys and uploads the transform when it changed. The first frame
// always uploads so the uniform is never read uninitialized.
func (e *engine) updateCamera() {
	if e.controller == nil {
		return
	}
	moved := e.controller.Advance(e.input, &e.cameraState)
	if !moved && e.uniformWritten {
		return
	}
	e.drawData.Transform = e.controller.Transform(e.cameraState)
	locals := camera.Locals{Transform: e.drawData.Transform}
	e.renderer.WriteUniform(e.uniformProvider, e.uniformBinding, locals.Marshal())
	e.uniformWritten = true
}

func (e *engine) renderFrame() error {
	defer e.renderer.Cleanup()

	if err := e.renderer.BeginFrame(e.clearColor, e.drawData.Depth); err != nil {
		return err
	}
	if e.pipeline != nil {
		if err := e.renderer.Draw(e.pipeline, e.drawData); err != nil {
			return err
		}
	}
	if err := e.renderer.EndFrame(); err != nil {
		return err
	}
	e.renderer.Present()
	return nil
}
