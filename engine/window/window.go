package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and a non-blocking input event stream.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// PollEvents processes pending platform events without blocking and returns every event
	// received since the previous call, oldest first. Escape arrives as an ordinary KeyEvent.
	//
	// Returns:
	//   - []Event: the drained events, possibly empty
	PollEvents() []Event

	// ContentScale returns the ratio between pixels and logical window units.
	//
	// Returns:
	//   - x, y: the horizontal and vertical scale factors
	ContentScale() (x, y float32)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and the pending event queue.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// resizable controls whether the user may resize the window.
	resizable bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	events eventQueue
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. The requested size is logical; Width and Height report
// the framebuffer size, which differs on high-DPI displays.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "Triangle example",
		width:     1024,
		height:    768,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) PollEvents() []Event {
	platformProcessMessages(w)
	return w.events.drain()
}

func (w *engineWindow) ContentScale() (x, y float32) {
	return platformContentScale(w)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
