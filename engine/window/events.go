package window

import "sync"

// Event is a window event returned by PollEvents. The concrete types are KeyEvent, ResizeEvent,
// FocusEvent and CloseEvent.
type Event interface {
	isEvent()
}

// KeyEvent reports a key press or release. Key uses the GLFW key codes in common.
type KeyEvent struct {
	Key     uint32
	Pressed bool
}

// ResizeEvent reports a new framebuffer size in pixels, the size the surface must be configured with.
type ResizeEvent struct {
	Width  int
	Height int
}

// FocusEvent reports the window gaining or losing input focus.
type FocusEvent struct {
	Focused bool
}

// CloseEvent reports that the user asked to close the window.
type CloseEvent struct{}

func (KeyEvent) isEvent()    {}
func (ResizeEvent) isEvent() {}
func (FocusEvent) isEvent()  {}
func (CloseEvent) isEvent()  {}

// eventQueue buffers events pushed from platform callbacks until they are drained.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// drain returns every queued event in arrival order and empties the queue.
func (q *eventQueue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}
