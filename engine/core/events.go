package core

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/spaghettifunk/bacon/engine/containers"
)

// System event codes.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed or released.
	/* Context usage:
	 * KeyEvent{KeyCode, Pressed}
	 */
	EVENT_CODE_KEY EventCode = 0x02

	// Mouse button pressed or released.
	/* Context usage:
	 * MouseEvent{Button, Pressed}
	 */
	EVENT_CODE_BUTTON EventCode = 0x03

	// Mouse moved.
	/* Context usage:
	 * MouseEvent{PosX, PosY}
	 */
	EVENT_CODE_MOUSE_MOVED EventCode = 0x04

	// Mouse wheel or trackpad scroll.
	/* Context usage:
	 * MouseEvent{ScrollX, ScrollY}
	 */
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x05

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * SystemEvent{WindowWidth, WindowHeight}
	 */
	EVENT_CODE_RESIZED EventCode = 0x06

	// Controller connected or disconnected.
	/* Context usage:
	 * ControllerEvent{Controller, Connected, Info}
	 */
	EVENT_CODE_CONTROLLER_CONNECTED EventCode = 0x07

	// Controller button pressed or released.
	/* Context usage:
	 * ControllerEvent{Controller, Button, Pressed}
	 */
	EVENT_CODE_CONTROLLER_BUTTON EventCode = 0x08

	// Controller axis moved.
	/* Context usage:
	 * ControllerEvent{Controller, Axis, Value}
	 */
	EVENT_CODE_CONTROLLER_AXIS EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

func (c EventCode) String() string {
	switch c {
	case EVENT_CODE_APPLICATION_QUIT:
		return "application_quit"
	case EVENT_CODE_KEY:
		return "key"
	case EVENT_CODE_BUTTON:
		return "mouse_button"
	case EVENT_CODE_MOUSE_MOVED:
		return "mouse_moved"
	case EVENT_CODE_MOUSE_WHEEL:
		return "mouse_wheel"
	case EVENT_CODE_RESIZED:
		return "resized"
	case EVENT_CODE_CONTROLLER_CONNECTED:
		return "controller_connected"
	case EVENT_CODE_CONTROLLER_BUTTON:
		return "controller_button"
	case EVENT_CODE_CONTROLLER_AXIS:
		return "controller_axis"
	}
	return fmt.Sprintf("EventCode(%d)", int(c))
}

// Capacity of the per-tick event queue. Events beyond it are dropped.
const MAX_QUEUED_EVENTS = 1024

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
	Pressed bool
}

type MouseEvent struct {
	Button  MouseButton
	Pressed bool
	PosX    float32
	PosY    float32
	ScrollX float32
	ScrollY float32
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type ControllerEvent struct {
	Controller int
	Connected  bool
	Info       ControllerInfo
	Button     ControllerButtons
	Pressed    bool
	Axis       ControllerAxes
	Value      float32
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

// EventSystem queues events coming from the platform and delivers them once
// per tick on the logic thread.
type EventSystem struct {
	mu         sync.Mutex
	queue      *containers.RingQueue[EventContext]
	dropped    int
	registered [MAX_EVENT_CODE + 1][]FnOnEvent
	input      *InputState
}

func NewEventSystem(input *InputState) *EventSystem {
	return &EventSystem{
		queue: containers.NewRingQueue[EventContext](MAX_QUEUED_EVENTS),
		input: input,
	}
}

// EventRegister adds a listener for the given code. Listeners run in
// registration order until one reports the event as handled.
func (es *EventSystem) EventRegister(code EventCode, onEvent FnOnEvent) bool {
	if code <= 0 || code > MAX_EVENT_CODE || onEvent == nil {
		return false
	}
	es.registered[code] = append(es.registered[code], onEvent)
	return true
}

// EventUnregisterAll removes every listener for the code.
func (es *EventSystem) EventUnregisterAll(code EventCode) {
	if code <= 0 || code > MAX_EVENT_CODE {
		return
	}
	es.registered[code] = nil
}

// EventFire queues an event for delivery on the next Dispatch. Safe to call
// from any goroutine.
func (es *EventSystem) EventFire(context EventContext) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if err := es.queue.Enqueue(context); err != nil {
		es.dropped++
	}
}

// Pending returns the number of queued events.
func (es *EventSystem) Pending() int {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.queue.Len()
}

func (es *EventSystem) drain() []EventContext {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.dropped > 0 {
		LogWarn("event queue overflow, %d events dropped", es.dropped)
		es.dropped = 0
	}
	events := make([]EventContext, 0, es.queue.Len())
	for !es.queue.IsEmpty() {
		ev, _ := es.queue.Dequeue()
		events = append(events, ev)
	}
	return events
}

// orderEvents moves controller connection changes ahead of everything else,
// keeping the relative order within both groups.
func orderEvents(events []EventContext) []EventContext {
	ordered := make([]EventContext, 0, len(events))
	for _, ev := range events {
		if ev.Type == EVENT_CODE_CONTROLLER_CONNECTED {
			ordered = append(ordered, ev)
		}
	}
	for _, ev := range events {
		if ev.Type != EVENT_CODE_CONTROLLER_CONNECTED {
			ordered = append(ordered, ev)
		}
	}
	return ordered
}

// Dispatch drains the queue, updates the polled input state for every event
// and invokes the registered listeners. A panicking listener stops the
// dispatch and is reported as a *HandlerPanicError.
func (es *EventSystem) Dispatch(tick uint64) error {
	for _, ev := range orderEvents(es.drain()) {
		if es.input != nil {
			es.input.Process(ev)
		}
		if err := es.fire(tick, ev); err != nil {
			return err
		}
	}
	return nil
}

func (es *EventSystem) fire(tick uint64, context EventContext) (err error) {
	listeners := es.registered[context.Type]
	if len(listeners) == 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			ev := context
			err = &HandlerPanicError{
				Handler: context.Type.String(),
				Tick:    tick,
				Event:   &ev,
				Value:   r,
				Stack:   debug.Stack(),
			}
		}
	}()
	for _, l := range listeners {
		if l(context) {
			// Message has been handled, do not send to other listeners.
			return nil
		}
	}
	return nil
}

// Shutdown drops queued events and all listeners.
func (es *EventSystem) Shutdown() error {
	es.drain()
	for i := range es.registered {
		es.registered[i] = nil
	}
	return nil
}
