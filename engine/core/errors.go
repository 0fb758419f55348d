package core

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/bacon/engine/containers"
)

var (
	// A handle was never issued, was already destroyed, or is out of range.
	ErrInvalidHandle = containers.ErrInvalidHandle
	// A resource could not be created from the given parameters or backing data.
	ErrResourceCreation = errors.New("resource creation failed")
	// A position or range lies outside the valid bounds of the resource.
	ErrInvalidRange = errors.New("invalid range")
	// More pops than pushes on a graphics state stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// No native backend is available for the requested platform or device.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnsupportedFormat   = errors.New("unsupported format")
	ErrNotInitialized      = errors.New("engine not initialized")
	ErrAlreadyRunning      = errors.New("engine already running")
)

// HandlerPanicError is returned by the run loop when a user callback panics.
type HandlerPanicError struct {
	Handler string
	Tick    uint64
	Event   *EventContext
	Value   interface{}
	Stack   []byte
}

func (e *HandlerPanicError) Error() string {
	if e.Event != nil {
		return fmt.Sprintf("%s handler panicked on tick %d while handling %s: %v", e.Handler, e.Tick, e.Event.Type, e.Value)
	}
	return fmt.Sprintf("%s handler panicked on tick %d: %v", e.Handler, e.Tick, e.Value)
}

// Unwrap exposes a panic value that was itself an error.
func (e *HandlerPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
