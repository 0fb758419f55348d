package engine

import (
	"fmt"

	"github.com/spaghettifunk/bacon/engine/core"
)

// SetWindowResizeEventHandler is called after the window surface has been
// reallocated to the new size.
func (e *Engine) SetWindowResizeEventHandler(fn WindowResizeEventHandler) {
	e.onWindowResize = fn
}

// GetWindowSize returns the size of the window surface.
func (e *Engine) GetWindowSize() (int, int) {
	return int(e.width), int(e.height)
}

// SetWindowSize asks the platform for a new size. The change is applied
// when the resize event arrives.
func (e *Engine) SetWindowSize(width, height int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window size %dx%d: %w", width, height, core.ErrInvalidArgument)
	}
	return e.platform.SetWindowSize(width, height)
}

func (e *Engine) SetWindowTitle(title string) {
	if e.ready() != nil {
		return
	}
	e.platform.SetWindowTitle(title)
}

func (e *Engine) SetWindowResizable(resizable bool) {
	if e.ready() != nil {
		return
	}
	e.platform.SetWindowResizable(resizable)
}

func (e *Engine) SetWindowFullscreen(fullscreen bool) {
	if e.ready() != nil {
		return
	}
	e.platform.SetWindowFullscreen(fullscreen)
}
