package platform

import (
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/spaghettifunk/bacon/engine/core"
)

type WindowConfig struct {
	Title      string
	X          int
	Y          int
	Width      int
	Height     int
	Resizable  bool
	Fullscreen bool
}

// Platform is the interface that abstracts the window, the OS event loop
// and the presentation of finished frames.
type Platform interface {
	Startup(config WindowConfig) error
	Shutdown() error
	// PumpMessages forwards pending OS events to the event system. It
	// returns false once the user asked to close the window.
	PumpMessages(es *core.EventSystem) bool
	// Present shows a finished frame.
	Present(frame *image.NRGBA) error
	// Resized is called after the engine handled a resize event.
	Resized(width, height uint32) error
	// VSync reports whether Present already blocks until the next refresh.
	VSync() bool

	WindowSize() (int, int)
	SetWindowSize(width, height int) error
	SetWindowTitle(title string)
	SetWindowResizable(resizable bool)
	SetWindowFullscreen(fullscreen bool)
}

type Factory func() Platform

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// Register makes a platform available under name. Backends register
// themselves from an init function.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New returns a fresh instance of the named platform.
func New(name string) (Platform, error) {
	registryMu.Lock()
	factory, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("platform %q not available (have %v): %w", name, Available(), core.ErrUnsupportedPlatform)
	}
	return factory(), nil
}

// Available lists the registered platforms.
func Available() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("headless", func() Platform { return NewHeadless() })
}
