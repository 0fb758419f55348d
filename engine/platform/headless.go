package platform

import (
	"fmt"
	"image"
	"sync"

	"github.com/spaghettifunk/bacon/engine/core"
)

// Headless has no window. Events are injected by the caller and presented
// frames are kept for inspection.
type Headless struct {
	mu        sync.Mutex
	config    WindowConfig
	pending   []core.EventContext
	quit      bool
	lastFrame *image.NRGBA
	presented int
}

func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) Startup(config WindowConfig) error {
	if config.Width <= 0 || config.Height <= 0 {
		return fmt.Errorf("window size %dx%d: %w", config.Width, config.Height, core.ErrInvalidArgument)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.config = config
	core.LogInfo("Headless platform started (%dx%d).", config.Width, config.Height)
	return nil
}

func (h *Headless) Shutdown() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = nil
	return nil
}

// Inject queues an event for the next PumpMessages. Safe for concurrent use.
func (h *Headless) Inject(ev core.EventContext) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, ev)
}

// RequestClose makes the next PumpMessages report a closed window.
func (h *Headless) RequestClose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.quit = true
}

func (h *Headless) PumpMessages(es *core.EventSystem) bool {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	quit := h.quit
	h.mu.Unlock()

	for _, ev := range pending {
		es.EventFire(ev)
	}
	return !quit
}

func (h *Headless) Present(frame *image.NRGBA) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lastFrame == nil || h.lastFrame.Rect != frame.Rect {
		h.lastFrame = image.NewNRGBA(frame.Rect)
	}
	copy(h.lastFrame.Pix, frame.Pix)
	h.presented++
	return nil
}

// LastFrame returns a copy of the most recently presented frame.
func (h *Headless) LastFrame() *image.NRGBA {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lastFrame == nil {
		return nil
	}
	out := image.NewNRGBA(h.lastFrame.Rect)
	copy(out.Pix, h.lastFrame.Pix)
	return out
}

func (h *Headless) Presented() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presented
}

func (h *Headless) Resized(width, height uint32) error {
	return nil
}

func (h *Headless) VSync() bool {
	return false
}

func (h *Headless) WindowSize() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.config.Width, h.config.Height
}

// SetWindowSize behaves like a window manager accepting the request: the
// new size arrives as a resize event on the next pump.
func (h *Headless) SetWindowSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window size %dx%d: %w", width, height, core.ErrInvalidArgument)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if width == h.config.Width && height == h.config.Height {
		return nil
	}
	h.config.Width, h.config.Height = width, height
	h.pending = append(h.pending, core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: uint32(width), WindowHeight: uint32(height)},
	})
	return nil
}

func (h *Headless) SetWindowTitle(title string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.config.Title = title
}

func (h *Headless) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.config.Title
}

func (h *Headless) SetWindowResizable(resizable bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.config.Resizable = resizable
}

func (h *Headless) SetWindowFullscreen(fullscreen bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.config.Fullscreen = fullscreen
}
