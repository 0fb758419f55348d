package desktop

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/platform"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
	platform.Register("glfw", func() platform.Platform { return New() })
}

// Desktop is a GLFW window with an OpenGL 2.1 context used to show the
// software frame buffer.
type Desktop struct {
	window   *glfw.Window
	config   WindowConfig
	pending  []core.EventContext
	gamepads [core.MaxControllerCount]gamepad
	presenter
}

type WindowConfig = platform.WindowConfig

func New() *Desktop {
	return &Desktop{}
}

func (d *Desktop) Startup(config WindowConfig) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %v: %w", err, core.ErrUnsupportedPlatform)
	}
	core.LogInfo("GLFW: %s", glfw.GetVersionString())

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	// Start with an invisible window so that we can position it first
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, boolHint(config.Resizable))

	var monitor *glfw.Monitor
	width, height := config.Width, config.Height
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		vm := monitor.GetVideoMode()
		width, height = vm.Width, vm.Height
	}
	window, err := glfw.CreateWindow(width, height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create window: %v: %w", err, core.ErrUnsupportedPlatform)
	}
	d.window = window
	d.config = config
	d.config.Width, d.config.Height = width, height

	window.SetKeyCallback(d.keyCallback)
	window.SetMouseButtonCallback(d.mouseButtonCallback)
	window.SetCursorPosCallback(d.cursorPosCallback)
	window.SetScrollCallback(d.scrollCallback)
	window.SetSizeCallback(d.sizeCallback)
	if monitor == nil {
		window.SetPos(config.X, config.Y)
	}
	window.Show()
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := d.presenter.init(); err != nil {
		d.Shutdown()
		return err
	}
	return nil
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func (d *Desktop) Shutdown() error {
	if d.window != nil {
		d.presenter.destroy()
		d.window.Destroy()
		d.window = nil
	}
	glfw.Terminate()
	return nil
}

func (d *Desktop) fire(ev core.EventContext) {
	d.pending = append(d.pending, ev)
}

func (d *Desktop) PumpMessages(es *core.EventSystem) bool {
	glfw.PollEvents()
	d.pollGamepads()
	for _, ev := range d.pending {
		es.EventFire(ev)
	}
	d.pending = d.pending[:0]
	return !d.window.ShouldClose()
}

func (d *Desktop) Present(frame *image.NRGBA) error {
	fbw, fbh := d.window.GetFramebufferSize()
	d.presenter.draw(frame, fbw, fbh)
	d.window.SwapBuffers()
	return nil
}

func (d *Desktop) Resized(width, height uint32) error {
	d.config.Width, d.config.Height = int(width), int(height)
	return nil
}

func (d *Desktop) VSync() bool {
	return true
}

func (d *Desktop) WindowSize() (int, int) {
	return d.window.GetSize()
}

func (d *Desktop) SetWindowSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window size %dx%d: %w", width, height, core.ErrInvalidArgument)
	}
	d.window.SetSize(width, height)
	return nil
}

func (d *Desktop) SetWindowTitle(title string) {
	d.config.Title = title
	d.window.SetTitle(title)
}

func (d *Desktop) SetWindowResizable(resizable bool) {
	d.config.Resizable = resizable
	d.window.SetAttrib(glfw.Resizable, boolHint(resizable))
}

func (d *Desktop) SetWindowFullscreen(fullscreen bool) {
	if fullscreen == d.config.Fullscreen {
		return
	}
	d.config.Fullscreen = fullscreen
	if fullscreen {
		d.config.X, d.config.Y = d.window.GetPos()
		monitor := glfw.GetPrimaryMonitor()
		vm := monitor.GetVideoMode()
		d.window.SetMonitor(monitor, 0, 0, vm.Width, vm.Height, vm.RefreshRate)
		return
	}
	d.window.SetMonitor(nil, d.config.X, d.config.Y, d.config.Width, d.config.Height, 0)
}

func (d *Desktop) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	code, ok := translateKey(key)
	if !ok {
		return
	}
	d.fire(core.EventContext{
		Type: core.EVENT_CODE_KEY,
		Data: &core.KeyEvent{KeyCode: code, Pressed: action == glfw.Press},
	})
}

func (d *Desktop) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	b, ok := translateMouseButton(button)
	if !ok {
		return
	}
	d.fire(core.EventContext{
		Type: core.EVENT_CODE_BUTTON,
		Data: &core.MouseEvent{Button: b, Pressed: action == glfw.Press},
	})
}

func (d *Desktop) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	d.fire(core.EventContext{
		Type: core.EVENT_CODE_MOUSE_MOVED,
		Data: &core.MouseEvent{PosX: float32(xpos), PosY: float32(ypos)},
	})
}

func (d *Desktop) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	d.fire(core.EventContext{
		Type: core.EVENT_CODE_MOUSE_WHEEL,
		Data: &core.MouseEvent{ScrollX: float32(xoff), ScrollY: float32(yoff)},
	})
}

func (d *Desktop) sizeCallback(w *glfw.Window, width, height int) {
	d.fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: uint32(width), WindowHeight: uint32(height)},
	})
}
