package engine

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/bacon/engine/assets"
	"github.com/spaghettifunk/bacon/engine/audio"
	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/platform"
	"github.com/spaghettifunk/bacon/engine/renderer"
	"github.com/spaghettifunk/bacon/engine/systems"
)

const (
	VERSION_MAJOR = 1
	VERSION_MINOR = 2
	VERSION_PATCH = 0
)

// GetVersion returns the runtime version.
func GetVersion() (major, minor, patch int) {
	return VERSION_MAJOR, VERSION_MINOR, VERSION_PATCH
}

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageBooting:
		return "booting"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting_down"
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

const (
	MAX_SOUND_COUNT = 1024
	MAX_VOICE_COUNT = 256
)

type glyphKey struct {
	font      containers.Handle
	size      float32
	codepoint rune
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	running      atomic.Bool
	isSuspended  bool
	teardownOnce sync.Once
	teardownErr  error

	platform      platform.Platform
	input         *core.InputState
	events        *core.EventSystem
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	renderer      *renderer.Renderer
	sounds        *audio.SoundTable
	mixer         *audio.Mixer

	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64
	tick     uint64
	width    uint32
	height   uint32

	glyphs map[glyphKey]systems.Glyph

	onWindowResize        WindowResizeEventHandler
	onKey                 KeyEventHandler
	onMouseButton         MouseButtonEventHandler
	onMouseScroll         MouseScrollEventHandler
	onControllerConnected ControllerConnectedEventHandler
	onControllerButton    ControllerButtonEventHandler
	onControllerAxis      ControllerAxisEventHandler
}

func New(g *Game) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("engine needs a game: %w", core.ErrInvalidArgument)
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig().applyEnv()
	}
	if err := g.ApplicationConfig.validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, core.ErrInvalidArgument)
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.ApplicationConfig,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        uint32(g.ApplicationConfig.StartWidth),
		height:       uint32(g.ApplicationConfig.StartHeight),
		glyphs:       make(map[glyphKey]systems.Glyph),
	}, nil
}

// Initialize brings up the platform and every subsystem, then runs the
// game's initialize callback.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("initialize in stage %s: %w", e.currentStage, core.ErrAlreadyRunning)
	}
	e.currentStage = EngineStageBooting
	cfg := e.config
	core.SetLogLevel(core.ParseLogLevel(cfg.LogLevel))

	if err := e.boot(); err != nil {
		core.LogError("engine boot failed: %s", err)
		_ = e.teardown()
		return err
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("Engine initialized (%s, %dx%d).", cfg.Platform, e.width, e.height)

	if e.gameInstance.FnInitialize != nil {
		if err := e.guard("initialize", func() error { return e.gameInstance.FnInitialize(e) }); err != nil {
			_ = e.teardown()
			return err
		}
	}
	return nil
}

func (e *Engine) boot() error {
	cfg := e.config
	p, err := platform.New(cfg.Platform)
	if err != nil {
		return err
	}
	if err := p.Startup(platform.WindowConfig{
		Title:      cfg.Name,
		X:          cfg.StartPosX,
		Y:          cfg.StartPosY,
		Width:      cfg.StartWidth,
		Height:     cfg.StartHeight,
		Resizable:  cfg.Resizable,
		Fullscreen: cfg.Fullscreen,
	}); err != nil {
		return err
	}
	e.platform = p
	if w, h := p.WindowSize(); w > 0 && h > 0 {
		e.width, e.height = uint32(w), uint32(h)
	}

	e.input = core.NewInputState()
	e.events = core.NewEventSystem(e.input)

	e.assetManager = assets.NewAssetManager()
	if err := e.assetManager.Initialize(cfg.AssetsDir, cfg.HotReload); err != nil {
		return err
	}

	if e.systemManager, err = systems.NewSystemManager(e.assetManager); err != nil {
		return err
	}
	e.systemManager.ImageSystem.OnUnload(e.onImageUnload)

	if e.renderer, err = renderer.New(p, e.systemManager.ImageSystem, e.width, e.height); err != nil {
		return err
	}

	if e.sounds, err = audio.NewSoundTable(&audio.SoundTableConfig{MaxSoundCount: MAX_SOUND_COUNT}, e.assetManager); err != nil {
		return err
	}
	e.mixer, err = audio.NewMixer(&audio.MixerConfig{
		SampleRate:   cfg.AudioSampleRate,
		BufferFrames: cfg.AudioBufferFrames,
		MaxVoices:    MAX_VOICE_COUNT,
	}, e.sounds, audio.NewSink(cfg.AudioSink))
	if err != nil {
		return err
	}
	if err := e.mixer.Start(); err != nil {
		return err
	}

	e.events.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onQuit)
	e.events.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)
	e.events.EventRegister(core.EVENT_CODE_KEY, e.onKeyEvent)
	e.events.EventRegister(core.EVENT_CODE_BUTTON, e.onMouseButtonEvent)
	e.events.EventRegister(core.EVENT_CODE_MOUSE_WHEEL, e.onMouseScrollEvent)
	e.events.EventRegister(core.EVENT_CODE_CONTROLLER_CONNECTED, e.onControllerConnectedEvent)
	e.events.EventRegister(core.EVENT_CODE_CONTROLLER_BUTTON, e.onControllerButtonEvent)
	e.events.EventRegister(core.EVENT_CODE_CONTROLLER_AXIS, e.onControllerAxisEvent)
	return nil
}

// Run owns the frame loop until Shutdown is called, the window is closed
// or a callback fails. Subsystems are torn down before it returns.
func (e *Engine) Run() error {
	switch e.currentStage {
	case EngineStageInitialized:
	case EngineStageRunning:
		return core.ErrAlreadyRunning
	default:
		return core.ErrNotInitialized
	}
	e.currentStage = EngineStageRunning
	e.running.Store(true)
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var runErr error
	for e.running.Load() {
		if err := e.frame(); err != nil {
			runErr = err
			var hp *core.HandlerPanicError
			if errors.As(err, &hp) {
				core.LogError("%s\n%s", hp.Error(), hp.Stack)
			} else {
				core.LogError("frame %d failed, shutting down: %s", e.tick, err)
			}
			break
		}
	}
	e.running.Store(false)
	e.clock.Stop()

	if err := e.teardown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// frame runs one tick: pump, dispatch, completions, reloads, draw, present.
func (e *Engine) frame() error {
	e.tick++
	if !e.platform.PumpMessages(e.events) {
		core.LogInfo("Window closed, shutting down.")
		e.running.Store(false)
		return nil
	}

	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	e.lastTime = currentTime
	frameStart := time.Now()

	// NOTE: the previous state must be saved before this tick's events land
	e.input.InputUpdate()
	if err := e.events.Dispatch(e.tick); err != nil {
		return err
	}
	if err := e.guard("voice_callback", func() error {
		e.mixer.DispatchCompletions()
		return nil
	}); err != nil {
		return err
	}
	for _, path := range e.assetManager.TakeChanged() {
		if n := e.systemManager.ImageSystem.Reload(path); n > 0 {
			core.LogDebug("queued %d image reload(s) for %s", n, path)
		}
	}
	e.systemManager.Update()

	if !e.running.Load() || e.isSuspended {
		return nil
	}

	e.renderer.BeginFrame()
	if e.gameInstance.FnTick != nil {
		if err := e.guard("tick", func() error { return e.gameInstance.FnTick(e, delta) }); err != nil {
			return err
		}
	}
	if _, err := e.renderer.EndFrame(); err != nil {
		return fmt.Errorf("present: %w", err)
	}

	frameElapsed := time.Since(frameStart)
	if e.metrics.Update(frameElapsed.Seconds()) {
		core.LogDebug("FPS: %.0f, frame time: %.2fms", e.metrics.FPSValue(), e.metrics.FrameTime())
	}
	if !e.platform.VSync() && e.config.TargetFPS > 0 {
		target := time.Second / time.Duration(e.config.TargetFPS)
		// If there is time left, give it back to the OS.
		if remaining := target - frameElapsed; remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return nil
}

// guard runs a user callback and turns a panic into a *HandlerPanicError.
func (e *Engine) guard(handler string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.HandlerPanicError{
				Handler: handler,
				Tick:    e.tick,
				Value:   r,
				Stack:   debug.Stack(),
			}
		}
	}()
	return fn()
}

// Shutdown stops the engine. Inside Run it ends the loop after the current
// frame; outside Run it tears the subsystems down immediately. Safe to call
// from any goroutine and more than once.
func (e *Engine) Shutdown() error {
	if e.running.CompareAndSwap(true, false) {
		return nil
	}
	return e.teardown()
}

// teardown stops the mixer first, then releases the resource tables and
// closes the platform last.
func (e *Engine) teardown() error {
	e.teardownOnce.Do(func() {
		wasInitialized := e.currentStage >= EngineStageInitialized
		e.currentStage = EngineStageShuttingDown
		var errs []error

		if wasInitialized && e.gameInstance.FnShutdown != nil {
			errs = append(errs, e.guard("shutdown", func() error { return e.gameInstance.FnShutdown(e) }))
		}
		if e.mixer != nil {
			errs = append(errs, e.mixer.Stop())
		}
		if e.systemManager != nil {
			errs = append(errs, e.systemManager.ReleaseResources())
		}
		if e.mixer != nil {
			e.mixer.DestroyVoices()
		}
		if e.sounds != nil {
			errs = append(errs, e.sounds.Shutdown())
		}
		if e.renderer != nil {
			errs = append(errs, e.renderer.Shutdown())
		}
		if e.assetManager != nil {
			errs = append(errs, e.assetManager.Shutdown())
		}
		if e.systemManager != nil {
			errs = append(errs, e.systemManager.Shutdown())
		}
		if e.events != nil {
			errs = append(errs, e.events.Shutdown())
		}
		if e.platform != nil {
			errs = append(errs, e.platform.Shutdown())
		}
		e.glyphs = make(map[glyphKey]systems.Glyph)
		e.currentStage = EngineStageUninitialized
		e.teardownErr = errors.Join(errs...)
		core.LogInfo("Engine shut down after %d frames.", e.tick)
	})
	return e.teardownErr
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// ready gates the public API to the span between a successful Initialize and
// the end of the game's shutdown callback.
func (e *Engine) ready() error {
	switch e.currentStage {
	case EngineStageInitialized, EngineStageRunning, EngineStageShuttingDown:
		return nil
	}
	return fmt.Errorf("engine in stage %s: %w", e.currentStage, core.ErrNotInitialized)
}

// Tick returns the number of the current frame.
func (e *Engine) Tick() uint64 {
	return e.tick
}

func (e *Engine) Platform() platform.Platform {
	return e.platform
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Input() *core.InputState {
	return e.input
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) Systems() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Mixer() *audio.Mixer {
	return e.mixer
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) onImageUnload(h containers.Handle) {
	if e.renderer != nil && e.renderer.FrameBuffer() == h {
		core.LogDebug("frame buffer %v unloaded, drawing to the window", h)
		_ = e.renderer.SetFrameBuffer(0)
	}
}

func (e *Engine) onQuit(context core.EventContext) bool {
	core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
	e.running.Store(false)
	return true
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%s`", context.Type)
		return false
	}
	width, height := se.WindowWidth, se.WindowHeight
	if width == e.width && height == e.height && !e.isSuspended {
		return true
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if e.onWindowResize != nil {
		e.onWindowResize(int(width), int(height))
	}
	return true
}
