package engine

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/platform"
)

func testConfig(t *testing.T) *ApplicationConfig {
	t.Helper()
	cfg := DefaultApplicationConfig()
	cfg.Name = t.Name()
	cfg.StartWidth = 64
	cfg.StartHeight = 32
	cfg.TargetFPS = 0
	cfg.LogLevel = "error"
	cfg.Platform = "headless"
	cfg.AudioSink = "null"
	cfg.AudioBufferFrames = 64
	cfg.AssetsDir = t.TempDir()
	return cfg
}

// newTestEngine returns an initialized engine on the headless platform.
func newTestEngine(t *testing.T, g *Game) (*Engine, *platform.Headless) {
	t.Helper()
	g.ApplicationConfig = testConfig(t)
	e, err := New(g)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	t.Cleanup(func() { _ = e.Shutdown() })
	h, ok := e.Platform().(*platform.Headless)
	if !ok {
		t.Fatalf("platform is %T, want *platform.Headless", e.Platform())
	}
	return e, h
}

func TestGetVersion(t *testing.T) {
	major, minor, patch := GetVersion()
	if major != VERSION_MAJOR || minor != VERSION_MINOR || patch != VERSION_PATCH {
		t.Errorf("GetVersion() = %d.%d.%d", major, minor, patch)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("New(nil) error = %v, want ErrInvalidArgument", err)
	}
	cfg := testConfig(t)
	cfg.StartWidth = 0
	if _, err := New(&Game{ApplicationConfig: cfg}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("New() with zero width error = %v, want ErrInvalidArgument", err)
	}
}

func TestRunRequiresInitialize(t *testing.T) {
	e, err := New(&Game{ApplicationConfig: testConfig(t)})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := e.Run(); !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("Run() error = %v, want ErrNotInitialized", err)
	}
}

func TestRunStopsOnShutdown(t *testing.T) {
	var ticks, shutdowns int
	g := &Game{
		FnTick: func(e *Engine, deltaTime float64) error {
			ticks++
			if deltaTime < 0 {
				t.Errorf("tick %d: negative delta %f", ticks, deltaTime)
			}
			if ticks == 3 {
				return e.Shutdown()
			}
			return nil
		},
		FnShutdown: func(e *Engine) error {
			shutdowns++
			return nil
		},
	}
	e, _ := newTestEngine(t, g)
	if err := e.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
	if e.Tick() != 3 {
		t.Errorf("Tick() = %d, want 3", e.Tick())
	}
	if err := e.Shutdown(); err != nil {
		t.Errorf("second Shutdown() failed: %v", err)
	}
	if shutdowns != 1 {
		t.Errorf("shutdown callback ran %d times, want 1", shutdowns)
	}
	if e.Stage() != EngineStageUninitialized {
		t.Errorf("Stage() = %s, want uninitialized", e.Stage())
	}
	if e.Mixer().Running() {
		t.Error("mixer still running after Run returned")
	}
}

func TestRunEndsWhenWindowCloses(t *testing.T) {
	var ticks int
	var h *platform.Headless
	g := &Game{
		FnTick: func(e *Engine, deltaTime float64) error {
			ticks++
			h.RequestClose()
			return nil
		},
	}
	var e *Engine
	e, h = newTestEngine(t, g)
	if err := e.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if ticks != 1 {
		t.Errorf("ticks = %d, want 1", ticks)
	}
}

func TestShutdownOutsideRun(t *testing.T) {
	e, _ := newTestEngine(t, &Game{})
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
	if e.Stage() != EngineStageUninitialized {
		t.Errorf("Stage() = %s, want uninitialized", e.Stage())
	}
	if e.Mixer().Running() {
		t.Error("mixer still running after Shutdown")
	}
	if err := e.Run(); !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("Run() after Shutdown error = %v, want ErrNotInitialized", err)
	}
}

func TestFacadeRequiresInitializedEngine(t *testing.T) {
	calls := []struct {
		name string
		call func(e *Engine) error
	}{
		{"GetKeyState", func(e *Engine) error { _, err := e.GetKeyState(core.KEY_A); return err }},
		{"GetControllerButtonState", func(e *Engine) error {
			_, err := e.GetControllerButtonState(0, core.CONTROLLER_BUTTON_START)
			return err
		}},
		{"SetWindowSize", func(e *Engine) error { return e.SetWindowSize(10, 10) }},
		{"CreateImage", func(e *Engine) error { _, err := e.CreateImage(4, 4); return err }},
		{"UnloadImage", func(e *Engine) error { return e.UnloadImage(1) }},
		{"PopTransform", func(e *Engine) error { return e.PopTransform() }},
		{"Clear", func(e *Engine) error { return e.Clear(0, 0, 0, 1) }},
		{"DrawLine", func(e *Engine) error { return e.DrawLine(0, 0, 4, 4) }},
		{"GetDefaultFont", func(e *Engine) error { _, err := e.GetDefaultFont(); return err }},
		{"DrawString", func(e *Engine) error { _, err := e.DrawString(1, 12, 0, 0, "hi"); return err }},
		{"LoadSound", func(e *Engine) error { _, err := e.LoadSound("beep.wav", 0); return err }},
		{"PlaySound", func(e *Engine) error { return e.PlaySound(1) }},
		{"PlayVoice", func(e *Engine) error { return e.PlayVoice(1) }},
		{"GetVoicePosition", func(e *Engine) error { _, err := e.GetVoicePosition(1); return err }},
	}

	fresh, err := New(&Game{ApplicationConfig: testConfig(t)})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	closed, _ := newTestEngine(t, &Game{})
	if err := closed.Shutdown(); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	engines := []struct {
		name string
		e    *Engine
	}{
		{"before Initialize", fresh},
		{"after Shutdown", closed},
	}
	for _, ec := range engines {
		for _, tc := range calls {
			t.Run(ec.name+"/"+tc.name, func(t *testing.T) {
				if err := tc.call(ec.e); !errors.Is(err, core.ErrNotInitialized) {
					t.Errorf("error = %v, want ErrNotInitialized", err)
				}
			})
		}
		t.Run(ec.name+"/no error result", func(t *testing.T) {
			ec.e.PushTransform()
			ec.e.Translate(1, 1)
			ec.e.SetColor(1, 1, 1, 1)
			ec.e.SetWindowTitle("x")
			if x, y := ec.e.GetMousePosition(); x != 0 || y != 0 {
				t.Errorf("GetMousePosition() = %v, %v, want 0, 0", x, y)
			}
		})
	}
}

func TestTickErrorStopsRun(t *testing.T) {
	boom := errors.New("boom")
	e, _ := newTestEngine(t, &Game{
		FnTick: func(e *Engine, deltaTime float64) error { return boom },
	})
	if err := e.Run(); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestHandlerPanicsAreReported(t *testing.T) {
	t.Run("tick", func(t *testing.T) {
		e, _ := newTestEngine(t, &Game{
			FnTick: func(e *Engine, deltaTime float64) error { panic("tick exploded") },
		})
		err := e.Run()
		var hp *core.HandlerPanicError
		if !errors.As(err, &hp) {
			t.Fatalf("Run() error = %v, want *HandlerPanicError", err)
		}
		if hp.Handler != "tick" || hp.Tick != 1 || hp.Value != "tick exploded" {
			t.Errorf("panic error = %+v", hp)
		}
		if len(hp.Stack) == 0 {
			t.Error("panic error has no stack")
		}
	})

	t.Run("key handler", func(t *testing.T) {
		e, h := newTestEngine(t, &Game{})
		e.SetKeyEventHandler(func(key core.KeyCode, pressed bool) {
			panic("key exploded")
		})
		h.Inject(core.EventContext{Type: core.EVENT_CODE_KEY, Data: &core.KeyEvent{KeyCode: core.KEY_SPACE, Pressed: true}})

		err := e.Run()
		var hp *core.HandlerPanicError
		if !errors.As(err, &hp) {
			t.Fatalf("Run() error = %v, want *HandlerPanicError", err)
		}
		if hp.Event == nil || hp.Event.Type != core.EVENT_CODE_KEY {
			t.Errorf("panic error event = %+v, want key event", hp.Event)
		}
	})

	t.Run("error value", func(t *testing.T) {
		cause := errors.New("wrapped cause")
		e, _ := newTestEngine(t, &Game{
			FnTick: func(e *Engine, deltaTime float64) error { panic(cause) },
		})
		if err := e.Run(); !errors.Is(err, cause) {
			t.Errorf("Run() error = %v, want it to unwrap to %v", err, cause)
		}
	})
}

func TestInputReachesHandlersAndState(t *testing.T) {
	var keys []core.KeyCode
	var down bool
	var mx, my float32
	g := &Game{
		FnTick: func(e *Engine, deltaTime float64) error {
			var err error
			down, err = e.GetKeyState(core.KEY_A)
			if err != nil {
				return err
			}
			mx, my = e.GetMousePosition()
			return e.Shutdown()
		},
	}
	e, h := newTestEngine(t, g)
	e.SetKeyEventHandler(func(key core.KeyCode, pressed bool) {
		keys = append(keys, key)
	})
	h.Inject(core.EventContext{Type: core.EVENT_CODE_KEY, Data: &core.KeyEvent{KeyCode: core.KEY_A, Pressed: true}})
	h.Inject(core.EventContext{Type: core.EVENT_CODE_MOUSE_MOVED, Data: &core.MouseEvent{PosX: 10, PosY: 20}})

	if err := e.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != core.KEY_A {
		t.Errorf("key handler saw %v, want [KEY_A]", keys)
	}
	if !down {
		t.Error("GetKeyState(KEY_A) = false during the tick")
	}
	if mx != 10 || my != 20 {
		t.Errorf("GetMousePosition() = (%v, %v), want (10, 20)", mx, my)
	}
}

func TestGetKeyStateRejectsOutOfRange(t *testing.T) {
	e, _ := newTestEngine(t, &Game{})
	if _, err := e.GetKeyState(core.KEYS_MAX_KEYS); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("GetKeyState(KEYS_MAX_KEYS) error = %v, want ErrInvalidArgument", err)
	}
}

func TestControllerQueries(t *testing.T) {
	e, h := newTestEngine(t, &Game{})
	if _, err := e.GetControllerPropertyInt(0, core.CONTROLLER_PROPERTY_VENDOR_ID); !errors.Is(err, core.ErrInvalidHandle) {
		t.Fatalf("query on a disconnected controller error = %v, want ErrInvalidHandle", err)
	}

	var connected []int
	e.SetControllerConnectedEventHandler(func(controller int, c bool) {
		if c {
			connected = append(connected, controller)
		}
	})
	e.gameInstance.FnTick = func(e *Engine, deltaTime float64) error {
		tests := []struct {
			name     string
			property core.ControllerProperty
			want     int64
		}{
			{"vendor", core.CONTROLLER_PROPERTY_VENDOR_ID, 0x045e},
			{"product", core.CONTROLLER_PROPERTY_PRODUCT_ID, 0x02ea},
		}
		for _, tt := range tests {
			got, err := e.GetControllerPropertyInt(0, tt.property)
			if err != nil {
				t.Errorf("%s: GetControllerPropertyInt() failed: %v", tt.name, err)
			} else if got != tt.want {
				t.Errorf("%s: GetControllerPropertyInt() = %#x, want %#x", tt.name, got, tt.want)
			}
		}
		if name, err := e.GetControllerPropertyString(0, core.CONTROLLER_PROPERTY_NAME); err != nil || name != "pad" {
			t.Errorf("GetControllerPropertyString(NAME) = %q, %v", name, err)
		}
		if _, err := e.GetControllerPropertyInt(0, core.CONTROLLER_PROPERTY_NAME); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("GetControllerPropertyInt(NAME) error = %v, want ErrInvalidArgument", err)
		}
		if _, err := e.GetControllerPropertyString(0, core.CONTROLLER_PROPERTY_VENDOR_ID); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("GetControllerPropertyString(VENDOR_ID) error = %v, want ErrInvalidArgument", err)
		}
		if v, err := e.GetControllerAxisValue(0, core.CONTROLLER_AXIS_LEFT_TRIGGER); err != nil || v != 0.5 {
			t.Errorf("GetControllerAxisValue() = %v, %v, want 0.5", v, err)
		}
		if _, err := e.GetControllerButtonState(1, core.CONTROLLER_BUTTON_START); !errors.Is(err, core.ErrInvalidHandle) {
			t.Errorf("GetControllerButtonState(1) error = %v, want ErrInvalidHandle", err)
		}
		return e.Shutdown()
	}

	// the axis change arrives first but is delivered after the connection
	h.Inject(core.EventContext{Type: core.EVENT_CODE_CONTROLLER_AXIS, Data: &core.ControllerEvent{Controller: 0, Axis: core.CONTROLLER_AXIS_LEFT_TRIGGER, Value: 0.5}})
	h.Inject(core.EventContext{Type: core.EVENT_CODE_CONTROLLER_CONNECTED, Data: &core.ControllerEvent{
		Controller: 0,
		Connected:  true,
		Info:       core.ControllerInfo{Name: "pad", VendorID: 0x045e, ProductID: 0x02ea},
	}})
	if err := e.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(connected) != 1 || connected[0] != 0 {
		t.Errorf("connected handler saw %v, want [0]", connected)
	}
}

func TestSetWindowSizeReallocatesSurface(t *testing.T) {
	var resized [][2]int
	var sizeInTick [2]int
	g := &Game{
		FnTick: func(e *Engine, deltaTime float64) error {
			switch e.Tick() {
			case 1:
				return e.SetWindowSize(100, 50)
			case 2:
				sizeInTick[0], sizeInTick[1] = e.GetWindowSize()
				return e.Shutdown()
			}
			return nil
		},
	}
	e, _ := newTestEngine(t, g)
	e.SetWindowResizeEventHandler(func(width, height int) {
		resized = append(resized, [2]int{width, height})
	})
	if err := e.SetWindowSize(0, 10); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("SetWindowSize(0, 10) error = %v, want ErrInvalidArgument", err)
	}
	if err := e.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if sizeInTick != [2]int{100, 50} {
		t.Errorf("GetWindowSize() in tick 2 = %v, want [100 50]", sizeInTick)
	}
	if len(resized) != 1 || resized[0] != [2]int{100, 50} {
		t.Errorf("resize handler saw %v, want [[100 50]]", resized)
	}
}

func TestMinimizedWindowSkipsTick(t *testing.T) {
	var ticks int
	var h *platform.Headless
	g := &Game{
		FnTick: func(e *Engine, deltaTime float64) error {
			ticks++
			return nil
		},
	}
	var e *Engine
	e, h = newTestEngine(t, g)
	h.Inject(core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: &core.SystemEvent{}})
	h.Inject(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	if err := e.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if ticks != 0 {
		t.Errorf("tick ran %d times while minimized", ticks)
	}
}

func TestClearPresentsFrame(t *testing.T) {
	g := &Game{
		FnTick: func(e *Engine, deltaTime float64) error {
			if err := e.Clear(1, 0, 0, 1); err != nil {
				return err
			}
			return e.Shutdown()
		},
	}
	e, h := newTestEngine(t, g)
	if err := e.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if h.Presented() != 1 {
		t.Fatalf("Presented() = %d, want 1", h.Presented())
	}
	frame := h.LastFrame()
	if frame.Bounds().Dx() != 64 || frame.Bounds().Dy() != 32 {
		t.Fatalf("frame bounds = %v, want 64x32", frame.Bounds())
	}
	want := color.NRGBA{R: 255, A: 255}
	for _, p := range [][2]int{{0, 0}, {63, 31}, {20, 10}} {
		if got := frame.NRGBAAt(p[0], p[1]); got != want {
			t.Errorf("pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestUnloadingFrameBufferRestoresWindow(t *testing.T) {
	g := &Game{
		FnTick: func(e *Engine, deltaTime float64) error {
			img, err := e.CreateImage(8, 8)
			if err != nil {
				return err
			}
			if err := e.SetFrameBuffer(img); err != nil {
				return err
			}
			if err := e.UnloadImage(img); err != nil {
				return err
			}
			if fb := e.Renderer().FrameBuffer(); fb != containers.InvalidHandle {
				t.Errorf("FrameBuffer() = %v after unload, want 0", fb)
			}
			if err := e.SetFrameBuffer(img); !errors.Is(err, core.ErrInvalidHandle) {
				t.Errorf("SetFrameBuffer(stale) error = %v, want ErrInvalidHandle", err)
			}
			return e.Shutdown()
		},
	}
	e, _ := newTestEngine(t, g)
	if err := e.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
}

func TestShaderLifecycle(t *testing.T) {
	e, _ := newTestEngine(t, &Game{})
	s, err := e.CreateShader("void main() {}", "void main() {}")
	if err != nil {
		t.Fatalf("CreateShader() failed: %v", err)
	}
	if err := e.SetShader(s); err != nil {
		t.Fatalf("SetShader() failed: %v", err)
	}
	if err := e.DestroyShader(s); err != nil {
		t.Fatalf("DestroyShader() failed: %v", err)
	}
	if got := e.Renderer().Shader(); got != containers.InvalidHandle {
		t.Errorf("Shader() = %v after destroy, want 0", got)
	}
	if err := e.SetShader(s); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("SetShader(stale) error = %v, want ErrInvalidHandle", err)
	}
	if err := e.SetShader(containers.InvalidHandle); err != nil {
		t.Errorf("SetShader(0) failed: %v", err)
	}
}

func TestDrawStringCachesGlyphs(t *testing.T) {
	var pen float32
	g := &Game{
		FnTick: func(e *Engine, deltaTime float64) error {
			font, err := e.GetDefaultFont()
			if err != nil {
				return err
			}
			if pen, err = e.DrawString(font, 16, 2, 20, "Hi Hi"); err != nil {
				return err
			}
			if len(e.glyphs) != 3 {
				t.Errorf("glyph cache holds %d entries, want 3", len(e.glyphs))
			}
			if err := e.UnloadFont(font); err != nil {
				return err
			}
			if len(e.glyphs) != 0 {
				t.Errorf("glyph cache holds %d entries after unload, want 0", len(e.glyphs))
			}
			return e.Shutdown()
		},
	}
	e, _ := newTestEngine(t, g)
	if err := e.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if pen <= 2 {
		t.Errorf("DrawString() pen = %v, want past the start", pen)
	}
}

func TestAudioFacadeErrors(t *testing.T) {
	e, _ := newTestEngine(t, &Game{})
	if _, err := e.LoadSound(filepath.Join(t.TempDir(), "missing.wav"), 0); !errors.Is(err, core.ErrResourceCreation) {
		t.Errorf("LoadSound(missing) error = %v, want ErrResourceCreation", err)
	}
	if _, err := e.CreateVoice(containers.InvalidHandle, 0); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("CreateVoice(0) error = %v, want ErrInvalidHandle", err)
	}
	if err := e.PlayVoice(containers.InvalidHandle); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("PlayVoice(0) error = %v, want ErrInvalidHandle", err)
	}
}

func TestLoadApplicationConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	tomlPath := write("game.toml", "name = \"toml game\"\nstart_width = 320\ntarget_fps = 30\n")
	yamlPath := write("game.yaml", "name: yaml game\nstart_height: 200\naudio_sink: \"null\"\n")
	badPath := write("bad.toml", "name = [\n")

	tests := []struct {
		name    string
		path    string
		mock    bool
		want    func(*ApplicationConfig) bool
		wantErr bool
	}{
		{
			name: "toml",
			path: tomlPath,
			want: func(c *ApplicationConfig) bool {
				return c.Name == "toml game" && c.StartWidth == 320 && c.TargetFPS == 30 && c.StartHeight == 720
			},
		},
		{
			name: "yaml",
			path: yamlPath,
			want: func(c *ApplicationConfig) bool {
				return c.Name == "yaml game" && c.StartHeight == 200 && c.AudioSink == "null" && c.StartWidth == 1280
			},
		},
		{
			name: "mock native",
			path: tomlPath,
			mock: true,
			want: func(c *ApplicationConfig) bool {
				return c.Platform == "headless" && c.AudioSink == "null" && c.StartWidth == 320
			},
		},
		{name: "missing", path: filepath.Join(dir, "nope.toml"), wantErr: true},
		{name: "malformed", path: badPath, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mock {
				t.Setenv(MockNativeEnv, "1")
			} else {
				t.Setenv(MockNativeEnv, "")
			}
			cfg, err := LoadApplicationConfig(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadApplicationConfig() = %+v, want error", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadApplicationConfig() failed: %v", err)
			}
			if !tt.want(cfg) {
				t.Errorf("LoadApplicationConfig() = %+v", cfg)
			}
		})
	}
}

func TestStageString(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{EngineStageUninitialized, "uninitialized"},
		{EngineStageRunning, "running"},
		{EngineStageShuttingDown, "shutting_down"},
		{Stage(42), "Stage(42)"},
	}
	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", tt.stage, got, tt.want)
		}
	}
}
