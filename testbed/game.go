package testbed

import (
	"fmt"
	stdmath "math"
	"path/filepath"

	"github.com/spaghettifunk/bacon/engine"
	"github.com/spaghettifunk/bacon/engine/audio"
	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/math"
	"golang.org/x/exp/rand"
)

const (
	spriteCount = 24
	spriteSize  = 16
	fontSize    = 14
)

type sprite struct {
	x, y   float32
	vx, vy float32
	spin   float32
	angle  float32
	tint   math.Color
}

type gameState struct {
	rng *rand.Rand

	width  int
	height int

	sprite  containers.Handle
	canvas  containers.Handle
	font    containers.Handle
	beep    containers.Handle
	music   containers.Handle
	sprites []sprite

	elapsed  float64
	presses  int
	pads     map[int]string
	lastAxis float32
}

// NewTestGame builds a small scene exercising drawing, text, input and sound.
func NewTestGame(config *engine.ApplicationConfig, seed uint64) *engine.Game {
	state := &gameState{
		rng:  rand.New(rand.NewSource(seed)),
		pads: make(map[int]string),
	}
	return &engine.Game{
		ApplicationConfig: config,
		State:             state,
		FnInitialize:      state.initialize,
		FnTick:            state.tick,
		FnShutdown:        state.shutdown,
	}
}

func (s *gameState) initialize(e *engine.Engine) error {
	core.LogDebug("testbed initialize")
	s.width, s.height = e.GetWindowSize()

	var err error
	if s.sprite, err = e.CreateImage(spriteSize, spriteSize); err != nil {
		return err
	}
	if err := e.SetFrameBuffer(s.sprite); err != nil {
		return err
	}
	if err := e.Clear(1, 1, 1, 1); err != nil {
		return err
	}
	if s.canvas, err = e.CreateImage(128, 64); err != nil {
		return err
	}
	if err := e.SetFrameBuffer(containers.InvalidHandle); err != nil {
		return err
	}
	if s.font, err = e.GetDefaultFont(); err != nil {
		return err
	}

	s.sprites = make([]sprite, spriteCount)
	for i := range s.sprites {
		s.sprites[i] = sprite{
			x:    s.rng.Float32() * float32(s.width),
			y:    s.rng.Float32() * float32(s.height),
			vx:   (s.rng.Float32() - 0.5) * 240,
			vy:   (s.rng.Float32() - 0.5) * 240,
			spin: (s.rng.Float32() - 0.5) * 4,
			tint: math.NewColor(0.3+0.7*s.rng.Float32(), 0.3+0.7*s.rng.Float32(), 0.3+0.7*s.rng.Float32(), 0.9),
		}
	}

	s.loadSounds(e)

	e.SetKeyEventHandler(func(key core.KeyCode, pressed bool) {
		if !pressed {
			return
		}
		s.presses++
		switch key {
		case core.KEY_ESCAPE:
			_ = e.Shutdown()
		case core.KEY_SPACE:
			if s.beep != containers.InvalidHandle {
				if err := e.PlaySound(s.beep); err != nil {
					core.LogWarn("beep: %s", err)
				}
			}
		case core.KEY_F:
			w, h := e.GetWindowSize()
			_ = e.SetWindowSize(w+32, h+32)
		default:
			core.LogDebug("'%s' pressed", key)
		}
	})
	e.SetMouseButtonEventHandler(func(button core.MouseButton, pressed bool) {
		if !pressed {
			return
		}
		x, y := e.GetMousePosition()
		s.sprites = append(s.sprites, sprite{x: x, y: y, vx: 60, vy: -60, spin: 1, tint: math.NewColor(1, 0.5, 0.2, 1)})
	})
	e.SetWindowResizeEventHandler(func(width, height int) {
		s.width, s.height = width, height
	})
	e.SetControllerConnectedEventHandler(func(controller int, connected bool) {
		if !connected {
			delete(s.pads, controller)
			return
		}
		name, err := e.GetControllerPropertyString(controller, core.CONTROLLER_PROPERTY_NAME)
		if err != nil {
			core.LogWarn("controller %d: %s", controller, err)
			return
		}
		s.pads[controller] = name
		core.LogInfo("controller %d connected: %s", controller, name)
	})
	e.SetControllerAxisEventHandler(func(controller int, axis core.ControllerAxes, value float32) {
		if axis == core.CONTROLLER_AXIS_LEFT_THUMB_X {
			s.lastAxis = value
		}
	})
	return nil
}

// loadSounds picks up the optional testbed sounds; a missing file only
// disables the matching feature.
func (s *gameState) loadSounds(e *engine.Engine) {
	dir := "sounds"
	beep := filepath.Join(dir, "beep.wav")
	if h, err := e.LoadSound(beep, 0); err == nil {
		s.beep = h
	} else {
		core.LogWarn("no beep sound: %s", err)
	}

	h, err := e.LoadSound(filepath.Join(dir, "music.ogg"), audio.SOUND_FLAG_STREAM)
	if err != nil {
		core.LogDebug("no music: %s", err)
		return
	}
	v, err := e.CreateVoice(h, audio.VOICE_FLAG_LOOP)
	if err != nil {
		core.LogWarn("music voice: %s", err)
		return
	}
	_ = e.SetVoiceGain(v, 0.4)
	if err := e.PlayVoice(v); err != nil {
		core.LogWarn("music voice: %s", err)
	}
	s.music = h
}

func (s *gameState) tick(e *engine.Engine, deltaTime float64) error {
	s.elapsed += deltaTime
	dt := float32(deltaTime)

	if err := s.drawCanvas(e); err != nil {
		return err
	}

	if err := e.Clear(0.08, 0.08, 0.12, 1); err != nil {
		return err
	}

	for i := range s.sprites {
		sp := &s.sprites[i]
		sp.x += sp.vx * dt
		sp.y += sp.vy * dt
		sp.angle += sp.spin * dt
		if sp.x < 0 || sp.x > float32(s.width) {
			sp.vx = -sp.vx
			sp.x = math.Clamp(sp.x, 0, float32(s.width))
		}
		if sp.y < 0 || sp.y > float32(s.height) {
			sp.vy = -sp.vy
			sp.y = math.Clamp(sp.y, 0, float32(s.height))
		}

		e.PushTransform()
		e.PushColor()
		e.Translate(sp.x, sp.y)
		e.Rotate(sp.angle)
		e.MultiplyColor(sp.tint.R, sp.tint.G, sp.tint.B, sp.tint.A)
		err := e.DrawImage(s.sprite, -spriteSize/2, -spriteSize/2, spriteSize, spriteSize)
		if perr := e.PopColor(); perr != nil && err == nil {
			err = perr
		}
		if perr := e.PopTransform(); perr != nil && err == nil {
			err = perr
		}
		if err != nil {
			return err
		}
	}

	pulse := float32(0.5 + 0.5*stdmath.Sin(s.elapsed*2))
	e.PushColor()
	e.SetColor(1, 1, 1, pulse)
	err := e.DrawImageRegion(s.canvas, math.Rect{X: 8, Y: float32(s.height) - 72, W: 128, H: 64}, math.Rect{W: 128, H: 64})
	if perr := e.PopColor(); perr != nil && err == nil {
		err = perr
	}
	if err != nil {
		return err
	}

	e.SetColor(0.4, 0.9, 0.4, 1)
	if err := e.DrawLine(0, float32(s.height)/2, float32(s.width), float32(s.height)/2+s.lastAxis*40); err != nil {
		return err
	}

	m := e.Metrics()
	status := fmt.Sprintf("fps %.0f  sprites %d  keys %d  pads %d", m.FPSValue(), len(s.sprites), s.presses, len(s.pads))
	e.SetColor(1, 1, 1, 1)
	_, err = e.DrawString(s.font, fontSize, 8, 8+fontSize, status)
	return err
}

// drawCanvas renders the clock label into an offscreen image.
func (s *gameState) drawCanvas(e *engine.Engine) error {
	if err := e.SetFrameBuffer(s.canvas); err != nil {
		return err
	}
	if err := e.Clear(0.2, 0.1, 0.3, 1); err != nil {
		return err
	}
	if _, err := e.DrawString(s.font, fontSize, 6, 36, fmt.Sprintf("t=%.1fs", s.elapsed)); err != nil {
		return err
	}
	return e.SetFrameBuffer(containers.InvalidHandle)
}

func (s *gameState) shutdown(e *engine.Engine) error {
	core.LogInfo("testbed ran %.1fs", s.elapsed)
	for _, h := range []containers.Handle{s.sprite, s.canvas} {
		if h == containers.InvalidHandle {
			continue
		}
		if err := e.UnloadImage(h); err != nil {
			return err
		}
	}
	if s.beep != containers.InvalidHandle {
		return e.UnloadSound(s.beep)
	}
	return nil
}
