package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/math"
)

const (
	DEFAULT_SAMPLE_RATE   = 44100
	DEFAULT_BUFFER_FRAMES = 512
)

type MixerConfig struct {
	SampleRate   int
	BufferFrames int
	MaxVoices    int
}

type completion struct {
	voice    containers.Handle
	callback func()
	oneShot  bool
}

// Mixer mixes every playing voice into the sink on its own goroutine. The
// voice table is guarded by mu; the sound table belongs to the logic thread.
type Mixer struct {
	Config *MixerConfig
	sounds *SoundTable
	sink   Sink

	mu          sync.Mutex
	voices      *containers.HandleArray[Voice]
	completions []completion

	buffer  []float32
	running atomic.Bool
	done    chan struct{}
	stopped chan struct{}
}

func NewMixer(config *MixerConfig, sounds *SoundTable, sink Sink) (*Mixer, error) {
	if config.SampleRate <= 0 {
		config.SampleRate = DEFAULT_SAMPLE_RATE
	}
	if config.BufferFrames <= 0 {
		config.BufferFrames = DEFAULT_BUFFER_FRAMES
	}
	if config.MaxVoices <= 0 {
		return nil, fmt.Errorf("func NewMixer - config.MaxVoices must be > 0")
	}
	if sink == nil {
		sink = NewNullSink()
	}
	return &Mixer{
		Config: config,
		sounds: sounds,
		sink:   sink,
		voices: containers.NewHandleArray[Voice](32),
		buffer: make([]float32, config.BufferFrames*2),
	}, nil
}

func (m *Mixer) Sounds() *SoundTable {
	return m.sounds
}

// Start opens the sink and launches the mixing goroutine. If the sink cannot
// be opened the mixer falls back to the null sink.
func (m *Mixer) Start() error {
	if m.running.Load() {
		return core.ErrAlreadyRunning
	}
	if err := m.sink.Open(m.Config.SampleRate, m.Config.BufferFrames); err != nil {
		core.LogWarn("audio sink unavailable (%s), mixing into the null sink", err)
		m.sink = NewNullSink()
		if err := m.sink.Open(m.Config.SampleRate, m.Config.BufferFrames); err != nil {
			return err
		}
	}
	m.done = make(chan struct{})
	m.stopped = make(chan struct{})
	m.running.Store(true)
	go m.loop()
	core.LogInfo("Audio mixer started (%d Hz, %d frames).", m.Config.SampleRate, m.Config.BufferFrames)
	return nil
}

func (m *Mixer) loop() {
	defer close(m.stopped)
	for {
		select {
		case <-m.done:
			return
		default:
		}
		m.Mix(m.buffer)
		if err := m.sink.Write(m.buffer); err != nil {
			core.LogError("audio sink write failed: %s", err)
			return
		}
	}
}

// Stop joins the mixing goroutine and closes the sink. Voices keep their
// state so a stopped mixer can still be queried.
func (m *Mixer) Stop() error {
	if !m.running.CompareAndSwap(true, false) {
		return nil
	}
	close(m.done)
	<-m.stopped
	core.LogInfo("Audio mixer stopped.")
	return m.sink.Close()
}

func (m *Mixer) Running() bool {
	return m.running.Load()
}

// Mix renders one period of interleaved stereo samples into out.
func (m *Mixer) Mix(out []float32) {
	for i := range out {
		out[i] = 0
	}
	m.mu.Lock()
	m.voices.Each(func(h containers.Handle, v *Voice) {
		if v.mix(out, m.Config.SampleRate) {
			m.completions = append(m.completions, completion{voice: h, callback: v.Callback, oneShot: v.oneShot})
		}
	})
	m.mu.Unlock()
	for i := range out {
		out[i] = math.Clamp(out[i], -1, 1)
	}
}

// DispatchCompletions runs the callbacks of voices that finished since the
// last call and destroys finished fire-and-forget voices. Logic thread only.
func (m *Mixer) DispatchCompletions() int {
	m.mu.Lock()
	pending := m.completions
	m.completions = nil
	m.mu.Unlock()

	for _, c := range pending {
		if c.callback != nil {
			c.callback()
		}
		if c.oneShot {
			if err := m.DestroyVoice(c.voice); err != nil {
				core.LogDebug("one-shot voice %v already gone: %s", c.voice, err)
			}
		}
	}
	return len(pending)
}

// CreateVoice creates a stopped voice for sound. The sound stays alive
// until the voice is destroyed.
func (m *Mixer) CreateVoice(sound containers.Handle, flags VoiceFlags) (containers.Handle, error) {
	pcm, err := m.sounds.acquire(sound)
	if err != nil {
		return containers.InvalidHandle, fmt.Errorf("create voice: %w", err)
	}
	m.mu.Lock()
	var h containers.Handle
	if m.voices.Len() >= m.Config.MaxVoices {
		err = fmt.Errorf("voice limit of %d reached: %w", m.Config.MaxVoices, core.ErrResourceCreation)
	} else {
		h, err = m.voices.Alloc(newVoice(sound, pcm, flags))
	}
	m.mu.Unlock()
	if err != nil {
		m.sounds.release(sound)
		return containers.InvalidHandle, err
	}
	core.LogDebug("created voice %v for sound %v", h, sound)
	return h, nil
}

func (m *Mixer) DestroyVoice(h containers.Handle) error {
	m.mu.Lock()
	v, err := m.voices.Free(h)
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("destroy voice %v: %w", h, err)
	}
	m.sounds.release(v.Sound)
	return nil
}

// PlaySound starts a voice that destroys itself when it finishes.
func (m *Mixer) PlaySound(sound containers.Handle) error {
	h, err := m.CreateVoice(sound, 0)
	if err != nil {
		return err
	}
	return m.withVoice(h, func(v *Voice) error {
		v.oneShot = true
		v.playing = true
		return nil
	})
}

func (m *Mixer) withVoice(h containers.Handle, fn func(v *Voice) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := m.voices.Get(h)
	if err != nil {
		return fmt.Errorf("voice %v: %w", h, err)
	}
	return fn(v)
}

func (m *Mixer) PlayVoice(h containers.Handle) error {
	return m.withVoice(h, func(v *Voice) error {
		v.playing = true
		return nil
	})
}

// StopVoice pauses playback and keeps the position. No callback runs.
func (m *Mixer) StopVoice(h containers.Handle) error {
	return m.withVoice(h, func(v *Voice) error {
		v.playing = false
		return nil
	})
}

func (m *Mixer) SetVoiceGain(h containers.Handle, gain float32) error {
	if !finite(gain) || gain < 0 {
		return fmt.Errorf("voice gain %v: %w", gain, core.ErrInvalidArgument)
	}
	return m.withVoice(h, func(v *Voice) error {
		v.Gain = gain
		return nil
	})
}

func (m *Mixer) SetVoicePitch(h containers.Handle, pitch float32) error {
	if !finite(pitch) || pitch <= 0 {
		return fmt.Errorf("voice pitch %v: %w", pitch, core.ErrInvalidArgument)
	}
	return m.withVoice(h, func(v *Voice) error {
		v.Pitch = pitch
		return nil
	})
}

// SetVoicePan clamps pan to -1 (left) .. 1 (right).
func (m *Mixer) SetVoicePan(h containers.Handle, pan float32) error {
	if !finite(pan) {
		return fmt.Errorf("voice pan %v: %w", pan, core.ErrInvalidArgument)
	}
	return m.withVoice(h, func(v *Voice) error {
		v.Pan = math.Clamp(pan, -1, 1)
		return nil
	})
}

func (m *Mixer) SetVoiceLoop(h containers.Handle, loop bool) error {
	return m.withVoice(h, func(v *Voice) error {
		v.Loop = loop
		return nil
	})
}

// SetVoiceLoopPoints sets the loop range in frames. end <= 0 loops to the
// end of the sound.
func (m *Mixer) SetVoiceLoopPoints(h containers.Handle, start, end int) error {
	return m.withVoice(h, func(v *Voice) error {
		effectiveEnd := end
		if end <= 0 {
			effectiveEnd = v.Frames()
		}
		if start < 0 || effectiveEnd > v.Frames() || start >= effectiveEnd {
			return fmt.Errorf("loop points [%d, %d) of %d frames: %w", start, end, v.Frames(), core.ErrInvalidRange)
		}
		v.LoopStart = start
		v.LoopEnd = end
		return nil
	})
}

// SetVoiceCallback registers fn to run on the logic thread when the voice
// plays to its end. nil clears it.
func (m *Mixer) SetVoiceCallback(h containers.Handle, fn func()) error {
	return m.withVoice(h, func(v *Voice) error {
		v.Callback = fn
		return nil
	})
}

func (m *Mixer) IsVoicePlaying(h containers.Handle) (bool, error) {
	var playing bool
	err := m.withVoice(h, func(v *Voice) error {
		playing = v.playing
		return nil
	})
	return playing, err
}

func (m *Mixer) GetVoicePosition(h containers.Handle) (int, error) {
	var pos int
	err := m.withVoice(h, func(v *Voice) error {
		pos = v.Position()
		return nil
	})
	return pos, err
}

// SetVoicePosition seeks to frame pos, which must lie in [0, frames).
func (m *Mixer) SetVoicePosition(h containers.Handle, pos int) error {
	return m.withVoice(h, func(v *Voice) error {
		if pos < 0 || pos >= v.Frames() {
			return fmt.Errorf("voice position %d of %d frames: %w", pos, v.Frames(), core.ErrInvalidRange)
		}
		v.position = float64(pos)
		return nil
	})
}

func (m *Mixer) VoiceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voices.Len()
}

// DestroyVoices destroys every voice, releasing their sounds. The mixer
// must be stopped first.
func (m *Mixer) DestroyVoices() {
	m.mu.Lock()
	handles := m.voices.Handles()
	m.mu.Unlock()
	for _, h := range handles {
		_ = m.DestroyVoice(h)
	}
	m.mu.Lock()
	m.completions = nil
	m.mu.Unlock()
}
