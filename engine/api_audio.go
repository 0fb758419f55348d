package engine

import (
	"github.com/spaghettifunk/bacon/engine/audio"
	"github.com/spaghettifunk/bacon/engine/containers"
)

// LoadSound loads a .wav or .ogg file. With SOUND_FLAG_STREAM the file is
// decoded when the first voice is created.
func (e *Engine) LoadSound(path string, flags audio.SoundFlags) (containers.Handle, error) {
	if err := e.ready(); err != nil {
		return containers.InvalidHandle, err
	}
	return e.sounds.LoadSound(path, flags)
}

// UnloadSound invalidates the handle; voices already playing it continue.
func (e *Engine) UnloadSound(sound containers.Handle) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.sounds.UnloadSound(sound)
}

// PlaySound plays a sound once on a voice that is destroyed when it ends.
func (e *Engine) PlaySound(sound containers.Handle) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.mixer.PlaySound(sound)
}

func (e *Engine) CreateVoice(sound containers.Handle, flags audio.VoiceFlags) (containers.Handle, error) {
	if err := e.ready(); err != nil {
		return containers.InvalidHandle, err
	}
	return e.mixer.CreateVoice(sound, flags)
}

// voice runs fn against the mixer once the engine is up.
func (e *Engine) voice(fn func(m *audio.Mixer) error) error {
	if err := e.ready(); err != nil {
		return err
	}
	return fn(e.mixer)
}

func (e *Engine) DestroyVoice(voice containers.Handle) error {
	return e.voice(func(m *audio.Mixer) error { return m.DestroyVoice(voice) })
}

func (e *Engine) PlayVoice(voice containers.Handle) error {
	return e.voice(func(m *audio.Mixer) error { return m.PlayVoice(voice) })
}

func (e *Engine) StopVoice(voice containers.Handle) error {
	return e.voice(func(m *audio.Mixer) error { return m.StopVoice(voice) })
}

func (e *Engine) SetVoiceGain(voice containers.Handle, gain float32) error {
	return e.voice(func(m *audio.Mixer) error { return m.SetVoiceGain(voice, gain) })
}

func (e *Engine) SetVoicePitch(voice containers.Handle, pitch float32) error {
	return e.voice(func(m *audio.Mixer) error { return m.SetVoicePitch(voice, pitch) })
}

func (e *Engine) SetVoicePan(voice containers.Handle, pan float32) error {
	return e.voice(func(m *audio.Mixer) error { return m.SetVoicePan(voice, pan) })
}

func (e *Engine) SetVoiceLoop(voice containers.Handle, loop bool) error {
	return e.voice(func(m *audio.Mixer) error { return m.SetVoiceLoop(voice, loop) })
}

func (e *Engine) SetVoiceLoopPoints(voice containers.Handle, start, end int) error {
	return e.voice(func(m *audio.Mixer) error { return m.SetVoiceLoopPoints(voice, start, end) })
}

// SetVoiceCallback runs fn on the logic thread, once, when the voice plays
// to its end.
func (e *Engine) SetVoiceCallback(voice containers.Handle, fn func()) error {
	return e.voice(func(m *audio.Mixer) error { return m.SetVoiceCallback(voice, fn) })
}

func (e *Engine) IsVoicePlaying(voice containers.Handle) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	return e.mixer.IsVoicePlaying(voice)
}

func (e *Engine) GetVoicePosition(voice containers.Handle) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.mixer.GetVoicePosition(voice)
}

func (e *Engine) SetVoicePosition(voice containers.Handle, position int) error {
	return e.voice(func(m *audio.Mixer) error { return m.SetVoicePosition(voice, position) })
}
