package audio

import (
	"errors"
	stdmath "math"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spaghettifunk/bacon/engine/assets"
	"github.com/spaghettifunk/bacon/engine/assets/loaders"
	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
)

const testRate = 100

func newTestMixer(t *testing.T) *Mixer {
	t.Helper()
	st, err := NewSoundTable(&SoundTableConfig{MaxSoundCount: 8}, assets.NewAssetManager())
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMixer(&MixerConfig{SampleRate: testRate, BufferFrames: 4, MaxVoices: 8}, st, NewNullSink())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = m.Stop() })
	return m
}

// constantSound has frames stereo frames of value at testRate.
func constantSound(t *testing.T, m *Mixer, frames int, value float32) containers.Handle {
	t.Helper()
	samples := make([]float32, frames*2)
	for i := range samples {
		samples[i] = value
	}
	h, err := m.Sounds().AddSound("const", &loaders.PCM{Samples: samples, SampleRate: testRate, SourceChannels: 2})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func near(a, b float32) bool {
	return stdmath.Abs(float64(a-b)) < 1e-4
}

func TestPanGainsEqualPower(t *testing.T) {
	tests := []struct {
		pan         float32
		left, right float32
	}{
		{-1, 1, 0},
		{0, float32(stdmath.Sqrt2 / 2), float32(stdmath.Sqrt2 / 2)},
		{1, 0, 1},
		{3, 0, 1},
	}
	for _, tc := range tests {
		l, r := panGains(tc.pan)
		if !near(l, tc.left) || !near(r, tc.right) {
			t.Errorf("panGains(%v) = %v, %v; want %v, %v", tc.pan, l, r, tc.left, tc.right)
		}
		if p := l*l + r*r; !near(p, 1) {
			t.Errorf("panGains(%v) power = %v, want 1", tc.pan, p)
		}
	}
}

func TestVoicePlaysToCompletionOnce(t *testing.T) {
	m := newTestMixer(t)
	sound := constantSound(t, m, 6, 0.5)
	voice, err := m.CreateVoice(sound, 0)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	_ = m.SetVoiceCallback(voice, func() { calls++ })
	_ = m.SetVoicePan(voice, -1)
	_ = m.PlayVoice(voice)

	out := make([]float32, 8)
	m.Mix(out)
	if !near(out[0], 0.5) || !near(out[1], 0) {
		t.Errorf("first frame = %v, %v; want 0.5, 0", out[0], out[1])
	}
	if pos, _ := m.GetVoicePosition(voice); pos != 4 {
		t.Errorf("position = %d, want 4", pos)
	}
	m.Mix(out)
	if !near(out[2], 0.5) || !near(out[4], 0) {
		t.Errorf("second period = %v, want the last frames then silence", out)
	}

	// the mixer may run again before the logic thread dispatches
	m.Mix(out)
	if n := m.DispatchCompletions(); n != 1 {
		t.Errorf("DispatchCompletions() = %d, want 1", n)
	}
	m.Mix(out)
	m.DispatchCompletions()
	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
	if playing, _ := m.IsVoicePlaying(voice); playing {
		t.Error("voice still playing after its end")
	}
	if pos, _ := m.GetVoicePosition(voice); pos != 0 {
		t.Errorf("position after completion = %d, want 0", pos)
	}
}

func TestLoopingVoiceNeverCompletes(t *testing.T) {
	m := newTestMixer(t)
	sound := constantSound(t, m, 6, 0.25)
	voice, _ := m.CreateVoice(sound, VOICE_FLAG_LOOP)
	if err := m.SetVoiceLoopPoints(voice, 2, 5); err != nil {
		t.Fatal(err)
	}
	_ = m.PlayVoice(voice)

	out := make([]float32, 8)
	for i := 0; i < 10; i++ {
		m.Mix(out)
		pos, _ := m.GetVoicePosition(voice)
		if i > 0 && (pos < 2 || pos >= 5) {
			t.Fatalf("period %d: position %d left the loop [2, 5)", i, pos)
		}
	}
	if n := m.DispatchCompletions(); n != 0 {
		t.Errorf("looping voice completed %d times", n)
	}

	for _, pts := range [][2]int{{-1, 3}, {4, 4}, {0, 7}, {6, 0}} {
		if err := m.SetVoiceLoopPoints(voice, pts[0], pts[1]); !errors.Is(err, core.ErrInvalidRange) {
			t.Errorf("SetVoiceLoopPoints(%v) error = %v, want ErrInvalidRange", pts, err)
		}
	}
}

func TestPitchResamples(t *testing.T) {
	m := newTestMixer(t)
	sound := constantSound(t, m, 8, 1)
	voice, _ := m.CreateVoice(sound, 0)
	_ = m.SetVoicePitch(voice, 2)
	_ = m.PlayVoice(voice)

	m.Mix(make([]float32, 8))
	if playing, _ := m.IsVoicePlaying(voice); playing {
		t.Error("voice at pitch 2 should finish 8 frames in 4 output frames")
	}
	if err := m.SetVoicePitch(voice, 0); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("SetVoicePitch(0) error = %v", err)
	}
}

func TestVoiceSettersRejectNonFinite(t *testing.T) {
	nan := float32(stdmath.NaN())
	inf := float32(stdmath.Inf(1))
	tests := []struct {
		name  string
		set   func(m *Mixer, h containers.Handle, v float32) error
		value float32
	}{
		{"gain NaN", (*Mixer).SetVoiceGain, nan},
		{"gain +Inf", (*Mixer).SetVoiceGain, inf},
		{"gain -Inf", (*Mixer).SetVoiceGain, -inf},
		{"pitch NaN", (*Mixer).SetVoicePitch, nan},
		{"pitch +Inf", (*Mixer).SetVoicePitch, inf},
		{"pitch -Inf", (*Mixer).SetVoicePitch, -inf},
		{"pan NaN", (*Mixer).SetVoicePan, nan},
		{"pan +Inf", (*Mixer).SetVoicePan, inf},
		{"pan -Inf", (*Mixer).SetVoicePan, -inf},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMixer(t)
			sound := constantSound(t, m, 6, 0.5)
			voice, _ := m.CreateVoice(sound, VOICE_FLAG_LOOP)
			_ = m.PlayVoice(voice)

			if err := tc.set(m, voice, tc.value); !errors.Is(err, core.ErrInvalidArgument) {
				t.Fatalf("error = %v, want ErrInvalidArgument", err)
			}
			v, err := m.voices.Get(voice)
			if err != nil {
				t.Fatal(err)
			}
			if v.Gain != 1 || v.Pitch != 1 || v.Pan != 0 {
				t.Errorf("voice changed to gain %v pitch %v pan %v", v.Gain, v.Pitch, v.Pan)
			}

			out := make([]float32, 8)
			for i := 0; i < 2; i++ {
				m.Mix(out)
				for j, s := range out {
					if !finite(s) {
						t.Fatalf("mix %d sample %d = %v", i, j, s)
					}
				}
			}
			if pos, _ := m.GetVoicePosition(voice); pos < 0 || pos >= 6 {
				t.Errorf("position = %d, want within [0, 6)", pos)
			}
		})
	}
}

func TestSetVoicePosition(t *testing.T) {
	m := newTestMixer(t)
	sound := constantSound(t, m, 10, 0)
	voice, _ := m.CreateVoice(sound, 0)

	tests := []struct {
		pos  int
		want error
	}{
		{0, nil},
		{9, nil},
		{10, core.ErrInvalidRange},
		{-1, core.ErrInvalidRange},
	}
	for _, tc := range tests {
		_ = m.SetVoicePosition(voice, 3)
		err := m.SetVoicePosition(voice, tc.pos)
		if !errors.Is(err, tc.want) {
			t.Errorf("SetVoicePosition(%d) error = %v, want %v", tc.pos, err, tc.want)
		}
		want := tc.pos
		if tc.want != nil {
			want = 3
		}
		if got, _ := m.GetVoicePosition(voice); got != want {
			t.Errorf("after SetVoicePosition(%d) position = %d, want %d", tc.pos, got, want)
		}
	}
}

func TestUnloadSoundDefersWhileVoiceAlive(t *testing.T) {
	m := newTestMixer(t)
	st := m.Sounds()
	sound := constantSound(t, m, 4, 0.5)
	voice, _ := m.CreateVoice(sound, 0)
	_ = m.PlayVoice(voice)

	if err := st.UnloadSound(sound); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(sound); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("Get(unloaded) error = %v", err)
	}
	if _, err := m.CreateVoice(sound, 0); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("CreateVoice(unloaded) error = %v", err)
	}
	if st.Count() != 1 {
		t.Fatalf("sound freed while a voice references it")
	}

	out := make([]float32, 4)
	m.Mix(out)
	if !near(out[0], 0.5*float32(stdmath.Sqrt2/2)) {
		t.Errorf("voice of unloaded sound mixed %v", out[0])
	}

	if err := m.DestroyVoice(voice); err != nil {
		t.Fatal(err)
	}
	if st.Count() != 0 {
		t.Errorf("Count() = %d after the last voice, want 0", st.Count())
	}
	if err := m.DestroyVoice(voice); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("second DestroyVoice() error = %v", err)
	}
}

func TestPlaySoundDestroysVoice(t *testing.T) {
	m := newTestMixer(t)
	sound := constantSound(t, m, 2, 0.1)
	if err := m.PlaySound(sound); err != nil {
		t.Fatal(err)
	}
	if m.VoiceCount() != 1 {
		t.Fatalf("VoiceCount() = %d, want 1", m.VoiceCount())
	}
	m.Mix(make([]float32, 8))
	m.DispatchCompletions()
	if m.VoiceCount() != 0 {
		t.Errorf("VoiceCount() = %d after completion, want 0", m.VoiceCount())
	}
	if refs := m.Sounds().Refs(sound); refs != 1 {
		t.Errorf("sound refs = %d, want 1", refs)
	}
}

func TestMixClampsOutput(t *testing.T) {
	m := newTestMixer(t)
	sound := constantSound(t, m, 8, 1)
	for i := 0; i < 3; i++ {
		v, _ := m.CreateVoice(sound, 0)
		_ = m.PlayVoice(v)
	}
	out := make([]float32, 4)
	m.Mix(out)
	for i, s := range out {
		if s != 1 {
			t.Errorf("sample %d = %v, want clamped 1", i, s)
		}
	}
}

func writeWAV(t *testing.T, path string, frames int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data := make([]int, frames)
	for i := range data {
		data[i] = 1000
	}
	enc := wav.NewEncoder(f, testRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: testRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSound(t *testing.T) {
	m := newTestMixer(t)
	st := m.Sounds()
	dir := t.TempDir()
	path := filepath.Join(dir, "blip.wav")
	writeWAV(t, path, 12)

	tests := []struct {
		name  string
		flags SoundFlags
	}{
		{"detect", 0},
		{"explicit wav", SOUND_FLAG_FORMAT_WAV},
		{"stream", SOUND_FLAG_STREAM},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := st.LoadSound(path, tc.flags)
			if err != nil {
				t.Fatalf("LoadSound() failed: %v", err)
			}
			s, _ := st.Get(h)
			if tc.flags&SOUND_FLAG_STREAM != 0 && s.pcm != nil {
				t.Error("streamed sound decoded before its first voice")
			}
			v, err := m.CreateVoice(h, 0)
			if err != nil {
				t.Fatal(err)
			}
			if frames, _ := st.Frames(h); frames != 12 {
				t.Errorf("Frames() = %d, want 12", frames)
			}
			_ = m.DestroyVoice(v)
			_ = st.UnloadSound(h)
		})
	}

	failures := []struct {
		name  string
		path  string
		flags SoundFlags
	}{
		{"missing", filepath.Join(dir, "none.wav"), 0},
		{"missing stream", filepath.Join(dir, "none.ogg"), SOUND_FLAG_STREAM},
		{"unknown extension", filepath.Join(dir, "blip.mp3"), 0},
		{"wrong decoder", path, SOUND_FLAG_FORMAT_OGG},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := st.LoadSound(tc.path, tc.flags); !errors.Is(err, core.ErrResourceCreation) {
				t.Errorf("LoadSound() error = %v, want ErrResourceCreation", err)
			}
		})
	}

	if _, err := st.LoadSound(filepath.Join(dir, "blip.mp3"), 0); !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Errorf("LoadSound(.mp3) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestMixerStartStop(t *testing.T) {
	m := newTestMixer(t)
	sink := m.sink.(*NullSink)
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); !errors.Is(err, core.ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for sink.FramesWritten() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}
	written := sink.FramesWritten()
	if written == 0 {
		t.Fatal("mixer never wrote to the sink")
	}
	time.Sleep(20 * time.Millisecond)
	if sink.FramesWritten() != written {
		t.Error("mixer kept writing after Stop()")
	}
	if err := m.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestSoundFlagsString(t *testing.T) {
	tests := []struct {
		flags SoundFlags
		want  string
	}{
		{0, "detect"},
		{SOUND_FLAG_FORMAT_OGG, "ogg"},
		{SOUND_FLAG_STREAM | SOUND_FLAG_FORMAT_WAV, "stream | wav"},
	}
	for _, tc := range tests {
		if got := tc.flags.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
