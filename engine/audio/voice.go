package audio

import (
	"fmt"
	stdmath "math"

	"github.com/spaghettifunk/bacon/engine/assets/loaders"
	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/math"
)

type VoiceFlags int32

const (
	VOICE_FLAG_LOOP VoiceFlags = 1 << 0
)

func (f VoiceFlags) String() string {
	switch f {
	case 0:
		return "0"
	case VOICE_FLAG_LOOP:
		return "loop"
	}
	return fmt.Sprintf("VoiceFlags(%#x)", int32(f))
}

// Voice is one playback instance of a sound. Parameters are written by the
// logic thread; position and playing are advanced by the mixer.
type Voice struct {
	Sound containers.Handle
	Gain  float32
	Pitch float32
	Pan   float32
	Loop  bool
	// Loop points in sample frames. LoopEnd <= 0 means the end of the sound.
	LoopStart int
	LoopEnd   int
	Callback  func()

	pcm      *loaders.PCM
	position float64
	playing  bool
	// destroyed on completion
	oneShot bool
}

func newVoice(sound containers.Handle, pcm *loaders.PCM, flags VoiceFlags) Voice {
	return Voice{
		Sound: sound,
		Gain:  1,
		Pitch: 1,
		Loop:  flags&VOICE_FLAG_LOOP != 0,
		pcm:   pcm,
	}
}

func (v *Voice) Frames() int {
	return v.pcm.Frames()
}

func (v *Voice) Position() int {
	return int(v.position)
}

func (v *Voice) Playing() bool {
	return v.playing
}

func (v *Voice) loopEnd() int {
	if v.LoopEnd <= 0 || v.LoopEnd > v.Frames() {
		return v.Frames()
	}
	return v.LoopEnd
}

func finite(f float32) bool {
	return !stdmath.IsNaN(float64(f)) && !stdmath.IsInf(float64(f), 0)
}

// panGains implements the equal-power pan law: -3 dB per side at centre.
func panGains(pan float32) (left, right float32) {
	theta := float64(math.Clamp(pan, -1, 1)+1) * stdmath.Pi / 4
	return float32(stdmath.Cos(theta)), float32(stdmath.Sin(theta))
}

// frame returns the stereo sample at index i, following the loop when it
// runs past the end.
func (v *Voice) frame(i, loopStart, end int) (float32, float32) {
	if i >= end {
		if !v.Loop {
			i = end - 1
		} else {
			i = loopStart + (i-end)%(end-loopStart)
		}
	}
	return v.pcm.Samples[2*i], v.pcm.Samples[2*i+1]
}

// mix adds the voice into out (interleaved stereo) at outRate and reports
// whether the voice reached its end this period.
func (v *Voice) mix(out []float32, outRate int) (finished bool) {
	if !v.playing || v.pcm == nil {
		return false
	}
	frames := v.Frames()
	step := float64(v.Pitch) * float64(v.pcm.SampleRate) / float64(outRate)
	left, right := panGains(v.Pan)
	left *= v.Gain
	right *= v.Gain

	loopStart, end := 0, frames
	if v.Loop {
		end = v.loopEnd()
		loopStart = math.Clamp(v.LoopStart, 0, end-1)
	}

	for i := 0; i+1 < len(out); i += 2 {
		idx := int(v.position)
		frac := float32(v.position - float64(idx))
		l0, r0 := v.frame(idx, loopStart, end)
		l1, r1 := v.frame(idx+1, loopStart, end)
		out[i] += math.Lerp(l0, l1, frac) * left
		out[i+1] += math.Lerp(r0, r1, frac) * right

		v.position += step
		if v.Loop {
			if v.position >= float64(end) {
				span := float64(end - loopStart)
				v.position = float64(loopStart) + stdmath.Mod(v.position-float64(end), span)
			}
		} else if v.position >= float64(frames) {
			v.playing = false
			v.position = 0
			return true
		}
	}
	return false
}
