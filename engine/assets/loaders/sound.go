package loaders

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jfreymuth/oggvorbis"
	"github.com/spaghettifunk/bacon/engine/core"
)

// SoundFormat selects the decoder. It matches bits 16..17 of the sound flags.
type SoundFormat int32

const (
	SOUND_FORMAT_DETECT SoundFormat = 0
	SOUND_FORMAT_WAV    SoundFormat = 1 << 16
	SOUND_FORMAT_OGG    SoundFormat = 2 << 16
	SOUND_FORMAT_MASK   SoundFormat = 3 << 16
)

func (f SoundFormat) String() string {
	switch f {
	case SOUND_FORMAT_DETECT:
		return "detect"
	case SOUND_FORMAT_WAV:
		return "wav"
	case SOUND_FORMAT_OGG:
		return "ogg"
	}
	return fmt.Sprintf("SoundFormat(%#x)", int32(f))
}

var ErrUnknownSoundFormat = fmt.Errorf("unknown sound format: %w", core.ErrUnsupportedFormat)

// PCM holds decoded audio as interleaved stereo float32 frames.
type PCM struct {
	Samples    []float32
	SampleRate int
	// Channel count of the source before conversion to stereo.
	SourceChannels int
}

// Frames returns the number of stereo frames.
func (p *PCM) Frames() int {
	return len(p.Samples) / 2
}

type SoundParams struct {
	Format SoundFormat
}

type SoundLoader struct{}

func (sl *SoundLoader) Load(path string, params interface{}) (*Resource, error) {
	format := SOUND_FORMAT_DETECT
	if p, ok := params.(*SoundParams); ok {
		format = p.Format & SOUND_FORMAT_MASK
	}
	if format == SOUND_FORMAT_DETECT {
		format = DetectSoundFormat(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var pcm *PCM
	switch format {
	case SOUND_FORMAT_WAV:
		pcm, err = DecodeWAV(file)
	case SOUND_FORMAT_OGG:
		pcm, err = DecodeOgg(file)
	default:
		err = ErrUnknownSoundFormat
	}
	if err != nil {
		return nil, fmt.Errorf("%s (%v): %w", path, format, err)
	}
	return &Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(pcm.Samples) * 4),
		Data:     pcm,
	}, nil
}

func (sl *SoundLoader) Unload(resource *Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

// DetectSoundFormat picks a decoder from the file extension.
func DetectSoundFormat(path string) SoundFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return SOUND_FORMAT_WAV
	case ".ogg", ".oga":
		return SOUND_FORMAT_OGG
	}
	return SOUND_FORMAT_DETECT
}

func DecodeWAV(r io.ReadSeeker) (*PCM, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, errors.New("wav file without format")
	}

	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(d.BitDepth)
	}
	return toStereo(normalize(buf), buf.Format.NumChannels, buf.Format.SampleRate), nil
}

// normalize maps integer PCM to [-1, 1).
func normalize(buf *audio.IntBuffer) []float32 {
	depth := buf.SourceBitDepth
	if depth <= 0 || depth > 32 {
		depth = 16
	}
	scale := float32(int64(1) << (depth - 1))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		if depth == 8 {
			// 8-bit wav data is unsigned
			samples[i] = float32(v-128) / 128
		} else {
			samples[i] = float32(v) / scale
		}
	}
	return samples
}

func DecodeOgg(r io.Reader) (*PCM, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("ogg stream without format")
	}
	return toStereo(samples, format.Channels, format.SampleRate), nil
}

// toStereo duplicates mono input and keeps the first two channels of
// anything wider.
func toStereo(samples []float32, channels, rate int) *PCM {
	pcm := &PCM{SampleRate: rate, SourceChannels: channels}
	if channels == 2 {
		pcm.Samples = samples[:len(samples)/2*2]
		return pcm
	}
	frames := len(samples) / channels
	pcm.Samples = make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		l := samples[i*channels]
		r := l
		if channels > 1 {
			r = samples[i*channels+1]
		}
		pcm.Samples[i*2] = l
		pcm.Samples[i*2+1] = r
	}
	return pcm
}
