//go:build linux

package audio

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/spaghettifunk/bacon/engine/core"
)

const (
	paStreamPlayback  = 1
	paSampleFloat32LE = 5
)

type paSampleSpec struct {
	Format   int32
	Rate     uint32
	Channels uint8
}

var (
	pulseOnce sync.Once
	pulseErr  error

	paSimpleNew   func(server unsafe.Pointer, name string, dir int32, dev unsafe.Pointer, streamName string, ss *paSampleSpec, channelMap unsafe.Pointer, attr unsafe.Pointer, errp *int32) uintptr
	paSimpleWrite func(s uintptr, data unsafe.Pointer, bytes uintptr, errp *int32) int32
	paSimpleDrain func(s uintptr, errp *int32) int32
	paSimpleFree  func(s uintptr)
)

func loadPulse() error {
	pulseOnce.Do(func() {
		lib, err := purego.Dlopen("libpulse-simple.so.0", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			pulseErr = fmt.Errorf("libpulse-simple: %v: %w", err, core.ErrUnsupportedPlatform)
			return
		}
		purego.RegisterLibFunc(&paSimpleNew, lib, "pa_simple_new")
		purego.RegisterLibFunc(&paSimpleWrite, lib, "pa_simple_write")
		purego.RegisterLibFunc(&paSimpleDrain, lib, "pa_simple_drain")
		purego.RegisterLibFunc(&paSimpleFree, lib, "pa_simple_free")
	})
	return pulseErr
}

// PulseSink plays through the PulseAudio simple API, loaded at runtime.
type PulseSink struct {
	name   string
	stream uintptr
}

func NewPulseSink(name string) *PulseSink {
	return &PulseSink{name: name}
}

func (ps *PulseSink) Open(sampleRate, bufferFrames int) error {
	if err := loadPulse(); err != nil {
		return err
	}
	spec := paSampleSpec{
		Format:   paSampleFloat32LE,
		Rate:     uint32(sampleRate),
		Channels: 2,
	}
	var code int32
	ps.stream = paSimpleNew(nil, ps.name, paStreamPlayback, nil, "playback", &spec, nil, nil, &code)
	if ps.stream == 0 {
		return fmt.Errorf("pa_simple_new failed with code %d: %w", code, core.ErrUnsupportedPlatform)
	}
	core.LogInfo("PulseAudio sink opened (%d Hz, %d frames per period).", sampleRate, bufferFrames)
	return nil
}

func (ps *PulseSink) Write(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	var code int32
	if paSimpleWrite(ps.stream, unsafe.Pointer(&samples[0]), uintptr(len(samples)*4), &code) < 0 {
		return fmt.Errorf("pa_simple_write failed with code %d", code)
	}
	return nil
}

func (ps *PulseSink) Close() error {
	if ps.stream == 0 {
		return nil
	}
	var code int32
	paSimpleDrain(ps.stream, &code)
	paSimpleFree(ps.stream)
	ps.stream = 0
	return nil
}
