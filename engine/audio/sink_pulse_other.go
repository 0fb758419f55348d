//go:build !linux

package audio

import "github.com/spaghettifunk/bacon/engine/core"

// PulseSink is only available on Linux.
type PulseSink struct{}

func NewPulseSink(name string) *PulseSink {
	return &PulseSink{}
}

func (ps *PulseSink) Open(sampleRate, bufferFrames int) error {
	return core.ErrUnsupportedPlatform
}

func (ps *PulseSink) Write(samples []float32) error {
	return core.ErrUnsupportedPlatform
}

func (ps *PulseSink) Close() error {
	return nil
}
