package audio

import (
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/bacon/engine/core"
)

// Sink receives mixed periods of interleaved stereo float32 samples. Write
// blocks until the device can take more data, which paces the mixer.
type Sink interface {
	Open(sampleRate, bufferFrames int) error
	Write(samples []float32) error
	Close() error
}

// NewSink returns the sink registered under name. Unknown names and sinks
// that fail to open fall back to the null sink.
func NewSink(name string) Sink {
	switch name {
	case "pulse":
		return NewPulseSink("bacon")
	case "null", "":
		return NewNullSink()
	}
	core.LogWarn("unknown audio sink %q, using null", name)
	return NewNullSink()
}

// NullSink discards samples at the pace of a real device.
type NullSink struct {
	sampleRate int
	next       time.Time
	frames     atomic.Uint64
}

func NewNullSink() *NullSink {
	return &NullSink{}
}

func (ns *NullSink) Open(sampleRate, bufferFrames int) error {
	ns.sampleRate = sampleRate
	ns.next = time.Now()
	return nil
}

func (ns *NullSink) Write(samples []float32) error {
	n := len(samples) / 2
	ns.frames.Add(uint64(n))
	ns.next = ns.next.Add(time.Duration(n) * time.Second / time.Duration(ns.sampleRate))
	if d := time.Until(ns.next); d > 0 {
		time.Sleep(d)
	} else if d < -time.Second {
		// fell behind, do not try to catch up
		ns.next = time.Now()
	}
	return nil
}

func (ns *NullSink) Close() error {
	return nil
}

// FramesWritten returns the number of frames consumed so far.
func (ns *NullSink) FramesWritten() uint64 {
	return ns.frames.Load()
}
