package core

const AVG_COUNT uint8 = 30

// Metrics tracks a rolling frame-time average and frames per second.
type Metrics struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Update records the duration of the last frame in seconds. It returns true
// when a new FPS value became available.
func (m *Metrics) Update(frameElapsedTime float64) bool {
	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	m.MStimes[m.FrameAVGCounter] = frameMS
	if m.FrameAVGCounter == AVG_COUNT-1 {
		m.MSavg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			m.MSavg += m.MStimes[i]
		}
		m.MSavg /= float64(AVG_COUNT)
	}
	m.FrameAVGCounter++
	m.FrameAVGCounter %= AVG_COUNT

	// Count all Frames.
	m.Frames++

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
		return true
	}
	return false
}

func (m *Metrics) FPSValue() float64 {
	return m.FPS
}

func (m *Metrics) FrameTime() float64 {
	return m.MSavg
}
