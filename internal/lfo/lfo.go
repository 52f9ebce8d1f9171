package lfo

import "math"

const (
	WaveSine     = 0
	WaveTriangle = 1
	WaveSquare   = 2
	WaveSaw      = 3
)

// LFO is a low-frequency oscillator. Instrument patches use it for vibrato
// (depth in semitones) and tremolo (depth as a gain factor).
type LFO struct {
	depth    float64
	rateHz   float64
	delay    int // samples to hold at zero after a reset
	waveform int
	phase    float64
	held     int
}

// Set configures the oscillator. Unknown waveforms fall back to sine.
func (l *LFO) Set(depth, rateHz float64, waveform int) {
	l.depth = depth
	l.rateHz = rateHz
	if waveform < WaveSine || waveform > WaveSaw {
		waveform = WaveSine
	}
	l.waveform = waveform
}

// SetDelay holds the output at zero for the first delaySec seconds after each
// Reset, so vibrato fades in on sustained notes only.
func (l *LFO) SetDelay(delaySec float64, sampleRate float64) {
	l.delay = int(delaySec * sampleRate)
}

// Sample advances one sample and returns a value in [-depth, +depth].
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate == 0 {
		return 0
	}
	if l.held < l.delay {
		l.held++
		return 0
	}
	var v float64
	switch l.waveform {
	case WaveTriangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case WaveSquare:
		v = -1
		if l.phase < 0.5 {
			v = 1
		}
	case WaveSaw:
		v = 1 - 2*l.phase
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}
	l.phase += l.rateHz / sampleRate
	l.phase -= math.Floor(l.phase)
	return v * l.depth
}

func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

func (l *LFO) Reset() {
	l.phase = 0
	l.held = 0
}
