// Package chiptune is a small polyphonic synthesizer with NES-style voices.
// Every note carries its own Patch, so one engine can play all instruments.
package chiptune

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/msq-go/internal/lfo"
)

const twoPi = math.Pi * 2

type Params struct {
	Voices     int
	MasterGain float64
	StepLevels int
	LPFCutoff  float64 // lowpass filter cutoff in Hz (0 = disabled)
}

func DefaultParams() Params {
	return Params{
		Voices:     24,
		MasterGain: 0.28,
		StepLevels: 16,
		LPFCutoff:  12000,
	}
}

type Wave int

const (
	WavePulse Wave = iota
	WaveTriangle
	WaveSaw
	WaveNoise
)

func (w Wave) String() string {
	switch w {
	case WavePulse:
		return "pulse"
	case WaveTriangle:
		return "triangle"
	case WaveSaw:
		return "saw"
	case WaveNoise:
		return "noise"
	}
	return "unknown"
}

// Patch describes how a single note sounds. Gate is the time after which the
// note releases on its own; zero holds until NoteOff.
type Patch struct {
	Wave    Wave
	Duty    float64 // pulse width, 0..1
	Attack  float64 // seconds
	Decay   float64
	Sustain float64 // level, 0..1
	Release float64
	Gate    float64
	Octave  int
	Level   float64
	Pan     float64 // -1 left .. +1 right

	VibratoDepth float64 // semitones
	VibratoRate  float64 // Hz
	VibratoDelay float64 // seconds
	Sweep        float64 // semitones per second, applied from note-on
	ShortNoise   bool    // 93-step noise period instead of 32767
}

type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envOff
)

// fastRelease is used when a voice is cut to make room for the next chord.
const fastRelease = 0.01

type voice struct {
	active    bool
	id        int
	age       int
	patch     Patch
	freq      float64
	phase     float64
	velocity  float64
	env       float64
	envState  envState
	release   float64
	gateLeft  int
	noiseLFSR uint16
	vibrato   lfo.LFO
}

type Engine struct {
	sampleRate float64
	params     Params
	voices     []voice
	nextID     int
	masterGain uint64
	dcPrevInL  float64
	dcPrevOutL float64
	dcPrevInR  float64
	dcPrevOutR float64
	lpfL       float64
	lpfR       float64
	lpfAlpha   float64
}

func New(sampleRate int, params Params) *Engine {
	if params.Voices <= 0 {
		params.Voices = 24
	}
	if params.StepLevels <= 1 {
		params.StepLevels = 16
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		voices:     make([]voice, params.Voices),
		masterGain: math.Float64bits(params.MasterGain),
	}
	for i := range e.voices {
		e.voices[i].noiseLFSR = uint16(0xACE1 + i*97)
	}
	if params.LPFCutoff > 0 && params.LPFCutoff < float64(sampleRate)/2 {
		rc := 1.0 / (twoPi * params.LPFCutoff)
		dt := 1.0 / float64(sampleRate)
		e.lpfAlpha = dt / (rc + dt)
	}
	return e
}

func (e *Engine) SampleRate() int { return int(e.sampleRate) }

// NoteOn starts key (a MIDI key number) with the given patch and returns a
// voice id for NoteOff and Cut. Velocity is 0..1.
func (e *Engine) NoteOn(key int, velocity float64, p Patch) int {
	slot := e.stealVoice()
	id := e.nextID
	e.nextID++
	v := &e.voices[slot]
	v.active = true
	v.id = id
	v.age = 0
	v.patch = p
	v.freq = midiToFreq(key + 12*p.Octave)
	v.phase = 0
	v.velocity = clamp(velocity, 0, 1)
	v.env = 0
	v.envState = envAttack
	v.release = p.Release
	v.gateLeft = int(p.Gate * e.sampleRate)
	v.vibrato.Set(p.VibratoDepth, p.VibratoRate, lfo.WaveSine)
	v.vibrato.SetDelay(p.VibratoDelay, e.sampleRate)
	v.vibrato.Reset()
	if v.noiseLFSR == 0 {
		v.noiseLFSR = 0xACE1
	}
	return id
}

// NoteOff moves a voice into its release stage.
func (e *Engine) NoteOff(id int) {
	if v := e.find(id); v != nil && v.envState != envRelease {
		v.envState = envRelease
	}
}

// Cut releases a voice almost immediately.
func (e *Engine) Cut(id int) {
	if v := e.find(id); v != nil {
		v.envState = envRelease
		v.release = fastRelease
	}
}

// Playing reports whether voice id is still sounding.
func (e *Engine) Playing(id int) bool {
	return e.find(id) != nil
}

func (e *Engine) find(id int) *voice {
	for i := range e.voices {
		v := &e.voices[i]
		if v.active && v.id == id {
			return v
		}
	}
	return nil
}

func (e *Engine) RenderFrame() (float32, float32) {
	gain := e.masterGainValue()
	var l, r float64
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active {
			continue
		}
		v.age++
		if v.gateLeft > 0 {
			v.gateLeft--
			if v.gateLeft == 0 && v.envState != envRelease {
				v.envState = envRelease
			}
		}
		env := e.advanceEnv(v)
		if !v.active {
			continue
		}
		semis := v.vibrato.Sample(e.sampleRate)
		if v.patch.Sweep != 0 {
			semis += v.patch.Sweep * float64(v.age) / e.sampleRate
		}
		freq := v.freq
		if semis != 0 {
			freq *= math.Pow(2, semis/12.0)
		}
		sample := e.renderWave(v, freq)
		level := quantize(env*(0.15+v.velocity*0.85), e.params.StepLevels)
		sig := sample * level * patchLevel(v.patch)
		angle := ((clamp(v.patch.Pan, -1, 1) + 1) / 2) * (math.Pi / 2.0)
		l += sig * math.Cos(angle) * gain
		r += sig * math.Sin(angle) * gain
	}
	l = e.dcBlockL(l)
	r = e.dcBlockR(r)
	if e.lpfAlpha > 0 {
		e.lpfL += e.lpfAlpha * (l - e.lpfL)
		e.lpfR += e.lpfAlpha * (r - e.lpfR)
		l = e.lpfL
		r = e.lpfR
	}
	return float32(clamp(l, -1, 1)), float32(clamp(r, -1, 1))
}

func patchLevel(p Patch) float64 {
	if p.Level <= 0 {
		return 1
	}
	return p.Level
}

func (e *Engine) dcBlockL(x float64) float64 {
	const r = 0.995
	y := x - e.dcPrevInL + r*e.dcPrevOutL
	e.dcPrevInL = x
	e.dcPrevOutL = y
	return y
}

func (e *Engine) dcBlockR(x float64) float64 {
	const r = 0.995
	y := x - e.dcPrevInR + r*e.dcPrevOutR
	e.dcPrevInR = x
	e.dcPrevOutR = y
	return y
}

// polyBLEP reduces aliasing at waveform discontinuities.
// t is the phase position [0,1), dt is the phase increment per sample.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

func (e *Engine) renderWave(v *voice, freq float64) float64 {
	dt := freq / e.sampleRate
	v.phase += dt
	if v.phase >= 1 {
		v.phase -= 1
	}
	switch v.patch.Wave {
	case WavePulse:
		duty := v.patch.Duty
		if duty <= 0 || duty >= 1 {
			duty = 0.5
		}
		out := -1.0
		if v.phase < duty {
			out = 1
		}
		out += polyBLEP(v.phase, dt)
		out -= polyBLEP(math.Mod(v.phase-duty+1, 1), dt)
		return out
	case WaveTriangle:
		// 4-bit stepped like the 2A03 triangle channel.
		tri := 2*math.Abs(2*v.phase-1) - 1
		return math.Round(tri*7.5) / 7.5
	case WaveSaw:
		return 1 - 2*v.phase + polyBLEP(v.phase, dt)
	case WaveNoise:
		if v.phase < dt {
			tap := uint16(1)
			if v.patch.ShortNoise {
				tap = 6
			}
			bit := (v.noiseLFSR ^ (v.noiseLFSR >> tap)) & 1
			v.noiseLFSR = (v.noiseLFSR >> 1) | (bit << 14)
		}
		if v.noiseLFSR&1 == 1 {
			return 1
		}
		return -1
	default:
		return 0
	}
}

func (e *Engine) stealVoice() int {
	// Prefer an inactive slot.
	for i := range e.voices {
		if !e.voices[i].active {
			return i
		}
	}
	// Steal the oldest releasing voice, or failing that the oldest active voice.
	oldestRelease := -1
	oldestReleaseAge := -1
	oldestActive := 0
	oldestActiveAge := -1
	for i := range e.voices {
		v := &e.voices[i]
		if v.envState == envRelease && v.age > oldestReleaseAge {
			oldestRelease = i
			oldestReleaseAge = v.age
		}
		if v.age > oldestActiveAge {
			oldestActive = i
			oldestActiveAge = v.age
		}
	}
	if oldestRelease >= 0 {
		return oldestRelease
	}
	return oldestActive
}

func (e *Engine) advanceEnv(v *voice) float64 {
	p := &v.patch
	switch v.envState {
	case envAttack:
		if p.Attack <= 0 {
			v.env = 1
		} else {
			v.env += 1.0 / (p.Attack * e.sampleRate)
		}
		if v.env >= 1 {
			v.env = 1
			v.envState = envDecay
		}
	case envDecay:
		if p.Decay <= 0 {
			v.env = p.Sustain
		} else {
			v.env -= (1 - p.Sustain) / (p.Decay * e.sampleRate)
		}
		if v.env <= p.Sustain {
			v.env = p.Sustain
			v.envState = envSustain
		}
		if v.env <= 0.0001 {
			v.envState = envOff
			v.active = false
			v.env = 0
		}
	case envSustain:
	case envRelease:
		if v.release <= 0 {
			v.env = 0
		} else {
			v.env -= 1.0 / (v.release * e.sampleRate)
		}
		if v.env <= 0.0001 {
			v.env = 0
			v.envState = envOff
			v.active = false
		}
	case envOff:
		v.active = false
		v.env = 0
	}
	return v.env
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func quantize(v float64, steps int) float64 {
	if steps <= 1 {
		return v
	}
	n := math.Round(v*float64(steps-1)) / float64(steps-1)
	return clamp(n, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Engine) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&e.masterGain, math.Float64bits(gain))
}

func (e *Engine) MasterGain() float64 { return e.masterGainValue() }

func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}

func (e *Engine) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.masterGain))
}
