package voice

import (
	"github.com/cbegin/msq-go/internal/chiptune"
	"github.com/cbegin/msq-go/internal/note"
)

// Patches holds the sound of every instrument, including the editor's
// feedback sounds from index 15 up.
var Patches = [note.NumInstruments]chiptune.Patch{
	// 0 jumper: bright lead
	{Wave: chiptune.WavePulse, Duty: 0.25, Attack: 0.002, Decay: 0.12, Sustain: 0.6, Release: 0.08, Gate: 0.25},
	// 1 mushroom: round square
	{Wave: chiptune.WavePulse, Duty: 0.5, Attack: 0.004, Decay: 0.2, Sustain: 0.5, Release: 0.1, Gate: 0.25},
	// 2 reptile: soft low
	{Wave: chiptune.WaveTriangle, Attack: 0.004, Decay: 0.1, Sustain: 0.8, Release: 0.1, Gate: 0.3, Octave: -1, Level: 1.4},
	// 3 star: twinkly
	{Wave: chiptune.WavePulse, Duty: 0.125, Attack: 0.001, Decay: 0.3, Sustain: 0.2, Release: 0.15, Gate: 0.2, Octave: 1, VibratoDepth: 0.3, VibratoRate: 7},
	// 4 flower: plucked
	{Wave: chiptune.WavePulse, Duty: 0.25, Attack: 0.001, Decay: 0.18, Sustain: 0, Release: 0.05},
	// 5 handheld: narrow pulse
	{Wave: chiptune.WavePulse, Duty: 0.125, Attack: 0.002, Decay: 0.1, Sustain: 0.7, Release: 0.06, Gate: 0.22},
	// 6 dog: barky drop
	{Wave: chiptune.WaveSaw, Attack: 0.002, Decay: 0.12, Sustain: 0, Release: 0.04, Sweep: -18, Level: 0.8},
	// 7 cat: meow rise
	{Wave: chiptune.WavePulse, Duty: 0.375, Attack: 0.03, Decay: 0.2, Sustain: 0.4, Release: 0.1, Gate: 0.25, Sweep: 6},
	// 8 pig: buzzy
	{Wave: chiptune.WaveSaw, Attack: 0.005, Decay: 0.15, Sustain: 0.5, Release: 0.08, Gate: 0.2, Octave: -1, Level: 0.7},
	// 9 swan: airy
	{Wave: chiptune.WaveTriangle, Attack: 0.04, Decay: 0.2, Sustain: 0.7, Release: 0.2, Gate: 0.35, VibratoDepth: 0.2, VibratoRate: 5, VibratoDelay: 0.08, Level: 1.3},
	// 10 face: hollow
	{Wave: chiptune.WavePulse, Duty: 0.5, Attack: 0.01, Decay: 0.25, Sustain: 0.3, Release: 0.12, Gate: 0.25, Octave: -1},
	// 11 plane: engine drone
	{Wave: chiptune.WaveSaw, Attack: 0.02, Decay: 0.2, Sustain: 0.6, Release: 0.15, Gate: 0.3, VibratoDepth: 0.5, VibratoRate: 11, Level: 0.7},
	// 12 boat: horn
	{Wave: chiptune.WavePulse, Duty: 0.375, Attack: 0.02, Decay: 0.3, Sustain: 0.7, Release: 0.2, Gate: 0.35, Octave: -1},
	// 13 car: horn, short
	{Wave: chiptune.WavePulse, Duty: 0.25, Attack: 0.001, Decay: 0.05, Sustain: 0.8, Release: 0.03, Gate: 0.12},
	// 14 heart: chime
	{Wave: chiptune.WaveTriangle, Attack: 0.001, Decay: 0.4, Sustain: 0.1, Release: 0.2, Octave: 1, Level: 1.3},
	// 15 end mark: drum
	{Wave: chiptune.WaveNoise, Attack: 0.001, Decay: 0.08, Sustain: 0, Release: 0.02, Octave: 2},
	// 16 eraser: short noise
	{Wave: chiptune.WaveNoise, Attack: 0.001, Decay: 0.15, Sustain: 0, Release: 0.02, Octave: 3, ShortNoise: true},
	// 17 click
	{Wave: chiptune.WavePulse, Duty: 0.5, Attack: 0.0005, Decay: 0.02, Sustain: 0, Release: 0.01, Octave: 2},
	// 18 unused
	{Wave: chiptune.WavePulse, Duty: 0.5, Attack: 0.001, Decay: 0.05, Sustain: 0, Release: 0.01},
	// 19 clear: falling sweep
	{Wave: chiptune.WavePulse, Duty: 0.25, Attack: 0.001, Decay: 0.6, Sustain: 0, Release: 0.05, Octave: 1, Sweep: -24},
	// 20 undo: rising blip
	{Wave: chiptune.WaveTriangle, Attack: 0.001, Decay: 0.25, Sustain: 0, Release: 0.05, Octave: 1, Sweep: 24, Level: 1.3},
}
