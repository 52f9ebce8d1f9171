// Package voice turns instrument triggers into audio. A Bank is driven from
// the game loop through Trigger and read from the audio thread through Process.
package voice

import (
	"sort"
	"sync"
	"time"

	"github.com/cbegin/msq-go/internal/chiptune"
	"github.com/cbegin/msq-go/internal/note"
)

const velocity = 0.9

type pending struct {
	at         int64
	instrument int
	pitch      uint8
}

type Bank struct {
	mu         sync.Mutex
	engine     *chiptune.Engine
	sampleRate int
	frame      int64
	pending    []pending
	chords     [note.NumInstruments][]int
	patches    [note.NumInstruments]chiptune.Patch
}

func NewBank(sampleRate int) *Bank {
	return NewBankWithParams(sampleRate, chiptune.DefaultParams())
}

func NewBankWithParams(sampleRate int, params chiptune.Params) *Bank {
	return &Bank{
		engine:     chiptune.New(sampleRate, params),
		sampleRate: sampleRate,
		patches:    Patches,
	}
}

func (b *Bank) SampleRate() int { return b.sampleRate }

// SetPatch replaces the sound of one instrument.
func (b *Bank) SetPatch(instrument int, p chiptune.Patch) {
	if instrument < 0 || instrument >= note.NumInstruments {
		return
	}
	b.mu.Lock()
	b.patches[instrument] = p
	b.mu.Unlock()
}

// Trigger plays pitches as one chord on instrument after lead. Whatever the
// instrument was still sounding, or about to sound, is cut first.
func (b *Bank) Trigger(instrument int, pitches []uint8, lead time.Duration) {
	if instrument < 0 || instrument >= note.NumInstruments {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancel(instrument)
	at := b.frame + int64(lead)*int64(b.sampleRate)/int64(time.Second)
	for _, p := range pitches {
		b.pending = append(b.pending, pending{at: at, instrument: instrument, pitch: p})
	}
	sort.SliceStable(b.pending, func(i, j int) bool { return b.pending[i].at < b.pending[j].at })
}

// Play sounds a single pitch immediately without cutting the instrument's
// chord. The editor uses it for previews and feedback sounds.
func (b *Bank) Play(instrument int, pitch uint8) {
	if instrument < 0 || instrument >= note.NumInstruments {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.noteOn(instrument, pitch)
}

// Silence cuts every voice and drops pending notes.
func (b *Bank) Silence() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.chords {
		b.cancel(i)
	}
	b.pending = b.pending[:0]
}

func (b *Bank) cancel(instrument int) {
	for _, id := range b.chords[instrument] {
		b.engine.Cut(id)
	}
	b.chords[instrument] = b.chords[instrument][:0]
	kept := b.pending[:0]
	for _, p := range b.pending {
		if p.instrument != instrument {
			kept = append(kept, p)
		}
	}
	b.pending = kept
}

func (b *Bank) noteOn(instrument int, pitch uint8) int {
	return b.engine.NoteOn(note.MIDIKey(pitch), velocity, b.patches[instrument])
}

// Process renders interleaved stereo frames into dst.
func (b *Bank) Process(dst []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i+1 < len(dst); i += 2 {
		for len(b.pending) > 0 && b.pending[0].at <= b.frame {
			p := b.pending[0]
			b.pending = b.pending[1:]
			id := b.noteOn(p.instrument, p.pitch)
			b.chords[p.instrument] = append(b.chords[p.instrument], id)
		}
		dst[i], dst[i+1] = b.engine.RenderFrame()
		b.frame++
	}
}

// Idle reports whether nothing is sounding or queued.
func (b *Bank) Idle() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending) == 0 && b.engine.ActiveVoiceCount() == 0
}

func (b *Bank) ActiveVoices() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.ActiveVoiceCount()
}

// SetMasterGain is lock-free; the engine stores the gain atomically.
func (b *Bank) SetMasterGain(g float64) { b.engine.SetMasterGain(g) }

func (b *Bank) MasterGain() float64 { return b.engine.MasterGain() }
