// Package midiout plays scores on external MIDI gear and writes them as
// standard MIDI files.
package midiout

import (
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/msq-go/internal/note"
)

const (
	DefaultGate     = 250 * time.Millisecond
	DefaultVelocity = 100
)

// Channel maps an instrument to a MIDI channel.
func Channel(instrument int) uint8 { return uint8(instrument % 16) }

type sounding struct {
	channel uint8
	key     uint8
}

// Port sends triggers to a MIDI output. Each chord is released after Gate,
// or as soon as the same instrument plays again.
type Port struct {
	Gate     time.Duration
	Velocity uint8

	mu     sync.Mutex
	send   func(midi.Message) error
	after  func(time.Duration, func()) *time.Timer
	chords [note.NumInstruments][]sounding
	gen    [note.NumInstruments]int
	err    error
}

// NewPort wraps a send function such as the one returned by midi.SendTo.
func NewPort(send func(midi.Message) error) *Port {
	return &Port{
		Gate:     DefaultGate,
		Velocity: DefaultVelocity,
		send:     send,
		after:    time.AfterFunc,
	}
}

func (p *Port) Trigger(instrument int, pitches []uint8, lead time.Duration) {
	if instrument < 0 || instrument >= note.NumInstruments || len(pitches) == 0 {
		return
	}
	keys := make([]uint8, len(pitches))
	for i, pitch := range pitches {
		keys[i] = uint8(note.MIDIKey(pitch))
	}
	if lead <= 0 {
		p.start(instrument, keys)
		return
	}
	p.after(lead, func() { p.start(instrument, keys) })
}

func (p *Port) start(instrument int, keys []uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release(instrument)
	ch := Channel(instrument)
	for _, k := range keys {
		p.emit(midi.NoteOn(ch, k, p.Velocity))
		p.chords[instrument] = append(p.chords[instrument], sounding{channel: ch, key: k})
	}
	p.gen[instrument]++
	if p.Gate <= 0 {
		return
	}
	gen := p.gen[instrument]
	p.after(p.Gate, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen[instrument] == gen {
			p.release(instrument)
		}
	})
}

func (p *Port) release(instrument int) {
	for _, s := range p.chords[instrument] {
		p.emit(midi.NoteOff(s.channel, s.key))
	}
	p.chords[instrument] = p.chords[instrument][:0]
}

func (p *Port) emit(msg midi.Message) {
	if err := p.send(msg); err != nil && p.err == nil {
		p.err = err
	}
}

// Err returns the first send error seen.
func (p *Port) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Silence releases every sounding note.
func (p *Port) Silence() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.chords {
		p.gen[i]++
		p.release(i)
	}
}
