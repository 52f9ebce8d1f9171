package midiout

import (
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/score"
)

const (
	// Ticks per quarter note. One bar of the score is one quarter note.
	Resolution = 960
	gateTicks  = Resolution * 3 / 4
)

type track struct {
	smf.Track
	tick uint32
}

// at appends msg at an absolute tick, which must not go backwards.
func (t *track) at(tick uint32, msg []byte) {
	t.Add(tick-t.tick, msg)
	t.tick = tick
}

// WriteSMF renders bars [0,End) as a single-track standard MIDI file.
func WriteSMF(w io.Writer, s *score.Score) error {
	if s.End < 0 || s.End > len(s.Notes) {
		return fmt.Errorf("midiout: end %d outside %d bars", s.End, len(s.Notes))
	}
	tempo := s.Tempo
	if tempo <= 0 {
		tempo = score.DefaultTempo
	}
	beats := s.Beats
	if beats <= 0 {
		beats = score.DefaultBeats
	}

	t := &track{}
	t.at(0, smf.MetaMeter(uint8(beats), 4))
	t.at(0, smf.MetaTempo(float64(tempo)))

	for i := 0; i < s.End; i++ {
		start := uint32(i * Resolution)
		var offs []midi.Message
		for _, e := range s.Notes[i] {
			if e.IsTempo() {
				t.at(start, smf.MetaTempo(float64(e.Tempo)))
				continue
			}
			inst := e.Note.Instrument()
			ch := Channel(inst)
			key := uint8(note.MIDIKey(e.Note.Pitch()))
			t.at(start, midi.NoteOn(ch, key, DefaultVelocity))
			offs = append(offs, midi.NoteOff(ch, key))
		}
		for _, off := range offs {
			t.at(start+gateTicks, off)
		}
	}
	t.Close(uint32(s.End*Resolution) - t.tick)

	file := smf.New()
	file.TimeFormat = smf.MetricTicks(Resolution)
	if err := file.Add(t.Track); err != nil {
		return fmt.Errorf("midiout: %w", err)
	}
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("midiout: write: %w", err)
	}
	return nil
}
