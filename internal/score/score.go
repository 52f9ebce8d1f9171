package score

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cbegin/msq-go/internal/note"
)

const (
	DefaultMaxBars = 199*4 + 1
	DefaultTempo   = 100
	DefaultBeats   = 4
)

var (
	ErrLocked    = errors.New("score: bar is past the end mark")
	ErrDuplicate = errors.New("score: note already present")
	ErrNotFound  = errors.New("score: no note at that scale")
)

type Bar []note.Entry

// MarshalJSON writes empty bars as [] rather than null.
func (b Bar) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]note.Entry(b))
}

// Score is the editable composition. Notes always holds at least End+1 bars
// once it has been initialised; bars at or beyond End are locked for editing.
type Score struct {
	Notes []Bar `json:"notes" yaml:"notes"`
	End   int   `json:"end" yaml:"end"`
	Tempo int   `json:"tempo" yaml:"tempo"`
	Loop  bool  `json:"loop" yaml:"loop"`
	Beats int   `json:"beats" yaml:"beats"`
}

func New() *Score {
	s := &Score{}
	s.ResetToDefault()
	return s
}

// ResetToDefault produces the blank document used at start-up and by clear.
func (s *Score) ResetToDefault() {
	s.Notes = make([]Bar, DefaultMaxBars)
	s.End = DefaultMaxBars - 1
	s.Tempo = DefaultTempo
	s.Beats = DefaultBeats
	s.Loop = false
}

// ResetForImport empties the score ahead of appending imported files. Loop is
// left alone.
func (s *Score) ResetForImport() {
	s.Notes = []Bar{}
	s.End = 0
	s.Tempo = 0
	s.Beats = DefaultBeats
}

func (s *Score) inRange(bar int) bool { return bar >= 0 && bar < len(s.Notes) }

// AddNote appends n to a bar unless the bar is locked or already holds a note
// with the same instrument and base scale.
func (s *Score) AddNote(bar int, n note.Note) (note.Note, error) {
	if bar >= s.End || !s.inRange(bar) {
		return 0, ErrLocked
	}
	for _, e := range s.Notes[bar] {
		if !e.IsTempo() && e.Note.SameKey(n) {
			return 0, ErrDuplicate
		}
	}
	s.Notes[bar] = append(s.Notes[bar], note.NoteEntry(n))
	return n, nil
}

// DeleteTopNoteAtScale removes the most recently added note in the bar whose
// base scale matches, whatever its instrument. It returns the note and the
// index it held.
func (s *Score) DeleteTopNoteAtScale(bar, scale int) (note.Note, int, error) {
	if bar >= s.End || !s.inRange(bar) {
		return 0, -1, ErrLocked
	}
	b := s.Notes[bar]
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].IsTempo() || b[i].Note.Base() != scale {
			continue
		}
		n := b[i].Note
		s.Notes[bar] = append(b[:i:i], b[i+1:]...)
		return n, i, nil
	}
	return 0, -1, ErrNotFound
}

// RemoveNote drops the first exact occurrence of n.
func (s *Score) RemoveNote(bar int, n note.Note) bool {
	if !s.inRange(bar) {
		return false
	}
	b := s.Notes[bar]
	for i, e := range b {
		if !e.IsTempo() && e.Note == n {
			s.Notes[bar] = append(b[:i:i], b[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveNoteAt drops the entry at index i when it holds n, and otherwise
// falls back to RemoveNote.
func (s *Score) RemoveNoteAt(bar, i int, n note.Note) bool {
	if !s.inRange(bar) {
		return false
	}
	b := s.Notes[bar]
	if i >= 0 && i < len(b) && !b[i].IsTempo() && b[i].Note == n {
		s.Notes[bar] = append(b[:i:i], b[i+1:]...)
		return true
	}
	return s.RemoveNote(bar, n)
}

// InsertNote puts n at index i of the bar without any checks. i is clamped
// to the bar.
func (s *Score) InsertNote(bar, i int, n note.Note) {
	s.grow(bar + 1)
	b := s.Notes[bar]
	i = min(max(i, 0), len(b))
	out := make(Bar, 0, len(b)+1)
	out = append(out, b[:i]...)
	out = append(out, note.NoteEntry(n))
	s.Notes[bar] = append(out, b[i:]...)
}

// PushNote appends n without any checks.
func (s *Score) PushNote(bar int, n note.Note) {
	s.grow(bar + 1)
	s.Notes[bar] = append(s.Notes[bar], note.NoteEntry(n))
}

func (s *Score) MoveEndMark(bar int) { s.End = bar }

// SetBar replaces bar i, growing the sequence with empty bars as needed.
func (s *Score) SetBar(i int, bar Bar) {
	s.grow(i + 1)
	s.Notes[i] = bar
}

// InsertTempo puts a tempo marker at the front of bar i.
func (s *Score) InsertTempo(i, tempo int) {
	s.grow(i + 1)
	s.Notes[i] = append(Bar{note.TempoEntry(tempo)}, s.Notes[i]...)
}

// StartsWithTempo reports whether bar i begins with a tempo marker.
func (s *Score) StartsWithTempo(i int) bool {
	return s.inRange(i) && len(s.Notes[i]) > 0 && s.Notes[i][0].IsTempo()
}

// Grow pads Notes with empty bars until it holds at least n bars.
func (s *Score) Grow(n int) { s.grow(n) }

func (s *Score) grow(n int) {
	for len(s.Notes) < n {
		s.Notes = append(s.Notes, nil)
	}
}

// HasNotes reports whether bar i holds anything other than tempo markers.
func (s *Score) HasNotes(i int) bool {
	if !s.inRange(i) {
		return false
	}
	for _, e := range s.Notes[i] {
		if !e.IsTempo() {
			return true
		}
	}
	return false
}

// LeadingTempo returns the tempo marker at the very start of the score.
func (s *Score) LeadingTempo() (int, bool) {
	if !s.StartsWithTempo(0) {
		return 0, false
	}
	return s.Notes[0][0].Tempo, true
}

// IsDownbeat reports whether bar i starts a measure.
func (s *Score) IsDownbeat(i int) bool {
	beats := s.Beats
	if beats <= 0 {
		beats = DefaultBeats
	}
	return i%beats == 0
}

func (s *Score) Copy() *Score {
	c := *s
	c.Notes = make([]Bar, len(s.Notes))
	for i, b := range s.Notes {
		if b != nil {
			c.Notes[i] = append(Bar(nil), b...)
		}
	}
	return &c
}

func (s *Score) Validate() error {
	if s.End < 0 || s.End >= len(s.Notes) {
		return fmt.Errorf("score: end %d outside %d bars", s.End, len(s.Notes))
	}
	if s.Tempo <= 0 {
		return fmt.Errorf("score: tempo %d must be positive", s.Tempo)
	}
	if s.Beats != 3 && s.Beats != 4 {
		return fmt.Errorf("score: beats %d must be 3 or 4", s.Beats)
	}
	return nil
}
