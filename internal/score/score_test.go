package score

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/msq-go/internal/note"
)

func TestNewScoreDefaults(t *testing.T) {
	s := New()
	require.Len(t, s.Notes, DefaultMaxBars)
	require.Equal(t, DefaultMaxBars-1, s.End)
	require.Equal(t, DefaultTempo, s.Tempo)
	require.Equal(t, 4, s.Beats)
	require.False(t, s.Loop)
	require.NoError(t, s.Validate())
}

func TestResetForImportKeepsLoop(t *testing.T) {
	s := New()
	s.Loop = true
	s.Beats = 3
	s.ResetForImport()
	require.Empty(t, s.Notes)
	require.Zero(t, s.End)
	require.Zero(t, s.Tempo)
	require.Equal(t, 4, s.Beats)
	require.True(t, s.Loop)
}

func TestAddNote(t *testing.T) {
	s := New()
	s.End = 10

	n := note.Encode(0, 5, false, false)
	got, err := s.AddNote(3, n)
	require.NoError(t, err)
	require.Equal(t, n, got)

	_, err = s.AddNote(3, note.Encode(0, 5, true, false))
	require.ErrorIs(t, err, ErrDuplicate, "accidentals do not change identity")

	_, err = s.AddNote(3, note.Encode(1, 5, false, false))
	require.NoError(t, err, "other instrument on same scale is allowed")

	_, err = s.AddNote(10, n)
	require.ErrorIs(t, err, ErrLocked)
	_, err = s.AddNote(-1, n)
	require.ErrorIs(t, err, ErrLocked)
	require.Len(t, s.Notes[3], 2)
}

func TestDeleteTopNoteAtScale(t *testing.T) {
	s := New()
	s.Notes[2] = Bar{
		note.TempoEntry(120),
		note.NoteEntry(note.Encode(0, 4, false, false)),
		note.NoteEntry(note.Encode(1, 6, false, false)),
		note.NoteEntry(note.Encode(2, 4, false, true)),
	}
	n, i, err := s.DeleteTopNoteAtScale(2, 4)
	require.NoError(t, err)
	require.Equal(t, note.Encode(2, 4, false, true), n)
	require.Equal(t, 3, i)

	n, i, err = s.DeleteTopNoteAtScale(2, 4)
	require.NoError(t, err)
	require.Equal(t, note.Encode(0, 4, false, false), n)
	require.Equal(t, 1, i)

	_, _, err = s.DeleteTopNoteAtScale(2, 4)
	require.ErrorIs(t, err, ErrNotFound)
	require.Len(t, s.Notes[2], 2)
	require.True(t, s.StartsWithTempo(2))
}

func TestRemoveAndPushNote(t *testing.T) {
	s := New()
	a := note.Encode(0, 1, false, false)
	b := note.Encode(0, 2, false, false)
	s.PushNote(0, a)
	s.PushNote(0, b)
	s.PushNote(0, a)
	require.True(t, s.RemoveNote(0, a))
	require.Equal(t, Bar{note.NoteEntry(b), note.NoteEntry(a)}, s.Notes[0])
	require.False(t, s.RemoveNote(0, note.Encode(5, 5, false, false)))
	require.False(t, s.RemoveNote(DefaultMaxBars+3, a))
}

func TestInsertAndRemoveNoteAt(t *testing.T) {
	s := New()
	a := note.Encode(0, 1, false, false)
	b := note.Encode(1, 6, false, false)
	c := note.Encode(2, 3, false, false)
	s.PushNote(0, a)
	s.PushNote(0, c)
	s.InsertNote(0, 1, b)
	require.Equal(t, Bar{note.NoteEntry(a), note.NoteEntry(b), note.NoteEntry(c)}, s.Notes[0])

	s.InsertNote(0, 99, a)
	require.Equal(t, note.NoteEntry(a), s.Notes[0][3])
	s.InsertNote(0, -1, c)
	require.Equal(t, note.NoteEntry(c), s.Notes[0][0])

	// [c a b c a]: the slot wins over the first match.
	require.True(t, s.RemoveNoteAt(0, 4, a))
	require.Equal(t, Bar{note.NoteEntry(c), note.NoteEntry(a), note.NoteEntry(b), note.NoteEntry(c)}, s.Notes[0])
	// A stale slot falls back to the first match.
	require.True(t, s.RemoveNoteAt(0, 2, c))
	require.Equal(t, Bar{note.NoteEntry(a), note.NoteEntry(b), note.NoteEntry(c)}, s.Notes[0])
	require.False(t, s.RemoveNoteAt(0, 0, note.Encode(9, 9, false, false)))
	require.False(t, s.RemoveNoteAt(-1, 0, a))
}

func TestHasNotesAndLeadingTempo(t *testing.T) {
	s := New()
	require.False(t, s.HasNotes(0))
	_, ok := s.LeadingTempo()
	require.False(t, ok)

	s.InsertTempo(0, 150)
	require.False(t, s.HasNotes(0), "marker-only bar has no notes")
	tempo, ok := s.LeadingTempo()
	require.True(t, ok)
	require.Equal(t, 150, tempo)

	s.PushNote(0, note.Encode(3, 3, false, false))
	require.True(t, s.HasNotes(0))
}

func TestIsDownbeat(t *testing.T) {
	s := New()
	require.True(t, s.IsDownbeat(0))
	require.True(t, s.IsDownbeat(8))
	require.False(t, s.IsDownbeat(6))
	s.Beats = 3
	require.True(t, s.IsDownbeat(6))
}

func TestSetBarGrows(t *testing.T) {
	s := &Score{}
	s.SetBar(4, Bar{note.NoteEntry(1)})
	require.Len(t, s.Notes, 5)
	require.Nil(t, s.Notes[2])
}

func TestCopyIsDeep(t *testing.T) {
	s := New()
	s.PushNote(1, note.Encode(0, 0, false, false))
	c := s.Copy()
	c.PushNote(1, note.Encode(0, 1, false, false))
	require.Len(t, s.Notes[1], 1)
	require.Len(t, c.Notes[1], 2)
}

func TestScoreJSONShape(t *testing.T) {
	s := &Score{End: 2, Tempo: 120, Beats: 3, Loop: true}
	s.SetBar(0, Bar{note.TempoEntry(120), note.NoteEntry(0x0308)})
	s.SetBar(2, nil)
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{"notes":[["TEMPO=120",776],[],[]],"end":2,"tempo":120,"loop":true,"beats":3}`, string(raw))
}

func TestValidate(t *testing.T) {
	s := New()
	s.End = len(s.Notes)
	require.Error(t, s.Validate())
	s.End = 5
	s.Tempo = 0
	require.Error(t, s.Validate())
	s.Tempo = 90
	s.Beats = 5
	require.Error(t, s.Validate())
}
