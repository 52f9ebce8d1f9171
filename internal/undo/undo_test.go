package undo

import (
	"reflect"
	"testing"

	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/score"
)

func TestUndoRestoresEdits(t *testing.T) {
	s := score.New()
	var log Log

	a := note.Encode(1, 3, false, false)
	if _, err := s.AddNote(4, a); err != nil {
		t.Fatalf("add: %v", err)
	}
	log.Record(Add(4, 0, a))

	b := note.Encode(2, 5, true, false)
	s.PushNote(6, b)
	_, i, err := s.DeleteTopNoteAtScale(6, 5)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	log.Record(Delete(6, i, b))

	log.Record(EndMark(s.End))
	s.MoveEndMark(20)

	if e, ok := log.Undo(s); !ok || e.Kind != KindEndMark {
		t.Fatalf("first undo = %+v,%v", e, ok)
	}
	if s.End != score.DefaultMaxBars-1 {
		t.Fatalf("end = %d after undo", s.End)
	}
	if e, ok := log.Undo(s); !ok || e.Kind != KindDelete {
		t.Fatalf("second undo = %+v,%v", e, ok)
	}
	if len(s.Notes[6]) != 1 || s.Notes[6][0].Note != b {
		t.Fatalf("bar 6 = %v, want restored note", s.Notes[6])
	}
	if e, ok := log.Undo(s); !ok || e.Kind != KindAdd {
		t.Fatalf("third undo = %+v,%v", e, ok)
	}
	if len(s.Notes[4]) != 0 {
		t.Fatalf("bar 4 = %v, want empty", s.Notes[4])
	}
	if _, ok := log.Undo(s); ok {
		t.Fatalf("undo on empty log should report false")
	}
}

func TestUndoAddRemovesRecordedSlot(t *testing.T) {
	s := score.New()
	n := note.Encode(0, 2, false, false)
	m := note.Encode(0, 9, false, false)
	s.PushNote(1, n)
	s.PushNote(1, m)
	s.PushNote(1, n)
	var log Log
	log.Record(Add(1, 2, n))
	log.Undo(s)
	if len(s.Notes[1]) != 2 || s.Notes[1][0].Note != n || s.Notes[1][1].Note != m {
		t.Fatalf("bar 1 = %v", s.Notes[1])
	}
}

func TestUndoDeleteRestoresSlot(t *testing.T) {
	s := score.New()
	first := note.Encode(1, 6, false, false)
	second := note.Encode(2, 3, false, false)
	s.PushNote(0, first)
	s.PushNote(0, second)
	before := append(score.Bar(nil), s.Notes[0]...)

	var log Log
	n, i, err := s.DeleteTopNoteAtScale(0, 6)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	log.Record(Delete(0, i, n))
	log.Undo(s)
	if !reflect.DeepEqual(s.Notes[0], before) {
		t.Fatalf("bar 0 = %v, want %v", s.Notes[0], before)
	}
}

func TestLogLimitAndClear(t *testing.T) {
	log := Log{Limit: 2}
	for i := 0; i < 5; i++ {
		log.Record(EndMark(i))
	}
	if log.Len() != 2 {
		t.Fatalf("len = %d, want 2", log.Len())
	}
	s := score.New()
	e, _ := log.Undo(s)
	if e.OldEnd != 4 || s.End != 4 {
		t.Fatalf("newest entry should survive trimming, got %+v end=%d", e, s.End)
	}
	log.Clear()
	if log.Len() != 0 {
		t.Fatalf("len after clear = %d", log.Len())
	}
}
