// Package undo records reversible score edits and replays their inverses.
package undo

import (
	"fmt"

	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/score"
)

type Kind int

const (
	KindAdd Kind = iota
	KindDelete
	KindEndMark
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindDelete:
		return "delete"
	case KindEndMark:
		return "endmark"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Entry is one reversible edit. Bar, Index and Note are set for add/delete,
// OldEnd for an end mark move. Index is the note's slot in the bar.
type Entry struct {
	Kind   Kind
	Bar    int
	Index  int
	Note   note.Note
	OldEnd int
}

func Add(bar, index int, n note.Note) Entry {
	return Entry{Kind: KindAdd, Bar: bar, Index: index, Note: n}
}

func Delete(bar, index int, n note.Note) Entry {
	return Entry{Kind: KindDelete, Bar: bar, Index: index, Note: n}
}

func EndMark(oldEnd int) Entry { return Entry{Kind: KindEndMark, OldEnd: oldEnd} }

// Log is a LIFO of edits. A zero Limit keeps every entry.
type Log struct {
	Limit   int
	entries []Entry
}

func (l *Log) Record(e Entry) {
	l.entries = append(l.entries, e)
	if l.Limit > 0 && len(l.entries) > l.Limit {
		copy(l.entries, l.entries[len(l.entries)-l.Limit:])
		l.entries = l.entries[:l.Limit]
	}
}

// Undo pops the newest entry and applies its inverse to s. ok is false when
// the log is empty.
func (l *Log) Undo(s *score.Score) (e Entry, ok bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	e = l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	switch e.Kind {
	case KindAdd:
		s.RemoveNoteAt(e.Bar, e.Index, e.Note)
	case KindDelete:
		s.InsertNote(e.Bar, e.Index, e.Note)
	case KindEndMark:
		s.MoveEndMark(e.OldEnd)
	}
	return e, true
}

func (l *Log) Len() int { return len(l.entries) }

func (l *Log) Clear() { l.entries = nil }
