package format

import (
	"errors"
	"testing"

	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/score"
)

const sampleCompact = "SCORE=32A10000\nTEMPO=120\nLOOP=TRUE\nEND=3\nTIME44=FALSE\n"

func importScore() *score.Score {
	s := score.New()
	s.ResetForImport()
	return s
}

func TestParseCompactApply(t *testing.T) {
	c, err := ParseCompact(sampleCompact)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(c.Bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(c.Bars))
	}
	s := importScore()
	c.Apply(s)

	if s.End != 2 || s.Tempo != 120 || s.Beats != 3 || !s.Loop {
		t.Fatalf("header = end %d tempo %d beats %d loop %v", s.End, s.Tempo, s.Beats, s.Loop)
	}
	want := score.Bar{
		note.TempoEntry(120),
		note.NoteEntry(note.Encode(1, 2, false, false)),
		note.NoteEntry(note.Encode(0, 9, false, false)),
	}
	if len(s.Notes[0]) != len(want) {
		t.Fatalf("bar 0 = %v, want %v", s.Notes[0], want)
	}
	for i := range want {
		if s.Notes[0][i] != want[i] {
			t.Fatalf("bar 0[%d] = %v, want %v", i, s.Notes[0][i], want[i])
		}
	}
	if len(s.Notes[1]) != 0 {
		t.Fatalf("bar 1 = %v, want empty", s.Notes[1])
	}
	if len(s.Notes) < s.End+1 {
		t.Fatalf("notes not grown past end: %d", len(s.Notes))
	}
}

func TestCompactAppendsAtEndMark(t *testing.T) {
	s := importScore()
	for i := 0; i < 2; i++ {
		c, err := ParseCompact(sampleCompact)
		if err != nil {
			t.Fatalf("parse %d: %v", i, err)
		}
		c.Apply(s)
	}
	if s.End != 4 {
		t.Fatalf("end = %d, want 4", s.End)
	}
	if s.StartsWithTempo(2) {
		t.Fatalf("unchanged tempo must not insert a marker: %v", s.Notes[2])
	}
	if !s.HasNotes(2) {
		t.Fatalf("second file should start at bar 2")
	}
}

func TestParseCompactKeywordOrder(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"swapped", "TEMPO=1\nSCORE=\nLOOP=TRUE\nEND=2\nTIME44=TRUE", "Line 0 must start with 'SCORE'"},
		{"blank line shifts index", "\nSCORE=\nTEMPO=1\nLOOP=TRUE\nEND=2\nTIME44=TRUE", "Line 1 must start with 'TEMPO'"},
		{"crlf", "SCORE=\r\nTEMPO=1\r\nLOOP=TRUE\r\nTIME44=TRUE\r\nEND=2", "Line 3 must start with 'END'"},
		{"missing", "SCORE=\nTEMPO=1\nLOOP=TRUE\nEND=2", "Line 4 must start with 'TIME44'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCompact(tc.text)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *FormatError", err)
			}
			if fe.Error() != tc.want {
				t.Fatalf("error = %q, want %q", fe.Error(), tc.want)
			}
		})
	}
}

func TestParseCompactRejectsBadValues(t *testing.T) {
	for _, text := range []string{
		"SCORE=\nTEMPO=fast\nLOOP=TRUE\nEND=2\nTIME44=TRUE",
		"SCORE=\nTEMPO=100\nLOOP=TRUE\nEND=0\nTIME44=TRUE",
		"SCORE=Z1\nTEMPO=100\nLOOP=TRUE\nEND=2\nTIME44=TRUE",
	} {
		var fe *FormatError
		if _, err := ParseCompact(text); !errors.As(err, &fe) {
			t.Fatalf("ParseCompact(%q) error = %v, want *FormatError", text, err)
		}
	}
}

func TestParseCompactDropsPartialBar(t *testing.T) {
	c, err := ParseCompact("SCORE=110000011\nTEMPO=100\nLOOP=FALSE\nEND=2\nTIME44=TRUE")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(c.Bars) != 2 {
		t.Fatalf("bars = %d, want 2 (trailing partial bar dropped)", len(c.Bars))
	}
	if c.Loop || !c.Time44 {
		t.Fatalf("flags = loop %v time44 %v", c.Loop, c.Time44)
	}
}

func TestParseCompactStopsInsideNote(t *testing.T) {
	for _, tc := range []struct {
		body string
		bars int
	}{
		{"3", 0},
		{"110003", 1},
		{"1100A", 1},
	} {
		c, err := ParseCompact("SCORE=" + tc.body + "\nTEMPO=100\nLOOP=FALSE\nEND=2\nTIME44=TRUE")
		if err != nil {
			t.Fatalf("SCORE=%q: %v", tc.body, err)
		}
		if len(c.Bars) != tc.bars {
			t.Fatalf("SCORE=%q: bars = %v, want %d", tc.body, c.Bars, tc.bars)
		}
	}

	bars, err := decodeBars("1100A\r1")
	if err != nil || len(bars) != 1 {
		t.Fatalf("carriage return inside a note: bars %v err %v", bars, err)
	}
}
