package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/score"
)

var compactKeywords = [...]string{"SCORE", "TEMPO", "LOOP", "END", "TIME44"}

const slotsPerBar = 3

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// Compact is a parsed .msq document that has not yet been applied to a score.
type Compact struct {
	Bars   []score.Bar
	Tempo  int
	Loop   bool
	End    int
	Time44 bool
}

// ParseCompact reads the line-oriented KEY=VALUE encoding. The first five
// non-blank lines must carry SCORE, TEMPO, LOOP, END and TIME44 in that order.
func ParseCompact(text string) (*Compact, error) {
	values := make(map[string]string, len(compactKeywords))
	for i, line := range lineBreak.Split(text, -1) {
		if line == "" {
			continue
		}
		kv := strings.Split(line, "=")
		k, v := kv[0], ""
		if len(kv) > 1 {
			v = kv[1]
		}
		if i < len(compactKeywords) && k != compactKeywords[i] {
			return nil, &FormatError{Line: i, Want: compactKeywords[i]}
		}
		values[k] = v
	}
	for i, k := range compactKeywords {
		if _, ok := values[k]; !ok {
			return nil, &FormatError{Line: i, Want: k}
		}
	}

	c := &Compact{
		Loop:   values["LOOP"] == "TRUE",
		Time44: values["TIME44"] == "TRUE",
	}
	var err error
	if c.Tempo, err = strconv.Atoi(strings.TrimSpace(values["TEMPO"])); err != nil || c.Tempo <= 0 {
		return nil, &FormatError{Line: 1, Msg: fmt.Sprintf("invalid TEMPO %q", values["TEMPO"])}
	}
	if c.End, err = strconv.Atoi(strings.TrimSpace(values["END"])); err != nil || c.End < 1 {
		return nil, &FormatError{Line: 3, Msg: fmt.Sprintf("invalid END %q", values["END"])}
	}
	if c.Bars, err = decodeBars(values["SCORE"]); err != nil {
		return nil, err
	}
	return c, nil
}

// decodeBars walks the SCORE body three slots at a time. A '0' digit is an
// empty slot; otherwise the digit is scale+1 followed by instrument+1.
// Decoding stops at a carriage return or the end of the text, even inside a
// note, dropping any partially read bar.
func decodeBars(s string) ([]score.Bar, error) {
	var bars []score.Bar
	i := 0
	for i < len(s) {
		var bar score.Bar
		for j := 0; j < slotsPerBar; j++ {
			if i >= len(s) || s[i] == '\r' {
				return bars, nil
			}
			scale, ok := hexDigit(s[i])
			if !ok {
				return nil, &FormatError{Line: 0, Msg: fmt.Sprintf("invalid digit %q at offset %d", s[i], i)}
			}
			i++
			if scale == 0 {
				continue
			}
			if i >= len(s) || s[i] == '\r' {
				return bars, nil
			}
			tone, ok := hexDigit(s[i])
			if !ok || tone == 0 {
				return nil, &FormatError{Line: 0, Msg: fmt.Sprintf("invalid instrument digit %q at offset %d", s[i], i)}
			}
			i++
			bar = append(bar, note.NoteEntry(note.Note((tone-1)<<8|(scale-1))))
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// Apply writes the parsed bars starting at the current end mark and merges the
// header into s.
func (c *Compact) Apply(s *score.Score) {
	oldEnd := s.End
	for i, bar := range c.Bars {
		s.SetBar(oldEnd+i, bar)
	}
	s.End += c.End - 1
	if s.Tempo != c.Tempo {
		s.InsertTempo(oldEnd, c.Tempo)
	}
	s.Tempo = c.Tempo
	s.Beats = 3
	if c.Time44 {
		s.Beats = 4
	}
	s.Loop = c.Loop
	s.Grow(s.End + 1)
}

// EncodeCompact renders bars [0, End) of s. Only notes without accidentals on
// instruments and scales 0-14, at most three per bar, can be expressed; tempo
// markers other than a leading one are dropped.
func EncodeCompact(s *score.Score) (string, error) {
	tempo := s.Tempo
	if t, ok := s.LeadingTempo(); ok {
		tempo = t
	}
	var body strings.Builder
	for i := 0; i < s.End && i < len(s.Notes); i++ {
		slots := 0
		for _, e := range s.Notes[i] {
			if e.IsTempo() {
				continue
			}
			f := note.Decode(e.Note)
			switch {
			case slots == slotsPerBar:
				return "", fmt.Errorf("bar %d: more than %d notes", i, slotsPerBar)
			case f.Sharp || f.Flat:
				return "", fmt.Errorf("bar %d: note %v has an accidental", i, e.Note)
			case f.Instrument > 14 || f.Scale > 14:
				return "", fmt.Errorf("bar %d: note %v out of range", i, e.Note)
			}
			body.WriteString(strconv.FormatInt(int64(f.Scale+1), 16))
			body.WriteString(strconv.FormatInt(int64(f.Instrument+1), 16))
			slots++
		}
		for ; slots < slotsPerBar; slots++ {
			body.WriteByte('0')
		}
	}
	return strings.Join([]string{
		"SCORE=" + strings.ToUpper(body.String()),
		"TEMPO=" + strconv.Itoa(tempo),
		"LOOP=" + boolWord(s.Loop),
		"END=" + strconv.Itoa(s.End+1),
		"TIME44=" + boolWord(s.Beats != 3),
	}, "\n") + "\n", nil
}

func boolWord(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
