package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cbegin/msq-go/internal/score"
)

// Document is a parsed structured (.json or YAML) song.
type Document struct {
	Notes []score.Bar `json:"notes" yaml:"notes"`
	End   looseInt    `json:"end" yaml:"end"`
	Tempo looseInt    `json:"tempo" yaml:"tempo"`
	Loop  bool        `json:"loop" yaml:"loop"`
	Beats *looseInt   `json:"beats,omitempty" yaml:"beats,omitempty"`
}

// looseInt accepts numbers and numeric strings; older exports wrote the
// tempo as a string.
type looseInt int

func (v *looseInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return v.parse(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = looseInt(f)
	return nil
}

func (v *looseInt) UnmarshalYAML(value *yaml.Node) error {
	return v.parse(value.Value)
}

func (v *looseInt) parse(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*v = looseInt(f)
	return nil
}

// ParseStructured decodes JSON, falling back to YAML.
func ParseStructured(data []byte) (*Document, error) {
	var doc Document
	if errJSON := json.Unmarshal(data, &doc); errJSON != nil {
		doc = Document{}
		if errYAML := yaml.Unmarshal(data, &doc); errYAML != nil {
			return nil, &DecodeError{Err: fmt.Errorf("%v / %v", errJSON, errYAML)}
		}
	}
	if doc.End < 0 {
		return nil, &DecodeError{Err: fmt.Errorf("negative end %d", doc.End)}
	}
	if doc.Tempo <= 0 {
		return nil, &DecodeError{Err: errors.New("tempo must be positive")}
	}
	if doc.Beats != nil && *doc.Beats != 3 && *doc.Beats != 4 {
		return nil, &DecodeError{Err: fmt.Errorf("beats %d must be 3 or 4", *doc.Beats)}
	}
	return &doc, nil
}

// Apply appends bars [0, End) at the current end mark. When the tempo changes
// a marker is placed at the first appended bar unless it already starts with
// one.
func (d *Document) Apply(s *score.Score) {
	start := s.End
	n := int(d.End)
	for i := 0; i < n; i++ {
		var bar score.Bar
		if i < len(d.Notes) && d.Notes[i] != nil {
			bar = append(score.Bar(nil), d.Notes[i]...)
		}
		s.SetBar(start+i, bar)
	}
	tempo := int(d.Tempo)
	if n > 0 && s.Tempo != tempo && !s.StartsWithTempo(start) {
		s.InsertTempo(start, tempo)
	}
	s.Tempo = tempo
	s.End += n
	s.Loop = d.Loop
	if d.Beats != nil {
		s.Beats = int(*d.Beats)
	}
	s.Grow(s.End + 1)
}

// Score builds a standalone score from the document, as when a song is
// loaded rather than imported: no tempo marker is added and bars at or past
// End are kept.
func (d *Document) Score() *score.Score {
	s := &score.Score{
		End:   int(d.End),
		Tempo: int(d.Tempo),
		Loop:  d.Loop,
		Beats: score.DefaultBeats,
	}
	if d.Beats != nil {
		s.Beats = int(*d.Beats)
	}
	for i, b := range d.Notes {
		if b != nil {
			s.SetBar(i, append(score.Bar(nil), b...))
		}
	}
	s.Grow(s.End + 1)
	return s
}

// EncodeStructured renders the whole score as JSON.
func EncodeStructured(s *score.Score) ([]byte, error) {
	return json.Marshal(s)
}

func EncodeYAML(s *score.Score) ([]byte, error) {
	return yaml.Marshal(s)
}
