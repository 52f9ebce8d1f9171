package note

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bit layout of a packed note: bits 8-12 instrument, bit 7 sharp, bit 6 flat,
// bits 0-5 scale.
const (
	FlatBit  = 0x40
	SharpBit = 0x80

	scaleMask      = 0x3f
	pitchMask      = 0xff
	instrumentBits = 8
	instrumentMask = 0x1f
)

const (
	NumInstruments = 21
	NumSelectable  = 15
	NumScales      = 13

	SoundEndMark = 15
	SoundEraser  = 16
	SoundClick   = 17
	SoundClear   = 19
	SoundUndo    = 20
)

type Note uint16

type Fields struct {
	Instrument int
	Scale      int
	Sharp      bool
	Flat       bool
}

// Encode packs the fields into a note. Sharp wins when both accidentals are set.
func Encode(instrument, scale int, sharp, flat bool) Note {
	n := Note((instrument&instrumentMask)<<instrumentBits | scale&scaleMask)
	switch {
	case sharp:
		n |= SharpBit
	case flat:
		n |= FlatBit
	}
	return n
}

func Decode(n Note) Fields {
	return Fields{
		Instrument: n.Instrument(),
		Scale:      n.Base(),
		Sharp:      n&SharpBit != 0,
		Flat:       n&FlatBit != 0,
	}
}

func (n Note) Instrument() int { return int(n>>instrumentBits) & instrumentMask }

// Base is the scale with accidentals stripped. Together with the instrument it
// keys duplicate detection and deletion.
func (n Note) Base() int { return int(n & scaleMask) }

// Pitch is the payload handed to a voice: scale and accidental bits.
func (n Note) Pitch() uint8 { return uint8(n & pitchMask) }

func (n Note) SameKey(o Note) bool {
	return n.Instrument() == o.Instrument() && n.Base() == o.Base()
}

func (n Note) String() string {
	f := Decode(n)
	acc := ""
	switch {
	case f.Sharp:
		acc = "#"
	case f.Flat:
		acc = "b"
	}
	return fmt.Sprintf("%d:%d%s", f.Instrument, n.Base(), acc)
}

var semitones = [...]int{14, 12, 11, 9, 7, 6, 4, 2, 0, -1, -3, -5, -6}

// ReferenceKey is the MIDI key the pitch table is relative to (F4).
const ReferenceKey = 65

// Semitone returns the offset of a pitch payload from the reference key.
// Scale indices past the table clamp to its lowest entry.
func Semitone(pitch uint8) int {
	idx := int(pitch & 0x0f)
	if idx >= len(semitones) {
		idx = len(semitones) - 1
	}
	s := semitones[idx]
	if pitch&SharpBit != 0 {
		s++
	} else if pitch&FlatBit != 0 {
		s--
	}
	return s
}

func MIDIKey(pitch uint8) int { return ReferenceKey + Semitone(pitch) }

const tempoPrefix = "TEMPO="

// IsTempoMarker reports whether s is the legacy "TEMPO=<n>" form and returns
// the tempo it carries.
func IsTempoMarker(s string) (int, bool) {
	if !strings.HasPrefix(s, tempoPrefix) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s[len(tempoPrefix):]))
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s[len(tempoPrefix):]), 64)
		if ferr != nil {
			return 0, false
		}
		v = int(f)
	}
	return v, true
}

type EntryKind int

const (
	KindNote EntryKind = iota
	KindTempo
)

// Entry is one element of a bar: either a note or a tempo change marker.
type Entry struct {
	Kind  EntryKind
	Note  Note
	Tempo int
}

func NoteEntry(n Note) Entry     { return Entry{Kind: KindNote, Note: n} }
func TempoEntry(tempo int) Entry { return Entry{Kind: KindTempo, Tempo: tempo} }

func (e Entry) IsTempo() bool { return e.Kind == KindTempo }

func (e Entry) String() string {
	if e.IsTempo() {
		return tempoPrefix + strconv.Itoa(e.Tempo)
	}
	return e.Note.String()
}

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.IsTempo() {
		return json.Marshal(tempoPrefix + strconv.Itoa(e.Tempo))
	}
	return json.Marshal(uint16(e.Note))
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return e.fromString(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("bar entry %s: want a number or %q string", data, tempoPrefix+"<n>")
	}
	return e.fromNumber(f)
}

func (e Entry) MarshalYAML() (interface{}, error) {
	if e.IsTempo() {
		return tempoPrefix + strconv.Itoa(e.Tempo), nil
	}
	return int(e.Note), nil
}

func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("bar entry at line %d: want a scalar", value.Line)
	}
	if value.Tag == "!!str" || strings.HasPrefix(value.Value, tempoPrefix) {
		return e.fromString(value.Value)
	}
	var f float64
	if err := value.Decode(&f); err != nil {
		return fmt.Errorf("bar entry at line %d: %w", value.Line, err)
	}
	return e.fromNumber(f)
}

func (e *Entry) fromString(s string) error {
	tempo, ok := IsTempoMarker(s)
	if !ok {
		return fmt.Errorf("bar entry %q: not a tempo marker", s)
	}
	*e = TempoEntry(tempo)
	return nil
}

func (e *Entry) fromNumber(f float64) error {
	if f < 0 || f > 0xffff {
		return fmt.Errorf("bar entry %v: out of range", f)
	}
	*e = NoteEntry(Note(f))
	return nil
}
