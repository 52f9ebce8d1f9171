package note

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEncodeDecode(t *testing.T) {
	cases := []struct {
		name  string
		inst  int
		scale int
		sharp bool
		flat  bool
		want  Note
	}{
		{name: "plain", inst: 3, scale: 8, want: 0x0308},
		{name: "sharp", inst: 0, scale: 5, sharp: true, want: 0x0085},
		{name: "flat", inst: 14, scale: 12, flat: true, want: 0x0e4c},
		{name: "sharp wins", inst: 1, scale: 1, sharp: true, flat: true, want: 0x0181},
		{name: "reserved sound", inst: 20, scale: 0, want: 0x1400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Encode(tc.inst, tc.scale, tc.sharp, tc.flat)
			if got != tc.want {
				t.Fatalf("Encode = %#04x, want %#04x", uint16(got), uint16(tc.want))
			}
			f := Decode(got)
			if f.Instrument != tc.inst || f.Scale != tc.scale {
				t.Fatalf("Decode = %+v", f)
			}
			if f.Sharp && f.Flat {
				t.Fatalf("both accidentals set: %+v", f)
			}
		})
	}
}

func TestEncodeDecodeRoundTripsEveryNote(t *testing.T) {
	accidentals := []struct{ sharp, flat bool }{{false, false}, {true, false}, {false, true}}
	seen := make(map[Note]bool, NumInstruments*16*len(accidentals))
	for inst := 0; inst < NumInstruments; inst++ {
		for scale := 0; scale < 16; scale++ {
			for _, acc := range accidentals {
				n := Encode(inst, scale, acc.sharp, acc.flat)
				want := Fields{Instrument: inst, Scale: scale, Sharp: acc.sharp, Flat: acc.flat}
				if got := Decode(n); got != want {
					t.Fatalf("Decode(Encode(%+v)) = %+v", want, got)
				}
				if seen[n] {
					t.Fatalf("%+v collides with another note (%#04x)", want, uint16(n))
				}
				seen[n] = true
			}
		}
	}
}

func TestSameKeyIgnoresAccidentals(t *testing.T) {
	a := Encode(2, 7, true, false)
	b := Encode(2, 7, false, true)
	if !a.SameKey(b) {
		t.Fatalf("%v and %v should share a key", a, b)
	}
	if a.SameKey(Encode(3, 7, true, false)) {
		t.Fatalf("different instruments must not share a key")
	}
}

func TestSemitone(t *testing.T) {
	cases := []struct {
		pitch uint8
		want  int
	}{
		{0, 14},
		{8, 0},
		{12, -6},
		{8 | SharpBit, 1},
		{8 | FlatBit, -1},
		{15, -6},
	}
	for _, tc := range cases {
		if got := Semitone(tc.pitch); got != tc.want {
			t.Fatalf("Semitone(%#x) = %d, want %d", tc.pitch, got, tc.want)
		}
	}
	if got := MIDIKey(8); got != ReferenceKey {
		t.Fatalf("MIDIKey(8) = %d, want %d", got, ReferenceKey)
	}
}

func TestIsTempoMarker(t *testing.T) {
	if v, ok := IsTempoMarker("TEMPO=180"); !ok || v != 180 {
		t.Fatalf("IsTempoMarker = %d,%v", v, ok)
	}
	if v, ok := IsTempoMarker("TEMPO=92.5"); !ok || v != 92 {
		t.Fatalf("fractional tempo = %d,%v", v, ok)
	}
	for _, s := range []string{"", "TEMPO", "tempo=100", "TEMPO=x"} {
		if _, ok := IsTempoMarker(s); ok {
			t.Fatalf("IsTempoMarker(%q) should fail", s)
		}
	}
}

func TestEntryJSON(t *testing.T) {
	bar := []Entry{NoteEntry(0x0308), TempoEntry(120), NoteEntry(0x0185)}
	raw, err := json.Marshal(bar)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `[776,"TEMPO=120",389]` {
		t.Fatalf("json = %s", raw)
	}
	var back []Entry
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 3 || back[1].Tempo != 120 || !back[1].IsTempo() || back[2].Note != 0x0185 {
		t.Fatalf("round trip = %+v", back)
	}
	if err := json.Unmarshal([]byte(`["hello"]`), &back); err == nil {
		t.Fatalf("expected error for non-marker string")
	}
	if err := json.Unmarshal([]byte(`[true]`), &back); err == nil {
		t.Fatalf("expected error for bool entry")
	}
}

func TestEntryYAML(t *testing.T) {
	var bar []Entry
	if err := yaml.Unmarshal([]byte("[776, TEMPO=90, \"TEMPO=100\"]"), &bar); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(bar) != 3 || bar[0].Note != 776 || bar[1].Tempo != 90 || bar[2].Tempo != 100 {
		t.Fatalf("yaml bar = %+v", bar)
	}
	out, err := yaml.Marshal(bar)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back []Entry
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-unmarshal: %v\n%s", err, out)
	}
	if len(back) != 3 || back[2].Tempo != 100 {
		t.Fatalf("round trip = %+v", back)
	}
}
