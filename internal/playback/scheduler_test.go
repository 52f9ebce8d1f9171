package playback

import (
	"math"
	"testing"
	"time"

	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/score"
)

type trigger struct {
	inst    int
	pitches []uint8
	lead    time.Duration
}

type recordingVoices struct {
	triggers []trigger
}

func (r *recordingVoices) Trigger(inst int, pitches []uint8, lead time.Duration) {
	r.triggers = append(r.triggers, trigger{inst: inst, pitches: append([]uint8(nil), pitches...), lead: lead})
}

const frame = 16 * time.Millisecond

func newScore(end int, bars ...score.Bar) *score.Score {
	s := score.New()
	s.End = end
	for i, b := range bars {
		s.Notes[i] = b
	}
	return s
}

func bar(notes ...note.Note) score.Bar {
	b := score.Bar{}
	for _, n := range notes {
		b = append(b, note.NoteEntry(n))
	}
	return b
}

// runUntil ticks at 60fps until cond holds or the limit elapses.
func runUntil(p *Scheduler, now *time.Duration, limit time.Duration, cond func() bool) bool {
	deadline := *now + limit
	for *now < deadline {
		p.Tick(*now)
		if cond() {
			return true
		}
		*now += frame
	}
	return false
}

func TestSingleBarSchedulesOnEntryThenLeaves(t *testing.T) {
	s := newScore(1, bar(note.Encode(0, 8, false, false)))
	v := &recordingVoices{}
	var states []State
	p := NewWithOptions(s, v, Options{OnState: func(st State) { states = append(states, st) }})

	if !p.Start() {
		t.Fatalf("start from edit should succeed")
	}
	var now time.Duration
	if !runUntil(p, &now, 2*time.Second, func() bool { return p.State() != StateEntering }) {
		t.Fatalf("never left entering state")
	}
	if p.State() != StateLeaving {
		t.Fatalf("state = %v, want leaving", p.State())
	}
	if len(v.triggers) != 1 {
		t.Fatalf("triggers = %+v, want one", v.triggers)
	}
	got := v.triggers[0]
	if got.inst != 0 || len(got.pitches) != 1 || got.pitches[0] != 8 || got.lead != 0 {
		t.Fatalf("trigger = %+v", got)
	}
	if !runUntil(p, &now, 3*time.Second, func() bool { return p.State() == StateEdit }) {
		t.Fatalf("never returned to edit")
	}
	want := []State{StateEntering, StatePlaying, StateLeaving, StateEdit}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
	if len(v.triggers) != 1 {
		t.Fatalf("leaving must not trigger notes: %+v", v.triggers)
	}
}

func TestPlaysEveryBarOnceThenLeaves(t *testing.T) {
	for _, end := range []int{3, 20} {
		s := newScore(end)
		for i := 0; i < end; i++ {
			s.Notes[i] = bar(note.Encode(i%15, i%13, false, false))
		}
		s.Tempo = 400
		var bars []int
		playing := 0
		p := NewWithOptions(s, &recordingVoices{}, Options{
			OnBar: func(b int) { bars = append(bars, b) },
			OnState: func(st State) {
				if st == StatePlaying {
					playing++
				}
			},
		})
		p.Start()
		var now time.Duration
		if !runUntil(p, &now, 2*time.Minute, func() bool { return p.State() == StateEdit }) {
			t.Fatalf("end=%d: playback did not finish", end)
		}
		if len(bars) != end {
			t.Fatalf("end=%d: scheduled %v", end, bars)
		}
		for i, b := range bars {
			if b != i {
				t.Fatalf("end=%d: bars out of order: %v", end, bars)
			}
		}
		if playing != 1 {
			t.Fatalf("end=%d: entered playing %d times", end, playing)
		}
	}
}

func TestScrollAdvancesView(t *testing.T) {
	s := newScore(30)
	s.Tempo = 300
	maxView := 0
	p := NewWithOptions(s, nil, Options{OnBar: func(int) {}})
	p.Start()
	var now time.Duration
	runUntil(p, &now, time.Minute, func() bool {
		if p.View() > maxView {
			maxView = p.View()
		}
		if p.State() == StatePlaying && p.X() > ScrollX {
			if p.View() <= s.End-VisibleBars {
				t.Fatalf("walker passed the scroll column at view %d", p.View())
			}
		}
		return p.State() == StateEdit
	})
	if maxView != s.End-VisibleBars+1 {
		t.Fatalf("max view = %d, want %d", maxView, s.End-VisibleBars+1)
	}
}

// Clocks whose per-frame step divides half a bar land exactly on the scroll
// trigger point.
func TestScrollTriggersOnExactStep(t *testing.T) {
	for _, tc := range []struct {
		tempo int
		dt    time.Duration
	}{
		{125, 15 * time.Millisecond},
		{375, 20 * time.Millisecond},
	} {
		s := newScore(20)
		s.Tempo = tc.tempo
		var bars []int
		var at []time.Duration
		var now time.Duration
		p := NewWithOptions(s, nil, Options{OnBar: func(b int) {
			bars = append(bars, b)
			at = append(at, now)
		}})
		p.Start()
		for limit := now + time.Minute; p.State() != StateEdit && now < limit; now += tc.dt {
			p.Tick(now)
		}
		if len(bars) != s.End {
			t.Fatalf("tempo %d: bars = %v, want %d", tc.tempo, bars, s.End)
		}
		barLen := time.Minute / time.Duration(tc.tempo)
		for i := range bars {
			if bars[i] != i {
				t.Fatalf("tempo %d: bars = %v", tc.tempo, bars)
			}
			if i == 0 {
				continue
			}
			if gap := at[i] - at[i-1]; gap < barLen-2*tc.dt || gap > barLen+2*tc.dt {
				t.Fatalf("tempo %d: bar %d came %v after bar %d, want about %v", tc.tempo, i, gap, i-1, barLen)
			}
		}
	}
}

func TestLoopWrapsToFirstBar(t *testing.T) {
	s := newScore(3, bar(note.Encode(1, 1, false, false)))
	s.Loop = true
	s.Tempo = 300
	loops := 0
	var bars []int
	var p *Scheduler
	p = NewWithOptions(s, &recordingVoices{}, Options{
		OnBar: func(b int) { bars = append(bars, b) },
		OnLoop: func() {
			loops++
			if p.Position() != 1 || p.View() != 0 {
				t.Fatalf("after wrap position=%d view=%d", p.Position(), p.View())
			}
		},
	})
	p.Start()
	var now time.Duration
	runUntil(p, &now, 10*time.Second, func() bool { return loops >= 2 })
	if loops < 2 {
		t.Fatalf("loops = %d", loops)
	}
	if p.State() != StatePlaying {
		t.Fatalf("looping playback left playing state: %v", p.State())
	}
	want := []int{0, 1, 2, 0, 1, 2}
	for i := range want {
		if bars[i] != want[i] {
			t.Fatalf("bars = %v", bars)
		}
	}
	if !p.Stop() || p.State() != StateLeaving {
		t.Fatalf("stop during loop should leave")
	}
}

func TestTempoMarkerChangesRunningTempo(t *testing.T) {
	s := newScore(2, score.Bar{note.TempoEntry(200), note.NoteEntry(note.Encode(2, 3, false, false))})
	v := &recordingVoices{}
	var tempos []int
	p := NewWithOptions(s, v, Options{OnTempo: func(t int) { tempos = append(tempos, t) }})
	p.Start()
	var now time.Duration
	runUntil(p, &now, 2*time.Second, func() bool { return p.State() == StatePlaying })
	if p.Tempo() != 200 || len(tempos) != 1 || tempos[0] != 200 {
		t.Fatalf("tempo = %d, callbacks %v", p.Tempo(), tempos)
	}
	if s.Tempo != score.DefaultTempo {
		t.Fatalf("score tempo changed during playback: %d", s.Tempo)
	}
	if len(v.triggers) != 1 || v.triggers[0].inst != 2 {
		t.Fatalf("tempo marker must not trigger a voice: %+v", v.triggers)
	}
}

func TestBarGroupsByInstrument(t *testing.T) {
	s := newScore(2, bar(
		note.Encode(3, 1, false, false),
		note.Encode(1, 2, true, false),
		note.Encode(3, 5, false, true),
	))
	v := &recordingVoices{}
	p := New(s, v)
	p.Start()
	var now time.Duration
	runUntil(p, &now, 2*time.Second, func() bool { return p.State() == StatePlaying })
	if len(v.triggers) != 2 {
		t.Fatalf("triggers = %+v", v.triggers)
	}
	if v.triggers[0].inst != 1 || v.triggers[0].pitches[0] != 2|note.SharpBit {
		t.Fatalf("first group = %+v", v.triggers[0])
	}
	second := v.triggers[1]
	if second.inst != 3 || len(second.pitches) != 2 || second.pitches[0] != 1 || second.pitches[1] != 5|note.FlatBit {
		t.Fatalf("second group = %+v", second)
	}
}

func TestStallIsClamped(t *testing.T) {
	s := newScore(10)
	p := New(s, nil)
	p.Start()
	var now time.Duration
	runUntil(p, &now, 2*time.Second, func() bool { return p.State() == StatePlaying })
	x := p.X()
	p.Tick(now + time.Second)
	want := x + 32*16*float64(score.DefaultTempo)/60000
	if math.Abs(p.X()-want) > 1e-9 {
		t.Fatalf("x after stall = %v, want %v", p.X(), want)
	}
}

func TestEmptyScoreLeavesImmediately(t *testing.T) {
	s := newScore(0)
	v := &recordingVoices{}
	p := New(s, v)
	p.Start()
	var now time.Duration
	runUntil(p, &now, 2*time.Second, func() bool { return p.State() != StateEntering })
	if p.State() != StateLeaving || len(v.triggers) != 0 {
		t.Fatalf("state %v triggers %+v", p.State(), v.triggers)
	}
}

func TestStartAndStopGuards(t *testing.T) {
	p := New(newScore(4), nil)
	if p.Stop() {
		t.Fatalf("stop in edit should be a no-op")
	}
	if p.Tick(0) {
		t.Fatalf("tick in edit should report no change")
	}
	p.Start()
	if p.Start() {
		t.Fatalf("second start should be rejected")
	}
	if !p.Stop() || p.State() != StateLeaving {
		t.Fatalf("stop while entering should leave")
	}
}

func TestHopFollowsNextBar(t *testing.T) {
	s := newScore(4, bar(), bar(note.Encode(0, 0, false, false)))
	p := New(s, nil)
	p.Start()
	var now time.Duration
	runUntil(p, &now, 2*time.Second, func() bool { return p.State() == StatePlaying })
	if !p.Hopping() || p.Sprite() != SpriteHop {
		t.Fatalf("walker should hop towards bar 1")
	}
	if p.Lift() != hopArc[0] {
		t.Fatalf("lift at the bar line = %d", p.Lift())
	}
	runUntil(p, &now, 5*time.Second, func() bool { return p.Position() == 3 })
	if p.Hopping() {
		t.Fatalf("bar 2 is empty, no hop expected")
	}
}

func TestNoteBounce(t *testing.T) {
	s := newScore(4, bar(note.Encode(0, 0, false, false)))
	p := New(s, nil)
	p.Start()
	var now time.Duration
	runUntil(p, &now, 2*time.Second, func() bool { return p.State() == StatePlaying })
	// Bar 0's line is at dot 80 while the view is at 0; the walker stands at 72.
	if got := p.NoteBounce(0, 80); got != bounceArc[0] {
		t.Fatalf("bounce = %d", got)
	}
	if got := p.NoteBounce(1, 112); got != 0 {
		t.Fatalf("bar not under the walker should not bounce, got %d", got)
	}
}
