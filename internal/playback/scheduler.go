// Package playback drives the animated walk across the score and fires each
// bar's notes as the walker crosses its bar line.
//
// The scheduler is a pure function of the timestamps handed to Tick. All
// positions are in screen dots: bars are 32 dots apart, the first visible bar
// line sits at dot 16 and the walker starts scrolling the view once it reaches
// dot 120.
package playback

import (
	"math"
	"time"

	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/score"
	"github.com/cbegin/msq-go/internal/timer"
)

type State int

const (
	StateEdit State = iota
	StateEntering
	StatePlaying
	StateLeaving
)

func (s State) String() string {
	switch s {
	case StateEdit:
		return "edit"
	case StateEntering:
		return "entering"
	case StatePlaying:
		return "playing"
	case StateLeaving:
		return "leaving"
	}
	return "unknown"
}

const (
	BarWidth    = 32
	VisibleBars = 6

	StartX  = -16
	StageX  = 72
	ScrollX = 120
	ExitX   = 247

	loopX = StageX - BarWidth

	maxFrameGap = 32 * time.Millisecond
	stallFrame  = 16 * time.Millisecond
	walkPeriod  = 100 * time.Millisecond

	SpriteWalkA  = 0
	SpriteWalkB  = 1
	SpriteHop    = 2
	SpriteLeaveA = 8
	SpriteLeaveB = 9
)

// Voices receives grouped note triggers: every pitch payload in the bar that
// belongs to one instrument, to be started after lead.
type Voices interface {
	Trigger(instrument int, pitches []uint8, lead time.Duration)
}

type Options struct {
	// OnState is called after every state transition.
	OnState func(State)
	// OnTempo is called when a tempo marker is reached.
	OnTempo func(tempo int)
	// OnBar is called after a bar has been handed to the voices.
	OnBar func(bar int)
	// OnLoop is called after the walker wraps back to the first bar.
	OnLoop func()
}

type Scheduler struct {
	score  *score.Score
	voices Voices
	opts   Options

	state    State
	view     int
	x        float64
	scroll   float64
	offset   float64
	position int
	sprite   int
	hop      bool
	tempo    int

	started bool
	start   time.Duration
	last    time.Duration
	walk    *timer.Trigger
}

func New(s *score.Score, v Voices) *Scheduler {
	return NewWithOptions(s, v, Options{})
}

func NewWithOptions(s *score.Score, v Voices, opts Options) *Scheduler {
	p := &Scheduler{score: s, voices: v, opts: opts}
	p.walk = timer.New(walkPeriod, func(*timer.Trigger) {
		if p.sprite == SpriteWalkB {
			p.sprite = SpriteWalkA
		} else {
			p.sprite = SpriteWalkB
		}
	})
	p.reset()
	return p
}

func (p *Scheduler) reset() {
	p.x = StartX
	p.offset = StartX
	p.scroll = 0
	p.position = 0
	p.sprite = SpriteWalkA
	p.hop = false
	p.started = false
	p.walk.Enabled = true
}

// SetScore swaps the score read during playback. It is only honoured in the
// edit state.
func (p *Scheduler) SetScore(s *score.Score) {
	if p.state == StateEdit {
		p.score = s
	}
}

func (p *Scheduler) State() State { return p.state }

// View is the first visible bar.
func (p *Scheduler) View() int { return p.view }

func (p *Scheduler) X() float64 { return p.x }

func (p *Scheduler) Scroll() float64 { return p.scroll }

// Position is the bar line the walker is heading for, offset by one: the bar
// most recently triggered is Position-2.
func (p *Scheduler) Position() int { return p.position }

// Tempo is the tempo in effect for the running playback.
func (p *Scheduler) Tempo() int { return p.tempo }

func (p *Scheduler) Hopping() bool { return p.hop && p.state == StatePlaying }

// Sprite is the walker frame to draw.
func (p *Scheduler) Sprite() int {
	if p.Hopping() {
		return SpriteHop
	}
	return p.sprite
}

// Start leaves the edit state and walks on stage from the left.
func (p *Scheduler) Start() bool {
	if p.state != StateEdit {
		return false
	}
	p.view = 0
	p.reset()
	p.setState(StateEntering)
	return true
}

// Stop sends the walker off stage. It is a no-op unless entering or playing.
func (p *Scheduler) Stop() bool {
	if p.state != StateEntering && p.state != StatePlaying {
		return false
	}
	p.offset = p.x
	p.started = false
	p.hop = false
	p.setState(StateLeaving)
	return true
}

// Tick advances the animation to now. It reports whether anything visible
// changed.
func (p *Scheduler) Tick(now time.Duration) bool {
	switch p.state {
	case StateEntering:
		p.enter(now)
	case StatePlaying:
		p.play(now)
	case StateLeaving:
		p.leave(now)
	default:
		return false
	}
	return true
}

func (p *Scheduler) elapsed(now time.Duration) time.Duration {
	if !p.started {
		p.start = now
		p.started = true
	}
	return now - p.start
}

func (p *Scheduler) enter(now time.Duration) {
	diff := p.elapsed(now)
	p.x = math.Min(float64(diff/(5*time.Millisecond))+p.offset, StageX)
	if (diff/walkPeriod)%2 == 0 {
		p.sprite = SpriteWalkB
	} else {
		p.sprite = SpriteWalkA
	}
	if p.x < StageX {
		return
	}
	p.tempo = p.score.Tempo
	if p.tempo <= 0 {
		p.tempo = score.DefaultTempo
	}
	p.beginBar(now)
	p.setState(StatePlaying)
	if p.score.End <= 0 {
		p.Stop()
		return
	}
	p.cross()
	p.checkEnd(now)
}

// beginBar anchors the playing clock at the walker's current spot with bar 0
// ahead of it.
func (p *Scheduler) beginBar(now time.Duration) {
	p.last = now
	p.offset = p.x
	p.scroll = 0
	p.position = 1
	p.sprite = SpriteWalkB
	p.walk.Enable(now)
	p.checkHop()
}

func (p *Scheduler) play(now time.Duration) {
	dt := now - p.last
	if dt > maxFrameGap {
		dt = stallFrame
	}
	p.last = now
	step := BarWidth * float64(dt) / float64(time.Millisecond) * float64(p.tempo) / 60000

	p.walk.Fire(now)

	nextBar := float64(16 + BarWidth*(p.position-p.view+1) - 8)
	switch {
	case p.x < ScrollX:
		p.x += step
		if p.x >= nextBar {
			p.cross()
		} else if p.x >= ScrollX {
			p.scroll = p.x - ScrollX
			p.x = ScrollX
		}
	case p.view <= p.score.End-VisibleBars:
		p.x = ScrollX
		// The next bar line passes the walker when scroll reaches half a bar.
		if p.scroll < BarWidth/2 && p.scroll+step >= BarWidth/2 {
			p.scroll += step
			p.cross()
			break
		}
		p.scroll += step
		if p.scroll > BarWidth {
			p.scroll -= BarWidth
			p.view++
			if p.view > p.score.End-VisibleBars {
				p.x += p.scroll
				p.scroll = 0
			} else if p.scroll >= BarWidth/2 {
				p.cross()
			}
		}
	default:
		p.x += step
		if p.x >= nextBar {
			p.cross()
		}
	}
	p.checkEnd(now)
}

func (p *Scheduler) checkEnd(now time.Duration) {
	if p.state != StatePlaying || p.position-2 < p.score.End-1 {
		return
	}
	if !p.score.Loop {
		p.Stop()
		return
	}
	p.view = 0
	p.x = loopX
	p.beginBar(now)
	if p.opts.OnLoop != nil {
		p.opts.OnLoop()
	}
}

func (p *Scheduler) cross() {
	p.position++
	p.scheduleBar(p.position - 2)
	p.checkHop()
}

func (p *Scheduler) checkHop() {
	p.hop = p.score.HasNotes(p.position - 1)
}

// scheduleBar hands each instrument's pitches in bar i to the voices, lowest
// instrument first. Tempo markers change the running tempo instead.
func (p *Scheduler) scheduleBar(i int) {
	if i < 0 || i >= len(p.score.Notes) {
		return
	}
	var groups [32][]uint8
	for _, e := range p.score.Notes[i] {
		if e.IsTempo() {
			p.tempo = e.Tempo
			if p.opts.OnTempo != nil {
				p.opts.OnTempo(e.Tempo)
			}
			continue
		}
		inst := e.Note.Instrument()
		groups[inst] = append(groups[inst], e.Note.Pitch())
	}
	if p.voices != nil {
		for inst, pitches := range groups {
			if len(pitches) > 0 && inst < note.NumInstruments {
				p.voices.Trigger(inst, pitches, 0)
			}
		}
	}
	if p.opts.OnBar != nil {
		p.opts.OnBar(i)
	}
}

func (p *Scheduler) leave(now time.Duration) {
	diff := p.elapsed(now)
	d := float64(diff / (4 * time.Millisecond))
	if p.scroll > 0 && p.scroll < BarWidth {
		p.scroll += d
		if p.scroll > BarWidth {
			p.x += p.scroll - BarWidth
			p.scroll = 0
			p.view++
			p.offset = p.x - d
		}
	} else {
		p.x = d + p.offset
	}
	if (diff/walkPeriod)%2 == 0 {
		p.sprite = SpriteLeaveA
	} else {
		p.sprite = SpriteLeaveB
	}
	if p.x >= ExitX {
		p.reset()
		p.setState(StateEdit)
	}
}

func (p *Scheduler) setState(s State) {
	p.state = s
	if p.opts.OnState != nil {
		p.opts.OnState(s)
	}
}
