// Package timer provides frame-driven periodic callbacks for animation.
package timer

import "time"

// Trigger calls fn whenever more than Interval has passed since the last
// firing. It does nothing on its own; the owner polls Fire once per frame.
type Trigger struct {
	Interval time.Duration
	Enabled  bool
	// Frame is free for the callback to use as an animation counter.
	Frame int

	last time.Duration
	fn   func(*Trigger)
}

func New(interval time.Duration, fn func(*Trigger)) *Trigger {
	return &Trigger{Interval: interval, fn: fn}
}

// Fire runs the callback if the trigger is enabled and due.
func (t *Trigger) Fire(now time.Duration) bool {
	if !t.Enabled || now-t.last <= t.Interval {
		return false
	}
	t.last = now
	if t.fn != nil {
		t.fn(t)
	}
	return true
}

// Enable starts the trigger with its clock anchored at now.
func (t *Trigger) Enable(now time.Duration) {
	t.Enabled = true
	t.last = now
}

func (t *Trigger) Disable() { t.Enabled = false }
