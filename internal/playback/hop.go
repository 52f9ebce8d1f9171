package playback

import "math"

var hopArc = [...]int{
	0, 2, 4, 6, 8, 10, 12, 13, 14, 15, 16, 17, 18, 18, 19, 19, 19,
	19, 19, 18, 18, 17, 16, 15, 14, 13, 12, 10, 8, 6, 4, 2, 0,
}

var bounceArc = [...]int{
	0, 1, 2, 3, 3, 4, 5, 5, 6, 6, 7, 7, 8, 8, 8, 8, 8,
	8, 8, 8, 8, 7, 7, 6, 6, 5, 5, 4, 3, 3, 2, 1, 0,
}

// Lift is how many dots the walker is raised above the ground for the
// current hop frame.
func (p *Scheduler) Lift() int {
	if !p.Hopping() {
		return 0
	}
	if p.x == ScrollX {
		if p.scroll == 16 {
			return 0
		}
		return hopHeight(halfBar(p.scroll, false))
	}
	return hopHeight(math.Mod(p.x-8, BarWidth))
}

func hopHeight(pos float64) int {
	i := int(math.Round(pos)) % BarWidth
	if i < 0 {
		i += BarWidth
	}
	return hopArc[i]
}

func halfBar(scroll float64, inclusive bool) float64 {
	if scroll > 16 || (inclusive && scroll == 16) {
		return scroll - 16
	}
	return scroll + 16
}

// NoteBounce is how far the notes of bar are pushed down while the walker
// lands on them. barX is the bar line's screen position in dots.
func (p *Scheduler) NoteBounce(bar int, barX float64) int {
	if p.state != StatePlaying || p.position-2 != bar {
		return 0
	}
	idx := p.x + 8 - barX
	if p.x == ScrollX {
		idx = halfBar(p.scroll, true)
	}
	i := int(math.Round(idx))
	if i < 0 || i >= len(bounceArc) {
		return 0
	}
	return bounceArc[i]
}
