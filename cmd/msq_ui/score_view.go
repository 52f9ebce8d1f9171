package main

import (
	"image"
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	msq "github.com/cbegin/msq-go"
	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/playback"
)

// The score is drawn in dots on a 256x160 image and scaled up. Bar lines sit
// 32 dots apart starting at dot 16; scales are 8 dots apart from dot 40.
const (
	scoreW   = 256
	scoreH   = 160
	magnify  = 3
	gridLeft = 8
	gridTop  = 41
	gridRgt  = playback.ExitX - 4
	gridBot  = 148 - 4
)

var (
	staffBg       = color.RGBA{248, 248, 240, 255}
	staffLine     = color.RGBA{200, 200, 200, 255}
	barLineColor  = color.RGBA{160, 192, 176, 255}
	downbeatColor = color.RGBA{248, 144, 0, 255}
	cursorColor   = color.RGBA{255, 0, 0, 255}
	endMarkColor  = color.RGBA{32, 32, 32, 255}
	walkerColors  = [...]color.RGBA{{216, 40, 0, 255}, {168, 16, 0, 255}, {252, 152, 56, 255}}
)

// instrumentColors tints each instrument's note head; the last two are the
// end mark and eraser tool icons.
var instrumentColors = [note.NumSelectable + 2]color.RGBA{
	{216, 40, 0, 255}, {0, 168, 0, 255}, {248, 184, 0, 255}, {0, 120, 248, 255},
	{136, 112, 0, 255}, {248, 120, 88, 255}, {104, 68, 252, 255}, {0, 168, 168, 255},
	{168, 0, 32, 255}, {88, 216, 84, 255}, {248, 56, 152, 255}, {152, 120, 248, 255},
	{228, 92, 16, 255}, {60, 188, 252, 255}, {120, 120, 120, 255}, {32, 32, 32, 255},
	{255, 255, 255, 255},
}

// toGrid converts a point on the score image to a column and scale. ok is
// false off the grid, between bar lines and over the clef area.
func toGrid(x, y, view int) (col, scale int, ok bool) {
	if x < gridLeft || x > gridRgt || y < gridTop || y > gridBot {
		return 0, 0, false
	}
	col = (x - gridLeft) / 16
	if col%2 != 0 {
		return 0, 0, false
	}
	col /= 2
	scale = (y - gridTop) / 8
	if (view == 0 && col < 2) || (view == 1 && col == 0) {
		return 0, 0, false
	}
	return col, scale, true
}

func (g *game) scoreCursor() (col, scale int, ok bool) {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()
	if !pointInRect(mx, my, l.score) {
		return 0, 0, false
	}
	return toGrid((mx-l.score.Min.X)/magnify, (my-l.score.Min.Y)/magnify, g.session.View())
}

func (g *game) drawScore(screen *ebiten.Image, rect image.Rectangle) {
	img := g.scoreImg
	img.Fill(staffBg)
	for i := 0; i < 5; i++ {
		y := float64(56 + 16*i)
		ebitenutil.DrawRect(img, gridLeft, y, scoreW-2*gridLeft, 1, staffLine)
	}

	f := g.session.Frame()
	sc := g.session.Score()
	sched := g.session.Scheduler()
	edit := f.State == playback.StateEdit
	col, curScale, onGrid := g.scoreCursor()
	onGrid = onGrid && edit

	if f.View == 0 {
		g.drawPlainText(img, "G", 12-int(f.Scroll), 72, endMarkColor)
		if sc.Loop {
			drawRepeat(img, 41-f.Scroll)
		}
	} else if f.View == 1 && sc.Loop {
		drawRepeat(img, 9-f.Scroll)
	}

	first := 0
	if f.View < 2 {
		first = 2 - f.View
	}
	for i := first; i < 9; i++ {
		x := 16 + 32*float64(i) - f.Scroll
		bar := f.View + i - 2
		lineColor := barLineColor
		if sc.IsDownbeat(bar) {
			lineColor = downbeatColor
			if edit {
				g.drawPlainText(img, strconv.Itoa(bar/max(sc.Beats, 1)+1), int(x)-3, 28, downbeatColor)
			}
		}
		for y := gridTop; y < 148; y += 2 {
			ebitenutil.DrawRect(img, x, float64(y), 1, 1, lineColor)
		}
		if bar == sc.End {
			drawEndMark(img, x, sc.Loop)
		}
		if bar < 0 || bar >= len(sc.Notes) {
			continue
		}
		delta := float64(sched.NoteBounce(bar, x))
		ledger := false
		for _, e := range sc.Notes[bar] {
			if e.IsTempo() {
				continue
			}
			inst := e.Note.Instrument()
			scale := e.Note.Base() & 0x0f
			if g.session.Tool().IsEraser() && onGrid && col == i && curScale == scale && g.session.CursorFrame() == 1 {
				continue
			}
			if !ledger && scale >= 11 {
				ledger = true
				ebitenutil.DrawRect(img, x-10, 136+delta, 20, 1, staffLine)
			}
			y := 40 + float64(scale*8) + delta
			c := instrumentColors[min(inst, len(instrumentColors)-1)]
			ebitenutil.DrawRect(img, x-6, y+2, 12, 12, c)
			ebitenutil.DrawRect(img, x-6, y+2, 12, 1, color.White)
			fl := note.Decode(e.Note)
			switch {
			case fl.Sharp:
				g.drawPlainText(img, "#", int(x)-14, int(y)+2, endMarkColor)
			case fl.Flat:
				g.drawPlainText(img, "b", int(x)-14, int(y)+2, endMarkColor)
			}
		}
	}

	if onGrid && (g.session.CursorFrame() == 0 || !(g.session.Tool().IsEndMark() || g.session.Tool().IsEraser())) {
		x := float64(16 + 32*col - 8)
		y := float64(40 + curScale*8)
		ebitenutil.DrawRect(img, x, y, 16, 1, cursorColor)
		ebitenutil.DrawRect(img, x, y+15, 16, 1, cursorColor)
		ebitenutil.DrawRect(img, x, y, 1, 16, cursorColor)
		ebitenutil.DrawRect(img, x+15, y, 1, 16, cursorColor)
	}

	if !edit {
		g.drawWalker(img, f)
	}
	tempo := "TEMPO " + strconv.Itoa(f.Tempo)
	g.drawPlainText(img, tempo, scoreW-len(tempo)*6-8, 4, endMarkColor)
	if g.bomb.Enabled {
		g.drawBomb(img)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(magnify, magnify)
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	screen.DrawImage(img, op)
}

// drawWalker draws the walker as a block figure: a body that bobs with the
// walk frames, turns orange in the air and stays put while leaving.
func (g *game) drawWalker(img *ebiten.Image, f msq.Frame) {
	x := f.X
	y := float64(gridTop - 22 - f.Lift)
	body := walkerColors[0]
	switch f.Sprite {
	case playback.SpriteWalkB, playback.SpriteLeaveB:
		body = walkerColors[1]
	case playback.SpriteHop:
		body = walkerColors[2]
	}
	ebitenutil.DrawRect(img, x-6, y, 12, 6, walkerColors[0])
	ebitenutil.DrawRect(img, x-5, y+6, 10, 10, body)
	legOffset := 0.0
	if f.Sprite == playback.SpriteWalkB || f.Sprite == playback.SpriteLeaveB {
		legOffset = 2
	}
	ebitenutil.DrawRect(img, x-5+legOffset, y+16, 3, 4, endMarkColor)
	ebitenutil.DrawRect(img, x+2-legOffset, y+16, 3, 4, endMarkColor)
}

func drawRepeat(img *ebiten.Image, x float64) {
	ebitenutil.DrawRect(img, x, 56, 2, 64, endMarkColor)
	ebitenutil.DrawRect(img, x+4, 56, 1, 64, endMarkColor)
	ebitenutil.DrawRect(img, x+7, 78, 2, 2, endMarkColor)
	ebitenutil.DrawRect(img, x+7, 94, 2, 2, endMarkColor)
}

func drawEndMark(img *ebiten.Image, x float64, loop bool) {
	if loop {
		ebitenutil.DrawRect(img, x-9, 78, 2, 2, endMarkColor)
		ebitenutil.DrawRect(img, x-9, 94, 2, 2, endMarkColor)
		ebitenutil.DrawRect(img, x-5, 56, 1, 64, endMarkColor)
		ebitenutil.DrawRect(img, x-2, 56, 2, 64, endMarkColor)
		return
	}
	ebitenutil.DrawRect(img, x-5, 56, 1, 64, endMarkColor)
	ebitenutil.DrawRect(img, x-2, 56, 3, 64, endMarkColor)
}

// drawBomb flashes the staff after a clear, one frame per bomb tick.
func (g *game) drawBomb(img *ebiten.Image) {
	r := float64(8 + 12*g.bomb.Frame)
	c := color.RGBA{255, uint8(220 - 50*g.bomb.Frame), 0, 160}
	ebitenutil.DrawRect(img, scoreW/2-r, 88-r/2, 2*r, r, c)
}
