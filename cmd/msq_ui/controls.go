package main

import (
	"fmt"
	"image"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	msq "github.com/cbegin/msq-go"
	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/playback"
)

const numTools = note.NumSelectable + 2

type uiLayout struct {
	frame, score, scrollbar image.Rectangle
	tools                   [numTools]image.Rectangle
	play, loop, beats, undo image.Rectangle
	clear, save             image.Rectangle
	presets                 []image.Rectangle
	tempo, volume, status   image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	pad := 16
	rowH := 40
	var l uiLayout

	l.score = image.Rect(pad, pad, pad+scoreW*magnify, pad+scoreH*magnify)
	l.frame = l.score.Inset(-4)
	y := l.frame.Max.Y + 8
	l.scrollbar = image.Rect(pad, y, l.score.Max.X, y+28)

	y = l.scrollbar.Max.Y + 8
	toolW := (l.score.Dx() - (numTools-1)*4) / numTools
	for i := range l.tools {
		x := pad + i*(toolW+4)
		l.tools[i] = image.Rect(x, y, x+toolW, y+rowH)
	}

	y += rowH + 8
	x := pad
	next := func(w int) image.Rectangle {
		r := image.Rect(x, y, x+w, y+rowH)
		x += w + 8
		return r
	}
	l.play = next(110)
	l.loop = next(110)
	l.beats = next(110)
	l.undo = next(110)
	l.clear = next(110)
	l.save = next(l.score.Max.X - x)

	y += rowH + 8
	x = pad
	for range g.presets {
		l.presets = append(l.presets, next(120))
	}

	y += rowH + 8
	half := (l.score.Dx() - 8) / 2
	l.tempo = image.Rect(pad, y, pad+half, y+rowH)
	l.volume = image.Rect(pad+half+8, y, l.score.Max.X, y+rowH)

	y += rowH + 8
	l.status = image.Rect(pad, y, l.score.Max.X, y+rowH)
	return l
}

func toolForIndex(i int) msq.Tool {
	t, _ := msq.ToolFromIndex(i)
	return t
}

func toolLabel(i int) string {
	switch i {
	case note.SoundEndMark:
		return "E"
	case note.SoundEraser:
		return "X"
	}
	return strconv.Itoa(i + 1)
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	left := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	right := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	if left || right {
		if col, scale, ok := g.scoreCursor(); ok {
			mod := msq.Modifier{
				Sharp: ebiten.IsKeyPressed(ebiten.KeyShift),
				Flat:  ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta),
				Erase: right,
			}
			g.report(g.session.Place(g.session.BarForColumn(col), scale, mod))
			return
		}
	}
	if left {
		g.click(mx, my, l)
	}

	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = 0
	}
	switch g.dragging {
	case 1:
		g.player.SetMasterVolume(sliderFrac(mx, l.volume))
	case 2:
		g.report(g.session.SetTempo(tempoFromFrac(sliderFrac(mx, l.tempo))))
	case 3:
		g.report(g.session.SetView(int(sliderFrac(mx, l.scrollbar) * float64(g.session.MaxBars()-1))))
	}

	_, wy := ebiten.Wheel()
	if wy != 0 && pointInRect(mx, my, l.score) {
		step := 1
		if wy > 0 {
			step = -1
		}
		g.report(g.session.Scroll(step))
	}
}

func (g *game) click(mx, my int, l uiLayout) {
	for i, r := range l.tools {
		if pointInRect(mx, my, r) {
			g.session.SelectTool(toolForIndex(i), g.now())
			return
		}
	}
	for i, r := range l.presets {
		if pointInRect(mx, my, r) {
			name := g.presets[i]
			if err := g.session.LoadPreset(name); err != nil {
				g.report(err)
				return
			}
			g.setStatus("Loaded " + name)
			return
		}
	}
	switch {
	case pointInRect(mx, my, l.play):
		g.togglePlay()
	case pointInRect(mx, my, l.loop):
		g.session.ToggleLoop()
	case pointInRect(mx, my, l.beats):
		beats := 4
		if g.session.Score().Beats == 4 {
			beats = 3
		}
		g.report(g.session.SetBeats(beats))
	case pointInRect(mx, my, l.undo):
		g.undo()
	case pointInRect(mx, my, l.clear):
		g.clear()
	case pointInRect(mx, my, l.save):
		g.save()
	case pointInRect(mx, my, l.volume):
		g.dragging = 1
	case pointInRect(mx, my, l.tempo):
		g.dragging = 2
	case pointInRect(mx, my, l.scrollbar):
		g.dragging = 3
	}
}

func tempoFromFrac(f float64) int {
	return msq.MinTempo + int(f*float64(msq.MaxTempo-msq.MinTempo))
}

func tempoFrac(tempo int) float64 {
	return float64(tempo-msq.MinTempo) / float64(msq.MaxTempo-msq.MinTempo)
}

func (g *game) drawControls(screen *ebiten.Image, l uiLayout) {
	edit := g.session.State() == playback.StateEdit
	sc := g.session.Score()

	viewFrac := float64(g.session.View()) / float64(max(1, g.session.MaxBars()-1))
	g.drawSlider(screen, l.scrollbar, fmt.Sprintf("Bar %d", g.session.View()+1), viewFrac)

	current := g.session.Tool().Index()
	for i, r := range l.tools {
		g.drawButton(screen, r, "", i == current, edit)
		swatch := r.Inset(10)
		swatch.Max.Y = swatch.Min.Y + 8
		fillRect(screen, swatch, instrumentColors[i])
		label := toolLabel(i)
		g.drawText(screen, label, r.Min.X+(r.Dx()-len(label)*charW)/2, r.Max.Y-lineH-2)
	}

	playLabel := "Play"
	if !edit {
		playLabel = "Stop"
	}
	g.drawButton(screen, l.play, playLabel, !edit, true)
	g.drawButton(screen, l.loop, "Loop", sc.Loop, true)
	g.drawButton(screen, l.beats, fmt.Sprintf("%d/4", sc.Beats), false, edit)
	g.drawButton(screen, l.undo, "Undo", false, edit && g.session.UndoLen() > 0)
	g.drawButton(screen, l.clear, "Clear", false, edit)
	g.drawButton(screen, l.save, "Save", false, true)

	for i, r := range l.presets {
		g.drawButton(screen, r, shortenEnd(g.presets[i], 7), g.presets[i] == g.session.Preset(), edit)
	}

	g.drawSlider(screen, l.tempo, "Tempo", tempoFrac(sc.Tempo))
	g.drawSlider(screen, l.volume, "Volume", g.player.MasterVolume())

	g.drawSunkenPanel(screen, l.status)
	msg := shortenEnd(g.status, (l.status.Dx()-16)/charW)
	if g.statusErr {
		g.drawPlainText(screen, msg, l.status.Min.X+8, l.status.Min.Y+6, cursorColor)
		return
	}
	g.drawText(screen, msg, l.status.Min.X+8, l.status.Min.Y+6)
}
