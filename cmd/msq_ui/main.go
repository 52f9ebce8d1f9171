// Command msq_ui is the graphical score editor.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	msq "github.com/cbegin/msq-go"
	"github.com/cbegin/msq-go/internal/config"
	"github.com/cbegin/msq-go/internal/format"
	"github.com/cbegin/msq-go/internal/playback"
	"github.com/cbegin/msq-go/internal/timer"
)

const (
	windowW = 800
	windowH = 800

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale

	bombFrames = 4
)

type game struct {
	session *msq.Session
	player  *msq.Player
	cfg     *config.Config
	presets []string
	start   time.Time

	// 1 volume, 2 tempo, 3 scrollbar
	dragging int
	bomb     *timer.Trigger

	status    string
	statusErr bool

	scoreImg  *ebiten.Image
	textCache map[string]*ebiten.Image
}

func newGame(cfg *config.Config) (*game, error) {
	pl, err := msq.NewPlayer(cfg.Audio.SampleRate)
	if err != nil {
		return nil, err
	}
	pl.SetMasterVolume(cfg.Audio.MasterVolume)
	if err := pl.Start(); err != nil {
		return nil, err
	}
	g := &game{
		player:    pl,
		cfg:       cfg,
		start:     time.Now(),
		status:    "Ready",
		scoreImg:  ebiten.NewImage(scoreW, scoreH),
		textCache: make(map[string]*ebiten.Image, 1024),
	}
	g.bomb = timer.New(80*time.Millisecond, func(t *timer.Trigger) {
		t.Frame++
		if t.Frame >= bombFrames {
			t.Disable()
		}
	})
	g.session = msq.NewSession(
		msq.WithVoices(pl),
		msq.WithTempo(cfg.Editor.DefaultTempo),
		msq.WithLoop(cfg.Editor.Loop),
		msq.WithUndoLimit(cfg.Editor.UndoLimit),
	)
	g.presets = g.session.Presets()
	return g, nil
}

func (g *game) now() time.Duration { return time.Since(g.start) }

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

// report shows err in the status bar. Edits during playback are ignored
// silently.
func (g *game) report(err error) {
	if err == nil || errors.Is(err, msq.ErrBusy) {
		return
	}
	g.status = err.Error()
	g.statusErr = true
}

func (g *game) Update() error {
	now := g.now()
	g.session.Tick(now)
	g.bomb.Fire(now)
	g.handleDrops()
	g.handleKeys()
	g.handleMouse()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()
	g.drawSunkenPanel(screen, l.frame)
	g.drawScore(screen, l.score)
	g.drawControls(screen, l)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	return windowW, windowH
}

func (g *game) Close() { _ = g.player.Close() }

func (g *game) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePlay()
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		g.report(g.session.Scroll(-1))
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		g.report(g.session.Scroll(1))
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyZ):
		g.undo()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.save()
	}
}

// handleDrops imports files dropped on the window as one batch.
func (g *game) handleDrops() {
	dropped := ebiten.DroppedFiles()
	if dropped == nil {
		return
	}
	entries, err := fs.ReadDir(dropped, ".")
	if err != nil {
		g.report(err)
		return
	}
	var files []format.File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(dropped, e.Name())
		if err != nil {
			g.report(err)
			return
		}
		files = append(files, format.File{Name: e.Name(), Data: data})
	}
	g.importFiles(files)
}

func (g *game) importFiles(files []format.File) {
	if len(files) == 0 {
		return
	}
	if err := g.session.Import(files); err != nil {
		g.report(err)
		return
	}
	g.setStatus(fmt.Sprintf("Loaded %d file(s), %d bars", len(files), g.session.Score().End))
}

func (g *game) togglePlay() {
	if g.session.State() == playback.StateEdit {
		g.session.Play()
		g.setStatus("Playing")
		return
	}
	g.session.Stop()
	g.setStatus("Stopped")
}

func (g *game) undo() {
	ok, err := g.session.Undo()
	if err != nil {
		g.report(err)
		return
	}
	if !ok {
		g.setStatus("Nothing to undo")
	}
}

func (g *game) clear() {
	if err := g.session.Clear(); err != nil {
		g.report(err)
		return
	}
	g.bomb.Frame = 0
	g.bomb.Enable(g.now())
	g.setStatus("Cleared")
}

// save writes the score as JSON next to the working directory.
func (g *game) save() {
	data, err := g.session.Export()
	if err != nil {
		g.report(err)
		return
	}
	name := "song.json"
	if p := g.session.Preset(); p != "" {
		name = p + ".json"
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		g.report(err)
		return
	}
	g.setStatus("Saved " + name)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	g, err := newGame(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	if len(os.Args) > 1 {
		var files []format.File
		for _, arg := range os.Args[1:] {
			data, err := os.ReadFile(arg)
			if err != nil {
				log.Fatalf("read %q: %v", arg, err)
			}
			files = append(files, format.File{Name: filepath.Base(arg), Data: data})
		}
		g.importFiles(files)
	}

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("msq editor")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
