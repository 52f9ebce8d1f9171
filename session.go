// Package msq is a bar-grid step sequencer. A Session owns the score being
// edited, its undo history and the playback walk, and is driven by a frame
// clock from whatever front end hosts it.
package msq

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/cbegin/msq-go/internal/format"
	"github.com/cbegin/msq-go/internal/note"
	"github.com/cbegin/msq-go/internal/playback"
	"github.com/cbegin/msq-go/internal/score"
	"github.com/cbegin/msq-go/internal/timer"
	"github.com/cbegin/msq-go/internal/undo"
)

const (
	MinTempo = 50
	MaxTempo = 1000

	// Columns is how many bars of the grid are visible at once.
	Columns = playback.VisibleBars

	feedbackPitch = 8

	endMarkBlink = 150 * time.Millisecond
	eraserBlink  = 200 * time.Millisecond
)

var (
	ErrBusy          = errors.New("msq: playback in progress")
	ErrUnknownPreset = errors.New("msq: unknown preset")
	ErrBeats         = errors.New("msq: beats must be 3 or 4")
)

//go:embed presets/*.json
var builtinPresets embed.FS

type Option func(*sessionConfig)

type sessionConfig struct {
	voices    playback.Voices
	logger    *slog.Logger
	presets   fs.FS
	loop      bool
	tempo     int
	undoLimit int
	onChange  func()
}

func defaultSessionConfig() sessionConfig {
	sub, _ := fs.Sub(builtinPresets, "presets")
	return sessionConfig{
		logger:  slog.New(slog.DiscardHandler),
		presets: sub,
		tempo:   score.DefaultTempo,
	}
}

// WithVoices routes note triggers and feedback sounds.
func WithVoices(v playback.Voices) Option {
	return func(cfg *sessionConfig) {
		cfg.voices = v
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *sessionConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithPresets replaces the built-in songs. Every *.json file at the root of
// fsys becomes a preset named after its base name.
func WithPresets(fsys fs.FS) Option {
	return func(cfg *sessionConfig) {
		cfg.presets = fsys
	}
}

func WithLoop(enabled bool) Option {
	return func(cfg *sessionConfig) {
		cfg.loop = enabled
	}
}

// WithTempo sets the tempo of a blank score.
func WithTempo(tempo int) Option {
	return func(cfg *sessionConfig) {
		if tempo > 0 {
			cfg.tempo = tempo
		}
	}
}

func WithUndoLimit(n int) Option {
	return func(cfg *sessionConfig) {
		cfg.undoLimit = n
	}
}

// WithOnChange installs the redraw callback, called after anything that
// changes the grid.
func WithOnChange(fn func()) Option {
	return func(cfg *sessionConfig) {
		cfg.onChange = fn
	}
}

// Session is not safe for concurrent use.
type Session struct {
	score   *score.Score
	history undo.Log
	sched   *playback.Scheduler
	voices  playback.Voices
	log     *slog.Logger
	cfg     sessionConfig

	view    int
	maxBars int
	tool    Tool
	preset  string

	endMarkCursor *timer.Trigger
	eraserCursor  *timer.Trigger
}

func NewSession(opts ...Option) *Session {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Session{
		score:  score.New(),
		voices: cfg.voices,
		log:    cfg.logger,
		cfg:    cfg,
		tool:   InstrumentTool(0),
	}
	s.history.Limit = cfg.undoLimit
	s.blank()
	s.sched = playback.NewWithOptions(s.score, cfg.voices, playback.Options{
		OnState: s.stateChanged,
		OnTempo: func(tempo int) {
			s.log.Debug("tempo change", "tempo", tempo)
		},
	})
	s.endMarkCursor = timer.New(endMarkBlink, s.blinkFor(EndMarkTool))
	s.eraserCursor = timer.New(eraserBlink, s.blinkFor(EraserTool))
	return s
}

func (s *Session) blinkFor(t Tool) func(*timer.Trigger) {
	return func(tr *timer.Trigger) {
		if s.tool != t {
			tr.Disable()
			return
		}
		tr.Frame ^= 1
	}
}

func (s *Session) blank() {
	s.score.ResetToDefault()
	s.score.Tempo = s.cfg.tempo
	s.score.Loop = s.cfg.loop
	s.maxBars = score.DefaultMaxBars
	s.view = 0
	s.preset = ""
}

func (s *Session) stateChanged(st playback.State) {
	s.log.Debug("playback state", "state", st.String())
	if st == playback.StateEdit {
		s.view = s.clampView(s.sched.View())
	}
	s.changed()
}

func (s *Session) changed() {
	if s.cfg.onChange != nil {
		s.cfg.onChange()
	}
}

func (s *Session) sound(instrument int, pitch uint8) {
	if s.voices != nil {
		s.voices.Trigger(instrument, []uint8{pitch}, 0)
	}
}

func (s *Session) editable() error {
	if s.sched.State() != playback.StateEdit {
		return ErrBusy
	}
	return nil
}

// Score is the live score. Callers must treat it as read-only.
func (s *Session) Score() *score.Score { return s.score }

func (s *Session) State() playback.State { return s.sched.State() }

func (s *Session) Scheduler() *playback.Scheduler { return s.sched }

func (s *Session) Tool() Tool { return s.tool }

// Preset is the name of the song last loaded, or "" once anything else
// replaced it.
func (s *Session) Preset() string { return s.preset }

// UndoLen is the number of edits that can be undone.
func (s *Session) UndoLen() int { return s.history.Len() }

// SelectTool changes the tool and plays its sound.
func (s *Session) SelectTool(t Tool, now time.Duration) {
	s.tool = t
	switch {
	case t.IsEndMark():
		s.endMarkCursor.Frame = 0
		s.endMarkCursor.Enable(now)
		s.sound(note.SoundEndMark, feedbackPitch)
	case t.IsEraser():
		s.eraserCursor.Frame = 0
		s.eraserCursor.Enable(now)
		s.sound(note.SoundClick, feedbackPitch)
	default:
		inst, _ := t.Instrument()
		s.sound(inst, feedbackPitch)
	}
}

// CursorFrame is the blink phase of the end mark or eraser cursor.
func (s *Session) CursorFrame() int {
	switch {
	case s.tool.IsEndMark():
		return s.endMarkCursor.Frame
	case s.tool.IsEraser():
		return s.eraserCursor.Frame
	}
	return 0
}

// View is the first visible bar. During playback it follows the walker.
func (s *Session) View() int {
	if s.sched.State() != playback.StateEdit {
		return s.sched.View()
	}
	return s.view
}

// MaxBars bounds scrolling: the view never goes past MaxBars-Columns.
func (s *Session) MaxBars() int { return s.maxBars }

func (s *Session) clampView(v int) int {
	if hi := s.maxBars - Columns; v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}

func (s *Session) SetView(v int) error {
	if err := s.editable(); err != nil {
		return err
	}
	s.view = s.clampView(v)
	s.changed()
	return nil
}

func (s *Session) Scroll(delta int) error {
	return s.SetView(s.view + delta)
}

// BarForColumn converts a grid column into a bar index. Columns 0 and 1 sit
// left of the first visible bar line.
func (s *Session) BarForColumn(col int) int {
	return s.View() + col - 2
}

// Place applies a click at bar and scale with the selected tool.
// Clicks that change nothing are not errors.
func (s *Session) Place(bar, scale int, mod Modifier) error {
	if err := s.editable(); err != nil {
		return err
	}
	if s.tool.IsEndMark() {
		if bar < 0 || bar >= len(s.score.Notes) {
			return nil
		}
		s.history.Record(undo.EndMark(s.score.End))
		s.score.MoveEndMark(bar)
		s.log.Debug("end mark moved", "bar", bar)
		s.sound(note.SoundEndMark, feedbackPitch)
		s.changed()
		return nil
	}
	if bar < 0 || bar >= s.score.End || scale < 0 || scale >= note.NumScales {
		return nil
	}
	if s.tool.IsEraser() || mod.Erase {
		n, i, err := s.score.DeleteTopNoteAtScale(bar, scale)
		if err != nil {
			return nil
		}
		s.history.Record(undo.Delete(bar, i, n))
		s.sound(note.SoundClick, feedbackPitch)
		s.changed()
		return nil
	}
	inst, _ := s.tool.Instrument()
	n, err := s.score.AddNote(bar, note.Encode(inst, scale, mod.Sharp, mod.Flat))
	if err != nil {
		s.log.Debug("note rejected", "bar", bar, "scale", scale, "err", err)
		return nil
	}
	s.history.Record(undo.Add(bar, len(s.score.Notes[bar])-1, n))
	s.sound(inst, n.Pitch())
	s.changed()
	return nil
}

// Undo reverts the newest edit. It reports false when there was nothing to
// undo.
func (s *Session) Undo() (bool, error) {
	if err := s.editable(); err != nil {
		return false, err
	}
	e, ok := s.history.Undo(s.score)
	if !ok {
		return false, nil
	}
	s.log.Debug("undo", "kind", e.Kind.String(), "bar", e.Bar)
	s.sound(note.SoundUndo, feedbackPitch)
	s.changed()
	return true, nil
}

// Clear replaces the score with a blank one and forgets the undo history.
func (s *Session) Clear() error {
	if err := s.editable(); err != nil {
		return err
	}
	s.blank()
	s.history.Clear()
	s.sound(note.SoundClear, feedbackPitch)
	s.changed()
	return nil
}

func (s *Session) SetTempo(tempo int) error {
	if err := s.editable(); err != nil {
		return err
	}
	s.score.Tempo = min(max(tempo, MinTempo), MaxTempo)
	s.changed()
	return nil
}

// ToggleLoop flips the loop flag. It is allowed during playback; the walker
// reads it when it reaches the end mark.
func (s *Session) ToggleLoop() bool {
	s.score.Loop = !s.score.Loop
	s.sound(note.SoundClick, feedbackPitch)
	s.changed()
	return s.score.Loop
}

func (s *Session) SetBeats(beats int) error {
	if err := s.editable(); err != nil {
		return err
	}
	if beats != 3 && beats != 4 {
		return ErrBeats
	}
	s.score.Beats = beats
	s.sound(note.SoundClick, feedbackPitch)
	s.changed()
	return nil
}

// Presets lists the available song names in order.
func (s *Session) Presets() []string {
	if s.cfg.presets == nil {
		return nil
	}
	matches, err := fs.Glob(s.cfg.presets, "*.json")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".json"))
	}
	sort.Strings(names)
	return names
}

// LoadPreset replaces the score with a built-in song.
func (s *Session) LoadPreset(name string) error {
	if err := s.editable(); err != nil {
		return err
	}
	if s.cfg.presets == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	raw, err := fs.ReadFile(s.cfg.presets, name+".json")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	doc, err := format.ParseStructured(raw)
	if err != nil {
		return fmt.Errorf("preset %s: %w", name, err)
	}
	*s.score = *doc.Score()
	s.history.Clear()
	s.maxBars = s.score.End + 1
	s.view = 0
	s.preset = name
	s.log.Debug("preset loaded", "name", name, "end", s.score.End)
	s.changed()
	return nil
}

// Replace loads a copy of sc wholesale, the way a preset is loaded.
func (s *Session) Replace(sc *score.Score) error {
	if err := s.editable(); err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return err
	}
	*s.score = *sc.Copy()
	s.history.Clear()
	s.maxBars = s.score.End + 1
	s.view = 0
	s.preset = ""
	s.changed()
	return nil
}

// Import replaces the score with the concatenation of files, ordered by the
// number in their names. Each file is applied whole or not at all; the first
// failure stops the batch, keeping what was already appended. A batch whose
// first file fails leaves the score untouched.
func (s *Session) Import(files []format.File) error {
	if err := s.editable(); err != nil {
		return err
	}
	batch := append([]format.File(nil), files...)
	format.SortFiles(batch)

	started := false
	for _, f := range batch {
		doc, err := parseFile(f)
		if err != nil {
			if started {
				s.closeImport()
			}
			return fmt.Errorf("import %s: %w", f.Name, err)
		}
		if !started {
			s.beginImport()
			started = true
		}
		doc.Apply(s.score)
		s.log.Debug("imported", "file", f.Name, "end", s.score.End)
	}
	if started {
		s.closeImport()
	}
	return nil
}

func parseFile(f format.File) (format.Applier, error) {
	text, err := format.DecodeText(f.Data)
	if err != nil {
		return nil, err
	}
	return format.Parse(format.KindOf(f.Name), text)
}

// ImportText imports a single document already decoded to text.
func (s *Session) ImportText(kind format.Kind, text string) error {
	if err := s.editable(); err != nil {
		return err
	}
	doc, err := format.Parse(kind, text)
	if err != nil {
		return err
	}
	s.beginImport()
	doc.Apply(s.score)
	s.closeImport()
	return nil
}

// ImportQuery imports a song spelled out in query parameters.
func (s *Session) ImportQuery(v url.Values) error {
	text, err := format.AssembleQuery(v)
	if err != nil {
		return err
	}
	return s.ImportText(format.KindCompact, text)
}

// ImportURL downloads and imports a song.
func (s *Session) ImportURL(ctx context.Context, client *http.Client, rawURL string) error {
	if err := s.editable(); err != nil {
		return err
	}
	kind, text, err := format.Fetch(ctx, client, rawURL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return s.ImportText(kind, text)
}

func (s *Session) beginImport() {
	s.score.ResetForImport()
	s.maxBars = 0
	s.preset = ""
}

// closeImport finishes a batch: the view returns to the start, scrolling is
// bounded by the new end mark and a leading tempo marker becomes the tempo.
func (s *Session) closeImport() {
	s.score.Grow(s.score.End + 1)
	if s.score.Tempo <= 0 {
		s.score.Tempo = s.cfg.tempo
	}
	s.maxBars = s.score.End + 1
	s.view = 0
	if tempo, ok := s.score.LeadingTempo(); ok {
		s.score.Tempo = tempo
	}
	s.history.Clear()
	s.changed()
}

func (s *Session) Export() ([]byte, error) { return format.EncodeStructured(s.score) }

func (s *Session) ExportYAML() ([]byte, error) { return format.EncodeYAML(s.score) }

func (s *Session) ExportCompact() (string, error) { return format.EncodeCompact(s.score) }

// Play starts the walk from the first bar.
func (s *Session) Play() bool {
	if !s.sched.Start() {
		return false
	}
	s.sound(note.SoundClick, feedbackPitch)
	return true
}

// Stop sends the walker off stage.
func (s *Session) Stop() bool {
	if !s.sched.Stop() {
		return false
	}
	s.sound(note.SoundClick, feedbackPitch)
	return true
}

// Tick advances animation and playback to now. It reports whether a redraw
// is due.
func (s *Session) Tick(now time.Duration) bool {
	redraw := s.endMarkCursor.Fire(now)
	redraw = s.eraserCursor.Fire(now) || redraw
	return s.sched.Tick(now) || redraw
}

// Frame is what a front end needs to draw the walker.
type Frame struct {
	State    playback.State
	View     int
	X        float64
	Scroll   float64
	Lift     int
	Sprite   int
	Position int
	Tempo    int
}

func (s *Session) Frame() Frame {
	f := Frame{
		State:    s.sched.State(),
		View:     s.View(),
		X:        s.sched.X(),
		Scroll:   s.sched.Scroll(),
		Lift:     s.sched.Lift(),
		Sprite:   s.sched.Sprite(),
		Position: s.sched.Position(),
		Tempo:    s.score.Tempo,
	}
	if f.State == playback.StatePlaying {
		f.Tempo = s.sched.Tempo()
	}
	return f
}
