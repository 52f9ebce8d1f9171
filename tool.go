package msq

import (
	"fmt"

	"github.com/cbegin/msq-go/internal/note"
)

type toolKind int

const (
	toolInstrument toolKind = iota
	toolEndMark
	toolEraser
)

// Tool is what a click on the grid does: place a note for an instrument, move
// the end mark, or erase.
type Tool struct {
	kind       toolKind
	instrument int
}

var (
	EndMarkTool = Tool{kind: toolEndMark}
	EraserTool  = Tool{kind: toolEraser}
)

// InstrumentTool selects one of the placeable instruments. Out-of-range values
// are clamped.
func InstrumentTool(i int) Tool {
	if i < 0 {
		i = 0
	}
	if i >= note.NumSelectable {
		i = note.NumSelectable - 1
	}
	return Tool{kind: toolInstrument, instrument: i}
}

// ToolFromIndex maps the legacy selector numbering: 0-14 instruments,
// 15 end mark, 16 eraser.
func ToolFromIndex(i int) (Tool, bool) {
	switch {
	case i >= 0 && i < note.NumSelectable:
		return InstrumentTool(i), true
	case i == note.SoundEndMark:
		return EndMarkTool, true
	case i == note.SoundEraser:
		return EraserTool, true
	}
	return Tool{}, false
}

// Index is the inverse of ToolFromIndex.
func (t Tool) Index() int {
	switch t.kind {
	case toolEndMark:
		return note.SoundEndMark
	case toolEraser:
		return note.SoundEraser
	}
	return t.instrument
}

// Instrument reports the instrument placed by the tool.
func (t Tool) Instrument() (int, bool) {
	return t.instrument, t.kind == toolInstrument
}

func (t Tool) IsEndMark() bool { return t.kind == toolEndMark }

func (t Tool) IsEraser() bool { return t.kind == toolEraser }

func (t Tool) String() string {
	switch t.kind {
	case toolEndMark:
		return "endmark"
	case toolEraser:
		return "eraser"
	}
	return fmt.Sprintf("instrument %d", t.instrument)
}

// Modifier carries the keyboard and mouse state of a grid click.
type Modifier struct {
	Sharp bool
	Flat  bool
	// Erase deletes regardless of the selected tool (right click).
	Erase bool
}
