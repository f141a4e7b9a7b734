// Package mode defines the editing session's mode machine: a registry of
// named modes with enforced single-active-mode transitions. Concrete
// modes live in the session package; this package owns the interface and
// the transition discipline.
package mode

import (
	"github.com/dshills/geostorm/internal/input/pointer"
)

// Kind classifies what a mode does with pointer input.
type Kind uint8

const (
	// KindIdle is the rest state: hit-testing and selection only.
	KindIdle Kind = iota

	// KindDraw creates new features from pointer input.
	KindDraw

	// KindEdit manipulates existing features.
	KindEdit
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDraw:
		return "draw"
	case KindEdit:
		return "edit"
	default:
		return "idle"
	}
}

// Mode is one editing mode.
type Mode interface {
	// Name returns the unique mode identifier (e.g. "draw-polygon").
	Name() string

	// Kind classifies the mode.
	Kind() Kind

	// Enter is called when the mode becomes active.
	Enter(ctx *Context) error

	// Exit is called when the mode is deactivated. Exit always runs
	// before the next mode's Enter, so a mode can rely on cleaning up
	// exactly once per activation.
	Exit(ctx *Context) error

	// HandlePointer processes a pointer event while this mode is active.
	HandlePointer(ev pointer.Event, ctx *Context) error
}

// Context carries transition information into mode callbacks.
type Context struct {
	// PreviousMode is the mode being left (set during Enter).
	PreviousMode string

	// NextMode is the mode being entered (set during Exit).
	NextMode string

	// Extra holds mode-specific data.
	Extra map[string]any
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{Extra: make(map[string]any)}
}

// Standard mode names.
const (
	ModeIdle          = "idle"
	ModeEdit          = "edit"
	ModeDrawPolygon   = "draw-polygon"
	ModeDrawLine      = "draw-line"
	ModeDrawPoint     = "draw-point"
	ModeDrawRectangle = "draw-rectangle"
)
