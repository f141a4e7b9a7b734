// Package pointer models pointer input on the map surface. The host
// adapter supplies each event in two coordinate spaces: screen pixels for
// gesture thresholds (double-click, hit boxes) and projected map
// coordinates for geometry work.
package pointer

import (
	"time"

	"github.com/ctessum/geom"
)

// Button represents a pointer button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary button.
	ButtonLeft
	// ButtonMiddle is the middle button.
	ButtonMiddle
	// ButtonRight is the secondary button.
	ButtonRight
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// Action represents the type of pointer action.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionPress indicates a button press.
	ActionPress
	// ActionRelease indicates a button release.
	ActionRelease
	// ActionMove indicates movement with no button held.
	ActionMove
	// ActionDrag indicates movement with a button held.
	ActionDrag
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	case ActionMove:
		return "move"
	case ActionDrag:
		return "drag"
	default:
		return "none"
	}
}

// Modifier represents keyboard modifiers held during a pointer event.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key.
	ModAlt

	// ModMeta indicates the Meta key.
	ModMeta
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasShift returns true if Shift is held.
func (m Modifier) HasShift() bool { return m.Has(ModShift) }

// HasCtrl returns true if Control is held.
func (m Modifier) HasCtrl() bool { return m.Has(ModCtrl) }

// HasAlt returns true if Alt is held.
func (m Modifier) HasAlt() bool { return m.Has(ModAlt) }

// HasMeta returns true if Meta is held.
func (m Modifier) HasMeta() bool { return m.Has(ModMeta) }

// Position is a screen coordinate in pixels.
type Position struct {
	X int
	Y int
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Distance returns the Manhattan distance (|dx| + |dy|) between two
// positions. Cheap and close enough for click proximity thresholds.
func (p Position) Distance(other Position) int {
	dx := p.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Event is one pointer input event.
type Event struct {
	// Position is the screen coordinate.
	Position Position

	// MapPoint is the same location in projected map coordinates.
	MapPoint geom.Point

	// Button is the button involved, ButtonNone for plain movement.
	Button Button

	// Modifiers are keyboard modifiers held during the event.
	Modifiers Modifier

	// Action is the type of pointer action.
	Action Action

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Press builds a press event stamped with the current time.
func Press(b Button, pos Position, mapPt geom.Point) Event {
	return Event{Position: pos, MapPoint: mapPt, Button: b, Action: ActionPress, Timestamp: time.Now()}
}

// Release builds a release event stamped with the current time.
func Release(b Button, pos Position, mapPt geom.Point) Event {
	return Event{Position: pos, MapPoint: mapPt, Button: b, Action: ActionRelease, Timestamp: time.Now()}
}

// Move builds a buttonless move event stamped with the current time.
func Move(pos Position, mapPt geom.Point) Event {
	return Event{Position: pos, MapPoint: mapPt, Action: ActionMove, Timestamp: time.Now()}
}

// DragTo builds a drag event stamped with the current time.
func DragTo(b Button, pos Position, mapPt geom.Point) Event {
	return Event{Position: pos, MapPoint: mapPt, Button: b, Action: ActionDrag, Timestamp: time.Now()}
}

// WithModifiers returns a copy of the event with modifiers set.
func (e Event) WithModifiers(m Modifier) Event {
	e.Modifiers = m
	return e
}

// WithTime returns a copy of the event with an explicit timestamp.
func (e Event) WithTime(t time.Time) Event {
	e.Timestamp = t
	return e
}
