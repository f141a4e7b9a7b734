package pointer

import "github.com/ctessum/geom"

// DragTracker tracks an in-progress drag in both coordinate spaces.
type DragTracker struct {
	active bool
	button Button

	startPos   Position
	currentPos Position

	startMap   geom.Point
	currentMap geom.Point
}

// NewDragTracker creates an idle drag tracker.
func NewDragTracker() *DragTracker {
	return &DragTracker{}
}

// Start begins a new drag at the given position.
func (t *DragTracker) Start(pos Position, mapPt geom.Point, button Button) {
	t.active = true
	t.button = button
	t.startPos = pos
	t.currentPos = pos
	t.startMap = mapPt
	t.currentMap = mapPt
}

// Update moves the current drag position. It is ignored when no drag is
// active.
func (t *DragTracker) Update(pos Position, mapPt geom.Point) {
	if !t.active {
		return
	}
	t.currentPos = pos
	t.currentMap = mapPt
}

// End clears the drag state.
func (t *DragTracker) End() {
	*t = DragTracker{}
}

// Active returns true if a drag is in progress.
func (t *DragTracker) Active() bool {
	return t.active
}

// Button returns the button held during the drag.
func (t *DragTracker) Button() Button {
	return t.button
}

// StartPos returns where the drag started on screen.
func (t *DragTracker) StartPos() Position {
	return t.startPos
}

// CurrentPos returns the latest screen position.
func (t *DragTracker) CurrentPos() Position {
	return t.currentPos
}

// StartMap returns where the drag started in map coordinates.
func (t *DragTracker) StartMap() geom.Point {
	return t.startMap
}

// CurrentMap returns the latest map coordinate.
func (t *DragTracker) CurrentMap() geom.Point {
	return t.currentMap
}

// Delta returns the screen-space displacement from start.
func (t *DragTracker) Delta() Position {
	return Position{
		X: t.currentPos.X - t.startPos.X,
		Y: t.currentPos.Y - t.startPos.Y,
	}
}

// MapDelta returns the map-space displacement from start.
func (t *DragTracker) MapDelta() (dx, dy float64) {
	return t.currentMap.X - t.startMap.X, t.currentMap.Y - t.startMap.Y
}
