package session

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"

	"github.com/dshills/geostorm/internal/geo"
	"github.com/dshills/geostorm/internal/input/pointer"
	"github.com/dshills/geostorm/internal/session/mode"
)

// idleMode is the rest mode: plain click selection, no gestures.
type idleMode struct {
	session *Session
}

func (m *idleMode) Name() string              { return mode.ModeIdle }
func (m *idleMode) Kind() mode.Kind           { return mode.KindIdle }
func (m *idleMode) Enter(*mode.Context) error { m.session.setSuspended(false); return nil }
func (m *idleMode) Exit(*mode.Context) error  { return nil }

func (m *idleMode) HandlePointer(ev pointer.Event, _ *mode.Context) error {
	if ev.Action != pointer.ActionPress {
		return nil
	}
	hit, found := m.session.store.HitTest(ev.MapPoint, m.session.hitTolerance())
	if !found {
		if !ev.Modifiers.HasShift() {
			m.session.ClearSelection()
		}
		return nil
	}
	if ev.Modifiers.HasShift() {
		return m.session.ToggleSelection(hit.ID())
	}
	return m.session.Select(hit.ID())
}

// editMode owns the editing gestures: handle scaling, multi-drag, lasso
// selection, split-line accumulation, and pending-operation clicks.
type editMode struct {
	session *Session
}

func (m *editMode) Name() string    { return mode.ModeEdit }
func (m *editMode) Kind() mode.Kind { return mode.KindEdit }

func (m *editMode) Enter(*mode.Context) error {
	m.session.setSuspended(true)
	return nil
}

// Exit discards any half-finished gesture; gestures cannot be parked
// across mode switches.
func (m *editMode) Exit(*mode.Context) error {
	m.session.discardGesture()
	m.session.setSuspended(false)
	return nil
}

func (m *editMode) HandlePointer(ev pointer.Event, _ *mode.Context) error {
	return m.session.handleEditPointer(ev)
}

// drawMode creates features from pointer input. One instance per shape;
// the accumulated vertices live on the mode and are zeroed on every
// enter and exit.
type drawMode struct {
	session  *Session
	name     string
	vertices []geom.Point
	anchor   geom.Point
	anchored bool
}

func newDrawMode(s *Session, name string) *drawMode {
	return &drawMode{session: s, name: name}
}

func (m *drawMode) Name() string    { return m.name }
func (m *drawMode) Kind() mode.Kind { return mode.KindDraw }

func (m *drawMode) Enter(*mode.Context) error {
	m.reset()
	m.session.setSuspended(true)
	return nil
}

func (m *drawMode) Exit(*mode.Context) error {
	m.reset()
	m.session.setSuspended(false)
	return nil
}

func (m *drawMode) reset() {
	m.vertices = nil
	m.anchored = false
}

func (m *drawMode) HandlePointer(ev pointer.Event, _ *mode.Context) error {
	switch m.name {
	case mode.ModeDrawPoint:
		return m.handlePoint(ev)
	case mode.ModeDrawRectangle:
		return m.handleRectangle(ev)
	default:
		return m.handlePath(ev)
	}
}

// handlePoint creates a point feature on every press.
func (m *drawMode) handlePoint(ev pointer.Event) error {
	if ev.Action != pointer.ActionPress {
		return nil
	}
	pt := m.session.maybeSnap(ev.MapPoint)
	return m.create(geom.Point{X: pt.X, Y: pt.Y})
}

// handlePath accumulates vertices for polygons and lines; a double-click
// finishes the shape without adding a vertex for the second click.
func (m *drawMode) handlePath(ev pointer.Event) error {
	if ev.Action != pointer.ActionPress {
		return nil
	}
	if m.session.clicks.RecordClick(ev.Position, ev.Timestamp) >= 2 {
		return m.finishPath()
	}
	m.vertices = append(m.vertices, m.session.maybeSnap(ev.MapPoint))
	m.session.log.WithField("vertices", len(m.vertices)).Debug("draw vertex added")
	return nil
}

func (m *drawMode) finishPath() error {
	verts := m.vertices
	m.reset()
	m.session.clicks.Reset()

	if m.name == mode.ModeDrawPolygon {
		if len(verts) < 3 {
			m.session.warn("polygon needs at least three vertices")
			return nil
		}
		ring := make([]geom.Point, len(verts), len(verts)+1)
		copy(ring, verts)
		ring = append(ring, ring[0])
		return m.create(geom.Polygon{ring})
	}

	if len(verts) < 2 {
		m.session.warn("line needs at least two vertices")
		return nil
	}
	return m.create(geom.LineString(verts))
}

// handleRectangle draws with a press-drag-release across two corners.
func (m *drawMode) handleRectangle(ev pointer.Event) error {
	switch ev.Action {
	case pointer.ActionPress:
		m.anchor = m.session.maybeSnap(ev.MapPoint)
		m.anchored = true
	case pointer.ActionRelease:
		if !m.anchored {
			return nil
		}
		anchor := m.anchor
		corner := m.session.maybeSnap(ev.MapPoint)
		m.reset()
		if corner.X == anchor.X || corner.Y == anchor.Y {
			m.session.warn("rectangle has no area")
			return nil
		}
		return m.create(rectangleRing(anchor, corner))
	}
	return nil
}

// create imports a drawn geometry as an undoable create and selects it.
func (m *drawMode) create(g geom.Geom) error {
	f, err := geo.FromGeom(g)
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	f.AssignID()

	id, err := m.session.AddFeature(f)
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	if err := m.session.Select(id); err != nil {
		m.session.log.WithError(err).Warn("select drawn feature")
	}
	m.session.log.WithFields(logrus.Fields{
		"feature": id,
		"type":    f.GeometryType(),
	}).Info("feature drawn")
	return nil
}

// rectangleRing builds a closed counterclockwise rectangle between two
// opposite corners.
func rectangleRing(a, b geom.Point) geom.Polygon {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return geom.Polygon{{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
		{X: minX, Y: minY},
	}}
}
