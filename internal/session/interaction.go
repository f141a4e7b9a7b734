package session

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"

	"github.com/dshills/geostorm/internal/config"
	"github.com/dshills/geostorm/internal/engine/history"
	"github.com/dshills/geostorm/internal/engine/ops"
	"github.com/dshills/geostorm/internal/geo"
	"github.com/dshills/geostorm/internal/input/pointer"
	"github.com/dshills/geostorm/internal/session/mode"
)

// interaction is the editing sub-state. Exactly one state is active at a
// time; each concrete type carries only the data that state needs, so a
// half-armed scale with leftover lasso points cannot be represented.
type interaction interface {
	interactionName() string
}

// idleInteraction is plain click selection.
type idleInteraction struct{}

func (idleInteraction) interactionName() string { return "select" }

// opKind selects which pending operation is being armed.
type opKind uint8

const (
	opUnion opKind = iota
	opDifference
)

// String returns the operation name.
func (k opKind) String() string {
	if k == opDifference {
		return "difference"
	}
	return "union"
}

// pendingOpState collects polygons by click until two are selected, then
// runs the armed operation.
type pendingOpState struct {
	kind opKind
}

func (p pendingOpState) interactionName() string { return "pending-" + p.kind.String() }

// scaleArmedState is a press on a scale handle that has not moved yet.
type scaleArmedState struct {
	snapshot *geo.Feature
	base     geom.Geom
	handle   Handle
	anchor   geom.Point
	start    geom.Point
}

func (*scaleArmedState) interactionName() string { return "scale-armed" }

// scaleDragState is a live handle drag. Every move rescales the original
// geometry from the anchor, never the previous frame.
type scaleDragState struct {
	snapshot *geo.Feature
	base     geom.Geom
	handle   Handle
	anchor   geom.Point
	start    geom.Point
}

func (*scaleDragState) interactionName() string { return "scale-dragging" }

// dragSnapshot captures one feature at multi-drag start.
type dragSnapshot struct {
	feature *geo.Feature
	g       geom.Geom
}

// multiDragState moves all selected features by one vector. Each move
// recomputes the vector from the press point against the original
// geometries, so position error cannot accumulate across move events.
type multiDragState struct {
	origin    geom.Point
	originals []dragSnapshot
}

func (*multiDragState) interactionName() string { return "multi-drag" }

// lassoState accumulates a freehand ring while the button is held.
type lassoState struct {
	points []geom.Point
}

func (*lassoState) interactionName() string { return "lasso" }

// splitState accumulates a cut line by clicks against a stored target.
type splitState struct {
	targetID string
	vertices []geom.Point
}

func (*splitState) interactionName() string { return "split" }

// InteractionState returns the name of the active editing sub-state.
func (s *Session) InteractionState() string {
	return s.interactionOf().interactionName()
}

func (s *Session) interactionOf() interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interaction
}

func (s *Session) setInteraction(st interaction) {
	s.mu.Lock()
	s.interaction = st
	s.mu.Unlock()
}

// armPending enters the collect-by-click state for a union or difference
// that was triggered with too few polygons selected.
func (s *Session) armPending(kind opKind) {
	s.discardGesture()
	if err := s.modes.Switch(mode.ModeEdit); err != nil {
		s.log.WithError(err).Warn("enter edit mode")
	}
	s.setInteraction(pendingOpState{kind: kind})
	s.log.WithField("operation", kind.String()).Info("awaiting polygon selection")
}

// Confirm executes an armed pending operation ahead of the two-polygon
// threshold check. Confirming with fewer than two polygons selected
// keeps the pending state armed.
func (s *Session) Confirm() error {
	st, pending := s.interactionOf().(pendingOpState)
	if !pending {
		return ErrNothingPending
	}
	polys := s.selectedPolygons()
	if len(polys) < 2 {
		s.warn(fmt.Sprintf("%s needs two polygons selected", st.kind))
		return ErrAwaitingSelection
	}
	if st.kind == opUnion {
		return s.executeUnion(polys)
	}
	return s.executeDifference(polys)
}

// Cancel discards any in-flight gesture without committing anything.
// A cancelled pending operation also clears the selection it collected.
// Cancelling from idle is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	st := s.interaction
	s.mu.Unlock()

	s.discardGesture()
	if dm, isDraw := s.modes.Current().(*drawMode); isDraw {
		dm.reset()
	}
	if _, pending := st.(pendingOpState); pending {
		s.ClearSelection()
	}
	s.log.WithField("state", st.interactionName()).Debug("cancelled")
}

// discardGesture zeroes the transient gesture state and restores any
// live-preview geometry the gesture had pushed to the store. Selection
// is left alone.
func (s *Session) discardGesture() {
	s.mu.Lock()
	st := s.interaction
	s.interaction = idleInteraction{}
	s.mu.Unlock()

	s.drag.End()
	s.clicks.Reset()
	switch prev := st.(type) {
	case *scaleDragState:
		s.restoreScaleOriginal(prev)
	case *multiDragState:
		s.restoreDragOriginals(prev)
	}
}

// BeginSplit arms the split state against the single selected feature.
// Subsequent clicks accumulate the cut line; a double-click runs the
// split.
func (s *Session) BeginSplit() error {
	features := s.selectedFeatures()
	if len(features) == 0 {
		return ErrNoSelection
	}
	if len(features) > 1 {
		return fmt.Errorf("split needs exactly one selected feature, have %d", len(features))
	}
	target := features[0]
	if !target.IsPolygonal() && !target.IsLinear() {
		return fmt.Errorf("cannot split a %s", target.GeometryType())
	}

	s.discardGesture()
	if err := s.modes.Switch(mode.ModeEdit); err != nil {
		s.log.WithError(err).Warn("enter edit mode")
	}
	s.setInteraction(&splitState{targetID: target.ID()})
	s.log.WithField("target", target.ID()).Info("split armed")
	return nil
}

// handleEditPointer dispatches a pointer event to the active editing
// sub-state.
func (s *Session) handleEditPointer(ev pointer.Event) error {
	switch ev.Action {
	case pointer.ActionPress:
		return s.editPress(ev)
	case pointer.ActionMove, pointer.ActionDrag:
		return s.editMove(ev)
	case pointer.ActionRelease:
		return s.editRelease(ev)
	}
	return nil
}

func (s *Session) editPress(ev pointer.Event) error {
	clickCount := s.clicks.RecordClick(ev.Position, ev.Timestamp)

	switch st := s.interactionOf().(type) {
	case pendingOpState:
		return s.pendingPress(st, ev)
	case *splitState:
		return s.splitPress(st, ev, clickCount)
	case idleInteraction:
		return s.selectPress(ev)
	default:
		// A press while a drag gesture is live means the host dropped a
		// release event; recover by discarding the stale gesture.
		s.discardGesture()
		return s.selectPress(ev)
	}
}

// selectPress resolves a press in the plain select state: scale handles
// first, then feature hits, then lasso on empty ground.
func (s *Session) selectPress(ev pointer.Event) error {
	tolerance := s.hitTolerance()

	if features := s.selectedFeatures(); len(features) == 1 {
		f := features[0]
		if f.IsPolygonal() || f.IsLinear() {
			if g, err := f.Geometry(); err == nil {
				if h, onHandle := handleAt(g.Bounds(), ev.MapPoint, tolerance); onHandle {
					return s.armScale(f, g, h, ev)
				}
			}
		}
	}

	hit, found := s.store.HitTest(ev.MapPoint, tolerance)
	if !found {
		s.drag.Start(ev.Position, ev.MapPoint, ev.Button)
		s.setInteraction(&lassoState{points: []geom.Point{ev.MapPoint}})
		s.log.Debug("lasso started")
		return nil
	}

	id := hit.ID()
	if s.SelectionCount() >= 2 && s.Selected(id) {
		return s.beginMultiDrag(ev)
	}
	if ev.Modifiers.HasShift() {
		return s.ToggleSelection(id)
	}
	return s.Select(id)
}

// pendingPress collects polygons for an armed union or difference. Every
// polygon hit joins the selection; anything else is ignored. Reaching
// two polygons executes immediately.
func (s *Session) pendingPress(st pendingOpState, ev pointer.Event) error {
	hit, found := s.store.HitTest(ev.MapPoint, s.hitTolerance())
	if !found || !hit.IsPolygonal() {
		return nil
	}
	if err := s.AddToSelection(hit.ID()); err != nil {
		return err
	}
	polys := s.selectedPolygons()
	if len(polys) < 2 {
		return nil
	}
	if st.kind == opUnion {
		return s.executeUnion(polys)
	}
	return s.executeDifference(polys)
}

// splitPress accumulates a cut vertex, or finalizes on double-click.
func (s *Session) splitPress(st *splitState, ev pointer.Event, clickCount int) error {
	if clickCount >= 2 {
		return s.finishSplit(st)
	}
	st.vertices = append(st.vertices, s.maybeSnap(ev.MapPoint))
	s.log.WithField("vertices", len(st.vertices)).Debug("split vertex added")
	return nil
}

func (s *Session) finishSplit(st *splitState) error {
	s.setInteraction(idleInteraction{})
	s.clicks.Reset()
	if len(st.vertices) < 2 {
		s.warn("split line needs at least two points")
		return nil
	}
	_, err := s.SplitFeature(st.targetID, geom.LineString(st.vertices))
	return err
}

// armScale starts a handle gesture on the single selected feature.
func (s *Session) armScale(f *geo.Feature, g geom.Geom, h Handle, ev pointer.Event) error {
	b := g.Bounds()
	anchor := geo.BoundsCenter(b)
	if s.cfg.Scale.AnchorOpposite {
		anchor = handlePoint(b, h.Opposite())
	}
	s.drag.Start(ev.Position, ev.MapPoint, ev.Button)
	s.setInteraction(&scaleArmedState{
		snapshot: f.Clone(),
		base:     g,
		handle:   h,
		anchor:   anchor,
		start:    ev.MapPoint,
	})
	s.log.WithField("handle", h.String()).Debug("scale armed")
	return nil
}

func (s *Session) editMove(ev pointer.Event) error {
	if ev.Action == pointer.ActionDrag {
		s.drag.Update(ev.Position, ev.MapPoint)
	}

	switch st := s.interactionOf().(type) {
	case *scaleArmedState:
		if ev.Action != pointer.ActionDrag {
			return nil
		}
		drag := &scaleDragState{
			snapshot: st.snapshot,
			base:     st.base,
			handle:   st.handle,
			anchor:   st.anchor,
			start:    st.start,
		}
		s.setInteraction(drag)
		s.applyScaleDrag(drag, ev.MapPoint)
	case *scaleDragState:
		if ev.Action == pointer.ActionDrag {
			s.applyScaleDrag(st, ev.MapPoint)
		}
	case *multiDragState:
		if ev.Action == pointer.ActionDrag {
			s.applyMultiDrag(st, ev.MapPoint)
		}
	case *lassoState:
		if ev.Action == pointer.ActionDrag {
			st.points = append(st.points, ev.MapPoint)
		}
	}
	return nil
}

func (s *Session) editRelease(ev pointer.Event) error {
	s.drag.End()

	switch st := s.interactionOf().(type) {
	case *scaleArmedState:
		// Handle press without movement: a plain click, nothing to scale.
		s.setInteraction(idleInteraction{})
	case *scaleDragState:
		return s.finishScaleDrag(st, ev.MapPoint)
	case *multiDragState:
		return s.finishMultiDrag(st, ev.MapPoint)
	case *lassoState:
		return s.finishLasso(st)
	}
	return nil
}

// applyScaleDrag pushes the live-scaled geometry to the store. The scale
// always starts from the original geometry, so intermediate moves cannot
// compound.
func (s *Session) applyScaleDrag(st *scaleDragState, current geom.Point) {
	res := ops.ScaleByDrag(st.snapshot, st.anchor, st.start, current, s.scaleLimits())
	if res.Failed() {
		return
	}
	s.store.UpdateGeometry(st.snapshot.ID(), res.Feature.GeoJSON().Geometry)
}

// finishScaleDrag records the realized scale as one geometry edit.
func (s *Session) finishScaleDrag(st *scaleDragState, current geom.Point) error {
	s.setInteraction(idleInteraction{})

	id := st.snapshot.ID()
	res := ops.ScaleByDrag(st.snapshot, st.anchor, st.start, current, s.scaleLimits())
	if res.Failed() {
		s.restoreScaleOriginal(st)
		return nil
	}

	afterGeom, err := res.Feature.Geometry()
	if err != nil {
		s.restoreScaleOriginal(st)
		return err
	}
	factor := realizedFactor(st.base.Bounds(), afterGeom.Bounds())
	if math.Abs(factor-1) < 1e-9 {
		s.restoreScaleOriginal(st)
		return nil
	}

	after := res.Feature.GeoJSON().Geometry
	s.store.UpdateGeometry(id, geo.CloneGeometry(after))
	s.hist.Record(history.NewEditFeatureCommand(s.store, st.snapshot, after))

	s.log.WithFields(logrus.Fields{"feature": id, "factor": factor}).Info("scaled by drag")
	s.operationCompleted("scale", []string{id}, []string{id})
	return nil
}

// realizedFactor measures an applied scale as the ratio of bounding-box
// widths, falling back to heights for width-less geometry.
func realizedFactor(before, after *geom.Bounds) float64 {
	if w := before.Max.X - before.Min.X; w > 0 {
		return (after.Max.X - after.Min.X) / w
	}
	if h := before.Max.Y - before.Min.Y; h > 0 {
		return (after.Max.Y - after.Min.Y) / h
	}
	return 1
}

// beginMultiDrag snapshots the selected features and starts the group
// move.
func (s *Session) beginMultiDrag(ev pointer.Event) error {
	features := s.selectedFeatures()
	originals := make([]dragSnapshot, 0, len(features))
	for _, f := range features {
		g, err := f.Geometry()
		if err != nil {
			continue
		}
		originals = append(originals, dragSnapshot{feature: f.Clone(), g: g})
	}
	if len(originals) < 2 {
		return nil
	}

	s.drag.Start(ev.Position, ev.MapPoint, ev.Button)
	s.setInteraction(&multiDragState{origin: ev.MapPoint, originals: originals})
	s.log.WithField("features", len(originals)).Debug("multi-drag started")
	return nil
}

// applyMultiDrag pushes the uniformly translated originals to the store.
func (s *Session) applyMultiDrag(st *multiDragState, current geom.Point) {
	distance := geo.Distance(st.origin, current)
	bearing := geo.Bearing(st.origin, current)
	for _, snap := range st.originals {
		moved := geo.TranslateBy(snap.g, distance, bearing)
		gj, err := geo.GeometryFromGeom(moved)
		if err != nil {
			continue
		}
		s.store.UpdateGeometry(snap.feature.ID(), gj)
	}
}

// finishMultiDrag records the group move as one composite of per-feature
// edits.
func (s *Session) finishMultiDrag(st *multiDragState, current geom.Point) error {
	s.setInteraction(idleInteraction{})

	distance := geo.Distance(st.origin, current)
	if distance == 0 {
		s.restoreDragOriginals(st)
		return nil
	}
	bearing := geo.Bearing(st.origin, current)

	composite := history.NewCompositeCommand(fmt.Sprintf("Move %d features", len(st.originals)))
	ids := make([]string, 0, len(st.originals))
	for _, snap := range st.originals {
		moved := geo.TranslateBy(snap.g, distance, bearing)
		gj, err := geo.GeometryFromGeom(moved)
		if err != nil {
			continue
		}
		s.store.UpdateGeometry(snap.feature.ID(), geo.CloneGeometry(gj))
		composite.Add(history.NewEditFeatureCommand(s.store, snap.feature, gj))
		ids = append(ids, snap.feature.ID())
	}
	if composite.IsEmpty() {
		return nil
	}
	s.hist.Record(composite)
	s.operationCompleted("move", ids, ids)
	return nil
}

// finishLasso closes the accumulated ring and selects what it caught.
func (s *Session) finishLasso(st *lassoState) error {
	s.setInteraction(idleInteraction{})

	ring, enough := lassoRing(st.points)
	if !enough {
		s.log.Debug("lasso discarded, too few points")
		return nil
	}
	ids := s.lassoSelect(ring)
	s.log.WithField("caught", len(ids)).Debug("lasso closed")
	return s.Select(ids...)
}

// lassoSelect returns the ids the lasso ring captures under the
// configured containment mode, in import order.
func (s *Session) lassoSelect(lasso geom.Polygon) []string {
	contain := s.cfg.Lasso.Mode != config.LassoIntersect
	var ids []string
	for _, f := range s.store.SearchBounds(lasso.Bounds()) {
		g, err := f.Geometry()
		if err != nil {
			continue
		}
		if contain && lassoContains(g, lasso) {
			ids = append(ids, f.ID())
		} else if !contain && lassoIntersects(g, lasso) {
			ids = append(ids, f.ID())
		}
	}
	return ids
}

// restoreScaleOriginal reverts a live scale preview.
func (s *Session) restoreScaleOriginal(st *scaleDragState) {
	s.store.UpdateGeometry(st.snapshot.ID(), geo.CloneGeometry(st.snapshot.GeoJSON().Geometry))
}

// restoreDragOriginals reverts a live multi-drag preview.
func (s *Session) restoreDragOriginals(st *multiDragState) {
	for _, snap := range st.originals {
		s.store.UpdateGeometry(snap.feature.ID(), geo.CloneGeometry(snap.feature.GeoJSON().Geometry))
	}
}
