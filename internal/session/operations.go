package session

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"

	"github.com/dshills/geostorm/internal/engine/history"
	"github.com/dshills/geostorm/internal/engine/ops"
	"github.com/dshills/geostorm/internal/geo"
)

// UnionSelection merges the selected polygons into one feature. With
// fewer than two polygons selected the session arms the pending-union
// state instead: subsequent clicks accumulate polygons and the merge
// runs once two are selected.
func (s *Session) UnionSelection() error {
	polys := s.selectedPolygons()
	if len(polys) < 2 {
		s.armPending(opUnion)
		return ErrAwaitingSelection
	}
	return s.executeUnion(polys)
}

// DifferenceSelection subtracts the later-selected polygons from the
// first-selected one. Selection order decides the base. With fewer than
// two polygons selected the session arms the pending-difference state.
func (s *Session) DifferenceSelection() error {
	polys := s.selectedPolygons()
	if len(polys) < 2 {
		s.armPending(opDifference)
		return ErrAwaitingSelection
	}
	return s.executeDifference(polys)
}

// executeUnion runs the merge and replaces the inputs with the result.
func (s *Session) executeUnion(polys []*geo.Feature) error {
	desc := fmt.Sprintf("Union %d polygons", len(polys))
	if _, err := s.replace("union", desc, polys, ops.Union(polys)); err != nil {
		return err
	}
	s.setInteraction(idleInteraction{})
	return nil
}

// executeDifference subtracts polys[1:] from polys[0] and replaces all
// inputs with the result.
func (s *Session) executeDifference(polys []*geo.Feature) error {
	desc := fmt.Sprintf("Subtract %d polygons", len(polys)-1)
	if _, err := s.replace("difference", desc, polys, ops.Difference(polys[0], polys[1:])); err != nil {
		return err
	}
	s.setInteraction(idleInteraction{})
	return nil
}

// SplitFeature cuts one feature along a line and replaces it with the
// resulting parts.
func (s *Session) SplitFeature(id string, cutter geom.LineString) ([]string, error) {
	f, found := s.store.Find(id)
	if !found {
		return nil, fmt.Errorf("split %s: %w", id, ErrUnknownFeature)
	}
	res := ops.Split(f, cutter, ops.SplitOptions{CorridorWidth: s.cfg.Split.CorridorWidth})
	desc := fmt.Sprintf("Split %s", f.GeometryType())
	return s.replace("split", desc, []*geo.Feature{f}, res)
}

// SimplifySelection reduces the vertex count of every selected line and
// polygon. Each feature is tried at the configured tolerance first and
// then up the tolerance ladder; features that cannot be reduced are
// skipped rather than failing the batch. Reduced features are replaced
// under fresh ids in one undo unit.
func (s *Session) SimplifySelection() ([]string, error) {
	candidates := make([]*geo.Feature, 0)
	for _, f := range s.selectedFeatures() {
		if f.IsPolygonal() || f.IsLinear() {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoSelection
	}

	var (
		inputs  []*geo.Feature
		outputs []*geo.Feature
		before  int
		after   int
	)
	for _, f := range candidates {
		res := ops.SimplifyAuto(f, s.cfg.Simplify.Tolerance, s.cfg.Simplify.Ladder)
		if res.Failed() {
			s.operationFailed("simplify", res.Err)
			return nil, fmt.Errorf("simplify: %s", res.Err)
		}
		if !res.Stats.Reduced() {
			continue
		}
		before += res.Stats.VerticesBefore
		after += res.Stats.VerticesAfter
		inputs = append(inputs, f)
		outputs = append(outputs, res.Feature)
	}
	if len(inputs) == 0 {
		reason := "no selected feature could be simplified further"
		s.operationFailed("simplify", reason)
		return nil, fmt.Errorf("simplify: %s", reason)
	}

	s.log.WithFields(logrus.Fields{
		"features":        len(inputs),
		"vertices_before": before,
		"vertices_after":  after,
	}).Debug("simplify reduced vertices")

	desc := fmt.Sprintf("Simplify %d features", len(inputs))
	res := ops.Result{Features: outputs, Success: true, InputIDs: featureIDs(inputs)}
	return s.replace("simplify", desc, inputs, res)
}

// ScaleSelection resizes every selected feature about its centroid by
// the clamped factor, recorded as geometry edits in one undo unit.
func (s *Session) ScaleSelection(factor float64) error {
	return s.editEach("scale", fmt.Sprintf("Scale by %.3g", factor), func(f *geo.Feature) ops.Result {
		return ops.Scale(f, factor, s.scaleLimits())
	})
}

// RotateSelection turns every selected feature about its centroid by
// angle radians, counterclockwise, in one undo unit.
func (s *Session) RotateSelection(angle float64) error {
	return s.editEach("rotate", fmt.Sprintf("Rotate by %.3g rad", angle), func(f *geo.Feature) ops.Result {
		return ops.Rotate(f, angle)
	})
}

// DuplicateSelection clones the selected features under fresh ids,
// shifted by the configured paste offset, and selects the clones.
func (s *Session) DuplicateSelection() ([]string, error) {
	features := s.selectedFeatures()
	if len(features) == 0 {
		return nil, ErrNoSelection
	}
	offset := geom.Point{X: s.cfg.Copy.OffsetX, Y: s.cfg.Copy.OffsetY}
	res := ops.CopyGroup(features, offset)
	if res.Failed() {
		s.operationFailed("copy", res.Err)
		return nil, fmt.Errorf("copy: %s", res.Err)
	}

	composite := history.NewCompositeCommand(fmt.Sprintf("Copy %d features", len(features)))
	creates := make([]*history.CreateFeatureCommand, 0, len(res.Outputs()))
	for _, f := range res.Outputs() {
		cmd := history.NewCreateFeatureCommand(s.store, f)
		creates = append(creates, cmd)
		composite.Add(cmd)
	}
	if err := s.hist.Execute(composite); err != nil {
		s.operationFailed("copy", err.Error())
		return nil, fmt.Errorf("copy: %w", err)
	}

	ids := make([]string, len(creates))
	for i, cmd := range creates {
		ids[i] = cmd.ID()
	}
	if err := s.Select(ids...); err != nil {
		s.log.WithError(err).Warn("select copied features")
	}
	s.operationCompleted("copy", res.InputIDs, ids)
	return ids, nil
}

// SetProperty sets one property on a feature as an undoable edit.
func (s *Session) SetProperty(id, key string, value interface{}) error {
	f, found := s.store.Find(id)
	if !found {
		return fmt.Errorf("set property on %s: %w", id, ErrUnknownFeature)
	}
	after := geo.CloneProperties(f.Properties())
	after[key] = value
	return s.hist.Execute(history.NewEditPropertiesCommand(s.store, f, after))
}

// DeleteSelection removes the selected features in one undo unit.
func (s *Session) DeleteSelection() error {
	features := s.selectedFeatures()
	if len(features) == 0 {
		return ErrNoSelection
	}
	err := s.hist.Transaction(fmt.Sprintf("Delete %d features", len(features)), func() error {
		for _, f := range features {
			if err := s.hist.Execute(history.NewDeleteFeatureCommand(s.store, f)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	s.operationCompleted("delete", featureIDs(features), nil)
	return nil
}

// AddFeature imports a new feature as an undoable create and returns its
// resolved id.
func (s *Session) AddFeature(f *geo.Feature) (string, error) {
	cmd := history.NewCreateFeatureCommand(s.store, f)
	if err := s.hist.Execute(cmd); err != nil {
		return "", err
	}
	return cmd.ID(), nil
}

// replace commits a replacement-family result: the consumed inputs are
// deleted and the outputs created as one undo unit, and the outputs
// become the new selection. A result that consumed the geometry entirely
// deletes the inputs and raises an advisory.
func (s *Session) replace(name, description string, inputs []*geo.Feature, res ops.Result) ([]string, error) {
	if res.Failed() {
		s.operationFailed(name, res.Err)
		return nil, fmt.Errorf("%s: %s", name, res.Err)
	}

	composite := history.NewCompositeCommand(description)
	for _, f := range inputs {
		composite.Add(history.NewDeleteFeatureCommand(s.store, f))
	}
	creates := make([]*history.CreateFeatureCommand, 0, len(res.Outputs()))
	for _, f := range res.Outputs() {
		cmd := history.NewCreateFeatureCommand(s.store, f)
		creates = append(creates, cmd)
		composite.Add(cmd)
	}

	if err := s.hist.Execute(composite); err != nil {
		s.operationFailed(name, err.Error())
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	ids := make([]string, len(creates))
	for i, cmd := range creates {
		ids[i] = cmd.ID()
	}
	if res.Consumed() {
		s.warn(fmt.Sprintf("%s consumed the geometry entirely", name))
	}
	if len(ids) > 0 {
		if err := s.Select(ids...); err != nil {
			s.log.WithError(err).Warn("select operation result")
		}
	}
	s.operationCompleted(name, res.InputIDs, ids)
	return ids, nil
}

// editEach applies one edit-family operation to every selected feature,
// keeping identities, as a single undo unit.
func (s *Session) editEach(name, description string, run func(*geo.Feature) ops.Result) error {
	features := s.selectedFeatures()
	if len(features) == 0 {
		return ErrNoSelection
	}

	composite := history.NewCompositeCommand(description)
	for _, f := range features {
		res := run(f)
		if res.Failed() {
			s.operationFailed(name, res.Err)
			return fmt.Errorf("%s: %s", name, res.Err)
		}
		composite.Add(history.NewEditFeatureCommand(s.store, f, res.Feature.GeoJSON().Geometry))
	}
	if err := s.hist.Execute(composite); err != nil {
		s.operationFailed(name, err.Error())
		return fmt.Errorf("%s: %w", name, err)
	}

	ids := featureIDs(features)
	s.operationCompleted(name, ids, ids)
	return nil
}

// scaleLimits returns the configured scale clamp band.
func (s *Session) scaleLimits() ops.ScaleLimits {
	return ops.ScaleLimits{Min: s.cfg.Scale.MinFactor, Max: s.cfg.Scale.MaxFactor}
}

// featureIDs returns the resolved ids of features, in order.
func featureIDs(features []*geo.Feature) []string {
	ids := make([]string, len(features))
	for i, f := range features {
		ids[i] = f.ID()
	}
	return ids
}
