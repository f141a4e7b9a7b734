package session

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/engine/history"
	"github.com/dshills/geostorm/internal/engine/ops"
	"github.com/dshills/geostorm/internal/geo"
)

// CopySelection snapshots the selected features into the clipboard and
// returns how many were copied. Copying does not touch the store or the
// history; an empty selection leaves the clipboard unchanged.
func (s *Session) CopySelection() int {
	features := s.selectedFeatures()
	if len(features) == 0 {
		return 0
	}
	clones := make([]*geo.Feature, len(features))
	for i, f := range features {
		clones[i] = f.Clone()
	}

	s.mu.Lock()
	s.clipboard = clones
	s.mu.Unlock()

	s.log.WithField("count", len(clones)).Debug("copied selection")
	return len(clones)
}

// Paste creates fresh-id clones of the clipboard contents, shifted by the
// configured offset, and selects them. The paste is recorded as a single
// undo unit.
func (s *Session) Paste() ([]string, error) {
	offset := geom.Point{X: s.cfg.Copy.OffsetX, Y: s.cfg.Copy.OffsetY}
	return s.pasteWith(func(contents []*geo.Feature) ops.Result {
		return ops.CopyGroup(contents, offset)
	})
}

// PasteAt creates fresh-id clones of the clipboard contents so that the
// center of their combined bounds lands on dest, preserving relative
// layout.
func (s *Session) PasteAt(dest geom.Point) ([]string, error) {
	return s.pasteWith(func(contents []*geo.Feature) ops.Result {
		return ops.CopyGroupTo(contents, dest)
	})
}

// pasteWith runs one paste variant over a snapshot of the clipboard.
func (s *Session) pasteWith(run func([]*geo.Feature) ops.Result) ([]string, error) {
	s.mu.Lock()
	contents := append([]*geo.Feature(nil), s.clipboard...)
	s.mu.Unlock()

	if len(contents) == 0 {
		return nil, ErrEmptyClipboard
	}

	res := run(contents)
	if res.Failed() {
		s.operationFailed("paste", res.Err)
		return nil, fmt.Errorf("paste: %s", res.Err)
	}

	composite := history.NewCompositeCommand(fmt.Sprintf("Paste %d features", len(res.Outputs())))
	creates := make([]*history.CreateFeatureCommand, 0, len(res.Outputs()))
	for _, f := range res.Outputs() {
		cmd := history.NewCreateFeatureCommand(s.store, f)
		creates = append(creates, cmd)
		composite.Add(cmd)
	}
	if err := s.hist.Execute(composite); err != nil {
		s.operationFailed("paste", err.Error())
		return nil, fmt.Errorf("paste: %w", err)
	}

	ids := make([]string, len(creates))
	for i, cmd := range creates {
		ids[i] = cmd.ID()
	}
	if err := s.Select(ids...); err != nil {
		s.log.WithError(err).Warn("select pasted features")
	}
	s.operationCompleted("paste", res.InputIDs, ids)
	return ids, nil
}

// ClipboardCount returns the number of features on the clipboard.
func (s *Session) ClipboardCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clipboard)
}
