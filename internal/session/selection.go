package session

import (
	"fmt"

	"github.com/dshills/geostorm/internal/event"
	"github.com/dshills/geostorm/internal/geo"
)

// Select replaces the selection with the given features, in the given
// order. Duplicate ids collapse to their first occurrence. Every id must
// resolve to a live feature.
func (s *Session) Select(ids ...string) error {
	cleaned := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := s.store.Find(id); !ok {
			return fmt.Errorf("select %s: %w", id, ErrUnknownFeature)
		}
		seen[id] = struct{}{}
		cleaned = append(cleaned, id)
	}
	s.setSelection(cleaned)
	return nil
}

// AddToSelection appends a feature to the selection. Adding a feature
// that is already selected is a no-op.
func (s *Session) AddToSelection(id string) error {
	if _, ok := s.store.Find(id); !ok {
		return fmt.Errorf("select %s: %w", id, ErrUnknownFeature)
	}

	s.mu.Lock()
	if s.selectedLocked(id) {
		s.mu.Unlock()
		return nil
	}
	s.selection = append(s.selection, id)
	ids := s.selectionCopyLocked()
	s.mu.Unlock()

	s.publishSelection(ids)
	return nil
}

// RemoveFromSelection drops a feature from the selection, reporting
// whether it was selected.
func (s *Session) RemoveFromSelection(id string) bool {
	s.mu.Lock()
	removed := s.removeLocked(id)
	var ids []string
	if removed {
		ids = s.selectionCopyLocked()
	}
	s.mu.Unlock()

	if removed {
		s.publishSelection(ids)
	}
	return removed
}

// ToggleSelection adds an unselected feature or removes a selected one.
func (s *Session) ToggleSelection(id string) error {
	if s.RemoveFromSelection(id) {
		return nil
	}
	return s.AddToSelection(id)
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.setSelection(nil)
}

// Selection returns the selected ids in selection order.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionCopyLocked()
}

// Selected reports whether a feature is in the selection.
func (s *Session) Selected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked(id)
}

// SelectionCount returns the number of selected features.
func (s *Session) SelectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selection)
}

// selectedFeatures resolves the selection to live features in selection
// order. Ids that no longer resolve are skipped.
func (s *Session) selectedFeatures() []*geo.Feature {
	ids := s.Selection()
	out := make([]*geo.Feature, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.store.Find(id); ok {
			out = append(out, f)
		}
	}
	return out
}

// selectedPolygons resolves the selection to live polygonal features,
// preserving order and skipping everything else.
func (s *Session) selectedPolygons() []*geo.Feature {
	all := s.selectedFeatures()
	out := make([]*geo.Feature, 0, len(all))
	for _, f := range all {
		if f.IsPolygonal() {
			out = append(out, f)
		}
	}
	return out
}

// setSelection replaces the selection and publishes the change. Setting
// an identical selection publishes nothing.
func (s *Session) setSelection(ids []string) {
	s.mu.Lock()
	if sameStrings(s.selection, ids) {
		s.mu.Unlock()
		return
	}
	s.selection = append([]string(nil), ids...)
	out := s.selectionCopyLocked()
	s.mu.Unlock()

	s.publishSelection(out)
}

// dropFromSelection removes an id that vanished from the store.
func (s *Session) dropFromSelection(id string) {
	s.mu.Lock()
	removed := s.removeLocked(id)
	var ids []string
	if removed {
		ids = s.selectionCopyLocked()
	}
	s.mu.Unlock()

	if removed {
		s.publishSelection(ids)
	}
}

// dropAllFromSelection empties the selection after a store clear.
func (s *Session) dropAllFromSelection() {
	s.mu.Lock()
	had := len(s.selection) > 0
	s.selection = nil
	s.mu.Unlock()

	if had {
		s.publishSelection(nil)
	}
}

// publishSelection announces the full selection, in order, not a delta.
func (s *Session) publishSelection(ids []string) {
	s.publish(event.TopicSelectionChanged, event.SelectionChanged{IDs: ids})
}

func (s *Session) selectedLocked(id string) bool {
	for _, sel := range s.selection {
		if sel == id {
			return true
		}
	}
	return false
}

func (s *Session) removeLocked(id string) bool {
	for i, sel := range s.selection {
		if sel == id {
			s.selection = append(s.selection[:i], s.selection[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) selectionCopyLocked() []string {
	return append([]string(nil), s.selection...)
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
