package history

import (
	"errors"
	"fmt"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/dshills/geostorm/internal/geo"
)

// fakeStore is a minimal FeatureStore keyed by resolved id.
type fakeStore struct {
	features map[string]*geo.Feature
	serial   int
	failNext bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{features: make(map[string]*geo.Feature)}
}

func (s *fakeStore) ImportFeature(f *geo.Feature) (string, error) {
	if s.failNext {
		s.failNext = false
		return "", errors.New("import refused")
	}
	s.serial++
	storeID := fmt.Sprintf("t-%d", s.serial)
	f.SetStoreID(storeID)
	s.features[f.ID()] = f
	return storeID, nil
}

func (s *fakeStore) DeleteFeature(id string) bool {
	_, ok := s.features[id]
	delete(s.features, id)
	return ok
}

func (s *fakeStore) UpdateGeometry(id string, geometry *geojson.Geometry) bool {
	f, ok := s.features[id]
	if !ok {
		return false
	}
	f.GeoJSON().Geometry = geometry
	return true
}

func (s *fakeStore) UpdateProperties(id string, props map[string]interface{}) bool {
	f, ok := s.features[id]
	if !ok {
		return false
	}
	f.GeoJSON().Properties = props
	return true
}

func (s *fakeStore) Find(id string) (*geo.Feature, bool) {
	f, ok := s.features[id]
	return f, ok
}

func (s *fakeStore) count() int { return len(s.features) }

// Helper to create a square polygon feature
func polyFeature(id string, minX, minY, size float64) *geo.Feature {
	ring := [][]float64{
		{minX, minY},
		{minX + size, minY},
		{minX + size, minY + size},
		{minX, minY + size},
		{minX, minY},
	}
	f := geo.NewFeature(geojson.NewPolygonGeometry([][][]float64{ring}))
	if id != "" {
		f.SetExplicitID(id)
	}
	return f
}

// failCommand always fails to execute.
type failCommand struct{ undone int }

func (c *failCommand) Execute() error      { return errors.New("boom") }
func (c *failCommand) Undo() error         { c.undone++; return nil }
func (c *failCommand) Description() string { return "fail" }

// Command Tests

func TestCreateCommandExecuteUndo(t *testing.T) {
	store := newFakeStore()
	cmd := NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2))

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("store has %d features, want 1", store.count())
	}
	if _, ok := store.Find("a"); !ok {
		t.Error("feature not findable under explicit id")
	}

	if err := cmd.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if store.count() != 0 {
		t.Errorf("store has %d features after undo, want 0", store.count())
	}
}

func TestCreateCommandCapturesSnapshot(t *testing.T) {
	store := newFakeStore()
	f := polyFeature("a", 0, 0, 2)
	cmd := NewCreateFeatureCommand(store, f)

	// Mutating the original after capture must not change what replays
	f.GeoJSON().Geometry.Polygon[0][0][0] = 99

	cmd.Execute()
	stored, _ := store.Find("a")
	if stored.GeoJSON().Geometry.Polygon[0][0][0] != 0 {
		t.Error("command replayed mutated geometry")
	}
}

func TestCreateCommandTracksStoreID(t *testing.T) {
	store := newFakeStore()
	cmd := NewCreateFeatureCommand(store, polyFeature("", 0, 0, 2))

	cmd.Execute()
	if cmd.ID() != "t-1" {
		t.Errorf("tracked id = %q, want t-1", cmd.ID())
	}

	cmd.Undo()
	cmd.Execute()
	// Re-import under a fresh storage id
	if cmd.ID() != "t-2" {
		t.Errorf("tracked id after replay = %q, want t-2", cmd.ID())
	}
	if store.count() != 1 {
		t.Errorf("store has %d features, want 1", store.count())
	}
}

func TestDeleteCommandExecuteUndo(t *testing.T) {
	store := newFakeStore()
	f := polyFeature("a", 0, 0, 2)
	store.ImportFeature(f)

	cmd := NewDeleteFeatureCommand(store, f)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if store.count() != 0 {
		t.Fatal("feature not deleted")
	}

	if err := cmd.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	restored, ok := store.Find("a")
	if !ok {
		t.Fatal("feature not restored")
	}
	if !geo.GeometryEqual(restored, f, 1e-9) {
		t.Error("restored geometry differs")
	}
}

func TestDeleteCommandMissingTargetIsNoOp(t *testing.T) {
	store := newFakeStore()
	f := polyFeature("a", 0, 0, 2)
	store.ImportFeature(f)
	cmd := NewDeleteFeatureCommand(store, f)

	// Host removed the feature before the command ran
	store.DeleteFeature("a")

	if err := cmd.Execute(); err != nil {
		t.Errorf("Execute on missing feature: %v", err)
	}
}

func TestEditCommandSwapsGeometry(t *testing.T) {
	store := newFakeStore()
	f := polyFeature("a", 0, 0, 2)
	store.ImportFeature(f)

	bigger := polyFeature("a", 0, 0, 4)
	cmd := NewEditFeatureCommand(store, f, bigger.GeoJSON().Geometry)

	cmd.Execute()
	live, _ := store.Find("a")
	if !geo.GeometryEqual(live, bigger, 1e-9) {
		t.Error("after geometry not applied")
	}

	cmd.Undo()
	live, _ = store.Find("a")
	smaller := polyFeature("a", 0, 0, 2)
	if !geo.GeometryEqual(live, smaller, 1e-9) {
		t.Error("before geometry not restored")
	}
}

func TestEditCommandReimportsWhenMissing(t *testing.T) {
	store := newFakeStore()
	f := polyFeature("a", 0, 0, 2)
	store.ImportFeature(f)

	bigger := polyFeature("a", 0, 0, 4)
	cmd := NewEditFeatureCommand(store, f, bigger.GeoJSON().Geometry)

	// Feature vanished between capture and replay
	store.DeleteFeature("a")

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	live, ok := store.Find("a")
	if !ok {
		t.Fatal("feature not re-imported")
	}
	if !geo.GeometryEqual(live, bigger, 1e-9) {
		t.Error("re-imported feature has wrong geometry")
	}
}

func TestEditPropertiesCommand(t *testing.T) {
	store := newFakeStore()
	f := polyFeature("a", 0, 0, 2)
	f.SetProperty("name", "old")
	store.ImportFeature(f)

	cmd := NewEditPropertiesCommand(store, f, map[string]interface{}{"name": "new"})

	cmd.Execute()
	live, _ := store.Find("a")
	if live.PropertyString("name") != "new" {
		t.Errorf("name = %q, want new", live.PropertyString("name"))
	}

	cmd.Undo()
	live, _ = store.Find("a")
	if live.PropertyString("name") != "old" {
		t.Errorf("name after undo = %q, want old", live.PropertyString("name"))
	}
}

// CompositeCommand Tests

func TestCompositeExecuteUndo(t *testing.T) {
	store := newFakeStore()
	a := polyFeature("a", 0, 0, 2)
	store.ImportFeature(a)

	composite := NewCompositeCommand("Union 2 features",
		NewDeleteFeatureCommand(store, a),
		NewCreateFeatureCommand(store, polyFeature("m", 0, 0, 4)),
	)

	if err := composite.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, ok := store.Find("a"); ok {
		t.Error("input should be deleted")
	}
	if _, ok := store.Find("m"); !ok {
		t.Error("merged feature should exist")
	}

	if err := composite.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if _, ok := store.Find("a"); !ok {
		t.Error("input should be restored")
	}
	if _, ok := store.Find("m"); ok {
		t.Error("merged feature should be removed")
	}
}

func TestCompositeContinuesPastFailure(t *testing.T) {
	store := newFakeStore()
	before := NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2))
	after := NewCreateFeatureCommand(store, polyFeature("b", 5, 5, 2))

	composite := NewCompositeCommand("bad", before, &failCommand{}, after)

	if err := composite.Execute(); err == nil {
		t.Fatal("expected error")
	}
	if store.count() != 2 {
		t.Errorf("count = %d, want 2: steps around the failure still run", store.count())
	}
}

func TestCompositeDescription(t *testing.T) {
	if got := NewCompositeCommand("Union 3 features").Description(); got != "Union 3 features" {
		t.Errorf("Description() = %q", got)
	}
	inner := &failCommand{}
	if got := NewCompositeCommand("", inner).Description(); got != "fail" {
		t.Errorf("unnamed single Description() = %q", got)
	}
}

// History Tests

func TestHistoryExecuteUndoRedo(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	if err := h.Execute(NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2))); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if store.count() != 1 {
		t.Fatal("feature not created")
	}

	if !h.Undo() {
		t.Fatal("Undo returned false")
	}
	if store.count() != 0 {
		t.Error("feature not removed by undo")
	}

	if !h.Redo() {
		t.Fatal("Redo returned false")
	}
	if store.count() != 1 {
		t.Error("feature not restored by redo")
	}
}

func TestHistoryUndoRedoEmpty(t *testing.T) {
	h := NewHistory(100)
	if h.Undo() {
		t.Error("Undo on empty history should return false")
	}
	if h.Redo() {
		t.Error("Redo on empty history should return false")
	}
}

func TestHistoryRedoClearedOnRecord(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	h.Execute(NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2)))
	h.Undo()

	if !h.CanRedo() {
		t.Fatal("should be able to redo")
	}

	h.Execute(NewCreateFeatureCommand(store, polyFeature("b", 5, 5, 2)))

	if h.CanRedo() {
		t.Error("redo should be cleared after new record")
	}
}

func TestHistoryMaxEntries(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Execute(NewCreateFeatureCommand(store, polyFeature(fmt.Sprintf("f%d", i), float64(i), 0, 1)))
	}

	if h.UndoCount() != 3 {
		t.Errorf("undo count = %d, want 3", h.UndoCount())
	}
	// Oldest entries were dropped; the newest is still on top
	info, ok := h.PeekUndo()
	if !ok || info.Description != "Create Polygon" {
		t.Errorf("peek = %+v", info)
	}
}

func TestHistoryReplayGuard(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	// A command whose replay tries to record, the way a store observer
	// would during undo.
	reentrant := &recordingCommand{store: store, history: h}
	h.Execute(reentrant)

	if h.UndoCount() != 1 {
		t.Fatalf("undo count = %d, want 1", h.UndoCount())
	}

	h.Undo()

	if h.UndoCount() != 0 {
		t.Errorf("undo count after undo = %d, want 0", h.UndoCount())
	}
	if h.RedoCount() != 1 {
		t.Errorf("redo count after undo = %d, want 1", h.RedoCount())
	}
}

// recordingCommand records a new command from inside its own Undo.
type recordingCommand struct {
	store   *fakeStore
	history *History
}

func (c *recordingCommand) Execute() error { return nil }
func (c *recordingCommand) Undo() error {
	c.history.Record(NewCreateFeatureCommand(c.store, polyFeature("ghost", 0, 0, 1)))
	return nil
}
func (c *recordingCommand) Description() string { return "reentrant" }

func TestHistoryOnChange(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	var states [][2]bool
	h.OnChange(func(canUndo, canRedo bool) {
		states = append(states, [2]bool{canUndo, canRedo})
	})

	h.Execute(NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2)))
	h.Undo()
	h.Redo()

	want := [][2]bool{{true, false}, {false, true}, {true, false}}
	if len(states) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(states), len(want))
	}
	for i, s := range states {
		if s != want[i] {
			t.Errorf("notification %d = %v, want %v", i, s, want[i])
		}
	}
}

func TestHistoryState(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	h.Execute(NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2)))
	h.Execute(NewDeleteFeatureCommand(store, polyFeature("a", 0, 0, 2)))
	h.Undo()

	s := h.State()
	if !s.CanUndo || !s.CanRedo {
		t.Errorf("state = %+v, want undo and redo available", s)
	}
	if s.UndoCount != 1 || s.RedoCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", s.UndoCount, s.RedoCount)
	}
	if s.UndoDescription != "Create Polygon" {
		t.Errorf("undo description = %q", s.UndoDescription)
	}
	if s.RedoDescription != "Delete Polygon" {
		t.Errorf("redo description = %q", s.RedoDescription)
	}
}

func TestHistoryClear(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	h.Execute(NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2)))
	h.Clear()

	if h.CanUndo() || h.CanRedo() {
		t.Error("history should be empty after clear")
	}
}

// Grouping Tests

func TestHistoryGrouping(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	h.BeginGroup("Paste 2 features")
	h.Execute(NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2)))
	h.Execute(NewCreateFeatureCommand(store, polyFeature("b", 5, 0, 2)))
	h.EndGroup()

	if h.UndoCount() != 1 {
		t.Fatalf("undo count = %d, want 1", h.UndoCount())
	}

	h.Undo()
	if store.count() != 0 {
		t.Error("single undo should revert both creates")
	}
}

func TestHistoryCancelGroup(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	h.BeginGroup("draw")
	h.Execute(NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2)))
	h.CancelGroup()

	// Store is modified but no undo entry created
	if store.count() != 1 {
		t.Error("executed command should still affect store")
	}
	if h.CanUndo() {
		t.Error("cancelled group should not create undo entry")
	}
}

func TestHistoryTransaction(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	err := h.Transaction("Paste", func() error {
		h.Execute(NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2)))
		h.Execute(NewCreateFeatureCommand(store, polyFeature("b", 5, 0, 2)))
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}

	if h.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1", h.UndoCount())
	}
}

func TestHistoryExecuteGrouped(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	err := h.ExecuteGrouped("Copy 2 features",
		NewCreateFeatureCommand(store, polyFeature("a", 0, 0, 2)),
		NewCreateFeatureCommand(store, polyFeature("b", 5, 0, 2)),
	)
	if err != nil {
		t.Fatalf("ExecuteGrouped failed: %v", err)
	}

	if h.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1", h.UndoCount())
	}
	info := h.UndoInfo()
	if len(info) != 1 || info[0].Description != "Copy 2 features" {
		t.Errorf("info = %+v", info)
	}
}

func TestHistoryUndoRestoresExactState(t *testing.T) {
	store := newFakeStore()
	h := NewHistory(100)

	a := polyFeature("a", 0, 0, 2)
	b := polyFeature("b", 5, 0, 3)
	store.ImportFeature(a)
	store.ImportFeature(b)

	merged := polyFeature("m", 0, 0, 8)
	h.Execute(NewCompositeCommand("Union 2 features",
		NewDeleteFeatureCommand(store, a),
		NewDeleteFeatureCommand(store, b),
		NewCreateFeatureCommand(store, merged),
	))

	h.Undo()

	if store.count() != 2 {
		t.Fatalf("store has %d features, want the 2 originals", store.count())
	}
	ra, ok := store.Find("a")
	if !ok || !geo.GeometryEqual(ra, polyFeature("a", 0, 0, 2), 1e-9) {
		t.Error("feature a not restored exactly")
	}
	rb, ok := store.Find("b")
	if !ok || !geo.GeometryEqual(rb, polyFeature("b", 5, 0, 3), 1e-9) {
		t.Error("feature b not restored exactly")
	}
	if _, ok := store.Find("m"); ok {
		t.Error("merged feature should be gone")
	}
}
