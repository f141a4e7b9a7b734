package history

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"github.com/dshills/geostorm/internal/geo"
)

// FeatureStore is the slice of the feature store that commands act on.
// The store assigns storage ids on import and honors a previously
// assigned id while it is free, so a replayed re-import normally restores
// the old identity; commands still track the resolved id across replays
// in case the id had to change.
type FeatureStore interface {
	// ImportFeature adds a feature and returns its assigned storage id.
	ImportFeature(f *geo.Feature) (string, error)
	// DeleteFeature removes a feature, reporting whether it was present.
	DeleteFeature(id string) bool
	// UpdateGeometry replaces a feature's geometry in place, reporting
	// whether the feature was found.
	UpdateGeometry(id string, geometry *geojson.Geometry) bool
	// UpdateProperties replaces a feature's properties in place.
	UpdateProperties(id string, props map[string]interface{}) bool
	// Find returns the live feature with the given resolved id.
	Find(id string) (*geo.Feature, bool)
}

// Command represents a composable feature edit that can be executed and
// undone. Commands do not fail when their target feature is missing from
// the store; a replay against a drifted store is a no-op, not an error.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute() error

	// Undo reverses the command and returns an error if it fails.
	Undo() error

	// Description returns a human-readable description of the command.
	Description() string
}

// resolvedID returns the id a command should track for a feature it just
// imported: the explicit id when the feature carries one, otherwise the
// storage id the store assigned.
func resolvedID(f *geo.Feature, storeID string) string {
	if id := f.ExplicitID(); id != "" {
		return id
	}
	return storeID
}

// CreateFeatureCommand adds a feature to the store.
type CreateFeatureCommand struct {
	store   FeatureStore
	feature *geo.Feature
	id      string
}

// NewCreateFeatureCommand captures a deep copy of f for later replay.
func NewCreateFeatureCommand(store FeatureStore, f *geo.Feature) *CreateFeatureCommand {
	return &CreateFeatureCommand{
		store:   store,
		feature: f.Clone(),
		id:      f.ID(),
	}
}

// Execute imports the captured feature and tracks its resolved id. The
// assigned storage id is kept on the snapshot so a redo after undo
// brings the feature back under the same identity.
func (c *CreateFeatureCommand) Execute() error {
	f := c.feature.Clone()
	storeID, err := c.store.ImportFeature(f)
	if err != nil {
		return fmt.Errorf("create feature: %w", err)
	}
	c.feature.SetStoreID(storeID)
	c.id = resolvedID(f, storeID)
	return nil
}

// Undo removes the created feature. Missing features are ignored.
func (c *CreateFeatureCommand) Undo() error {
	c.store.DeleteFeature(c.id)
	return nil
}

// Description returns a human-readable description.
func (c *CreateFeatureCommand) Description() string {
	return fmt.Sprintf("Create %s", c.feature.GeometryType())
}

// ID returns the id the command currently tracks.
func (c *CreateFeatureCommand) ID() string { return c.id }

// DeleteFeatureCommand removes a feature from the store.
type DeleteFeatureCommand struct {
	store   FeatureStore
	feature *geo.Feature
	id      string
}

// NewDeleteFeatureCommand captures a deep copy of f so undo can restore it.
func NewDeleteFeatureCommand(store FeatureStore, f *geo.Feature) *DeleteFeatureCommand {
	return &DeleteFeatureCommand{
		store:   store,
		feature: f.Clone(),
		id:      f.ID(),
	}
}

// Execute removes the feature. Missing features are ignored.
func (c *DeleteFeatureCommand) Execute() error {
	c.store.DeleteFeature(c.id)
	return nil
}

// Undo re-imports the captured feature. The snapshot carries the storage
// id the feature had, and the store keeps it while it is free, so the
// feature comes back under its prior identity; the tracked id is
// refreshed either way.
func (c *DeleteFeatureCommand) Undo() error {
	f := c.feature.Clone()
	storeID, err := c.store.ImportFeature(f)
	if err != nil {
		return fmt.Errorf("restore feature: %w", err)
	}
	c.feature.SetStoreID(storeID)
	c.id = resolvedID(f, storeID)
	return nil
}

// Description returns a human-readable description.
func (c *DeleteFeatureCommand) Description() string {
	return fmt.Sprintf("Delete %s", c.feature.GeometryType())
}

// ID returns the id the command currently tracks.
func (c *DeleteFeatureCommand) ID() string { return c.id }

// EditFeatureCommand swaps a feature's geometry between a before and an
// after state.
type EditFeatureCommand struct {
	store    FeatureStore
	snapshot *geo.Feature
	id       string
	before   *geojson.Geometry
	after    *geojson.Geometry
}

// NewEditFeatureCommand captures the feature's current geometry as the
// before state and newGeometry as the after state.
func NewEditFeatureCommand(store FeatureStore, f *geo.Feature, newGeometry *geojson.Geometry) *EditFeatureCommand {
	return &EditFeatureCommand{
		store:    store,
		snapshot: f.Clone(),
		id:       f.ID(),
		before:   geo.CloneGeometry(f.GeoJSON().Geometry),
		after:    geo.CloneGeometry(newGeometry),
	}
}

// Execute applies the after geometry.
func (c *EditFeatureCommand) Execute() error {
	return c.apply(c.after)
}

// Undo restores the before geometry.
func (c *EditFeatureCommand) Undo() error {
	return c.apply(c.before)
}

// apply pushes a geometry to the live feature. When the store no longer
// has the feature under the tracked id, the captured snapshot is
// re-imported carrying the target geometry and the tracked id refreshed.
func (c *EditFeatureCommand) apply(g *geojson.Geometry) error {
	if c.store.UpdateGeometry(c.id, geo.CloneGeometry(g)) {
		return nil
	}
	c.store.DeleteFeature(c.id)
	f := c.snapshot.Clone()
	f.GeoJSON().Geometry = geo.CloneGeometry(g)
	storeID, err := c.store.ImportFeature(f)
	if err != nil {
		return fmt.Errorf("edit feature %s: %w", c.id, err)
	}
	c.snapshot.SetStoreID(storeID)
	c.id = resolvedID(f, storeID)
	return nil
}

// Description returns a human-readable description.
func (c *EditFeatureCommand) Description() string {
	return fmt.Sprintf("Edit %s", c.snapshot.GeometryType())
}

// ID returns the id the command currently tracks.
func (c *EditFeatureCommand) ID() string { return c.id }

// EditPropertiesCommand swaps a feature's properties between a before and
// an after state.
type EditPropertiesCommand struct {
	store  FeatureStore
	id     string
	name   string
	before map[string]interface{}
	after  map[string]interface{}
}

// NewEditPropertiesCommand captures the feature's current properties as
// the before state.
func NewEditPropertiesCommand(store FeatureStore, f *geo.Feature, after map[string]interface{}) *EditPropertiesCommand {
	return &EditPropertiesCommand{
		store:  store,
		id:     f.ID(),
		name:   string(f.GeometryType()),
		before: geo.CloneProperties(f.Properties()),
		after:  geo.CloneProperties(after),
	}
}

// Execute applies the after properties. Missing features are ignored.
func (c *EditPropertiesCommand) Execute() error {
	c.store.UpdateProperties(c.id, geo.CloneProperties(c.after))
	return nil
}

// Undo restores the before properties. Missing features are ignored.
func (c *EditPropertiesCommand) Undo() error {
	c.store.UpdateProperties(c.id, geo.CloneProperties(c.before))
	return nil
}

// Description returns a human-readable description.
func (c *EditPropertiesCommand) Description() string {
	return fmt.Sprintf("Edit %s properties", c.name)
}

// CompositeCommand groups multiple commands as one undo unit.
type CompositeCommand struct {
	Name     string
	Commands []Command
}

// NewCompositeCommand creates a new composite command.
func NewCompositeCommand(name string, commands ...Command) *CompositeCommand {
	return &CompositeCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order. A failing step does not stop the
// rest: leaf commands treat missing features as no-ops, so the remaining
// steps stay meaningful. The first error is still reported.
func (c *CompositeCommand) Execute() error {
	var firstErr error
	for i, cmd := range c.Commands {
		if err := cmd.Execute(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("composite command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return firstErr
}

// Undo reverses all commands in reverse order, continuing past failures
// so one stuck step cannot leave the rest of the unit unreversed.
func (c *CompositeCommand) Undo() error {
	var firstErr error
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("undo composite command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return firstErr
}

// Description returns the composite command's name.
func (c *CompositeCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the composite command.
func (c *CompositeCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the composite command has no commands.
func (c *CompositeCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
