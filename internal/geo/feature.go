// Package geo defines the feature model shared across the editing engine
// and helpers for working with planar geometry: conversion between GeoJSON
// features and geometry values, measurement, affine transforms, corridor
// buffering, and ring assembly.
package geo

import (
	"errors"
	"fmt"

	"github.com/ctessum/geom"
	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"
	"github.com/spf13/cast"
)

var (
	// ErrNoGeometry indicates a feature without a geometry.
	ErrNoGeometry = errors.New("feature has no geometry")
	// ErrUnsupportedGeometry indicates a geometry type the engine cannot edit.
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")
)

// Feature is a single editable map feature: a GeoJSON geometry plus
// free-form properties. A feature may carry an explicit GeoJSON id, a
// storage id assigned by the feature store, or both.
type Feature struct {
	gj      *geojson.Feature
	storeID string
}

// NewFeature creates a feature from a GeoJSON geometry with empty properties.
func NewFeature(geometry *geojson.Geometry) *Feature {
	return &Feature{gj: geojson.NewFeature(geometry)}
}

// FromGeoJSON wraps an existing GeoJSON feature. The feature is used
// directly, not copied.
func FromGeoJSON(f *geojson.Feature) *Feature {
	if f.Properties == nil {
		f.Properties = make(map[string]interface{})
	}
	return &Feature{gj: f}
}

// FromGeom creates a feature from a geometry value.
func FromGeom(g geom.Geom) (*Feature, error) {
	gj, err := GeometryFromGeom(g)
	if err != nil {
		return nil, err
	}
	return NewFeature(gj), nil
}

// GeoJSON returns the underlying GeoJSON feature.
func (f *Feature) GeoJSON() *geojson.Feature { return f.gj }

// Geometry converts the feature geometry to a planar geometry value.
func (f *Feature) Geometry() (geom.Geom, error) {
	if f.gj == nil || f.gj.Geometry == nil {
		return nil, ErrNoGeometry
	}
	return GeometryToGeom(f.gj.Geometry)
}

// SetGeometry replaces the feature geometry with a planar geometry value.
func (f *Feature) SetGeometry(g geom.Geom) error {
	gj, err := GeometryFromGeom(g)
	if err != nil {
		return err
	}
	f.gj.Geometry = gj
	return nil
}

// GeometryType reports the GeoJSON geometry type, or "" without geometry.
func (f *Feature) GeometryType() geojson.GeometryType {
	if f.gj == nil || f.gj.Geometry == nil {
		return ""
	}
	return f.gj.Geometry.Type
}

// IsPolygonal reports whether the feature is a polygon or multipolygon.
func (f *Feature) IsPolygonal() bool {
	t := f.GeometryType()
	return t == geojson.GeometryPolygon || t == geojson.GeometryMultiPolygon
}

// IsLinear reports whether the feature is a line string or multi line string.
func (f *Feature) IsLinear() bool {
	t := f.GeometryType()
	return t == geojson.GeometryLineString || t == geojson.GeometryMultiLineString
}

// ID resolves the feature identity: the explicit GeoJSON id when present,
// otherwise the storage id. All identity comparisons in the engine go
// through this method so explicit and storage-assigned ids resolve the
// same way everywhere.
func (f *Feature) ID() string {
	if id := f.ExplicitID(); id != "" {
		return id
	}
	return f.storeID
}

// ExplicitID returns the GeoJSON id as a string, or "" when absent.
func (f *Feature) ExplicitID() string {
	if f.gj == nil || f.gj.ID == nil {
		return ""
	}
	return cast.ToString(f.gj.ID)
}

// SetExplicitID sets the GeoJSON id.
func (f *Feature) SetExplicitID(id string) {
	f.gj.ID = id
}

// StoreID returns the storage id assigned by the feature store, or "".
func (f *Feature) StoreID() string { return f.storeID }

// SetStoreID records the storage id assigned by the feature store.
func (f *Feature) SetStoreID(id string) { f.storeID = id }

// AssignID sets a fresh explicit id and returns it.
func (f *Feature) AssignID() string {
	id := uuid.NewString()
	f.gj.ID = id
	return id
}

// Clone returns a deep copy of the feature, identity included. Use
// CloneWithNewID for copies that must not share identity with the original.
func (f *Feature) Clone() *Feature {
	c := &Feature{storeID: f.storeID}
	if f.gj == nil {
		c.gj = geojson.NewFeature(nil)
		c.gj.Properties = make(map[string]interface{})
		return c
	}
	c.gj = geojson.NewFeature(CloneGeometry(f.gj.Geometry))
	c.gj.ID = f.gj.ID
	c.gj.Properties = CloneProperties(f.gj.Properties)
	return c
}

// CloneWithNewID returns a deep copy carrying a fresh explicit id and no
// storage id.
func (f *Feature) CloneWithNewID() *Feature {
	c := f.Clone()
	c.storeID = ""
	c.AssignID()
	return c
}

// Properties returns the live property map.
func (f *Feature) Properties() map[string]interface{} {
	if f.gj.Properties == nil {
		f.gj.Properties = make(map[string]interface{})
	}
	return f.gj.Properties
}

// SetProperty sets a single property value.
func (f *Feature) SetProperty(key string, value interface{}) {
	f.Properties()[key] = value
}

// Property returns a property value and whether it is set.
func (f *Feature) Property(key string) (interface{}, bool) {
	v, ok := f.Properties()[key]
	return v, ok
}

// PropertyString returns a property coerced to string, or "".
func (f *Feature) PropertyString(key string) string {
	return cast.ToString(f.Properties()[key])
}

// PropertyFloat returns a property coerced to float64, or 0.
func (f *Feature) PropertyFloat(key string) float64 {
	return cast.ToFloat64(f.Properties()[key])
}

// VertexCount returns the number of coordinates in the feature geometry.
func (f *Feature) VertexCount() int {
	g, err := f.Geometry()
	if err != nil {
		return 0
	}
	return VertexCount(g)
}

// String describes the feature for logs.
func (f *Feature) String() string {
	return fmt.Sprintf("%s(%s)", f.GeometryType(), f.ID())
}

// GeometryEqual reports whether two features have similar geometry within
// tolerance. Features without geometry are equal only to each other.
func GeometryEqual(a, b *Feature, tolerance float64) bool {
	ga, errA := a.Geometry()
	gb, errB := b.Geometry()
	if errA != nil || errB != nil {
		return errA != nil && errB != nil
	}
	return ga.Similar(gb, tolerance)
}

// CloneProperties returns a shallow copy of a property map.
func CloneProperties(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// CloneGeometry deep-copies a GeoJSON geometry through its planar form.
// Geometry that cannot be converted is returned as is.
func CloneGeometry(g *geojson.Geometry) *geojson.Geometry {
	if g == nil {
		return nil
	}
	gg, err := GeometryToGeom(g)
	if err != nil {
		return g
	}
	out, err := GeometryFromGeom(gg)
	if err != nil {
		return g
	}
	return out
}
