// Package store holds the canonical feature collection for an editing
// session: resolved-id lookup, spatial queries for hit testing and
// snapping, and change notifications. The store is the system of record
// that commands mutate; it knows nothing about history or selection.
package store

import (
	"errors"

	"github.com/ctessum/geom"
	geojson "github.com/paulmach/go.geojson"

	"github.com/dshills/geostorm/internal/engine/history"
	"github.com/dshills/geostorm/internal/geo"
)

// Common store errors.
var (
	// ErrNilFeature is returned when importing a nil feature.
	ErrNilFeature = errors.New("nil feature")

	// ErrDuplicateID is returned when importing a feature whose resolved
	// id is already present.
	ErrDuplicateID = errors.New("duplicate feature id")
)

// Action describes the kind of store mutation a notification reports.
type Action int

const (
	// ActionCreate means a feature was imported.
	ActionCreate Action = iota
	// ActionUpdate means a feature's geometry or properties changed.
	ActionUpdate
	// ActionDelete means a feature was removed.
	ActionDelete
	// ActionClear means the whole collection was reset.
	ActionClear
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Notification describes one committed store mutation. Feature is the
// live feature for creates and updates and the removed feature for
// deletes; it is nil for clears.
type Notification struct {
	Action  Action
	ID      string
	Feature *geo.Feature
}

// Subscriber receives store notifications after the mutation commits.
type Subscriber func(Notification)

// Store is the canonical feature collection. It covers the command
// surface plus the spatial queries interactive editing needs.
type Store interface {
	history.FeatureStore

	// HitTest returns the topmost feature within tolerance of pt.
	// Features whose interior contains pt win over features that are
	// merely near it; among equals the most recently imported wins.
	HitTest(pt geom.Point, tolerance float64) (*geo.Feature, bool)

	// SearchBounds returns the features whose bounds intersect b, in
	// import order.
	SearchBounds(b *geom.Bounds) []*geo.Feature

	// SnapVertex returns the nearest feature vertex within radius of pt.
	SnapVertex(pt geom.Point, radius float64) (geom.Point, bool)

	// ForEach visits every feature in import order until fn returns
	// false. The store must not be mutated from inside fn.
	ForEach(fn func(*geo.Feature) bool)

	// All returns every feature in import order.
	All() []*geo.Feature

	// Count returns the number of features present.
	Count() int

	// Subscribe registers a notification callback and returns a token
	// for Unsubscribe.
	Subscribe(fn Subscriber) int

	// Unsubscribe removes a previously registered callback.
	Unsubscribe(token int)

	// ImportCollection imports every feature of a GeoJSON collection and
	// returns the resolved ids in order. The first failure stops the
	// import; features imported before it remain.
	ImportCollection(fc *geojson.FeatureCollection) ([]string, error)

	// ExportCollection returns a deep-copied GeoJSON collection of the
	// current contents in import order.
	ExportCollection() *geojson.FeatureCollection

	// Clear removes every feature.
	Clear()
}
