package store

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	geojson "github.com/paulmach/go.geojson"

	"github.com/dshills/geostorm/internal/geo"
)

// entry is what the spatial index holds: the geometry a feature was
// indexed under, with the owning feature and import sequence attached.
// Embedding the geometry satisfies the index's geom.Geom interface;
// geometry updates swap it and reindex.
type entry struct {
	geom.Geom
	feature *geo.Feature
	seq     int
}

// MemStore is the in-memory Store backed by an R-tree spatial index.
// Safe for concurrent use. Notifications fire after the mutation commits
// and outside the store lock, so subscribers may call back into the
// store.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	index   *rtree.Rtree
	nextID  int
	nextSeq int
	subs    []subscription
	nextTok int
}

type subscription struct {
	token int
	fn    Subscriber
}

// NewMemStore creates an empty feature store.
func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[string]*entry),
		index:   rtree.NewTree(25, 50),
	}
}

// ImportFeature adds a feature and returns its assigned storage id. The
// store takes ownership: f stays live inside the store and is mutated in
// place by geometry updates. A feature with an explicit id keeps it as
// its resolved id; otherwise the storage id resolves. A feature carrying
// the storage id of an earlier import keeps it while it is free, so
// undo/redo replays restore a feature under its prior identity.
func (s *MemStore) ImportFeature(f *geo.Feature) (string, error) {
	if f == nil {
		return "", ErrNilFeature
	}
	g, err := f.Geometry()
	if err != nil {
		return "", fmt.Errorf("import feature: %w", err)
	}

	s.mu.Lock()
	if eid := f.ExplicitID(); eid != "" {
		if _, exists := s.entries[eid]; exists {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: %s", ErrDuplicateID, eid)
		}
	}
	storeID := f.StoreID()
	if _, taken := s.entries[storeID]; storeID == "" || taken {
		storeID = s.mintIDLocked()
	}
	f.SetStoreID(storeID)
	id := f.ID()

	e := &entry{Geom: g, feature: f, seq: s.nextSeq}
	s.nextSeq++
	s.entries[id] = e
	s.order = append(s.order, id)
	s.index.Insert(e)
	s.mu.Unlock()

	s.notify(Notification{Action: ActionCreate, ID: id, Feature: f})
	return storeID, nil
}

// mintIDLocked returns the next unoccupied storage id. Retained ids can
// sit ahead of the counter, so occupied ids are skipped.
func (s *MemStore) mintIDLocked() string {
	for {
		s.nextID++
		id := fmt.Sprintf("fs-%d", s.nextID)
		if _, taken := s.entries[id]; !taken {
			return id
		}
	}
}

// DeleteFeature removes the feature with the given resolved id.
func (s *MemStore) DeleteFeature(id string) bool {
	s.mu.Lock()
	e, found := s.entries[id]
	if !found {
		s.mu.Unlock()
		return false
	}
	delete(s.entries, id)
	s.index.Delete(e)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notify(Notification{Action: ActionDelete, ID: id, Feature: e.feature})
	return true
}

// UpdateGeometry replaces a feature's geometry in place and reindexes it.
// An unconvertible geometry leaves the feature untouched.
func (s *MemStore) UpdateGeometry(id string, geometry *geojson.Geometry) bool {
	if geometry == nil {
		return false
	}
	g, err := geo.GeometryToGeom(geometry)
	if err != nil {
		return false
	}

	s.mu.Lock()
	e, found := s.entries[id]
	if !found {
		s.mu.Unlock()
		return false
	}
	e.feature.GeoJSON().Geometry = geo.CloneGeometry(geometry)
	// Remove under the old geometry before swapping it, or the tree
	// search walks the wrong branch.
	s.index.Delete(e)
	e.Geom = g
	s.index.Insert(e)
	s.mu.Unlock()

	s.notify(Notification{Action: ActionUpdate, ID: id, Feature: e.feature})
	return true
}

// UpdateProperties replaces a feature's property map in place.
func (s *MemStore) UpdateProperties(id string, props map[string]interface{}) bool {
	s.mu.Lock()
	e, found := s.entries[id]
	if !found {
		s.mu.Unlock()
		return false
	}
	e.feature.GeoJSON().Properties = geo.CloneProperties(props)
	s.mu.Unlock()

	s.notify(Notification{Action: ActionUpdate, ID: id, Feature: e.feature})
	return true
}

// Find returns the live feature with the given resolved id.
func (s *MemStore) Find(id string) (*geo.Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.entries[id]
	if !found {
		return nil, false
	}
	return e.feature, true
}

// HitTest returns the topmost feature within tolerance of pt. A feature
// whose interior contains pt beats one that is merely near; among equals
// the most recently imported wins.
func (s *MemStore) HitTest(pt geom.Point, tolerance float64) (*geo.Feature, bool) {
	if tolerance < 0 {
		tolerance = 0
	}
	box := &geom.Bounds{
		Min: geom.Point{X: pt.X - tolerance, Y: pt.Y - tolerance},
		Max: geom.Point{X: pt.X + tolerance, Y: pt.Y + tolerance},
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *entry
	bestDist := math.Inf(1)
	bestInside := false
	for _, h := range s.index.SearchIntersect(box) {
		e := h.(*entry)
		g, err := e.feature.Geometry()
		if err != nil {
			continue
		}
		inside := false
		if poly, polygonal := g.(geom.Polygonal); polygonal {
			if w := pt.Within(poly); w == geom.Inside || w == geom.OnEdge {
				inside = true
			}
		}
		dist := 0.0
		if !inside {
			dist = geo.DistanceToEdges(pt, g)
			if dist > tolerance {
				continue
			}
		}

		better := best == nil
		if !better && inside != bestInside {
			better = inside
		} else if !better {
			better = dist < bestDist || (dist == bestDist && e.seq > best.seq)
		}
		if better {
			best, bestDist, bestInside = e, dist, inside
		}
	}
	if best == nil {
		return nil, false
	}
	return best.feature, true
}

// SearchBounds returns the features whose bounds intersect b, in import
// order.
func (s *MemStore) SearchBounds(b *geom.Bounds) []*geo.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := s.index.SearchIntersect(b)
	found := make([]*entry, 0, len(hits))
	for _, h := range hits {
		found = append(found, h.(*entry))
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	out := make([]*geo.Feature, len(found))
	for i, e := range found {
		out[i] = e.feature
	}
	return out
}

// SnapVertex returns the nearest feature vertex within radius of pt.
func (s *MemStore) SnapVertex(pt geom.Point, radius float64) (geom.Point, bool) {
	if radius <= 0 {
		return geom.Point{}, false
	}
	box := &geom.Bounds{
		Min: geom.Point{X: pt.X - radius, Y: pt.Y - radius},
		Max: geom.Point{X: pt.X + radius, Y: pt.Y + radius},
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best geom.Point
	bestDist := radius
	found := false
	for _, h := range s.index.SearchIntersect(box) {
		e := h.(*entry)
		g, err := e.feature.Geometry()
		if err != nil {
			continue
		}
		for _, v := range geo.Vertices(g) {
			if d := geo.Distance(pt, v); d <= bestDist {
				best, bestDist, found = v, d, true
			}
		}
	}
	return best, found
}

// ForEach visits every feature in import order until fn returns false.
func (s *MemStore) ForEach(fn func(*geo.Feature) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if !fn(s.entries[id].feature) {
			return
		}
	}
}

// All returns every feature in import order.
func (s *MemStore) All() []*geo.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*geo.Feature, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].feature)
	}
	return out
}

// Count returns the number of features present.
func (s *MemStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers a notification callback and returns its token.
func (s *MemStore) Subscribe(fn Subscriber) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTok++
	s.subs = append(s.subs, subscription{token: s.nextTok, fn: fn})
	return s.nextTok
}

// Unsubscribe removes the callback registered under token.
func (s *MemStore) Unsubscribe(token int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.token == token {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// ImportCollection imports every feature of a GeoJSON collection and
// returns the resolved ids in order. The first failure stops the import.
func (s *MemStore) ImportCollection(fc *geojson.FeatureCollection) ([]string, error) {
	if fc == nil {
		return nil, nil
	}
	ids := make([]string, 0, len(fc.Features))
	for i, gj := range fc.Features {
		f := geo.FromGeoJSON(gj)
		if _, err := s.ImportFeature(f); err != nil {
			return ids, fmt.Errorf("collection feature %d: %w", i, err)
		}
		ids = append(ids, f.ID())
	}
	return ids, nil
}

// ExportCollection returns a deep-copied GeoJSON collection of the
// current contents in import order.
func (s *MemStore) ExportCollection() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := geojson.NewFeatureCollection()
	for _, id := range s.order {
		fc.AddFeature(s.entries[id].feature.Clone().GeoJSON())
	}
	return fc
}

// Clear removes every feature and resets the index. Storage ids are not
// reused across a clear.
func (s *MemStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.order = nil
	s.index = rtree.NewTree(25, 50)
	s.mu.Unlock()

	s.notify(Notification{Action: ActionClear})
}

// notify delivers a notification to every subscriber, outside the lock.
func (s *MemStore) notify(n Notification) {
	s.mu.RLock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(n)
	}
}
