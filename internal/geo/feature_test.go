package geo

import (
	"testing"

	geojson "github.com/paulmach/go.geojson"
)

// Helper to create a unit square polygon feature
func newSquareFeature(minX, minY, size float64) *Feature {
	ring := [][]float64{
		{minX, minY},
		{minX + size, minY},
		{minX + size, minY + size},
		{minX, minY + size},
		{minX, minY},
	}
	return NewFeature(geojson.NewPolygonGeometry([][][]float64{ring}))
}

// Identity Tests

func TestIDPrefersExplicit(t *testing.T) {
	f := newSquareFeature(0, 0, 1)
	f.SetStoreID("fs-1")
	f.SetExplicitID("road-7")

	if f.ID() != "road-7" {
		t.Errorf("ID() = %q, want %q", f.ID(), "road-7")
	}
}

func TestIDFallsBackToStoreID(t *testing.T) {
	f := newSquareFeature(0, 0, 1)
	f.SetStoreID("fs-1")

	if f.ID() != "fs-1" {
		t.Errorf("ID() = %q, want %q", f.ID(), "fs-1")
	}
}

func TestIDNumericExplicit(t *testing.T) {
	gj := geojson.NewFeature(geojson.NewPointGeometry([]float64{1, 2}))
	gj.ID = 42
	f := FromGeoJSON(gj)

	if f.ID() != "42" {
		t.Errorf("ID() = %q, want %q", f.ID(), "42")
	}
}

func TestAssignID(t *testing.T) {
	f := newSquareFeature(0, 0, 1)
	id := f.AssignID()

	if id == "" {
		t.Fatal("assigned id is empty")
	}
	if f.ID() != id {
		t.Errorf("ID() = %q, want %q", f.ID(), id)
	}
}

// Clone Tests

func TestCloneIsDeep(t *testing.T) {
	f := newSquareFeature(0, 0, 4)
	f.SetExplicitID("a")
	f.SetStoreID("fs-1")
	f.SetProperty("name", "plot")

	c := f.Clone()

	// Mutate the original
	f.GeoJSON().Geometry.Polygon[0][0][0] = 99
	f.SetProperty("name", "changed")

	if c.GeoJSON().Geometry.Polygon[0][0][0] != 0 {
		t.Error("clone geometry was modified through original")
	}
	if c.PropertyString("name") != "plot" {
		t.Error("clone properties were modified through original")
	}
	if c.ID() != "a" || c.StoreID() != "fs-1" {
		t.Error("clone should preserve identity")
	}
}

func TestCloneWithNewID(t *testing.T) {
	f := newSquareFeature(0, 0, 4)
	f.SetExplicitID("a")
	f.SetStoreID("fs-1")

	c := f.CloneWithNewID()

	if c.ID() == "" || c.ID() == "a" {
		t.Errorf("copy id = %q, want a fresh id", c.ID())
	}
	if c.StoreID() != "" {
		t.Errorf("copy store id = %q, want empty", c.StoreID())
	}
	if !GeometryEqual(f, c, 1e-9) {
		t.Error("copy should keep the geometry")
	}
}

// Geometry Tests

func TestGeometryRoundTrip(t *testing.T) {
	f := newSquareFeature(2, 3, 4)

	g, err := f.Geometry()
	if err != nil {
		t.Fatalf("Geometry failed: %v", err)
	}
	if err := f.SetGeometry(g); err != nil {
		t.Fatalf("SetGeometry failed: %v", err)
	}

	g2, err := f.Geometry()
	if err != nil {
		t.Fatalf("Geometry after set failed: %v", err)
	}
	if !g.Similar(g2, 1e-9) {
		t.Error("geometry changed across round trip")
	}
}

func TestGeometryMissing(t *testing.T) {
	f := FromGeoJSON(geojson.NewFeature(nil))
	if _, err := f.Geometry(); err == nil {
		t.Error("expected error for feature without geometry")
	}
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		name      string
		f         *Feature
		polygonal bool
		linear    bool
	}{
		{"polygon", newSquareFeature(0, 0, 1), true, false},
		{"line", NewFeature(geojson.NewLineStringGeometry([][]float64{{0, 0}, {1, 1}})), false, true},
		{"point", NewFeature(geojson.NewPointGeometry([]float64{0, 0})), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.f.IsPolygonal() != tt.polygonal {
				t.Errorf("IsPolygonal() = %v, want %v", tt.f.IsPolygonal(), tt.polygonal)
			}
			if tt.f.IsLinear() != tt.linear {
				t.Errorf("IsLinear() = %v, want %v", tt.f.IsLinear(), tt.linear)
			}
		})
	}
}

func TestVertexCount(t *testing.T) {
	if n := newSquareFeature(0, 0, 1).VertexCount(); n != 5 {
		t.Errorf("VertexCount() = %d, want 5", n)
	}
}

// Property Tests

func TestPropertyCoercion(t *testing.T) {
	f := newSquareFeature(0, 0, 1)
	f.SetProperty("lanes", 4)
	f.SetProperty("name", "main")

	if f.PropertyFloat("lanes") != 4 {
		t.Errorf("PropertyFloat = %v, want 4", f.PropertyFloat("lanes"))
	}
	if f.PropertyString("lanes") != "4" {
		t.Errorf("PropertyString = %q, want %q", f.PropertyString("lanes"), "4")
	}
	if _, ok := f.Property("missing"); ok {
		t.Error("missing property reported as set")
	}
}

// Equality Tests

func TestGeometryEqual(t *testing.T) {
	a := newSquareFeature(0, 0, 4)
	b := newSquareFeature(0, 0, 4)
	c := newSquareFeature(1, 0, 4)

	if !GeometryEqual(a, b, 1e-9) {
		t.Error("identical squares should be equal")
	}
	if GeometryEqual(a, c, 1e-9) {
		t.Error("shifted squares should not be equal")
	}
}
