package ops

import (
	"testing"

	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/geo"
)

func TestUnionMergesOverlapping(t *testing.T) {
	a := square(t, "a", 0, 0, 4)
	b := square(t, "b", 2, 2, 4)

	res := Union([]*geo.Feature{a, b})
	if res.Failed() {
		t.Fatalf("union failed: %s", res.Err)
	}
	if res.Feature == nil {
		t.Fatal("union produced no feature")
	}
	if !near(areaOf(t, res.Feature), 28, 1e-9) {
		t.Errorf("area = %v, want 28", areaOf(t, res.Feature))
	}
	if res.Feature.ID() == a.ID() || res.Feature.ID() == b.ID() {
		t.Error("merged feature should have a fresh id")
	}
}

func TestUnionDisjointMakesMultiPolygon(t *testing.T) {
	a := square(t, "a", 0, 0, 1)
	b := square(t, "b", 5, 5, 1)

	res := Union([]*geo.Feature{a, b})
	if res.Failed() {
		t.Fatalf("union failed: %s", res.Err)
	}
	g, err := res.Feature.Geometry()
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	mp, isMulti := g.(geom.MultiPolygon)
	if !isMulti {
		t.Fatalf("geometry is %T, want MultiPolygon", g)
	}
	if len(mp) != 2 {
		t.Errorf("parts = %d, want 2", len(mp))
	}
	if !near(areaOf(t, res.Feature), 2, 1e-9) {
		t.Errorf("area = %v, want 2", areaOf(t, res.Feature))
	}
}

func TestUnionSingletonIsFreshCopy(t *testing.T) {
	a := square(t, "a", 0, 0, 2)

	res := Union([]*geo.Feature{a})
	if res.Failed() {
		t.Fatalf("union failed: %s", res.Err)
	}
	if res.Feature.ID() == a.ID() {
		t.Error("singleton union should not pass the input through")
	}
	if !geo.GeometryEqual(res.Feature, a, 1e-9) {
		t.Error("singleton union should keep the geometry")
	}
}

func TestUnionKeepsFirstProperties(t *testing.T) {
	a := square(t, "a", 0, 0, 4)
	a.SetProperty("name", "north field")
	b := square(t, "b", 2, 2, 4)
	b.SetProperty("name", "south field")

	res := Union([]*geo.Feature{a, b})
	if res.Failed() {
		t.Fatalf("union failed: %s", res.Err)
	}
	if got := res.Feature.PropertyString("name"); got != "north field" {
		t.Errorf("name = %q, want first input's", got)
	}
}

func TestUnionRecordsInputOrder(t *testing.T) {
	a := square(t, "a", 0, 0, 4)
	b := square(t, "b", 2, 2, 4)

	res := Union([]*geo.Feature{a, b})
	if len(res.InputIDs) != 2 || res.InputIDs[0] != "a" || res.InputIDs[1] != "b" {
		t.Errorf("InputIDs = %v, want [a b]", res.InputIDs)
	}
}

func TestUnionPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		inputs []*geo.Feature
	}{
		{"no inputs", nil},
		{"single line", []*geo.Feature{lineFeature(t, "l", geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 1})}},
		{"line among polygons", []*geo.Feature{
			square(t, "a", 0, 0, 2),
			lineFeature(t, "l", geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 1}),
		}},
		{"point input", []*geo.Feature{square(t, "a", 0, 0, 2), pointFeature(t, "p", 1, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Union(tt.inputs)
			if !res.Failed() {
				t.Error("expected a precondition failure")
			}
			if res.Err == "" {
				t.Error("failure should carry a reason")
			}
		})
	}
}

func TestUnionDoesNotMutateInputs(t *testing.T) {
	a := square(t, "a", 0, 0, 4)
	b := square(t, "b", 2, 2, 4)
	beforeA, beforeB := areaOf(t, a), areaOf(t, b)

	Union([]*geo.Feature{a, b})

	if areaOf(t, a) != beforeA || areaOf(t, b) != beforeB {
		t.Error("union must not mutate its inputs")
	}
	if a.ID() != "a" || b.ID() != "b" {
		t.Error("union must not touch input ids")
	}
}
