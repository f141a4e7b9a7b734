package ops

import (
	"testing"

	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/geo"
)

func TestDifferenceCutsHole(t *testing.T) {
	base := square(t, "base", 0, 0, 4)
	hole := square(t, "hole", 1, 1, 2)

	res := Difference(base, []*geo.Feature{hole})
	if res.Failed() {
		t.Fatalf("difference failed: %s", res.Err)
	}
	if res.Feature == nil {
		t.Fatal("difference should produce a feature")
	}

	got := areaOf(t, res.Feature)
	if !near(got, 12, 1e-9) {
		t.Errorf("area = %v, want 12", got)
	}
	g, err := res.Feature.Geometry()
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	p, isPoly := g.(geom.Polygon)
	if !isPoly {
		t.Fatalf("geometry is %T, want Polygon", g)
	}
	if len(p) != 2 {
		t.Errorf("rings = %d, want shell plus hole", len(p))
	}
	if res.Feature.ID() == base.ID() {
		t.Error("difference result should have a fresh id")
	}
}

func TestDifferenceFullConsumption(t *testing.T) {
	base := square(t, "base", 1, 1, 1)
	cover := square(t, "cover", 0, 0, 4)

	res := Difference(base, []*geo.Feature{cover})
	if res.Failed() {
		t.Fatalf("full subtraction is a success, got failure: %s", res.Err)
	}
	if !res.Consumed() {
		t.Error("fully subtracted base should report Consumed")
	}
	if res.Feature != nil {
		t.Error("consumed result must carry no feature")
	}
}

func TestDifferenceMidSequenceConsumption(t *testing.T) {
	base := square(t, "base", 1, 1, 1)
	cover := square(t, "cover", 0, 0, 4)
	far := square(t, "far", 50, 50, 1)

	res := Difference(base, []*geo.Feature{cover, far})
	if res.Failed() || !res.Consumed() {
		t.Errorf("consumption mid sequence should still succeed consumed, got %+v", res)
	}
}

func TestDifferenceDisjointLeavesBase(t *testing.T) {
	base := square(t, "base", 0, 0, 2)
	far := square(t, "far", 10, 10, 1)

	res := Difference(base, []*geo.Feature{far})
	if res.Failed() {
		t.Fatalf("difference failed: %s", res.Err)
	}
	if !near(areaOf(t, res.Feature), 4, 1e-9) {
		t.Errorf("area = %v, want base area 4", areaOf(t, res.Feature))
	}
}

func TestDifferenceEmptySubtractClones(t *testing.T) {
	base := square(t, "base", 0, 0, 2)

	res := Difference(base, nil)
	if res.Failed() {
		t.Fatalf("difference failed: %s", res.Err)
	}
	if res.Feature.ID() == base.ID() {
		t.Error("result should have a fresh id")
	}
	if !geo.GeometryEqual(res.Feature, base, 1e-9) {
		t.Error("empty subtract list should keep the geometry")
	}
}

func TestDifferenceSequentialSubtraction(t *testing.T) {
	base := square(t, "base", 0, 0, 4)
	q1 := square(t, "q1", 0, 0, 2)
	q2 := square(t, "q2", 2, 2, 2)

	res := Difference(base, []*geo.Feature{q1, q2})
	if res.Failed() {
		t.Fatalf("difference failed: %s", res.Err)
	}
	if !near(areaOf(t, res.Feature), 8, 1e-9) {
		t.Errorf("area = %v, want 8", areaOf(t, res.Feature))
	}
	want := []string{"base", "q1", "q2"}
	if len(res.InputIDs) != len(want) {
		t.Fatalf("InputIDs = %v, want %v", res.InputIDs, want)
	}
	for i, id := range want {
		if res.InputIDs[i] != id {
			t.Errorf("InputIDs[%d] = %q, want %q", i, res.InputIDs[i], id)
		}
	}
}

func TestDifferenceRejectsNonPolygon(t *testing.T) {
	line := lineFeature(t, "l", geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 1})

	if res := Difference(line, []*geo.Feature{square(t, "s", 0, 0, 1)}); !res.Failed() {
		t.Error("line base should be a precondition failure")
	}
	if res := Difference(square(t, "s", 0, 0, 4), []*geo.Feature{line}); !res.Failed() {
		t.Error("line subtrahend should be a precondition failure")
	}
}

// CanSubtract Tests

func TestCanSubtract(t *testing.T) {
	tests := []struct {
		name        string
		base        *geo.Feature
		candidate   *geo.Feature
		canSubtract bool
		overlap     bool
		wantReason  bool
	}{
		{"overlapping", square(t, "a", 0, 0, 4), square(t, "b", 2, 2, 4), true, true, false},
		{"contained", square(t, "a", 0, 0, 4), square(t, "b", 1, 1, 1), true, true, false},
		{"disjoint", square(t, "a", 0, 0, 1), square(t, "b", 5, 5, 1), false, false, false},
		{"touching edges", square(t, "a", 0, 0, 2), square(t, "b", 2, 0, 2), false, false, false},
		{"line candidate", square(t, "a", 0, 0, 4), lineFeature(t, "l", geom.Point{X: 1, Y: 1}, geom.Point{X: 2, Y: 2}), false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanSubtract(tt.base, tt.candidate)
			if got.CanSubtract != tt.canSubtract {
				t.Errorf("CanSubtract = %v, want %v", got.CanSubtract, tt.canSubtract)
			}
			if got.Overlap != tt.overlap {
				t.Errorf("Overlap = %v, want %v", got.Overlap, tt.overlap)
			}
			if tt.wantReason && got.Reason == "" {
				t.Error("expected a reason")
			}
			if !tt.wantReason && got.Reason != "" {
				t.Errorf("unexpected reason %q", got.Reason)
			}
		})
	}
}
