package ops

import (
	"testing"

	"github.com/ctessum/geom"
)

func TestScaleAboutCentroid(t *testing.T) {
	target := square(t, "s", 0, 0, 2)

	res := Scale(target, 2, ScaleLimits{})
	if res.Failed() {
		t.Fatalf("scale failed: %s", res.Err)
	}

	b := boundsOf(t, res.Feature)
	if !near(b.Min.X, -1, 1e-9) || !near(b.Min.Y, -1, 1e-9) ||
		!near(b.Max.X, 3, 1e-9) || !near(b.Max.Y, 3, 1e-9) {
		t.Errorf("bounds = %+v, want (-1,-1)..(3,3)", b)
	}
}

func TestScaleKeepsIdentity(t *testing.T) {
	target := square(t, "s", 0, 0, 2)

	res := Scale(target, 2, ScaleLimits{})
	if res.Failed() {
		t.Fatalf("scale failed: %s", res.Err)
	}
	if res.Feature.ID() != target.ID() {
		t.Error("scale result keeps the target identity for edit recording")
	}
	if b := boundsOf(t, target); !near(b.Max.X, 2, 1e-9) {
		t.Error("scale must not mutate its input")
	}
}

func TestScaleClampsFactor(t *testing.T) {
	limits := ScaleLimits{Min: 0.5, Max: 2}
	tests := []struct {
		name      string
		factor    float64
		wantWidth float64
	}{
		{"above max", 100, 4},
		{"below min", 0.01, 1},
		{"inside band", 1.5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Scale(square(t, "s", 0, 0, 2), tt.factor, limits)
			if res.Failed() {
				t.Fatalf("scale failed: %s", res.Err)
			}
			b := boundsOf(t, res.Feature)
			if got := b.Max.X - b.Min.X; !near(got, tt.wantWidth, 1e-9) {
				t.Errorf("width = %v, want %v", got, tt.wantWidth)
			}
		})
	}
}

func TestScaleAroundOrigin(t *testing.T) {
	target := square(t, "s", 0, 0, 2)

	res := ScaleAround(target, 2, geom.Point{X: 0, Y: 0}, ScaleLimits{})
	if res.Failed() {
		t.Fatalf("scale failed: %s", res.Err)
	}
	b := boundsOf(t, res.Feature)
	if !near(b.Min.X, 0, 1e-9) || !near(b.Max.X, 4, 1e-9) {
		t.Errorf("bounds = %+v, want (0,0)..(4,4)", b)
	}
}

func TestScaleByDragRatio(t *testing.T) {
	anchor := geom.Point{X: 0, Y: 0}
	start := geom.Point{X: 1, Y: 0}

	tests := []struct {
		name     string
		current  geom.Point
		wantMaxX float64
	}{
		{"outward doubles", geom.Point{X: 2, Y: 0}, 4},
		{"inward halves", geom.Point{X: 0.5, Y: 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScaleByDrag(square(t, "s", 0, 0, 2), anchor, start, tt.current, ScaleLimits{})
			if res.Failed() {
				t.Fatalf("scale failed: %s", res.Err)
			}
			if b := boundsOf(t, res.Feature); !near(b.Max.X, tt.wantMaxX, 1e-9) {
				t.Errorf("Max.X = %v, want %v", b.Max.X, tt.wantMaxX)
			}
		})
	}
}

func TestScaleByDragFromAnchorFails(t *testing.T) {
	p := geom.Point{X: 1, Y: 1}
	res := ScaleByDrag(square(t, "s", 0, 0, 2), p, p, geom.Point{X: 3, Y: 3}, ScaleLimits{})
	if !res.Failed() {
		t.Error("drag starting on the anchor has no ratio")
	}
}

func TestScaleNilFeature(t *testing.T) {
	if res := Scale(nil, 2, ScaleLimits{}); !res.Failed() {
		t.Error("nil feature should fail")
	}
}
