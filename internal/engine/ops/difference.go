package ops

import (
	"github.com/dshills/geostorm/internal/geo"
)

// differenceMinArea is the area below which a difference result counts
// as fully consumed rather than a sliver feature.
const differenceMinArea = 1e-12

// Difference subtracts the subtract features from base in order. The
// output keeps base's properties under a fresh id. When the running
// result becomes empty mid sequence the whole base was consumed: the
// result is a success with no output feature, which is distinct from a
// failure. An empty subtract list succeeds with a fresh-id copy of base.
func Difference(base *geo.Feature, subtract []*geo.Feature) (res Result) {
	defer recoverFailure(&res)

	basePoly, err := polygonalOf(base)
	if err != nil {
		return failf("difference base %s: %v", base.ID(), err)
	}
	inputs := append([]string{base.ID()}, idsOf(subtract)...)

	if len(subtract) == 0 {
		return ok(base.CloneWithNewID()).withInputs(inputs...)
	}

	running := basePoly
	for _, s := range subtract {
		sp, err := polygonalOf(s)
		if err != nil {
			return failf("difference input %s: %v", s.ID(), err)
		}
		diff := running.Difference(sp)
		if len(diff.Polygons()) == 0 || diff.Area() < differenceMinArea {
			return okConsumed().withInputs(inputs...)
		}
		running = diff
	}

	out, err := partedFeature(running, base)
	if err != nil {
		return failf("difference: %v", err)
	}
	if out == nil {
		return okConsumed().withInputs(inputs...)
	}
	return ok(out).withInputs(inputs...)
}

// CanSubtractResult reports whether one feature can be subtracted from
// another.
type CanSubtractResult struct {
	// CanSubtract is true when the subtraction would change the base.
	CanSubtract bool
	// Overlap is true when the two features share area.
	Overlap bool
	// Reason explains a false CanSubtract when the cause is not simply
	// disjoint geometry.
	Reason string
}

// CanSubtract checks whether candidate overlaps base enough to subtract.
// Disjoint polygons return false for both fields with no reason: that is
// an answer, not an error.
func CanSubtract(base, candidate *geo.Feature) (out CanSubtractResult) {
	defer func() {
		if p := recover(); p != nil {
			out = CanSubtractResult{Reason: "geometry fault"}
		}
	}()

	basePoly, err := polygonalOf(base)
	if err != nil {
		return CanSubtractResult{Reason: "base is not a polygon"}
	}
	candPoly, err := polygonalOf(candidate)
	if err != nil {
		return CanSubtractResult{Reason: "candidate is not a polygon"}
	}

	if !basePoly.Bounds().Overlaps(candPoly.Bounds()) {
		return CanSubtractResult{}
	}
	inter := basePoly.Intersection(candPoly)
	if len(inter.Polygons()) == 0 || inter.Area() < differenceMinArea {
		return CanSubtractResult{}
	}
	return CanSubtractResult{CanSubtract: true, Overlap: true}
}
