package ops

import (
	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/geo"
)

// DefaultScaleLimits is the factor band applied when a caller passes
// zero-value limits.
var DefaultScaleLimits = ScaleLimits{Min: 0.1, Max: 10}

// ScaleLimits bounds the effective scale factor. Requests outside the band
// are clamped, not rejected.
type ScaleLimits struct {
	Min float64
	Max float64
}

func (l ScaleLimits) clamp(factor float64) float64 {
	min, max := l.Min, l.Max
	if min <= 0 {
		min = DefaultScaleLimits.Min
	}
	if max <= 0 {
		max = DefaultScaleLimits.Max
	}
	if factor < min {
		return min
	}
	if factor > max {
		return max
	}
	return factor
}

// Scale resizes a feature about its centroid by the clamped factor. The
// result keeps the target's identity; callers record it as a geometry
// edit, not a replacement.
func Scale(target *geo.Feature, factor float64, limits ScaleLimits) (res Result) {
	defer recoverFailure(&res)

	if target == nil {
		return failf("scale needs a feature")
	}
	g, err := target.Geometry()
	if err != nil {
		return failf("scale: %v", err)
	}
	return scaleAround(target, g, factor, geo.Centroid(g), limits)
}

// ScaleAround resizes a feature about an explicit origin by the clamped
// factor.
func ScaleAround(target *geo.Feature, factor float64, origin geom.Point, limits ScaleLimits) (res Result) {
	defer recoverFailure(&res)

	if target == nil {
		return failf("scale needs a feature")
	}
	g, err := target.Geometry()
	if err != nil {
		return failf("scale: %v", err)
	}
	return scaleAround(target, g, factor, origin, limits)
}

// ScaleByDrag derives the factor from a handle drag: the ratio of the
// pointer's current distance from the anchor to its distance at drag
// start. A drag that started on the anchor has no defined ratio.
func ScaleByDrag(target *geo.Feature, anchor, start, current geom.Point, limits ScaleLimits) (res Result) {
	defer recoverFailure(&res)

	if target == nil {
		return failf("scale needs a feature")
	}
	startDist := geo.Distance(anchor, start)
	if startDist == 0 {
		return failf("scale drag started on the anchor point")
	}
	g, err := target.Geometry()
	if err != nil {
		return failf("scale: %v", err)
	}
	return scaleAround(target, g, geo.Distance(anchor, current)/startDist, anchor, limits)
}

func scaleAround(target *geo.Feature, g geom.Geom, factor float64, origin geom.Point, limits ScaleLimits) Result {
	scaled := geo.ScaleAbout(g, origin, limits.clamp(factor))
	out := target.Clone()
	if err := out.SetGeometry(scaled); err != nil {
		return failf("scale: %v", err)
	}
	return ok(out).withInputs(target.ID())
}
