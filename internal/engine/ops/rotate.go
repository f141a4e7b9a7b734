package ops

import (
	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/geo"
)

// Rotate turns a feature about its centroid by angle radians,
// counterclockwise. The result keeps the target's identity.
func Rotate(target *geo.Feature, angle float64) (res Result) {
	defer recoverFailure(&res)

	if target == nil {
		return failf("rotate needs a feature")
	}
	g, err := target.Geometry()
	if err != nil {
		return failf("rotate: %v", err)
	}
	return rotateAround(target, g, angle, geo.Centroid(g))
}

// RotateAround turns a feature about an explicit origin by angle radians.
func RotateAround(target *geo.Feature, angle float64, origin geom.Point) (res Result) {
	defer recoverFailure(&res)

	if target == nil {
		return failf("rotate needs a feature")
	}
	g, err := target.Geometry()
	if err != nil {
		return failf("rotate: %v", err)
	}
	return rotateAround(target, g, angle, origin)
}

func rotateAround(target *geo.Feature, g geom.Geom, angle float64, origin geom.Point) Result {
	out := target.Clone()
	if err := out.SetGeometry(geo.RotateAbout(g, origin, angle)); err != nil {
		return failf("rotate: %v", err)
	}
	return ok(out).withInputs(target.ID())
}
