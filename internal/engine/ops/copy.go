package ops

import (
	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/geo"
)

// Copy duplicates a feature under a fresh id, shifted by offset so the
// duplicate does not sit exactly on the source.
func Copy(target *geo.Feature, offset geom.Point) (res Result) {
	defer recoverFailure(&res)

	if target == nil {
		return failf("copy needs a feature")
	}
	out, err := copyShifted(target, offset)
	if err != nil {
		return failf("copy: %v", err)
	}
	return ok(out).withInputs(target.ID())
}

// CopyGroup duplicates several features under fresh ids, all shifted by
// the same offset so their relative layout is preserved.
func CopyGroup(targets []*geo.Feature, offset geom.Point) (res Result) {
	defer recoverFailure(&res)

	if len(targets) == 0 {
		return failf("copy needs at least one feature")
	}
	out := make([]*geo.Feature, 0, len(targets))
	for _, t := range targets {
		f, err := copyShifted(t, offset)
		if err != nil {
			return failf("copy: %v", err)
		}
		out = append(out, f)
	}
	return okMany(out...).withInputs(idsOf(targets)...)
}

// CopyGroupTo duplicates several features so that their combined
// centroid lands on dest. Every duplicate gets the same translation,
// preserving relative layout.
func CopyGroupTo(targets []*geo.Feature, dest geom.Point) (res Result) {
	defer recoverFailure(&res)

	if len(targets) == 0 {
		return failf("copy needs at least one feature")
	}
	center, err := groupCentroid(targets)
	if err != nil {
		return failf("copy: %v", err)
	}
	return CopyGroup(targets, geom.Point{X: dest.X - center.X, Y: dest.Y - center.Y})
}

// groupCentroid returns the centroid of the features taken together:
// each feature's centroid weighted by its area, or by its length for
// features without area, matching where the centroid of the merged
// geometry would land. A group with no weight at all, such as points,
// falls back to the plain mean.
func groupCentroid(targets []*geo.Feature) (geom.Point, error) {
	var wx, wy, weight float64
	var mx, my float64
	for _, t := range targets {
		g, err := t.Geometry()
		if err != nil {
			return geom.Point{}, err
		}
		c := geo.Centroid(g)
		w := 0.0
		switch s := g.(type) {
		case geom.Polygonal:
			w = s.Area()
		case geom.Linear:
			w = s.Length()
		}
		wx += c.X * w
		wy += c.Y * w
		weight += w
		mx += c.X
		my += c.Y
	}
	if weight == 0 {
		n := float64(len(targets))
		return geom.Point{X: mx / n, Y: my / n}, nil
	}
	return geom.Point{X: wx / weight, Y: wy / weight}, nil
}

func copyShifted(target *geo.Feature, offset geom.Point) (*geo.Feature, error) {
	if target == nil {
		return nil, geo.ErrNoGeometry
	}
	g, err := target.Geometry()
	if err != nil {
		return nil, err
	}
	out := target.CloneWithNewID()
	if err := out.SetGeometry(geo.Translate(g, offset.X, offset.Y)); err != nil {
		return nil, err
	}
	return out, nil
}
