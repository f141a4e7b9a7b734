package ops

import (
	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/geo"
)

// Union merges polygonal features into a single feature. The output
// carries a fresh id and the properties of the first input. Inputs that
// do not touch merge into a multi part feature. A single input succeeds
// with a fresh-id copy, so unioning a selection of one is a cheap
// duplicate rather than an error.
func Union(features []*geo.Feature) (res Result) {
	defer recoverFailure(&res)

	if len(features) == 0 {
		return failf("union needs at least one polygon")
	}
	inputs := idsOf(features)

	if len(features) == 1 {
		if !features[0].IsPolygonal() {
			return failf("union input %s is not a polygon", features[0].ID())
		}
		return ok(features[0].CloneWithNewID()).withInputs(inputs...)
	}

	polys := make([]geom.Polygonal, len(features))
	for i, f := range features {
		p, err := polygonalOf(f)
		if err != nil {
			return failf("union input %s: %v", f.ID(), err)
		}
		polys[i] = p
	}

	merged := polys[0].Union(polys[1])
	for _, p := range polys[2:] {
		merged = merged.Union(p)
	}
	out, err := partedFeature(merged, features[0])
	if err != nil {
		return failf("union: %v", err)
	}
	if out == nil {
		return failf("union produced no geometry")
	}
	return ok(out).withInputs(inputs...)
}

// polygonalOf extracts the polygonal geometry of a feature.
func polygonalOf(f *geo.Feature) (geom.Polygonal, error) {
	g, err := f.Geometry()
	if err != nil {
		return nil, err
	}
	p, isPoly := g.(geom.Polygonal)
	if !isPoly {
		return nil, geo.ErrUnsupportedGeometry
	}
	return p, nil
}

// partedFeature converts a clipper result into a feature derived from
// base: properties copied, fresh id, and a multi polygon geometry when
// the rings form more than one part. Nil when the result is empty.
func partedFeature(p geom.Polygonal, base *geo.Feature) (*geo.Feature, error) {
	parts := geo.AssembleParts(geo.Flatten(p))
	if len(parts) == 0 {
		return nil, nil
	}

	var g geom.Geom
	if len(parts) == 1 {
		g = parts[0]
	} else {
		g = geom.MultiPolygon(parts)
	}

	out := base.CloneWithNewID()
	if err := out.SetGeometry(g); err != nil {
		return nil, err
	}
	return out, nil
}
