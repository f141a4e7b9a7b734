package ops

import (
	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/geo"
)

// splitCorridorFraction sets the default corridor width for polygon splits
// as a fraction of the target's bounding-box diagonal.
const splitCorridorFraction = 1e-6

// SplitOptions tunes polygon splitting.
type SplitOptions struct {
	// CorridorWidth is the full width of the cut corridor subtracted from
	// the polygon. Zero or negative selects a width relative to the
	// target's bounding-box diagonal.
	CorridorWidth float64
}

// Split cuts a line or polygon feature along cutter and returns the
// resulting parts as new features. Line targets are cut at every interior
// crossing; polygon targets have a thin corridor along the cutter
// subtracted and the remainder reassembled into parts. A cutter that does
// not actually divide the target is a precondition failure.
func Split(target *geo.Feature, cutter geom.LineString, opts SplitOptions) (res Result) {
	defer recoverFailure(&res)

	if target == nil {
		return failf("split needs a feature")
	}
	if len(cutter) < 2 {
		return failf("split line needs at least two points")
	}

	g, err := target.Geometry()
	if err != nil {
		return failf("split: %v", err)
	}
	switch tg := g.(type) {
	case geom.LineString:
		return splitLine(target, tg, cutter)
	case geom.MultiLineString:
		if len(tg) == 1 {
			return splitLine(target, tg[0], cutter)
		}
		return failf("split supports single-part lines, not %d-part", len(tg))
	}
	poly, err := polygonalOf(target)
	if err != nil {
		return failf("split: %v", err)
	}
	return splitPolygon(target, poly, cutter, opts)
}

// splitLine cuts a line at its crossings with the cutter.
func splitLine(target *geo.Feature, line, cutter geom.LineString) Result {
	crossings := geo.Crossings(line, cutter)
	if len(crossings) == 0 {
		return failf("split line does not cross the target")
	}

	parts := geo.CutLine(line, crossings)
	if len(parts) < 2 {
		return failf("split line does not cross the target interior")
	}

	out := make([]*geo.Feature, 0, len(parts))
	for _, p := range parts {
		f := target.CloneWithNewID()
		if err := f.SetGeometry(p); err != nil {
			return failf("split: %v", err)
		}
		out = append(out, f)
	}
	return okMany(out...).withInputs(target.ID())
}

// splitPolygon subtracts a thin corridor along the cutter and reassembles
// the remainder. The cutter must cross the polygon boundary at least twice
// before any boolean op is attempted.
func splitPolygon(target *geo.Feature, poly geom.Polygonal, cutter geom.LineString, opts SplitOptions) Result {
	crossings := geo.Crossings(geo.BoundaryLines(poly), cutter)
	if len(crossings) < 2 {
		return failf("split line must cross the polygon boundary at least twice")
	}

	bounds := poly.Bounds()
	diag := geo.Distance(bounds.Min, bounds.Max)
	width := opts.CorridorWidth
	if width <= 0 {
		width = diag * splitCorridorFraction
	}
	corridor, err := geo.Corridor(cutter, width/2)
	if err != nil {
		return failf("split: %v", err)
	}

	remain := poly.Difference(corridor)
	minArea := width * diag
	parts := solidParts(remain, minArea)
	if len(parts) < 2 {
		// The subtraction can leave a single self-touching ring where the
		// corridor pinched the polygon. Self-union normalizes it.
		parts = solidParts(remain.Union(remain), minArea)
	}
	if len(parts) == 0 {
		return failf("split consumed the polygon")
	}
	if len(parts) < 2 {
		return failf("split line does not divide the polygon")
	}

	out := make([]*geo.Feature, 0, len(parts))
	for _, p := range parts {
		f := target.CloneWithNewID()
		if err := f.SetGeometry(p); err != nil {
			return failf("split: %v", err)
		}
		out = append(out, f)
	}
	return okMany(out...).withInputs(target.ID())
}

// solidParts assembles the rings of a clipper result into parts and
// drops corridor slivers below minArea.
func solidParts(p geom.Polygonal, minArea float64) []geom.Polygon {
	var out []geom.Polygon
	for _, part := range geo.AssembleParts(geo.Flatten(p)) {
		if part.Area() > minArea {
			out = append(out, part)
		}
	}
	return out
}
