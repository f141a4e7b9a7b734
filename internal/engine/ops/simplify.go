package ops

import (
	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/geo"
)

// DefaultToleranceLadder is the escalating tolerance sequence SimplifyAuto
// walks when the caller's tolerance removes nothing.
var DefaultToleranceLadder = []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2}

// SimplifyStats reports how much a simplify pass removed.
type SimplifyStats struct {
	Tolerance        float64
	VerticesBefore   int
	VerticesAfter    int
	ReductionPercent float64
}

// Reduced returns true if the pass removed at least one vertex.
func (s *SimplifyStats) Reduced() bool {
	return s != nil && s.VerticesAfter < s.VerticesBefore
}

func newSimplifyStats(tolerance float64, before, after int) *SimplifyStats {
	s := &SimplifyStats{Tolerance: tolerance, VerticesBefore: before, VerticesAfter: after}
	if before > 0 && after < before {
		s.ReductionPercent = float64(before-after) / float64(before) * 100
	}
	return s
}

// Simplify reduces the vertex count of a line or polygon feature using the
// given tolerance. The result is a replacement feature with a fresh id.
// A pass that removes nothing still succeeds; the stats show zero
// reduction so batch callers can skip recording a no-op replacement.
func Simplify(target *geo.Feature, tolerance float64) (res Result) {
	defer recoverFailure(&res)

	if target == nil {
		return failf("simplify needs a feature")
	}
	if tolerance <= 0 {
		return failf("simplify tolerance must be positive")
	}
	g, err := target.Geometry()
	if err != nil {
		return failf("simplify: %v", err)
	}
	s, isSimplifier := g.(geom.Simplifier)
	if !isSimplifier {
		return failf("cannot simplify a %s", target.GeometryType())
	}

	before := geo.VertexCount(g)
	simplified := s.Simplify(tolerance)
	after := geo.VertexCount(simplified)
	if !simplifiedValid(simplified) {
		// An aggressive tolerance can collapse a ring below three points
		// or a line below two. Keep the original instead of degenerating.
		after = before
	}

	out := target.CloneWithNewID()
	if after < before {
		if err := out.SetGeometry(simplified); err != nil {
			return failf("simplify: %v", err)
		}
	}
	return ok(out).withInputs(target.ID()).withStats(newSimplifyStats(tolerance, before, after))
}

// simplifiedValid reports whether every ring and path of a simplified
// geometry still has enough vertices to be a valid shape.
func simplifiedValid(g geom.Geom) bool {
	switch t := g.(type) {
	case geom.LineString:
		return len(t) >= 2
	case geom.MultiLineString:
		for _, l := range t {
			if len(l) < 2 {
				return false
			}
		}
		return true
	case geom.Polygon:
		for _, r := range t {
			if !ringValid(r) {
				return false
			}
		}
		return true
	case geom.MultiPolygon:
		for _, p := range t {
			for _, r := range p {
				if !ringValid(r) {
					return false
				}
			}
		}
		return true
	}
	return true
}

// ringValid requires three distinct vertices, not counting a repeated
// closing point.
func ringValid(r []geom.Point) bool {
	n := len(r)
	if n > 1 && r[0] == r[n-1] {
		n--
	}
	return n >= 3
}

// SimplifyAuto tries the given tolerance first and then walks ladder
// rungs above it until one actually removes vertices. If no rung reduces
// the shape the result succeeds unchanged with zero-reduction stats.
// A nil ladder uses DefaultToleranceLadder.
func SimplifyAuto(target *geo.Feature, tolerance float64, ladder []float64) (res Result) {
	defer recoverFailure(&res)

	if ladder == nil {
		ladder = DefaultToleranceLadder
	}
	res = Simplify(target, tolerance)
	if res.Failed() || res.Stats.Reduced() {
		return res
	}
	for _, tol := range ladder {
		if tol <= tolerance {
			continue
		}
		r := Simplify(target, tol)
		if r.Failed() {
			return r
		}
		if r.Stats.Reduced() {
			return r
		}
	}
	return res
}
