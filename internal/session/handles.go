package session

import (
	"github.com/ctessum/geom"

	"github.com/dshills/geostorm/internal/geo"
)

// Handle identifies one of the eight scale handles on a selection's
// bounding box: four corners and four edge midpoints.
type Handle uint8

const (
	HandleNW Handle = iota
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW

	handleCount
)

// String returns the compass name of the handle.
func (h Handle) String() string {
	switch h {
	case HandleNW:
		return "nw"
	case HandleN:
		return "n"
	case HandleNE:
		return "ne"
	case HandleE:
		return "e"
	case HandleSE:
		return "se"
	case HandleS:
		return "s"
	case HandleSW:
		return "sw"
	case HandleW:
		return "w"
	default:
		return "none"
	}
}

// Opposite returns the handle diagonally or laterally across the box,
// which is the anchor point when scaling away from the grabbed handle.
func (h Handle) Opposite() Handle {
	return (h + 4) % handleCount
}

// handlePoint returns the map position of a handle on a bounding box.
func handlePoint(b *geom.Bounds, h Handle) geom.Point {
	midX := (b.Min.X + b.Max.X) / 2
	midY := (b.Min.Y + b.Max.Y) / 2
	switch h {
	case HandleNW:
		return geom.Point{X: b.Min.X, Y: b.Max.Y}
	case HandleN:
		return geom.Point{X: midX, Y: b.Max.Y}
	case HandleNE:
		return geom.Point{X: b.Max.X, Y: b.Max.Y}
	case HandleE:
		return geom.Point{X: b.Max.X, Y: midY}
	case HandleSE:
		return geom.Point{X: b.Max.X, Y: b.Min.Y}
	case HandleS:
		return geom.Point{X: midX, Y: b.Min.Y}
	case HandleSW:
		return geom.Point{X: b.Min.X, Y: b.Min.Y}
	default:
		return geom.Point{X: b.Min.X, Y: midY}
	}
}

// handleAt returns the handle within tolerance of pt, preferring the
// closest when several are in range. Degenerate boxes have coincident
// handles, so closest-wins keeps the pick stable.
func handleAt(b *geom.Bounds, pt geom.Point, tolerance float64) (Handle, bool) {
	best := handleCount
	bestDist := tolerance
	for h := HandleNW; h < handleCount; h++ {
		d := geo.Distance(pt, handlePoint(b, h))
		if d <= bestDist {
			best = h
			bestDist = d
		}
	}
	return best, best != handleCount
}

// lassoRing closes an accumulated point trail into a polygon ring.
// Fewer than three distinct points cannot enclose anything.
func lassoRing(points []geom.Point) (geom.Polygon, bool) {
	if len(points) < 3 {
		return nil, false
	}
	ring := make([]geom.Point, len(points), len(points)+1)
	copy(ring, points)
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return geom.Polygon{ring}, true
}

// withinLasso reports whether a vertex counts as inside the lasso ring.
// Vertices exactly on the ring edge count as inside.
func withinLasso(pt geom.Point, lasso geom.Polygon) bool {
	return pt.Within(lasso) != geom.Outside
}

// lassoContains reports whether every vertex of g sits inside the lasso.
func lassoContains(g geom.Geom, lasso geom.Polygon) bool {
	verts := geo.Vertices(g)
	if len(verts) == 0 {
		return false
	}
	for _, v := range verts {
		if !withinLasso(v, lasso) {
			return false
		}
	}
	return true
}

// lassoIntersects reports whether g touches the lasso area at all.
// Vertex sampling catches most overlaps cheaply, but not a line that
// crosses the lasso with both endpoints outside, or two shapes overlapping
// cross-wise with no vertex of either inside the other. Lines get a
// segment-crossing check against the lasso boundary and polygons go to
// the clipper.
func lassoIntersects(g geom.Geom, lasso geom.Polygon) bool {
	for _, v := range geo.Vertices(g) {
		if withinLasso(v, lasso) {
			return true
		}
	}
	switch t := g.(type) {
	case geom.Polygonal:
		// A polygon surrounding the lasso holds its vertices.
		for _, ring := range lasso {
			for _, v := range ring {
				if v.Within(t) != geom.Outside {
					return true
				}
			}
		}
		inter := t.Intersection(lasso)
		return len(inter.Polygons()) > 0 && inter.Area() > 0
	case geom.LineString, geom.MultiLineString:
		return len(geo.Crossings(g, geo.BoundaryLines(lasso))) > 0
	}
	return false
}
