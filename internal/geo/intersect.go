package geo

import (
	"github.com/ctessum/geom"
)

// SegmentIntersection returns the point where segments ab and cd cross.
// Parallel and collinear segments report no crossing: a shared stretch
// has no single crossing point.
func SegmentIntersection(a, b, c, d geom.Point) (geom.Point, bool) {
	rx, ry := b.X-a.X, b.Y-a.Y
	sx, sy := d.X-c.X, d.Y-c.Y
	denom := rx*sy - ry*sx
	if denom == 0 {
		return geom.Point{}, false
	}
	t := ((c.X-a.X)*sy - (c.Y-a.Y)*sx) / denom
	u := ((c.X-a.X)*ry - (c.Y-a.Y)*rx) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return geom.Point{}, false
	}
	return geom.Point{X: a.X + t*rx, Y: a.Y + t*ry}, true
}

// Crossings returns the distinct points where the segments of two linear
// geometries intersect. A crossing through a shared vertex is reported
// once. Non-linear inputs have no segments and produce nothing.
func Crossings(a, b geom.Geom) []geom.Point {
	var out []geom.Point
	seen := make(map[geom.Point]bool)
	for _, pa := range linearPaths(a) {
		for i := 0; i < len(pa)-1; i++ {
			for _, pb := range linearPaths(b) {
				for j := 0; j < len(pb)-1; j++ {
					pt, crossed := SegmentIntersection(pa[i], pa[i+1], pb[j], pb[j+1])
					if !crossed || seen[pt] {
						continue
					}
					seen[pt] = true
					out = append(out, pt)
				}
			}
		}
	}
	return out
}

// BoundaryLines returns the rings of a polygonal geometry as explicitly
// closed line strings, so crossing detection sees the closing edge.
func BoundaryLines(poly geom.Polygonal) geom.MultiLineString {
	var out geom.MultiLineString
	for _, p := range poly.Polygons() {
		for _, ring := range p {
			if len(ring) < 3 {
				continue
			}
			ls := make(geom.LineString, len(ring), len(ring)+1)
			copy(ls, ring)
			if ring[0] != ring[len(ring)-1] {
				ls = append(ls, ring[0])
			}
			out = append(out, ls)
		}
	}
	return out
}

// linearPaths returns the point paths of a linear geometry.
func linearPaths(g geom.Geom) []geom.LineString {
	switch t := g.(type) {
	case geom.LineString:
		return []geom.LineString{t}
	case geom.MultiLineString:
		return []geom.LineString(t)
	}
	return nil
}
