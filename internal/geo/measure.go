package geo

import (
	"math"

	"github.com/ctessum/geom"
)

// Distance returns the planar distance between two points.
func Distance(a, b geom.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Bearing returns the direction from one point to another in radians,
// measured counterclockwise from the positive x axis.
func Bearing(from, to geom.Point) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// Translate shifts every coordinate of g by dx and dy.
func Translate(g geom.Geom, dx, dy float64) geom.Geom {
	return mapPoints(g, func(p geom.Point) geom.Point {
		return geom.Point{X: p.X + dx, Y: p.Y + dy}
	})
}

// TranslateBy shifts g by a distance along a bearing in radians.
func TranslateBy(g geom.Geom, distance, bearing float64) geom.Geom {
	return Translate(g, distance*math.Cos(bearing), distance*math.Sin(bearing))
}

// ScaleAbout scales g by factor around origin.
func ScaleAbout(g geom.Geom, origin geom.Point, factor float64) geom.Geom {
	return mapPoints(g, func(p geom.Point) geom.Point {
		return geom.Point{
			X: origin.X + (p.X-origin.X)*factor,
			Y: origin.Y + (p.Y-origin.Y)*factor,
		}
	})
}

// RotateAbout rotates g by angle radians counterclockwise around origin.
func RotateAbout(g geom.Geom, origin geom.Point, angle float64) geom.Geom {
	sin, cos := math.Sincos(angle)
	return mapPoints(g, func(p geom.Point) geom.Point {
		dx, dy := p.X-origin.X, p.Y-origin.Y
		return geom.Point{
			X: origin.X + dx*cos - dy*sin,
			Y: origin.Y + dx*sin + dy*cos,
		}
	})
}

// BoundsCenter returns the center of b.
func BoundsCenter(b *geom.Bounds) geom.Point {
	return geom.Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// Centroid returns a representative center point for any editable geometry:
// the area centroid for polygons, the midpoint of the bounds otherwise.
func Centroid(g geom.Geom) geom.Point {
	if p, ok := g.(geom.Polygonal); ok && p.Area() > 0 {
		return p.Centroid()
	}
	return BoundsCenter(g.Bounds())
}

// DistanceToSegment returns the distance from pt to the segment ab.
func DistanceToSegment(pt, a, b geom.Point) float64 {
	segLen := Distance(a, b)
	if segLen == 0 {
		return Distance(pt, a)
	}
	t := ((pt.X-a.X)*(b.X-a.X) + (pt.Y-a.Y)*(b.Y-a.Y)) / (segLen * segLen)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Distance(pt, geom.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)})
}

// DistanceToEdges returns the distance from pt to the nearest edge of g,
// walking every path and ring. Polygon rings are treated as closed. A
// geometry with no edges reports the distance to its nearest vertex, and
// a geometry with no vertices reports +Inf.
func DistanceToEdges(pt geom.Point, g geom.Geom) float64 {
	best := math.Inf(1)
	seg := func(a, b geom.Point) {
		if d := DistanceToSegment(pt, a, b); d < best {
			best = d
		}
	}
	switch gt := g.(type) {
	case geom.Point:
		return Distance(pt, gt)
	case geom.MultiPoint:
		for _, p := range gt {
			if d := Distance(pt, p); d < best {
				best = d
			}
		}
	case geom.LineString:
		for i := 0; i < len(gt)-1; i++ {
			seg(gt[i], gt[i+1])
		}
		if len(gt) == 1 {
			return Distance(pt, gt[0])
		}
	case geom.MultiLineString:
		for _, line := range gt {
			if d := DistanceToEdges(pt, line); d < best {
				best = d
			}
		}
	case geom.Polygon:
		for _, ring := range gt {
			for i := 0; i < len(ring); i++ {
				seg(ring[i], ring[(i+1)%len(ring)])
			}
		}
	case geom.MultiPolygon:
		for _, poly := range gt {
			if d := DistanceToEdges(pt, poly); d < best {
				best = d
			}
		}
	}
	return best
}

// Vertices returns every coordinate of g in storage order.
func Vertices(g geom.Geom) []geom.Point {
	out := make([]geom.Point, 0, VertexCount(g))
	switch gt := g.(type) {
	case geom.Point:
		out = append(out, gt)
	case geom.MultiPoint:
		out = append(out, gt...)
	case geom.LineString:
		out = append(out, gt...)
	case geom.MultiLineString:
		for _, line := range gt {
			out = append(out, line...)
		}
	case geom.Polygon:
		for _, ring := range gt {
			out = append(out, ring...)
		}
	case geom.MultiPolygon:
		for _, poly := range gt {
			for _, ring := range poly {
				out = append(out, ring...)
			}
		}
	}
	return out
}

// VertexCount returns the number of coordinates in g.
func VertexCount(g geom.Geom) int {
	switch gt := g.(type) {
	case geom.Point:
		return 1
	case geom.MultiPoint:
		return len(gt)
	case geom.LineString:
		return len(gt)
	case geom.MultiLineString:
		n := 0
		for _, line := range gt {
			n += len(line)
		}
		return n
	case geom.Polygon:
		n := 0
		for _, ring := range gt {
			n += len(ring)
		}
		return n
	case geom.MultiPolygon:
		n := 0
		for _, poly := range gt {
			n += VertexCount(poly)
		}
		return n
	default:
		return 0
	}
}

// mapPoints applies fn to every coordinate of g, preserving the concrete
// type. Geometry kinds the engine does not edit are returned unchanged.
func mapPoints(g geom.Geom, fn func(geom.Point) geom.Point) geom.Geom {
	switch gt := g.(type) {
	case geom.Point:
		return fn(gt)
	case geom.MultiPoint:
		out := make(geom.MultiPoint, len(gt))
		for i, p := range gt {
			out[i] = fn(p)
		}
		return out
	case geom.LineString:
		out := make(geom.LineString, len(gt))
		for i, p := range gt {
			out[i] = fn(p)
		}
		return out
	case geom.MultiLineString:
		out := make(geom.MultiLineString, len(gt))
		for i, line := range gt {
			out[i] = mapPoints(line, fn).(geom.LineString)
		}
		return out
	case geom.Polygon:
		out := make(geom.Polygon, len(gt))
		for i, ring := range gt {
			r := make([]geom.Point, len(ring))
			for j, p := range ring {
				r[j] = fn(p)
			}
			out[i] = r
		}
		return out
	case geom.MultiPolygon:
		out := make(geom.MultiPolygon, len(gt))
		for i, poly := range gt {
			out[i] = mapPoints(poly, fn).(geom.Polygon)
		}
		return out
	default:
		return g
	}
}
