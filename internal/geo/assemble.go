package geo

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// AssembleParts regroups the rings of a clipped polygon into separate
// parts. Rings at even containment depth are shells, each ring at odd
// depth is a hole attached to its immediate parent shell. The clipper
// returns all rings of a multi part result in one flat polygon, so this
// is how a split result becomes individual features.
func AssembleParts(p geom.Polygon) []geom.Polygon {
	rings := make([]ringInfo, 0, len(p))
	for _, r := range p {
		if len(r) < 3 {
			continue
		}
		rings = append(rings, ringInfo{ring: r, area: ringArea(r)})
	}
	if len(rings) == 0 {
		return nil
	}

	for i := range rings {
		for j := range rings {
			if i == j {
				continue
			}
			if ringContains(rings[j], rings[i]) {
				rings[i].depth++
			}
		}
	}

	// Largest shells first so holes can find their tightest parent.
	sort.Slice(rings, func(i, j int) bool { return rings[i].area > rings[j].area })

	var parts []geom.Polygon
	shellAt := make([]int, 0, len(rings))
	for idx, ri := range rings {
		if ri.depth%2 == 0 {
			parts = append(parts, geom.Polygon{ri.ring})
			shellAt = append(shellAt, idx)
			continue
		}
		parent := -1
		for pi, sIdx := range shellAt {
			if rings[sIdx].depth == ri.depth-1 && ringContains(rings[sIdx], ri) {
				parent = pi
			}
		}
		if parent >= 0 {
			parts[parent] = append(parts[parent], ri.ring)
		}
	}
	return parts
}

// Flatten concatenates the rings of every part of p into one flat
// polygon, the ring-soup form AssembleParts regroups.
func Flatten(p geom.Polygonal) geom.Polygon {
	var out geom.Polygon
	for _, part := range p.Polygons() {
		out = append(out, part...)
	}
	return out
}

type ringInfo struct {
	ring  []geom.Point
	area  float64
	depth int
}

// ringContains reports whether inner lies inside outer. A ring can only
// contain a strictly smaller one: a donut's shell centroid lands inside
// the hole, so a centroid check alone would report the shell as contained
// too. The verdict comes from the first inner vertex strictly inside or
// outside, skipping vertices on the outer edge where clipped parts share
// boundary. When every vertex sits on the edge the inner centroid decides.
func ringContains(outer, inner ringInfo) bool {
	if outer.area <= inner.area {
		return false
	}
	shell := geom.Polygon{outer.ring}
	for _, v := range inner.ring {
		switch v.Within(shell) {
		case geom.Inside:
			return true
		case geom.Outside:
			return false
		}
	}
	return ringCentroid(inner.ring).Within(shell) == geom.Inside
}

func ringArea(r []geom.Point) float64 {
	return math.Abs(ringSignedArea(r))
}

func ringSignedArea(r []geom.Point) float64 {
	if len(r) < 3 {
		return 0
	}
	a := 0.0
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		a += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return a / 2
}

func ringCentroid(r []geom.Point) geom.Point {
	a := ringSignedArea(r)
	if a == 0 {
		b := geom.NewBounds()
		b.Extend(geom.LineString(r).Bounds())
		return BoundsCenter(b)
	}
	var cx, cy float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		cross := r[i].X*r[j].Y - r[j].X*r[i].Y
		cx += (r[i].X + r[j].X) * cross
		cy += (r[i].Y + r[j].Y) * cross
	}
	return geom.Point{X: cx / (6 * a), Y: cy / (6 * a)}
}
