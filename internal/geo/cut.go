package geo

import (
	"sort"

	"github.com/ctessum/geom"
)

// StationOf returns the distance along the line at which pt sits,
// measured from the first vertex. Points off the line snap to the
// nearest position on it.
func StationOf(line geom.LineString, pt geom.Point) float64 {
	bestDist := -1.0
	bestStation := 0.0
	walked := 0.0
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		segLen := Distance(a, b)
		if segLen == 0 {
			continue
		}
		t := ((pt.X-a.X)*(b.X-a.X) + (pt.Y-a.Y)*(b.Y-a.Y)) / (segLen * segLen)
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		proj := geom.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
		d := Distance(pt, proj)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestStation = walked + t*segLen
		}
		walked += segLen
	}
	return bestStation
}

// CutLine splits a line at the given points and returns the pieces in
// order along the line. Cut points at the endpoints or coinciding with
// each other are ignored, so a line cut by one interior point yields two
// pieces and a cut that never touches the interior yields the whole line.
func CutLine(line geom.LineString, points []geom.Point) []geom.LineString {
	if len(line) < 2 {
		return nil
	}
	total := geom.LineString(line).Length()
	if total == 0 {
		return nil
	}
	eps := total * 1e-9

	stations := make([]float64, 0, len(points))
	for _, pt := range points {
		s := StationOf(line, pt)
		if s <= eps || s >= total-eps {
			continue
		}
		stations = append(stations, s)
	}
	sort.Float64s(stations)

	// Drop near-duplicate stations
	deduped := stations[:0]
	for _, s := range stations {
		if len(deduped) == 0 || s-deduped[len(deduped)-1] > eps {
			deduped = append(deduped, s)
		}
	}
	stations = deduped

	if len(stations) == 0 {
		return []geom.LineString{line}
	}

	var parts []geom.LineString
	current := geom.LineString{line[0]}
	walked := 0.0
	next := 0
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		segLen := Distance(a, b)
		if segLen == 0 {
			continue
		}
		for next < len(stations) && stations[next] <= walked+segLen+eps {
			t := (stations[next] - walked) / segLen
			if t > 1 {
				t = 1
			}
			cut := geom.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
			if current[len(current)-1] != cut {
				current = append(current, cut)
			}
			if len(current) >= 2 {
				parts = append(parts, current)
			}
			current = geom.LineString{cut}
			next++
		}
		if current[len(current)-1] != b {
			current = append(current, b)
		}
		walked += segLen
	}
	if len(current) >= 2 {
		parts = append(parts, current)
	}
	return parts
}
