package geo

import (
	"errors"

	"github.com/ctessum/geom"
)

// ErrDegenerateLine indicates a line with no usable segments.
var ErrDegenerateLine = errors.New("line has no segments with length")

// Corridor buffers a line into a thin polygon of the given half width.
// Each segment becomes a rectangle extended by the half width past both
// endpoints so consecutive rectangles overlap at joints, and the
// rectangles are unioned into a single polygon. Splitting subtracts this
// corridor from the target polygon.
func Corridor(line geom.LineString, halfWidth float64) (geom.Polygon, error) {
	if len(line) < 2 {
		return nil, ErrDegenerateLine
	}
	var out geom.Polygonal
	for i := 0; i < len(line)-1; i++ {
		rect, ok := segmentBox(line[i], line[i+1], halfWidth)
		if !ok {
			continue
		}
		if out == nil {
			out = rect
			continue
		}
		out = out.Union(rect)
	}
	if out == nil {
		return nil, ErrDegenerateLine
	}
	return Flatten(out), nil
}

// segmentBox returns the rectangle of half width hw around segment ab,
// extended by hw along the segment direction at both ends. Zero-length
// segments report ok false.
func segmentBox(a, b geom.Point, hw float64) (geom.Polygon, bool) {
	length := Distance(a, b)
	if length == 0 {
		return nil, false
	}
	ux, uy := (b.X-a.X)/length, (b.Y-a.Y)/length
	nx, ny := -uy*hw, ux*hw
	start := geom.Point{X: a.X - ux*hw, Y: a.Y - uy*hw}
	end := geom.Point{X: b.X + ux*hw, Y: b.Y + uy*hw}
	ring := []geom.Point{
		{X: start.X + nx, Y: start.Y + ny},
		{X: end.X + nx, Y: end.Y + ny},
		{X: end.X - nx, Y: end.Y - ny},
		{X: start.X - nx, Y: start.Y - ny},
		{X: start.X + nx, Y: start.Y + ny},
	}
	return geom.Polygon{ring}, true
}
