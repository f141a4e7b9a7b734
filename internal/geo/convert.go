package geo

import (
	"fmt"

	"github.com/ctessum/geom"
	geojson "github.com/paulmach/go.geojson"
)

// GeometryToGeom converts a GeoJSON geometry to a planar geometry value.
// Geometry collections are not editable and return ErrUnsupportedGeometry.
func GeometryToGeom(g *geojson.Geometry) (geom.Geom, error) {
	if g == nil {
		return nil, ErrNoGeometry
	}
	switch g.Type {
	case geojson.GeometryPoint:
		return coordToPoint(g.Point)
	case geojson.GeometryMultiPoint:
		pts, err := coordsToPoints(g.MultiPoint)
		if err != nil {
			return nil, err
		}
		return geom.MultiPoint(pts), nil
	case geojson.GeometryLineString:
		pts, err := coordsToPoints(g.LineString)
		if err != nil {
			return nil, err
		}
		return geom.LineString(pts), nil
	case geojson.GeometryMultiLineString:
		ml := make(geom.MultiLineString, len(g.MultiLineString))
		for i, line := range g.MultiLineString {
			pts, err := coordsToPoints(line)
			if err != nil {
				return nil, err
			}
			ml[i] = geom.LineString(pts)
		}
		return ml, nil
	case geojson.GeometryPolygon:
		return coordsToPolygon(g.Polygon)
	case geojson.GeometryMultiPolygon:
		mp := make(geom.MultiPolygon, len(g.MultiPolygon))
		for i, poly := range g.MultiPolygon {
			p, err := coordsToPolygon(poly)
			if err != nil {
				return nil, err
			}
			mp[i] = p
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.Type)
	}
}

// GeometryFromGeom converts a planar geometry value back to GeoJSON.
func GeometryFromGeom(g geom.Geom) (*geojson.Geometry, error) {
	switch gt := g.(type) {
	case geom.Point:
		return geojson.NewPointGeometry([]float64{gt.X, gt.Y}), nil
	case geom.MultiPoint:
		return geojson.NewMultiPointGeometry(pointsToCoords(gt)...), nil
	case geom.LineString:
		return geojson.NewLineStringGeometry(pointsToCoords(gt)), nil
	case geom.MultiLineString:
		lines := make([][][]float64, len(gt))
		for i, line := range gt {
			lines[i] = pointsToCoords(line)
		}
		return geojson.NewMultiLineStringGeometry(lines...), nil
	case geom.Polygon:
		return geojson.NewPolygonGeometry(polygonToCoords(gt)), nil
	case geom.MultiPolygon:
		polys := make([][][][]float64, len(gt))
		for i, poly := range gt {
			polys[i] = polygonToCoords(poly)
		}
		return geojson.NewMultiPolygonGeometry(polys...), nil
	case nil:
		return nil, ErrNoGeometry
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}
}

func coordToPoint(coord []float64) (geom.Point, error) {
	if len(coord) < 2 {
		return geom.Point{}, fmt.Errorf("point needs 2 coordinates, got %d", len(coord))
	}
	return geom.Point{X: coord[0], Y: coord[1]}, nil
}

func coordsToPoints(coords [][]float64) ([]geom.Point, error) {
	pts := make([]geom.Point, len(coords))
	for i, c := range coords {
		p, err := coordToPoint(c)
		if err != nil {
			return nil, err
		}
		pts[i] = p
	}
	return pts, nil
}

func coordsToPolygon(rings [][][]float64) (geom.Polygon, error) {
	p := make(geom.Polygon, len(rings))
	for i, ring := range rings {
		pts, err := coordsToPoints(ring)
		if err != nil {
			return nil, err
		}
		p[i] = pts
	}
	return p, nil
}

func pointsToCoords(pts []geom.Point) [][]float64 {
	coords := make([][]float64, len(pts))
	for i, p := range pts {
		coords[i] = []float64{p.X, p.Y}
	}
	return coords
}

func polygonToCoords(p geom.Polygon) [][][]float64 {
	rings := make([][][]float64, len(p))
	for i, ring := range p {
		rings[i] = pointsToCoords(ring)
	}
	return rings
}
