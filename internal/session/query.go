package session

import (
	"fmt"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom"
	"github.com/spf13/cast"

	"github.com/dshills/geostorm/internal/geo"
)

// SelectWhere replaces the selection with every feature matching a
// boolean expression over its properties, for example
// "area > 100 && type == 'Polygon'". Besides the feature's own
// properties, the computed fields area, length, vertices, type, and id
// are available; computed fields shadow properties with the same name.
// Features whose evaluation fails, including references to properties
// they do not carry, simply do not match. Matches are selected in store
// import order and their ids returned.
func (s *Session) SelectWhere(expr string) ([]string, error) {
	parsed, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	vars := parsed.Vars()

	var (
		ids      []string
		failures int
		firstErr error
	)
	for _, f := range s.store.All() {
		out, err := parsed.Evaluate(queryParams(f, vars))
		if err != nil {
			failures++
			if firstErr == nil {
				firstErr = fmt.Errorf("evaluate against %s: %w", f.ID(), err)
			}
			continue
		}
		matched, isBool := out.(bool)
		if !isBool {
			failures++
			if firstErr == nil {
				firstErr = fmt.Errorf("query against %s returned %T, want bool", f.ID(), out)
			}
			continue
		}
		if matched {
			ids = append(ids, f.ID())
		}
	}

	// A query that failed on every feature is a bad query, not an empty
	// result.
	if len(ids) == 0 && failures > 0 && failures == s.store.Count() {
		return nil, firstErr
	}

	if err := s.Select(ids...); err != nil {
		return nil, err
	}
	s.log.WithField("matched", len(ids)).Debug("query selection")
	return ids, nil
}

// queryParams builds the evaluation parameters a query needs: computed
// fields by name, then feature properties, with numbers normalized to
// float64 so comparisons and arithmetic work regardless of how the
// property was set.
func queryParams(f *geo.Feature, vars []string) map[string]interface{} {
	params := make(map[string]interface{}, len(vars))
	props := f.Properties()
	for _, v := range vars {
		switch v {
		case "area":
			params[v] = featureArea(f)
		case "length":
			params[v] = featureLength(f)
		case "vertices":
			params[v] = float64(f.VertexCount())
		case "type":
			params[v] = string(f.GeometryType())
		case "id":
			params[v] = f.ID()
		default:
			params[v] = normalizeParam(props[v])
		}
	}
	return params
}

// normalizeParam converts numeric property values to float64 and leaves
// everything else alone. Absent properties evaluate as nil.
func normalizeParam(v interface{}) interface{} {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		return cast.ToFloat64(v)
	default:
		return v
	}
}

// featureArea returns the polygonal area of a feature, 0 for anything
// that has none.
func featureArea(f *geo.Feature) float64 {
	g, err := f.Geometry()
	if err != nil {
		return 0
	}
	if p, isPoly := g.(geom.Polygonal); isPoly {
		return p.Area()
	}
	return 0
}

// featureLength returns the path length of a linear feature, 0 for
// anything else.
func featureLength(f *geo.Feature) float64 {
	g, err := f.Geometry()
	if err != nil {
		return 0
	}
	if l, isLinear := g.(geom.Linear); isLinear {
		return l.Length()
	}
	return 0
}
