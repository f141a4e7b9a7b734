package geo

import (
	"errors"
	"testing"

	"github.com/ctessum/geom"
)

func TestCorridorCoversLine(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 10, Y: 0}}

	c, err := Corridor(line, 0.5)
	if err != nil {
		t.Fatalf("Corridor failed: %v", err)
	}

	// A straight corridor is a single rectangle extended by the half
	// width past both ends: 11 long, 1 wide.
	if a := c.Area(); !almostEqual(a, 11) {
		t.Errorf("area = %v, want 11", a)
	}
	mid := geom.Point{X: 5, Y: 0}
	if mid.Within(c) != geom.Inside {
		t.Error("line midpoint should be inside the corridor")
	}
}

func TestCorridorBentLine(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}}

	c, err := Corridor(line, 0.25)
	if err != nil {
		t.Fatalf("Corridor failed: %v", err)
	}

	for _, p := range []geom.Point{{X: 2, Y: 0}, {X: 5, Y: 2}} {
		if p.Within(c) != geom.Inside {
			t.Errorf("point %v should be inside the corridor", p)
		}
	}
	far := geom.Point{X: 2, Y: 2}
	if far.Within(c) == geom.Inside {
		t.Error("point away from the line should be outside")
	}
}

func TestCorridorSkipsZeroSegments(t *testing.T) {
	line := geom.LineString{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 4, Y: 0}}

	c, err := Corridor(line, 0.5)
	if err != nil {
		t.Fatalf("Corridor failed: %v", err)
	}
	if c.Area() == 0 {
		t.Error("corridor should have area")
	}
}

func TestCorridorDegenerate(t *testing.T) {
	if _, err := Corridor(geom.LineString{{X: 1, Y: 1}}, 0.5); !errors.Is(err, ErrDegenerateLine) {
		t.Errorf("single point: got %v, want ErrDegenerateLine", err)
	}
	allSame := geom.LineString{{X: 1, Y: 1}, {X: 1, Y: 1}}
	if _, err := Corridor(allSame, 0.5); !errors.Is(err, ErrDegenerateLine) {
		t.Errorf("zero length line: got %v, want ErrDegenerateLine", err)
	}
}
