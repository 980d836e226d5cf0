package geospatial

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestBufferBounds(t *testing.T) {
	b := BufferBounds(505000, 4789000, 100)
	if b.BottomLeft.X != 504900 || b.BottomLeft.Y != 4788900 {
		t.Errorf("bottom left = %+v", b.BottomLeft)
	}
	if b.TopRight.X != 505100 || b.TopRight.Y != 4789100 {
		t.Errorf("top right = %+v", b.TopRight)
	}
}

func TestDistance(t *testing.T) {
	if got := Distance(0, 0, 3, 4); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestPolygonContains(t *testing.T) {
	square := orb.Polygon{orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	if !PolygonContains(square, 5, 5) {
		t.Error("center must be inside")
	}
	if PolygonContains(square, 15, 5) {
		t.Error("point east of the square must be outside")
	}
	if PolygonContains(nil, 0, 0) {
		t.Error("empty polygon contains nothing")
	}
}

func TestGridSample(t *testing.T) {
	square := orb.Polygon{orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	pts := GridSample(square, 5, 1.5)
	if len(pts) != 4 {
		t.Fatalf("expected a 2×2 grid, got %d points", len(pts))
	}
	for _, p := range pts {
		if p.Z != 1.5 {
			t.Errorf("sample z = %v, want 1.5", p.Z)
		}
		if !PolygonContains(square, p.X, p.Y) {
			t.Errorf("sample %+v outside footprint", p)
		}
	}
	if got := GridSample(square, 0, 0); got != nil {
		t.Errorf("non-positive step must yield nil, got %v", got)
	}
}
