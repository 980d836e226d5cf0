package shadow

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/unaigarro/sombra/internal/core/domain"
)

const (
	// minEdgeLength is the shortest footprint edge that still produces a
	// wall; anything below it is treated as a duplicated vertex.
	minEdgeLength = 1e-9

	// minRingArea rejects collapsed rings that survive the distinct-vertex
	// check (e.g. three collinear points).
	minRingArea = 1e-6
)

// ExtrudeBuilding converts a building footprint into one vertical wall face
// per outer-ring edge. Wall height is floor count × the engine's per-floor
// height; the floor count comes from the record's construction-type string.
func (e *Engine) ExtrudeBuilding(b *domain.CatastroBuilding) ([]domain.Wall, error) {
	height := float64(ParseFloorCount(b.Constru)) * e.FloorHeight
	return extrudeRing(outerRing(b.Footprint), height, b.ID, b.GID, b.RefCat)
}

// ExtrudeOverhang converts an obstacle footprint into wall faces with the
// engine's sentinel height, modeling a permanent obstruction above grade.
func (e *Engine) ExtrudeOverhang(o *domain.Overhang) ([]domain.Wall, error) {
	return extrudeRing(outerRing(o.Footprint), e.OverhangHeight, o.ID, o.GID, o.RefCat)
}

func outerRing(p orb.Polygon) orb.Ring {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

func extrudeRing(ring orb.Ring, height float64, id string, gid int64, refcat string) ([]domain.Wall, error) {
	verts := distinctVertices(ring)
	if len(verts) < 3 {
		return nil, fmt.Errorf("footprint ring has %d distinct vertices, need at least 3", len(verts))
	}
	if math.Abs(planar.Area(orb.Ring(append(append(orb.Ring{}, verts...), verts[0])))) < minRingArea {
		return nil, fmt.Errorf("footprint ring is degenerate (zero area)")
	}
	if ringSelfIntersects(verts) {
		return nil, fmt.Errorf("footprint ring self-intersects")
	}

	walls := make([]domain.Wall, 0, len(verts))
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		if math.Hypot(b[0]-a[0], b[1]-a[1]) < minEdgeLength {
			continue
		}
		walls = append(walls, domain.Wall{
			ID:              id,
			GID:             gid,
			CadastralNumber: refcat,
			Points: domain.WallCorners{
				DownLeft:  domain.Point3D{X: a[0], Y: a[1], Z: 0},
				UpLeft:    domain.Point3D{X: a[0], Y: a[1], Z: height},
				UpRight:   domain.Point3D{X: b[0], Y: b[1], Z: height},
				DownRight: domain.Point3D{X: b[0], Y: b[1], Z: 0},
			},
		})
	}
	return walls, nil
}

// ringSelfIntersects reports whether any two non-adjacent edges of the ring
// cross. Bow-tie rings can carry a healthy shoelace area and still describe
// an impossible footprint. Footprint rings are small, so the pairwise scan
// is fine.
func ringSelfIntersects(verts []orb.Point) bool {
	n := len(verts)
	for i := 0; i < n; i++ {
		a1, a2 := verts[i], verts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip the edge itself and its neighbors, which share a vertex.
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1, b2 := verts[j], verts[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports whether segments a1-a2 and b1-b2 properly intersect
// or overlap collinearly.
func segmentsCross(a1, a2, b1, b2 orb.Point) bool {
	d1 := cross2(b1, b2, a1)
	d2 := cross2(b1, b2, a2)
	d3 := cross2(a1, a2, b1)
	d4 := cross2(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(b1, b2, a1)) ||
		(d2 == 0 && onSegment(b1, b2, a2)) ||
		(d3 == 0 && onSegment(a1, a2, b1)) ||
		(d4 == 0 && onSegment(a1, a2, b2))
}

func cross2(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

// distinctVertices drops the closing vertex of a closed ring and any
// consecutive duplicates, so the wrap edge last→first is always real.
func distinctVertices(ring orb.Ring) []orb.Point {
	pts := []orb.Point(ring)
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	out := make([]orb.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 {
			last := out[len(out)-1]
			if math.Hypot(p[0]-last[0], p[1]-last[1]) < minEdgeLength {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
