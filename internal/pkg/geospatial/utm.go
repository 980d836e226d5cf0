// Package geospatial holds the pure planar helpers shared by the API and
// worker. All coordinates are UTM meters (ETRS89 / UTM zone 30N), so
// distances and buffers are plain Euclidean arithmetic.
package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/unaigarro/sombra/internal/core/domain"
)

// SRID is the spatial reference of every geometry in the system.
const SRID = 25830

// BufferBounds returns the square bounding box of the given half-width
// around a center point.
func BufferBounds(x, y, bufferMeters float64) domain.Bounds {
	return domain.Bounds{
		BottomLeft: domain.XY{X: x - bufferMeters, Y: y - bufferMeters},
		TopRight:   domain.XY{X: x + bufferMeters, Y: y + bufferMeters},
	}
}

// Distance is the planar distance in meters between two UTM points.
func Distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(bx-ax, by-ay)
}

// PolygonContains reports whether a footprint contains the point (x, y),
// holes included.
func PolygonContains(p orb.Polygon, x, y float64) bool {
	if len(p) == 0 {
		return false
	}
	return planar.PolygonContains(p, orb.Point{x, y})
}

// GridSample returns observation points laid out on a regular grid over the
// footprint's bound, keeping only those inside the footprint itself. Used by
// the batch report workflow to sweep a parcel.
func GridSample(p orb.Polygon, step float64, z float64) []domain.Point3D {
	if len(p) == 0 || step <= 0 {
		return nil
	}
	bound := p.Bound()
	var pts []domain.Point3D
	for x := bound.Min[0] + step/2; x < bound.Max[0]; x += step {
		for y := bound.Min[1] + step/2; y < bound.Max[1]; y += step {
			if PolygonContains(p, x, y) {
				pts = append(pts, domain.Point3D{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}
