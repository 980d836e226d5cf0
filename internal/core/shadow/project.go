package shadow

import (
	"math"

	"github.com/unaigarro/sombra/internal/core/domain"
)

const (
	radToDeg = 180 / math.Pi

	// degenerateHoriz is the horizontal distance below which a corner is
	// considered directly above or below the observer.
	degenerateHoriz = 1e-9
)

// Project maps one wall onto the observer's sky hemisphere, returning the
// angular quadrilateral the wall subtends, or nil when the wall cannot
// occlude a bounded sky region.
//
// Per corner: azimuth = atan2(dx, dy), elevation = atan2(dz, hypot(dx, dy)),
// clamped to [0, 90]. A corner directly over the observer gets elevation 90
// and borrows its azimuth from the nearest non-degenerate corner of the same
// wall. Once all four azimuths are unwrapped against the first corner, a
// span over 180° means the projection has no consistent bounded quad and the
// wall is dropped.
func Project(observer domain.Point3D, w *domain.Wall) *domain.Shadow {
	corners := [4]domain.Point3D{
		w.Points.DownLeft, w.Points.UpLeft, w.Points.UpRight, w.Points.DownRight,
	}

	var az, el [4]float64
	var degenerate [4]bool
	for i, c := range corners {
		dx, dy, dz := c.X-observer.X, c.Y-observer.Y, c.Z-observer.Z
		horiz := math.Hypot(dx, dy)
		if horiz < degenerateHoriz {
			degenerate[i] = true
			el[i] = 90
			continue
		}
		az[i] = Normalize(math.Atan2(dx, dy) * radToDeg)
		el[i] = clamp(math.Atan2(dz, horiz)*radToDeg, 0, 90)
	}

	for i := range corners {
		if !degenerate[i] {
			continue
		}
		j, ok := nearestValidCorner(i, corners, degenerate)
		if !ok {
			// The whole wall sits on the observer's vertical axis.
			return nil
		}
		az[i] = az[j]
	}

	ref := az[0]
	for i := range az {
		az[i] = UnwrapNear(az[i], ref)
	}
	if Span(az[0], az[1], az[2], az[3]) > 180 {
		return nil
	}

	return &domain.Shadow{
		ID:              w.ID,
		GID:             w.GID,
		CadastralNumber: w.CadastralNumber,
		Points: domain.ShadowCorners{
			DownLeft:  domain.ShadowPoint{Azimuth: Normalize(az[0]), Elevation: el[0]},
			UpLeft:    domain.ShadowPoint{Azimuth: Normalize(az[1]), Elevation: el[1]},
			UpRight:   domain.ShadowPoint{Azimuth: Normalize(az[2]), Elevation: el[2]},
			DownRight: domain.ShadowPoint{Azimuth: Normalize(az[3]), Elevation: el[3]},
		},
	}
}

// nearestValidCorner picks the non-degenerate corner closest to corner i in
// the wall's horizontal plane.
func nearestValidCorner(i int, corners [4]domain.Point3D, degenerate [4]bool) (int, bool) {
	best, bestDist := -1, math.MaxFloat64
	for j := range corners {
		if j == i || degenerate[j] {
			continue
		}
		d := math.Hypot(corners[j].X-corners[i].X, corners[j].Y-corners[i].Y)
		if d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, best >= 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
