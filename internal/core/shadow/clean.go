package shadow

import (
	"math"

	"github.com/unaigarro/sombra/internal/core/domain"
)

// containEps treats corners on a quad's boundary as inside, so a face
// sharing an edge with a larger covering face is still pruned.
const containEps = 1e-9

// Clean removes every shadow whose four corners all lie within another
// shadow's angular quadrilateral. It never merges partially overlapping
// shadows. Identical quads keep the first-seen entry, and survivors keep
// their first-seen relative order.
func Clean(shadows []domain.Shadow) []domain.Shadow {
	removed := make([]bool, len(shadows))
	for i := range shadows {
		if removed[i] {
			continue
		}
		for j := range shadows {
			if i == j || removed[j] {
				continue
			}
			if quadContains(&shadows[i], &shadows[j]) {
				removed[j] = true
			}
		}
	}

	out := make([]domain.Shadow, 0, len(shadows))
	for i := range shadows {
		if !removed[i] {
			out = append(out, shadows[i])
		}
	}
	return out
}

// quadContains reports whether every corner of inner lies inside (or on the
// boundary of) outer's quadrilateral. All azimuths are unwrapped against
// outer's first corner so the test is seam-free.
func quadContains(outer, inner *domain.Shadow) bool {
	ref := outer.Points.DownLeft.Azimuth
	quad := [4][2]float64{
		{UnwrapNear(outer.Points.DownLeft.Azimuth, ref), outer.Points.DownLeft.Elevation},
		{UnwrapNear(outer.Points.UpLeft.Azimuth, ref), outer.Points.UpLeft.Elevation},
		{UnwrapNear(outer.Points.UpRight.Azimuth, ref), outer.Points.UpRight.Elevation},
		{UnwrapNear(outer.Points.DownRight.Azimuth, ref), outer.Points.DownRight.Elevation},
	}

	for _, c := range []domain.ShadowPoint{
		inner.Points.DownLeft, inner.Points.UpLeft, inner.Points.UpRight, inner.Points.DownRight,
	} {
		pt := [2]float64{UnwrapNear(c.Azimuth, ref), c.Elevation}
		if !pointInQuad(quad, pt) {
			return false
		}
	}
	return true
}

// pointInQuad is an even-odd ray cast over the (azimuth, elevation) plane
// with an explicit boundary check before casting.
func pointInQuad(quad [4][2]float64, pt [2]float64) bool {
	for i := range quad {
		if pointSegmentDistance(pt, quad[i], quad[(i+1)%4]) <= containEps {
			return true
		}
	}

	inside := false
	j := 3
	for i := 0; i < 4; i++ {
		xi, yi := quad[i][0], quad[i][1]
		xj, yj := quad[j][0], quad[j][1]
		if (yi > pt[1]) != (yj > pt[1]) &&
			pt[0] < (xj-xi)*(pt[1]-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

func pointSegmentDistance(p, a, b [2]float64) float64 {
	abx, aby := b[0]-a[0], b[1]-a[1]
	apx, apy := p[0]-a[0], p[1]-a[1]

	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return math.Hypot(apx, apy)
	}
	t := clamp((apx*abx+apy*aby)/lenSq, 0, 1)
	return math.Hypot(apx-t*abx, apy-t*aby)
}
