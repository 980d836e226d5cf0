// Package shadow implements the shadow-projection engine: it extrudes
// cadastral footprints into vertical wall faces, projects each face onto an
// observer's sky hemisphere as an angular quadrilateral, and prunes
// quadrilaterals that are fully covered by another.
//
// Conventions, fixed for the whole repository: world coordinates are UTM
// meters (ETRS89 / UTM zone 30N, EPSG:25830). Azimuth 0° = grid North (+Y),
// increasing clockwise, so East (+X) is +90°; values live in [-180, 180).
// Elevation 0° = horizon, 90° = zenith. The ±180° azimuth seam is handled
// exclusively by the functions in this file.
package shadow

import "math"

// Normalize maps an angle in degrees onto [-180, 180).
func Normalize(deg float64) float64 {
	d := math.Mod(deg+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

// UnwrapNear shifts deg by whole turns until it lies within 180° of ref.
// Two azimuths unwrapped against the same reference can be compared with
// plain arithmetic, with no seam in between.
func UnwrapNear(deg, ref float64) float64 {
	for deg-ref > 180 {
		deg -= 360
	}
	for deg-ref < -180 {
		deg += 360
	}
	return deg
}

// Span returns the width in degrees of the smallest arc covering the given
// azimuths, unwrapping each against the first. A set of corners spanning
// more than 180° has no meaningful bounded interpretation for a single wall.
func Span(azimuths ...float64) float64 {
	if len(azimuths) == 0 {
		return 0
	}
	min, max := 0.0, 0.0
	for _, a := range azimuths[1:] {
		d := UnwrapNear(a, azimuths[0]) - azimuths[0]
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return max - min
}
