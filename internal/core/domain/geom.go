package domain

// Point3D is a Cartesian world position. X/Y are UTM easting/northing in
// meters (ETRS89 / UTM zone 30N, EPSG:25830), Z is meters above the datum.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XY is a 2D UTM coordinate in meters.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is an axis-aligned bounding box in UTM meters.
type Bounds struct {
	BottomLeft XY `json:"bottom_left"`
	TopRight   XY `json:"top_right"`
}

// ShadowPoint is a direction on the observer's sky hemisphere, in degrees.
// Azimuth is in [-180, 180): 0° = grid North (+Y), increasing clockwise,
// so +90° = East. Elevation is in [0, 90]: 0 = horizon, 90 = zenith.
// Corners below the horizontal plane are clamped to elevation 0.
type ShadowPoint struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}
