package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// CatastroBuilding is a raw cadastral building record as returned by the
// spatial store: a footprint polygon in UTM meters plus the construction-type
// string whose Roman numerals encode the floor count.
type CatastroBuilding struct {
	ID        string      `json:"id"`
	GID       int64       `json:"gid"`
	RefCat    string      `json:"refcat"`
	Constru   string      `json:"constru"`
	Footprint orb.Polygon `json:"footprint"`
	CreatedAt time.Time   `json:"created_at"`
}

// Overhang is a non-building obstacle (tree, canopy, pergola) modeled as a
// vertical occluding surface of effectively infinite height above its base.
type Overhang struct {
	ID        string      `json:"id"`
	GID       int64       `json:"gid"`
	RefCat    string      `json:"refcat,omitempty"`
	Kind      string      `json:"kind"`
	Footprint orb.Polygon `json:"footprint"`
	CreatedAt time.Time   `json:"created_at"`
}

// WallCorners are the four corners of a vertical wall face, ordered so that
// winding is preserved end-to-end: bottom edge left→right, top edge above it.
type WallCorners struct {
	DownLeft  Point3D `json:"downLeft"`
	UpLeft    Point3D `json:"upLeft"`
	UpRight   Point3D `json:"upRight"`
	DownRight Point3D `json:"downRight"`
}

// Wall is one vertical rectangular face of a building or overhang in world
// coordinates. It is produced by extrusion and consumed by the projector.
type Wall struct {
	ID              string      `json:"id"`
	GID             int64       `json:"gid"`
	CadastralNumber string      `json:"cadastralNumber"`
	Points          WallCorners `json:"points"`
}

// ShadowCorners mirror WallCorners in observer-centric angular coordinates.
type ShadowCorners struct {
	DownLeft  ShadowPoint `json:"downLeft"`
	UpLeft    ShadowPoint `json:"upLeft"`
	UpRight   ShadowPoint `json:"upRight"`
	DownRight ShadowPoint `json:"downRight"`
}

// Shadow is the angular image of one wall as seen from the observer: the
// patch of sky that wall occludes.
type Shadow struct {
	ID              string        `json:"id"`
	GID             int64         `json:"gid"`
	CadastralNumber string        `json:"cadastralNumber"`
	Points          ShadowCorners `json:"points"`
}

// ShadowCalculationRequest is the public request envelope. CenterX/CenterY
// are required; CenterZ defaults to 0 and BufferMeters to the configured
// default when omitted.
type ShadowCalculationRequest struct {
	CenterX      float64 `json:"centerX"`
	CenterY      float64 `json:"centerY"`
	CenterZ      float64 `json:"centerZ"`
	BufferMeters float64 `json:"bufferMeters"`
}

// ShadowQuery echoes the resolved query parameters back to the caller.
type ShadowQuery struct {
	Center Point3D `json:"center"`
	Buffer float64 `json:"buffer"`
	Bounds Bounds  `json:"bounds"`
}

// ShadowCalculationResponse is the public response envelope.
type ShadowCalculationResponse struct {
	Message string      `json:"message"`
	Data    []Shadow    `json:"data"`
	Query   ShadowQuery `json:"query"`
}

// AnalysisEvent is published after each completed shadow calculation.
type AnalysisEvent struct {
	ID          string    `json:"id"`
	Center      Point3D   `json:"center"`
	Buffer      float64   `json:"buffer"`
	Buildings   int       `json:"buildings"`
	Overhangs   int       `json:"overhangs"`
	ShadowCount int       `json:"shadow_count"`
	DurationMS  int64     `json:"duration_ms"`
	ComputedAt  time.Time `json:"computed_at"`
}

// SolarReport summarizes sky obstruction over a grid of observation points,
// produced by the batch report workflow.
type SolarReport struct {
	ID             string    `json:"id"`
	RefCat         string    `json:"refcat"`
	Points         int       `json:"points"`
	MeanObstructed float64   `json:"mean_obstructed"` // fraction of sampled sky directions occluded
	MaxElevation   float64   `json:"max_elevation"`   // highest shadow rim seen from any point
	GeneratedAt    time.Time `json:"generated_at"`
}
