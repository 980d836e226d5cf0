package shadow

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/unaigarro/sombra/internal/core/domain"
)

// Default heights in meters. Both are exposed through configuration; the
// overhang sentinel is orders of magnitude above any realistic building so
// an obstacle occludes everything above its baseline.
const (
	DefaultFloorHeight    = 3.0
	DefaultOverhangHeight = 100000.0
)

// Engine computes the minimal set of sky-occluding quadrilaterals around an
// observation point. It is a pure, stateless computation over in-memory
// geometry: no I/O, safe for concurrent use.
type Engine struct {
	FloorHeight    float64
	OverhangHeight float64
}

// New returns an Engine, substituting defaults for non-positive heights.
func New(floorHeight, overhangHeight float64) *Engine {
	if floorHeight <= 0 {
		floorHeight = DefaultFloorHeight
	}
	if overhangHeight <= 0 {
		overhangHeight = DefaultOverhangHeight
	}
	return &Engine{FloorHeight: floorHeight, OverhangHeight: overhangHeight}
}

// Stats counts what one analysis pushed through the pipeline.
type Stats struct {
	WallsProjected int
	ShadowsPruned  int
}

// ComputeShadows extrudes every building and overhang around the reference
// point, projects each wall, and prunes fully covered shadows. Walls of the
// building containing the reference point are excluded: a building does not
// shadow itself. Records with malformed geometry are skipped individually;
// the only fatal input is a non-finite reference point.
func (e *Engine) ComputeShadows(buildings []domain.CatastroBuilding, overhangs []domain.Overhang, ref domain.Point3D) ([]domain.Shadow, error) {
	shadows, _, err := e.ComputeShadowsStats(buildings, overhangs, ref)
	return shadows, err
}

// ComputeShadowsStats is ComputeShadows plus pipeline counts.
func (e *Engine) ComputeShadowsStats(buildings []domain.CatastroBuilding, overhangs []domain.Overhang, ref domain.Point3D) ([]domain.Shadow, Stats, error) {
	if !finite(ref.X) || !finite(ref.Y) || !finite(ref.Z) {
		return nil, Stats{}, fmt.Errorf("reference point (%v, %v, %v) is not finite", ref.X, ref.Y, ref.Z)
	}

	own := e.observerRefCat(buildings, ref)

	shadows := make([]domain.Shadow, 0, 4*(len(buildings)+len(overhangs)))
	for i := range buildings {
		b := &buildings[i]
		if own != "" && b.RefCat == own {
			continue
		}
		walls, err := e.ExtrudeBuilding(b)
		if err != nil {
			continue
		}
		shadows = appendProjections(shadows, ref, walls)
	}
	for i := range overhangs {
		walls, err := e.ExtrudeOverhang(&overhangs[i])
		if err != nil {
			continue
		}
		shadows = appendProjections(shadows, ref, walls)
	}

	cleaned := Clean(shadows)
	stats := Stats{
		WallsProjected: len(shadows),
		ShadowsPruned:  len(shadows) - len(cleaned),
	}
	return cleaned, stats, nil
}

func appendProjections(dst []domain.Shadow, ref domain.Point3D, walls []domain.Wall) []domain.Shadow {
	for i := range walls {
		if s := Project(ref, &walls[i]); s != nil {
			dst = append(dst, *s)
		}
	}
	return dst
}

// observerRefCat finds the cadastral reference of the building whose
// footprint contains the reference point, if any.
func (e *Engine) observerRefCat(buildings []domain.CatastroBuilding, ref domain.Point3D) string {
	pt := orb.Point{ref.X, ref.Y}
	for i := range buildings {
		ring := outerRing(buildings[i].Footprint)
		if len(ring) >= 3 && planar.RingContains(ring, pt) {
			return buildings[i].RefCat
		}
	}
	return ""
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
