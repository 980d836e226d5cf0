package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/unaigarro/sombra/internal/core/domain"
	"github.com/unaigarro/sombra/internal/core/ports"
	"github.com/unaigarro/sombra/internal/core/shadow"
	"github.com/unaigarro/sombra/internal/core/usecases"
	"github.com/unaigarro/sombra/internal/pkg/geospatial"
)

// PointSummary condenses one point's shadow set into the numbers the report
// aggregates.
type PointSummary struct {
	Obstructed   float64 `json:"obstructed"`
	MaxElevation float64 `json:"max_elevation"`
}

// ReportActivities hold the activity implementations for the solar report
// workflow. They reuse the same use cases as the API but bypass its cache
// and event stream so a grid sweep does not evict hot keys or flood the bus.
type ReportActivities struct {
	Shadows   *usecases.ShadowService
	Buildings *usecases.BuildingService
	Publisher ports.EventPublisher

	// GridStep is the spacing in meters between sampled observation points.
	GridStep float64
	// SampleHeight is the observer height in meters above the datum.
	SampleHeight float64
	// Buffer is the search radius used when the workflow input leaves it zero.
	Buffer float64
}

// SamplePoints lays a regular grid over the building's footprint and returns
// the points inside it. Footprints smaller than one grid cell still yield a
// single point at the center of their bound.
func (a *ReportActivities) SamplePoints(ctx context.Context, refCat string) ([]domain.Point3D, error) {
	b, err := a.Buildings.GetByRefCat(ctx, refCat)
	if err != nil {
		return nil, fmt.Errorf("fetching building %s: %w", refCat, err)
	}
	pts := geospatial.GridSample(b.Footprint, a.GridStep, a.SampleHeight)
	if len(pts) == 0 {
		if len(b.Footprint) == 0 {
			return nil, fmt.Errorf("building %s has no footprint", refCat)
		}
		c := b.Footprint.Bound().Center()
		pts = []domain.Point3D{{X: c[0], Y: c[1], Z: a.SampleHeight}}
	}
	return pts, nil
}

// AnalyzePoint runs a shadow calculation at one observation point and folds
// the result into a sky-obstruction estimate: each shadow contributes its
// azimuth width times its top elevation, as a fraction of the full hemisphere.
func (a *ReportActivities) AnalyzePoint(ctx context.Context, point domain.Point3D, bufferMeters float64) (PointSummary, error) {
	if bufferMeters <= 0 {
		bufferMeters = a.Buffer
	}
	shadows, err := a.Shadows.CalculateAt(ctx, point, bufferMeters)
	if err != nil {
		return PointSummary{}, err
	}

	var summary PointSummary
	for _, sh := range shadows {
		width := shadow.Span(sh.Points.UpLeft.Azimuth, sh.Points.UpRight.Azimuth)
		top := math.Max(sh.Points.UpLeft.Elevation, sh.Points.UpRight.Elevation)
		summary.Obstructed += (width / 360) * (top / 90)
		if top > summary.MaxElevation {
			summary.MaxElevation = top
		}
	}
	// Overlapping shadows can push the naive sum past the whole sky.
	if summary.Obstructed > 1 {
		summary.Obstructed = 1
	}
	return summary, nil
}

// PublishReport broadcasts the finished report to realtime subscribers.
func (a *ReportActivities) PublishReport(ctx context.Context, report domain.SolarReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report %s: %w", report.ID, err)
	}
	return a.Publisher.PublishBroadcast(ctx, payload)
}
