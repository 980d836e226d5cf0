package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unaigarro/sombra/internal/core/domain"
	"github.com/unaigarro/sombra/internal/core/ports"
	"github.com/unaigarro/sombra/internal/core/shadow"
	"github.com/unaigarro/sombra/internal/pkg/geospatial"
	"github.com/unaigarro/sombra/internal/pkg/metrics"
)

// ShadowService orchestrates a shadow analysis: it resolves the query box,
// fetches the surrounding cadastral records, runs the projection engine and
// wraps the result in the public envelope.
type ShadowService struct {
	buildings ports.BuildingRepository
	overhangs ports.OverhangRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	engine    *shadow.Engine

	defaultBuffer float64
	maxBuffer     float64
}

// NewShadowService creates a new ShadowService. Cache and publisher may be
// nil; non-positive buffer limits fall back to 100 m / 1000 m.
func NewShadowService(
	buildings ports.BuildingRepository,
	overhangs ports.OverhangRepository,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	engine *shadow.Engine,
	defaultBuffer, maxBuffer float64,
) *ShadowService {
	if engine == nil {
		engine = shadow.New(0, 0)
	}
	if defaultBuffer <= 0 {
		defaultBuffer = 100
	}
	if maxBuffer <= 0 {
		maxBuffer = 1000
	}
	return &ShadowService{
		buildings:     buildings,
		overhangs:     overhangs,
		cache:         cache,
		publisher:     publisher,
		engine:        engine,
		defaultBuffer: defaultBuffer,
		maxBuffer:     maxBuffer,
	}
}

// Calculate runs a full analysis for an interactive request: cache-aside,
// published as an analysis event on success.
func (s *ShadowService) Calculate(ctx context.Context, req domain.ShadowCalculationRequest) (*domain.ShadowCalculationResponse, error) {
	buffer, err := s.resolveBuffer(req.BufferMeters)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("shadows:%.2f:%.2f:%.2f:%.0f", req.CenterX, req.CenterY, req.CenterZ, buffer)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var resp domain.ShadowCalculationResponse
			if err := json.Unmarshal(data, &resp); err == nil {
				metrics.CacheHits.WithLabelValues("shadows").Inc()
				return &resp, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("shadows").Inc()
	}

	start := time.Now()
	center := domain.Point3D{X: req.CenterX, Y: req.CenterY, Z: req.CenterZ}
	bounds := geospatial.BufferBounds(req.CenterX, req.CenterY, buffer)

	buildings, err := s.buildings.FindIntersecting(ctx, bounds)
	if err != nil {
		return nil, fmt.Errorf("fetch buildings: %w", err)
	}
	overhangs, err := s.overhangs.FindIntersecting(ctx, bounds)
	if err != nil {
		return nil, fmt.Errorf("fetch overhangs: %w", err)
	}
	metrics.RecordsFetched.WithLabelValues("building").Add(float64(len(buildings)))
	metrics.RecordsFetched.WithLabelValues("overhang").Add(float64(len(overhangs)))

	shadows, stats, err := s.engine.ComputeShadowsStats(buildings, overhangs, center)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.AnalysesTotal.WithLabelValues("api").Inc()
	metrics.AnalysisDuration.WithLabelValues("api").Observe(elapsed.Seconds())
	metrics.WallsProjected.Add(float64(stats.WallsProjected))
	metrics.ShadowsEmitted.Add(float64(len(shadows)))
	metrics.ShadowsPruned.Add(float64(stats.ShadowsPruned))

	resp := &domain.ShadowCalculationResponse{
		Message: fmt.Sprintf("%d shadows computed from %d buildings and %d overhangs", len(shadows), len(buildings), len(overhangs)),
		Data:    shadows,
		Query: domain.ShadowQuery{
			Center: center,
			Buffer: buffer,
			Bounds: bounds,
		},
	}

	// Cache for 10 minutes; footprints change on import, not per request.
	if s.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	if s.publisher != nil {
		_ = s.publisher.PublishAnalysis(ctx, &domain.AnalysisEvent{
			ID:          uuid.NewString(),
			Center:      center,
			Buffer:      buffer,
			Buildings:   len(buildings),
			Overhangs:   len(overhangs),
			ShadowCount: len(shadows),
			DurationMS:  elapsed.Milliseconds(),
			ComputedAt:  time.Now().UTC(),
		})
	}

	return resp, nil
}

// CalculateAt runs one analysis for a batch report point: no cache, no
// event, so a grid sweep does not flood the bus or evict hot keys.
func (s *ShadowService) CalculateAt(ctx context.Context, center domain.Point3D, bufferMeters float64) ([]domain.Shadow, error) {
	buffer, err := s.resolveBuffer(bufferMeters)
	if err != nil {
		return nil, err
	}
	bounds := geospatial.BufferBounds(center.X, center.Y, buffer)

	buildings, err := s.buildings.FindIntersecting(ctx, bounds)
	if err != nil {
		return nil, fmt.Errorf("fetch buildings: %w", err)
	}
	overhangs, err := s.overhangs.FindIntersecting(ctx, bounds)
	if err != nil {
		return nil, fmt.Errorf("fetch overhangs: %w", err)
	}

	start := time.Now()
	shadows, stats, err := s.engine.ComputeShadowsStats(buildings, overhangs, center)
	if err != nil {
		return nil, err
	}
	metrics.AnalysesTotal.WithLabelValues("workflow").Inc()
	metrics.AnalysisDuration.WithLabelValues("workflow").Observe(time.Since(start).Seconds())
	metrics.WallsProjected.Add(float64(stats.WallsProjected))
	metrics.ShadowsEmitted.Add(float64(len(shadows)))
	metrics.ShadowsPruned.Add(float64(stats.ShadowsPruned))

	return shadows, nil
}

func (s *ShadowService) resolveBuffer(requested float64) (float64, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("bufferMeters must not be negative, got %v", requested)
	case requested == 0:
		return s.defaultBuffer, nil
	case requested > s.maxBuffer:
		return s.maxBuffer, nil
	default:
		return requested, nil
	}
}
