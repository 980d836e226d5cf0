package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unaigarro/sombra/internal/core/domain"
	"github.com/unaigarro/sombra/internal/core/ports"
	"github.com/unaigarro/sombra/internal/core/shadow"
)

// BuildingService handles building and overhang lookups.
type BuildingService struct {
	buildings ports.BuildingRepository
	overhangs ports.OverhangRepository
	cache     ports.CacheService
}

// NewBuildingService creates a new BuildingService.
func NewBuildingService(buildings ports.BuildingRepository, overhangs ports.OverhangRepository, cache ports.CacheService) *BuildingService {
	return &BuildingService{buildings: buildings, overhangs: overhangs, cache: cache}
}

// GetByRefCat returns a single building by cadastral reference.
func (s *BuildingService) GetByRefCat(ctx context.Context, refCat string) (*domain.CatastroBuilding, error) {
	if refCat == "" {
		return nil, fmt.Errorf("cadastral reference must not be empty")
	}

	cacheKey := "buildings:refcat:" + refCat
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var b domain.CatastroBuilding
			if err := json.Unmarshal(data, &b); err == nil {
				return &b, nil
			}
		}
	}

	b, err := s.buildings.GetByRefCat(ctx, refCat)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(b); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return b, nil
}

// FindInBounds returns the buildings intersecting a bounding box.
func (s *BuildingService) FindInBounds(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error) {
	if bounds.BottomLeft.X >= bounds.TopRight.X || bounds.BottomLeft.Y >= bounds.TopRight.Y {
		return nil, fmt.Errorf("bounds must have positive extent")
	}
	return s.buildings.FindIntersecting(ctx, bounds)
}

// FindContaining returns the buildings whose footprint contains (x, y).
func (s *BuildingService) FindContaining(ctx context.Context, x, y float64) ([]domain.CatastroBuilding, error) {
	return s.buildings.FindContaining(ctx, x, y)
}

// FindOverhangsInBounds returns the overhangs intersecting a bounding box.
func (s *BuildingService) FindOverhangsInBounds(ctx context.Context, bounds domain.Bounds) ([]domain.Overhang, error) {
	if bounds.BottomLeft.X >= bounds.TopRight.X || bounds.BottomLeft.Y >= bounds.TopRight.Y {
		return nil, fmt.Errorf("bounds must have positive extent")
	}
	return s.overhangs.FindIntersecting(ctx, bounds)
}

// FloorCount exposes the Roman-numeral floor parse for a building, mainly
// for the status and debug endpoints.
func (s *BuildingService) FloorCount(b *domain.CatastroBuilding) int {
	return shadow.ParseFloorCount(b.Constru)
}

// Status reports dataset counts for the catastro status endpoint.
func (s *BuildingService) Status(ctx context.Context) (buildings, overhangs int64, err error) {
	buildings, err = s.buildings.Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("count buildings: %w", err)
	}
	overhangs, err = s.overhangs.Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("count overhangs: %w", err)
	}
	return buildings, overhangs, nil
}
