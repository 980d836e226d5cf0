package ports

import (
	"context"

	"github.com/unaigarro/sombra/internal/core/domain"
)

// BuildingRepository persists cadastral building footprints.
type BuildingRepository interface {
	Upsert(ctx context.Context, b *domain.CatastroBuilding) error
	UpsertBatch(ctx context.Context, buildings []domain.CatastroBuilding) error
	GetByRefCat(ctx context.Context, refCat string) (*domain.CatastroBuilding, error)
	// FindIntersecting returns every building whose footprint intersects the
	// given UTM bounding box.
	FindIntersecting(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error)
	// FindContaining returns the buildings whose footprint contains the point.
	FindContaining(ctx context.Context, x, y float64) ([]domain.CatastroBuilding, error)
	Count(ctx context.Context) (int64, error)
}

// OverhangRepository persists overhang footprints (balconies, canopies,
// bridges) that block light regardless of who owns them.
type OverhangRepository interface {
	Upsert(ctx context.Context, o *domain.Overhang) error
	UpsertBatch(ctx context.Context, overhangs []domain.Overhang) error
	FindIntersecting(ctx context.Context, bounds domain.Bounds) ([]domain.Overhang, error)
	Count(ctx context.Context) (int64, error)
}
