package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/unaigarro/sombra/internal/core/domain"
)

// BuildingRepo implements ports.BuildingRepository with pgx. Footprints are
// stored as PostGIS geometry in EPSG:25830 and travel as WKB.
type BuildingRepo struct {
	db *DB
}

// NewBuildingRepo creates a new BuildingRepo.
func NewBuildingRepo(db *DB) *BuildingRepo {
	return &BuildingRepo{db: db}
}

// Upsert inserts or updates a single building keyed by cadastral reference.
func (r *BuildingRepo) Upsert(ctx context.Context, b *domain.CatastroBuilding) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO buildings (gid, refcat, constru, footprint)
		VALUES ($1, $2, $3, ST_GeomFromWKB($4, 25830))
		ON CONFLICT (refcat) DO UPDATE
		SET gid = EXCLUDED.gid, constru = EXCLUDED.constru,
		    footprint = EXCLUDED.footprint
	`, b.GID, b.RefCat, b.Constru, wkb.Value(b.Footprint))
	return err
}

// UpsertBatch inserts many buildings using pgx.Batch.
func (r *BuildingRepo) UpsertBatch(ctx context.Context, buildings []domain.CatastroBuilding) error {
	batch := &pgx.Batch{}
	for _, b := range buildings {
		batch.Queue(`
			INSERT INTO buildings (gid, refcat, constru, footprint)
			VALUES ($1, $2, $3, ST_GeomFromWKB($4, 25830))
			ON CONFLICT (refcat) DO UPDATE
			SET gid = EXCLUDED.gid, constru = EXCLUDED.constru,
			    footprint = EXCLUDED.footprint
		`, b.GID, b.RefCat, b.Constru, wkb.Value(b.Footprint))
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range buildings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByRefCat returns a building by cadastral reference.
func (r *BuildingRepo) GetByRefCat(ctx context.Context, refCat string) (*domain.CatastroBuilding, error) {
	var b domain.CatastroBuilding
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, gid, refcat, COALESCE(constru, ''),
		       ST_AsBinary(footprint), created_at
		FROM buildings WHERE refcat = $1
	`, refCat).Scan(
		&b.ID, &b.GID, &b.RefCat, &b.Constru,
		wkb.Scanner(&b.Footprint), &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindIntersecting returns the buildings whose footprint intersects the
// given UTM bounding box. The && operator keeps the GIST index in play.
func (r *BuildingRepo) FindIntersecting(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, gid, refcat, COALESCE(constru, ''),
		       ST_AsBinary(footprint), created_at
		FROM buildings
		WHERE footprint && ST_MakeEnvelope($1, $2, $3, $4, 25830)
		ORDER BY gid
	`, bounds.BottomLeft.X, bounds.BottomLeft.Y, bounds.TopRight.X, bounds.TopRight.Y)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuildings(rows)
}

// FindContaining returns the buildings whose footprint contains the point.
func (r *BuildingRepo) FindContaining(ctx context.Context, x, y float64) ([]domain.CatastroBuilding, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, gid, refcat, COALESCE(constru, ''),
		       ST_AsBinary(footprint), created_at
		FROM buildings
		WHERE ST_Contains(footprint, ST_SetSRID(ST_MakePoint($1, $2), 25830))
		ORDER BY gid
	`, x, y)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuildings(rows)
}

// Count returns the number of stored buildings.
func (r *BuildingRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM buildings`).Scan(&n)
	return n, err
}

func scanBuildings(rows pgx.Rows) ([]domain.CatastroBuilding, error) {
	var buildings []domain.CatastroBuilding
	for rows.Next() {
		var b domain.CatastroBuilding
		if err := rows.Scan(
			&b.ID, &b.GID, &b.RefCat, &b.Constru,
			wkb.Scanner(&b.Footprint), &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}
