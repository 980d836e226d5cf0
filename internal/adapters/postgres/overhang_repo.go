package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/unaigarro/sombra/internal/core/domain"
)

// OverhangRepo implements ports.OverhangRepository with pgx.
type OverhangRepo struct {
	db *DB
}

// NewOverhangRepo creates a new OverhangRepo.
func NewOverhangRepo(db *DB) *OverhangRepo {
	return &OverhangRepo{db: db}
}

// Upsert inserts or updates a single overhang keyed by source gid.
func (r *OverhangRepo) Upsert(ctx context.Context, o *domain.Overhang) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO overhangs (gid, refcat, kind, footprint)
		VALUES ($1, $2, $3, ST_GeomFromWKB($4, 25830))
		ON CONFLICT (gid) DO UPDATE
		SET refcat = EXCLUDED.refcat, kind = EXCLUDED.kind,
		    footprint = EXCLUDED.footprint
	`, o.GID, o.RefCat, o.Kind, wkb.Value(o.Footprint))
	return err
}

// UpsertBatch inserts many overhangs using pgx.Batch.
func (r *OverhangRepo) UpsertBatch(ctx context.Context, overhangs []domain.Overhang) error {
	batch := &pgx.Batch{}
	for _, o := range overhangs {
		batch.Queue(`
			INSERT INTO overhangs (gid, refcat, kind, footprint)
			VALUES ($1, $2, $3, ST_GeomFromWKB($4, 25830))
			ON CONFLICT (gid) DO UPDATE
			SET refcat = EXCLUDED.refcat, kind = EXCLUDED.kind,
			    footprint = EXCLUDED.footprint
		`, o.GID, o.RefCat, o.Kind, wkb.Value(o.Footprint))
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range overhangs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// FindIntersecting returns the overhangs whose footprint intersects the
// given UTM bounding box.
func (r *OverhangRepo) FindIntersecting(ctx context.Context, bounds domain.Bounds) ([]domain.Overhang, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, gid, COALESCE(refcat, ''), COALESCE(kind, ''),
		       ST_AsBinary(footprint), created_at
		FROM overhangs
		WHERE footprint && ST_MakeEnvelope($1, $2, $3, $4, 25830)
		ORDER BY gid
	`, bounds.BottomLeft.X, bounds.BottomLeft.Y, bounds.TopRight.X, bounds.TopRight.Y)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overhangs []domain.Overhang
	for rows.Next() {
		var o domain.Overhang
		if err := rows.Scan(
			&o.ID, &o.GID, &o.RefCat, &o.Kind,
			wkb.Scanner(&o.Footprint), &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		overhangs = append(overhangs, o)
	}
	return overhangs, rows.Err()
}

// Count returns the number of stored overhangs.
func (r *OverhangRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM overhangs`).Scan(&n)
	return n, err
}
