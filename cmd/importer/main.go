package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/unaigarro/sombra/internal/adapters/postgres"
	"github.com/unaigarro/sombra/internal/core/domain"
	"github.com/unaigarro/sombra/internal/pkg/config"
	"github.com/unaigarro/sombra/internal/pkg/metrics"
)

const batchSize = 500

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	if len(os.Args) < 3 {
		log.Fatalf("usage: importer <buildings|overhangs> <file.geojson> [file.geojson ...]")
	}
	kind := os.Args[1]
	if kind != "buildings" && kind != "overhangs" {
		log.Fatalf("unknown kind %q: want buildings or overhangs", kind)
	}

	cfg, err := config.Load("sombra-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	files := os.Args[2:]
	log.Printf("Sombra Catastro importer — %d %s file(s)", len(files), kind)

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 concurrent files

	for _, path := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := importFile(ctx, db, kind, path); err != nil {
				log.Printf("ERROR [%s]: %v", filepath.Base(path), err)
			}
		}(path)
	}

	wg.Wait()
	log.Println("import complete")
}

// ---------------------------------------------------------------------------
// Per-file import
// ---------------------------------------------------------------------------

func importFile(ctx context.Context, db *postgres.DB, kind, path string) error {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("parse geojson: %w", err)
	}
	log.Printf("[%s] %d features", name, len(fc.Features))

	switch kind {
	case "buildings":
		return importBuildings(ctx, db, name, fc)
	case "overhangs":
		return importOverhangs(ctx, db, name, fc)
	}
	return fmt.Errorf("unknown kind %q", kind)
}

func importBuildings(ctx context.Context, db *postgres.DB, name string, fc *geojson.FeatureCollection) error {
	repo := postgres.NewBuildingRepo(db)

	var (
		batch    []domain.CatastroBuilding
		imported int
		skipped  int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := repo.UpsertBatch(ctx, batch); err != nil {
			return err
		}
		imported += len(batch)
		metrics.ImportedFeatures.WithLabelValues("buildings").Add(float64(len(batch)))
		batch = batch[:0]
		return nil
	}

	for _, f := range fc.Features {
		refCat := propString(f, "REFCAT", "refcat", "REFERENCE")
		if refCat == "" {
			skipped++
			continue
		}
		for _, poly := range polygons(f.Geometry) {
			batch = append(batch, domain.CatastroBuilding{
				GID:       propInt(f, "gid", "GID", "OBJECTID"),
				RefCat:    refCat,
				Constru:   propString(f, "CONSTRU", "constru"),
				Footprint: poly,
			})
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	log.Printf("[%s] imported %d buildings, skipped %d without refcat", name, imported, skipped)
	return nil
}

func importOverhangs(ctx context.Context, db *postgres.DB, name string, fc *geojson.FeatureCollection) error {
	repo := postgres.NewOverhangRepo(db)

	var (
		batch    []domain.Overhang
		imported int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := repo.UpsertBatch(ctx, batch); err != nil {
			return err
		}
		imported += len(batch)
		metrics.ImportedFeatures.WithLabelValues("overhangs").Add(float64(len(batch)))
		batch = batch[:0]
		return nil
	}

	for _, f := range fc.Features {
		kind := propString(f, "KIND", "kind", "TIPO")
		if kind == "" {
			kind = "canopy"
		}
		for _, poly := range polygons(f.Geometry) {
			batch = append(batch, domain.Overhang{
				GID:       propInt(f, "gid", "GID", "OBJECTID"),
				RefCat:    propString(f, "REFCAT", "refcat"),
				Kind:      kind,
				Footprint: poly,
			})
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	log.Printf("[%s] imported %d overhangs", name, imported)
	return nil
}

// ---------------------------------------------------------------------------
// Feature helpers
// ---------------------------------------------------------------------------

// polygons flattens a feature geometry into polygons. MultiPolygons are
// split so each ring set becomes its own record.
func polygons(g orb.Geometry) []orb.Polygon {
	switch geom := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{geom}
	case orb.MultiPolygon:
		return []orb.Polygon(geom)
	default:
		return nil
	}
}

func propString(f *geojson.Feature, keys ...string) string {
	for _, k := range keys {
		if v, ok := f.Properties[k]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func propInt(f *geojson.Feature, keys ...string) int64 {
	for _, k := range keys {
		v, ok := f.Properties[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n)
		case string:
			if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
				return i
			}
		}
	}
	return 0
}
