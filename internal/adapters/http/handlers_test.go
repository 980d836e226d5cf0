package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"

	handler "github.com/unaigarro/sombra/internal/adapters/http"
	"github.com/unaigarro/sombra/internal/core/domain"
	"github.com/unaigarro/sombra/internal/core/usecases"
)

// ---- Mock repositories ----

type mockBuildingRepo struct {
	findIntersectingFn func(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error)
	getByRefCatFn      func(ctx context.Context, refCat string) (*domain.CatastroBuilding, error)
	findContainingFn   func(ctx context.Context, x, y float64) ([]domain.CatastroBuilding, error)
	countFn            func(ctx context.Context) (int64, error)
}

func (m *mockBuildingRepo) Upsert(ctx context.Context, b *domain.CatastroBuilding) error { return nil }
func (m *mockBuildingRepo) UpsertBatch(ctx context.Context, b []domain.CatastroBuilding) error {
	return nil
}
func (m *mockBuildingRepo) GetByRefCat(ctx context.Context, refCat string) (*domain.CatastroBuilding, error) {
	if m.getByRefCatFn != nil {
		return m.getByRefCatFn(ctx, refCat)
	}
	return nil, nil
}
func (m *mockBuildingRepo) FindIntersecting(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error) {
	if m.findIntersectingFn != nil {
		return m.findIntersectingFn(ctx, bounds)
	}
	return nil, nil
}
func (m *mockBuildingRepo) FindContaining(ctx context.Context, x, y float64) ([]domain.CatastroBuilding, error) {
	if m.findContainingFn != nil {
		return m.findContainingFn(ctx, x, y)
	}
	return nil, nil
}
func (m *mockBuildingRepo) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockOverhangRepo struct {
	findIntersectingFn func(ctx context.Context, bounds domain.Bounds) ([]domain.Overhang, error)
	countFn            func(ctx context.Context) (int64, error)
}

func (m *mockOverhangRepo) Upsert(ctx context.Context, o *domain.Overhang) error        { return nil }
func (m *mockOverhangRepo) UpsertBatch(ctx context.Context, o []domain.Overhang) error  { return nil }
func (m *mockOverhangRepo) FindIntersecting(ctx context.Context, bounds domain.Bounds) ([]domain.Overhang, error) {
	if m.findIntersectingFn != nil {
		return m.findIntersectingFn(ctx, bounds)
	}
	return nil, nil
}
func (m *mockOverhangRepo) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	buildings := &mockBuildingRepo{}
	overhangs := &mockOverhangRepo{}
	d := &handler.Dependencies{
		Shadows:   usecases.NewShadowService(buildings, overhangs, nil, nil, nil, 100, 1000),
		Buildings: usecases.NewBuildingService(buildings, overhangs, nil),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// five-floor square block northeast of the observer
func testBuilding(refCat string, minX, minY float64) domain.CatastroBuilding {
	return domain.CatastroBuilding{
		ID:      refCat,
		GID:     1,
		RefCat:  refCat,
		Constru: "V",
		Footprint: orb.Polygon{orb.Ring{
			{minX, minY},
			{minX + 10, minY},
			{minX + 10, minY + 10},
			{minX, minY + 10},
			{minX, minY},
		}},
	}
}

// ---- Shadow handler tests ----

func TestCalculateShadows_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockBuildingRepo{
			findIntersectingFn: func(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error) {
				return []domain.CatastroBuilding{testBuilding("0001", 504995, 4789015)}, nil
			},
		}
		d.Shadows = usecases.NewShadowService(repo, &mockOverhangRepo{}, nil, nil, nil, 100, 1000)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/shadows?x=505000&y=4789000", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.ShadowCalculationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data) == 0 {
		t.Fatal("expected at least one shadow")
	}
	if result.Query.Buffer != 100 {
		t.Errorf("expected default buffer 100, got %v", result.Query.Buffer)
	}
	if result.Query.Bounds.BottomLeft.X != 504900 {
		t.Errorf("unexpected bounds %+v", result.Query.Bounds)
	}
	for _, s := range result.Data {
		if s.Points.UpLeft.Elevation < 0 || s.Points.UpLeft.Elevation > 90 {
			t.Errorf("elevation out of range: %v", s.Points.UpLeft.Elevation)
		}
	}
}

func TestCalculateShadows_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/shadows", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Status int    `json:"status"`
		Code   string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

func TestCalculateShadows_NegativeBuffer(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/shadows?x=505000&y=4789000&buffer=-50", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCalculateShadowsPost_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockBuildingRepo{
			findIntersectingFn: func(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error) {
				return []domain.CatastroBuilding{testBuilding("0001", 504995, 4789015)}, nil
			},
		}
		d.Shadows = usecases.NewShadowService(repo, &mockOverhangRepo{}, nil, nil, nil, 100, 1000)
	})
	app := setupApp(deps)

	body := `{"centerX":505000,"centerY":4789000,"centerZ":1.5,"bufferMeters":50}`
	req := httptest.NewRequest("POST", "/v1/shadows", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result domain.ShadowCalculationResponse
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Query.Buffer != 50 {
		t.Errorf("expected buffer 50, got %v", result.Query.Buffer)
	}
	if result.Query.Center.Z != 1.5 {
		t.Errorf("expected center z 1.5, got %v", result.Query.Center.Z)
	}
}

func TestCalculateShadowsPost_InvalidBody(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/shadows", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Building handler tests ----

func TestListBuildings_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockBuildingRepo{
			findIntersectingFn: func(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error) {
				return []domain.CatastroBuilding{
					testBuilding("0001", 504995, 4789015),
					testBuilding("0002", 505020, 4789015),
				}, nil
			},
		}
		d.Buildings = usecases.NewBuildingService(repo, &mockOverhangRepo{}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/buildings?bbox=504900,4788900,505100,4789100", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.CatastroBuilding `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 buildings, got %d", len(result.Data))
	}
}

func TestListBuildings_MissingBBox(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/buildings", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListBuildings_MalformedBBox(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/buildings?bbox=1,2,three,4", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListBuildings_Pagination(t *testing.T) {
	buildings := make([]domain.CatastroBuilding, 5)
	for i := range buildings {
		buildings[i] = testBuilding(fmt.Sprintf("%04d", i), 504900+float64(20*i), 4789015)
	}

	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockBuildingRepo{
			findIntersectingFn: func(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error) {
				return buildings, nil
			},
		}
		d.Buildings = usecases.NewBuildingService(repo, &mockOverhangRepo{}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/buildings?bbox=504900,4788900,505100,4789100&offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="first"`) || !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected pagination Link header, got %q", link)
	}

	var result struct {
		Data       []domain.CatastroBuilding `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 buildings in page, got %d", len(result.Data))
	}
	if result.Pagination.Offset != 2 {
		t.Errorf("expected offset 2, got %d", result.Pagination.Offset)
	}
}

func TestBuildingsAt_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockBuildingRepo{
			findContainingFn: func(ctx context.Context, x, y float64) ([]domain.CatastroBuilding, error) {
				return []domain.CatastroBuilding{testBuilding("0001", x-5, y-5)}, nil
			},
		}
		d.Buildings = usecases.NewBuildingService(repo, &mockOverhangRepo{}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/buildings/at?x=505000&y=4789000", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var buildings []domain.CatastroBuilding
	json.NewDecoder(resp.Body).Decode(&buildings)
	if len(buildings) != 1 {
		t.Errorf("expected 1 building, got %d", len(buildings))
	}
}

func TestGetBuilding_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockBuildingRepo{
			getByRefCatFn: func(ctx context.Context, refCat string) (*domain.CatastroBuilding, error) {
				b := testBuilding(refCat, 504995, 4789015)
				return &b, nil
			},
		}
		d.Buildings = usecases.NewBuildingService(repo, &mockOverhangRepo{}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/buildings/9872023VH5797S", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Building domain.CatastroBuilding `json:"building"`
		Floors   int                     `json:"floors"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Building.RefCat != "9872023VH5797S" {
		t.Errorf("unexpected refcat %s", result.Building.RefCat)
	}
	if result.Floors != 5 {
		t.Errorf("expected 5 floors for constru V, got %d", result.Floors)
	}
}

func TestGetBuilding_NotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockBuildingRepo{
			getByRefCatFn: func(ctx context.Context, refCat string) (*domain.CatastroBuilding, error) {
				return nil, fmt.Errorf("not found")
			},
		}
		d.Buildings = usecases.NewBuildingService(repo, &mockOverhangRepo{}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/buildings/nonexistent", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- Overhang handler tests ----

func TestListOverhangs_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockOverhangRepo{
			findIntersectingFn: func(ctx context.Context, bounds domain.Bounds) ([]domain.Overhang, error) {
				return []domain.Overhang{
					{ID: "o1", GID: 7, Kind: "canopy"},
				}, nil
			},
		}
		d.Buildings = usecases.NewBuildingService(&mockBuildingRepo{}, repo, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/overhangs?bbox=504900,4788900,505100,4789100", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var overhangs []domain.Overhang
	json.NewDecoder(resp.Body).Decode(&overhangs)
	if len(overhangs) != 1 || overhangs[0].Kind != "canopy" {
		t.Errorf("unexpected overhangs %+v", overhangs)
	}
}

// ---- Status handler tests ----

func TestCatastroStatus_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		buildings := &mockBuildingRepo{
			countFn: func(ctx context.Context) (int64, error) { return 12345, nil },
		}
		overhangs := &mockOverhangRepo{
			countFn: func(ctx context.Context) (int64, error) { return 678, nil },
		}
		d.Buildings = usecases.NewBuildingService(buildings, overhangs, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/catastro/status", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var status struct {
		Buildings int64 `json:"buildings"`
		Overhangs int64 `json:"overhangs"`
		SRID      int   `json:"srid"`
	}
	json.NewDecoder(resp.Body).Decode(&status)
	if status.Buildings != 12345 || status.Overhangs != 678 {
		t.Errorf("unexpected counts %+v", status)
	}
	if status.SRID != 25830 {
		t.Errorf("expected srid 25830, got %d", status.SRID)
	}
}

// ---- GraphQL tests ----

func TestGraphQL_Shadows(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockBuildingRepo{
			findIntersectingFn: func(ctx context.Context, bounds domain.Bounds) ([]domain.CatastroBuilding, error) {
				return []domain.CatastroBuilding{testBuilding("0001", 504995, 4789015)}, nil
			},
		}
		d.Shadows = usecases.NewShadowService(repo, &mockOverhangRepo{}, nil, nil, nil, 100, 1000)
	})
	app := setupApp(deps)

	query := `{"query":"{ shadows(x: 505000, y: 4789000) { message data { cadastralNumber points { upLeft { azimuth elevation } } } query { buffer } } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(query))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Shadows struct {
				Message string `json:"message"`
				Data    []struct {
					CadastralNumber string `json:"cadastralNumber"`
				} `json:"data"`
				Query struct {
					Buffer float64 `json:"buffer"`
				} `json:"query"`
			} `json:"shadows"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if len(result.Data.Shadows.Data) == 0 {
		t.Fatal("expected shadows in graphql response")
	}
	if result.Data.Shadows.Query.Buffer != 100 {
		t.Errorf("expected buffer 100, got %v", result.Data.Shadows.Query.Buffer)
	}
}

func TestGraphQL_Building(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		repo := &mockBuildingRepo{
			getByRefCatFn: func(ctx context.Context, refCat string) (*domain.CatastroBuilding, error) {
				b := testBuilding(refCat, 504995, 4789015)
				return &b, nil
			},
		}
		d.Buildings = usecases.NewBuildingService(repo, &mockOverhangRepo{}, nil)
	})
	app := setupApp(deps)

	query := `{"query":"{ building(refcat: \"9872023VH5797S\") { refcat constru floors } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(query))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Building struct {
				RefCat  string `json:"refcat"`
				Constru string `json:"constru"`
				Floors  int    `json:"floors"`
			} `json:"building"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if result.Data.Building.Floors != 5 {
		t.Errorf("expected 5 floors, got %d", result.Data.Building.Floors)
	}
}

// ---- X-API-Version header ----

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	v := resp.Header.Get("X-API-Version")
	if v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

// TestAccessLogMiddleware verifies structured access logging is emitted.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()

	app.Use(handler.AccessLogMiddleware())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "test-req-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", string(body))
	}
}
