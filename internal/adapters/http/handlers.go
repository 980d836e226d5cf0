package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/unaigarro/sombra/internal/core/domain"
)

// CalculateShadowsHandler runs a shadow analysis for a query-string request.
// GET /v1/shadows?x=505000&y=4789000&z=1.5&buffer=100
func CalculateShadowsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		x := c.QueryFloat("x", 0)
		y := c.QueryFloat("y", 0)
		if c.Query("x") == "" || c.Query("y") == "" {
			return errBadRequest(c, "x and y are required (UTM meters, EPSG:25830)")
		}

		req := domain.ShadowCalculationRequest{
			CenterX:      x,
			CenterY:      y,
			CenterZ:      c.QueryFloat("z", 0),
			BufferMeters: c.QueryFloat("buffer", 0),
		}

		resp, err := deps.Shadows.Calculate(c.Context(), req)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(resp)
	}
}

// CalculateShadowsBodyHandler runs a shadow analysis for a JSON body request.
// POST /v1/shadows {"centerX":..., "centerY":..., "centerZ":..., "bufferMeters":...}
func CalculateShadowsBodyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.ShadowCalculationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}
		if req.CenterX == 0 && req.CenterY == 0 {
			return errBadRequest(c, "centerX and centerY are required (UTM meters, EPSG:25830)")
		}

		resp, err := deps.Shadows.Calculate(c.Context(), req)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(resp)
	}
}

// parseBBox parses "minx,miny,maxx,maxy" into bounds.
func parseBBox(raw string) (domain.Bounds, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return domain.Bounds{}, false
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.Bounds{}, false
		}
		vals[i] = v
	}
	return domain.Bounds{
		BottomLeft: domain.XY{X: vals[0], Y: vals[1]},
		TopRight:   domain.XY{X: vals[2], Y: vals[3]},
	}, true
}

// ListBuildingsHandler returns buildings intersecting a bounding box.
// GET /v1/buildings?bbox=minx,miny,maxx,maxy
func ListBuildingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("bbox")
		if raw == "" {
			return errBadRequest(c, "bbox query parameter is required (minx,miny,maxx,maxy)")
		}
		bounds, ok := parseBBox(raw)
		if !ok {
			return errBadRequest(c, "bbox must be four comma-separated numbers")
		}

		buildings, err := deps.Buildings.FindInBounds(c.Context(), bounds)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		// Apply offset/limit pagination on the full list
		offset, limit := parsePagination(c)

		total := len(buildings)
		if offset >= total {
			buildings = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			buildings = buildings[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: buildings, Pagination: pg})
	}
}

// BuildingsAtHandler returns the buildings whose footprint contains a point.
// GET /v1/buildings/at?x=...&y=...
func BuildingsAtHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("x") == "" || c.Query("y") == "" {
			return errBadRequest(c, "x and y are required")
		}
		buildings, err := deps.Buildings.FindContaining(c.Context(), c.QueryFloat("x", 0), c.QueryFloat("y", 0))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(buildings)
	}
}

// GetBuildingHandler returns a single building by cadastral reference,
// enriched with the parsed floor count and derived height.
func GetBuildingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refCat := c.Params("refcat")
		if refCat == "" {
			return errBadRequest(c, "cadastral reference is required")
		}
		b, err := deps.Buildings.GetByRefCat(c.Context(), refCat)
		if err != nil {
			return errNotFound(c, "building not found")
		}

		floors := deps.Buildings.FloorCount(b)
		return c.JSON(fiber.Map{
			"building": b,
			"floors":   floors,
		})
	}
}

// ListOverhangsHandler returns overhangs intersecting a bounding box.
// GET /v1/overhangs?bbox=minx,miny,maxx,maxy
func ListOverhangsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("bbox")
		if raw == "" {
			return errBadRequest(c, "bbox query parameter is required (minx,miny,maxx,maxy)")
		}
		bounds, ok := parseBBox(raw)
		if !ok {
			return errBadRequest(c, "bbox must be four comma-separated numbers")
		}

		overhangs, err := deps.Buildings.FindOverhangsInBounds(c.Context(), bounds)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(overhangs)
	}
}

// CatastroStatusHandler returns dataset row counts.
// GET /v1/catastro/status
func CatastroStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		buildings, overhangs, err := deps.Buildings.Status(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(fiber.Map{
			"buildings": buildings,
			"overhangs": overhangs,
			"srid":      25830,
		})
	}
}
