package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/unaigarro/sombra/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	shadowPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ShadowPoint",
		Fields: graphql.Fields{
			"azimuth":   &graphql.Field{Type: graphql.Float},
			"elevation": &graphql.Field{Type: graphql.Float},
		},
	})

	shadowCornersType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ShadowCorners",
		Fields: graphql.Fields{
			"downLeft":  &graphql.Field{Type: shadowPointType},
			"upLeft":    &graphql.Field{Type: shadowPointType},
			"upRight":   &graphql.Field{Type: shadowPointType},
			"downRight": &graphql.Field{Type: shadowPointType},
		},
	})

	shadowType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Shadow",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"gid":             &graphql.Field{Type: graphql.Int},
			"cadastralNumber": &graphql.Field{Type: graphql.String},
			"points":          &graphql.Field{Type: shadowCornersType},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
			"z": &graphql.Field{Type: graphql.Float},
		},
	})

	xyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "XY",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"bottom_left": &graphql.Field{Type: xyType},
			"top_right":   &graphql.Field{Type: xyType},
		},
	})

	queryEchoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ShadowQuery",
		Fields: graphql.Fields{
			"center": &graphql.Field{Type: pointType},
			"buffer": &graphql.Field{Type: graphql.Float},
			"bounds": &graphql.Field{Type: boundsType},
		},
	})

	analysisType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ShadowAnalysis",
		Fields: graphql.Fields{
			"message": &graphql.Field{Type: graphql.String},
			"data":    &graphql.Field{Type: graphql.NewList(shadowType)},
			"query":   &graphql.Field{Type: queryEchoType},
		},
	})

	buildingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Building",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String},
			"gid":     &graphql.Field{Type: graphql.Int},
			"refcat":  &graphql.Field{Type: graphql.String},
			"constru": &graphql.Field{Type: graphql.String},
			"floors": &graphql.Field{
				Type:        graphql.Int,
				Description: "Floor count parsed from the Roman numerals in constru",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					b, ok := p.Source.(domain.CatastroBuilding)
					if !ok {
						if pb, ok := p.Source.(*domain.CatastroBuilding); ok {
							return deps.Buildings.FloorCount(pb), nil
						}
						return nil, nil
					}
					return deps.Buildings.FloorCount(&b), nil
				},
			},
		},
	})

	overhangType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Overhang",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"gid":    &graphql.Field{Type: graphql.Int},
			"refcat": &graphql.Field{Type: graphql.String},
			"kind":   &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"shadows": &graphql.Field{
				Type:        analysisType,
				Description: "Compute the sky-occluding shadows around an observer point",
				Args: graphql.FieldConfigArgument{
					"x":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"y":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"z":      &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"buffer": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req := domain.ShadowCalculationRequest{
						CenterX:      p.Args["x"].(float64),
						CenterY:      p.Args["y"].(float64),
						CenterZ:      p.Args["z"].(float64),
						BufferMeters: p.Args["buffer"].(float64),
					}
					return deps.Shadows.Calculate(p.Context, req)
				},
			},
			"building": &graphql.Field{
				Type:        buildingType,
				Description: "Get a building by cadastral reference",
				Args: graphql.FieldConfigArgument{
					"refcat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Buildings.GetByRefCat(p.Context, p.Args["refcat"].(string))
				},
			},
			"buildingsInBounds": &graphql.Field{
				Type:        graphql.NewList(buildingType),
				Description: "List buildings intersecting a bounding box",
				Args: graphql.FieldConfigArgument{
					"minX": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"minY": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"maxX": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"maxY": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					bounds := domain.Bounds{
						BottomLeft: domain.XY{X: p.Args["minX"].(float64), Y: p.Args["minY"].(float64)},
						TopRight:   domain.XY{X: p.Args["maxX"].(float64), Y: p.Args["maxY"].(float64)},
					}
					return deps.Buildings.FindInBounds(p.Context, bounds)
				},
			},
			"overhangsInBounds": &graphql.Field{
				Type:        graphql.NewList(overhangType),
				Description: "List overhangs intersecting a bounding box",
				Args: graphql.FieldConfigArgument{
					"minX": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"minY": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"maxX": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"maxY": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					bounds := domain.Bounds{
						BottomLeft: domain.XY{X: p.Args["minX"].(float64), Y: p.Args["minY"].(float64)},
						TopRight:   domain.XY{X: p.Args["maxX"].(float64), Y: p.Args["maxY"].(float64)},
					}
					return deps.Buildings.FindOverhangsInBounds(p.Context, bounds)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
