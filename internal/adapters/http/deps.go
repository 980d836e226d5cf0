package http

import (
	"github.com/nats-io/nats.go"

	"github.com/unaigarro/sombra/internal/adapters/postgres"
	"github.com/unaigarro/sombra/internal/adapters/valkey"
	"github.com/unaigarro/sombra/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Shadows   *usecases.ShadowService
	Buildings *usecases.BuildingService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
