package main

import (
	"context"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/unaigarro/sombra/internal/adapters/nats"
	"github.com/unaigarro/sombra/internal/adapters/postgres"
	"github.com/unaigarro/sombra/internal/core/shadow"
	"github.com/unaigarro/sombra/internal/core/usecases"
	"github.com/unaigarro/sombra/internal/pkg/config"
	"github.com/unaigarro/sombra/internal/pkg/logging"
	"github.com/unaigarro/sombra/internal/workflows"
)

func main() {
	cfg, err := config.Load("sombra-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	buildingRepo := postgres.NewBuildingRepo(db)
	overhangRepo := postgres.NewOverhangRepo(db)

	engine := shadow.New(cfg.Shadow.FloorHeightM, cfg.Shadow.OverhangHeightM)
	// Grid sweeps bypass cache and event stream; pass nil for both.
	shadowSvc := usecases.NewShadowService(buildingRepo, overhangRepo, nil, nil,
		engine, cfg.Shadow.DefaultBufferM, cfg.Shadow.MaxBufferM)
	buildingSvc := usecases.NewBuildingService(buildingRepo, overhangRepo, nil)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, "solar-report-queue", worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.SolarReportWorkflow)
	w.RegisterActivity(&workflows.ReportActivities{
		Shadows:      shadowSvc,
		Buildings:    buildingSvc,
		Publisher:    publisher,
		GridStep:     cfg.Shadow.GridStepM,
		SampleHeight: 0,
		Buffer:       cfg.Shadow.DefaultBufferM,
	})

	log.Println("solar report worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
