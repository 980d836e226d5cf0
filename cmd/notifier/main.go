package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	natsadapter "github.com/unaigarro/sombra/internal/adapters/nats"
	"github.com/unaigarro/sombra/internal/adapters/valkey"
	"github.com/unaigarro/sombra/internal/core/domain"
	"github.com/unaigarro/sombra/internal/pkg/config"
	"github.com/unaigarro/sombra/internal/pkg/logging"
)

// broadcastFrame is what WebSocket clients on the broadcast channel receive
// for each completed analysis.
type broadcastFrame struct {
	Type        string         `json:"type"`
	ID          string         `json:"id"`
	Center      domain.Point3D `json:"center"`
	ShadowCount int            `json:"shadow_count"`
	DurationMS  int64          `json:"duration_ms"`
	ComputedAt  time.Time      `json:"computed_at"`
}

func main() {
	cfg, err := config.Load("sombra-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	err = sub.SubscribeAnalyses(ctx, func(ctx context.Context, event *domain.AnalysisEvent) error {
		slog.Info("analysis completed",
			"id", event.ID,
			"x", event.Center.X,
			"y", event.Center.Y,
			"shadows", event.ShadowCount,
			"duration_ms", event.DurationMS,
		)

		bumpDailyCounter(ctx, cache, event.ComputedAt)

		frame, err := json.Marshal(broadcastFrame{
			Type:        "analysis",
			ID:          event.ID,
			Center:      event.Center,
			ShadowCount: event.ShadowCount,
			DurationMS:  event.DurationMS,
			ComputedAt:  event.ComputedAt,
		})
		if err != nil {
			return err
		}
		return pub.PublishBroadcast(ctx, frame)
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("notifier started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("notifier stopping")
}

// bumpDailyCounter keeps a per-day analysis counter in the cache. The
// read-modify-write is not atomic, so concurrent notifiers can drop counts.
func bumpDailyCounter(ctx context.Context, cache *valkey.Cache, at time.Time) {
	key := "stats:analyses:" + at.UTC().Format("2006-01-02")
	n := int64(0)
	if data, err := cache.Get(ctx, key); err == nil {
		n, _ = strconv.ParseInt(string(data), 10, 64)
	}
	_ = cache.Set(ctx, key, []byte(strconv.FormatInt(n+1, 10)), 48*3600)
}
