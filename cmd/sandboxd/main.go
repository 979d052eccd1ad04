// Command sandboxd runs the purchase-simulation worker daemon: it wires the
// configured queue, artifact repository, and trust policy together and
// drains simulation jobs until terminated.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/agentboxes/ap2-sandbox/pkg/artifacts"
	"github.com/agentboxes/ap2-sandbox/pkg/config"
	"github.com/agentboxes/ap2-sandbox/pkg/connector"
	"github.com/agentboxes/ap2-sandbox/pkg/jobs"
	"github.com/agentboxes/ap2-sandbox/pkg/metrics"
	"github.com/agentboxes/ap2-sandbox/pkg/observability"
	"github.com/agentboxes/ap2-sandbox/pkg/queue"
	"github.com/agentboxes/ap2-sandbox/pkg/store"
	"github.com/agentboxes/ap2-sandbox/pkg/trust"
)

func main() {
	demo := flag.Bool("demo", false, "enqueue a demo simulation on startup")
	flag.Parse()

	if err := run(*demo); err != nil {
		slog.Error("sandboxd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(demo bool) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(ctx, &observability.Config{
		ServiceName:    "ap2-sandbox",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		OTLPEndpoint:   cfg.OTLPEndpoint,
		ExportInterval: 15 * time.Second,
		Enabled:        cfg.MetricsEnabled,
		Insecure:       true,
	})
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector, err = metrics.NewCollectorWithMeter(obs.Meter())
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
	} else {
		collector = metrics.NewCollector()
	}

	repository, err := artifacts.New(ctx, artifacts.Config{
		Backend:  cfg.ArtifactRepository,
		Root:     cfg.ArtifactRoot,
		Bucket:   cfg.ArtifactBucket,
		Prefix:   cfg.ArtifactPrefix,
		Endpoint: cfg.ArtifactEndpoint,
		Region:   cfg.ArtifactRegion,
	})
	if err != nil {
		return fmt.Errorf("init artifact repository: %w", err)
	}

	trustProvider, err := trust.New(cfg.TrustProvider)
	if err != nil {
		return fmt.Errorf("init trust provider: %w", err)
	}

	recordStore := store.NewSimulationStore()
	processor := jobs.NewProcessor(recordStore, repository, trustProvider, connector.NewCardSimulator(), collector)

	backend, err := queue.New(cfg.QueueBackend, queue.Deps{
		Processor:   processor,
		Metrics:     collector,
		Concurrency: cfg.WorkerConcurrency,
	}, queue.RedisConfig{
		URL:        cfg.RedisURL,
		QueueName:  cfg.QueueName,
		PopTimeout: time.Duration(cfg.PopTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("init queue backend: %w", err)
	}

	if err := backend.Start(ctx); err != nil {
		return fmt.Errorf("start queue backend: %w", err)
	}

	slog.Info("sandboxd running",
		"queue", cfg.QueueBackend,
		"repository", cfg.ArtifactRepository,
		"trust", cfg.TrustProvider,
		"workers", cfg.WorkerConcurrency,
	)

	if demo {
		if err := enqueueDemo(ctx, recordStore, backend); err != nil {
			slog.Warn("demo simulation not enqueued", "error", err)
		}
	}

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := backend.Stop(shutdownCtx); err != nil {
		slog.Error("queue stop failed", "error", err)
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		slog.Error("observability shutdown failed", "error", err)
	}

	snapshot, _ := json.Marshal(collector.Snapshot())
	slog.Info("final metrics", "snapshot", string(snapshot))
	return nil
}

// enqueueDemo creates one record and runs it through the pipeline, giving a
// ready smoke test for a freshly configured backend chain.
func enqueueDemo(ctx context.Context, recordStore *store.SimulationStore, backend queue.Backend) error {
	payload := map[string]any{
		"cart": map[string]any{
			"items": []any{
				map[string]any{"sku": "demo-sku", "quantity": 2, "unitPrice": "10.00"},
			},
			"currency": "USD",
		},
		"context":        map[string]any{"description": "Demo checkout"},
		"payment_method": map[string]any{},
	}

	record := recordStore.Create(uuid.New(), payload)
	if err := backend.Enqueue(ctx, jobs.SimulationJob{SimulationID: record.ID, Payload: payload}); err != nil {
		return err
	}
	slog.Info("demo simulation enqueued", "simulation_id", record.ID)
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
