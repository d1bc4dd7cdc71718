// Command ingest consumes complaints from NATS and runs them through the
// ingestion pipeline into Neo4j and Qdrant.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/RelioAI/relio-mvp/engine/artifact"
	"github.com/RelioAI/relio-mvp/engine/graph"
	"github.com/RelioAI/relio-mvp/engine/ingest"
	"github.com/RelioAI/relio-mvp/engine/semantic"
	"github.com/RelioAI/relio-mvp/pkg/fn"
	"github.com/RelioAI/relio-mvp/pkg/metrics"
	"github.com/RelioAI/relio-mvp/pkg/resilience"
)

var met = metrics.New()

// Config holds all environment-based configuration.
type Config struct {
	NATSURL      string
	ArtifactPath string
	Neo4jURL     string
	Neo4jUser    string
	Neo4jPass    string
	QdrantURL    string
	Collection   string
	MetricsPort  int
}

func loadConfig() Config {
	return Config{
		NATSURL:      envOr("NATS_URL", nats.DefaultURL),
		ArtifactPath: envOr("ARTIFACT_PATH", "artifacts/reliability.bin"),
		Neo4jURL:     envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		QdrantURL:    envOr("QDRANT_URL", "localhost:6334"),
		Collection:   envOr("QDRANT_COLLECTION", "complaints"),
		MetricsPort:  9091,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil {
		logger.Error("ingest worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The fitted preprocessor doubles as the complaint vectorizer, so ingest
	// requires a trained artifact.
	pipeline, err := artifact.Load(cfg.ArtifactPath)
	if err != nil {
		return fmt.Errorf("load artifact %s: %w", cfg.ArtifactPath, err)
	}

	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer neo4jDriver.Close(ctx)

	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	// Qdrant may still be starting alongside the worker.
	dims := len(pipeline.State.TextVector(""))
	ensure := fn.Retry(ctx, fn.DefaultRetry, func(ctx context.Context) fn.Result[struct{}] {
		return fn.FromPair(struct{}{}, vectorStore.EnsureCollection(ctx, dims))
	})
	if _, err := ensure.Unwrap(); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("relio-ingest"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	sub, err := ingest.StartConsumer(nc, ingest.Deps{
		Vectorizer:  pipeline.State,
		VectorStore: vectorStore,
		GraphStore:  graph.New(neo4jDriver),
		Logger:      logger,
		Breaker:     resilience.NewBreaker(resilience.DefaultBreakerOpts),
		Consumed:    met.Counter("relio_ingest_consumed_total", "Complaints consumed from NATS"),
		Stored:      met.Counter("relio_ingest_stored_total", "Complaints stored to both backends"),
		Failed:      met.Counter("relio_ingest_failed_total", "Pipeline failures"),
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer sub.Unsubscribe()

	met.ServeAsync(cfg.MetricsPort)
	logger.Info("ingest worker started",
		"subject", ingest.IngestSubject,
		"vector_dims", dims,
		"metrics_port", cfg.MetricsPort,
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}
