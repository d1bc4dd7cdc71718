// Package main implements the Relio dashboard API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/RelioAI/relio-mvp/engine/artifact"
	"github.com/RelioAI/relio-mvp/engine/dataset"
	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/graph"
	"github.com/RelioAI/relio-mvp/engine/nlp"
	"github.com/RelioAI/relio-mvp/engine/predict"
	"github.com/RelioAI/relio-mvp/engine/semantic"
	"github.com/RelioAI/relio-mvp/pkg/mid"
	"github.com/RelioAI/relio-mvp/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	ArtifactPath string
	DataPath     string
	Neo4jURL     string
	Neo4jUser    string
	Neo4jPass    string
	QdrantURL    string
	Collection   string
	CORSOrigin   string
	RateRPS      float64
	RateBurst    int
}

func loadConfig() Config {
	return Config{
		Port:         envOr("PORT", "8080"),
		ArtifactPath: envOr("ARTIFACT_PATH", "artifacts/reliability.bin"),
		DataPath:     envOr("DATA_PATH", "data/vehicle_reliability.csv"),
		Neo4jURL:     envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		QdrantURL:    envOr("QDRANT_URL", "localhost:6334"),
		Collection:   envOr("QDRANT_COLLECTION", "complaints"),
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
		RateRPS:      envFloat("RATE_LIMIT_RPS", 50),
		RateBurst:    envInt("RATE_LIMIT_BURST", 100),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Load the trained pipeline ---
	pipeline, err := artifact.Load(cfg.ArtifactPath)
	if err != nil {
		return fmt.Errorf("load artifact %s: %w", cfg.ArtifactPath, err)
	}
	predictor := predict.NewPredictor(pipeline, logger)
	logger.Info("artifact loaded",
		"path", cfg.ArtifactPath,
		"trained_rows", pipeline.TrainedRows,
		"trained_at", pipeline.TrainedAt,
	)

	// --- Load the complaint corpus for the terms endpoints ---
	var complaints []domain.Complaint
	if table, err := dataset.Load(cfg.DataPath); err != nil {
		logger.Warn("dataset unavailable, term endpoints degraded", "path", cfg.DataPath, "err", err)
	} else {
		complaints = table.Complaints()
		for i := range complaints {
			complaints[i].Category = string(nlp.Categorize(complaints[i].Text))
		}
		logger.Info("dataset loaded", "path", cfg.DataPath, "rows", table.Len())
	}
	met.Gauge("relio_api_corpus_complaints", "Complaints available for term mining").Set(int64(len(complaints)))

	// --- Connect to Neo4j ---
	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer neo4jDriver.Close(ctx)

	graphStore := graph.New(neo4jDriver)

	// --- Connect to Qdrant ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	srv := newServer(serverDeps{
		Predictor:  predictor,
		Vectorize:  pipeline.State.TextVector,
		Complaints: complaints,
		Vectors:    vectorStore,
		Graph:      graphStore,
		Breaker:    resilience.NewBreaker(resilience.DefaultBreakerOpts),
		Logger:     logger,
	})

	handler := mid.Chain(srv.routes(),
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.RateLimit(cfg.RateRPS, cfg.RateBurst),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("relio-api"),
	)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}
