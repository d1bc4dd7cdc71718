// Command train fits the reliability pipeline on a CSV dataset and writes the
// artifact plus a JSON metrics report.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/RelioAI/relio-mvp/engine/dataset"
	"github.com/RelioAI/relio-mvp/engine/train"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	var (
		dataPath     = flag.String("data", "data/vehicle_reliability.csv", "input dataset CSV")
		artifactPath = flag.String("out", "artifacts/reliability.bin", "output artifact path")
		metricsPath  = flag.String("metrics", "artifacts/metrics.json", "output metrics JSON path")
		seed         = flag.Int64("seed", 42, "split shuffle seed")
		testFraction = flag.Float64("test-fraction", 0.25, "holdout fraction")
		trees        = flag.Int("trees", 100, "boosting rounds")
		depth        = flag.Int("depth", 3, "max tree depth")
		learningRate = flag.Float64("learning-rate", 0.1, "shrinkage per round")
	)
	flag.Parse()

	table, err := dataset.Load(*dataPath)
	if err != nil {
		logger.Error("load dataset", "path", *dataPath, "err", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded", "path", *dataPath, "rows", table.Len())

	cfg := train.DefaultConfig()
	cfg.Seed = *seed
	cfg.TestFraction = *testFraction
	cfg.Model.Trees = *trees
	cfg.Model.Depth = *depth
	cfg.Model.LearningRate = *learningRate
	cfg.ArtifactPath = *artifactPath
	cfg.MetricsPath = *metricsPath

	_, metrics, err := train.New(cfg, logger).Run(context.Background(), table)
	if err != nil {
		logger.Error("training failed", "err", err)
		os.Exit(1)
	}

	logger.Info("training complete",
		"train_rows", metrics.TrainRows,
		"eval_rows", metrics.EvalRows,
		"dropped", metrics.Dropped,
		"features", metrics.Features,
		"trees", metrics.Trees,
		"mae", metrics.MAE,
		"rmse", metrics.RMSE,
		"r2", metrics.R2,
		"hit_rate", metrics.HitRate,
		"artifact", *artifactPath,
	)
}
