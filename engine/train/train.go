// Package train orchestrates a training run: seeded split, leakage-free
// preprocessor fit, boosted-model fit, holdout evaluation, and artifact
// persistence.
package train

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/RelioAI/relio-mvp/engine/artifact"
	"github.com/RelioAI/relio-mvp/engine/dataset"
	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/feature"
	"github.com/RelioAI/relio-mvp/engine/model"
	"github.com/RelioAI/relio-mvp/pkg/fn"
)

// MinTrainingRows is the default floor of usable rows after filtering.
const MinTrainingRows = 10

// Config enumerates every recognized training option.
type Config struct {
	// TestFraction is the holdout ratio for evaluation. Zero disables the
	// holdout; metrics are then computed on the training rows.
	TestFraction float64
	// Seed drives both the split shuffle and nothing else: the model itself
	// is deterministic. Same seed, same split.
	Seed int64
	// Model holds the boosting hyperparameters.
	Model model.Config
	// Feature holds the preprocessor configuration.
	Feature feature.Config
	// MinRows overrides MinTrainingRows when positive.
	MinRows int

	// ArtifactPath and MetricsPath enable persistence when non-empty.
	ArtifactPath string
	MetricsPath  string
}

// DefaultConfig mirrors the prototype training setup.
func DefaultConfig() Config {
	return Config{
		TestFraction: 0.25,
		Seed:         42,
		Model:        model.DefaultConfig(),
		Feature:      feature.DefaultConfig(),
	}
}

// Trainer runs training with structured logging.
type Trainer struct {
	cfg Config
	log *slog.Logger
}

// New creates a Trainer. A nil logger falls back to slog.Default.
func New(cfg Config, log *slog.Logger) *Trainer {
	if log == nil {
		log = slog.Default()
	}
	return &Trainer{cfg: cfg, log: log}
}

// Run trains on the table and returns the fitted pipeline with its holdout
// metrics. Invalid rows are dropped first; if fewer than the minimum remain,
// Run fails with ErrTrainingDataInsufficient. The preprocessor is fitted on
// the training partition only, never on holdout rows.
func (t *Trainer) Run(ctx context.Context, table *dataset.Table) (*artifact.Pipeline, Metrics, error) {
	_, span := otel.Tracer("engine/train").Start(ctx, "train.run")
	defer span.End()

	usable, dropped := filterRows(table.Records)
	minRows := t.cfg.MinRows
	if minRows <= 0 {
		minRows = MinTrainingRows
	}
	if len(usable) < minRows {
		return nil, Metrics{}, fmt.Errorf("%w: %d usable rows, need %d",
			domain.ErrTrainingDataInsufficient, len(usable), minRows)
	}
	if dropped > 0 {
		t.log.Warn("dropped invalid rows", "dropped", dropped, "usable", len(usable))
	}

	trainIdx, evalIdx := splitIndices(len(usable), t.cfg.TestFraction, t.cfg.Seed)
	trainRecs := pick(usable, trainIdx)
	evalRecs := pick(usable, evalIdx)

	state, err := feature.Fit(trainRecs, t.cfg.Feature)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("fit preprocessor: %w", err)
	}

	trainX, err := state.TransformAll(trainRecs)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("transform training rows: %w", err)
	}
	trainY := labels(trainRecs)

	ens, err := model.Train(trainX, trainY, t.cfg.Model)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("train model: %w", err)
	}

	// Evaluate on the holdout through the exact same transform path.
	scoreRecs, scoreRows := evalRecs, len(evalRecs)
	if scoreRows == 0 {
		scoreRecs = trainRecs
	}
	evalX, err := state.TransformAll(scoreRecs)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("transform holdout rows: %w", err)
	}
	metrics := computeMetrics(ens.EvaluateAll(evalX), labels(scoreRecs))
	metrics.TrainRows = len(trainRecs)
	metrics.EvalRows = scoreRows
	metrics.Dropped = dropped
	metrics.Features = state.Width()
	metrics.Trees = len(ens.Trees)

	pipeline := &artifact.Pipeline{
		State:       state,
		Model:       ens,
		ModelConfig: t.cfg.Model,
		Target:      dataset.ColHasMechanicalIssue,
		TrainedRows: len(trainRecs),
		TrainedAt:   time.Now().UTC(),
	}

	if t.cfg.ArtifactPath != "" {
		if err := artifact.Save(t.cfg.ArtifactPath, pipeline); err != nil {
			return nil, Metrics{}, err
		}
		t.log.Info("artifact saved", "path", t.cfg.ArtifactPath, "schema_hash", fmt.Sprintf("0x%016x", state.SchemaHash()))
	}
	if t.cfg.MetricsPath != "" {
		if err := metrics.WriteFile(t.cfg.MetricsPath); err != nil {
			return nil, Metrics{}, err
		}
	}

	t.log.Info("training complete",
		"train_rows", metrics.TrainRows,
		"eval_rows", metrics.EvalRows,
		"rmse", metrics.RMSE,
		"hit_rate", metrics.HitRate,
		"trees", metrics.Trees,
	)
	return pipeline, metrics, nil
}

func filterRows(records []domain.VehicleRecord) (usable []domain.VehicleRecord, dropped int) {
	usable = fn.Filter(records, func(r domain.VehicleRecord) bool {
		return domain.ValidateRecord(r) == nil
	})
	return usable, len(records) - len(usable)
}

func pick(records []domain.VehicleRecord, idx []int) []domain.VehicleRecord {
	out := make([]domain.VehicleRecord, len(idx))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out
}

func labels(records []domain.VehicleRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.HasMechanicalIssue
	}
	return out
}
