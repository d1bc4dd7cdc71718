// Package predict serves inference over a persisted training artifact:
// risk scoring, vehicle comparison, cost projection, and maintenance
// scheduling. Queries run through the exact fitted preprocessor, so there is
// no inference-time feature logic to drift from training.
package predict

import (
	"fmt"
	"log/slog"

	"github.com/RelioAI/relio-mvp/engine/artifact"
	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/pkg/fn"
)

// Result is a full prediction for one vehicle record.
type Result struct {
	Probability           float64         `json:"probability"`
	RiskBand              domain.RiskBand `json:"risk_band"`
	EstimatedNextYearCost float64         `json:"estimated_next_year_cost"`
	Cost                  CostProjection  `json:"cost_projection"`
	Timeline              []Milestone     `json:"maintenance_timeline"`
}

// Comparison holds side-by-side predictions for two vehicles.
type Comparison struct {
	CarA Result `json:"car_a"`
	CarB Result `json:"car_b"`
}

// Predictor is an immutable handle over a fitted pipeline. Safe for
// concurrent use.
type Predictor struct {
	pipeline *artifact.Pipeline
	log      *slog.Logger
}

// Load reads the artifact at path and wraps it in a Predictor. A nil logger
// falls back to slog.Default.
func Load(path string, log *slog.Logger) (*Predictor, error) {
	pipeline, err := artifact.Load(path)
	if err != nil {
		return nil, err
	}
	return NewPredictor(pipeline, log), nil
}

// NewPredictor wraps an already-loaded pipeline.
func NewPredictor(pipeline *artifact.Pipeline, log *slog.Logger) *Predictor {
	if log == nil {
		log = slog.Default()
	}
	return &Predictor{pipeline: pipeline, log: log}
}

// Predict scores one record. Unseen categorical values behave per the fitted
// preprocessor's policy: under UnseenError the wrapped ErrUnseenCategory
// surfaces here, under UnseenZero the record still scores.
func (p *Predictor) Predict(rec domain.VehicleRecord) (Result, error) {
	vec, err := p.pipeline.State.Transform(rec)
	if err != nil {
		return Result{}, fmt.Errorf("transform query: %w", err)
	}
	risk := clamp01(p.pipeline.Model.Evaluate(vec))
	band := domain.BandForScore(risk)

	p.log.Debug("scored vehicle",
		"make", rec.Make, "model", rec.Model, "year", rec.Year,
		"risk", risk, "band", band)

	return Result{
		Probability:           risk,
		RiskBand:              band,
		EstimatedNextYearCost: estimatedNextYearCost(rec, risk),
		Cost:                  projectCosts(rec, risk),
		Timeline:              maintenanceTimeline(risk),
	}, nil
}

// Compare scores two records side by side. Either failure aborts the whole
// comparison.
func (p *Predictor) Compare(a, b domain.VehicleRecord) (Comparison, error) {
	score := func(label string, rec domain.VehicleRecord) func() fn.Result[Result] {
		return func() fn.Result[Result] {
			res, err := p.Predict(rec)
			if err != nil {
				return fn.Err[Result](fmt.Errorf("%s: %w", label, err))
			}
			return fn.Ok(res)
		}
	}
	results, err := fn.FanOutResult(score("car a", a), score("car b", b)).Unwrap()
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{CarA: results[0], CarB: results[1]}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
