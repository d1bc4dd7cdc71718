package train

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Metrics summarizes a training run. All values are computed on the holdout
// partition (or on the training partition when no holdout was configured;
// EvalRows is 0 in that case).
type Metrics struct {
	MAE       float64 `json:"mae"`
	RMSE      float64 `json:"rmse"`
	R2        float64 `json:"r2"`
	HitRate   float64 `json:"hit_rate"`
	TrainRows int     `json:"train_rows"`
	EvalRows  int     `json:"eval_rows"`
	Dropped   int     `json:"dropped_rows"`
	Features  int     `json:"feature_width"`
	Trees     int     `json:"trees"`
}

// computeMetrics scores predictions against targets. HitRate is the fraction
// of rows where prediction and target fall on the same side of 0.5, which
// reads as accuracy for the binary risk label.
func computeMetrics(preds, targets []float64) Metrics {
	n := float64(len(targets))
	if n == 0 {
		return Metrics{}
	}

	var absSum, sqSum, targetSum float64
	hits := 0
	for i, y := range targets {
		diff := preds[i] - y
		absSum += math.Abs(diff)
		sqSum += diff * diff
		targetSum += y
		if (preds[i] >= 0.5) == (y >= 0.5) {
			hits++
		}
	}
	mean := targetSum / n

	var totalVar float64
	for _, y := range targets {
		totalVar += (y - mean) * (y - mean)
	}
	r2 := 0.0
	if totalVar > 0 {
		r2 = 1 - sqSum/totalVar
	}

	return Metrics{
		MAE:     absSum / n,
		RMSE:    math.Sqrt(sqSum / n),
		R2:      r2,
		HitRate: float64(hits) / n,
	}
}

// WriteFile persists metrics as an indented JSON side file for humans and
// dashboards. The predictor never reads it.
func (m Metrics) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
