package predict

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/RelioAI/relio-mvp/engine/artifact"
	"github.com/RelioAI/relio-mvp/engine/dataset"
	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/feature"
	"github.com/RelioAI/relio-mvp/engine/model"
)

func fittedPredictor(t *testing.T, unseen domain.UnseenPolicy) *Predictor {
	t.Helper()
	records := dataset.Generate(60, 42)
	cfg := feature.DefaultConfig()
	cfg.Unseen = unseen
	state, err := feature.Fit(records, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	xs, err := state.TransformAll(records)
	if err != nil {
		t.Fatalf("TransformAll: %v", err)
	}
	ys := make([]float64, len(records))
	for i, r := range records {
		ys[i] = r.HasMechanicalIssue
	}
	ens, err := model.Train(xs, ys, model.Config{Trees: 10, Depth: 2, LearningRate: 0.3, MinLeaf: 2})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return NewPredictor(&artifact.Pipeline{State: state, Model: ens}, nil)
}

func TestPredict_BoundedAndBanded(t *testing.T) {
	p := fittedPredictor(t, domain.UnseenZero)
	for _, rec := range dataset.Generate(20, 7) {
		res, err := p.Predict(rec)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if res.Probability < 0 || res.Probability > 1 {
			t.Errorf("probability %v outside [0,1]", res.Probability)
		}
		if res.RiskBand != domain.BandForScore(res.Probability) {
			t.Errorf("band %q disagrees with probability %v", res.RiskBand, res.Probability)
		}
		if res.Cost.Total <= 0 {
			t.Errorf("non-positive cost projection %v", res.Cost.Total)
		}
		if len(res.Timeline) < 3 {
			t.Errorf("timeline has %d milestones, want at least 3", len(res.Timeline))
		}
	}
}

func TestPredict_UnseenPolicy(t *testing.T) {
	query := dataset.Generate(1, 9)[0]
	query.Make = "Zonda"
	query.Model = "Cinque"

	strict := fittedPredictor(t, domain.UnseenError)
	if _, err := strict.Predict(query); !errors.Is(err, domain.ErrUnseenCategory) {
		t.Fatalf("strict policy: expected ErrUnseenCategory, got %v", err)
	}

	lenient := fittedPredictor(t, domain.UnseenZero)
	if _, err := lenient.Predict(query); err != nil {
		t.Fatalf("lenient policy: %v", err)
	}
}

func TestCompare(t *testing.T) {
	p := fittedPredictor(t, domain.UnseenZero)
	recs := dataset.Generate(2, 11)
	cmp, err := p.Compare(recs[0], recs[1])
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	a, err := p.Predict(recs[0])
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if cmp.CarA.Probability != a.Probability {
		t.Errorf("CarA %v != standalone prediction %v", cmp.CarA.Probability, a.Probability)
	}
	if cmp.CarB.Probability == 0 && cmp.CarA.Probability == 0 {
		t.Error("both comparisons scored zero")
	}
}

func TestLoad_RoundTripAndMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.bin")
	if _, err := Load(path, nil); !errors.Is(err, domain.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing, got %v", err)
	}

	p := fittedPredictor(t, domain.UnseenZero)
	if err := artifact.Save(path, p.pipeline); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec := dataset.Generate(1, 3)[0]
	want, err := p.Predict(rec)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	got, err := loaded.Predict(rec)
	if err != nil {
		t.Fatalf("Predict after load: %v", err)
	}
	if got.Probability != want.Probability {
		t.Errorf("reloaded prediction %v != original %v", got.Probability, want.Probability)
	}
}

func TestProjectCosts(t *testing.T) {
	rec := domain.VehicleRecord{
		MaintenanceCostLastYear: 600,
		FuelCostLastYear:        1200,
		MaintenanceAction:       "brake pad replacement",
	}
	got := projectCosts(rec, 0.2)

	wantMaintenance := (600.0 + 380.0) * 1.07
	if got.Maintenance != round2(wantMaintenance) {
		t.Errorf("maintenance = %v, want %v", got.Maintenance, round2(wantMaintenance))
	}
	wantFuel := round2((12000.0 / 26.0) * 3.5)
	if got.Fuel != wantFuel {
		t.Errorf("fuel = %v, want %v", got.Fuel, wantFuel)
	}
	if got.Depreciation != 500 {
		t.Errorf("depreciation = %v, want floor of 500", got.Depreciation)
	}
	if got.Total != round2(got.Maintenance+got.Fuel+got.Depreciation) {
		t.Errorf("total %v does not sum components", got.Total)
	}

	rec.MaintenanceAction = "unknown thing"
	if got := projectCosts(rec, 0); got.Maintenance != round2(600+defaultActionCost) {
		t.Errorf("unknown action maintenance = %v", got.Maintenance)
	}

	rec.MaintenanceCostLastYear = 20000
	if got := projectCosts(rec, 0); got.Depreciation != round2(0.12*(20000+1200)) {
		t.Errorf("depreciation = %v, want 12%% of last year's total", got.Depreciation)
	}
}

func TestMaintenanceTimeline(t *testing.T) {
	low := maintenanceTimeline(0.1)
	if len(low) != 3 {
		t.Fatalf("low risk: %d milestones, want 3", len(low))
	}
	if low[0].Timeframe != "5 months" {
		t.Errorf("low risk first interval = %q", low[0].Timeframe)
	}

	high := maintenanceTimeline(0.8)
	if len(high) != 4 {
		t.Fatalf("high risk: %d milestones, want 4", len(high))
	}
	if high[0].Timeframe != "4 months" {
		t.Errorf("high risk first interval = %q", high[0].Timeframe)
	}
	if high[3].Timeframe != "Next 30 days" {
		t.Errorf("high risk missing urgent milestone, got %q", high[3].Timeframe)
	}

	extreme := maintenanceTimeline(1.5)
	if extreme[0].Timeframe != "3 months" {
		t.Errorf("extreme risk interval = %q, want floor of 3 months", extreme[0].Timeframe)
	}
}
