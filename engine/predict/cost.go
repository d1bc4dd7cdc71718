package predict

import (
	"math"
	"strings"

	"github.com/RelioAI/relio-mvp/engine/domain"
)

// Projection assumptions for a typical ownership year.
const (
	annualMileage      = 12000.0
	fuelPricePerGallon = 3.5
	efficiencyMPG      = 26.0

	defaultActionCost = 150.0
)

// actionCosts maps a maintenance action to its base shop cost in dollars.
var actionCosts = map[string]float64{
	"oil change":            120,
	"brake pad replacement": 380,
	"software update":       160,
	"battery inspection":    90,
	"tire rotation":         75,
}

// CostProjection is a simplified next-year cost-of-ownership estimate.
type CostProjection struct {
	Maintenance  float64 `json:"maintenance_projection"`
	Fuel         float64 `json:"fuel_cost_projection"`
	Depreciation float64 `json:"depreciation_estimate"`
	Total        float64 `json:"total_projection"`
}

// projectCosts estimates ownership costs for the coming year. Higher risk
// inflates the maintenance projection; fuel assumes fixed annual mileage and
// efficiency; depreciation is floored at $500.
func projectCosts(rec domain.VehicleRecord, risk float64) CostProjection {
	base := defaultActionCost
	if c, ok := actionCosts[strings.ToLower(strings.TrimSpace(rec.MaintenanceAction))]; ok {
		base = c
	}
	riskMultiplier := 1.0 + 0.35*risk
	maintenance := (rec.MaintenanceCostLastYear + base) * riskMultiplier

	fuel := (annualMileage / efficiencyMPG) * fuelPricePerGallon

	totalLastYear := rec.MaintenanceCostLastYear + rec.FuelCostLastYear
	depreciation := math.Max(500, 0.12*totalLastYear)

	return CostProjection{
		Maintenance:  round2(maintenance),
		Fuel:         round2(fuel),
		Depreciation: round2(depreciation),
		Total:        round2(maintenance + fuel + depreciation),
	}
}

// estimatedNextYearCost projects last year's spend forward, inflated by risk.
func estimatedNextYearCost(rec domain.VehicleRecord, risk float64) float64 {
	totalLastYear := rec.MaintenanceCostLastYear + rec.FuelCostLastYear
	return round2(totalLastYear * (1.05 + 0.02*risk))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
