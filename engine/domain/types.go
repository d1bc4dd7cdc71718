// Package domain defines core domain types, constants, and validation for the
// Relio reliability pipeline. It acts as the validation gate at pipeline entry points.
package domain

import "time"

// Vehicle identifies a vehicle configuration for prediction queries.
type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// VehicleRecord is one row of the reliability dataset: a vehicle configuration
// plus its usage/maintenance history and risk label. Immutable once loaded.
type VehicleRecord struct {
	Make                    string  `json:"make"`
	Model                   string  `json:"model"`
	Year                    int     `json:"year"`
	Mileage                 float64 `json:"mileage"`
	AvgTripLengthMiles      float64 `json:"avg_trip_length_miles"`
	MaintenanceEvents       int     `json:"maintenance_events"`
	PastFailures            int     `json:"past_failures"`
	SeverityScore           float64 `json:"severity_score"`
	MaintenanceCostLastYear float64 `json:"maintenance_cost_last_year"`
	FuelCostLastYear        float64 `json:"fuel_cost_last_year"`
	ComplaintText           string  `json:"complaint_text"`
	MaintenanceAction       string  `json:"maintenance_action"`
	HasMechanicalIssue      float64 `json:"has_mechanical_issue"`
}

// Vehicle returns the vehicle identity portion of the record.
func (r VehicleRecord) Vehicle() Vehicle {
	return Vehicle{Make: r.Make, Model: r.Model, Year: r.Year}
}

// Complaint is a free-text owner complaint, optionally keyed to a vehicle and
// tagged with the component category it concerns. Read-only input to the
// text analyzer and the ingest worker.
type Complaint struct {
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	Vehicle   Vehicle   `json:"vehicle"`
	Category  string    `json:"category,omitempty"`
	Severity  float64   `json:"severity,omitempty"`
	RiskLabel float64   `json:"risk_label,omitempty"`
	Source    string    `json:"source,omitempty"`
	PostedAt  time.Time `json:"posted_at,omitempty"`
}

// RiskBand buckets a risk score for presentation.
type RiskBand string

const (
	RiskLow      RiskBand = "Low"
	RiskModerate RiskBand = "Moderate"
	RiskHigh     RiskBand = "High"
)

// BandForScore maps a risk score to its band. Thresholds: High >= 0.65,
// Moderate >= 0.40, otherwise Low.
func BandForScore(score float64) RiskBand {
	switch {
	case score >= 0.65:
		return RiskHigh
	case score >= 0.40:
		return RiskModerate
	default:
		return RiskLow
	}
}

// SymptomCategory classifies what a complaint is about.
type SymptomCategory string

const (
	SymptomEngine       SymptomCategory = "engine"
	SymptomTransmission SymptomCategory = "transmission"
	SymptomBrakes       SymptomCategory = "brakes"
	SymptomSuspension   SymptomCategory = "suspension"
	SymptomElectrical   SymptomCategory = "electrical"
	SymptomCooling      SymptomCategory = "cooling"
	SymptomFuel         SymptomCategory = "fuel"
	SymptomInfotainment SymptomCategory = "infotainment"
	SymptomHVAC         SymptomCategory = "hvac"
	SymptomOther        SymptomCategory = "other"
)

// ValidSymptomCategories is the set of recognised symptom categories.
var ValidSymptomCategories = map[SymptomCategory]bool{
	SymptomEngine: true, SymptomTransmission: true, SymptomBrakes: true,
	SymptomSuspension: true, SymptomElectrical: true, SymptomCooling: true,
	SymptomFuel: true, SymptomInfotainment: true, SymptomHVAC: true,
	SymptomOther: true,
}

// UnseenPolicy controls how the preprocessor treats categorical values absent
// from the fit-time vocabulary.
type UnseenPolicy string

const (
	// UnseenError rejects the record with ErrUnseenCategory.
	UnseenError UnseenPolicy = "error"
	// UnseenZero encodes the value as the all-zeros "unknown" bucket.
	UnseenZero UnseenPolicy = "zero"
)
