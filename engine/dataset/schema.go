// Package dataset loads the vehicle reliability dataset from CSV into typed
// in-memory records, validating the schema once up front.
package dataset

import (
	"fmt"

	"github.com/RelioAI/relio-mvp/engine/domain"
)

// Column names of the reliability dataset, in canonical file order.
const (
	ColMake                    = "make"
	ColModel                   = "model"
	ColYear                    = "year"
	ColMileage                 = "mileage"
	ColAvgTripLengthMiles      = "avg_trip_length_miles"
	ColMaintenanceEvents       = "maintenance_events"
	ColPastFailures            = "past_failures"
	ColSeverityScore           = "severity_score"
	ColMaintenanceCostLastYear = "maintenance_cost_last_year"
	ColFuelCostLastYear        = "fuel_cost_last_year"
	ColComplaintText           = "complaint_text"
	ColMaintenanceAction       = "maintenance_action"
	ColHasMechanicalIssue      = "has_mechanical_issue"
)

// RequiredColumns lists every column the pipeline depends on. Load fails with
// ErrSchemaMismatch if any is absent from the header.
var RequiredColumns = []string{
	ColMake, ColModel, ColYear,
	ColMileage, ColAvgTripLengthMiles,
	ColMaintenanceEvents, ColPastFailures, ColSeverityScore,
	ColMaintenanceCostLastYear, ColFuelCostLastYear,
	ColComplaintText, ColMaintenanceAction,
	ColHasMechanicalIssue,
}

// columnIndex maps a header row to column positions, validating presence.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range RequiredColumns {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrSchemaMismatch, required)
		}
	}
	return idx, nil
}

// Table is the in-memory reliability dataset.
type Table struct {
	Records []domain.VehicleRecord
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Records) }

// Labels returns the risk label column.
func (t *Table) Labels() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.HasMechanicalIssue
	}
	return out
}

// Complaints converts rows into complaint records for the text analyzer.
func (t *Table) Complaints() []domain.Complaint {
	out := make([]domain.Complaint, 0, len(t.Records))
	for _, r := range t.Records {
		out = append(out, domain.Complaint{
			Text:      r.ComplaintText,
			Vehicle:   r.Vehicle(),
			Severity:  r.SeverityScore,
			RiskLabel: r.HasMechanicalIssue,
		})
	}
	return out
}
