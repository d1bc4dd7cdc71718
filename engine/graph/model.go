// Package graph provides Neo4j knowledge graph operations for vehicle
// reliability data. Complaints hang off a Make -> Model -> ModelYear
// hierarchy; issue summaries are derived from complaint counts rather than
// stored counters, so re-ingestion stays idempotent.
package graph

// IssueCount is one symptom category's complaint count for a vehicle.
type IssueCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ModelStats holds per-model complaint statistics for dashboards.
type ModelStats struct {
	Make       string  `json:"make"`
	Model      string  `json:"model"`
	Complaints int64   `json:"complaints"`
	AvgRisk    float64 `json:"avg_risk"`
}
