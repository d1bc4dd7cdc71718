// Package feature converts vehicle records into fixed-width numeric feature
// vectors. A fitted State captures every learned statistic (numeric moments,
// category vocabularies, text vocabulary with IDF weights), so transforming a
// record depends only on the record and the State. The same State is used for
// batch training rows and single-record inference.
package feature

import "github.com/RelioAI/relio-mvp/engine/domain"

// Derived numeric feature names. These are computed from the record during
// transform, not read from a column.
const (
	FeatCarAge            = "car_age"
	FeatTotalCostLastYear = "total_cost_last_year"
	FeatSentimentNet      = "sentiment_net"
)

// Config enumerates the feature groups and encoding policy. It is captured
// inside the fitted State and hashed into the artifact schema hash, so any
// change invalidates previously persisted artifacts.
type Config struct {
	NumericFeatures     []string            `json:"numeric_features"`
	CategoricalFeatures []string            `json:"categorical_features"`
	MaxTextFeatures     int                 `json:"max_text_features"`
	MinDocFreq          int                 `json:"min_doc_freq"`
	ReferenceYear       int                 `json:"reference_year"`
	Unseen              domain.UnseenPolicy `json:"unseen"`
}

// DefaultReferenceYear anchors the car-age derivation.
const DefaultReferenceYear = 2025

// DefaultConfig mirrors the modelling feature groups of the reliability
// dataset: raw usage/cost numerics plus derived age, total cost, and
// complaint sentiment; make/model/maintenance-action one-hots; and a bounded
// TF-IDF vocabulary over complaint text.
func DefaultConfig() Config {
	return Config{
		NumericFeatures: []string{
			"mileage",
			"avg_trip_length_miles",
			"maintenance_events",
			"past_failures",
			"severity_score",
			FeatCarAge,
			FeatTotalCostLastYear,
			FeatSentimentNet,
		},
		CategoricalFeatures: []string{"make", "model", "maintenance_action"},
		MaxTextFeatures:     300,
		MinDocFreq:          2,
		ReferenceYear:       DefaultReferenceYear,
		Unseen:              domain.UnseenZero,
	}
}
