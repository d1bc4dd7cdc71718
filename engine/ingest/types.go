package ingest

import (
	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/nlp"
)

// AnalyzedComplaint is a complaint after text analysis: category and vehicle
// filled in where the source left them blank, sentiment attached.
type AnalyzedComplaint struct {
	Complaint domain.Complaint
	Sentiment nlp.SentimentScores
}

// VectorizedComplaint is an analyzed complaint with its TF-IDF vector.
type VectorizedComplaint struct {
	AnalyzedComplaint
	Vector []float32
}
