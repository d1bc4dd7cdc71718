package semantic

import "github.com/RelioAI/relio-mvp/engine/domain"

// ComplaintVector pairs a complaint with its TF-IDF embedding for storage.
type ComplaintVector struct {
	ID        string
	Vector    []float32
	Complaint domain.Complaint
}

// ComplaintHit is a single similarity-search result.
type ComplaintHit struct {
	ID       string  `json:"id"`
	Score    float32 `json:"score"`
	Text     string  `json:"text"`
	Make     string  `json:"make"`
	Model    string  `json:"model"`
	Year     int     `json:"year"`
	Category string  `json:"category"`
	Source   string  `json:"source"`
}
