package nlp

import (
	"math"
	"sort"

	"github.com/RelioAI/relio-mvp/engine/domain"
)

// TermCount is a term with its corpus frequency.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// WeightedPattern is an n-gram phrase with a severity-weighted score.
type WeightedPattern struct {
	Pattern string  `json:"pattern"`
	Score   float64 `json:"score"`
}

// TopTerms returns the k most frequent content terms across complaints,
// optionally filtered to one symptom category (empty category means all).
// Ordering is by descending count with lexical tie-break, so repeated runs on
// the same input yield identical output.
func TopTerms(complaints []domain.Complaint, category domain.SymptomCategory, k int) []TermCount {
	counts := make(map[string]int)
	for _, c := range complaints {
		if category != "" && domain.SymptomCategory(c.Category) != category {
			continue
		}
		for _, tok := range ContentTokens(c.Text) {
			counts[tok]++
		}
	}
	return rankCounts(counts, k)
}

// TopTermsByClass returns the k most frequent terms per risk class, with rows
// labelled "High Risk" (label >= 0.5) and "Low Risk".
func TopTermsByClass(complaints []domain.Complaint, k int) map[string][]TermCount {
	byClass := map[string]map[string]int{
		"Low Risk":  {},
		"High Risk": {},
	}
	for _, c := range complaints {
		class := "Low Risk"
		if c.RiskLabel >= 0.5 {
			class = "High Risk"
		}
		for _, tok := range ContentTokens(c.Text) {
			byClass[class][tok]++
		}
	}

	out := make(map[string][]TermCount, len(byClass))
	for class, counts := range byClass {
		out[class] = rankCounts(counts, k)
	}
	return out
}

// FailurePatterns mines frequent bigram and trigram phrases, weighting counts
// by the severity distribution of the corpus (mean/stddev, floor 0.5; phrases
// in uniformly severe corpora score higher). Phrases seen fewer than minCount
// times are dropped.
func FailurePatterns(complaints []domain.Complaint, k int) []WeightedPattern {
	const minCount = 2

	if len(complaints) == 0 {
		return nil
	}

	counts := make(map[string]int)
	var sum, sqSum float64
	for _, c := range complaints {
		tokens := ContentTokens(c.Text)
		for _, phrase := range Ngrams(tokens, 2) {
			counts[phrase]++
		}
		for _, phrase := range Ngrams(tokens, 3) {
			counts[phrase]++
		}
		sum += c.Severity
		sqSum += c.Severity * c.Severity
	}

	n := float64(len(complaints))
	mean := sum / n
	std := math.Sqrt(math.Max(sqSum/n-mean*mean, 0))
	weight := mean / math.Max(std, 0.5)

	var patterns []WeightedPattern
	for phrase, count := range counts {
		if count < minCount {
			continue
		}
		patterns = append(patterns, WeightedPattern{
			Pattern: phrase,
			Score:   math.Round(float64(count)*weight*100) / 100,
		})
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Score != patterns[j].Score {
			return patterns[i].Score > patterns[j].Score
		}
		return patterns[i].Pattern < patterns[j].Pattern
	})
	if k > 0 && len(patterns) > k {
		patterns = patterns[:k]
	}
	return patterns
}

func rankCounts(counts map[string]int, k int) []TermCount {
	ranked := make([]TermCount, 0, len(counts))
	for term, count := range counts {
		ranked = append(ranked, TermCount{Term: term, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
