package feature

import (
	"fmt"
	"math"
	"sort"

	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/nlp"
)

// NumericStats holds the fit-time moments of one numeric feature.
type NumericStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// State is a fitted preprocessor. It is immutable after Fit: Transform never
// mutates it, so a loaded State is safe for concurrent readers.
type State struct {
	Config     Config              `json:"config"`
	Numeric    []NumericStats      `json:"numeric"`
	Categories map[string][]string `json:"categories"`
	TextVocab  []string            `json:"text_vocab"`
	IDF        []float64           `json:"idf"`
}

// Fit learns numeric moments, category vocabularies (sorted, so column order
// is independent of row order), and the text vocabulary with smoothed IDF
// weights from the given rows.
func Fit(records []domain.VehicleRecord, cfg Config) (*State, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("fit: %w: no rows", domain.ErrTrainingDataInsufficient)
	}
	if cfg.ReferenceYear == 0 {
		cfg.ReferenceYear = DefaultReferenceYear
	}
	if cfg.Unseen == "" {
		cfg.Unseen = domain.UnseenZero
	}

	s := &State{
		Config:     cfg,
		Numeric:    make([]NumericStats, len(cfg.NumericFeatures)),
		Categories: make(map[string][]string, len(cfg.CategoricalFeatures)),
	}

	// Numeric moments.
	n := float64(len(records))
	for fi, name := range cfg.NumericFeatures {
		var sum, sqSum float64
		for _, rec := range records {
			v, err := numericValue(cfg, rec, name)
			if err != nil {
				return nil, err
			}
			sum += v
			sqSum += v * v
		}
		mean := sum / n
		variance := math.Max(sqSum/n-mean*mean, 0)
		s.Numeric[fi] = NumericStats{Mean: mean, Std: math.Sqrt(variance)}
	}

	// Categorical vocabularies, sorted for a fixed category order.
	for _, name := range cfg.CategoricalFeatures {
		seen := make(map[string]bool)
		for _, rec := range records {
			v, err := categoricalValue(rec, name)
			if err != nil {
				return nil, err
			}
			seen[v] = true
		}
		vocab := make([]string, 0, len(seen))
		for v := range seen {
			vocab = append(vocab, v)
		}
		sort.Strings(vocab)
		s.Categories[name] = vocab
	}

	// Text vocabulary: unigrams and bigrams over complaint text, document
	// frequency at least MinDocFreq, keep the MaxTextFeatures most frequent
	// (total count, lexical tie-break), then fix column order lexically.
	if cfg.MaxTextFeatures > 0 {
		s.TextVocab, s.IDF = fitTextVocab(records, cfg)
	}

	return s, nil
}

func fitTextVocab(records []domain.VehicleRecord, cfg Config) ([]string, []float64) {
	docFreq := make(map[string]int)
	total := make(map[string]int)
	for _, rec := range records {
		terms := textTerms(rec.ComplaintText)
		inDoc := make(map[string]bool)
		for _, t := range terms {
			total[t]++
			if !inDoc[t] {
				inDoc[t] = true
				docFreq[t]++
			}
		}
	}

	type cand struct {
		term  string
		count int
	}
	var candidates []cand
	for term, df := range docFreq {
		if df >= cfg.MinDocFreq {
			candidates = append(candidates, cand{term, total[term]})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].term < candidates[j].term
	})
	if len(candidates) > cfg.MaxTextFeatures {
		candidates = candidates[:cfg.MaxTextFeatures]
	}

	vocab := make([]string, len(candidates))
	for i, c := range candidates {
		vocab[i] = c.term
	}
	sort.Strings(vocab)

	// Smoothed IDF, sklearn style: ln((1+n)/(1+df)) + 1.
	n := float64(len(records))
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return vocab, idf
}

// textTerms produces the unigram+bigram term stream for one document.
func textTerms(text string) []string {
	tokens := nlp.ContentTokens(text)
	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	terms = append(terms, nlp.Ngrams(tokens, 2)...)
	return terms
}

// numericValue extracts or derives one numeric feature from a record.
func numericValue(cfg Config, rec domain.VehicleRecord, name string) (float64, error) {
	switch name {
	case "mileage":
		return rec.Mileage, nil
	case "avg_trip_length_miles":
		return rec.AvgTripLengthMiles, nil
	case "maintenance_events":
		return float64(rec.MaintenanceEvents), nil
	case "past_failures":
		return float64(rec.PastFailures), nil
	case "severity_score":
		return rec.SeverityScore, nil
	case FeatCarAge:
		return float64(cfg.ReferenceYear - rec.Year), nil
	case FeatTotalCostLastYear:
		return rec.MaintenanceCostLastYear + rec.FuelCostLastYear, nil
	case FeatSentimentNet:
		return nlp.Sentiment(rec.ComplaintText).Net, nil
	default:
		return 0, fmt.Errorf("%w: unknown numeric feature %q", domain.ErrSchemaMismatch, name)
	}
}

func categoricalValue(rec domain.VehicleRecord, name string) (string, error) {
	switch name {
	case "make":
		return rec.Make, nil
	case "model":
		return rec.Model, nil
	case "maintenance_action":
		return rec.MaintenanceAction, nil
	default:
		return "", fmt.Errorf("%w: unknown categorical feature %q", domain.ErrSchemaMismatch, name)
	}
}
