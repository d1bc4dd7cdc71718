package feature

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/pkg/fn"
)

// Width returns the fixed feature-vector length produced by Transform.
func (s *State) Width() int {
	w := len(s.Config.NumericFeatures)
	for _, name := range s.Config.CategoricalFeatures {
		w += len(s.Categories[name])
	}
	return w + len(s.TextVocab)
}

// Transform encodes one record into the fixed-width feature vector:
// standardized numerics, one-hot categoricals in fit-time order, then the
// l2-normalized TF-IDF block. A categorical value outside the fit-time
// vocabulary is handled per the configured UnseenPolicy: UnseenError returns
// ErrUnseenCategory; UnseenZero leaves that one-hot block all zero.
func (s *State) Transform(rec domain.VehicleRecord) ([]float64, error) {
	out := make([]float64, 0, s.Width())

	for fi, name := range s.Config.NumericFeatures {
		v, err := numericValue(s.Config, rec, name)
		if err != nil {
			return nil, err
		}
		stats := s.Numeric[fi]
		if stats.Std > 0 {
			out = append(out, (v-stats.Mean)/stats.Std)
		} else {
			out = append(out, 0)
		}
	}

	for _, name := range s.Config.CategoricalFeatures {
		vocab := s.Categories[name]
		v, err := categoricalValue(rec, name)
		if err != nil {
			return nil, err
		}
		hot := sort.SearchStrings(vocab, v)
		found := hot < len(vocab) && vocab[hot] == v
		if !found && s.Config.Unseen == domain.UnseenError {
			return nil, domain.NewFieldError(name, v, domain.ErrUnseenCategory)
		}
		block := make([]float64, len(vocab))
		if found {
			block[hot] = 1
		}
		out = append(out, block...)
	}

	out = append(out, s.textVector(rec.ComplaintText)...)
	return out, nil
}

// TransformAll encodes a batch of records. All rows share the identical
// encoding path as single-record Transform; output order matches input order.
func (s *State) TransformAll(records []domain.VehicleRecord) ([][]float64, error) {
	rows := fn.ParMap(records, runtime.NumCPU(), func(rec domain.VehicleRecord) fn.Result[[]float64] {
		return fn.FromPair(s.Transform(rec))
	})
	out, err := fn.Collect(rows).Unwrap()
	if err != nil {
		return nil, fmt.Errorf("transform batch: %w", err)
	}
	return out, nil
}

// textVector computes the l2-normalized TF-IDF block for one document.
// Out-of-vocabulary terms contribute nothing.
func (s *State) textVector(text string) []float64 {
	vec := make([]float64, len(s.TextVocab))
	if len(vec) == 0 {
		return vec
	}

	var norm float64
	for _, term := range textTerms(text) {
		// TextVocab is sorted at fit time; binary search keeps Transform
		// allocation-free beyond the output vector.
		i := sort.SearchStrings(s.TextVocab, term)
		if i < len(s.TextVocab) && s.TextVocab[i] == term {
			vec[i]++
		}
	}
	for i := range vec {
		vec[i] *= s.IDF[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// TextVector exposes the complaint-text block as float32 for vector storage.
func (s *State) TextVector(text string) []float32 {
	v64 := s.textVector(text)
	out := make([]float32, len(v64))
	for i, v := range v64 {
		out[i] = float32(v)
	}
	return out
}
