package nlp

// Sentiment lexicon for owner feedback. Matching is done on unique tokens, so
// repeating a word does not inflate its contribution.
var positiveWords = map[string]bool{
	"reliable": true, "smooth": true, "satisfied": true, "comfortable": true,
	"quiet": true, "refined": true, "responsive": true,
}

var negativeWords = map[string]bool{
	"frustrating": true, "disappointed": true, "unsafe": true, "annoying": true,
	"expensive": true, "noisy": true, "rough": true, "lag": true,
	"stall": true, "failure": true,
}

// SentimentScores holds lexicon hit counts and the bounded net polarity.
type SentimentScores struct {
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	// Net is (positive-negative)/(positive+negative), in [-1, 1].
	// Zero when no lexicon word matches, including empty input.
	Net float64 `json:"net"`
}

// Sentiment scores text polarity against the lexicon. Empty or non-text input
// returns the neutral zero value rather than an error.
func Sentiment(text string) SentimentScores {
	seen := make(map[string]bool)
	var pos, neg int
	for _, tok := range Tokenize(text) {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if positiveWords[tok] {
			pos++
		}
		if negativeWords[tok] {
			neg++
		}
	}

	var net float64
	if total := pos + neg; total > 0 {
		net = float64(pos-neg) / float64(total)
	}
	return SentimentScores{Positive: pos, Negative: neg, Net: net}
}
