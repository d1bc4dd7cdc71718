// Package nlp provides lightweight complaint-text analysis: tokenization,
// lexicon sentiment scoring, frequent-term mining, and vehicle extraction.
// Everything here is deterministic and lexicon/rule based; there are no
// learned parameters and no network calls.
package nlp

import (
	"strings"
	"unicode"
)

// stopWords is the filter list applied before counting terms. Kept small and
// domain-neutral; vehicle words like "engine" are signal, not noise.
var stopWords = map[string]bool{
	"a": true, "about": true, "after": true, "an": true, "and": true,
	"around": true, "as": true, "at": true, "be": true, "by": true,
	"during": true, "felt": true, "for": true, "from": true, "has": true,
	"have": true, "in": true, "include": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "owner": true,
	"reported": true, "that": true, "the": true, "this": true, "to": true,
	"was": true, "were": true, "with": true,
}

// Tokenize lowercases text and splits it into alphanumeric tokens.
// Punctuation is dropped; hyphenated terms split into their parts.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// ContentTokens tokenizes and removes stop words and bare numbers.
func ContentTokens(text string) []string {
	var out []string
	for _, tok := range Tokenize(text) {
		if stopWords[tok] || isNumeric(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Ngrams joins consecutive tokens into space-separated n-grams.
func Ngrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
