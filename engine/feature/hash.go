package feature

import (
	"hash/fnv"
	"strconv"
)

// SchemaHash fingerprints the fitted feature schema: the feature groups, the
// encoding policy, and the width of every encoded block. The artifact layer
// embeds it so a predictor fails fast on an artifact produced under a
// different schema instead of silently misaligning columns.
func (s *State) SchemaHash() uint64 {
	h := fnv.New64a()
	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}

	write("numeric")
	write(s.Config.NumericFeatures...)
	write("categorical")
	for _, name := range s.Config.CategoricalFeatures {
		write(name, strconv.Itoa(len(s.Categories[name])))
	}
	write("text", strconv.Itoa(len(s.TextVocab)))
	write("unseen", string(s.Config.Unseen))
	write("refyear", strconv.Itoa(s.Config.ReferenceYear))
	return h.Sum64()
}
