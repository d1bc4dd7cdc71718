package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/RelioAI/relio-mvp/engine/domain"
)

var yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

// ExtractVehicle finds the first make/model/year mention in free text,
// matched against the supported-makes table. Model matching tries longer
// model names first so "Grand Cherokee" wins over "Cherokee". Returns false
// when no supported make is mentioned.
func ExtractVehicle(text string) (domain.Vehicle, bool) {
	if text == "" {
		return domain.Vehicle{}, false
	}
	lower := strings.ToLower(text)

	bestIdx := -1
	var v domain.Vehicle
	for make_, models := range domain.SupportedMakes {
		idx := indexWord(lower, strings.ToLower(make_))
		if idx < 0 || (bestIdx >= 0 && idx >= bestIdx) {
			continue
		}
		bestIdx = idx
		v = domain.Vehicle{Make: make_, Model: findModel(lower[idx:], models)}
	}
	if bestIdx < 0 {
		return domain.Vehicle{}, false
	}

	if m := yearRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		if year >= domain.MinModelYear && year <= domain.MaxModelYear {
			v.Year = year
		}
	}
	return v, true
}

// findModel returns the longest model of the make that appears after the make
// mention, or "" when none does.
func findModel(after string, models []string) string {
	best := ""
	for _, m := range models {
		ml := strings.ToLower(m)
		if indexWord(after, ml) >= 0 && len(m) > len(best) {
			best = m
		}
	}
	return best
}

// indexWord finds needle in haystack at a word boundary, or -1.
func indexWord(haystack, needle string) int {
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		idx += from
		end := idx + len(needle)
		startOK := idx == 0 || !isWordByte(haystack[idx-1])
		endOK := end == len(haystack) || !isWordByte(haystack[end])
		if startOK && endOK {
			return idx
		}
		from = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z'
}
