package nlp

import (
	"strings"

	"github.com/RelioAI/relio-mvp/engine/domain"
)

// categoryKeywords maps symptom categories to trigger keywords. Checked in a
// fixed order so overlapping keywords resolve deterministically.
var categoryOrder = []domain.SymptomCategory{
	domain.SymptomTransmission,
	domain.SymptomBrakes,
	domain.SymptomSuspension,
	domain.SymptomCooling,
	domain.SymptomFuel,
	domain.SymptomInfotainment,
	domain.SymptomHVAC,
	domain.SymptomElectrical,
	domain.SymptomEngine,
}

var categoryKeywords = map[domain.SymptomCategory][]string{
	domain.SymptomTransmission: {"transmission", "gear", "shift", "clutch", "torque converter"},
	domain.SymptomBrakes:       {"brake", "stopping distance", "rotor", "caliper", "abs"},
	domain.SymptomSuspension:   {"suspension", "strut", "shock absorber", "steering", "alignment"},
	domain.SymptomCooling:      {"coolant", "overheat", "radiator", "thermostat"},
	domain.SymptomFuel:         {"fuel", "injector", "gas mileage", "mpg"},
	domain.SymptomInfotainment: {"infotainment", "screen", "bluetooth", "navigation", "radio"},
	domain.SymptomHVAC:         {"air conditioning", "heater", "hvac", "climate control"},
	domain.SymptomElectrical:   {"electrical", "battery", "wiring", "alternator", "warning light", "dashboard"},
	domain.SymptomEngine:       {"engine", "stall", "misfire", "oil", "shutdown", "acceleration"},
}

// Categorize tags complaint text with the first matching symptom category, or
// SymptomOther when nothing matches.
func Categorize(text string) domain.SymptomCategory {
	lower := strings.ToLower(text)
	for _, cat := range categoryOrder {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return domain.SymptomOther
}
