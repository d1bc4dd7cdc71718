package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/RelioAI/relio-mvp/engine/domain"
)

// Synthetic complaint vocabulary. The generated narratives deliberately reuse
// the sentiment lexicon so the text analyzer has signal to find.
var (
	synthMakes = []string{"Toyota", "Honda", "Ford", "Chevrolet", "Tesla", "BMW", "Subaru", "Hyundai"}

	synthModels = map[string][]string{
		"Toyota":    {"Camry", "Corolla", "RAV4"},
		"Honda":     {"Civic", "Accord", "CR-V"},
		"Ford":      {"F-150", "Escape", "Fusion"},
		"Chevrolet": {"Silverado", "Equinox", "Malibu"},
		"Tesla":     {"Model 3", "Model S", "Model Y"},
		"BMW":       {"3 Series", "5 Series", "X3"},
		"Subaru":    {"Outback", "Forester", "Impreza"},
		"Hyundai":   {"Elantra", "Sonata", "Tucson"},
	}

	synthIssues = []string{
		"transmission failure", "engine stalling", "battery degradation",
		"electrical system glitch", "brake wear", "suspension noise",
		"infotainment crash", "air conditioning fault",
	}

	synthImpacts = []string{
		"sudden shutdown", "reduced acceleration", "loss of power steering",
		"dashboard malfunction", "increased stopping distance", "warning chimes",
	}

	synthContexts = []string{"highway", "city", "winter", "summer road trip", "daily commute"}

	synthMaintenance = []string{
		"oil change", "brake pad replacement", "software update",
		"battery inspection", "tire rotation",
	}

	synthPositive = []string{"reliable", "smooth", "satisfied", "comfortable", "quiet"}
	synthNegative = []string{"frustrating", "disappointed", "unsafe", "annoying", "expensive"}
)

// Generate produces n synthetic reliability records. The same seed yields the
// same dataset. The risk label is drawn from a factor combining mileage,
// maintenance events, past failures, and severity.
func Generate(n int, seed int64) []domain.VehicleRecord {
	rng := rand.New(rand.NewSource(seed))
	records := make([]domain.VehicleRecord, 0, n)

	for i := 0; i < n; i++ {
		make_ := synthMakes[rng.Intn(len(synthMakes))]
		models := synthModels[make_]
		model := models[rng.Intn(len(models))]
		year := 2010 + rng.Intn(13)

		mileage := math.Floor(boundedNormal(rng, 60000, 15000, 10000, 200000))
		avgTrip := round1(boundedNormal(rng, 18, 6, 5, 60))
		maintEvents := poisson(rng, 2)
		pastFailures := poisson(rng, 1)
		severity := round2(boundedNormal(rng, 3.5, 1.7, 0, 10))
		maintCost := round2(boundedNormal(rng, 650, 220, 120, 2400))
		fuelCost := round2(boundedNormal(rng, 1200, 300, 320, 3600))

		issue := synthIssues[rng.Intn(len(synthIssues))]
		impact := synthImpacts[rng.Intn(len(synthImpacts))]
		context := synthContexts[rng.Intn(len(synthContexts))]
		maintenance := synthMaintenance[rng.Intn(len(synthMaintenance))]

		riskFactor := 0.3*(mileage/100000) +
			0.25*(float64(maintEvents)/5) +
			0.2*(float64(pastFailures)/3) +
			0.25*(severity/10)
		probability := math.Min(math.Max(riskFactor, 0.05), 0.9)
		label := 0.0
		if rng.Float64() < probability {
			label = 1.0
		}

		records = append(records, domain.VehicleRecord{
			Make:                    make_,
			Model:                   model,
			Year:                    year,
			Mileage:                 mileage,
			AvgTripLengthMiles:      avgTrip,
			MaintenanceEvents:       maintEvents,
			PastFailures:            pastFailures,
			SeverityScore:           severity,
			MaintenanceCostLastYear: maintCost,
			FuelCostLastYear:        fuelCost,
			ComplaintText:           complaintText(rng, year, make_, model, issue, impact, context, maintenance, mileage),
			MaintenanceAction:       maintenance,
			HasMechanicalIssue:      label,
		})
	}
	return records
}

func complaintText(rng *rand.Rand, year int, make_, model, issue, impact, context, maintenance string, mileage float64) string {
	vehicle := fmt.Sprintf("%d %s %s", year, make_, model)
	templates := []string{
		fmt.Sprintf("%s experienced %s around %.0f miles causing %s", vehicle, issue, mileage, impact),
		fmt.Sprintf("%s owner reported %s leading to %s during %s driving", vehicle, issue, impact, context),
		fmt.Sprintf("Complaints about %s include %s and %s after %s", vehicle, issue, impact, maintenance),
		fmt.Sprintf("%s suffers from %s with %s warning lights at %.0f mileage", vehicle, issue, impact, mileage),
	}
	body := templates[rng.Intn(len(templates))]

	var adjectives []string
	if rng.Float64() < 0.6 {
		adjectives = append(adjectives, synthNegative[rng.Intn(len(synthNegative))])
	}
	if rng.Float64() < 0.4 {
		adjectives = append(adjectives, synthPositive[rng.Intn(len(synthPositive))])
	}
	feeling := "average"
	if len(adjectives) > 0 {
		feeling = strings.Join(adjectives, " and ")
	}
	return fmt.Sprintf("%s. Owner felt %s after %s.", body, feeling, maintenance)
}

// boundedNormal draws from N(mu, sigma) clamped into [lo, hi].
func boundedNormal(rng *rand.Rand, mu, sigma, lo, hi float64) float64 {
	v := rng.NormFloat64()*sigma + mu
	return math.Min(math.Max(v, lo), hi)
}

// poisson draws by inverse CDF via the Knuth multiplication method.
func poisson(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for p > l {
		k++
		p *= rng.Float64()
	}
	return k - 1
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
