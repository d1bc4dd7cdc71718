package predict

import "fmt"

const (
	baseIntervalMonths = 6
	minIntervalMonths  = 3
	urgentRiskCutoff   = 0.6
)

// Milestone is one entry in a recommended maintenance schedule.
type Milestone struct {
	Timeframe string `json:"timeframe"`
	Action    string `json:"action"`
}

// maintenanceTimeline builds a schedule whose check-in interval compresses as
// risk rises. Risk above the urgent cutoff prepends nothing but appends an
// immediate 30-day assessment.
func maintenanceTimeline(risk float64) []Milestone {
	r := risk
	if r < 0 {
		r = 0
	}
	if r > 0.95 {
		r = 0.95
	}
	interval := int(baseIntervalMonths * (1.0 - r*0.4))
	if interval < minIntervalMonths {
		interval = minIntervalMonths
	}

	milestones := []Milestone{
		{Timeframe: fmt.Sprintf("%d months", interval), Action: "Comprehensive inspection & fluid checks"},
		{Timeframe: fmt.Sprintf("%d months", interval*2), Action: "Predictive component diagnostics"},
		{Timeframe: fmt.Sprintf("%d months", interval*3), Action: "System software updates & alignment"},
	}
	if risk > urgentRiskCutoff {
		milestones = append(milestones, Milestone{
			Timeframe: "Next 30 days",
			Action:    "Schedule reliability assessment with specialist",
		})
	}
	return milestones
}
