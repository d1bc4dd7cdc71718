package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const minComplaintLength = 5

// ValidateVehicle checks make, model, and year against the supported vocabulary.
func ValidateVehicle(v Vehicle) error {
	models, ok := SupportedMakes[v.Make]
	if !ok {
		return NewFieldError("make", v.Make, ErrUnsupportedMake)
	}

	found := false
	for _, m := range models {
		if strings.EqualFold(m, v.Model) {
			found = true
			break
		}
	}
	if !found {
		return NewFieldError("model", v.Model, ErrUnsupportedModel)
	}

	if v.Year < MinModelYear || v.Year > MaxModelYear {
		return NewFieldError("year", strconv.Itoa(v.Year), ErrYearOutOfRange)
	}
	return nil
}

// ValidateComplaint checks that a complaint carries usable text and, when a
// category is set, that the category is recognised.
func ValidateComplaint(c Complaint) error {
	text := strings.TrimSpace(c.Text)
	if utf8.RuneCountInString(text) < minComplaintLength {
		return NewFieldError("text", text, ErrEmptyComplaint)
	}
	if c.Category != "" && !ValidSymptomCategories[SymptomCategory(c.Category)] {
		return NewFieldError("category", c.Category, ErrInvalidVehicle)
	}
	return nil
}

// ValidateRecord checks a dataset row for plausibility. Rows failing
// validation are dropped before training rather than imputed.
func ValidateRecord(r VehicleRecord) error {
	if r.Make == "" {
		return NewFieldError("make", "", ErrUnsupportedMake)
	}
	if r.Model == "" {
		return NewFieldError("model", "", ErrUnsupportedModel)
	}
	if r.Year < MinModelYear || r.Year > MaxModelYear {
		return NewFieldError("year", strconv.Itoa(r.Year), ErrYearOutOfRange)
	}
	if r.Mileage < 0 || r.AvgTripLengthMiles < 0 {
		return NewFieldError("mileage", strconv.FormatFloat(r.Mileage, 'f', -1, 64), ErrInvalidVehicle)
	}
	return nil
}
