package domain

// SupportedMakes maps make names to their known models. This is the
// validation vocabulary for queries, not the model's fit-time vocabulary:
// a make can be valid here and still be unseen by a fitted preprocessor.
var SupportedMakes = map[string][]string{
	"Toyota":     {"Camry", "Corolla", "RAV4", "Highlander", "Tacoma", "Prius", "4Runner"},
	"Honda":      {"Civic", "Accord", "CR-V", "Pilot", "Odyssey", "HR-V", "Ridgeline"},
	"Ford":       {"F-150", "Mustang", "Explorer", "Escape", "Ranger", "Edge", "Fusion", "Focus"},
	"Chevrolet":  {"Silverado", "Equinox", "Malibu", "Traverse", "Tahoe", "Colorado", "Camaro"},
	"BMW":        {"3 Series", "5 Series", "7 Series", "X3", "X5", "X7", "i4"},
	"Audi":       {"A3", "A4", "A6", "Q3", "Q5", "Q7", "e-tron"},
	"Nissan":     {"Altima", "Sentra", "Rogue", "Pathfinder", "Frontier", "Maxima", "Leaf"},
	"Hyundai":    {"Elantra", "Sonata", "Tucson", "Santa Fe", "Kona", "Palisade"},
	"Kia":        {"Forte", "K5", "Sportage", "Telluride", "Sorento", "Soul", "EV6"},
	"Volkswagen": {"Golf", "Jetta", "Tiguan", "Atlas", "ID.4", "Passat"},
	"Subaru":     {"Outback", "Forester", "Crosstrek", "Impreza", "WRX", "Legacy", "Ascent"},
	"Mazda":      {"Mazda3", "Mazda6", "CX-5", "CX-9", "CX-30"},
	"Jeep":       {"Wrangler", "Grand Cherokee", "Cherokee", "Compass", "Gladiator"},
	"Tesla":      {"Model 3", "Model Y", "Model S", "Model X"},
	"Lexus":      {"ES", "IS", "RX", "NX", "GX", "UX"},
}

// MinModelYear is the earliest model year we accept.
const MinModelYear = 1980

// MaxModelYear is the latest model year we accept (current + 1 for next-year models).
const MaxModelYear = 2027
