package event

import "regexp"

// stateNames maps every Australian state and territory abbreviation to its
// full name. Venue addresses on MySideline use either form.
var stateNames = map[string]string{
	"NSW": "New South Wales",
	"QLD": "Queensland",
	"VIC": "Victoria",
	"WA":  "Western Australia",
	"SA":  "South Australia",
	"TAS": "Tasmania",
	"ACT": "Australian Capital Territory",
	"NT":  "Northern Territory",
}

// stateOrder fixes the lookup order so DeriveState is deterministic.
var stateOrder = []string{"NSW", "QLD", "VIC", "WA", "SA", "TAS", "ACT", "NT"}

var statePatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(stateNames))
	for abbr, full := range stateNames {
		// Abbreviations match as whole uppercase words; full names are
		// case-insensitive. "WA" must not fire inside "Wagga", nor
		// "act" inside "Contact".
		patterns[abbr] = regexp.MustCompile(`\b` + abbr + `\b|(?i)\b` + full + `\b`)
	}
	return patterns
}()

// DeriveState extracts the Australian state from a venue address.
// Returns the full state name, or "" when no state is mentioned.
func DeriveState(address string) string {
	if address == "" {
		return ""
	}
	for _, abbr := range stateOrder {
		if statePatterns[abbr].MatchString(address) {
			return stateNames[abbr]
		}
	}
	return ""
}

// StateName returns the full name for a state abbreviation, or the input
// unchanged when it is not a known abbreviation.
func StateName(abbr string) string {
	if full, ok := stateNames[abbr]; ok {
		return full
	}
	return abbr
}

// StateAbbreviation maps a full state name back to its abbreviation.
// Returns the input unchanged when it is not a known full name, so stored
// three-letter codes pass through.
func StateAbbreviation(name string) string {
	for abbr, full := range stateNames {
		if full == name || abbr == name {
			return abbr
		}
	}
	return name
}
