package constants

import (
	"strings"
)

type Jurisdiction string

const (
	NewYorkCity  Jurisdiction = "New York City, NY"
	LosAngeles   Jurisdiction = "Los Angeles, CA"
	SanFrancisco Jurisdiction = "San Francisco, CA"
	Boston       Jurisdiction = "Boston, MA"
	WashingtonDC Jurisdiction = "Washington, D.C."
)

var allJurisdictions = []Jurisdiction{
	NewYorkCity,
	LosAngeles,
	SanFrancisco,
	Boston,
	WashingtonDC,
}

// Jurisdictions returns the supported jurisdictions in display order.
func Jurisdictions() []Jurisdiction {
	out := make([]Jurisdiction, len(allJurisdictions))
	copy(out, allJurisdictions)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allJurisdictions))
	for i, j := range allJurisdictions {
		result[i] = string(j)
	}
	return result
}

// Canonicalize maps free-form user input to a supported jurisdiction.
func Canonicalize(input string) (Jurisdiction, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	// synonyms map
	synonyms := map[string]Jurisdiction{
		"nyc":                  NewYorkCity,
		"new york":             NewYorkCity,
		"new york city":        NewYorkCity,
		"new york, ny":         NewYorkCity,
		"la":                   LosAngeles,
		"los angeles":          LosAngeles,
		"sf":                   SanFrancisco,
		"san francisco":        SanFrancisco,
		"boston":               Boston,
		"dc":                   WashingtonDC,
		"d.c.":                 WashingtonDC,
		"washington":           WashingtonDC,
		"washington dc":        WashingtonDC,
		"washington, dc":       WashingtonDC,
		"district of columbia": WashingtonDC,
	}

	if j, ok := synonyms[normalized]; ok {
		return j, true
	}

	for _, j := range allJurisdictions {
		if normalized == strings.ToLower(string(j)) {
			return j, true
		}
	}

	return "", false
}

// Slug is the file stem used for the jurisdiction's template, e.g. "new-york-city".
func (j Jurisdiction) Slug() string {
	name := string(j)
	if i := strings.IndexByte(name, ','); i >= 0 {
		name = name[:i]
	}
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(".", "", " ", "-").Replace(name)
	return name
}
