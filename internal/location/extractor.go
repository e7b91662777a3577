// Package location infers city/town names from free-text institution names and
// recognizes location intent in search queries. Everything here is heuristic
// and best-effort: lookups report a found/not-found bool instead of failing.
package location

import (
	"regexp"
	"sort"
	"strings"
)

// gazetteer lists the Maharashtra cities and district towns that show up in
// CAP-round college names. Coverage, not completeness, is the goal; names
// missing here still surface through the plausible-token fallback.
var gazetteer = []string{
	"Mumbai", "Pune", "Nagpur", "Aurangabad", "Nashik", "Solapur", "Amravati", "Kolhapur",
	"Sangli", "Nanded", "Jalgaon", "Akola", "Latur", "Ahmednagar", "Chandrapur", "Parbhani",
	"Ichalkaranji", "Jalna", "Bhusawal", "Panvel", "Satara", "Beed", "Yavatmal", "Kamptee",
	"Gondia", "Barshi", "Achalpur", "Osmanabad", "Nandurbar", "Wardha", "Udgir", "Hinganghat",
	"Washim", "Dharashiv", "Ratnagiri", "Sindhudurg", "Raigad", "Thane", "Palghar", "Dhule",
	"Buldhana", "Bhandara", "Gadchiroli", "Hingoli",
}

// queryPatterns spot location intent in English queries ("in X", "near X",
// "X area", "colleges in X"). The capture group is the location token.
var queryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)college?s?\s+in\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)`),
	regexp.MustCompile(`(?i)\bin\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)`),
	regexp.MustCompile(`(?i)\bnear\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)`),
	regexp.MustCompile(`(?i)([A-Za-z]+(?:\s+[A-Za-z]+)?)\s+area\b`),
	regexp.MustCompile(`(?i)([A-Za-z]+(?:\s+[A-Za-z]+)?)\s+college`),
}

// matchGazetteer finds a gazetteer entry that equals, contains, or is
// contained by the token, case-insensitively.
func matchGazetteer(token string) (string, bool) {
	lower := strings.ToLower(token)
	if lower == "" {
		return "", false
	}
	for _, city := range gazetteer {
		cityLower := strings.ToLower(city)
		if lower == cityLower || strings.Contains(lower, cityLower) || strings.Contains(cityLower, lower) {
			return city, true
		}
	}
	return "", false
}

// Extract infers the location embedded in a college name. The last
// comma-delimited segment is the usual spot ("Government College of
// Engineering, Amravati"); failing that, any gazetteer entry anywhere in the
// name counts.
func Extract(collegeName string) (string, bool) {
	if collegeName == "" {
		return "", false
	}

	parts := strings.Split(collegeName, ",")
	if len(parts) > 1 {
		last := strings.TrimSpace(parts[len(parts)-1])
		if city, ok := matchGazetteer(last); ok {
			return city, true
		}
		// Unvalidated guess: a short trailing segment is usually a town name,
		// unless it is the university half of the institution title.
		if len(last) > 2 && len(last) < 30 && !strings.Contains(strings.ToLower(last), "university") {
			return last, true
		}
	}

	nameLower := strings.ToLower(collegeName)
	for _, city := range gazetteer {
		if strings.Contains(nameLower, strings.ToLower(city)) {
			return city, true
		}
	}

	return "", false
}

// ExtractAll collects the sorted distinct locations found in a list of
// college names. Names with no detectable location are skipped.
func ExtractAll(collegeNames []string) []string {
	seen := make(map[string]bool)
	var locations []string
	for _, name := range collegeNames {
		loc, ok := Extract(name)
		if !ok || seen[loc] {
			continue
		}
		seen[loc] = true
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	return locations
}

// IsLocationQuery reports whether a search query is asking about a place
// rather than a college or course name. A bare gazetteer city name counts as
// location intent; see the package docs for the known ambiguity with colleges
// literally named after a city.
func IsLocationQuery(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false
	}
	for _, pattern := range queryPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	_, ok := matchGazetteer(trimmed)
	return ok
}

// FromQuery pulls the location token out of a search query. Gazetteer matches
// are preferred; an unrecognized capture longer than two characters is still
// returned so that village names outside the gazetteer keep working.
func FromQuery(query string) (string, bool) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", false
	}

	for _, pattern := range queryPatterns {
		m := pattern.FindStringSubmatch(trimmed)
		if m == nil || m[1] == "" {
			continue
		}
		token := strings.TrimSpace(m[1])
		if city, ok := matchGazetteer(token); ok {
			return city, true
		}
		if len(token) > 2 {
			return token, true
		}
	}

	lower := strings.ToLower(trimmed)
	for _, city := range gazetteer {
		if lower == strings.ToLower(city) {
			return city, true
		}
	}

	return "", false
}

// Matches reports whether a record's inferred location satisfies a query
// location, using the bidirectional substring rule shared by the query engine
// and the recommender. collegeName is the raw-substring fallback for records
// with no inferred location.
func Matches(collegeName, queryLocation string) bool {
	queryLower := strings.ToLower(queryLocation)
	if loc, ok := Extract(collegeName); ok {
		locLower := strings.ToLower(loc)
		if strings.Contains(locLower, queryLower) || strings.Contains(queryLower, locLower) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(collegeName), queryLower)
}
