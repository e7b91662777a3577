// Package category decodes reservation-category codes from CAP-round cutoff
// tables (GOPENH, LOBCS, ...) into canonical names. Decoding is a pure lookup:
// it never fails, unknown codes degrade to a best-effort result.
package category

import (
	"regexp"
	"sort"
	"strings"
)

// Class describes how a code was decoded.
type Class string

const (
	ClassGeneral  Class = "general"
	ClassLocal    Class = "local"
	ClassSpecial  Class = "special"
	ClassReserved Class = "reserved"
)

// Info is the decoded identity of a raw category code. Two raw codes with the
// same NormalizedName are equivalent for display grouping, but the underlying
// records are never merged.
type Info struct {
	NormalizedName string `json:"normalizedName"`
	FullName       string `json:"fullName"`
	Description    string `json:"description"`
	Class          Class  `json:"class"`
}

// specialCodes are standalone codes that bypass prefix/suffix decoding.
// Matched case-insensitively; PWD and DEF also match as prefixes.
var specialCodes = map[string]Info{
	"EWS":    {NormalizedName: "EWS", FullName: "Economically Weaker Section", Description: "Economically Weaker Section - 10% reservation", Class: ClassSpecial},
	"TFWS":   {NormalizedName: "TFWS", FullName: "Tuition Fee Waiver Scheme", Description: "Tuition Fee Waiver Scheme - for economically backward students", Class: ClassSpecial},
	"PWD":    {NormalizedName: "PWD", FullName: "Persons with Disabilities", Description: "Reservation for Persons with Disabilities", Class: ClassSpecial},
	"ORPHAN": {NormalizedName: "ORPHAN", FullName: "Orphan", Description: "Reservation for orphan students", Class: ClassSpecial},
	"DEF":    {NormalizedName: "DEF", FullName: "Defense", Description: "Defense category reservation", Class: ClassSpecial},
}

// specialPrefixes may carry trailing sub-codes (PWDOPENH, DEFOBCS, ...).
var specialPrefixes = []string{"PWD", "DEF"}

// passThroughCodes are kept verbatim.
var passThroughCodes = map[string]bool{"CAP": true, "III": true}

// baseRule maps a substring of the code to a base reservation category. Rules
// are tried in order and the first match wins; order matters because several
// codes textually contain more than one candidate token (GSEBCH would match a
// bare SC rule placed too early, NT sub-codes must beat plain NT).
type baseRule struct {
	match *regexp.Regexp // presence test
	strip *regexp.Regexp // token removal when computing the suffix
	name  string
}

var baseRules = []baseRule{
	{regexp.MustCompile(`NT-?B`), regexp.MustCompile(`NT[ABCD-]?`), "NT-B"},
	{regexp.MustCompile(`NT-?D`), regexp.MustCompile(`NT[ABCD-]?`), "NT-D"},
	{regexp.MustCompile(`NT-?A`), regexp.MustCompile(`NT[ABCD-]?`), "NT-A"},
	{regexp.MustCompile(`NT-?C`), regexp.MustCompile(`NT[ABCD-]?`), "NT-C"},
	{regexp.MustCompile(`NT`), regexp.MustCompile(`NT[ABCD-]?`), "NT"},
	{regexp.MustCompile(`OPEN`), regexp.MustCompile(`OPEN`), "OPEN"},
	{regexp.MustCompile(`OBC`), regexp.MustCompile(`OBC`), "OBC"},
	{regexp.MustCompile(`SC`), regexp.MustCompile(`SC`), "SC"},
	{regexp.MustCompile(`ST`), regexp.MustCompile(`ST`), "ST"},
	{regexp.MustCompile(`VJ`), regexp.MustCompile(`VJ`), "VJ"},
	{regexp.MustCompile(`DT`), regexp.MustCompile(`DT`), "DT"},
	{regexp.MustCompile(`SE?BC`), regexp.MustCompile(`SE?BC`), "SEBC"},
}

var descriptions = map[string]string{
	"OPEN": "Open category - No reservation",
	"OBC":  "Other Backward Class - 27% reservation",
	"SC":   "Scheduled Caste - 15% reservation",
	"ST":   "Scheduled Tribe - 7.5% reservation",
	"NT":   "Nomadic Tribes - includes NT-A, NT-B, NT-C, NT-D",
	"NT-A": "Nomadic Tribes - Type A",
	"NT-B": "Nomadic Tribes - Type B",
	"NT-C": "Nomadic Tribes - Type C",
	"NT-D": "Nomadic Tribes - Type D",
	"VJ":   "Vimukta Jati - De-notified tribes",
	"DT":   "Denotified Tribes",
	"SEBC": "Socially and Economically Backward Class",
}

// suffixAnnotations decorate the full name from the leftover suffix. At most
// one applies, first match wins.
var suffixAnnotations = []struct {
	letter string
	label  string
}{
	{"H", " (Home University)"},
	{"O", " (Other University)"},
	{"S", " (State Level)"},
}

// Normalize decodes a raw category code. It is total: any input, including the
// empty string, yields a usable Info.
func Normalize(code string) Info {
	if strings.TrimSpace(code) == "" {
		return Info{NormalizedName: "Unknown", FullName: "Unknown Category", Description: "Unknown category", Class: ClassSpecial}
	}

	upper := strings.ToUpper(strings.TrimSpace(code))

	if info, ok := specialCodes[upper]; ok {
		return info
	}
	for _, prefix := range specialPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return specialCodes[prefix]
		}
	}
	if passThroughCodes[upper] {
		return Info{NormalizedName: upper, FullName: upper, Description: "Category code: " + upper, Class: ClassSpecial}
	}

	// Leading G/L marks General/Local scope. Informational only: the base
	// category is the same either way.
	isGeneral := strings.HasPrefix(upper, "G")
	isLocal := strings.HasPrefix(upper, "L")

	base := ""
	suffix := ""
	for _, rule := range baseRules {
		if !rule.match.MatchString(upper) {
			continue
		}
		base = rule.name
		suffix = stripScope(upper)
		suffix = rule.strip.ReplaceAllString(suffix, "")
		break
	}

	if base == "" {
		// No known token: keep the remainder after the scope prefix so the
		// caller still gets something displayable.
		if stripped := stripScope(upper); stripped != "" {
			base = stripped
		} else {
			base = upper
		}
	}

	fullName := base
	if isGeneral {
		fullName = "General " + base
	} else if isLocal {
		fullName = "Local " + base
	}
	for _, ann := range suffixAnnotations {
		if strings.Contains(suffix, ann.letter) {
			fullName += ann.label
			break
		}
	}

	desc, ok := descriptions[base]
	if !ok {
		desc = base + " category"
	}

	class := ClassReserved
	if isLocal {
		class = ClassLocal
	} else if isGeneral {
		class = ClassGeneral
	}

	return Info{NormalizedName: base, FullName: fullName, Description: desc, Class: class}
}

func stripScope(code string) string {
	if strings.HasPrefix(code, "G") || strings.HasPrefix(code, "L") {
		return code[1:]
	}
	return code
}

// DisplayName is the short normalized name for UI labels.
func DisplayName(code string) string {
	return Normalize(code).NormalizedName
}

// GroupByNormalizedName buckets raw codes by their decoded identity. Every
// input code lands in exactly one bucket; originals are preserved in input
// order, duplicates included.
func GroupByNormalizedName(codes []string) map[string][]string {
	grouped := make(map[string][]string)
	for _, code := range codes {
		name := Normalize(code).NormalizedName
		grouped[name] = append(grouped[name], code)
	}
	return grouped
}

// NormalizedNames returns the sorted distinct decoded names for a code list.
func NormalizedNames(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	var names []string
	for _, code := range codes {
		name := Normalize(code).NormalizedName
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
