package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arjun/cutoff-finder/internal/category"
	"github.com/arjun/cutoff-finder/internal/dataset"
	"github.com/arjun/cutoff-finder/internal/location"
	"github.com/arjun/cutoff-finder/internal/models"
)

const (
	// SafetyMargin is the minimum gap between the target percentile and a
	// cutoff for the option to count as safe.
	SafetyMargin = 5.0

	maxTopCandidates    = 15
	maxSafetyCandidates = 10
	maxCourseVocabulary = 20
)

// courseAliases expands informal course hints into the terms that actually
// appear in course names. First matching alias group wins.
var courseAliases = map[string][]string{
	"cs":               {"computer science", "computer engineering", "cs", "cse", "computer"},
	"computer":         {"computer science", "computer engineering", "cs", "cse", "computer"},
	"computer science": {"computer science", "computer engineering", "cs", "cse"},
	"it":               {"information technology", "it", "information tech"},
	"ece":              {"electronics", "ece", "electronics and communication"},
	"mechanical":       {"mechanical", "mechanical engineering"},
	"civil":            {"civil", "civil engineering"},
	"electrical":       {"electrical", "electrical engineering"},
	"mba":              {"mba", "master of business", "management"},
	"mca":              {"mca", "master of computer"},
	"pharmacy":         {"pharmacy", "pharm", "b.pharm"},
}

// Candidate is one admissible college/course/category option, decorated for
// the advice generator.
type Candidate struct {
	College             string  `json:"college"`
	Location            string  `json:"location,omitempty"`
	Course              string  `json:"course"`
	Category            string  `json:"category"`
	CategoryCode        string  `json:"categoryCode"`
	CategoryFullName    string  `json:"categoryFullName"`
	CategoryDescription string  `json:"categoryDescription,omitempty"`
	CutoffPercentile    float64 `json:"cutoffPercentile"`
	CutoffRank          int     `json:"cutoffRank"`
	SeatType            string  `json:"seatType"`
	Margin              float64 `json:"margin"`
}

// CandidateSummary is the structured context handed to the external advice
// generator: ranked candidates, the safety subset, and the vocabularies the
// generator may steer the user towards. The core produces no prose itself.
type CandidateSummary struct {
	TargetPercentile    float64     `json:"userPercentile"`
	TotalRecords        int         `json:"totalRecords"`
	RelevantOptions     int         `json:"relevantOptions"`
	TopCandidates       []Candidate `json:"topColleges"`
	SafetyOptions       []Candidate `json:"safetyOptions"`
	AvailableCategories []string    `json:"availableCategories"`
	AvailableCourses    []string    `json:"availableCourses"`
	AvailableLocations  []string    `json:"availableLocations"`
}

// Recommender filters and ranks admissible options for a target percentile.
type Recommender struct {
	store *dataset.Store
}

func NewRecommender(store *dataset.Store) *Recommender {
	return &Recommender{store: store}
}

// PrepareCandidates selects the records whose cutoff the target percentile
// clears, applies the optional hints, and ranks the result by percentile
// descending. Hints degrade gracefully: a course hint with no match keeps the
// unfiltered course set, an unmatchable category hint is ignored.
func (r *Recommender) PrepareCandidates(examID string, targetPercentile float64, courseHint, categoryHint, locationHint string) (*CandidateSummary, error) {
	if targetPercentile <= 0 || targetPercentile > 100 {
		return nil, fmt.Errorf("%w: percentile must be in (0,100], got %g", ErrInvalidArgument, targetPercentile)
	}

	valid, err := r.store.LoadValid(examID)
	if err != nil {
		return nil, err
	}

	admissible := make([]models.CutoffRecord, 0, len(valid))
	for _, rec := range valid {
		if rec.Percentile > 0 && rec.Percentile <= targetPercentile {
			admissible = append(admissible, rec)
		}
	}

	if locationHint != "" {
		admissible = filterByLocation(admissible, locationHint)
	}
	if courseHint != "" {
		admissible = filterByCourse(admissible, courseHint, courseNames(valid))
	}
	if categoryHint != "" {
		admissible = filterByCategory(admissible, categoryHint, categoryCodes(valid))
	}

	sort.SliceStable(admissible, func(i, j int) bool {
		return admissible[i].Percentile > admissible[j].Percentile
	})

	summary := &CandidateSummary{
		TargetPercentile:    targetPercentile,
		TotalRecords:        len(valid),
		RelevantOptions:     len(admissible),
		AvailableCategories: category.NormalizedNames(categoryCodes(valid)),
		AvailableCourses:    capped(courseNames(valid), maxCourseVocabulary),
		AvailableLocations:  location.ExtractAll(collegeNames(valid)),
	}

	for _, rec := range admissible {
		if len(summary.TopCandidates) >= maxTopCandidates {
			break
		}
		summary.TopCandidates = append(summary.TopCandidates, makeCandidate(rec, targetPercentile))
	}

	var safety []Candidate
	for _, rec := range admissible {
		if targetPercentile-rec.Percentile >= SafetyMargin {
			safety = append(safety, makeCandidate(rec, targetPercentile))
		}
	}
	sort.SliceStable(safety, func(i, j int) bool {
		return safety[i].Margin > safety[j].Margin
	})
	if len(safety) > maxSafetyCandidates {
		safety = safety[:maxSafetyCandidates]
	}
	summary.SafetyOptions = safety

	return summary, nil
}

func makeCandidate(rec models.CutoffRecord, target float64) Candidate {
	info := category.Normalize(rec.Category)
	c := Candidate{
		College:             rec.CollegeName,
		Course:              rec.CourseName,
		Category:            info.NormalizedName,
		CategoryCode:        rec.Category,
		CategoryFullName:    info.FullName,
		CategoryDescription: info.Description,
		CutoffPercentile:    rec.Percentile,
		CutoffRank:          rec.Rank,
		SeatType:            rec.SeatType,
		Margin:              target - rec.Percentile,
	}
	if loc, ok := location.Extract(rec.CollegeName); ok {
		c.Location = loc
	}
	return c
}

func filterByLocation(records []models.CutoffRecord, hint string) []models.CutoffRecord {
	out := make([]models.CutoffRecord, 0, len(records))
	for _, rec := range records {
		if location.Matches(rec.CollegeName, hint) {
			out = append(out, rec)
		}
	}
	return out
}

// filterByCourse expands the hint through the alias table, matches it against
// the available course names, and keeps records for the matched courses. No
// match at all leaves the course set unfiltered rather than returning zero
// candidates.
func filterByCourse(records []models.CutoffRecord, hint string, available []string) []models.CutoffRecord {
	terms := expandCourseHint(hint)

	matched := make(map[string]bool)
	for _, course := range available {
		courseLower := strings.ToLower(course)
		for _, term := range terms {
			if strings.Contains(courseLower, term) {
				matched[courseLower] = true
				break
			}
		}
	}
	if len(matched) == 0 {
		return records
	}

	out := make([]models.CutoffRecord, 0, len(records))
	for _, rec := range records {
		if matched[strings.ToLower(rec.CourseName)] {
			out = append(out, rec)
		}
	}
	return out
}

func expandCourseHint(hint string) []string {
	input := strings.ToLower(strings.TrimSpace(hint))
	terms := []string{input}
	for key, aliases := range courseAliases {
		expanded := strings.Contains(input, key)
		if !expanded {
			for _, a := range aliases {
				if strings.Contains(input, a) {
					expanded = true
					break
				}
			}
		}
		if expanded {
			terms = append(terms, aliases...)
			break
		}
	}
	return terms
}

// filterByCategory tries an exact match on the decoded or raw category name,
// then a bidirectional substring match. A hint matching nothing is dropped
// rather than emptying the candidate list.
func filterByCategory(records []models.CutoffRecord, hint string, available []string) []models.CutoffRecord {
	input := strings.ToLower(strings.TrimSpace(hint))

	matched := make(map[string]bool)
	for _, code := range available {
		normalized := strings.ToLower(category.DisplayName(code))
		if normalized == input || strings.ToLower(code) == input {
			matched[code] = true
		}
	}
	if len(matched) == 0 {
		for _, code := range available {
			normalized := strings.ToLower(category.DisplayName(code))
			if strings.Contains(normalized, input) || strings.Contains(input, normalized) {
				matched[code] = true
			}
		}
	}
	if len(matched) == 0 {
		return records
	}

	out := make([]models.CutoffRecord, 0, len(records))
	for _, rec := range records {
		if matched[rec.Category] {
			out = append(out, rec)
		}
	}
	return out
}

func courseNames(records []models.CutoffRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		if rec.CourseName != "" && !seen[rec.CourseName] {
			seen[rec.CourseName] = true
			out = append(out, rec.CourseName)
		}
	}
	return out
}

func categoryCodes(records []models.CutoffRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		if rec.Category != "" && !seen[rec.Category] {
			seen[rec.Category] = true
			out = append(out, rec.Category)
		}
	}
	return out
}

func collegeNames(records []models.CutoffRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.CollegeName)
	}
	return out
}

func capped(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
