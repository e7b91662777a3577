// Package query answers filtered, paginated questions about cutoff datasets:
// multi-dimensional record queries, side-by-side college comparison, and
// candidate preparation for the admission-advice generator.
package query

import (
	"errors"
	"strings"

	"github.com/arjun/cutoff-finder/internal/dataset"
	"github.com/arjun/cutoff-finder/internal/location"
	"github.com/arjun/cutoff-finder/internal/models"
)

// ErrInvalidArgument marks a malformed request, rejected before any data
// access.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultPageSize is used when the caller does not request one.
const DefaultPageSize = 50

// Criteria are the optional filters of a query, combined conjunctively.
// Percentile bounds are inclusive; nil means unbounded.
type Criteria struct {
	Search        string
	CourseCode    string
	CategoryCode  string
	SeatType      string
	MinPercentile *float64
	MaxPercentile *float64
}

// Result is one page of a filtered dataset plus the facet options of the full
// valid universe (facets ignore the active filters so the UI can always show
// every selectable value).
type Result struct {
	Records    []models.CutoffRecord `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"limit"`
	TotalPages int                   `json:"totalPages"`
	Options    *models.FilterOptions `json:"filters"`
}

// Engine runs filtered queries against the dataset store.
type Engine struct {
	store *dataset.Store
}

func NewEngine(store *dataset.Store) *Engine {
	return &Engine{store: store}
}

// Query filters a dataset and returns the requested 1-based page. A dataset
// with no source yields total = 0, not an error; a page past the end yields
// an empty slice.
func (e *Engine) Query(examID string, criteria Criteria, page, pageSize int) (*Result, error) {
	if page < 0 {
		return nil, ErrInvalidArgument
	}
	if page == 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	valid, err := e.store.LoadValid(examID)
	if err != nil {
		return nil, err
	}

	match := buildPredicate(criteria)
	filtered := make([]models.CutoffRecord, 0, len(valid))
	for _, r := range valid {
		if match(r) {
			filtered = append(filtered, r)
		}
	}

	options, err := e.store.Options(examID)
	if err != nil {
		return nil, err
	}

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Result{
		Records:    filtered[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Options:    options,
	}, nil
}

// buildPredicate compiles the criteria into a single per-record check.
// The search text is interpreted once: a location query compares inferred
// locations, anything else is a substring match on college or course name.
func buildPredicate(c Criteria) func(models.CutoffRecord) bool {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	queryLocation := ""
	if search != "" && location.IsLocationQuery(search) {
		if loc, ok := location.FromQuery(search); ok {
			queryLocation = loc
		}
	}

	return func(r models.CutoffRecord) bool {
		if search != "" {
			if queryLocation != "" {
				if !location.Matches(r.CollegeName, queryLocation) {
					return false
				}
			} else if !strings.Contains(strings.ToLower(r.CollegeName), search) &&
				!strings.Contains(strings.ToLower(r.CourseName), search) {
				return false
			}
		}
		if c.CourseCode != "" && r.CourseCode != c.CourseCode {
			return false
		}
		if c.CategoryCode != "" && r.Category != c.CategoryCode {
			return false
		}
		if c.SeatType != "" && r.SeatType != c.SeatType {
			return false
		}
		if c.MinPercentile != nil && r.Percentile < *c.MinPercentile {
			return false
		}
		if c.MaxPercentile != nil && r.Percentile > *c.MaxPercentile {
			return false
		}
		return true
	}
}
