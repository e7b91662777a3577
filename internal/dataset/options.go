package dataset

import (
	"sort"

	"github.com/arjun/cutoff-finder/internal/location"
	"github.com/arjun/cutoff-finder/internal/models"
)

// Options returns the distinct-value facets of a dataset, memoized with the
// record cache: a reload or an Invalidate recomputes them, nothing else does.
// Facets are derived from the valid-record subset so placeholder rows never
// surface filter values.
func (s *Store) Options(examID string) (*models.FilterOptions, error) {
	// Load first so the cache entry the options attach to is current.
	if _, err := s.Load(examID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[examID]
	if !ok {
		// Invalidated between Load and here; serve freshly derived options
		// without caching them.
		return &models.FilterOptions{}, nil
	}
	if e.options == nil {
		valid := make([]models.CutoffRecord, 0, len(e.records))
		for _, r := range e.records {
			if r.Valid() {
				valid = append(valid, r)
			}
		}
		e.options = DeriveOptions(valid)
	}
	return e.options, nil
}

// DeriveOptions computes filter facets from a record list: distinct colleges
// and courses keeping the first-seen name per code, and sorted distinct
// category codes, seat types, and inferred locations.
func DeriveOptions(records []models.CutoffRecord) *models.FilterOptions {
	opts := &models.FilterOptions{}

	collegeSeen := make(map[string]bool)
	courseSeen := make(map[string]bool)
	categorySeen := make(map[string]bool)
	seatTypeSeen := make(map[string]bool)

	collegeNames := make([]string, 0, len(records))
	for _, r := range records {
		if r.CollegeCode != "" && !collegeSeen[r.CollegeCode] {
			collegeSeen[r.CollegeCode] = true
			opts.Colleges = append(opts.Colleges, models.CodeName{Code: r.CollegeCode, Name: r.CollegeName})
		}
		if r.CourseCode != "" && !courseSeen[r.CourseCode] {
			courseSeen[r.CourseCode] = true
			opts.Courses = append(opts.Courses, models.CodeName{Code: r.CourseCode, Name: r.CourseName})
		}
		if r.Category != "" && !categorySeen[r.Category] {
			categorySeen[r.Category] = true
			opts.Categories = append(opts.Categories, r.Category)
		}
		if r.SeatType != "" && !seatTypeSeen[r.SeatType] {
			seatTypeSeen[r.SeatType] = true
			opts.SeatTypes = append(opts.SeatTypes, r.SeatType)
		}
		collegeNames = append(collegeNames, r.CollegeName)
	}

	sort.Strings(opts.Categories)
	sort.Strings(opts.SeatTypes)
	opts.Locations = location.ExtractAll(collegeNames)

	return opts
}
