package query

import (
	"fmt"
	"sort"

	"github.com/arjun/cutoff-finder/internal/category"
	"github.com/arjun/cutoff-finder/internal/dataset"
	"github.com/arjun/cutoff-finder/internal/location"
	"github.com/arjun/cutoff-finder/internal/models"
)

// MaxCompareColleges bounds a comparison request.
const MaxCompareColleges = 4

// SeatTypeCutoff is one seat type's cutoff within a category group.
type SeatTypeCutoff struct {
	SeatType   string  `json:"seatType"`
	Percentile float64 `json:"percentile"`
	Rank       int     `json:"rank"`
}

// CategoryComparison summarizes one category of one college: the best
// (highest-percentile) option and every seat-type cutoff behind it.
type CategoryComparison struct {
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	FullName       string           `json:"fullName"`
	BestPercentile float64          `json:"bestPercentile"`
	BestRank       int              `json:"bestRank"`
	BestSeatType   string           `json:"bestSeatType"`
	SeatTypes      []SeatTypeCutoff `json:"seatTypeData"`
	TotalOptions   int              `json:"totalOptions"`
}

// CollegeComparison is one college's side of a comparison.
type CollegeComparison struct {
	CollegeCode  string               `json:"collegeCode"`
	CollegeName  string               `json:"collegeName"`
	Location     string               `json:"location,omitempty"`
	Courses      []models.CodeName    `json:"courses"`
	Categories   []CategoryComparison `json:"categories"`
	TotalRecords int                  `json:"totalRecords"`
}

// CategoryLabel is a decoded category for the comparison legend.
type CategoryLabel struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
}

// Comparison is the side-by-side result for up to four colleges. Colleges
// with no matching records are omitted, so it may hold fewer entries than
// were requested.
type Comparison struct {
	Colleges      []CollegeComparison `json:"comparison"`
	AllCategories []CategoryLabel     `json:"allCategories"`
	AllSeatTypes  []string            `json:"allSeatTypes"`
}

// Comparator builds side-by-side college comparisons.
type Comparator struct {
	store *dataset.Store
}

func NewComparator(store *dataset.Store) *Comparator {
	return &Comparator{store: store}
}

// Compare groups each requested college's valid records by category and picks
// the best option per category. courseCode, when non-empty, restricts the
// comparison to one course. The college count is validated before any data
// access.
func (c *Comparator) Compare(examID string, collegeCodes []string, courseCode string) (*Comparison, error) {
	codes := dedupe(collegeCodes)
	if len(codes) == 0 || len(codes) > MaxCompareColleges {
		return nil, fmt.Errorf("%w: between 1 and %d colleges required, got %d", ErrInvalidArgument, MaxCompareColleges, len(codes))
	}

	valid, err := c.store.LoadValid(examID)
	if err != nil {
		return nil, err
	}

	result := &Comparison{}
	categorySeen := make(map[string]bool)
	seatTypeSeen := make(map[string]bool)

	for _, code := range codes {
		var collegeRecords []models.CutoffRecord
		for _, r := range valid {
			if r.CollegeCode != code {
				continue
			}
			if courseCode != "" && r.CourseCode != courseCode {
				continue
			}
			collegeRecords = append(collegeRecords, r)
		}
		if len(collegeRecords) == 0 {
			continue
		}

		college := CollegeComparison{
			CollegeCode:  code,
			CollegeName:  collegeRecords[0].CollegeName,
			Courses:      distinctCourses(collegeRecords),
			Categories:   groupCategories(collegeRecords),
			TotalRecords: len(collegeRecords),
		}
		if loc, ok := location.Extract(college.CollegeName); ok {
			college.Location = loc
		}
		result.Colleges = append(result.Colleges, college)

		for _, r := range collegeRecords {
			if !categorySeen[r.Category] {
				categorySeen[r.Category] = true
				info := category.Normalize(r.Category)
				result.AllCategories = append(result.AllCategories, CategoryLabel{
					Code:     r.Category,
					Name:     info.NormalizedName,
					FullName: info.FullName,
				})
			}
			if r.SeatType != "" && !seatTypeSeen[r.SeatType] {
				seatTypeSeen[r.SeatType] = true
				result.AllSeatTypes = append(result.AllSeatTypes, r.SeatType)
			}
		}
	}

	sort.Strings(result.AllSeatTypes)
	return result, nil
}

// groupCategories buckets records by raw category code and reduces each
// bucket to its best option. The reduction is stable: on equal percentiles
// the earlier record keeps priority. Categories come back sorted by
// descending best percentile, most competitive first.
func groupCategories(records []models.CutoffRecord) []CategoryComparison {
	var order []string
	buckets := make(map[string][]models.CutoffRecord)
	for _, r := range records {
		if _, ok := buckets[r.Category]; !ok {
			order = append(order, r.Category)
		}
		buckets[r.Category] = append(buckets[r.Category], r)
	}

	comparisons := make([]CategoryComparison, 0, len(order))
	for _, code := range order {
		group := buckets[code]
		best := group[0]
		for _, r := range group[1:] {
			if r.Percentile > best.Percentile {
				best = r
			}
		}

		seatTypes := make([]SeatTypeCutoff, 0, len(group))
		for _, r := range group {
			seatTypes = append(seatTypes, SeatTypeCutoff{
				SeatType:   r.SeatType,
				Percentile: r.Percentile,
				Rank:       r.Rank,
			})
		}
		sort.SliceStable(seatTypes, func(i, j int) bool {
			return seatTypes[i].Percentile > seatTypes[j].Percentile
		})

		info := category.Normalize(code)
		comparisons = append(comparisons, CategoryComparison{
			Code:           code,
			Name:           info.NormalizedName,
			FullName:       info.FullName,
			BestPercentile: best.Percentile,
			BestRank:       best.Rank,
			BestSeatType:   best.SeatType,
			SeatTypes:      seatTypes,
			TotalOptions:   len(group),
		})
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].BestPercentile > comparisons[j].BestPercentile
	})
	return comparisons
}

func distinctCourses(records []models.CutoffRecord) []models.CodeName {
	seen := make(map[string]bool)
	var courses []models.CodeName
	for _, r := range records {
		if r.CourseCode == "" || seen[r.CourseCode] {
			continue
		}
		seen[r.CourseCode] = true
		courses = append(courses, models.CodeName{Code: r.CourseCode, Name: r.CourseName})
	}
	return courses
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
