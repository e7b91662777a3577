package models

// CutoffRecord is one college/course/category/seat-type combination from an
// admission round. Records are immutable once loaded; a dataset is replaced
// wholesale when its source file is re-parsed.
type CutoffRecord struct {
	CollegeCode string  `json:"college_code"`
	CollegeName string  `json:"college_name"`
	CourseCode  string  `json:"course_code"`
	CourseName  string  `json:"course_name"`
	Category    string  `json:"category"`
	SeatType    string  `json:"seat_type"`
	Rank        int     `json:"rank"`
	Percentile  float64 `json:"percentile"`
}

// Valid reports whether the record carries usable cutoff data. Rows with
// neither a rank nor a percentile are placeholders from the source tables and
// are excluded from every query, comparison, and recommendation path.
func (r CutoffRecord) Valid() bool {
	return r.Rank > 0 || r.Percentile > 0
}

// CodeName is a code+display-name pair for a college or course facet.
type CodeName struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// FilterOptions are the distinct values available for each filterable
// dimension of a dataset. Derived from the valid-record subset and cached
// alongside the records.
type FilterOptions struct {
	Colleges   []CodeName `json:"colleges"`
	Courses    []CodeName `json:"courses"`
	Categories []string   `json:"categories"`
	SeatTypes  []string   `json:"seatTypes"`
	Locations  []string   `json:"locations"`
}
