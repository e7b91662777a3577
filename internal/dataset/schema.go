package dataset

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/arjun/cutoff-finder/internal/exams"
	"github.com/arjun/cutoff-finder/internal/models"
)

// columnMapping lists, per record field, the header names that may carry it.
// The first candidate present in a file's header wins; a field with no
// matching column stays empty/zero. Keeping the variance here means the query
// layer never branches on header spelling.
type columnMapping struct {
	collegeCode []string
	collegeName []string
	courseCode  []string
	courseName  []string
	category    []string
	seatType    []string
	rank        []string
	percentile  []string
}

var mappings = map[exams.Format]columnMapping{
	exams.FormatCAPRound: {
		collegeCode: []string{"college_code"},
		collegeName: []string{"college_name", "college"},
		courseCode:  []string{"course_code"},
		courseName:  []string{"course_name", "branch"},
		category:    []string{"category", "quota"},
		seatType:    []string{"seat_type", "seat type"},
		rank:        []string{"rank", "closing_rank", "closing rank"},
		percentile:  []string{"percentile"},
	},
	exams.FormatJEEMains: {
		collegeName: []string{"college"},
		courseName:  []string{"branch"},
		category:    []string{"quota", "category"},
		seatType:    []string{"seat type", "seat_type"},
		rank:        []string{"closing rank", "closing_rank", "rank"},
		percentile:  []string{"opening rank", "opening_rank", "percentile"},
	},
}

func mappingFor(format exams.Format) columnMapping {
	if m, ok := mappings[format]; ok {
		return m
	}
	return mappings[exams.FormatCAPRound]
}

// columnIndex resolves a mapping against a concrete header row.
type columnIndex struct {
	collegeCode int
	collegeName int
	courseCode  int
	courseName  int
	category    int
	seatType    int
	rank        int
	percentile  int
}

func resolveColumns(header []string, m columnMapping) columnIndex {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, exists := byName[name]; !exists {
			byName[name] = i
		}
	}
	find := func(candidates []string) int {
		for _, c := range candidates {
			if i, ok := byName[c]; ok {
				return i
			}
		}
		return -1
	}
	return columnIndex{
		collegeCode: find(m.collegeCode),
		collegeName: find(m.collegeName),
		courseCode:  find(m.courseCode),
		courseName:  find(m.courseName),
		category:    find(m.category),
		seatType:    find(m.seatType),
		rank:        find(m.rank),
		percentile:  find(m.percentile),
	}
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// intField coerces a numeric cell, tolerating thousands separators. Malformed
// values degrade to zero: one bad row must not lose the dataset.
func intField(row []string, idx int) int {
	v := strings.ReplaceAll(field(row, idx), ",", "")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func floatField(row []string, idx int) float64 {
	v := strings.ReplaceAll(field(row, idx), ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseRecords decodes CSV content into cutoff records using the mapping for
// the exam's schema family. Invalid rows are kept (callers filter on Valid);
// only rows with no identifying college or course text at all are dropped.
func parseRecords(r *csv.Reader, m columnMapping) ([]models.CutoffRecord, error) {
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := resolveColumns(rows[0], m)
	records := make([]models.CutoffRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := models.CutoffRecord{
			CollegeCode: field(row, cols.collegeCode),
			CollegeName: field(row, cols.collegeName),
			CourseCode:  field(row, cols.courseCode),
			CourseName:  field(row, cols.courseName),
			Category:    field(row, cols.category),
			SeatType:    field(row, cols.seatType),
			Rank:        intField(row, cols.rank),
			Percentile:  floatField(row, cols.percentile),
		}
		if rec.CollegeName == "" && rec.CollegeCode == "" && rec.CourseName == "" {
			continue
		}
		// Families without dedicated code columns use the display names as
		// stable identifiers.
		if rec.CollegeCode == "" {
			rec.CollegeCode = rec.CollegeName
		}
		if rec.CourseCode == "" {
			rec.CourseCode = rec.CourseName
		}
		records = append(records, rec)
	}

	return records, nil
}
