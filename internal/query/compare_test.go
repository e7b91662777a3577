package query

import (
	"errors"
	"testing"
)

const compareFixture = `1002,"Government College of Engineering, Amravati",c1,Computer Science,GOPENH,State,4521,97.23` + "\n" +
	`1002,"Government College of Engineering, Amravati",c1,Computer Science,GOPENH,AI,5100,96.80` + "\n" +
	`1002,"Government College of Engineering, Amravati",c1,Computer Science,GSCH,State,12400,91.10` + "\n" +
	`1002,"Government College of Engineering, Amravati",c2,Civil Engineering,GOPENH,State,20000,80.50` + "\n" +
	`1003,"College of Engineering, Pune",c1,Computer Science,GOPENH,State,800,99.40` + "\n" +
	`1003,"College of Engineering, Pune",c1,Computer Science,GSCH,State,3000,98.00` + "\n"

func TestCompareCollegeCount(t *testing.T) {
	comparator := NewComparator(newTestStore(t, compareFixture))

	tests := []struct {
		name     string
		colleges []string
		wantErr  bool
	}{
		{name: "zero colleges", colleges: nil, wantErr: true},
		{name: "five colleges", colleges: []string{"a", "b", "c", "d", "e"}, wantErr: true},
		{name: "duplicates collapse below the cap", colleges: []string{"1002", "1002", "1002", "1002", "1002"}, wantErr: false},
		{name: "one college", colleges: []string{"1002"}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := comparator.Compare(testExam, tt.colleges, "")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCompareBestPerCategory(t *testing.T) {
	comparator := NewComparator(newTestStore(t, compareFixture))

	result, err := comparator.Compare(testExam, []string{"1002", "1003"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Colleges) != 2 {
		t.Fatalf("expected 2 colleges, got %d", len(result.Colleges))
	}

	first := result.Colleges[0]
	if first.CollegeCode != "1002" {
		t.Fatalf("request order not preserved: %q", first.CollegeCode)
	}
	if first.Location != "Amravati" {
		t.Errorf("location = %q", first.Location)
	}
	if first.TotalRecords != 4 {
		t.Errorf("total records = %d", first.TotalRecords)
	}
	if len(first.Courses) != 2 {
		t.Errorf("courses = %v", first.Courses)
	}

	if len(first.Categories) != 2 {
		t.Fatalf("expected 2 category groups, got %d", len(first.Categories))
	}
	// Sorted by best percentile descending: GOPENH (97.23) then GSCH (91.10).
	open := first.Categories[0]
	if open.Code != "GOPENH" {
		t.Fatalf("expected GOPENH first, got %q", open.Code)
	}
	if open.Name != "OPEN" {
		t.Errorf("decoded name = %q", open.Name)
	}
	if open.BestPercentile != 97.23 || open.BestRank != 4521 || open.BestSeatType != "State" {
		t.Errorf("best option = %.2f/%d/%s", open.BestPercentile, open.BestRank, open.BestSeatType)
	}
	if open.TotalOptions != 3 {
		t.Errorf("total options = %d", open.TotalOptions)
	}
	if len(open.SeatTypes) != 3 || open.SeatTypes[0].Percentile != 97.23 {
		t.Errorf("seat types not sorted by percentile: %+v", open.SeatTypes)
	}
}

func TestCompareCourseRestriction(t *testing.T) {
	comparator := NewComparator(newTestStore(t, compareFixture))

	result, err := comparator.Compare(testExam, []string{"1002"}, "c2")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Colleges) != 1 {
		t.Fatalf("expected 1 college, got %d", len(result.Colleges))
	}
	college := result.Colleges[0]
	if college.TotalRecords != 1 {
		t.Errorf("expected only c2 records, got %d", college.TotalRecords)
	}
	if len(college.Categories) != 1 || college.Categories[0].BestPercentile != 80.50 {
		t.Errorf("categories = %+v", college.Categories)
	}
}

func TestCompareOmitsUnknownColleges(t *testing.T) {
	comparator := NewComparator(newTestStore(t, compareFixture))

	result, err := comparator.Compare(testExam, []string{"1002", "9999"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Colleges) != 1 {
		t.Errorf("college with no records should be omitted, got %d entries", len(result.Colleges))
	}
}

func TestCompareLegend(t *testing.T) {
	comparator := NewComparator(newTestStore(t, compareFixture))

	result, err := comparator.Compare(testExam, []string{"1002", "1003"}, "")
	if err != nil {
		t.Fatal(err)
	}

	if len(result.AllCategories) != 2 {
		t.Errorf("expected 2 legend categories, got %v", result.AllCategories)
	}
	for _, label := range result.AllCategories {
		if label.Name == "" || label.FullName == "" {
			t.Errorf("legend entry missing decoded names: %+v", label)
		}
	}
	// Seat types come back sorted.
	if len(result.AllSeatTypes) != 2 || result.AllSeatTypes[0] != "AI" || result.AllSeatTypes[1] != "State" {
		t.Errorf("seat types = %v", result.AllSeatTypes)
	}
}

func TestCompareTieKeepsFirstSeen(t *testing.T) {
	fixture := `1002,College A,c1,Computer Science,GOPENH,State,4521,95.00` + "\n" +
		`1002,College A,c1,Computer Science,GOPENH,AI,5100,95.00` + "\n"
	comparator := NewComparator(newTestStore(t, fixture))

	result, err := comparator.Compare(testExam, []string{"1002"}, "")
	if err != nil {
		t.Fatal(err)
	}
	best := result.Colleges[0].Categories[0]
	if best.BestSeatType != "State" {
		t.Errorf("equal percentiles should keep the first record, got %q", best.BestSeatType)
	}
}
