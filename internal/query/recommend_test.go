package query

import (
	"errors"
	"reflect"
	"testing"
)

const recommendFixture = `1002,"Government College of Engineering, Amravati",c1,Computer Science,GOPENH,State,4521,90.00` + "\n" +
	`1002,"Government College of Engineering, Amravati",c1,Computer Science,GOBCS,State,8100,85.00` + "\n" +
	`1003,"College of Engineering, Pune",c2,Mechanical Engineering,GOPENH,State,700,95.00` + "\n" +
	`1003,"College of Engineering, Pune",c2,Mechanical Engineering,GSCH,State,15000,80.00` + "\n" +
	`1004,Institute of Technology,c3,Information Technology,GOPENH,State,9900,86.00` + "\n"

func TestPrepareCandidatesTargetValidation(t *testing.T) {
	recommender := NewRecommender(newTestStore(t, recommendFixture))

	for _, target := range []float64{0, -5, 100.01, 150} {
		if _, err := recommender.PrepareCandidates(testExam, target, "", "", ""); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("target %g: expected ErrInvalidArgument, got %v", target, err)
		}
	}

	if _, err := recommender.PrepareCandidates(testExam, 100, "", "", ""); err != nil {
		t.Errorf("target 100 is valid, got %v", err)
	}
}

func TestPrepareCandidatesAdmissibility(t *testing.T) {
	recommender := NewRecommender(newTestStore(t, recommendFixture))

	summary, err := recommender.PrepareCandidates(testExam, 92, "", "", "")
	if err != nil {
		t.Fatal(err)
	}

	if summary.TotalRecords != 5 {
		t.Errorf("total records = %d", summary.TotalRecords)
	}
	// The 95.00 cutoff is above the target and must be excluded.
	if summary.RelevantOptions != 4 {
		t.Fatalf("relevant options = %d", summary.RelevantOptions)
	}

	var percentiles []float64
	for _, c := range summary.TopCandidates {
		percentiles = append(percentiles, c.CutoffPercentile)
	}
	expected := []float64{90, 86, 85, 80}
	if !reflect.DeepEqual(percentiles, expected) {
		t.Errorf("top candidates = %v, expected %v", percentiles, expected)
	}

	first := summary.TopCandidates[0]
	if first.Margin != 2 {
		t.Errorf("margin = %g, expected 2", first.Margin)
	}
	if first.Location != "Amravati" {
		t.Errorf("location = %q", first.Location)
	}
	if first.Category != "OPEN" || first.CategoryCode != "GOPENH" {
		t.Errorf("category decoration = %q/%q", first.Category, first.CategoryCode)
	}
	if first.CategoryFullName == "" || first.CategoryDescription == "" {
		t.Errorf("candidate missing category decoration: %+v", first)
	}
}

func TestPrepareCandidatesSafetyOptions(t *testing.T) {
	recommender := NewRecommender(newTestStore(t, recommendFixture))

	summary, err := recommender.PrepareCandidates(testExam, 92, "", "", "")
	if err != nil {
		t.Fatal(err)
	}

	// Margins: 90→2, 86→6, 85→7, 80→12. Safety needs at least 5, sorted by
	// margin descending.
	var margins []float64
	for _, c := range summary.SafetyOptions {
		margins = append(margins, c.Margin)
	}
	expected := []float64{12, 7, 6}
	if !reflect.DeepEqual(margins, expected) {
		t.Errorf("safety margins = %v, expected %v", margins, expected)
	}
}

func TestPrepareCandidatesCategoryHint(t *testing.T) {
	recommender := NewRecommender(newTestStore(t, recommendFixture))

	summary, err := recommender.PrepareCandidates(testExam, 92, "", "obc", "")
	if err != nil {
		t.Fatal(err)
	}
	if summary.RelevantOptions != 1 {
		t.Fatalf("expected only the OBC record, got %d", summary.RelevantOptions)
	}
	if summary.TopCandidates[0].CategoryCode != "GOBCS" {
		t.Errorf("candidate = %+v", summary.TopCandidates[0])
	}
}

func TestPrepareCandidatesCategoryHintUnmatchableIsIgnored(t *testing.T) {
	recommender := NewRecommender(newTestStore(t, recommendFixture))

	summary, err := recommender.PrepareCandidates(testExam, 92, "", "zzz", "")
	if err != nil {
		t.Fatal(err)
	}
	if summary.RelevantOptions != 4 {
		t.Errorf("unmatchable hint should be ignored, got %d options", summary.RelevantOptions)
	}
}

func TestPrepareCandidatesCourseHint(t *testing.T) {
	recommender := NewRecommender(newTestStore(t, recommendFixture))

	summary, err := recommender.PrepareCandidates(testExam, 92, "cs", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if summary.RelevantOptions != 2 {
		t.Fatalf("alias expansion should select Computer Science, got %d options", summary.RelevantOptions)
	}
	for _, c := range summary.TopCandidates {
		if c.Course != "Computer Science" {
			t.Errorf("unexpected course %q", c.Course)
		}
	}
}

func TestPrepareCandidatesCourseHintNoMatchKeepsAll(t *testing.T) {
	recommender := NewRecommender(newTestStore(t, recommendFixture))

	summary, err := recommender.PrepareCandidates(testExam, 92, "astrology", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if summary.RelevantOptions != 4 {
		t.Errorf("no-match course hint should keep all candidates, got %d", summary.RelevantOptions)
	}
}

func TestPrepareCandidatesLocationHint(t *testing.T) {
	recommender := NewRecommender(newTestStore(t, recommendFixture))

	summary, err := recommender.PrepareCandidates(testExam, 92, "", "", "amravati")
	if err != nil {
		t.Fatal(err)
	}
	if summary.RelevantOptions != 2 {
		t.Fatalf("expected 2 Amravati options, got %d", summary.RelevantOptions)
	}
	for _, c := range summary.TopCandidates {
		if c.Location != "Amravati" {
			t.Errorf("unexpected location %q", c.Location)
		}
	}
}

func TestPrepareCandidatesVocabularies(t *testing.T) {
	recommender := NewRecommender(newTestStore(t, recommendFixture))

	summary, err := recommender.PrepareCandidates(testExam, 92, "", "", "")
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(summary.AvailableCategories, []string{"OBC", "OPEN", "SC"}) {
		t.Errorf("categories = %v", summary.AvailableCategories)
	}
	if len(summary.AvailableCourses) != 3 {
		t.Errorf("courses = %v", summary.AvailableCourses)
	}
	if !reflect.DeepEqual(summary.AvailableLocations, []string{"Amravati", "Pune"}) {
		t.Errorf("locations = %v", summary.AvailableLocations)
	}
}
