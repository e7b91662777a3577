package analyzer

import (
	"context"
	"testing"

	"github.com/arjun/cutoff-finder/internal/ai"
)

func TestAnalyzeHeuristically(t *testing.T) {
	tests := []struct {
		name             string
		sample           string
		expectedFormat   string
		expectedStrategy string
	}{
		{
			name:             "mba document",
			sample:           "Cutoff list for MBA/MMS admissions, Stage 1. Rank and percentile per category OPEN OBC SC.",
			expectedFormat:   "mba_cutoff",
			expectedStrategy: "mba_format",
		},
		{
			name:             "engineering document",
			sample:           "B.Tech Engineering cutoff, closing rank 4521 (97.23) for OPEN category",
			expectedFormat:   "engineering_cutoff",
			expectedStrategy: "engineering_format",
		},
		{
			name:             "medical document",
			sample:           "MBBS admission cutoff ranks, NEET based, category wise",
			expectedFormat:   "medical_cutoff",
			expectedStrategy: "medical_format",
		},
		{
			name:             "pharmacy document",
			sample:           "B.Pharm pharmacy cutoff percentile list",
			expectedFormat:   "pharmacy_cutoff",
			expectedStrategy: "pharmacy_format",
		},
		{
			name:             "unrecognizable document",
			sample:           "quarterly revenue report",
			expectedFormat:   "unknown",
			expectedStrategy: "engineering_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzeHeuristically(tt.sample)
			if got.FormatType != tt.expectedFormat {
				t.Errorf("format = %q, expected %q", got.FormatType, tt.expectedFormat)
			}
			if got.ParsingStrategy != tt.expectedStrategy {
				t.Errorf("strategy = %q, expected %q", got.ParsingStrategy, tt.expectedStrategy)
			}
			if len(got.ColumnMapping) == 0 {
				t.Error("expected a default column mapping")
			}
		})
	}
}

func TestAnalyzeHeuristicallyKeyPatterns(t *testing.T) {
	sample := "Stage 1 cutoff: rank 4521, percentile (97.23), categories OPEN OBC SC"
	got := analyzeHeuristically(sample)

	expected := []string{"stage markers", "rank values", "percentile values", "category codes"}
	if len(got.KeyPatterns) != len(expected) {
		t.Fatalf("key patterns = %v, expected %v", got.KeyPatterns, expected)
	}
	for i, p := range expected {
		if got.KeyPatterns[i] != p {
			t.Errorf("pattern[%d] = %q, expected %q", i, got.KeyPatterns[i], p)
		}
	}
}

func TestAnalyzeWithoutLLMFallsBack(t *testing.T) {
	got := Analyze(context.Background(), ai.NewClient("", ""), "MBA MMS cutoff stage 1")
	if got.FormatType != "mba_cutoff" {
		t.Errorf("expected heuristic fallback, got %+v", got)
	}
}

func TestExtractSampleTextRejectsGarbage(t *testing.T) {
	if _, err := ExtractSampleText([]byte("not a pdf at all")); err == nil {
		t.Error("expected error for non-PDF content")
	}
}
