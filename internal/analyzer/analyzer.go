// Package analyzer inspects uploaded cutoff PDFs and produces a
// parsing-strategy descriptor for the external parser. The descriptor is
// advisory; the query core only ever consumes the CSV the parser eventually
// writes.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	rpdf "rsc.io/pdf"

	"github.com/arjun/cutoff-finder/internal/ai"
)

const (
	samplePages    = 5
	pageSampleSize = 2000
	promptBudget   = 4000
)

// Analysis is the parsing-strategy descriptor.
type Analysis struct {
	FormatType      string   `json:"format_type"`
	Structure       string   `json:"structure"`
	KeyPatterns     []string `json:"key_patterns"`
	ParsingStrategy string   `json:"parsing_strategy"`
	ColumnMapping   []string `json:"column_mapping"`
}

const analyzerSystemPrompt = `You are a PDF structure analyzer. Always respond with valid JSON only, no markdown formatting, no code blocks.`

const analyzerPromptTemplate = `You are analyzing a PDF document that contains college admission cutoff data.

Here is a sample of the PDF content:

%s

Analyze the structure and respond with JSON:
1. "format_type": e.g. "engineering_cutoff", "mba_cutoff", "medical_cutoff", "unknown"
2. "structure": how the data is organized
3. "key_patterns": text patterns identifying college names, course names, categories, ranks, percentiles
4. "parsing_strategy": e.g. "engineering_format", "mba_format", "medical_format"
5. "column_mapping": expected CSV columns

Respond ONLY with valid JSON, no additional text.`

// ExtractSampleText pulls representative text out of a PDF: the first few
// pages, plus a middle and last page for long documents. The underlying
// reader panics on some malformed files, so failures are recovered into an
// error.
func ExtractSampleText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	total := reader.NumPage()
	pages := make([]int, 0, samplePages+2)
	for i := 1; i <= total && i <= samplePages; i++ {
		pages = append(pages, i)
	}
	if total > samplePages*2 {
		pages = append(pages, total/2)
	}
	if total > samplePages {
		pages = append(pages, total)
	}

	samples := make([]string, 0, len(pages))
	for _, n := range pages {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		var builder strings.Builder
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		sample := strings.TrimSpace(builder.String())
		if sample == "" {
			continue
		}
		if len(sample) > pageSampleSize {
			sample = sample[:pageSampleSize]
		}
		samples = append(samples, sample)
	}

	return strings.Join(samples, "\n\n--- PAGE BREAK ---\n\n"), nil
}

// Analyze produces a parsing-strategy descriptor for sampled PDF text, asking
// the LLM collaborator when one is configured and falling back to keyword
// heuristics otherwise. LLM failures degrade to the heuristic result rather
// than failing the request.
func Analyze(ctx context.Context, client *ai.Client, sampleText string) Analysis {
	if client.Configured() {
		prompt := sampleText
		if len(prompt) > promptBudget {
			prompt = prompt[:promptBudget]
		}
		reply, err := client.ChatJSON(ctx, analyzerSystemPrompt, fmt.Sprintf(analyzerPromptTemplate, prompt))
		if err == nil {
			var analysis Analysis
			if jsonErr := json.Unmarshal([]byte(reply), &analysis); jsonErr == nil && analysis.ParsingStrategy != "" {
				return analysis
			}
		}
	}
	return analyzeHeuristically(sampleText)
}

var (
	rankPattern       = regexp.MustCompile(`(?i)\brank\b`)
	percentilePattern = regexp.MustCompile(`(?i)percentile|\([\d.]+\)`)
	categoryPattern   = regexp.MustCompile(`(?i)\b(open|sc|st|obc|nt|ews)\b`)
	stagePattern      = regexp.MustCompile(`(?i)stage\s+\d+`)
)

func analyzeHeuristically(sampleText string) Analysis {
	text := strings.ToLower(sampleText)

	formatType := "unknown"
	strategy := "engineering_format"
	switch {
	case strings.Contains(text, "mba") || strings.Contains(text, "mms") || strings.Contains(text, "pgdm") || strings.Contains(text, "management"):
		formatType = "mba_cutoff"
		strategy = "mba_format"
	case strings.Contains(text, "engineering") || strings.Contains(text, "b.tech"):
		formatType = "engineering_cutoff"
	case strings.Contains(text, "medical") || strings.Contains(text, "mbbs") || strings.Contains(text, "bds"):
		formatType = "medical_cutoff"
		strategy = "medical_format"
	case strings.Contains(text, "pharmacy") || strings.Contains(text, "b.pharm"):
		formatType = "pharmacy_cutoff"
		strategy = "pharmacy_format"
	}

	var patterns []string
	if stagePattern.MatchString(sampleText) {
		patterns = append(patterns, "stage markers")
	}
	if rankPattern.MatchString(sampleText) {
		patterns = append(patterns, "rank values")
	}
	if percentilePattern.MatchString(sampleText) {
		patterns = append(patterns, "percentile values")
	}
	if categoryPattern.MatchString(sampleText) {
		patterns = append(patterns, "category codes")
	}

	return Analysis{
		FormatType:      formatType,
		Structure:       "Detected " + formatType + " format",
		KeyPatterns:     patterns,
		ParsingStrategy: strategy,
		ColumnMapping:   []string{"college_code", "college_name", "course_code", "course_name", "category", "seat_type", "rank", "percentile"},
	}
}
