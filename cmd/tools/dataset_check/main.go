// dataset_check summarizes every configured dataset on disk: row counts,
// facet sizes, and percentile range. Run it after dropping new CSV files into
// the data directory.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/arjun/cutoff-finder/internal/dataset"
	"github.com/arjun/cutoff-finder/internal/exams"
	"github.com/arjun/cutoff-finder/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	registry, err := exams.LoadRegistry("config/exams.yaml")
	if err != nil {
		log.Fatal(err)
	}
	store := dataset.NewStore(dataDir, registry, 0)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Exam", "Format", "Rows", "Valid", "Colleges", "Courses", "Categories", "Percentile Range"})

	for _, exam := range registry.All() {
		records, err := store.Load(exam.ID)
		if err != nil {
			log.Printf("%s: %v", exam.ID, err)
			continue
		}
		if len(records) == 0 {
			t.AppendRow(table.Row{exam.ID, exam.Format, 0, 0, "-", "-", "-", "no data file"})
			continue
		}

		valid, err := store.LoadValid(exam.ID)
		if err != nil {
			log.Printf("%s: %v", exam.ID, err)
			continue
		}
		options, err := store.Options(exam.ID)
		if err != nil {
			log.Printf("%s: %v", exam.ID, err)
			continue
		}

		t.AppendRow(table.Row{
			exam.ID, exam.Format, len(records), len(valid),
			len(options.Colleges), len(options.Courses), len(options.Categories),
			percentileRange(valid),
		})
	}
	t.Render()
}

func percentileRange(records []models.CutoffRecord) string {
	lo, hi := -1.0, -1.0
	for _, r := range records {
		if r.Percentile <= 0 {
			continue
		}
		if lo < 0 || r.Percentile < lo {
			lo = r.Percentile
		}
		if r.Percentile > hi {
			hi = r.Percentile
		}
	}
	if lo < 0 {
		return "rank only"
	}
	return fmt.Sprintf("%.2f - %.2f", lo, hi)
}
