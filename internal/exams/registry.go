// Package exams holds the registry of supported entrance exams: which dataset
// file backs each exam ID and which schema family its columns follow.
package exams

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed config/exams.yaml
var examsYAML embed.FS

// Format identifies a schema family. Column naming differs per family, so the
// dataset layer selects a column mapping by format instead of sniffing headers.
type Format string

const (
	// FormatCAPRound is the generic Maharashtra CAP-round layout:
	// college_code,college_name,course_code,course_name,category,seat_type,rank,percentile.
	FormatCAPRound Format = "capround"
	// FormatJEEMains is the JEE layout:
	// college,branch,quota,seat type,gender,opening rank,closing rank.
	FormatJEEMains Format = "jeemains"
)

// ExamConfig describes a single exam dataset.
type ExamConfig struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	FullName    string `yaml:"full_name" json:"fullName"`
	Category    string `yaml:"category" json:"category"`
	Format      Format `yaml:"format" json:"format"`
	File        string `yaml:"file" json:"-"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Registry is the full set of configured exams.
type Registry struct {
	Exams []ExamConfig `yaml:"exams"`

	byID map[string]ExamConfig
}

// LoadRegistry reads the embedded exams.yaml. The path parameter is a
// filesystem fallback for local overrides.
func LoadRegistry(path string) (*Registry, error) {
	data, err := examsYAML.ReadFile("config/exams.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading exam registry: %w", err)
		}
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parsing exam registry: %w", err)
	}

	reg.byID = make(map[string]ExamConfig, len(reg.Exams))
	for _, exam := range reg.Exams {
		reg.byID[exam.ID] = exam
	}

	return &reg, nil
}

// All returns every configured exam in registry order.
func (r *Registry) All() []ExamConfig {
	return r.Exams
}

// ByCategory returns the exams belonging to one exam-category grouping.
func (r *Registry) ByCategory(category string) []ExamConfig {
	var out []ExamConfig
	for _, exam := range r.Exams {
		if exam.Category == category {
			out = append(out, exam)
		}
	}
	return out
}

// Get looks up an exam by dataset key.
func (r *Registry) Get(examID string) (ExamConfig, bool) {
	exam, ok := r.byID[examID]
	return exam, ok
}

// Resolve returns the config for an exam ID, falling back to a CAP-round
// config with the conventional file name for unregistered IDs. Freshly
// uploaded datasets work without a registry edit.
func (r *Registry) Resolve(examID string) ExamConfig {
	if exam, ok := r.byID[examID]; ok {
		return exam
	}
	return ExamConfig{
		ID:     examID,
		Name:   examID,
		Format: FormatCAPRound,
		File:   "cutoffs_" + examID + ".csv",
	}
}

// DatasetPath is the absolute path of the dataset file for an exam under the
// given data directory.
func (r *Registry) DatasetPath(dir, examID string) string {
	return filepath.Join(dir, filepath.FromSlash(r.Resolve(examID).File))
}
