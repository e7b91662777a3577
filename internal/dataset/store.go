// Package dataset loads cutoff datasets from CSV files and caches them in
// memory. The cache is the only data-loading path for the query, comparison,
// and recommendation layers; it is at most TTL-stale and invalidated
// explicitly when the upload collaborator replaces a source file.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/arjun/cutoff-finder/internal/exams"
	"github.com/arjun/cutoff-finder/internal/models"
)

// DefaultTTL bounds how stale a cached dataset may be before the source file
// is re-checked.
const DefaultTTL = 5 * time.Minute

// StorageError reports a dataset source that exists but could not be read.
// A missing source is not an error: it yields an empty dataset.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("reading dataset %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

type entry struct {
	records  []models.CutoffRecord
	options  *models.FilterOptions
	loadedAt time.Time
}

// Store is the process-wide dataset cache, keyed by exam ID.
type Store struct {
	dir      string
	registry *exams.Registry
	ttl      time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

// NewStore creates a store reading dataset files under dir. A non-positive
// ttl selects DefaultTTL.
func NewStore(dir string, registry *exams.Registry, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		dir:      dir,
		registry: registry,
		ttl:      ttl,
		entries:  make(map[string]*entry),
	}
}

// Load returns every record of a dataset, including invalid placeholder rows.
// The cached copy is served while it is younger than the TTL and the source
// file has not been modified since it was read. A dataset with no source file
// loads as an empty slice, not an error.
func (s *Store) Load(examID string) ([]models.CutoffRecord, error) {
	path := s.registry.DatasetPath(s.dir, examID)

	s.mu.Lock()
	if e, ok := s.entries[examID]; ok && s.fresh(e, path) {
		records := e.records
		s.mu.Unlock()
		return records, nil
	}
	s.mu.Unlock()

	// Read outside the lock. Two concurrent loads of the same cold key may
	// both reach here; the second write wins, which is fine for a cache.
	records, err := s.read(path, s.registry.Resolve(examID).Format)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[examID] = &entry{records: records, loadedAt: time.Now()}
	s.mu.Unlock()

	return records, nil
}

// LoadValid returns the valid-record subset of a dataset (rank or percentile
// present). Every query, comparison, and recommendation path starts here.
func (s *Store) LoadValid(examID string) ([]models.CutoffRecord, error) {
	records, err := s.Load(examID)
	if err != nil {
		return nil, err
	}
	valid := make([]models.CutoffRecord, 0, len(records))
	for _, r := range records {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	return valid, nil
}

// Invalidate drops the cached records and filter options for a dataset so the
// next Load re-reads the source. The upload collaborator calls this after
// replacing a dataset file.
func (s *Store) Invalidate(examID string) {
	s.mu.Lock()
	delete(s.entries, examID)
	s.mu.Unlock()
}

// fresh reports whether a cache entry may still be served. Caller holds s.mu.
func (s *Store) fresh(e *entry, path string) bool {
	if time.Since(e.loadedAt) >= s.ttl {
		return false
	}
	if fi, err := os.Stat(path); err == nil && fi.ModTime().After(e.loadedAt) {
		return false
	}
	return true
}

func (s *Store) read(path string, format exams.Format) ([]models.CutoffRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageError{Path: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := parseRecords(reader, mappingFor(format))
	if err != nil {
		return nil, &StorageError{Path: path, Err: err}
	}
	return records, nil
}
