// Package storage holds the persistence adapters: the date-keyed report
// store on disk and the Postgres trend archive.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"ChannelGovernor/internal/domain"
	"ChannelGovernor/internal/ports"
)

// FileStore writes one immutable JSON report per run date into a directory.
// A second cycle on the same date overwrites the earlier file, which keeps
// re-runs idempotent.
type FileStore struct {
	dir string
}

var _ ports.ReportStore = (*FileStore)(nil)

// NewFileStore points the store at its output directory. The directory is
// created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save marshals the report and writes it under governance_report_<date>.json.
func (s *FileStore) Save(_ context.Context, report domain.GovernanceReport) error {
	path := s.reportPath(report.Date)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &domain.PersistenceError{Path: path, Err: fmt.Errorf("create output dir: %w", err)}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Path: path, Err: fmt.Errorf("marshal report: %w", err)}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &domain.PersistenceError{Path: path, Err: err}
	}
	return nil
}

// Load reads back the report persisted for the given date.
func (s *FileStore) Load(_ context.Context, date time.Time) (domain.GovernanceReport, error) {
	path := s.reportPath(date)

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.GovernanceReport{}, &domain.PersistenceError{Path: path, Err: err}
	}

	var report domain.GovernanceReport
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.GovernanceReport{}, &domain.PersistenceError{Path: path, Err: fmt.Errorf("unmarshal report: %w", err)}
	}
	return report, nil
}

func (s *FileStore) reportPath(date time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("governance_report_%s.json", date.Format("2006-01-02")))
}
