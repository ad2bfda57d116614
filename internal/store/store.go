package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/espsec/espc/internal/batch"
)

// Connect opens (creating if necessary) a SQLite database at dsn and
// runs migrations. Grounded on the teacher's db/sqlite.go Connect, with
// the pure-Go glebarez/sqlite driver in place of gorm.io/driver/sqlite
// (no cgo) and the libsql/Turso remote-DSN branch dropped — scan-run
// history has no multi-tenant remote-sync requirement in SPEC_FULL.md.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", dsn, err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating: %w", err)
	}
	return db, nil
}

// Migrate creates/updates the scan-history schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ScanRun{}, &FileResult{}, &Finding{})
}

// RecordSummary persists one batch.Summary as a ScanRun with its
// per-file results and diagnostic findings.
func RecordSummary(db *gorm.DB, summary *batch.Summary) (*ScanRun, error) {
	run := ScanRun{
		ID:        uuid.NewString(),
		Root:      summary.Root,
		EndedAt:   time.Now(),
		Processed: summary.Processed,
		Failed:    summary.Failed,
	}

	for _, out := range summary.Results {
		fr := FileResult{
			ID:     uuid.NewString(),
			File:   out.File,
			Status: string(out.Status),
		}
		for _, d := range out.Diagnostics {
			fr.Findings = append(fr.Findings, Finding{
				ID:       uuid.NewString(),
				Code:     int(d.Code),
				Kind:     string(d.Kind),
				Severity: string(d.Severity),
				Message:  d.Message,
				Line:     d.Span.Start.Line,
				Column:   d.Span.Start.Column,
			})
		}
		run.FileResults = append(run.FileResults, fr)
	}

	if err := db.Create(&run).Error; err != nil {
		return nil, fmt.Errorf("recording scan run: %w", err)
	}
	return &run, nil
}

// PreviousRun returns the most recently recorded ScanRun for root, or
// nil if none exists, so a caller can diff the current run against it
// (§"scan-run history... so successive runs can be diffed for drift").
func PreviousRun(db *gorm.DB, root string) (*ScanRun, error) {
	var run ScanRun
	err := db.Preload("FileResults.Findings").
		Where("root = ?", root).
		Order("started_at desc").
		First(&run).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("loading previous scan run: %w", err)
	}
	return &run, nil
}
