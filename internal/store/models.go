// Package store persists batch scan runs to a local SQLite database so
// successive runs over the same tree can be diffed for drift (a
// supplemental feature beyond spec.md's literal text, present in
// original_source's results/ module and dropped by the distillation).
// It is optional: the core pipeline and execution engine never depend
// on it, it is exercised only by the batch CLI path when a database DSN
// is configured.
//
// Grounded on the teacher's models/models.go GORM schema (Stage/Apply/
// Session), generalized from "pending/applied code edits" to
// "scan run / per-file result / diagnostic finding".
package store

import "time"

// ScanRun is one invocation of the batch pipeline over a directory.
type ScanRun struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Root        string `gorm:"type:text;not null"`
	StartedAt   time.Time `gorm:"autoCreateTime"`
	EndedAt     time.Time
	Processed   int
	Failed      int
	FileResults []FileResult `gorm:"foreignKey:ScanRunID"`
}

// FileResult is one file's outcome within a ScanRun.
type FileResult struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	ScanRunID string `gorm:"type:varchar(36);index"`
	File      string `gorm:"type:text;index"`
	Status    string `gorm:"type:varchar(20)"`
	Findings  []Finding `gorm:"foreignKey:FileResultID"`
}

// Finding is one diagnostic emitted against a file during its pipeline
// run (lexical, syntactic, symbol, resolution, semantic, structural, or
// contract stage — §7's coded taxonomy).
type Finding struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	FileResultID string `gorm:"type:varchar(36);index"`
	Code         int    `gorm:"index"`
	Kind         string `gorm:"type:varchar(30)"`
	Severity     string `gorm:"type:varchar(20)"`
	Message      string `gorm:"type:text"`
	Line         int
	Column       int
}

func (ScanRun) TableName() string    { return "scan_runs" }
func (FileResult) TableName() string { return "file_results" }
func (Finding) TableName() string    { return "findings" }
