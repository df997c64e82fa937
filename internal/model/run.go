package model

import (
	"time"

	"csv-renamer/internal/mapping"
	"csv-renamer/internal/rename"
)

// Run is one recorded batch: the inputs, the aggregate summary, and
// (when requested) the full per-file outcome list.
type Run struct {
	ID          string           `json:"id"`
	CSVFilename string           `json:"csv_filename"`
	Directory   string           `json:"directory"`
	HasHeader   bool             `json:"has_header"`
	DryRun      bool             `json:"dry_run"`
	Actor       AuditActor       `json:"actor"`
	Summary     rename.Summary   `json:"summary"`
	Outcomes    []rename.Outcome `json:"outcomes,omitempty"`
	// Duplicates surfaces ambiguous mapping keys to the caller; it is
	// part of the response, not of the persisted run record.
	Duplicates []mapping.Duplicate `json:"duplicates,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

type RunListData struct {
	Items []Run `json:"items"`
}

// MappingPreview is the load-only view of an uploaded CSV: no filesystem
// is touched, duplicates are surfaced rather than silently resolved.
type MappingPreview struct {
	EntryCount int                 `json:"entry_count"`
	HasHeader  bool                `json:"has_header"`
	Entries    []mapping.Entry     `json:"entries"`
	Duplicates []mapping.Duplicate `json:"duplicates,omitempty"`
	Truncated  bool                `json:"truncated"`
}

type DirEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

type DirectoryListData struct {
	Path    string     `json:"path"`
	Entries []DirEntry `json:"entries"`
}
