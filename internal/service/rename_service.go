package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"csv-renamer/internal/mapping"
	"csv-renamer/internal/model"
	"csv-renamer/internal/rename"
	"csv-renamer/internal/storage"
)

type runStore interface {
	Create(ctx context.Context, run model.Run) error
	List(ctx context.Context, page int, limit int) ([]model.Run, model.Meta, error)
	Get(ctx context.Context, runID string) (model.Run, error)
}

// RenameService wires the pure rename engine to the storage jail, the
// run-history store, and the audit trail.
type RenameService struct {
	store             *storage.Storage
	runs              runStore
	audit             *AuditService
	previewMaxEntries int
}

func NewRenameService(store *storage.Storage, runs runStore, audit *AuditService, previewMaxEntries int) *RenameService {
	if previewMaxEntries <= 0 {
		previewMaxEntries = 100
	}

	return &RenameService{
		store:             store,
		runs:              runs,
		audit:             audit,
		previewMaxEntries: previewMaxEntries,
	}
}

// Preview loads the CSV and reports what it contains. Nothing on disk is
// touched.
func (s *RenameService) Preview(_ context.Context, csvData io.Reader, hasHeader bool) (model.MappingPreview, error) {
	m, err := mapping.Load(csvData, mapping.LoadOptions{HasHeader: hasHeader})
	if err != nil {
		return model.MappingPreview{}, err
	}

	entries := m.Entries()
	truncated := false
	if len(entries) > s.previewMaxEntries {
		entries = entries[:s.previewMaxEntries]
		truncated = true
	}

	return model.MappingPreview{
		EntryCount: m.Len(),
		HasHeader:  hasHeader,
		Entries:    entries,
		Duplicates: m.Duplicates(),
		Truncated:  truncated,
	}, nil
}

// Execute loads the mapping, resolves the directory inside the storage
// root, and runs one batch. Mapping and directory problems are fatal and
// reported before any rename; per-file problems land in the outcome list.
func (s *RenameService) Execute(ctx context.Context, csvData io.Reader, csvName string, directory string, hasHeader bool, dryRun bool, actor model.AuditActor) (model.Run, error) {
	m, err := mapping.Load(csvData, mapping.LoadOptions{HasHeader: hasHeader})
	if err != nil {
		s.audit.Log("rename.execute", actor, "failed", directory, map[string]any{"csv": csvName}, nil, err.Error())
		return model.Run{}, err
	}

	resolved, err := s.store.Resolve(directory)
	if err != nil {
		s.audit.Log("rename.execute", actor, "failed", directory, map[string]any{"csv": csvName}, nil, err.Error())
		return model.Run{}, err
	}

	started := time.Now().UTC()
	outcomes, err := rename.Run(ctx, m, resolved, rename.Options{DryRun: dryRun})
	if err != nil {
		s.audit.Log("rename.execute", actor, "failed", directory, map[string]any{"csv": csvName, "entries": m.Len()}, nil, err.Error())
		return model.Run{}, err
	}

	summary := rename.Summarize(outcomes, dryRun)
	run := model.Run{
		ID:          uuid.NewString(),
		CSVFilename: csvName,
		Directory:   directory,
		HasHeader:   hasHeader,
		DryRun:      dryRun,
		Actor:       actor,
		Summary:     summary,
		Outcomes:    outcomes,
		Duplicates:  m.Duplicates(),
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
	}

	// The renames already happened; a failed history write must not turn
	// the batch into an error.
	if storeErr := s.runs.Create(ctx, run); storeErr != nil {
		slog.Warn("run history write failed", "run_id", run.ID, "error", storeErr)
	}

	status := "success"
	if !summary.Clean() {
		status = "partial"
	}
	s.audit.Log("rename.execute", actor, status, directory,
		map[string]any{"csv": csvName, "entries": m.Len(), "dry_run": dryRun},
		map[string]any{"renamed": summary.Renamed, "skipped_no_match": summary.SkippedNoMatch,
			"skipped_target_exists": summary.SkippedTargetExists, "failed": summary.Failed}, "")

	return run, nil
}

func (s *RenameService) ListRuns(ctx context.Context, page int, limit int) ([]model.Run, model.Meta, error) {
	return s.runs.List(ctx, page, limit)
}

func (s *RenameService) GetRun(ctx context.Context, runID string) (model.Run, error) {
	return s.runs.Get(ctx, runID)
}
