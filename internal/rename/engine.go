package rename

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"csv-renamer/internal/mapping"
	"csv-renamer/internal/util"
)

var (
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrNotADirectory     = errors.New("path is not a directory")
)

// Status classifies the result of one rename attempt.
type Status string

const (
	StatusRenamed             Status = "renamed"
	StatusSkippedNoMatch      Status = "skipped-no-match"
	StatusSkippedTargetExists Status = "skipped-target-exists"
	StatusFailed              Status = "failed"
)

// Outcome is the per-file result of one pass over the directory.
type Outcome struct {
	SourcePath string `json:"source_path"`
	NewPath    string `json:"new_path,omitempty"`
	Status     Status `json:"status"`
	Detail     string `json:"detail,omitempty"`
}

// Options controls a batch run. DryRun classifies every file exactly as a
// real run would, including the live target-exists check, but performs no
// filesystem mutation.
type Options struct {
	DryRun bool
}

// Summary aggregates outcome counts for one batch.
type Summary struct {
	Total               int  `json:"total"`
	Renamed             int  `json:"renamed"`
	SkippedNoMatch      int  `json:"skipped_no_match"`
	SkippedTargetExists int  `json:"skipped_target_exists"`
	Failed              int  `json:"failed"`
	DryRun              bool `json:"dry_run"`
}

// Clean reports whether every outcome was renamed or skipped-no-match.
// Callers map this to the process exit code.
func (s Summary) Clean() bool {
	return s.Failed == 0 && s.SkippedTargetExists == 0
}

func Summarize(outcomes []Outcome, dryRun bool) Summary {
	summary := Summary{Total: len(outcomes), DryRun: dryRun}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case StatusRenamed:
			summary.Renamed++
		case StatusSkippedNoMatch:
			summary.SkippedNoMatch++
		case StatusSkippedTargetExists:
			summary.SkippedTargetExists++
		case StatusFailed:
			summary.Failed++
		}
	}

	return summary
}

// Run performs one ordered, non-recursive pass over the direct child
// files of dir, renaming each file whose base name matches a mapping key
// to the mapped target name. One outcome is produced per file visited, in
// directory-iteration order. Per-file problems never abort the batch.
//
// Cancellation is honored between files only; the partial outcome list is
// returned alongside ctx.Err().
func Run(ctx context.Context, m *mapping.Mapping, dir string, opts Options) ([]Outcome, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("stat directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	outcomes := make([]Outcome, 0, len(entries))

	for _, entry := range entries {
		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}

		// Subdirectories are neither descended into nor reported.
		if entry.IsDir() {
			continue
		}

		outcomes = append(outcomes, renameOne(dir, entry.Name(), m, opts))
	}

	return outcomes, nil
}

func renameOne(dir string, name string, m *mapping.Mapping, opts Options) Outcome {
	source := filepath.Join(dir, name)

	target, matched := m.Lookup(name)
	if !matched {
		return Outcome{SourcePath: source, Status: StatusSkippedNoMatch}
	}

	if err := util.ValidateFilename(target); err != nil {
		return Outcome{
			SourcePath: source,
			Status:     StatusFailed,
			Detail:     fmt.Sprintf("invalid target name %q: %s", target, err),
		}
	}

	destination := filepath.Join(dir, target)

	// Mapping a file to its current name is a no-op rename.
	if target != name {
		// Checked live, immediately before the rename; still racy against
		// concurrent external writers, which is accepted.
		if destInfo, statErr := os.Lstat(destination); statErr == nil {
			// On case-insensitive filesystems the destination may resolve
			// to the source itself; a case-only rename is still allowed.
			srcInfo, srcErr := os.Lstat(source)
			if srcErr != nil || !os.SameFile(srcInfo, destInfo) {
				return Outcome{
					SourcePath: source,
					Status:     StatusSkippedTargetExists,
					Detail:     fmt.Sprintf("target %q already exists", target),
				}
			}
		} else if !os.IsNotExist(statErr) {
			return Outcome{
				SourcePath: source,
				Status:     StatusFailed,
				Detail:     statErr.Error(),
			}
		}
	}

	if !opts.DryRun {
		if err := os.Rename(source, destination); err != nil {
			return Outcome{SourcePath: source, Status: StatusFailed, Detail: err.Error()}
		}
	}

	return Outcome{SourcePath: source, NewPath: destination, Status: StatusRenamed}
}
