package rename

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"csv-renamer/internal/mapping"
)

func loadMapping(t *testing.T, csvBody string) *mapping.Mapping {
	t.Helper()

	m, err := mapping.Load(strings.NewReader(csvBody), mapping.LoadOptions{HasHeader: false})
	require.NoError(t, err)
	return m
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func outcomeFor(t *testing.T, outcomes []Outcome, base string) Outcome {
	t.Helper()

	for _, outcome := range outcomes {
		if filepath.Base(outcome.SourcePath) == base {
			return outcome
		}
	}
	t.Fatalf("no outcome for %q", base)
	return Outcome{}
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("renames mapped files and leaves the rest alone", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "report.txt", "draft.txt")
		m := loadMapping(t, "report.txt,final.txt\n")

		outcomes, err := Run(context.Background(), m, dir, Options{})
		require.NoError(t, err)
		require.Len(t, outcomes, 2)

		renamed := outcomeFor(t, outcomes, "report.txt")
		require.Equal(t, StatusRenamed, renamed.Status)
		require.Equal(t, filepath.Join(dir, "final.txt"), renamed.NewPath)

		untouched := outcomeFor(t, outcomes, "draft.txt")
		require.Equal(t, StatusSkippedNoMatch, untouched.Status)

		require.ElementsMatch(t, []string{"final.txt", "draft.txt"}, dirNames(t, dir))
	})

	t.Run("never overwrites an existing target", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.txt", "b.txt")
		m := loadMapping(t, "a.txt,b.txt\n")

		outcomes, err := Run(context.Background(), m, dir, Options{})
		require.NoError(t, err)

		blocked := outcomeFor(t, outcomes, "a.txt")
		require.Equal(t, StatusSkippedTargetExists, blocked.Status)

		// Both files still exist with their original contents.
		aBody, readErr := os.ReadFile(filepath.Join(dir, "a.txt"))
		require.NoError(t, readErr)
		require.Equal(t, "a.txt", string(aBody))

		bBody, readErr := os.ReadFile(filepath.Join(dir, "b.txt"))
		require.NoError(t, readErr)
		require.Equal(t, "b.txt", string(bBody))
	})

	t.Run("a second run is a no-op", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "report.txt")
		m := loadMapping(t, "report.txt,final.txt\n")

		_, err := Run(context.Background(), m, dir, Options{})
		require.NoError(t, err)

		outcomes, err := Run(context.Background(), m, dir, Options{})
		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		require.Equal(t, StatusSkippedNoMatch, outcomes[0].Status)
		require.ElementsMatch(t, []string{"final.txt"}, dirNames(t, dir))
	})

	t.Run("renaming a file to its own name succeeds", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "same.txt")
		m := loadMapping(t, "same.txt,same.txt\n")

		outcomes, err := Run(context.Background(), m, dir, Options{})
		require.NoError(t, err)
		require.Equal(t, StatusRenamed, outcomes[0].Status)
		require.ElementsMatch(t, []string{"same.txt"}, dirNames(t, dir))
	})

	t.Run("dry run classifies without touching anything", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "report.txt", "a.txt", "b.txt")
		m := loadMapping(t, "report.txt,final.txt\na.txt,b.txt\n")

		outcomes, err := Run(context.Background(), m, dir, Options{DryRun: true})
		require.NoError(t, err)

		require.Equal(t, StatusRenamed, outcomeFor(t, outcomes, "report.txt").Status)
		require.Equal(t, StatusSkippedTargetExists, outcomeFor(t, outcomes, "a.txt").Status)
		require.ElementsMatch(t, []string{"report.txt", "a.txt", "b.txt"}, dirNames(t, dir))
	})

	t.Run("invalid target names fail that file only", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "bad.txt", "good.txt")
		m := loadMapping(t, "bad.txt,sub/dir.txt\ngood.txt,better.txt\n")

		outcomes, err := Run(context.Background(), m, dir, Options{})
		require.NoError(t, err)

		failed := outcomeFor(t, outcomes, "bad.txt")
		require.Equal(t, StatusFailed, failed.Status)
		require.Contains(t, failed.Detail, "invalid target name")

		require.Equal(t, StatusRenamed, outcomeFor(t, outcomes, "good.txt").Status)
		require.ElementsMatch(t, []string{"bad.txt", "better.txt"}, dirNames(t, dir))
	})

	t.Run("subdirectories are not visited", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
		writeFiles(t, dir, "top.txt")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "top.txt"), []byte("x"), 0o600))
		m := loadMapping(t, "top.txt,renamed.txt\nnested,other\n")

		outcomes, err := Run(context.Background(), m, dir, Options{})
		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		require.Equal(t, StatusRenamed, outcomes[0].Status)

		// The file inside the subdirectory keeps its name.
		_, statErr := os.Stat(filepath.Join(dir, "nested", "top.txt"))
		require.NoError(t, statErr)
	})

	t.Run("outcomes follow directory iteration order", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.txt", "b.txt", "c.txt")
		m := loadMapping(t, "b.txt,z.txt\n")

		outcomes, err := Run(context.Background(), m, dir, Options{})
		require.NoError(t, err)
		require.Len(t, outcomes, 3)
		require.Equal(t, "a.txt", filepath.Base(outcomes[0].SourcePath))
		require.Equal(t, "b.txt", filepath.Base(outcomes[1].SourcePath))
		require.Equal(t, "c.txt", filepath.Base(outcomes[2].SourcePath))
	})

	t.Run("missing directory is fatal", func(t *testing.T) {
		m := loadMapping(t, "a.txt,b.txt\n")

		outcomes, err := Run(context.Background(), m, filepath.Join(t.TempDir(), "missing"), Options{})
		require.ErrorIs(t, err, ErrDirectoryNotFound)
		require.Nil(t, outcomes)
	})

	t.Run("a plain file is not a directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "file.txt")
		m := loadMapping(t, "a.txt,b.txt\n")

		_, err := Run(context.Background(), m, filepath.Join(dir, "file.txt"), Options{})
		require.ErrorIs(t, err, ErrNotADirectory)
	})

	t.Run("cancellation stops between files", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.txt", "b.txt")
		m := loadMapping(t, "a.txt,x.txt\n")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		outcomes, err := Run(ctx, m, dir, Options{})
		require.ErrorIs(t, err, context.Canceled)
		require.Empty(t, outcomes)
		require.ElementsMatch(t, []string{"a.txt", "b.txt"}, dirNames(t, dir))
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	outcomes := []Outcome{
		{Status: StatusRenamed},
		{Status: StatusRenamed},
		{Status: StatusSkippedNoMatch},
		{Status: StatusSkippedTargetExists},
		{Status: StatusFailed},
	}

	summary := Summarize(outcomes, true)
	require.Equal(t, 5, summary.Total)
	require.Equal(t, 2, summary.Renamed)
	require.Equal(t, 1, summary.SkippedNoMatch)
	require.Equal(t, 1, summary.SkippedTargetExists)
	require.Equal(t, 1, summary.Failed)
	require.True(t, summary.DryRun)
	require.False(t, summary.Clean())

	clean := Summarize([]Outcome{{Status: StatusRenamed}, {Status: StatusSkippedNoMatch}}, false)
	require.True(t, clean.Clean())
}
