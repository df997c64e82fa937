package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"csv-renamer/internal/mapping"
	"csv-renamer/internal/rename"
)

var (
	// These are set during build time using -ldflags
	version = "dev"

	csvPath  string
	dirPath  string
	noHeader bool
	dryRun   bool
	quiet    bool
)

var errBatchNotClean = errors.New("rename batch finished with failures or blocked targets")

var rootCmd = &cobra.Command{
	Use:   "renamer --csv <mapping.csv> --dir <directory>",
	Short: "Renames files in a directory according to a two-column CSV mapping.",
	Long: `renamer reads a CSV whose first column is the current file name and
whose second column is the desired file name, then renames every matching
file directly inside the target directory. Files without a mapping entry
are left alone, and an existing file is never overwritten.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return run(ctx, cmd)
	},
}

func run(ctx context.Context, cmd *cobra.Command) error {
	opts := mapping.LoadOptions{HasHeader: !noHeader}
	m, err := mapping.LoadFile(csvPath, opts)
	if err != nil {
		return fmt.Errorf("loading mapping %s: %w", csvPath, err)
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	for _, dup := range m.Duplicates() {
		fmt.Fprintf(errOut, "warning: duplicate mapping for %q at row %d (%q replaces %q)\n",
			dup.Key, dup.Row, dup.Target, dup.PreviousTarget)
	}

	outcomes, runErr := rename.Run(ctx, m, dirPath, rename.Options{DryRun: dryRun})

	if !quiet {
		for _, outcome := range outcomes {
			status := string(outcome.Status)
			if dryRun && outcome.Status == rename.StatusRenamed {
				status = "would-rename"
			}
			line := fmt.Sprintf("%-22s %s", status, outcome.SourcePath)
			if outcome.NewPath != "" {
				line += " -> " + outcome.NewPath
			}
			if outcome.Detail != "" {
				line += " (" + outcome.Detail + ")"
			}
			fmt.Fprintln(out, line)
		}
	}

	summary := rename.Summarize(outcomes, dryRun)
	fmt.Fprintf(out, "%d file(s): %d renamed, %d without mapping, %d blocked by existing target, %d failed\n",
		summary.Total, summary.Renamed, summary.SkippedNoMatch, summary.SkippedTargetExists, summary.Failed)
	if dryRun {
		fmt.Fprintln(out, "dry run: no files were changed")
	}

	if runErr != nil {
		return fmt.Errorf("rename batch aborted: %w", runErr)
	}
	if !summary.Clean() {
		return errBatchNotClean
	}

	return nil
}

func Execute() {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errBatchNotClean) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&csvPath, "csv", "c", "", "Required. Path to the two-column mapping CSV.")
	rootCmd.Flags().StringVarP(&dirPath, "dir", "d", "", "Required. Directory whose direct child files are renamed.")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the first CSV row as data instead of a header")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify every file without renaming anything")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the summary line")
	_ = rootCmd.MarkFlagRequired("csv")
	_ = rootCmd.MarkFlagRequired("dir")
}
