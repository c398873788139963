package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/Norgate-AV/hipify-batch/internal/errlog"
	"github.com/Norgate-AV/hipify-batch/internal/history"
)

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:          "report",
		Short:        "Show the outcome of the last run",
		Long:         `Print the files that failed in the most recent recorded run and the error records currently on disk.`,
		RunE:         runReport,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
	}

	reportCmd.Flags().BoolP("all", "a", false, "List every file of the run, not only failures")
	reportCmd.Flags().String("run", "", "Report on this run ID instead of the latest")

	return reportCmd
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	out := cmd.OutOrStdout()

	if err := reportRun(cmd, cfg.ErrorDir, all); err != nil {
		return err
	}

	records, err := errlog.List(cfg.ErrorDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d error records in %s\n", len(records), cfg.ErrorDir)

	return nil
}

// reportRun prints one recorded run. A tree that never recorded a run is
// reported without creating the history database.
func reportRun(cmd *cobra.Command, errorDir string, all bool) error {
	out := cmd.OutOrStdout()

	runID, _ := cmd.Flags().GetString("run")

	dbPath := filepath.Join(errorDir, history.DefaultFileName)
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		if runID != "" {
			return errors.Errorf("no such run: %s", runID)
		}

		fmt.Fprintln(out, "no recorded runs")
		return nil
	}

	hist, err := history.Open(errorDir)
	if err != nil {
		return err
	}
	defer hist.Close()

	var entries []history.Entry
	if runID != "" {
		entries, err = hist.Run(runID)
	} else {
		runID, entries, err = hist.Latest()
	}
	if err != nil {
		return err
	}

	if runID == "" {
		fmt.Fprintln(out, "no recorded runs")
		return nil
	}

	failed := 0
	for _, e := range entries {
		if e.Failed {
			failed++
		}
	}

	fmt.Fprintf(out, "run %s: %d files, %d failed\n", runID, len(entries), failed)

	for _, e := range entries {
		switch {
		case e.Failed && e.Record != "":
			fmt.Fprintf(out, "FAIL %s (%s)\n", e.SourceFile, e.Record)
		case e.Failed:
			fmt.Fprintf(out, "FAIL %s\n", e.SourceFile)
		case all:
			fmt.Fprintf(out, "ok   %s\n", e.SourceFile)
		}
	}

	runs, tasks, err := hist.Stats()
	if err != nil {
		return err
	}

	klog.V(1).Infof("History %s holds %d runs, %d tasks", hist.Path(), runs, tasks)
	fmt.Fprintf(out, "%d runs recorded\n", runs)

	return nil
}
