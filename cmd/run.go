package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/Norgate-AV/hipify-batch/internal/codes"
	"github.com/Norgate-AV/hipify-batch/internal/compdb"
	"github.com/Norgate-AV/hipify-batch/internal/compiler"
	"github.com/Norgate-AV/hipify-batch/internal/config"
	"github.com/Norgate-AV/hipify-batch/internal/dispatch"
	"github.com/Norgate-AV/hipify-batch/internal/errlog"
	"github.com/Norgate-AV/hipify-batch/internal/history"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Translate every CUDA file in the compilation database",
		Long: `Load the compilation database, skip third-party build trees and host-only
.cpp files, then run hipify-clang on each remaining file.`,
		RunE:         runTranslate,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
	}

	addRunFlags(runCmd.Flags())

	return runCmd
}

var newExecutor = func(cfg *config.Config) dispatch.Executor {
	return compiler.NewCommandBuilder(cfg)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if err := errlog.EnsureDir(cfg.ErrorDir); err != nil {
		return err
	}

	fmt.Fprintf(out, "____%s\n", cfg.WorkDir)

	entries, err := compdb.Load(cfg.CompileDB)
	if err != nil {
		return err
	}

	klog.V(1).Infof("Loaded %d entries from %s", len(entries), cfg.CompileDB)

	tasks := compdb.Filter(entries, cfg, out)

	klog.V(1).Infof("Translating %d files with %d jobs (%s rewrite)", len(tasks), cfg.Jobs, cfg.RewriteMode)

	var hist *history.History
	if cfg.History && !cfg.DryRun {
		hist, err = history.Open(cfg.ErrorDir)
		if err != nil {
			return err
		}

		defer hist.Close()
	}

	started := time.Now()
	summary := dispatch.NewPool(cfg, newExecutor(cfg), out).Run(cmd.Context(), tasks)

	if hist != nil {
		if err := hist.RecordRun(history.NewRunID(started), summary.HistoryEntries()); err != nil {
			klog.Warningf("Run not recorded: %v", err)
		}
	}

	for _, o := range summary.Failed() {
		klog.V(1).Infof("Failed: %s", o.Task.File)
	}

	total, failed := summary.Counts()
	if cfg.DryRun {
		fmt.Fprintf(out, "%d files would be translated\n", total)
		return nil
	}

	fmt.Fprintf(out, "translated %d files, %d failed", total, failed)
	if failed > 0 {
		fmt.Fprintf(out, " (error records in %s)", cfg.ErrorDir)
	}
	fmt.Fprintln(out)

	klog.V(1).Infof("Run finished in %s", time.Since(started).Round(time.Millisecond))

	if code := codes.ForRun(failed, cfg.AllowFailures); !codes.IsSuccess(code) {
		return &ExitError{
			Code: code,
			Msg:  fmt.Sprintf("%s: %d of %d files", codes.GetErrorMessage(code), failed, total),
		}
	}

	return nil
}
