package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/hipify-batch/internal/errlog"
	"github.com/Norgate-AV/hipify-batch/internal/history"
)

func newCleanCmd() *cobra.Command {
	cleanCmd := &cobra.Command{
		Use:          "clean",
		Short:        "Remove error records left by earlier runs",
		RunE:         runClean,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
	}

	cleanCmd.Flags().Bool("history", false, "Also clear the run history")

	return cleanCmd
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	n, err := errlog.Clear(cfg.ErrorDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "removed %d error records from %s\n", n, cfg.ErrorDir)

	if clearHistory, _ := cmd.Flags().GetBool("history"); clearHistory {
		hist, err := history.Open(cfg.ErrorDir)
		if err != nil {
			return err
		}
		defer hist.Close()

		if err := hist.Clear(); err != nil {
			return err
		}

		fmt.Fprintln(out, "cleared run history")
	}

	return nil
}
