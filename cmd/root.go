package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/Norgate-AV/hipify-batch/internal/codes"
	"github.com/Norgate-AV/hipify-batch/internal/config"
	"github.com/Norgate-AV/hipify-batch/internal/version"
)

// ExitError carries a non-fatal exit status out of a command
type ExitError struct {
	Code int
	Msg  string
}

func (e *ExitError) Error() string {
	return e.Msg
}

func newRootCmd() *cobra.Command {
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)

	rootCmd := &cobra.Command{
		Use:   "hipify-batch",
		Short: "Batch CUDA to HIP translation",
		Long: `Rewrite the nvcc commands of a compilation database into hipify-clang
invocations and run them in parallel, keeping one error record per failing file.`,
		RunE:         runTranslate,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				return klogFlags.Set("v", "2")
			}

			return nil
		},
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().StringP("error-dir", "e", "", "Directory for per-file error records (default \"hip_errors\")")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output (same as -v=2)")
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)
	addRunFlags(rootCmd.Flags())

	rootCmd.AddCommand(newRunCmd(), newReportCmd(), newCleanCmd())

	return rootCmd
}

// addRunFlags registers the options of a translation run
func addRunFlags(fs *pflag.FlagSet) {
	fs.StringP("compile-db", "d", "", "Compilation database (default \"blasbuild/cuda/compile_commands.json\")")
	fs.StringP("tool", "t", "", "Path to hipify-clang")
	fs.String("cuda-path", "", "CUDA toolkit root (default \"/usr/local/cuda\")")
	fs.IntP("jobs", "j", 0, "Number of concurrent translations (default 16)")
	fs.StringSlice("exclude-dir", []string{}, "Build directory, relative to the working directory, to skip (repeatable; replaces the default list)")
	fs.String("rewrite-mode", "", "Command rewrite mode: literal or tokens (default \"literal\")")
	fs.Bool("allow-failures", false, "Exit zero even when translations fail")
	fs.Bool("no-history", false, "Do not record the run in the history database")
	fs.BoolP("dry-run", "n", false, "Print invocations without running them")
}

// loadConfig loads the layered configuration and applies its verbosity
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader().LoadForRun(cmd)
	if err != nil {
		return nil, err
	}

	if cfg.Verbose && !klog.V(2).Enabled() {
		if err := setVerbosity("2"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// setVerbosity changes the klog level after flag parsing
func setVerbosity(level string) error {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)

	return fs.Set("v", level)
}

func Execute() {
	defer klog.Flush()

	err := newRootCmd().Execute()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			klog.Flush()
			os.Exit(exitErr.Code)
		}

		klog.Flush()
		os.Exit(codes.Fatal)
	}
}
