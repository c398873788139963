package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultCompileDB   = "blasbuild/cuda/compile_commands.json"
	DefaultToolPath    = "/opt/HIPIFY/bin/hipify-clang"
	DefaultCudaPath    = "/usr/local/cuda"
	DefaultErrorDir    = "hip_errors"
	DefaultJobs        = 16
	DefaultRewriteMode = RewriteLiteral
	DefaultHistory     = true
	DefaultVerbose     = false
)

// Rewrite modes
const (
	RewriteLiteral = "literal"
	RewriteTokens  = "tokens"
)

// SkipExcludedBlocksFlag makes hipify-clang ignore code in inactive #if branches
const SkipExcludedBlocksFlag = "--skip-excluded-preprocessor-conditional-blocks"

// DefaultExcludeDirs are third-party build trees that never contain kernels to port
var DefaultExcludeDirs = []string{
	"/blasbuild/cuda/flatbuffers-build",
	"/blasbuild/cuda/tests_cpu/googletest-build/googlemock",
	"/blasbuild/cuda/tests_cpu/googletest-build/googletest",
}

// Holds the options for a single hipify-batch run. Treat as read-only once loaded.
type Config struct {
	// Directory the run was started from; stripped from entry paths
	WorkDir string

	// Path to compile_commands.json
	CompileDB string

	// Path to the hipify-clang binary
	ToolPath string

	// CUDA toolkit root, passed to the tool and used to spot nvcc in commands
	CudaPath string

	// Directory receiving one error record per failing file
	ErrorDir string

	// Number of concurrent translations
	Jobs int

	// Build directories (relative to WorkDir) whose entries are skipped
	ExcludeDirs []string

	// How compiler commands are rewritten: "literal" or "tokens"
	RewriteMode string

	// Record outcomes in the run history database
	History bool

	// Exit zero even when translations fail
	AllowFailures bool

	// Print invocations without running them
	DryRun bool

	// Enable verbose output
	Verbose bool
}

func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get working directory")
	}

	cfg := &Config{
		WorkDir:       wd,
		CompileDB:     viper.GetString("compile_db"),
		ToolPath:      viper.GetString("tool_path"),
		CudaPath:      viper.GetString("cuda_path"),
		ErrorDir:      viper.GetString("error_dir"),
		Jobs:          viper.GetInt("jobs"),
		ExcludeDirs:   slices.Clone(viper.GetStringSlice("exclude_dirs")),
		RewriteMode:   viper.GetString("rewrite_mode"),
		History:       viper.GetBool("history"),
		AllowFailures: viper.GetBool("allow_failures"),
		DryRun:        viper.GetBool("dry_run"),
		Verbose:       viper.GetBool("verbose"),
	}

	// Apply defaults if not set
	if cfg.CompileDB == "" {
		cfg.CompileDB = DefaultCompileDB
	}

	if cfg.ErrorDir == "" {
		cfg.ErrorDir = DefaultErrorDir
	}

	if cfg.RewriteMode == "" {
		cfg.RewriteMode = DefaultRewriteMode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ToolPath == "" {
		return errors.New("tool path not specified")
	}

	if c.CompileDB == "" {
		return errors.New("compilation database path not specified")
	}

	if c.Jobs <= 0 {
		return errors.Errorf("invalid job count: %d", c.Jobs)
	}

	if c.RewriteMode != RewriteLiteral && c.RewriteMode != RewriteTokens {
		return errors.Errorf("invalid rewrite mode: %s (want %q or %q)", c.RewriteMode, RewriteLiteral, RewriteTokens)
	}

	if c.CudaPath == "" {
		return errors.New("CUDA path not specified")
	}

	c.CudaPath = filepath.Clean(c.CudaPath)

	return nil
}

// NvccPath is the CUDA compiler as it appears in CMake-generated commands
func (c *Config) NvccPath() string {
	return c.CudaPath + "/bin/nvcc"
}

// ToolFlags are the fixed hipify-clang options placed before the source file
func (c *Config) ToolFlags() []string {
	return []string{"--cuda-path=" + c.CudaPath, SkipExcludedBlocksFlag}
}

// IsExcludedDir reports whether rel matches one of the excluded build trees exactly
func (c *Config) IsExcludedDir(rel string) bool {
	return slices.Contains(c.ExcludeDirs, rel)
}
