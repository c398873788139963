package config

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForRun loads configuration for a translation run
func (l *Loader) LoadForRun(cmd *cobra.Command) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()

	if wd, err := os.Getwd(); err == nil {
		l.loadLocalConfig(wd)
	}

	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("compile_db", DefaultCompileDB)
	viper.SetDefault("tool_path", DefaultToolPath)
	viper.SetDefault("cuda_path", DefaultCudaPath)
	viper.SetDefault("error_dir", DefaultErrorDir)
	viper.SetDefault("jobs", DefaultJobs)
	viper.SetDefault("exclude_dirs", DefaultExcludeDirs)
	viper.SetDefault("rewrite_mode", DefaultRewriteMode)
	viper.SetDefault("history", DefaultHistory)
	viper.SetDefault("verbose", DefaultVerbose)
}

// loadGlobalConfig loads the per-user configuration file
func (l *Loader) loadGlobalConfig() {
	globalPath := FindGlobalConfig()
	if globalPath == "" {
		return
	}

	viper.SetConfigFile(globalPath)

	if err := viper.ReadInConfig(); err != nil {
		klog.Warningf("Ignoring global config %q: %v", globalPath, err)
		return
	}

	klog.V(1).Infof("Loaded global config %q", globalPath)
}

// loadLocalConfig merges the project configuration found from dir upwards
func (l *Loader) loadLocalConfig(dir string) {
	localPath := FindLocalConfig(dir)
	if localPath == "" {
		return
	}

	viper.SetConfigFile(localPath)

	if err := viper.MergeInConfig(); err != nil {
		klog.Warningf("Ignoring local config %q: %v", localPath, err)
		return
	}

	klog.V(1).Infof("Loaded local config %q", localPath)
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	flags := map[string]string{
		"compile_db":     "compile-db",
		"tool_path":      "tool",
		"cuda_path":      "cuda-path",
		"error_dir":      "error-dir",
		"jobs":           "jobs",
		"exclude_dirs":   "exclude-dir",
		"rewrite_mode":   "rewrite-mode",
		"allow_failures": "allow-failures",
		"dry_run":        "dry-run",
		"verbose":        "verbose",
	}

	for key, name := range flags {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}

	if f := cmd.Flags().Lookup("no-history"); f != nil && f.Changed {
		viper.Set("history", f.Value.String() != "true")
	}
}
