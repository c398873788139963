package compiler

import (
	"slices"
	"strings"

	"github.com/Norgate-AV/hipify-batch/internal/compdb"
	"github.com/Norgate-AV/hipify-batch/internal/config"
)

// ShellCommand is a single hipify-clang invocation
type ShellCommand struct {
	Path string
	Args []string
}

// Argv returns the program path followed by its arguments
func (sc *ShellCommand) Argv() []string {
	return append([]string{sc.Path}, sc.Args...)
}

// String is the space-joined command line as printed and stored in error records
func (sc *ShellCommand) String() string {
	return strings.Join(sc.Argv(), " ")
}

// GetTranslateCommand assembles the invocation for one task:
// tool flags, the source file, "--", then the rewritten compiler flags.
func GetTranslateCommand(cfg *config.Config, rw *Rewriter, task compdb.Task) *ShellCommand {
	flags := rw.Rewrite(task.Command, task.File)

	args := slices.Clone(cfg.ToolFlags())
	args = append(args, task.File, "--")
	args = append(args, flags...)

	return &ShellCommand{
		Path: cfg.ToolPath,
		Args: args,
	}
}
