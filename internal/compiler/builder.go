package compiler

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/Norgate-AV/hipify-batch/internal/compdb"
	"github.com/Norgate-AV/hipify-batch/internal/config"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// Result is what a finished translation produced
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Failed reports whether hipify-clang complained. The exit code is not consulted.
func (r *Result) Failed() bool {
	return len(r.Stderr) > 0
}

// CommandBuilder handles building and running translation commands
type CommandBuilder struct {
	cfg         *config.Config
	rewriter    *Rewriter
	execCommand func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) Commander
}

// NewCommandBuilder creates a new command builder
func NewCommandBuilder(cfg *config.Config) *CommandBuilder {
	return &CommandBuilder{
		cfg:      cfg,
		rewriter: NewRewriter(cfg),
		execCommand: func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) Commander {
			cmd := exec.CommandContext(ctx, name, args...)
			cmd.Stdout = stdout
			cmd.Stderr = stderr
			return cmd
		},
	}
}

// Build rewrites a task into its hipify-clang invocation
func (cb *CommandBuilder) Build(task compdb.Task) *ShellCommand {
	return GetTranslateCommand(cb.cfg, cb.rewriter, task)
}

// ExecuteCommand runs the invocation to completion, capturing both streams.
// A non-zero exit is reported in the result, not as an error; the error is
// only set when the process could not be run at all.
func (cb *CommandBuilder) ExecuteCommand(ctx context.Context, sc *ShellCommand) (*Result, error) {
	var stdout, stderr bytes.Buffer

	c := cb.execCommand(ctx, sc.Path, sc.Args, &stdout, &stderr)

	res := &Result{}
	err := c.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}

		return res, err
	}

	return res, nil
}
