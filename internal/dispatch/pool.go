// Package dispatch runs translation tasks through a bounded worker pool.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/Norgate-AV/hipify-batch/internal/compdb"
	"github.com/Norgate-AV/hipify-batch/internal/compiler"
	"github.com/Norgate-AV/hipify-batch/internal/config"
	"github.com/Norgate-AV/hipify-batch/internal/errlog"
)

// Executor builds and runs a single translation
type Executor interface {
	Build(task compdb.Task) *compiler.ShellCommand
	ExecuteCommand(ctx context.Context, sc *compiler.ShellCommand) (*compiler.Result, error)
}

// Pool translates tasks with at most cfg.Jobs tools running at once
type Pool struct {
	cfg  *config.Config
	exec Executor
	out  *lineWriter
}

// NewPool creates a pool writing invocation lines to out
func NewPool(cfg *config.Config, exec Executor, out io.Writer) *Pool {
	return &Pool{
		cfg:  cfg,
		exec: exec,
		out:  &lineWriter{w: out},
	}
}

// Run translates every task exactly once and returns their outcomes in task
// order. Failures never stop other tasks; there is no timeout and no retry.
func (p *Pool) Run(ctx context.Context, tasks []compdb.Task) *Summary {
	outcomes := make([]*Outcome, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Jobs)

	for i, task := range tasks {
		g.Go(func() error {
			outcomes[i] = p.translate(ctx, task)
			return nil
		})
	}

	// workers never return errors
	_ = g.Wait()

	return &Summary{Outcomes: outcomes}
}

func (p *Pool) translate(ctx context.Context, task compdb.Task) *Outcome {
	sc := p.exec.Build(task)
	o := &Outcome{Task: task, Command: sc}

	p.out.Println(sc.String())

	if p.cfg.DryRun {
		o.Finished = time.Now()
		return o
	}

	o.Result, o.StartErr = p.exec.ExecuteCommand(ctx, sc)
	o.Finished = time.Now()

	var stderr string
	switch {
	case o.StartErr != nil:
		klog.Errorf("Failed to run %s for %s: %v", sc.Path, task.File, o.StartErr)
		stderr = o.StartErr.Error()
	case o.Result.Failed():
		stderr = o.Result.Stderr
	default:
		klog.V(2).Infof("Translated %s", task.File)
		return o
	}

	o.RecordPath, o.RecordErr = errlog.Write(p.cfg.ErrorDir, task.File, p.cfg.WorkDir, errlog.Record{
		Command: sc.String(),
		Stderr:  stderr,
	})
	if o.RecordErr != nil {
		klog.Errorf("%v", o.RecordErr)
	} else {
		klog.V(2).Infof("Recorded failure of %s in %s", task.File, o.RecordPath)
	}

	return o
}

// lineWriter keeps lines from concurrent workers whole
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) Println(line string) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	fmt.Fprintln(lw.w, line)
}
