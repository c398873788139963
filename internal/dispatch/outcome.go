package dispatch

import (
	"time"

	"github.com/Norgate-AV/hipify-batch/internal/compdb"
	"github.com/Norgate-AV/hipify-batch/internal/compiler"
	"github.com/Norgate-AV/hipify-batch/internal/history"
)

// Outcome is the result of translating one task
type Outcome struct {
	Task    compdb.Task
	Command *compiler.ShellCommand

	// Result is nil when the tool could not be started or the run was a dry run
	Result *compiler.Result

	// StartErr is set when the tool could not be started
	StartErr error

	// RecordPath is the error record written for this task, if any
	RecordPath string

	// RecordErr is set when the error record could not be written
	RecordErr error

	Finished time.Time
}

// Failed reports whether the task produced error output or did not run
func (o *Outcome) Failed() bool {
	return o.StartErr != nil || o.RecordErr != nil || (o.Result != nil && o.Result.Failed())
}

// HistoryEntry converts the outcome for the run ledger
func (o *Outcome) HistoryEntry() history.Entry {
	e := history.Entry{
		Hash:       history.HashArgs(o.Command.Argv()),
		SourceFile: o.Task.File,
		Command:    o.Command.String(),
		Failed:     o.Failed(),
		Record:     o.RecordPath,
		Timestamp:  o.Finished,
	}

	if o.Result != nil {
		e.ExitCode = o.Result.ExitCode
		e.StderrBytes = len(o.Result.Stderr)
	}

	if o.StartErr != nil {
		e.StartError = o.StartErr.Error()
	}

	return e
}

// Summary aggregates the outcomes of a run, in task order
type Summary struct {
	Outcomes []*Outcome
}

// Failed returns the outcomes that failed
func (s *Summary) Failed() []*Outcome {
	var failed []*Outcome
	for _, o := range s.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}

	return failed
}

// Counts returns the number of tasks run and the number that failed
func (s *Summary) Counts() (int, int) {
	return len(s.Outcomes), len(s.Failed())
}

// HistoryEntries converts all outcomes for the run ledger
func (s *Summary) HistoryEntries() []history.Entry {
	entries := make([]history.Entry, 0, len(s.Outcomes))
	for _, o := range s.Outcomes {
		entries = append(entries, o.HistoryEntry())
	}

	return entries
}
