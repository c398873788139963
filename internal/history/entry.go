package history

import "time"

// Entry is the recorded outcome of one translation task
type Entry struct {
	// Hash identifies the exact invocation (tool path and arguments)
	Hash string `json:"hash"`

	// SourceFile is the translated file as listed in the compilation database
	SourceFile string `json:"source_file"`

	// Command is the printable invocation
	Command string `json:"command"`

	// Failed is true when the tool wrote to stderr or could not be started
	Failed bool `json:"failed"`

	// ExitCode of the tool process; not used to decide failure
	ExitCode int `json:"exit_code"`

	// StderrBytes is the size of the captured error output
	StderrBytes int `json:"stderr_bytes"`

	// StartError is set when the process could not be run
	StartError string `json:"start_error,omitempty"`

	// Record is the path of the error record written for this task, if any
	Record string `json:"record,omitempty"`

	// Timestamp when the task finished
	Timestamp time.Time `json:"timestamp"`
}
