// Package compdb reads CMake compilation databases and selects the entries
// that hipify-clang should translate.
package compdb

// Entry is one record of compile_commands.json
type Entry struct {
	// Directory is the working directory of the compiler invocation
	Directory string `json:"directory"`

	// File is the translation unit being compiled
	File string `json:"file"`

	// Command is the full compiler invocation as a single shell line
	Command string `json:"command"`
}

// Task is an entry selected for translation
type Task struct {
	Command string
	File    string
}
