// Package errlog stores one text record per failed translation.
//
// Records live flat in a single directory and are named after the source file
// with the working directory removed and separators turned into underscores:
// <cwd>/include/ops/a.cu becomes _include_ops_a.cu.txt. A run never clears the
// directory, so records from earlier runs stay until Clear is called.
package errlog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/Norgate-AV/hipify-batch/internal/utils"
)

const recordExt = ".txt"

// Record is the command line and error output of one failed translation
type Record struct {
	Command string
	Stderr  string
}

// Bytes renders the record: command line, blank line, raw error text
func (r Record) Bytes() []byte {
	return []byte(r.Command + "\n\n" + r.Stderr)
}

// FileName returns the record file name for a source file
func FileName(file, workDir string) string {
	return utils.SanitizeFileName(file, workDir) + recordExt
}

// EnsureDir creates the record directory, leaving existing records in place
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create error directory %q", dir)
	}

	return nil
}

// Write stores the record for file and returns its path
func Write(dir, file, workDir string, rec Record) (string, error) {
	path := filepath.Join(dir, FileName(file, workDir))

	if err := os.WriteFile(path, rec.Bytes(), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write error record for %s", file)
	}

	return path, nil
}

// List returns the record file names currently in dir, sorted
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No records yet
		}
		return nil, errors.Wrap(err, "failed to read error directory")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}

		names = append(names, entry.Name())
	}

	sort.Strings(names)

	return names, nil
}

// Clear removes every record in dir and reports how many were removed.
// Other files (such as the history database) are left alone.
func Clear(dir string) (int, error) {
	names, err := List(dir)
	if err != nil {
		return 0, err
	}

	for i, name := range names {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return i, errors.Wrapf(err, "failed to remove %s", name)
		}
	}

	return len(names), nil
}
