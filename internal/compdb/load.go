package compdb

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Load reads a compilation database. A missing or malformed file is an error
// the caller is expected to treat as fatal.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read compilation database %q", path)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "failed to parse compilation database %q", path)
	}

	return entries, nil
}
