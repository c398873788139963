package compdb

import (
	"fmt"
	"io"
	"strings"

	"github.com/Norgate-AV/hipify-batch/internal/config"
	"github.com/Norgate-AV/hipify-batch/internal/utils"
)

// Filter drops entries from excluded build trees and host-only .cpp units,
// writing one "excluded: <path>" line to out per dropped entry. The returned
// tasks keep database order.
func Filter(entries []Entry, cfg *config.Config, out io.Writer) []Task {
	tasks := make([]Task, 0, len(entries))

	for _, e := range entries {
		rel := utils.StripPrefixAll(e.Directory, cfg.WorkDir)
		if cfg.IsExcludedDir(rel) {
			fmt.Fprintf(out, "excluded: %s\n", rel)
			continue
		}

		if strings.HasSuffix(e.File, ".cpp") {
			fmt.Fprintf(out, "excluded: %s\n", e.File)
			continue
		}

		tasks = append(tasks, Task{Command: e.Command, File: e.File})
	}

	return tasks
}
