package output

import (
	"io"
	"os"

	"github.com/patchdev/upsearch/internal/git"
)

// openDestination returns the writer for the configured output path and a
// close function. Stdout is never closed.
func openDestination(options Options) (io.Writer, func() error, error) {
	if options.OutputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(options.OutputPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// limit applies the Top option to the commit list.
func limit(commits []*git.Commit, options Options) []*git.Commit {
	if options.Top > 0 && options.Top < len(commits) {
		return commits[:options.Top]
	}
	return commits
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}
