// Package output renders commit search results for the surrounding tool.
package output

import (
	"time"

	"github.com/patchdev/upsearch/internal/git"
)

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*ConsoleWriter)(nil)
	_ ReportWriter = (*JSONWriter)(nil)
	_ ReportWriter = (*CSVWriter)(nil)
)

// Format represents the output format type.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
)

// Options controls output behavior.
type Options struct {
	Format     Format
	Top        int    // truncate to the first N commits, 0 = all
	OutputPath string // destination file, empty = stdout
	IDOnly     bool   // print bare commit ids
}

// Report holds the outcome of a commit search.
type Report struct {
	RepoPath    string
	Branch      string
	Origin      *git.Commit // the located starting-point commit
	Commits     []*git.Commit
	GeneratedAt time.Time
}

// ReportWriter writes search reports.
type ReportWriter interface {
	Write(report *Report, options Options) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format Format) ReportWriter {
	switch format {
	case FormatJSON:
		return &JSONWriter{}
	case FormatCSV:
		return &CSVWriter{}
	default:
		return &ConsoleWriter{}
	}
}
