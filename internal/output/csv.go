package output

import (
	"encoding/csv"
	"strings"
)

// CSVWriter writes search reports as CSV.
type CSVWriter struct{}

// Write outputs the search report as CSV with a header row.
func (w *CSVWriter) Write(report *Report, options Options) error {
	out, closeFn, err := openDestination(options)
	if err != nil {
		return err
	}
	defer closeFn()

	cw := csv.NewWriter(out)

	if options.IDOnly {
		if err := cw.Write([]string{"sha"}); err != nil {
			return err
		}
		for _, c := range limit(report.Commits, options) {
			if err := cw.Write([]string{c.ID}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	if err := cw.Write([]string{"sha", "parents", "author", "email", "date", "message"}); err != nil {
		return err
	}
	for _, c := range limit(report.Commits, options) {
		record := []string{
			c.ID,
			strings.Join(c.Parents, " "),
			c.Author.Name,
			c.Author.Email,
			c.When.Format("2006-01-02T15:04:05Z07:00"),
			c.Subject(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
