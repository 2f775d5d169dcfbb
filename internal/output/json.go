package output

import (
	"encoding/json"
	"time"

	"github.com/patchdev/upsearch/internal/git"
)

// JSONWriter writes search reports as JSON.
type JSONWriter struct{}

type jsonReport struct {
	RepoPath    string       `json:"repoPath"`
	Branch      string       `json:"branch"`
	Origin      *jsonCommit  `json:"origin,omitempty"`
	Commits     []jsonCommit `json:"commits"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

type jsonCommit struct {
	SHA     string    `json:"sha"`
	Parents []string  `json:"parents,omitempty"`
	Author  string    `json:"author,omitempty"`
	Email   string    `json:"email,omitempty"`
	Date    time.Time `json:"date"`
	Message string    `json:"message,omitempty"`
}

// Write outputs the search report as indented JSON.
func (w *JSONWriter) Write(report *Report, options Options) error {
	out, closeFn, err := openDestination(options)
	if err != nil {
		return err
	}
	defer closeFn()

	doc := jsonReport{
		RepoPath:    report.RepoPath,
		Branch:      report.Branch,
		GeneratedAt: report.GeneratedAt,
		Commits:     make([]jsonCommit, 0, len(report.Commits)),
	}
	if report.Origin != nil {
		origin := toJSONCommit(report.Origin, options)
		doc.Origin = &origin
	}
	for _, c := range limit(report.Commits, options) {
		doc.Commits = append(doc.Commits, toJSONCommit(c, options))
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func toJSONCommit(c *git.Commit, options Options) jsonCommit {
	if options.IDOnly {
		return jsonCommit{SHA: c.ID}
	}
	return jsonCommit{
		SHA:     c.ID,
		Parents: c.Parents,
		Author:  c.Author.Name,
		Email:   c.Author.Email,
		Date:    c.When,
		Message: c.Subject(),
	}
}
