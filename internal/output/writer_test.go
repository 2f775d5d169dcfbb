package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/patchdev/upsearch/internal/git"
)

func sampleReport() *Report {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &Report{
		RepoPath: "/tmp/repo",
		Branch:   "refs/heads/master",
		Origin: &git.Commit{
			ID:      "aaaa111122223333aaaa111122223333aaaa1111",
			Author:  git.AuthorInfo{Name: "Jane Dev", Email: "jane@example.com"},
			When:    when,
			Message: "initial upstream snapshot",
		},
		Commits: []*git.Commit{
			{
				ID:      "cccc333344445555cccc333344445555cccc3333",
				Parents: []string{"bbbb222233334444bbbb222233334444bbbb2222"},
				Author:  git.AuthorInfo{Name: "Jane Dev", Email: "jane@example.com"},
				When:    when.Add(2 * time.Hour),
				Message: "local change two\n\nwith a body",
			},
			{
				ID: "bbbb222233334444bbbb222233334444bbbb2222",
				Parents: []string{
					"aaaa111122223333aaaa111122223333aaaa1111",
					"dddd444455556666dddd444455556666dddd4444",
				},
				Author:  git.AuthorInfo{Name: "Sam Dev", Email: "sam@example.com"},
				When:    when.Add(time.Hour),
				Message: "Merge branch 'upstream/master'",
			},
		},
		GeneratedAt: when.Add(3 * time.Hour),
	}
}

func TestNewReportWriter(t *testing.T) {
	if _, ok := NewReportWriter(FormatJSON).(*JSONWriter); !ok {
		t.Error("json format did not produce a JSONWriter")
	}
	if _, ok := NewReportWriter(FormatCSV).(*CSVWriter); !ok {
		t.Error("csv format did not produce a CSVWriter")
	}
	if _, ok := NewReportWriter(FormatConsole).(*ConsoleWriter); !ok {
		t.Error("console format did not produce a ConsoleWriter")
	}
	if _, ok := NewReportWriter(Format("bogus")).(*ConsoleWriter); !ok {
		t.Error("unknown format did not fall back to console")
	}
}

func TestJSONWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	err := (&JSONWriter{}).Write(sampleReport(), Options{Format: FormatJSON, OutputPath: path})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var doc jsonReport
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if doc.Branch != "refs/heads/master" || doc.RepoPath != "/tmp/repo" {
		t.Fatalf("header = %+v", doc)
	}
	if doc.Origin == nil || doc.Origin.SHA != "aaaa111122223333aaaa111122223333aaaa1111" {
		t.Fatalf("origin = %+v", doc.Origin)
	}
	if len(doc.Commits) != 2 {
		t.Fatalf("commits = %d, want 2", len(doc.Commits))
	}
	if doc.Commits[0].Message != "local change two" {
		t.Fatalf("message = %q, want the subject line only", doc.Commits[0].Message)
	}
	if len(doc.Commits[1].Parents) != 2 {
		t.Fatalf("parents = %v", doc.Commits[1].Parents)
	}
}

func TestJSONWriter_IDOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	err := (&JSONWriter{}).Write(sampleReport(), Options{Format: FormatJSON, OutputPath: path, IDOnly: true})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var doc jsonReport
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, c := range doc.Commits {
		if c.SHA == "" {
			t.Fatal("missing sha")
		}
		if c.Author != "" || c.Message != "" || len(c.Parents) != 0 {
			t.Fatalf("commit %s kept metadata: %+v", c.SHA, c)
		}
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	err := (&CSVWriter{}).Write(sampleReport(), Options{Format: FormatCSV, OutputPath: path})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if !slices.Equal(rows[0], []string{"sha", "parents", "author", "email", "date", "message"}) {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[2][1] != "aaaa111122223333aaaa111122223333aaaa1111 dddd444455556666dddd444455556666dddd4444" {
		t.Fatalf("merge parents = %q, want space-joined", rows[2][1])
	}
	if rows[1][5] != "local change two" {
		t.Fatalf("message = %q", rows[1][5])
	}
}

func TestCSVWriter_IDOnlyAndTop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	err := (&CSVWriter{}).Write(sampleReport(), Options{Format: FormatCSV, OutputPath: path, IDOnly: true, Top: 1})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if !slices.Equal(rows[0], []string{"sha"}) {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "cccc333344445555cccc333344445555cccc3333" {
		t.Fatalf("row = %v", rows[1])
	}
}

func TestLimit(t *testing.T) {
	commits := []*git.Commit{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	if got := limit(commits, Options{Top: 2}); len(got) != 2 {
		t.Fatalf("Top 2 = %d commits", len(got))
	}
	if got := limit(commits, Options{Top: 0}); len(got) != 3 {
		t.Fatalf("Top 0 = %d commits", len(got))
	}
	if got := limit(commits, Options{Top: 10}); len(got) != 3 {
		t.Fatalf("Top 10 = %d commits", len(got))
	}
}

func TestTruncateMessage(t *testing.T) {
	if got := truncateMessage("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncateMessage("a very long commit subject", 10); got != "a very ..." {
		t.Fatalf("got %q", got)
	}
	if len(truncateMessage("a very long commit subject", 10)) != 10 {
		t.Fatal("truncated length exceeds the limit")
	}
}
