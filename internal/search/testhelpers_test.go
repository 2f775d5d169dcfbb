package search

import (
	"context"

	"github.com/patchdev/upsearch/internal/git"
)

// newImportHistory builds the shared in-memory scenario. The local branch
// imported the upstream snapshot A and grew three local commits, one of which
// (D) merges A's line a second time. Upstream moved on to E and E2 since the
// import, and a separate unrelated repository line ends at F.
//
//	A --- B --- C --- D --- Cp   <- refs/heads/master
//	 \_______________/
//	  \
//	   E --- E2                  <- origin/upstream/{stable,master}
//
//	R --- F                      <- origin/upstream/unrelated
//
// Commits are listed newest first; that order doubles as the mock's
// topological tie-break.
func newImportHistory() *git.MockBackend {
	commits := []*git.Commit{
		{ID: "Cp", Parents: []string{"D"}, Message: "local change three"},
		{ID: "D", Parents: []string{"C", "A"}, Message: "Merge branch 'fixes'\n\nImported from upstream."},
		{ID: "C", Parents: []string{"B"}, Message: "local change two"},
		{ID: "B", Parents: []string{"A"}, Message: "local change one"},
		{ID: "E2", Parents: []string{"E"}, Message: "upstream release two"},
		{ID: "E", Parents: []string{"A"}, Message: "upstream release one"},
		{ID: "F", Parents: []string{"R"}, Message: "unrelated work"},
		{ID: "A", Message: "initial upstream snapshot"},
		{ID: "R", Message: "unrelated root"},
	}
	return git.NewMockBackend(commits, map[string]string{
		"refs/heads/master":                      "Cp",
		"refs/remotes/origin/upstream/master":    "E2",
		"refs/remotes/origin/upstream/stable":    "E",
		"refs/remotes/origin/upstream/unrelated": "F",
		// Extra path segment ahead of the upstream namespace; anchored
		// matching must never resolve it. It points at the branch tip, so a
		// false match would corrupt the merge-base result.
		"refs/remotes/origin/other/upstream/decoy": "Cp",
	})
}

// spyBackend records which backend calls the search strategies make.
type spyBackend struct {
	*git.MockBackend
	mergeBaseWith []string
	resolveCalls  int
}

func newSpyBackend(mock *git.MockBackend) *spyBackend {
	return &spyBackend{MockBackend: mock}
}

func (s *spyBackend) MergeBase(ctx context.Context, branch, id string) (string, bool, error) {
	s.mergeBaseWith = append(s.mergeBaseWith, id)
	return s.MockBackend.MergeBase(ctx, branch, id)
}

func (s *spyBackend) ResolveRefs(ctx context.Context, patterns []string) ([]string, error) {
	s.resolveCalls++
	return s.MockBackend.ResolveRefs(ctx, patterns)
}

func commitIDs(commits []*git.Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.ID)
	}
	return out
}
