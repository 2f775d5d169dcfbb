package search

import (
	"context"
	"fmt"

	"github.com/patchdev/upsearch/internal/git"
)

// CommitMessageSearcher uses the most recent commit on the target branch
// whose message matches a pattern as the search origin. Typical patterns mark
// a previous import, e.g. "Imported from upstream".
type CommitMessageSearcher struct {
	searcher
	pattern string
}

func NewCommitMessageSearcher(backend git.Backend, branch, pattern string) *CommitMessageSearcher {
	return &CommitMessageSearcher{
		searcher: searcher{backend: backend, branch: branch},
		pattern:  pattern,
	}
}

// Pattern returns the commit-message pattern being searched for.
func (s *CommitMessageSearcher) Pattern() string {
	return s.pattern
}

// Find searches the branch history for a commit message matching the pattern
// (extended-regexp semantics) and caches the most recent match as the origin.
func (s *CommitMessageSearcher) Find(ctx context.Context) (string, error) {
	commit, ok, err := s.backend.FindCommitByMessage(ctx, s.branch, s.pattern)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no commit message on %s matches %q: %w", s.branch, s.pattern, ErrNotFound)
	}
	s.commit = commit
	return commit.ID, nil
}

// List returns the commits between the matched commit and the branch tip,
// with the matched commit itself appended at the end. The range excludes its
// starting point, but the match is usually wanted: it may itself be a merge
// whose brought-in history is relevant to the caller.
func (s *CommitMessageSearcher) List(ctx context.Context) ([]*git.Commit, error) {
	commits, err := s.list(ctx, s.Find)
	if err != nil {
		return nil, err
	}
	return append(commits, s.commit), nil
}

// ListExcludingMatched returns the bare range without the matched commit.
func (s *CommitMessageSearcher) ListExcludingMatched(ctx context.Context) ([]*git.Commit, error) {
	return s.list(ctx, s.Find)
}
