// Package search locates a starting-point commit in a git history and lists
// the commits between it and a target branch tip, for deciding which commits
// are new relative to a prior upstream import or merge.
package search

import (
	"context"
	"errors"
	"slices"

	"github.com/patchdev/upsearch/internal/git"
)

// ErrNotFound indicates a search strategy could not locate a suitable origin
// commit.
var ErrNotFound = errors.New("not found")

// Searcher locates an origin commit via a strategy-specific Find and lists
// the commits between that origin and the target branch tip.
type Searcher interface {
	// Find locates the origin commit and caches it before returning its id.
	Find(ctx context.Context) (string, error)

	// AddFilter appends a filter to the pipeline unless already registered.
	// Insertion order is the order filters run in.
	AddFilter(f CommitFilter)

	// List returns the commits between the origin (exclusive) and the
	// branch tip, newest first, after running the filter pipeline. The
	// cached origin from a previous Find is reused.
	List(ctx context.Context) ([]*git.Commit, error)
}

// Compile-time interface conformance checks.
var (
	_ Searcher = (*NullSearcher)(nil)
	_ Searcher = (*UpstreamMergeBaseSearcher)(nil)
	_ Searcher = (*CommitMessageSearcher)(nil)
)

// searcher carries the state shared by every concrete strategy: the target
// branch, the ordered filter set and the single cached origin commit.
type searcher struct {
	backend git.Backend
	branch  string
	filters []CommitFilter
	commit  *git.Commit
}

// Branch returns the target branch the searcher operates on.
func (s *searcher) Branch() string {
	return s.branch
}

// Commit returns the cached origin commit, nil until Find has succeeded.
func (s *searcher) Commit() *git.Commit {
	return s.commit
}

// AddFilter appends the filter if not already present, keeping first-insertion
// order. Identity is interface equality, so registering the same instance
// twice is a no-op.
func (s *searcher) AddFilter(f CommitFilter) {
	if !slices.Contains(s.filters, f) {
		s.filters = append(s.filters, f)
	}
}

// list walks the ancestry path between the cached origin and the branch tip,
// threading the lazy sequence through head (strategy-injected truncation)
// followed by the registered filters, and materializes the result. find runs
// only when no origin is cached yet.
func (s *searcher) list(ctx context.Context, find func(context.Context) (string, error), head ...CommitFilter) ([]*git.Commit, error) {
	if s.commit == nil {
		if _, err := find(ctx); err != nil {
			return nil, err
		}
	}

	seq, seqErr := s.backend.ListRange(ctx, s.commit.ID, s.branch)
	for _, f := range head {
		seq = f.Filter(seq)
	}
	for _, f := range s.filters {
		seq = f.Filter(seq)
	}

	commits := slices.Collect(seq)
	if err := seqErr(); err != nil {
		return nil, err
	}
	return commits, nil
}

// NullSearcher is the no-op strategy: List is always empty and never touches
// the backend.
type NullSearcher struct {
	searcher
}

func NewNullSearcher() *NullSearcher {
	return &NullSearcher{}
}

// Find has nothing to locate; it reports ErrNotFound.
func (s *NullSearcher) Find(ctx context.Context) (string, error) {
	return "", ErrNotFound
}

// List returns an empty sequence regardless of branch or registered filters.
func (s *NullSearcher) List(ctx context.Context) ([]*git.Commit, error) {
	return []*git.Commit{}, nil
}
