package git

import (
	"context"
	"errors"
	"iter"
)

// ErrUnavailable indicates the underlying git tooling could not be invoked.
// Callers get it wrapped with the failing operation; it is never retried here.
var ErrUnavailable = errors.New("git backend unavailable")

// Backend abstracts the commit-graph storage and traversal primitives needed
// by the searchers. The default implementations are GoGitBackend (in-process,
// go-git) and CLIBackend (shells out to the git executable); MockBackend
// serves tests.
type Backend interface {
	// ResolveRefs returns the full names of all references matching any of
	// the given patterns, sorted. Glob matching is anchored per path
	// segment: a pattern segment must match a complete name segment, so
	// "refs/remotes/*/upstream/*" does not match
	// "refs/remotes/origin/other/upstream/area".
	ResolveRefs(ctx context.Context, patterns []string) ([]string, error)

	// TipsOf resolves each reference name to its tip commit id, dropping
	// duplicates and root commits (a root cannot have been merged in).
	TipsOf(ctx context.Context, refNames []string) ([]string, error)

	// ParentsOf returns the direct parent ids of the given commit.
	ParentsOf(ctx context.Context, id string) ([]string, error)

	// PruneReachable returns the commits reachable from any candidate that
	// are not reachable from any commit in excludeReachableFrom.
	PruneReachable(ctx context.Context, candidates, excludeReachableFrom []string) ([]string, error)

	// MergeBase computes the merge base of the branch tip and the given
	// commit. ok is false when the two share no history; that is an
	// expected outcome, not an error.
	MergeBase(ctx context.Context, branch, id string) (string, bool, error)

	// MostRecentTopologically picks the most recent of the given commits in
	// reverse-topological order. Equally ranked commits fall back to the
	// backend's own ordering.
	MostRecentTopologically(ctx context.Context, ids []string) (string, error)

	// FindCommitByMessage returns the most recent commit on branch whose
	// message matches the extended-regexp pattern, or ok=false when none
	// does.
	FindCommitByMessage(ctx context.Context, branch, pattern string) (*Commit, bool, error)

	// CommitByID loads a single commit.
	CommitByID(ctx context.Context, id string) (*Commit, error)

	// ListRange streams the commits reachable from the branch tip but not
	// from fromID, restricted to the direct ancestry path between the two,
	// newest first in topological order. The sequence is pull-based and may
	// be abandoned early; call the returned function after iterating to
	// observe any traversal error.
	ListRange(ctx context.Context, fromID, branch string) (iter.Seq[*Commit], func() error)
}

// Compile-time interface conformance checks.
var (
	_ Backend = (*GoGitBackend)(nil)
	_ Backend = (*CLIBackend)(nil)
	_ Backend = (*MockBackend)(nil)
)
