package search

import (
	"iter"
	"slices"

	"github.com/patchdev/upsearch/internal/git"
)

// CommitFilter transforms one lazy commit sequence into another. Stages are
// chained in registration order and stay pull-based: apart from
// ReverseCommitFilter, a filter must not drain its input ahead of the
// consumer, so breaking out of a large range early costs nothing.
type CommitFilter interface {
	Filter(commits iter.Seq[*git.Commit]) iter.Seq[*git.Commit]
}

// Compile-time interface conformance checks.
var (
	_ CommitFilter = (*MergeCommitFilter)(nil)
	_ CommitFilter = (*NoMergeCommitFilter)(nil)
	_ CommitFilter = (*BeforeFirstParentCommitFilter)(nil)
	_ CommitFilter = (*CommitSHA1Filter)(nil)
	_ CommitFilter = (*ReverseCommitFilter)(nil)
)

// MergeCommitFilter passes through only commits with two or more parents.
type MergeCommitFilter struct{}

func NewMergeCommitFilter() *MergeCommitFilter {
	return &MergeCommitFilter{}
}

func (f *MergeCommitFilter) Filter(commits iter.Seq[*git.Commit]) iter.Seq[*git.Commit] {
	return func(yield func(*git.Commit) bool) {
		for c := range commits {
			if c.IsMerge() && !yield(c) {
				return
			}
		}
	}
}

// NoMergeCommitFilter prunes all commits with two or more parents.
type NoMergeCommitFilter struct{}

func NewNoMergeCommitFilter() *NoMergeCommitFilter {
	return &NoMergeCommitFilter{}
}

func (f *NoMergeCommitFilter) Filter(commits iter.Seq[*git.Commit]) iter.Seq[*git.Commit] {
	return func(yield func(*git.Commit) bool) {
		for c := range commits {
			if !c.IsMerge() && !yield(c) {
				return
			}
		}
	}
}

// BeforeFirstParentCommitFilter passes commits through until it has yielded
// the first one whose parents contain the stop commit, then ends the
// sequence. The boundary commit itself is included; everything after it is
// discarded without being pulled from upstream.
type BeforeFirstParentCommitFilter struct {
	stop string
}

func NewBeforeFirstParentCommitFilter(stop string) *BeforeFirstParentCommitFilter {
	return &BeforeFirstParentCommitFilter{stop: stop}
}

func (f *BeforeFirstParentCommitFilter) Filter(commits iter.Seq[*git.Commit]) iter.Seq[*git.Commit] {
	return func(yield func(*git.Commit) bool) {
		for c := range commits {
			// Yield before checking the parents, otherwise the boundary
			// commit itself would be trimmed too.
			if !yield(c) {
				return
			}
			if c.HasParent(f.stop) {
				return
			}
		}
	}
}

// CommitSHA1Filter strips each commit down to its id.
type CommitSHA1Filter struct{}

func NewCommitSHA1Filter() *CommitSHA1Filter {
	return &CommitSHA1Filter{}
}

func (f *CommitSHA1Filter) Filter(commits iter.Seq[*git.Commit]) iter.Seq[*git.Commit] {
	return func(yield func(*git.Commit) bool) {
		for c := range commits {
			if !yield(&git.Commit{ID: c.ID}) {
				return
			}
		}
	}
}

// ReverseCommitFilter reverses the sequence. It has to drain its input before
// producing anything, which forfeits the memory benefit of the chain; use it
// as the last stage only.
type ReverseCommitFilter struct{}

func NewReverseCommitFilter() *ReverseCommitFilter {
	return &ReverseCommitFilter{}
}

func (f *ReverseCommitFilter) Filter(commits iter.Seq[*git.Commit]) iter.Seq[*git.Commit] {
	return func(yield func(*git.Commit) bool) {
		all := slices.Collect(commits)
		for i := len(all) - 1; i >= 0; i-- {
			if !yield(all[i]) {
				return
			}
		}
	}
}
