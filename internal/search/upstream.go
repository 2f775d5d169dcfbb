package search

import (
	"context"
	"fmt"

	"github.com/patchdev/upsearch/internal/git"
)

// DefaultUpstreamPattern is the conventional namespace searched for upstream
// references.
const DefaultUpstreamPattern = "upstream/*"

// UpstreamOptions configures an UpstreamMergeBaseSearcher.
type UpstreamOptions struct {
	// Pattern limits which references are searched for a merge base.
	// Defaults to DefaultUpstreamPattern.
	Pattern string

	// SearchTags includes refs/tags in the search.
	SearchTags bool

	// Remotes restricts the search to these remotes. Empty searches all
	// remotes matching the pattern.
	Remotes []string
}

// UpstreamMergeBaseSearcher finds the most recent commit at which any of the
// upstream reference namespaces was merged into the target branch. Candidate
// tips that are reachable from other candidates are pruned up front so the
// comparatively expensive pairwise merge-base runs as few times as possible.
type UpstreamMergeBaseSearcher struct {
	searcher
	pattern    string
	references []string
}

// NewUpstreamMergeBaseSearcher builds the fixed list of fully-qualified
// reference patterns to query at search time. Each searcher owns its own
// copy of the configuration; nothing is shared between instances.
func NewUpstreamMergeBaseSearcher(backend git.Backend, branch string, opts UpstreamOptions) *UpstreamMergeBaseSearcher {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultUpstreamPattern
	}

	references := []string{"refs/heads/" + pattern}
	if len(opts.Remotes) > 0 {
		for _, remote := range opts.Remotes {
			references = append(references, "refs/remotes/"+remote+"/"+pattern)
		}
	} else {
		references = append(references, "refs/remotes/*/"+pattern)
	}
	if opts.SearchTags {
		references = append(references, "refs/tags/"+pattern)
	}

	return &UpstreamMergeBaseSearcher{
		searcher:   searcher{backend: backend, branch: branch},
		pattern:    pattern,
		references: references,
	}
}

// Pattern returns the reference pattern being searched.
func (s *UpstreamMergeBaseSearcher) Pattern() string {
	return s.pattern
}

// Find locates the most recent merge base between the upstream references and
// the target branch:
//
//  1. Resolve the reference patterns to concrete names. for-each-ref style
//     matching anchors each pattern segment, so "upstream/*" never matches
//     names with extra leading segments.
//  2. Resolve the references to tip commits, dropping duplicates and roots.
//  3. Collect every tip's parents into a prune set and discard candidates
//     reachable from it. A candidate that is an ancestor of another candidate
//     can only produce an older merge base, so this keeps merge-base calls to
//     the minimal frontier.
//  4. Compute the pairwise merge base of each survivor with the branch tip.
//     Candidates on wholly unrelated lines of history are skipped.
//  5. The most topologically recent base wins and is cached as the origin.
func (s *UpstreamMergeBaseSearcher) Find(ctx context.Context) (string, error) {
	names, err := s.backend.ResolveRefs(ctx, s.references)
	if err != nil {
		return "", err
	}

	tips, err := s.backend.TipsOf(ctx, names)
	if err != nil {
		return "", err
	}

	var prune []string
	for _, tip := range tips {
		parents, err := s.backend.ParentsOf(ctx, tip)
		if err != nil {
			return "", err
		}
		prune = append(prune, parents...)
	}

	candidates, err := s.backend.PruneReachable(ctx, tips, prune)
	if err != nil {
		return "", err
	}

	seen := make(map[string]bool)
	var bases []string
	for _, candidate := range candidates {
		base, ok, err := s.backend.MergeBase(ctx, s.branch, candidate)
		if err != nil || !ok {
			// Unrelated lines of history are expected here and do not
			// abort the search.
			continue
		}
		if !seen[base] {
			seen[base] = true
			bases = append(bases, base)
		}
	}
	if len(bases) == 0 {
		return "", fmt.Errorf("failed to locate suitable merge-base: %w", ErrNotFound)
	}

	best, err := s.backend.MostRecentTopologically(ctx, bases)
	if err != nil {
		return "", err
	}

	commit, err := s.backend.CommitByID(ctx, best)
	if err != nil {
		return "", err
	}
	s.commit = commit
	return commit.ID, nil
}

// List returns the commits between the found merge base and the branch tip,
// truncated at the first re-encounter of a parent edge into the merge base.
// When the base was merged into the branch several times through unrelated
// branches, the raw ancestry path contains every merge occurrence; stopping
// at the first parent edge keeps only the most recent lineage.
func (s *UpstreamMergeBaseSearcher) List(ctx context.Context) ([]*git.Commit, error) {
	if s.commit == nil {
		if _, err := s.Find(ctx); err != nil {
			return nil, err
		}
	}
	return s.list(ctx, s.Find, NewBeforeFirstParentCommitFilter(s.commit.ID))
}

// ListAll returns the full untruncated ancestry path, including commits from
// every merge occurrence of the base.
func (s *UpstreamMergeBaseSearcher) ListAll(ctx context.Context) ([]*git.Commit, error) {
	return s.list(ctx, s.Find)
}
