package git

import (
	"context"
	"fmt"
	"iter"
	"regexp"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// GoGitBackend implements Backend in-process on top of go-git.
type GoGitBackend struct {
	repo *gogit.Repository
}

// OpenGoGit opens the repository at path and wraps it in a backend.
func OpenGoGit(path string) (*GoGitBackend, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return &GoGitBackend{repo: repo}, nil
}

// NewGoGitBackend wraps an already opened repository.
func NewGoGitBackend(repo *gogit.Repository) *GoGitBackend {
	return &GoGitBackend{repo: repo}
}

// ResolveRefs matches full reference names against the given patterns.
// doublestar's "*" does not cross "/" boundaries, which gives the anchored
// per-segment semantics we need: "refs/remotes/*/upstream/*" must not match
// "refs/remotes/origin/other/upstream/area".
func (b *GoGitBackend) ResolveRefs(ctx context.Context, patterns []string) ([]string, error) {
	refs, err := b.repo.References()
	if err != nil {
		return nil, err
	}

	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name().String()
		for _, pattern := range patterns {
			ok, err := doublestar.Match(pattern, name)
			if err != nil {
				return fmt.Errorf("bad ref pattern %q: %w", pattern, err)
			}
			if ok {
				names = append(names, name)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

// TipsOf resolves reference names to tip commit ids, excluding root commits
// and duplicates.
func (b *GoGitBackend) TipsOf(ctx context.Context, refNames []string) ([]string, error) {
	seen := make(map[string]bool, len(refNames))
	var tips []string

	for _, name := range refNames {
		ref, err := b.repo.Reference(plumbing.ReferenceName(name), true)
		if err != nil {
			return nil, fmt.Errorf("resolve ref %s: %w", name, err)
		}
		commit, err := b.peelCommit(ref.Hash())
		if err != nil {
			return nil, fmt.Errorf("resolve ref %s: %w", name, err)
		}
		id := commit.Hash.String()
		if commit.NumParents() == 0 || seen[id] {
			continue
		}
		seen[id] = true
		tips = append(tips, id)
	}

	return tips, nil
}

// ParentsOf returns the direct parent ids of a commit.
func (b *GoGitBackend) ParentsOf(ctx context.Context, id string) ([]string, error) {
	commit, err := b.peelCommit(plumbing.NewHash(id))
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", id, err)
	}
	parents := make([]string, 0, commit.NumParents())
	for _, p := range commit.ParentHashes {
		parents = append(parents, p.String())
	}
	return parents, nil
}

// PruneReachable walks from the candidates, stopping at anything reachable
// from excludeReachableFrom, and returns the commits visited. With the prune
// set holding every candidate's parents this reduces to the minimal frontier
// of candidates that are not ancestors of one another.
func (b *GoGitBackend) PruneReachable(ctx context.Context, candidates, excludeReachableFrom []string) ([]string, error) {
	excluded, err := b.reachableSet(ctx, excludeReachableFrom)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool)
	var result []string
	var queue []plumbing.Hash
	for _, id := range candidates {
		queue = append(queue, plumbing.NewHash(id))
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := queue[0]
		queue = queue[1:]
		id := h.String()
		if visited[id] || excluded[id] {
			continue
		}
		visited[id] = true
		result = append(result, id)

		commit, err := b.peelCommit(h)
		if err != nil {
			return nil, fmt.Errorf("lookup commit %s: %w", id, err)
		}
		queue = append(queue, commit.ParentHashes...)
	}

	return result, nil
}

// MergeBase returns the merge base of the branch tip and the given commit.
// Unrelated histories yield ok=false rather than an error.
func (b *GoGitBackend) MergeBase(ctx context.Context, branch, id string) (string, bool, error) {
	tip, err := b.tip(branch)
	if err != nil {
		return "", false, err
	}
	commit, err := b.peelCommit(plumbing.NewHash(id))
	if err != nil {
		return "", false, fmt.Errorf("lookup commit %s: %w", id, err)
	}
	bases, err := tip.MergeBase(commit)
	if err != nil {
		return "", false, fmt.Errorf("merge-base %s %s: %w", branch, id, err)
	}
	if len(bases) == 0 {
		return "", false, nil
	}
	return bases[0].Hash.String(), true, nil
}

// MostRecentTopologically picks the commit that is not an ancestor of any
// other given commit, preferring the newest committer date when several are
// mutually unordered.
func (b *GoGitBackend) MostRecentTopologically(ctx context.Context, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", fmt.Errorf("no commits to order")
	}

	commits := make([]*object.Commit, 0, len(ids))
	for _, id := range ids {
		commit, err := b.peelCommit(plumbing.NewHash(id))
		if err != nil {
			return "", fmt.Errorf("lookup commit %s: %w", id, err)
		}
		commits = append(commits, commit)
	}

	var best *object.Commit
	for i, candidate := range commits {
		dominated := false
		for j, other := range commits {
			if i == j || candidate.Hash == other.Hash {
				continue
			}
			ok, err := candidate.IsAncestor(other)
			if err != nil {
				return "", fmt.Errorf("ancestry check %s: %w", candidate.Hash, err)
			}
			if ok {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}
		if best == nil || candidate.Committer.When.After(best.Committer.When) {
			best = candidate
		}
	}

	return best.Hash.String(), nil
}

// FindCommitByMessage walks the branch newest-first and returns the first
// commit whose message matches the POSIX extended-regexp pattern.
func (b *GoGitBackend) FindCommitByMessage(ctx context.Context, branch, pattern string) (*Commit, bool, error) {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, false, fmt.Errorf("bad message pattern %q: %w", pattern, err)
	}

	tip, err := b.tip(branch)
	if err != nil {
		return nil, false, err
	}
	logIter, err := b.repo.Log(&gogit.LogOptions{From: tip.Hash, Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, false, err
	}
	defer logIter.Close()

	var found *object.Commit
	err = logIter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if re.MatchString(c.Message) {
			found = c
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if found == nil {
		return nil, false, nil
	}
	return toModel(found), true, nil
}

// CommitByID loads a single commit.
func (b *GoGitBackend) CommitByID(ctx context.Context, id string) (*Commit, error) {
	commit, err := b.peelCommit(plumbing.NewHash(id))
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", id, err)
	}
	return toModel(commit), nil
}

// ListRange streams the ancestry-path commits between fromID (exclusive) and
// the branch tip, newest first in topological order. Topological ordering
// requires buffering the subgraph's shape up front, but commit objects are
// only loaded as the consumer pulls them.
func (b *GoGitBackend) ListRange(ctx context.Context, fromID, branch string) (iter.Seq[*Commit], func() error) {
	var streamErr error
	seq := func(yield func(*Commit) bool) {
		order, err := b.ancestryPath(ctx, fromID, branch)
		if err != nil {
			streamErr = err
			return
		}
		for _, h := range order {
			commit, err := b.peelCommit(h)
			if err != nil {
				streamErr = fmt.Errorf("lookup commit %s: %w", h, err)
				return
			}
			if !yield(toModel(commit)) {
				return
			}
		}
	}
	return seq, func() error { return streamErr }
}

// ancestryPath computes the hashes of fromID..branch restricted to the direct
// ancestry path, newest first. A commit is on the path when it descends from
// fromID and is reachable from the branch tip.
func (b *GoGitBackend) ancestryPath(ctx context.Context, fromID, branch string) ([]plumbing.Hash, error) {
	from := plumbing.NewHash(fromID)
	tip, err := b.tip(branch)
	if err != nil {
		return nil, err
	}

	excluded, err := b.reachableSet(ctx, []string{fromID})
	if err != nil {
		return nil, err
	}

	// Collect the subgraph reachable from the tip but not from fromID.
	nodes := make(map[plumbing.Hash]*object.Commit)
	queue := []plumbing.Hash{tip.Hash}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := queue[0]
		queue = queue[1:]
		if _, ok := nodes[h]; ok || excluded[h.String()] {
			continue
		}
		commit, err := b.peelCommit(h)
		if err != nil {
			return nil, fmt.Errorf("lookup commit %s: %w", h, err)
		}
		nodes[h] = commit
		queue = append(queue, commit.ParentHashes...)
	}

	// Topological order, newest first: repeatedly emit the commit whose
	// children (within the subgraph) have all been emitted, preferring the
	// newest committer date among those ready.
	childCount := make(map[plumbing.Hash]int, len(nodes))
	for _, commit := range nodes {
		for _, p := range commit.ParentHashes {
			if _, ok := nodes[p]; ok {
				childCount[p]++
			}
		}
	}
	var ready []plumbing.Hash
	for h := range nodes {
		if childCount[h] == 0 {
			ready = append(ready, h)
		}
	}

	order := make([]plumbing.Hash, 0, len(nodes))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			ci, cb := nodes[ready[i]], nodes[ready[best]]
			if ci.Committer.When.After(cb.Committer.When) ||
				(ci.Committer.When.Equal(cb.Committer.When) && ready[i].String() > ready[best].String()) {
				best = i
			}
		}
		h := ready[best]
		ready = slices.Delete(ready, best, best+1)
		order = append(order, h)
		for _, p := range nodes[h].ParentHashes {
			if _, ok := nodes[p]; !ok {
				continue
			}
			childCount[p]--
			if childCount[p] == 0 {
				ready = append(ready, p)
			}
		}
	}

	// Restrict to the ancestry path. Walking the order oldest-first
	// guarantees parents are decided before their children.
	onPath := make(map[plumbing.Hash]bool, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		h := order[i]
		for _, p := range nodes[h].ParentHashes {
			if p == from || onPath[p] {
				onPath[h] = true
				break
			}
		}
	}

	path := order[:0]
	for _, h := range order {
		if onPath[h] {
			path = append(path, h)
		}
	}
	return path, nil
}

// tip resolves a branch name, ref or revision to its commit.
func (b *GoGitBackend) tip(rev string) (*object.Commit, error) {
	hash, err := b.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve revision %s: %w", rev, err)
	}
	return b.peelCommit(*hash)
}

// peelCommit loads a commit, peeling one level of annotated tag if needed.
func (b *GoGitBackend) peelCommit(h plumbing.Hash) (*object.Commit, error) {
	commit, err := b.repo.CommitObject(h)
	if err == nil {
		return commit, nil
	}
	tag, tagErr := b.repo.TagObject(h)
	if tagErr != nil {
		return nil, err
	}
	return tag.Commit()
}

// reachableSet returns the ids of all commits reachable from the given ids,
// the ids themselves included.
func (b *GoGitBackend) reachableSet(ctx context.Context, ids []string) (map[string]bool, error) {
	reachable := make(map[string]bool)
	var queue []plumbing.Hash
	for _, id := range ids {
		queue = append(queue, plumbing.NewHash(id))
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := queue[0]
		queue = queue[1:]
		id := h.String()
		if reachable[id] {
			continue
		}
		reachable[id] = true
		commit, err := b.peelCommit(h)
		if err != nil {
			return nil, fmt.Errorf("lookup commit %s: %w", id, err)
		}
		queue = append(queue, commit.ParentHashes...)
	}

	return reachable, nil
}

func toModel(c *object.Commit) *Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return &Commit{
		ID:      c.Hash.String(),
		Parents: parents,
		Author:  AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
		When:    c.Committer.When,
		Message: c.Message,
	}
}
