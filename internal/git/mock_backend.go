package git

import (
	"context"
	"fmt"
	"iter"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// MockBackend is a test double for Backend built on an explicit in-memory
// DAG. Topo holds every commit id newest first and doubles as the backend's
// tie-break ordering, so tests are fully deterministic.
type MockBackend struct {
	Commits map[string]*Commit
	Topo    []string          // all commit ids, newest first
	Refs    map[string]string // full ref name -> tip commit id
	Err     error             // forced failure for every call when set
}

// NewMockBackend builds a mock from commits in newest-first order.
func NewMockBackend(commits []*Commit, refs map[string]string) *MockBackend {
	m := &MockBackend{
		Commits: make(map[string]*Commit, len(commits)),
		Refs:    refs,
	}
	for _, c := range commits {
		m.Commits[c.ID] = c
		m.Topo = append(m.Topo, c.ID)
	}
	if m.Refs == nil {
		m.Refs = map[string]string{}
	}
	return m
}

func (m *MockBackend) ResolveRefs(ctx context.Context, patterns []string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var names []string
	for name := range m.Refs {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, name); ok {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockBackend) TipsOf(ctx context.Context, refNames []string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	seen := make(map[string]bool)
	var tips []string
	for _, name := range refNames {
		id, ok := m.Refs[name]
		if !ok {
			return nil, fmt.Errorf("unknown ref %s", name)
		}
		c, err := m.commit(id)
		if err != nil {
			return nil, err
		}
		if c.IsRoot() || seen[id] {
			continue
		}
		seen[id] = true
		tips = append(tips, id)
	}
	return tips, nil
}

func (m *MockBackend) ParentsOf(ctx context.Context, id string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	c, err := m.commit(id)
	if err != nil {
		return nil, err
	}
	return c.Parents, nil
}

func (m *MockBackend) PruneReachable(ctx context.Context, candidates, excludeReachableFrom []string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	excluded := make(map[string]bool)
	for _, id := range excludeReachableFrom {
		if err := m.markAncestors(id, excluded); err != nil {
			return nil, err
		}
	}
	reachable := make(map[string]bool)
	for _, id := range candidates {
		if err := m.markAncestors(id, reachable); err != nil {
			return nil, err
		}
	}
	var result []string
	for _, id := range m.Topo {
		if reachable[id] && !excluded[id] {
			result = append(result, id)
		}
	}
	return result, nil
}

func (m *MockBackend) MergeBase(ctx context.Context, branch, id string) (string, bool, error) {
	if m.Err != nil {
		return "", false, m.Err
	}
	tip, err := m.resolve(branch)
	if err != nil {
		return "", false, err
	}
	a := make(map[string]bool)
	b := make(map[string]bool)
	if err := m.markAncestors(tip, a); err != nil {
		return "", false, err
	}
	if err := m.markAncestors(id, b); err != nil {
		return "", false, err
	}
	for _, cid := range m.Topo {
		if a[cid] && b[cid] {
			return cid, true, nil
		}
	}
	return "", false, nil
}

func (m *MockBackend) MostRecentTopologically(ctx context.Context, ids []string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, id := range m.Topo {
		if want[id] {
			return id, nil
		}
	}
	return "", fmt.Errorf("no commits to order")
}

func (m *MockBackend) FindCommitByMessage(ctx context.Context, branch, pattern string) (*Commit, bool, error) {
	if m.Err != nil {
		return nil, false, m.Err
	}
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, false, err
	}
	tip, err := m.resolve(branch)
	if err != nil {
		return nil, false, err
	}
	onBranch := make(map[string]bool)
	if err := m.markAncestors(tip, onBranch); err != nil {
		return nil, false, err
	}
	for _, id := range m.Topo {
		if !onBranch[id] {
			continue
		}
		c := m.Commits[id]
		if re.MatchString(c.Message) {
			return c, true, nil
		}
	}
	return nil, false, nil
}

func (m *MockBackend) CommitByID(ctx context.Context, id string) (*Commit, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.commit(id)
}

func (m *MockBackend) ListRange(ctx context.Context, fromID, branch string) (iter.Seq[*Commit], func() error) {
	var streamErr error
	seq := func(yield func(*Commit) bool) {
		tip, err := m.resolve(branch)
		if err != nil {
			streamErr = err
			return
		}
		excluded := make(map[string]bool)
		if err := m.markAncestors(fromID, excluded); err != nil {
			streamErr = err
			return
		}
		onBranch := make(map[string]bool)
		if err := m.markAncestors(tip, onBranch); err != nil {
			streamErr = err
			return
		}
		for _, id := range m.Topo {
			if !onBranch[id] || excluded[id] {
				continue
			}
			descends := make(map[string]bool)
			if err := m.markAncestors(id, descends); err != nil {
				streamErr = err
				return
			}
			if !descends[fromID] {
				continue
			}
			if !yield(m.Commits[id]) {
				return
			}
		}
	}
	return seq, func() error { return streamErr }
}

func (m *MockBackend) commit(id string) (*Commit, error) {
	c, ok := m.Commits[id]
	if !ok {
		return nil, fmt.Errorf("unknown commit %s", id)
	}
	return c, nil
}

// resolve maps a branch name or ref to a commit id, accepting bare ids too.
func (m *MockBackend) resolve(rev string) (string, error) {
	if id, ok := m.Refs[rev]; ok {
		return id, nil
	}
	if id, ok := m.Refs["refs/heads/"+rev]; ok {
		return id, nil
	}
	if _, ok := m.Commits[rev]; ok {
		return rev, nil
	}
	return "", fmt.Errorf("unknown revision %s", rev)
}

// markAncestors marks id and everything reachable from it.
func (m *MockBackend) markAncestors(id string, set map[string]bool) error {
	if set[id] {
		return nil
	}
	c, err := m.commit(id)
	if err != nil {
		return err
	}
	set[id] = true
	for _, p := range c.Parents {
		if err := m.markAncestors(p, set); err != nil {
			return err
		}
	}
	return nil
}
