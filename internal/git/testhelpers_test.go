package git

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// repoBuilder assembles commit graphs in a temporary repository. Commits get
// strictly increasing committer dates so date-based ordering is stable.
type repoBuilder struct {
	t    *testing.T
	repo *gogit.Repository
	wt   *gogit.Worktree
	dir  string
	when time.Time
	n    int
}

func newRepoBuilder(t *testing.T) *repoBuilder {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	return &repoBuilder{
		t:    t,
		repo: repo,
		wt:   wt,
		dir:  dir,
		when: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// commit writes a unique file and commits it. Explicit parents override the
// current HEAD, which lets tests build arbitrary DAG shapes.
func (b *repoBuilder) commit(msg string, parents ...plumbing.Hash) plumbing.Hash {
	b.t.Helper()

	b.n++
	b.when = b.when.Add(time.Hour)

	rel := fmt.Sprintf("file%d.txt", b.n)
	if err := os.WriteFile(filepath.Join(b.dir, rel), []byte(msg+"\n"), 0o644); err != nil {
		b.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := b.wt.Add(rel); err != nil {
		b.t.Fatalf("Add: %v", err)
	}

	sig := &object.Signature{
		Name:  "Test",
		Email: "test@example.com",
		When:  b.when,
	}
	hash, err := b.wt.Commit(msg, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
		Parents:   parents,
	})
	if err != nil {
		b.t.Fatalf("Commit(%s): %v", msg, err)
	}
	return hash
}

func (b *repoBuilder) setRef(name string, hash plumbing.Hash) {
	b.t.Helper()
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), hash)
	if err := b.repo.Storer.SetReference(ref); err != nil {
		b.t.Fatalf("SetReference(%s): %v", name, err)
	}
}

func (b *repoBuilder) headBranch() string {
	b.t.Helper()
	head, err := b.repo.Head()
	if err != nil {
		b.t.Fatalf("Head: %v", err)
	}
	return head.Name().String()
}

// importScenario is the shared upstream-import graph:
//
//	A --- B --- C --- D --- C'   <- branch tip
//	 \_______________/
//	  \
//	   E                         <- refs/remotes/origin/upstream/master
//
// D merges A's line a second time, so the raw ancestry path between A and C'
// revisits older history. E is the not-yet-imported upstream tip.
type importScenario struct {
	builder *repoBuilder
	branch  string // full ref name of the local branch holding C'
	a, b, c, d, cp, e plumbing.Hash
}

func buildImportScenario(t *testing.T) *importScenario {
	t.Helper()
	rb := newRepoBuilder(t)

	a := rb.commit("initial upstream snapshot")
	bc := rb.commit("local change one")
	c := rb.commit("local change two")
	d := rb.commit("Merge branch 'upstream-fixes'\n\nImported from upstream.", c, a)
	cp := rb.commit("local change three")

	branch := rb.headBranch()

	// E extends A on the upstream line. Committing moves the local branch,
	// so point it back at C' afterwards.
	e := rb.commit("upstream release", a)
	rb.setRef(branch, cp)
	rb.setRef("refs/remotes/origin/upstream/master", e)

	// Root commits cannot be merge targets; this ref must be dropped by
	// TipsOf.
	rb.setRef("refs/remotes/origin/upstream/ancient", a)

	// Extra path segment ahead of the pattern; anchored matching must skip
	// it. It points at the branch tip so a false match would corrupt the
	// merge-base result.
	rb.setRef("refs/remotes/origin/other/upstream/area", cp)

	return &importScenario{
		builder: rb,
		branch:  branch,
		a:       a,
		b:       bc,
		c:       c,
		d:       d,
		cp:      cp,
		e:       e,
	}
}

func ids(hashes ...plumbing.Hash) []string {
	out := make([]string, 0, len(hashes))
	for _, h := range hashes {
		out = append(out, h.String())
	}
	return out
}
