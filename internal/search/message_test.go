package search

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestCommitMessageSearcher_Find(t *testing.T) {
	s := NewCommitMessageSearcher(newImportHistory(), "master", "Imported from upstream")

	id, err := s.Find(context.Background())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if id != "D" {
		t.Fatalf("Find = %s, want D", id)
	}
	if s.Pattern() != "Imported from upstream" {
		t.Fatalf("Pattern = %q", s.Pattern())
	}
}

func TestCommitMessageSearcher_FindExtendedRegexp(t *testing.T) {
	s := NewCommitMessageSearcher(newImportHistory(), "master", "local change (one|two)")

	// C is the most recent match on the branch.
	id, err := s.Find(context.Background())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if id != "C" {
		t.Fatalf("Find = %s, want C", id)
	}
}

func TestCommitMessageSearcher_FindNoMatch(t *testing.T) {
	s := NewCommitMessageSearcher(newImportHistory(), "master", "no such message anywhere")

	_, err := s.Find(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find err = %v, want ErrNotFound", err)
	}
}

func TestCommitMessageSearcher_ListIncludesMatchedCommit(t *testing.T) {
	s := NewCommitMessageSearcher(newImportHistory(), "master", "Imported from upstream")

	commits, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// The range D..master holds only Cp; the matched commit is appended so
	// callers see the import merge itself.
	if !slices.Equal(commitIDs(commits), []string{"Cp", "D"}) {
		t.Fatalf("List = %v, want [Cp D]", commitIDs(commits))
	}
}

func TestCommitMessageSearcher_ListExcludingMatched(t *testing.T) {
	s := NewCommitMessageSearcher(newImportHistory(), "master", "Imported from upstream")

	commits, err := s.ListExcludingMatched(context.Background())
	if err != nil {
		t.Fatalf("ListExcludingMatched: %v", err)
	}
	if !slices.Equal(commitIDs(commits), []string{"Cp"}) {
		t.Fatalf("ListExcludingMatched = %v, want [Cp]", commitIDs(commits))
	}
}

func TestCommitMessageSearcher_ListPropagatesFindFailure(t *testing.T) {
	s := NewCommitMessageSearcher(newImportHistory(), "master", "no such message anywhere")

	if _, err := s.List(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("List err = %v, want ErrNotFound", err)
	}
}
