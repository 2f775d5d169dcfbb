package git

import (
	"slices"
	"time"
)

// Commit represents a single node in the history graph. Commits are owned by
// the backend that produced them; searchers and filters only read them.
type Commit struct {
	ID      string
	Parents []string
	Author  AuthorInfo
	When    time.Time
	Message string
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// IsMerge reports whether the commit has two or more parents.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) >= 2
}

// IsRoot reports whether the commit has no parents.
func (c *Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// HasParent reports whether id is one of the commit's direct parents.
func (c *Commit) HasParent(id string) bool {
	return slices.Contains(c.Parents, id)
}

// ShortID returns an abbreviated commit id for display.
func (c *Commit) ShortID() string {
	if len(c.ID) <= 8 {
		return c.ID
	}
	return c.ID[:8]
}

// Subject returns the first line of the commit message.
func (c *Commit) Subject() string {
	for i := 0; i < len(c.Message); i++ {
		if c.Message[i] == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}
