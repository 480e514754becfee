package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
)

// Commit is one write to the catalog.
type Commit struct {
	ID      string    `json:"id"`
	When    time.Time `json:"when"`
	Author  string    `json:"author"` // "Name <email>" format
	Message string    `json:"message"`
}

func (commit Commit) String() string {
	return fmt.Sprintf("Commit{ID: %s, When: %s, Author: %s}", commit.ID, commit.When, commit.Author)
}

func newCommit(hash plumbing.Hash, author object.Signature, message string) Commit {
	who := ""
	if author.Name != "" || author.Email != "" {
		who = fmt.Sprintf("%s <%s>", author.Name, author.Email)
	}
	return Commit{
		ID:      hash.String(),
		When:    author.When,
		Author:  who,
		Message: strings.TrimSpace(message),
	}
}

// Latest returns the HEAD commit, or the zero Commit before the first write.
func (c *Catalog) Latest() Commit {
	if !c.IsInitialized() {
		return Commit{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	headRef, err := c.repo.Head()
	if err != nil {
		return Commit{}
	}

	commit, err := c.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Commit{}
	}

	return newCommit(commit.Hash, commit.Author, commit.Message)
}

// History returns up to limit commits, newest first. A limit of zero or less
// returns the whole log.
func (c *Catalog) History(limit int) ([]Commit, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	commits := make([]Commit, 0)
	if _, err := c.repo.Head(); err != nil {
		return commits, nil
	}

	cIter, err := c.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer cIter.Close()

	err = cIter.ForEach(func(commit *object.Commit) error {
		if limit > 0 && len(commits) == limit {
			return storer.ErrStop
		}
		commits = append(commits, newCommit(commit.Hash, commit.Author, commit.Message))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return commits, nil
}
