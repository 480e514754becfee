package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v6/util"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/nickyhof/sqlfp/core"
)

// createBlob stores data in the object store without touching the worktree
func (c *Catalog) createBlob(data []byte) (plumbing.Hash, error) {
	obj := c.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to create blob writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to write blob data: %w", err)
	}
	writer.Close()

	hash, err := c.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store blob: %w", err)
	}

	return hash, nil
}

// headTree returns the tree of the HEAD commit, or nil before the first commit.
func (c *Catalog) headTree() (*object.Tree, error) {
	headRef, err := c.repo.Head()
	if err != nil {
		return nil, nil
	}

	commit, err := c.repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get head commit: %w", err)
	}

	return commit.Tree()
}

func (c *Catalog) currentTreeHash() (plumbing.Hash, error) {
	tree, err := c.headTree()
	if err != nil || tree == nil {
		return plumbing.ZeroHash, err
	}
	return tree.Hash, nil
}

func (c *Catalog) treeEntries(treeHash plumbing.Hash) (map[string]object.TreeEntry, error) {
	entries := make(map[string]object.TreeEntry)

	if treeHash == plumbing.ZeroHash {
		return entries, nil
	}

	tree, err := object.GetTree(c.repo.Storer, treeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	for _, entry := range tree.Entries {
		entries[entry.Name] = entry
	}

	return entries, nil
}

func (c *Catalog) buildTree(entries map[string]object.TreeEntry) (plumbing.Hash, error) {
	sorted := make([]object.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		sorted = append(sorted, entry)
	}

	// Git orders directories as if their name ended in a slash.
	sort.Slice(sorted, func(i, j int) bool {
		nameI := sorted[i].Name
		nameJ := sorted[j].Name
		if sorted[i].Mode == filemode.Dir {
			nameI += "/"
		}
		if sorted[j].Mode == filemode.Dir {
			nameJ += "/"
		}
		return nameI < nameJ
	})

	tree := &object.Tree{Entries: sorted}

	obj := c.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}

	hash, err := c.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}

	return hash, nil
}

// treeChange sets or removes one file. A zero BlobHash with Delete unset is
// not allowed.
type treeChange struct {
	Path     string
	BlobHash plumbing.Hash
	Delete   bool
}

// applyChanges rewrites only the subtrees touched by changes and returns the
// new root tree hash. An emptied tree comes back as ZeroHash.
func (c *Catalog) applyChanges(rootTreeHash plumbing.Hash, changes []treeChange) (plumbing.Hash, error) {
	if len(changes) == 0 {
		return rootTreeHash, nil
	}

	grouped := make(map[string][]treeChange)
	var leaves []treeChange

	for _, change := range changes {
		dir, rest, nested := strings.Cut(change.Path, "/")
		if !nested {
			leaves = append(leaves, change)
			continue
		}
		grouped[dir] = append(grouped[dir], treeChange{
			Path:     rest,
			BlobHash: change.BlobHash,
			Delete:   change.Delete,
		})
	}

	entries, err := c.treeEntries(rootTreeHash)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	for _, change := range leaves {
		if change.Delete {
			delete(entries, change.Path)
			continue
		}
		entries[change.Path] = object.TreeEntry{
			Name: change.Path,
			Mode: filemode.Regular,
			Hash: change.BlobHash,
		}
	}

	for dir, subChanges := range grouped {
		subTreeHash := plumbing.ZeroHash
		if existing, ok := entries[dir]; ok && existing.Mode == filemode.Dir {
			subTreeHash = existing.Hash
		}

		newSubTreeHash, err := c.applyChanges(subTreeHash, subChanges)
		if err != nil {
			return plumbing.ZeroHash, err
		}

		if newSubTreeHash == plumbing.ZeroHash {
			delete(entries, dir)
		} else {
			entries[dir] = object.TreeEntry{
				Name: dir,
				Mode: filemode.Dir,
				Hash: newSubTreeHash,
			}
		}
	}

	if len(entries) == 0 {
		return plumbing.ZeroHash, nil
	}

	return c.buildTree(entries)
}

// createCommit commits treeHash on top of HEAD without using the worktree
func (c *Catalog) createCommit(treeHash plumbing.Hash, identity core.Identity, message string) (Commit, error) {
	if treeHash == plumbing.ZeroHash {
		var err error
		treeHash, err = c.buildTree(map[string]object.TreeEntry{})
		if err != nil {
			return Commit{}, err
		}
	}

	var parentHashes []plumbing.Hash
	headRef, err := c.repo.Head()
	if err == nil {
		parentHashes = []plumbing.Hash{headRef.Hash()}
	}

	sig := object.Signature{
		Name:  identity.Name,
		Email: identity.Email,
		When:  c.now(),
	}

	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parentHashes,
	}

	obj := c.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return Commit{}, fmt.Errorf("failed to encode commit: %w", err)
	}

	commitHash, err := c.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return Commit{}, fmt.Errorf("failed to store commit: %w", err)
	}

	branchName := plumbing.Master
	if head, err := c.repo.Storer.Reference(plumbing.HEAD); err == nil && head.Type() == plumbing.SymbolicReference {
		branchName = head.Target()
	} else if headRef != nil && headRef.Name().IsBranch() {
		branchName = headRef.Name()
	}

	ref := plumbing.NewHashReference(branchName, commitHash)
	if err := c.repo.Storer.SetReference(ref); err != nil {
		return Commit{}, fmt.Errorf("failed to update HEAD: %w", err)
	}

	if err := c.syncWorktree(commitHash); err != nil {
		return Commit{}, fmt.Errorf("failed to sync worktree: %w", err)
	}

	return newCommit(commitHash, sig, message), nil
}

// syncWorktree checks out commitHash on disk so a file catalog can be browsed
// with ordinary git tools. Memory catalogs read from the tree only.
func (c *Catalog) syncWorktree(commitHash plumbing.Hash) error {
	if c.memory {
		return nil
	}

	wt, err := c.repo.Worktree()
	if err != nil {
		return err
	}

	commit, err := c.repo.CommitObject(commitHash)
	if err != nil {
		return err
	}
	tree, err := commit.Tree()
	if err != nil {
		return err
	}

	// A hard reset to an empty tree fails trying to remove the base dir.
	if len(tree.Entries) == 0 {
		infos, err := wt.Filesystem.ReadDir("/")
		if err != nil {
			return nil
		}
		for _, info := range infos {
			if info.Name() != ".git" {
				if err := util.RemoveAll(wt.Filesystem, info.Name()); err != nil {
					return err
				}
			}
		}
		return nil
	}

	return wt.Reset(&git.ResetOptions{
		Mode:   git.HardReset,
		Commit: commitHash,
	})
}

// readFile returns the content at filePath in the HEAD tree
func (c *Catalog) readFile(filePath string) ([]byte, error) {
	tree, err := c.headTree()
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrNotFound
	}

	file, err := tree.File(filePath)
	if err == object.ErrFileNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	content, err := file.Contents()
	if err != nil {
		return nil, err
	}

	return []byte(content), nil
}
