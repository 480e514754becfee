package catalog

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v6/plumbing/object"
	"go.uber.org/zap"

	"github.com/nickyhof/sqlfp/core"
)

const root = "fingerprints"

// Entry is the catalog record for one fingerprint.
type Entry struct {
	Hash         string    `json:"hash"`
	Normalized   string    `json:"normalized"`
	Dialect      string    `json:"dialect"`
	Count        int       `json:"count"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
	Sample       string    `json:"sample"`
	SampleParams []string  `json:"sample_params"`
}

// entryPath shards entries by the first two hex digits of the hash.
func entryPath(hash string) string {
	return path.Join(root, hash[:2], hash+".json")
}

func validHash(hash string) error {
	if len(hash) != 64 || strings.ToLower(hash) != hash {
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	return nil
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

// Record adds res to the catalog in its own commit. A hash seen before keeps
// its first sample and has its Count and LastSeen bumped.
func (c *Catalog) Record(res core.Result, dialect string, identity core.Identity) (Entry, error) {
	entries, _, err := c.RecordAll([]core.Result{res}, dialect, identity)
	if err != nil {
		return Entry{}, err
	}
	return entries[0], nil
}

// RecordAll records every result in a single commit and returns the updated
// entries in input order.
func (c *Catalog) RecordAll(results []core.Result, dialect string, identity core.Identity) ([]Entry, Commit, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, Commit{}, err
	}
	if len(results) == 0 {
		return nil, Commit{}, fmt.Errorf("no fingerprints to record")
	}
	for _, res := range results {
		if err := validHash(res.Hash); err != nil {
			return nil, Commit{}, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	pending := make(map[string]*Entry)
	var order []string

	for _, res := range results {
		entry, ok := pending[res.Hash]
		if !ok {
			existing, err := c.get(res.Hash)
			switch {
			case err == ErrNotFound:
				existing = Entry{
					Hash:         res.Hash,
					Normalized:   res.Normalized,
					Dialect:      dialect,
					FirstSeen:    now,
					Sample:       res.Original,
					SampleParams: res.Params,
				}
			case err != nil:
				return nil, Commit{}, err
			}
			entry = &existing
			pending[res.Hash] = entry
			order = append(order, res.Hash)
		}
		entry.Count++
		entry.LastSeen = now
	}

	currentTree, err := c.currentTreeHash()
	if err != nil {
		return nil, Commit{}, err
	}

	changes := make([]treeChange, 0, len(order))
	for _, hash := range order {
		data, err := json.MarshalIndent(pending[hash], "", "  ")
		if err != nil {
			return nil, Commit{}, fmt.Errorf("failed to marshal entry: %w", err)
		}
		blobHash, err := c.createBlob(data)
		if err != nil {
			return nil, Commit{}, fmt.Errorf("failed to create blob for %s: %w", hash, err)
		}
		changes = append(changes, treeChange{Path: entryPath(hash), BlobHash: blobHash})
	}

	newTree, err := c.applyChanges(currentTree, changes)
	if err != nil {
		return nil, Commit{}, fmt.Errorf("failed to update tree: %w", err)
	}

	message := fmt.Sprintf("Record %s", short(order[0]))
	if len(order) > 1 {
		message = fmt.Sprintf("Record %d fingerprint(s)", len(order))
	}
	commit, err := c.createCommit(newTree, identity, message)
	if err != nil {
		return nil, Commit{}, err
	}

	c.logger.Debug("recorded fingerprints",
		zap.Int("count", len(order)),
		zap.String("commit", commit.ID),
	)

	entries := make([]Entry, len(results))
	for i, res := range results {
		entries[i] = *pending[res.Hash]
	}
	return entries, commit, nil
}

// Get returns the entry for hash, or ErrNotFound.
func (c *Catalog) Get(hash string) (Entry, error) {
	if err := c.ensureInitialized(); err != nil {
		return Entry{}, err
	}
	if err := validHash(hash); err != nil {
		return Entry{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.get(hash)
}

func (c *Catalog) get(hash string) (Entry, error) {
	data, err := c.readFile(entryPath(hash))
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to unmarshal entry %s: %w", short(hash), err)
	}
	return entry, nil
}

// List returns every entry, most frequent first.
func (c *Catalog) List() ([]Entry, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	tree, err := c.headTree()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0)
	if tree == nil {
		return entries, nil
	}

	sub, err := tree.Tree(root)
	if err == object.ErrDirectoryNotFound {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}

	err = sub.Files().ForEach(func(f *object.File) error {
		if !strings.HasSuffix(f.Name, ".json") {
			return nil
		}
		content, err := f.Contents()
		if err != nil {
			return err
		}
		var entry Entry
		if err := json.Unmarshal([]byte(content), &entry); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", f.Name, err)
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Hash < entries[j].Hash
	})
	return entries, nil
}

// Forget removes the entry for hash in its own commit.
func (c *Catalog) Forget(hash string, identity core.Identity) (Commit, error) {
	if err := c.ensureInitialized(); err != nil {
		return Commit{}, err
	}
	if err := validHash(hash); err != nil {
		return Commit{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.get(hash); err != nil {
		return Commit{}, err
	}

	currentTree, err := c.currentTreeHash()
	if err != nil {
		return Commit{}, err
	}

	newTree, err := c.applyChanges(currentTree, []treeChange{{Path: entryPath(hash), Delete: true}})
	if err != nil {
		return Commit{}, fmt.Errorf("failed to update tree: %w", err)
	}

	return c.createCommit(newTree, identity, fmt.Sprintf("Forget %s", short(hash)))
}

// Export writes every entry to w as one JSON document per line and returns how
// many were written.
func (c *Catalog) Export(w io.Writer) (int, error) {
	entries, err := c.List()
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	for i, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return i, fmt.Errorf("failed to export %s: %w", short(entry.Hash), err)
		}
	}
	return len(entries), nil
}
