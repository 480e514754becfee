package catalog

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"
	"go.uber.org/zap"
)

// Errors returned by catalog operations.
var (
	ErrNotInitialized = errors.New("catalog not initialized")
	ErrNotFound       = errors.New("fingerprint not found")
	ErrInvalidHash    = errors.New("invalid fingerprint hash")
)

// Catalog records fingerprints as JSON blobs in a git repository, one commit
// per write. Reads go straight to the HEAD tree.
type Catalog struct {
	repo   *git.Repository
	mu     sync.RWMutex
	memory bool
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for catalog writes. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now for FirstSeen, LastSeen and commit times.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

func newCatalog(repo *git.Repository, memory bool, opts []Option) *Catalog {
	c := &Catalog{
		repo:   repo,
		memory: memory,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsInitialized returns true if the catalog has a valid repository
func (c *Catalog) IsInitialized() bool {
	return c != nil && c.repo != nil
}

func (c *Catalog) ensureInitialized() error {
	if !c.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

// NewMemory creates a catalog whose repository lives only in memory.
func NewMemory(opts ...Option) (*Catalog, error) {
	wt := memfs.New()
	storer := memory.NewStorage()

	repo, err := git.Init(storer, git.WithWorkTree(wt))
	if err != nil {
		return nil, err
	}

	return newCatalog(repo, true, opts), nil
}

// NewFile opens the catalog repository under baseDir, creating it when absent.
// A non-nil gitURL is cloned into baseDir only when no repository exists there
// yet; later starts open the existing clone.
func NewFile(baseDir string, gitURL *string, opts ...Option) (*Catalog, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	wt := osfs.New(baseDir)
	fs, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	cloned := false

	_, statErr := os.Stat(fs.Root())
	switch {
	case statErr == nil:
		repo, err = git.Open(storer, wt)
	case gitURL != nil:
		repo, err = git.Clone(storer, wt, &git.CloneOptions{
			URL: *gitURL,
		})
		if err != nil {
			// Let the next start retry the clone instead of opening an empty repository.
			_ = os.RemoveAll(fs.Root())
		}
		cloned = true
	default:
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	}
	if err != nil {
		return nil, err
	}

	c := newCatalog(repo, false, opts)
	c.logger.Debug("opened catalog", zap.String("dir", baseDir), zap.Bool("cloned", cloned))
	return c, nil
}
