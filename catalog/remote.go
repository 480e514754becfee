package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
	"github.com/go-git/go-git/v6/plumbing/transport/ssh"
	"go.uber.org/zap"
)

// AuthType defines the type of authentication
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeToken AuthType = "token"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeBasic AuthType = "basic"
)

const defaultRemote = "origin"

// RemoteAuth holds credentials for sharing a catalog
type RemoteAuth struct {
	Type       AuthType `yaml:"type"`
	Token      string   `yaml:"token"`      // For token auth
	KeyPath    string   `yaml:"key_path"`   // For SSH key auth
	Passphrase string   `yaml:"passphrase"` // For SSH key with passphrase
	Username   string   `yaml:"username"`   // For basic auth
	Password   string   `yaml:"password"`   // For basic auth
}

// Remote represents a Git remote
type Remote struct {
	Name string
	URLs []string
}

func (auth *RemoteAuth) authMethod() (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}

	switch auth.Type {
	case AuthTypeNone, "":
		return nil, nil

	case AuthTypeToken:
		return &http.BasicAuth{
			Username: "git",
			Password: auth.Token,
		}, nil

	case AuthTypeSSH:
		keyPath := auth.KeyPath
		if keyPath == "" {
			home, _ := os.UserHomeDir()
			keyPath = filepath.Join(home, ".ssh", "id_rsa")
		}
		return ssh.NewPublicKeysFromFile("git", keyPath, auth.Passphrase)

	case AuthTypeBasic:
		return &http.BasicAuth{
			Username: auth.Username,
			Password: auth.Password,
		}, nil

	default:
		return nil, fmt.Errorf("unknown auth type: %s", auth.Type)
	}
}

// AddRemote adds a named remote to the repository
func (c *Catalog) AddRemote(name, url string) error {
	if err := c.ensureInitialized(); err != nil {
		return err
	}

	_, err := c.repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil {
		return fmt.Errorf("failed to add remote '%s': %w", name, err)
	}
	return nil
}

// Remotes returns all configured remotes
func (c *Catalog) Remotes() ([]Remote, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}

	remotes, err := c.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	result := make([]Remote, len(remotes))
	for i, r := range remotes {
		cfg := r.Config()
		result[i] = Remote{
			Name: cfg.Name,
			URLs: cfg.URLs,
		}
	}
	return result, nil
}

// RemoveRemote deletes the named remote from the repository config.
func (c *Catalog) RemoveRemote(name string) error {
	if err := c.ensureInitialized(); err != nil {
		return err
	}

	if err := c.repo.DeleteRemote(name); err != nil {
		return fmt.Errorf("failed to remove remote '%s': %w", name, err)
	}
	return nil
}

// Branch returns the short name of the branch HEAD points at.
func (c *Catalog) Branch() (string, error) {
	if err := c.ensureInitialized(); err != nil {
		return "", err
	}

	head, err := c.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}
	return plumbing.Master.Short(), nil
}

// Push sends a branch to a remote. Empty names mean origin and the current
// branch.
func (c *Catalog) Push(remoteName, branch string, auth *RemoteAuth) error {
	if err := c.ensureInitialized(); err != nil {
		return err
	}

	if remoteName == "" {
		remoteName = defaultRemote
	}
	if branch == "" {
		current, err := c.Branch()
		if err != nil {
			return err
		}
		branch = current
	}

	authMethod, err := auth.authMethod()
	if err != nil {
		return fmt.Errorf("failed to configure auth: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))

	err = c.repo.Push(&git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       authMethod,
	})
	if err == git.NoErrAlreadyUpToDate {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to push to '%s': %w", remoteName, err)
	}

	c.logger.Info("pushed catalog", zap.String("remote", remoteName), zap.String("branch", branch))
	return nil
}

// Pull fetches a remote branch and merges it into the current one.
func (c *Catalog) Pull(remoteName, branch string, auth *RemoteAuth) error {
	if err := c.ensureInitialized(); err != nil {
		return err
	}

	if remoteName == "" {
		remoteName = defaultRemote
	}

	authMethod, err := auth.authMethod()
	if err != nil {
		return fmt.Errorf("failed to configure auth: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	wt, err := c.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	pullOpts := &git.PullOptions{
		RemoteName: remoteName,
		Auth:       authMethod,
	}
	if branch != "" {
		pullOpts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	err = wt.Pull(pullOpts)
	if err == git.NoErrAlreadyUpToDate {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to pull from '%s': %w", remoteName, err)
	}

	c.logger.Info("pulled catalog", zap.String("remote", remoteName))
	return nil
}
