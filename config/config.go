// Package config loads the settings shared by the sqlfp binaries.
package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nickyhof/sqlfp"
	"github.com/nickyhof/sqlfp/catalog"
	"github.com/nickyhof/sqlfp/dialect"
	"github.com/nickyhof/sqlfp/remote"
)

const DefaultListen = ":7878"

// Config is the YAML file layout. Zero values mean the defaults.
type Config struct {
	Listen      string          `yaml:"listen"`
	Dialect     string          `yaml:"dialect"`
	Placeholder string          `yaml:"placeholder"`
	LogLevel    string          `yaml:"log_level"`
	TLS         TLS             `yaml:"tls"`
	Auth        Auth            `yaml:"auth"`
	Catalog     Catalog         `yaml:"catalog"`
	S3          remote.S3Config `yaml:"s3"`
}

type TLS struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// Enabled reports whether both halves of the key pair are set.
func (t TLS) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// Auth configures JWT authentication.
type Auth struct {
	// Enabled requires AUTH before any other command.
	Enabled bool `yaml:"enabled"`

	// JWTSecret is the shared secret for HS256/384/512 validation.
	JWTSecret string `yaml:"jwt_secret"`

	// Issuer is the expected "iss" claim, checked when set.
	Issuer string `yaml:"issuer"`

	// Audience is the expected "aud" claim, checked when set.
	Audience string `yaml:"audience"`

	// NameClaim is the claim holding the user's name (default: "name").
	NameClaim string `yaml:"name_claim"`

	// EmailClaim is the claim holding the user's email (default: "email").
	EmailClaim string `yaml:"email_claim"`
}

// Catalog says where fingerprints are recorded. An empty Dir keeps the
// catalog in memory.
type Catalog struct {
	Dir    string             `yaml:"dir"`
	GitURL string             `yaml:"git_url"`
	Remote catalog.RemoteAuth `yaml:"remote_auth"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:      DefaultListen,
		Dialect:     sqlfp.DefaultDialect,
		Placeholder: sqlfp.DefaultPlaceholder,
		LogLevel:    "info",
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if c.Dialect != "" {
		if _, lookupErr := dialect.Lookup(c.Dialect); lookupErr != nil {
			err = multierr.Append(err, lookupErr)
		}
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		err = multierr.Append(err, errors.New("tls needs both cert_file and key_file"))
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		err = multierr.Append(err, errors.New("auth is enabled but jwt_secret is empty"))
	}
	if c.Catalog.GitURL != "" && c.Catalog.Dir == "" {
		err = multierr.Append(err, errors.New("catalog git_url needs a dir to clone into"))
	}
	if _, levelErr := c.Level(); levelErr != nil {
		err = multierr.Append(err, levelErr)
	}
	return err
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() (zap.AtomicLevel, error) {
	if c.LogLevel == "" {
		return zap.NewAtomicLevelAt(zap.InfoLevel), nil
	}
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log_level: %w", err)
	}
	return level, nil
}

// Options returns the fingerprinter options the file selects.
func (c Config) Options() []sqlfp.Option {
	return []sqlfp.Option{
		sqlfp.WithDialect(c.Dialect),
		sqlfp.WithPlaceholder(c.Placeholder),
	}
}

// OpenCatalog opens the configured catalog.
func (c Config) OpenCatalog(logger *zap.Logger) (*catalog.Catalog, error) {
	if c.Catalog.Dir == "" {
		return catalog.NewMemory(catalog.WithLogger(logger))
	}
	var gitURL *string
	if c.Catalog.GitURL != "" {
		gitURL = &c.Catalog.GitURL
	}
	return catalog.NewFile(c.Catalog.Dir, gitURL, catalog.WithLogger(logger))
}
