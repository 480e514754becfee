package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nickyhof/sqlfp/catalog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlfp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, "generic", cfg.Dialect)
	assert.Equal(t, "?", cfg.Placeholder)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TLS.Enabled())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen: ":9000"
dialect: postgres
log_level: debug
tls:
  cert_file: /etc/sqlfp/cert.pem
  key_file: /etc/sqlfp/key.pem
auth:
  enabled: true
  jwt_secret: s3cret
  issuer: https://auth.example.com
catalog:
  dir: /var/lib/sqlfp
  remote_auth:
    type: token
    token: abc
s3:
  region: eu-west-1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "postgres", cfg.Dialect)
	assert.Equal(t, "?", cfg.Placeholder, "unset keys keep their defaults")
	assert.True(t, cfg.TLS.Enabled())
	assert.Equal(t, Auth{Enabled: true, JWTSecret: "s3cret", Issuer: "https://auth.example.com"}, cfg.Auth)
	assert.Equal(t, "/var/lib/sqlfp", cfg.Catalog.Dir)
	assert.Equal(t, catalog.RemoteAuth{Type: catalog.AuthTypeToken, Token: "abc"}, cfg.Catalog.Remote)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zap.DebugLevel, level.Level())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "listen: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown dialect", func(c *Config) { c.Dialect = "klingon" }, "unsupported dialect: klingon"},
		{"half a key pair", func(c *Config) { c.TLS.CertFile = "cert.pem" }, "tls needs both"},
		{"auth without secret", func(c *Config) { c.Auth.Enabled = true }, "jwt_secret is empty"},
		{"clone without dir", func(c *Config) { c.Catalog.GitURL = "https://example.com/fp.git" }, "needs a dir"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidateReportsEverything(t *testing.T) {
	cfg := Default()
	cfg.Dialect = "klingon"
	cfg.Auth.Enabled = true
	cfg.LogLevel = "loud"

	assert.Len(t, multierr.Errors(cfg.Validate()), 3)
}

func TestOpenCatalog(t *testing.T) {
	cfg := Default()
	c, err := cfg.OpenCatalog(zap.NewNop())
	require.NoError(t, err)
	assert.True(t, c.IsInitialized())

	cfg.Catalog.Dir = t.TempDir()
	c, err = cfg.OpenCatalog(zap.NewNop())
	require.NoError(t, err)
	assert.True(t, c.IsInitialized())
}
