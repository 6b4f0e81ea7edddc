package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shravanasati/ledgerdash/internal/middleware"
)

func env(kv map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := kv[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefaults(t *testing.T) {
	c, err := Load("", env(nil))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, ":4173", c.Address())
	assert.Equal(t, "dist/client", c.Assets.Root)
	assert.True(t, c.AllowList().Contains("favicon.ico"))
	assert.Equal(t, 5*time.Second, c.HTTP.KeepAliveTimeout)
}

func TestReadYAMLFile(t *testing.T) {
	p := writeConfig(t, `
http:
  host: 127.0.0.1
  port: 8080
  keep_alive_timeout: 2s
assets:
  root: /srv/client
  allow_list: [robots.txt]
ledger:
  path: /var/lib/ledger.db
log:
  level: debug
auth:
  accounts:
    - username: ops
      password: pw
`)

	c, err := ReadYAMLFile(p)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "127.0.0.1:8080", c.Address())
	assert.Equal(t, 2*time.Second, c.HTTP.KeepAliveTimeout)
	assert.Equal(t, 30*time.Second, c.HTTP.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, "/srv/client", c.Assets.Root)
	assert.True(t, c.AllowList().Contains("robots.txt"))
	assert.False(t, c.AllowList().Contains("favicon.ico"))
	assert.Equal(t, "/var/lib/ledger.db", c.Ledger.Path)
	assert.Equal(t, []middleware.Account{{Username: "ops", Password: "pw"}}, c.Auth.Accounts)
}

func TestReadYAMLFileErrors(t *testing.T) {
	_, err := ReadYAMLFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadYAMLFile(writeConfig(t, "http: [not, a, map]"))
	assert.Error(t, err)
}

func TestPortFromEnvironment(t *testing.T) {
	p := writeConfig(t, "http:\n  port: 9000\n")

	c, err := Load(p, env(map[string]string{"PORT": "5000"}))
	require.NoError(t, err)
	assert.Equal(t, 5000, c.HTTP.Port, "PORT wins over the file")

	c, err = Load(p, env(map[string]string{"PORT": ""}))
	require.NoError(t, err)
	assert.Equal(t, 9000, c.HTTP.Port)

	for _, bad := range []string{"abc", "0", "70000", "-1"} {
		_, err := Load("", env(map[string]string{"PORT": bad}))
		assert.ErrorIs(t, err, ErrInvalidConfig, bad)
	}
}

func TestValidate(t *testing.T) {
	c := NewConfig()
	c.HTTP.Port = 0
	c.Assets.Root = ""
	c.Log.Level = "loud"
	c.Auth.Accounts = []middleware.Account{{Password: "x"}}

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, want := range []string{"http.port", "assets.root", "log.level", "auth.accounts[0]"} {
		assert.Contains(t, err.Error(), want)
	}
}
