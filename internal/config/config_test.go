package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "journal_session", cfg.Session.CookieName)
	assert.Equal(t, DefaultSessionSecret, cfg.Session.Secret)
	assert.Equal(t, 5, cfg.RateLimit.MaxStrikes)
	assert.True(t, cfg.Seed.DefaultUser)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: ":9999"
session:
  ttl: 48h
  cookie_name: jm
ratelimit:
  burst: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("JOURNAL_LOG_LEVEL", "DEBUG")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/journal")
	t.Setenv("JOURNAL_DATABASE_DRIVER", "postgres")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, 48*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "jm", cfg.Session.CookieName)
	assert.Equal(t, 2, cfg.RateLimit.Burst)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/journal", cfg.Database.URL)
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without url", env: map[string]string{"JOURNAL_DATABASE_DRIVER": "postgres"}},
		{name: "unknown driver", env: map[string]string{"JOURNAL_DATABASE_DRIVER": "oracle"}},
		{name: "zero ttl", env: map[string]string{"JOURNAL_SESSION_TTL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
