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
	t.Setenv("CONFIG", "")
	t.Setenv("SERVER_ADDRESS", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("LOG_LEVEL", "")

	o, err := Load([]string{"-c", filepath.Join(t.TempDir(), "absent.json")})
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", o.Port)
	assert.Equal(t, DriverSQLite, o.Driver)
	assert.Equal(t, "info", o.LogLevel)
	assert.Equal(t, Duration(time.Hour), o.CleanInterval)
	assert.Equal(t, Duration(30*24*time.Hour), o.Retention)
}

func TestLoad_JSONFile(t *testing.T) {
	t.Setenv("CONFIG", "")
	t.Setenv("SERVER_ADDRESS", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"address": ":9000",
		"driver": "postgres",
		"database_dsn": "postgres://localhost/vault",
		"clean_interval": "5m"
	}`), 0o600))

	o, err := Load([]string{"-config", path})
	require.NoError(t, err)
	assert.Equal(t, ":9000", o.Port)
	assert.Equal(t, DriverPostgres, o.Driver)
	assert.Equal(t, "postgres://localhost/vault", o.DatabaseDSN)
	assert.Equal(t, Duration(5*time.Minute), o.CleanInterval)
}

func TestLoad_YAMLFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"address: \":7000\"\n"+
			"sqlite_path: /var/lib/vault.db\n"+
			"log_level: debug\n"+
			"retention: 48h\n"), 0o600))

	t.Setenv("CONFIG", path)
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:443")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("LOG_LEVEL", "warn")

	o, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:443", o.Port)
	assert.Equal(t, "/var/lib/vault.db", o.SQLitePath)
	assert.Equal(t, "warn", o.LogLevel)
	assert.Equal(t, Duration(48*time.Hour), o.Retention)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("CONFIG", "")
	t.Setenv("DATABASE_DSN", "")

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))

	_, err := Load([]string{"-c", bad})
	assert.ErrorContains(t, err, "error while parsing config file")

	_, err = Load([]string{"-c", filepath.Join(dir, "none.json"), "-driver", "mongo"})
	assert.ErrorContains(t, err, "unknown storage driver")

	_, err = Load([]string{"-c", filepath.Join(dir, "none.json"), "-retention", "forever"})
	assert.Error(t, err)
}
