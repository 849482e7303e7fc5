package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 60*time.Second, cfg.Providers.Audit.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Providers.Vision.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Providers.UX.Timeout)
	assert.Equal(t, 45*time.Second, cfg.Capture.Timeout)
	assert.Equal(t, int64(5<<20), cfg.Capture.MaxBodyBytes)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, uint32(5), cfg.Providers.Breaker.ConsecutiveFailures)
	assert.Equal(t, 60*time.Second, cfg.Providers.Breaker.Timeout)
	assert.Equal(t, 6*time.Hour, cfg.Redis.TTL)
	assert.Empty(t, cfg.Providers.Vision.APIKey)
	assert.Empty(t, cfg.Auth.APIKeys)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("VISIAI_OPENAI_KEY", "sk-test")
	t.Setenv("VISIAI_DB_PASSWORD", "p@ss")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
  writeTimeout: 90s
log:
  format: json
database:
  driver: postgres
  host: db
  user: visiai
  password: ${VISIAI_DB_PASSWORD}
  name: visiai
providers:
  vision:
    apiKey: ${VISIAI_OPENAI_KEY}
    model: gpt-4o
  breaker:
    consecutiveFailures: 3
auth:
  apiKeys:
    dashboard: abc
cors:
  allowedOrigins: ["https://visiai.app"]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "sk-test", cfg.Providers.Vision.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Providers.Vision.Model)
	assert.Equal(t, "OpenAI", cfg.Providers.Vision.Provider)
	assert.Equal(t, uint32(3), cfg.Providers.Breaker.ConsecutiveFailures)
	assert.Equal(t, map[string]string{"dashboard": "abc"}, cfg.Auth.APIKeys)
	assert.Equal(t, []string{"https://visiai.app"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "postgres://visiai:p%40ss@db:5432/visiai?sslmode=disable", cfg.DSN())
}

func TestMySQLDSN(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  user: root\n  password: secret\n  host: mysql\n  name: visiai\n"))
	require.NoError(t, err)
	assert.Equal(t, "root:secret@tcp(mysql:3306)/visiai?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DSN())
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, in := range []string{
		"database:\n  driver: sqlite\n",
		"log:\n  format: xml\n",
		"server:\n  port: 70000\n",
		"server: [",
	} {
		_, err := Parse([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
