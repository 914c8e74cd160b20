package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
llm:
  base_url: https://llm.example.com/v1
  api_key: sk-test
  model: reasoning-large
  timeout: 45
scraper:
  sources: [sam.gov, nsf.gov]
log:
  level: debug
concurrency:
  qps: 2
  rpm: 30
db:
  host: localhost
  port: 5433
  user: gov
  password: secret
  name: govidea
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://llm.example.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "reasoning-large", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.TimeoutDuration())
	assert.Equal(t, []string{"sam.gov", "nsf.gov"}, cfg.Scraper.Sources)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30, cfg.Concurrency.RPM)
	assert.Equal(t, "host=localhost port=5433 user=gov password=secret dbname=govidea sslmode=disable", cfg.DB.DSN())
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "from-env")
	path := writeConfig(t, "db:\n  host: db\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Zero(t, cfg.LLM.TimeoutDuration())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "llm: [unterminated"))
	assert.Error(t, err)
}
