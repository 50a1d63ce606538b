package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, DefaultGeminiModel, cfg.LLM.Gemini.Model)
	assert.Equal(t, ":10000", cfg.Server.Address)
	assert.Equal(t, 20, cfg.Conversation.HistoryLimit)

	ttl, err := cfg.Dialogue.StateTTLDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":    "secret",
		"GEMINI_MODEL_NAME": "gemini-2.0-flash",
		"PORT":              "8088",
		"JARVIS_DB_PATH":    "/var/lib/jarvis.db",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "secret", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Gemini.Model)
	assert.Equal(t, ":8088", cfg.Server.Address)
	assert.Equal(t, "/var/lib/jarvis.db", cfg.Databases.SQL.Path)
}

func TestApplyEnv_IgnoresBadPort(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(func(k string) string {
		if k == "PORT" {
			return "not-a-port"
		}
		return ""
	})
	assert.Equal(t, ":10000", cfg.Server.Address)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  name: Jarvis Test
intent:
  classifier: keyword
dialogue:
  store: redis
  lock: redis
  stateTTL: 5m
conversation:
  historyLimit: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Jarvis Test", cfg.App.Name)
	assert.Equal(t, "keyword", cfg.Intent.Classifier)
	assert.Equal(t, "redis", cfg.Dialogue.Store)
	assert.Equal(t, 4, cfg.Conversation.HistoryLimit)
	// untouched sections keep their defaults
	assert.Equal(t, "sqlite", cfg.Databases.SQL.Driver)

	ttl, err := cfg.Dialogue.StateTTLDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"bad ttl":        func(c *AppConfig) { c.Dialogue.StateTTL = "soon" },
		"bad store":      func(c *AppConfig) { c.Dialogue.Store = "etcd" },
		"bad lock":       func(c *AppConfig) { c.Dialogue.Lock = "zookeeper" },
		"bad classifier": func(c *AppConfig) { c.Intent.Classifier = "bert" },
		"negative limit": func(c *AppConfig) { c.Conversation.HistoryLimit = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
