package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := Defaults()
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "llama3.2", cfg.Model)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 120*time.Second, cfg.ModelTimeout())
	assert.Equal(t, 5*time.Second, cfg.ExecTimeout())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"model": "mistral",
		"workers": 8
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.Model)
	assert.Equal(t, 8, cfg.Workers)
	// Untouched fields keep their defaults.
	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, 120, cfg.ModelTimeoutSec)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig(t).Validate())
	})

	t.Run("missing input dir", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.InputDir = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("input dir does not exist", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.InputDir = filepath.Join(cfg.InputDir, "missing")
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Provider = "openai"
		assert.Error(t, cfg.Validate())
	})

	t.Run("workers out of range", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Workers = 0
		assert.Error(t, cfg.Validate())
		cfg.Workers = 33
		assert.Error(t, cfg.Validate())
	})

	t.Run("gemini requires api key", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Provider = "gemini"
		cfg.APIKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api_key")

		cfg.APIKey = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.LogLevel = "trace"
		assert.Error(t, cfg.Validate())
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/docinsight")
	t.Setenv("OLLAMA_HOST", "http://ollama.internal:11434")

	cfg := Defaults()
	cfg.ApplyEnv()
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "postgres://localhost/docinsight", cfg.DatabaseURL)
	assert.Equal(t, "http://ollama.internal:11434", cfg.OllamaHost)
}

func TestApplyEnvDoesNotOverrideExplicit(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("OLLAMA_HOST", "http://ollama.internal:11434")

	cfg := Defaults()
	cfg.APIKey = "explicit"
	cfg.OllamaHost = "http://other:11434"
	cfg.ApplyEnv()
	assert.Equal(t, "explicit", cfg.APIKey)
	assert.Equal(t, "http://other:11434", cfg.OllamaHost)
}
