// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the tool configuration. It can be loaded from a JSON
// file; missing values use defaults or come from CLI flags and environment
// variables merged in by the command layer.
type Config struct {
	// Paths
	InputDir  string `json:"input_dir,omitempty" validate:"required,dir"`
	OutputDir string `json:"output_dir,omitempty" validate:"required"`

	// Model backend
	Provider   string `json:"provider,omitempty" validate:"omitempty,oneof=ollama gemini"`
	Model      string `json:"model,omitempty" validate:"required"`
	OllamaHost string `json:"ollama_host,omitempty" validate:"omitempty,url"`
	APIKey     string `json:"api_key,omitempty"`

	// Limits
	Workers         int `json:"workers,omitempty" validate:"min=1,max=32"`
	ModelTimeoutSec int `json:"model_timeout_sec,omitempty" validate:"min=1"`
	ExecTimeoutSec  int `json:"exec_timeout_sec,omitempty" validate:"min=1"`

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`
	LogLevel    string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	DatabaseURL string `json:"database_url,omitempty"`
}

// Defaults returns a Config populated with default values
func Defaults() *Config {
	return &Config{
		Provider:        "ollama",
		Model:           "llama3.2",
		OllamaHost:      "http://localhost:11434",
		Workers:         4,
		ModelTimeoutSec: 120,
		ExecTimeoutSec:  5,
		LogLevel:        "info",
	}
}

// Load reads a JSON config file over a Defaults() base.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return cfg, nil
}

// ApplyEnv fills credential-ish fields from the environment when unset
func (c *Config) ApplyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" && c.OllamaHost == Defaults().OllamaHost {
		c.OllamaHost = host
	}
}

// Validate checks the configuration after all merging is done
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			first := verrs[0]
			return fmt.Errorf("config error: field %s failed %q validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.Provider == "gemini" && c.APIKey == "" {
		return fmt.Errorf("config error: 'api_key' (or GEMINI_API_KEY) is required for the gemini provider")
	}

	return nil
}

// ModelTimeout returns the model call ceiling as a duration
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.ModelTimeoutSec) * time.Second
}

// ExecTimeout returns the sandbox execution ceiling as a duration
func (c *Config) ExecTimeout() time.Duration {
	return time.Duration(c.ExecTimeoutSec) * time.Second
}
