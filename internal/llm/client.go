// Package llm provides centralized model-backend configuration and client
// abstractions. The pipeline depends only on the Client capability surface,
// not on any particular provider's transport.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Role tags a message in a conversational exchange
type Role string

// Conversation roles
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a role-tagged conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is an abstraction over model backends. Calls are self-contained;
// a Client may be shared across pipeline workers.
type Client interface {
	// Chat sends a role-tagged message sequence and returns the response text
	Chat(ctx context.Context, messages []Message) (string, error)
	// ListModels returns the model identifiers the backend currently serves
	ListModels(ctx context.Context) ([]string, error)
	// EnsureModel makes the configured model available, fetching it if the
	// backend supports provisioning
	EnsureModel(ctx context.Context) error
	// Model returns the configured model identifier
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// Provider identifies a model backend implementation
type Provider string

// Supported providers
const (
	// ProviderOllama is a local Ollama server (default)
	ProviderOllama Provider = "ollama"
	// ProviderGemini is Google Gemini
	ProviderGemini Provider = "gemini"
)

// Config holds backend selection and connection settings
type Config struct {
	Provider Provider
	Model    string
	Endpoint string // Ollama host, e.g. "http://localhost:11434"
	APIKey   string // Gemini API key
	Timeout  time.Duration
}

// DefaultConfig returns the default backend configuration: a local Ollama
// server with a small general-purpose model.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOllama,
		Model:    "llama3.2",
		Endpoint: "http://localhost:11434",
		Timeout:  2 * time.Minute,
	}
}

// NewClient creates a model-backend client for the configured provider
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	case ProviderOllama, "":
		return NewOllamaClient(config), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
}
