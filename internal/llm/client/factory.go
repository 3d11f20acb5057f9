package llmclient

import (
	"context"
	"fmt"
	"strings"

	"forgeui/internal/llm"
)

const defaultMaxTokens = 4096

// Config selects and parameterizes a provider.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	MaxTokens int
}

// New builds the provider named by cfg.Provider: groq (default), gemini,
// openai, anthropic, or fake for offline runs.
func New(ctx context.Context, cfg Config) (llm.Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "groq"
	}
	switch provider {
	case "groq":
		return NewGroqClient(cfg.APIKey, cfg.Model, cfg.MaxTokens)
	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens)
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.MaxTokens)
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.MaxTokens)
	case "fake":
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
