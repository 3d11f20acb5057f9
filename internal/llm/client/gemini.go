package llmclient

import (
	"context"

	genai "google.golang.org/genai"

	"forgeui/internal/llm"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself; cross-cutting concerns
// (rate limiting, retries, logging) are applied via Middleware.
type GeminiClient struct {
	cli       *genai.Client
	model     string
	maxTokens int
}

func NewGeminiClient(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiClient, error) {
	// NOTE: apiKey is currently unused here; the genai client reads it from env.
	// Keep the parameter for a consistent factory signature.
	_ = apiKey

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &GeminiClient{cli: cli, model: model, maxTokens: maxTokens}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxTokens)}
	var contents []*genai.Content
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleSystem:
			cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: m.Content}}}
		case llm.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", llm.ErrEmptyCompletion
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
