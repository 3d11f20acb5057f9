package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"forgeui/internal/llm"
)

const defaultGroqModel = "llama-3.3-70b-versatile"

// GroqClient calls the Groq Chat Completions API (OpenAI-compatible).
// See: https://console.groq.com/docs/api-reference
type GroqClient struct {
	http      *http.Client
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
}

// NewGroqClient creates a Groq client. If apiKey is empty, it falls back to
// the GROQ_API_KEY env var.
func NewGroqClient(apiKey, model string, maxTokens int) (*GroqClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if model == "" {
		model = defaultGroqModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &GroqClient{
		http:      &http.Client{Timeout: 60 * time.Second},
		apiKey:    apiKey,
		model:     model,
		baseURL:   "https://api.groq.com/openai/v1/chat/completions",
		maxTokens: maxTokens,
	}, nil
}

func (g *GroqClient) Name() string { return "Groq:" + g.model }
func (g *GroqClient) Close() error { return nil }

type groqChatReq struct {
	Model     string        `json:"model"`
	Messages  []llm.Message `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *GroqClient) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	b, _ := json.Marshal(groqChatReq{Model: g.model, Messages: msgs, MaxTokens: g.maxTokens})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		const max = 2048
		if len(body) > max {
			body = body[:max]
		}
		err := fmt.Errorf("groq: unexpected status %s: %s", resp.Status, string(body))
		// Context length exceeded will not resolve with retries.
		if resp.StatusCode == 400 && strings.Contains(string(body), `"code":"context_length_exceeded"`) {
			return "", llm.NewPermanentError(err)
		}
		return "", err
	}
	var out groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
