package llmclient

import (
	"context"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"forgeui/internal/llm"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250901"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

func NewAnthropicClient(apiKey, model string, maxTokens int) (*AnthropicClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	cli := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{client: &cli, model: model, maxTokens: maxTokens}, nil
}

func (a *AnthropicClient) Name() string { return "Anthropic:" + a.model }
func (a *AnthropicClient) Close() error { return nil }

func (a *AnthropicClient) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
	}
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case llm.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(tb.Text)
		}
	}
	if out.Len() == 0 {
		return "", llm.ErrEmptyCompletion
	}
	return out.String(), nil
}
