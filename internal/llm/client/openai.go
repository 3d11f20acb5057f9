package llmclient

import (
	"context"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"forgeui/internal/llm"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient calls the OpenAI Responses API. Setting OPENAI_BASE_URL
// points it at any OpenAI-compatible endpoint.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIClient(apiKey, model string, maxTokens int) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIClient{client: &cli, model: model, maxTokens: maxTokens}, nil
}

func (o *OpenAIClient) Name() string { return "OpenAI:" + o.model }
func (o *OpenAIClient) Close() error { return nil }

func (o *OpenAIClient) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	input := make(responses.ResponseInputParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleSystem:
			input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleSystem))
		case llm.RoleAssistant:
			input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleAssistant))
		default:
			input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleUser))
		}
	}

	result, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           shared.ResponsesModel(o.model),
		Input:           responses.ResponseNewParamsInputUnion{OfInputItemList: input},
		MaxOutputTokens: openai.Int(int64(o.maxTokens)),
	})
	if err != nil {
		return "", err
	}
	text := result.OutputText()
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}
