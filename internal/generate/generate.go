// Package generate issues first-pass component generation calls. It owns
// message assembly for the generation turn; correction calls are composed
// separately by the orchestrator.
package generate

import (
	"context"

	"forgeui/internal/designsystem"
	"forgeui/internal/llm"
	"forgeui/internal/prompt"
)

type Generator struct {
	client llm.Client
	ds     *designsystem.System
}

func New(client llm.Client, ds *designsystem.System) *Generator {
	return &Generator{client: client, ds: ds}
}

// Component requests a component for the given user request. History carries
// the caller's earlier turns and is threaded between the system persona and
// the new user turn. The slice is treated as read-only; nil means a fresh
// conversation.
func (g *Generator) Component(ctx context.Context, request string, history []llm.Message) (string, error) {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: prompt.System})
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: prompt.Generation(g.ds, request)})

	return g.client.Complete(llm.WithPhase(ctx, "generate"), msgs)
}
