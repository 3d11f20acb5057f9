package llm

import (
	"context"
	"errors"
)

// Chat roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for LLM providers. Implementations focus on
// the API call itself; cross-cutting concerns (rate limiting, retries,
// logging) are applied via Middleware.
type Client interface {
	Name() string
	Close() error
	Complete(ctx context.Context, msgs []Message) (string, error)
}

var ErrEmptyCompletion = errors.New("empty completion from LLM")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
