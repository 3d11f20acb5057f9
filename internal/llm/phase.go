package llm

import "context"

type ctxKeyPhase struct{}

// WithPhase labels the context with the pipeline phase issuing the call
// ("generate", "correct"). The logging middleware includes it in log lines.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
