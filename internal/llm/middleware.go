package llm

import (
	"context"
	"errors"
	"log"
	"time"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (rate limiting, retries, logging, etc.).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Retry with exponential backoff --------

// Retry retries Complete up to maxAttempts with exponential backoff
// starting at baseDelay. Permanent errors and canceled contexts stop
// the loop immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Complete(ctx context.Context, msgs []Message) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Complete(ctx, msgs)
		if err == nil {
			return out, nil
		}
		// If it's a permanent error, do not retry.
		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		last = err
		// Stop immediately if the context is canceled.
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		time.Sleep(r.base * time.Duration(1<<i))
	}
	return "", last
}

// -------- Logging --------

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Complete(ctx context.Context, msgs []Message) (string, error) {
	var size int
	for _, m := range msgs {
		size += len(m.Content)
	}
	l.log.Printf("LLM request (%s): %d turns, %d bytes", PhaseFrom(ctx), len(msgs), size)
	out, err := l.next.Complete(ctx, msgs)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", PhaseFrom(ctx), err)
	}
	return out, err
}
