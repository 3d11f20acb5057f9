package llm

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"
)

type scriptClient struct {
	errs  []error
	out   string
	calls int
}

func (s *scriptClient) Name() string { return "script" }
func (s *scriptClient) Close() error { return nil }

func (s *scriptClient) Complete(ctx context.Context, msgs []Message) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.out, nil
}

func TestWrapOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next Client) Client {
			return &tagged{next: next, name: name, order: &order}
		}
	}
	inner := &scriptClient{out: "done"}
	cli := Wrap(inner, tag("outer"), tag("inner"))

	out, err := cli.Complete(context.Background(), nil)
	if err != nil || out != "done" {
		t.Fatalf("Complete = %q, %v", out, err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("middleware order = %v", order)
	}
}

type tagged struct {
	next  Client
	name  string
	order *[]string
}

func (tg *tagged) Name() string { return tg.next.Name() }
func (tg *tagged) Close() error { return tg.next.Close() }

func (tg *tagged) Complete(ctx context.Context, msgs []Message) (string, error) {
	*tg.order = append(*tg.order, tg.name)
	return tg.next.Complete(ctx, msgs)
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	inner := &scriptClient{errs: []error{errors.New("boom")}, out: "ok"}
	cli := Wrap(inner, Retry(3, time.Millisecond))

	out, err := cli.Complete(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" || inner.calls != 2 {
		t.Fatalf("out=%q calls=%d", out, inner.calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	perm := NewPermanentError(errors.New("context window blown"))
	inner := &scriptClient{errs: []error{perm, nil}, out: "never"}
	cli := Wrap(inner, Retry(5, time.Millisecond))

	_, err := cli.Complete(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var pErr *PermanentError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PermanentError, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("calls = %d, want 1", inner.calls)
	}
}

func TestRetryExhaustsAndReturnsLastError(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptClient{errs: []error{boom, boom, boom}}
	cli := Wrap(inner, Retry(3, time.Millisecond))

	_, err := cli.Complete(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if inner.calls != 3 {
		t.Fatalf("calls = %d, want 3", inner.calls)
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	inner := &scriptClient{out: "x"}
	cli := Wrap(inner, RateLimit(0, 0))

	out, err := cli.Complete(context.Background(), nil)
	if err != nil || out != "x" {
		t.Fatalf("Complete = %q, %v", out, err)
	}
}

func TestRateLimitHonorsCanceledContext(t *testing.T) {
	inner := &scriptClient{out: "x"}
	cli := Wrap(inner, RateLimit(0.001, 1))

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := cli.Complete(ctx, nil); err != nil {
		t.Fatalf("burst call failed: %v", err) // burst token available
	}
	cancel()
	if _, err := cli.Complete(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestWithLoggingLabelsPhase(t *testing.T) {
	var buf bytes.Buffer
	inner := &scriptClient{out: "y"}
	cli := Wrap(inner, WithLogging(log.New(&buf, "", 0)))

	ctx := WithPhase(context.Background(), "correct")
	if _, err := cli.Complete(ctx, []Message{{Role: RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("(correct)")) {
		t.Fatalf("log line missing phase: %q", buf.String())
	}
}

func TestPhaseFromDefaultsToUnknown(t *testing.T) {
	if got := PhaseFrom(context.Background()); got != "unknown" {
		t.Fatalf("PhaseFrom = %q", got)
	}
}
