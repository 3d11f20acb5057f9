package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"forgeui/internal/llm"
)

func TestGroqCompleteParsesChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req groqChatReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != defaultGroqModel || len(req.Messages) != 2 || req.MaxTokens != defaultMaxTokens {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "hello"}}},
		})
	}))
	defer srv.Close()

	cli, err := NewGroqClient("test-key", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	cli.baseURL = srv.URL

	out, err := cli.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "hello" {
		t.Fatalf("out = %q", out)
	}
}

func TestGroqContextLengthExceededIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"context_length_exceeded"}}`))
	}))
	defer srv.Close()

	cli, _ := NewGroqClient("k", "", 0)
	cli.baseURL = srv.URL

	_, err := cli.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	var pErr *llm.PermanentError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PermanentError, got %v", err)
	}
}

func TestGroqServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream sad"))
	}))
	defer srv.Close()

	cli, _ := NewGroqClient("k", "", 0)
	cli.baseURL = srv.URL

	_, err := cli.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	if err == nil {
		t.Fatal("expected error")
	}
	var pErr *llm.PermanentError
	if errors.As(err, &pErr) {
		t.Fatalf("502 must stay retryable, got permanent: %v", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error should carry status: %v", err)
	}
}

func TestGroqEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	cli, _ := NewGroqClient("k", "", 0)
	cli.baseURL = srv.URL

	_, err := cli.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	if !errors.Is(err, llm.ErrEmptyCompletion) {
		t.Fatalf("err = %v, want ErrEmptyCompletion", err)
	}
}

func TestFakeClientPopsScriptThenFallsBack(t *testing.T) {
	fake := NewFakeClient("first", "second")

	for i, want := range []string{"first", "second"} {
		got, err := fake.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}})
		if err != nil || got != want {
			t.Fatalf("call %d = %q, %v", i, got, err)
		}
	}
	got, err := fake.Complete(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "@Component") || !strings.Contains(got, "--- HTML ---") {
		t.Fatalf("stub fallback looks wrong: %q", got)
	}
	if fake.CallCount() != 3 {
		t.Fatalf("CallCount = %d", fake.CallCount())
	}
	if turns := fake.Call(0); len(turns) != 1 || turns[0].Content != "q" {
		t.Fatalf("recorded call 0 = %+v", turns)
	}
}
