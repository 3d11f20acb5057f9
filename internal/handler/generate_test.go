package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"forgeui/internal/audit"
	"forgeui/internal/correct"
	"forgeui/internal/designsystem"
	"forgeui/internal/generate"
	"forgeui/internal/llm"
	llmclient "forgeui/internal/llm/client"
	"forgeui/internal/metrics"
)

const invalidComponentRaw = "import { Component } from '@angular/core';\n\n@Component({\n  selector: 'app-root',\n  standalone: true,\n  templateUrl: './app.component.html'\n})\nexport class AppComponent {}\n--- HTML ---\n<div style=\"font-family: Inter; color: #000000; border-radius: 16px;\">bad</div>"

func testDS(t *testing.T) *designsystem.System {
	t.Helper()
	ds, err := designsystem.Parse([]byte(`{
		"name": "Test",
		"tokens": {"colors": {"surface": "#ffffff", "text": "#0f172a"}},
		"rules": {
			"allowed_colors": ["#ffffff", "#0f172a"],
			"required_font": "Inter",
			"border_radius_values": ["8px", "16px", "9999px"]
		}
	}`))
	if err != nil {
		t.Fatalf("parse design system: %v", err)
	}
	return ds
}

func newTestHandler(t *testing.T, responses ...string) (*Handler, *llmclient.FakeClient, string) {
	t.Helper()
	ds := testDS(t)
	fake := llmclient.NewFakeClient(responses...)
	gen := generate.New(fake, ds)
	auditDir := t.TempDir()
	h := New(Deps{
		Generate:     gen.Component,
		Client:       fake,
		DS:           ds,
		MaxRetries:   correct.MaxRetries,
		CacheEntries: 8,
		CacheTTL:     time.Minute,
		Audit:        audit.NewFileRecorder(auditDir),
		Metrics:      metrics.NewWith(prometheus.NewRegistry()),
		Logger:       log.New(io.Discard, "", 0),
	})
	return h, fake, auditDir
}

func postGenerate(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.HandleGenerate(rr, req)
	return rr
}

func TestHandleGenerateAcceptsStub(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postGenerate(t, h, `{"prompt": "a pricing card"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var resp GenerateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Valid || resp.AttemptsMade != 1 {
		t.Errorf("valid=%v attempts=%d, errors %v", resp.Valid, resp.AttemptsMade, resp.Errors)
	}
	if !strings.Contains(resp.TSCode, "@Component") || !strings.Contains(resp.HTMLCode, "<div") {
		t.Errorf("segments not populated: ts=%q html=%q", resp.TSCode, resp.HTMLCode)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("missing request id header")
	}
	if rr.Header().Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", rr.Header().Get("X-Cache"))
	}
}

func TestHandleGenerateServesFromCache(t *testing.T) {
	h, fake, _ := newTestHandler(t)

	first := postGenerate(t, h, `{"prompt": "a pricing card"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	callsAfterFirst := fake.CallCount()

	second := postGenerate(t, h, `{"prompt": "a pricing card"}`)
	if second.Code != http.StatusOK {
		t.Fatalf("second status = %d", second.Code)
	}
	if second.Header().Get("X-Cache") != "HIT" {
		t.Errorf("X-Cache = %q, want HIT", second.Header().Get("X-Cache"))
	}
	if fake.CallCount() != callsAfterFirst {
		t.Errorf("cache hit still reached the model")
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("cached body diverged")
	}
}

func TestHandleGenerateCorrectionRecordsAttempts(t *testing.T) {
	h, _, auditDir := newTestHandler(t, invalidComponentRaw)

	rr := postGenerate(t, h, `{"prompt": "a dark card"}`)
	var resp GenerateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Valid || resp.AttemptsMade != 2 {
		t.Fatalf("valid=%v attempts=%d, errors %v", resp.Valid, resp.AttemptsMade, resp.Errors)
	}

	runs, err := os.ReadDir(auditDir)
	if err != nil || len(runs) != 1 {
		t.Fatalf("audit runs = %v, err %v", runs, err)
	}
	runDir := filepath.Join(auditDir, runs[0].Name())
	for _, name := range []string{"attempt-1.txt", "attempt-2.txt"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("missing audit record %s: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(runDir, "attempt-1.txt"))
	if err != nil || !strings.Contains(string(data), "#000000") {
		t.Errorf("attempt-1 audit content = %q, err %v", data, err)
	}
}

func TestHandleGenerateExhaustedStillResponds(t *testing.T) {
	h, _, _ := newTestHandler(t, invalidComponentRaw, invalidComponentRaw, invalidComponentRaw)

	rr := postGenerate(t, h, `{"prompt": "a dark card"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, exhausted loops still answer", rr.Code)
	}
	var resp GenerateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Valid || resp.AttemptsMade != 3 || len(resp.Errors) == 0 {
		t.Errorf("valid=%v attempts=%d errors=%v", resp.Valid, resp.AttemptsMade, resp.Errors)
	}
}

func TestHandleGenerateRejectsBadRequests(t *testing.T) {
	h, _, _ := newTestHandler(t)

	if rr := postGenerate(t, h, `{not json`); rr.Code != http.StatusBadRequest {
		t.Errorf("garbage body status = %d", rr.Code)
	}
	if rr := postGenerate(t, h, `{"prompt": "  "}`); rr.Code != http.StatusBadRequest {
		t.Errorf("blank prompt status = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/generate", nil)
	rr := httptest.NewRecorder()
	h.HandleGenerate(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d", rr.Code)
	}
}

type failingClient struct{}

func (failingClient) Name() string { return "failing" }
func (failingClient) Close() error { return nil }
func (failingClient) Complete(context.Context, []llm.Message) (string, error) {
	return "", errors.New("connection refused")
}

func TestHandleGenerateUpstreamFailure(t *testing.T) {
	ds := testDS(t)
	gen := generate.New(failingClient{}, ds)
	h := New(Deps{
		Generate: gen.Component,
		Client:   failingClient{},
		DS:       ds,
		Metrics:  metrics.NewWith(prometheus.NewRegistry()),
		Logger:   log.New(io.Discard, "", 0),
	})

	rr := postGenerate(t, h, `{"prompt": "a card"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"detail"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestHandleDesignSystem(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/design-system", nil)
	rr := httptest.NewRecorder()
	h.HandleDesignSystem(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"allowed_colors"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestHandleHealthz(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.HandleHealthz(rr, req)

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("status = %d, body %s", rr.Code, rr.Body.String())
	}
}
