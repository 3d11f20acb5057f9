package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"forgeui/internal/correct"
	"forgeui/internal/llm"
)

// maxPromptLen caps the user request; anything longer is rejected before a
// model call is made.
const maxPromptLen = 8192

type GenerateRequest struct {
	Prompt              string        `json:"prompt"`
	ConversationHistory []llm.Message `json:"conversation_history"`
}

func (r *GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if len(r.Prompt) > maxPromptLen {
		return fmt.Errorf("prompt exceeds %d characters", maxPromptLen)
	}
	for i, m := range r.ConversationHistory {
		if strings.TrimSpace(m.Role) == "" {
			return fmt.Errorf("conversation_history[%d]: role is required", i)
		}
	}
	return nil
}

type GenerateResponse struct {
	TSCode       string   `json:"ts_code"`
	HTMLCode     string   `json:"html_code"`
	Raw          string   `json:"raw"`
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors"`
	AttemptsMade int      `json:"attempts_made"`
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runID := uuid.NewString()
	w.Header().Set("X-Request-Id", runID)

	key := cacheKey(req)
	if h.cache != nil {
		if resp, ok := h.cache.Get(key); ok {
			h.metrics.ObserveCacheHit()
			w.Header().Set("X-Cache", "HIT")
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}
	w.Header().Set("X-Cache", "MISS")

	out, err := h.run(r, runID, req, nil)
	if err != nil {
		h.logger.Printf("generate %s: %v", runID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "generation upstream failed"})
		return
	}

	resp := toResponse(out)
	if h.cache != nil && out.Success {
		h.cache.Add(key, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// run executes the correction loop for one request, recording every attempt
// in the audit sink and the metrics. extraHook, when set, additionally
// observes attempts (used by the websocket path for progress frames).
func (h *Handler) run(r *http.Request, runID string, req GenerateRequest, extraHook func(correct.Attempt)) (*correct.Outcome, error) {
	ctx := r.Context()
	o := h.orchestrator(func(a correct.Attempt) {
		if err := h.audit.Record(ctx, runID, fmt.Sprintf("attempt-%d.txt", a.Number), []byte(a.Artifact.Raw)); err != nil {
			h.logger.Printf("audit %s: %v", runID, err)
		}
		kinds := make([]string, 0, len(a.Validation.Findings))
		for _, f := range a.Validation.Findings {
			kinds = append(kinds, string(f.Kind))
		}
		h.metrics.ObserveAttempt(kinds)
		if extraHook != nil {
			extraHook(a)
		}
	})

	out, err := o.Run(ctx, req.Prompt, req.ConversationHistory)
	if err != nil {
		h.metrics.ObserveError()
		return nil, err
	}
	h.metrics.ObserveOutcome(out.Success)
	return out, nil
}

func toResponse(out *correct.Outcome) GenerateResponse {
	errs := out.Validation.Messages()
	if errs == nil {
		errs = []string{}
	}
	return GenerateResponse{
		TSCode:       out.Artifact.TS,
		HTMLCode:     out.Artifact.HTML,
		Raw:          out.Artifact.Raw,
		Valid:        out.Validation.Valid,
		Errors:       errs,
		AttemptsMade: len(out.Attempts),
	}
}

// cacheKey digests the prompt and conversation history. Identical requests
// share a key regardless of field ordering in the incoming JSON.
func cacheKey(req GenerateRequest) string {
	sum := sha256.New()
	sum.Write([]byte(req.Prompt))
	for _, m := range req.ConversationHistory {
		sum.Write([]byte{0})
		sum.Write([]byte(m.Role))
		sum.Write([]byte{0})
		sum.Write([]byte(m.Content))
	}
	return hex.EncodeToString(sum.Sum(nil))
}
