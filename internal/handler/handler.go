// Package handler serves the HTTP and websocket boundary. Request handling
// stays thin: decode, orchestrate, encode. The core loop lives in
// internal/correct.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"forgeui/internal/audit"
	"forgeui/internal/correct"
	"forgeui/internal/designsystem"
	"forgeui/internal/llm"
	"forgeui/internal/metrics"
)

type Handler struct {
	generate correct.GenerateFunc
	client   llm.Client
	ds       *designsystem.System
	retries  int
	cache    *expirable.LRU[string, GenerateResponse]
	audit    audit.Recorder
	metrics  *metrics.Metrics
	logger   *log.Logger
}

type Deps struct {
	Generate     correct.GenerateFunc
	Client       llm.Client
	DS           *designsystem.System
	MaxRetries   int
	CacheEntries int
	CacheTTL     time.Duration
	Audit        audit.Recorder
	Metrics      *metrics.Metrics
	Logger       *log.Logger
}

func New(d Deps) *Handler {
	h := &Handler{
		generate: d.Generate,
		client:   d.Client,
		ds:       d.DS,
		retries:  d.MaxRetries,
		audit:    d.Audit,
		metrics:  d.Metrics,
		logger:   d.Logger,
	}
	if h.audit == nil {
		h.audit = audit.Nop{}
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	if d.CacheEntries > 0 {
		h.cache = expirable.NewLRU[string, GenerateResponse](d.CacheEntries, nil, d.CacheTTL)
	}
	return h
}

// orchestrator builds a request-scoped loop. The orchestrator itself is a
// small config struct; per-request construction keeps the attempt hook from
// being shared across concurrent requests.
func (h *Handler) orchestrator(onAttempt func(correct.Attempt)) *correct.Orchestrator {
	o := correct.New(h.generate, h.client, h.ds)
	o.MaxRetries = h.retries
	o.Logger = h.logger
	o.OnAttempt = onAttempt
	return o
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
