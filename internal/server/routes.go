package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"forgeui/internal/handler"
	"forgeui/internal/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	// Generation API
	mux.HandleFunc("/generate", h.HandleGenerate)
	mux.HandleFunc("/ws/generate", h.HandleGenerateWS)
	mux.HandleFunc("/design-system", h.HandleDesignSystem)

	// Operational endpoints
	mux.HandleFunc("/healthz", h.HandleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	// Middleware
	return middleware.CORS(mux)
}
