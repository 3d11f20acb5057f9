// Package app wires the process together: configuration, the design system,
// the LLM client stack, the correction loop dependencies, and the HTTP
// server. Construction is fail-fast; anything unreadable at startup aborts.
package app

import (
	"context"
	"fmt"
	"log"

	"forgeui/internal/audit"
	"forgeui/internal/config"
	"forgeui/internal/correct"
	"forgeui/internal/designsystem"
	"forgeui/internal/generate"
	"forgeui/internal/handler"
	"forgeui/internal/llm"
	llmclient "forgeui/internal/llm/client"
	"forgeui/internal/metrics"
	"forgeui/internal/server"
)

type App struct {
	server *server.Server
	client llm.Client
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	ds, err := designsystem.LoadFromEnv(cfg.DesignSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to load design system: %w", err)
	}
	log.Printf("Design system %q loaded: %d colors, font %q, %d radii",
		ds.Name, len(ds.Rules.AllowedColors), ds.Rules.RequiredFont, len(ds.Rules.AllowedRadii))

	inner, err := llmclient.New(ctx, llmclient.Config{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM client: %w", err)
	}
	client := llm.Wrap(inner,
		llm.WithLogging(nil),
		llm.Retry(cfg.LLM.RetryAttempts, cfg.LLM.RetryBase),
		llm.RateLimit(float64(cfg.LLM.RPS), cfg.LLM.Burst),
	)
	log.Printf("LLM provider ready: %s", client.Name())

	gen := generate.New(client, ds)

	h := handler.New(handler.Deps{
		Generate:     gen.Component,
		Client:       client,
		DS:           ds,
		MaxRetries:   correct.MaxRetries,
		CacheEntries: cfg.Cache.Entries,
		CacheTTL:     cfg.Cache.TTL,
		Audit:        audit.NewFromConfig(cfg.Audit, nil),
		Metrics:      metrics.New(),
	})

	// Routing & Server
	mux := server.NewMux(h)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		client: client,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.client.Close(); err == nil {
		err = cerr
	}
	return err
}
