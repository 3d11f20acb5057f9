// Package correct drives the bounded generate-validate-repair loop. A request
// gets one generation attempt plus at most MaxRetries correction attempts;
// whatever the final attempt produced is returned, findings and all.
package correct

import (
	"context"
	"fmt"
	"log"

	"forgeui/internal/component"
	"forgeui/internal/designsystem"
	"forgeui/internal/extract"
	"forgeui/internal/llm"
	"forgeui/internal/prompt"
	"forgeui/internal/validate"
)

// MaxRetries is the correction budget per request. A request makes at most
// 1+MaxRetries model calls.
const MaxRetries = 2

// GenerateFunc produces raw model output for the initial attempt.
type GenerateFunc func(ctx context.Context, request string, history []llm.Message) (string, error)

// Attempt records one generation or correction round. Records are append-only
// and numbered contiguously from 1.
type Attempt struct {
	Number     int
	Artifact   component.Artifact
	Validation validate.Result
}

// Outcome is the terminal result of one orchestrated request. Artifact and
// Validation mirror the final attempt even when the budget is exhausted;
// there is no rollback to an earlier attempt with fewer findings.
type Outcome struct {
	Artifact   component.Artifact
	Validation validate.Result
	Attempts   []Attempt
	Success    bool
}

type state int

const (
	stateInitial state = iota
	stateCorrecting
	stateAccepted
	stateExhausted
)

type Orchestrator struct {
	Generate   GenerateFunc
	Client     llm.Client
	DS         *designsystem.System
	MaxRetries int
	Logger     *log.Logger

	// OnAttempt observes every attempt as it is recorded. The hosting layer
	// uses it for progress streaming and audit capture.
	OnAttempt func(Attempt)
}

func New(gen GenerateFunc, client llm.Client, ds *designsystem.System) *Orchestrator {
	return &Orchestrator{
		Generate:   gen,
		Client:     client,
		DS:         ds,
		MaxRetries: MaxRetries,
	}
}

// Run processes one request through the retry state machine. Transport errors
// abort the run and propagate unretried; validation findings only steer the
// loop. History is treated as read-only and may be nil.
func (o *Orchestrator) Run(ctx context.Context, request string, history []llm.Message) (*Outcome, error) {
	retries := o.MaxRetries
	if retries < 0 {
		retries = 0
	}
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}

	var (
		attempts    []Attempt
		artifact    component.Artifact
		validation  validate.Result
		corrections int
	)

	st := stateInitial
	for {
		switch st {
		case stateInitial:
			raw, err := o.Generate(ctx, request, history)
			if err != nil {
				return nil, fmt.Errorf("generation call: %w", err)
			}
			artifact = extract.Extract(raw)
			validation = validate.Check(artifact, o.DS.Rules)
			attempts = o.record(attempts, artifact, validation)
			st = nextState(validation, corrections, retries)

		case stateCorrecting:
			logger.Printf("Attempt %d failed. Errors: %v", len(attempts), validation.Messages())
			logger.Printf("Auto-correcting...")

			raw, err := o.correctOnce(ctx, artifact.Raw, validation)
			if err != nil {
				return nil, fmt.Errorf("correction call: %w", err)
			}
			corrections++
			artifact = extract.Extract(raw)
			validation = validate.Check(artifact, o.DS.Rules)
			attempts = o.record(attempts, artifact, validation)
			st = nextState(validation, corrections, retries)

		case stateAccepted, stateExhausted:
			return &Outcome{
				Artifact:   artifact,
				Validation: validation,
				Attempts:   attempts,
				Success:    validation.Valid,
			}, nil
		}
	}
}

func nextState(v validate.Result, corrections, retries int) state {
	switch {
	case v.Valid:
		return stateAccepted
	case corrections < retries:
		return stateCorrecting
	default:
		return stateExhausted
	}
}

func (o *Orchestrator) record(attempts []Attempt, a component.Artifact, v validate.Result) []Attempt {
	att := Attempt{Number: len(attempts) + 1, Artifact: a, Validation: v}
	attempts = append(attempts, att)
	if o.OnAttempt != nil {
		o.OnAttempt(att)
	}
	return attempts
}

// correctOnce issues the direct correction call: the fixed system persona
// plus the correction prompt as the sole user turn. Earlier conversation
// turns are not included; the model works from error feedback alone.
func (o *Orchestrator) correctOnce(ctx context.Context, originalRaw string, v validate.Result) (string, error) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.System},
		{Role: llm.RoleUser, Content: prompt.Correction(v.Messages(), originalRaw, o.DS)},
	}
	return o.Client.Complete(llm.WithPhase(ctx, "correct"), msgs)
}
