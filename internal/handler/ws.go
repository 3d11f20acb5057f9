package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"forgeui/internal/correct"
	"forgeui/internal/llm"
)

const (
	generateWSWriteWait = 10 * time.Second
	generateWSPongWait  = 60 * time.Second
	generateWSPingEvery = (generateWSPongWait * 9) / 10
)

var generateWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type generateWSInbound struct {
	Type                string        `json:"type"`
	Prompt              string        `json:"prompt,omitempty"`
	ConversationHistory []llm.Message `json:"conversationHistory,omitempty"`
}

type generateWSOutbound struct {
	Type          string   `json:"type"`
	RequestID     string   `json:"requestId,omitempty"`
	AttemptNumber int      `json:"attemptNumber,omitempty"`
	TSCode        string   `json:"tsCode,omitempty"`
	HTMLCode      string   `json:"htmlCode,omitempty"`
	Raw           string   `json:"raw,omitempty"`
	Valid         bool     `json:"valid"`
	Errors        []string `json:"errors,omitempty"`
	AttemptsMade  int      `json:"attemptsMade,omitempty"`
	Code          string   `json:"code,omitempty"`
	Message       string   `json:"message,omitempty"`
}

// HandleGenerateWS streams per-attempt progress over a websocket. Each
// "generate" frame runs one full correction loop; attempt frames arrive as
// the loop progresses, then a final result frame.
func (h *Handler) HandleGenerateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := generateWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(generateWSPongWait)); err != nil {
		h.logger.Printf("generate ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(generateWSPongWait))
	})

	writeCh := make(chan generateWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(generateWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(generateWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(generateWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		var in generateWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushGenerateWS(writeCh, generateWSOutbound{Type: "pong"})
		case "generate":
			req := GenerateRequest{Prompt: in.Prompt, ConversationHistory: in.ConversationHistory}
			if err := req.Validate(); err != nil {
				pushGenerateWS(writeCh, generateWSOutbound{
					Type:    "error",
					Code:    "invalid_argument",
					Message: err.Error(),
				})
				continue
			}
			go h.runOverWS(ctx, r, req, writeCh)
		default:
			pushGenerateWS(writeCh, generateWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unsupported type: " + in.Type,
			})
		}
	}
}

// runOverWS executes one correction loop off the read loop so pings and
// further frames keep flowing while the model is busy.
func (h *Handler) runOverWS(ctx context.Context, r *http.Request, req GenerateRequest, writeCh chan generateWSOutbound) {
	runID := uuid.NewString()
	pushGenerateWS(writeCh, generateWSOutbound{Type: "accepted", RequestID: runID})

	out, err := h.run(r.WithContext(ctx), runID, req, func(a correct.Attempt) {
		pushGenerateWS(writeCh, generateWSOutbound{
			Type:          "attempt",
			RequestID:     runID,
			AttemptNumber: a.Number,
			Valid:         a.Validation.Valid,
			Errors:        a.Validation.Messages(),
		})
	})
	if err != nil {
		h.logger.Printf("generate ws %s: %v", runID, err)
		pushGenerateWS(writeCh, generateWSOutbound{
			Type:      "error",
			RequestID: runID,
			Code:      "upstream",
			Message:   "generation upstream failed",
		})
		return
	}

	resp := toResponse(out)
	pushGenerateWS(writeCh, generateWSOutbound{
		Type:         "result",
		RequestID:    runID,
		TSCode:       resp.TSCode,
		HTMLCode:     resp.HTMLCode,
		Raw:          resp.Raw,
		Valid:        resp.Valid,
		Errors:       resp.Errors,
		AttemptsMade: resp.AttemptsMade,
	})
}

func pushGenerateWS(writeCh chan generateWSOutbound, out generateWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
