package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/service"
)

const maxTextRunes = 2000

// Conversations is the part of the orchestrator the HTTP layer drives.
type Conversations interface {
	Turn(ctx context.Context, req domain.TurnRequest) (*domain.TurnResponse, error)
	Session(id string, withHistory bool) (*service.SessionView, error)
	Contradictions(id string) ([]domain.Contradiction, error)
	ResolveContradiction(ctx context.Context, sessionID string, field domain.Field, keepNew bool, explanation string) (*domain.Contradiction, error)
	EndSession(id string) bool
}

type TurnHandler struct {
	conv Conversations
}

func NewTurnHandler(conv Conversations) *TurnHandler {
	return &TurnHandler{conv: conv}
}

type turnRequest struct {
	SessionID  string   `json:"session_id"`
	Text       *string  `json:"text"`
	Confidence *float64 `json:"confidence"`
}

// Create runs one conversational turn. Empty text is a valid turn (the
// reply asks the user to speak again), so only a missing field is rejected.
func (h *TurnHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if utf8.RuneCountInString(*req.Text) > maxTextRunes {
		writeError(w, http.StatusRequestEntityTooLarge, "text is too long")
		return
	}

	tr := domain.TurnRequest{
		SessionID: strings.TrimSpace(req.SessionID),
		Text:      *req.Text,
	}
	if req.Confidence != nil {
		c := *req.Confidence
		if c < 0 || c > 1 {
			writeError(w, http.StatusBadRequest, "confidence must be between 0 and 1")
			return
		}
		tr.Confidence = &c
	}

	resp, err := h.conv.Turn(r.Context(), tr)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "request cancelled")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to process turn")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
