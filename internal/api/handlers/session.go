package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/service"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	conv Conversations
}

func NewSessionHandler(conv Conversations) *SessionHandler {
	return &SessionHandler{conv: conv}
}

type resolveRequest struct {
	Field       string `json:"field"`
	KeepNew     bool   `json:"keep_new"`
	Explanation string `json:"explanation,omitempty"`
}

type contradictionsResponse struct {
	SessionID      string                 `json:"session_id"`
	Contradictions []domain.Contradiction `json:"contradictions"`
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	withHistory, _ := strconv.ParseBool(r.URL.Query().Get("history"))

	view, err := h.conv.Session(chi.URLParam(r, "id"), withHistory)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.conv.EndSession(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, service.ErrSessionNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Contradictions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pending, err := h.conv.Contradictions(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contradictionsResponse{SessionID: id, Contradictions: pending})
}

func (h *SessionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidField(req.Field) {
		writeError(w, http.StatusBadRequest, "invalid field")
		return
	}

	explanation := req.Explanation
	if explanation == "" {
		explanation = "resolved via api"
	}

	c, err := h.conv.ResolveContradiction(r.Context(), chi.URLParam(r, "id"), domain.Field(req.Field), req.KeepNew, explanation)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoPendingContradiction):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
