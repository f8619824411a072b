package dryrun

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/r3e-network/discovery-pipeline/internal/httpserver"
	"github.com/r3e-network/discovery-pipeline/internal/svcerrors"
)

// Handlers exposes the dry-run HTTP surface.
type Handlers struct {
	orchestrator *Orchestrator
}

func NewHandlers(o *Orchestrator) *Handlers {
	return &Handlers{orchestrator: o}
}

func (h *Handlers) Mount(r chi.Router) {
	r.Post("/api/dryrun/start", h.start)
	r.Post("/api/dryrun/cleanup", h.cleanup)
	r.Get("/api/dryrun/{session_id}/containers", h.containers)
}

type startRequest struct {
	SessionID string `json:"session_id"`
}

func (h *Handlers) start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpserver.WriteError(w, r, svcerrors.Validation("invalid request body"))
		return
	}

	result, err := h.orchestrator.Start(r.Context(), req.SessionID)
	if err != nil {
		httpserver.WriteError(w, r, err)
		return
	}
	httpserver.WriteJSON(w, http.StatusCreated, result)
}

type cleanupRequest struct {
	SessionID string `json:"session_id"`
}

func (h *Handlers) cleanup(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpserver.WriteError(w, r, svcerrors.Validation("invalid request body"))
		return
	}

	result, err := h.orchestrator.Cleanup(r.Context(), req.SessionID)
	if err != nil {
		httpserver.WriteError(w, r, err)
		return
	}
	if len(result.Failures) > 0 {
		httpserver.WriteJSON(w, http.StatusInternalServerError, result)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) containers(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	containers, err := h.orchestrator.Containers(r.Context(), sessionID)
	if err != nil {
		httpserver.WriteError(w, r, err)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"containers": containers,
	})
}
