// Package handlers implements the HTTP handlers for the simlane server.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/matada/simlane/internal/errors"
	"github.com/matada/simlane/pkg/seed"
	"github.com/matada/simlane/pkg/simulation"
)

// SimulationHandler exposes the facade over HTTP.
type SimulationHandler struct {
	facade *simulation.Facade
}

// NewSimulationHandler creates the handler for a facade.
func NewSimulationHandler(f *simulation.Facade) *SimulationHandler {
	return &SimulationHandler{facade: f}
}

// scheduleResponse is the body returned by Schedule.
type scheduleResponse struct {
	JobID string `json:"job_id"`
}

// Schedule handles POST /v1/simulations.
//
// The body is a generic seed payload; it is schema-validated and
// decoded before the facade sees it.
func (h *SimulationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperrors.WriteError(w, http.StatusBadRequest, apperrors.CodeValidationError,
			"request body is not valid JSON", r.Header.Get("X-Request-ID"))
		return
	}

	sd, err := seed.FromMap(payload)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	jobID, err := h.facade.Schedule(sd)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, scheduleResponse{JobID: jobID})
}

// Status handles GET /v1/simulations/{jobID}.
func (h *SimulationHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	status, err := h.facade.Status(jobID)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Collect handles GET /v1/simulations/{jobID}/result.
//
// The wait is bounded by the request context: a client disconnect or
// server timeout cancels the wait rather than blocking forever.
func (h *SimulationHandler) Collect(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	result, err := h.facade.Collect(r.Context(), jobID)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
