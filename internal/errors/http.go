// Package errors adapts domain errors to HTTP error responses.
//
// Every error leaving the HTTP surface is rendered as a JSON envelope
// with a stable machine-readable code, a human-readable message, and
// the request correlation id.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/matada/simlane/internal/observability"
	"github.com/matada/simlane/pkg/seed"
	"github.com/matada/simlane/pkg/simulation"
)

// Error codes for the HTTP surface.
const (
	CodeSimulationDisabled = "SIMULATION_DISABLED"
	CodePolicyViolation    = "POLICY_VIOLATION"
	CodeNotFound           = "NOT_FOUND"
	CodeJobFailed          = "JOB_FAILED"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternal           = "INTERNAL_ERROR"
)

// HTTPErrorDetail is the error body of an HTTPErrorResponse.
type HTTPErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// HTTPErrorResponse is the JSON envelope for every HTTP error.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// WriteError renders an error response with the given status and code.
func WriteError(w http.ResponseWriter, status int, code, message, requestID string) {
	// The canonical error record also goes to the structured log.
	envelope := gferrors.NewErrorEnvelope(code, message).WithCorrelationID(requestID)
	observability.Logger.Debug("http error response",
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("request_id", requestID),
		zap.Any("envelope", envelope))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{
		Error: HTTPErrorDetail{Code: code, Message: message, RequestID: requestID},
	})
}

// RespondWithError maps a domain error to its HTTP rendering.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := r.Header.Get("X-Request-ID")

	var policyErr *simulation.PolicyViolationError
	var failedErr *simulation.JobFailedError

	switch {
	case errors.Is(err, simulation.ErrSimulationDisabled):
		WriteError(w, http.StatusServiceUnavailable, CodeSimulationDisabled, err.Error(), requestID)
	case errors.As(err, &policyErr):
		WriteError(w, http.StatusForbidden, CodePolicyViolation, policyErr.Error(), requestID)
	case errors.Is(err, simulation.ErrUnknownJob):
		WriteError(w, http.StatusNotFound, CodeNotFound, err.Error(), requestID)
	case errors.As(err, &failedErr):
		WriteError(w, http.StatusInternalServerError, CodeJobFailed, failedErr.Error(), requestID)
	case errors.Is(err, seed.ErrValidationFailed):
		WriteError(w, http.StatusBadRequest, CodeValidationError, err.Error(), requestID)
	default:
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), requestID)
	}
}
