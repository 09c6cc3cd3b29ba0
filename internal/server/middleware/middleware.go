// Package middleware provides the HTTP middleware chain for the
// simlane server: request correlation, panic recovery, and admission
// rate limiting.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/matada/simlane/internal/errors"
	"github.com/matada/simlane/internal/observability"
)

// RequestID ensures every request carries an X-Request-ID header,
// generating one when absent. The id is echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// Recovery converts handler panics into a 500 error envelope instead of
// tearing down the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				requestID := r.Header.Get("X-Request-ID")
				observability.Logger.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestID))
				apperrors.WriteError(w, http.StatusInternalServerError,
					apperrors.CodeInternal, fmt.Sprintf("panic: %v", rec), requestID)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimit bounds request throughput with a token bucket. A nil
// limiter disables limiting.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				apperrors.WriteError(w, http.StatusTooManyRequests,
					apperrors.CodeTooManyRequests, "request rate limit exceeded",
					r.Header.Get("X-Request-ID"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
