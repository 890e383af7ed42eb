package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/api/models"
)

// Recovery returns a middleware that turns a handler panic into a 500
// problem. The log line carries the matched route so a crashing endpoint
// shows up as one series, not one per city ID. If the handler had already
// started the response nothing more is written.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)

			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if e, ok := err.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(err)
				}

				requestID := GetRequestID(r.Context())
				event := log.Error().
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("route", routePattern(r)).
					Interface("error", err).
					Str("stack", string(debug.Stack()))
				if userID := heldUserID(r.Context()); userID != "" {
					event = event.Str("user_id", userID)
				}
				event.Bool("response_started", rec.wroteHeader).Msg("panic recovered")

				if rec.wroteHeader {
					return
				}
				problem := models.NewInternalError(requestID, "an unexpected error occurred")
				problem.Instance = r.URL.Path
				problem.Write(w)
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
