package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/alert"
	"github.com/weathervibe/weathervibe/internal/api/middleware"
	"github.com/weathervibe/weathervibe/internal/api/response"
	"github.com/weathervibe/weathervibe/internal/chat"
	"github.com/weathervibe/weathervibe/internal/city"
	"github.com/weathervibe/weathervibe/internal/featureflags"
	"github.com/weathervibe/weathervibe/internal/validation"
	"github.com/weathervibe/weathervibe/internal/weather"
)

// writeError maps a domain error to a problem response. Anything it does not
// recognize is logged and reported as a 500 without internal detail.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.Validation(w, r, err)

	case errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, "lat must be between -90 and 90 and lon between -180 and 180", nil)
	case errors.Is(err, weather.ErrInvalidQuery):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, featureflags.ErrUnknownFlag):
		response.BadRequest(w, r, err.Error(), nil)

	case errors.Is(err, weather.ErrCityNotFound):
		response.NotFound(w, r, "City not found")
	case errors.Is(err, city.ErrCityNotFound):
		response.NotFound(w, r, "Saved city not found")
	case errors.Is(err, city.ErrCityExists):
		response.Conflict(w, r, "City is already saved")

	case errors.Is(err, weather.ErrMalformedPayload):
		logFailure(log, r, err, "weather provider returned an unusable payload")
		response.BadGateway(w, r, "The weather provider returned an unreadable response")
	case errors.Is(err, weather.ErrProviderUnavailable):
		logFailure(log, r, err, "weather provider unavailable")
		response.ServiceUnavailable(w, r, "Weather data is temporarily unavailable")
	case errors.Is(err, chat.ErrAssistantDisabled):
		response.ServiceUnavailable(w, r, "The assistant is turned off")
	case errors.Is(err, alert.ErrSendingDisabled):
		response.ServiceUnavailable(w, r, "Alert sending is turned off")
	case errors.Is(err, alert.ErrPublishFailed):
		logFailure(log, r, err, "alert hand-off failed")
		response.ServiceUnavailable(w, r, "The alert could not be handed to the notifier")

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		response.ServiceUnavailable(w, r, "The request timed out")

	default:
		logFailure(log, r, err, "unhandled error")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}

func logFailure(log zerolog.Logger, r *http.Request, err error, msg string) {
	log.Error().Err(err).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Msg(msg)
}
