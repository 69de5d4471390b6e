package web

// errors.go turns handler errors into responses.
//
// Every failure is logged with its support code and request ID, then sent to
// the client as {"error":{"status":N,"message":"..."}}. Only the message from
// core.MapError reaches the client; paths and causes stay in the log.

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/arturomorarioja/csv-parser-api/internal/core"
	"github.com/arturomorarioja/csv-parser-api/internal/logging"
	"github.com/arturomorarioja/csv-parser-api/internal/reporting"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail repeats the HTTP status next to the client message.
type ErrorDetail struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case core.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// logError records err and forwards unexpected failures to Sentry. It
// returns the status and user message the caller should render.
func logError(r *http.Request, err error) (int, core.UserMessage) {
	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.WithFields(r.Context(),
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	)
	if status >= http.StatusInternalServerError {
		logger.Error("request error")
	} else {
		logger.Warn("request error")
	}

	if core.KindOf(err) == nil && !core.IsContextError(err) {
		reporting.CaptureError(r, err, map[string]string{
			"code":       msg.Code,
			"request_id": middleware.GetReqID(r.Context()),
		})
	}
	return status, msg
}

// respondError logs err and writes the JSON error envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) int {
	status, msg := logError(r, err)
	writeErrorEnvelope(w, status, msg.Message)
	return status
}

// writeErrorEnvelope writes the JSON error body with status.
func writeErrorEnvelope(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Status: status, Message: message}})
}
