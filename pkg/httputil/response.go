package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/giftcard-catalog/pkg/errors"
	"github.com/utafrali/giftcard-catalog/pkg/logger"
	"github.com/utafrali/giftcard-catalog/pkg/validator"
)

// MessageInvalidBody is returned when a request body is not well-formed JSON.
const MessageInvalidBody = "Invalid request body"

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// Free text is written verbatim, so HTML escaping is disabled.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"` + apperrors.MessageInternal + `"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if the write fails.
	_, _ = w.Write(buf.Bytes())
}

// WriteError writes an error response based on the error type.
// AppErrors below 500 expose their message. Everything else is logged and
// answered with the generic internal error body. It prefers the request-scoped
// logger from context (set by the RequestLogger middleware) over the fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		WriteJSON(w, appErr.Status, ErrorResponse{Error: appErr.Message})
		return
	}

	status := apperrors.HTTPStatus(err)
	switch status {
	case http.StatusNotFound, http.StatusBadRequest:
		WriteJSON(w, status, ErrorResponse{Error: err.Error()})
		return
	}

	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: apperrors.MessageInternal})
}

// WriteValidationError writes a 400 response. ValidationErrors produce the
// field-level details map; any other error is treated as a malformed body.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteDetails(w, valErr.Fields())
		return
	}
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: MessageInvalidBody})
}

// WriteDetails writes a 400 validation failure with the given field messages.
func WriteDetails(w http.ResponseWriter, details map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   apperrors.MessageValidationFailed,
		Details: details,
	})
}

// ParseID parses a positive integer path parameter. If invalid, it writes a
// 400 validation response and returns false, signaling the caller to return early.
func ParseID(w http.ResponseWriter, param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id < 1 {
		WriteDetails(w, map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return id, true
}
