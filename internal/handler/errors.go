package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/internal/document"
	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/geocode"
)

// ErrorResponse is the body of every non-2xx response:
// {"error":{"code":"...","message":"..."}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeNotFound        = "not_found"
	codeValidation      = "validation_error"
	codeConflict        = "conflict"
	codePayloadTooLarge = "payload_too_large"
	codeGeocodingFailed = "geocoding_failed"
	codeInternal        = "internal_error"
)

// writeError maps err onto a status code and error body. Geocoding provider
// failures become 502. Unexpected errors are logged and reported as 500
// without leaking their text.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(codeNotFound, unwrapMessage(err)))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(codeValidation, unwrapMessage(err)))
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(codeConflict, unwrapMessage(err)))
	case errors.Is(err, document.ErrInvalidDocument):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(codeValidation, unwrapMessage(err)))
	case errors.Is(err, geocode.ErrNoResult):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(codeValidation, "no geocoding result for query"))
	case errors.Is(err, geocode.ErrUnavailable):
		writeJSON(w, http.StatusBadGateway, errorBody(codeGeocodingFailed, "geocoding provider failed"))
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(codePayloadTooLarge, "request body too large"))
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorBody(codeInternal, "internal server error"))
	}
}

// requestError reports a request rejected before reaching the service layer
// (e.g. missing or malformed body).
func (s *Server) requestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody(codeValidation, message))
}

// bodyError reports a request body that could not be read or decoded.
func (s *Server) bodyError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, r, err)
		return
	}
	s.requestError(w, "invalid request body: "+err.Error())
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// unwrapMessage extracts the human-readable part from a wrapped error.
// e.g. "service.PlanService.SetDates: validation error: end date is before
// start date" → "end date is before start date"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "service.") {
		if i := strings.Index(msg, ": "); i >= 0 {
			msg = msg[i+2:]
		}
	}
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrConflict} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the status line is already sent; nothing useful to do.
	json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
