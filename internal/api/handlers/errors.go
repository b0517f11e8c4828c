package handlers

import (
	"errors"
	"net/http"

	"github.com/planora-events/server/internal/api/envelope"
	"github.com/planora-events/server/internal/domain/admins"
	"github.com/planora-events/server/internal/domain/events"
	"github.com/planora-events/server/internal/validation"
)

const (
	msgValidationFailed   = "Validation failed"
	msgInvalidInput       = "Invalid input format"
	msgMalformedBody      = "Malformed JSON body"
	msgBodyTooLarge       = "Request body too large"
	msgDuplicateEmail     = "Email already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgEventNotFound      = "Event not found"
	msgNotAuthorized      = "Not authorized, no token provided"
	msgServerError        = "Internal server error"
)

// writeError is the single place domain errors become HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error, development bool) {
	if errs, ok := validation.AsErrors(err); ok {
		fields := make([]envelope.FieldError, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, envelope.FieldError{Field: fe.Field, Message: fe.Message})
		}
		envelope.Error(w, r, http.StatusBadRequest, msgValidationFailed, err, development, envelope.WithErrors(fields))
		return
	}

	switch {
	case errors.Is(err, errInvalidInput):
		envelope.Error(w, r, http.StatusBadRequest, msgInvalidInput, err, development)
	case errors.Is(err, errMalformedBody):
		envelope.Error(w, r, http.StatusBadRequest, msgMalformedBody, err, development)
	case errors.Is(err, errBodyTooLarge):
		envelope.Error(w, r, http.StatusRequestEntityTooLarge, msgBodyTooLarge, err, development)
	case errors.Is(err, admins.ErrDuplicateEmail):
		envelope.Error(w, r, http.StatusBadRequest, msgDuplicateEmail, err, development)
	case errors.Is(err, admins.ErrInvalidCredentials):
		envelope.Error(w, r, http.StatusBadRequest, msgInvalidCredentials, err, development)
	case errors.Is(err, events.ErrNotFound):
		envelope.Error(w, r, http.StatusNotFound, msgEventNotFound, err, development)
	case errors.Is(err, events.ErrUnauthorized):
		envelope.Error(w, r, http.StatusUnauthorized, msgNotAuthorized, err, development)
	default:
		envelope.Error(w, r, http.StatusInternalServerError, msgServerError, err, development)
	}
}

// NotFound answers unknown API routes with "Not Found - <path>".
func NotFound(development bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope.Error(w, r, http.StatusNotFound, "Not Found - "+r.URL.RequestURI(), nil, development)
	})
}
