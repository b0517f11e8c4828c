package middleware

import (
	"errors"
	"net/http"

	"github.com/planora-events/server/internal/auth"
)

const (
	msgNoToken     = "Not authorized, no token provided"
	msgTokenFailed = "Not authorized, token failed or expired"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AuthRecorder observes authentication outcomes.
type AuthRecorder interface {
	RecordAuth(kind, result string)
}

// BearerAuth requires a valid Authorization: Bearer token and attaches the
// admin identity to the request context. It never issues tokens.
func BearerAuth(validator TokenValidator, recorder AuthRecorder) Stage {
	return func(r *http.Request) (*http.Request, error) {
		token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			record(recorder, "missing")
			return nil, &Rejection{Status: http.StatusUnauthorized, Message: msgNoToken, Err: err}
		}

		claims, err := validator.Validate(token)
		if err != nil {
			result := "invalid"
			if errors.Is(err, auth.ErrExpiredToken) {
				result = "expired"
			}
			record(recorder, result)
			return nil, &Rejection{Status: http.StatusUnauthorized, Message: msgTokenFailed, Err: err}
		}

		record(recorder, "success")
		return r.WithContext(auth.ContextWithIdentity(r.Context(), claims.Identity())), nil
	}
}

func record(recorder AuthRecorder, result string) {
	if recorder != nil {
		recorder.RecordAuth("token", result)
	}
}
