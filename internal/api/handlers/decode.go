package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	errInvalidInput  = errors.New("invalid input format")
	errMalformedBody = errors.New("malformed JSON body")
	errBodyTooLarge  = errors.New("request body too large")
)

// decodeJSON reads one JSON object into dst. A field of the wrong JSON type
// (for example a number or object where a string is expected) is reported as
// errInvalidInput so query-shaped values never reach the services.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errMalformedBody
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return errBodyTooLarge
	case errors.As(err, &typeErr):
		return errInvalidInput
	default:
		return errMalformedBody
	}
}
