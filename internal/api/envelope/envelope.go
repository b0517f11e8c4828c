// Package envelope writes the {success, ...} JSON bodies returned by every
// API route.
package envelope

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json; charset=utf-8"

// GenericServerMessage replaces 5xx messages outside development.
const GenericServerMessage = "An error occurred while processing your request"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Failure struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}

type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Option func(*Failure)

func WithErrors(errs []FieldError) Option {
	return func(f *Failure) {
		f.Errors = errs
	}
}

// WithStack sets the trace shown in development, e.g. a recovered panic stack.
func WithStack(stack string) Option {
	return func(f *Failure) {
		f.Stack = stack
	}
}

// JSON writes payload with status.
func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"` + GenericServerMessage + `"}`))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func Data(w http.ResponseWriter, status int, data any) {
	JSON(w, status, DataResponse{Success: true, Data: data})
}

func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageResponse{Success: true, Message: message})
}

// Error writes a failure body and logs err with the request logger. For 5xx
// the client sees GenericServerMessage unless development is set, in which
// case the error text and its %+v trace are included.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, err error, development bool, opts ...Option) {
	failure := Failure{Success: false, Message: message}
	for _, opt := range opts {
		opt(&failure)
	}

	if status >= http.StatusInternalServerError {
		if development {
			if err != nil {
				failure.Message = err.Error()
				if failure.Stack == "" {
					failure.Stack = fmt.Sprintf("%+v", err)
				}
			}
		} else {
			failure.Message = GenericServerMessage
			failure.Stack = ""
		}
	} else if !development {
		failure.Stack = ""
	}
	if failure.Message == "" {
		failure.Message = http.StatusText(status)
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		} else {
			event = logger.Warn()
		}
		event.Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	JSON(w, status, failure)
}
