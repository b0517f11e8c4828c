package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/planora-events/server/internal/api/envelope"
)

// PanicRecorder counts recovered panics.
type PanicRecorder interface {
	RecordPanic()
}

// Recovery turns a panic in a handler into a 500 envelope. The stack is
// logged and, in development, returned to the client.
func Recovery(development bool, recorder PanicRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				stack := string(debug.Stack())
				if recorder != nil {
					recorder.RecordPanic()
				}
				zerolog.Ctx(r.Context()).Error().
					Str("panic", fmt.Sprint(rec)).
					Str("stack", stack).
					Msg("recovered from panic")

				envelope.Error(w, r, http.StatusInternalServerError, "internal server error",
					fmt.Errorf("panic: %v", rec), development, envelope.WithStack(stack))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
