package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/planora-events/server/internal/api/envelope"
)

// Stage inspects or enriches a request before it reaches a handler. Returning
// a non-nil error stops the pipeline; a *Rejection controls the response,
// any other error becomes a 500.
type Stage func(*http.Request) (*http.Request, error)

// Rejection is a stage's refusal to let the request through.
type Rejection struct {
	Status  int
	Message string
	Header  http.Header
	Err     error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return r.Message + ": " + r.Err.Error()
	}
	return r.Message
}

func (r *Rejection) Unwrap() error { return r.Err }

type pendingHeadersKey struct{}

// AddResponseHeader queues a header for the eventual response, whether the
// request is rejected later in the pipeline or reaches the handler.
func AddResponseHeader(r *http.Request, key, value string) *http.Request {
	header, ok := r.Context().Value(pendingHeadersKey{}).(http.Header)
	if !ok {
		header = make(http.Header)
		r = r.WithContext(context.WithValue(r.Context(), pendingHeadersKey{}, header))
	}
	header.Set(key, value)
	return r
}

func pendingHeaders(r *http.Request) http.Header {
	header, _ := r.Context().Value(pendingHeadersKey{}).(http.Header)
	return header
}

// Pipeline runs stages in order in front of a handler.
type Pipeline struct {
	stages      []Stage
	development bool
}

func NewPipeline(development bool, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, development: development}
}

// Then returns a copy of the pipeline with more stages appended.
func (p *Pipeline) Then(stages ...Stage) *Pipeline {
	combined := make([]Stage, 0, len(p.stages)+len(stages))
	combined = append(combined, p.stages...)
	combined = append(combined, stages...)
	return &Pipeline{stages: combined, development: p.development}
}

func (p *Pipeline) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, stage := range p.stages {
			nextReq, err := stage(r)
			if nextReq != nil {
				r = nextReq
			}
			if err != nil {
				copyHeaders(w.Header(), pendingHeaders(r))
				p.reject(w, r, err)
				return
			}
		}
		copyHeaders(w.Header(), pendingHeaders(r))
		next.ServeHTTP(w, r)
	})
}

func (p *Pipeline) HandlerFunc(next http.HandlerFunc) http.Handler {
	return p.Handler(next)
}

func (p *Pipeline) reject(w http.ResponseWriter, r *http.Request, err error) {
	var rejection *Rejection
	if !errors.As(err, &rejection) {
		envelope.Error(w, r, http.StatusInternalServerError, "request pipeline failed", err, p.development)
		return
	}
	copyHeaders(w.Header(), rejection.Header)
	cause := rejection.Err
	if cause == nil {
		cause = errors.New(rejection.Message)
	}
	envelope.Error(w, r, rejection.Status, rejection.Message, cause, p.development)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
