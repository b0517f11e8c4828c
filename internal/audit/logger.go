// Package audit records admin actions as structured log lines, separate from
// request logs so they can be routed and retained on their own.
package audit

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is one audited action.
type Entry struct {
	Action       string
	AdminID      string
	ResourceType string
	ResourceID   string
	Status       string
	Details      map[string]string
}

// Logger writes entries with an "audit" marker field.
type Logger struct {
	output zerolog.Logger
	now    func() time.Time
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		output: logger.With().Bool("audit", true).Logger(),
		now:    time.Now,
	}
}

// Log writes entry. A nil Logger discards it.
func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	l.write(l.output.Info(), entry, "")
}

// LogFromRequest logs entry with the caller's address. When the request
// carries a scoped logger its fields (request_id) are kept.
func (l *Logger) LogFromRequest(r *http.Request, entry Entry) {
	if l == nil {
		return
	}
	event := l.output.Info()
	if scoped := zerolog.Ctx(r.Context()); scoped.GetLevel() != zerolog.Disabled {
		event = scoped.Info().Bool("audit", true)
	}
	l.write(event, entry, remoteIP(r))
}

func (l *Logger) write(event *zerolog.Event, entry Entry, ip string) {
	status := entry.Status
	if status == "" {
		status = StatusSuccess
	}
	event = event.
		Time("at", l.now().UTC()).
		Str("action", entry.Action).
		Str("status", status)
	if entry.AdminID != "" {
		event = event.Str("admin_id", entry.AdminID)
	}
	if entry.ResourceType != "" {
		event = event.Str("resource_type", entry.ResourceType).Str("resource_id", entry.ResourceID)
	}
	if ip != "" {
		event = event.Str("ip_address", ip)
	}
	if len(entry.Details) > 0 {
		dict := zerolog.Dict()
		for k, v := range entry.Details {
			dict = dict.Str(k, v)
		}
		event = event.Dict("details", dict)
	}
	event.Msg("admin action")
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
