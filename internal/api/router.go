package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/planora-events/server/internal/api/envelope"
	"github.com/planora-events/server/internal/api/handlers"
	"github.com/planora-events/server/internal/api/middleware"
	"github.com/planora-events/server/internal/audit"
	"github.com/planora-events/server/internal/auth"
	"github.com/planora-events/server/internal/config"
	"github.com/planora-events/server/internal/domain/admins"
	"github.com/planora-events/server/internal/domain/events"
	"github.com/planora-events/server/internal/metrics"
	"github.com/planora-events/server/internal/ratelimit"
	"github.com/planora-events/server/web"
)

// Dependencies are the stateful collaborators the router needs. Counter is
// shared by every rate-limit policy; Pinger backs /readyz.
type Dependencies struct {
	Admins  admins.Repository
	Events  events.Repository
	Counter ratelimit.Counter
	Pinger  handlers.Pinger

	// Version metadata for /version, usually injected with ldflags.
	Version   string
	GitCommit string
	BuildDate string
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Dependencies) http.Handler {
	development := cfg.IsDevelopment()
	recorder := metrics.Recorder{}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)

	adminService := admins.NewService(deps.Admins, hasher, tokens, logger)
	eventService := events.NewService(deps.Events, logger)

	auditLog := audit.NewLogger(logger)
	adminHandler := handlers.NewAdminAuthHandler(adminService, recorder, auditLog, development)
	eventsHandler := handlers.NewEventsHandler(eventService, auditLog, development)

	policies := ratelimit.NewPolicies(cfg.RateLimit)
	limiter := middleware.NewRateLimiter(ratelimit.NewLimiter(deps.Counter), cfg.RateLimit.TrustedProxyCIDRs, recorder, logger)

	public := middleware.NewPipeline(development, limiter.Stage(policies.API))
	login := public.Then(limiter.Stage(policies.Login))
	protected := public.Then(limiter.Stage(policies.Write), middleware.BearerAuth(tokens, recorder))

	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, middleware.RecordRoute(h))
	}

	handle("/healthz", handlers.Healthz())
	handle("/readyz", handlers.Readyz(deps.Pinger))
	handle("/version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	if cfg.Server.MetricsAddr == "" {
		handle("/metrics", metrics.Handler())
	}

	handle("/api/admin/signup", methodMux(development, map[string]http.Handler{
		http.MethodPost: public.HandlerFunc(adminHandler.Signup),
	}))
	handle("/api/admin/login", methodMux(development, map[string]http.Handler{
		http.MethodPost: login.HandlerFunc(adminHandler.Login),
	}))
	handle("/api/events", methodMux(development, map[string]http.Handler{
		http.MethodGet:  public.HandlerFunc(eventsHandler.List),
		http.MethodPost: protected.HandlerFunc(eventsHandler.Create),
	}))
	handle("/api/events/{id}", methodMux(development, map[string]http.Handler{
		http.MethodGet:    public.HandlerFunc(eventsHandler.Get),
		http.MethodPut:    protected.HandlerFunc(eventsHandler.Update),
		http.MethodDelete: protected.HandlerFunc(eventsHandler.Delete),
	}))
	handle("/api/", public.Handler(handlers.NotFound(development)))
	handle("/", web.Handler())

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(middleware.RoutePattern)(handler)
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(cfg.Environment == config.EnvProduction)(handler)
	handler = middleware.Recovery(development, recorder)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return middleware.TrackRoute(handler)
}

func methodMux(development bool, handlers map[string]http.Handler) http.Handler {
	allow := allowedMethods(handlers)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allow)
		envelope.Error(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", nil, development)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
