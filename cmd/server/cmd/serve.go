package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/planora-events/server/internal/api"
	"github.com/planora-events/server/internal/config"
	"github.com/planora-events/server/internal/metrics"
	"github.com/planora-events/server/internal/ratelimit"
	"github.com/planora-events/server/internal/storage"
	"github.com/planora-events/server/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (and --config if provided)
- Connect to the configured store
- Serve the API, the web client and /metrics
- Shut down gracefully on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Use the in-memory store on a different port
  STORE_DRIVER=memory server serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 5000)")
	return cmd
}

// closableCounter is a rate-limit counter owning background resources.
type closableCounter interface {
	ratelimit.Counter
	Close() error
}

func runServer(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Str("environment", cfg.Environment).Msg("starting planora server")

	metrics.Init(Version, GitCommit, BuildDate)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	backend, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("store close error")
		}
	}()
	logger.Info().Str("driver", cfg.Database.Driver).Msg("store connected")

	counter := newCounter(ctx, cfg, logger)
	defer func() { _ = counter.Close() }()

	handler := api.NewRouter(cfg, logger, api.Dependencies{
		Admins:    backend.Admins,
		Events:    backend.Events,
		Counter:   counter,
		Pinger:    backend,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	})

	return serve(ctx, logger, newServers(cfg, handler)...)
}

// newCounter picks the rate-limit backend. A Redis instance that is down at
// startup is logged but not fatal; the limiter lets requests through.
func newCounter(ctx context.Context, cfg config.Config, logger zerolog.Logger) closableCounter {
	if cfg.RateLimit.Backend != config.RateLimitBackendRedis {
		return ratelimit.NewMemoryCounter(time.Minute)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, rate limiting will fail open")
	} else {
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis rate-limit counter connected")
	}
	return ratelimit.NewRedisCounter(client)
}

func newServers(cfg config.Config, handler http.Handler) []*http.Server {
	servers := []*http.Server{{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}}
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}
	return servers
}

// serve runs every server until ctx is cancelled or one of them fails, then
// shuts them all down.
func serve(ctx context.Context, logger zerolog.Logger, servers ...*http.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, server := range servers {
		g.Go(func() error {
			logger.Info().Str("addr", server.Addr).Msg("listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", server.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", server.Addr, err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
			return err
		}
		logger.Info().Msg("server stopped")
		return nil
	})

	return g.Wait()
}
