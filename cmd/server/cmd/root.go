package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planora-events/server/internal/config"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Planora server - event management API and web client",
		Long: `Planora server hosts the event management REST API and the embedded
single-page client.

The server supports:
- Admin signup and login with bearer tokens
- Public event listing and admin-only event management
- Per-client rate limiting (in-process or shared through Redis)
- MongoDB or in-memory storage`,
		SilenceUsage: true,
		// No subcommand means serve.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (optional, env vars win)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())
	root.AddCommand(newHealthcheckCommand())
	root.AddCommand(newAdminCommand())
	return root
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig applies the global flags on top of config.LoadFile.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}
