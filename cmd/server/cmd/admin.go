package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/planora-events/server/internal/auth"
	"github.com/planora-events/server/internal/config"
	"github.com/planora-events/server/internal/domain/admins"
	"github.com/planora-events/server/internal/storage"
	"github.com/planora-events/server/internal/validation"
)

func newAdminCommand() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	admin.AddCommand(newAdminCreateCommand())
	return admin
}

type adminCreateOptions struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func newAdminCreateCommand() *cobra.Command {
	var opts adminCreateOptions
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		Long: `Create an admin account in the configured store, applying the same
validation as the signup endpoint.

Example:
  server admin create --first-name Ada --last-name Lovelace \
    --email ada@example.com --password 'Sup3r$ecret'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return createAdmin(ctx, cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&opts.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password")
	for _, name := range []string{"first-name", "last-name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func createAdmin(ctx context.Context, cfg config.Config, opts adminCreateOptions, out io.Writer) error {
	backend, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close(context.Background()) }()

	logger := config.NewLogger(cfg.Logging)
	service := admins.NewService(
		backend.Admins,
		auth.NewHasher(cfg.Auth.BcryptCost),
		auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer),
		logger,
	)

	view, err := service.Signup(ctx, admins.SignupInput{
		FirstName: opts.FirstName,
		LastName:  opts.LastName,
		Email:     opts.Email,
		Password:  opts.Password,
	})
	if err != nil {
		if errs, ok := validation.AsErrors(err); ok {
			for _, fe := range errs {
				fmt.Fprintf(out, "  %s: %s\n", fe.Field, fe.Message)
			}
			return errors.New("invalid admin details")
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(out, "created admin %s <%s>\n", view.ID, view.Email)
	return nil
}
