package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ead/authuser/internal/bootstrap"
	"github.com/ead/authuser/internal/config"
	"github.com/ead/authuser/internal/service"
	"github.com/spf13/cobra"
)

// configLoader returns validated configuration
type configLoader func() (*config.Config, error)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newRootCmd(load configLoader) *cobra.Command {
	var (
		backend string
		timeout time.Duration
		verbose bool
	)

	root := &cobra.Command{
		Use:           "authuserctl",
		Short:         "Administer the authuser user store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&backend, "backend", "", "override STORE_BACKEND (surreal, postgres, memory)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the command")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// resolve loads configuration and applies the --backend override
	resolve := func() (*config.Config, error) {
		if backend != "" {
			if err := os.Setenv("STORE_BACKEND", backend); err != nil {
				return nil, err
			}
		}
		return load()
	}
	withDeadline := func(cmd *cobra.Command) (context.Context, context.CancelFunc) {
		return context.WithTimeout(cmd.Context(), timeout)
	}

	root.AddCommand(
		newMigrateCmd(resolve, withDeadline),
		newSeedCmd(resolve, withDeadline),
	)
	return root
}

func newMigrateCmd(resolve configLoader, withDeadline func(*cobra.Command) (context.Context, context.CancelFunc)) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the user store schema",
		Long: `Applies embedded goose migrations for PostgreSQL or defines the
SurrealDB user table, fields and indexes. --down rolls back the most recent
PostgreSQL migration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve()
			if err != nil {
				return err
			}
			ctx, cancel := withDeadline(cmd)
			defer cancel()

			res, err := bootstrap.Migrate(ctx, cfg, down)
			if err != nil {
				return fmt.Errorf("migrate %s: %w", cfg.Store.Backend, err)
			}

			out := cmd.OutOrStdout()
			switch cfg.Store.Backend {
			case config.BackendPostgres:
				fmt.Fprintf(out, "postgres schema at version %d\n", res.Version)
			case config.BackendMemory:
				fmt.Fprintln(out, "memory backend has no schema, nothing to do")
			default:
				fmt.Fprintf(out, "%s schema defined\n", res.Backend)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration (postgres only)")
	return cmd
}

func newSeedCmd(resolve configLoader, withDeadline func(*cobra.Command) (context.Context, context.CancelFunc)) *cobra.Command {
	var (
		req        service.SeedUsersRequest
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve()
			if err != nil {
				return err
			}
			if cfg.Store.Backend == config.BackendMemory {
				slog.Warn("seeding the memory backend only lasts for this command")
			}

			ctx, cancel := withDeadline(cmd)
			defer cancel()

			stores, err := bootstrap.OpenUserStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			users := service.NewUserService(service.UserServiceConfig{Store: stores.Users})
			res, err := service.NewSeederService(users).SeedUsers(ctx, req)
			if err != nil {
				return fmt.Errorf("seed users: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintf(out, "created %d users in %dms\n", res.Created, res.Duration)
			for _, id := range res.IDs {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&req.Count, "count", "n", 10, "number of users to create (1-1000)")
	cmd.Flags().StringVar(&req.Prefix, "prefix", "seed_", "user name and email prefix")
	cmd.Flags().StringVar(&req.Password, "password", "", "password shared by seeded users (default testpass123)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	return cmd
}
