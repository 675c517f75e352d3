package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kurssite/internal/config"
	"kurssite/internal/database"
	"kurssite/internal/database/migration"
	"kurssite/internal/logging"
	"kurssite/internal/view"
)

// newRootCmd builds the site CLI. Configuration comes from the environment
// (.env is auto-loaded); out receives command output.
func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "site",
		Short:         "AI Automations Kurs website",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newHeaderCmd(),
	)
	return root
}

func newHeaderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header",
		Short: "Print the site header markup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := view.Header().Render(cmd.Context(), cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("render header: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout())
			return err
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Location())
			defer logger.Sync()

			db, err := database.NewPostgres(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			return migration.EnsureMigrated(cmd.Context(), db, logger, cfg.Database.Host)
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the website",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := config.Load()
			logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Location())
			defer logger.Sync()

			if err := serve(ctx, cfg, logger); err != nil {
				logger.Error("server_stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
