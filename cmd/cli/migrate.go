package main

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/landing-api/config"
	"github.com/akeren/landing-api/internal/log"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.NewLoggerWithJSONOutput()

			db, err := config.NewDatabase(logger, &config.DBConfig{})
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer config.CloseDatabase(db, logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := config.RunMigrations(ctx, logger, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Database migrations completed")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "maximum time to spend migrating")
	return cmd
}
