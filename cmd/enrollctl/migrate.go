package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DanielPopoola/racing-academy-payments/db/migrations"
)

func migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		Long: `Apply the embedded database schema.

Examples:
  enrollctl migrate
  enrollctl migrate --down`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := loadEnv(ctx)
			if err != nil {
				return err
			}
			defer e.db.Close()

			run := migrations.Up
			if down {
				run = migrations.Down
			}
			applied, err := run(ctx, e.db.Pool)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "drop every table instead of creating them")
	return cmd
}
