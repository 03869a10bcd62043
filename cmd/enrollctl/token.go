package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DanielPopoola/racing-academy-payments/internal/auth"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
)

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token",
		Long: `Mint an admin bearer token signed with auth.jwt_secret.

Examples:
  enrollctl token --subject ops@academy --ttl 8h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			token, err := auth.Issue(cfg.Auth.JWTSecret, subject, cfg.Auth.AdminRole, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "who the token is issued to")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
