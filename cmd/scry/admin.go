package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-review/internal/platform/database"
	"github.com/phrazzld/scry-review/internal/service/auth"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|status|version]",
		Short:     "Manage the database schema",
		Long:      "Apply pending migrations (up, the default), print their status, or print the schema version.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{database.CommandUp, database.CommandStatus, database.CommandVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := database.CommandUp
			if len(args) == 1 {
				command = args[0]
			}

			ctx := cmd.Context()
			defer c.close()
			if err := c.openDB(ctx); err != nil {
				return err
			}

			if err := database.Migrate(ctx, c.db, c.cfg.Database.Driver, command, c.logger); err != nil {
				return err
			}
			version, err := database.CurrentVersion(ctx, c.db, c.cfg.Database.Driver)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			fmt.Fprintf(c.out, "Schema version: %d\n", version)
			return nil
		},
	}
	return cmd
}

func newTokenCmd(c *cli) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		Long:  "Mint a bearer token signed with auth.jwt_secret and valid for auth.token_lifetime_minutes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jwtService, err := auth.NewJWTService(c.cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}
			token, err := jwtService.GenerateToken(cmd.Context(), subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", auth.DefaultSubject, "token subject")
	return cmd
}
