package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clinicflow/practice/pkg/config"
	"github.com/clinicflow/practice/pkg/jwt"
)

// newTokenCommand issues an access token for local testing.
func newTokenCommand() *cobra.Command {
	var userID, professionalID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user and professional",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			pid, err := uuid.Parse(professionalID)
			if err != nil {
				return fmt.Errorf("invalid --professional: %w", err)
			}

			var cfg jwt.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}
			svc, err := jwt.New(cfg)
			if err != nil {
				return err
			}

			token, err := svc.Issue(uid, pid)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&professionalID, "professional", "", "professional id")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("professional")

	return cmd
}
