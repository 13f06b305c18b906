package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/GraceHermine/GenerateurDocument/internal/auth"
	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

func tokenCmd() *cobra.Command {
	var userID, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("--user: %w", err)
			}
			if r := domain.UserRole(role); r != domain.UserRoleUser && !r.IsAdmin() {
				return fmt.Errorf("--role must be user or admin (got %q)", role)
			}

			var section struct {
				Auth config.AuthConfig `yaml:"auth"`
			}
			if err := loadPartial(&section); err != nil {
				return err
			}

			jwt := auth.NewJWTManager(section.Auth.JWTSecret, section.Auth.JWTIssuer, section.Auth.AccessTokenTTL)
			token, err := jwt.GenerateAccessToken(id, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (subject)")
	cmd.Flags().StringVar(&role, "role", "user", "user or admin")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
