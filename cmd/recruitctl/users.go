package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-recruiting-platform/config"
	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/repository/document"
	"go-recruiting-platform/internal/store/backend"
	"go-recruiting-platform/pkg/auth"

	"github.com/spf13/cobra"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromote,
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token <email>",
	Short: "Print an access and refresh token pair for an existing account",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueToken,
}

func init() {
	rootCmd.AddCommand(promoteCmd, issueTokenCmd)
}

// withUsers opens the configured store for the duration of fn.
func withUsers(ctx context.Context, fn func(cfg *config.Config, users domain.UserRepository) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(cfg, document.NewUserRepository(st))
}

func lookupUser(ctx context.Context, users domain.UserRepository, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", email, err)
	}
	return user, nil
}

func runPromote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withUsers(ctx, func(_ *config.Config, users domain.UserRepository) error {
		user, err := lookupUser(ctx, users, args[0])
		if err != nil {
			return err
		}
		if err := users.SetRole(ctx, user.ID, domain.RoleAdmin, time.Now().UTC()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", user.Email)
		return nil
	})
}

func runIssueToken(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withUsers(ctx, func(cfg *config.Config, users domain.UserRepository) error {
		user, err := lookupUser(ctx, users, args[0])
		if err != nil {
			return err
		}
		tokens, err := auth.NewTokenService(auth.Config{
			AccessSecret:  cfg.JWTSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.AccessTokenTTL,
			RefreshTTL:    cfg.RefreshTokenTTL,
		})
		if err != nil {
			return err
		}
		pair, err := tokens.Issue(user.Identity())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "access:  %s\n", pair.AccessToken)
		fmt.Fprintf(out, "refresh: %s\n", pair.RefreshToken)
		return nil
	})
}
