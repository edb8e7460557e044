package main

import (
	"fmt"
	"time"

	"file-storage-service/internal/model/user"
	"file-storage-service/internal/repository/BlackListRepo"
	"file-storage-service/internal/service/authService"
	"file-storage-service/pkg/database/redis"
	"file-storage-service/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue a bearer token signed with the configured secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		role, ok := user.ParseRole(tokenRole)
		if !ok {
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		ttl := tokenTTL
		if ttl == 0 {
			ttl = cfg.TokenTTL
		}

		// Issuing never consults the blacklist.
		token, err := authService.New(cfg.JWTSecret, nil).IssueToken(args[0], role, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var reinstateCmd = &cobra.Command{
	Use:   "reinstate <token>",
	Short: "Lift the revocation of a bearer token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Redis.Enabled {
			return authService.ErrRevocationDisabled
		}
		ctx := cmd.Context()
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		tokens := authService.New(cfg.JWTSecret, BlackListRepo.NewBlackListRepo(client))
		if err := tokens.Reinstate(ctx, args[0]); err != nil {
			return err
		}
		logger.GetLogger(ctx).Info("token reinstated")
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(user.RoleUser), "role claim: admin, moderator or user")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default JWT_TTL)")
}
