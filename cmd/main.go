package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"file-storage-service/internal/config"
	"file-storage-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	envOnly    bool
)

var rootCmd = &cobra.Command{
	Use:   "file-storage",
	Short: "Per-user file storage over an S3-compatible object store",
	Long: `file-storage keeps user files in an object store and their metadata and
revision history in PostgreSQL. Every request is authenticated with a bearer token.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "env file to load")
	rootCmd.PersistentFlags().BoolVar(&envOnly, "env", false, "read configuration from the environment only")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd, reinstateCmd)
}

func loadConfig() (*config.Config, error) {
	if envOnly {
		return config.LoadEnv()
	}
	return config.Load(configPath)
}

func main() {
	ctx, err := logger.New(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.GetLogger(ctx).Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.GetLogger(ctx).Fatal("command failed", zap.Error(err))
	}
}
