package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"file-storage-service/internal/client"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "file-storage-client",
	Short:        "Command line client of the file-storage HTTP API",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", envOr("FILE_STORAGE_URL", "http://localhost:8080"), "API base url")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", os.Getenv("FILE_STORAGE_TOKEN"), "bearer token")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-command timeout")

	listCmd.Flags().String("owner", "", "list another owner's files (admin only)")
	uploadCmd.Flags().String("name", "", "stored name (default: base name of the path)")
	downloadCmd.Flags().StringP("output", "o", "", "destination file (default: stdout)")

	rootCmd.AddCommand(listCmd, infoCmd, uploadCmd, renameCmd, deleteCmd, downloadCmd, historyCmd, revokeCmd)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func newClient() (*client.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("a token is required: pass --token or set FILE_STORAGE_TOKEN")
	}
	return client.New(serverURL, token, &http.Client{Timeout: timeout}), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid file id %q: %w", s, err)
	}
	return id, nil
}

// withClient wraps commands taking an optional leading file id.
func withClient(needsID bool, run func(ctx context.Context, cmd *cobra.Command, c *client.Client, id uuid.UUID, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		var id uuid.UUID
		if needsID {
			if id, err = parseID(args[0]); err != nil {
				return err
			}
			args = args[1:]
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return run(ctx, cmd, c, id, args)
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List files",
	Args:  cobra.NoArgs,
	RunE: withClient(false, func(ctx context.Context, cmd *cobra.Command, c *client.Client, _ uuid.UUID, _ []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		files, err := c.List(ctx, owner)
		if err != nil {
			return err
		}
		return printJSON(cmd, files)
	}),
}

var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show file metadata",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(true, func(ctx context.Context, cmd *cobra.Command, c *client.Client, id uuid.UUID, _ []string) error {
		file, err := c.Get(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(cmd, file)
	}),
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a local file",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(false, func(ctx context.Context, cmd *cobra.Command, c *client.Client, _ uuid.UUID, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		name, _ := cmd.Flags().GetString("name")
		base := filepath.Base(args[0])
		file, err := c.Upload(ctx, name, base, mime.TypeByExtension(filepath.Ext(base)), f)
		if err != nil {
			return err
		}
		return printJSON(cmd, file)
	}),
}

var renameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename a file",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(true, func(ctx context.Context, cmd *cobra.Command, c *client.Client, id uuid.UUID, args []string) error {
		file, err := c.Rename(ctx, id, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, file)
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(true, func(ctx context.Context, cmd *cobra.Command, c *client.Client, id uuid.UUID, _ []string) error {
		if err := c.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
		return nil
	}),
}

var downloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download file content",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(true, func(ctx context.Context, cmd *cobra.Command, c *client.Client, id uuid.UUID, _ []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err := c.Download(ctx, id, cmd.OutOrStdout())
			return err
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if _, err := c.Download(ctx, id, f); err != nil {
			_ = f.Close()
			_ = os.Remove(output)
			return err
		}
		return f.Close()
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show the revision history of a file",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(true, func(ctx context.Context, cmd *cobra.Command, c *client.Client, id uuid.UUID, _ []string) error {
		revisions, err := c.History(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(cmd, revisions)
	}),
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke the token in use",
	Args:  cobra.NoArgs,
	RunE: withClient(false, func(ctx context.Context, cmd *cobra.Command, c *client.Client, _ uuid.UUID, _ []string) error {
		if err := c.Revoke(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "token revoked")
		return nil
	}),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
