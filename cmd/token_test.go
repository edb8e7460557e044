package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"

	"file-storage-service/internal/repository/BlackListRepo"
	"file-storage-service/internal/service/authService"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "cli-secret"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--env"))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func TestTokenAndReinstateCommands(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	t.Setenv("JWT_TOKEN", testSecret)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", host)
	t.Setenv("REDIS_PORT", port)

	token, err := execute(t, "token", "alice", "--role", "moderator")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	tokens := authService.New(testSecret, BlackListRepo.NewBlackListRepo(client))

	ctx := context.Background()
	principal, err := tokens.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Name)

	require.NoError(t, tokens.Revoke(ctx, token))
	_, err = tokens.Authenticate(ctx, token)
	require.ErrorIs(t, err, authService.ErrRevokedToken)

	_, err = execute(t, "reinstate", token)
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())

	_, err = tokens.Authenticate(ctx, token)
	assert.NoError(t, err)
}

func TestReinstate_RedisDisabled(t *testing.T) {
	t.Setenv("JWT_TOKEN", testSecret)
	t.Setenv("REDIS_ENABLED", "false")

	_, err := execute(t, "reinstate", "whatever")
	assert.ErrorIs(t, err, authService.ErrRevocationDisabled)
}

func TestToken_UnknownRole(t *testing.T) {
	t.Setenv("JWT_TOKEN", testSecret)

	_, err := execute(t, "token", "alice", "--role", "superuser")
	assert.Error(t, err)
}
