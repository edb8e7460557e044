package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"file-storage-service/internal/model/user"
	"file-storage-service/pkg/logger"

	"go.uber.org/zap"
)

type principalKey struct{}

type tokenKey struct{}

// Authenticator resolves a bearer token to the caller it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.Principal, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller and the raw token in the request context.
func Authenticate(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, err := bearerToken(r)
			if err != nil {
				logger.GetLogger(ctx).Debug("unauthenticated request", zap.Error(err))
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			principal, err := auth.Authenticate(ctx, token)
			if err != nil {
				logger.GetLogger(ctx).Info("token rejected", zap.Error(err))
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, principalKey{}, principal)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			ctx = logger.WithLogger(ctx, logger.GetLogger(ctx).With(zap.String("user", principal.Name)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("authorization header is missing")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("authorization header must be a bearer token")
	}
	return strings.TrimSpace(token), nil
}

func PrincipalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey{}).(string)
	return t, ok
}
