package authHandler

import (
	"context"
	"net/http"

	"file-storage-service/pkg/logger"
	"file-storage-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

type AuthHandler struct {
	tokens Revoker
}

func New(tokens Revoker) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/tokens/revoke", h.Revoke)
}

// Revoke blacklists the bearer token the request was made with.
func (h *AuthHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	if err := h.tokens.Revoke(r.Context(), token); err != nil {
		logger.GetLogger(r.Context()).Error("revoke failed", zap.Error(err))
		http.Error(w, "revoke failed", http.StatusInternalServerError)
		return
	}
	logger.GetLogger(r.Context()).Info("token revoked")
	w.WriteHeader(http.StatusNoContent)
}
