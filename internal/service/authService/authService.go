package authService

import (
	"context"
	"errors"
	"fmt"
	"time"

	"file-storage-service/internal/model/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 3 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token revoked")

	ErrRevocationDisabled = errors.New("token revocation is disabled")
)

// Blacklist stores ids of revoked tokens.
type Blacklist interface {
	AddToken(ctx context.Context, tokenID string, ttl time.Duration) error
	RemoveToken(ctx context.Context, tokenID string) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	jwtSecretKey  string
	blacklistRepo Blacklist
}

// New returns a token service. blacklist may be nil, in which case tokens
// cannot be revoked before they expire.
func New(jwtSecret string, blacklist Blacklist) *AuthService {
	return &AuthService{jwtSecretKey: jwtSecret, blacklistRepo: blacklist}
}

// IssueToken signs an HS256 bearer token for subject with the given role.
func (s *AuthService) IssueToken(subject string, role user.Role, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("empty subject")
	}
	if _, ok := user.ParseRole(string(role)); !ok {
		return "", fmt.Errorf("unknown role %q", role)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(s.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenStr, nil
}

func (s *AuthService) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate verifies token and returns the caller it was issued to.
func (s *AuthService) Authenticate(ctx context.Context, token string) (user.Principal, error) {
	claims, err := s.parse(token)
	if err != nil {
		return user.Principal{}, err
	}
	role, ok := user.ParseRole(claims.Role)
	if !ok {
		return user.Principal{}, ErrInvalidToken
	}

	if s.blacklistRepo != nil && claims.ID != "" {
		blacklisted, err := s.blacklistRepo.IsTokenBlacklisted(ctx, claims.ID)
		if err != nil {
			return user.Principal{}, fmt.Errorf("failed to check token: %w", err)
		}
		if blacklisted {
			return user.Principal{}, ErrRevokedToken
		}
	}

	return user.Principal{Name: claims.Subject, Role: role}, nil
}

// Revoke blacklists token for the rest of its lifetime.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	if s.blacklistRepo == nil {
		return ErrRevocationDisabled
	}
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return ErrInvalidToken
	}
	if err := s.blacklistRepo.AddToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Reinstate lifts the revocation of token. Reinstating a token that was never
// revoked succeeds; an expired token is rejected.
func (s *AuthService) Reinstate(ctx context.Context, token string) error {
	if s.blacklistRepo == nil {
		return ErrRevocationDisabled
	}
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return ErrInvalidToken
	}
	if err := s.blacklistRepo.RemoveToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to reinstate token: %w", err)
	}
	return nil
}
