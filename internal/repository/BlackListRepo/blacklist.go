package BlackListRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BlackListRepo keeps revoked token ids in redis until the token would have
// expired on its own.
type BlackListRepo struct {
	Client redis.Cmdable
}

func NewBlackListRepo(client redis.Cmdable) *BlackListRepo {
	return &BlackListRepo{
		Client: client,
	}
}

func (r *BlackListRepo) buildKey(tokenID string) string {
	return fmt.Sprintf("blacklist:%s", tokenID)
}

// AddToken is a no-op for tokens whose remaining lifetime is not positive.
func (r *BlackListRepo) AddToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.Client.Set(ctx, r.buildKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *BlackListRepo) RemoveToken(ctx context.Context, tokenID string) error {
	return r.Client.Del(ctx, r.buildKey(tokenID)).Err()
}

func (r *BlackListRepo) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	_, err := r.Client.Get(ctx, r.buildKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return true, nil
}
