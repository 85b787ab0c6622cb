package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/nkiryanov/tripplanner/internal/apperrors"
	"github.com/nkiryanov/tripplanner/internal/repository"
)

const (
	refreshKeyPrefix   = "RT:"
	blacklistKeyPrefix = "BL:"
	blacklistMarker    = "logout"
)

// Ledger keeps the current refresh token per subject and blacklisted access tokens
//
//	RT:<subject>     -> refresh token, ttl = refresh token lifetime
//	BL:<accessToken> -> "logout", ttl = remaining access token lifetime
//
// Nothing is deleted from the blacklist explicitly, records just expire
type Ledger struct {
	client goredis.Cmdable
}

func NewLedger(client goredis.Cmdable) *Ledger {
	return &Ledger{client: client}
}

var _ repository.RevocationLedger = (*Ledger)(nil)

func (l *Ledger) PutRefresh(ctx context.Context, subject string, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("refresh token ttl must be positive, got %s", ttl)
	}

	err := l.client.Set(ctx, refreshKeyPrefix+subject, token, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (l *Ledger) GetRefresh(ctx context.Context, subject string) (string, error) {
	token, err := l.client.Get(ctx, refreshKeyPrefix+subject).Result()

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, goredis.Nil):
		return "", apperrors.ErrRefreshTokenNotFound
	default:
		return "", fmt.Errorf("redis error: %w", err)
	}
}

func (l *Ledger) DeleteRefresh(ctx context.Context, subject string) error {
	err := l.client.Del(ctx, refreshKeyPrefix+subject).Err()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Blacklist access token until it expires naturally
// Non positive ttl means the token is already expired and nothing has to be stored
func (l *Ledger) Blacklist(ctx context.Context, accessToken string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	err := l.client.Set(ctx, blacklistKeyPrefix+accessToken, blacklistMarker, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (l *Ledger) IsBlacklisted(ctx context.Context, accessToken string) (bool, error) {
	n, err := l.client.Exists(ctx, blacklistKeyPrefix+accessToken).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}
