package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

type Config struct {
	// Connection string in format redis://[:password@]host:port/db
	URL string

	// I/O timeouts; zero means default
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient connects to redis and pings it
// Client retries are disabled: a failed ledger command is reported to the caller as is
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("cant parse redis url. Err: %w", err)
	}

	setDefaultDuration := func(field *time.Duration, value time.Duration, def time.Duration) {
		switch {
		case value > 0:
			*field = value
		case *field == 0:
			*field = def
		}
	}
	setDefaultDuration(&opts.DialTimeout, cfg.DialTimeout, defaultDialTimeout)
	setDefaultDuration(&opts.ReadTimeout, cfg.ReadTimeout, defaultReadTimeout)
	setDefaultDuration(&opts.WriteTimeout, cfg.WriteTimeout, defaultWriteTimeout)
	opts.MaxRetries = -1 // -1 disables retries, 0 means default (3)

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis is not reachable. Err: %w", err)
	}

	return client, nil
}
