package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/tripplanner/internal/db"
	"github.com/nkiryanov/tripplanner/internal/handlers"
	"github.com/nkiryanov/tripplanner/internal/logger"
	"github.com/nkiryanov/tripplanner/internal/repository/postgres"
	"github.com/nkiryanov/tripplanner/internal/repository/redis"
	"github.com/nkiryanov/tripplanner/internal/service/auth"
	"github.com/nkiryanov/tripplanner/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/tripplanner/internal/service/user"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	pool  *pgxpool.Pool
	redis *goredis.Client
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	rdb, err := redis.NewClient(ctx, redis.Config{URL: c.RedisURL})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)
	ledger := redis.NewLedger(rdb)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
		Logger:     l.WithGroup("token"),
	})
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{Logger: l.WithGroup("auth")}, tokenManager, storage, ledger)
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(storage)

	router := handlers.NewRouter(authService, userService, l)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router,
		Logger:     l,
		pool:       pool,
		redis:      rdb,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
// Connections to db and redis are closed when server stopped
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *ServerApp) close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.Logger.Error("error while closing redis client", "error", err)
		}
	}
}
