package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pub-order-system/internal/config"
)

const (
	maxRetries = 10
	retryDelay = 2 * time.Second
	pingTTL    = 5 * time.Second
)

// Connect opens a pgx pool and pings it, retrying while the database is
// still coming up.
func Connect(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode, cfg.MaxConns)

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		pool, err := pgxpool.New(ctx, dsn)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, pingTTL)
			err = pool.Ping(pctx)
			cancel()
			if err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("db connect canceled: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, lastErr)
}
