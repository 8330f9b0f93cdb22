package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tryonstudio/backend/internal/config"
	"github.com/tryonstudio/backend/internal/kvstore"
)

func openPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("Connected to PostgreSQL")
	return pool, nil
}

// openStore picks the session/balance store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (kvstore.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		r, err := kvstore.NewRedis(ctx, cfg.RedisAddr, cfg.RedisKeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using Redis store", "addr", cfg.RedisAddr)
		return r, func() { _ = r.Close() }, nil
	case config.StorePostgres:
		p := kvstore.NewPostgres(pool)
		if err := p.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		slog.Info("Using PostgreSQL store")
		return p, func() {}, nil
	default:
		return kvstore.NewMemory(), func() {}, nil
	}
}
