package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"videoab/internal/config/configs"
)

const pingTimeout = 5 * time.Second

// NewPostgresPool opens the experiment store. Sessions run in UTC so that
// date_bin buckets line up with the ones the service computes. The pool is
// pinged before it is returned; the caller closes it.
func NewPostgresPool(ctx context.Context, cfg configs.Postgres) (*pgxpool.Pool, error) {
	poolConf, err := pgxpool.ParseConfig(cfg.Addr.String())
	if err != nil {
		return nil, fmt.Errorf("parse postgres address: %w", err)
	}
	poolConf.ConnConfig.RuntimeParams["timezone"] = "UTC"
	poolConf.ConnConfig.RuntimeParams["application_name"] = "videoab"
	if cfg.MaxConns > 0 {
		poolConf.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConf)
	if err != nil {
		return nil, err
	}

	ctxPing, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err = pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
