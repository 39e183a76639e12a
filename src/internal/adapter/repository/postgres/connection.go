package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/business-credits/src/internal/config"
	"github.com/api-sage/business-credits/src/internal/logger"
	_ "github.com/lib/pq"
)

const (
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = 15 * time.Minute
)

// Open connects to the swap intent store and sizes the pool. The store is
// written on every saga step, so a failed ping is fatal at startup.
func Open(ctx context.Context, dsn string, pool config.DatabasePool) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)

	logger.Info("postgres connection established", logger.Fields{
		"maxOpenConns": pool.MaxOpenConns,
		"maxIdleConns": pool.MaxIdleConns,
	})

	return db, nil
}
