// Package data manages database connections for the directory service.
package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/redis/go-redis/v9"
)

type Data struct {
	db *sql.DB
}

func New(driver, source string, log *logger.Logger) (*Data, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	log.Info(ctx, "Database connected", "driver", driver, "source", source)
	return &Data{db: db}, nil
}

func (d *Data) DB() *sql.DB {
	return d.db
}

func (d *Data) Close() error {
	return d.db.Close()
}

// NewRedis dials Redis for the session store backend.
func NewRedis(addr, password string, db int, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	log.Info(ctx, "Redis connected", "addr", addr)
	return client, nil
}
