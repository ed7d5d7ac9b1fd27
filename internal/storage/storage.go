// Package storage is the durable string key-value store backing the
// favorites and settings. Reads and writes are synchronous.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// KV is a string-valued key-value store.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Driver     string
	FilePath   string
	SQLitePath string
	RedisURL   string
	// KeyPrefix namespaces keys on shared backends such as redis.
	KeyPrefix string
}

var ErrUnknownDriver = errors.New("unknown storage driver")

// Open returns the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (KV, error) {
	var (
		kv  KV
		err error
	)
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		kv, err = OpenFile(cfg.FilePath)
	case DriverSQLite:
		kv, err = OpenSQLite(cfg.SQLitePath)
	case DriverRedis:
		kv, err = OpenRedis(ctx, cfg.RedisURL, cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Driver, err)
	}
	return kv, nil
}
