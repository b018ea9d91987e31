package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

const defaultPollInterval = 2 * time.Second

// sqliteKV stores payloads in a local sqlite file. Changes made by other
// processes are picked up by polling the row versions.
type sqliteKV struct {
	db           *sql.DB
	pollInterval time.Duration
}

func NewSQLiteKV(dbPath string) (*sqliteKV, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteKV{db: db, pollInterval: defaultPollInterval}, nil
}

func (s *sqliteKV) Close() error {
	return s.db.Close()
}

func (s *sqliteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM record_store WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get "+key, err)
	}
	return payload, nil
}

func (s *sqliteKV) Set(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO record_store (key, payload, version, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			version = record_store.version + 1,
			updated_at = CURRENT_TIMESTAMP`, key, payload)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to set "+key, err)
	}
	return nil
}

func (s *sqliteKV) version(ctx context.Context, key string) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM record_store WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

func (s *sqliteKV) Watch(ctx context.Context, keys []string, fn func(ChangeEvent)) error {
	log := logger.FromContext(ctx)
	seen := make(map[string]int64, len(keys))
	for _, key := range keys {
		v, err := s.version(ctx, key)
		if err != nil {
			return errs.NewDatabaseError("watch", "failed to read version of "+key, err)
		}
		seen[key] = v
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		for _, key := range keys {
			v, err := s.version(ctx, key)
			if err != nil {
				log.Warn("failed to poll record version", "key", key, "error", err)
				continue
			}
			if v == seen[key] {
				continue
			}
			seen[key] = v
			payload, err := s.Get(ctx, key)
			if err != nil {
				log.Warn("failed to read changed records", "key", key, "error", err)
				continue
			}
			fn(ChangeEvent{Key: key, Payload: payload})
		}
	}
}
