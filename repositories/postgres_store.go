package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var ErrStateTableMissing = errors.New("app_state table does not exist")

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const createStateTableQuery = `
	CREATE TABLE IF NOT EXISTS app_state (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

type postgresKVStore struct {
	db *sql.DB
}

func NewPostgresKVStore(db *sql.DB) KVStore {
	return &postgresKVStore{db: db}
}

// EnsurePostgresSchema creates the app_state table when it is missing.
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createStateTableQuery); err != nil {
		return fmt.Errorf("failed to create app_state table: %w", err)
	}
	return nil
}

func (s *postgresKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM app_state WHERE key = $1`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, handleStateError(err)
	}
	return value, nil
}

func (s *postgresKVStore) Put(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.inTx(ctx, func(exec SQLExecutor) error {
		for _, e := range entries {
			if e.Value == nil {
				if err := deleteState(ctx, exec, e.Key); err != nil {
					return err
				}
				continue
			}
			if err := upsertState(ctx, exec, e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *postgresKVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `DELETE FROM app_state WHERE key = ANY($1)`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(keys)); err != nil {
		return fmt.Errorf("failed to delete state: %w", handleStateError(err))
	}
	return nil
}

func (s *postgresKVStore) inTx(ctx context.Context, fn func(exec SQLExecutor) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertState(ctx context.Context, exec SQLExecutor, key string, value []byte) error {
	query := `
		INSERT INTO app_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	// jsonb takes text input; a raw []byte would be sent as bytea
	if _, err := exec.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to store state %q: %w", key, handleStateError(err))
	}
	return nil
}

func deleteState(ctx context.Context, exec SQLExecutor, key string) error {
	query := `DELETE FROM app_state WHERE key = $1`
	if _, err := exec.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete state %q: %w", key, handleStateError(err))
	}
	return nil
}

func handleStateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42P01":
			return ErrStateTableMissing
		case "22P02":
			return fmt.Errorf("%w: %s", ErrStateCorrupt, pqErr.Message)
		}
	}
	return err
}
