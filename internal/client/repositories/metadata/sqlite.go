package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return get(ctx, r.db, key)
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, r.db, key, value)
}

// Delete removes the given keys; absent keys are not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	return del(ctx, r.db, keys)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	return list(ctx, r.db, "")
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, s StoredSession) error {
	if s.Token == "" || s.UserID == "" {
		return fmt.Errorf("incomplete session record")
	}
	values := map[string]string{
		KeySessionToken: s.Token,
		KeyUserID:       s.UserID,
		KeyUsername:     s.Username,
		KeyExpiresAt:    "",
	}
	if !s.ExpiresAt.IsZero() {
		values[KeyExpiresAt] = s.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range sessionKeys {
			if err := set(ctx, tx, k, []byte(values[k])); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) LoadSession(ctx context.Context) (*StoredSession, error) {
	m, err := list(ctx, r.db, "WHERE key IN (?,?,?,?)", KeySessionToken, KeyUserID, KeyUsername, KeyExpiresAt)
	if err != nil {
		return nil, err
	}

	s := &StoredSession{
		Token:    string(m[KeySessionToken]),
		UserID:   string(m[KeyUserID]),
		Username: string(m[KeyUsername]),
	}
	if s.Token == "" || s.UserID == "" {
		return nil, nil
	}
	if v := string(m[KeyExpiresAt]); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metadata[%s]: %w", KeyExpiresAt, err)
		}
		s.ExpiresAt = t
	}
	return s, nil
}

func (r *SQLiteRepository) ClearSession(ctx context.Context) error {
	return del(ctx, r.db, sessionKeys)
}

func get(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func del(ctx context.Context, q dbx.DBTX, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")

	if _, err := q.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete metadata%v: %w", keys, err)
	}
	return nil
}

func list(ctx context.Context, q dbx.DBTX, where string, args ...any) (map[string][]byte, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM metadata `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metadata rows: %w", err)
	}
	return result, nil
}
