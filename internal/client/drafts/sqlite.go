package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/memoria/internal/dbx"
)

type SQLiteCache struct {
	db dbx.DBTX
}

func NewSQLiteCache(db dbx.DBTX) *SQLiteCache {
	return &SQLiteCache{db: db}
}

func (c *SQLiteCache) Load(ctx context.Context, key string) (*Snapshot, error) {
	var payload []byte
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM drafts WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft[%s]: %w", key, err)
	}
	return decode(payload)
}

func (c *SQLiteCache) Store(ctx context.Context, key string, s Snapshot) error {
	payload, err := encode(s)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO drafts (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, key, payload, s.SavedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to store draft[%s]: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete draft[%s]: %w", key, err)
	}
	return nil
}
