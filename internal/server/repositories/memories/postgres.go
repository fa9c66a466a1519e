// Package memories stores memory pages in PostgreSQL. Page content lives in
// a single JSONB column.
package memories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/memoria/internal/common"
	"github.com/dmitrijs2005/memoria/internal/dbx"
	"github.com/dmitrijs2005/memoria/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, owner_id, slug, status, content, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*models.Memory, error) {
	m := &models.Memory{}
	var raw []byte
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Slug, &m.Status, &raw, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m.Content); err != nil {
			return nil, fmt.Errorf("decode content of %s: %w", m.ID, err)
		}
	}
	return m, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrSlugTaken
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Memory) error {
	content, err := json.Marshal(m.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	query :=
		`INSERT INTO memories (id, owner_id, slug, status, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 `

	if _, err := r.db.ExecContext(ctx, query, m.ID, m.OwnerID, m.Slug, string(m.Status), content, m.CreatedAt); err != nil {
		return mapWriteError(err)
	}
	m.UpdatedAt = m.CreatedAt
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.Memory, error) {
	query := `SELECT ` + selectColumns + ` FROM memories WHERE ` + where

	m, err := scanMemory(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Memory, error) {
	return r.getOne(ctx, `slug = $1`, slug)
}

// ListByOwner returns the owner's pages, newest first. An empty status
// matches every status.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, status models.Status) ([]*models.Memory, error) {
	query :=
		`SELECT ` + selectColumns + ` FROM memories
		 WHERE owner_id = $1 AND ($2 = '' OR status = $2)
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID, string(status))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *models.Memory) error {
	content, err := json.Marshal(m.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	query :=
		`UPDATE memories SET slug = $2, status = $3, content = $4, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, m.ID, m.Slug, string(m.Status), content)
	if err != nil {
		return mapWriteError(err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	query :=
		`UPDATE memories SET status = $2, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// IncrementViews bumps content.metrics.views in place and returns the new
// value. The read and the write happen in one statement.
func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	query :=
		`UPDATE memories
		 SET content = content || jsonb_build_object('metrics',
		     COALESCE(content->'metrics', '{}'::jsonb) ||
		     jsonb_build_object('views', COALESCE((content->'metrics'->>'views')::bigint, 0) + 1))
		 WHERE id = $1
		 RETURNING (content->'metrics'->>'views')::bigint
		 `

	var views int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&views); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return views, nil
}

// ArchiveDraftsBefore moves every DRAFT created before cutoff to ARCHIVED.
func (r *PostgresRepository) ArchiveDraftsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query :=
		`UPDATE memories SET status = 'ARCHIVED', updated_at = now()
		 WHERE status = 'DRAFT' AND created_at < $1
		 `

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// SlugOwner returns the id of the page that holds slug.
func (r *PostgresRepository) SlugOwner(ctx context.Context, slug string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM memories WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Stats(ctx context.Context, ownerID string) (*models.Stats, error) {
	query :=
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'DRAFT'),
		        COUNT(*) FILTER (WHERE status = 'PAID'),
		        COUNT(*) FILTER (WHERE status = 'ARCHIVED'),
		        COALESCE(SUM((content->'metrics'->>'views')::bigint), 0)
		 FROM memories
		 WHERE owner_id = $1
		 `

	s := &models.Stats{}
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&s.Total, &s.Drafts, &s.Published, &s.Archived, &s.TotalViews)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
