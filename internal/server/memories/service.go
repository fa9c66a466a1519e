// Package memories implements the memory page row store: ownership checks,
// content rules, slugs, view counting and draft archiving on top of the
// repositories.
package memories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/memoria/internal/common"
	"github.com/dmitrijs2005/memoria/internal/dbx"
	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/server/models"
	memoryrepo "github.com/dmitrijs2005/memoria/internal/server/repositories/memories"
	"github.com/dmitrijs2005/memoria/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidSlug is returned for slugs outside 3..50 chars of [a-z0-9-].
var ErrInvalidSlug = errors.New("invalid slug")

// ErrInvalidStatus is returned for unknown statuses.
var ErrInvalidStatus = errors.New("invalid status")

// CreateInput is the payload of a new page. An empty Slug is generated
// from the title; an empty Status means DRAFT.
type CreateInput struct {
	Slug    string
	Status  models.Status
	Content media.Content
}

// Patch carries the fields of an update; nil fields are left alone.
type Patch struct {
	Slug    *string
	Status  *models.Status
	Content *media.Content
}

type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validate    *validator.Validate
	logger      logging.Logger

	now   func() time.Time
	newID func() string
}

func NewService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger) *Service {
	return &Service{
		db:          db,
		repomanager: repomanager,
		validate:    newValidator(),
		logger:      logger.With("module", "memories"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.Memory, error) {
	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := validateContent(s.validate, in.Content, status == models.StatusPaid); err != nil {
		return nil, err
	}

	slug := in.Slug
	if slug == "" {
		var err error
		if slug, err = GenerateSlug(in.Content.Title); err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
	} else if !ValidSlug(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}

	m := &models.Memory{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Slug:      slug,
		Status:    status,
		CreatedAt: s.now().UTC(),
		Content:   in.Content,
	}

	if err := s.repomanager.Memories(s.db).Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "memory created", "id", m.ID, "owner", ownerID, "status", status, "media", len(m.Content.Media))
	return m, nil
}

// owned loads id and checks that it belongs to ownerID. Pages of other
// owners are reported as missing.
func (s *Service) owned(ctx context.Context, repo memoryrepo.Repository, ownerID, id string) (*models.Memory, error) {
	m, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*models.Memory, error) {
	return s.owned(ctx, s.repomanager.Memories(s.db), ownerID, id)
}

// GetBySlug serves the public page: only published pages are visible and
// every read counts as a view.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Memory, error) {
	var m *models.Memory

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Memories(tx)

		var err error
		if m, err = repo.GetBySlug(ctx, slug); err != nil {
			return err
		}
		if m.Status != models.StatusPaid {
			return common.ErrorNotFound
		}

		views, err := repo.IncrementViews(ctx, m.ID)
		if err != nil {
			return err
		}
		m.Content.Metrics = &media.Metrics{Views: views}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByOwner lists the owner's pages, newest first. An empty status lists
// all of them.
func (s *Service) ListByOwner(ctx context.Context, ownerID string, status models.Status) ([]*models.Memory, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.repomanager.Memories(s.db).ListByOwner(ctx, ownerID, status)
}

func (s *Service) Update(ctx context.Context, ownerID, id string, p Patch) (*models.Memory, error) {
	var m *models.Memory

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Memories(tx)

		var err error
		if m, err = s.owned(ctx, repo, ownerID, id); err != nil {
			return err
		}

		if p.Slug != nil && *p.Slug != m.Slug {
			if !ValidSlug(*p.Slug) {
				return fmt.Errorf("%w: %q", ErrInvalidSlug, *p.Slug)
			}
			m.Slug = *p.Slug
		}
		if p.Status != nil {
			if !p.Status.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
			}
			m.Status = *p.Status
		}
		if p.Content != nil {
			// views are server-owned
			views := m.Content.Metrics
			m.Content = *p.Content
			m.Content.Metrics = views
		}

		if err := validateContent(s.validate, m.Content, m.Status == models.StatusPaid); err != nil {
			return err
		}

		return repo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "memory updated", "id", id, "status", m.Status)
	return m, nil
}

func (s *Service) UpdateStatus(ctx context.Context, ownerID, id string, status models.Status) (*models.Memory, error) {
	return s.Update(ctx, ownerID, id, Patch{Status: &status})
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Memories(tx)
		if _, err := s.owned(ctx, repo, ownerID, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

func (s *Service) IncrementViews(ctx context.Context, id string) (int64, error) {
	return s.repomanager.Memories(s.db).IncrementViews(ctx, id)
}

// ArchiveOldDrafts archives drafts created more than olderThan ago.
func (s *Service) ArchiveOldDrafts(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).UTC()

	n, err := s.repomanager.Memories(s.db).ArchiveDraftsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info(ctx, "drafts archived", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// CheckSlugAvailability reports whether slug is well formed and unused.
func (s *Service) CheckSlugAvailability(ctx context.Context, slug string) (bool, error) {
	if !ValidSlug(slug) {
		return false, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}

	_, err := s.repomanager.Memories(s.db).SlugOwner(ctx, slug)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return true, nil
	case err != nil:
		return false, err
	default:
		return false, nil
	}
}

func (s *Service) Stats(ctx context.Context, ownerID string) (*models.Stats, error) {
	return s.repomanager.Memories(s.db).Stats(ctx, ownerID)
}
