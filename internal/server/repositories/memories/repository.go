package memories

import (
	"context"
	"time"

	"github.com/dmitrijs2005/memoria/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.Memory) error
	GetByID(ctx context.Context, id string) (*models.Memory, error)
	GetBySlug(ctx context.Context, slug string) (*models.Memory, error)
	ListByOwner(ctx context.Context, ownerID string, status models.Status) ([]*models.Memory, error)
	Update(ctx context.Context, m *models.Memory) error
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
	ArchiveDraftsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	SlugOwner(ctx context.Context, slug string) (string, error)
	Stats(ctx context.Context, ownerID string) (*models.Stats, error)
}
