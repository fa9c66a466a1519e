package memories

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/memoria/internal/common"
	"github.com/dmitrijs2005/memoria/internal/dbx"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/server/models"
	memoryrepo "github.com/dmitrijs2005/memoria/internal/server/repositories/memories"
)

// fakeRepo is an in-memory memoryrepo.Repository.
type fakeRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Memory
	err  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[string]*models.Memory{}}
}

func clone(m *models.Memory) *models.Memory {
	c := *m
	c.Content = m.Content.Clone()
	return &c
}

func (r *fakeRepo) Create(ctx context.Context, m *models.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, row := range r.rows {
		if row.Slug == m.Slug {
			return common.ErrSlugTaken
		}
	}
	r.rows[m.ID] = clone(m)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(m), nil
}

func (r *fakeRepo) GetBySlug(ctx context.Context, slug string) (*models.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.Slug == slug {
			return clone(m), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeRepo) ListByOwner(ctx context.Context, ownerID string, status models.Status) ([]*models.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Memory
	for _, m := range r.rows {
		if m.OwnerID == ownerID && (status == "" || m.Status == status) {
			out = append(out, clone(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, m *models.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[m.ID]; !ok {
		return common.ErrorNotFound
	}
	for id, row := range r.rows {
		if id != m.ID && row.Slug == m.Slug {
			return common.ErrSlugTaken
		}
	}
	r.rows[m.ID] = clone(m)
	return nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	if m.Content.Metrics == nil {
		m.Content.Metrics = &media.Metrics{}
	}
	m.Content.Metrics.Views++
	return m.Content.Metrics.Views, nil
}

func (r *fakeRepo) ArchiveDraftsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, m := range r.rows {
		if m.Status == models.StatusDraft && m.CreatedAt.Before(cutoff) {
			m.Status = models.StatusArchived
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) SlugOwner(ctx context.Context, slug string) (string, error) {
	m, err := r.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (r *fakeRepo) Stats(ctx context.Context, ownerID string) (*models.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &models.Stats{}
	for _, m := range r.rows {
		if m.OwnerID != ownerID {
			continue
		}
		s.Total++
		switch m.Status {
		case models.StatusDraft:
			s.Drafts++
		case models.StatusPaid:
			s.Published++
		case models.StatusArchived:
			s.Archived++
		}
		if m.Content.Metrics != nil {
			s.TotalViews += m.Content.Metrics.Views
		}
	}
	return s, nil
}

type fakeManager struct {
	repo *fakeRepo
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeManager) Memories(dbx.DBTX) memoryrepo.Repository { return m.repo }
