package editor

import (
	"context"

	"github.com/dmitrijs2005/memoria/internal/wire"
)

// Save stores the current snapshot as a draft. Uploads still in flight are
// simply not part of it.
func (s *Session) Save(ctx context.Context) (wire.Memory, error) {
	return s.persist(ctx, wire.StatusDraft)
}

// Publish stores the snapshot as a published page. It refuses while
// IsValid is false.
func (s *Session) Publish(ctx context.Context) (wire.Memory, error) {
	return s.persist(ctx, wire.StatusPaid)
}

// persist sends the snapshot with status. For a published page the validity
// check and the snapshot are taken under the same lock hold, so an Accept
// cannot slip in between them.
func (s *Session) persist(ctx context.Context, status string) (wire.Memory, error) {
	s.mu.Lock()
	if status == wire.StatusPaid && !s.validLocked() {
		s.mu.Unlock()
		return wire.Memory{}, ErrNotPublishable
	}
	id, slug, content := s.memoryID, s.slug, s.content.Clone()
	s.mu.Unlock()

	var (
		m   wire.Memory
		err error
	)
	if id == "" {
		m, err = s.deps.Store.CreateMemory(ctx, wire.CreateMemoryRequest{Slug: slug, Status: status, Content: content})
	} else {
		m, err = s.deps.Store.UpdateMemory(ctx, id, wire.UpdateMemoryRequest{Status: &status, Content: &content})
	}
	if err != nil {
		return wire.Memory{}, err
	}

	s.mutate(func() bool {
		s.memoryID = m.ID
		s.slug = m.Slug
		return true
	})
	s.deps.Logger.Info(ctx, "memory saved", "id", m.ID, "status", m.Status)
	return m, nil
}
