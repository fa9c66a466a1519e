package editor

import (
	"context"

	"github.com/dmitrijs2005/memoria/internal/media"
)

func (s *Session) indexLocked(entryID string) int {
	for i, e := range s.content.Media {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}

// Remove drops the entry and re-indexes the rest, then deletes the remote
// object. A deletion failure is returned but the entry stays removed.
// Unknown ids are a no-op.
func (s *Session) Remove(ctx context.Context, entryID string) error {
	var removed media.Entry
	var found bool

	s.mutate(func() bool {
		i := s.indexLocked(entryID)
		if i < 0 {
			return false
		}
		removed, found = s.content.Media[i], true
		s.content.Media = append(s.content.Media[:i:i], s.content.Media[i+1:]...)
		media.Reindex(s.content.Media)
		return true
	})
	if !found {
		return nil
	}

	if err := s.deps.Deleter.DeleteByPublicURL(ctx, removed.URL); err != nil {
		s.deps.Logger.Warn(ctx, "remote delete failed", "url", removed.URL, "error", err)
		return media.Wrap(media.ErrDeletion, err)
	}
	return nil
}

// RemoveMusic clears the background music and deletes its object.
func (s *Session) RemoveMusic(ctx context.Context) error {
	var previous string
	s.mutate(func() bool {
		previous = s.content.MusicURL
		s.content.MusicURL = ""
		return previous != ""
	})
	if previous == "" {
		return nil
	}

	if err := s.deps.Deleter.DeleteByPublicURL(ctx, previous); err != nil {
		s.deps.Logger.Warn(ctx, "remote delete failed", "url", previous, "error", err)
		return media.Wrap(media.ErrDeletion, err)
	}
	return nil
}

// Reorder moves the entry at from to to, shifting the entries in between by
// one. Out-of-range indices are a no-op.
func (s *Session) Reorder(from, to int) {
	s.mutate(func() bool {
		n := len(s.content.Media)
		if from < 0 || from >= n || to < 0 || to >= n || from == to {
			return false
		}
		m := s.content.Media
		e := m[from]
		if from < to {
			copy(m[from:to], m[from+1:to+1])
		} else {
			copy(m[to+1:from+1], m[to:from])
		}
		m[to] = e
		media.Reindex(m)
		return true
	})
}

// UpdateCaption replaces the caption of entryID; unknown ids are a no-op.
func (s *Session) UpdateCaption(entryID, caption string) {
	s.mutate(func() bool {
		i := s.indexLocked(entryID)
		if i < 0 {
			return false
		}
		s.content.Media[i].Caption = caption
		return true
	})
}
