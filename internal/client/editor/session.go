// Package editor holds the state of one page editing session: the ordered
// media collection, the transient upload tasks and the text fields, plus the
// per-file intake pipeline that feeds them.
package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/memoria/internal/client/drafts"
	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/google/uuid"
)

var (
	// ErrNotPublishable is returned by Publish while IsValid is false.
	ErrNotPublishable = errors.New("page is not ready to publish")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")
)

// Event reports a change of an upload task. Entry is set when the task
// committed a gallery entry; Err is set when it failed.
type Event struct {
	Task  media.UploadTask
	Entry *media.Entry
	Err   error
}

// Session is safe for concurrent use. Every accepted file runs its own
// pipeline goroutine; all collection mutations happen under one mutex so
// positions stay dense regardless of completion order.
type Session struct {
	key  string
	deps Deps

	mu       sync.Mutex
	memoryID string
	slug     string
	content  media.Content
	tasks    map[string]*media.UploadTask
	order    []string
	closed   bool

	persistMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	onEvent func(Event)
	now     func() time.Time
	newID   func() string
}

// Option customizes a Session.
type Option func(*Session)

// WithEventHandler registers fn for task events. fn runs on pipeline
// goroutines, outside the session lock.
func WithEventHandler(fn func(Event)) Option {
	return func(s *Session) { s.onEvent = fn }
}

// Open starts a session under key, restoring the cached snapshot if one
// exists.
func Open(ctx context.Context, key string, deps Deps, opts ...Option) (*Session, error) {
	if deps.Cache == nil {
		deps.Cache = drafts.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	deps.Logger = deps.Logger.With("module", "editor", "session", key)

	pctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		key:     key,
		deps:    deps,
		content: media.Content{PrimaryColor: media.DefaultPrimaryColor},
		tasks:   make(map[string]*media.UploadTask),
		ctx:     pctx,
		cancel:  cancel,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}

	snap, err := deps.Cache.Load(ctx, key)
	if err != nil {
		cancel()
		return nil, err
	}
	if snap != nil {
		s.memoryID = snap.MemoryID
		s.slug = snap.Slug
		s.content = snap.Content.Clone()
		media.Reindex(s.content.Media)
	}
	return s, nil
}

// Key is the snapshot cache key of the session.
func (s *Session) Key() string { return s.key }

// MemoryID is the row store id, empty until the first save.
func (s *Session) MemoryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoryID
}

// Content returns a copy of the current page content.
func (s *Session) Content() media.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content.Clone()
}

// Entries returns a copy of the gallery in display order.
func (s *Session) Entries() []media.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]media.Entry(nil), s.content.Media...)
}

// Tasks returns the uploads still in flight, in submission order.
func (s *Session) Tasks() []media.UploadTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]media.UploadTask, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.tasks[id])
	}
	return out
}

// Attach binds the session to an existing memory, replacing local state.
func (s *Session) Attach(memoryID, slug string, content media.Content) {
	s.mutate(func() bool {
		s.memoryID = memoryID
		s.slug = slug
		s.content = content.Clone()
		media.Reindex(s.content.Media)
		return true
	})
}

func (s *Session) SetTitle(title string) {
	s.mutate(func() bool { s.content.Title = title; return true })
}

func (s *Session) SetDescription(desc string) {
	s.mutate(func() bool { s.content.Description = desc; return true })
}

func (s *Session) SetPrimaryColor(color string) {
	s.mutate(func() bool { s.content.PrimaryColor = color; return true })
}

// IsValid reports whether the page may be published: title and description
// are non-blank and no upload is in flight.
func (s *Session) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked()
}

func (s *Session) validLocked() bool {
	if media.Blank(s.content.Title) || media.Blank(s.content.Description) {
		return false
	}
	for _, t := range s.tasks {
		if t.Status == media.TaskUploading {
			return false
		}
	}
	return true
}

// Wait blocks until every pipeline started so far has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight pipelines and waits for them to unwind.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// mutate applies fn under the lock and persists a snapshot when fn reports
// a change.
func (s *Session) mutate(fn func() bool) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	changed := fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if !changed {
		return
	}
	if err := s.deps.Cache.Store(context.Background(), s.key, snap); err != nil {
		s.deps.Logger.Warn(context.Background(), "snapshot not stored", "error", err)
	}
}

func (s *Session) snapshotLocked() drafts.Snapshot {
	return drafts.Snapshot{
		MemoryID: s.memoryID,
		Slug:     s.slug,
		Content:  s.content.Clone(),
		SavedAt:  s.now(),
	}
}

func (s *Session) emit(ev Event) {
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}
