package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/memoria/internal/client/drafts"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/netx"
	"github.com/dmitrijs2005/memoria/internal/wire"
	"golang.org/x/text/language"
)

type fakeTranscoder struct {
	err   error
	calls int32
}

func (f *fakeTranscoder) Transcode(ctx context.Context, in media.File) (media.File, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return media.File{}, f.err
	}
	return media.NewFile(media.ReplaceExt(in.Name, ".webp"), "image/webp", make([]byte, 900<<10)), nil
}

type fakeNegotiator struct {
	mu    sync.Mutex
	err   error
	calls []string
	seq   int
}

func (f *fakeNegotiator) Negotiate(ctx context.Context, fileName, fileType, folder string) (media.Grant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, folder+"|"+fileName+"|"+fileType)
	if f.err != nil {
		return media.Grant{}, f.err
	}
	f.seq++
	key := media.StorageKey(folder, fileName, timeAt(f.seq), fmt.Sprintf("tok%010d", f.seq))
	return media.Grant{
		UploadURL: "https://s3.test/memoria/" + key + "?sig=1",
		PublicURL: "https://cdn.test/" + key,
		Key:       key,
	}, nil
}

func (f *fakeNegotiator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeTransferer completes immediately unless a gate is registered for the
// file name, in which case it blocks until the gate is closed.
type fakeTransferer struct {
	mu    sync.Mutex
	err   error
	gates map[string]chan struct{}
	calls int32
}

func (f *fakeTransferer) gate(name string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = map[string]chan struct{}{}
	}
	ch := make(chan struct{})
	f.gates[name] = ch
	return ch
}

func (f *fakeTransferer) Transfer(ctx context.Context, grant media.Grant, file media.File, onProgress netx.ProgressFunc) error {
	atomic.AddInt32(&f.calls, 1)

	f.mu.Lock()
	ch := f.gates[file.Name]
	err := f.err
	f.mu.Unlock()

	if onProgress != nil {
		onProgress(50)
	}
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	if onProgress != nil {
		onProgress(100)
	}
	return nil
}

type fakeDeleter struct {
	mu   sync.Mutex
	err  error
	urls []string
}

func (f *fakeDeleter) DeleteByPublicURL(ctx context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, rawURL)
	return f.err
}

func (f *fakeDeleter) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

type fakeStore struct {
	created []wire.CreateMemoryRequest
	updated []wire.UpdateMemoryRequest
	err     error
}

func (f *fakeStore) CreateMemory(ctx context.Context, req wire.CreateMemoryRequest) (wire.Memory, error) {
	if f.err != nil {
		return wire.Memory{}, f.err
	}
	f.created = append(f.created, req)
	slug := req.Slug
	if slug == "" {
		slug = "generated-abc123"
	}
	return wire.Memory{ID: "m-1", Slug: slug, Status: req.Status, Content: req.Content}, nil
}

func (f *fakeStore) UpdateMemory(ctx context.Context, id string, req wire.UpdateMemoryRequest) (wire.Memory, error) {
	if f.err != nil {
		return wire.Memory{}, f.err
	}
	f.updated = append(f.updated, req)
	return wire.Memory{ID: id, Slug: "generated-abc123", Status: *req.Status, Content: *req.Content}, nil
}

type memCache struct {
	mu    sync.Mutex
	snaps map[string]drafts.Snapshot
	err   error
}

func newMemCache() *memCache {
	return &memCache{snaps: map[string]drafts.Snapshot{}}
}

func (c *memCache) Load(ctx context.Context, key string) (*drafts.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	s, ok := c.snaps[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (c *memCache) Store(ctx context.Context, key string, s drafts.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[key] = s
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snaps, key)
	return nil
}

type fixture struct {
	transcoder *fakeTranscoder
	negotiator *fakeNegotiator
	transferer *fakeTransferer
	deleter    *fakeDeleter
	store      *fakeStore
	cache      *memCache

	mu     sync.Mutex
	events []Event
}

func newFixture() *fixture {
	return &fixture{
		transcoder: &fakeTranscoder{},
		negotiator: &fakeNegotiator{},
		transferer: &fakeTransferer{},
		deleter:    &fakeDeleter{},
		store:      &fakeStore{},
		cache:      newMemCache(),
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Validator:  media.NewValidator(language.English),
		Transcoder: f.transcoder,
		Negotiator: f.negotiator,
		Transferer: f.transferer,
		Deleter:    f.deleter,
		Store:      f.store,
		Cache:      f.cache,
		Messages:   media.NewMessages(language.English),
	}
}

func (f *fixture) record(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fixture) recorded() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

var errBoom = errors.New("boom")
