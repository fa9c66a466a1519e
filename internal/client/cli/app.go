package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/memoria/internal/client/api"
	"github.com/dmitrijs2005/memoria/internal/client/config"
	"github.com/dmitrijs2005/memoria/internal/client/drafts"
	"github.com/dmitrijs2005/memoria/internal/client/editor"
	"github.com/dmitrijs2005/memoria/internal/client/localdb"
	"github.com/dmitrijs2005/memoria/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/memoria/internal/client/transfer"
	"github.com/dmitrijs2005/memoria/internal/common"
	"github.com/dmitrijs2005/memoria/internal/filex"
	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/media/transcode"
	"github.com/dmitrijs2005/memoria/internal/netx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
)

// ErrNotLoggedIn is returned by commands that need a session token.
var ErrNotLoggedIn = errors.New("not logged in: run 'memoria login' first")

// App wires the client side of the intake pipeline for one CLI invocation.
type App struct {
	config *config.Config
	logger logging.Logger
	out    io.Writer
	in     io.Reader

	db    *sql.DB
	meta  metadata.Repository
	cache drafts.Cache
	api   *api.Client
	deps  editor.Deps

	closers []func() error
}

// syncWriter serializes writes from pipeline goroutines and the REPL.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	level := "warn"
	if cfg.Verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level, false)

	dir, err := filex.EnsureDataDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := localdb.Open(ctx, filepath.Join(dir, localdb.FileName))
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	a := &App{
		config:  cfg,
		logger:  logger,
		out:     &syncWriter{w: out},
		in:      in,
		db:      db,
		meta:    metadata.NewSQLiteRepository(db),
		closers: []func() error{db.Close},
	}

	switch cfg.CacheBackend {
	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		a.cache = drafts.NewRedisCache(rdb, 0)
	case config.CacheNone:
		a.cache = drafts.Nop{}
	default:
		a.cache = drafts.NewSQLiteCache(db)
	}

	tag, err := language.Parse(cfg.Language)
	if err != nil {
		tag = media.DefaultLanguage
	}
	msgs := media.NewMessages(tag)

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	policy := netx.Policy{Attempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay}

	a.api = api.New(cfg.ServerURL, httpClient, policy, msgs, logger)

	token, err := a.meta.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.api.SetToken(token)

	a.deps = editor.Deps{
		Validator:  media.NewValidator(tag),
		Transcoder: transcode.New(transcode.WebPEncoder{}, transcode.DefaultOptions(), msgs, logger),
		Negotiator: a.api,
		// No timeout: a 100 MiB video may outlast RequestTimeout.
		Transferer: transfer.New(&http.Client{}, policy, msgs, logger),
		Deleter:    a.api,
		Store:      a.api,
		Cache:      a.cache,
		Messages:   msgs,
		Logger:     logger,
	}

	return a, nil
}

// Close releases the local database and the cache connection.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) requireLogin(ctx context.Context) error {
	token, err := a.meta.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// currentDraftKey returns the session key of the draft being edited,
// creating one when fresh is set or none exists yet.
func (a *App) currentDraftKey(ctx context.Context, fresh bool) (string, error) {
	if !fresh {
		key, err := a.meta.Get(ctx, metadata.KeyCurrentDraft)
		if err != nil {
			return "", err
		}
		if key != "" {
			return key, nil
		}
	}

	key := uuid.NewString()
	if err := a.meta.Set(ctx, metadata.KeyCurrentDraft, key); err != nil {
		return "", err
	}
	return key, nil
}

// openSession opens the editing session for key. With memoryID set the
// session is bound to that memory as stored on the server.
func (a *App) openSession(ctx context.Context, key, memoryID string, opts ...editor.Option) (*editor.Session, error) {
	s, err := editor.Open(ctx, key, a.deps, opts...)
	if err != nil {
		return nil, err
	}
	if memoryID == "" || s.MemoryID() == memoryID {
		return s, nil
	}

	m, err := a.api.GetMemory(ctx, memoryID)
	if err != nil {
		s.Close()
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("memory %s not found", memoryID)
		}
		return nil, err
	}
	s.Attach(m.ID, m.Slug, m.Content)
	return s, nil
}
