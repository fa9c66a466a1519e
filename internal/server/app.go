// Package server assembles the memoria API: the Postgres-backed memory store,
// the S3 upload negotiator, the draft archiver and the HTTP server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/server/config"
	"github.com/dmitrijs2005/memoria/internal/server/httpapi"
	"github.com/dmitrijs2005/memoria/internal/server/memories"
	"github.com/dmitrijs2005/memoria/internal/server/metrics"
	"github.com/dmitrijs2005/memoria/internal/server/objectstore"
	"github.com/dmitrijs2005/memoria/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/memoria/internal/server/uploads"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// openDB is a seam so tests can substitute sqlmock.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	http     *httpapi.HTTPServer
	archiver *memories.Archiver
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, true)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	m := metrics.New()

	store := objectstore.NewS3Store(objectstore.Settings{
		User:         c.S3RootUser,
		Password:     c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	us := uploads.NewService(store, c.S3PublicURL, m, logger)
	ms := memories.NewService(db, rm, logger)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		http:     httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, us, ms, m, c.SecretKey),
		archiver: memories.NewArchiver(ms, c.DraftRetention, c.ArchiveInterval, m, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a termination signal arrives or the HTTP server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.http.Run(ctx)
	})
	g.Go(func() error {
		app.archiver.Run(ctx)
		return nil
	})

	err := g.Wait()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(context.Background(), "db close failed", "error", cerr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
