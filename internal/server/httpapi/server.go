// Package httpapi exposes the object-store boundary and the memory row
// store over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/server/memories"
	"github.com/dmitrijs2005/memoria/internal/server/metrics"
	"github.com/dmitrijs2005/memoria/internal/server/models"
	"github.com/gin-gonic/gin"
)

// Uploads is the server side of the upload and deletion negotiators.
type Uploads interface {
	Negotiate(ctx context.Context, fileName, fileType, folder string) (media.Grant, error)
	DeleteByPublicURL(ctx context.Context, rawURL string) error
}

// Memories is the memory row store.
type Memories interface {
	Create(ctx context.Context, ownerID string, in memories.CreateInput) (*models.Memory, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Memory, error)
	GetBySlug(ctx context.Context, slug string) (*models.Memory, error)
	ListByOwner(ctx context.Context, ownerID string, status models.Status) ([]*models.Memory, error)
	Update(ctx context.Context, ownerID, id string, p memories.Patch) (*models.Memory, error)
	UpdateStatus(ctx context.Context, ownerID, id string, status models.Status) (*models.Memory, error)
	Delete(ctx context.Context, ownerID, id string) error
	CheckSlugAvailability(ctx context.Context, slug string) (bool, error)
	Stats(ctx context.Context, ownerID string) (*models.Stats, error)
}

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address   string
	uploads   Uploads
	memories  Memories
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewHTTPServer(address string, l logging.Logger, us Uploads, ms Memories, m *metrics.Metrics, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   address,
		uploads:   us,
		memories:  ms,
		metrics:   m,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the gin engine with every route registered.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.GET("/api/public/:slug", s.getPublicMemory)

	api := r.Group("/api", s.authRequired())
	{
		api.POST("/upload/presigned-url", s.presign)
		api.DELETE("/upload/delete", s.deleteUpload)

		api.GET("/memories", s.listMemories)
		api.POST("/memories", s.createMemory)
		api.GET("/memories/:id", s.getMemory)
		api.PATCH("/memories/:id", s.updateMemory)
		api.PUT("/memories/:id/status", s.updateStatus)
		api.DELETE("/memories/:id", s.deleteMemory)

		api.GET("/slugs/:slug", s.slugAvailability)
		api.GET("/stats", s.stats)
	}

	return r
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
