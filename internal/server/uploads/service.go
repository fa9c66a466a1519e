// Package uploads is the server half of the upload and deletion
// negotiators: it derives storage keys, asks the object store for
// pre-signed PUT grants and turns public URLs back into keys for deletion.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/media"
)

// ErrInvalidRequest marks caller mistakes: missing fields, unknown folder,
// a URL that names no key.
var ErrInvalidRequest = errors.New("invalid upload request")

// Folders a grant may target.
var allowedFolders = map[string]struct{}{
	media.FolderMemories: {},
	media.FolderMusic:    {},
	"audio":              {},
	"thumbnails":         {},
}

// ObjectStore is the part of the bucket the negotiator needs.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Recorder receives one call per store operation.
type Recorder interface {
	RecordOperation(op string, err error)
}

type Service struct {
	store      ObjectStore
	publicBase string
	recorder   Recorder
	logger     logging.Logger

	newKey func(folder, fileName string) (string, error)
}

func NewService(store ObjectStore, publicBase string, recorder Recorder, logger logging.Logger) *Service {
	return &Service{
		store:      store,
		publicBase: strings.TrimRight(publicBase, "/"),
		recorder:   recorder,
		logger:     logger.With("module", "uploads"),
		newKey:     media.NewStorageKey,
	}
}

// Negotiate issues a grant for a fresh key under folder. Callers never
// choose the key. An empty folder means media.FolderMemories.
func (s *Service) Negotiate(ctx context.Context, fileName, fileType, folder string) (media.Grant, error) {
	if strings.TrimSpace(fileName) == "" || strings.TrimSpace(fileType) == "" {
		return media.Grant{}, fmt.Errorf("%w: fileName and fileType are required", ErrInvalidRequest)
	}
	if folder == "" {
		folder = media.FolderMemories
	}
	if _, ok := allowedFolders[folder]; !ok {
		return media.Grant{}, fmt.Errorf("%w: folder %q is not allowed", ErrInvalidRequest, folder)
	}
	if s.publicBase == "" {
		return media.Grant{}, media.NewError(media.ErrNegotiation, "", errors.New("public base URL is not configured"))
	}

	key, err := s.newKey(folder, fileName)
	if err != nil {
		return media.Grant{}, media.NewError(media.ErrNegotiation, "", fmt.Errorf("storage key: %w", err))
	}

	uploadURL, err := s.store.PresignPut(ctx, key, fileType)
	s.record("presign", err)
	if err != nil {
		s.logger.Error(ctx, "presign failed", "key", key, "error", err)
		return media.Grant{}, media.NewError(media.ErrNegotiation, "", err)
	}

	s.logger.Info(ctx, "upload grant issued", "key", key, "type", fileType)

	return media.Grant{
		UploadURL: uploadURL,
		PublicURL: s.publicBase + "/" + key,
		Key:       key,
	}, nil
}

// DeleteByPublicURL removes the object rawURL points at.
func (s *Service) DeleteByPublicURL(ctx context.Context, rawURL string) error {
	key, err := KeyFromURL(s.publicBase, rawURL)
	if err != nil {
		return media.NewError(media.ErrDeletion, "", err)
	}

	err = s.store.Delete(ctx, key)
	s.record("delete", err)
	if err != nil {
		s.logger.Error(ctx, "delete failed", "key", key, "error", err)
		return media.NewError(media.ErrDeletion, "", err)
	}

	s.logger.Info(ctx, "object deleted", "key", key)
	return nil
}

// KeyFromURL derives the storage key from an absolute public URL: its
// escaped path without the leading slash. When publicBase carries a path of
// its own (a bucket name or a CDN prefix) that prefix is removed first.
func KeyFromURL(publicBase, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: url %q is not absolute", ErrInvalidRequest, rawURL)
	}

	p := u.EscapedPath()
	if base, err := url.Parse(publicBase); err == nil && publicBase != "" {
		prefix := strings.TrimRight(base.EscapedPath(), "/")
		if prefix != "" && strings.HasPrefix(p, prefix+"/") {
			p = strings.TrimPrefix(p, prefix)
		}
	}

	key := strings.TrimPrefix(p, "/")
	if key == "" {
		return "", fmt.Errorf("%w: url %q names no object", ErrInvalidRequest, rawURL)
	}
	return key, nil
}

func (s *Service) record(op string, err error) {
	if s.recorder != nil {
		s.recorder.RecordOperation(op, err)
	}
}
