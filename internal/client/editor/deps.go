package editor

import (
	"context"

	"github.com/dmitrijs2005/memoria/internal/client/drafts"
	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/netx"
	"github.com/dmitrijs2005/memoria/internal/wire"
)

// Transcoder re-encodes an accepted image into the delivery format.
type Transcoder interface {
	Transcode(ctx context.Context, f media.File) (media.File, error)
}

// Negotiator obtains a presigned upload grant.
type Negotiator interface {
	Negotiate(ctx context.Context, fileName, fileType, folder string) (media.Grant, error)
}

// Transferer executes a negotiated upload.
type Transferer interface {
	Transfer(ctx context.Context, grant media.Grant, f media.File, onProgress netx.ProgressFunc) error
}

// Deleter removes a previously uploaded object by its public URL.
type Deleter interface {
	DeleteByPublicURL(ctx context.Context, rawURL string) error
}

// RowStore persists the page.
type RowStore interface {
	CreateMemory(ctx context.Context, req wire.CreateMemoryRequest) (wire.Memory, error)
	UpdateMemory(ctx context.Context, id string, req wire.UpdateMemoryRequest) (wire.Memory, error)
}

// Deps are the collaborators of a Session. Cache and Logger are optional.
type Deps struct {
	Validator  *media.Validator
	Transcoder Transcoder
	Negotiator Negotiator
	Transferer Transferer
	Deleter    Deleter
	Store      RowStore
	Cache      drafts.Cache
	Messages   media.Messages
	Logger     logging.Logger
}
