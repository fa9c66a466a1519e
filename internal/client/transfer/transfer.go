// Package transfer executes a negotiated upload: one PUT of the file body to
// the grant's presigned URL.
package transfer

import (
	"context"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/netx"
)

type Executor struct {
	http   *http.Client
	policy netx.Policy
	msgs   media.Messages
	logger logging.Logger
}

func New(httpClient *http.Client, policy netx.Policy, msgs media.Messages, logger logging.Logger) *Executor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Executor{
		http:   httpClient,
		policy: policy,
		msgs:   msgs,
		logger: logger.With("module", "transfer"),
	}
}

// monotonic drops progress values lower than one already reported, so a
// retried attempt never moves the bar backwards.
func monotonic(fn netx.ProgressFunc) netx.ProgressFunc {
	if fn == nil {
		return nil
	}
	var mu sync.Mutex
	last := -1
	return func(p int) {
		mu.Lock()
		defer mu.Unlock()
		if p > last {
			last = p
			fn(p)
		}
	}
}

// Transfer PUTs f to grant.UploadURL with f's declared type. Any failure,
// including a non-2xx status, is returned as a transfer error. A retry
// against the same grant overwrites the same key.
func (e *Executor) Transfer(ctx context.Context, grant media.Grant, f media.File, onProgress netx.ProgressFunc) error {
	progress := monotonic(onProgress)

	err := e.policy.Do(ctx, func(ctx context.Context) error {
		body, err := f.Open()
		if err != nil {
			return err
		}
		defer body.Close()
		return netx.PutPresigned(ctx, e.http, grant.UploadURL, f.Type, body, f.Size, progress)
	})
	if err != nil {
		e.logger.Warn(ctx, "transfer failed", "key", grant.Key, "error", err)
		return media.NewError(media.ErrTransfer, e.msgs.UploadFailed(), err)
	}

	e.logger.Debug(ctx, "transfer complete", "key", grant.Key, "bytes", f.Size)
	return nil
}
