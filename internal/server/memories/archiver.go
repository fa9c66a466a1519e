package memories

import (
	"context"
	"time"

	"github.com/dmitrijs2005/memoria/internal/logging"
)

// ArchivedCounter receives the number of drafts each sweep archived.
type ArchivedCounter interface {
	AddArchived(n int64)
}

// Archiver periodically moves stale drafts to ARCHIVED.
type Archiver struct {
	svc       *Service
	retention time.Duration
	interval  time.Duration
	counter   ArchivedCounter
	logger    logging.Logger
}

func NewArchiver(svc *Service, retention, interval time.Duration, counter ArchivedCounter, logger logging.Logger) *Archiver {
	return &Archiver{
		svc:       svc,
		retention: retention,
		interval:  interval,
		counter:   counter,
		logger:    logger.With("module", "archiver"),
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
// A non-positive interval disables the archiver.
func (a *Archiver) Run(ctx context.Context) {
	if a.interval <= 0 {
		a.logger.Info(ctx, "draft archiver disabled")
		return
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		a.Sweep(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep archives once. Failures are logged; the next tick retries.
func (a *Archiver) Sweep(ctx context.Context) int64 {
	n, err := a.svc.ArchiveOldDrafts(ctx, a.retention)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Error(ctx, "archive drafts failed", "error", err)
		}
		return 0
	}
	if a.counter != nil {
		a.counter.AddArchived(n)
	}
	return n
}
