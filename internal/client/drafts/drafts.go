// Package drafts is the local snapshot cache that lets an editing session
// survive a restart. Backends: sqlite, redis and a no-op.
package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/memoria/internal/media"
)

// Snapshot is the persisted part of an editing session. In-flight uploads
// are never part of it.
type Snapshot struct {
	MemoryID string        `json:"memoryId,omitempty"`
	Slug     string        `json:"slug,omitempty"`
	Content  media.Content `json:"content"`
	SavedAt  time.Time     `json:"savedAt"`
}

// Cache stores one snapshot per session key. Load returns (nil, nil) when
// the key has no snapshot.
type Cache interface {
	Load(ctx context.Context, key string) (*Snapshot, error)
	Store(ctx context.Context, key string, s Snapshot) error
	Delete(ctx context.Context, key string) error
}

func encode(s Snapshot) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Nop discards every snapshot.
type Nop struct{}

func (Nop) Load(context.Context, string) (*Snapshot, error) { return nil, nil }
func (Nop) Store(context.Context, string, Snapshot) error     { return nil }
func (Nop) Delete(context.Context, string) error              { return nil }
