// Package metadata is the CLI's local key/value store: the session token and
// the id of the draft being edited.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyAccessToken  = "access_token"
	KeyCurrentDraft = "current_draft"
)

// Repository stores opaque values by key. Get returns ("", nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
