// Package wire holds the JSON bodies exchanged between the CLI and the
// server.
package wire

import "github.com/dmitrijs2005/memoria/internal/media"

// Memory statuses as they travel on the wire.
const (
	StatusDraft    = "DRAFT"
	StatusPaid     = "PAID"
	StatusArchived = "ARCHIVED"
)

type PresignRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Folder   string `json:"folder,omitempty"`
}

// PresignResponse is media.Grant on the wire.
type PresignResponse = media.Grant

type DeleteRequest struct {
	URL string `json:"url"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateMemoryRequest struct {
	Slug    string        `json:"slug,omitempty"`
	Status  string        `json:"status,omitempty"`
	Content media.Content `json:"content"`
}

// UpdateMemoryRequest leaves absent fields unchanged.
type UpdateMemoryRequest struct {
	Slug    *string        `json:"slug,omitempty"`
	Status  *string        `json:"status,omitempty"`
	Content *media.Content `json:"content,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type Memory struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Slug    string `json:"slug"`
	Status  string `json:"status"`
	// CreatedAt is in epoch milliseconds.
	CreatedAt int64         `json:"createdAt"`
	Content   media.Content `json:"content"`
}

type MemoryList struct {
	Memories []Memory `json:"memories"`
}

type Stats struct {
	Total      int64 `json:"total"`
	Drafts     int64 `json:"drafts"`
	Published  int64 `json:"published"`
	Archived   int64 `json:"archived"`
	TotalViews int64 `json:"totalViews"`
}

type SlugAvailability struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}
