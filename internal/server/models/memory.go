package models

import (
	"time"

	"github.com/dmitrijs2005/memoria/internal/media"
)

// Status is the lifecycle state of a memory page.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPaid     Status = "PAID"
	StatusArchived Status = "ARCHIVED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPaid, StatusArchived:
		return true
	}
	return false
}

// Memory is one row of the memories table.
type Memory struct {
	ID        string
	OwnerID   string
	Slug      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Content   media.Content
}

// Stats aggregates an owner's pages for the dashboard.
type Stats struct {
	Total      int64
	Drafts     int64
	Published  int64
	Archived   int64
	TotalViews int64
}
