package media

import (
	"fmt"
	"strings"
)

// Entry is one committed asset in a page's gallery.
type Entry struct {
	ID       string `json:"id" validate:"required"`
	Kind     Kind   `json:"type" validate:"required,oneof=image video"`
	URL      string `json:"url" validate:"required,url"`
	Caption  string `json:"caption,omitempty"`
	Position int    `json:"order" validate:"min=0"`
}

// Metrics are aggregate counters stored next to the content.
type Metrics struct {
	Views int64 `json:"views"`
}

// Content is the persisted payload of a memory page. Title and description
// may be blank while the page is a draft; publishing requires both.
type Content struct {
	Title        string   `json:"title" validate:"max=100"`
	Description  string   `json:"description" validate:"max=2000"`
	PrimaryColor string   `json:"primaryColor" validate:"omitempty,pagecolor"`
	MusicURL     string   `json:"musicUrl,omitempty" validate:"omitempty,url"`
	VoiceNoteURL string   `json:"voiceNoteUrl,omitempty" validate:"omitempty,url"`
	Media        []Entry  `json:"media" validate:"max=50,dive"`
	Metrics      *Metrics `json:"metrics,omitempty"`
}

// DefaultPrimaryColor is the theme color of a fresh page.
const DefaultPrimaryColor = "#8b5cf6"

// Clone returns a deep copy.
func (c Content) Clone() Content {
	out := c
	out.Media = append([]Entry(nil), c.Media...)
	if c.Metrics != nil {
		m := *c.Metrics
		out.Metrics = &m
	}
	return out
}

// Reindex rewrites positions so they match slice order.
func Reindex(entries []Entry) {
	for i := range entries {
		entries[i].Position = i
	}
}

// CheckPositions verifies positions are exactly 0..n-1 in slice order.
func CheckPositions(entries []Entry) error {
	for i, e := range entries {
		if e.Position != i {
			return fmt.Errorf("entry %s at index %d has position %d", e.ID, i, e.Position)
		}
	}
	return nil
}

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
