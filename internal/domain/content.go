package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentType distinguishes news posts from events.
type ContentType string

const (
	ContentNews  ContentType = "news"
	ContentEvent ContentType = "event"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == ContentNews || t == ContentEvent
}

// EventDetails is the event_metadata side row.
type EventDetails struct {
	EventType string     `json:"event_type"`
	EventDate *time.Time `json:"event_date"`
	Location  string     `json:"location"`
	Address   string     `json:"address"`
}

// ContentItem is a news post or event with its type-specific metadata and tags.
type ContentItem struct {
	ID          uuid.UUID     `json:"id"`
	Type        ContentType   `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Content     *string       `json:"content"`
	IsPinned    bool          `json:"is_pinned"`
	Category    string        `json:"category"`
	CreatedBy   string        `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	LastUpdated time.Time     `json:"last_updated"`
	UpdatedBy   string        `json:"updated_by"`
	Tags        []string      `json:"tags"`
	NewsType    *string       `json:"news_type,omitempty"`
	Event       *EventDetails `json:"event,omitempty"`
}

// ContentInput holds the writable fields of a content item.
type ContentInput struct {
	Type        ContentType   `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Content     *string       `json:"content"`
	IsPinned    bool          `json:"is_pinned"`
	Category    string        `json:"category"`
	Tags        []string      `json:"tags"`
	NewsType    string        `json:"news_type"`
	Event       *EventDetails `json:"event"`
}

// Validate enforces that exactly one metadata shape matches the type.
func (in ContentInput) Validate() error {
	if !in.Type.Valid() {
		return fmt.Errorf("invalid content type: %q", in.Type)
	}
	if in.Title == "" {
		return fmt.Errorf("title is required")
	}
	switch in.Type {
	case ContentNews:
		if in.Event != nil {
			return fmt.Errorf("news items cannot carry event metadata")
		}
	case ContentEvent:
		if in.Event == nil {
			return fmt.Errorf("event metadata is required for events")
		}
		if in.NewsType != "" {
			return fmt.Errorf("events cannot carry a news type")
		}
	}
	return nil
}
