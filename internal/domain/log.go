package domain

import (
	"encoding/json"
	"time"
)

// LogEntry is an append-only game event row in the logs table.
type LogEntry struct {
	ID         int64           `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	ServerID   string          `json:"server_id"`
	EventType  string          `json:"event_type"`
	Category   *string         `json:"category"`
	Type       *string         `json:"type"`
	PlayerID   *string         `json:"player_id"`
	PlayerName *string         `json:"player_name"`
	DiscordID  *string         `json:"discord_id"`
	Details    json.RawMessage `json:"details"`
}

// LogInput is the payload a game server posts to the ingestion endpoint.
type LogInput struct {
	ServerID   string          `json:"server_id"`
	EventType  string          `json:"event_type"`
	Category   *string         `json:"category,omitempty"`
	Type       *string         `json:"type,omitempty"`
	PlayerID   *string         `json:"player_id,omitempty"`
	PlayerName *string         `json:"player_name,omitempty"`
	DiscordID  *string         `json:"discord_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// HasRequired reports whether the fields every log row needs are present.
func (in LogInput) HasRequired() bool {
	return in.ServerID != "" && in.EventType != ""
}

// LogFilter narrows a logs listing.
type LogFilter struct {
	ServerID  string
	EventType string
	Category  string
	Type      string
	Player    string
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}

const (
	DefaultLogLimit = 100
	MaxLogLimit     = 500
)

// Normalize clamps paging values to their allowed range.
func (f *LogFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultLogLimit
	}
	if f.Limit > MaxLogLimit {
		f.Limit = MaxLogLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// LogFacets lists the distinct values the logs browser filters on.
type LogFacets struct {
	ServerIDs  []string `json:"server_ids"`
	EventTypes []string `json:"event_types"`
	Categories []string `json:"categories"`
}
