package domain

import (
	"fmt"
	"strings"
)

// PermissionLevel is a rung of the dashboard's linear privilege hierarchy.
type PermissionLevel string

const (
	LevelNone    PermissionLevel = "none"
	LevelViewer  PermissionLevel = "viewer"
	LevelContent PermissionLevel = "content"
	LevelStaff   PermissionLevel = "staff"
	LevelAdmin   PermissionLevel = "admin"
)

var levelRanks = map[PermissionLevel]int{
	LevelNone:    0,
	LevelViewer:  1,
	LevelContent: 2,
	LevelStaff:   3,
	LevelAdmin:   4,
}

// AllLevels returns every level in ascending order.
func AllLevels() []PermissionLevel {
	return []PermissionLevel{LevelNone, LevelViewer, LevelContent, LevelStaff, LevelAdmin}
}

// Rank returns the position of the level in the hierarchy. Unknown levels rank as none.
func (l PermissionLevel) Rank() int {
	return levelRanks[l]
}

// AtLeast reports whether l grants everything required grants.
func (l PermissionLevel) AtLeast(required PermissionLevel) bool {
	return l.Rank() >= required.Rank()
}

// Valid reports whether l is one of the known levels.
func (l PermissionLevel) Valid() bool {
	_, ok := levelRanks[l]
	return ok
}

// MaxLevel returns the higher of two levels.
func MaxLevel(a, b PermissionLevel) PermissionLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParsePermissionLevel normalizes and validates a level name.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	l := PermissionLevel(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return LevelNone, fmt.Errorf("invalid permission level: %q", s)
	}
	return l, nil
}

// Principal is the authenticated identity of a dashboard user.
type Principal struct {
	DiscordID string `json:"discord_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// Key returns a stable identifier for caching per-principal data.
func (p Principal) Key() string {
	if p.DiscordID != "" {
		return "discord:" + p.DiscordID
	}
	return "email:" + strings.ToLower(p.Email)
}

// IsZero reports whether no identity is present.
func (p Principal) IsZero() bool {
	return p.DiscordID == "" && p.Email == ""
}
