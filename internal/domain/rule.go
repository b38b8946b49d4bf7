package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RuleCategory separates community rules from roleplay rules.
type RuleCategory string

const (
	RuleCategoryCommunity RuleCategory = "community"
	RuleCategoryRoleplay  RuleCategory = "roleplay"
)

// Valid reports whether c is a known category.
func (c RuleCategory) Valid() bool {
	return c == RuleCategoryCommunity || c == RuleCategoryRoleplay
}

// Rule is a live rulebook entry.
type Rule struct {
	ID         uuid.UUID    `json:"id"`
	Badge      string       `json:"badge"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	Category   RuleCategory `json:"category"`
	Tags       []string     `json:"tags"`
	IsPinned   bool         `json:"is_pinned"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	UpdatedBy  string       `json:"updated_by"`
	Version    int          `json:"version"`
	OrderIndex int          `json:"order_index"`
}

// RuleChange is one snapshot in a rule's edit history.
type RuleChange struct {
	ID              int64     `json:"id"`
	RuleID          uuid.UUID `json:"rule_id"`
	PreviousTitle   string    `json:"previous_title"`
	NewTitle        string    `json:"new_title"`
	PreviousContent string    `json:"previous_content"`
	NewContent      string    `json:"new_content"`
	PreviousTags    []string  `json:"previous_tags"`
	NewTags         []string  `json:"new_tags"`
	PreviousPinned  bool      `json:"previous_pinned"`
	NewPinned       bool      `json:"new_pinned"`
	Version         int       `json:"version"`
	ChangeNotes     string    `json:"change_notes"`
	ChangedBy       string    `json:"changed_by"`
	ChangedAt       time.Time `json:"changed_at"`
}

// CreateRuleInput holds the fields for a new rule.
type CreateRuleInput struct {
	Badge    string       `json:"badge"`
	Title    string       `json:"title"`
	Content  string       `json:"content"`
	Category RuleCategory `json:"category"`
	Tags     []string     `json:"tags"`
	IsPinned bool         `json:"is_pinned"`
}

// Validate checks the required rule fields.
func (in CreateRuleInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !in.Category.Valid() {
		return fmt.Errorf("invalid rule category: %q", in.Category)
	}
	return nil
}

// RuleUpdate carries a partial rule edit. Nil fields keep their current value.
type RuleUpdate struct {
	Badge           *string       `json:"badge,omitempty"`
	Title           *string       `json:"title,omitempty"`
	Content         *string       `json:"content,omitempty"`
	Category        *RuleCategory `json:"category,omitempty"`
	Tags            []string      `json:"tags,omitempty"`
	IsPinned        *bool         `json:"is_pinned,omitempty"`
	ChangeNotes     string        `json:"change_notes"`
	ExpectedVersion *int          `json:"expected_version,omitempty"`
}

// Apply returns a copy of r with the update's present fields overlaid.
func (u RuleUpdate) Apply(r Rule) Rule {
	next := r
	if u.Badge != nil {
		next.Badge = *u.Badge
	}
	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.Content != nil {
		next.Content = *u.Content
	}
	if u.Category != nil {
		next.Category = *u.Category
	}
	if u.Tags != nil {
		next.Tags = u.Tags
	}
	if u.IsPinned != nil {
		next.IsPinned = *u.IsPinned
	}
	return next
}

// NewRuleChange snapshots the transition from prev to next at the given version.
func NewRuleChange(prev, next Rule, version int, notes, changedBy string) RuleChange {
	return RuleChange{
		RuleID:          prev.ID,
		PreviousTitle:   prev.Title,
		NewTitle:        next.Title,
		PreviousContent: prev.Content,
		NewContent:      next.Content,
		PreviousTags:    nonNilTags(prev.Tags),
		NewTags:         nonNilTags(next.Tags),
		PreviousPinned:  prev.IsPinned,
		NewPinned:       next.IsPinned,
		Version:         version,
		ChangeNotes:     notes,
		ChangedBy:       changedBy,
	}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
