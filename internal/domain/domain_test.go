package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{"valid email", "user@example.com", false, ""},
		{"valid email with dots", "first.last@example.co.uk", false, ""},
		{"valid email with plus", "user+tag@example.com", false, ""},
		{"empty string", "", true, "email is required"},
		{"no at sign", "userexample.com", true, "invalid email format"},
		{"no domain", "user@", true, "invalid email format"},
		{"double at", "user@@example.com", true, "invalid email format"},
		{"spaces", "user @example.com", true, "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateSnowflake(t *testing.T) {
	assert.NoError(t, ValidateSnowflake("123456789012345678"))
	assert.Error(t, ValidateSnowflake(""))
	assert.Error(t, ValidateSnowflake("12ab"))
	assert.Error(t, ValidateSnowflake("1234"))
}

// --- Permission Level Tests ---

func TestPermissionLevel_Ranks(t *testing.T) {
	levels := AllLevels()
	for i, l := range levels {
		assert.Equal(t, i, l.Rank(), "rank of %s", l)
	}
	assert.Equal(t, 0, PermissionLevel("superuser").Rank())
}

func TestPermissionLevel_AtLeastIsMonotonic(t *testing.T) {
	for _, have := range AllLevels() {
		for _, required := range AllLevels() {
			want := have.Rank() >= required.Rank()
			assert.Equal(t, want, have.AtLeast(required), "%s at least %s", have, required)
		}
	}
}

func TestParsePermissionLevel(t *testing.T) {
	l, err := ParsePermissionLevel("  Staff ")
	require.NoError(t, err)
	assert.Equal(t, LevelStaff, l)

	_, err = ParsePermissionLevel("owner")
	assert.Error(t, err)
}

func TestMaxLevel(t *testing.T) {
	assert.Equal(t, LevelStaff, MaxLevel(LevelViewer, LevelStaff))
	assert.Equal(t, LevelAdmin, MaxLevel(LevelAdmin, LevelContent))
	assert.Equal(t, LevelNone, MaxLevel(LevelNone, LevelNone))
}

func TestPrincipal_Key(t *testing.T) {
	assert.Equal(t, "discord:42", Principal{DiscordID: "42", Email: "a@b.co"}.Key())
	assert.Equal(t, "email:a@b.co", Principal{Email: "A@B.co"}.Key())
	assert.True(t, Principal{}.IsZero())
}

// --- Rule Tests ---

func TestRuleUpdate_ApplyKeepsAbsentFields(t *testing.T) {
	base := Rule{ID: uuid.New(), Title: "Old", Content: "body", Tags: []string{"a"}, IsPinned: true, Version: 3}

	next := RuleUpdate{}.Apply(base)
	assert.Equal(t, base, next)

	title := "New"
	pinned := false
	next = RuleUpdate{Title: &title, IsPinned: &pinned, Tags: []string{"b", "c"}}.Apply(base)
	assert.Equal(t, "New", next.Title)
	assert.Equal(t, "body", next.Content)
	assert.False(t, next.IsPinned)
	assert.Equal(t, []string{"b", "c"}, next.Tags)
}

func TestNewRuleChange(t *testing.T) {
	prev := Rule{ID: uuid.New(), Title: "T", Content: "C"}
	change := NewRuleChange(prev, prev, 2, "no-op", "mod")
	assert.Equal(t, prev.ID, change.RuleID)
	assert.Equal(t, 2, change.Version)
	assert.Equal(t, change.PreviousContent, change.NewContent)
	assert.NotNil(t, change.PreviousTags)
	assert.NotNil(t, change.NewTags)
}

func TestCreateRuleInput_Validate(t *testing.T) {
	assert.NoError(t, CreateRuleInput{Title: "x", Category: RuleCategoryRoleplay}.Validate())
	assert.Error(t, CreateRuleInput{Title: "", Category: RuleCategoryRoleplay}.Validate())
	assert.Error(t, CreateRuleInput{Title: "x", Category: "misc"}.Validate())
}

// --- Content Tests ---

func TestContentInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   ContentInput
		wantErr bool
	}{
		{"news ok", ContentInput{Type: ContentNews, Title: "t", NewsType: "update"}, false},
		{"event ok", ContentInput{Type: ContentEvent, Title: "t", Event: &EventDetails{EventType: "race"}}, false},
		{"bad type", ContentInput{Type: "blog", Title: "t"}, true},
		{"missing title", ContentInput{Type: ContentNews}, true},
		{"news with event metadata", ContentInput{Type: ContentNews, Title: "t", Event: &EventDetails{}}, true},
		{"event without metadata", ContentInput{Type: ContentEvent, Title: "t"}, true},
		{"event with news type", ContentInput{Type: ContentEvent, Title: "t", Event: &EventDetails{}, NewsType: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// --- Misc ---

func TestApplicationStatus_Valid(t *testing.T) {
	assert.True(t, ApplicationPending.Valid())
	assert.True(t, ApplicationAccepted.Valid())
	assert.True(t, ApplicationRejected.Valid())
	assert.False(t, ApplicationStatus("withdrawn").Valid())
}

func TestLogFilter_Normalize(t *testing.T) {
	f := LogFilter{}
	f.Normalize()
	assert.Equal(t, DefaultLogLimit, f.Limit)

	f = LogFilter{Limit: 10_000, Offset: -5}
	f.Normalize()
	assert.Equal(t, MaxLogLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
}

func TestLogInput_HasRequired(t *testing.T) {
	assert.True(t, LogInput{ServerID: "sv1", EventType: "player_join"}.HasRequired())
	assert.False(t, LogInput{ServerID: "sv1"}.HasRequired())
	assert.False(t, LogInput{EventType: "player_join"}.HasRequired())
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrNotFound("rule", "1"))
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Status)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestOutboxDraft_Topic(t *testing.T) {
	d := OutboxDraft{AggregateType: AggregateLog, EventType: "player_join"}
	assert.Equal(t, "odessarp.logs.player_join", d.Topic())
}
