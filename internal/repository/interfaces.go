package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/odessarp/dashboard/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// LogRepository provides access to the append-only logs table.
type LogRepository interface {
	// Insert stores a new game event and returns the stored row.
	Insert(ctx context.Context, db DBTX, in domain.LogInput) (*domain.LogEntry, error)

	// FindByID returns a log row, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id int64) (*domain.LogEntry, error)

	// List returns rows matching the filter, newest first.
	List(ctx context.Context, db DBTX, f domain.LogFilter) ([]domain.LogEntry, error)

	// Facets returns the distinct filter values present in the table.
	Facets(ctx context.Context, db DBTX) (*domain.LogFacets, error)
}

// RuleRepository provides access to rules and rule_changes.
type RuleRepository interface {
	// FindByID returns a rule, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Rule, error)

	// LockForUpdate reads a rule with SELECT FOR UPDATE, or nil if not found.
	LockForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Rule, error)

	// List returns rules, optionally restricted to one category.
	List(ctx context.Context, db DBTX, category domain.RuleCategory) ([]domain.Rule, error)

	// NextOrderIndex returns max(order_index)+1 for the category, or 0 when empty.
	// It takes a transaction-scoped lock on the category, so db must be a transaction.
	NextOrderIndex(ctx context.Context, db DBTX, category domain.RuleCategory) (int, error)

	// Create inserts a rule and fills in generated columns.
	Create(ctx context.Context, db DBTX, rule *domain.Rule) error

	// Update overwrites the live row with rule's fields.
	Update(ctx context.Context, db DBTX, rule *domain.Rule) error

	// Delete hard-deletes a rule. Returns false when no row existed.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) (bool, error)

	// SetOrderIndex moves a rule within its category.
	SetOrderIndex(ctx context.Context, db DBTX, id uuid.UUID, category domain.RuleCategory, index int) error

	// InsertChange appends a history row.
	InsertChange(ctx context.Context, db DBTX, change *domain.RuleChange) error

	// ListChanges returns a rule's history, newest first.
	ListChanges(ctx context.Context, db DBTX, ruleID uuid.UUID) ([]domain.RuleChange, error)
}

// ContentRepository provides access to content_items and its side tables.
type ContentRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.ContentItem, error)
	List(ctx context.Context, db DBTX, contentType domain.ContentType) ([]domain.ContentItem, error)
	Create(ctx context.Context, db DBTX, item *domain.ContentItem) error
	Update(ctx context.Context, db DBTX, item *domain.ContentItem) error
	Delete(ctx context.Context, db DBTX, id uuid.UUID) (bool, error)

	// SaveMetadata writes the single metadata row matching item.Type.
	SaveMetadata(ctx context.Context, db DBTX, item *domain.ContentItem) error

	// ReplaceTags swaps the item's tag set.
	ReplaceTags(ctx context.Context, db DBTX, id uuid.UUID, tags []string) error
}

// RoleRepository provides access to discord_roles, role_changes, user_roles and user_roles_email.
type RoleRepository interface {
	ListDiscordRoles(ctx context.Context, db DBTX) ([]domain.DiscordRole, error)
	FindDiscordRole(ctx context.Context, db DBTX, roleID string) (*domain.DiscordRole, error)
	UpsertDiscordRole(ctx context.Context, db DBTX, role *domain.DiscordRole) error
	DeleteDiscordRole(ctx context.Context, db DBTX, roleID string) (bool, error)

	// LevelsForRoles returns the mapped level of every role ID that has a mapping.
	LevelsForRoles(ctx context.Context, db DBTX, roleIDs []string) (map[string]domain.PermissionLevel, error)

	InsertRoleChange(ctx context.Context, db DBTX, change *domain.RoleChange) error
	ListRoleChanges(ctx context.Context, db DBTX, limit int) ([]domain.RoleChange, error)

	// UserRoleIDs returns the cached Discord role IDs of a user.
	UserRoleIDs(ctx context.Context, db DBTX, discordID string) ([]string, error)
	DeleteUserRoles(ctx context.Context, db DBTX, discordID string) error
	InsertUserRoles(ctx context.Context, db DBTX, discordID string, roleIDs []string) error

	// FindEmailRole returns the email override, or nil if none.
	FindEmailRole(ctx context.Context, db DBTX, email string) (*domain.EmailRole, error)
	ListEmailRoles(ctx context.Context, db DBTX) ([]domain.EmailRole, error)
	UpsertEmailRole(ctx context.Context, db DBTX, role *domain.EmailRole) error
	DeleteEmailRole(ctx context.Context, db DBTX, email string) (bool, error)
}

// ApplicationRepository provides access to job types, questions, applications and answers.
type ApplicationRepository interface {
	ListJobTypes(ctx context.Context, db DBTX) ([]domain.JobType, error)
	FindJobType(ctx context.Context, db DBTX, id int64) (*domain.JobType, error)
	Create(ctx context.Context, db DBTX, app *domain.JobApplication) error
	InsertAnswers(ctx context.Context, db DBTX, appID uuid.UUID, answers map[int64]string) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.JobApplication, error)
	List(ctx context.Context, db DBTX, f domain.ApplicationFilter) ([]domain.JobApplication, error)
	Answers(ctx context.Context, db DBTX, appID uuid.UUID) ([]domain.ApplicationAnswer, error)
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.ApplicationStatus, reviewer, notes string) (bool, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the source row).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events that are due for an attempt, in insertion order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps published_at on the given sequence IDs.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error

	// MarkFailed counts a failed attempt on each ID and pushes its next attempt back
	// exponentially, capped at OutboxMaxBackoff.
	MarkFailed(ctx context.Context, db DBTX, ids []int64) error
}
