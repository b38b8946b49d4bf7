// Package repotest provides testify mocks of the repository interfaces and a
// transaction runner that needs no database. Mock expectations omit the
// context and DBTX arguments.
package repotest

import (
	"context"

	"github.com/google/uuid"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
	"github.com/stretchr/testify/mock"
)

// FakeTx runs fn with a nil DBTX and counts invocations.
type FakeTx struct {
	Calls int
}

func (f *FakeTx) InTx(_ context.Context, fn func(tx repository.DBTX) error) error {
	f.Calls++
	return fn(nil)
}

// ── Logs ───────────────────────────────────────────────────────

type MockLogRepository struct{ mock.Mock }

func (m *MockLogRepository) Insert(_ context.Context, _ repository.DBTX, in domain.LogInput) (*domain.LogEntry, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LogEntry), args.Error(1)
}

func (m *MockLogRepository) FindByID(_ context.Context, _ repository.DBTX, id int64) (*domain.LogEntry, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LogEntry), args.Error(1)
}

func (m *MockLogRepository) List(_ context.Context, _ repository.DBTX, f domain.LogFilter) ([]domain.LogEntry, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LogEntry), args.Error(1)
}

func (m *MockLogRepository) Facets(_ context.Context, _ repository.DBTX) (*domain.LogFacets, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LogFacets), args.Error(1)
}

// ── Rules ──────────────────────────────────────────────────────

type MockRuleRepository struct{ mock.Mock }

func (m *MockRuleRepository) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Rule, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rule), args.Error(1)
}

func (m *MockRuleRepository) LockForUpdate(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Rule, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rule), args.Error(1)
}

func (m *MockRuleRepository) List(_ context.Context, _ repository.DBTX, category domain.RuleCategory) ([]domain.Rule, error) {
	args := m.Called(category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rule), args.Error(1)
}

func (m *MockRuleRepository) NextOrderIndex(_ context.Context, _ repository.DBTX, category domain.RuleCategory) (int, error) {
	args := m.Called(category)
	return args.Int(0), args.Error(1)
}

func (m *MockRuleRepository) Create(_ context.Context, _ repository.DBTX, rule *domain.Rule) error {
	return m.Called(rule).Error(0)
}

func (m *MockRuleRepository) Update(_ context.Context, _ repository.DBTX, rule *domain.Rule) error {
	return m.Called(rule).Error(0)
}

func (m *MockRuleRepository) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRuleRepository) SetOrderIndex(_ context.Context, _ repository.DBTX, id uuid.UUID, category domain.RuleCategory, index int) error {
	return m.Called(id, category, index).Error(0)
}

func (m *MockRuleRepository) InsertChange(_ context.Context, _ repository.DBTX, change *domain.RuleChange) error {
	return m.Called(change).Error(0)
}

func (m *MockRuleRepository) ListChanges(_ context.Context, _ repository.DBTX, ruleID uuid.UUID) ([]domain.RuleChange, error) {
	args := m.Called(ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RuleChange), args.Error(1)
}

// ── Content ────────────────────────────────────────────────────

type MockContentRepository struct{ mock.Mock }

func (m *MockContentRepository) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.ContentItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentItem), args.Error(1)
}

func (m *MockContentRepository) List(_ context.Context, _ repository.DBTX, t domain.ContentType) ([]domain.ContentItem, error) {
	args := m.Called(t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentItem), args.Error(1)
}

func (m *MockContentRepository) Create(_ context.Context, _ repository.DBTX, item *domain.ContentItem) error {
	return m.Called(item).Error(0)
}

func (m *MockContentRepository) Update(_ context.Context, _ repository.DBTX, item *domain.ContentItem) error {
	return m.Called(item).Error(0)
}

func (m *MockContentRepository) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockContentRepository) SaveMetadata(_ context.Context, _ repository.DBTX, item *domain.ContentItem) error {
	return m.Called(item).Error(0)
}

func (m *MockContentRepository) ReplaceTags(_ context.Context, _ repository.DBTX, id uuid.UUID, tags []string) error {
	return m.Called(id, tags).Error(0)
}

// ── Roles ──────────────────────────────────────────────────────

type MockRoleRepository struct{ mock.Mock }

func (m *MockRoleRepository) ListDiscordRoles(_ context.Context, _ repository.DBTX) ([]domain.DiscordRole, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DiscordRole), args.Error(1)
}

func (m *MockRoleRepository) FindDiscordRole(_ context.Context, _ repository.DBTX, roleID string) (*domain.DiscordRole, error) {
	args := m.Called(roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscordRole), args.Error(1)
}

func (m *MockRoleRepository) UpsertDiscordRole(_ context.Context, _ repository.DBTX, role *domain.DiscordRole) error {
	return m.Called(role).Error(0)
}

func (m *MockRoleRepository) DeleteDiscordRole(_ context.Context, _ repository.DBTX, roleID string) (bool, error) {
	args := m.Called(roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleRepository) LevelsForRoles(_ context.Context, _ repository.DBTX, roleIDs []string) (map[string]domain.PermissionLevel, error) {
	args := m.Called(roleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.PermissionLevel), args.Error(1)
}

func (m *MockRoleRepository) InsertRoleChange(_ context.Context, _ repository.DBTX, change *domain.RoleChange) error {
	return m.Called(change).Error(0)
}

func (m *MockRoleRepository) ListRoleChanges(_ context.Context, _ repository.DBTX, limit int) ([]domain.RoleChange, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoleChange), args.Error(1)
}

func (m *MockRoleRepository) UserRoleIDs(_ context.Context, _ repository.DBTX, discordID string) ([]string, error) {
	args := m.Called(discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRoleRepository) DeleteUserRoles(_ context.Context, _ repository.DBTX, discordID string) error {
	return m.Called(discordID).Error(0)
}

func (m *MockRoleRepository) InsertUserRoles(_ context.Context, _ repository.DBTX, discordID string, roleIDs []string) error {
	return m.Called(discordID, roleIDs).Error(0)
}

func (m *MockRoleRepository) FindEmailRole(_ context.Context, _ repository.DBTX, email string) (*domain.EmailRole, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailRole), args.Error(1)
}

func (m *MockRoleRepository) ListEmailRoles(_ context.Context, _ repository.DBTX) ([]domain.EmailRole, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmailRole), args.Error(1)
}

func (m *MockRoleRepository) UpsertEmailRole(_ context.Context, _ repository.DBTX, role *domain.EmailRole) error {
	return m.Called(role).Error(0)
}

func (m *MockRoleRepository) DeleteEmailRole(_ context.Context, _ repository.DBTX, email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

// ── Applications ───────────────────────────────────────────────

type MockApplicationRepository struct{ mock.Mock }

func (m *MockApplicationRepository) ListJobTypes(_ context.Context, _ repository.DBTX) ([]domain.JobType, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobType), args.Error(1)
}

func (m *MockApplicationRepository) FindJobType(_ context.Context, _ repository.DBTX, id int64) (*domain.JobType, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobType), args.Error(1)
}

func (m *MockApplicationRepository) Create(_ context.Context, _ repository.DBTX, app *domain.JobApplication) error {
	return m.Called(app).Error(0)
}

func (m *MockApplicationRepository) InsertAnswers(_ context.Context, _ repository.DBTX, appID uuid.UUID, answers map[int64]string) error {
	return m.Called(appID, answers).Error(0)
}

func (m *MockApplicationRepository) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.JobApplication, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobApplication), args.Error(1)
}

func (m *MockApplicationRepository) List(_ context.Context, _ repository.DBTX, f domain.ApplicationFilter) ([]domain.JobApplication, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobApplication), args.Error(1)
}

func (m *MockApplicationRepository) Answers(_ context.Context, _ repository.DBTX, appID uuid.UUID) ([]domain.ApplicationAnswer, error) {
	args := m.Called(appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApplicationAnswer), args.Error(1)
}

func (m *MockApplicationRepository) UpdateStatus(_ context.Context, _ repository.DBTX, id uuid.UUID, status domain.ApplicationStatus, reviewer, notes string) (bool, error) {
	args := m.Called(id, status, reviewer, notes)
	return args.Bool(0), args.Error(1)
}

// ── Outbox ─────────────────────────────────────────────────────

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	return m.Called(draft).Error(0)
}

func (m *MockOutboxRepository) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.OutboxDraft, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboxDraft), args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(_ context.Context, _ repository.DBTX, ids []int64) error {
	return m.Called(ids).Error(0)
}

func (m *MockOutboxRepository) MarkFailed(_ context.Context, _ repository.DBTX, ids []int64) error {
	return m.Called(ids).Error(0)
}

var (
	_ repository.TxRunner              = (*FakeTx)(nil)
	_ repository.LogRepository         = (*MockLogRepository)(nil)
	_ repository.RuleRepository        = (*MockRuleRepository)(nil)
	_ repository.ContentRepository     = (*MockContentRepository)(nil)
	_ repository.RoleRepository        = (*MockRoleRepository)(nil)
	_ repository.ApplicationRepository = (*MockApplicationRepository)(nil)
	_ repository.OutboxRepository      = (*MockOutboxRepository)(nil)
)
