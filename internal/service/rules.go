package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
)

const (
	rulesCachePrefix = "rules:"
	rulesCacheTTL    = 5 * time.Minute
)

func rulesListKey(category domain.RuleCategory) string {
	if category == "" {
		return rulesCachePrefix + "list:all"
	}
	return rulesCachePrefix + "list:" + string(category)
}

// RuleService manages the versioned rulebook.
type RuleService struct {
	db     repository.DBTX
	tx     repository.TxRunner
	rules  repository.RuleRepository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewRuleService creates a new RuleService.
func NewRuleService(db repository.DBTX, tx repository.TxRunner, rules repository.RuleRepository, c *cache.Cache, logger *slog.Logger) *RuleService {
	return &RuleService{db: db, tx: tx, rules: rules, cache: c, logger: logger}
}

// List returns the rulebook, optionally for one category.
func (s *RuleService) List(ctx context.Context, category domain.RuleCategory) ([]domain.Rule, error) {
	if category != "" && !category.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("invalid rule category: %q", category))
	}
	rules, err := cache.Fetch(ctx, s.cache, rulesListKey(category), rulesCacheTTL, func(ctx context.Context) ([]domain.Rule, error) {
		return s.rules.List(ctx, s.db, category)
	})
	if err != nil {
		return nil, domain.ErrInternal("list rules", err)
	}
	return rules, nil
}

func (s *RuleService) Get(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	r, err := s.rules.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find rule", err)
	}
	if r == nil {
		return nil, domain.ErrNotFound("rule", id.String())
	}
	return r, nil
}

// Changes returns a rule's edit history, newest first.
func (s *RuleService) Changes(ctx context.Context, id uuid.UUID) ([]domain.RuleChange, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	changes, err := s.rules.ListChanges(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("list rule changes", err)
	}
	return changes, nil
}

// Create appends a rule at the end of its category at version 1.
func (s *RuleService) Create(ctx context.Context, in domain.CreateRuleInput, actor string) (*domain.Rule, error) {
	if err := in.Validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	rule := &domain.Rule{
		ID:        uuid.New(),
		Badge:     in.Badge,
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Tags:      tags,
		IsPinned:  in.IsPinned,
		UpdatedBy: actor,
		Version:   1,
	}

	err := s.tx.InTx(ctx, func(tx repository.DBTX) error {
		next, err := s.rules.NextOrderIndex(ctx, tx, in.Category)
		if err != nil {
			return err
		}
		rule.OrderIndex = next
		return s.rules.Create(ctx, tx, rule)
	})
	if err != nil {
		return nil, wrapErr("create rule", err)
	}

	s.invalidate(ctx)
	s.logger.Info("rule created", "rule_id", rule.ID, "category", rule.Category, "order_index", rule.OrderIndex, "by", actor)
	return rule, nil
}

// Update applies a partial edit. Every call bumps the version by one and records
// exactly one change row, even when the edit carries no fields.
func (s *RuleService) Update(ctx context.Context, id uuid.UUID, upd domain.RuleUpdate, actor string) (*domain.Rule, error) {
	if upd.Category != nil && !upd.Category.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("invalid rule category: %q", *upd.Category))
	}
	if upd.Title != nil && *upd.Title == "" {
		return nil, domain.ErrValidation("title cannot be empty")
	}

	var updated domain.Rule
	err := s.tx.InTx(ctx, func(tx repository.DBTX) error {
		cur, err := s.rules.LockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound("rule", id.String())
		}
		if upd.ExpectedVersion != nil && *upd.ExpectedVersion != cur.Version {
			return domain.ErrConflict(fmt.Sprintf("rule was modified: expected version %d, current version %d",
				*upd.ExpectedVersion, cur.Version))
		}

		next := upd.Apply(*cur)
		next.Version = cur.Version + 1
		next.UpdatedBy = actor
		if next.Category != cur.Category {
			idx, err := s.rules.NextOrderIndex(ctx, tx, next.Category)
			if err != nil {
				return err
			}
			next.OrderIndex = idx
		}

		change := domain.NewRuleChange(*cur, next, next.Version, upd.ChangeNotes, actor)
		if err := s.rules.InsertChange(ctx, tx, &change); err != nil {
			return err
		}
		if err := s.rules.Update(ctx, tx, &next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, wrapErr("update rule", err)
	}

	s.invalidate(ctx)
	s.logger.Info("rule updated", "rule_id", id, "version", updated.Version, "by", actor)
	return &updated, nil
}

// Delete removes a rule and its history.
func (s *RuleService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	ok, err := s.rules.Delete(ctx, s.db, id)
	if err != nil {
		return domain.ErrInternal("delete rule", err)
	}
	if !ok {
		return domain.ErrNotFound("rule", id.String())
	}
	s.invalidate(ctx)
	s.logger.Info("rule deleted", "rule_id", id, "by", actor)
	return nil
}

// Reorder sets order_index within a category to each ID's position in ids.
func (s *RuleService) Reorder(ctx context.Context, category domain.RuleCategory, ids []uuid.UUID, actor string) error {
	if !category.Valid() {
		return domain.ErrValidation(fmt.Sprintf("invalid rule category: %q", category))
	}
	if len(ids) == 0 {
		return domain.ErrValidation("ids are required")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return domain.ErrValidation("duplicate rule id " + id.String())
		}
		seen[id] = struct{}{}
	}

	err := s.tx.InTx(ctx, func(tx repository.DBTX) error {
		for i, id := range ids {
			if err := s.rules.SetOrderIndex(ctx, tx, id, category, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapErr("reorder rules", err)
	}
	s.invalidate(ctx)
	s.logger.Info("rules reordered", "category", category, "count", len(ids), "by", actor)
	return nil
}

func (s *RuleService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, rulesCachePrefix); err != nil {
		s.logger.Warn("rules cache invalidation failed", "error", err)
	}
}
