package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/odessarp/dashboard/internal/domain"
)

const ruleColumns = `id, badge, title, content, category, tags, is_pinned, created_at, updated_at, updated_by, version, order_index`

type ruleRepo struct{}

// NewRuleRepository returns a pgx-backed RuleRepository.
func NewRuleRepository() RuleRepository {
	return &ruleRepo{}
}

func scanRule(row pgx.Row) (*domain.Rule, error) {
	r := &domain.Rule{}
	err := row.Scan(&r.ID, &r.Badge, &r.Title, &r.Content, &r.Category, &r.Tags, &r.IsPinned,
		&r.CreatedAt, &r.UpdatedAt, &r.UpdatedBy, &r.Version, &r.OrderIndex)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ruleRepo) findOne(ctx context.Context, db DBTX, query string, id uuid.UUID) (*domain.Rule, error) {
	rule, err := scanRule(db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find rule: %w", err)
	}
	return rule, nil
}

func (r *ruleRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Rule, error) {
	return r.findOne(ctx, db, `SELECT `+ruleColumns+` FROM rules WHERE id = $1`, id)
}

func (r *ruleRepo) LockForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Rule, error) {
	return r.findOne(ctx, db, `SELECT `+ruleColumns+` FROM rules WHERE id = $1 FOR UPDATE`, id)
}

func (r *ruleRepo) List(ctx context.Context, db DBTX, category domain.RuleCategory) ([]domain.Rule, error) {
	rows, err := db.Query(ctx, `
		SELECT `+ruleColumns+` FROM rules
		WHERE ($1::text = '' OR category = $1::text)
		ORDER BY category, is_pinned DESC, order_index ASC, created_at ASC`, string(category))
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	rules := []domain.Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func (r *ruleRepo) NextOrderIndex(ctx context.Context, db DBTX, category domain.RuleCategory) (int, error) {
	// Held until the surrounding transaction ends, so concurrent appends to one
	// category take distinct indexes.
	if _, err := db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('rules:' || $1))`, string(category)); err != nil {
		return 0, fmt.Errorf("lock rule category: %w", err)
	}
	var next int
	err := db.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_index) + 1, 0) FROM rules WHERE category = $1`, string(category)).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next order index: %w", err)
	}
	return next, nil
}

func (r *ruleRepo) Create(ctx context.Context, db DBTX, rule *domain.Rule) error {
	if rule.Tags == nil {
		rule.Tags = []string{}
	}
	err := db.QueryRow(ctx, `
		INSERT INTO rules (id, badge, title, content, category, tags, is_pinned, updated_by, version, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		rule.ID, rule.Badge, rule.Title, rule.Content, string(rule.Category), rule.Tags,
		rule.IsPinned, rule.UpdatedBy, rule.Version, rule.OrderIndex,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

func (r *ruleRepo) Update(ctx context.Context, db DBTX, rule *domain.Rule) error {
	if rule.Tags == nil {
		rule.Tags = []string{}
	}
	err := db.QueryRow(ctx, `
		UPDATE rules SET
		  badge = $2, title = $3, content = $4, category = $5, tags = $6,
		  is_pinned = $7, updated_by = $8, version = $9, order_index = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		rule.ID, rule.Badge, rule.Title, rule.Content, string(rule.Category), rule.Tags,
		rule.IsPinned, rule.UpdatedBy, rule.Version, rule.OrderIndex,
	).Scan(&rule.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound("rule", rule.ID.String())
	}
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return nil
}

func (r *ruleRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM rules WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete rule: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ruleRepo) SetOrderIndex(ctx context.Context, db DBTX, id uuid.UUID, category domain.RuleCategory, index int) error {
	tag, err := db.Exec(ctx,
		`UPDATE rules SET order_index = $3 WHERE id = $1 AND category = $2`, id, string(category), index)
	if err != nil {
		return fmt.Errorf("reorder rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("rule", id.String())
	}
	return nil
}

func (r *ruleRepo) InsertChange(ctx context.Context, db DBTX, c *domain.RuleChange) error {
	err := db.QueryRow(ctx, `
		INSERT INTO rule_changes
		  (rule_id, previous_title, new_title, previous_content, new_content,
		   previous_tags, new_tags, previous_pinned, new_pinned, version, change_notes, changed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, changed_at`,
		c.RuleID, c.PreviousTitle, c.NewTitle, c.PreviousContent, c.NewContent,
		c.PreviousTags, c.NewTags, c.PreviousPinned, c.NewPinned, c.Version, c.ChangeNotes, c.ChangedBy,
	).Scan(&c.ID, &c.ChangedAt)
	if err != nil {
		return fmt.Errorf("insert rule change: %w", err)
	}
	return nil
}

func (r *ruleRepo) ListChanges(ctx context.Context, db DBTX, ruleID uuid.UUID) ([]domain.RuleChange, error) {
	rows, err := db.Query(ctx, `
		SELECT id, rule_id, previous_title, new_title, previous_content, new_content,
		       previous_tags, new_tags, previous_pinned, new_pinned, version, change_notes, changed_by, changed_at
		FROM rule_changes WHERE rule_id = $1
		ORDER BY version DESC`, ruleID)
	if err != nil {
		return nil, fmt.Errorf("list rule changes: %w", err)
	}
	defer rows.Close()

	changes := []domain.RuleChange{}
	for rows.Next() {
		var c domain.RuleChange
		if err := rows.Scan(&c.ID, &c.RuleID, &c.PreviousTitle, &c.NewTitle, &c.PreviousContent, &c.NewContent,
			&c.PreviousTags, &c.NewTags, &c.PreviousPinned, &c.NewPinned, &c.Version, &c.ChangeNotes,
			&c.ChangedBy, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan rule change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
