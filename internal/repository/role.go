package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/odessarp/dashboard/internal/domain"
)

type roleRepo struct{}

// NewRoleRepository returns a pgx-backed RoleRepository.
func NewRoleRepository() RoleRepository {
	return &roleRepo{}
}

// ── discord_roles ──────────────────────────────────────────────

func (r *roleRepo) ListDiscordRoles(ctx context.Context, db DBTX) ([]domain.DiscordRole, error) {
	rows, err := db.Query(ctx, `
		SELECT role_id, role_name, permission_level, updated_at, updated_by
		FROM discord_roles ORDER BY role_name, role_id`)
	if err != nil {
		return nil, fmt.Errorf("list discord roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.DiscordRole{}
	for rows.Next() {
		var d domain.DiscordRole
		if err := rows.Scan(&d.RoleID, &d.RoleName, &d.PermissionLevel, &d.UpdatedAt, &d.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan discord role: %w", err)
		}
		roles = append(roles, d)
	}
	return roles, rows.Err()
}

func (r *roleRepo) FindDiscordRole(ctx context.Context, db DBTX, roleID string) (*domain.DiscordRole, error) {
	var d domain.DiscordRole
	err := db.QueryRow(ctx, `
		SELECT role_id, role_name, permission_level, updated_at, updated_by
		FROM discord_roles WHERE role_id = $1`, roleID,
	).Scan(&d.RoleID, &d.RoleName, &d.PermissionLevel, &d.UpdatedAt, &d.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find discord role: %w", err)
	}
	return &d, nil
}

func (r *roleRepo) UpsertDiscordRole(ctx context.Context, db DBTX, role *domain.DiscordRole) error {
	err := db.QueryRow(ctx, `
		INSERT INTO discord_roles (role_id, role_name, permission_level, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (role_id) DO UPDATE SET
		  role_name = EXCLUDED.role_name,
		  permission_level = EXCLUDED.permission_level,
		  updated_by = EXCLUDED.updated_by,
		  updated_at = now()
		RETURNING updated_at`,
		role.RoleID, role.RoleName, string(role.PermissionLevel), role.UpdatedBy,
	).Scan(&role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert discord role: %w", err)
	}
	return nil
}

func (r *roleRepo) DeleteDiscordRole(ctx context.Context, db DBTX, roleID string) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM discord_roles WHERE role_id = $1`, roleID)
	if err != nil {
		return false, fmt.Errorf("delete discord role: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *roleRepo) LevelsForRoles(ctx context.Context, db DBTX, roleIDs []string) (map[string]domain.PermissionLevel, error) {
	levels := make(map[string]domain.PermissionLevel, len(roleIDs))
	if len(roleIDs) == 0 {
		return levels, nil
	}
	rows, err := db.Query(ctx,
		`SELECT role_id, permission_level FROM discord_roles WHERE role_id = ANY($1)`, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("levels for roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var level domain.PermissionLevel
		if err := rows.Scan(&id, &level); err != nil {
			return nil, fmt.Errorf("scan role level: %w", err)
		}
		levels[id] = level
	}
	return levels, rows.Err()
}

// ── role_changes ───────────────────────────────────────────────

func (r *roleRepo) InsertRoleChange(ctx context.Context, db DBTX, c *domain.RoleChange) error {
	err := db.QueryRow(ctx, `
		INSERT INTO role_changes (role_id, role_name, previous_level, new_level, changed_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, changed_at`,
		c.RoleID, c.RoleName, levelPtr(c.PreviousLevel), levelPtr(c.NewLevel), c.ChangedBy,
	).Scan(&c.ID, &c.ChangedAt)
	if err != nil {
		return fmt.Errorf("insert role change: %w", err)
	}
	return nil
}

func (r *roleRepo) ListRoleChanges(ctx context.Context, db DBTX, limit int) ([]domain.RoleChange, error) {
	rows, err := db.Query(ctx, `
		SELECT id, role_id, role_name, previous_level, new_level, changed_by, changed_at
		FROM role_changes ORDER BY changed_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list role changes: %w", err)
	}
	defer rows.Close()

	changes := []domain.RoleChange{}
	for rows.Next() {
		var c domain.RoleChange
		var prev, next *string
		if err := rows.Scan(&c.ID, &c.RoleID, &c.RoleName, &prev, &next, &c.ChangedBy, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan role change: %w", err)
		}
		c.PreviousLevel = toLevel(prev)
		c.NewLevel = toLevel(next)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func levelPtr(l *domain.PermissionLevel) *string {
	if l == nil {
		return nil
	}
	s := string(*l)
	return &s
}

func toLevel(s *string) *domain.PermissionLevel {
	if s == nil {
		return nil
	}
	l := domain.PermissionLevel(*s)
	return &l
}

// ── user_roles ─────────────────────────────────────────────────

func (r *roleRepo) UserRoleIDs(ctx context.Context, db DBTX, discordID string) ([]string, error) {
	rows, err := db.Query(ctx,
		`SELECT role_id FROM user_roles WHERE discord_id = $1 ORDER BY role_id`, discordID)
	if err != nil {
		return nil, fmt.Errorf("user role ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *roleRepo) DeleteUserRoles(ctx context.Context, db DBTX, discordID string) error {
	if _, err := db.Exec(ctx, `DELETE FROM user_roles WHERE discord_id = $1`, discordID); err != nil {
		return fmt.Errorf("delete user roles: %w", err)
	}
	return nil
}

func (r *roleRepo) InsertUserRoles(ctx context.Context, db DBTX, discordID string, roleIDs []string) error {
	if len(roleIDs) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `
		INSERT INTO user_roles (discord_id, role_id)
		SELECT $1, r FROM unnest($2::text[]) AS r
		ON CONFLICT (discord_id, role_id) DO UPDATE SET synced_at = now()`, discordID, roleIDs)
	if err != nil {
		return fmt.Errorf("insert user roles: %w", err)
	}
	return nil
}

// ── user_roles_email ───────────────────────────────────────────

func (r *roleRepo) FindEmailRole(ctx context.Context, db DBTX, email string) (*domain.EmailRole, error) {
	var e domain.EmailRole
	err := db.QueryRow(ctx, `
		SELECT email, permission_level, created_at, updated_by
		FROM user_roles_email WHERE email = $1`, email,
	).Scan(&e.Email, &e.PermissionLevel, &e.CreatedAt, &e.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find email role: %w", err)
	}
	return &e, nil
}

func (r *roleRepo) ListEmailRoles(ctx context.Context, db DBTX) ([]domain.EmailRole, error) {
	rows, err := db.Query(ctx, `
		SELECT email, permission_level, created_at, updated_by
		FROM user_roles_email ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list email roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.EmailRole{}
	for rows.Next() {
		var e domain.EmailRole
		if err := rows.Scan(&e.Email, &e.PermissionLevel, &e.CreatedAt, &e.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan email role: %w", err)
		}
		roles = append(roles, e)
	}
	return roles, rows.Err()
}

func (r *roleRepo) UpsertEmailRole(ctx context.Context, db DBTX, role *domain.EmailRole) error {
	err := db.QueryRow(ctx, `
		INSERT INTO user_roles_email (email, permission_level, updated_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
		  permission_level = EXCLUDED.permission_level,
		  updated_by = EXCLUDED.updated_by
		RETURNING created_at`,
		role.Email, string(role.PermissionLevel), role.UpdatedBy,
	).Scan(&role.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert email role: %w", err)
	}
	return nil
}

func (r *roleRepo) DeleteEmailRole(ctx context.Context, db DBTX, email string) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM user_roles_email WHERE email = $1`, email)
	if err != nil {
		return false, fmt.Errorf("delete email role: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
