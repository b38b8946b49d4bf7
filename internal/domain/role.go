package domain

import "time"

// DiscordRole maps one Discord role ID to a permission level.
type DiscordRole struct {
	RoleID          string          `json:"role_id"`
	RoleName        string          `json:"role_name"`
	PermissionLevel PermissionLevel `json:"permission_level"`
	UpdatedAt       time.Time       `json:"updated_at"`
	UpdatedBy       string          `json:"updated_by"`
}

// RoleChange audits a change to a Discord role mapping.
type RoleChange struct {
	ID            int64            `json:"id"`
	RoleID        string           `json:"role_id"`
	RoleName      string           `json:"role_name"`
	PreviousLevel *PermissionLevel `json:"previous_level"`
	NewLevel      *PermissionLevel `json:"new_level"`
	ChangedBy     string           `json:"changed_by"`
	ChangedAt     time.Time        `json:"changed_at"`
}

// EmailRole grants a permission level to an email address, overriding Discord roles.
type EmailRole struct {
	Email           string          `json:"email"`
	PermissionLevel PermissionLevel `json:"permission_level"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedBy       string          `json:"updated_by"`
}

// UserRoleAssignment is one cached (discord_id, role_id) pair.
type UserRoleAssignment struct {
	DiscordID string    `json:"discord_id"`
	RoleID    string    `json:"role_id"`
	SyncedAt  time.Time `json:"synced_at"`
}

// GuildRole is a role as reported by Discord.
type GuildRole struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Position int    `json:"position"`
}

// GuildDetails summarizes the community Discord server.
type GuildDetails struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Icon        string      `json:"icon"`
	MemberCount int         `json:"member_count"`
	Roles       []GuildRole `json:"roles"`
}
