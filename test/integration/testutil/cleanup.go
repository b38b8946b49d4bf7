//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates every application table.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		// Applications
		"application_answers",
		"job_applications",
		"job_questions",
		"job_types",

		// Content
		"content_tags",
		"event_metadata",
		"news_metadata",
		"content_items",

		// Rules
		"rule_changes",
		"rules",

		// Permissions
		"role_changes",
		"discord_roles",
		"user_roles",
		"user_roles_email",

		// Ingestion
		"event_outbox",
		"logs",
	}

	for _, table := range tables {
		_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" RESTART IDENTITY CASCADE")
	}
}
