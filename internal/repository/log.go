package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/odessarp/dashboard/internal/domain"
)

const logColumns = `id, created_at, server_id, event_type, category, type, player_id, player_name, discord_id, details`

type logRepo struct{}

// NewLogRepository returns a pgx-backed LogRepository.
func NewLogRepository() LogRepository {
	return &logRepo{}
}

func scanLog(row pgx.Row) (*domain.LogEntry, error) {
	e := &domain.LogEntry{}
	err := row.Scan(&e.ID, &e.CreatedAt, &e.ServerID, &e.EventType, &e.Category, &e.Type,
		&e.PlayerID, &e.PlayerName, &e.DiscordID, &e.Details)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Insert stores a game event. Absent details are stored as an empty object.
func (r *logRepo) Insert(ctx context.Context, db DBTX, in domain.LogInput) (*domain.LogEntry, error) {
	details := in.Details
	if len(details) == 0 || string(details) == "null" {
		details = json.RawMessage(`{}`)
	}
	row := db.QueryRow(ctx, `
		INSERT INTO logs (server_id, event_type, category, type, player_id, player_name, discord_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+logColumns,
		in.ServerID, in.EventType, in.Category, in.Type, in.PlayerID, in.PlayerName, in.DiscordID, details)
	e, err := scanLog(row)
	if err != nil {
		return nil, fmt.Errorf("insert log: %w", err)
	}
	return e, nil
}

func (r *logRepo) FindByID(ctx context.Context, db DBTX, id int64) (*domain.LogEntry, error) {
	e, err := scanLog(db.QueryRow(ctx, `SELECT `+logColumns+` FROM logs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find log: %w", err)
	}
	return e, nil
}

func (r *logRepo) List(ctx context.Context, db DBTX, f domain.LogFilter) ([]domain.LogEntry, error) {
	f.Normalize()

	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}
	if f.ServerID != "" {
		add("server_id = ?", f.ServerID)
	}
	if f.EventType != "" {
		add("event_type = ?", f.EventType)
	}
	if f.Category != "" {
		add("category = ?", f.Category)
	}
	if f.Type != "" {
		add("type = ?", f.Type)
	}
	if f.Player != "" {
		// Substring match on the name is literal: % and _ are not wildcards.
		add("(player_id = ? OR discord_id = ? OR strpos(lower(player_name), lower(?)) > 0)", f.Player)
	}
	if f.Since != nil {
		add("created_at >= ?", *f.Since)
	}
	if f.Until != nil {
		add("created_at < ?", *f.Until)
	}

	query := `SELECT ` + logColumns + ` FROM logs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	entries := []domain.LogEntry{}
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *logRepo) Facets(ctx context.Context, db DBTX) (*domain.LogFacets, error) {
	facets := &domain.LogFacets{}
	err := db.QueryRow(ctx, `
		SELECT
		  COALESCE(ARRAY(SELECT DISTINCT server_id FROM logs ORDER BY 1), '{}'),
		  COALESCE(ARRAY(SELECT DISTINCT event_type FROM logs ORDER BY 1), '{}'),
		  COALESCE(ARRAY(SELECT DISTINCT category FROM logs WHERE category IS NOT NULL ORDER BY 1), '{}')`,
	).Scan(&facets.ServerIDs, &facets.EventTypes, &facets.Categories)
	if err != nil {
		return nil, fmt.Errorf("log facets: %w", err)
	}
	return facets, nil
}
