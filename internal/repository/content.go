package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/odessarp/dashboard/internal/domain"
)

// contentSelect joins the item with whichever metadata row exists and aggregates its tags.
const contentSelect = `
	SELECT c.id, c.type, c.title, c.description, c.content, c.is_pinned, c.category,
	       c.created_by, c.created_at, c.last_updated, c.updated_by,
	       COALESCE((SELECT array_agg(t.tag ORDER BY t.tag) FROM content_tags t WHERE t.content_id = c.id), '{}') AS tags,
	       n.news_type,
	       e.content_id IS NOT NULL AS has_event, e.event_type, e.event_date, e.location, e.address
	FROM content_items c
	LEFT JOIN news_metadata n ON n.content_id = c.id
	LEFT JOIN event_metadata e ON e.content_id = c.id`

type contentRepo struct{}

// NewContentRepository returns a pgx-backed ContentRepository.
func NewContentRepository() ContentRepository {
	return &contentRepo{}
}

func scanContent(row pgx.Row) (*domain.ContentItem, error) {
	var (
		item                         domain.ContentItem
		hasEvent                     bool
		eventType, location, address *string
		ev                           domain.EventDetails
	)
	err := row.Scan(&item.ID, &item.Type, &item.Title, &item.Description, &item.Content,
		&item.IsPinned, &item.Category, &item.CreatedBy, &item.CreatedAt, &item.LastUpdated,
		&item.UpdatedBy, &item.Tags, &item.NewsType,
		&hasEvent, &eventType, &ev.EventDate, &location, &address)
	if err != nil {
		return nil, err
	}
	if hasEvent {
		ev.EventType = deref(eventType)
		ev.Location = deref(location)
		ev.Address = deref(address)
		item.Event = &ev
	}
	return &item, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *contentRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.ContentItem, error) {
	item, err := scanContent(db.QueryRow(ctx, contentSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content: %w", err)
	}
	return item, nil
}

func (r *contentRepo) List(ctx context.Context, db DBTX, contentType domain.ContentType) ([]domain.ContentItem, error) {
	rows, err := db.Query(ctx, contentSelect+`
		WHERE ($1::text = '' OR c.type = $1::text)
		ORDER BY c.is_pinned DESC, c.created_at DESC`, string(contentType))
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	items := []domain.ContentItem{}
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *contentRepo) Create(ctx context.Context, db DBTX, item *domain.ContentItem) error {
	err := db.QueryRow(ctx, `
		INSERT INTO content_items (id, type, title, description, content, is_pinned, category, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, last_updated`,
		item.ID, string(item.Type), item.Title, item.Description, item.Content,
		item.IsPinned, item.Category, item.CreatedBy, item.UpdatedBy,
	).Scan(&item.CreatedAt, &item.LastUpdated)
	if err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

func (r *contentRepo) Update(ctx context.Context, db DBTX, item *domain.ContentItem) error {
	err := db.QueryRow(ctx, `
		UPDATE content_items SET
		  title = $2, description = $3, content = $4, is_pinned = $5, category = $6,
		  updated_by = $7, last_updated = now()
		WHERE id = $1
		RETURNING last_updated`,
		item.ID, item.Title, item.Description, item.Content, item.IsPinned, item.Category, item.UpdatedBy,
	).Scan(&item.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound("content", item.ID.String())
	}
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

func (r *contentRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM content_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete content: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *contentRepo) SaveMetadata(ctx context.Context, db DBTX, item *domain.ContentItem) error {
	switch item.Type {
	case domain.ContentNews:
		if _, err := db.Exec(ctx, `DELETE FROM event_metadata WHERE content_id = $1`, item.ID); err != nil {
			return fmt.Errorf("clear event metadata: %w", err)
		}
		_, err := db.Exec(ctx, `
			INSERT INTO news_metadata (content_id, news_type) VALUES ($1, $2)
			ON CONFLICT (content_id) DO UPDATE SET news_type = EXCLUDED.news_type`,
			item.ID, deref(item.NewsType))
		if err != nil {
			return fmt.Errorf("save news metadata: %w", err)
		}
	case domain.ContentEvent:
		if _, err := db.Exec(ctx, `DELETE FROM news_metadata WHERE content_id = $1`, item.ID); err != nil {
			return fmt.Errorf("clear news metadata: %w", err)
		}
		ev := item.Event
		if ev == nil {
			ev = &domain.EventDetails{}
		}
		_, err := db.Exec(ctx, `
			INSERT INTO event_metadata (content_id, event_type, event_date, location, address)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (content_id) DO UPDATE SET
			  event_type = EXCLUDED.event_type, event_date = EXCLUDED.event_date,
			  location = EXCLUDED.location, address = EXCLUDED.address`,
			item.ID, ev.EventType, ev.EventDate, ev.Location, ev.Address)
		if err != nil {
			return fmt.Errorf("save event metadata: %w", err)
		}
	default:
		return fmt.Errorf("unknown content type %q", item.Type)
	}
	return nil
}

func (r *contentRepo) ReplaceTags(ctx context.Context, db DBTX, id uuid.UUID, tags []string) error {
	if _, err := db.Exec(ctx, `DELETE FROM content_tags WHERE content_id = $1`, id); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	if len(tags) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `
		INSERT INTO content_tags (content_id, tag)
		SELECT $1, t FROM unnest($2::text[]) AS t
		ON CONFLICT DO NOTHING`, id, tags)
	if err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}
