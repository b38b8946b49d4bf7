package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
)

const contentCachePrefix = "content:"

func contentListKey(t domain.ContentType) string {
	if t == "" {
		return contentCachePrefix + "list:all"
	}
	return contentCachePrefix + "list:" + string(t)
}

// ContentService manages news posts and events.
type ContentService struct {
	db      repository.DBTX
	tx      repository.TxRunner
	content repository.ContentRepository
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewContentService creates a new ContentService.
func NewContentService(db repository.DBTX, tx repository.TxRunner, content repository.ContentRepository, c *cache.Cache, logger *slog.Logger) *ContentService {
	return &ContentService{db: db, tx: tx, content: content, cache: c, logger: logger}
}

func (s *ContentService) List(ctx context.Context, t domain.ContentType) ([]domain.ContentItem, error) {
	if t != "" && !t.Valid() {
		return nil, domain.ErrValidation("invalid content type: " + string(t))
	}
	items, err := cache.Fetch(ctx, s.cache, contentListKey(t), 5*time.Minute, func(ctx context.Context) ([]domain.ContentItem, error) {
		return s.content.List(ctx, s.db, t)
	})
	if err != nil {
		return nil, domain.ErrInternal("list content", err)
	}
	return items, nil
}

func (s *ContentService) Get(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	item, err := s.content.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find content", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound("content", id.String())
	}
	return item, nil
}

// Create writes the item, its single metadata row and its tags together.
func (s *ContentService) Create(ctx context.Context, in domain.ContentInput, actor string) (*domain.ContentItem, error) {
	if err := in.Validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	item := &domain.ContentItem{
		ID:        uuid.New(),
		CreatedBy: actor,
		UpdatedBy: actor,
	}
	applyContentInput(item, in)

	err := s.tx.InTx(ctx, func(tx repository.DBTX) error {
		if err := s.content.Create(ctx, tx, item); err != nil {
			return err
		}
		if err := s.content.SaveMetadata(ctx, tx, item); err != nil {
			return err
		}
		return s.content.ReplaceTags(ctx, tx, item.ID, item.Tags)
	})
	if err != nil {
		return nil, wrapErr("create content", err)
	}

	s.invalidate(ctx)
	s.logger.Info("content created", "content_id", item.ID, "type", item.Type, "by", actor)
	return item, nil
}

// Update overwrites the item's fields, metadata and tags. The type cannot change.
func (s *ContentService) Update(ctx context.Context, id uuid.UUID, in domain.ContentInput, actor string) (*domain.ContentItem, error) {
	var item *domain.ContentItem
	err := s.tx.InTx(ctx, func(tx repository.DBTX) error {
		cur, err := s.content.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound("content", id.String())
		}
		if in.Type == "" {
			in.Type = cur.Type
		}
		if in.Type != cur.Type {
			return domain.ErrValidation("content type cannot be changed")
		}
		if err := in.Validate(); err != nil {
			return domain.ErrValidation(err.Error())
		}

		applyContentInput(cur, in)
		cur.UpdatedBy = actor
		if err := s.content.Update(ctx, tx, cur); err != nil {
			return err
		}
		if err := s.content.SaveMetadata(ctx, tx, cur); err != nil {
			return err
		}
		if err := s.content.ReplaceTags(ctx, tx, cur.ID, cur.Tags); err != nil {
			return err
		}
		item = cur
		return nil
	})
	if err != nil {
		return nil, wrapErr("update content", err)
	}

	s.invalidate(ctx)
	s.logger.Info("content updated", "content_id", id, "by", actor)
	return item, nil
}

func (s *ContentService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	ok, err := s.content.Delete(ctx, s.db, id)
	if err != nil {
		return domain.ErrInternal("delete content", err)
	}
	if !ok {
		return domain.ErrNotFound("content", id.String())
	}
	s.invalidate(ctx)
	s.logger.Info("content deleted", "content_id", id, "by", actor)
	return nil
}

func (s *ContentService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, contentCachePrefix); err != nil {
		s.logger.Warn("content cache invalidation failed", "error", err)
	}
}

func applyContentInput(item *domain.ContentItem, in domain.ContentInput) {
	item.Type = in.Type
	item.Title = in.Title
	item.Description = in.Description
	item.Content = in.Content
	item.IsPinned = in.IsPinned
	item.Category = in.Category
	item.Tags = dedupe(in.Tags)
	item.NewsType = nil
	item.Event = nil
	switch in.Type {
	case domain.ContentNews:
		nt := in.NewsType
		item.NewsType = &nt
	case domain.ContentEvent:
		ev := *in.Event
		item.Event = &ev
	}
}
