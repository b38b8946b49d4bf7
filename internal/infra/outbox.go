package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/odessarp/dashboard/internal/repository"
)

// Publisher sends one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxPoller drains event_outbox into the publisher.
type OutboxPoller struct {
	db        repository.DBTX
	outbox    repository.OutboxRepository
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(db repository.DBTX, outbox repository.OutboxRepository, publisher Publisher, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		db:        db,
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		interval:  500 * time.Millisecond,
		batchSize: 100,
	}
}

// WithBatch overrides the polling interval and batch size. Non-positive values keep the defaults.
func (p *OutboxPoller) WithBatch(interval time.Duration, size int) *OutboxPoller {
	if interval > 0 {
		p.interval = interval
	}
	if size > 0 {
		p.batchSize = size
	}
	return p
}

// Start begins polling in a goroutine. Stops when ctx is cancelled.
func (p *OutboxPoller) Start(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("outbox poller stopped")
				return
			case <-ticker.C:
				if _, err := p.Poll(ctx); err != nil {
					p.logger.Error("outbox poll error", "error", err)
				}
			}
		}
	}()
}

// Poll publishes one batch and returns how many events were marked published.
// Events whose publish fails stay in the outbox but are backed off, so a run of
// failing events cannot hold the head of the queue.
func (p *OutboxPoller) Poll(ctx context.Context) (int, error) {
	events, err := p.outbox.FetchUnpublished(ctx, p.db, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	published := make([]int64, 0, len(events))
	var failed []int64
	for _, e := range events {
		msg, err := json.Marshal(e)
		if err != nil {
			p.logger.Error("marshal outbox event", "event_id", e.EventID, "error", err)
			failed = append(failed, e.SeqID)
			continue
		}
		if err := p.publisher.Publish(ctx, e.Topic(), []byte(e.PartitionKey), msg); err != nil {
			p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
			failed = append(failed, e.SeqID)
			continue
		}
		published = append(published, e.SeqID)
	}

	if err := p.outbox.MarkPublished(ctx, p.db, published); err != nil {
		return 0, err
	}
	if len(failed) > 0 {
		if err := p.outbox.MarkFailed(ctx, p.db, failed); err != nil {
			p.logger.Error("outbox back-off failed", "event_ids", failed, "error", err)
		}
	}

	p.logger.Debug("outbox poll complete", "published", len(published), "failed", len(failed))
	return len(published), nil
}
