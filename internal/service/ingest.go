package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
)

// IngestService stores game events posted by the FiveM servers.
type IngestService struct {
	tx     repository.TxRunner
	logs   repository.LogRepository
	outbox repository.OutboxRepository
	logger *slog.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(tx repository.TxRunner, logs repository.LogRepository, outbox repository.OutboxRepository, logger *slog.Logger) *IngestService {
	return &IngestService{tx: tx, logs: logs, outbox: outbox, logger: logger}
}

// Ingest writes one logs row and its outbox event in a single transaction.
func (s *IngestService) Ingest(ctx context.Context, in domain.LogInput) (*domain.LogEntry, error) {
	if !in.HasRequired() {
		return nil, domain.ErrValidation("Missing required fields")
	}

	var entry *domain.LogEntry
	err := s.tx.InTx(ctx, func(tx repository.DBTX) error {
		var err error
		entry, err = s.logs.Insert(ctx, tx, in)
		if err != nil {
			return err
		}
		draft, err := logEvent(entry)
		if err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, draft)
	})
	if err != nil {
		s.logger.Error("log ingest failed",
			"server_id", in.ServerID,
			"event_type", in.EventType,
			"error", err,
		)
		return nil, domain.ErrInternal("Failed to insert log", err)
	}
	return entry, nil
}

func logEvent(entry *domain.LogEntry) (domain.OutboxDraft, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return domain.OutboxDraft{}, err
	}
	occurred := entry.CreatedAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return domain.OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: domain.AggregateLog,
		AggregateID:   strconv.FormatInt(entry.ID, 10),
		EventType:     topicSegment(entry.EventType),
		PartitionKey:  entry.ServerID,
		Payload:       payload,
		OccurredAt:    occurred,
	}, nil
}

// topicSegment maps an arbitrary event type onto Kafka's legal topic characters.
func topicSegment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
