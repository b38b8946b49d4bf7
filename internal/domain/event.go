package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AggregateType names the kind of row an outbox event describes.
type AggregateType string

const (
	AggregateLog AggregateType = "logs"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	SeqID         int64           `json:"-"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Topic returns the Kafka topic the event is published to.
func (d OutboxDraft) Topic() string {
	return "odessarp." + string(d.AggregateType) + "." + d.EventType
}
