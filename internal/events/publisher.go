// Package events publishes scrape lifecycle events to a Redis stream so
// downstream consumers can react to finished jobs or detected blocks.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Stream is the Redis stream all lifecycle events go to.
const Stream = "stream:scrape_lifecycle"

type EventType string

const (
	EventTypeScrapeStarted   EventType = "SCRAPE_STARTED"
	EventTypeBlockDetected   EventType = "BLOCK_DETECTED"
	EventTypeScrapeCompleted EventType = "SCRAPE_COMPLETED"
)

// Payload is the JSON body of every lifecycle event.
type Payload struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"job_id"`
	Site      string    `json:"site"`
	Query     string    `json:"query"`
	// ListingsFound is set on SCRAPE_COMPLETED only.
	ListingsFound int `json:"listings_found,omitempty"`
}

// RedisClient is the slice of go-redis the publisher needs; it keeps tests
// off a live server.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

type Publisher struct {
	client RedisClient
	logger *slog.Logger
}

func NewPublisher(client RedisClient, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		logger: logger.With("component", "event_publisher"),
	}
}

// Publish appends one event to the lifecycle stream. Metadata fields are
// filled in when the caller left them empty.
func (p *Publisher) Publish(ctx context.Context, payload *Payload) error {
	if payload.EventID == "" {
		payload.EventID = uuid.New().String()
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: Stream,
		Values: map[string]any{
			"event_type": string(payload.EventType),
			"payload":    string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("event published",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"job_id", payload.JobID,
	)
	return nil
}
