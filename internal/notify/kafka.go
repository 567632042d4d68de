package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

const (
	// OutboxTopic is where the draw executor publishes notifications it
	// wants delivered as email.
	OutboxTopic = "match-outbox"

	// DLQTopic is where notifications that exhaust all retries are
	// written so they can be inspected and replayed manually without
	// blocking the main consumer.
	DLQTopic = "match-dlq"

	// maxRetries is the number of delivery attempts before a
	// notification is routed to the DLQ. Each attempt adds a short
	// exponential backoff.
	maxRetries = 3
)

// Publisher writes Notifications to the match-outbox topic. It implements
// Notifier, so the draw executor needs no knowledge of Kafka.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher connected to the given Kafka brokers.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        OutboxTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// NotifyMatch publishes one notification to the outbox topic.
func (p *Publisher) NotifyMatch(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.ID),
		Value: body,
	})
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", n.ID, err)
	}
	return nil
}

// Close releases the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Consumer reads Notifications from the match-outbox topic and dispatches
// them via a MailBackend. It commits Kafka offsets only after a send
// attempt resolves, providing at-least-once delivery semantics.
//
// On repeated failure a notification is forwarded to match-dlq so the
// consumer keeps making progress without losing the problematic record.
// At-least-once is acceptable here: a duplicate email tells the giver the
// same receiver twice, which is harmless, while a silent miss would leave
// someone without a match.
type Consumer struct {
	reader  *kafka.Reader
	dlq     *kafka.Writer
	backend MailBackend
}

// MailBackend is the interface any mail delivery mechanism must implement.
// Keeping it minimal means backends are trivially swappable without
// changing the Kafka consumer.
type MailBackend interface {
	Send(ctx context.Context, n Notification) error
}

// NewConsumer creates a Consumer connected to the given Kafka brokers.
func NewConsumer(brokers []string, backend MailBackend) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          OutboxTopic,
		GroupID:        "santasdraw-mail-sender",
		MinBytes:       1,
		MaxBytes:       1 << 20, // 1 MiB
		CommitInterval: 0,       // explicit commits only
		StartOffset:    kafka.LastOffset,
	})

	dlq := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        DLQTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Consumer{
		reader:  reader,
		dlq:     dlq,
		backend: backend,
	}
}

// Run blocks, consuming notifications until ctx is cancelled.
// It logs each attempt and handles retries + DLQ routing internally.
func (c *Consumer) Run(ctx context.Context) error {
	log.Printf("mail-sender: consuming from topic %q", OutboxTopic)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// Clean shutdown.
				return nil
			}
			return fmt.Errorf("fetch: %w", err)
		}

		if err := c.dispatch(ctx, m); err != nil {
			// dispatch already sent the record to the DLQ. We
			// still commit so the consumer does not get stuck.
			log.Printf("mail-sender: routed notification key=%s to DLQ: %v", string(m.Key), err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Printf("mail-sender: commit failed (notification may be redelivered): %v", err)
		}
	}
}

// dispatch decodes and sends one record, retrying with backoff before
// giving up and writing it to the DLQ.
func (c *Consumer) dispatch(ctx context.Context, m kafka.Message) error {
	var n Notification
	if err := json.Unmarshal(m.Value, &n); err != nil {
		// Undecodable records go straight to the DLQ; retrying
		// cannot help.
		c.toDLQ(ctx, m)
		return fmt.Errorf("decode: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = c.backend.Send(ctx, n)
		if lastErr == nil {
			log.Printf("mail-sender: delivered id=%s to=%s (attempt %d)", n.ID, n.GiverEmail, attempt)
			return nil
		}

		log.Printf("mail-sender: attempt %d/%d failed for id=%s: %v", attempt, maxRetries, n.ID, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	c.toDLQ(ctx, m)
	return fmt.Errorf("exhausted %d attempts: %w", maxRetries, lastErr)
}

func (c *Consumer) toDLQ(ctx context.Context, m kafka.Message) {
	err := c.dlq.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: m.Value})
	if err != nil {
		log.Printf("mail-sender: DLQ write failed for key=%s: %v", string(m.Key), err)
	}
}

// Close releases all Kafka resources.
func (c *Consumer) Close() error {
	rerr := c.reader.Close()
	werr := c.dlq.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}
