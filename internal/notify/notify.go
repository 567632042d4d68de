// Package notify delivers match-result notifications to participants via
// Kafka-driven pub/sub and a configurable mail backend.
package notify

import (
	"context"
	"log"
)

// Notification is the canonical schema for messages on the match-outbox
// Kafka topic. Producers publish JSON-encoded Notifications; the
// mail-sender consumer reads them and dispatches them to the configured
// mail backend.
//
// JSON schema:
//
//	{
//	  "id":               "550e8400-e29b-41d4-a716-446655440000",
//	  "giver_name":       "Alice Example",
//	  "giver_email":      "alice@example.com",
//	  "receiver_name":    "Bob Example",
//	  "receiver_address": "12 Main St",
//	  "receiver_phone":   "+15551234567"
//	}
type Notification struct {
	// ID is a producer-generated UUID used for idempotency and
	// correlation. The mail-sender logs it alongside the delivery
	// outcome so duplicate sends can be detected when replaying a
	// partition.
	ID string `json:"id"`

	// GiverName and GiverEmail identify the recipient of the email:
	// the person who must buy a gift.
	GiverName  string `json:"giver_name"`
	GiverEmail string `json:"giver_email"`

	// ReceiverName is who the giver drew. Address and phone are only
	// present when the draw required collecting them.
	ReceiverName    string `json:"receiver_name"`
	ReceiverAddress string `json:"receiver_address,omitempty"`
	ReceiverPhone   string `json:"receiver_phone,omitempty"`
}

// Notifier is the contract the draw executor publishes through. Delivery is
// best-effort and happens after the match transaction has committed, so an
// implementation must never block match correctness on mail infrastructure.
type Notifier interface {
	NotifyMatch(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the process log instead of delivering
// them. Used when no Kafka brokers are configured (local development).
type LogNotifier struct{}

// NotifyMatch logs the would-be delivery and succeeds.
func (LogNotifier) NotifyMatch(_ context.Context, n Notification) error {
	log.Printf("notify (log only): id=%s giver=%s receiver=%s", n.ID, n.GiverEmail, n.ReceiverName)
	return nil
}
