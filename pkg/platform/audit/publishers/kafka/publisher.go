// Package kafka publishes audit events to a Kafka topic so compliance
// consumers can reconstruct every money-supply expansion independently of
// the serving process.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "mintbank/pkg/platform/audit"
)

// Publisher emits audit events as JSON records keyed by subject identity,
// so all events for one account land in the same partition in order.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// New connects a Kafka producer for the given brokers and topic.
func New(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

type record struct {
	Category   audit.EventCategory `json:"category"`
	Timestamp  time.Time           `json:"timestamp"`
	Action     audit.Action        `json:"action"`
	Actor      string              `json:"actor,omitempty"`
	Subject    string              `json:"subject"`
	Amount     string              `json:"amount,omitempty"`
	TransferID string              `json:"transfer_id,omitempty"`
	Reason     string              `json:"reason,omitempty"`
}

// Emit produces the event synchronously. Audit delivery failures surface to
// the caller; the services decide whether they are fatal.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	value, err := json.Marshal(record{
		Category:   event.Category,
		Timestamp:  event.Timestamp,
		Action:     event.Action,
		Actor:      event.Actor,
		Subject:    event.Subject,
		Amount:     event.Amount,
		TransferID: event.TransferID,
		Reason:     event.Reason,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Subject),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes outstanding records and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
