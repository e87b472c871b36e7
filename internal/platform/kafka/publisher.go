// Package kafka publishes audit events to Redpanda/Kafka with franz-go.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "portflow/pkg/platform/audit"
)

// Publisher writes audit events to per-category topics, keyed by case ID so
// one case's trail stays ordered within a partition.
type Publisher struct {
	client *kgo.Client
}

// NewPublisher connects to the given brokers and ensures the audit topics
// exist. Returns nil if no brokers are configured.
func NewPublisher(ctx context.Context, brokers []string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID("portflow"),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	p := &Publisher{client: client}
	if err := p.ensureTopics(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureTopics(ctx context.Context) error {
	adm := kadm.NewClient(p.client)
	topics := []string{
		audit.CategoryCompliance.Topic(),
		audit.CategoryOperations.Topic(),
	}
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create audit topics: %w", err)
	}
	for _, resp := range resps.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Append implements audit.Store. Events are produced synchronously; the audit
// worker already decouples this from request handling.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	rec := &kgo.Record{
		Topic: event.Category.Topic(),
		Key:   []byte(event.CaseID),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (p *Publisher) Close() {
	p.client.Close()
}
