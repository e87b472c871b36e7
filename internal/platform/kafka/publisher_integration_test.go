//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"

	"portflow/internal/platform/kafka"
	audit "portflow/pkg/platform/audit"
)

type PublisherSuite struct {
	suite.Suite
	brokers   []string
	publisher *kafka.Publisher
}

func TestPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupSuite() {
	ctx := context.Background()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.2")
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	broker, err := container.KafkaSeedBroker(ctx)
	s.Require().NoError(err)
	s.brokers = []string{broker}

	s.publisher, err = kafka.NewPublisher(ctx, s.brokers)
	s.Require().NoError(err)
	s.Require().NotNil(s.publisher)
	s.T().Cleanup(s.publisher.Close)
}

func (s *PublisherSuite) consumeOne(topic string) *kgo.Record {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fetches := client.PollFetches(ctx)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().NotEmpty(records)
	return records[0]
}

func (s *PublisherSuite) TestAppendRoutesByCategory() {
	ctx := context.Background()

	event := audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: time.Now().UTC(),
		CaseID:    "case-compliance-1",
		Action:    audit.EventDutyPaid,
		Stage:     "DutyPaid",
		Outcome:   "advanced",
	}
	s.Require().NoError(s.publisher.Append(ctx, event))

	rec := s.consumeOne(audit.CategoryCompliance.Topic())
	s.Equal("case-compliance-1", string(rec.Key))

	var got audit.Event
	s.Require().NoError(json.Unmarshal(rec.Value, &got))
	s.Equal(audit.EventDutyPaid, got.Action)
	s.Equal("DutyPaid", got.Stage)
}

func (s *PublisherSuite) TestOperationsEventsLandOnOperationsTopic() {
	ctx := context.Background()

	event := audit.Event{
		Category:  audit.CategoryOperations,
		Timestamp: time.Now().UTC(),
		CaseID:    "case-ops-1",
		Action:    audit.EventDutyAssessed,
	}
	s.Require().NoError(s.publisher.Append(ctx, event))

	rec := s.consumeOne(audit.CategoryOperations.Topic())
	s.Equal("case-ops-1", string(rec.Key))
}

func (s *PublisherSuite) TestNoBrokersDisablesPublisher() {
	p, err := kafka.NewPublisher(context.Background(), nil)
	s.Require().NoError(err)
	s.Nil(p)
}
