package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.uber.org/mock/gomock"

	"portflow/internal/clearance/gateway"
	"portflow/internal/clearance/models"
)

func (s *OrchestratorSuite) statusOrchestrator(cache *gateway.MemoryQueryCache, staleness time.Duration) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator, err := New(s.store, s.mockGw, s.mockGate, s.mockDuty,
		WithLogger(logger),
		WithQueryCache(cache, staleness),
		WithClock(func() time.Time { return s.clock }),
	)
	s.Require().NoError(err)
	return orchestrator
}

func (s *OrchestratorSuite) expectStatusFanOut(c *models.ClearanceCase, observedAt time.Time) {
	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemCustoms, models.OpCustomsStatus, gomock.Any()).
		Return(successResult(models.SystemCustoms, models.OpCustomsStatus,
			map[string]string{"status": "payment_required"}, observedAt), nil)
	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemShippingLine, models.OpShippingStatus, gomock.Any()).
		Return(successResult(models.SystemShippingLine, models.OpShippingStatus,
			map[string]string{"status": "discharged"}, observedAt), nil)
}

func (s *OrchestratorSuite) TestStatus_FreshResultServedFromCache() {
	ctx := context.Background()
	c := s.assessedCase()
	orchestrator := s.statusOrchestrator(gateway.NewMemoryQueryCache(), 5*time.Minute)

	s.expectStatusFanOut(c, s.clock)
	first, err := orchestrator.Status(ctx, c.ID, "agent")
	s.Require().NoError(err)
	s.False(first.FromCache)
	s.Equal("payment_required", first.Customs.Payload["status"])
	s.Equal("discharged", first.Shipping.Payload["status"])

	// Within the staleness threshold no external call is made (the gomock
	// expectations above are consumed by the first read).
	s.advanceClock(2 * time.Minute)
	second, err := orchestrator.Status(ctx, c.ID, "agent")
	s.Require().NoError(err)
	s.True(second.FromCache)
	s.Equal(first.LastCheckedAt, second.LastCheckedAt)
}

func (s *OrchestratorSuite) TestStatus_StaleResultTriggersFreshQuery() {
	ctx := context.Background()
	c := s.assessedCase()
	orchestrator := s.statusOrchestrator(gateway.NewMemoryQueryCache(), 5*time.Minute)

	s.expectStatusFanOut(c, s.clock)
	_, err := orchestrator.Status(ctx, c.ID, "agent")
	s.Require().NoError(err)

	// Beyond the threshold the cached observation is stale and both systems
	// are queried again.
	s.advanceClock(6 * time.Minute)
	s.expectStatusFanOut(c, s.clock)
	refreshed, err := orchestrator.Status(ctx, c.ID, "agent")
	s.Require().NoError(err)
	s.False(refreshed.FromCache)
	s.True(refreshed.LastCheckedAt.Equal(s.clock))
}

func (s *OrchestratorSuite) TestStatus_FirstCheckPerformsAssessment() {
	ctx := context.Background()
	c := s.seedCase(models.StageDocumentsValidated)
	orchestrator := s.statusOrchestrator(gateway.NewMemoryQueryCache(), 5*time.Minute)

	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemCustoms, models.OpCustomsAssess, gomock.Any()).
		Return(successResult(models.SystemCustoms, models.OpCustomsAssess,
			map[string]string{"status": "payment_required"}, s.clock), nil)
	s.mockDuty.EXPECT().
		Assess(c.Declaration).
		Return(models.DutyAssessment{Amount: 5_000_000, AssessedAt: s.clock})

	result, err := orchestrator.Status(ctx, c.ID, "agent")
	s.Require().NoError(err)
	s.Equal(models.OutcomeAdvanced, result.Outcome)
	s.Equal(models.StageCustomsAssessed, result.Case.Stage)
	s.Require().NotNil(result.Case.AssessedDuty)
	s.Equal("payment_required", result.Customs.Payload["status"])
}

func (s *OrchestratorSuite) TestStatus_BeforeValidationReadsTheCaseOnly() {
	ctx := context.Background()
	c := s.seedCase(models.StageSubmitted)
	orchestrator := s.statusOrchestrator(gateway.NewMemoryQueryCache(), 5*time.Minute)

	result, err := orchestrator.Status(ctx, c.ID, "agent")
	s.Require().NoError(err)
	s.Equal(models.StageSubmitted, result.Case.Stage)
	s.False(result.FromCache)
	s.Empty(result.Customs.System)
}

func (s *OrchestratorSuite) TestStatus_TerminalCaseAnswersFromItsRecord() {
	ctx := context.Background()
	c := s.seedCase(models.StageRejected)
	orchestrator := s.statusOrchestrator(gateway.NewMemoryQueryCache(), 5*time.Minute)

	result, err := orchestrator.Status(ctx, c.ID, "agent")
	s.Require().NoError(err)
	s.Equal(models.StageRejected, result.Case.Stage)
	s.Empty(result.Customs.System)
	s.Empty(result.Shipping.System)
}

func (s *OrchestratorSuite) TestStatus_RefreshIsRecordedInHistory() {
	ctx := context.Background()
	c := s.assessedCase()
	orchestrator := s.statusOrchestrator(gateway.NewMemoryQueryCache(), 5*time.Minute)

	before, err := s.store.Load(ctx, c.ID)
	s.Require().NoError(err)

	s.expectStatusFanOut(c, s.clock)
	_, err = orchestrator.Status(ctx, c.ID, "agent")
	s.Require().NoError(err)

	after, err := s.store.Load(ctx, c.ID)
	s.Require().NoError(err)
	s.Len(after.History, len(before.History)+1)
	s.Equal(models.ActionCheckCustomsStatus, after.History[len(after.History)-1].Action)
}
