package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.uber.org/mock/gomock"

	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports"
	"portflow/internal/clearance/ports/mocks"
	id "portflow/pkg/domain"
	dErrors "portflow/pkg/domain-errors"
)

func (s *OrchestratorSuite) TestTransition_UnknownAction() {
	_, err := s.orchestrator.Transition(context.Background(), models.ActionRequest{
		Action: "launch_rocket",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *OrchestratorSuite) TestTransition_TerminalCaseAcceptsNothing() {
	ctx := context.Background()
	c := s.seedCase(models.StageRejected)

	_, err := s.orchestrator.Transition(ctx, models.ActionRequest{
		Action: models.ActionCheckCustomsStatus,
		CaseID: c.ID,
		Actor:  "agent",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *OrchestratorSuite) TestTransition_UnknownCase() {
	_, err := s.orchestrator.Transition(context.Background(), models.ActionRequest{
		Action:         models.ActionPayCustomsDuty,
		CaseID:         id.NewCaseID(),
		IdempotencyKey: "pay-1",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *OrchestratorSuite) TestAssessment_ComputesDutyOnce() {
	ctx := context.Background()
	c := s.seedCase(models.StageDocumentsValidated)

	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemCustoms, models.OpCustomsAssess, gomock.Any()).
		Return(successResult(models.SystemCustoms, models.OpCustomsAssess,
			map[string]string{"status": "payment_required"}, s.clock), nil)
	s.mockDuty.EXPECT().
		Assess(c.Declaration).
		Return(models.DutyAssessment{Amount: 5_000_000, AssessedAt: s.clock})

	result, err := s.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionCheckCustomsStatus,
		CaseID:         c.ID,
		Actor:          "agent",
		IdempotencyKey: "chk-1",
	})
	s.Require().NoError(err)
	s.Equal(models.StageCustomsAssessed, result.Case.Stage)
	s.Require().NotNil(result.Case.AssessedDuty)
	s.Equal(int64(5_000_000), result.Case.AssessedDuty.Amount)
}

func (s *OrchestratorSuite) TestAssessment_FraudulentDocumentRejects() {
	ctx := context.Background()
	c := s.seedCase(models.StageDocumentsValidated)

	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemCustoms, models.OpCustomsAssess, gomock.Any()).
		Return(models.ExternalQueryResult{
			System:     models.SystemCustoms,
			Operation:  models.OpCustomsAssess,
			Failure:    models.FailurePermanent,
			Reason:     "document flagged as fraudulent",
			Payload:    map[string]string{"rejection": "fraudulent_document"},
			ObservedAt: s.clock,
		}, nil)

	result, err := s.orchestrator.Transition(ctx, models.ActionRequest{
		Action: models.ActionCheckCustomsStatus,
		CaseID: c.ID,
		Actor:  "agent",
	})
	s.Require().NoError(err)
	s.Equal(models.OutcomeRejected, result.Outcome)
	s.Equal(models.StageRejected, result.Case.Stage)
	s.Nil(result.Case.AssessedDuty)
}

func (s *OrchestratorSuite) TestInspection_ScheduleCompleteAndGatePass() {
	ctx := context.Background()
	c := s.seedCase(models.StageShippingReleased)

	window := s.clock.Add(24 * time.Hour)
	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemPortAuthority, models.OpInspectionSchedule, gomock.Any()).
		Return(successResult(models.SystemPortAuthority, models.OpInspectionSchedule, map[string]string{
			"windowStart": window.Format(time.RFC3339),
			"windowEnd":   window.Add(4 * time.Hour).Format(time.RFC3339),
			"location":    "Apapa Terminal B",
		}, s.clock), nil)

	result, err := s.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionScheduleInspection,
		CaseID:         c.ID,
		Actor:          "agent",
		IdempotencyKey: "ins-1",
	})
	s.Require().NoError(err)
	s.Equal(models.StageInspectionScheduled, result.Case.Stage)
	s.Require().NotNil(result.Case.InspectionSlot)
	s.Equal("Apapa Terminal B", result.Case.InspectionSlot.Location)
	s.True(result.Case.InspectionSlot.WindowStart.Equal(window))

	result, err = s.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionCompleteInspection,
		CaseID:         c.ID,
		Actor:          "inspector",
		IdempotencyKey: "ins-2",
		Payload:        map[string]string{"passed": "true"},
	})
	s.Require().NoError(err)
	s.Equal(models.StageInspectionCleared, result.Case.Stage)

	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemPortAuthority, models.OpGatePassIssue, gomock.Any()).
		Return(successResult(models.SystemPortAuthority, models.OpGatePassIssue,
			map[string]string{"gatePassRef": "GP-00FA12"}, s.clock), nil)

	result, err = s.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionIssueGatePass,
		CaseID:         c.ID,
		Actor:          "agent",
		IdempotencyKey: "gp-1",
	})
	s.Require().NoError(err)
	s.Equal(models.StageGatePassIssued, result.Case.Stage)
	s.Equal("GP-00FA12", result.Case.GatePassRef)
	s.True(result.Case.Stage.Terminal())
}

func (s *OrchestratorSuite) TestInspection_FailureRejects() {
	ctx := context.Background()
	c := s.seedCase(models.StageInspectionScheduled)

	result, err := s.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionCompleteInspection,
		CaseID:         c.ID,
		Actor:          "inspector",
		IdempotencyKey: "ins-1",
		Payload:        map[string]string{"passed": "false"},
	})
	s.Require().NoError(err)
	s.Equal(models.OutcomeRejected, result.Outcome)
	s.Equal(models.StageRejected, result.Case.Stage)
}

// TestTransition_ConcurrentModification pins the version at load and expects
// the second writer to observe a conflict. The store is mocked so the race
// can be scripted deterministically.
func (s *OrchestratorSuite) TestTransition_ConcurrentModification() {
	ctx := context.Background()
	mockStore := mocks.NewMockCaseStore(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator, err := New(mockStore, s.mockGw, s.mockGate, s.mockDuty, WithLogger(logger))
	s.Require().NoError(err)

	c := s.seedCase(models.StageShippingReleased)
	mockStore.EXPECT().Load(gomock.Any(), c.ID).Return(c, nil)
	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemPortAuthority, models.OpInspectionSchedule, gomock.Any()).
		Return(successResult(models.SystemPortAuthority, models.OpInspectionSchedule, map[string]string{
			"windowStart": s.clock.Format(time.RFC3339),
			"windowEnd":   s.clock.Add(4 * time.Hour).Format(time.RFC3339),
			"location":    "Apapa Terminal B",
		}, s.clock), nil)
	// Another writer bumped the version while the gateway call was in flight.
	mockStore.EXPECT().
		Save(gomock.Any(), gomock.Any(), c.Version).
		Return(dErrors.New(dErrors.CodeConflict, "case was modified concurrently"))

	_, err = orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionScheduleInspection,
		CaseID:         c.ID,
		Actor:          "agent",
		IdempotencyKey: "ins-1",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

var _ ports.CaseStore = (*mocks.MockCaseStore)(nil)
