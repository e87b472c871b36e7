package service

import (
	"context"
	"time"

	"go.uber.org/mock/gomock"

	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports"
	dErrors "portflow/pkg/domain-errors"
)

func (s *OrchestratorSuite) TestResolve_ApprovalKeepsAwaitingState() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)
	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	s.mockGate.EXPECT().
		Resolve(gomock.Any(), "approval-jwt", true).
		Return(ports.Approval{
			Token:     "approval-jwt",
			TokenID:   "token-1",
			CaseID:    c.ID,
			Action:    models.ActionPayCustomsDuty,
			ExpiresAt: s.clock.Add(15 * time.Minute),
		}, nil)

	result, err := s.orchestrator.ResolveConfirmation(ctx, "approval-jwt", "approver", true)
	s.Require().NoError(err)
	s.Equal(models.OutcomePendingConfirmation, result.Outcome)
	s.Equal(models.StageAwaitingPaymentConfirmation, result.Case.Stage)
	s.NotNil(result.Case.PendingConfirmation)
}

func (s *OrchestratorSuite) TestResolve_DenialRevertsStage() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)
	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	s.mockGate.EXPECT().
		Resolve(gomock.Any(), "approval-jwt", false).
		Return(ports.Approval{
			Token:   "approval-jwt",
			TokenID: "token-1",
			CaseID:  c.ID,
			Action:  models.ActionPayCustomsDuty,
		}, nil)

	result, err := s.orchestrator.ResolveConfirmation(ctx, "approval-jwt", "approver", false)
	s.Require().NoError(err)
	s.Equal(models.OutcomeFailed, result.Outcome)
	s.Equal(models.StageCustomsAssessed, result.Case.Stage)
	s.Nil(result.Case.PendingConfirmation)

	stored, err := s.store.Load(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.StageCustomsAssessed, stored.Stage)
}

func (s *OrchestratorSuite) TestResolve_MismatchedTokenIsUnauthorized() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)
	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	// The gate resolved a token the case no longer tracks.
	s.mockGate.EXPECT().
		Resolve(gomock.Any(), "other-jwt", true).
		Return(ports.Approval{
			Token:   "other-jwt",
			TokenID: "token-9",
			CaseID:  c.ID,
			Action:  models.ActionPayCustomsDuty,
		}, nil)

	_, err = s.orchestrator.ResolveConfirmation(ctx, "other-jwt", "approver", true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *OrchestratorSuite) TestResolve_UnknownTokenPropagates() {
	ctx := context.Background()

	s.mockGate.EXPECT().
		Resolve(gomock.Any(), "bogus", true).
		Return(ports.Approval{}, dErrors.New(dErrors.CodeUnauthorized, "unknown or already-resolved token"))

	_, err := s.orchestrator.ResolveConfirmation(ctx, "bogus", "approver", true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
