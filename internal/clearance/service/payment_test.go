package service

import (
	"context"
	"time"

	"go.uber.org/mock/gomock"

	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports"
	dErrors "portflow/pkg/domain-errors"
)

func (s *OrchestratorSuite) payRequest(c *models.ClearanceCase, key, token string) models.ActionRequest {
	return models.ActionRequest{
		Action:         models.ActionPayCustomsDuty,
		CaseID:         c.ID,
		Actor:          "agent",
		IdempotencyKey: key,
		ApprovalToken:  token,
		Payload:        map[string]string{"paymentMethod": "bank_transfer"},
	}
}

func (s *OrchestratorSuite) expectApprovalRequest(c *models.ClearanceCase) ports.Approval {
	approval := ports.Approval{
		Token:       "approval-jwt",
		TokenID:     "token-1",
		CaseID:      c.ID,
		Action:      models.ActionPayCustomsDuty,
		RequestedAt: s.clock,
		ExpiresAt:   s.clock.Add(15 * time.Minute),
	}
	s.mockGate.EXPECT().
		RequestApproval(gomock.Any(), c.ID, models.ActionPayCustomsDuty).
		Return(approval, nil)
	return approval
}

func (s *OrchestratorSuite) TestPay_WithoutTokenHaltsAtGate() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)
	// The gateway must never be reached without an approved token.

	result, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	s.Equal(models.OutcomePendingConfirmation, result.Outcome)
	s.Require().NotNil(result.PendingApproval)
	s.Equal("approval-jwt", result.PendingApproval.Token)
	s.Equal(models.StageAwaitingPaymentConfirmation, result.Case.Stage)
	s.Require().NotNil(result.Case.PendingConfirmation)
	s.Equal("token-1", result.Case.PendingConfirmation.TokenID)
}

func (s *OrchestratorSuite) TestPay_ApprovedTokenExecutesExactlyOneDebit() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)

	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	s.mockGate.EXPECT().
		Check(gomock.Any(), "approval-jwt", c.ID, models.ActionPayCustomsDuty).
		Return(true, nil)
	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemCustoms, models.OpCustomsPay, gomock.Any()).
		Return(successResult(models.SystemCustoms, models.OpCustomsPay,
			map[string]string{"paymentRef": "PAY-A1B2C3"}, s.clock), nil).
		Times(1)
	s.mockGate.EXPECT().
		Clear(gomock.Any(), c.ID, models.ActionPayCustomsDuty).
		Return(nil)

	result, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", "approval-jwt"))
	s.Require().NoError(err)
	s.Equal(models.OutcomeAdvanced, result.Outcome)
	s.Equal(models.StageDutyPaid, result.Case.Stage)
	s.Equal("PAY-A1B2C3", result.Case.PaymentRef)
	s.Nil(result.Case.PendingConfirmation)

	// Replaying the same key returns the recorded result without a second
	// gateway call (the mock's Times(1) enforces it).
	replay, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", "approval-jwt"))
	s.Require().NoError(err)
	s.True(replay.Replayed)
	s.Equal("PAY-A1B2C3", replay.Case.PaymentRef)
}

func (s *OrchestratorSuite) TestPay_ReusedKeyWithDifferentPayloadFailsClosed() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)
	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	s.mockGate.EXPECT().Check(gomock.Any(), "approval-jwt", c.ID, models.ActionPayCustomsDuty).Return(true, nil)
	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemCustoms, models.OpCustomsPay, gomock.Any()).
		Return(successResult(models.SystemCustoms, models.OpCustomsPay,
			map[string]string{"paymentRef": "PAY-A1B2C3"}, s.clock), nil)
	s.mockGate.EXPECT().Clear(gomock.Any(), c.ID, models.ActionPayCustomsDuty).Return(nil)
	_, err = s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", "approval-jwt"))
	s.Require().NoError(err)

	mutated := s.payRequest(c, "pay-1", "approval-jwt")
	mutated.Payload["paymentMethod"] = "card"
	_, err = s.orchestrator.Transition(ctx, mutated)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *OrchestratorSuite) TestPay_TransientFailureLeavesStageAndHintsRetry() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)
	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	s.mockGate.EXPECT().Check(gomock.Any(), "approval-jwt", c.ID, models.ActionPayCustomsDuty).Return(true, nil)
	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemCustoms, models.OpCustomsPay, gomock.Any()).
		Return(models.ExternalQueryResult{
			System:     models.SystemCustoms,
			Operation:  models.OpCustomsPay,
			Failure:    models.FailureTransient,
			Reason:     "retry budget exhausted",
			ObservedAt: s.clock,
		}, nil)

	result, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", "approval-jwt"))
	s.Require().NoError(err)
	s.Equal(models.OutcomeFailed, result.Outcome)
	s.True(result.RetryHint)
	s.Equal(models.StageAwaitingPaymentConfirmation, result.Case.Stage)

	// The failure is recorded in history.
	stored, err := s.store.Load(ctx, c.ID)
	s.Require().NoError(err)
	last := stored.History[len(stored.History)-1]
	s.Equal(models.OutcomeFailed, last.Outcome)
	s.True(last.RetryHint)
	s.Empty(stored.PaymentRef)
}

func (s *OrchestratorSuite) TestPay_UnrecoverableFailureRejectsCase() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)
	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	s.mockGate.EXPECT().Check(gomock.Any(), "approval-jwt", c.ID, models.ActionPayCustomsDuty).Return(true, nil)
	s.mockGw.EXPECT().
		Call(gomock.Any(), models.SystemCustoms, models.OpCustomsPay, gomock.Any()).
		Return(models.ExternalQueryResult{
			System:     models.SystemCustoms,
			Operation:  models.OpCustomsPay,
			Failure:    models.FailurePermanent,
			Reason:     "document flagged as fraudulent",
			Payload:    map[string]string{"rejection": "fraudulent_document"},
			ObservedAt: s.clock,
		}, nil)

	result, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", "approval-jwt"))
	s.Require().NoError(err)
	s.Equal(models.OutcomeRejected, result.Outcome)
	s.Equal(models.StageRejected, result.Case.Stage)
}

func (s *OrchestratorSuite) TestPay_ExpiredApprovalRevertsAndReissues() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)
	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	s.advanceClock(16 * time.Minute)

	// A fresh approval is issued after the expired one is cleared.
	fresh := ports.Approval{
		Token:       "approval-jwt-2",
		TokenID:     "token-2",
		CaseID:      c.ID,
		Action:      models.ActionPayCustomsDuty,
		RequestedAt: s.clock,
		ExpiresAt:   s.clock.Add(15 * time.Minute),
	}
	s.mockGate.EXPECT().
		RequestApproval(gomock.Any(), c.ID, models.ActionPayCustomsDuty).
		Return(fresh, nil)

	result, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-2", ""))
	s.Require().NoError(err)
	s.Equal(models.OutcomePendingConfirmation, result.Outcome)
	s.Equal("token-2", result.Case.PendingConfirmation.TokenID)
}

func (s *OrchestratorSuite) TestPay_ExpiredApprovalWithStaleTokenIsUnauthorized() {
	ctx := context.Background()
	c := s.assessedCase()
	s.expectApprovalRequest(c)
	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().NoError(err)

	s.advanceClock(16 * time.Minute)

	_, err = s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", "approval-jwt"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *OrchestratorSuite) TestPay_MissingIdempotencyKeyRejected() {
	ctx := context.Background()
	c := s.assessedCase()

	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "", ""))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *OrchestratorSuite) TestPay_IllegalFromSubmitted() {
	ctx := context.Background()
	c := s.seedCase(models.StageSubmitted)

	_, err := s.orchestrator.Transition(ctx, s.payRequest(c, "pay-1", ""))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}
