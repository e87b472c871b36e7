package service

import (
	"context"

	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports"
	id "portflow/pkg/domain"
	dErrors "portflow/pkg/domain-errors"
	"portflow/pkg/platform/audit"
)

// ResolveConfirmation settles a pending approval token. An approval leaves
// the case in its awaiting sub-state ready for the gated action to re-run
// with the token; a denial reverts the stage so the action can be
// re-initiated later.
func (o *Orchestrator) ResolveConfirmation(ctx context.Context, token, actor string, approved bool) (TransitionResult, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.ResolveConfirmation")
	defer span.End()

	approval, err := o.gate.Resolve(ctx, token, approved)
	if err != nil {
		return TransitionResult{}, err
	}

	c, err := o.store.Load(ctx, approval.CaseID)
	if err != nil {
		return TransitionResult{}, err
	}
	if c.PendingConfirmation == nil || c.PendingConfirmation.TokenID != approval.TokenID {
		return TransitionResult{}, dErrors.New(dErrors.CodeUnauthorized,
			"approval token does not match the case's pending confirmation")
	}

	req := models.ActionRequest{Action: approval.Action, CaseID: c.ID, Actor: actor}

	outcome := "approved"
	if !approved {
		outcome = "denied"
		prior, ok := c.Stage.PriorActionStage()
		if !ok {
			return TransitionResult{}, dErrors.Newf(dErrors.CodeInvalidTransition,
				"case %s is not awaiting confirmation", c.ID)
		}
		c.PendingConfirmation = nil
		entry := o.advanceEntry(c, req, prior, "confirmation denied")
		entry.Outcome = models.OutcomeFailed
		if err := o.save(ctx, c, c.Version, entry); err != nil {
			return TransitionResult{}, err
		}
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       actor,
		Action:      audit.EventApprovalResolved,
		Stage:       string(c.Stage),
		Outcome:     outcome,
	}, "case_id", c.ID, "action", approval.Action, "approved", approved)

	if o.metrics != nil {
		o.metrics.ConfirmationsTotal.WithLabelValues(string(approval.Action), outcome).Inc()
	}

	result := TransitionResult{Case: c, Outcome: models.OutcomePendingConfirmation}
	if !approved {
		result.Outcome = models.OutcomeFailed
		result.Reason = "confirmation denied"
	}
	return result, nil
}

// GetCase returns one case with its full history.
func (o *Orchestrator) GetCase(ctx context.Context, caseID id.CaseID) (*models.ClearanceCase, error) {
	return o.store.Load(ctx, caseID)
}

// ListCases returns cases newest first, optionally filtered by stage.
func (o *Orchestrator) ListCases(ctx context.Context, stage models.Stage, limit int) ([]*models.ClearanceCase, error) {
	if stage != "" && !stage.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown stage %q", stage)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return o.store.List(ctx, stage, limit)
}
