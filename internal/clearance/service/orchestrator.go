package service

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports"
	dErrors "portflow/pkg/domain-errors"
	"portflow/pkg/platform/audit"
)

// Transition applies one action request to its case. The sequence is fixed:
// idempotency replay, precondition check, confirmation gating, external call,
// version-pinned write-back. Gateway failures leave the stage unchanged and
// are recorded in history before they surface.
func (o *Orchestrator) Transition(ctx context.Context, req models.ActionRequest) (TransitionResult, error) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "orchestrator.Transition")
	span.SetAttributes(
		attribute.String("action", string(req.Action)),
		attribute.String("case_id", req.CaseID.String()),
	)
	defer span.End()

	if !req.Action.IsValid() {
		return TransitionResult{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown action %q", req.Action)
	}

	c, err := o.store.Load(ctx, req.CaseID)
	if err != nil {
		return TransitionResult{}, err
	}
	pinnedVersion := c.Version

	if replay, ok, err := o.replay(c, req); err != nil {
		return TransitionResult{}, err
	} else if ok {
		o.observe(string(req.Action), "replayed", start)
		return replay, nil
	}

	if c.Stage.Terminal() {
		return TransitionResult{}, dErrors.Newf(dErrors.CodeInvalidTransition,
			"case %s is terminal in stage %s", c.ID, c.Stage)
	}
	if !stageAllows(req.Action, c.Stage) {
		return TransitionResult{}, dErrors.Newf(dErrors.CodeInvalidTransition,
			"action %s is not legal from stage %s", req.Action, c.Stage)
	}

	var result TransitionResult
	switch req.Action {
	case models.ActionCheckCustomsStatus:
		result, err = o.assessCustoms(ctx, c, req, pinnedVersion)
	case models.ActionPayCustomsDuty:
		result, err = o.payCustomsDuty(ctx, c, req, pinnedVersion)
	case models.ActionReleaseContainer:
		result, err = o.releaseContainer(ctx, c, req, pinnedVersion)
	case models.ActionScheduleInspection:
		result, err = o.scheduleInspection(ctx, c, req, pinnedVersion)
	case models.ActionCompleteInspection:
		result, err = o.completeInspection(ctx, c, req, pinnedVersion)
	case models.ActionIssueGatePass:
		result, err = o.issueGatePass(ctx, c, req, pinnedVersion)
	default:
		return TransitionResult{}, dErrors.Newf(dErrors.CodeInvalidInput, "unhandled action %q", req.Action)
	}
	if err != nil {
		o.observe(string(req.Action), "error", start)
		return TransitionResult{}, err
	}

	o.observe(string(req.Action), string(result.Outcome), start)
	return result, nil
}

// replay answers a request whose action+idempotencyKey already completed,
// without touching any external system. A key reused with a different
// payload fails closed.
func (o *Orchestrator) replay(c *models.ClearanceCase, req models.ActionRequest) (TransitionResult, bool, error) {
	entry, ok := c.CompletedEntry(req.Action, req.IdempotencyKey)
	if !ok {
		return TransitionResult{}, false, nil
	}
	if entry.PayloadHash != req.PayloadHash() {
		return TransitionResult{}, false, dErrors.Newf(dErrors.CodeConflict,
			"idempotency key %q was already used with a different payload", req.IdempotencyKey)
	}
	if o.metrics != nil {
		o.metrics.IdempotentReplayTotal.WithLabelValues(string(req.Action)).Inc()
	}
	if o.logger != nil {
		o.logger.Info("replaying recorded result",
			"case_id", c.ID, "action", req.Action, "idempotency_key", req.IdempotencyKey)
	}
	return TransitionResult{
		Case:     c,
		Outcome:  entry.Outcome,
		Replayed: true,
		Reason:   entry.Detail,
	}, true, nil
}

// assessCustoms performs DocumentsValidated -> CustomsAssessed: query customs,
// compute duty, record the assessment. AssessedDuty is written at most once.
func (o *Orchestrator) assessCustoms(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, pinnedVersion int64) (TransitionResult, error) {
	res, err := o.gateway.Call(ctx, models.SystemCustoms, models.OpCustomsAssess, map[string]string{
		"containerId":  c.ContainerID.String(),
		"tin":          c.ImporterTIN,
		"documentFlag": req.Payload["documentFlag"],
	})
	if err != nil {
		return TransitionResult{}, err
	}
	if !res.Success {
		return o.externalFailure(ctx, c, req, res)
	}

	if c.AssessedDuty == nil {
		assessment := o.duty.Assess(c.Declaration)
		c.AssessedDuty = &assessment
	}

	entry := o.advanceEntry(c, req, models.StageCustomsAssessed, "customs assessment recorded")
	if err := o.save(ctx, c, pinnedVersion, entry); err != nil {
		return TransitionResult{}, err
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventDutyAssessed,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomeAdvanced),
	}, "case_id", c.ID, "amount", c.AssessedDuty.Amount)

	return TransitionResult{
		Case:          c,
		Outcome:       models.OutcomeAdvanced,
		External:      &res,
		LastCheckedAt: res.ObservedAt,
	}, nil
}

// payCustomsDuty drives the confirmation-gated payment. Without an approved
// token the case halts in AwaitingPaymentConfirmation; with one, the gateway
// executes the debit exactly once.
func (o *Orchestrator) payCustomsDuty(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, pinnedVersion int64) (TransitionResult, error) {
	if req.IdempotencyKey == "" {
		return TransitionResult{}, dErrors.New(dErrors.CodeInvalidInput, "pay_customs_duty requires an idempotency key")
	}

	if c.Stage == models.StageCustomsAssessed {
		if req.ApprovalToken != "" {
			return TransitionResult{}, dErrors.New(dErrors.CodeUnauthorized,
				"no approval is pending for this payment")
		}
		return o.haltForConfirmation(ctx, c, req, models.StageAwaitingPaymentConfirmation, pinnedVersion)
	}

	// AwaitingPaymentConfirmation.
	if expired, result, err := o.revertIfExpired(ctx, c, req, pinnedVersion); expired {
		return result, err
	}
	if req.ApprovalToken == "" {
		return o.pendingResult(ctx, c, req.Action)
	}

	approved, err := o.gate.Check(ctx, req.ApprovalToken, c.ID, req.Action)
	if err != nil {
		return TransitionResult{}, err
	}
	if !approved {
		return o.pendingResult(ctx, c, req.Action)
	}

	res, err := o.gateway.Call(ctx, models.SystemCustoms, models.OpCustomsPay, map[string]string{
		"containerId":    c.ContainerID.String(),
		"idempotencyKey": req.IdempotencyKey,
		"amount":         amountString(c),
		"paymentMethod":  req.Payload["paymentMethod"],
	})
	if err != nil {
		return TransitionResult{}, err
	}
	if !res.Success {
		return o.externalFailure(ctx, c, req, res)
	}

	// paymentRef is set at most once per case.
	if c.PaymentRef == "" {
		c.PaymentRef = res.Payload["paymentRef"]
	}
	c.PendingConfirmation = nil
	entry := o.advanceEntry(c, req, models.StageDutyPaid, "customs duty paid")
	entry.PaymentRef = c.PaymentRef
	if err := o.save(ctx, c, pinnedVersion, entry); err != nil {
		return TransitionResult{}, err
	}
	if err := o.gate.Clear(ctx, c.ID, req.Action); err != nil && o.logger != nil {
		o.logger.Warn("failed to clear resolved approval", "case_id", c.ID, "error", err)
	}

	if o.metrics != nil {
		o.metrics.PaymentsTotal.Inc()
	}
	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventDutyPaid,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomeAdvanced),
	}, "case_id", c.ID, "payment_ref", c.PaymentRef)

	return TransitionResult{
		Case:     c,
		Outcome:  models.OutcomeAdvanced,
		External: &res,
	}, nil
}

// releaseContainer mirrors the payment flow against the shipping line.
func (o *Orchestrator) releaseContainer(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, pinnedVersion int64) (TransitionResult, error) {
	if req.IdempotencyKey == "" {
		return TransitionResult{}, dErrors.New(dErrors.CodeInvalidInput, "release_container requires an idempotency key")
	}

	if c.Stage == models.StageDutyPaid {
		if req.ApprovalToken != "" {
			return TransitionResult{}, dErrors.New(dErrors.CodeUnauthorized,
				"no approval is pending for this release")
		}
		return o.haltForConfirmation(ctx, c, req, models.StageAwaitingReleaseConfirmation, pinnedVersion)
	}

	if expired, result, err := o.revertIfExpired(ctx, c, req, pinnedVersion); expired {
		return result, err
	}
	if req.ApprovalToken == "" {
		return o.pendingResult(ctx, c, req.Action)
	}

	approved, err := o.gate.Check(ctx, req.ApprovalToken, c.ID, req.Action)
	if err != nil {
		return TransitionResult{}, err
	}
	if !approved {
		return o.pendingResult(ctx, c, req.Action)
	}

	res, err := o.gateway.Call(ctx, models.SystemShippingLine, models.OpShippingRelease, map[string]string{
		"containerId":    c.ContainerID.String(),
		"idempotencyKey": req.IdempotencyKey,
		"vessel":         c.VesselName,
	})
	if err != nil {
		return TransitionResult{}, err
	}
	if !res.Success {
		return o.externalFailure(ctx, c, req, res)
	}

	c.PendingConfirmation = nil
	entry := o.advanceEntry(c, req, models.StageShippingReleased, "shipping line release confirmed")
	entry.Detail = "release ref " + res.Payload["releaseRef"]
	if err := o.save(ctx, c, pinnedVersion, entry); err != nil {
		return TransitionResult{}, err
	}
	if err := o.gate.Clear(ctx, c.ID, req.Action); err != nil && o.logger != nil {
		o.logger.Warn("failed to clear resolved approval", "case_id", c.ID, "error", err)
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventContainerReleased,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomeAdvanced),
	}, "case_id", c.ID)

	return TransitionResult{
		Case:     c,
		Outcome:  models.OutcomeAdvanced,
		External: &res,
	}, nil
}

func (o *Orchestrator) scheduleInspection(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, pinnedVersion int64) (TransitionResult, error) {
	res, err := o.gateway.Call(ctx, models.SystemPortAuthority, models.OpInspectionSchedule, map[string]string{
		"containerId":     c.ContainerID.String(),
		"preferredWindow": req.Payload["preferredWindow"],
	})
	if err != nil {
		return TransitionResult{}, err
	}
	if !res.Success {
		return o.externalFailure(ctx, c, req, res)
	}

	slot, err := parseSlot(res.Payload)
	if err != nil {
		return TransitionResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "port authority returned an unreadable slot")
	}
	c.InspectionSlot = &slot

	entry := o.advanceEntry(c, req, models.StageInspectionScheduled, "physical inspection scheduled")
	if err := o.save(ctx, c, pinnedVersion, entry); err != nil {
		return TransitionResult{}, err
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventInspectionScheduled,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomeAdvanced),
	}, "case_id", c.ID, "window_start", slot.WindowStart)

	return TransitionResult{
		Case:     c,
		Outcome:  models.OutcomeAdvanced,
		External: &res,
	}, nil
}

// completeInspection records the inspector's verdict. A failed inspection is
// unrecoverable and terminates the case.
func (o *Orchestrator) completeInspection(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, pinnedVersion int64) (TransitionResult, error) {
	passed := req.Payload["passed"] == "true"

	if !passed {
		result, err := o.reject(ctx, c, req, pinnedVersion, "physical inspection failed")
		if err != nil {
			return TransitionResult{}, err
		}
		return result, nil
	}

	entry := o.advanceEntry(c, req, models.StageInspectionCleared, "physical inspection passed")
	if err := o.save(ctx, c, pinnedVersion, entry); err != nil {
		return TransitionResult{}, err
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventInspectionCompleted,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomeAdvanced),
	}, "case_id", c.ID)

	return TransitionResult{Case: c, Outcome: models.OutcomeAdvanced}, nil
}

func (o *Orchestrator) issueGatePass(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, pinnedVersion int64) (TransitionResult, error) {
	res, err := o.gateway.Call(ctx, models.SystemPortAuthority, models.OpGatePassIssue, map[string]string{
		"containerId": c.ContainerID.String(),
		"caseId":      c.ID.String(),
	})
	if err != nil {
		return TransitionResult{}, err
	}
	if !res.Success {
		return o.externalFailure(ctx, c, req, res)
	}

	c.GatePassRef = res.Payload["gatePassRef"]
	entry := o.advanceEntry(c, req, models.StageGatePassIssued, "gate pass issued")
	entry.Detail = "gate pass " + c.GatePassRef
	if err := o.save(ctx, c, pinnedVersion, entry); err != nil {
		return TransitionResult{}, err
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventGatePassIssued,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomeAdvanced),
	}, "case_id", c.ID, "gate_pass_ref", c.GatePassRef)

	return TransitionResult{
		Case:     c,
		Outcome:  models.OutcomeAdvanced,
		External: &res,
	}, nil
}

// haltForConfirmation moves the case into the awaiting sub-state and returns
// the pending approval instead of invoking the gateway.
func (o *Orchestrator) haltForConfirmation(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, awaiting models.Stage, pinnedVersion int64) (TransitionResult, error) {
	approval, err := o.gate.RequestApproval(ctx, c.ID, req.Action)
	if err != nil {
		return TransitionResult{}, err
	}

	c.PendingConfirmation = &models.PendingConfirmation{
		Action:      req.Action,
		TokenID:     approval.TokenID,
		RequestedAt: approval.RequestedAt,
		ExpiresAt:   approval.ExpiresAt,
	}
	entry := o.advanceEntry(c, req, awaiting, "awaiting human confirmation")
	entry.Outcome = models.OutcomePendingConfirmation
	if err := o.save(ctx, c, pinnedVersion, entry); err != nil {
		return TransitionResult{}, err
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventApprovalRequested,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomePendingConfirmation),
	}, "case_id", c.ID, "action", req.Action)

	return TransitionResult{
		Case:            c,
		Outcome:         models.OutcomePendingConfirmation,
		PendingApproval: &approval,
	}, nil
}

// pendingResult re-surfaces the live pending approval without changing state.
func (o *Orchestrator) pendingResult(ctx context.Context, c *models.ClearanceCase, action models.ActionKind) (TransitionResult, error) {
	approval, err := o.gate.RequestApproval(ctx, c.ID, action)
	if err != nil {
		return TransitionResult{}, err
	}
	return TransitionResult{
		Case:            c,
		Outcome:         models.OutcomePendingConfirmation,
		PendingApproval: &approval,
	}, nil
}

// revertIfExpired reverts a confirmation sub-state whose approval window
// lapsed, so the user can re-initiate.
func (o *Orchestrator) revertIfExpired(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, pinnedVersion int64) (bool, TransitionResult, error) {
	if c.PendingConfirmation != nil && o.now().Before(c.PendingConfirmation.ExpiresAt) {
		return false, TransitionResult{}, nil
	}

	prior, ok := c.Stage.PriorActionStage()
	if !ok {
		return false, TransitionResult{}, nil
	}

	c.PendingConfirmation = nil
	entry := o.advanceEntry(c, req, prior, "confirmation window expired")
	entry.Outcome = models.OutcomeFailed
	if err := o.save(ctx, c, pinnedVersion, entry); err != nil {
		return true, TransitionResult{}, err
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventApprovalExpired,
		Stage:       string(c.Stage),
	}, "case_id", c.ID, "action", req.Action)

	if req.ApprovalToken != "" {
		return true, TransitionResult{}, dErrors.New(dErrors.CodeUnauthorized, "approval token has expired")
	}

	// Re-initiate in the same request: the case is back in its prior stage,
	// so the standard halt path issues a fresh approval.
	awaiting := models.StageAwaitingPaymentConfirmation
	if req.Action == models.ActionReleaseContainer {
		awaiting = models.StageAwaitingReleaseConfirmation
	}
	result, err := o.haltForConfirmation(ctx, c, req, awaiting, c.Version)
	return true, result, err
}

// reject terminates the case. Reachable from any non-terminal stage.
func (o *Orchestrator) reject(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, pinnedVersion int64, reason string) (TransitionResult, error) {
	c.PendingConfirmation = nil
	entry := o.advanceEntry(c, req, models.StageRejected, reason)
	entry.Outcome = models.OutcomeRejected
	if err := o.save(ctx, c, pinnedVersion, entry); err != nil {
		return TransitionResult{}, err
	}

	if o.metrics != nil {
		o.metrics.CasesRejectedTotal.Inc()
	}
	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventCaseRejected,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomeRejected),
		Reason:      reason,
	}, "case_id", c.ID, "reason", reason)

	return TransitionResult{
		Case:    c,
		Outcome: models.OutcomeRejected,
		Reason:  reason,
	}, nil
}

// externalFailure records a gateway failure in history before surfacing it.
// Unrecoverable permanent failures terminate the case; everything else
// leaves the stage unchanged and resumable.
func (o *Orchestrator) externalFailure(ctx context.Context, c *models.ClearanceCase, req models.ActionRequest, res models.ExternalQueryResult) (TransitionResult, error) {
	if res.Unrecoverable() {
		return o.reject(ctx, c, req, c.Version, res.Reason)
	}

	retryable := res.Failure == models.FailureTransient
	entry := models.HistoryEntry{
		Stage:          c.Stage,
		Timestamp:      o.now().UTC(),
		Actor:          req.Actor,
		Action:         req.Action,
		Outcome:        models.OutcomeFailed,
		IdempotencyKey: req.IdempotencyKey,
		PayloadHash:    req.PayloadHash(),
		Detail:         res.Reason,
		RetryHint:      retryable,
	}
	if err := o.store.Append(ctx, c.ID, entry); err != nil {
		return TransitionResult{}, err
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventExternalCallFailed,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomeFailed),
		Reason:      res.Reason,
	}, "case_id", c.ID, "system", res.System, "transient", retryable)

	return TransitionResult{
		Case:      c,
		Outcome:   models.OutcomeFailed,
		RetryHint: retryable,
		Reason:    res.Reason,
		External:  &res,
	}, nil
}

// advanceEntry mutates the stage and returns the matching history entry.
func (o *Orchestrator) advanceEntry(c *models.ClearanceCase, req models.ActionRequest, to models.Stage, detail string) models.HistoryEntry {
	c.Stage = to
	return models.HistoryEntry{
		Stage:          to,
		Timestamp:      o.now().UTC(),
		Actor:          req.Actor,
		Action:         req.Action,
		Outcome:        models.OutcomeAdvanced,
		IdempotencyKey: req.IdempotencyKey,
		PayloadHash:    req.PayloadHash(),
		Detail:         detail,
	}
}

// save appends the entry and writes the case back under its pinned version.
func (o *Orchestrator) save(ctx context.Context, c *models.ClearanceCase, pinnedVersion int64, entry models.HistoryEntry) error {
	entry.Seq = c.NextSeq()
	c.History = append(c.History, entry)
	return o.store.Save(ctx, c, pinnedVersion)
}

func amountString(c *models.ClearanceCase) string {
	if c.AssessedDuty == nil {
		return "0"
	}
	return strconv.FormatInt(c.AssessedDuty.Amount, 10)
}
