// Package dispatcher adapts the tool-style action surface onto orchestrator
// calls. It performs no business logic: it parses identifiers, forwards the
// request, and shapes the structured result into the response contract.
package dispatcher

import (
	"context"
	"time"

	"portflow/internal/clearance/duty"
	"portflow/internal/clearance/models"
	"portflow/internal/clearance/service"
	id "portflow/pkg/domain"
	dErrors "portflow/pkg/domain-errors"
)

// Response is the uniform answer to every tool action. Stage and Outcome are
// always present; the remaining fields appear when the action produced them.
type Response struct {
	CaseID      string `json:"caseId"`
	ContainerID string `json:"containerId,omitempty"`
	Stage       string `json:"stage"`
	Outcome     string `json:"outcome"`

	Issues          []string          `json:"issues,omitempty"`
	AssessedDuty    *DutyView         `json:"assessedDuty,omitempty"`
	PaymentRef      string            `json:"paymentRef,omitempty"`
	GatePassRef     string            `json:"gatePassRef,omitempty"`
	PendingApproval *ApprovalView     `json:"pendingApproval,omitempty"`
	InspectionSlot  *SlotView         `json:"inspectionSlot,omitempty"`
	CustomsStatus   *SystemStatusView `json:"customsStatus,omitempty"`
	ShippingStatus  *SystemStatusView `json:"shippingStatus,omitempty"`
	FromCache       bool              `json:"fromCache,omitempty"`
	LastCheckedAt   *time.Time        `json:"lastCheckedAt,omitempty"`

	Replayed  bool   `json:"replayed,omitempty"`
	RetryHint bool   `json:"retryHint,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// DutyView renders an assessment for the caller.
type DutyView struct {
	Amount     int64     `json:"amountKobo"`
	Display    string    `json:"display"`
	ImportDuty int64     `json:"importDutyKobo"`
	VAT        int64     `json:"vatKobo"`
	Levies     int64     `json:"leviesKobo"`
	AssessedAt time.Time `json:"assessedAt"`
}

// ApprovalView carries the token the approver must later resolve.
type ApprovalView struct {
	Token     string    `json:"token"`
	Action    string    `json:"action"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SlotView is a scheduled inspection window.
type SlotView struct {
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
	Location    string    `json:"location"`
}

// SystemStatusView is one authority's answer to a status read.
type SystemStatusView struct {
	System     string    `json:"system"`
	Status     string    `json:"status,omitempty"`
	ObservedAt time.Time `json:"observedAt"`
}

// Dispatcher owns the orchestrator reference; one instance serves all
// actions.
type Dispatcher struct {
	orchestrator *service.Orchestrator
}

func New(orchestrator *service.Orchestrator) *Dispatcher {
	return &Dispatcher{orchestrator: orchestrator}
}

// ValidateContainer opens a clearance case from a Bill of Lading document.
func (d *Dispatcher) ValidateContainer(ctx context.Context, documentPayload, actor, idempotencyKey string) (Response, error) {
	if documentPayload == "" {
		return Response{}, dErrors.New(dErrors.CodeInvalidInput, "documentPayload is required")
	}
	result, err := d.orchestrator.ValidateContainer(ctx, service.ValidateRequest{
		DocumentText:   documentPayload,
		Actor:          actor,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return Response{}, err
	}
	return render(result), nil
}

// CheckCustomsStatus performs the assessment transition from
// DocumentsValidated, and a staleness-aware dual status read afterwards.
func (d *Dispatcher) CheckCustomsStatus(ctx context.Context, caseID, actor string) (Response, error) {
	cid, err := id.ParseCaseID(caseID)
	if err != nil {
		return Response{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid caseId")
	}
	status, err := d.orchestrator.Status(ctx, cid, actor)
	if err != nil {
		return Response{}, err
	}
	return renderStatus(status), nil
}

// PayCustomsDuty is confirmation-gated: without an approved token it returns
// pendingConfirmation and the approval to resolve.
func (d *Dispatcher) PayCustomsDuty(ctx context.Context, caseID, paymentMethod, idempotencyKey, approvalToken, actor string) (Response, error) {
	cid, err := id.ParseCaseID(caseID)
	if err != nil {
		return Response{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid caseId")
	}
	result, err := d.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionPayCustomsDuty,
		CaseID:         cid,
		Actor:          actor,
		IdempotencyKey: idempotencyKey,
		ApprovalToken:  approvalToken,
		Payload:        map[string]string{"paymentMethod": paymentMethod},
	})
	if err != nil {
		return Response{}, err
	}
	return render(result), nil
}

// ScheduleInspection books a physical inspection window with the port
// authority.
func (d *Dispatcher) ScheduleInspection(ctx context.Context, caseID, preferredWindow, actor, idempotencyKey string) (Response, error) {
	cid, err := id.ParseCaseID(caseID)
	if err != nil {
		return Response{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid caseId")
	}
	result, err := d.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionScheduleInspection,
		CaseID:         cid,
		Actor:          actor,
		IdempotencyKey: idempotencyKey,
		Payload:        map[string]string{"preferredWindow": preferredWindow},
	})
	if err != nil {
		return Response{}, err
	}
	return render(result), nil
}

// ReleaseContainer is confirmation-gated like payment, against the shipping
// line.
func (d *Dispatcher) ReleaseContainer(ctx context.Context, caseID, idempotencyKey, approvalToken, actor string) (Response, error) {
	cid, err := id.ParseCaseID(caseID)
	if err != nil {
		return Response{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid caseId")
	}
	result, err := d.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionReleaseContainer,
		CaseID:         cid,
		Actor:          actor,
		IdempotencyKey: idempotencyKey,
		ApprovalToken:  approvalToken,
	})
	if err != nil {
		return Response{}, err
	}
	return render(result), nil
}

// CompleteInspection records the inspector's verdict; a failed inspection
// terminates the case.
func (d *Dispatcher) CompleteInspection(ctx context.Context, caseID string, passed bool, actor, idempotencyKey string) (Response, error) {
	cid, err := id.ParseCaseID(caseID)
	if err != nil {
		return Response{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid caseId")
	}
	passedStr := "false"
	if passed {
		passedStr = "true"
	}
	result, err := d.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionCompleteInspection,
		CaseID:         cid,
		Actor:          actor,
		IdempotencyKey: idempotencyKey,
		Payload:        map[string]string{"passed": passedStr},
	})
	if err != nil {
		return Response{}, err
	}
	return render(result), nil
}

// IssueGatePass completes the workflow with the port authority's exit pass.
func (d *Dispatcher) IssueGatePass(ctx context.Context, caseID, actor, idempotencyKey string) (Response, error) {
	cid, err := id.ParseCaseID(caseID)
	if err != nil {
		return Response{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid caseId")
	}
	result, err := d.orchestrator.Transition(ctx, models.ActionRequest{
		Action:         models.ActionIssueGatePass,
		CaseID:         cid,
		Actor:          actor,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return Response{}, err
	}
	return render(result), nil
}

// ResolveConfirmation settles a pending approval token.
func (d *Dispatcher) ResolveConfirmation(ctx context.Context, token, actor string, approved bool) (Response, error) {
	if token == "" {
		return Response{}, dErrors.New(dErrors.CodeInvalidInput, "token is required")
	}
	result, err := d.orchestrator.ResolveConfirmation(ctx, token, actor, approved)
	if err != nil {
		return Response{}, err
	}
	return render(result), nil
}

func render(result service.TransitionResult) Response {
	resp := caseResponse(result.Case)
	resp.Outcome = string(result.Outcome)
	resp.Replayed = result.Replayed
	resp.RetryHint = result.RetryHint
	resp.Reason = result.Reason
	if result.PendingApproval != nil {
		resp.PendingApproval = &ApprovalView{
			Token:     result.PendingApproval.Token,
			Action:    string(result.PendingApproval.Action),
			ExpiresAt: result.PendingApproval.ExpiresAt,
		}
	}
	if !result.LastCheckedAt.IsZero() {
		t := result.LastCheckedAt
		resp.LastCheckedAt = &t
	}
	return resp
}

func renderStatus(status service.StatusResult) Response {
	resp := caseResponse(status.Case)
	resp.Outcome = string(status.Outcome)
	resp.Reason = status.Reason
	resp.RetryHint = status.RetryHint
	resp.FromCache = status.FromCache
	resp.CustomsStatus = systemStatusView(status.Customs)
	resp.ShippingStatus = systemStatusView(status.Shipping)
	if !status.LastCheckedAt.IsZero() {
		t := status.LastCheckedAt
		resp.LastCheckedAt = &t
	}
	return resp
}

// caseResponse renders the fields that come straight off the case record.
func caseResponse(c *models.ClearanceCase) Response {
	resp := Response{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Stage:       string(c.Stage),
		Issues:      c.ValidationIssues,
		PaymentRef:  c.PaymentRef,
		GatePassRef: c.GatePassRef,
	}
	if c.AssessedDuty != nil {
		resp.AssessedDuty = &DutyView{
			Amount:     c.AssessedDuty.Amount,
			Display:    duty.FormatNGN(c.AssessedDuty.Amount),
			ImportDuty: c.AssessedDuty.ImportDuty,
			VAT:        c.AssessedDuty.VAT,
			Levies:     c.AssessedDuty.Levies,
			AssessedAt: c.AssessedDuty.AssessedAt,
		}
	}
	if c.InspectionSlot != nil {
		resp.InspectionSlot = &SlotView{
			WindowStart: c.InspectionSlot.WindowStart,
			WindowEnd:   c.InspectionSlot.WindowEnd,
			Location:    c.InspectionSlot.Location,
		}
	}
	return resp
}

func systemStatusView(res models.ExternalQueryResult) *SystemStatusView {
	if res.System == "" {
		return nil
	}
	return &SystemStatusView{
		System:     string(res.System),
		Status:     res.Payload["status"],
		ObservedAt: res.ObservedAt,
	}
}
