package service

import (
	"time"

	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports"
)

// TransitionResult is the orchestrator's structured answer to one action
// request. Outcome is the discriminator the dispatcher maps onto the response
// contract.
type TransitionResult struct {
	Case    *models.ClearanceCase
	Outcome models.Outcome

	// PendingApproval is set when the action halted at the confirmation
	// gate and carries the token the approver must resolve.
	PendingApproval *ports.Approval

	// Replayed marks a result served from recorded history without any
	// external call.
	Replayed bool

	// RetryHint marks a failed outcome whose cause was transient; the
	// caller may retry with the same idempotency key.
	RetryHint bool

	// Reason explains rejected and failed outcomes.
	Reason string

	// External carries the last normalized gateway result, when one was
	// observed during this request.
	External *models.ExternalQueryResult

	// LastCheckedAt is the observation time backing a status read.
	LastCheckedAt time.Time
}

// StatusResult is the answer to a customs status check: the assessment
// result on the first check, a staleness-aware dual read afterwards.
type StatusResult struct {
	Case          *models.ClearanceCase
	Outcome       models.Outcome
	Reason        string
	RetryHint     bool
	Customs       models.ExternalQueryResult
	Shipping      models.ExternalQueryResult
	FromCache     bool
	LastCheckedAt time.Time
}
