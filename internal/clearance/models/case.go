package models

import (
	"time"

	id "portflow/pkg/domain"
)

// Outcome discriminates the result of a transition attempt.
type Outcome string

const (
	OutcomeAdvanced            Outcome = "advanced"
	OutcomePendingConfirmation Outcome = "pendingConfirmation"
	OutcomeRejected            Outcome = "rejected"
	OutcomeFailed              Outcome = "failed"
)

// HistoryEntry is one element of a case's append-only audit trail. Completed
// entries are the source of truth for "has this action already happened" and
// make externally-effectful actions idempotent under retry.
type HistoryEntry struct {
	Seq            int        `json:"seq"`
	Stage          Stage      `json:"stage"`
	Timestamp      time.Time  `json:"timestamp"`
	Actor          string     `json:"actor"`
	Action         ActionKind `json:"action"`
	Outcome        Outcome    `json:"outcome"`
	IdempotencyKey string     `json:"idempotencyKey,omitempty"`
	PayloadHash    string     `json:"payloadHash,omitempty"`
	Detail         string     `json:"detail,omitempty"`
	PaymentRef     string     `json:"paymentRef,omitempty"`
	RetryHint      bool       `json:"retryHint,omitempty"`
}

// DutyAssessment is the result of the duty calculation. Amounts are NGN in
// kobo (minor units). Once recorded on a case it is immutable; re-running the
// assessment replays the recorded result.
type DutyAssessment struct {
	Amount      int64     `json:"amount"`
	ImportDuty  int64     `json:"importDuty"`
	VAT         int64     `json:"vat"`
	Levies      int64     `json:"levies"`
	ContentHash string    `json:"contentHash"`
	AssessedAt  time.Time `json:"assessedAt"`
}

// InspectionSlot is a scheduled physical inspection window.
type InspectionSlot struct {
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
	Location    string    `json:"location"`
}

// PendingConfirmation tracks an action awaiting human approval. Non-nil iff
// the case sits in a confirmation-gated sub-state.
type PendingConfirmation struct {
	Action      ActionKind `json:"action"`
	TokenID     string     `json:"tokenId"`
	RequestedAt time.Time  `json:"requestedAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
}

// CargoDeclaration is the declaration data extracted from the Bill of Lading,
// the input to duty calculation.
type CargoDeclaration struct {
	HSCode        string  `json:"hsCode"`
	DeclaredValue int64   `json:"declaredValue"` // NGN kobo; 0 when undeclared
	WeightKG      float64 `json:"weightKg"`
	Origin        string  `json:"origin"`
}

// ClearanceCase is one container's end-to-end journey through the workflow.
// Stage is mutated only by the orchestrator; Version backs the store's
// optimistic single-writer check.
type ClearanceCase struct {
	ID              id.CaseID
	ContainerID     id.ContainerID
	BillOfLadingRef string

	Stage   Stage
	Version int64
	History []HistoryEntry

	VesselName       string
	ImporterName     string
	ImporterTIN      string
	PortOfLoading    string
	PortOfDischarge  string
	CargoDescription string
	Declaration      CargoDeclaration
	ValidationIssues []string

	AssessedDuty        *DutyAssessment
	PaymentRef          string
	PendingConfirmation *PendingConfirmation
	InspectionSlot      *InspectionSlot
	GatePassRef         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NextSeq returns the sequence number the next history entry must carry.
func (c *ClearanceCase) NextSeq() int {
	return len(c.History) + 1
}

// CompletedEntry returns the recorded completed entry for action+key, if any.
// Pending and failed entries do not count as completed.
func (c *ClearanceCase) CompletedEntry(action ActionKind, idempotencyKey string) (HistoryEntry, bool) {
	if idempotencyKey == "" {
		return HistoryEntry{}, false
	}
	for _, e := range c.History {
		if e.Action == action && e.IdempotencyKey == idempotencyKey &&
			(e.Outcome == OutcomeAdvanced || e.Outcome == OutcomeRejected) {
			return e, true
		}
	}
	return HistoryEntry{}, false
}

// Clone returns a deep copy so store implementations never hand out shared
// mutable state.
func (c *ClearanceCase) Clone() *ClearanceCase {
	cp := *c
	cp.History = make([]HistoryEntry, len(c.History))
	copy(cp.History, c.History)
	cp.ValidationIssues = append([]string(nil), c.ValidationIssues...)
	if c.AssessedDuty != nil {
		d := *c.AssessedDuty
		cp.AssessedDuty = &d
	}
	if c.PendingConfirmation != nil {
		p := *c.PendingConfirmation
		cp.PendingConfirmation = &p
	}
	if c.InspectionSlot != nil {
		s := *c.InspectionSlot
		cp.InspectionSlot = &s
	}
	return &cp
}
