package models

// Stage is a case's position in the clearance state machine. Stages only
// advance along the directed edges owned by the orchestrator; Rejected is
// reachable from any non-terminal stage on unrecoverable failure.
type Stage string

const (
	StageSubmitted                    Stage = "Submitted"
	StageDocumentsValidated           Stage = "DocumentsValidated"
	StageCustomsAssessed              Stage = "CustomsAssessed"
	StageAwaitingPaymentConfirmation  Stage = "AwaitingPaymentConfirmation"
	StageDutyPaid                     Stage = "DutyPaid"
	StageAwaitingReleaseConfirmation  Stage = "AwaitingReleaseConfirmation"
	StageShippingReleased             Stage = "ShippingReleased"
	StageInspectionScheduled          Stage = "InspectionScheduled"
	StageInspectionCleared            Stage = "InspectionCleared"
	StageGatePassIssued               Stage = "GatePassIssued"
	StageRejected                     Stage = "Rejected"
)

// stageOrder gives each forward stage its position in the directed edge order.
// Rejected sits outside the order.
var stageOrder = map[Stage]int{
	StageSubmitted:                   0,
	StageDocumentsValidated:          1,
	StageCustomsAssessed:             2,
	StageAwaitingPaymentConfirmation: 3,
	StageDutyPaid:                    4,
	StageAwaitingReleaseConfirmation: 5,
	StageShippingReleased:            6,
	StageInspectionScheduled:         7,
	StageInspectionCleared:           8,
	StageGatePassIssued:              9,
}

// IsValid reports whether s is a known stage.
func (s Stage) IsValid() bool {
	if s == StageRejected {
		return true
	}
	_, ok := stageOrder[s]
	return ok
}

// Terminal reports whether the case is immutable except for reads.
func (s Stage) Terminal() bool {
	return s == StageGatePassIssued || s == StageRejected
}

// AwaitingConfirmation reports whether s is a confirmation-gated sub-state.
func (s Stage) AwaitingConfirmation() bool {
	return s == StageAwaitingPaymentConfirmation || s == StageAwaitingReleaseConfirmation
}

// Ordinal returns the stage's position in the forward order, with Rejected
// and unknown stages reporting -1.
func (s Stage) Ordinal() int {
	if pos, ok := stageOrder[s]; ok {
		return pos
	}
	return -1
}

// PriorActionStage returns the stage a confirmation sub-state reverts to when
// its pending approval expires or is denied.
func (s Stage) PriorActionStage() (Stage, bool) {
	switch s {
	case StageAwaitingPaymentConfirmation:
		return StageCustomsAssessed, true
	case StageAwaitingReleaseConfirmation:
		return StageDutyPaid, true
	default:
		return s, false
	}
}
