package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose. Categories
// map onto Kafka topics and retention policies.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance:
	// payments, releases, rejections. These require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Topic returns the Kafka topic name for the category.
func (c EventCategory) Topic() string {
	return "portflow.audit." + string(c)
}

// Action names an auditable workflow action.
type Action string

const (
	EventCaseCreated         Action = "case_created"
	EventDocumentsValidated  Action = "documents_validated"
	EventCaseRejected        Action = "case_rejected"
	EventDutyAssessed        Action = "duty_assessed"
	EventApprovalRequested   Action = "approval_requested"
	EventApprovalResolved    Action = "approval_resolved"
	EventApprovalExpired     Action = "approval_expired"
	EventDutyPaid            Action = "duty_paid"
	EventContainerReleased   Action = "container_released"
	EventInspectionScheduled Action = "inspection_scheduled"
	EventInspectionCompleted Action = "inspection_completed"
	EventGatePassIssued      Action = "gate_pass_issued"
	EventExternalCallFailed  Action = "external_call_failed"
)

// eventCategories maps each workflow action to its category. Financially or
// legally consequential actions are compliance; the rest are operations.
var eventCategories = map[Action]EventCategory{
	EventCaseCreated:         CategoryCompliance,
	EventCaseRejected:        CategoryCompliance,
	EventDutyPaid:            CategoryCompliance,
	EventContainerReleased:   CategoryCompliance,
	EventGatePassIssued:      CategoryCompliance,
	EventApprovalResolved:    CategoryCompliance,

	EventDocumentsValidated:  CategoryOperations,
	EventDutyAssessed:        CategoryOperations,
	EventApprovalRequested:   CategoryOperations,
	EventApprovalExpired:     CategoryOperations,
	EventInspectionScheduled: CategoryOperations,
	EventInspectionCompleted: CategoryOperations,
	EventExternalCallFailed:  CategoryOperations,
}

// Category returns the EventCategory for this action. Unknown actions default
// to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := eventCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key workflow actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category    EventCategory `json:"category"`
	Timestamp   time.Time     `json:"timestamp"`
	CaseID      string        `json:"caseId"`
	ContainerID string        `json:"containerId,omitempty"`
	Actor       string        `json:"actor,omitempty"`
	Action      Action        `json:"action"`
	Stage       string        `json:"stage,omitempty"`
	Outcome     string        `json:"outcome,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string `json:"requestId,omitempty"`
}

// Normalize fills in derivable fields so emitters stay terse.
func (e Event) Normalize(now time.Time) Event {
	if e.Category == "" {
		e.Category = e.Action.Category()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
