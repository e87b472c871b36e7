package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	id "portflow/pkg/domain"
)

// ActionKind names a requested workflow transition. The first five are the
// tool surface consumed by the agent layer; the inspection result and gate
// pass actions are driven by port authority actors.
type ActionKind string

const (
	ActionValidateContainer  ActionKind = "validate_container"
	ActionCheckCustomsStatus ActionKind = "check_customs_status"
	ActionPayCustomsDuty     ActionKind = "pay_customs_duty"
	ActionScheduleInspection ActionKind = "schedule_inspection"
	ActionReleaseContainer   ActionKind = "release_container"
	ActionCompleteInspection ActionKind = "complete_inspection"
	ActionIssueGatePass      ActionKind = "issue_gate_pass"
)

// IsValid reports whether k names a known action.
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionValidateContainer, ActionCheckCustomsStatus, ActionPayCustomsDuty,
		ActionScheduleInspection, ActionReleaseContainer, ActionCompleteInspection,
		ActionIssueGatePass:
		return true
	}
	return false
}

// ConfirmationGated reports whether the action has irreversible real-world
// effect and must pass the confirmation gate before it executes.
func (k ActionKind) ConfirmationGated() bool {
	return k == ActionPayCustomsDuty || k == ActionReleaseContainer
}

// ActionRequest is a requested transition against one case.
type ActionRequest struct {
	Action         ActionKind
	CaseID         id.CaseID
	Actor          string
	IdempotencyKey string
	ApprovalToken  string
	Payload        map[string]string
}

// PayloadHash returns a stable digest of the request payload, used to detect
// idempotency key reuse with a different payload.
func (r ActionRequest) PayloadHash() string {
	if len(r.Payload) == 0 {
		return hashString(string(r.Action))
	}
	keys := make([]string, 0, len(r.Payload))
	for k := range r.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(string(r.Action))
	for _, k := range keys {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte(0)
		b.WriteString(r.Payload[k])
	}
	return hashString(b.String())
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON marshals v with sorted keys for content hashing.
func CanonicalJSON(v any) ([]byte, error) {
	// encoding/json sorts map keys; structs marshal in field order, which is
	// stable for a fixed type.
	return json.Marshal(v)
}
