package models

import "time"

// SystemID addresses one of the external authority systems.
type SystemID string

const (
	SystemCustoms       SystemID = "customs"
	SystemShippingLine  SystemID = "shipping_line"
	SystemPortAuthority SystemID = "port_authority"
)

// Gateway operations per system.
const (
	OpCustomsAssess      = "assess"
	OpCustomsStatus      = "status"
	OpCustomsPay         = "pay"
	OpShippingStatus     = "status"
	OpShippingRelease    = "release"
	OpInspectionSchedule = "schedule_inspection"
	OpGatePassIssue      = "issue_gate_pass"
)

// FailureClass separates retry-eligible external failures from immediately
// fatal ones.
type FailureClass string

const (
	FailureNone      FailureClass = ""
	FailureTransient FailureClass = "transient"
	FailurePermanent FailureClass = "permanent"
)

// ExternalQueryResult is the normalized response from the gateway. ObservedAt
// is the server-observed timestamp used for staleness checks.
type ExternalQueryResult struct {
	System     SystemID          `json:"system"`
	Operation  string            `json:"operation"`
	Success    bool              `json:"success"`
	Payload    map[string]string `json:"payload,omitempty"`
	Failure    FailureClass      `json:"failure,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	ObservedAt time.Time         `json:"observedAt"`
}

// Unrecoverable reports whether a permanent failure should route the case to
// Rejected rather than leaving it resumable. The external systems mark
// document fraud and outright rejections with these reason prefixes.
func (r ExternalQueryResult) Unrecoverable() bool {
	if r.Failure != FailurePermanent {
		return false
	}
	switch r.Payload["rejection"] {
	case "fraudulent_document", "rejected_document", "failed_inspection":
		return true
	}
	return false
}
