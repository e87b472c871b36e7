package handler

import (
	"time"

	"portflow/internal/clearance/models"
)

// caseView is the read-model rendering of a clearance case.
type caseView struct {
	CaseID          string   `json:"caseId"`
	ContainerID     string   `json:"containerId"`
	BillOfLadingRef string   `json:"billOfLadingRef,omitempty"`
	Stage           string   `json:"stage"`
	Version         int64    `json:"version"`
	VesselName      string   `json:"vesselName,omitempty"`
	ImporterName    string   `json:"importerName,omitempty"`
	PortOfLoading   string   `json:"portOfLoading,omitempty"`
	PortOfDischarge string   `json:"portOfDischarge,omitempty"`
	Issues          []string `json:"issues,omitempty"`

	AssessedDutyKobo *int64    `json:"assessedDutyKobo,omitempty"`
	PaymentRef       string    `json:"paymentRef,omitempty"`
	GatePassRef      string    `json:"gatePassRef,omitempty"`
	InspectionSlot   *slotView `json:"inspectionSlot,omitempty"`
	PendingAction    string    `json:"pendingAction,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	History []historyView `json:"history,omitempty"`
}

type slotView struct {
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
	Location    string    `json:"location"`
}

type historyView struct {
	Seq       int       `json:"seq"`
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor,omitempty"`
	Action    string    `json:"action,omitempty"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	RetryHint bool      `json:"retryHint,omitempty"`
}

func renderCase(c *models.ClearanceCase, withHistory bool) caseView {
	view := caseView{
		CaseID:          c.ID.String(),
		ContainerID:     c.ContainerID.String(),
		BillOfLadingRef: c.BillOfLadingRef,
		Stage:           string(c.Stage),
		Version:         c.Version,
		VesselName:      c.VesselName,
		ImporterName:    c.ImporterName,
		PortOfLoading:   c.PortOfLoading,
		PortOfDischarge: c.PortOfDischarge,
		Issues:          c.ValidationIssues,
		PaymentRef:      c.PaymentRef,
		GatePassRef:     c.GatePassRef,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.AssessedDuty != nil {
		amount := c.AssessedDuty.Amount
		view.AssessedDutyKobo = &amount
	}
	if c.InspectionSlot != nil {
		view.InspectionSlot = &slotView{
			WindowStart: c.InspectionSlot.WindowStart,
			WindowEnd:   c.InspectionSlot.WindowEnd,
			Location:    c.InspectionSlot.Location,
		}
	}
	if c.PendingConfirmation != nil {
		view.PendingAction = string(c.PendingConfirmation.Action)
	}
	if withHistory {
		view.History = make([]historyView, 0, len(c.History))
		for _, e := range c.History {
			view.History = append(view.History, historyView{
				Seq:       e.Seq,
				Stage:     string(e.Stage),
				Timestamp: e.Timestamp,
				Actor:     e.Actor,
				Action:    string(e.Action),
				Outcome:   string(e.Outcome),
				Detail:    e.Detail,
				RetryHint: e.RetryHint,
			})
		}
	}
	return view
}
