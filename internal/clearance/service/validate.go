package service

import (
	"context"
	"strings"

	"portflow/internal/clearance/docval"
	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports"
	id "portflow/pkg/domain"
	dErrors "portflow/pkg/domain-errors"
	"portflow/pkg/platform/audit"
)

// ValidateRequest carries the raw Bill of Lading text for case creation.
type ValidateRequest struct {
	DocumentText   string
	Actor          string
	IdempotencyKey string
}

// ValidateContainer parses and validates a Bill of Lading, opening a new
// clearance case. A container with a live case cannot be re-submitted; a
// resubmission of the same document against the live case replays the
// recorded validation result instead of creating a duplicate.
func (o *Orchestrator) ValidateContainer(ctx context.Context, req ValidateRequest) (TransitionResult, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.ValidateContainer")
	defer span.End()

	doc := docval.Parse(req.DocumentText)
	issues := docval.Validate(doc)

	containerID, parseErr := id.ParseContainerID(doc.ContainerID)
	if parseErr != nil {
		// No cargo identity to anchor a case on; surface the document issues
		// alongside the rejection.
		return TransitionResult{}, dErrors.Newf(dErrors.CodeInvalidInput,
			"document does not carry a usable container ID: %s", strings.Join(issues, "; "))
	}

	actionReq := models.ActionRequest{
		Action:         models.ActionValidateContainer,
		Actor:          req.Actor,
		IdempotencyKey: req.IdempotencyKey,
		Payload:        map[string]string{"containerId": doc.ContainerID, "bol": doc.BillOfLadingRef},
	}

	if existing, err := o.store.LoadByContainer(ctx, containerID); err == nil && !existing.Stage.Terminal() {
		if replay, ok, rerr := o.replay(existing, actionReq); rerr != nil {
			return TransitionResult{}, rerr
		} else if ok {
			return replay, nil
		}
		return TransitionResult{}, dErrors.Newf(dErrors.CodeConflict,
			"container %s already has a live clearance case", containerID)
	} else if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return TransitionResult{}, err
	}

	now := o.now().UTC()
	c := &models.ClearanceCase{
		ID:               id.NewCaseID(),
		ContainerID:      containerID,
		BillOfLadingRef:  doc.BillOfLadingRef,
		Stage:            models.StageSubmitted,
		VesselName:       doc.VesselName,
		ImporterName:     doc.ImporterName,
		ImporterTIN:      doc.ImporterTIN,
		PortOfLoading:    doc.PortOfLoading,
		PortOfDischarge:  doc.PortOfDischarge,
		CargoDescription: doc.CargoDescription,
		Declaration: models.CargoDeclaration{
			HSCode:        doc.HSCode,
			DeclaredValue: doc.DeclaredValueNGN,
			WeightKG:      doc.CargoWeightKG,
			Origin:        doc.Origin,
		},
		ValidationIssues: issues,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := o.store.Create(ctx, c); err != nil {
		return TransitionResult{}, err
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventCaseCreated,
		Stage:       string(c.Stage),
	}, "case_id", c.ID, "container_id", c.ContainerID, "bol", c.BillOfLadingRef)

	detail := "documents validated"
	if len(issues) > 0 {
		detail = "documents validated with advisories"
	}
	entry := o.advanceEntry(c, actionReq, models.StageDocumentsValidated, detail)
	if err := o.save(ctx, c, c.Version, entry); err != nil {
		return TransitionResult{}, err
	}

	ports.LogAudit(ctx, o.logger, o.auditPublisher, audit.Event{
		CaseID:      c.ID.String(),
		ContainerID: c.ContainerID.String(),
		Actor:       req.Actor,
		Action:      audit.EventDocumentsValidated,
		Stage:       string(c.Stage),
		Outcome:     string(models.OutcomeAdvanced),
	}, "case_id", c.ID, "issues", len(issues))

	return TransitionResult{
		Case:    c,
		Outcome: models.OutcomeAdvanced,
	}, nil
}
