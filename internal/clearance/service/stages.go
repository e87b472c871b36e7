package service

import (
	"portflow/internal/clearance/models"
)

// legalStages maps each action to the stages it may be requested from. An
// action requested from any other stage fails with InvalidTransition before
// anything is mutated or called.
var legalStages = map[models.ActionKind][]models.Stage{
	models.ActionCheckCustomsStatus: {
		// The assessment transition. From CustomsAssessed onward the action
		// is a pure read served by Status, not a transition.
		models.StageDocumentsValidated,
	},
	models.ActionPayCustomsDuty: {
		models.StageCustomsAssessed,
		models.StageAwaitingPaymentConfirmation,
	},
	models.ActionReleaseContainer: {
		models.StageDutyPaid,
		models.StageAwaitingReleaseConfirmation,
	},
	models.ActionScheduleInspection: {
		models.StageShippingReleased,
	},
	models.ActionCompleteInspection: {
		models.StageInspectionScheduled,
	},
	models.ActionIssueGatePass: {
		models.StageInspectionCleared,
	},
}

// stageAllows reports whether action may be requested while the case sits in
// stage.
func stageAllows(action models.ActionKind, stage models.Stage) bool {
	for _, s := range legalStages[action] {
		if s == stage {
			return true
		}
	}
	return false
}
