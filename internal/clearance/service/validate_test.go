package service

import (
	"context"

	"portflow/internal/clearance/models"
	dErrors "portflow/pkg/domain-errors"
)

const billOfLading = `B/L Number: BOL-2026-0042
Vessel Name: MV Apapa Trader
Consignee: Lagos Trading Co
Container: MSKU1234567
TIN: 01234567891
Port of Loading: Shanghai, China
Port of Discharge: Lagos, Nigeria
Description of Goods: Computer equipment
Gross Weight: 1,200 KG
HS Code: 8471
Declared Value: ₦400,000
Country of Origin: CN`

func (s *OrchestratorSuite) TestValidate_CreatesCaseAndAdvances() {
	ctx := context.Background()

	result, err := s.orchestrator.ValidateContainer(ctx, ValidateRequest{
		DocumentText:   billOfLading,
		Actor:          "agent",
		IdempotencyKey: "val-1",
	})
	s.Require().NoError(err)

	s.Equal(models.OutcomeAdvanced, result.Outcome)
	s.Equal(models.StageDocumentsValidated, result.Case.Stage)
	s.Equal("MSKU1234567", result.Case.ContainerID.String())
	s.Equal("BOL-2026-0042", result.Case.BillOfLadingRef)
	s.Equal("MV Apapa Trader", result.Case.VesselName)
	s.Equal("8471", result.Case.Declaration.HSCode)
	s.Equal(int64(40_000_000), result.Case.Declaration.DeclaredValue)
	s.InDelta(1200.0, result.Case.Declaration.WeightKG, 0.001)
	s.Empty(result.Case.ValidationIssues)
}

func (s *OrchestratorSuite) TestValidate_AdvisoriesDoNotBlock() {
	ctx := context.Background()
	doc := `Container: TGHU7654321
B/L Number: BOL-2026-0099
TIN: 09876543210`

	result, err := s.orchestrator.ValidateContainer(ctx, ValidateRequest{
		DocumentText: doc,
		Actor:        "agent",
	})
	s.Require().NoError(err)

	s.Equal(models.OutcomeAdvanced, result.Outcome)
	s.Equal(models.StageDocumentsValidated, result.Case.Stage)
	s.Contains(result.Case.ValidationIssues, "vessel name is missing")
	s.Contains(result.Case.ValidationIssues, "importer name is missing")
}

func (s *OrchestratorSuite) TestValidate_UnusableContainerIDIsInvalidInput() {
	ctx := context.Background()

	_, err := s.orchestrator.ValidateContainer(ctx, ValidateRequest{
		DocumentText: "B/L Number: BOL-1\nVessel Name: MV Test",
		Actor:        "agent",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.Contains(err.Error(), "container ID not found in document")
}

func (s *OrchestratorSuite) TestValidate_LiveCaseConflicts() {
	ctx := context.Background()

	first, err := s.orchestrator.ValidateContainer(ctx, ValidateRequest{
		DocumentText:   billOfLading,
		Actor:          "agent",
		IdempotencyKey: "val-1",
	})
	s.Require().NoError(err)

	// Same document, same key: the recorded result replays.
	replay, err := s.orchestrator.ValidateContainer(ctx, ValidateRequest{
		DocumentText:   billOfLading,
		Actor:          "agent",
		IdempotencyKey: "val-1",
	})
	s.Require().NoError(err)
	s.True(replay.Replayed)
	s.Equal(first.Case.ID, replay.Case.ID)

	// A different submission for the same container conflicts.
	_, err = s.orchestrator.ValidateContainer(ctx, ValidateRequest{
		DocumentText:   billOfLading,
		Actor:          "agent",
		IdempotencyKey: "val-2",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
