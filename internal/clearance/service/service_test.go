package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports/mocks"
	"portflow/internal/clearance/store/caserecord"
	id "portflow/pkg/domain"
)

// OrchestratorSuite drives the workflow state machine against a real
// in-memory case store with mocked external collaborators.
type OrchestratorSuite struct {
	suite.Suite

	ctrl      *gomock.Controller
	store     *caserecord.InMemoryStore
	mockGw    *mocks.MockGateway
	mockGate  *mocks.MockConfirmationGate
	mockDuty  *mocks.MockDutyCalculator
	mockAudit *mocks.MockAuditPublisher

	clock time.Time

	orchestrator *Orchestrator
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = caserecord.NewInMemoryStore()
	s.mockGw = mocks.NewMockGateway(s.ctrl)
	s.mockGate = mocks.NewMockConfirmationGate(s.ctrl)
	s.mockDuty = mocks.NewMockDutyCalculator(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.clock = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator, err := New(s.store, s.mockGw, s.mockGate, s.mockDuty,
		WithLogger(logger),
		WithAuditPublisher(s.mockAudit),
		WithClock(func() time.Time { return s.clock }),
	)
	s.Require().NoError(err)
	s.orchestrator = orchestrator
}

func (s *OrchestratorSuite) TearDownTest() {
	s.ctrl.Finish()
}

// advanceClock moves the suite's fixed clock forward.
func (s *OrchestratorSuite) advanceClock(d time.Duration) {
	s.clock = s.clock.Add(d)
}

// seedCase creates a case directly in the store at the given stage.
func (s *OrchestratorSuite) seedCase(stage models.Stage) *models.ClearanceCase {
	containerID, err := id.ParseContainerID("MSKU1234567")
	s.Require().NoError(err)

	c := &models.ClearanceCase{
		ID:              id.NewCaseID(),
		ContainerID:     containerID,
		BillOfLadingRef: "BOL-2026-0042",
		Stage:           models.StageSubmitted,
		VesselName:      "MV Apapa Trader",
		ImporterName:    "Lagos Trading Co",
		ImporterTIN:     "01234567891",
		Declaration: models.CargoDeclaration{
			HSCode:        "8471",
			DeclaredValue: 40_000_000, // NGN 400,000 in kobo
			WeightKG:      1200,
			Origin:        "CN",
		},
	}
	s.Require().NoError(s.store.Create(context.Background(), c))

	if stage != models.StageSubmitted {
		c.Stage = stage
		c.History = append(c.History, models.HistoryEntry{
			Seq:       1,
			Stage:     stage,
			Timestamp: s.clock,
			Actor:     "system",
			Outcome:   models.OutcomeAdvanced,
		})
		s.Require().NoError(s.store.Save(context.Background(), c, c.Version))
	}
	return c
}

// assessedCase seeds a case at CustomsAssessed with a NGN 50,000 duty.
func (s *OrchestratorSuite) assessedCase() *models.ClearanceCase {
	c := s.seedCase(models.StageCustomsAssessed)
	c.AssessedDuty = &models.DutyAssessment{
		Amount:     5_000_000, // NGN 50,000 in kobo
		ImportDuty: 4_000_000,
		VAT:        1_000_000,
		AssessedAt: s.clock,
	}
	s.Require().NoError(s.store.Save(context.Background(), c, c.Version))
	return c
}

func successResult(system models.SystemID, op string, payload map[string]string, at time.Time) models.ExternalQueryResult {
	return models.ExternalQueryResult{
		System:     system,
		Operation:  op,
		Success:    true,
		Payload:    payload,
		ObservedAt: at,
	}
}
