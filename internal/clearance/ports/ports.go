// Package ports defines shared interfaces for the clearance module.
// Interfaces live here when consumed by multiple packages to avoid duplication.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"time"

	"portflow/internal/clearance/models"
	id "portflow/pkg/domain"
	"portflow/pkg/platform/audit"
	"portflow/pkg/requestcontext"
)

// CaseStore is the persisted-state boundary. No other component touches
// storage directly.
type CaseStore interface {
	// Create persists a new case. Fails with CodeConflict if the container
	// already has a live case.
	Create(ctx context.Context, c *models.ClearanceCase) error

	// Load returns the case with its current version.
	Load(ctx context.Context, caseID id.CaseID) (*models.ClearanceCase, error)

	// LoadByContainer returns the newest case for a container.
	LoadByContainer(ctx context.Context, containerID id.ContainerID) (*models.ClearanceCase, error)

	// Save writes the case back iff its stored version still equals
	// expectedVersion, bumping the version. Fails with CodeConflict on a
	// write race; the caller must re-read and retry.
	Save(ctx context.Context, c *models.ClearanceCase, expectedVersion int64) error

	// Append adds a history entry without touching the rest of the case.
	// Used to record failures observed outside a version-pinned transition.
	Append(ctx context.Context, caseID id.CaseID, entry models.HistoryEntry) error

	// List returns cases, optionally filtered by stage, newest first.
	List(ctx context.Context, stage models.Stage, limit int) ([]*models.ClearanceCase, error)
}

// Gateway is the uniform client boundary to the external authority systems.
// Implementations apply per-system timeout and bounded retry; only transient
// failures are retried.
type Gateway interface {
	Call(ctx context.Context, system models.SystemID, operation string, request map[string]string) (models.ExternalQueryResult, error)
}

// QueryCache holds recent ExternalQueryResults for staleness-aware reads.
type QueryCache interface {
	Get(ctx context.Context, key string) (models.ExternalQueryResult, bool, error)
	Put(ctx context.Context, key string, result models.ExternalQueryResult, ttl time.Duration) error
}

// Approval is a live pending-approval record held by the confirmation gate.
type Approval struct {
	Token       string
	TokenID     string
	CaseID      id.CaseID
	Action      models.ActionKind
	RequestedAt time.Time
	ExpiresAt   time.Time
}

// ConfirmationGate is the human-approval checkpoint before irreversible
// actions. RequestApproval is idempotent per caseID+action; Resolve settles a
// token exactly once.
type ConfirmationGate interface {
	RequestApproval(ctx context.Context, caseID id.CaseID, action models.ActionKind) (Approval, error)

	// Resolve marks the token approved or denied. Resolving an unknown or
	// already-resolved token fails with CodeUnauthorized.
	Resolve(ctx context.Context, token string, approved bool) (Approval, error)

	// Check reports whether the given token is an approved, unexpired grant
	// for caseID+action.
	Check(ctx context.Context, token string, caseID id.CaseID, action models.ActionKind) (bool, error)

	// Clear removes the pending record once the gated action has executed.
	Clear(ctx context.Context, caseID id.CaseID, action models.ActionKind) error
}

// DutyCalculator computes assessed duty from declaration data. Deterministic;
// identical inputs always produce an identical result.
type DutyCalculator interface {
	Assess(declaration models.CargoDeclaration) models.DutyAssessment
}

// AuditPublisher emits audit events for workflow-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit emits an audit-worthy event to both the structured log and the
// audit publisher, tolerating either being absent. The request correlation ID
// is stamped onto the event when the context carries one.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event, args ...any) {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if logger != nil {
		logger.InfoContext(ctx, string(event.Action), args...)
	}
	if publisher != nil {
		if err := publisher.Emit(ctx, event); err != nil && logger != nil {
			logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
		}
	}
}
