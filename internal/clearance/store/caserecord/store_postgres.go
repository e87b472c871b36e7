package caserecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"portflow/internal/clearance/models"
	id "portflow/pkg/domain"
	dErrors "portflow/pkg/domain-errors"
)

// Schema is the DDL for the case store. Applied by integration tests and
// deploy tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS clearance_cases (
	id                   UUID PRIMARY KEY,
	container_id         TEXT NOT NULL,
	bol_ref              TEXT NOT NULL DEFAULT '',
	stage                TEXT NOT NULL,
	version              BIGINT NOT NULL,
	vessel_name          TEXT NOT NULL DEFAULT '',
	importer_name        TEXT NOT NULL DEFAULT '',
	importer_tin         TEXT NOT NULL DEFAULT '',
	port_of_loading      TEXT NOT NULL DEFAULT '',
	port_of_discharge    TEXT NOT NULL DEFAULT '',
	cargo_description    TEXT NOT NULL DEFAULT '',
	declaration          JSONB NOT NULL DEFAULT '{}',
	validation_issues    JSONB NOT NULL DEFAULT '[]',
	assessed_duty        JSONB,
	payment_ref          TEXT NOT NULL DEFAULT '',
	pending_confirmation JSONB,
	inspection_slot      JSONB,
	gate_pass_ref        TEXT NOT NULL DEFAULT '',
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clearance_cases_container
	ON clearance_cases (container_id, created_at DESC);

CREATE UNIQUE INDEX IF NOT EXISTS idx_clearance_cases_live_container
	ON clearance_cases (container_id)
	WHERE stage NOT IN ('GatePassIssued', 'Rejected');

CREATE TABLE IF NOT EXISTS case_history (
	case_id UUID NOT NULL REFERENCES clearance_cases (id),
	seq     INT NOT NULL,
	entry   JSONB NOT NULL,
	PRIMARY KEY (case_id, seq)
);
`

// PostgresStore is the durable case store. Save performs the optimistic
// version check that backs single-writer-per-case semantics.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

type PostgresOption func(*PostgresStore)

// WithClock sets the timestamp source for testability.
func WithClock(clock func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostgresStore) Create(ctx context.Context, c *models.ClearanceCase) error {
	now := s.clock().UTC()
	c.Version = 1
	c.CreatedAt = now
	c.UpdatedAt = now

	cols, err := encodeCase(c)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create case: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO clearance_cases (
			id, container_id, bol_ref, stage, version,
			vessel_name, importer_name, importer_tin,
			port_of_loading, port_of_discharge, cargo_description,
			declaration, validation_issues, assessed_duty, payment_ref,
			pending_confirmation, inspection_slot, gate_pass_ref,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		c.ID.String(), c.ContainerID.String(), c.BillOfLadingRef, string(c.Stage), c.Version,
		c.VesselName, c.ImporterName, c.ImporterTIN,
		c.PortOfLoading, c.PortOfDischarge, c.CargoDescription,
		cols.declaration, cols.validationIssues, cols.assessedDuty, c.PaymentRef,
		cols.pendingConfirmation, cols.inspectionSlot, c.GatePassRef,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return dErrors.Newf(dErrors.CodeConflict, "container %s already has a live case", c.ContainerID)
		}
		return fmt.Errorf("insert case: %w", err)
	}

	if err := insertHistory(ctx, tx, c.ID, c.History, 0); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create case: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, caseID id.CaseID) (*models.ClearanceCase, error) {
	return s.loadWhere(ctx, `id = $1`, caseID.String())
}

func (s *PostgresStore) LoadByContainer(ctx context.Context, containerID id.ContainerID) (*models.ClearanceCase, error) {
	c, err := s.loadWhere(ctx, `container_id = $1 ORDER BY created_at DESC LIMIT 1`, containerID.String())
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no case for container %s", containerID)
	}
	return c, err
}

func (s *PostgresStore) Save(ctx context.Context, c *models.ClearanceCase, expectedVersion int64) error {
	cols, err := encodeCase(c)
	if err != nil {
		return err
	}
	now := s.clock().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save case: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE clearance_cases SET
			stage = $1, version = version + 1,
			declaration = $2, validation_issues = $3, assessed_duty = $4,
			payment_ref = $5, pending_confirmation = $6, inspection_slot = $7,
			gate_pass_ref = $8, updated_at = $9
		WHERE id = $10 AND version = $11`,
		string(c.Stage),
		cols.declaration, cols.validationIssues, cols.assessedDuty,
		c.PaymentRef, cols.pendingConfirmation, cols.inspectionSlot,
		c.GatePassRef, now,
		c.ID.String(), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case rows: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing case from a version race.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM clearance_cases WHERE id = $1)`, c.ID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("check case existence: %w", err)
		}
		if !exists {
			return dErrors.Newf(dErrors.CodeNotFound, "case %s not found", c.ID)
		}
		return dErrors.Newf(dErrors.CodeConflict,
			"case %s was modified concurrently (expected version %d)", c.ID, expectedVersion)
	}

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM case_history WHERE case_id = $1`, c.ID.String()).Scan(&existing); err != nil {
		return fmt.Errorf("count history: %w", err)
	}
	if len(c.History) < existing {
		return dErrors.Newf(dErrors.CodeConflict, "case %s history must be append-only", c.ID)
	}
	if err := insertHistory(ctx, tx, c.ID, c.History, existing); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save case: %w", err)
	}
	c.Version = expectedVersion + 1
	c.UpdatedAt = now
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, caseID id.CaseID, entry models.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append history: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM case_history WHERE case_id = $1`, caseID.String()).Scan(&next)
	if err != nil {
		return fmt.Errorf("next history seq: %w", err)
	}
	entry.Seq = next

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO case_history (case_id, seq, entry) VALUES ($1, $2, $3)`,
		caseID.String(), entry.Seq, raw); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE clearance_cases SET updated_at = $1 WHERE id = $2`,
		s.clock().UTC(), caseID.String()); err != nil {
		return fmt.Errorf("touch case: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append history: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, stage models.Stage, limit int) ([]*models.ClearanceCase, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id FROM clearance_cases`
	args := []any{}
	if stage != "" {
		query += ` WHERE stage = $1`
		args = append(args, string(stage))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var caseID string
		if err := rows.Scan(&caseID); err != nil {
			return nil, fmt.Errorf("scan case id: %w", err)
		}
		ids = append(ids, caseID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	out := make([]*models.ClearanceCase, 0, len(ids))
	for _, caseID := range ids {
		c, err := s.loadWhere(ctx, `id = $1`, caseID)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *PostgresStore) loadWhere(ctx context.Context, where string, arg any) (*models.ClearanceCase, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, container_id, bol_ref, stage, version,
			vessel_name, importer_name, importer_tin,
			port_of_loading, port_of_discharge, cargo_description,
			declaration, validation_issues, assessed_duty, payment_ref,
			pending_confirmation, inspection_slot, gate_pass_ref,
			created_at, updated_at
		FROM clearance_cases WHERE `+where, arg)

	var (
		c                   models.ClearanceCase
		caseID, containerID string
		stage               string
		declaration         []byte
		validationIssues    []byte
		assessedDuty        []byte
		pendingConfirmation []byte
		inspectionSlot      []byte
	)
	err := row.Scan(
		&caseID, &containerID, &c.BillOfLadingRef, &stage, &c.Version,
		&c.VesselName, &c.ImporterName, &c.ImporterTIN,
		&c.PortOfLoading, &c.PortOfDischarge, &c.CargoDescription,
		&declaration, &validationIssues, &assessedDuty, &c.PaymentRef,
		&pendingConfirmation, &inspectionSlot, &c.GatePassRef,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}

	parsedID, err := id.ParseCaseID(caseID)
	if err != nil {
		return nil, fmt.Errorf("corrupt case id %q: %w", caseID, err)
	}
	c.ID = parsedID
	c.ContainerID = id.ContainerID(containerID)
	c.Stage = models.Stage(stage)

	if err := json.Unmarshal(declaration, &c.Declaration); err != nil {
		return nil, fmt.Errorf("decode declaration: %w", err)
	}
	if err := json.Unmarshal(validationIssues, &c.ValidationIssues); err != nil {
		return nil, fmt.Errorf("decode validation issues: %w", err)
	}
	if len(assessedDuty) > 0 {
		c.AssessedDuty = &models.DutyAssessment{}
		if err := json.Unmarshal(assessedDuty, c.AssessedDuty); err != nil {
			return nil, fmt.Errorf("decode assessed duty: %w", err)
		}
	}
	if len(pendingConfirmation) > 0 {
		c.PendingConfirmation = &models.PendingConfirmation{}
		if err := json.Unmarshal(pendingConfirmation, c.PendingConfirmation); err != nil {
			return nil, fmt.Errorf("decode pending confirmation: %w", err)
		}
	}
	if len(inspectionSlot) > 0 {
		c.InspectionSlot = &models.InspectionSlot{}
		if err := json.Unmarshal(inspectionSlot, c.InspectionSlot); err != nil {
			return nil, fmt.Errorf("decode inspection slot: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM case_history WHERE case_id = $1 ORDER BY seq`, caseID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		var entry models.HistoryEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		c.History = append(c.History, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &c, nil
}

type encodedColumns struct {
	declaration         []byte
	validationIssues    []byte
	assessedDuty        any
	pendingConfirmation any
	inspectionSlot      any
}

func encodeCase(c *models.ClearanceCase) (encodedColumns, error) {
	var cols encodedColumns
	var err error

	if cols.declaration, err = json.Marshal(c.Declaration); err != nil {
		return cols, fmt.Errorf("encode declaration: %w", err)
	}
	issues := c.ValidationIssues
	if issues == nil {
		issues = []string{}
	}
	if cols.validationIssues, err = json.Marshal(issues); err != nil {
		return cols, fmt.Errorf("encode validation issues: %w", err)
	}
	if c.AssessedDuty != nil {
		raw, err := json.Marshal(c.AssessedDuty)
		if err != nil {
			return cols, fmt.Errorf("encode assessed duty: %w", err)
		}
		cols.assessedDuty = raw
	}
	if c.PendingConfirmation != nil {
		raw, err := json.Marshal(c.PendingConfirmation)
		if err != nil {
			return cols, fmt.Errorf("encode pending confirmation: %w", err)
		}
		cols.pendingConfirmation = raw
	}
	if c.InspectionSlot != nil {
		raw, err := json.Marshal(c.InspectionSlot)
		if err != nil {
			return cols, fmt.Errorf("encode inspection slot: %w", err)
		}
		cols.inspectionSlot = raw
	}
	return cols, nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, caseID id.CaseID, history []models.HistoryEntry, from int) error {
	for i := from; i < len(history); i++ {
		entry := history[i]
		entry.Seq = i + 1
		raw, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode history entry: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO case_history (case_id, seq, entry) VALUES ($1, $2, $3)`,
			caseID.String(), entry.Seq, raw); err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}
	}
	return nil
}
