// Package handler is the HTTP transport for the clearance workflow. It
// delegates to the dispatcher without embedding business logic so transport
// concerns remain isolated.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"portflow/internal/clearance/dispatcher"
	"portflow/internal/clearance/models"
	"portflow/internal/platform/metrics"
	"portflow/internal/platform/middleware"
	id "portflow/pkg/domain"
	dErrors "portflow/pkg/domain-errors"
)

// Dispatcher is the tool-style action surface consumed by this transport.
type Dispatcher interface {
	ValidateContainer(ctx context.Context, documentPayload, actor, idempotencyKey string) (dispatcher.Response, error)
	CheckCustomsStatus(ctx context.Context, caseID, actor string) (dispatcher.Response, error)
	PayCustomsDuty(ctx context.Context, caseID, paymentMethod, idempotencyKey, approvalToken, actor string) (dispatcher.Response, error)
	ScheduleInspection(ctx context.Context, caseID, preferredWindow, actor, idempotencyKey string) (dispatcher.Response, error)
	ReleaseContainer(ctx context.Context, caseID, idempotencyKey, approvalToken, actor string) (dispatcher.Response, error)
	CompleteInspection(ctx context.Context, caseID string, passed bool, actor, idempotencyKey string) (dispatcher.Response, error)
	IssueGatePass(ctx context.Context, caseID, actor, idempotencyKey string) (dispatcher.Response, error)
	ResolveConfirmation(ctx context.Context, token, actor string, approved bool) (dispatcher.Response, error)
}

// CaseReader serves the read endpoints.
type CaseReader interface {
	GetCase(ctx context.Context, caseID id.CaseID) (*models.ClearanceCase, error)
	ListCases(ctx context.Context, stage models.Stage, limit int) ([]*models.ClearanceCase, error)
}

// Handler handles the clearance endpoints.
type Handler struct {
	logger   *slog.Logger
	dispatch Dispatcher
	cases    CaseReader
	metrics  *metrics.Metrics
}

// New creates a new clearance Handler.
func New(dispatch Dispatcher, cases CaseReader, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		dispatch: dispatch,
		cases:    cases,
		metrics:  m,
	}
}

// Register registers the clearance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	api := chi.NewRouter()
	api.Use(middleware.Recovery(h.logger))
	api.Use(middleware.RequestID)
	api.Use(middleware.Logger(h.logger))
	api.Use(middleware.Timeout(30 * time.Second))
	api.Use(middleware.ContentTypeJSON)
	if h.metrics != nil {
		api.Use(h.metrics.Latency)
	}

	api.Post("/containers/validate", h.handleValidate)
	api.Get("/customs/status/{caseID}", h.handleCustomsStatus)
	api.Post("/customs/pay", h.handlePay)
	api.Post("/inspection/schedule", h.handleScheduleInspection)
	api.Post("/inspection/complete", h.handleCompleteInspection)
	api.Post("/containers/release", h.handleRelease)
	api.Post("/gatepass/issue", h.handleIssueGatePass)
	api.Post("/confirmations/resolve", h.handleResolve)
	api.Get("/cases/{caseID}", h.handleGetCase)
	api.Get("/cases", h.handleListCases)

	r.Mount("/api", api)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.dispatch.ValidateContainer(r.Context(), req.DocumentPayload, actorOr(req.Actor, "agent"), req.IdempotencyKey)
	if err != nil {
		h.fail(r.Context(), w, "validate_container", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleCustomsStatus(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	resp, err := h.dispatch.CheckCustomsStatus(r.Context(), caseID, "agent")
	if err != nil {
		h.fail(r.Context(), w, "check_customs_status", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.dispatch.PayCustomsDuty(r.Context(), req.CaseID, req.PaymentMethod, req.IdempotencyKey, req.ApprovalToken, actorOr(req.Actor, "agent"))
	if err != nil {
		h.fail(r.Context(), w, "pay_customs_duty", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleScheduleInspection(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.dispatch.ScheduleInspection(r.Context(), req.CaseID, req.PreferredWindow, actorOr(req.Actor, "agent"), req.IdempotencyKey)
	if err != nil {
		h.fail(r.Context(), w, "schedule_inspection", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCompleteInspection(w http.ResponseWriter, r *http.Request) {
	var req completeInspectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.dispatch.CompleteInspection(r.Context(), req.CaseID, req.Passed, actorOr(req.Actor, "inspector"), req.IdempotencyKey)
	if err != nil {
		h.fail(r.Context(), w, "complete_inspection", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req releaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.dispatch.ReleaseContainer(r.Context(), req.CaseID, req.IdempotencyKey, req.ApprovalToken, actorOr(req.Actor, "agent"))
	if err != nil {
		h.fail(r.Context(), w, "release_container", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleIssueGatePass(w http.ResponseWriter, r *http.Request) {
	var req gatePassRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.dispatch.IssueGatePass(r.Context(), req.CaseID, actorOr(req.Actor, "agent"), req.IdempotencyKey)
	if err != nil {
		h.fail(r.Context(), w, "issue_gate_pass", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.dispatch.ResolveConfirmation(r.Context(), req.Token, actorOr(req.Actor, "approver"), req.Approved)
	if err != nil {
		h.fail(r.Context(), w, "resolve_confirmation", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid caseId"))
		return
	}
	c, err := h.cases.GetCase(r.Context(), caseID)
	if err != nil {
		h.fail(r.Context(), w, "get_case", err)
		return
	}
	writeJSON(w, http.StatusOK, renderCase(c, true))
}

func (h *Handler) handleListCases(w http.ResponseWriter, r *http.Request) {
	stage := models.Stage(r.URL.Query().Get("stage"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cases, err := h.cases.ListCases(r.Context(), stage, limit)
	if err != nil {
		h.fail(r.Context(), w, "list_cases", err)
		return
	}
	views := make([]caseView, 0, len(cases))
	for _, c := range cases {
		views = append(views, renderCase(c, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": views})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, action string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, "action failed",
		"request_id", middleware.GetRequestID(ctx),
		"action", action,
		"error", err.Error(),
	)
	writeError(w, err)
}

func actorOr(actor, fallback string) string {
	if actor != "" {
		return actor
	}
	return fallback
}
