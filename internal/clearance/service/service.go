// Package service holds the workflow orchestrator: the state machine that
// drives a clearance case through its stages, coordinating the external
// system gateway and the confirmation gate, and persisting every transition
// through the case store.
package service

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"portflow/internal/clearance/metrics"
	"portflow/internal/clearance/ports"
)

var tracer = otel.Tracer("portflow/clearance/service")

// Orchestrator validates preconditions, invokes external systems, applies
// transitions and persists them. All workflow invariants live here; the
// dispatcher and handlers stay thin.
type Orchestrator struct {
	store   ports.CaseStore
	gateway ports.Gateway
	gate    ports.ConfirmationGate
	duty    ports.DutyCalculator

	cache     ports.QueryCache
	staleness time.Duration

	auditPublisher ports.AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(o *Orchestrator) {
		o.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithQueryCache enables staleness-aware status reads. Results older than
// the threshold trigger a fresh external query.
func WithQueryCache(cache ports.QueryCache, staleness time.Duration) Option {
	return func(o *Orchestrator) {
		o.cache = cache
		o.staleness = staleness
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func New(store ports.CaseStore, gateway ports.Gateway, gate ports.ConfirmationGate, duty ports.DutyCalculator, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, fmt.Errorf("case store is required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("confirmation gate is required")
	}
	if duty == nil {
		return nil, fmt.Errorf("duty calculator is required")
	}

	o := &Orchestrator{
		store:     store,
		gateway:   gateway,
		gate:      gate,
		duty:      duty,
		staleness: 5 * time.Minute,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Orchestrator) observe(action, outcome string, start time.Time) {
	if o.metrics != nil {
		o.metrics.ObserveTransition(action, outcome, time.Since(start))
	}
}
