// Package gateway is the uniform client boundary to the external authority
// systems (customs, shipping line, port authority). It owns per-system
// timeout and retry policy; callers see normalized ExternalQueryResults.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"portflow/internal/clearance/models"
	dErrors "portflow/pkg/domain-errors"
)

var (
	callDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portflow_gateway_call_duration_ms",
		Help:    "Latency of external system calls in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"system", "operation"})

	callAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portflow_gateway_call_attempts_total",
		Help: "External call attempts by system and result class",
	}, []string{"system", "operation", "result"})

	retriesExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portflow_gateway_retries_exhausted_total",
		Help: "Calls that consumed their full retry budget without success",
	}, []string{"system", "operation"})
)

var tracer = otel.Tracer("portflow/clearance/gateway")

// SystemClient is one external authority's transport. Invoke errors are
// treated as transient transport failures; application-level outcomes travel
// in the result.
type SystemClient interface {
	System() models.SystemID
	Invoke(ctx context.Context, operation string, request map[string]string) (models.ExternalQueryResult, error)
}

// Policy is the retry/timeout budget for one system. Customs queries are
// read-only and retried freely; payment submission carries a single attempt
// because the orchestrator re-checks history before resubmitting.
type Policy struct {
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultPolicies returns the per-system budgets used in production.
func DefaultPolicies() map[models.SystemID]Policy {
	return map[models.SystemID]Policy{
		models.SystemCustoms:       {Timeout: 5 * time.Second, MaxAttempts: 4, BaseBackoff: 200 * time.Millisecond, MaxBackoff: 2 * time.Second},
		models.SystemShippingLine:  {Timeout: 5 * time.Second, MaxAttempts: 3, BaseBackoff: 250 * time.Millisecond, MaxBackoff: 2 * time.Second},
		models.SystemPortAuthority: {Timeout: 8 * time.Second, MaxAttempts: 3, BaseBackoff: 500 * time.Millisecond, MaxBackoff: 4 * time.Second},
	}
}

// nonRetriableOps lists operations with real-world effect that must never be
// blind-retried inside the gateway, regardless of failure class.
var nonRetriableOps = map[models.SystemID]map[string]bool{
	models.SystemCustoms: {models.OpCustomsPay: true},
}

// Gateway fans requests out to registered system clients under their policy.
type Gateway struct {
	clients  map[models.SystemID]SystemClient
	policies map[models.SystemID]Policy
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

type Option func(*Gateway)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithPolicies(policies map[models.SystemID]Policy) Option {
	return func(g *Gateway) {
		g.policies = policies
	}
}

// WithSleeper replaces the backoff sleep, so tests run without waiting.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Gateway) {
		g.sleep = sleep
	}
}

func New(clients []SystemClient, opts ...Option) (*Gateway, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("at least one system client is required")
	}
	g := &Gateway{
		clients:  make(map[models.SystemID]SystemClient, len(clients)),
		policies: DefaultPolicies(),
		sleep:    sleepCtx,
	}
	for _, c := range clients {
		g.clients[c.System()] = c
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Call invokes (system, operation) under the system's policy. Transient
// failures are retried with exponential backoff up to the budget; permanent
// failures and exhausted budgets come back in the result with a nil error.
// A non-nil error means the call infrastructure itself failed (bad system,
// canceled context).
func (g *Gateway) Call(ctx context.Context, system models.SystemID, operation string, request map[string]string) (models.ExternalQueryResult, error) {
	client, ok := g.clients[system]
	if !ok {
		return models.ExternalQueryResult{}, dErrors.Newf(dErrors.CodeInternal, "unknown external system %q", system)
	}
	policy := g.policy(system)

	ctx, span := tracer.Start(ctx, "gateway.Call")
	span.SetAttributes(
		attribute.String("system", string(system)),
		attribute.String("operation", operation),
	)
	defer span.End()

	maxAttempts := policy.MaxAttempts
	if nonRetriableOps[system][operation] {
		maxAttempts = 1
	}

	var last models.ExternalQueryResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := g.invokeOnce(ctx, client, operation, request, policy.Timeout)
		if err != nil {
			if ctx.Err() != nil {
				return models.ExternalQueryResult{}, dErrors.Wrap(ctx.Err(), dErrors.CodeUnavailable, "external call canceled")
			}
			// Transport error: treat as transient.
			res = models.ExternalQueryResult{
				System:     system,
				Operation:  operation,
				Failure:    models.FailureTransient,
				Reason:     err.Error(),
				ObservedAt: time.Now().UTC(),
			}
		}
		last = res

		switch {
		case res.Success:
			callAttempts.WithLabelValues(string(system), operation, "success").Inc()
			return res, nil
		case res.Failure == models.FailurePermanent:
			callAttempts.WithLabelValues(string(system), operation, "permanent").Inc()
			if g.logger != nil {
				g.logger.WarnContext(ctx, "external call failed permanently",
					"system", system, "operation", operation, "reason", res.Reason)
			}
			return res, nil
		default:
			callAttempts.WithLabelValues(string(system), operation, "transient").Inc()
		}

		if attempt < maxAttempts {
			if err := g.sleep(ctx, backoff(policy, attempt)); err != nil {
				return models.ExternalQueryResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "external call canceled during backoff")
			}
		}
	}

	retriesExhausted.WithLabelValues(string(system), operation).Inc()
	if g.logger != nil {
		g.logger.WarnContext(ctx, "external call retry budget exhausted",
			"system", system, "operation", operation, "attempts", maxAttempts, "reason", last.Reason)
	}
	last.Failure = models.FailureTransient
	if last.Reason == "" {
		last.Reason = "retry budget exhausted"
	}
	return last, nil
}

func (g *Gateway) invokeOnce(ctx context.Context, client SystemClient, operation string, request map[string]string, timeout time.Duration) (models.ExternalQueryResult, error) {
	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := client.Invoke(cctx, operation, request)
	callDurationMs.WithLabelValues(string(client.System()), operation).
		Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	return res, err
}

func (g *Gateway) policy(system models.SystemID) Policy {
	if p, ok := g.policies[system]; ok {
		return p
	}
	return Policy{Timeout: 5 * time.Second, MaxAttempts: 3, BaseBackoff: 200 * time.Millisecond, MaxBackoff: 2 * time.Second}
}

// backoff returns the exponential delay before the next attempt, capped at
// the policy maximum.
func backoff(policy Policy, attempt int) time.Duration {
	d := policy.BaseBackoff << (attempt - 1)
	if d > policy.MaxBackoff {
		return policy.MaxBackoff
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
