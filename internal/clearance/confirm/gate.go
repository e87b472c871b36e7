// Package confirm implements the human-approval checkpoint that gates
// financially consequential actions. Approval tokens are HMAC-signed JWTs;
// pending state lives in a TTL store so expiry needs no background sweeper.
package confirm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"portflow/internal/clearance/models"
	"portflow/internal/clearance/ports"
	id "portflow/pkg/domain"
	dErrors "portflow/pkg/domain-errors"
)

// Status of a pending approval record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// Record is the stored state of one approval request, keyed by caseID+action.
type Record struct {
	TokenID     string            `json:"tokenId"`
	Token       string            `json:"token"`
	CaseID      string            `json:"caseId"`
	Action      models.ActionKind `json:"action"`
	Status      Status            `json:"status"`
	RequestedAt time.Time         `json:"requestedAt"`
	ExpiresAt   time.Time         `json:"expiresAt"`
}

// Store persists approval records with a TTL matching the approval window.
type Store interface {
	Get(ctx context.Context, caseID string, action models.ActionKind) (Record, bool, error)
	Put(ctx context.Context, record Record, ttl time.Duration) error
	Delete(ctx context.Context, caseID string, action models.ActionKind) error
}

// claims carried inside the signed approval token.
type claims struct {
	CaseID string `json:"case_id"`
	Action string `json:"action"`
	jwt.RegisteredClaims
}

// Gate issues, resolves and checks approval tokens.
type Gate struct {
	store      Store
	signingKey []byte
	window     time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithWindow overrides the default approval expiry window.
func WithWindow(window time.Duration) Option {
	return func(g *Gate) {
		g.window = window
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

func New(store Store, signingKey string, opts ...Option) (*Gate, error) {
	if store == nil {
		return nil, errors.New("approval store is required")
	}
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	g := &Gate{
		store:      store,
		signingKey: []byte(signingKey),
		window:     15 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// RequestApproval returns the pending approval for caseID+action, creating it
// if absent. Re-requesting an already-pending item returns the same token.
func (g *Gate) RequestApproval(ctx context.Context, caseID id.CaseID, action models.ActionKind) (ports.Approval, error) {
	existing, found, err := g.store.Get(ctx, caseID.String(), action)
	if err != nil {
		return ports.Approval{}, dErrors.Wrap(err, dErrors.CodeInternal, "load approval record")
	}
	if found && existing.Status == StatusPending && g.now().Before(existing.ExpiresAt) {
		return g.toApproval(existing, caseID)
	}

	now := g.now()
	rec := Record{
		TokenID:     uuid.NewString(),
		CaseID:      caseID.String(),
		Action:      action,
		Status:      StatusPending,
		RequestedAt: now,
		ExpiresAt:   now.Add(g.window),
	}
	token, err := g.sign(rec)
	if err != nil {
		return ports.Approval{}, dErrors.Wrap(err, dErrors.CodeInternal, "sign approval token")
	}
	rec.Token = token

	if err := g.store.Put(ctx, rec, g.window); err != nil {
		return ports.Approval{}, dErrors.Wrap(err, dErrors.CodeInternal, "store approval record")
	}
	if g.logger != nil {
		g.logger.InfoContext(ctx, "approval requested",
			"case_id", rec.CaseID, "action", action, "expires_at", rec.ExpiresAt)
	}
	return g.toApproval(rec, caseID)
}

// Resolve settles a pending token. Unknown, expired or already-resolved
// tokens fail with CodeUnauthorized.
func (g *Gate) Resolve(ctx context.Context, token string, approved bool) (ports.Approval, error) {
	c, err := g.parse(token)
	if err != nil {
		return ports.Approval{}, err
	}

	rec, found, err := g.store.Get(ctx, c.CaseID, models.ActionKind(c.Action))
	if err != nil {
		return ports.Approval{}, dErrors.Wrap(err, dErrors.CodeInternal, "load approval record")
	}
	if !found || rec.TokenID != c.ID || rec.Status != StatusPending {
		return ports.Approval{}, dErrors.New(dErrors.CodeUnauthorized, "approval token is unknown or already resolved")
	}
	if g.now().After(rec.ExpiresAt) {
		return ports.Approval{}, dErrors.New(dErrors.CodeUnauthorized, "approval token has expired")
	}

	if approved {
		rec.Status = StatusApproved
	} else {
		rec.Status = StatusDenied
	}
	if err := g.store.Put(ctx, rec, rec.ExpiresAt.Sub(g.now())); err != nil {
		return ports.Approval{}, dErrors.Wrap(err, dErrors.CodeInternal, "store approval record")
	}

	caseID, err := id.ParseCaseID(rec.CaseID)
	if err != nil {
		return ports.Approval{}, dErrors.Wrap(err, dErrors.CodeInternal, "corrupt approval record")
	}
	if g.logger != nil {
		g.logger.InfoContext(ctx, "approval resolved",
			"case_id", rec.CaseID, "action", rec.Action, "approved", approved)
	}
	return g.toApproval(rec, caseID)
}

// Check reports whether token is an approved, unexpired grant for
// caseID+action.
func (g *Gate) Check(ctx context.Context, token string, caseID id.CaseID, action models.ActionKind) (bool, error) {
	c, err := g.parse(token)
	if err != nil {
		return false, err
	}
	if c.CaseID != caseID.String() || c.Action != string(action) {
		return false, dErrors.New(dErrors.CodeUnauthorized, "approval token does not match this action")
	}

	rec, found, err := g.store.Get(ctx, c.CaseID, action)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "load approval record")
	}
	if !found || rec.TokenID != c.ID {
		return false, dErrors.New(dErrors.CodeUnauthorized, "approval token is unknown or expired")
	}
	if g.now().After(rec.ExpiresAt) {
		return false, dErrors.New(dErrors.CodeUnauthorized, "approval token has expired")
	}
	return rec.Status == StatusApproved, nil
}

// Clear removes the record once the gated action has executed.
func (g *Gate) Clear(ctx context.Context, caseID id.CaseID, action models.ActionKind) error {
	if err := g.store.Delete(ctx, caseID.String(), action); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete approval record")
	}
	return nil
}

func (g *Gate) sign(rec Record) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		CaseID: rec.CaseID,
		Action: string(rec.Action),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        rec.TokenID,
			IssuedAt:  jwt.NewNumericDate(rec.RequestedAt),
			ExpiresAt: jwt.NewNumericDate(rec.ExpiresAt),
			Issuer:    "portflow-confirmation-gate",
		},
	})
	return token.SignedString(g.signingKey)
}

func (g *Gate) parse(token string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return g.signingKey, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "approval token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "approval token is invalid")
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "approval token is invalid")
	}
	return c, nil
}

func (g *Gate) toApproval(rec Record, caseID id.CaseID) (ports.Approval, error) {
	return ports.Approval{
		Token:       rec.Token,
		TokenID:     rec.TokenID,
		CaseID:      caseID,
		Action:      rec.Action,
		RequestedAt: rec.RequestedAt,
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}
