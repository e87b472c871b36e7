package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"portflow/internal/clearance/models"
)

// The simulated authority clients stand in for the real Customs, Shipping
// Line and Port Authority integrations. They are deterministic so workflow
// behavior is reproducible; swap them for real transports client by client.

// CustomsClient simulates the Nigeria Customs Service.
type CustomsClient struct {
	now func() time.Time
}

func NewCustomsClient() *CustomsClient {
	return &CustomsClient{now: time.Now}
}

func (c *CustomsClient) System() models.SystemID {
	return models.SystemCustoms
}

func (c *CustomsClient) Invoke(ctx context.Context, operation string, request map[string]string) (models.ExternalQueryResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ExternalQueryResult{}, err
	}
	res := models.ExternalQueryResult{
		System:     models.SystemCustoms,
		Operation:  operation,
		ObservedAt: c.now().UTC(),
	}

	if flag := request["documentFlag"]; flag == "fraudulent" {
		res.Failure = models.FailurePermanent
		res.Reason = "document signature failed customs verification"
		res.Payload = map[string]string{"rejection": "fraudulent_document"}
		return res, nil
	}

	switch operation {
	case models.OpCustomsAssess:
		res.Success = true
		res.Payload = map[string]string{"status": "payment_required"}
	case models.OpCustomsStatus:
		res.Success = true
		status := "payment_required"
		if request["paymentRef"] != "" {
			status = "cleared"
		}
		res.Payload = map[string]string{"status": status}
	case models.OpCustomsPay:
		res.Success = true
		res.Payload = map[string]string{
			"paymentRef": paymentRef(request["containerId"], request["idempotencyKey"]),
		}
	default:
		res.Failure = models.FailurePermanent
		res.Reason = fmt.Sprintf("customs does not support operation %q", operation)
	}
	return res, nil
}

// ShippingLineClient simulates the carrier's release system.
type ShippingLineClient struct {
	now func() time.Time
}

func NewShippingLineClient() *ShippingLineClient {
	return &ShippingLineClient{now: time.Now}
}

func (c *ShippingLineClient) System() models.SystemID {
	return models.SystemShippingLine
}

func (c *ShippingLineClient) Invoke(ctx context.Context, operation string, request map[string]string) (models.ExternalQueryResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ExternalQueryResult{}, err
	}
	res := models.ExternalQueryResult{
		System:     models.SystemShippingLine,
		Operation:  operation,
		ObservedAt: c.now().UTC(),
	}

	switch operation {
	case models.OpShippingStatus:
		res.Success = true
		res.Payload = map[string]string{"status": "discharged", "vessel": request["vessel"]}
	case models.OpShippingRelease:
		res.Success = true
		res.Payload = map[string]string{
			"releaseRef": refWithPrefix("REL", request["containerId"], request["idempotencyKey"]),
		}
	default:
		res.Failure = models.FailurePermanent
		res.Reason = fmt.Sprintf("shipping line does not support operation %q", operation)
	}
	return res, nil
}

// PortAuthorityClient simulates the Nigerian Ports Authority.
type PortAuthorityClient struct {
	now func() time.Time
}

func NewPortAuthorityClient() *PortAuthorityClient {
	return &PortAuthorityClient{now: time.Now}
}

// WithPortAuthorityClock fixes the clock for deterministic inspection slots
// in tests.
func WithPortAuthorityClock(c *PortAuthorityClient, now func() time.Time) *PortAuthorityClient {
	c.now = now
	return c
}

func (c *PortAuthorityClient) System() models.SystemID {
	return models.SystemPortAuthority
}

func (c *PortAuthorityClient) Invoke(ctx context.Context, operation string, request map[string]string) (models.ExternalQueryResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ExternalQueryResult{}, err
	}
	res := models.ExternalQueryResult{
		System:     models.SystemPortAuthority,
		Operation:  operation,
		ObservedAt: c.now().UTC(),
	}

	switch operation {
	case models.OpInspectionSchedule:
		// Next day, 10:00-14:00 local, same as the legacy scheduler.
		start := c.now().AddDate(0, 0, 1).Truncate(24 * time.Hour).Add(10 * time.Hour)
		if preferred := request["preferredWindow"]; preferred != "" {
			if t, err := time.Parse(time.RFC3339, preferred); err == nil && t.After(c.now()) {
				start = t
			}
		}
		res.Success = true
		res.Payload = map[string]string{
			"windowStart": start.UTC().Format(time.RFC3339),
			"windowEnd":   start.Add(4 * time.Hour).UTC().Format(time.RFC3339),
			"location":    "Apapa Terminal B",
		}
	case models.OpGatePassIssue:
		res.Success = true
		res.Payload = map[string]string{
			"gatePassRef": refWithPrefix("GP", request["containerId"], request["caseId"]),
		}
	default:
		res.Failure = models.FailurePermanent
		res.Reason = fmt.Sprintf("port authority does not support operation %q", operation)
	}
	return res, nil
}

func paymentRef(containerID, idempotencyKey string) string {
	return refWithPrefix("PAY", containerID, idempotencyKey)
}

func refWithPrefix(prefix, containerID, key string) string {
	sum := sha256.Sum256([]byte(containerID + "|" + key))
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(sum[:6]))
}
