package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"portflow/internal/clearance/gateway"
	"portflow/internal/clearance/models"
	id "portflow/pkg/domain"
	dErrors "portflow/pkg/domain-errors"
)

// Status serves check_customs_status across the whole case lifetime. The
// first check after document validation performs the assessment transition;
// from CustomsAssessed onward it is a staleness-aware read that answers from
// the query cache when the cached observation is fresh enough, and fans out
// to customs and the shipping line otherwise. Terminal and pre-validation
// cases answer from their own record.
func (o *Orchestrator) Status(ctx context.Context, caseID id.CaseID, actor string) (StatusResult, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.Status")
	defer span.End()

	c, err := o.store.Load(ctx, caseID)
	if err != nil {
		return StatusResult{}, err
	}

	if c.Stage == models.StageDocumentsValidated {
		result, err := o.Transition(ctx, models.ActionRequest{
			Action: models.ActionCheckCustomsStatus,
			CaseID: caseID,
			Actor:  actor,
		})
		if err != nil {
			return StatusResult{}, err
		}
		status := StatusResult{
			Case:          result.Case,
			Outcome:       result.Outcome,
			Reason:        result.Reason,
			RetryHint:     result.RetryHint,
			LastCheckedAt: result.LastCheckedAt,
		}
		if result.External != nil {
			status.Customs = *result.External
		}
		return status, nil
	}
	if c.Stage.Terminal() || c.Stage.Ordinal() < models.StageCustomsAssessed.Ordinal() {
		// The record is the freshest information available here: terminal
		// cases are settled and Submitted cases are unknown externally.
		return StatusResult{Case: c, Outcome: models.OutcomeAdvanced, LastCheckedAt: c.UpdatedAt}, nil
	}
	return o.fetchStatuses(ctx, c, actor)
}

func (o *Orchestrator) fetchStatuses(ctx context.Context, c *models.ClearanceCase, actor string) (StatusResult, error) {
	customsKey := gateway.CacheKey(models.SystemCustoms, models.OpCustomsStatus, c.ID.String())
	shippingKey := gateway.CacheKey(models.SystemShippingLine, models.OpShippingStatus, c.ID.String())

	if cached, ok := o.cachedPair(ctx, customsKey, shippingKey); ok {
		cached.Case = c
		return cached, nil
	}

	var customs, shipping models.ExternalQueryResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := o.gateway.Call(gctx, models.SystemCustoms, models.OpCustomsStatus, map[string]string{
			"containerId": c.ContainerID.String(),
			"paymentRef":  c.PaymentRef,
		})
		if err != nil {
			return err
		}
		customs = res
		return nil
	})
	g.Go(func() error {
		res, err := o.gateway.Call(gctx, models.SystemShippingLine, models.OpShippingStatus, map[string]string{
			"containerId": c.ContainerID.String(),
			"vessel":      c.VesselName,
		})
		if err != nil {
			return err
		}
		shipping = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return StatusResult{}, err
	}

	if !customs.Success && customs.Failure == models.FailureTransient {
		return StatusResult{}, dErrors.Newf(dErrors.CodeUnavailable,
			"customs status unavailable: %s", customs.Reason)
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, customsKey, customs, o.staleness); err != nil && o.logger != nil {
			o.logger.Warn("query cache write failed", "key", customsKey, "error", err)
		}
		if err := o.cache.Put(ctx, shippingKey, shipping, o.staleness); err != nil && o.logger != nil {
			o.logger.Warn("query cache write failed", "key", shippingKey, "error", err)
		}
	}

	entry := models.HistoryEntry{
		Seq:       c.NextSeq(),
		Stage:     c.Stage,
		Timestamp: o.now().UTC(),
		Actor:     actor,
		Action:    models.ActionCheckCustomsStatus,
		Outcome:   models.OutcomeAdvanced,
		Detail:    "status refreshed from external systems",
	}
	if err := o.store.Append(ctx, c.ID, entry); err != nil && o.logger != nil {
		o.logger.Warn("failed to record status refresh", "case_id", c.ID, "error", err)
	}

	return StatusResult{
		Case:          c,
		Outcome:       models.OutcomeAdvanced,
		Customs:       customs,
		Shipping:      shipping,
		LastCheckedAt: customs.ObservedAt,
	}, nil
}

// cachedPair returns both status results iff both are cached and the customs
// observation is within the staleness threshold.
func (o *Orchestrator) cachedPair(ctx context.Context, customsKey, shippingKey string) (StatusResult, bool) {
	if o.cache == nil {
		return StatusResult{}, false
	}
	customs, ok, err := o.cache.Get(ctx, customsKey)
	if err != nil || !ok {
		return StatusResult{}, false
	}
	if o.now().Sub(customs.ObservedAt) > o.staleness {
		return StatusResult{}, false
	}
	shipping, ok, err := o.cache.Get(ctx, shippingKey)
	if err != nil || !ok {
		return StatusResult{}, false
	}
	return StatusResult{
		Outcome:       models.OutcomeAdvanced,
		Customs:       customs,
		Shipping:      shipping,
		FromCache:     true,
		LastCheckedAt: customs.ObservedAt,
	}, true
}

// parseSlot decodes the port authority's scheduling payload.
func parseSlot(payload map[string]string) (models.InspectionSlot, error) {
	start, err := time.Parse(time.RFC3339, payload["windowStart"])
	if err != nil {
		return models.InspectionSlot{}, err
	}
	end, err := time.Parse(time.RFC3339, payload["windowEnd"])
	if err != nil {
		return models.InspectionSlot{}, err
	}
	return models.InspectionSlot{
		WindowStart: start,
		WindowEnd:   end,
		Location:    payload["location"],
	}, nil
}
