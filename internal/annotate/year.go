package annotate

import (
	"context"
	"log/slog"

	"github.com/shanehull/filinglens/internal/filings"
	"github.com/shanehull/filinglens/internal/history"
	"github.com/shanehull/filinglens/internal/types"
)

const (
	OutcomeOK     = "ok"
	OutcomeCached = "cached"
	OutcomeFailed = "failed"
)

func (a *Aggregator) annotateYear(ctx context.Context, entity string, e filings.Entry) (types.AnnotationResult, error) {
	logCtx := a.logger().With("entity", entity, "year", int(e.Year))
	key := history.KeyFor(entity, e.Year, e.Text)

	if a.Cache != nil {
		res, ok, err := a.Cache.Get(ctx, key)
		if err != nil {
			logCtx.WarnContext(ctx, "annotation cache lookup failed", "error", err)
		} else if ok {
			logCtx.DebugContext(ctx, "annotation cache hit")
			a.observe(OutcomeCached)
			return res, nil
		}
	}

	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx); err != nil {
			return types.AnnotationResult{}, err
		}
	}

	callCtx := ctx
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	res, err := a.Annotator.Annotate(callCtx, types.AnnotationRequest{Entity: entity, Year: e.Year, Text: e.Text})
	if err != nil {
		a.observe(OutcomeFailed)
		return types.AnnotationResult{}, err
	}
	a.observe(OutcomeOK)

	if a.Cache != nil {
		if err := a.Cache.Put(ctx, key, res); err != nil {
			logCtx.WarnContext(ctx, "failed to cache annotation", "error", err)
		}
	}
	return res, nil
}

func (a *Aggregator) observe(outcome string) {
	if a.Observe != nil {
		a.Observe(outcome)
	}
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}
