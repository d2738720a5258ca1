/*
Package annotate submits each year of a corpus to an annotation engine and
reshapes the results into year-aligned sequences.
*/
package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shanehull/filinglens/internal/filings"
	"github.com/shanehull/filinglens/internal/history"
	"github.com/shanehull/filinglens/internal/types"
)

// Annotator extracts keywords, sentiment and relations from one year's text.
type Annotator interface {
	Annotate(ctx context.Context, req types.AnnotationRequest) (types.AnnotationResult, error)
}

// Aligned holds parallel sequences in ascending year order. Index i of every
// sequence refers to Years[i]; Corpus holds only those years.
type Aligned struct {
	Years      []types.FiscalYear
	Keywords   [][]types.Keyword
	Sentiments []types.Sentiment
	Relations  [][]types.Relation
	Corpus     *filings.Corpus
	Failures   []types.YearFailure
}

// Index returns the position of year in the aligned sequences.
func (a *Aligned) Index(year types.FiscalYear) (int, bool) {
	for i, y := range a.Years {
		if y == year {
			return i, true
		}
	}
	return 0, false
}

type Aggregator struct {
	Annotator Annotator
	// Cache is consulted before the annotator and written after success.
	Cache history.Store
	// Limiter paces annotator calls.
	Limiter *rate.Limiter
	// Concurrency above 1 annotates years in parallel.
	Concurrency int
	// Timeout bounds each annotator call.
	Timeout time.Duration
	Logger  *slog.Logger
	// Observe is called once per year with the outcome ("ok", "cached", "failed").
	Observe func(outcome string)
}

type outcome struct {
	result types.AnnotationResult
	err    error
	done   bool
}

// Aggregate annotates every year of corpus. A year whose annotation fails is
// dropped from all sequences and recorded in Failures. When no year succeeds
// the error is ErrAnnotation. On cancellation the years finished so far are
// returned along with the context error.
func (a *Aggregator) Aggregate(ctx context.Context, entity string, corpus *filings.Corpus) (*Aligned, error) {
	logCtx := a.logger().With("entity", entity)
	entries := corpus.Entries()
	outcomes := make([]outcome, len(entries))

	var g errgroup.Group
	g.SetLimit(max(a.Concurrency, 1))

	for i, e := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := a.annotateYear(ctx, entity, e)
			outcomes[i] = outcome{result: res, err: err, done: true}
			return nil
		})
	}
	_ = g.Wait()

	aligned := &Aligned{}
	for i, e := range entries {
		o := outcomes[i]
		if !o.done {
			continue
		}
		if o.err != nil {
			if ctx.Err() != nil && errors.Is(o.err, ctx.Err()) {
				continue
			}
			logCtx.WarnContext(ctx, "annotation failed, excluding year", "year", int(e.Year), "error", o.err)
			aligned.Failures = append(aligned.Failures, types.YearFailure{Year: e.Year, Reason: o.err.Error()})
			continue
		}
		aligned.Years = append(aligned.Years, e.Year)
		aligned.Keywords = append(aligned.Keywords, o.result.Keywords)
		aligned.Sentiments = append(aligned.Sentiments, o.result.Sentiment)
		aligned.Relations = append(aligned.Relations, o.result.Relations)
	}
	aligned.Corpus = corpus.Subset(aligned.Years)

	if err := ctx.Err(); err != nil {
		return aligned, err
	}
	if len(aligned.Years) == 0 {
		return aligned, &types.OpError{
			Op:   "annotate.aggregate",
			Kind: types.KindAnnotation,
			Err:  fmt.Errorf("none of %d years annotated", len(entries)),
		}
	}

	logCtx.InfoContext(ctx, "annotation complete", "years", len(aligned.Years), "failed", len(aligned.Failures))
	return aligned, nil
}
