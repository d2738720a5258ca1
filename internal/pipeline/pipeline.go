/*
Package pipeline runs a complete cross-year analysis for one entity: corpus
build, per-year annotation, then the sentiment, keyword and relation-graph
reductions.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shanehull/filinglens/internal/annotate"
	"github.com/shanehull/filinglens/internal/filings"
	"github.com/shanehull/filinglens/internal/graph"
	"github.com/shanehull/filinglens/internal/logger"
	"github.com/shanehull/filinglens/internal/series"
	"github.com/shanehull/filinglens/internal/telemetry"
	"github.com/shanehull/filinglens/internal/textstat"
	"github.com/shanehull/filinglens/internal/types"
)

// Options tune a single run.
type Options struct {
	// Year selects the annotated year used for the keyword series and the
	// relation graph. Zero selects the earliest annotated year.
	Year types.FiscalYear
}

type Analyzer struct {
	Builder      *filings.Builder
	Aggregator   *annotate.Aggregator
	Scorer       textstat.Scorer
	GraphOptions []graph.Option
	Metrics      *telemetry.Metrics
	Tracer       trace.Tracer
	Logger       *slog.Logger
	Now          func() time.Time
}

// New wires an Analyzer and routes annotation outcomes into metrics.
func New(builder *filings.Builder, aggregator *annotate.Aggregator, metrics *telemetry.Metrics, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	if metrics != nil && aggregator.Observe == nil {
		aggregator.Observe = func(outcome string) {
			metrics.Annotations.WithLabelValues(outcome).Inc()
		}
	}
	return &Analyzer{
		Builder:    builder,
		Aggregator: aggregator,
		Scorer:     textstat.GunningFog{},
		Metrics:    metrics,
		Tracer:     telemetry.Tracer(),
		Logger:     log,
		Now:        time.Now,
	}
}

// Analyze runs the pipeline for entity. NotFound, EmptyCorpus and Annotation
// errors are terminal; an empty relation graph is reported in GraphError.
func (a *Analyzer) Analyze(ctx context.Context, entity string, opts Options) (_ *types.Analysis, err error) {
	const op = "pipeline.analyze"
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return nil, &types.OpError{Op: op, Kind: types.KindInvalidInput, Err: errors.New("entity is required")}
	}

	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	logCtx := a.logger().With("entity", entity)
	started := a.now()

	ctx, span := a.tracer().Start(ctx, "analyze", trace.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("run_id", runID),
	))
	defer func() {
		a.finish(span, started, err)
	}()

	logCtx.InfoContext(ctx, "analysis started")

	corpus, err := a.buildCorpus(ctx, entity)
	if err != nil {
		return nil, err
	}

	aligned, err := a.annotate(ctx, entity, corpus.corpus)
	if err != nil {
		return nil, err
	}

	idx := 0
	if opts.Year != 0 {
		i, ok := aligned.Index(opts.Year)
		if !ok {
			return nil, &types.OpError{
				Op:   op,
				Kind: types.KindInvalidInput,
				Err:  fmt.Errorf("year %d was not annotated (have %v)", int(opts.Year), aligned.Years),
			}
		}
		idx = i
	}

	analysis, err := a.reduce(ctx, aligned, idx)
	if err != nil {
		return nil, err
	}
	analysis.RunID = runID
	analysis.Entity = entity
	analysis.GeneratedAt = a.now().UTC()
	analysis.Skipped = corpus.report.Skipped

	logCtx.InfoContext(ctx, "analysis complete",
		"years", len(analysis.Years),
		"selected_year", int(analysis.KeywordYear),
		"keywords", len(analysis.Keywords),
		"graph", analysis.Graph != nil,
	)
	return analysis, nil
}

type builtCorpus struct {
	corpus *filings.Corpus
	report *filings.BuildReport
}

func (a *Analyzer) buildCorpus(ctx context.Context, entity string) (builtCorpus, error) {
	ctx, span := a.tracer().Start(ctx, "build_corpus")
	defer span.End()

	corpus, report, err := a.Builder.Build(ctx, entity)
	if report != nil && a.Metrics != nil {
		a.Metrics.Documents.WithLabelValues("ok").Add(float64(report.Processed))
		for _, s := range report.Skipped {
			a.Metrics.Documents.WithLabelValues(string(s.Kind)).Inc()
		}
	}
	if err != nil {
		recordError(span, err)
		return builtCorpus{}, err
	}

	span.SetAttributes(
		attribute.Int("documents.resolved", report.Resolved),
		attribute.Int("documents.processed", report.Processed),
		attribute.Int("corpus.years", corpus.Len()),
	)
	if corpus.Len() == 0 {
		err := &types.OpError{
			Op:   "pipeline.build_corpus",
			Kind: types.KindEmptyCorpus,
			Err:  fmt.Errorf("all %d documents for %s were skipped", report.Resolved, entity),
		}
		recordError(span, err)
		return builtCorpus{}, err
	}
	return builtCorpus{corpus: corpus, report: report}, nil
}

func (a *Analyzer) annotate(ctx context.Context, entity string, corpus *filings.Corpus) (*annotate.Aligned, error) {
	ctx, span := a.tracer().Start(ctx, "annotate", trace.WithAttributes(attribute.Int("years", corpus.Len())))
	defer span.End()

	aligned, err := a.Aggregator.Aggregate(ctx, entity, corpus)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("years.annotated", len(aligned.Years)), attribute.Int("years.failed", len(aligned.Failures)))
	return aligned, nil
}

func (a *Analyzer) reduce(ctx context.Context, aligned *annotate.Aligned, idx int) (*types.Analysis, error) {
	_, span := a.tracer().Start(ctx, "reduce")
	defer span.End()

	sentiment, err := series.Sentiment(aligned.Years, aligned.Sentiments)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	year := aligned.Years[idx]
	analysis := &types.Analysis{
		Years:       aligned.Years,
		CorpusSizes: aligned.Corpus.Sizes(),
		Sentiment:   sentiment,
		KeywordYear: year,
		Keywords:    series.Keywords(aligned.Keywords[idx], a.Scorer),
		GraphYear:   year,
		Failures:    aligned.Failures,
	}

	g, err := graph.Build(aligned.Relations[idx], a.GraphOptions...)
	switch {
	case errors.Is(err, types.ErrEmptyGraph):
		a.logger().WarnContext(ctx, "no relations to graph", "year", int(year))
		analysis.GraphError = err.Error()
	case err != nil:
		recordError(span, err)
		return nil, err
	default:
		analysis.Graph = g.RelationGraph()
		span.SetAttributes(attribute.Int("graph.nodes", len(g.Nodes)), attribute.Int("graph.edges", len(g.Edges)))
	}
	return analysis, nil
}

func (a *Analyzer) finish(span trace.Span, started time.Time, err error) {
	result := "success"
	if err != nil {
		result = string(types.KindOf(err))
		if result == "" {
			result = "error"
		}
		recordError(span, err)
	}
	if a.Metrics != nil {
		a.Metrics.Analyses.WithLabelValues(result).Inc()
		a.Metrics.Duration.Observe(a.now().Sub(started).Seconds())
	}
	span.End()
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (a *Analyzer) tracer() trace.Tracer {
	if a.Tracer == nil {
		return telemetry.Tracer()
	}
	return a.Tracer
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
