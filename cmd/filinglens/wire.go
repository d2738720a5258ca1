package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/shanehull/filinglens/internal/ai"
	"github.com/shanehull/filinglens/internal/annotate"
	"github.com/shanehull/filinglens/internal/config"
	"github.com/shanehull/filinglens/internal/filings"
	"github.com/shanehull/filinglens/internal/graph"
	"github.com/shanehull/filinglens/internal/history"
	"github.com/shanehull/filinglens/internal/notify"
	"github.com/shanehull/filinglens/internal/pipeline"
	"github.com/shanehull/filinglens/internal/store"
	"github.com/shanehull/filinglens/internal/telemetry"
)

// app holds the components built from configuration for one command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	builder  *filings.Builder
	analyzer *pipeline.Analyzer
	store    *store.Postgres
	email    *notify.EmailSender
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("cleanup failed", "error", err)
		}
	}
}

func newSource(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (filings.Source, func() error, error) {
	switch cfg.Kind {
	case "gcs":
		src, err := filings.NewGCSSource(ctx, cfg.Bucket, cfg.Prefix, cfg.FilingType, cfg.DocumentFile)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		src := filings.NewLocalSource(cfg.BaseDir, cfg.FilingType, cfg.DocumentFile)
		src.Logger = logger
		return src, nil, nil
	}
}

func newAnnotator(ctx context.Context, cfg config.AnnotationConfig) (annotate.Annotator, error) {
	switch cfg.Engine {
	case "dir":
		return &ai.DirAnnotator{Dir: cfg.Dir}, nil
	default:
		return ai.NewGeminiAnnotator(ctx, ai.Config{
			APIKey:        cfg.APIKey,
			Model:         cfg.Model,
			MaxInputChars: cfg.MaxInputChars,
		})
	}
}

func newCache(ctx context.Context, cfg config.HistoryConfig, logger *slog.Logger) (history.Store, func() error, error) {
	switch cfg.Backend {
	case "file":
		m, err := history.NewManager(cfg.FilePath, cfg.TTL, logger)
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	case "redis":
		r := history.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return r, r.Close, nil
	default:
		return nil, nil, nil
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger, metrics: telemetry.NewMetrics()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	src, closeSrc, err := newSource(ctx, cfg.Source, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up filing source: %w", err)
	}
	if closeSrc != nil {
		a.closers = append(a.closers, closeSrc)
	}

	cleaner, err := filings.NewCleaner(cfg.Source.Cleaner)
	if err != nil {
		return nil, err
	}
	a.builder = filings.NewBuilder(src, cleaner, logger)

	annotator, err := newAnnotator(ctx, cfg.Annotation)
	if err != nil {
		return nil, fmt.Errorf("failed to set up annotator: %w", err)
	}

	cache, closeCache, err := newCache(ctx, cfg.History, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up annotation history: %w", err)
	}
	if closeCache != nil {
		a.closers = append(a.closers, closeCache)
	}

	aggregator := &annotate.Aggregator{
		Annotator:   annotator,
		Cache:       cache,
		Concurrency: cfg.Annotation.Concurrency,
		Timeout:     cfg.Annotation.Timeout,
		Logger:      logger,
	}
	if cfg.Annotation.Rate > 0 {
		aggregator.Limiter = rate.NewLimiter(rate.Limit(cfg.Annotation.Rate), cfg.Annotation.Burst)
	}

	a.analyzer = pipeline.New(a.builder, aggregator, a.metrics, logger)
	a.analyzer.GraphOptions = []graph.Option{
		graph.WithSeed(cfg.Graph.Seed),
		graph.WithK(cfg.Graph.K),
		graph.WithIterations(cfg.Graph.Iterations),
	}

	if cfg.Postgres.DSN != "" {
		pg, err := store.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		a.store = pg
	}

	if cfg.SMTP.Enabled() {
		a.email = notify.NewEmailSender(notify.EmailConfig{
			SMTPServer: cfg.SMTP.Host,
			SMTPPort:   cfg.SMTP.Port,
			SMTPUser:   cfg.SMTP.Username,
			SMTPPass:   cfg.SMTP.Password,
			FromEmail:  cfg.SMTP.Sender,
			ToEmail:    cfg.SMTP.Recipient,
			Enabled:    true,
		}, logger)
	}

	return a, nil
}
