package filings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shanehull/filinglens/internal/types"
)

// BuildReport summarises one corpus build.
type BuildReport struct {
	Resolved  int
	Processed int
	Skipped   []types.DocumentFailure
	// Years whose earlier document was replaced by a later one.
	Overwritten []types.FiscalYear
}

// Builder assembles a Corpus from the documents of a Source.
type Builder struct {
	Source  Source
	Cleaner Cleaner
	Logger  *slog.Logger
}

// NewBuilder returns a Builder. A nil cleaner selects CleanMarkup and a nil
// logger selects slog's default.
func NewBuilder(src Source, cleaner Cleaner, logger *slog.Logger) *Builder {
	if cleaner == nil {
		cleaner = CleanerFunc(CleanMarkup)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{Source: src, Cleaner: cleaner, Logger: logger}
}

// Build reads, cleans and year-indexes every document of entity. Unreadable
// documents and paths without a year are skipped and recorded in the report.
// A build that processes nothing returns an empty corpus and a nil error.
func (b *Builder) Build(ctx context.Context, entity string) (*Corpus, *BuildReport, error) {
	logCtx := b.logger().With("entity", entity)
	report := &BuildReport{}

	refs, err := b.Source.Resolve(ctx, entity)
	if err != nil {
		return nil, report, fmt.Errorf("failed to resolve filings for %q: %w", entity, err)
	}
	report.Resolved = len(refs)
	logCtx.InfoContext(ctx, "resolved filing documents", "count", len(refs))

	cleaner := b.Cleaner
	if cleaner == nil {
		cleaner = CleanerFunc(CleanMarkup)
	}

	corpus := NewCorpus()
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return corpus, report, err
		}

		raw, err := b.Source.Read(ctx, ref)
		if err != nil {
			logCtx.WarnContext(ctx, "skipping unreadable document", "document", ref.Name, "error", err)
			report.skip(ref, types.KindRead, err)
			continue
		}

		year, err := ExtractYear(ref.Name)
		if err != nil {
			logCtx.WarnContext(ctx, "skipping document without fiscal year", "document", ref.Name, "error", err)
			report.skip(ref, types.KindMalformedPath, err)
			continue
		}

		if _, exists := corpus.Get(year); exists {
			logCtx.InfoContext(ctx, "fiscal year already present, replacing", "year", int(year), "document", ref.Name)
			report.Overwritten = append(report.Overwritten, year)
		}
		corpus.Set(year, cleaner.Clean(string(raw)))
		report.Processed++
	}

	logCtx.InfoContext(ctx, "corpus built", "years", corpus.Len(), "processed", report.Processed, "skipped", len(report.Skipped))
	return corpus, report, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

func (r *BuildReport) skip(ref types.DocumentRef, kind types.ErrorKind, err error) {
	r.Skipped = append(r.Skipped, types.DocumentFailure{Name: ref.Name, Kind: kind, Reason: err.Error()})
}
